package vfs

import (
	"database/sql"
	"testing"

	"codegraph/internal/contentstore"
	"codegraph/internal/goerr"
	"codegraph/internal/vpath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func newTestVFS(t *testing.T) (*VFS, *Workspace) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := OpenStore(db)
	require.NoError(t, err)
	blobs, err := contentstore.Open(db)
	require.NoError(t, err)

	v := New(store, blobs, []string{".go", ".rs", ".py"})
	ws, err := v.CreateWorkspace(&Workspace{Name: "docs", Type: WorkspaceDocumentation})
	require.NoError(t, err)
	return v, ws
}

func TestCreateFileThenReadRoundTrips(t *testing.T) {
	v, ws := newTestVFS(t)
	p := vpath.New("/notes/todo.md")

	n, err := v.CreateFile(ws, p, []byte("buy milk"), "")
	require.NoError(t, err)
	require.Equal(t, int64(1), n.Version)

	got, content, err := v.ReadFile(ws.ID, p)
	require.NoError(t, err)
	require.Equal(t, []byte("buy milk"), content)
	require.Equal(t, n.ID, got.ID)
}

func TestCreateFileRejectsCodeExtension(t *testing.T) {
	v, ws := newTestVFS(t)
	_, err := v.CreateFile(ws, vpath.New("/src/main.go"), []byte("package main"), "go")
	require.Error(t, err)
	require.True(t, goerr.Is(err, goerr.PolicyRejected))
	require.Contains(t, err.Error(), "VFS write operations are not allowed for code files")
}

func TestCreateFileDuplicatePathIsAlreadyExists(t *testing.T) {
	v, ws := newTestVFS(t)
	p := vpath.New("/a.md")
	_, err := v.CreateFile(ws, p, []byte("one"), "")
	require.NoError(t, err)

	_, err = v.CreateFile(ws, p, []byte("two"), "")
	require.Error(t, err)
	require.True(t, goerr.Is(err, goerr.AlreadyExists))
}

func TestUpdateFileWithStaleVersionConflicts(t *testing.T) {
	v, ws := newTestVFS(t)
	p := vpath.New("/a.md")
	n, err := v.CreateFile(ws, p, []byte("v1"), "")
	require.NoError(t, err)

	_, err = v.UpdateFile(ws, p, []byte("v2"), n.Version)
	require.NoError(t, err)

	_, err = v.UpdateFile(ws, p, []byte("v3"), n.Version)
	require.Error(t, err)
	require.True(t, goerr.Is(err, goerr.VersionConflict))
}

func TestUpdateFileSucceedsWithCurrentVersionAndBumpsIt(t *testing.T) {
	v, ws := newTestVFS(t)
	p := vpath.New("/a.md")
	n, err := v.CreateFile(ws, p, []byte("v1"), "")
	require.NoError(t, err)

	updated, err := v.UpdateFile(ws, p, []byte("v2"), n.Version)
	require.NoError(t, err)
	require.Equal(t, n.Version+1, updated.Version)

	_, content, err := v.ReadFile(ws.ID, p)
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), content)
}

func TestDeleteNonEmptyDirectoryRequiresRecursive(t *testing.T) {
	v, ws := newTestVFS(t)
	_, err := v.CreateDirectory(ws, vpath.New("/reports"), false)
	require.NoError(t, err)
	_, err = v.CreateFile(ws, vpath.New("/reports/q1.md"), []byte("data"), "")
	require.NoError(t, err)

	err = v.Delete(ws, vpath.New("/reports"), false)
	require.Error(t, err)
	require.True(t, goerr.Is(err, goerr.DirectoryNotEmpty))

	require.NoError(t, v.Delete(ws, vpath.New("/reports"), true))
	exists, err := v.Exists(ws.ID, vpath.New("/reports/q1.md"))
	require.NoError(t, err)
	require.False(t, exists)
}

func TestDeleteFileReleasesBlob(t *testing.T) {
	v, ws := newTestVFS(t)
	p := vpath.New("/a.md")
	n, err := v.CreateFile(ws, p, []byte("content"), "")
	require.NoError(t, err)

	require.NoError(t, v.Delete(ws, p, false))
	exists, err := v.blobs.Exists(*n.Blob)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestListDirectoryNonRecursiveOnlyDirectChildren(t *testing.T) {
	v, ws := newTestVFS(t)
	_, err := v.CreateFile(ws, vpath.New("/a.md"), []byte("1"), "")
	require.NoError(t, err)
	_, err = v.CreateDirectory(ws, vpath.New("/sub"), false)
	require.NoError(t, err)
	_, err = v.CreateFile(ws, vpath.New("/sub/b.md"), []byte("2"), "")
	require.NoError(t, err)

	children, err := v.ListDirectory(ws.ID, vpath.Root, false)
	require.NoError(t, err)
	require.Len(t, children, 2)

	all, err := v.ListDirectory(ws.ID, vpath.Root, true)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestMoveRenamesNodeAndRejectsCodeDestination(t *testing.T) {
	v, ws := newTestVFS(t)
	from := vpath.New("/a.md")
	to := vpath.New("/b.md")
	_, err := v.CreateFile(ws, from, []byte("content"), "")
	require.NoError(t, err)

	moved, err := v.Move(ws, from, to)
	require.NoError(t, err)
	require.True(t, moved.Path.Equal(to))

	exists, err := v.Exists(ws.ID, from)
	require.NoError(t, err)
	require.False(t, exists)

	_, err = v.CreateFile(ws, vpath.New("/c.md"), []byte("x"), "")
	require.NoError(t, err)
	_, err = v.Move(ws, vpath.New("/c.md"), vpath.New("/c.go"))
	require.Error(t, err)
	require.True(t, goerr.Is(err, goerr.PolicyRejected))
}

func TestCopySharesBlobAndIncrementsRefcount(t *testing.T) {
	v, ws := newTestVFS(t)
	from := vpath.New("/a.md")
	to := vpath.New("/b.md")
	n, err := v.CreateFile(ws, from, []byte("shared"), "")
	require.NoError(t, err)

	copied, err := v.Copy(ws, from, to)
	require.NoError(t, err)
	require.Equal(t, *n.Blob, *copied.Blob)

	refcount, err := v.blobs.Refcount(*n.Blob)
	require.NoError(t, err)
	require.Equal(t, 2, refcount)
}

func TestDeleteWorkspaceReleasesAllBlobs(t *testing.T) {
	v, ws := newTestVFS(t)
	n, err := v.CreateFile(ws, vpath.New("/a.md"), []byte("content"), "")
	require.NoError(t, err)

	require.NoError(t, v.DeleteWorkspace(ws.ID))

	exists, err := v.blobs.Exists(*n.Blob)
	require.NoError(t, err)
	require.False(t, exists)

	_, err = v.GetWorkspace(ws.ID)
	require.True(t, goerr.Is(err, goerr.NotFound))
}

func TestGetVNodeByIDIndependentOfPath(t *testing.T) {
	v, ws := newTestVFS(t)
	n, err := v.CreateFile(ws, vpath.New("/a.md"), []byte("content"), "")
	require.NoError(t, err)

	got, err := v.GetVNodeByID(n.ID)
	require.NoError(t, err)
	require.True(t, got.Path.Equal(n.Path))
}

func TestReadOnlyWorkspaceRejectsAllWrites(t *testing.T) {
	v, ws := newTestVFS(t)
	_, err := v.CreateFile(ws, vpath.New("/a.md"), []byte("content"), "")
	require.NoError(t, err)

	ws.ReadOnly = true

	_, err = v.CreateFile(ws, vpath.New("/b.md"), []byte("x"), "")
	require.True(t, goerr.Is(err, goerr.ReadOnly))

	_, err = v.WriteFile(ws, vpath.New("/a.md"), []byte("y"), "")
	require.True(t, goerr.Is(err, goerr.ReadOnly))

	_, err = v.UpdateFile(ws, vpath.New("/a.md"), []byte("y"), 1)
	require.True(t, goerr.Is(err, goerr.ReadOnly))

	_, err = v.CreateDirectory(ws, vpath.New("/dir"), false)
	require.True(t, goerr.Is(err, goerr.ReadOnly))

	err = v.Delete(ws, vpath.New("/a.md"), false)
	require.True(t, goerr.Is(err, goerr.ReadOnly))

	_, err = v.Move(ws, vpath.New("/a.md"), vpath.New("/c.md"))
	require.True(t, goerr.Is(err, goerr.ReadOnly))

	_, err = v.Copy(ws, vpath.New("/a.md"), vpath.New("/c.md"))
	require.True(t, goerr.Is(err, goerr.ReadOnly))
}

func TestCreateFileImplicitlyCreatesMissingParentDirectories(t *testing.T) {
	v, ws := newTestVFS(t)
	p := vpath.New("/a/b/c/note.md")

	_, err := v.CreateFile(ws, p, []byte("deep"), "")
	require.NoError(t, err)

	for _, dir := range []string{"/a", "/a/b", "/a/b/c"} {
		n, err := v.Metadata(ws.ID, vpath.New(dir))
		require.NoError(t, err, dir)
		require.True(t, n.IsDirectory())
	}
}

func TestCreateDirectoryWithoutCreateParentsFailsOnMissingParent(t *testing.T) {
	v, ws := newTestVFS(t)
	_, err := v.CreateDirectory(ws, vpath.New("/missing/child"), false)
	require.Error(t, err)
	require.True(t, goerr.Is(err, goerr.NotFound))
}

func TestCreateDirectoryWithCreateParentsBuildsAncestorChain(t *testing.T) {
	v, ws := newTestVFS(t)
	n, err := v.CreateDirectory(ws, vpath.New("/x/y/z"), true)
	require.NoError(t, err)
	require.True(t, n.IsDirectory())

	for _, dir := range []string{"/x", "/x/y"} {
		got, err := v.Metadata(ws.ID, vpath.New(dir))
		require.NoError(t, err, dir)
		require.True(t, got.IsDirectory())
	}
}

func TestCopyDirectoryRecursivelyDuplicatesTree(t *testing.T) {
	v, ws := newTestVFS(t)
	_, err := v.CreateDirectory(ws, vpath.New("/src"), false)
	require.NoError(t, err)
	_, err = v.CreateDirectory(ws, vpath.New("/src/nested"), false)
	require.NoError(t, err)
	a, err := v.CreateFile(ws, vpath.New("/src/a.md"), []byte("one"), "")
	require.NoError(t, err)
	b, err := v.CreateFile(ws, vpath.New("/src/nested/b.md"), []byte("two"), "")
	require.NoError(t, err)

	_, err = v.Copy(ws, vpath.New("/src"), vpath.New("/dst"))
	require.NoError(t, err)

	copiedDir, err := v.Metadata(ws.ID, vpath.New("/dst/nested"))
	require.NoError(t, err)
	require.True(t, copiedDir.IsDirectory())

	_, content, err := v.ReadFile(ws.ID, vpath.New("/dst/a.md"))
	require.NoError(t, err)
	require.Equal(t, []byte("one"), content)

	_, content, err = v.ReadFile(ws.ID, vpath.New("/dst/nested/b.md"))
	require.NoError(t, err)
	require.Equal(t, []byte("two"), content)

	refcountA, err := v.blobs.Refcount(*a.Blob)
	require.NoError(t, err)
	require.Equal(t, 2, refcountA)

	refcountB, err := v.blobs.Refcount(*b.Blob)
	require.NoError(t, err)
	require.Equal(t, 2, refcountB)
}
