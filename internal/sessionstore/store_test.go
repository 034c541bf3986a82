package sessionstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codegraph/internal/clock"

	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T, root, id, workspacePath string, sessionIDs ...string) {
	t.Helper()
	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, sessionsDirName), 0755))

	meta, err := json.Marshal(map[string]interface{}{"workspace_path": workspacePath})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, metadataFileName), meta, 0644))

	for _, sid := range sessionIDs {
		line, err := json.Marshal(map[string]interface{}{"role": "user", "content": "hello " + sid})
		require.NoError(t, err)
		path := filepath.Join(dir, sessionsDirName, sid+".jsonl")
		require.NoError(t, os.WriteFile(path, append(line, '\n'), 0644))
	}
}

func TestListProjectsDiscoversMetadata(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "proj-a", "/workspace/a")
	writeProject(t, root, "proj-b", "/workspace/b")

	s := Open(root, time.Minute, clock.NewFake(time.Unix(0, 0)))
	projects, err := s.ListProjects()
	require.NoError(t, err)
	require.Len(t, projects, 2)
}

func TestListProjectsMissingRootReturnsEmpty(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "does-not-exist"), time.Minute, clock.NewFake(time.Unix(0, 0)))
	projects, err := s.ListProjects()
	require.NoError(t, err)
	require.Empty(t, projects)
}

func TestListSessionsReturnsSortedSessionIDs(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "proj-a", "/workspace/a", "sid-2", "sid-1")

	s := Open(root, time.Minute, clock.NewFake(time.Unix(0, 0)))
	sessions, err := s.ListSessions("proj-a")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, "sid-1", sessions[0].ID)
	require.Equal(t, "sid-2", sessions[1].ID)
}

func TestLoadSessionHistorySearchesAcrossProjects(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "proj-a", "/workspace/a", "sid-1")
	writeProject(t, root, "proj-b", "/workspace/b", "sid-2")

	s := Open(root, time.Minute, clock.NewFake(time.Unix(0, 0)))
	messages, err := s.LoadSessionHistory("sid-2")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "hello sid-2", messages[0].Raw["content"])
}

func TestLoadSessionHistoryUnknownIDReturnsNotFound(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "proj-a", "/workspace/a")

	s := Open(root, time.Minute, clock.NewFake(time.Unix(0, 0)))
	_, err := s.LoadSessionHistory("missing")
	require.Error(t, err)
}

func TestFindProjectByPathCanonicalizesBothSides(t *testing.T) {
	root := t.TempDir()
	wsDir := t.TempDir()
	writeProject(t, root, "proj-a", wsDir)

	s := Open(root, time.Minute, clock.NewFake(time.Unix(0, 0)))
	got, err := s.FindProjectByPath(wsDir + string(filepath.Separator) + ".")
	require.NoError(t, err)
	require.Equal(t, "proj-a", got.ID)
}

func TestFindProjectByPathUnknownReturnsNotFound(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "proj-a", "/workspace/a")

	s := Open(root, time.Minute, clock.NewFake(time.Unix(0, 0)))
	_, err := s.FindProjectByPath("/no/such/workspace")
	require.Error(t, err)
}

func TestListProjectsIsCachedUntilTTLExpires(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "proj-a", "/workspace/a")

	fake := clock.NewFake(time.Unix(0, 0))
	s := Open(root, time.Minute, fake)

	_, err := s.ListProjects()
	require.NoError(t, err)

	writeProject(t, root, "proj-b", "/workspace/b")

	cached, err := s.ListProjects()
	require.NoError(t, err)
	require.Len(t, cached, 1, "second call within TTL should hit the cache")

	fake.Advance(2 * time.Minute)
	fresh, err := s.ListProjects()
	require.NoError(t, err)
	require.Len(t, fresh, 2, "call after TTL expiry should rescan")
}

func TestInvalidateForcesRescan(t *testing.T) {
	root := t.TempDir()
	writeProject(t, root, "proj-a", "/workspace/a")

	s := Open(root, time.Minute, clock.NewFake(time.Unix(0, 0)))
	_, err := s.ListProjects()
	require.NoError(t, err)

	writeProject(t, root, "proj-b", "/workspace/b")
	s.Invalidate()

	fresh, err := s.ListProjects()
	require.NoError(t, err)
	require.Len(t, fresh, 2)
}
