// Package vfs implements the virtual file system: a workspace-scoped,
// content-addressed tree of documents and directories layered over the
// physical filesystem. Code files are read-only through this layer by
// policy (see policy.go); only documents, reports, and configuration may
// be created or mutated here.
package vfs

import (
	"sync"

	"codegraph/internal/contentstore"
	"codegraph/internal/goerr"
	"codegraph/internal/ids"
	"codegraph/internal/logging"
	"codegraph/internal/vpath"
)

// VFS is the service-layer entry point for every VNode operation in
// spec §4.2. It composes the relational Store (workspace/vnode rows)
// with the ContentStore (deduplicated blob bytes), applying the write
// policy and optimistic-concurrency checks at the boundary between them.
type VFS struct {
	store         *Store
	blobs         *contentstore.Store
	defaultPolicy PolicySet
	log           *logging.Logger

	pathLocksMu sync.Mutex
	pathLocks   map[string]*sync.Mutex
}

// New builds a VFS over an already-migrated Store and ContentStore. The
// code-file extensions given become the default write-rejection policy;
// a per-workspace Workspace.AllowedWritePolicy overrides it.
func New(store *Store, blobs *contentstore.Store, codeExtensions []string) *VFS {
	return &VFS{
		store:         store,
		blobs:         blobs,
		defaultPolicy: NewPolicySet(codeExtensions),
		log:           logging.Get(logging.CategoryVFS),
		pathLocks:     make(map[string]*sync.Mutex),
	}
}

// pathLock returns a mutex scoped to (workspace, path), serializing
// concurrent writers so the optimistic-concurrency read-modify-write
// cycle below never races against itself in-process. Cross-process
// races still fall through to the SQL version check.
func (v *VFS) pathLock(ws ids.WorkspaceId, p vpath.Path) *sync.Mutex {
	key := ws.String() + ":" + p.String()
	v.pathLocksMu.Lock()
	defer v.pathLocksMu.Unlock()
	m, ok := v.pathLocks[key]
	if !ok {
		m = &sync.Mutex{}
		v.pathLocks[key] = m
	}
	return m
}

// CreateWorkspace registers a new workspace, assigning an ID if unset.
func (v *VFS) CreateWorkspace(ws *Workspace) (*Workspace, error) {
	if ws.ID.IsZero() {
		ws.ID = ids.NewWorkspaceId()
	}
	if err := v.store.CreateWorkspace(ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// GetWorkspace fetches a workspace by ID.
func (v *VFS) GetWorkspace(id ids.WorkspaceId) (*Workspace, error) {
	return v.store.GetWorkspace(id)
}

// DeleteWorkspace removes ws and every VNode it owns, releasing a blob
// refcount for each file along the way (spec §3).
func (v *VFS) DeleteWorkspace(id ids.WorkspaceId) error {
	nodes, err := v.store.ListVNodesInWorkspace(id)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if n.Blob != nil {
			if err := v.blobs.Release(*n.Blob); err != nil && !goerr.Is(err, goerr.NotFound) {
				return err
			}
		}
	}
	return v.store.DeleteWorkspace(id)
}

// ensureParentDirs walks p's ancestor chain outward-in from the root,
// inserting any missing Directory VNode along the way, so that file and
// directory creation never leaves a gap in the tree (spec §3: "parent
// directories are implicitly created on file write").
func (v *VFS) ensureParentDirs(ws ids.WorkspaceId, p vpath.Path) error {
	parent := p.Parent()
	if parent.IsRoot() {
		return nil
	}

	var chain []vpath.Path
	for cur := parent; !cur.IsRoot(); cur = cur.Parent() {
		chain = append(chain, cur)
	}

	for i := len(chain) - 1; i >= 0; i-- {
		dir := chain[i]
		existing, err := v.store.GetVNode(ws, dir)
		if err == nil {
			if !existing.IsDirectory() {
				return goerr.New(goerr.InvalidInput, "vfs: %s exists and is not a directory", dir)
			}
			continue
		}
		if !goerr.Is(err, goerr.NotFound) {
			return err
		}
		n := &VNode{
			ID:          ids.NewVNodeId(),
			WorkspaceID: ws,
			Path:        dir,
			Kind:        KindDirectory,
		}
		if err := v.store.insertVNode(n); err != nil {
			return err
		}
	}
	return nil
}

// CreateFile creates a new document at p with the given content. Fails
// with AlreadyExists if a node already occupies p, and with
// PolicyRejected if p's extension is in the write-rejection set.
func (v *VFS) CreateFile(ws *Workspace, p vpath.Path, content []byte, language string) (*VNode, error) {
	if err := checkWritePolicy(ws, p, v.defaultPolicy); err != nil {
		return nil, err
	}
	lock := v.pathLock(ws.ID, p)
	lock.Lock()
	defer lock.Unlock()

	if _, err := v.store.GetVNode(ws.ID, p); err == nil {
		return nil, goerr.New(goerr.AlreadyExists, "vfs: node already exists at %s", p)
	} else if !goerr.Is(err, goerr.NotFound) {
		return nil, err
	}

	if err := v.ensureParentDirs(ws.ID, p); err != nil {
		return nil, err
	}

	hash, err := v.blobs.Put(content)
	if err != nil {
		return nil, err
	}
	n := &VNode{
		ID:          ids.NewVNodeId(),
		WorkspaceID: ws.ID,
		Path:        p,
		Kind:        KindFile,
		Blob:        &hash,
		SizeBytes:   int64(len(content)),
		Language:    language,
	}
	if err := v.store.insertVNode(n); err != nil {
		_ = v.blobs.Release(hash)
		return nil, err
	}
	return n, nil
}

// WriteFile unconditionally replaces the content at p, creating the node
// if it does not already exist. Unlike UpdateFile it performs no
// optimistic-concurrency check; callers that need one should use
// UpdateFile instead.
func (v *VFS) WriteFile(ws *Workspace, p vpath.Path, content []byte, language string) (*VNode, error) {
	if err := checkWritePolicy(ws, p, v.defaultPolicy); err != nil {
		return nil, err
	}
	lock := v.pathLock(ws.ID, p)
	lock.Lock()
	defer lock.Unlock()

	existing, err := v.store.GetVNode(ws.ID, p)
	if goerr.Is(err, goerr.NotFound) {
		// CreateFile takes this same path lock, so release it first.
		lock.Unlock()
		n, createErr := v.CreateFile(ws, p, content, language)
		lock.Lock()
		return n, createErr
	}
	if err != nil {
		return nil, err
	}

	hash, err := v.blobs.Put(content)
	if err != nil {
		return nil, err
	}
	updated, err := v.store.updateVNodeVersioned(ws.ID, p, &hash, int64(len(content)), existing.Version)
	if err != nil {
		_ = v.blobs.Release(hash)
		return nil, err
	}
	if existing.Blob != nil {
		_ = v.blobs.Release(*existing.Blob)
	}
	return updated, nil
}

// UpdateFile replaces the content at p only if its current version
// matches expectedVersion, implementing optimistic concurrency control
// (spec §8 invariant #4). On a mismatch it returns a VersionConflict.
func (v *VFS) UpdateFile(ws *Workspace, p vpath.Path, content []byte, expectedVersion int64) (*VNode, error) {
	if err := checkWritePolicy(ws, p, v.defaultPolicy); err != nil {
		return nil, err
	}
	lock := v.pathLock(ws.ID, p)
	lock.Lock()
	defer lock.Unlock()

	existing, err := v.store.GetVNode(ws.ID, p)
	if err != nil {
		return nil, err
	}

	hash, err := v.blobs.Put(content)
	if err != nil {
		return nil, err
	}
	updated, err := v.store.updateVNodeVersioned(ws.ID, p, &hash, int64(len(content)), expectedVersion)
	if err != nil {
		_ = v.blobs.Release(hash)
		return nil, err
	}
	if existing.Blob != nil {
		_ = v.blobs.Release(*existing.Blob)
	}
	return updated, nil
}

// ReadFile returns the node metadata and its blob content.
func (v *VFS) ReadFile(ws ids.WorkspaceId, p vpath.Path) (*VNode, []byte, error) {
	n, err := v.store.GetVNode(ws, p)
	if err != nil {
		return nil, nil, err
	}
	if n.IsDirectory() {
		return nil, nil, goerr.New(goerr.InvalidInput, "vfs: %s is a directory, not a file", p)
	}
	if n.Blob == nil {
		return n, nil, nil
	}
	content, err := v.blobs.Get(*n.Blob)
	if err != nil {
		return nil, nil, err
	}
	return n, content, nil
}

// Delete removes the node at p. Directories require recursive=true if
// they contain children, mirroring spec §4.2's DirectoryNotEmpty guard.
func (v *VFS) Delete(ws *Workspace, p vpath.Path, recursive bool) error {
	if ws.ReadOnly {
		return goerr.New(goerr.ReadOnly, "vfs: workspace %s is read-only", ws.ID)
	}

	n, err := v.store.GetVNode(ws.ID, p)
	if err != nil {
		return err
	}
	if !n.IsDirectory() {
		if n.Blob != nil {
			if err := v.blobs.Release(*n.Blob); err != nil && !goerr.Is(err, goerr.NotFound) {
				return err
			}
		}
		return v.store.deleteVNode(ws.ID, p)
	}

	children, err := v.store.ListDirectory(ws.ID, p, true)
	if err != nil {
		return err
	}
	if len(children) > 0 && !recursive {
		return goerr.New(goerr.DirectoryNotEmpty, "vfs: directory %s is not empty", p)
	}
	for _, c := range children {
		if c.Blob != nil {
			if err := v.blobs.Release(*c.Blob); err != nil && !goerr.Is(err, goerr.NotFound) {
				return err
			}
		}
		if err := v.store.deleteVNode(ws.ID, c.Path); err != nil {
			return err
		}
	}
	return v.store.deleteVNode(ws.ID, p)
}

// CreateDirectory creates an empty directory node at p. Directories have
// no extension and are never subject to the write policy. When
// createParents is true, missing ancestor directories are created
// implicitly; otherwise a missing immediate parent fails NotFound.
func (v *VFS) CreateDirectory(ws *Workspace, p vpath.Path, createParents bool) (*VNode, error) {
	if ws.ReadOnly {
		return nil, goerr.New(goerr.ReadOnly, "vfs: workspace %s is read-only", ws.ID)
	}

	if _, err := v.store.GetVNode(ws.ID, p); err == nil {
		return nil, goerr.New(goerr.AlreadyExists, "vfs: node already exists at %s", p)
	} else if !goerr.Is(err, goerr.NotFound) {
		return nil, err
	}

	parent := p.Parent()
	if !parent.IsRoot() {
		if createParents {
			if err := v.ensureParentDirs(ws.ID, p); err != nil {
				return nil, err
			}
		} else if _, err := v.store.GetVNode(ws.ID, parent); err != nil {
			if goerr.Is(err, goerr.NotFound) {
				return nil, goerr.New(goerr.NotFound, "vfs: parent directory %s does not exist", parent)
			}
			return nil, err
		}
	}

	n := &VNode{
		ID:          ids.NewVNodeId(),
		WorkspaceID: ws.ID,
		Path:        p,
		Kind:        KindDirectory,
	}
	if err := v.store.insertVNode(n); err != nil {
		return nil, err
	}
	return n, nil
}

// ListDirectory lists the children of dir, recursively if requested.
func (v *VFS) ListDirectory(ws ids.WorkspaceId, dir vpath.Path, recursive bool) ([]*VNode, error) {
	return v.store.ListDirectory(ws, dir, recursive)
}

// Metadata returns a node's record without reading its blob content.
func (v *VFS) Metadata(ws ids.WorkspaceId, p vpath.Path) (*VNode, error) {
	return v.store.GetVNode(ws, p)
}

// Exists reports whether a node occupies p.
func (v *VFS) Exists(ws ids.WorkspaceId, p vpath.Path) (bool, error) {
	_, err := v.store.GetVNode(ws, p)
	if goerr.Is(err, goerr.NotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetVNodeByID fetches a node by its own identifier, independent of its
// current path.
func (v *VFS) GetVNodeByID(id ids.VNodeId) (*VNode, error) {
	return v.store.GetVNodeByID(id)
}

// Move renames a node from one path to another within the same
// workspace. The destination is subject to the write policy exactly as
// CreateFile would be, since a move onto a code-file path is indistinct
// from writing one.
func (v *VFS) Move(ws *Workspace, from, to vpath.Path) (*VNode, error) {
	if err := checkWritePolicy(ws, to, v.defaultPolicy); err != nil {
		return nil, err
	}
	n, err := v.store.GetVNode(ws.ID, from)
	if err != nil {
		return nil, err
	}
	if _, err := v.store.GetVNode(ws.ID, to); err == nil {
		return nil, goerr.New(goerr.AlreadyExists, "vfs: node already exists at %s", to)
	} else if !goerr.Is(err, goerr.NotFound) {
		return nil, err
	}

	if err := v.store.deleteVNode(ws.ID, from); err != nil {
		return nil, err
	}
	n.Path = to
	if err := v.store.insertVNode(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Copy duplicates the node at from into a new node at to. Files share
// the source's content blob (its refcount is retained, not the bytes
// copied); directories are copied recursively, retaining a blob per
// descendant file (spec §4.2: copy is "recursive if source is a
// directory").
func (v *VFS) Copy(ws *Workspace, from, to vpath.Path) (*VNode, error) {
	if err := checkWritePolicy(ws, to, v.defaultPolicy); err != nil {
		return nil, err
	}
	src, err := v.store.GetVNode(ws.ID, from)
	if err != nil {
		return nil, err
	}
	if _, err := v.store.GetVNode(ws.ID, to); err == nil {
		return nil, goerr.New(goerr.AlreadyExists, "vfs: node already exists at %s", to)
	} else if !goerr.Is(err, goerr.NotFound) {
		return nil, err
	}

	if src.IsDirectory() {
		return v.copyDirectory(ws, from, to)
	}

	if src.Blob != nil {
		if err := v.blobs.Retain(*src.Blob); err != nil {
			return nil, err
		}
	}
	n := &VNode{
		ID:          ids.NewVNodeId(),
		WorkspaceID: ws.ID,
		Path:        to,
		Kind:        KindFile,
		Blob:        src.Blob,
		SizeBytes:   src.SizeBytes,
		Language:    src.Language,
	}
	if err := v.store.insertVNode(n); err != nil {
		if src.Blob != nil {
			_ = v.blobs.Release(*src.Blob)
		}
		return nil, err
	}
	return n, nil
}

// copyDirectory duplicates the subtree rooted at from into to, remapping
// every descendant's from-prefix onto the to-prefix and retaining a blob
// refcount for each descendant file copied. The caller has already
// verified to does not exist and from is a directory.
func (v *VFS) copyDirectory(ws *Workspace, from, to vpath.Path) (*VNode, error) {
	children, err := v.store.ListDirectory(ws.ID, from, true)
	if err != nil {
		return nil, err
	}

	root := &VNode{
		ID:          ids.NewVNodeId(),
		WorkspaceID: ws.ID,
		Path:        to,
		Kind:        KindDirectory,
	}
	if err := v.store.insertVNode(root); err != nil {
		return nil, err
	}

	fromDepth := len(from.Segments())
	for _, c := range children {
		rel := c.Path.Segments()[fromDepth:]
		dest := to.Join(rel...)

		if c.IsDirectory() {
			n := &VNode{
				ID:          ids.NewVNodeId(),
				WorkspaceID: ws.ID,
				Path:        dest,
				Kind:        KindDirectory,
			}
			if err := v.store.insertVNode(n); err != nil {
				return nil, err
			}
			continue
		}

		if c.Blob != nil {
			if err := v.blobs.Retain(*c.Blob); err != nil {
				return nil, err
			}
		}
		n := &VNode{
			ID:          ids.NewVNodeId(),
			WorkspaceID: ws.ID,
			Path:        dest,
			Kind:        KindFile,
			Blob:        c.Blob,
			SizeBytes:   c.SizeBytes,
			Language:    c.Language,
		}
		if err := v.store.insertVNode(n); err != nil {
			if c.Blob != nil {
				_ = v.blobs.Release(*c.Blob)
			}
			return nil, err
		}
	}
	return root, nil
}
