package vfs

import (
	"database/sql"
	"time"

	"codegraph/internal/goerr"
	"codegraph/internal/ids"
	"codegraph/internal/vpath"
)

// Store persists workspaces and VNodes in SQLite, grounded on the
// teacher's table-per-concern schema style (internal/store/local.go,
// migrations.go) generalized to the VFS's (workspace_id, path) model.
type Store struct {
	db *sql.DB
}

// OpenStore creates (if needed) the workspace/vnode schema on db.
func OpenStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS workspace (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		type         TEXT NOT NULL,
		source_type  TEXT,
		namespace    TEXT,
		source_path  TEXT,
		read_only    INTEGER NOT NULL DEFAULT 0,
		parent_id    TEXT,
		created_at   INTEGER NOT NULL,
		updated_at   INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS vnode (
		id           TEXT PRIMARY KEY,
		workspace_id TEXT NOT NULL,
		path         TEXT NOT NULL,
		kind         TEXT NOT NULL,
		blob_hash    TEXT,
		size_bytes   INTEGER NOT NULL DEFAULT 0,
		version      INTEGER NOT NULL DEFAULT 1,
		language     TEXT,
		created_at   INTEGER NOT NULL,
		updated_at   INTEGER NOT NULL,
		UNIQUE(workspace_id, path)
	);
	CREATE INDEX IF NOT EXISTS idx_vnode_ws_path ON vnode(workspace_id, path);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return goerr.Wrap(goerr.StorageError, err, "vfs: migrate")
	}
	return nil
}

// CreateWorkspace inserts a new workspace row.
func (s *Store) CreateWorkspace(ws *Workspace) error {
	now := time.Now()
	ws.CreatedAt, ws.UpdatedAt = now, now
	var parent interface{}
	if ws.Parent != nil {
		parent = ws.Parent.String()
	}
	_, err := s.db.Exec(
		`INSERT INTO workspace (id, name, type, source_type, namespace, source_path, read_only, parent_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ws.ID.String(), ws.Name, string(ws.Type), ws.SourceType, ws.Namespace, ws.SourcePath,
		boolToInt(ws.ReadOnly), parent, now.Unix(), now.Unix(),
	)
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "vfs: create workspace")
	}
	return nil
}

// GetWorkspace fetches a workspace by ID.
func (s *Store) GetWorkspace(id ids.WorkspaceId) (*Workspace, error) {
	row := s.db.QueryRow(
		`SELECT id, name, type, source_type, namespace, source_path, read_only, parent_id, created_at, updated_at
		 FROM workspace WHERE id = ?`, id.String())
	return scanWorkspace(row)
}

func scanWorkspace(row *sql.Row) (*Workspace, error) {
	var (
		idStr, name, typ, sourceType, namespace, sourcePath string
		parentID                                            sql.NullString
		readOnly                                             int
		createdAt, updatedAt                                 int64
	)
	err := row.Scan(&idStr, &name, &typ, &sourceType, &namespace, &sourcePath, &readOnly, &parentID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, goerr.New(goerr.NotFound, "vfs: workspace not found")
	}
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "vfs: scan workspace")
	}
	ws := &Workspace{
		Name: name, Type: WorkspaceType(typ), SourceType: sourceType,
		Namespace: namespace, SourcePath: sourcePath, ReadOnly: readOnly != 0,
		CreatedAt: time.Unix(createdAt, 0), UpdatedAt: time.Unix(updatedAt, 0),
	}
	parsedID, err := parseWorkspaceID(idStr)
	if err != nil {
		return nil, err
	}
	ws.ID = parsedID
	if parentID.Valid {
		pid, err := parseWorkspaceID(parentID.String)
		if err != nil {
			return nil, err
		}
		ws.Parent = &pid
	}
	return ws, nil
}

// DeleteWorkspace deletes ws and all its VNodes. Blob refcounts for every
// deleted VNode are the caller's responsibility to release (the VFS layer
// does this, since only it holds the content store handle) — matching
// spec §3 "Deleting a workspace deletes all its VNodes (and decrements
// blob refcounts)".
func (s *Store) DeleteWorkspace(id ids.WorkspaceId) error {
	if _, err := s.db.Exec(`DELETE FROM vnode WHERE workspace_id = ?`, id.String()); err != nil {
		return goerr.Wrap(goerr.StorageError, err, "vfs: delete workspace vnodes")
	}
	_, err := s.db.Exec(`DELETE FROM workspace WHERE id = ?`, id.String())
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "vfs: delete workspace")
	}
	return nil
}

// ListVNodesInWorkspace returns every VNode owned by ws (used by
// DeleteWorkspace to release blob refcounts before removing rows).
func (s *Store) ListVNodesInWorkspace(ws ids.WorkspaceId) ([]*VNode, error) {
	rows, err := s.db.Query(
		`SELECT id, workspace_id, path, kind, blob_hash, size_bytes, version, language, created_at, updated_at
		 FROM vnode WHERE workspace_id = ?`, ws.String())
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "vfs: list vnodes in workspace")
	}
	defer rows.Close()
	return scanVNodes(rows)
}

// GetVNode fetches a VNode by (workspace, path).
func (s *Store) GetVNode(ws ids.WorkspaceId, p vpath.Path) (*VNode, error) {
	row := s.db.QueryRow(
		`SELECT id, workspace_id, path, kind, blob_hash, size_bytes, version, language, created_at, updated_at
		 FROM vnode WHERE workspace_id = ? AND path = ?`, ws.String(), p.String())
	return scanVNode(row)
}

// GetVNodeByID fetches a VNode by its own ID.
func (s *Store) GetVNodeByID(id ids.VNodeId) (*VNode, error) {
	row := s.db.QueryRow(
		`SELECT id, workspace_id, path, kind, blob_hash, size_bytes, version, language, created_at, updated_at
		 FROM vnode WHERE id = ?`, id.String())
	return scanVNode(row)
}

// ListDirectory returns children of dir (direct children if !recursive,
// every descendant otherwise), ordered byte-lexicographically by path as
// required by spec §4.2.
func (s *Store) ListDirectory(ws ids.WorkspaceId, dir vpath.Path, recursive bool) ([]*VNode, error) {
	rows, err := s.db.Query(
		`SELECT id, workspace_id, path, kind, blob_hash, size_bytes, version, language, created_at, updated_at
		 FROM vnode WHERE workspace_id = ? ORDER BY path ASC`, ws.String())
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "vfs: list directory")
	}
	defer rows.Close()
	all, err := scanVNodes(rows)
	if err != nil {
		return nil, err
	}

	var out []*VNode
	for _, n := range all {
		if n.Path.Equal(dir) {
			continue
		}
		if !n.Path.StartsWith(dir) {
			continue
		}
		if !recursive {
			relDepth := len(n.Path.Segments()) - len(dir.Segments())
			if relDepth != 1 {
				continue
			}
		}
		out = append(out, n)
	}
	return out, nil
}

// insertVNode inserts a brand-new VNode row at version 1.
func (s *Store) insertVNode(n *VNode) error {
	now := time.Now()
	n.CreatedAt, n.UpdatedAt = now, now
	n.Version = 1
	var blob interface{}
	if n.Blob != nil {
		blob = n.Blob.String()
	}
	_, err := s.db.Exec(
		`INSERT INTO vnode (id, workspace_id, path, kind, blob_hash, size_bytes, version, language, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID.String(), n.WorkspaceID.String(), n.Path.String(), string(n.Kind), blob,
		n.SizeBytes, n.Version, n.Language, now.Unix(), now.Unix(),
	)
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "vfs: insert vnode")
	}
	return nil
}

// updateVNodeVersioned performs the optimistic-concurrency update used by
// update_file (spec §4.2/§8 invariant #4): only succeeds if the current
// version equals expectedVersion, and the resulting version is
// expectedVersion + 1.
func (s *Store) updateVNodeVersioned(ws ids.WorkspaceId, p vpath.Path, blob *ids.ContentHash, size int64, expectedVersion int64) (*VNode, error) {
	now := time.Now()
	var blobVal interface{}
	if blob != nil {
		blobVal = blob.String()
	}
	res, err := s.db.Exec(
		`UPDATE vnode SET blob_hash = ?, size_bytes = ?, version = version + 1, updated_at = ?
		 WHERE workspace_id = ? AND path = ? AND version = ?`,
		blobVal, size, now.Unix(), ws.String(), p.String(), expectedVersion,
	)
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "vfs: update vnode")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "vfs: update vnode rows affected")
	}
	if n == 0 {
		// Either the node doesn't exist, or its version moved on.
		existing, getErr := s.GetVNode(ws, p)
		if getErr != nil {
			return nil, getErr
		}
		return nil, goerr.New(goerr.VersionConflict,
			"vfs: expected version %d but current version is %d for %s", expectedVersion, existing.Version, p)
	}
	return s.GetVNode(ws, p)
}

// deleteVNode removes a VNode row.
func (s *Store) deleteVNode(ws ids.WorkspaceId, p vpath.Path) error {
	_, err := s.db.Exec(`DELETE FROM vnode WHERE workspace_id = ? AND path = ?`, ws.String(), p.String())
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "vfs: delete vnode")
	}
	return nil
}

func scanVNodes(rows *sql.Rows) ([]*VNode, error) {
	var out []*VNode
	for rows.Next() {
		n, err := scanVNodeRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVNode(row *sql.Row) (*VNode, error) {
	n, err := scanVNodeRow(row)
	if err == sql.ErrNoRows {
		return nil, goerr.New(goerr.NotFound, "vfs: node not found")
	}
	return n, err
}

func scanVNodeRow(row rowScanner) (*VNode, error) {
	var (
		idStr, wsStr, pathStr, kind, language string
		blobHash                              sql.NullString
		sizeBytes, version, createdAt, updatedAt int64
	)
	if err := row.Scan(&idStr, &wsStr, &pathStr, &kind, &blobHash, &sizeBytes, &version, &language, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, goerr.Wrap(goerr.StorageError, err, "vfs: scan vnode")
	}
	n := &VNode{
		Path: vpath.New(pathStr), Kind: Kind(kind), SizeBytes: sizeBytes,
		Version: version, Language: language,
		CreatedAt: time.Unix(createdAt, 0), UpdatedAt: time.Unix(updatedAt, 0),
	}
	id, err := parseVNodeID(idStr)
	if err != nil {
		return nil, err
	}
	n.ID = id
	wsID, err := parseWorkspaceID(wsStr)
	if err != nil {
		return nil, err
	}
	n.WorkspaceID = wsID
	if blobHash.Valid {
		h, err := ids.ParseContentHash(blobHash.String)
		if err != nil {
			return nil, goerr.Wrap(goerr.StorageError, err, "vfs: parse blob hash")
		}
		n.Blob = &h
	}
	return n, nil
}

func parseWorkspaceID(s string) (ids.WorkspaceId, error) {
	id, err := ids.ParseWorkspaceId(s)
	if err != nil {
		return id, goerr.Wrap(goerr.StorageError, err, "vfs: corrupt workspace id %q", s)
	}
	return id, nil
}

func parseVNodeID(s string) (ids.VNodeId, error) {
	id, err := ids.ParseVNodeId(s)
	if err != nil {
		return id, goerr.Wrap(goerr.StorageError, err, "vfs: corrupt vnode id %q", s)
	}
	return id, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
