package codeunit

import (
	"database/sql"
	"encoding/json"
	"time"

	"codegraph/internal/goerr"
	"codegraph/internal/ids"
)

// Store persists code units in SQLite, grounded on
// internal/vfs/store.go's table-per-concern migrate/scan idiom and
// internal/store/local_knowledge.go's JSON-column serialization for
// slice-valued fields (there, Tags; here, Dependencies).
type Store struct {
	db *sql.DB
}

// OpenStore creates (if needed) the code_unit schema on db.
func OpenStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS code_unit (
		id             TEXT PRIMARY KEY,
		workspace_id   TEXT NOT NULL,
		kind           TEXT NOT NULL,
		name           TEXT NOT NULL,
		qualified_name TEXT NOT NULL,
		display_name   TEXT,
		file_path      TEXT NOT NULL,
		language       TEXT,
		start_line     INTEGER NOT NULL,
		end_line       INTEGER NOT NULL,
		start_col      INTEGER NOT NULL,
		end_col        INTEGER NOT NULL,
		signature      TEXT,
		body           TEXT,
		docstring      TEXT,
		visibility     TEXT,
		is_async       INTEGER NOT NULL DEFAULT 0,
		is_exported    INTEGER NOT NULL DEFAULT 0,
		cyclomatic     INTEGER NOT NULL DEFAULT 0,
		cognitive      INTEGER NOT NULL DEFAULT 0,
		nesting        INTEGER NOT NULL DEFAULT 0,
		lines          INTEGER NOT NULL DEFAULT 0,
		dependencies   TEXT,
		version        INTEGER NOT NULL DEFAULT 1,
		created_at     INTEGER NOT NULL,
		updated_at     INTEGER NOT NULL,
		UNIQUE(workspace_id, qualified_name)
	);
	CREATE INDEX IF NOT EXISTS idx_code_unit_ws ON code_unit(workspace_id);
	CREATE INDEX IF NOT EXISTS idx_code_unit_ws_qname ON code_unit(workspace_id, qualified_name);
	CREATE INDEX IF NOT EXISTS idx_code_unit_file ON code_unit(workspace_id, file_path);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return goerr.Wrap(goerr.StorageError, err, "codeunit: migrate")
	}
	return nil
}

// Insert inserts a brand-new code unit at version 1.
func (s *Store) Insert(u *CodeUnit) error {
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	u.Version = 1
	deps, err := marshalDeps(u.Dependencies)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO code_unit (
			id, workspace_id, kind, name, qualified_name, display_name, file_path, language,
			start_line, end_line, start_col, end_col, signature, body, docstring, visibility,
			is_async, is_exported, cyclomatic, cognitive, nesting, lines, dependencies,
			version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.WorkspaceID.String(), string(u.Kind), u.Name, u.QualifiedName, u.DisplayName,
		u.FilePath, u.Language, u.StartLine, u.EndLine, u.StartCol, u.EndCol, u.Signature, u.Body,
		u.Docstring, string(u.Visibility), boolToInt(u.IsAsync), boolToInt(u.IsExported),
		u.Complexity.Cyclomatic, u.Complexity.Cognitive, u.Complexity.Nesting, u.Complexity.Lines,
		deps, u.Version, now.Unix(), now.Unix(),
	)
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "codeunit: insert")
	}
	return nil
}

// UpdateVersioned performs the optimistic-concurrency update
// update_code_unit uses when expected_version is provided: only
// succeeds if the stored version equals expectedVersion.
func (s *Store) UpdateVersioned(id ids.UnitId, body, docstring *string, expectedVersion *int64) (*CodeUnit, error) {
	current, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if expectedVersion != nil && current.Version != *expectedVersion {
		return nil, goerr.New(goerr.VersionConflict,
			"codeunit: expected version %d but current version is %d for %s", *expectedVersion, current.Version, id)
	}
	if body != nil {
		current.Body = *body
	}
	if docstring != nil {
		current.Docstring = *docstring
	}
	now := time.Now()
	res, err := s.db.Exec(
		`UPDATE code_unit SET body = ?, docstring = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		current.Body, current.Docstring, now.Unix(), id.String(), current.Version,
	)
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "codeunit: update")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "codeunit: update rows affected")
	}
	if n == 0 {
		return nil, goerr.New(goerr.VersionConflict, "codeunit: concurrent update raced for %s", id)
	}
	return s.Get(id)
}

// Delete removes a code unit row.
func (s *Store) Delete(id ids.UnitId) error {
	_, err := s.db.Exec(`DELETE FROM code_unit WHERE id = ?`, id.String())
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "codeunit: delete")
	}
	return nil
}

// Get fetches a code unit by ID.
func (s *Store) Get(id ids.UnitId) (*CodeUnit, error) {
	row := s.db.QueryRow(selectColumns+`FROM code_unit WHERE id = ?`, id.String())
	return scanUnit(row)
}

// GetByQualifiedName fetches a code unit by its workspace-unique name.
func (s *Store) GetByQualifiedName(ws ids.WorkspaceId, qname string) (*CodeUnit, error) {
	row := s.db.QueryRow(selectColumns+`FROM code_unit WHERE workspace_id = ? AND qualified_name = ?`,
		ws.String(), qname)
	return scanUnit(row)
}

// ListFilter narrows List's results; zero-value fields are ignored.
type ListFilter struct {
	Kind     UnitKind
	Language string
	FilePath string
}

// List returns every code unit in ws matching filter, up to limit (0
// means unbounded), ordered by qualified_name for deterministic
// pagination.
func (s *Store) List(ws ids.WorkspaceId, filter ListFilter, limit int) ([]*CodeUnit, error) {
	query := selectColumns + `FROM code_unit WHERE workspace_id = ?`
	args := []interface{}{ws.String()}
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	if filter.Language != "" {
		query += ` AND language = ?`
		args = append(args, filter.Language)
	}
	if filter.FilePath != "" {
		query += ` AND file_path = ?`
		args = append(args, filter.FilePath)
	}
	query += ` ORDER BY qualified_name ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "codeunit: list")
	}
	defer rows.Close()
	return scanUnits(rows)
}

// BatchGet fetches every id present in the store, skipping misses
// silently (the caller, codeunit.Service, likewise returns only the
// units it found).
func (s *Store) BatchGet(idList []ids.UnitId) ([]*CodeUnit, error) {
	var out []*CodeUnit
	for _, id := range idList {
		u, err := s.Get(id)
		if err != nil {
			if goerr.KindOf(err) == goerr.NotFound {
				continue
			}
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

const selectColumns = `SELECT id, workspace_id, kind, name, qualified_name, display_name, file_path, language,
	start_line, end_line, start_col, end_col, signature, body, docstring, visibility,
	is_async, is_exported, cyclomatic, cognitive, nesting, lines, dependencies,
	version, created_at, updated_at `

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUnits(rows *sql.Rows) ([]*CodeUnit, error) {
	var out []*CodeUnit
	for rows.Next() {
		u, err := scanUnitRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUnit(row *sql.Row) (*CodeUnit, error) {
	u, err := scanUnitRow(row)
	if err == sql.ErrNoRows {
		return nil, goerr.New(goerr.NotFound, "codeunit: not found")
	}
	return u, err
}

func scanUnitRow(row rowScanner) (*CodeUnit, error) {
	var (
		idStr, wsStr, kind, name, qname, displayName, filePath, language string
		signature, body, docstring, visibility, deps                    sql.NullString
		startLine, endLine, startCol, endCol                             int
		isAsync, isExported                                              int
		cyclomatic, cognitive, nesting, lines                            int
		version, createdAt, updatedAt                                    int64
	)
	err := row.Scan(&idStr, &wsStr, &kind, &name, &qname, &displayName, &filePath, &language,
		&startLine, &endLine, &startCol, &endCol, &signature, &body, &docstring, &visibility,
		&isAsync, &isExported, &cyclomatic, &cognitive, &nesting, &lines, &deps,
		&version, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, goerr.Wrap(goerr.StorageError, err, "codeunit: scan")
	}

	id, err := ids.ParseUnitId(idStr)
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "codeunit: corrupt id %q", idStr)
	}
	wsID, err := ids.ParseWorkspaceId(wsStr)
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "codeunit: corrupt workspace id %q", wsStr)
	}
	dependencies, err := unmarshalDeps(deps.String)
	if err != nil {
		return nil, err
	}

	return &CodeUnit{
		ID: id, WorkspaceID: wsID, Kind: UnitKind(kind), Name: name, QualifiedName: qname,
		DisplayName: displayName, FilePath: filePath, Language: language,
		StartLine: startLine, EndLine: endLine, StartCol: startCol, EndCol: endCol,
		Signature: signature.String, Body: body.String, Docstring: docstring.String,
		Visibility: Visibility(visibility.String), IsAsync: isAsync != 0, IsExported: isExported != 0,
		Complexity:   Complexity{Cyclomatic: cyclomatic, Cognitive: cognitive, Nesting: nesting, Lines: lines},
		Dependencies: dependencies, Version: version,
		CreatedAt: time.Unix(createdAt, 0), UpdatedAt: time.Unix(updatedAt, 0),
	}, nil
}

func marshalDeps(deps []ids.UnitId) (string, error) {
	names := make([]string, len(deps))
	for i, d := range deps {
		names[i] = d.String()
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "", goerr.Wrap(goerr.Internal, err, "codeunit: marshal dependencies")
	}
	return string(b), nil
}

func unmarshalDeps(s string) ([]ids.UnitId, error) {
	if s == "" {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(s), &names); err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "codeunit: unmarshal dependencies")
	}
	out := make([]ids.UnitId, len(names))
	for i, n := range names {
		id, err := ids.ParseUnitId(n)
		if err != nil {
			return nil, goerr.Wrap(goerr.StorageError, err, "codeunit: corrupt dependency id %q", n)
		}
		out[i] = id
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
