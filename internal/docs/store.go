package docs

import (
	"database/sql"
	"encoding/json"
	"time"

	"codegraph/internal/goerr"
	"codegraph/internal/ids"
	"codegraph/internal/logging"
)

// Store persists processed documents, following the same
// create-table-if-missing, mutex-free (the *sql.DB pool serializes
// access) shape the teacher uses for its knowledge atoms.
type Store struct {
	db *sql.DB
}

// Open migrates the documents schema and returns a ready Store.
func Open(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS doc_document (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			content_type TEXT NOT NULL,
			text_content TEXT NOT NULL,
			metadata TEXT NOT NULL,
			symbol_id TEXT,
			ingested_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_doc_document_path ON doc_document(path);
		CREATE INDEX IF NOT EXISTS idx_doc_document_symbol ON doc_document(symbol_id);
	`)
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "migrate doc_document schema")
	}
	return nil
}

// Ingest processes raw document bytes and persists the result, replacing
// any prior record at the same path.
func (s *Store) Ingest(path string, raw []byte, symbolID *ids.UnitId, now time.Time) (Document, error) {
	timer := logging.StartTimer(logging.CategoryDocs, "Ingest")
	defer timer.Stop()

	processed, err := ProcessPath(path, raw)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:          ids.NewVNodeId(),
		Path:        path,
		ContentType: processed.ContentType,
		TextContent: processed.TextContent,
		Metadata:    processed.Metadata,
		SymbolID:    symbolID,
		IngestedAt:  now,
	}

	metaJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return Document{}, goerr.Wrap(goerr.Internal, err, "marshal document metadata")
	}

	var symbolStr interface{}
	if symbolID != nil {
		symbolStr = symbolID.String()
	}

	_, err = s.db.Exec(`
		INSERT INTO doc_document (id, path, content_type, text_content, metadata, symbol_id, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, doc.ID.String(), doc.Path, string(doc.ContentType), doc.TextContent, string(metaJSON), symbolStr, doc.IngestedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return Document{}, goerr.Wrap(goerr.StorageError, err, "insert doc_document")
	}

	// A re-ingest of the same path keeps only the newest record.
	_, err = s.db.Exec(`DELETE FROM doc_document WHERE path = ? AND id != ?`, doc.Path, doc.ID.String())
	if err != nil {
		return Document{}, goerr.Wrap(goerr.StorageError, err, "prune stale doc_document rows")
	}

	logging.Get(logging.CategoryDocs).Debug("ingested document path=%s type=%s chunks=%d", path, processed.ContentType, len(processed.Chunks))
	return doc, nil
}

func scanDocument(row interface{ Scan(dest ...interface{}) error }) (Document, error) {
	var d Document
	var id, contentType, metaJSON, ingestedAt string
	var symbolID sql.NullString
	if err := row.Scan(&id, &d.Path, &contentType, &d.TextContent, &metaJSON, &symbolID, &ingestedAt); err != nil {
		return Document{}, err
	}

	parsedID, err := ids.ParseVNodeId(id)
	if err != nil {
		return Document{}, goerr.Wrap(goerr.Internal, err, "parse stored document id")
	}
	d.ID = parsedID
	d.ContentType = ContentType(contentType)

	if err := json.Unmarshal([]byte(metaJSON), &d.Metadata); err != nil {
		return Document{}, goerr.Wrap(goerr.Internal, err, "unmarshal document metadata")
	}

	if symbolID.Valid && symbolID.String != "" {
		uid, err := ids.ParseUnitId(symbolID.String)
		if err == nil {
			d.SymbolID = &uid
		}
	}

	t, err := time.Parse(time.RFC3339Nano, ingestedAt)
	if err == nil {
		d.IngestedAt = t
	}
	return d, nil
}

const documentColumns = "id, path, content_type, text_content, metadata, symbol_id, ingested_at"

// ByPath returns the document stored at path, if any.
func (s *Store) ByPath(path string) (Document, error) {
	row := s.db.QueryRow(`SELECT `+documentColumns+` FROM doc_document WHERE path = ?`, path)
	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return Document{}, goerr.New(goerr.NotFound, "no document at path %q", path)
	}
	if err != nil {
		return Document{}, goerr.Wrap(goerr.StorageError, err, "query doc_document by path")
	}
	return d, nil
}

// BySymbol returns documents explicitly linked to a symbol via SymbolID.
func (s *Store) BySymbol(symbolID ids.UnitId) ([]Document, error) {
	rows, err := s.db.Query(`SELECT `+documentColumns+` FROM doc_document WHERE symbol_id = ?`, symbolID.String())
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "query doc_document by symbol")
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// ResolveBySymbolName implements the spec's fallback path: when no
// document carries symbol_id, find documents whose content mentions the
// symbol's name as a plain substring.
func (s *Store) ResolveBySymbolName(name string) ([]Document, error) {
	rows, err := s.db.Query(`SELECT `+documentColumns+` FROM doc_document WHERE text_content LIKE ?`, "%"+name+"%")
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "resolve document by symbol name")
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func collectDocuments(rows *sql.Rows) ([]Document, error) {
	var out []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Delete removes the document stored at path.
func (s *Store) Delete(path string) error {
	_, err := s.db.Exec(`DELETE FROM doc_document WHERE path = ?`, path)
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "delete doc_document")
	}
	return nil
}
