package search

import (
	"database/sql"
	"sync"

	"codegraph/internal/goerr"
	"codegraph/internal/logging"
)

type opKind int

const (
	opPut opKind = iota
	opDelete
)

type pendingOp struct {
	kind opKind
	doc  Document
	id   string
}

// Index is the buffered, explicitly-committed search index spec §4.9
// requires. Writes queue in memory via Put/DeleteSymbol and only reach
// SQLite on Commit, mirroring the teacher's
// StoreVectorBatchWithEmbedding transaction-batching idiom
// (internal/store/vector_store.go) generalized from "one batch insert"
// to "arbitrary buffered puts and deletes flushed together".
type Index struct {
	mu        sync.Mutex
	db        *sql.DB
	vectorExt bool
	pending   []pendingOp
}

// Open creates (if needed) the search schema on db and detects whether
// the sqlite-vec extension is available, the same probe-table approach
// internal/store/local.go's detectVecExtension uses.
func Open(db *sql.DB) (*Index, error) {
	idx := &Index{db: db}
	if err := idx.migrate(); err != nil {
		return nil, err
	}
	idx.vectorExt = idx.detectVecExtension()
	return idx, nil
}

func (idx *Index) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS search_document (
		id             TEXT PRIMARY KEY,
		entity_type    TEXT NOT NULL,
		name           TEXT,
		qualified_name TEXT NOT NULL,
		signature      TEXT,
		body           TEXT,
		docstring      TEXT,
		file_path      TEXT,
		language       TEXT,
		kind           TEXT,
		content        TEXT,
		heading        TEXT,
		section_path   TEXT,
		doc_type       TEXT,
		doc_length     INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_search_document_qname ON search_document(qualified_name);
	CREATE INDEX IF NOT EXISTS idx_search_document_file ON search_document(file_path);
	CREATE INDEX IF NOT EXISTS idx_search_document_entity ON search_document(entity_type);

	CREATE TABLE IF NOT EXISTS search_posting (
		term     TEXT NOT NULL,
		doc_id   TEXT NOT NULL,
		term_freq INTEGER NOT NULL,
		PRIMARY KEY (term, doc_id)
	);
	CREATE INDEX IF NOT EXISTS idx_search_posting_term ON search_posting(term);
	CREATE INDEX IF NOT EXISTS idx_search_posting_doc ON search_posting(doc_id);

	CREATE TABLE IF NOT EXISTS search_embedding (
		doc_id    TEXT PRIMARY KEY,
		embedding BLOB NOT NULL
	);
	`
	if _, err := idx.db.Exec(schema); err != nil {
		return goerr.Wrap(goerr.StorageError, err, "search: migrate")
	}
	return nil
}

// detectVecExtension mirrors internal/store/local.go's probe: try
// creating a throwaway vec0 virtual table and see if it succeeds.
func (idx *Index) detectVecExtension() bool {
	_, err := idx.db.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS search_vec_probe USING vec0(embedding float[4])")
	return err == nil
}

// Put queues doc for indexing; it is not visible to queries until
// Commit.
func (idx *Index) Put(doc Document) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.pending = append(idx.pending, pendingOp{kind: opPut, doc: doc})
}

// DeleteSymbol queues removal of id's document, per spec §4.9.
func (idx *Index) DeleteSymbol(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.pending = append(idx.pending, pendingOp{kind: opDelete, id: id})
}

// Commit flushes every queued Put/DeleteSymbol in one transaction.
func (idx *Index) Commit() error {
	idx.mu.Lock()
	ops := idx.pending
	idx.pending = nil
	idx.mu.Unlock()

	if len(ops) == 0 {
		return nil
	}

	tx, err := idx.db.Begin()
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "search: commit begin")
	}

	for _, op := range ops {
		switch op.kind {
		case opPut:
			if err := idx.applyPut(tx, op.doc); err != nil {
				_ = tx.Rollback()
				return err
			}
		case opDelete:
			if err := idx.applyDelete(tx, op.id); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(goerr.StorageError, err, "search: commit")
	}
	logging.Get(logging.CategorySearch).Debug("search: committed %d index ops", len(ops))
	return nil
}

func (idx *Index) applyPut(tx *sql.Tx, doc Document) error {
	indexedText := doc.Name + " " + doc.QualifiedName + " " + doc.Signature + " " + doc.Body + " " +
		doc.Docstring + " " + doc.Content + " " + doc.Heading
	freqs := termFrequencies(indexedText)
	length := 0
	for _, f := range freqs {
		length += f
	}

	_, err := tx.Exec(`
		INSERT INTO search_document (id, entity_type, name, qualified_name, signature, body, docstring,
			file_path, language, kind, content, heading, section_path, doc_type, doc_length)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			entity_type = excluded.entity_type, name = excluded.name, qualified_name = excluded.qualified_name,
			signature = excluded.signature, body = excluded.body, docstring = excluded.docstring,
			file_path = excluded.file_path, language = excluded.language, kind = excluded.kind,
			content = excluded.content, heading = excluded.heading, section_path = excluded.section_path,
			doc_type = excluded.doc_type, doc_length = excluded.doc_length`,
		doc.ID, string(doc.EntityType), doc.Name, doc.QualifiedName, doc.Signature, doc.Body, doc.Docstring,
		doc.FilePath, doc.Language, doc.Kind, doc.Content, doc.Heading, doc.SectionPath, doc.DocType, length,
	)
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "search: upsert document %s", doc.ID)
	}

	if _, err := tx.Exec(`DELETE FROM search_posting WHERE doc_id = ?`, doc.ID); err != nil {
		return goerr.Wrap(goerr.StorageError, err, "search: clear postings for %s", doc.ID)
	}
	for term, freq := range freqs {
		if _, err := tx.Exec(`INSERT INTO search_posting (term, doc_id, term_freq) VALUES (?, ?, ?)`,
			term, doc.ID, freq); err != nil {
			return goerr.Wrap(goerr.StorageError, err, "search: insert posting %q for %s", term, doc.ID)
		}
	}

	if len(doc.Embedding) > 0 {
		blob := encodeEmbedding(doc.Embedding)
		if _, err := tx.Exec(`INSERT INTO search_embedding (doc_id, embedding) VALUES (?, ?)
			ON CONFLICT(doc_id) DO UPDATE SET embedding = excluded.embedding`, doc.ID, blob); err != nil {
			return goerr.Wrap(goerr.StorageError, err, "search: upsert embedding for %s", doc.ID)
		}
	}
	return nil
}

func (idx *Index) applyDelete(tx *sql.Tx, id string) error {
	if _, err := tx.Exec(`DELETE FROM search_document WHERE id = ?`, id); err != nil {
		return goerr.Wrap(goerr.StorageError, err, "search: delete document %s", id)
	}
	if _, err := tx.Exec(`DELETE FROM search_posting WHERE doc_id = ?`, id); err != nil {
		return goerr.Wrap(goerr.StorageError, err, "search: delete postings for %s", id)
	}
	if _, err := tx.Exec(`DELETE FROM search_embedding WHERE doc_id = ?`, id); err != nil {
		return goerr.Wrap(goerr.StorageError, err, "search: delete embedding for %s", id)
	}
	return nil
}

// Clear wipes the entire index, per spec §4.9.
func (idx *Index) Clear() error {
	idx.mu.Lock()
	idx.pending = nil
	idx.mu.Unlock()

	tx, err := idx.db.Begin()
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "search: clear begin")
	}
	for _, table := range []string{"search_document", "search_posting", "search_embedding"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			_ = tx.Rollback()
			return goerr.Wrap(goerr.StorageError, err, "search: clear %s", table)
		}
	}
	if err := tx.Commit(); err != nil {
		return goerr.Wrap(goerr.StorageError, err, "search: clear commit")
	}
	return nil
}
