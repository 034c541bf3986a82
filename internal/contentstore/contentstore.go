// Package contentstore implements the content-addressed, refcounted blob
// store described in spec §4.1. Identical payloads alias the same blob;
// the store is backed by SQLite, grounded on the teacher's embedded
// storage schema (internal/store/local.go's CREATE TABLE IF NOT EXISTS
// style), generalized from a single fact-store table into a dedicated
// content-addressed table with an atomic refcount.
package contentstore

import (
	"database/sql"

	"codegraph/internal/goerr"
	"codegraph/internal/ids"
	"codegraph/internal/logging"
)

// Store is a content-addressed blob store.
type Store struct {
	db *sql.DB
}

// Open creates (if needed) the content_store schema on db and returns a
// Store. db's lifecycle (opening/closing the underlying connection) is
// owned by the caller — typically the connection pool (C6).
func Open(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS content_store (
		hash     TEXT PRIMARY KEY,
		bytes    BLOB NOT NULL,
		length   INTEGER NOT NULL,
		refcount INTEGER NOT NULL DEFAULT 0
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return goerr.Wrap(goerr.StorageError, err, "contentstore: migrate")
	}
	return nil
}

// Put stores bytes if not already present (idempotent on content),
// incrementing the refcount, and returns the resulting hash. Per
// invariant #2 (spec §8), put(bytes1) == put(bytes2) whenever
// bytes1 == bytes2 and each logical holder increments refcount by
// exactly one.
func (s *Store) Put(b []byte) (ids.ContentHash, error) {
	hash := ids.HashContent(b)
	timer := logging.StartTimer(logging.CategoryContentStore, "Put")
	defer timer.Stop()

	res, err := s.db.Exec(
		`INSERT INTO content_store (hash, bytes, length, refcount) VALUES (?, ?, ?, 1)
		 ON CONFLICT(hash) DO UPDATE SET refcount = refcount + 1`,
		hash.String(), b, len(b),
	)
	if err != nil {
		return hash, goerr.Wrap(goerr.StorageError, err, "contentstore: put")
	}
	if _, err := res.RowsAffected(); err != nil {
		return hash, goerr.Wrap(goerr.StorageError, err, "contentstore: put rows affected")
	}
	logging.Get(logging.CategoryContentStore).Debug("put blob %s (%d bytes)", hash, len(b))
	return hash, nil
}

// Get returns the bytes for hash, or NotFound if absent.
func (s *Store) Get(hash ids.ContentHash) ([]byte, error) {
	var b []byte
	err := s.db.QueryRow(`SELECT bytes FROM content_store WHERE hash = ?`, hash.String()).Scan(&b)
	if err == sql.ErrNoRows {
		return nil, goerr.New(goerr.NotFound, "contentstore: blob %s not found", hash)
	}
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "contentstore: get %s", hash)
	}
	return b, nil
}

// Exists reports whether hash is present.
func (s *Store) Exists(hash ids.ContentHash) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT 1 FROM content_store WHERE hash = ?`, hash.String()).Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, goerr.Wrap(goerr.StorageError, err, "contentstore: exists %s", hash)
	}
	return true, nil
}

// Retain increments hash's refcount. Fails NotFound if the blob was never
// put. Used when a second VNode starts referencing an existing blob
// without re-uploading its bytes (e.g. copy/move).
func (s *Store) Retain(hash ids.ContentHash) error {
	res, err := s.db.Exec(`UPDATE content_store SET refcount = refcount + 1 WHERE hash = ?`, hash.String())
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "contentstore: retain %s", hash)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return goerr.New(goerr.NotFound, "contentstore: retain: blob %s not found", hash)
	}
	return nil
}

// Release decrements hash's refcount; when it reaches zero the blob is
// deleted. Matches invariant #6 (spec §8): deleting a file decrements
// refcount by 1, and blobs reaching 0 are removed.
func (s *Store) Release(hash ids.ContentHash) error {
	tx, err := s.db.Begin()
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "contentstore: release begin tx")
	}
	defer tx.Rollback()

	var refcount int
	err = tx.QueryRow(`SELECT refcount FROM content_store WHERE hash = ?`, hash.String()).Scan(&refcount)
	if err == sql.ErrNoRows {
		return goerr.New(goerr.NotFound, "contentstore: release: blob %s not found", hash)
	}
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "contentstore: release select %s", hash)
	}

	if refcount <= 1 {
		if _, err := tx.Exec(`DELETE FROM content_store WHERE hash = ?`, hash.String()); err != nil {
			return goerr.Wrap(goerr.StorageError, err, "contentstore: release delete %s", hash)
		}
		logging.Get(logging.CategoryContentStore).Debug("blob %s refcount reached zero, removed", hash)
	} else {
		if _, err := tx.Exec(`UPDATE content_store SET refcount = refcount - 1 WHERE hash = ?`, hash.String()); err != nil {
			return goerr.Wrap(goerr.StorageError, err, "contentstore: release decrement %s", hash)
		}
	}
	if err := tx.Commit(); err != nil {
		return goerr.Wrap(goerr.StorageError, err, "contentstore: release commit")
	}
	return nil
}

// Refcount returns the current refcount for hash (for tests/diagnostics).
func (s *Store) Refcount(hash ids.ContentHash) (int, error) {
	var refcount int
	err := s.db.QueryRow(`SELECT refcount FROM content_store WHERE hash = ?`, hash.String()).Scan(&refcount)
	if err == sql.ErrNoRows {
		return 0, goerr.New(goerr.NotFound, "contentstore: blob %s not found", hash)
	}
	if err != nil {
		return 0, goerr.Wrap(goerr.StorageError, err, "contentstore: refcount %s", hash)
	}
	return refcount, nil
}
