package docs

import (
	"database/sql"
	"testing"
	"time"

	"codegraph/internal/ids"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := Open(db)
	require.NoError(t, err)
	return s
}

func TestIngestThenByPathRoundTrips(t *testing.T) {
	s := openTestStore(t)
	doc, err := s.Ingest("README.md", []byte("# Title\n\nbody text\n"), nil, time.Now())
	require.NoError(t, err)
	require.Equal(t, ContentMarkdown, doc.ContentType)

	got, err := s.ByPath("README.md")
	require.NoError(t, err)
	require.Equal(t, doc.ID, got.ID)
	require.Contains(t, got.TextContent, "body text")
}

func TestIngestTwiceReplacesPriorRecord(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Ingest("notes.txt", []byte("first version"), nil, time.Now())
	require.NoError(t, err)
	_, err = s.Ingest("notes.txt", []byte("second version"), nil, time.Now())
	require.NoError(t, err)

	got, err := s.ByPath("notes.txt")
	require.NoError(t, err)
	require.Contains(t, got.TextContent, "second version")
}

func TestByPathMissingReturnsNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.ByPath("missing.md")
	require.Error(t, err)
}

func TestBySymbolReturnsLinkedDocuments(t *testing.T) {
	s := openTestStore(t)
	unit := ids.NewUnitId()
	_, err := s.Ingest("design.md", []byte("# AcquireLock\n\nexplanation\n"), &unit, time.Now())
	require.NoError(t, err)

	got, err := s.BySymbol(unit)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, unit, *got[0].SymbolID)
}

func TestResolveBySymbolNameFallsBackToFullTextSearch(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Ingest("design.md", []byte("# AcquireLock\n\nAcquireLock grabs the mutex.\n"), nil, time.Now())
	require.NoError(t, err)
	_, err = s.Ingest("other.md", []byte("# Unrelated\n\nnothing here\n"), nil, time.Now())
	require.NoError(t, err)

	got, err := s.ResolveBySymbolName("AcquireLock")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "design.md", got[0].Path)
}

func TestDeleteRemovesDocument(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Ingest("temp.md", []byte("content"), nil, time.Now())
	require.NoError(t, err)

	require.NoError(t, s.Delete("temp.md"))
	_, err = s.ByPath("temp.md")
	require.Error(t, err)
}
