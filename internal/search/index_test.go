package search

import (
	"database/sql"
	"testing"

	"codegraph/internal/goerr"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	idx, err := Open(db)
	require.NoError(t, err)
	return idx
}

func sampleDoc(id, qname string) Document {
	return Document{
		ID:            id,
		EntityType:    EntityUnit,
		Name:          qname,
		QualifiedName: qname,
		Signature:     "func " + qname + "(ctx context.Context) error",
		Body:          "acquire lock then release lock on cleanup",
		FilePath:      "/src/" + qname + ".go",
		Language:      "go",
		Kind:          "function",
	}
}

func TestPutThenCommitMakesDocumentQueryable(t *testing.T) {
	idx := newTestIndex(t)
	idx.Put(sampleDoc("u1", "pkg.DoThing"))
	require.NoError(t, idx.Commit())

	hits, err := idx.ByFilePath("/src/pkg.DoThing.go")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "u1", hits[0].ID)
}

func TestUncommittedPutsAreNotVisible(t *testing.T) {
	idx := newTestIndex(t)
	idx.Put(sampleDoc("u1", "pkg.DoThing"))

	hits, err := idx.ByFilePath("/src/pkg.DoThing.go")
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestCommitWithNoPendingOpsIsNoop(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Commit())
}

func TestPutTwiceThenCommitUpdatesInPlace(t *testing.T) {
	idx := newTestIndex(t)
	idx.Put(sampleDoc("u1", "pkg.DoThing"))
	require.NoError(t, idx.Commit())

	updated := sampleDoc("u1", "pkg.DoThing")
	updated.Body = "entirely different body text now"
	idx.Put(updated)
	require.NoError(t, idx.Commit())

	hits, err := idx.TextSearch("entirely different", Filters{}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "u1", hits[0].ID)
}

func TestDeleteSymbolRemovesDocumentAndPostings(t *testing.T) {
	idx := newTestIndex(t)
	idx.Put(sampleDoc("u1", "pkg.DoThing"))
	require.NoError(t, idx.Commit())

	idx.DeleteSymbol("u1")
	require.NoError(t, idx.Commit())

	_, err := idx.getDoc("u1")
	require.Error(t, err)
	require.True(t, goerr.Is(err, goerr.NotFound))

	hits, err := idx.TextSearch("acquire lock", Filters{}, 10)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestClearWipesEverythingIncludingPending(t *testing.T) {
	idx := newTestIndex(t)
	idx.Put(sampleDoc("u1", "pkg.DoThing"))
	require.NoError(t, idx.Commit())
	idx.Put(sampleDoc("u2", "pkg.OtherThing"))

	require.NoError(t, idx.Clear())

	hits, err := idx.TextSearch("acquire lock", Filters{}, 10)
	require.NoError(t, err)
	require.Empty(t, hits)

	require.NoError(t, idx.Commit())
	hits, err = idx.ByFilePath("/src/pkg.OtherThing.go")
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestPutWithEmbeddingIsRetrievableViaBruteForceSemanticSearch(t *testing.T) {
	idx := newTestIndex(t)
	doc := sampleDoc("u1", "pkg.DoThing")
	doc.Embedding = []float32{1, 0, 0}
	idx.Put(doc)
	require.NoError(t, idx.Commit())

	hits, err := idx.SemanticSearch([]float32{1, 0, 0}, Filters{}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "u1", hits[0].ID)
	require.InDelta(t, 1.0, hits[0].Score, 1e-6)
}
