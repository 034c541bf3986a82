package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func seedCorpus(t *testing.T, idx *Index) {
	t.Helper()
	docs := []Document{
		{
			ID: "u1", EntityType: EntityUnit, Name: "AcquireLock", QualifiedName: "sync.AcquireLock",
			Signature: "func AcquireLock(key string) error",
			Body:      "acquire the lock then block until available then return",
			FilePath:  "/src/sync/lock.go", Language: "go", Kind: "function",
		},
		{
			ID: "u2", EntityType: EntityUnit, Name: "ReleaseLock", QualifiedName: "sync.ReleaseLock",
			Signature: "func ReleaseLock(key string) error",
			Body:      "release the lock and notify waiters",
			FilePath:  "/src/sync/lock.go", Language: "go", Kind: "function",
		},
		{
			ID: "u3", EntityType: EntityUnit, Name: "ParseConfig", QualifiedName: "config.ParseConfig",
			Signature: "func ParseConfig(path string) (*Config, error)",
			Body:      "read the file then unmarshal yaml into config struct",
			FilePath:  "/src/config/config.go", Language: "go", Kind: "function",
		},
		{
			ID: "d1", EntityType: EntityDocument, Name: "README", QualifiedName: "docs.README",
			Content: "This project implements distributed locking with a lease protocol.",
			Heading: "Overview", FilePath: "/docs/README.md", Language: "markdown", DocType: "markdown",
		},
	}
	for _, d := range docs {
		idx.Put(d)
	}
	require.NoError(t, idx.Commit())
}

func TestTextSearchRanksByBM25(t *testing.T) {
	idx := newTestIndex(t)
	seedCorpus(t, idx)

	hits, err := idx.TextSearch("lock", Filters{}, 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	var ids []string
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	require.Contains(t, ids, "u1")
	require.Contains(t, ids, "u2")
	// Both mention "lock" once; u2's shorter text gives it the higher BM25 score.
	require.Equal(t, []string{"u2", "u1"}, ids)
}

func TestTextSearchFiltersByEntityType(t *testing.T) {
	idx := newTestIndex(t)
	seedCorpus(t, idx)

	hits, err := idx.TextSearch("lock", Filters{EntityType: EntityDocument}, 10)
	require.NoError(t, err)
	for _, h := range hits {
		require.Equal(t, EntityDocument, h.EntityType)
	}
}

func TestTextSearchRequiresExactPhrase(t *testing.T) {
	idx := newTestIndex(t)
	seedCorpus(t, idx)

	hits, err := idx.TextSearch(`"release the lock"`, Filters{}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "u2", hits[0].ID)
}

func TestTextSearchNoMatchReturnsEmpty(t *testing.T) {
	idx := newTestIndex(t)
	seedCorpus(t, idx)

	hits, err := idx.TextSearch("nonexistentterm", Filters{}, 10)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestTextSearchEmptyQueryReturnsNil(t *testing.T) {
	idx := newTestIndex(t)
	seedCorpus(t, idx)

	hits, err := idx.TextSearch("", Filters{}, 10)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestFuzzySearchFindsCloseNameWithinDistance(t *testing.T) {
	idx := newTestIndex(t)
	seedCorpus(t, idx)

	hits, err := idx.FuzzySearch("AcquireLok", 2, 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	require.Equal(t, "u1", hits[0].ID)
}

func TestFuzzySearchExcludesNamesBeyondMaxDistance(t *testing.T) {
	idx := newTestIndex(t)
	seedCorpus(t, idx)

	hits, err := idx.FuzzySearch("CompletelyDifferentName", 2, 10)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestByFilePathReturnsAllUnitsInFileOrderedByName(t *testing.T) {
	idx := newTestIndex(t)
	seedCorpus(t, idx)

	hits, err := idx.ByFilePath("/src/sync/lock.go")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "sync.AcquireLock", hits[0].QualifiedName)
	require.Equal(t, "sync.ReleaseLock", hits[1].QualifiedName)
}

func TestByFilePathUnknownPathReturnsEmpty(t *testing.T) {
	idx := newTestIndex(t)
	seedCorpus(t, idx)

	hits, err := idx.ByFilePath("/no/such/file.go")
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestSimilarToUnitExcludesSelfAndFiltersToSameKind(t *testing.T) {
	idx := newTestIndex(t)
	seedCorpus(t, idx)

	hits, err := idx.SimilarToUnit("u1", 10)
	require.NoError(t, err)
	for _, h := range hits {
		require.NotEqual(t, "u1", h.ID)
		require.Equal(t, EntityUnit, h.EntityType)
	}
}

func TestSimilarToUnitUnknownIDReturnsNotFound(t *testing.T) {
	idx := newTestIndex(t)
	seedCorpus(t, idx)

	_, err := idx.SimilarToUnit("missing", 10)
	require.Error(t, err)
}

func TestFindReferencesLocatesTextualOccurrences(t *testing.T) {
	idx := newTestIndex(t)
	idx.Put(Document{
		ID: "u1", EntityType: EntityUnit, Name: "Helper", QualifiedName: "pkg.Helper",
		Body: "noop", FilePath: "/src/pkg/helper.go", Kind: "function",
	})
	idx.Put(Document{
		ID: "u2", EntityType: EntityUnit, Name: "Caller", QualifiedName: "pkg.Caller",
		Body: "result := pkg.Helper(); return pkg.Helper()", FilePath: "/src/pkg/caller.go", Kind: "function",
	})
	require.NoError(t, idx.Commit())

	refs, err := idx.FindReferences("u1")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	require.Equal(t, "/src/pkg/caller.go", refs[0].FilePath)
	require.Less(t, refs[0].Offset, refs[1].Offset)
}

func TestFindReferencesUnknownIDReturnsError(t *testing.T) {
	idx := newTestIndex(t)
	seedCorpus(t, idx)

	_, err := idx.FindReferences("missing")
	require.Error(t, err)
}
