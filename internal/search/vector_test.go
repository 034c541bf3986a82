package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeEmbeddingRoundTrips(t *testing.T) {
	vec := []float32{0.1, -0.2, 0.3, 1.5}
	blob := encodeEmbedding(vec)
	require.Equal(t, 16, len(blob))

	got := decodeEmbedding(blob)
	require.Equal(t, vec, got)
}

func TestDecodeEmptyBlobIsEmptyVector(t *testing.T) {
	require.Empty(t, decodeEmbedding(nil))
}

func TestSemanticSearchBruteForceRanksByCosineSimilarity(t *testing.T) {
	idx := newTestIndex(t)
	require.False(t, idx.vectorExt, "expected no vec0 extension in plain mattn/go-sqlite3 test harness")

	close := sampleDoc("u1", "pkg.Close")
	close.Embedding = []float32{1, 0, 0}
	far := sampleDoc("u2", "pkg.Far")
	far.Embedding = []float32{0, 1, 0}
	idx.Put(close)
	idx.Put(far)
	require.NoError(t, idx.Commit())

	hits, err := idx.SemanticSearch([]float32{0.9, 0.1, 0}, Filters{}, 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	require.Equal(t, "u1", hits[0].ID)
}

func TestSemanticSearchAppliesMinScore(t *testing.T) {
	idx := newTestIndex(t)
	orthogonal := sampleDoc("u1", "pkg.Orthogonal")
	orthogonal.Embedding = []float32{0, 1, 0}
	idx.Put(orthogonal)
	require.NoError(t, idx.Commit())

	hits, err := idx.SemanticSearch([]float32{1, 0, 0}, Filters{MinScore: 0.5}, 10)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestSemanticSearchWithNoEmbeddingsReturnsEmpty(t *testing.T) {
	idx := newTestIndex(t)
	idx.Put(sampleDoc("u1", "pkg.NoVector"))
	require.NoError(t, idx.Commit())

	hits, err := idx.SemanticSearch([]float32{1, 0, 0}, Filters{}, 10)
	require.NoError(t, err)
	require.Empty(t, hits)
}
