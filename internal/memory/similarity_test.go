package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJaccardSimilarityIdenticalSetsIsOne(t *testing.T) {
	require.Equal(t, 1.0, jaccardSimilarity([]string{"a", "b"}, []string{"b", "a"}))
}

func TestJaccardSimilarityDisjointSetsIsZero(t *testing.T) {
	require.Equal(t, 0.0, jaccardSimilarity([]string{"a"}, []string{"b"}))
}

func TestJaccardSimilarityPartialOverlap(t *testing.T) {
	got := jaccardSimilarity([]string{"a", "b", "c"}, []string{"b", "c", "d"})
	require.InDelta(t, 0.5, got, 1e-9)
}

func TestJaccardSimilarityBothEmptyIsOne(t *testing.T) {
	require.Equal(t, 1.0, jaccardSimilarity(nil, nil))
}

func TestJaccardSimilarityOneEmptyIsZero(t *testing.T) {
	require.Equal(t, 0.0, jaccardSimilarity(nil, []string{"a"}))
}

func TestTaskTokensLowercasesAndSplits(t *testing.T) {
	got := taskTokens("Fix the Parser Bug!")
	require.Equal(t, []string{"fix", "the", "parser", "bug"}, got)
}
