package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBM25ScoreZeroWhenTermAbsentFromCorpus(t *testing.T) {
	require.Equal(t, 0.0, bm25Score(0, 10, 10, 0, 5))
	require.Equal(t, 0.0, bm25Score(3, 10, 10, 2, 0))
}

func TestBM25ScoreIncreasesWithTermFrequency(t *testing.T) {
	low := bm25Score(1, 100, 100, 5, 50)
	high := bm25Score(10, 100, 100, 5, 50)
	require.Greater(t, high, low)
}

func TestBM25ScorePenalizesLongerDocuments(t *testing.T) {
	short := bm25Score(2, 50, 100, 5, 50)
	long := bm25Score(2, 400, 100, 5, 50)
	require.Greater(t, short, long)
}

func TestBM25ScoreRewardsRareTerms(t *testing.T) {
	rare := bm25Score(2, 100, 100, 1, 50)
	common := bm25Score(2, 100, 100, 40, 50)
	require.Greater(t, rare, common)
}
