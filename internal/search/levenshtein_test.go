package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevenshteinIdenticalStringsIsZero(t *testing.T) {
	require.Equal(t, 0, levenshtein("parseConfig", "parseConfig"))
}

func TestLevenshteinEmptyStringIsLengthOfOther(t *testing.T) {
	require.Equal(t, 5, levenshtein("", "hello"))
	require.Equal(t, 5, levenshtein("hello", ""))
}

func TestLevenshteinSingleSubstitution(t *testing.T) {
	require.Equal(t, 1, levenshtein("cat", "bat"))
}

func TestLevenshteinSingleInsertAndDelete(t *testing.T) {
	require.Equal(t, 1, levenshtein("cat", "cats"))
	require.Equal(t, 1, levenshtein("cats", "cat"))
}

func TestLevenshteinKnownDistance(t *testing.T) {
	require.Equal(t, 3, levenshtein("kitten", "sitting"))
}
