package metrics

import (
	"testing"

	"codegraph/internal/ast"

	"github.com/stretchr/testify/require"
)

func TestCacheGetOrComputeCachesResult(t *testing.T) {
	c := NewCache(10)
	key := NewSourceKey([]byte("package main"), ast.LanguageGo)

	calls := 0
	compute := func() CodeMetrics {
		calls++
		var m CodeMetrics
		m.LOC.SLOC.Add(1)
		return m
	}

	first := c.GetOrCompute(key, compute)
	second := c.GetOrCompute(key, compute)

	require.Equal(t, 1, calls)
	require.Equal(t, first, second)
	require.Equal(t, 1, c.Len())
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2)
	k1 := NewSourceKey([]byte("a"), ast.LanguageGo)
	k2 := NewSourceKey([]byte("b"), ast.LanguageGo)
	k3 := NewSourceKey([]byte("c"), ast.LanguageGo)

	c.Put(k1, CodeMetrics{})
	c.Put(k2, CodeMetrics{})
	c.Put(k3, CodeMetrics{})

	_, ok := c.Get(k1)
	require.False(t, ok, "k1 should have been evicted")
	_, ok = c.Get(k2)
	require.True(t, ok)
	_, ok = c.Get(k3)
	require.True(t, ok)
}

func TestCacheRemoveAndClear(t *testing.T) {
	c := NewCache(10)
	key := NewSourceKey([]byte("x"), ast.LanguageGo)
	c.Put(key, CodeMetrics{})
	require.Equal(t, 1, c.Len())

	c.Remove(key)
	require.Equal(t, 0, c.Len())

	c.Put(key, CodeMetrics{})
	c.Clear()
	require.Equal(t, 0, c.Len())
}
