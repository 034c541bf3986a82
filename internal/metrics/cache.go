package metrics

import (
	"crypto/sha256"
	"sync"

	"codegraph/internal/ast"

	"github.com/golang/groupcache/lru"
)

// SourceKey identifies a unit of cached metrics work by the hash of its
// exact source bytes plus the grammar it was parsed with, so a file
// edited and reverted hits the cache again without recomputation.
// Grounded on
// original_source/cortex/cortex-code-analysis/src/analysis/cache.rs's
// SourceKey{content_hash, language}.
type SourceKey struct {
	ContentHash [32]byte
	Language    ast.Language
}

// NewSourceKey hashes source under lang.
func NewSourceKey(source []byte, lang ast.Language) SourceKey {
	return SourceKey{ContentHash: sha256.Sum256(source), Language: lang}
}

// Cache is a thread-safe, fixed-capacity LRU keyed by SourceKey. It
// wraps groupcache/lru.Cache (already pulled into the dependency graph
// transitively) behind a mutex the way cache.rs wraps lru::LruCache
// behind a std::sync::Mutex; groupcache's Cache is not safe for
// concurrent use on its own.
type Cache struct {
	mu       sync.Mutex
	capacity int
	inner    *lru.Cache
}

// NewCache creates a cache holding at most capacity entries. A
// non-positive capacity means unbounded, matching groupcache/lru's own
// convention for MaxEntries.
func NewCache(capacity int) *Cache {
	return &Cache{capacity: capacity, inner: lru.New(capacity)}
}

// Get returns the cached value for key, if present.
func (c *Cache) Get(key SourceKey) (CodeMetrics, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.inner.Get(key)
	if !ok {
		return CodeMetrics{}, false
	}
	return v.(CodeMetrics), true
}

// Put inserts or overwrites the cached value for key.
func (c *Cache) Put(key SourceKey, metrics CodeMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Add(key, metrics)
}

// Remove evicts key, if present.
func (c *Cache) Remove(key SourceKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Remove(key)
}

// Len returns the number of entries currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Len()
}

// Clear empties the cache. groupcache/lru.Cache exposes no reset
// method of its own, so this replaces the inner cache with a fresh one
// of the same capacity.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner = lru.New(c.capacity)
}

// GetOrCompute returns the cached metrics for key, computing and
// caching them via compute if absent. Grounded on cache.rs's
// get_or_insert_with.
func (c *Cache) GetOrCompute(key SourceKey, compute func() CodeMetrics) CodeMetrics {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := compute()
	c.Put(key, v)
	return v
}
