package codeunit

import (
	"sync"
	"sync/atomic"
	"time"

	"codegraph/internal/clock"
	"codegraph/internal/ids"

	"github.com/golang/groupcache/lru"
)

// cacheEntry wraps a cached value with the bookkeeping TTL/time-to-idle
// eviction needs: groupcache/lru only evicts by capacity, so expiry is
// checked on read/sweep here rather than inside the inner cache.
type cacheEntry struct {
	unit         *CodeUnit
	insertedAt   time.Time
	lastAccessed time.Time
}

// Cache is the dual LRU spec §4.8 describes: an LRU keyed by UnitId
// plus a secondary LRU mapping qualified_name to UnitId, both honoring
// TTL and time-to-idle, with atomic hit/miss/invalidation counters.
// Grounded on internal/metrics.Cache's groupcache/lru-behind-a-mutex
// shape (itself grounded on
// original_source/cortex/cortex-code-analysis/src/analysis/cache.rs),
// extended here with expiry and a second index.
type Cache struct {
	mu  sync.Mutex
	clk clock.Clock

	ttl        time.Duration
	timeToIdle time.Duration

	byID   *lru.Cache
	byName *lru.Cache // qualified_name -> ids.UnitId

	hits         int64
	misses       int64
	invalidations int64
}

// NewCache builds a Cache with the given per-index capacities and
// expiry policy. A zero ttl or timeToIdle means that dimension never
// expires entries on its own.
func NewCache(idCapacity, nameCapacity int, ttl, timeToIdle time.Duration, clk clock.Clock) *Cache {
	return &Cache{
		clk: clk, ttl: ttl, timeToIdle: timeToIdle,
		byID:   lru.New(idCapacity),
		byName: lru.New(nameCapacity),
	}
}

// GetByID returns the cached unit for id, or (nil, false) on a miss or
// expiry.
func (c *Cache) GetByID(id ids.UnitId) (*CodeUnit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(id)
}

// GetByQualifiedName resolves qname to an id via the secondary index,
// then the primary index, matching spec §4.8's "qname cache → id
// cache" lookup chain.
func (c *Cache) GetByQualifiedName(qname string) (*CodeUnit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.byName.Get(qname)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	id := v.(ids.UnitId)
	return c.getLocked(id)
}

// getLocked must be called with c.mu held.
func (c *Cache) getLocked(id ids.UnitId) (*CodeUnit, bool) {
	v, ok := c.byID.Get(id)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	entry := v.(*cacheEntry)
	now := c.clk.Now()
	if c.ttl > 0 && now.Sub(entry.insertedAt) > c.ttl {
		c.byID.Remove(id)
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	if c.timeToIdle > 0 && now.Sub(entry.lastAccessed) > c.timeToIdle {
		c.byID.Remove(id)
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	entry.lastAccessed = now
	atomic.AddInt64(&c.hits, 1)
	return entry.unit, true
}

// Put populates both indexes for unit.
func (c *Cache) Put(unit *CodeUnit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clk.Now()
	c.byID.Add(unit.ID, &cacheEntry{unit: unit, insertedAt: now, lastAccessed: now})
	c.byName.Add(unit.QualifiedName, unit.ID)
}

// Invalidate removes id (and, if known, its qualified-name alias) from
// both indexes. create_code_unit/update_code_unit/delete_code_unit all
// call this after a successful store write, per spec §4.8.
func (c *Cache) Invalidate(id ids.UnitId, qualifiedName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID.Remove(id)
	if qualifiedName != "" {
		c.byName.Remove(qualifiedName)
	}
	atomic.AddInt64(&c.invalidations, 1)
}

// Stats is a snapshot of the cache's atomic counters.
type Stats struct {
	Hits          int64
	Misses        int64
	Invalidations int64
}

// Stats returns the current hit/miss/invalidation counts.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:          atomic.LoadInt64(&c.hits),
		Misses:        atomic.LoadInt64(&c.misses),
		Invalidations: atomic.LoadInt64(&c.invalidations),
	}
}
