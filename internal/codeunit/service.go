package codeunit

import (
	"codegraph/internal/clock"
	"codegraph/internal/config"
	"codegraph/internal/goerr"
	"codegraph/internal/ids"

	"golang.org/x/sync/singleflight"
)

// Service is the cache-fronted code-unit service spec §4.8 describes
// (C11 cache + C12 service operations). golang.org/x/sync/singleflight
// collapses concurrent cache misses for the same key into one store
// read, the same "serialize concurrent work per key" idiom
// internal/pool already uses golang.org/x/sync/errgroup for (parallel
// warmup) and the teacher's re-embed workers apply by hand with a
// mutex (internal/store/prompt_reembed.go); singleflight is the
// library-backed version of that idiom, already available since
// golang.org/x/sync is a direct teacher dependency.
type Service struct {
	store *Store
	cache *Cache
	group singleflight.Group
}

// NewService builds a Service over store, with a cache sized per cfg.
func NewService(store *Store, cfg config.CodeUnitConfig, clk clock.Clock) *Service {
	return &Service{
		store: store,
		cache: NewCache(cfg.IDCacheSize, cfg.NameCacheSize, cfg.TTL, cfg.TimeToIdle, clk),
	}
}

// CacheStats exposes the underlying cache's hit/miss/invalidation
// counters.
func (s *Service) CacheStats() Stats { return s.cache.Stats() }

// GetCodeUnit is cache-first; on a miss it reads from the store and
// populates both cache indexes. Concurrent misses for the same id
// collapse into a single store read.
func (s *Service) GetCodeUnit(id ids.UnitId) (*CodeUnit, error) {
	if u, ok := s.cache.GetByID(id); ok {
		return u, nil
	}
	v, err, _ := s.group.Do("id:"+id.String(), func() (interface{}, error) {
		u, err := s.store.Get(id)
		if err != nil {
			return nil, err
		}
		s.cache.Put(u)
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*CodeUnit), nil
}

// GetByQualifiedName resolves qname through the qname-to-id cache
// first, falling back to a store lookup that populates both indexes.
func (s *Service) GetByQualifiedName(ws ids.WorkspaceId, qname string) (*CodeUnit, error) {
	if u, ok := s.cache.GetByQualifiedName(qname); ok {
		return u, nil
	}
	v, err, _ := s.group.Do("qname:"+ws.String()+":"+qname, func() (interface{}, error) {
		u, err := s.store.GetByQualifiedName(ws, qname)
		if err != nil {
			return nil, err
		}
		s.cache.Put(u)
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*CodeUnit), nil
}

// ListCodeUnits is a direct store read; per spec §4.8 list results are
// never cached.
func (s *Service) ListCodeUnits(ws ids.WorkspaceId, filter ListFilter, limit int) ([]*CodeUnit, error) {
	return s.store.List(ws, filter, limit)
}

// CreateCodeUnit inserts unit, assigning an ID if unset.
func (s *Service) CreateCodeUnit(unit *CodeUnit) (*CodeUnit, error) {
	if unit.ID.IsZero() {
		unit.ID = ids.NewUnitId()
	}
	if err := s.store.Insert(unit); err != nil {
		return nil, err
	}
	s.cache.Invalidate(unit.ID, unit.QualifiedName)
	return s.store.Get(unit.ID)
}

// UpdateCodeUnit updates a unit's body/docstring, optionally gated by
// an optimistic version check, and invalidates both cache entries.
func (s *Service) UpdateCodeUnit(id ids.UnitId, body, docstring *string, expectedVersion *int64) (*CodeUnit, error) {
	// Fetch the pre-update qualified name so the stale cache entry can
	// be evicted even if the update itself fails after this point.
	existing, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateVersioned(id, body, docstring, expectedVersion)
	s.cache.Invalidate(id, existing.QualifiedName)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCodeUnit removes a unit and invalidates both cache entries.
func (s *Service) DeleteCodeUnit(id ids.UnitId) error {
	existing, err := s.store.Get(id)
	if err != nil {
		if goerr.KindOf(err) == goerr.NotFound {
			return nil
		}
		return err
	}
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.cache.Invalidate(id, existing.QualifiedName)
	return nil
}

// BatchGetUnits resolves every id cache-first, issuing a single store
// read for whatever remains uncached.
func (s *Service) BatchGetUnits(idList []ids.UnitId) ([]*CodeUnit, error) {
	out := make([]*CodeUnit, 0, len(idList))
	var misses []ids.UnitId
	for _, id := range idList {
		if u, ok := s.cache.GetByID(id); ok {
			out = append(out, u)
			continue
		}
		misses = append(misses, id)
	}
	if len(misses) == 0 {
		return out, nil
	}
	fetched, err := s.store.BatchGet(misses)
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "codeunit: batch get remainder")
	}
	for _, u := range fetched {
		s.cache.Put(u)
		out = append(out, u)
	}
	return out, nil
}
