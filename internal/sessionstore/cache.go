package sessionstore

import (
	"sync"
	"time"

	"codegraph/internal/clock"
)

// cache is a TTL-checked-on-read cache for the two things a Store scans
// repeatedly: the project list and each project's session list.
// Grounded on internal/codeunit.Cache's approach of storing an
// insertion timestamp alongside the value and comparing it against the
// clock on every read rather than running a background sweep.
type cache struct {
	mu  sync.Mutex
	clk clock.Clock
	ttl time.Duration

	projects       []Project
	projectsAt     time.Time
	projectsCached bool

	sessions   map[string]sessionsCacheEntry
}

type sessionsCacheEntry struct {
	sessions []SessionMeta
	at       time.Time
}

func newCache(ttl time.Duration, clk clock.Clock) *cache {
	if clk == nil {
		clk = clock.Real{}
	}
	return &cache{
		clk:      clk,
		ttl:      ttl,
		sessions: make(map[string]sessionsCacheEntry),
	}
}

func (c *cache) expired(at time.Time) bool {
	return c.ttl > 0 && c.clk.Now().Sub(at) > c.ttl
}

func (c *cache) getProjects() ([]Project, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.projectsCached || c.expired(c.projectsAt) {
		return nil, false
	}
	return c.projects, true
}

func (c *cache) putProjects(projects []Project) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects = projects
	c.projectsAt = c.clk.Now()
	c.projectsCached = true
}

func (c *cache) getSessions(projectID string) ([]SessionMeta, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.sessions[projectID]
	if !ok || c.expired(entry.at) {
		return nil, false
	}
	return entry.sessions, true
}

func (c *cache) putSessions(projectID string, sessions []SessionMeta) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[projectID] = sessionsCacheEntry{sessions: sessions, at: c.clk.Now()}
}

// Invalidate drops every cached entry, forcing the next read to rescan
// the filesystem. Useful after a caller knows it just wrote a new
// session or project.
func (c *cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projectsCached = false
	c.sessions = make(map[string]sessionsCacheEntry)
}
