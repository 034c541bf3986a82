package observability

import "sync"

// Registry is the process-wide collection of per-tool metrics plus the
// fixed ambient counters (memory, search, session, token, system). A
// Registry is created once per process and shared by every caller.
type Registry struct {
	bounds []float64
	mu     sync.Mutex // guards only tools map insertion, not counter updates
	tools  map[string]*ToolMetrics
}

// NewRegistry creates a Registry using the given histogram bucket
// boundaries (milliseconds) for every tool's latency histogram,
// pre-seeding the five ambient counters so GlobalSnapshot always
// reports them even before first use.
func NewRegistry(histogramBucketsMs []float64) *Registry {
	r := &Registry{
		bounds: histogramBucketsMs,
		tools:  make(map[string]*ToolMetrics),
	}
	for _, name := range []string{CounterMemory, CounterSearch, CounterSession, CounterToken, CounterSystem} {
		r.tool(name)
	}
	return r
}

// tool returns the ToolMetrics for name, creating it on first use. The
// mutex here only protects the registry's own map from concurrent
// insertion; the metrics themselves are updated lock-free.
func (r *Registry) tool(name string) *ToolMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.tools[name]
	if !ok {
		m = newToolMetrics(r.bounds)
		r.tools[name] = m
	}
	return m
}

// RecordSuccess records a successful call against the named tool.
func (r *Registry) RecordSuccess(tool string, latencyMs float64, inputTokens, outputTokens int) {
	r.tool(tool).RecordSuccess(latencyMs, inputTokens, outputTokens)
}

// RecordError records a failed call against the named tool.
func (r *Registry) RecordError(tool string, latencyMs float64, errKind string) {
	r.tool(tool).RecordError(latencyMs, errKind)
}

// Snapshot returns one tool's current counters, or the zero value if the
// tool has never been recorded.
func (r *Registry) Snapshot(tool string) ToolSnapshot {
	r.mu.Lock()
	m, ok := r.tools[tool]
	r.mu.Unlock()
	if !ok {
		return ToolSnapshot{Tool: tool, ErrorBreakdown: map[string]int64{}}
	}
	return m.Snapshot(tool)
}

// Global returns a snapshot of every tool ever recorded, with the five
// ambient counters broken out individually as spec §4.12 requires.
func (r *Registry) Global() GlobalSnapshot {
	r.mu.Lock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	r.mu.Unlock()

	tools := make(map[string]ToolSnapshot, len(names))
	for _, name := range names {
		tools[name] = r.Snapshot(name)
	}

	return GlobalSnapshot{
		Tools:   tools,
		Memory:  tools[CounterMemory],
		Search:  tools[CounterSearch],
		Session: tools[CounterSession],
		Token:   tools[CounterToken],
		System:  tools[CounterSystem],
	}
}
