package observability

import (
	"sync"
	"sync/atomic"
)

// ToolMetrics tracks one tool's counters. All fields besides the error
// map and histogram are plain int64s mutated exclusively through
// sync/atomic; the error map uses sync.Map, the concurrent map
// primitive the package favors over a mutex-guarded map for the same
// lock-free goal.
type ToolMetrics struct {
	successCount int64
	errorCount   int64
	totalCalls   int64
	inputTokens  int64
	outputTokens int64
	latency      *Histogram
	errors       sync.Map // error kind -> *int64
}

func newToolMetrics(bounds []float64) *ToolMetrics {
	return &ToolMetrics{latency: NewHistogram(bounds)}
}

// RecordSuccess records a successful call's latency and token usage.
func (m *ToolMetrics) RecordSuccess(latencyMs float64, inputTokens, outputTokens int) {
	atomic.AddInt64(&m.successCount, 1)
	atomic.AddInt64(&m.totalCalls, 1)
	atomic.AddInt64(&m.inputTokens, int64(inputTokens))
	atomic.AddInt64(&m.outputTokens, int64(outputTokens))
	m.latency.Observe(latencyMs)
}

// RecordError records a failed call's latency and the error kind that
// caused it.
func (m *ToolMetrics) RecordError(latencyMs float64, kind string) {
	atomic.AddInt64(&m.errorCount, 1)
	atomic.AddInt64(&m.totalCalls, 1)
	m.latency.Observe(latencyMs)

	counter, _ := m.errors.LoadOrStore(kind, new(int64))
	atomic.AddInt64(counter.(*int64), 1)
}

// Snapshot returns a consistent-enough read of every counter. Because
// each field is read independently via atomic loads, two fields in the
// same snapshot may reflect slightly different instants under
// concurrent writers — acceptable for an observability surface that
// favors a lock-free write path over read-side consistency.
func (m *ToolMetrics) Snapshot(tool string) ToolSnapshot {
	breakdown := map[string]int64{}
	m.errors.Range(func(key, value interface{}) bool {
		breakdown[key.(string)] = atomic.LoadInt64(value.(*int64))
		return true
	})

	return ToolSnapshot{
		Tool:           tool,
		SuccessCount:   atomic.LoadInt64(&m.successCount),
		ErrorCount:     atomic.LoadInt64(&m.errorCount),
		TotalCalls:     atomic.LoadInt64(&m.totalCalls),
		InputTokens:    atomic.LoadInt64(&m.inputTokens),
		OutputTokens:   atomic.LoadInt64(&m.outputTokens),
		Latency:        m.latency.Snapshot(),
		ErrorBreakdown: breakdown,
	}
}
