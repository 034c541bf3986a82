// Package observability tracks per-tool call counts, latency, token use,
// and error breakdowns with the same lock-free atomic-counter discipline
// the teacher's API scheduler uses for its own concurrency accounting,
// generalized from one shard-scoped counter set to an open registry of
// named tools.
package observability

// HistogramSnapshot is a point-in-time read of a latency histogram.
type HistogramSnapshot struct {
	Count int64
	Mean  float64
	P50   float64
	P95   float64
	P99   float64
}

// ToolSnapshot is a read of one tool's counters; each field is loaded
// independently, so fields may reflect slightly different instants.
type ToolSnapshot struct {
	Tool          string
	SuccessCount  int64
	ErrorCount    int64
	TotalCalls    int64
	InputTokens   int64
	OutputTokens  int64
	Latency       HistogramSnapshot
	ErrorBreakdown map[string]int64
}

// GlobalSnapshot aggregates every registered tool plus the engine-wide
// ambient counters named in spec §4.12: memory, search, session, token,
// and system.
type GlobalSnapshot struct {
	Tools   map[string]ToolSnapshot
	Memory  ToolSnapshot
	Search  ToolSnapshot
	Session ToolSnapshot
	Token   ToolSnapshot
	System  ToolSnapshot
}

// Ambient counter names, always present in a GlobalSnapshot even with
// zero calls recorded.
const (
	CounterMemory  = "memory"
	CounterSearch  = "search"
	CounterSession = "session"
	CounterToken   = "token"
	CounterSystem  = "system"
)
