// Package memory implements the cognitive memory subsystem: four
// stores — episodic, semantic, procedural, working — coordinated by a
// Manager that runs consolidation as a maintenance operation. Grounded
// on the teacher's autopoietic learning loop
// (internal/store/local_knowledge.go, learning_candidates.go,
// learning_reflection.go, reflection_worker.go), the closest real
// analogue in the pack to "episodic memory with consolidation".
package memory

import (
	"time"

	"codegraph/internal/ids"
)

// Outcome classifies how an episode concluded.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomePartial Outcome = "partial"
)

// Episode is one append-only record of an agent performing a task.
type Episode struct {
	ID              ids.EpisodeId
	AgentID         string
	TaskDescription string
	Outcome         Outcome
	Entities        []string
	Importance      float64
	OccurredAt      time.Time
}

// EdgeKind enumerates the dependency relationships tracked between
// semantic units.
type EdgeKind string

const (
	EdgeCalls         EdgeKind = "Calls"
	EdgeReferences    EdgeKind = "References"
	EdgeInheritsFrom  EdgeKind = "InheritsFrom"
	EdgeImports       EdgeKind = "Imports"
	EdgeContainsType  EdgeKind = "ContainsType"
)

// SemanticEdge is a directed, typed relationship between two code
// units: "A --kind--> B".
type SemanticEdge struct {
	From ids.UnitId
	Kind EdgeKind
	To   ids.UnitId
}

// SemanticSummary is a derived, human-readable summary attached to a
// code unit.
type SemanticSummary struct {
	UnitID  ids.UnitId
	Summary string
}

// Pattern is a learned procedure: a recurring sequence of actions that
// produced a given outcome, with a confidence score adjusted by
// feedback.
type Pattern struct {
	ID          int64
	Description string
	Occurrences int
	Confidence  float64
	LastSeenAt  time.Time
}

// Priority governs working-memory eviction order.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// Slot is one entry held in working memory.
type Slot struct {
	Key      string
	Value    interface{}
	Priority Priority
	LastUsed time.Time
}

// ConsolidationStats summarizes one consolidation pass, per spec.
type ConsolidationStats struct {
	EpisodesProcessed    int
	PatternsExtracted    int
	MemoriesDecayed      int
	DuplicatesMerged     int
	KnowledgeLinksCreated int
	DurationMs           int64
}
