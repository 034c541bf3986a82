package memory

import (
	"database/sql"
	"math"
	"sort"
	"time"

	"codegraph/internal/clock"
	"codegraph/internal/ids"
	"codegraph/internal/logging"
)

// Manager coordinates the four memory stores and runs consolidation,
// the maintenance operation spec §4.10 describes. Grounded on the
// teacher's reflection_worker.go, which periodically walks stored
// state (there, reflections; here, episodes) looking for patterns and
// promoting/demoting confidence — the closest real analogue to a
// background consolidation loop in the pack.
type Manager struct {
	Episodic   *EpisodicStore
	Semantic   *SemanticStore
	Procedural *ProceduralStore
	Working    *WorkingMemory

	clock               clock.Clock
	minPatternFrequency int
	decayHalfLife       time.Duration
	duplicateSimilarity float64
}

// Options configures a Manager's consolidation thresholds, sourced
// from config.MemoryConfig.
type Options struct {
	WorkingCapacity     int
	MinPatternFrequency int
	DecayHalfLife       time.Duration
	DuplicateSimilarity float64
	Clock               clock.Clock
}

// Open creates (if needed) all four stores' schemas on db and returns
// a ready Manager.
func Open(db *sql.DB, opts Options) (*Manager, error) {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}

	episodic, err := openEpisodicStore(db)
	if err != nil {
		return nil, err
	}
	semantic, err := openSemanticStore(db)
	if err != nil {
		return nil, err
	}
	procedural, err := openProceduralStore(db)
	if err != nil {
		return nil, err
	}

	return &Manager{
		Episodic:            episodic,
		Semantic:            semantic,
		Procedural:          procedural,
		Working:             NewWorkingMemory(opts.WorkingCapacity, opts.Clock),
		clock:               opts.Clock,
		minPatternFrequency: opts.MinPatternFrequency,
		decayHalfLife:       opts.DecayHalfLife,
		duplicateSimilarity: opts.DuplicateSimilarity,
	}, nil
}

// Consolidate runs one full maintenance pass: merge near-duplicate
// episodes, extract patterns from qualifying clusters, decay
// importance by age, and link semantic edges discovered from episode
// entity sets. Per spec §4.10, runs the four steps in that order so
// duplicate merging happens before the other steps see the episode
// set.
func (m *Manager) Consolidate() (ConsolidationStats, error) {
	start := m.clock.Now()
	stats := ConsolidationStats{}

	episodes, err := m.Episodic.All()
	if err != nil {
		return stats, err
	}
	stats.EpisodesProcessed = len(episodes)

	episodes, merged, err := m.mergeDuplicates(episodes)
	if err != nil {
		return stats, err
	}
	stats.DuplicatesMerged = merged

	extracted, err := m.extractPatterns(episodes)
	if err != nil {
		return stats, err
	}
	stats.PatternsExtracted = extracted

	decayed, err := m.decayImportance(episodes)
	if err != nil {
		return stats, err
	}
	stats.MemoriesDecayed = decayed

	linked, err := m.linkKnowledge(episodes)
	if err != nil {
		return stats, err
	}
	stats.KnowledgeLinksCreated = linked

	stats.DurationMs = m.clock.Now().Sub(start).Milliseconds()
	logging.Get(logging.CategoryMemory).Info(
		"memory: consolidation complete episodes=%d duplicates_merged=%d patterns_extracted=%d decayed=%d links_created=%d duration_ms=%d",
		stats.EpisodesProcessed, stats.DuplicatesMerged, stats.PatternsExtracted, stats.MemoriesDecayed,
		stats.KnowledgeLinksCreated, stats.DurationMs)
	return stats, nil
}

// mergeDuplicates merges episodes from the same agent with
// overlapping entities and similar task text above
// duplicateSimilarity, keeping the earliest episode in each cluster as
// the survivor and deleting the rest. Returns the surviving episode
// set for subsequent consolidation steps.
func (m *Manager) mergeDuplicates(episodes []Episode) ([]Episode, int, error) {
	merged := 0
	consumed := make(map[int]bool)
	var survivors []Episode

	for i := range episodes {
		if consumed[i] {
			continue
		}
		survivor := episodes[i]
		for j := i + 1; j < len(episodes); j++ {
			if consumed[j] {
				continue
			}
			if !m.isDuplicate(survivor, episodes[j]) {
				continue
			}
			if err := m.Episodic.Delete(episodes[j].ID); err != nil {
				return nil, merged, err
			}
			consumed[j] = true
			merged++
		}
		survivors = append(survivors, survivor)
	}
	return survivors, merged, nil
}

func (m *Manager) isDuplicate(a, b Episode) bool {
	if a.AgentID != b.AgentID {
		return false
	}
	if jaccardSimilarity(a.Entities, b.Entities) <= 0 {
		return false
	}
	return jaccardSimilarity(taskTokens(a.TaskDescription), taskTokens(b.TaskDescription)) >= m.duplicateSimilarity
}

// extractPatterns clusters successful episodes by their tokenized task
// description and, for every cluster reaching minPatternFrequency,
// records a procedural pattern match per episode in the cluster.
func (m *Manager) extractPatterns(episodes []Episode) (int, error) {
	clusters := make(map[string][]Episode)
	for _, ep := range episodes {
		if ep.Outcome != OutcomeSuccess {
			continue
		}
		key := clusterKey(ep.TaskDescription)
		if key == "" {
			continue
		}
		clusters[key] = append(clusters[key], ep)
	}

	extracted := 0
	for key, group := range clusters {
		if len(group) < m.minPatternFrequency {
			continue
		}
		for range group {
			if _, err := m.Procedural.RecordMatch(key); err != nil {
				return extracted, err
			}
		}
		extracted++
	}
	return extracted, nil
}

// clusterKey reduces a task description to its sorted, deduplicated
// token set joined by spaces, so episodes that describe the same
// underlying task with the same words in any order still cluster together.
func clusterKey(task string) string {
	tokens := taskTokens(task)
	if len(tokens) == 0 {
		return ""
	}
	seen := make(map[string]bool, len(tokens))
	var unique []string
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			unique = append(unique, t)
		}
	}
	sort.Strings(unique)
	key := ""
	for i, t := range unique {
		if i > 0 {
			key += " "
		}
		key += t
	}
	return key
}

// decayImportance applies exponential decay by age, halving importance
// every decayHalfLife, and persists the result for every episode whose
// importance actually changed.
func (m *Manager) decayImportance(episodes []Episode) (int, error) {
	if m.decayHalfLife <= 0 {
		return 0, nil
	}
	now := m.clock.Now()
	decayed := 0
	for _, ep := range episodes {
		age := now.Sub(ep.OccurredAt)
		if age <= 0 {
			continue
		}
		factor := math.Pow(0.5, age.Seconds()/m.decayHalfLife.Seconds())
		next := ep.Importance * factor
		if math.Abs(next-ep.Importance) < 1e-9 {
			continue
		}
		if err := m.Episodic.SetImportance(ep.ID, next); err != nil {
			return decayed, err
		}
		decayed++
	}
	return decayed, nil
}

// linkKnowledge discovers new semantic edges from episode entity sets:
// when an episode's entities parse as unit IDs, the first entity is
// taken to reference every other entity in the same episode. Entities
// that are not unit identifiers (free-text concepts, file paths) are
// skipped, since a semantic edge is a relationship between code units
// specifically.
func (m *Manager) linkKnowledge(episodes []Episode) (int, error) {
	created := 0
	for _, ep := range episodes {
		if len(ep.Entities) < 2 {
			continue
		}
		from, err := ids.ParseUnitId(ep.Entities[0])
		if err != nil {
			continue
		}
		for _, entity := range ep.Entities[1:] {
			to, err := ids.ParseUnitId(entity)
			if err != nil {
				continue
			}
			if err := m.Semantic.LinkEdge(SemanticEdge{From: from, Kind: EdgeReferences, To: to}); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}
