package memory

import (
	"testing"
	"time"

	"codegraph/internal/clock"
	"codegraph/internal/ids"

	"github.com/stretchr/testify/require"
)

func newConsolidationManager(t *testing.T, fake *clock.Fake) *Manager {
	t.Helper()
	db := openMemDB(t)
	mgr, err := Open(db, Options{
		WorkingCapacity:     10,
		MinPatternFrequency: 2,
		DecayHalfLife:       time.Hour,
		DuplicateSimilarity: 0.8,
		Clock:               fake,
	})
	require.NoError(t, err)
	return mgr
}

func TestConsolidateMergesNearDuplicateEpisodes(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	mgr := newConsolidationManager(t, fake)

	_, err := mgr.Episodic.Record(Episode{
		AgentID: "a1", TaskDescription: "refactor the parser module", Outcome: OutcomeSuccess,
		Entities: []string{"parser"}, Importance: 1, OccurredAt: fake.Now(),
	})
	require.NoError(t, err)
	_, err = mgr.Episodic.Record(Episode{
		AgentID: "a1", TaskDescription: "refactor the parser module now", Outcome: OutcomeSuccess,
		Entities: []string{"parser"}, Importance: 1, OccurredAt: fake.Now(),
	})
	require.NoError(t, err)

	stats, err := mgr.Consolidate()
	require.NoError(t, err)
	require.Equal(t, 1, stats.DuplicatesMerged)

	remaining, err := mgr.Episodic.All()
	require.NoError(t, err)
	require.Len(t, remaining, 1)
}

func TestConsolidateExtractsPatternFromQualifyingCluster(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	mgr := newConsolidationManager(t, fake)

	for i := 0; i < 2; i++ {
		fake.Advance(time.Hour)
		_, err := mgr.Episodic.Record(Episode{
			AgentID: "a1", TaskDescription: "deploy the service", Outcome: OutcomeSuccess,
			Entities: []string{"deploy-" + string(rune('a'+i))}, Importance: 1, OccurredAt: fake.Now(),
		})
		require.NoError(t, err)
	}

	stats, err := mgr.Consolidate()
	require.NoError(t, err)
	require.Equal(t, 1, stats.PatternsExtracted)

	patterns, err := mgr.Procedural.AboveFrequency(2)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
}

func TestConsolidateDecaysImportanceByAge(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	mgr := newConsolidationManager(t, fake)

	ep, err := mgr.Episodic.Record(Episode{
		AgentID: "a1", TaskDescription: "old task", Outcome: OutcomeSuccess,
		Importance: 1, OccurredAt: fake.Now(),
	})
	require.NoError(t, err)

	fake.Advance(time.Hour)
	stats, err := mgr.Consolidate()
	require.NoError(t, err)
	require.Equal(t, 1, stats.MemoriesDecayed)

	got, err := mgr.Episodic.GetByID(ep.ID)
	require.NoError(t, err)
	require.InDelta(t, 0.5, got.Importance, 1e-6)
}

func TestConsolidateLinksSemanticEdgesFromUnitEntities(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	mgr := newConsolidationManager(t, fake)

	from, to := ids.NewUnitId(), ids.NewUnitId()
	_, err := mgr.Episodic.Record(Episode{
		AgentID: "a1", TaskDescription: "trace call site", Outcome: OutcomeSuccess,
		Entities: []string{from.String(), to.String()}, Importance: 1, OccurredAt: fake.Now(),
	})
	require.NoError(t, err)

	stats, err := mgr.Consolidate()
	require.NoError(t, err)
	require.Equal(t, 1, stats.KnowledgeLinksCreated)

	edges, err := mgr.Semantic.DirectDependencies(from)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.Equal(t, to, edges[0].To)
}

func TestConsolidateWithNoEpisodesIsNoop(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	mgr := newConsolidationManager(t, fake)

	stats, err := mgr.Consolidate()
	require.NoError(t, err)
	require.Equal(t, 0, stats.EpisodesProcessed)
}
