package memory

import (
	"testing"
	"time"

	"codegraph/internal/clock"

	"github.com/stretchr/testify/require"
)

func TestWorkingMemoryPutThenGet(t *testing.T) {
	w := NewWorkingMemory(2, clock.NewFake(time.Unix(0, 0)))
	w.Put("a", 1, PriorityNormal)

	v, ok := w.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestWorkingMemoryEvictsLowestPriorityFirst(t *testing.T) {
	w := NewWorkingMemory(2, clock.NewFake(time.Unix(0, 0)))
	w.Put("low", 1, PriorityLow)
	w.Put("high", 2, PriorityHigh)

	w.Put("new", 3, PriorityNormal)

	_, ok := w.Get("low")
	require.False(t, ok)
	_, ok = w.Get("high")
	require.True(t, ok)
	_, ok = w.Get("new")
	require.True(t, ok)
}

func TestWorkingMemoryEvictsOldestOnPriorityTie(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	w := NewWorkingMemory(2, fake)
	w.Put("first", 1, PriorityNormal)
	fake.Advance(time.Minute)
	w.Put("second", 2, PriorityNormal)
	fake.Advance(time.Minute)

	w.Put("third", 3, PriorityNormal)

	_, ok := w.Get("first")
	require.False(t, ok)
	_, ok = w.Get("second")
	require.True(t, ok)
}

func TestWorkingMemoryCriticalForcesEvictionOfLowerPriority(t *testing.T) {
	w := NewWorkingMemory(1, clock.NewFake(time.Unix(0, 0)))
	w.Put("normal", 1, PriorityNormal)

	w.Put("critical", 2, PriorityCritical)

	_, ok := w.Get("normal")
	require.False(t, ok)
	v, ok := w.Get("critical")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestWorkingMemoryOverwriteSameKeyDoesNotEvict(t *testing.T) {
	w := NewWorkingMemory(1, clock.NewFake(time.Unix(0, 0)))
	w.Put("a", 1, PriorityNormal)
	w.Put("a", 2, PriorityNormal)

	require.Equal(t, 1, w.Len())
	v, ok := w.Get("a")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestWorkingMemorySnapshotOrdersByPriorityThenRecency(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	w := NewWorkingMemory(10, fake)
	w.Put("old-high", 1, PriorityHigh)
	fake.Advance(time.Minute)
	w.Put("new-high", 2, PriorityHigh)
	w.Put("low", 3, PriorityLow)

	snap := w.Snapshot()
	require.Len(t, snap, 3)
	require.Equal(t, "new-high", snap[0].Key)
	require.Equal(t, "old-high", snap[1].Key)
	require.Equal(t, "low", snap[2].Key)
}
