package observability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRegistryPreSeedsAmbientCounters(t *testing.T) {
	r := NewRegistry([]float64{10, 50, 100})
	global := r.Global()
	require.Contains(t, global.Tools, CounterMemory)
	require.Contains(t, global.Tools, CounterSearch)
	require.Contains(t, global.Tools, CounterSession)
	require.Contains(t, global.Tools, CounterToken)
	require.Contains(t, global.Tools, CounterSystem)
}

func TestRegistryRecordSuccessCreatesToolOnFirstUse(t *testing.T) {
	r := NewRegistry([]float64{10, 50, 100})
	r.RecordSuccess("parse", 5, 10, 20)

	snap := r.Snapshot("parse")
	require.Equal(t, int64(1), snap.SuccessCount)
	require.Equal(t, int64(10), snap.InputTokens)
}

func TestRegistrySnapshotOfUnknownToolIsZeroValue(t *testing.T) {
	r := NewRegistry([]float64{10, 50, 100})
	snap := r.Snapshot("never-called")
	require.Equal(t, int64(0), snap.TotalCalls)
	require.NotNil(t, snap.ErrorBreakdown)
}

func TestRegistryGlobalAggregatesAllTools(t *testing.T) {
	r := NewRegistry([]float64{10, 50, 100})
	r.RecordSuccess("parse", 5, 1, 1)
	r.RecordError("parse", 5, "Timeout")
	r.RecordSuccess(CounterSearch, 5, 1, 1)

	global := r.Global()
	require.Equal(t, int64(2), global.Tools["parse"].TotalCalls)
	require.Equal(t, int64(1), global.Search.TotalCalls)
}
