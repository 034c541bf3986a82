package observability

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToolMetricsRecordSuccessAccumulates(t *testing.T) {
	m := newToolMetrics([]float64{10, 50, 100})
	m.RecordSuccess(5, 100, 50)
	m.RecordSuccess(15, 200, 75)

	snap := m.Snapshot("parse")
	require.Equal(t, int64(2), snap.SuccessCount)
	require.Equal(t, int64(0), snap.ErrorCount)
	require.Equal(t, int64(2), snap.TotalCalls)
	require.Equal(t, int64(300), snap.InputTokens)
	require.Equal(t, int64(125), snap.OutputTokens)
}

func TestToolMetricsRecordErrorTracksBreakdownByKind(t *testing.T) {
	m := newToolMetrics([]float64{10, 50, 100})
	m.RecordError(5, "NotFound")
	m.RecordError(8, "NotFound")
	m.RecordError(12, "Timeout")

	snap := m.Snapshot("search")
	require.Equal(t, int64(3), snap.ErrorCount)
	require.Equal(t, int64(3), snap.TotalCalls)
	require.Equal(t, int64(2), snap.ErrorBreakdown["NotFound"])
	require.Equal(t, int64(1), snap.ErrorBreakdown["Timeout"])
}

func TestToolMetricsConcurrentRecordsAreRaceFree(t *testing.T) {
	m := newToolMetrics([]float64{10, 50, 100})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordSuccess(1, 1, 1)
		}()
	}
	wg.Wait()

	snap := m.Snapshot("x")
	require.Equal(t, int64(50), snap.TotalCalls)
}
