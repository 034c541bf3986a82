package observability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistogramSnapshotWithNoObservationsIsZero(t *testing.T) {
	h := NewHistogram([]float64{10, 50, 100})
	snap := h.Snapshot()
	require.Equal(t, int64(0), snap.Count)
}

func TestHistogramComputesMean(t *testing.T) {
	h := NewHistogram([]float64{10, 50, 100})
	h.Observe(10)
	h.Observe(20)
	h.Observe(30)
	snap := h.Snapshot()
	require.Equal(t, int64(3), snap.Count)
	require.InDelta(t, 20.0, snap.Mean, 0.001)
}

func TestHistogramPercentilesFallWithinBucketBounds(t *testing.T) {
	h := NewHistogram([]float64{10, 50, 100})
	for i := 0; i < 100; i++ {
		h.Observe(5) // all in the first bucket
	}
	snap := h.Snapshot()
	require.Equal(t, 10.0, snap.P50)
	require.Equal(t, 10.0, snap.P95)
	require.Equal(t, 10.0, snap.P99)
}

func TestHistogramOverflowBucketCatchesLargeValues(t *testing.T) {
	h := NewHistogram([]float64{10, 50})
	h.Observe(1000)
	snap := h.Snapshot()
	require.Equal(t, int64(1), snap.Count)
	require.True(t, snap.P99 > 50)
}

func TestHistogramSpreadAcrossBucketsOrdersPercentiles(t *testing.T) {
	h := NewHistogram([]float64{10, 50, 100})
	for i := 0; i < 90; i++ {
		h.Observe(5)
	}
	for i := 0; i < 9; i++ {
		h.Observe(30)
	}
	h.Observe(80)
	snap := h.Snapshot()
	require.LessOrEqual(t, snap.P50, snap.P95)
	require.LessOrEqual(t, snap.P95, snap.P99)
}
