package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordMatchCreatesThenIncrements(t *testing.T) {
	mgr := newTestManager(t)

	p, err := mgr.Procedural.RecordMatch("retry on timeout")
	require.NoError(t, err)
	require.Equal(t, 1, p.Occurrences)
	require.Equal(t, 0.5, p.Confidence)

	p, err = mgr.Procedural.RecordMatch("retry on timeout")
	require.NoError(t, err)
	require.Equal(t, 2, p.Occurrences)
}

func TestAdjustConfidenceClampsToUnitInterval(t *testing.T) {
	mgr := newTestManager(t)
	p, err := mgr.Procedural.RecordMatch("cache before network call")
	require.NoError(t, err)

	p, err = mgr.Procedural.AdjustConfidence(p.ID, 10)
	require.NoError(t, err)
	require.Equal(t, 1.0, p.Confidence)

	p, err = mgr.Procedural.AdjustConfidence(p.ID, -10)
	require.NoError(t, err)
	require.Equal(t, 0.0, p.Confidence)
}

func TestAdjustConfidenceUnknownIDReturnsNotFound(t *testing.T) {
	mgr := newTestManager(t)
	_, err := mgr.Procedural.AdjustConfidence(999, 0.1)
	require.Error(t, err)
}

func TestAboveFrequencyFiltersByOccurrenceCount(t *testing.T) {
	mgr := newTestManager(t)
	_, err := mgr.Procedural.RecordMatch("frequent pattern")
	require.NoError(t, err)
	_, err = mgr.Procedural.RecordMatch("frequent pattern")
	require.NoError(t, err)
	_, err = mgr.Procedural.RecordMatch("rare pattern")
	require.NoError(t, err)

	got, err := mgr.Procedural.AboveFrequency(2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "frequent pattern", got[0].Description)
}
