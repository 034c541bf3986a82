package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitializeDisabledIsNoop(t *testing.T) {
	require.NoError(t, Initialize(t.TempDir(), Config{Enabled: false}))
	l := Get(CategoryVFS)
	require.NotPanics(t, func() { l.Info("hello %s", "world") })
}

func TestInitializeEnabledWritesLog(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(dir, Config{Enabled: true, Level: "debug", JSONFormat: true}))
	l := Get(CategoryWatcher)
	l.Info("batch emitted: %d events", 3)
	Sync()

	files, err := filepath.Glob(filepath.Join(dir, ".codegraph", "logs", "*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	require.Contains(t, string(data), "batch emitted: 3 events")
}

func TestCategoryDisabledSuppressesOutput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(dir, Config{
		Enabled:    true,
		Level:      "debug",
		Categories: map[string]bool{string(CategorySearch): false},
	}))
	l := Get(CategorySearch)
	require.NotPanics(t, func() { l.Error("should be suppressed") })
	Sync()

	files, err := filepath.Glob(filepath.Join(dir, ".codegraph", "logs", "*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	require.NotContains(t, string(data), "should be suppressed")
}
