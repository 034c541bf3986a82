package supervisor

import (
	"context"
	"testing"
	"time"

	"codegraph/internal/config"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedModeStartIsNoopProcess(t *testing.T) {
	s := New(config.SupervisorConfig{Mode: "embedded"})
	require.Equal(t, StateStopped, s.State())

	require.NoError(t, s.Start(context.Background()))
	require.Equal(t, StateRunning, s.State())
}

func TestEmbeddedModeStopIsIdempotent(t *testing.T) {
	s := New(config.SupervisorConfig{Mode: "embedded"})
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	require.Equal(t, StateStopped, s.State())
	require.NoError(t, s.Stop(context.Background()))
}

func TestEmbeddedModeStartIsIdempotentWhileRunning(t *testing.T) {
	s := New(config.SupervisorConfig{Mode: "embedded"})
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	require.Equal(t, StateRunning, s.State())
}

func TestRemoteModeStartFailsFastOnMissingBinary(t *testing.T) {
	s := New(config.SupervisorConfig{
		Mode:           "remote",
		BinaryPath:     "/nonexistent/does-not-exist-binary",
		DataDir:        t.TempDir(),
		StartupTimeout: 200 * time.Millisecond,
		PollInterval:   10 * time.Millisecond,
		ShutdownGrace:  200 * time.Millisecond,
	})
	err := s.Start(context.Background())
	require.Error(t, err)
	require.Equal(t, StateFailed, s.State())
}
