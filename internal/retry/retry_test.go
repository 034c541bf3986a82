package retry

import (
	"context"
	"testing"
	"time"

	"codegraph/internal/goerr"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsWithoutRetry(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return goerr.New(goerr.StorageError, "transient")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDoNeverRetriesNonTransient(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond}
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return goerr.New(goerr.InvalidInput, "bad request")
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
	require.True(t, goerr.Is(err, goerr.InvalidInput))
}

func TestDoExhaustsBudget(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return goerr.New(goerr.StorageError, "still down")
	})
	require.Error(t, err)
	require.Equal(t, 3, calls)
	require.True(t, goerr.Is(err, goerr.StorageError))
}

func TestDoRespectsCancellation(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Do(ctx, func(ctx context.Context) error {
		return goerr.New(goerr.StorageError, "down")
	})
	require.Error(t, err)
	require.True(t, goerr.Is(err, goerr.Cancelled))
}
