// Package retry implements bounded exponential backoff with jitter. Its
// one consumer in this module is the connection pool (§4.4), which
// retries opening new connections with it.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"codegraph/internal/goerr"
)

// Policy configures exponential backoff with jitter, capped attempts.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// ErrAttemptsExhausted is an exported sentinel for an exhausted retry
// budget. Do does not return it: when the budget is spent, Do returns a
// goerr.StorageError wrapping the last underlying cause.
var ErrAttemptsExhausted = errors.New("retry: attempts exhausted")

// Do runs fn, retrying only on errors classified as transient by
// goerr.IsRetryable, until it succeeds, ctx is cancelled, or the attempt
// budget is exhausted.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return goerr.Wrap(goerr.Cancelled, err, "retry: context cancelled")
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !goerr.IsRetryable(goerr.KindOf(err)) {
			return err
		}
		if attempt == p.MaxAttempts-1 {
			break
		}

		delay := p.backoff(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return goerr.Wrap(goerr.Cancelled, ctx.Err(), "retry: context cancelled during backoff")
		case <-timer.C:
		}
	}
	return goerr.Wrap(goerr.StorageError, lastErr, "retry: attempts exhausted after %d tries", p.MaxAttempts)
}

// backoff computes base * 2^attempt, capped at MaxDelay, with +/-25% jitter.
func (p Policy) backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	d := base << attempt // base * 2^attempt
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	jitterRange := int64(d) / 4
	if jitterRange <= 0 {
		return d
	}
	jitter := rand.Int63n(2*jitterRange) - jitterRange
	result := int64(d) + jitter
	if result < 0 {
		result = 0
	}
	return time.Duration(result)
}
