// Package pool implements a generic, fairness-preserving resource pool
// for expensive-to-open handles (database connections, primarily).
// Grounded on the original implementation's PoolConfig (referenced by
// original_source/cortex/cortex-vfs/tests/test_vfs_restrictions.rs,
// which constructs a cortex_storage::connection_pool::PoolConfig with
// min/max connections, timeouts, a retry policy, warm connections, and
// checkout validation) — rebuilt here as a Go generic pool parameterized
// over any closeable handle type, using the teacher's categorized
// logging and this module's retry.Policy for acquisition retries.
package pool

import (
	"container/list"
	"context"
	"io"
	"sync"
	"time"

	"codegraph/internal/config"
	"codegraph/internal/goerr"
	"codegraph/internal/logging"
	"codegraph/internal/retry"

	"golang.org/x/sync/errgroup"
)

// Factory opens a new connection handle.
type Factory[T io.Closer] func(ctx context.Context) (T, error)

// Validator checks whether a handle is still usable. A nil Validator
// disables checkout validation even if cfg.ValidateOnCheckout is set.
type Validator[T io.Closer] func(T) error

type entry[T io.Closer] struct {
	conn      T
	createdAt time.Time
	uses      int
}

// Pool is a FIFO-fair pool of handles of type T.
type Pool[T io.Closer] struct {
	cfg       config.PoolConfig
	factory   Factory[T]
	validate  Validator[T]
	retry     retry.Policy
	log       *logging.Logger

	mu      sync.Mutex
	idle    *list.List // of *entry[T], front = least recently released
	numOpen int
	waiters *list.List // of chan acquireResult[T]
	closed  bool
}

type acquireResult[T io.Closer] struct {
	e   *entry[T]
	err error
}

// New builds a Pool. factory opens new handles; validate (optional)
// checks a handle's health on checkout when cfg.ValidateOnCheckout is
// set.
func New[T io.Closer](cfg config.PoolConfig, factory Factory[T], validate Validator[T]) *Pool[T] {
	return &Pool[T]{
		cfg:      cfg,
		factory:  factory,
		validate: validate,
		retry:    retry.Policy{MaxAttempts: cfg.Retry.MaxAttempts, BaseDelay: cfg.Retry.BaseDelay, MaxDelay: cfg.Retry.MaxDelay},
		log:      logging.Get(logging.CategoryPool),
		idle:     list.New(),
		waiters:  list.New(),
	}
}

// Warmup eagerly opens cfg.WarmConnections handles in parallel.
func (p *Pool[T]) Warmup(ctx context.Context) error {
	if p.cfg.WarmConnections <= 0 {
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	opened := make([]*entry[T], 0, p.cfg.WarmConnections)
	for i := 0; i < p.cfg.WarmConnections; i++ {
		g.Go(func() error {
			e, err := p.open(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			opened = append(opened, e)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	p.mu.Lock()
	for _, e := range opened {
		p.idle.PushBack(e)
	}
	p.mu.Unlock()
	p.log.Info("pool: warmed up %d connections", len(opened))
	return nil
}

func (p *Pool[T]) open(ctx context.Context) (*entry[T], error) {
	var e *entry[T]
	err := p.retry.Do(ctx, func(ctx context.Context) error {
		conn, err := p.factory(ctx)
		if err != nil {
			return goerr.Wrap(goerr.StorageError, err, "pool: open connection")
		}
		e = &entry[T]{conn: conn, createdAt: time.Now()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.numOpen++
	p.mu.Unlock()
	return e, nil
}

// Acquire checks out a handle, opening a new one if under MaxConnections
// and none are idle, or waiting in FIFO order until one is released or
// cfg.ConnectionTimeout elapses.
func (p *Pool[T]) Acquire(ctx context.Context) (*Checkout[T], error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ConnectionTimeout)
	defer cancel()

	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, goerr.New(goerr.Internal, "pool: closed")
		}
		if front := p.idle.Front(); front != nil {
			e := p.idle.Remove(front).(*entry[T])
			p.mu.Unlock()
			if p.shouldRetire(e) {
				p.closeEntry(e)
				continue
			}
			if p.cfg.ValidateOnCheckout && p.validate != nil {
				if err := p.validate(e.conn); err != nil {
					p.log.Warn("pool: checkout validation failed, discarding: %v", err)
					p.closeEntry(e)
					continue
				}
			}
			e.uses++
			return &Checkout[T]{pool: p, entry: e}, nil
		}
		if p.numOpen < p.cfg.MaxConnections {
			p.mu.Unlock()
			e, err := p.open(ctx)
			if err != nil {
				return nil, err
			}
			e.uses++
			return &Checkout[T]{pool: p, entry: e}, nil
		}

		ch := make(chan acquireResult[T], 1)
		elem := p.waiters.PushBack(ch)
		p.mu.Unlock()

		select {
		case res := <-ch:
			if res.err != nil {
				return nil, res.err
			}
			res.e.uses++
			return &Checkout[T]{pool: p, entry: res.e}, nil
		case <-ctx.Done():
			p.mu.Lock()
			p.waiters.Remove(elem)
			p.mu.Unlock()
			return nil, goerr.Wrap(goerr.PoolExhausted, ctx.Err(), "pool: acquire timed out")
		}
	}
}

func (p *Pool[T]) shouldRetire(e *entry[T]) bool {
	if p.cfg.RecycleAfterUses > 0 && e.uses >= p.cfg.RecycleAfterUses {
		return true
	}
	if p.cfg.MaxLifetime > 0 && time.Since(e.createdAt) > p.cfg.MaxLifetime {
		return true
	}
	return false
}

func (p *Pool[T]) closeEntry(e *entry[T]) {
	_ = e.conn.Close()
	p.mu.Lock()
	p.numOpen--
	p.mu.Unlock()
}

// release returns a handle to the pool, handing it directly to the
// longest-waiting Acquire call if one is blocked (preserving FIFO
// order), otherwise pushing it onto the idle list.
func (p *Pool[T]) release(e *entry[T]) {
	p.mu.Lock()
	if p.shouldRetire(e) {
		p.mu.Unlock()
		p.closeEntry(e)
		return
	}
	if front := p.waiters.Front(); front != nil {
		ch := p.waiters.Remove(front).(chan acquireResult[T])
		p.mu.Unlock()
		ch <- acquireResult[T]{e: e}
		return
	}
	p.idle.PushBack(e)
	p.mu.Unlock()
}

// Shutdown closes every idle handle, fails every queued waiter, and waits
// up to cfg.ShutdownGrace for in-flight checkouts to be released. Handles
// still checked out when the grace period ends are not closed; their
// count is logged and Shutdown returns nil.
func (p *Pool[T]) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	for e := p.idle.Front(); e != nil; e = p.idle.Front() {
		ent := p.idle.Remove(e).(*entry[T])
		p.mu.Unlock()
		p.closeEntry(ent)
		p.mu.Lock()
	}
	for w := p.waiters.Front(); w != nil; w = p.waiters.Front() {
		ch := p.waiters.Remove(w).(chan acquireResult[T])
		ch <- acquireResult[T]{err: goerr.New(goerr.Internal, "pool: shutting down")}
	}
	p.mu.Unlock()

	deadline := time.After(p.cfg.ShutdownGrace)
	for {
		p.mu.Lock()
		remaining := p.numOpen
		p.mu.Unlock()
		if remaining == 0 {
			return nil
		}
		select {
		case <-deadline:
			p.log.Warn("pool: shutdown grace period elapsed with %d connections still open", remaining)
			return nil
		case <-ctx.Done():
			return goerr.Wrap(goerr.Cancelled, ctx.Err(), "pool: shutdown cancelled")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// Checkout is a borrowed handle; Release must be called exactly once.
type Checkout[T io.Closer] struct {
	pool  *Pool[T]
	entry *entry[T]
}

// Conn returns the underlying handle.
func (c *Checkout[T]) Conn() T { return c.entry.conn }

// Release returns the handle to the pool (or retires/closes it if past
// its recycle or lifetime limit).
func (c *Checkout[T]) Release() {
	c.pool.release(c.entry)
}
