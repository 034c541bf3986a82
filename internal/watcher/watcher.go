// Package watcher debounces and coalesces raw filesystem events into
// batches of logical changes, so downstream consumers (the VFS mirror,
// the AST reparse pipeline) see a settled picture of what changed rather
// than a flood of intermediate writes. Grounded on the original
// implementation's notify-based coalescing watcher (cortex-vfs's
// watcher.rs), rebuilt here over fsnotify the way the teacher builds its
// own concurrent subsystems: a raw-event goroutine feeding a pending
// table, and a ticking goroutine that flushes entries once they've been
// quiet for the debounce window.
package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"codegraph/internal/clock"
	"codegraph/internal/config"
	"codegraph/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// EventKind classifies a coalesced filesystem change.
type EventKind string

const (
	Created  EventKind = "Created"
	Modified EventKind = "Modified"
	Deleted  EventKind = "Deleted"
	Renamed  EventKind = "Renamed"
)

// FileEvent is a single coalesced change. From is only set for Renamed.
type FileEvent struct {
	Kind EventKind
	Path string
	From string
}

type pendingEvent struct {
	event       FileEvent
	lastUpdated time.Time
}

// pendingRename is a Rename half-event awaiting its matching Create, the
// way a physical mv(1) shows up on most platforms as two fsnotify events
// rather than the single rename-with-two-paths notify's recommended
// watcher produces.
type pendingRename struct {
	from string
	at   time.Time
}

// Watcher watches a set of root directories and emits debounced,
// coalesced batches of FileEvent over Events().
type Watcher struct {
	fsw    *fsnotify.Watcher
	cfg    config.WatcherConfig
	clk    clock.Clock
	log    *logging.Logger
	out    chan []FileEvent
	done   chan struct{}
	closed sync.Once

	mu      sync.Mutex
	pending map[string]pendingEvent
	renames map[string]pendingRename
}

// New creates a Watcher over roots (each walked recursively and added to
// the underlying fsnotify watch set).
func New(roots []string, cfg config.WatcherConfig, clk clock.Clock) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:     fsw,
		cfg:     cfg,
		clk:     clk,
		log:     logging.Get(logging.CategoryWatcher),
		out:     make(chan []FileEvent, 16),
		done:    make(chan struct{}),
		pending: make(map[string]pendingEvent),
		renames: make(map[string]pendingRename),
	}
	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	go w.readRawEvents()
	go w.flushLoop()
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Events returns the channel of coalesced event batches.
func (w *Watcher) Events() <-chan []FileEvent { return w.out }

// Close stops watching and releases the underlying fsnotify handle.
func (w *Watcher) Close() error {
	w.closed.Do(func() { close(w.done) })
	return w.fsw.Close()
}

func (w *Watcher) readRawEvents() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.ingest(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("fsnotify error: %v", err)
		}
	}
}

func (w *Watcher) ingest(ev fsnotify.Event) {
	now := w.clk.Now()
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case ev.Op&fsnotify.Create != 0:
		if from, ok := w.matchRename(ev.Name, now); ok {
			w.enqueueLocked(FileEvent{Kind: Renamed, Path: ev.Name, From: from}, now)
			return
		}
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = w.fsw.Add(ev.Name)
		}
		w.enqueueLocked(FileEvent{Kind: Created, Path: ev.Name}, now)

	case ev.Op&fsnotify.Write != 0:
		w.enqueueLocked(FileEvent{Kind: Modified, Path: ev.Name}, now)

	case ev.Op&fsnotify.Remove != 0:
		w.enqueueLocked(FileEvent{Kind: Deleted, Path: ev.Name}, now)

	case ev.Op&fsnotify.Rename != 0:
		// fsnotify fires Rename for the OLD path with no new-path
		// information; stash it and wait for a following Create to pair
		// with, within the debounce window.
		w.renames[ev.Name] = pendingRename{from: ev.Name, at: now}
	}
}

// matchRename consumes a pending rename half-event if one is still
// within the debounce window, pairing it with the incoming Create path.
func (w *Watcher) matchRename(path string, now time.Time) (string, bool) {
	for from, pr := range w.renames {
		if now.Sub(pr.at) <= w.cfg.DebounceDuration {
			delete(w.renames, from)
			return from, true
		}
	}
	return "", false
}

// enqueueLocked applies coalescing (mergeEvents) and updates the
// debounce timer for path. Caller holds w.mu.
func (w *Watcher) enqueueLocked(ev FileEvent, now time.Time) {
	if !w.cfg.CoalesceEvents {
		w.pending[ev.Path] = pendingEvent{event: ev, lastUpdated: now}
		return
	}
	if existing, ok := w.pending[ev.Path]; ok {
		w.pending[ev.Path] = pendingEvent{event: mergeEvents(existing.event, ev), lastUpdated: now}
		return
	}
	w.pending[ev.Path] = pendingEvent{event: ev, lastUpdated: now}
}

// mergeEvents implements the coalescing table from spec §4.3: repeated
// modifications collapse to one, create-then-modify stays a create,
// create-then-delete becomes a delete, modify-then-delete becomes a
// delete, delete-then-create becomes a modify (the file never really
// left), modify-then-create likewise stays a modify, and any other
// pairing takes the newer event as-is.
func mergeEvents(old, new FileEvent) FileEvent {
	switch {
	case old.Kind == Modified && new.Kind == Modified:
		return new
	case old.Kind == Created && new.Kind == Modified:
		return FileEvent{Kind: Created, Path: new.Path}
	case old.Kind == Created && new.Kind == Deleted:
		return new
	case old.Kind == Modified && new.Kind == Deleted:
		return new
	case old.Kind == Deleted && new.Kind == Created:
		return FileEvent{Kind: Modified, Path: new.Path}
	case old.Kind == Modified && new.Kind == Created:
		return FileEvent{Kind: Modified, Path: new.Path}
	default:
		return new
	}
}

func (w *Watcher) flushLoop() {
	ticker := w.clk.NewTicker(w.cfg.BatchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C():
			w.flush()
		}
	}
}

func (w *Watcher) flush() {
	now := w.clk.Now()
	w.mu.Lock()
	var ready []FileEvent
	for path, pe := range w.pending {
		if now.Sub(pe.lastUpdated) >= w.cfg.DebounceDuration {
			ready = append(ready, pe.event)
			delete(w.pending, path)
		}
	}
	forceAll := len(w.pending) >= w.cfg.MaxBatchSize
	if forceAll {
		w.log.Warn("watcher: pending set reached max batch size %d, forcing emission", w.cfg.MaxBatchSize)
		for path, pe := range w.pending {
			ready = append(ready, pe.event)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	if len(ready) == 0 {
		return
	}
	select {
	case w.out <- ready:
	case <-w.done:
	}
}
