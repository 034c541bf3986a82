package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"codegraph/internal/ast"
	"codegraph/internal/clock"
	"codegraph/internal/codeunit"
	"codegraph/internal/contentstore"
	"codegraph/internal/docs"
	"codegraph/internal/ids"
	"codegraph/internal/logging"
	"codegraph/internal/memory"
	"codegraph/internal/observability"
	"codegraph/internal/parser"
	"codegraph/internal/pool"
	"codegraph/internal/search"
	"codegraph/internal/sessionstore"
	"codegraph/internal/supervisor"
	"codegraph/internal/vfs"
	"codegraph/internal/vpath"
	"codegraph/internal/watcher"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
)

// dbConnFactory returns a pool.Factory opening a fresh *sql.DB handle
// against this workspace's database file on every pool growth.
func dbConnFactory() pool.Factory[*sql.DB] {
	return func(ctx context.Context) (*sql.DB, error) {
		return sql.Open("sqlite3", dbPath())
	}
}

// dbConnValidator pings a checked-out handle when the pool config asks
// for checkout validation.
func dbConnValidator(conn *sql.DB) error {
	return conn.Ping()
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the database supervisor, connection pool, and file watcher and block until interrupted",
	RunE:  runServe,
}

// runServe brings up every long-running core service the way the
// teacher's rootCmd.RunE brings up chat.RunInteractiveChat over an
// initialized workspace, except headless: no TUI, no chat loop, just
// the service plane kept alive until SIGINT/SIGTERM, matching spec
// §6's framing of this module as a library other processes embed.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := os.MkdirAll(filepath.Join(flagWorkspace, ".codegraph"), 0o755); err != nil {
		return err
	}

	sup := supervisor.New(cfg.Supervisor)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sup.Start(ctx); err != nil {
		return fmt.Errorf("start database supervisor: %w", err)
	}
	defer sup.Stop(context.Background())

	connPool := pool.New(cfg.Pool, dbConnFactory(), dbConnValidator)
	defer connPool.Shutdown(context.Background())

	db, err := sql.Open("sqlite3", dbPath())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	blobs, err := contentstore.Open(db)
	if err != nil {
		return fmt.Errorf("open content store: %w", err)
	}
	vfsStore, err := vfs.OpenStore(db)
	if err != nil {
		return fmt.Errorf("open vfs store: %w", err)
	}
	vfsSvc := vfs.New(vfsStore, blobs, cfg.VFS.CodeExtensions)

	cuStore, err := codeunit.OpenStore(db)
	if err != nil {
		return fmt.Errorf("open code-unit store: %w", err)
	}
	cuSvc := codeunit.NewService(cuStore, cfg.CodeUnit, clock.Real{})

	docStore, err := docs.Open(db)
	if err != nil {
		return fmt.Errorf("open docs store: %w", err)
	}
	idx, err := search.Open(db)
	if err != nil {
		return fmt.Errorf("open search index: %w", err)
	}
	if _, err := memory.Open(db, memory.Options{
		WorkingCapacity:     cfg.Memory.WorkingMemoryCapacity,
		MinPatternFrequency: cfg.Memory.MinPatternFrequency,
		DecayHalfLife:       cfg.Memory.DecayHalfLife,
		DuplicateSimilarity: cfg.Memory.DuplicateSimilarity,
		Clock:               clock.Real{},
	}); err != nil {
		return fmt.Errorf("open memory manager: %w", err)
	}

	w, err := watcher.New([]string{flagWorkspace}, cfg.Watcher, clock.Real{})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	registry := observability.NewRegistry(cfg.Observability.HistogramBuckets)
	sessions := sessionstore.Open(cfg.Sessions.ProjectsRoot, cfg.Sessions.CacheTTL, clock.Real{})
	_, _ = sessions.FindProjectByPath(flagWorkspace)

	ws, err := vfsSvc.CreateWorkspace(&vfs.Workspace{
		ID:         ids.NewWorkspaceId(),
		Name:       filepath.Base(flagWorkspace),
		Type:       vfs.WorkspaceMixed,
		SourcePath: flagWorkspace,
	})
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	live := &liveIngest{
		root:    flagWorkspace,
		ws:      ws,
		parser:  parser.New(),
		cuSvc:   cuSvc,
		docs:    docStore,
		idx:     idx,
		log:     logging.Get(logging.CategoryConfig),
		metrics: registry,
	}

	fmt.Fprintf(cmd.OutOrStdout(), "codegraphd serving workspace %s (supervisor mode=%s)\n", flagWorkspace, cfg.Supervisor.Mode)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case batch := <-w.Events():
			for _, ev := range batch {
				live.handle(ev)
			}
			if err := idx.Commit(); err != nil {
				live.log.Warn("serve: commit search index: %v", err)
			}
		case <-sig:
			fmt.Fprintln(cmd.OutOrStdout(), "codegraphd: shutting down")
			return nil
		}
	}
}

// liveIngest re-runs the scan pipeline's per-file logic against a
// single changed path each time the watcher reports a batch, keeping
// the code-unit store and search index in step with the filesystem the
// way the teacher's file watcher drives incremental knowledge-base
// updates rather than requiring a full rescan.
type liveIngest struct {
	root    string
	ws      *vfs.Workspace
	parser  *parser.Parser
	cuSvc   *codeunit.Service
	docs    *docs.Store
	idx     *search.Index
	log     *logging.Logger
	metrics *observability.Registry
}

func (l *liveIngest) handle(ev watcher.FileEvent) {
	start := time.Now()
	rel, err := filepath.Rel(l.root, ev.Path)
	if err != nil {
		return
	}

	if ev.Kind == watcher.Deleted {
		l.idx.DeleteSymbol(rel)
		l.metrics.RecordSuccess(observability.CounterSystem, float64(time.Since(start).Milliseconds()), 0, 0)
		return
	}

	raw, err := os.ReadFile(ev.Path)
	if err != nil {
		l.log.Warn("serve: skipping unreadable file %s: %v", ev.Path, err)
		l.metrics.RecordError(observability.CounterSystem, float64(time.Since(start).Milliseconds()), "read")
		return
	}
	vp := vpath.New(rel)

	if lang, ok := ast.DetectLanguage(ev.Path); ok && l.parser.Supports(lang) {
		if err := scanCodeFile(context.Background(), l.parser, l.cuSvc, l.idx, l.ws, vp, lang, raw, l.log); err != nil {
			l.log.Warn("serve: failed parsing %s: %v", ev.Path, err)
			l.metrics.RecordError(observability.CounterSystem, float64(time.Since(start).Milliseconds()), "parse")
			return
		}
		l.metrics.RecordSuccess(observability.CounterSystem, float64(time.Since(start).Milliseconds()), 0, 0)
		return
	}

	if _, err := l.docs.Ingest(rel, raw, nil, time.Now()); err != nil {
		l.log.Warn("serve: failed ingesting doc %s: %v", ev.Path, err)
		l.metrics.RecordError(observability.CounterSystem, float64(time.Since(start).Milliseconds()), "ingest")
		return
	}
	l.metrics.RecordSuccess(observability.CounterSystem, float64(time.Since(start).Milliseconds()), 0, 0)
}
