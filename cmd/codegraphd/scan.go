package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"codegraph/internal/ast"
	"codegraph/internal/clock"
	"codegraph/internal/codeunit"
	"codegraph/internal/contentstore"
	"codegraph/internal/docs"
	"codegraph/internal/ids"
	"codegraph/internal/logging"
	"codegraph/internal/parser"
	"codegraph/internal/search"
	"codegraph/internal/vfs"
	"codegraph/internal/vpath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Walk the workspace, populate the code-unit store, ingest docs, and build the search index",
	RunE:  runScan,
}

// runScan is the CLI's one-shot analogue of what the watcher (C5) plus
// ingestion pipeline does incrementally: parse every source file into
// code units, persist documentation files through the docs store, and
// write both into the search index. Grounded on the teacher's scanCmd
// (cmd/nerd/cmd_init_scan.go), which walks a workspace and feeds
// discovered files into storage up front rather than waiting on a live
// watcher.
func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := os.MkdirAll(filepath.Join(flagWorkspace, ".codegraph"), 0o755); err != nil {
		return err
	}

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

	p := parser.New()
	log := logging.Get(logging.CategoryConfig)

	ws, err := vfsSvc.CreateWorkspace(&vfs.Workspace{
		ID:         ids.NewWorkspaceId(),
		Name:       filepath.Base(flagWorkspace),
		Type:       vfs.WorkspaceMixed,
		SourcePath: flagWorkspace,
	})
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	ctx := context.Background()
	var codeCount, docCount int

	err = filepath.WalkDir(flagWorkspace, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".codegraph" || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			log.Warn("scan: skipping unreadable file %s: %v", path, readErr)
			return nil
		}

		rel, relErr := filepath.Rel(flagWorkspace, path)
		if relErr != nil {
			return nil
		}
		vp := vpath.New(rel)

		if lang, ok := ast.DetectLanguage(path); ok && p.Supports(lang) {
			if err := scanCodeFile(ctx, p, cuSvc, idx, ws, vp, lang, raw, log); err != nil {
				log.Warn("scan: failed parsing %s: %v", path, err)
			} else {
				codeCount++
			}
			return nil
		}

		doc, err := docStore.Ingest(rel, raw, nil, time.Now())
		if err != nil {
			log.Warn("scan: failed ingesting doc %s: %v", path, err)
			return nil
		}
		idx.Put(search.Document{
			ID: doc.ID.String(), EntityType: search.EntityDocument,
			Name: filepath.Base(rel), QualifiedName: vp.String(), FilePath: vp.String(),
			Content: doc.TextContent, DocType: string(doc.ContentType),
		})
		docCount++
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk workspace: %w", err)
	}

	if err := idx.Commit(); err != nil {
		return fmt.Errorf("commit search index: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "scanned %s: %d code units, %d documents indexed\n", flagWorkspace, codeCount, docCount)
	return nil
}

func scanCodeFile(ctx context.Context, p *parser.Parser, cuSvc *codeunit.Service, idx *search.Index, ws *vfs.Workspace, vp vpath.Path, lang ast.Language, raw []byte, log *logging.Logger) error {
	tree, err := p.Parse(ctx, lang, raw)
	if err != nil {
		return err
	}
	defer tree.Close()

	unit := &codeunit.CodeUnit{
		ID:            ids.NewUnitId(),
		WorkspaceID:   ws.ID,
		Kind:          codeunit.KindModule,
		Name:          vp.FileName(),
		QualifiedName: vp.String(),
		DisplayName:   vp.FileName(),
		FilePath:      vp.String(),
		Language:      string(lang),
		Body:          string(raw),
	}
	if _, err := cuSvc.CreateCodeUnit(unit); err != nil {
		return err
	}

	idx.Put(search.Document{
		ID:            unit.ID.String(),
		EntityType:    search.EntityUnit,
		Name:          unit.Name,
		QualifiedName: unit.QualifiedName,
		Body:          unit.Body,
		FilePath:      unit.FilePath,
		Language:      unit.Language,
		Kind:          string(unit.Kind),
	})
	return nil
}
