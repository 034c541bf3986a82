package main

import (
	"path/filepath"
	"testing"
)

func TestDbPathJoinsWorkspaceDotCodegraph(t *testing.T) {
	orig := flagWorkspace
	defer func() { flagWorkspace = orig }()

	flagWorkspace = "/tmp/my-workspace"
	want := filepath.Join("/tmp/my-workspace", ".codegraph", "codegraph.db")
	if got := dbPath(); got != want {
		t.Fatalf("dbPath() = %q, want %q", got, want)
	}
}

func TestLoadConfigFallsBackToDefaultsWhenFileMissing(t *testing.T) {
	origWS, origCfg := flagWorkspace, flagConfig
	defer func() { flagWorkspace, flagConfig = origWS, origCfg }()

	flagWorkspace = t.TempDir()
	flagConfig = ""

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Pool.MaxConnections <= 0 {
		t.Fatalf("expected default pool config, got %+v", cfg.Pool)
	}
}

func TestRootCommandRegistersScanAndServe(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	if !names["scan"] {
		t.Fatal("expected scan subcommand to be registered")
	}
	if !names["serve"] {
		t.Fatal("expected serve subcommand to be registered")
	}
}
