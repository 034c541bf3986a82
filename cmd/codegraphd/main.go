// Command codegraphd is a thin cobra CLI over the code-knowledge
// engine's core services. It does not implement the REST/WebSocket/MCP
// surface described in spec §6 — those are external collaborators;
// this binary only wires the service objects together behind a couple
// of illustrative subcommands, the way the teacher's cmd/nerd/main.go
// wires subagents and stores behind its own rootCmd.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"codegraph/internal/config"
	"codegraph/internal/logging"

	"github.com/spf13/cobra"
)

var (
	flagWorkspace string
	flagConfig    string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "codegraphd",
	Short: "Code-knowledge engine daemon and maintenance CLI",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ws, err := filepath.Abs(flagWorkspace)
		if err != nil {
			return fmt.Errorf("resolve workspace path: %w", err)
		}
		flagWorkspace = ws

		logCfg := logging.Config{
			Enabled:    true,
			Level:      "info",
			JSONFormat: false,
			Dir:        filepath.Join(ws, ".codegraph", "logs"),
		}
		if flagVerbose {
			logCfg.Level = "debug"
		}
		if err := logging.Initialize(ws, logCfg); err != nil {
			fmt.Fprintf(os.Stderr, "codegraphd: warning: logging init failed: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagWorkspace, "workspace", ".", "workspace root directory")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config.yaml (defaults to <workspace>/.codegraph/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() (*config.Config, error) {
	path := flagConfig
	if path == "" {
		path = filepath.Join(flagWorkspace, ".codegraph", "config.yaml")
	}
	return config.Load(path)
}

func dbPath() string {
	return filepath.Join(flagWorkspace, ".codegraph", "codegraph.db")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
