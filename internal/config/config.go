// Package config loads and validates the engine's YAML configuration,
// covering every ambient and domain concern named in the specification:
// VFS write policy, the connection pool, the DB supervisor, the watcher,
// search, cognitive memory, and observability.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration object, loaded from a single YAML file
// (conventionally <workspace>/.codegraph/config.yaml).
type Config struct {
	Logging      LoggingConfig      `yaml:"logging"`
	VFS          VFSConfig          `yaml:"vfs"`
	Watcher      WatcherConfig      `yaml:"watcher"`
	Pool         PoolConfig         `yaml:"pool"`
	Supervisor   SupervisorConfig   `yaml:"supervisor"`
	CodeUnit     CodeUnitConfig     `yaml:"code_unit"`
	Search       SearchConfig       `yaml:"search"`
	Memory       MemoryConfig       `yaml:"memory"`
	Embedding    EmbeddingConfig    `yaml:"embedding"`
	Observability ObservabilityConfig `yaml:"observability"`
	Docs         DocsConfig         `yaml:"docs"`
	Sessions     SessionStoreConfig `yaml:"sessions"`
}

// LoggingConfig configures the logging package (mirrors logging.Config).
type LoggingConfig struct {
	Enabled    bool            `yaml:"enabled"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories"`
	Dir        string          `yaml:"dir"`
}

// VFSConfig controls the write policy enforced by C4.
type VFSConfig struct {
	// CodeExtensions is the fixed default write-rejection set from spec §4.2.
	// A Workspace may override this via Workspace.AllowedWritePolicy
	// (Open Question #1 decision, see DESIGN.md).
	CodeExtensions []string `yaml:"code_extensions"`
}

// DefaultCodeExtensions returns the fixed policy set named verbatim in
// spec §4.2.
func DefaultCodeExtensions() []string {
	return []string{
		".rs", ".ts", ".tsx", ".js", ".jsx", ".py", ".go", ".java",
		".cpp", ".cc", ".c", ".h", ".hpp", ".cs", ".rb", ".php",
		".swift", ".kt", ".scala", ".sh", ".bash",
	}
}

// WatcherConfig configures the debounced file watcher (C5).
type WatcherConfig struct {
	DebounceDuration time.Duration `yaml:"debounce_duration"`
	BatchInterval    time.Duration `yaml:"batch_interval"`
	MaxBatchSize     int           `yaml:"max_batch_size"`
	CoalesceEvents   bool          `yaml:"coalesce_events"`
}

// PoolConfig configures the connection pool (C6).
type PoolConfig struct {
	MinConnections     int           `yaml:"min_connections"`
	MaxConnections     int           `yaml:"max_connections"`
	ConnectionTimeout  time.Duration `yaml:"connection_timeout"`
	IdleTimeout        time.Duration `yaml:"idle_timeout"`
	MaxLifetime        time.Duration `yaml:"max_lifetime"`
	WarmConnections    int           `yaml:"warm_connections"`
	ValidateOnCheckout bool          `yaml:"validate_on_checkout"`
	RecycleAfterUses   int           `yaml:"recycle_after_uses"`
	ShutdownGrace      time.Duration `yaml:"shutdown_grace_period"`
	Retry              RetryConfig   `yaml:"retry"`
}

// RetryConfig configures exponential backoff with jitter (§4.4, §7).
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

// SupervisorConfig configures the DB supervisor (C7).
type SupervisorConfig struct {
	Mode           string        `yaml:"mode"` // "embedded" or "remote"
	BinaryPath     string        `yaml:"binary_path"`
	DataDir        string        `yaml:"data_dir"`
	PIDFile        string        `yaml:"pid_file"`
	HealthURL      string        `yaml:"health_url"`
	StartupTimeout time.Duration `yaml:"startup_timeout"`
	ShutdownGrace  time.Duration `yaml:"shutdown_grace_period"`
	PollInterval   time.Duration `yaml:"poll_interval"`
}

// CodeUnitConfig configures the code-unit cache (C11).
type CodeUnitConfig struct {
	IDCacheSize    int           `yaml:"id_cache_size"`
	NameCacheSize  int           `yaml:"name_cache_size"`
	TTL            time.Duration `yaml:"ttl"`
	TimeToIdle     time.Duration `yaml:"time_to_idle"`
}

// SearchConfig configures the search engine (C13).
type SearchConfig struct {
	IndexDir      string  `yaml:"index_dir"`
	DefaultLimit  int     `yaml:"default_limit"`
	FuzzyDistance int     `yaml:"fuzzy_distance"`
	MinScore      float64 `yaml:"min_score"`
}

// MemoryConfig configures cognitive memory (C14).
type MemoryConfig struct {
	WorkingMemoryCapacity int           `yaml:"working_memory_capacity"`
	ConsolidationInterval time.Duration `yaml:"consolidation_interval"`
	MinPatternFrequency   int           `yaml:"min_pattern_frequency"`
	DecayHalfLife         time.Duration `yaml:"decay_half_life"`
	DuplicateSimilarity   float64       `yaml:"duplicate_similarity"`
}

// EmbeddingConfig configures the narrow embedding-consumer interface.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"`
	OllamaEndpoint string `yaml:"ollama_endpoint"`
	OllamaModel    string `yaml:"ollama_model"`
	GenAIModel     string `yaml:"genai_model"`
	TaskType       string `yaml:"task_type"`
}

// ObservabilityConfig configures per-tool metrics (C16).
type ObservabilityConfig struct {
	HistogramBuckets []float64 `yaml:"histogram_buckets_ms"`
}

// DocsConfig configures document ingestion (C15).
type DocsConfig struct {
	MaxChunkBytes int `yaml:"max_chunk_bytes"`
}

// SessionStoreConfig configures session/project discovery (C17).
type SessionStoreConfig struct {
	ProjectsRoot string        `yaml:"projects_root"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// DefaultConfig returns the engine's default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
		},
		VFS: VFSConfig{
			CodeExtensions: DefaultCodeExtensions(),
		},
		Watcher: WatcherConfig{
			DebounceDuration: 300 * time.Millisecond,
			BatchInterval:    500 * time.Millisecond,
			MaxBatchSize:     500,
			CoalesceEvents:   true,
		},
		Pool: PoolConfig{
			MinConnections:     1,
			MaxConnections:     10,
			ConnectionTimeout:  5 * time.Second,
			IdleTimeout:        5 * time.Minute,
			MaxLifetime:        30 * time.Minute,
			WarmConnections:    1,
			ValidateOnCheckout: true,
			RecycleAfterUses:   0,
			ShutdownGrace:      10 * time.Second,
			Retry: RetryConfig{
				MaxAttempts: 5,
				BaseDelay:   50 * time.Millisecond,
				MaxDelay:    2 * time.Second,
			},
		},
		Supervisor: SupervisorConfig{
			Mode:           "embedded",
			StartupTimeout: 10 * time.Second,
			ShutdownGrace:  5 * time.Second,
			PollInterval:   100 * time.Millisecond,
		},
		CodeUnit: CodeUnitConfig{
			IDCacheSize:   5000,
			NameCacheSize: 5000,
			TTL:           10 * time.Minute,
			TimeToIdle:    2 * time.Minute,
		},
		Search: SearchConfig{
			DefaultLimit:  20,
			FuzzyDistance: 2,
			MinScore:      0,
		},
		Memory: MemoryConfig{
			WorkingMemoryCapacity: 2000,
			ConsolidationInterval: time.Hour,
			MinPatternFrequency:   3,
			DecayHalfLife:         30 * 24 * time.Hour,
			DuplicateSimilarity:   0.82,
		},
		Embedding: EmbeddingConfig{
			Provider:       "ollama",
			OllamaEndpoint: "http://localhost:11434",
			OllamaModel:    "embeddinggemma",
			GenAIModel:     "gemini-embedding-001",
			TaskType:       "SEMANTIC_SIMILARITY",
		},
		Observability: ObservabilityConfig{
			HistogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
		Docs: DocsConfig{
			MaxChunkBytes: 2000,
		},
		Sessions: SessionStoreConfig{
			ProjectsRoot: defaultProjectsRoot(),
			CacheTTL:     30 * time.Second,
		},
	}
}

// defaultProjectsRoot returns ~/.claude/projects, matching spec §4.13's
// on-disk layout. Falls back to a relative path if the home directory
// can't be determined (e.g. a minimal container environment).
func defaultProjectsRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".claude", "projects")
	}
	return filepath.Join(home, ".claude", "projects")
}

// Load reads and parses a YAML config file, overlaying it onto the
// defaults and then applying environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets a small set of environment variables override
// config values without editing the file, the same precedence-chain
// idiom used for provider credentials elsewhere in this stack.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CODEGRAPH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CODEGRAPH_SUPERVISOR_MODE"); v != "" {
		c.Supervisor.Mode = v
	}
	if v := os.Getenv("CODEGRAPH_DB_BINARY"); v != "" {
		c.Supervisor.BinaryPath = v
	}
	if v := os.Getenv("CODEGRAPH_DATA_DIR"); v != "" {
		c.Supervisor.DataDir = v
	}
}

// Validate checks invariants that must hold before the config is used to
// build services: positive pool bounds, a supported supervisor mode, a
// positive watcher max batch size, and a positive working-memory capacity.
func (c *Config) Validate() error {
	if c.Pool.MaxConnections <= 0 {
		return fmt.Errorf("config: pool.max_connections must be > 0")
	}
	if c.Pool.MinConnections < 0 || c.Pool.MinConnections > c.Pool.MaxConnections {
		return fmt.Errorf("config: pool.min_connections must be between 0 and max_connections")
	}
	if c.Supervisor.Mode != "embedded" && c.Supervisor.Mode != "remote" {
		return fmt.Errorf("config: supervisor.mode must be 'embedded' or 'remote', got %q", c.Supervisor.Mode)
	}
	if c.Watcher.MaxBatchSize <= 0 {
		return fmt.Errorf("config: watcher.max_batch_size must be > 0")
	}
	if c.Memory.WorkingMemoryCapacity <= 0 {
		return fmt.Errorf("config: memory.working_memory_capacity must be > 0")
	}
	return nil
}
