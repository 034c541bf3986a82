// Package logging provides config-driven categorized logging for the
// code-knowledge engine. Every subsystem logs through a named Category so
// that operators can enable or silence one component (the watcher, the
// pool, the search engine, ...) without touching the others. Output is
// backed by zap; when no config has been loaded yet, Get returns a no-op
// logger rather than panicking, so packages can log during init() safely.
package logging

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category identifies the subsystem emitting a log line.
type Category string

const (
	CategoryVFS           Category = "vfs"
	CategoryContentStore  Category = "contentstore"
	CategoryWatcher       Category = "watcher"
	CategoryPool          Category = "pool"
	CategorySupervisor    Category = "supervisor"
	CategoryParser        Category = "parser"
	CategoryMetrics       Category = "metrics"
	CategoryCodeUnit      Category = "codeunit"
	CategorySearch        Category = "search"
	CategoryMemory        Category = "memory"
	CategoryDocs          Category = "docs"
	CategorySession       Category = "session"
	CategoryObservability Category = "observability"
	CategoryEmbedding     Category = "embedding"
	CategoryConfig        Category = "config"
)

// Config mirrors the subset of application configuration logging cares
// about; it is duplicated here (rather than imported) to avoid a cycle
// with the config package, matching the convention the rest of this
// codebase uses to keep low-level packages import-free of config.
type Config struct {
	Enabled    bool            `yaml:"enabled"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories"`
	Dir        string          `yaml:"dir"`
}

var (
	mu        sync.RWMutex
	cfg       Config
	loggers   = make(map[Category]*Logger)
	base      *zap.Logger
	noop      = zap.NewNop()
	level     zap.AtomicLevel
	loadedDir string
)

// Initialize configures the logging package for a workspace root. Safe to
// call multiple times; the most recent call wins.
func Initialize(workspaceRoot string, c Config) error {
	mu.Lock()
	defer mu.Unlock()

	cfg = c
	loggers = make(map[Category]*Logger)

	if !cfg.Enabled {
		base = noop
		return nil
	}

	dir := cfg.Dir
	if dir == "" {
		dir = filepath.Join(workspaceRoot, ".codegraph", "logs")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	loadedDir = dir

	level = zap.NewAtomicLevel()
	level.SetLevel(parseLevel(cfg.Level))

	logPath := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	if cfg.JSONFormat {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg2 := zap.NewDevelopmentEncoderConfig()
		encoder = zapcore.NewConsoleEncoder(encCfg2)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(f), level)
	base = zap.New(core)
	return nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func isCategoryEnabled(category Category) bool {
	if cfg.Categories == nil {
		return true
	}
	enabled, exists := cfg.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Logger is a category-scoped sugared logger.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

// Get returns (or creates) the logger for category. Returns a no-op
// logger if logging is disabled or the category is turned off.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	b := base
	if b == nil {
		b = noop
	}
	if !isCategoryEnabled(category) {
		b = noop
	}

	l := &Logger{category: category, sugar: b.With(zap.String("category", string(category))).Sugar()}
	loggers[category] = l
	return l
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// With returns a logger enriched with structured key-value fields.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(kv...)}
}

// Timer measures and logs the duration of an operation.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation in the given category.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo ends the timer and logs the duration at info level.
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if the duration exceeds threshold,
// otherwise logs at debug level.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}

// Sync flushes any buffered log entries. Call at shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if base != nil {
		_ = base.Sync()
	}
}

// IsEnabled reports whether logging has been initialized and enabled.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return cfg.Enabled
}
