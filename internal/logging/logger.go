// Package logging provides config-driven categorized logging for codetree.
// Logs are written to .codetree/logs/ with separate files per category.
// Logging is controlled by debug_mode in .codetree/config.yaml - when false, no logs are written.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codetree/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, configuration
	CategoryTree      Category = "tree"      // Tree assembly, addressing
	CategoryParse     Category = "parse"     // Parser adapter, classification
	CategoryMutation  Category = "mutation"  // update/insert/delete
	CategoryWriteback Category = "writeback" // Dirty file flushing
	CategoryView      Category = "view"      // Windowed rendering
	CategoryTools     Category = "tools"     // Tool execution
	CategoryWatch     Category = "watch"     // Filesystem watcher
)

// Logger wraps a zap sugared logger bound to one category.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	settings  config.LoggingConfig
	configMu  sync.RWMutex
)

// Configure installs the logging settings. Should be called once at startup
// with the workspace path; logs go to <workspace>/.codetree/logs.
func Configure(ws string, cfg config.LoggingConfig) error {
	CloseAll()

	configMu.Lock()
	settings = cfg
	if ws != "" {
		logsDir = filepath.Join(ws, config.DirName, "logs")
	} else {
		logsDir = ""
	}
	configMu.Unlock()

	// Only create logs directory if debug mode is enabled
	if !cfg.DebugMode {
		return nil
	}
	if cfg.File != "stderr" {
		if logsDir == "" {
			return fmt.Errorf("workspace path required for file logging")
		}
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return fmt.Errorf("failed to create logs directory: %w", err)
		}
	}

	boot := Get(CategoryBoot)
	boot.Info("=== codetree logging initialized ===")
	boot.Info("Workspace: %s", ws)
	boot.Info("Log level: %s", cfg.Level)
	return nil
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return settings.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return settings.IsCategoryEnabled(string(category))
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category, sugar: zap.NewNop().Sugar()}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	base, err := buildZap(category)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not build logger for %s: %v\n", category, err)
		return &Logger{category: category, sugar: zap.NewNop().Sugar()}
	}

	l := &Logger{category: category, sugar: base.Named(string(category)).Sugar()}
	loggers[category] = l
	return l
}

func buildZap(category Category) (*zap.Logger, error) {
	configMu.RLock()
	cfg := settings
	dir := logsDir
	configMu.RUnlock()

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Sampling = nil
	zc.DisableStacktrace = true
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Format != "json" {
		zc.Encoding = "console"
	}

	if cfg.File == "stderr" {
		zc.OutputPaths = []string{"stderr"}
	} else {
		date := time.Now().Format("2006-01-02")
		zc.OutputPaths = []string{filepath.Join(dir, fmt.Sprintf("%s_%s.log", date, category))}
	}
	zc.ErrorOutputPaths = []string{"stderr"}

	return zc.Build()
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// With returns a logger carrying structured key-value context.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// CloseAll flushes and forgets all category loggers (call at shutdown)
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		_ = l.sugar.Sync()
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }

func Tree(format string, args ...interface{})      { Get(CategoryTree).Info(format, args...) }
func TreeDebug(format string, args ...interface{}) { Get(CategoryTree).Debug(format, args...) }
func TreeWarn(format string, args ...interface{})  { Get(CategoryTree).Warn(format, args...) }

func ParseDebug(format string, args ...interface{}) { Get(CategoryParse).Debug(format, args...) }
func ParseWarn(format string, args ...interface{})  { Get(CategoryParse).Warn(format, args...) }

func Mutation(format string, args ...interface{})      { Get(CategoryMutation).Info(format, args...) }
func MutationDebug(format string, args ...interface{}) { Get(CategoryMutation).Debug(format, args...) }
func MutationWarn(format string, args ...interface{})  { Get(CategoryMutation).Warn(format, args...) }

func Writeback(format string, args ...interface{})      { Get(CategoryWriteback).Info(format, args...) }
func WritebackError(format string, args ...interface{}) { Get(CategoryWriteback).Error(format, args...) }

func ViewDebug(format string, args ...interface{}) { Get(CategoryView).Debug(format, args...) }

func Tools(format string, args ...interface{})      { Get(CategoryTools).Info(format, args...) }
func ToolsDebug(format string, args ...interface{}) { Get(CategoryTools).Debug(format, args...) }

func Watch(format string, args ...interface{})     { Get(CategoryWatch).Info(format, args...) }
func WatchWarn(format string, args ...interface{}) { Get(CategoryWatch).Warn(format, args...) }

// =============================================================================
// REQUEST ID TRACING
// =============================================================================

// RequestLogger provides request-scoped logging with a correlation ID
type RequestLogger struct {
	*Logger
	requestID string
}

// WithRequestID creates a request-scoped logger
func WithRequestID(category Category, requestID string) *RequestLogger {
	return &RequestLogger{
		Logger:    Get(category).With("req", requestID),
		requestID: requestID,
	}
}

// RequestID returns the correlation ID.
func (r *RequestLogger) RequestID() string {
	return r.requestID
}

// WithField adds a field to the request logger
func (r *RequestLogger) WithField(key string, value interface{}) *RequestLogger {
	return &RequestLogger{Logger: r.Logger.With(key, value), requestID: r.requestID}
}

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
