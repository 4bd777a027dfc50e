// Package logging provides categorized zap loggers for boardpoints.
//
// Every category logs through the console logger handed to Initialize. In
// debug mode each category also appends JSON lines to
// <workspace>/.boardpoints/logs/<date>_<category>.log.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot        Category = "boot"        // Startup, config loading
	CategoryBoard       Category = "board"       // Aggregation and annotation passes
	CategoryBrowser     Category = "browser"     // Chrome sessions, live pages
	CategoryRunner      Category = "runner"      // Pollers and file watchers
	CategoryPerformance Category = "performance" // Slow ticks
)

// Config controls which categories log and where.
type Config struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories"`
}

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	config  Config
	logsDir string
	loggers = make(map[Category]*zap.Logger)
	files   []*os.File
)

// Initialize installs the console logger and, in debug mode, prepares the
// per-category log directory under ws.
func Initialize(ws string, cfg Config, console *zap.Logger) error {
	CloseAll()

	mu.Lock()
	defer mu.Unlock()

	if console == nil {
		console = zap.NewNop()
	}
	base = console
	config = cfg
	logsDir = ""

	if !cfg.DebugMode {
		return nil
	}
	if ws == "" {
		return fmt.Errorf("workspace path required for debug logging")
	}
	dir := filepath.Join(ws, ".boardpoints", "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	logsDir = dir
	return nil
}

// IsDebugMode returns whether file logging is enabled.
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return config.DebugMode
}

// IsCategoryEnabled returns whether a category logs at all. Categories absent
// from the config are enabled.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabledLocked(category)
}

func categoryEnabledLocked(category Category) bool {
	if config.Categories == nil {
		return true
	}
	enabled, exists := config.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) the logger for a category. A disabled category
// gets a no-op logger.
func Get(category Category) *zap.Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	if !categoryEnabledLocked(category) {
		l := zap.NewNop()
		loggers[category] = l
		return l
	}

	l := base.Named(string(category))
	if logsDir != "" {
		if fileCore, err := openFileCoreLocked(category); err != nil {
			fmt.Fprintf(os.Stderr, "[logging] Warning: %v\n", err)
		} else {
			l = l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
				return zapcore.NewTee(c, fileCore)
			}))
		}
	}
	loggers[category] = l
	return l
}

func openFileCoreLocked(category Category) (zapcore.Core, error) {
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open log file %s: %w", logPath, err)
	}
	files = append(files, file)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if config.JSONFormat {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewCore(enc, zapcore.AddSync(file), fileLevel(config.Level)), nil
}

func fileLevel(level string) zapcore.Level {
	if level == "warning" {
		return zapcore.WarnLevel
	}
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// CloseAll syncs and closes all open log files (call at shutdown).
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()

	for _, l := range loggers {
		_ = l.Sync()
	}
	for _, f := range files {
		_ = f.Close()
	}
	files = nil
	loggers = make(map[Category]*zap.Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

// Boot logs to the boot category
func Boot(msg string, fields ...zap.Field) {
	Get(CategoryBoot).Info(msg, fields...)
}

func BootWarn(msg string, fields ...zap.Field) {
	Get(CategoryBoot).Warn(msg, fields...)
}

// Browser logs to the browser category
func Browser(msg string, fields ...zap.Field) {
	Get(CategoryBrowser).Info(msg, fields...)
}

func BrowserDebug(msg string, fields ...zap.Field) {
	Get(CategoryBrowser).Debug(msg, fields...)
}

func BrowserWarn(msg string, fields ...zap.Field) {
	Get(CategoryBrowser).Warn(msg, fields...)
}

// Runner logs to the runner category
func Runner(msg string, fields ...zap.Field) {
	Get(CategoryRunner).Info(msg, fields...)
}

func RunnerDebug(msg string, fields ...zap.Field) {
	Get(CategoryRunner).Debug(msg, fields...)
}

func RunnerError(msg string, fields ...zap.Field) {
	Get(CategoryRunner).Error(msg, fields...)
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
	Get(t.category).Debug("operation completed", zap.String("op", t.op), zap.Duration("elapsed", elapsed))
	return elapsed
}

// StopWithThreshold logs a warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("slow operation",
			zap.String("op", t.op),
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", threshold))
	} else {
		Get(t.category).Debug("operation completed", zap.String("op", t.op), zap.Duration("elapsed", elapsed))
	}
	return elapsed
}
