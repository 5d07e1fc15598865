// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// StderrPath selects standard error as the log destination.
const StderrPath = "-"

// Config holds logger configuration.
type Config struct {
	Writer  io.Writer
	Level   slog.Level
	NoColor bool
}

// New creates a tint-backed logger.
func New(cfg Config) *slog.Logger {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	return slog.New(tint.NewHandler(cfg.Writer, &tint.Options{
		Level:      cfg.Level,
		TimeFormat: time.DateTime,
		NoColor:    cfg.NoColor,
	}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel converts a string to slog.Level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Open returns the log destination for path and a func that closes it.
// Files are appended to; StderrPath keeps colors, files do not.
func Open(path string, level slog.Level) (*slog.Logger, func() error, error) {
	if path == StderrPath {
		return New(Config{Writer: os.Stderr, Level: level}), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(Config{Writer: f, Level: level, NoColor: true}), f.Close, nil
}
