// Package logging configures structured logging with tint.
//
// The TUI owns the terminal, so records go to a log file rather than stderr.
// Level names: debug, info, warn, error (default: info). LOG_LEVEL overrides
// the configured level when set.
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

// Setup opens (or creates) the log file at path and installs a tint handler
// writing to it as the default slog logger. Close the returned file on exit.
func Setup(path, level string) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}

	logger := New(f, ParseLevel(level))
	slog.SetDefault(logger)
	return logger, f, nil
}

// New returns a tint logger writing uncolored records to w
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
			NoColor:    true,
		}),
	)
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return New(io.Discard, slog.LevelError)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
