// Package logging configures the process-wide slog logger. The terminal
// belongs to the UI, so records go to a file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dotse/slug"
)

type Level string

const (
	Debug Level = "debug"
	Info  Level = "info"
	Warn  Level = "warn"
	Error Level = "error"
)

// ParseLevel accepts a level name in any case. Unknown names map to Info.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case Debug:
		return Debug
	case Warn:
		return Warn
	case Error:
		return Error
	default:
		return Info
	}
}

// ToSlogLevel maps our levels to the equivalent slog level.
func ToSlogLevel(level Level) slog.Level {
	switch level {
	case Debug:
		return slog.LevelDebug
	case Info:
		return slog.LevelInfo
	case Warn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// NewLogger builds a slug logger writing to w.
func NewLogger(w io.Writer, level Level) *slog.Logger {
	opts := slug.HandlerOptions{
		HandlerOptions: slog.HandlerOptions{
			Level: ToSlogLevel(level),
		},
	}
	return slog.New(slug.NewHandler(opts, w))
}

// Setup opens (appending) the log file at path, installs a logger writing
// to it as the slog default and returns a cleanup function to call on
// shutdown. An empty path discards all records.
func Setup(path string, level Level) (func(), error) {
	if path == "" {
		slog.SetDefault(NewLogger(io.Discard, level))
		return func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	slog.SetDefault(NewLogger(logFile, level))

	return func() {
		if errClose := logFile.Close(); errClose != nil {
			fmt.Fprintf(os.Stderr, "Failed to close log file: %v\n", errClose)
		}
	}, nil
}
