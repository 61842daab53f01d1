package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Init creates and sets the package-level default slog logger on stderr.
// When structured is true (stdout carries JSON), uses JSONHandler so the two
// streams stay machine-readable; otherwise TextHandler for humans.
func Init(structured bool, level slog.Level) *slog.Logger {
	logger := New(os.Stderr, structured, level)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger tagged with a fresh run id.
func New(w io.Writer, structured bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if structured {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("run", uuid.NewString())
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
