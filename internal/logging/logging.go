// Package logging builds the structured slog.Logger vectorflowd runs with:
// JSON output to stdout, level driven by configuration, suited to a daemon
// whose logs are collected by whatever process supervises it.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New builds a JSON slog.Logger at the given level, writing to w.
func New(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler)
}

// SetupDefault builds a logger per New and installs it as slog's default,
// so packages that log via the top-level slog functions pick it up.
func SetupDefault(w io.Writer, level string) *slog.Logger {
	logger := New(w, level)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromString converts a string level to slog.Level.
func LevelFromString(level string) slog.Level {
	return parseLevel(level)
}
