package main

import (
	"fmt"
	"io"
	"log/slog"
)

// newLogger returns a logger writing to w. Diagnostics always go to stderr so
// they never mix with records on stdout.
func newLogger(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLevel converts a level name such as "debug", "info", "warn" or
// "error", optionally with an offset like "warn+2", to a slog.Level.
func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid --log-level %q (valid: debug, info, warn, error)", s)
	}
	return level, nil
}
