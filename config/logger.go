package config

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process logger for the given environment. Production
// gets JSON output for log shippers; anything else gets human-readable text.
// LOG_LEVEL accepts debug, info, warn, or error and defaults to info.
func NewLogger(env string) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(os.Getenv("LOG_LEVEL")))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
