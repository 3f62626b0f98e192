// Package logger builds the application's structured slog logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const defaultLogFile = "pocket-points.log"

// Config holds the logger configuration.
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
	File   string `mapstructure:"file"`
}

// NewLogger initializes a new slog logger based on the provided configuration.
// A nil output is resolved from cfg.Output.
func NewLogger(cfg Config, output io.Writer) *slog.Logger {
	if output == nil {
		w, _, err := OpenOutput(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log output, using stderr: %v\n", err)
			w = os.Stderr
		}
		output = w
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}
	return slog.New(handler)
}

// OpenOutput resolves the configured destination. The returned close function
// must be called when logging is done; it is a no-op for stdout and stderr.
func OpenOutput(cfg Config) (io.Writer, func(), error) {
	switch cfg.Output {
	case "stdout":
		return os.Stdout, func() {}, nil
	case "file":
		name := cfg.File
		if name == "" {
			name = defaultLogFile
		}
		f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, func() {}, fmt.Errorf("failed to open log file %s: %w", name, err)
		}
		return f, func() { _ = f.Close() }, nil
	default:
		return os.Stderr, func() {}, nil
	}
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
