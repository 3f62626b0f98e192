package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		debug     bool
		checkFunc func(t *testing.T, output string)
	}{
		{
			name:   "Text Logger Info Level",
			config: Config{Level: "info", Format: "text"},
			checkFunc: func(t *testing.T, output string) {
				assert.Contains(t, output, "level=INFO")
				assert.Contains(t, output, `msg="test message"`)
			},
		},
		{
			name:   "JSON Logger Debug Level",
			config: Config{Level: "debug", Format: "json"},
			debug:  true,
			checkFunc: func(t *testing.T, output string) {
				var logEntry map[string]any
				require.NoError(t, json.Unmarshal([]byte(output), &logEntry), output)
				assert.Equal(t, "DEBUG", logEntry["level"])
				assert.Equal(t, "test message", logEntry["msg"])
			},
		},
		{
			name:   "Debug suppressed at warn level",
			config: Config{Level: "warn", Format: "text"},
			debug:  true,
			checkFunc: func(t *testing.T, output string) {
				assert.Empty(t, output)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewLogger(tt.config, &buf)

			if tt.debug {
				log.Debug("test message")
			} else {
				log.Info("test message")
			}

			tt.checkFunc(t, buf.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestOpenOutput(t *testing.T) {
	w, closeFn, err := OpenOutput(Config{Output: "stdout"})
	require.NoError(t, err)
	assert.Same(t, os.Stdout, w)
	closeFn()

	path := filepath.Join(t.TempDir(), "app.log")
	w, closeFn, err = OpenOutput(Config{Output: "file", File: path})
	require.NoError(t, err)
	NewLogger(Config{Level: "info"}, w).Info("written to file")
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")

	_, _, err = OpenOutput(Config{Output: "file", File: filepath.Join(t.TempDir(), "missing", "app.log")})
	assert.Error(t, err)
}
