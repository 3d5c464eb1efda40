package log_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nge-dev/nge/internal/log"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.LevelTrace, log.ParseLevel("trace"))
	assert.Equal(t, slog.LevelDebug, log.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, log.ParseLevel(""))
	assert.Equal(t, slog.LevelWarn, log.ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, log.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, log.ParseLevel("bogus"))
}

func TestConsoleSplitsByLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger, closers, err := log.SetupLoggerTo("debug", "", "text", &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, closers)

	logger.Debug("generated", "path", "a.post.ts")
	logger.Error("render failed")

	assert.Contains(t, stdout.String(), "msg=generated")
	assert.NotContains(t, stdout.String(), "render failed")
	assert.Contains(t, stderr.String(), "render failed")
	assert.NotContains(t, stderr.String(), "generated")
}

func TestTraceLevelName(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger, _, err := log.SetupLoggerTo("trace", "", "text", &stdout, &stderr)
	require.NoError(t, err)
	logger.Log(t.Context(), log.LevelTrace, "scanned")
	assert.Contains(t, stdout.String(), "level=TRACE")
}

func TestJSONFormatAndFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	file := filepath.Join(t.TempDir(), "nge.log")
	logger, closers, err := log.SetupLoggerTo("info", file, "json", &stdout, &stderr)
	require.NoError(t, err)
	require.Len(t, closers, 1)

	logger.Info("loaded", "count", 2)
	logger.Debug("hidden")
	require.NoError(t, closers[0].Close())

	var rec map[string]any
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &rec))
	assert.Equal(t, "loaded", rec["msg"])
	assert.Equal(t, float64(2), rec["count"])
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"loaded"`)
	assert.NotContains(t, string(data), "hidden")
}
