package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer

	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)
	logger.Info("pipeline ready", "top_k", 5)

	assert.Contains(t, stderr.String(), "pipeline ready", "text handler writes to stderr")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry), "file handler writes JSON")
	assert.Equal(t, "pipeline ready", entry["msg"])
	assert.Equal(t, float64(5), entry["top_k"])
}

func TestSetupLoggerWithWritersLevelFilter(t *testing.T) {
	var stderr, file bytes.Buffer

	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelWarn)
	logger.Info("too quiet")
	logger.Warn("loud enough")

	assert.NotContains(t, stderr.String(), "too quiet")
	assert.Contains(t, stderr.String(), "loud enough")
	assert.NotContains(t, file.String(), "too quiet")
}
