package internal

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "info", Format: "json"}, &buf)

	log.Debug().Msg("hidden")
	log.Info().Str("file", "2025-01-01.md").Msg("added frontmatter")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "2025-01-01.md", line["file"])
	assert.Equal(t, "added frontmatter", line["message"])
}

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "debug"}, &buf)

	log.Debug().Msg("scheduled")

	assert.Contains(t, buf.String(), "scheduled")
}

func TestNewLoggerBadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "loud", Format: "json"}, &buf)

	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jsync.log")
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1}, &buf)

	log.Info().Msg("to both")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}
