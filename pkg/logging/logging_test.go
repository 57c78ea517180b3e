package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "warn", FormatJSON, true)
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("unfamiliar attribute", "node", "edge", "key", "Foo")

	var entry map[string]any
	require.NoError(t, json.NewDecoder(&buf).Decode(&entry))
	assert.Equal(t, "unfamiliar attribute", entry["msg"])
	assert.Equal(t, "edge", entry["node"])
	assert.Equal(t, "Foo", entry["key"])
	assert.Equal(t, "WARN", entry["level"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "info", FormatText, true)
	require.NoError(t, err)
	log.Info("configs generated", "nodes", 3)
	assert.Contains(t, buf.String(), "configs generated")
	assert.Contains(t, buf.String(), "nodes=3")
	assert.NotContains(t, buf.String(), "\x1b[", "no color codes when disabled")

	_, err = New(&buf, "info", "xml", true)
	assert.Error(t, err)
}
