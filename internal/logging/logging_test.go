package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initBuffer(t *testing.T, level, format string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(Config{Level: level, Format: format, Output: &buf})
	t.Cleanup(func() { Init(Config{}) })
	return &buf
}

func TestInitLevelFiltering(t *testing.T) {
	buf := initBuffer(t, "warn", "json")

	Info().Msg("dropped")
	Warn().Msg("kept")
	Error().Msg("also kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
	assert.Contains(t, out, "also kept")
}

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	buf := initBuffer(t, "verbose", "json")

	Debug().Msg("dropped")
	Info().Msg("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestInitJSONOutput(t *testing.T) {
	buf := initBuffer(t, "info", "json")

	Info().Str("key", "value").Msg("structured")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "value", line["key"])
	assert.Equal(t, "structured", line["message"])
	assert.Contains(t, line, "time")
}

func TestInitConsoleOutput(t *testing.T) {
	buf := initBuffer(t, "info", "console")

	Info().Msg("readable")

	out := buf.String()
	assert.Contains(t, out, "readable")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"), "console output is not JSON")
}

func TestWithTagsComponent(t *testing.T) {
	buf := initBuffer(t, "info", "json")

	l := With("store")
	l.Info().Msg("tagged")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "store", line["component"])
}
