package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureJSON(t *testing.T) *bytes.Buffer {
	t.Helper()
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	SetupWriter(&buf, "production", "debug")
	return &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestLogger_InfoCarriesContext(t *testing.T) {
	buf := captureJSON(t)

	New("repository").File("record_repository").Function("Create").Info("created", "id", 7)

	entry := lastEntry(t, buf)
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "created", entry["msg"])
	assert.Equal(t, "repository", entry["component"])
	assert.Equal(t, "record_repository", entry["file"])
	assert.Equal(t, "Create", entry["function"])
	assert.Equal(t, float64(7), entry["id"])
}

func TestLogger_ErrWrapsAndLogs(t *testing.T) {
	buf := captureJSON(t)
	cause := errors.New("disk full")

	err := New("database").Function("Create").Err("failed to insert", cause, "table", "users")

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to insert: disk full", err.Error())

	entry := lastEntry(t, buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "disk full", entry["error"])
	assert.Equal(t, "users", entry["table"])
}

func TestLogger_ErrorReturnsMessage(t *testing.T) {
	buf := captureJSON(t)

	err := New("database").Error("database path is empty", "dbPath", "")
	assert.EqualError(t, err, "database path is empty")
	assert.Equal(t, "database path is empty", lastEntry(t, buf)["msg"])

	err = New("app").ErrMsg("config is nil")
	assert.EqualError(t, err, "config is nil")
}

func TestLogger_LevelFiltering(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	SetupWriter(&buf, "production", "warn")

	log := New("test")
	log.Debug("hidden")
	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warning ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}
