package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestDispatcherLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(*DispatcherLogger)
		level string
	}{
		{"debug", func(l *DispatcherLogger) { l.Debug("test message", "key1", "value1", "key2", 42) }, "debug"},
		{"info", func(l *DispatcherLogger) { l.Info("test message", "key1", "value1", "key2", 42) }, "info"},
		{"warn", func(l *DispatcherLogger) { l.Warn("test message", "key1", "value1", "key2", 42) }, "warn"},
		{"error", func(l *DispatcherLogger) { l.Error("test message", "key1", "value1", "key2", 42) }, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
			tt.log(dl)

			entry := decode(t, &buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "test message", entry["message"])
			assert.Equal(t, "dispatcher", entry["component"])
			assert.Equal(t, "value1", entry["key1"])
			assert.Equal(t, float64(42), entry["key2"])
		})
	}
}

func TestDispatcherLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf))

	dl.Error("statement failed", "command", "simulate", "error", errors.New("rocket mass is zero"))

	entry := decode(t, &buf)
	assert.Equal(t, "rocket mass is zero", entry["error"])
	assert.Equal(t, "simulate", entry["command"])
}

func TestDispatcherLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	dl.Info("dropped")
	assert.Empty(t, buf.String())

	dl.Warn("statement interrupted")
	assert.Equal(t, "warn", decode(t, &buf)["level"])
}

func TestToFields(t *testing.T) {
	assert.Equal(t, map[string]any{"a": 1}, toFields([]any{"a", 1, "dangling"}))
	assert.Equal(t, map[string]any{"42": "not a string key"}, toFields([]any{42, "not a string key"}))
	assert.Empty(t, toFields(nil))
}
