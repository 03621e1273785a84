package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		level slog.Level
		ok    bool
	}{
		{"", slog.LevelInfo, true},
		{"debug", slog.LevelDebug, true},
		{" WARN ", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"ERROR", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, ok := ParseLevel(tt.in)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := WithWorkerID(WithComponent(NewLogger(&buf, slog.LevelInfo, ""), "worker"), 42)

	logger.Debug("hidden")
	logger.Info("cycle done")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "cycle done", rec["msg"])
	assert.Equal(t, "worker", rec["component"])
	assert.Equal(t, float64(42), rec["worker_id"])
	assert.NotContains(t, rec, "source")
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelDebug, "TEXT").Debug("tick", "at_ms", 10)

	assert.Contains(t, buf.String(), "msg=tick")
	assert.Contains(t, buf.String(), "at_ms=10")
	assert.Contains(t, buf.String(), "source=")
}

func TestFromContext(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, logger, FromContext(WithLogger(context.Background(), logger)))
}
