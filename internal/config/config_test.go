package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Tickwork/internal/domain"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"HOST_PORT", "DB_URL", "RABBITMQ_URL", "WORKERS_FILE", "SCHEDULER_LOG_TIMELINE", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.False(t, cfg.LogTimeline)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOST_PORT", "9090")
	t.Setenv("DB_URL", "postgres://x")
	t.Setenv("RABBITMQ_URL", "amqp://y")
	t.Setenv("WORKERS_FILE", "/etc/tickwork/workers.yaml")
	t.Setenv("SCHEDULER_LOG_TIMELINE", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Config{
		HTTPAddr:        ":9090",
		DatabaseURL:     "postgres://x",
		RabbitMQURL:     "amqp://y",
		WorkersFile:     "/etc/tickwork/workers.yaml",
		LogTimeline:     true,
		ShutdownTimeout: 3 * time.Second,
	}, cfg)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"HOST_PORT", "http"},
		{"SCHEDULER_LOG_TIMELINE", "maybe"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadWorkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workers.yaml")
	data := `
workers:
  - provider: cron
    settings:
      expr: "*/5 * * * *"
  - id: 100
    provider: counter
    end_time_ms: 1700000000000
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	specs, err := LoadWorkers(path)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, "cron", specs[0].Provider)
	assert.Equal(t, map[string]any{"expr": "*/5 * * * *"}, specs[0].Settings)
	assert.Nil(t, specs[0].ID)

	require.NotNil(t, specs[1].ID)
	assert.Equal(t, int64(100), *specs[1].ID)
	assert.Equal(t, int64(1700000000000), specs[1].EndTimeMillis)
}

func TestParseWorkers_Invalid(t *testing.T) {
	_, err := ParseWorkers([]byte("workers:\n  - settings: {}\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidWorkerSpec)

	_, err = ParseWorkers([]byte("workers: [\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadWorkers(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
