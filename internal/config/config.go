package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Tickwork/internal/domain"
)

// ErrInvalidConfig — значение переменной окружения или файла некорректно.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	defaultPort            = "8080"
	defaultShutdownTimeout = 10 * time.Second
)

// Config — конфигурация tickwork-host.
type Config struct {
	HTTPAddr        string
	DatabaseURL     string
	RabbitMQURL     string
	WorkersFile     string
	LogTimeline     bool
	ShutdownTimeout time.Duration
}

// Load читает конфигурацию из окружения.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:        ":" + defaultPort,
		DatabaseURL:     os.Getenv("DB_URL"),
		RabbitMQURL:     os.Getenv("RABBITMQ_URL"),
		WorkersFile:     os.Getenv("WORKERS_FILE"),
		ShutdownTimeout: defaultShutdownTimeout,
	}

	if v := os.Getenv("HOST_PORT"); v != "" {
		if _, err := strconv.ParseUint(v, 10, 16); err != nil {
			return Config{}, fmt.Errorf("%w: HOST_PORT %q", ErrInvalidConfig, v)
		}
		cfg.HTTPAddr = ":" + v
	}

	if v := os.Getenv("SCHEDULER_LOG_TIMELINE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: SCHEDULER_LOG_TIMELINE %q", ErrInvalidConfig, v)
		}
		cfg.LogTimeline = b
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("%w: SHUTDOWN_TIMEOUT %q", ErrInvalidConfig, v)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

// workersFile — корень YAML-файла воркеров.
type workersFile struct {
	Workers []domain.WorkerSpec `yaml:"workers"`
}

// LoadWorkers читает описания воркеров из YAML-файла.
func LoadWorkers(path string) ([]domain.WorkerSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workers file: %w", err)
	}
	return ParseWorkers(data)
}

// ParseWorkers разбирает YAML с ключом workers и проверяет каждый элемент.
func ParseWorkers(data []byte) ([]domain.WorkerSpec, error) {
	var f workersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parse workers: %w", ErrInvalidConfig, err)
	}

	for i, spec := range f.Workers {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("workers[%d]: %w", i, err)
		}
	}
	return f.Workers, nil
}
