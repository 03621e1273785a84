package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidWorkerSpec — описание воркера некорректно.
var ErrInvalidWorkerSpec = errors.New("invalid worker spec")

// WorkerSpec — описание воркера: тело запроса API и элемент файла воркеров.
//
// Пример файла воркеров (YAML):
//
//	workers:
//	  - provider: cron
//	    settings:
//	      expr: "*/5 * * * *"
//	  - id: 100
//	    provider: counter
type WorkerSpec struct {
	// ID — явный id; пусто: назначит фабрика.
	ID *int64 `json:"id,omitempty" yaml:"id,omitempty"`

	// Provider — имя провайдера процессора.
	Provider string `json:"provider" yaml:"provider"`

	// Settings — настройки, передаются провайдеру как есть.
	Settings map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`

	// EndTimeMillis — время окончания (unix ms); 0: без ограничения.
	EndTimeMillis int64 `json:"end_time_ms,omitempty" yaml:"end_time_ms,omitempty"`
}

// Validate проверяет обязательные поля.
func (s WorkerSpec) Validate() error {
	if s.Provider == "" {
		return fmt.Errorf("%w: provider is required", ErrInvalidWorkerSpec)
	}
	if s.EndTimeMillis < 0 {
		return fmt.Errorf("%w: end_time_ms must not be negative", ErrInvalidWorkerSpec)
	}
	return nil
}
