package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkerRecord — запись журнала об одном запуске воркера.
//
// Id воркера может повторяться между перезапусками процесса,
// поэтому у записи свой RunID.
type WorkerRecord struct {
	// RunID — уникальный идентификатор запуска.
	RunID uuid.UUID `json:"run_id"`

	// WorkerID — id воркера в планировщике.
	WorkerID int64 `json:"worker_id"`

	// Provider — имя провайдера процессора.
	Provider string `json:"provider"`

	// Status — текущий статус.
	Status WorkerStatus `json:"status"`

	// StartedAt — время запуска.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt — время завершения. Nil, пока воркер работает.
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewWorkerRecord создаёт запись о запущенном воркере.
func NewWorkerRecord(workerID int64, provider string, startedAt time.Time) *WorkerRecord {
	return &WorkerRecord{
		RunID:     uuid.New(),
		WorkerID:  workerID,
		Provider:  provider,
		Status:    WorkerStatusRunning,
		StartedAt: startedAt,
	}
}

// MarkFinished переводит запись в FINISHED.
func (r *WorkerRecord) MarkFinished(at time.Time) {
	r.Status = WorkerStatusFinished
	r.FinishedAt = &at
}

// Duration возвращает продолжительность работы.
// Возвращает 0, если воркер ещё не завершён.
func (r *WorkerRecord) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
