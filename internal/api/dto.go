package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Tickwork/internal/domain"
	"github.com/shaiso/Tickwork/internal/host"
	"github.com/shaiso/Tickwork/internal/scheduler"
)

// Worker DTOs

// CreateWorkerRequest — запрос на создание воркера.
type CreateWorkerRequest = domain.WorkerSpec

// ToSpec конвертирует запрос в host.Spec.
func ToSpec(req CreateWorkerRequest) host.Spec {
	spec := host.Spec{
		ID:            req.ID,
		Provider:      req.Provider,
		EndTimeMillis: req.EndTimeMillis,
	}
	if req.Settings != nil {
		spec.Settings = req.Settings
	}
	return spec
}

// WorkerResponse — ответ с воркером.
type WorkerResponse = host.WorkerInfo

// DeliverInputRequest — запрос на доставку значения во вход воркера.
type DeliverInputRequest struct {
	Value any `json:"value"`
}

// StateResponse — ответ с состоянием процессора.
type StateResponse struct {
	WorkerID int64 `json:"worker_id"`
	State    any   `json:"state"`
}

// Timeline DTOs

// BucketResponse — одна отметка времени timeline.
type BucketResponse struct {
	At        int64     `json:"at_ms"`
	Time      time.Time `json:"time"`
	WorkerIDs []int64   `json:"worker_ids"`
}

// BucketFromScheduler конвертирует scheduler.Bucket в BucketResponse.
func BucketFromScheduler(b scheduler.Bucket) BucketResponse {
	return BucketResponse{
		At:        b.At,
		Time:      time.UnixMilli(b.At).UTC(),
		WorkerIDs: b.IDs,
	}
}

// Journal DTOs

// RecordResponse — ответ с записью журнала.
type RecordResponse struct {
	RunID      uuid.UUID           `json:"run_id"`
	WorkerID   int64               `json:"worker_id"`
	Provider   string              `json:"provider"`
	Status     domain.WorkerStatus `json:"status"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt *time.Time          `json:"finished_at,omitempty"`
	DurationMs int64               `json:"duration_ms,omitempty"`
}

// RecordFromDomain конвертирует domain.WorkerRecord в RecordResponse.
func RecordFromDomain(r domain.WorkerRecord) RecordResponse {
	return RecordResponse{
		RunID:      r.RunID,
		WorkerID:   r.WorkerID,
		Provider:   r.Provider,
		Status:     r.Status,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		DurationMs: r.Duration().Milliseconds(),
	}
}
