package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Tickwork/internal/domain"
)

// WorkerRepo — журнал запусков воркеров.
type WorkerRepo struct {
	pool *pgxpool.Pool
}

// NewWorkerRepo создаёт новый WorkerRepo.
func NewWorkerRepo(pool *pgxpool.Pool) *WorkerRepo {
	return &WorkerRepo{pool: pool}
}

// RecordStarted записывает запуск воркера.
func (r *WorkerRepo) RecordStarted(ctx context.Context, rec *domain.WorkerRecord) error {
	query := `
		INSERT INTO worker_runs (run_id, worker_id, provider, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		rec.RunID,
		rec.WorkerID,
		rec.Provider,
		rec.Status,
		rec.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert worker run: %w", err)
	}
	return nil
}

// RecordFinished отмечает завершение запуска runID.
func (r *WorkerRepo) RecordFinished(ctx context.Context, runID uuid.UUID, finishedAt time.Time) error {
	query := `
		UPDATE worker_runs
		SET status = $2, finished_at = $3
		WHERE run_id = $1
	`
	result, err := r.pool.Exec(ctx, query, runID, domain.WorkerStatusFinished, finishedAt)
	if err != nil {
		return fmt.Errorf("update worker run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByRunID возвращает запись по runID.
func (r *WorkerRepo) GetByRunID(ctx context.Context, runID uuid.UUID) (*domain.WorkerRecord, error) {
	query := `
		SELECT run_id, worker_id, provider, status, started_at, finished_at
		FROM worker_runs
		WHERE run_id = $1
	`
	rec, err := scanWorkerRecord(r.pool.QueryRow(ctx, query, runID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// WorkerFilter — параметры фильтрации журнала.
type WorkerFilter struct {
	WorkerID *int64
	Status   domain.WorkerStatus
	Limit    int
	Offset   int
}

// List возвращает записи журнала, новые первыми.
func (r *WorkerRepo) List(ctx context.Context, filter WorkerFilter) ([]domain.WorkerRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT run_id, worker_id, provider, status, started_at, finished_at
		FROM worker_runs
		WHERE ($1::bigint IS NULL OR worker_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY started_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		filter.WorkerID,
		nullString(string(filter.Status)),
		limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list worker runs: %w", err)
	}
	defer rows.Close()

	var records []domain.WorkerRecord
	for rows.Next() {
		rec, err := scanWorkerRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// --- Helpers ---

// scanWorkerRecord сканирует одну строку; pgx.Rows тоже реализует pgx.Row.
func scanWorkerRecord(row pgx.Row) (*domain.WorkerRecord, error) {
	var rec domain.WorkerRecord
	err := row.Scan(
		&rec.RunID,
		&rec.WorkerID,
		&rec.Provider,
		&rec.Status,
		&rec.StartedAt,
		&rec.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan worker run: %w", err)
	}
	return &rec, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
