package repo

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/shaiso/Tickwork/internal/domain"
	"github.com/shaiso/Tickwork/internal/host"
	"github.com/shaiso/Tickwork/internal/processor"
)

// Journal — операции журнала, которые нужны JournalListener.
// Реализуется *WorkerRepo.
type Journal interface {
	RecordStarted(ctx context.Context, rec *domain.WorkerRecord) error
	RecordFinished(ctx context.Context, runID uuid.UUID, finishedAt time.Time) error
}

// JournalListener пишет запуски и завершения воркеров в журнал.
//
// OnFinish вызывается горутиной воркера, поэтому запись о завершении
// уходит в фоне; ошибки только логируются. Close ждёт фоновые записи.
type JournalListener struct {
	journal Journal
	clock   clock.Clock
	logger  *slog.Logger
	timeout time.Duration

	mu   sync.Mutex
	runs map[int64]uuid.UUID

	wg sync.WaitGroup
}

var (
	_ processor.Listener = (*JournalListener)(nil)
	_ host.StartObserver = (*JournalListener)(nil)
)

// JournalConfig — конфигурация JournalListener.
type JournalConfig struct {
	Journal Journal

	// Clock (default: реальные часы).
	Clock clock.Clock

	// Timeout одной записи (default: 5s).
	Timeout time.Duration

	// Logger (default: slog.Default()).
	Logger *slog.Logger
}

// NewJournalListener создаёт JournalListener.
func NewJournalListener(cfg JournalConfig) *JournalListener {
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &JournalListener{
		journal: cfg.Journal,
		clock:   c,
		logger:  logger.With("component", "journal"),
		timeout: timeout,
		runs:    make(map[int64]uuid.UUID),
	}
}

// OnStart записывает запуск синхронно, в контексте создания воркера.
func (j *JournalListener) OnStart(ctx context.Context, info host.WorkerInfo) {
	rec := domain.NewWorkerRecord(info.ID, info.Provider, j.clock.Now().UTC())

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	if err := j.journal.RecordStarted(ctx, rec); err != nil {
		j.logger.Error("failed to record worker start", "worker_id", info.ID, "error", err)
		return
	}

	j.mu.Lock()
	j.runs[info.ID] = rec.RunID
	j.mu.Unlock()
}

// OnFinish записывает завершение в фоне.
func (j *JournalListener) OnFinish(id int64) {
	j.mu.Lock()
	runID, ok := j.runs[id]
	delete(j.runs, id)
	j.mu.Unlock()

	if !ok {
		return
	}

	finishedAt := j.clock.Now().UTC()

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()

		if err := j.journal.RecordFinished(ctx, runID, finishedAt); err != nil {
			j.logger.Error("failed to record worker finish",
				"worker_id", id,
				"run_id", runID,
				"error", err,
			)
		}
	}()
}

// Close ждёт фоновые записи.
func (j *JournalListener) Close() {
	j.wg.Wait()
}
