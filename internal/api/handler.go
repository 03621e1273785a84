package api

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/Tickwork/internal/domain"
	"github.com/shaiso/Tickwork/internal/host"
	"github.com/shaiso/Tickwork/internal/repo"
	"github.com/shaiso/Tickwork/internal/scheduler"
)

// WorkerHost — управляющая поверхность, которую обслуживает API.
// Реализуется *host.Host.
type WorkerHost interface {
	Create(ctx context.Context, spec host.Spec) (host.WorkerInfo, error)
	DeliverInput(id int64, index int, value any) error
	State(id int64, args ...any) (any, error)
	Worker(id int64) (host.WorkerInfo, error)
	Workers() []host.WorkerInfo
	Stop(id int64) error
	Timeline() []scheduler.Bucket
	Providers() []string
}

// JournalReader — чтение журнала запусков. Реализуется *repo.WorkerRepo.
type JournalReader interface {
	List(ctx context.Context, filter repo.WorkerFilter) ([]domain.WorkerRecord, error)
	GetByRunID(ctx context.Context, runID uuid.UUID) (*domain.WorkerRecord, error)
}

var (
	_ WorkerHost    = (*host.Host)(nil)
	_ JournalReader = (*repo.WorkerRepo)(nil)
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	host    WorkerHost
	journal JournalReader
	logger  *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Host WorkerHost

	// Journal — опционально; без него /journal отвечает 404.
	Journal JournalReader

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		host:    cfg.Host,
		journal: cfg.Journal,
		logger:  logger,
	}
}
