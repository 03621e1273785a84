package host

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/shaiso/Tickwork/internal/processor"
	"github.com/shaiso/Tickwork/internal/scheduler"
	"github.com/shaiso/Tickwork/internal/telemetry"
	"github.com/shaiso/Tickwork/internal/worker"
)

// Spec — описание воркера для Create.
type Spec struct {
	// ID — явный id; nil: назначит фабрика.
	ID *int64

	// Provider — имя провайдера в Registry.
	Provider string

	// Settings передаются провайдеру как есть.
	Settings any

	// EndTimeMillis — время окончания; 0: без ограничения.
	EndTimeMillis int64
}

// WorkerInfo — снимок состояния воркера для API.
type WorkerInfo struct {
	ID              int64  `json:"id"`
	Provider        string `json:"provider"`
	State           string `json:"state"`
	Cycle           int64  `json:"cycle"`
	CycleTimeMillis int64  `json:"cycle_time_ms"`
	EndTimeMillis   int64  `json:"end_time_ms"`
	Inputs          int    `json:"inputs"`
}

// StartObserver — слушатель, которому нужен и момент запуска воркера.
// Проверяется у каждого из Config.Listeners.
type StartObserver interface {
	OnStart(ctx context.Context, info WorkerInfo)
}

// Host — набор живых воркеров поверх одного планировщика.
type Host struct {
	scheduler *scheduler.Scheduler
	factory   *worker.Factory
	registry  *Registry
	listeners processor.Listeners
	logger    *slog.Logger

	mu      sync.RWMutex
	workers map[int64]*worker.Thread

	wg sync.WaitGroup
}

var _ processor.Listener = (*Host)(nil)

// Config — конфигурация Host.
type Config struct {
	// Scheduler — планировщик пробуждений (обязателен).
	Scheduler *scheduler.Scheduler

	// Time — источник времени, общий с планировщиком (default: реальные часы).
	Time processor.TimeProvider

	// Registry (default: пустой NewRegistry()).
	Registry *Registry

	// Listeners получают OnFinish каждого воркера после самого Host.
	Listeners []processor.Listener

	// Logger (default: slog.Default()).
	Logger *slog.Logger
}

// New создаёт Host.
func New(cfg Config) *Host {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	return &Host{
		scheduler: cfg.Scheduler,
		factory: worker.NewFactory(worker.FactoryConfig{
			Scheduler: cfg.Scheduler,
			Time:      cfg.Time,
			Logger:    logger,
		}),
		registry:  registry,
		listeners: processor.Listeners(cfg.Listeners),
		logger:    telemetry.WithComponent(logger, "host"),
		workers:   make(map[int64]*worker.Thread),
	}
}

// Registry возвращает реестр провайдеров.
func (h *Host) Registry() *Registry { return h.registry }

// Providers возвращает имена зарегистрированных провайдеров.
func (h *Host) Providers() []string { return h.registry.Names() }

// Create создаёт и запускает воркер.
func (h *Host) Create(ctx context.Context, spec Spec) (WorkerInfo, error) {
	provider, err := h.registry.Get(spec.Provider)
	if err != nil {
		return WorkerInfo{}, err
	}

	th, err := h.factory.Create(provider, worker.Config{
		ID:            spec.ID,
		Name:          spec.Provider,
		Settings:      spec.Settings,
		Listener:      h,
		EndTimeMillis: spec.EndTimeMillis,
	})
	if err != nil {
		return WorkerInfo{}, fmt.Errorf("create worker %q: %w", spec.Provider, err)
	}

	h.mu.Lock()
	h.workers[th.ID()] = th
	h.mu.Unlock()
	h.wg.Add(1)

	info := infoOf(th)
	for _, l := range h.listeners {
		if so, ok := l.(StartObserver); ok {
			so.OnStart(ctx, info)
		}
	}

	if err := th.Start(); err != nil {
		return WorkerInfo{}, err
	}

	h.logger.Info("worker created", "worker_id", th.ID(), "provider", spec.Provider)
	return info, nil
}

// Boot создаёт воркеры по порядку. При первой ошибке уже созданные
// получают Stop, ошибка возвращается; дождаться их можно через Wait.
func (h *Host) Boot(ctx context.Context, specs []Spec) ([]WorkerInfo, error) {
	infos := make([]WorkerInfo, 0, len(specs))
	for i, spec := range specs {
		info, err := h.Create(ctx, spec)
		if err != nil {
			for _, booted := range infos {
				_ = h.Stop(booted.ID)
			}
			return nil, fmt.Errorf("boot worker #%d %q: %w", i, spec.Provider, err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// OnFinish вызывается горутиной завершившегося воркера.
func (h *Host) OnFinish(id int64) {
	h.mu.Lock()
	_, ok := h.workers[id]
	delete(h.workers, id)
	h.mu.Unlock()

	if !ok {
		return
	}

	h.logger.Info("worker finished", "worker_id", id)
	h.listeners.OnFinish(id)
	h.wg.Done()
}

func (h *Host) get(id int64) (*worker.Thread, error) {
	h.mu.RLock()
	th, ok := h.workers[id]
	h.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: id = %d", ErrWorkerNotFound, id)
	}
	return th, nil
}

// DeliverInput доставляет value во вход index воркера id.
func (h *Host) DeliverInput(id int64, index int, value any) error {
	th, err := h.get(id)
	if err != nil {
		return err
	}
	return th.OnInput(index, value)
}

// State возвращает состояние, которое отдаёт процессор воркера.
func (h *Host) State(id int64, args ...any) (any, error) {
	th, err := h.get(id)
	if err != nil {
		return nil, err
	}
	return th.ExposeState(args...), nil
}

// Worker возвращает снимок одного воркера.
func (h *Host) Worker(id int64) (WorkerInfo, error) {
	th, err := h.get(id)
	if err != nil {
		return WorkerInfo{}, err
	}
	return infoOf(th), nil
}

// Workers возвращает снимки живых воркеров по возрастанию id.
func (h *Host) Workers() []WorkerInfo {
	h.mu.RLock()
	infos := make([]WorkerInfo, 0, len(h.workers))
	for _, th := range h.workers {
		infos = append(infos, infoOf(th))
	}
	h.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Timeline возвращает снимок timeline планировщика.
func (h *Host) Timeline() []scheduler.Bucket {
	return h.scheduler.Timeline()
}

// Stop просит воркер id завершиться после текущего цикла.
func (h *Host) Stop(id int64) error {
	th, err := h.get(id)
	if err != nil {
		return err
	}
	th.Stop()
	return nil
}

// Wait ждёт завершения всех воркеров или отмены ctx.
func (h *Host) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown останавливает все воркеры и ждёт их завершения.
func (h *Host) Shutdown(ctx context.Context) error {
	h.mu.RLock()
	threads := make([]*worker.Thread, 0, len(h.workers))
	for _, th := range h.workers {
		threads = append(threads, th)
	}
	h.mu.RUnlock()

	h.logger.Info("stopping workers", "count", len(threads))
	for _, th := range threads {
		th.Stop()
	}
	return h.Wait(ctx)
}

func infoOf(th *worker.Thread) WorkerInfo {
	return WorkerInfo{
		ID:              th.ID(),
		Provider:        th.Name(),
		State:           th.State().String(),
		Cycle:           th.CycleNumber(),
		CycleTimeMillis: th.CycleTimeMillis(),
		EndTimeMillis:   th.EndTimeMillis(),
		Inputs:          th.Inputs(),
	}
}
