package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/shaiso/Tickwork/internal/processor"
	"github.com/shaiso/Tickwork/internal/scheduler"
	"github.com/shaiso/Tickwork/internal/simulation"
)

// Factory создаёт воркеры, привязанные к одному планировщику
// и одному источнику времени.
type Factory struct {
	scheduler Scheduler
	time      processor.TimeProvider
	logger    *slog.Logger

	nextID atomic.Int64
}

// FactoryConfig — конфигурация Factory.
type FactoryConfig struct {
	// Scheduler — планировщик пробуждений (обязателен).
	Scheduler Scheduler

	// Time — источник времени, общий с планировщиком (default: реальные часы).
	Time processor.TimeProvider

	// Logger (default: slog.Default()).
	Logger *slog.Logger
}

// NewFactory создаёт Factory.
func NewFactory(cfg FactoryConfig) *Factory {
	tp := cfg.Time
	if tp == nil {
		tp = processor.NewClockTime(nil)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Factory{
		scheduler: cfg.Scheduler,
		time:      tp,
		logger:    logger,
	}
}

// Config — параметры одного воркера.
type Config struct {
	// ID — явный id. nil: следующий свободный из счётчика фабрики.
	ID *int64

	// Name — имя для логов и API.
	Name string

	// Settings передаются в Provider.Get как есть.
	Settings any

	// Listener получает OnFinish ровно один раз.
	Listener processor.Listener

	// EndTimeMillis — после этого времени циклы не начинаются.
	// 0: без ограничения.
	EndTimeMillis int64
}

// Create создаёт воркер, но не запускает его (см. Thread.Start).
//
// Порядок: регистрация id в планировщике, Provider.Get, контекст.
// Повторный id — ErrDuplicateWorker, провайдер при этом не вызывается.
// Ошибка провайдера снимает регистрацию.
func (f *Factory) Create(provider processor.Provider, cfg Config) (*Thread, error) {
	endTime := cfg.EndTimeMillis
	if endTime == 0 {
		endTime = math.MaxInt64
	}

	id, th, err := f.register(cfg)
	if err != nil {
		return nil, err
	}

	p, err := f.getProcessor(provider, cfg.Settings, th)
	if err == nil && th.bindErr != nil {
		err = th.bindErr
	}
	if err != nil {
		f.scheduler.OnFinish(id)
		return nil, err
	}

	th.processor = p
	th.context = newCycleContext(id, f.scheduler, f.time, endTime)

	th.logger.Debug("worker created", "name", cfg.Name, "inputs", th.Inputs())
	return th, nil
}

// register выбирает id и регистрирует воркер в планировщике.
func (f *Factory) register(cfg Config) (int64, *Thread, error) {
	if cfg.ID != nil {
		th := newThread(*cfg.ID, cfg.Name, f.scheduler, cfg.Listener, f.logger)
		if err := f.scheduler.Register(*cfg.ID, th); err != nil {
			return 0, nil, err
		}
		return *cfg.ID, th, nil
	}

	for {
		id := f.nextID.Add(1)
		th := newThread(id, cfg.Name, f.scheduler, cfg.Listener, f.logger)
		err := f.scheduler.Register(id, th)
		if err == nil {
			return id, th, nil
		}
		if !errors.Is(err, scheduler.ErrDuplicateWorker) {
			return 0, nil, err
		}
	}
}

func (f *Factory) getProcessor(provider processor.Provider, settings any, binder processor.Binder) (p processor.Processor, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %w: %v", ErrProviderFailed, processor.ErrPanic, r)
		}
	}()

	p, err = provider.Get(settings, binder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderFailed, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: provider returned nil processor", ErrProviderFailed)
	}
	return p, nil
}

// CreateReplay создаёт воркер, воспроизводящий записанные циклы.
func (f *Factory) CreateReplay(provider processor.Provider, cfg Config, data simulation.ReplayData) (*Thread, error) {
	return nil, fmt.Errorf("%w: replay", ErrSimulationNotImplemented)
}

// CreateManual создаёт воркер с ручным управлением временем.
func (f *Factory) CreateManual(provider processor.Provider, cfg Config) (*Thread, simulation.ManualController, error) {
	return nil, nil, fmt.Errorf("%w: manual", ErrSimulationNotImplemented)
}
