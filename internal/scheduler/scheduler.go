package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/shaiso/Tickwork/internal/processor"
	"github.com/shaiso/Tickwork/internal/signal"
	"github.com/shaiso/Tickwork/internal/telemetry"
)

// UnsetTimestamp — NextDueMillis при пустом timeline.
const UnsetTimestamp int64 = -1

// Waker — то, что координатор умеет будить. Реализуется воркером.
type Waker interface {
	Wake()
}

// Scheduler — планировщик пробуждений воркеров.
//
// Хранит общий timeline (время → множество id) и реестр воркеров.
// Координатор (Run) спит ровно до ближайшего времени, пересчитывает сон
// при каждом Schedule и будит всех воркеров, чьё время наступило,
// одним проходом.
type Scheduler struct {
	time        processor.TimeProvider
	sleeper     signal.Sleeper
	logger      *slog.Logger
	logTimeline bool

	// mu защищает timeline. Воркеры будятся вне mu.
	mu       sync.Mutex
	timeline *Timeline

	workersMu sync.RWMutex
	workers   map[int64]Waker

	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Config — конфигурация Scheduler.
type Config struct {
	// Time — источник времени, общий с воркерами (default: реальные часы).
	Time processor.TimeProvider

	// Sleeper — монитор координатора (default: signal.NewCond(nil)).
	Sleeper signal.Sleeper

	// Logger (default: slog.Default()).
	Logger *slog.Logger

	// LogTimeline — писать timeline в debug-лог перед каждым сном.
	LogTimeline bool
}

// New создаёт Scheduler. Координатор не запущен: см. Start или Run.
func New(cfg Config) *Scheduler {
	tp := cfg.Time
	if tp == nil {
		tp = processor.NewClockTime(nil)
	}

	sleeper := cfg.Sleeper
	if sleeper == nil {
		sleeper = signal.NewCond(nil)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		time:        tp,
		sleeper:     sleeper,
		logger:      telemetry.WithComponent(logger, "scheduler"),
		logTimeline: cfg.LogTimeline,
		timeline:    NewTimeline(),
		workers:     make(map[int64]Waker),
	}
}

// Register регистрирует воркер. Повторный id — ошибка конфигурации.
func (s *Scheduler) Register(id int64, w Waker) error {
	s.workersMu.Lock()
	defer s.workersMu.Unlock()

	if _, ok := s.workers[id]; ok {
		return fmt.Errorf("%w: id = %d", ErrDuplicateWorker, id)
	}
	s.workers[id] = w
	return nil
}

// OnFinish убирает воркер из реестра. Timeline не трогается:
// оставшиеся записи при срабатывании просто игнорируются.
func (s *Scheduler) OnFinish(id int64) {
	s.workersMu.Lock()
	delete(s.workers, id)
	s.workersMu.Unlock()
}

// IsRegistered сообщает, зарегистрирован ли воркер.
func (s *Scheduler) IsRegistered(id int64) bool {
	s.workersMu.RLock()
	defer s.workersMu.RUnlock()
	_, ok := s.workers[id]
	return ok
}

// Registered возвращает число зарегистрированных воркеров.
func (s *Scheduler) Registered() int {
	s.workersMu.RLock()
	defer s.workersMu.RUnlock()
	return len(s.workers)
}

// Schedule планирует пробуждение воркера id в момент timeMillis.
//
// Повторный вызов с тем же временем ничего не добавляет.
// Координатор пингуется всегда, даже если новое время не раньше текущего
// ближайшего: лишнее пробуждение дешевле проверки.
func (s *Scheduler) Schedule(id, timeMillis int64) {
	s.mu.Lock()
	s.timeline.Add(id, timeMillis)
	telemetry.TimelineBuckets.Set(float64(s.timeline.Len()))
	s.mu.Unlock()

	telemetry.ScheduleRequests.Inc()
	s.logger.Debug("scheduling worker", "worker_id", id, "at_ms", timeMillis)

	s.ping()
}

// CancelAllScheduled удаляет все записи воркера id из timeline.
//
// Deprecated: полный проход по timeline всех воркеров под общей
// блокировкой — O(число записей); всё это время Schedule других
// воркеров ждёт. Процессоры должны быть идемпотентны к лишним пробуждениям.
func (s *Scheduler) CancelAllScheduled(id int64) {
	s.mu.Lock()
	removed := s.timeline.RemoveAll(id)
	telemetry.TimelineBuckets.Set(float64(s.timeline.Len()))
	s.mu.Unlock()

	// Пинг не нужен: работы стало только меньше.
	telemetry.CancelledWakeups.Add(float64(removed))
	s.logger.Debug("cancelled scheduled wakeups", "worker_id", id, "removed", removed)
}

// NextDue возвращает ближайшее запланированное время.
func (s *Scheduler) NextDue() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.Next()
}

// NextDueMillis — NextDue с UnsetTimestamp вместо false.
func (s *Scheduler) NextDueMillis() int64 {
	if at, ok := s.NextDue(); ok {
		return at
	}
	return UnsetTimestamp
}

// DrainDue удаляет из timeline всё, что наступило к now,
// и возвращает объединение id.
func (s *Scheduler) DrainDue(now int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.timeline.DrainDue(now)
	telemetry.TimelineBuckets.Set(float64(s.timeline.Len()))
	return ids
}

// NotifyDue будит всех воркеров, чьё время наступило к now.
// Возвращает число разбуженных. Незарегистрированные id пропускаются.
func (s *Scheduler) NotifyDue(now int64) int {
	ids := s.DrainDue(now)
	telemetry.WakePasses.Inc()

	var woken int
	for _, id := range ids {
		s.workersMu.RLock()
		w, ok := s.workers[id]
		s.workersMu.RUnlock()

		if !ok {
			telemetry.StaleWakeups.Inc()
			s.logger.Debug("skipping finished worker", "worker_id", id)
			continue
		}

		s.logger.Debug("waking worker", "worker_id", id)
		w.Wake()
		woken++
	}

	telemetry.WokenWorkers.Add(float64(woken))
	return woken
}

// Timeline возвращает снимок timeline.
func (s *Scheduler) Timeline() []Bucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.Snapshot()
}

// FormatTimeline — отладочное представление timeline относительно now.
func (s *Scheduler) FormatTimeline(now int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.FormatLimited(now)
}

// ping будит координатор для пересчёта времени сна.
//
// Notify берёт ту же блокировку, под которой координатор перечитывает
// timeline перед сном, поэтому вставка не теряется между
// «решил спать» и «уснул».
func (s *Scheduler) ping() {
	s.sleeper.Notify()
}

// Run — цикл координатора. Возвращает ошибку только при прерывании
// (отмена ctx), что считается остановкой процесса.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler coordinator started")

	for {
		if err := ctx.Err(); err != nil {
			return s.interrupted(err)
		}

		now := s.time.Millis()
		if next, ok := s.NextDue(); ok && now >= next {
			s.logger.Debug("notifying due workers", "now_ms", now)
			s.NotifyDue(now)
			continue
		}

		if err := s.sleep(ctx); err != nil {
			return s.interrupted(err)
		}
	}
}

// maxSleepMillis — самый долгий сон, который ещё помещается в time.Duration.
const maxSleepMillis = math.MaxInt64 / int64(time.Millisecond)

// sleep засыпает до ближайшего времени или до пинга.
func (s *Scheduler) sleep(ctx context.Context) error {
	s.sleeper.Lock()
	defer s.sleeper.Unlock()

	// Перепроверка под блокировкой монитора: Schedule мог добавить
	// запись после проверки в Run.
	next, ok := s.NextDue()
	if !ok {
		telemetry.CoordinatorSleeps.WithLabelValues("indefinite").Inc()
		s.logger.Debug("sleeping until notified")
		return s.sleeper.Wait(ctx)
	}

	now := s.time.Millis()
	remaining := next - now
	if remaining <= 0 {
		s.logger.Debug("next wakeup is in the past, not sleeping", "next_ms", next, "now_ms", now)
		return nil
	}

	if s.logTimeline && s.logger.Enabled(ctx, slog.LevelDebug) {
		s.logger.Debug("scheduler timeline", "timeline", s.FormatTimeline(now))
	}

	// Дальше time.Duration не представим: спим до пинга, более раннее
	// время всё равно придёт через Schedule.
	if remaining > maxSleepMillis {
		telemetry.CoordinatorSleeps.WithLabelValues("indefinite").Inc()
		s.logger.Debug("next wakeup is beyond max sleep, sleeping until notified", "next_ms", next)
		return s.sleeper.Wait(ctx)
	}

	telemetry.CoordinatorSleeps.WithLabelValues("timeout").Inc()
	s.logger.Debug("sleeping", "millis", remaining)
	return s.sleeper.WaitTimeout(ctx, time.Duration(remaining)*time.Millisecond)
}

func (s *Scheduler) interrupted(err error) error {
	s.logger.Error("scheduler coordinator was interrupted, stopping",
		"now_ms", s.time.Millis(),
		"error", err,
	)
	return fmt.Errorf("%w: %w", ErrInterrupted, err)
}

// Start запускает координатор в отдельной горутине.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.Run(ctx)
	}()
}

// Stop прерывает координатор и ждёт его завершения.
func (s *Scheduler) Stop() {
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.wg.Wait()
	s.logger.Info("scheduler coordinator stopped")
}
