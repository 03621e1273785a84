package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/shaiso/Tickwork/internal/processor"
	"github.com/shaiso/Tickwork/internal/scheduler"
	"github.com/shaiso/Tickwork/internal/signal"
	"github.com/shaiso/Tickwork/internal/telemetry"
)

// Scheduler — часть планировщика, которая нужна воркеру.
// Реализуется *scheduler.Scheduler.
type Scheduler interface {
	Register(id int64, w scheduler.Waker) error
	Schedule(id, timeMillis int64)
	CancelAllScheduled(id int64)
	OnFinish(id int64)
}

// State — состояние воркера.
type State int32

const (
	StateNew State = iota
	StateRunning
	StateBlocked
	StateStopping
	StateTerminated
)

// String возвращает строковое представление State.
func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateRunning:
		return "RUNNING"
	case StateBlocked:
		return "BLOCKED"
	case StateStopping:
		return "STOPPING"
	case StateTerminated:
		return "TERMINATED"
	default:
		return fmt.Sprintf("STATE(%d)", int32(s))
	}
}

// Thread — воркер: одна горутина, один процессор.
//
// Реализует scheduler.Waker (пробуждение координатором)
// и processor.Binder (объявление входов при создании).
type Thread struct {
	id        int64
	name      string
	processor processor.Processor
	context   *cycleContext
	scheduler Scheduler
	listener  processor.Listener
	logger    *slog.Logger

	// wake — приватный примитив пробуждения. pending защищён его блокировкой.
	wake    signal.Sleeper
	pending bool

	inputsMu sync.RWMutex
	inputs   []*QueueReceiver
	bindErr  error

	stopping atomic.Bool
	started  atomic.Bool
	state    atomic.Int32
	done     chan struct{}
}

var (
	_ scheduler.Waker  = (*Thread)(nil)
	_ processor.Binder = (*Thread)(nil)
)

func newThread(id int64, name string, sched Scheduler, listener processor.Listener, logger *slog.Logger) *Thread {
	return &Thread{
		id:        id,
		name:      name,
		scheduler: sched,
		listener:  listener,
		logger:    telemetry.WithWorkerID(logger, id),
		wake:      signal.NewCond(nil),
		done:      make(chan struct{}),
	}
}

// ID возвращает id воркера.
func (t *Thread) ID() int64 { return t.id }

// Name возвращает имя воркера (обычно имя провайдера).
func (t *Thread) Name() string { return t.name }

// State возвращает текущее состояние.
func (t *Thread) State() State { return State(t.state.Load()) }

// CycleNumber — номер последнего начатого цикла.
func (t *Thread) CycleNumber() int64 { return t.context.CycleNumber() }

// CycleTimeMillis — время последнего начатого цикла.
func (t *Thread) CycleTimeMillis() int64 { return t.context.CycleTimeMillis() }

// EndTimeMillis — время окончания воркера.
func (t *Thread) EndTimeMillis() int64 { return t.context.EndTimeMillis() }

// Done закрывается после полного завершения воркера.
func (t *Thread) Done() <-chan struct{} { return t.done }

// RegisterInput объявляет вход index. Входы объявляются по порядку
// с 0; нарушение порядка запоминается и возвращается из Factory.Create.
func (t *Thread) RegisterInput(index int) processor.Receiver {
	t.inputsMu.Lock()
	defer t.inputsMu.Unlock()

	r := NewQueueReceiver()
	if index != len(t.inputs) {
		if t.bindErr == nil {
			t.bindErr = fmt.Errorf("%w: registering input %d, expected %d", ErrInputIndex, index, len(t.inputs))
		}
		return r
	}
	t.inputs = append(t.inputs, r)
	return r
}

// Inputs возвращает число объявленных входов.
func (t *Thread) Inputs() int {
	t.inputsMu.RLock()
	defer t.inputsMu.RUnlock()
	return len(t.inputs)
}

// OnInput кладёт value во вход index и будит воркер.
func (t *Thread) OnInput(index int, value any) error {
	t.inputsMu.RLock()
	if index < 0 || index >= len(t.inputs) {
		n := len(t.inputs)
		t.inputsMu.RUnlock()
		return fmt.Errorf("%w: received input %d, but only registered %d", ErrInputIndex, index, n)
	}
	r := t.inputs[index]
	t.inputsMu.RUnlock()

	r.Offer(value)
	telemetry.InputsDelivered.Inc()
	t.Wake()
	return nil
}

// Wake будит воркер, если он заблокирован после Idle.
// Иначе пробуждение запоминается до следующего Idle.
func (t *Thread) Wake() {
	t.wake.Lock()
	t.pending = true
	t.wake.Unlock()
	t.wake.Notify()
}

// ExposeState отдаёт состояние процессора, если он это умеет.
func (t *Thread) ExposeState(args ...any) any {
	if se, ok := t.processor.(processor.StateExposer); ok {
		return se.ExposeState(args...)
	}
	return nil
}

// Start запускает горутину воркера.
func (t *Thread) Start() error {
	if !t.started.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: id = %d", ErrAlreadyStarted, t.id)
	}
	go t.run()
	return nil
}

// Stop просит воркер завершиться после текущего цикла.
// Текущий цикл не прерывается.
func (t *Thread) Stop() {
	t.stopping.Store(true)
	t.Wake()
}

func (t *Thread) setState(s State) {
	t.state.Store(int32(s))
}

func (t *Thread) run() {
	defer close(t.done)

	telemetry.ActiveWorkers.Inc()
	defer telemetry.ActiveWorkers.Dec()

	t.setState(StateRunning)
	t.logger.Info("worker started", "name", t.name, "end_time_ms", t.context.EndTimeMillis())

	if err := t.call(func() error { return t.processor.Init(t.context) }); err != nil {
		t.logger.Error("processor init failed", "error", err)
		t.handleException(err)
		t.stopping.Store(true)
	}

	for !t.stopping.Load() && t.context.beginCycle() {
		t.cycle()
	}

	t.finish()
}

// cycle выполняет один цикл процессора.
func (t *Thread) cycle() {
	n := t.context.nextCycleNumber()

	var result processor.Result
	err := t.call(func() error {
		var err error
		result, err = t.processor.Process(t.context)
		return err
	})
	if err != nil {
		telemetry.CycleErrors.Inc()
		t.logger.Error("error processing cycle", "cycle", n, "error", err)
		t.handleException(err)
		return
	}

	if !result.Valid() {
		telemetry.CycleErrors.Inc()
		err := fmt.Errorf("%w: %s", processor.ErrUnknownResult, result)
		t.logger.Error("error processing cycle", "cycle", n, "error", err)
		t.handleException(err)
		return
	}

	telemetry.Cycles.WithLabelValues(result.String()).Inc()

	switch result {
	case processor.ResultIdle:
		t.block()
	case processor.ResultEnd:
		t.logger.Info("processor finished", "cycle", n)
		t.stopping.Store(true)
	}
}

// block ждёт Wake. Без таймаута: время пробуждения знает только планировщик.
func (t *Thread) block() {
	t.wake.Lock()
	defer t.wake.Unlock()

	t.setState(StateBlocked)
	for !t.pending && !t.stopping.Load() {
		// Background: прерывания воркера нет, Stop будит через Wake.
		_ = t.wake.Wait(context.Background())
	}
	t.pending = false
	t.setState(StateRunning)
}

// finish завершает воркер: End, снятие с регистрации, слушатель.
func (t *Thread) finish() {
	t.setState(StateStopping)

	if err := t.call(func() error { return t.processor.End(t.context) }); err != nil {
		t.logger.Error("error stopping processor", "error", err)
	}

	t.scheduler.OnFinish(t.id)

	if t.listener != nil {
		if err := t.call(func() error {
			t.listener.OnFinish(t.id)
			return nil
		}); err != nil {
			t.logger.Error("finish listener failed", "error", err)
		}
	}

	t.setState(StateTerminated)
	t.logger.Info("worker stopped", "cycles", t.context.CycleNumber())
}

// handleException передаёт ошибку процессору. Паника обработчика
// логируется и не останавливает воркер.
func (t *Thread) handleException(err error) {
	if perr := t.call(func() error {
		t.processor.HandleException(err)
		return nil
	}); perr != nil {
		t.logger.Error("exception handler failed", "error", perr)
	}
}

// call вызывает fn, превращая панику в ошибку ErrPanic.
func (t *Thread) call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", processor.ErrPanic, r)
		}
	}()
	return fn()
}
