package worker

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Tickwork/internal/processor"
	"github.com/shaiso/Tickwork/internal/scheduler"
)

// fakeScheduler записывает обращения воркера к планировщику.
type fakeScheduler struct {
	mu        sync.Mutex
	workers   map[int64]scheduler.Waker
	scheduled [][2]int64
	cancelled []int64
	finished  []int64
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{workers: make(map[int64]scheduler.Waker)}
}

func (s *fakeScheduler) Register(id int64, w scheduler.Waker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workers[id]; ok {
		return fmt.Errorf("%w: id = %d", scheduler.ErrDuplicateWorker, id)
	}
	s.workers[id] = w
	return nil
}

func (s *fakeScheduler) Schedule(id, timeMillis int64) {
	s.mu.Lock()
	s.scheduled = append(s.scheduled, [2]int64{id, timeMillis})
	s.mu.Unlock()
}

func (s *fakeScheduler) CancelAllScheduled(id int64) {
	s.mu.Lock()
	s.cancelled = append(s.cancelled, id)
	s.mu.Unlock()
}

func (s *fakeScheduler) OnFinish(id int64) {
	s.mu.Lock()
	delete(s.workers, id)
	s.finished = append(s.finished, id)
	s.mu.Unlock()
}

func (s *fakeScheduler) registered(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.workers[id]
	return ok
}

func (s *fakeScheduler) finishedIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.finished...)
}

// stepTime сдвигается на 1 мс при каждом чтении.
type stepTime struct {
	now atomic.Int64
}

func (s *stepTime) Millis() int64 { return s.now.Add(1) }

// fixedTime всегда возвращает одно и то же время.
type fixedTime int64

func (f fixedTime) Millis() int64 { return int64(f) }

// testProcessor — процессор из функций с подсчётом вызовов.
type testProcessor struct {
	init    func(processor.Context) error
	process func(processor.Context) (processor.Result, error)
	end     func(processor.Context) error

	inits  atomic.Int32
	ends   atomic.Int32
	cycles atomic.Int32

	mu         sync.Mutex
	exceptions []error
}

func (p *testProcessor) Init(ctx processor.Context) error {
	p.inits.Add(1)
	if p.init != nil {
		return p.init(ctx)
	}
	return nil
}

func (p *testProcessor) Process(ctx processor.Context) (processor.Result, error) {
	p.cycles.Add(1)
	return p.process(ctx)
}

func (p *testProcessor) End(ctx processor.Context) error {
	p.ends.Add(1)
	if p.end != nil {
		return p.end(ctx)
	}
	return nil
}

func (p *testProcessor) HandleException(err error) {
	p.mu.Lock()
	p.exceptions = append(p.exceptions, err)
	p.mu.Unlock()
}

func (p *testProcessor) ExposeState(args ...any) any {
	return fmt.Sprintf("cycles=%d args=%v", p.cycles.Load(), args)
}

func (p *testProcessor) errs() []error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]error(nil), p.exceptions...)
}

func providerOf(p processor.Processor, inputs int) processor.Provider {
	return processor.ProviderFunc(func(_ any, b processor.Binder) (processor.Processor, error) {
		for i := 0; i < inputs; i++ {
			b.RegisterInput(i)
		}
		return p, nil
	})
}

type finishRecorder struct {
	mu  sync.Mutex
	ids []int64
}

func (r *finishRecorder) OnFinish(id int64) {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
}

func (r *finishRecorder) calls() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.ids...)
}

func waitDone(t *testing.T, th *Thread) {
	t.Helper()
	select {
	case <-th.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("worker %d did not finish, state %s", th.ID(), th.State())
	}
}

func ptr(v int64) *int64 { return &v }

func TestThread_ErrorEveryCycleStillEndsOnce(t *testing.T) {
	sched := newFakeScheduler()
	f := NewFactory(FactoryConfig{Scheduler: sched, Time: &stepTime{}})

	boom := errors.New("boom")
	p := &testProcessor{
		process: func(processor.Context) (processor.Result, error) {
			return processor.ResultIdle, boom
		},
	}
	listener := &finishRecorder{}

	th, err := f.Create(providerOf(p, 0), Config{ID: ptr(1), Listener: listener, EndTimeMillis: 10})
	require.NoError(t, err)
	require.NoError(t, th.Start())
	waitDone(t, th)

	// Время 1..10 — десять циклов, ошибка не блокирует воркер.
	assert.Equal(t, int32(10), p.cycles.Load())
	// Чтение 11 > end_time цикла не начинает.
	assert.Equal(t, int64(10), th.CycleTimeMillis())
	assert.Len(t, p.errs(), 10)
	for _, e := range p.errs() {
		assert.ErrorIs(t, e, boom)
	}
	assert.Equal(t, int32(1), p.inits.Load())
	assert.Equal(t, int32(1), p.ends.Load())
	assert.Equal(t, []int64{1}, listener.calls())
	assert.Equal(t, []int64{1}, sched.finishedIDs())
	assert.Equal(t, StateTerminated, th.State())
}

func TestThread_PanicRoutedToHandler(t *testing.T) {
	sched := newFakeScheduler()
	f := NewFactory(FactoryConfig{Scheduler: sched, Time: &stepTime{}})

	p := &testProcessor{
		process: func(ctx processor.Context) (processor.Result, error) {
			if ctx.CycleNumber() == 1 {
				panic("kaboom")
			}
			return processor.ResultEnd, nil
		},
		end: func(processor.Context) error { panic("end kaboom") },
	}
	listener := &finishRecorder{}

	th, err := f.Create(providerOf(p, 0), Config{Listener: listener})
	require.NoError(t, err)
	require.NoError(t, th.Start())
	waitDone(t, th)

	errs := p.errs()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], processor.ErrPanic)
	assert.Equal(t, int32(2), p.cycles.Load())
	// Паника в End не мешает уведомить слушателя.
	assert.Equal(t, []int64{th.ID()}, listener.calls())
}

func TestThread_InputUnblocksIdleWorker(t *testing.T) {
	sched := newFakeScheduler()
	f := NewFactory(FactoryConfig{Scheduler: sched, Time: fixedTime(100)})

	var (
		mu  sync.Mutex
		got []any
	)
	var data processor.Receiver
	p := &testProcessor{
		process: func(processor.Context) (processor.Result, error) {
			for {
				v, ok := data.Receive()
				if !ok {
					break
				}
				if v == "stop" {
					return processor.ResultEnd, nil
				}
				mu.Lock()
				got = append(got, v)
				mu.Unlock()
			}
			return processor.ResultIdle, nil
		},
	}
	provider := processor.ProviderFunc(func(_ any, b processor.Binder) (processor.Processor, error) {
		data = b.RegisterInput(0)
		return p, nil
	})

	th, err := f.Create(provider, Config{})
	require.NoError(t, err)
	require.NoError(t, th.Start())

	require.Eventually(t, func() bool { return th.State() == StateBlocked }, time.Second, time.Millisecond)

	// Ни одного запланированного пробуждения: будит только вход.
	require.NoError(t, th.OnInput(0, "a"))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, th.OnInput(0, "b"))
	require.NoError(t, th.OnInput(0, "stop"))
	waitDone(t, th)

	assert.Equal(t, []any{"a", "b"}, got)
	assert.Empty(t, sched.scheduled)
}

func TestThread_WakeDuringCycleIsNotLost(t *testing.T) {
	sched := newFakeScheduler()
	f := NewFactory(FactoryConfig{Scheduler: sched, Time: fixedTime(0)})

	var self atomic.Pointer[Thread]
	p := &testProcessor{
		process: func(ctx processor.Context) (processor.Result, error) {
			if ctx.CycleNumber() == 1 {
				// Пробуждение приходит, пока цикл ещё идёт.
				self.Load().Wake()
				return processor.ResultIdle, nil
			}
			return processor.ResultEnd, nil
		},
	}

	th, err := f.Create(providerOf(p, 0), Config{})
	require.NoError(t, err)
	self.Store(th)
	require.NoError(t, th.Start())
	waitDone(t, th)

	assert.Equal(t, int32(2), p.cycles.Load())
}

func TestThread_EndResult(t *testing.T) {
	sched := newFakeScheduler()
	f := NewFactory(FactoryConfig{Scheduler: sched, Time: &stepTime{}})

	p := &testProcessor{
		process: func(ctx processor.Context) (processor.Result, error) {
			if ctx.CycleNumber() == 3 {
				return processor.ResultEnd, nil
			}
			return processor.ResultContinue, nil
		},
	}

	th, err := f.Create(providerOf(p, 0), Config{ID: ptr(9)})
	require.NoError(t, err)
	require.NoError(t, th.Start())
	waitDone(t, th)

	assert.Equal(t, int64(3), th.CycleNumber())
	assert.Equal(t, int32(1), p.ends.Load())
	assert.False(t, sched.registered(9))
	assert.Empty(t, p.errs())
}

func TestThread_EndTimeStopsLoop(t *testing.T) {
	sched := newFakeScheduler()
	f := NewFactory(FactoryConfig{Scheduler: sched, Time: fixedTime(100)})

	p := &testProcessor{
		process: func(processor.Context) (processor.Result, error) {
			return processor.ResultContinue, nil
		},
	}
	listener := &finishRecorder{}

	th, err := f.Create(providerOf(p, 0), Config{Listener: listener, EndTimeMillis: 50})
	require.NoError(t, err)
	require.NoError(t, th.Start())
	waitDone(t, th)

	assert.Zero(t, p.cycles.Load())
	assert.Zero(t, th.CycleTimeMillis())
	assert.LessOrEqual(t, th.CycleTimeMillis(), th.EndTimeMillis())
	assert.Equal(t, int32(1), p.inits.Load())
	assert.Equal(t, int32(1), p.ends.Load())
	assert.Len(t, listener.calls(), 1)
}

func TestThread_InitFailureSkipsCycles(t *testing.T) {
	sched := newFakeScheduler()
	f := NewFactory(FactoryConfig{Scheduler: sched, Time: fixedTime(0)})

	initErr := errors.New("no config")
	p := &testProcessor{
		init: func(processor.Context) error { return initErr },
		process: func(processor.Context) (processor.Result, error) {
			return processor.ResultContinue, nil
		},
	}
	listener := &finishRecorder{}

	th, err := f.Create(providerOf(p, 0), Config{Listener: listener})
	require.NoError(t, err)
	require.NoError(t, th.Start())
	waitDone(t, th)

	assert.Zero(t, p.cycles.Load())
	require.Len(t, p.errs(), 1)
	assert.ErrorIs(t, p.errs()[0], initErr)
	assert.Equal(t, int32(1), p.ends.Load())
	assert.Len(t, listener.calls(), 1)
}

func TestThread_UnknownResultRoutedToHandler(t *testing.T) {
	sched := newFakeScheduler()
	f := NewFactory(FactoryConfig{Scheduler: sched, Time: fixedTime(0)})

	p := &testProcessor{
		process: func(ctx processor.Context) (processor.Result, error) {
			if ctx.CycleNumber() == 1 {
				return processor.Result(42), nil
			}
			return processor.ResultEnd, nil
		},
	}

	th, err := f.Create(providerOf(p, 0), Config{})
	require.NoError(t, err)
	require.NoError(t, th.Start())
	waitDone(t, th)

	require.Len(t, p.errs(), 1)
	assert.ErrorIs(t, p.errs()[0], processor.ErrUnknownResult)
	assert.Equal(t, int32(2), p.cycles.Load())
}

func TestThread_ContextForwardsToScheduler(t *testing.T) {
	sched := newFakeScheduler()
	f := NewFactory(FactoryConfig{Scheduler: sched, Time: fixedTime(1000)})

	p := &testProcessor{
		process: func(ctx processor.Context) (processor.Result, error) {
			ctx.ScheduleWakeup(ctx.CycleTimeMillis() + 5)
			ctx.ScheduleWakeup(ctx.CycleTimeMillis() + 5)
			ctx.CancelAllScheduledWakeups()
			return processor.ResultEnd, nil
		},
	}

	th, err := f.Create(providerOf(p, 0), Config{ID: ptr(3)})
	require.NoError(t, err)
	require.NoError(t, th.Start())
	waitDone(t, th)

	assert.Equal(t, [][2]int64{{3, 1005}, {3, 1005}}, sched.scheduled)
	assert.Equal(t, []int64{3}, sched.cancelled)
	assert.Equal(t, int64(1000), th.CycleTimeMillis())
}

func TestThread_StopWakesBlockedWorker(t *testing.T) {
	sched := newFakeScheduler()
	f := NewFactory(FactoryConfig{Scheduler: sched, Time: fixedTime(0)})

	p := &testProcessor{
		process: func(processor.Context) (processor.Result, error) {
			return processor.ResultIdle, nil
		},
	}

	th, err := f.Create(providerOf(p, 0), Config{})
	require.NoError(t, err)
	require.NoError(t, th.Start())
	require.Eventually(t, func() bool { return th.State() == StateBlocked }, time.Second, time.Millisecond)

	th.Stop()
	waitDone(t, th)

	assert.Equal(t, int32(1), p.cycles.Load())
	assert.Equal(t, int32(1), p.ends.Load())
}

func TestThread_OnInputOutOfRange(t *testing.T) {
	f := NewFactory(FactoryConfig{Scheduler: newFakeScheduler(), Time: fixedTime(0)})
	p := &testProcessor{}

	th, err := f.Create(providerOf(p, 2), Config{})
	require.NoError(t, err)
	assert.Equal(t, 2, th.Inputs())

	assert.ErrorIs(t, th.OnInput(2, "x"), ErrInputIndex)
	assert.ErrorIs(t, th.OnInput(-1, "x"), ErrInputIndex)
	assert.NoError(t, th.OnInput(1, "x"))
}

func TestThread_StartTwice(t *testing.T) {
	f := NewFactory(FactoryConfig{Scheduler: newFakeScheduler(), Time: fixedTime(0)})
	p := &testProcessor{
		process: func(processor.Context) (processor.Result, error) {
			return processor.ResultEnd, nil
		},
	}

	th, err := f.Create(providerOf(p, 0), Config{})
	require.NoError(t, err)
	require.NoError(t, th.Start())
	assert.ErrorIs(t, th.Start(), ErrAlreadyStarted)
	waitDone(t, th)
}

func TestThread_ExposeState(t *testing.T) {
	f := NewFactory(FactoryConfig{Scheduler: newFakeScheduler(), Time: fixedTime(0)})
	p := &testProcessor{}

	th, err := f.Create(providerOf(p, 0), Config{})
	require.NoError(t, err)

	assert.Equal(t, "cycles=0 args=[x]", th.ExposeState("x"))
	assert.Equal(t, StateNew, th.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "BLOCKED", StateBlocked.String())
	assert.Equal(t, "TERMINATED", StateTerminated.String())
	assert.Equal(t, "STATE(9)", State(9).String())
}
