package host

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Tickwork/internal/processor"
	"github.com/shaiso/Tickwork/internal/scheduler"
	"github.com/shaiso/Tickwork/internal/signal"
	"github.com/shaiso/Tickwork/internal/worker"
)

// echoProcessor копирует вход 0 в свой лог, "stop" завершает.
type echoProcessor struct {
	processor.Base
	in processor.Receiver

	mu  sync.Mutex
	log []any
}

func (p *echoProcessor) Process(processor.Context) (processor.Result, error) {
	for {
		v, ok := p.in.Receive()
		if !ok {
			return processor.ResultIdle, nil
		}
		if v == "stop" {
			return processor.ResultEnd, nil
		}
		p.mu.Lock()
		p.log = append(p.log, v)
		p.mu.Unlock()
	}
}

func (p *echoProcessor) HandleException(error) {}

func (p *echoProcessor) ExposeState(args ...any) any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("%v %v", p.log, args)
}

// tickProcessor просыпается каждые every мс и завершается после max тиков.
type tickProcessor struct {
	processor.Base
	every int64
	max   int32
	ticks atomic.Int32
}

func (p *tickProcessor) Process(ctx processor.Context) (processor.Result, error) {
	if ctx.CycleNumber() > 1 {
		if p.ticks.Add(1) >= p.max {
			return processor.ResultEnd, nil
		}
	}
	ctx.ScheduleWakeup(ctx.CycleTimeMillis() + p.every)
	return processor.ResultIdle, nil
}

func (p *tickProcessor) HandleException(error) {}

type recordingListener struct {
	mu       sync.Mutex
	started  []int64
	finished []int64
}

func (l *recordingListener) OnStart(_ context.Context, info WorkerInfo) {
	l.mu.Lock()
	l.started = append(l.started, info.ID)
	l.mu.Unlock()
}

func (l *recordingListener) OnFinish(id int64) {
	l.mu.Lock()
	l.finished = append(l.finished, id)
	l.mu.Unlock()
}

func (l *recordingListener) snapshot() ([]int64, []int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int64(nil), l.started...), append([]int64(nil), l.finished...)
}

type fixture struct {
	host     *Host
	mock     *clock.Mock
	listener *recordingListener
	echo     *echoProcessor
	tick     *tickProcessor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mock := clock.NewMock()
	tp := processor.NewClockTime(mock)
	sched := scheduler.New(scheduler.Config{Time: tp, Sleeper: signal.NewCond(mock)})
	sched.Start(context.Background())
	t.Cleanup(sched.Stop)

	f := &fixture{
		mock:     mock,
		listener: &recordingListener{},
		echo:     &echoProcessor{},
		tick:     &tickProcessor{every: 10, max: 3},
	}

	reg := NewRegistry()
	reg.Register("echo", processor.ProviderFunc(func(_ any, b processor.Binder) (processor.Processor, error) {
		f.echo.in = b.RegisterInput(0)
		return f.echo, nil
	}))
	reg.Register("tick", processor.ProviderFunc(func(any, processor.Binder) (processor.Processor, error) {
		return f.tick, nil
	}))

	f.host = New(Config{
		Scheduler: sched,
		Time:      tp,
		Registry:  reg,
		Listeners: []processor.Listener{f.listener},
	})
	return f
}

func waitAll(t *testing.T, h *Host) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.Wait(ctx))
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("b", processor.ProviderFunc(nil))
	reg.Register("a", processor.ProviderFunc(nil))

	assert.Equal(t, []string{"a", "b"}, reg.Names())

	_, err := reg.Get("a")
	assert.NoError(t, err)

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestHost_CreateUnknownProvider(t *testing.T) {
	f := newFixture(t)

	_, err := f.host.Create(context.Background(), Spec{Provider: "nope"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Empty(t, f.host.Workers())
}

func TestHost_InputLifecycle(t *testing.T) {
	f := newFixture(t)
	id := int64(7)

	info, err := f.host.Create(context.Background(), Spec{ID: &id, Provider: "echo"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), info.ID)
	assert.Equal(t, "echo", info.Provider)
	assert.Equal(t, 1, info.Inputs)

	require.NoError(t, f.host.DeliverInput(7, 0, "hello"))
	require.Eventually(t, func() bool {
		st, err := f.host.State(7, "x")
		return err == nil && st == "[hello] [x]"
	}, time.Second, time.Millisecond)

	workers := f.host.Workers()
	require.Len(t, workers, 1)
	assert.Equal(t, int64(7), workers[0].ID)

	assert.ErrorIs(t, f.host.DeliverInput(7, 3, "x"), worker.ErrInputIndex)

	require.NoError(t, f.host.DeliverInput(7, 0, "stop"))
	waitAll(t, f.host)

	started, finished := f.listener.snapshot()
	assert.Equal(t, []int64{7}, started)
	assert.Equal(t, []int64{7}, finished)
	assert.Empty(t, f.host.Workers())

	assert.ErrorIs(t, f.host.DeliverInput(7, 0, "late"), ErrWorkerNotFound)
	_, err = f.host.State(7)
	assert.ErrorIs(t, err, ErrWorkerNotFound)
}

func TestHost_DuplicateID(t *testing.T) {
	f := newFixture(t)
	id := int64(1)

	_, err := f.host.Create(context.Background(), Spec{ID: &id, Provider: "echo"})
	require.NoError(t, err)

	_, err = f.host.Create(context.Background(), Spec{ID: &id, Provider: "tick"})
	assert.ErrorIs(t, err, scheduler.ErrDuplicateWorker)

	require.NoError(t, f.host.Stop(1))
	waitAll(t, f.host)
}

func TestHost_ScheduledWakeupsWithMockClock(t *testing.T) {
	f := newFixture(t)

	info, err := f.host.Create(context.Background(), Spec{Provider: "tick"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		tl := f.host.Timeline()
		return len(tl) == 1 && tl[0].At == 10
	}, time.Second, time.Millisecond)
	assert.Equal(t, []int64{info.ID}, f.host.Timeline()[0].IDs)

	done := make(chan struct{})
	go func() {
		_ = f.host.Wait(context.Background())
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for finished := false; !finished; {
		select {
		case <-done:
			finished = true
		default:
			require.True(t, time.Now().Before(deadline), "worker did not finish")
			f.mock.Add(time.Millisecond)
		}
	}

	assert.Equal(t, int32(3), f.tick.ticks.Load())
	// Три тика по 10 мс: не раньше 30 мс по моковым часам.
	assert.GreaterOrEqual(t, f.mock.Now().UnixMilli(), int64(30))
}

func TestHost_Shutdown(t *testing.T) {
	f := newFixture(t)

	_, err := f.host.Create(context.Background(), Spec{Provider: "echo"})
	require.NoError(t, err)
	_, err = f.host.Create(context.Background(), Spec{Provider: "tick"})
	require.NoError(t, err)
	require.Len(t, f.host.Workers(), 2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.host.Shutdown(ctx))

	assert.Empty(t, f.host.Workers())
	_, finished := f.listener.snapshot()
	assert.Len(t, finished, 2)
}

func TestHost_BootStopsBootedOnFailure(t *testing.T) {
	f := newFixture(t)
	id := int64(3)

	_, err := f.host.Boot(context.Background(), []Spec{
		{ID: &id, Provider: "echo"},
		{Provider: "nope"},
	})
	assert.ErrorIs(t, err, ErrUnknownProvider)

	waitAll(t, f.host)
	started, finished := f.listener.snapshot()
	assert.Equal(t, []int64{3}, started)
	assert.Equal(t, []int64{3}, finished)
	assert.Empty(t, f.host.Workers())
}

func TestHost_Boot(t *testing.T) {
	f := newFixture(t)

	infos, err := f.host.Boot(context.Background(), []Spec{{Provider: "echo"}, {Provider: "tick"}})
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Len(t, f.host.Workers(), 2)

	require.NoError(t, f.host.Shutdown(context.Background()))
}

func TestHost_WaitRespectsContext(t *testing.T) {
	f := newFixture(t)

	_, err := f.host.Create(context.Background(), Spec{Provider: "echo"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.host.Wait(ctx), context.DeadlineExceeded)

	require.NoError(t, f.host.Shutdown(context.Background()))
}
