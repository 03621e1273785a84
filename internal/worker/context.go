package worker

import (
	"sync/atomic"

	"github.com/shaiso/Tickwork/internal/processor"
)

// cycleContext — processor.Context одного воркера.
//
// Время и номер цикла меняет только горутина воркера; атомики нужны
// для чтения из API и диагностики.
type cycleContext struct {
	id        int64
	scheduler Scheduler
	time      processor.TimeProvider
	endTime   int64

	cycleTime   atomic.Int64
	cycleNumber atomic.Int64
}

var _ processor.Context = (*cycleContext)(nil)

func newCycleContext(id int64, sched Scheduler, tp processor.TimeProvider, endTime int64) *cycleContext {
	return &cycleContext{
		id:        id,
		scheduler: sched,
		time:      tp,
		endTime:   endTime,
	}
}

// beginCycle читает часы и, если время окончания ещё не прошло,
// запоминает его как время нового цикла. После окончания CycleTimeMillis
// остаётся временем последнего выполненного цикла.
func (c *cycleContext) beginCycle() bool {
	now := c.time.Millis()
	if now > c.endTime {
		return false
	}
	c.cycleTime.Store(now)
	return true
}

func (c *cycleContext) nextCycleNumber() int64 {
	return c.cycleNumber.Add(1)
}

func (c *cycleContext) ScheduleWakeup(timeMillis int64) {
	c.scheduler.Schedule(c.id, timeMillis)
}

// Deprecated: см. processor.Context.
func (c *cycleContext) CancelAllScheduledWakeups() {
	c.scheduler.CancelAllScheduled(c.id)
}

func (c *cycleContext) CycleTimeMillis() int64 { return c.cycleTime.Load() }

func (c *cycleContext) CycleNumber() int64 { return c.cycleNumber.Load() }

func (c *cycleContext) EndTimeMillis() int64 { return c.endTime }
