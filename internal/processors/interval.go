package processors

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/shaiso/Tickwork/internal/processor"
)

// IntervalSettings — настройки процессора interval.
type IntervalSettings struct {
	EveryMillis int64 `json:"every_ms" yaml:"every_ms"`
	MaxTicks    int64 `json:"max_ticks,omitempty" yaml:"max_ticks,omitempty"`
}

// Interval просыпается каждые EveryMillis от времени предыдущего тика.
type Interval struct {
	processor.Base

	every    int64
	maxTicks int64

	// ticks и next читает ExposeState из чужой горутины.
	ticks atomic.Int64
	next  atomic.Int64
}

// NewInterval создаёт процессор interval.
func NewInterval(s IntervalSettings) (*Interval, error) {
	if s.EveryMillis <= 0 {
		return nil, fmt.Errorf("%w: every_ms must be positive, got %d", ErrInvalidSettings, s.EveryMillis)
	}
	return &Interval{every: s.EveryMillis, maxTicks: s.MaxTicks}, nil
}

// IntervalProvider — провайдер процессора interval. Входов нет.
func IntervalProvider() processor.Provider {
	return processor.ProviderFunc(func(settings any, _ processor.Binder) (processor.Processor, error) {
		s, err := decodeSettings[IntervalSettings](settings)
		if err != nil {
			return nil, err
		}
		return NewInterval(s)
	})
}

func (p *Interval) Process(ctx processor.Context) (processor.Result, error) {
	now := ctx.CycleTimeMillis()
	next := p.next.Load()

	switch {
	case next == 0:
		next = now + p.every
	case now >= next:
		ticks := p.ticks.Add(1)
		if p.maxTicks > 0 && ticks >= p.maxTicks {
			return processor.ResultEnd, nil
		}
		next = now + p.every
	}
	p.next.Store(next)

	ctx.ScheduleWakeup(next)
	return processor.ResultIdle, nil
}

func (p *Interval) HandleException(err error) {
	slog.Default().Warn("interval processor error", "error", err)
}

func (p *Interval) ExposeState(...any) any {
	return map[string]any{
		"ticks":   p.ticks.Load(),
		"next_ms": p.next.Load(),
	}
}
