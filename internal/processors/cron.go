package processors

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/Tickwork/internal/processor"
)

// cronParser — пять полей плюс дескрипторы (@hourly, @every 5m).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ErrScheduleExhausted — у cron-выражения больше нет срабатываний
// (например, 30 февраля).
var ErrScheduleExhausted = errors.New("cron schedule has no further activations")

// CronSettings — настройки процессора cron.
type CronSettings struct {
	// Expr — cron-выражение, например "*/5 * * * *".
	Expr string `json:"expr" yaml:"expr"`

	// Timezone — IANA-зона для выражения (default: UTC).
	Timezone string `json:"timezone,omitempty" yaml:"timezone,omitempty"`

	// MaxTicks — завершиться после стольких тиков; 0: без ограничения.
	MaxTicks int64 `json:"max_ticks,omitempty" yaml:"max_ticks,omitempty"`
}

// Cron просыпается на каждый тик cron-выражения.
type Cron struct {
	processor.Base

	schedule cron.Schedule
	loc      *time.Location
	maxTicks int64

	// ticks и next читает ExposeState из чужой горутины.
	ticks atomic.Int64
	next  atomic.Int64
}

// ValidateCronExpr проверяет cron-выражение.
func ValidateCronExpr(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// NewCron создаёт процессор cron.
func NewCron(s CronSettings) (*Cron, error) {
	schedule, err := cronParser.Parse(s.Expr)
	if err != nil {
		return nil, fmt.Errorf("%w: parse cron expression %q: %w", ErrInvalidSettings, s.Expr, err)
	}

	loc := time.UTC
	if s.Timezone != "" {
		loc, err = time.LoadLocation(s.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidSettings, s.Timezone, err)
		}
	}

	c := &Cron{schedule: schedule, loc: loc, maxTicks: s.MaxTicks}
	if _, err := c.nextAfter(time.Now().UnixMilli()); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSettings, s.Expr, err)
	}
	return c, nil
}

// CronProvider — провайдер процессора cron. Входов нет.
func CronProvider() processor.Provider {
	return processor.ProviderFunc(func(settings any, _ processor.Binder) (processor.Processor, error) {
		s, err := decodeSettings[CronSettings](settings)
		if err != nil {
			return nil, err
		}
		return NewCron(s)
	})
}

// Process считает тик, если его время наступило, и планирует следующий.
// Раннее пробуждение просто повторяет уже запланированное время.
func (c *Cron) Process(ctx processor.Context) (processor.Result, error) {
	now := ctx.CycleTimeMillis()
	next := c.next.Load()

	if next != 0 && now >= next {
		ticks := c.ticks.Add(1)
		if c.maxTicks > 0 && ticks >= c.maxTicks {
			return processor.ResultEnd, nil
		}
	}

	if next == 0 || now >= next {
		n, err := c.nextAfter(now)
		if err != nil {
			slog.Default().Warn("cron schedule exhausted, finishing", "error", err)
			return processor.ResultEnd, nil
		}
		next = n
		c.next.Store(next)
	}

	ctx.ScheduleWakeup(next)
	return processor.ResultIdle, nil
}

// nextAfter возвращает ближайшее срабатывание строго после millis.
// robfig/cron отдаёт нулевое time.Time, если срабатываний больше нет.
func (c *Cron) nextAfter(millis int64) (int64, error) {
	next := c.schedule.Next(time.UnixMilli(millis).In(c.loc))
	if next.IsZero() {
		return 0, fmt.Errorf("%w: after %d", ErrScheduleExhausted, millis)
	}
	return next.UnixMilli(), nil
}

// HandleException логирует ошибку цикла.
func (c *Cron) HandleException(err error) {
	slog.Default().Warn("cron processor error", "error", err)
}

// ExposeState возвращает число тиков и время следующего.
func (c *Cron) ExposeState(...any) any {
	return map[string]any{
		"ticks":   c.ticks.Load(),
		"next_ms": c.next.Load(),
	}
}
