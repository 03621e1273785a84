package signal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Sleeper — монитор с ожиданием, ожиданием с таймаутом и уведомлением.
//
// Wait и WaitTimeout вызываются с захваченной блокировкой: на время
// ожидания она атомарно отпускается и снова захватывается перед возвратом.
type Sleeper interface {
	Lock()
	Unlock()

	// Wait ждёт Notify. Возвращает ErrInterrupted, если ctx отменён.
	Wait(ctx context.Context) error

	// WaitTimeout ждёт Notify, но не дольше d.
	WaitTimeout(ctx context.Context, d time.Duration) error

	// Notify будит не более одного ожидающего. Сам берёт блокировку.
	Notify()
}

// Cond — Sleeper на sync.Mutex + sync.Cond.
//
// Таймаут реализован таймером clock.Clock, который будит ожидающего.
// Каждое ожидание получает своё поколение gen: таймер от прошлого
// ожидания не может прервать следующее.
// Рассчитан на одного ожидающего.
type Cond struct {
	mu    sync.Mutex
	cond  *sync.Cond
	clock clock.Clock
	gen   uint64
}

// NewCond создаёт Cond. Если c == nil — используются реальные часы.
func NewCond(c clock.Clock) *Cond {
	if c == nil {
		c = clock.New()
	}
	s := &Cond{clock: c}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Lock захватывает блокировку монитора.
func (s *Cond) Lock() { s.mu.Lock() }

// Unlock отпускает блокировку монитора.
func (s *Cond) Unlock() { s.mu.Unlock() }

// Wait ждёт Notify или отмены ctx.
func (s *Cond) Wait(ctx context.Context) error {
	return s.wait(ctx, 0)
}

// WaitTimeout ждёт Notify, отмены ctx или истечения d.
// При d <= 0 возвращается сразу.
func (s *Cond) WaitTimeout(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return interrupted(ctx)
	}
	return s.wait(ctx, d)
}

func (s *Cond) wait(ctx context.Context, d time.Duration) error {
	if err := interrupted(ctx); err != nil {
		return err
	}

	s.gen++
	gen := s.gen

	stop := context.AfterFunc(ctx, func() { s.wakeGen(gen) })
	defer stop()

	if d > 0 {
		t := s.clock.AfterFunc(d, func() { s.wakeGen(gen) })
		defer t.Stop()
	}

	s.cond.Wait()

	// Закрываем поколение: опоздавшие таймеры больше никого не разбудят.
	s.gen++

	return interrupted(ctx)
}

func (s *Cond) wakeGen(gen uint64) {
	s.mu.Lock()
	if s.gen == gen {
		s.cond.Broadcast()
	}
	s.mu.Unlock()
}

// Notify будит ожидающего, если он есть.
func (s *Cond) Notify() {
	s.mu.Lock()
	s.cond.Signal()
	s.mu.Unlock()
}

func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	return nil
}
