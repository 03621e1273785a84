package mq

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/shaiso/Tickwork/internal/processor"
)

// FinishedPublisher публикует события о завершении. Реализуется *Publisher.
type FinishedPublisher interface {
	PublishWorkerFinished(ctx context.Context, payload WorkerFinishedPayload) error
}

// EventListener публикует worker.finished при завершении каждого воркера.
//
// Публикация идёт в фоне: OnFinish вызывается горутиной воркера.
// Close ждёт незавершённые публикации.
type EventListener struct {
	publisher FinishedPublisher
	clock     clock.Clock
	timeout   time.Duration
	logger    *slog.Logger

	wg sync.WaitGroup
}

var _ processor.Listener = (*EventListener)(nil)

// EventListenerConfig — конфигурация EventListener.
type EventListenerConfig struct {
	Publisher FinishedPublisher

	// Clock (default: реальные часы).
	Clock clock.Clock

	// Timeout одной публикации (default: 5s).
	Timeout time.Duration

	// Logger (default: slog.Default()).
	Logger *slog.Logger
}

// NewEventListener создаёт EventListener.
func NewEventListener(cfg EventListenerConfig) *EventListener {
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &EventListener{
		publisher: cfg.Publisher,
		clock:     c,
		timeout:   timeout,
		logger:    logger.With("component", "events"),
	}
}

// OnFinish публикует событие о завершении воркера id.
func (l *EventListener) OnFinish(id int64) {
	payload := WorkerFinishedPayload{
		WorkerID:   id,
		FinishedAt: l.clock.Now().UTC(),
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()

		if err := l.publisher.PublishWorkerFinished(ctx, payload); err != nil {
			l.logger.Error("failed to publish worker finished", "worker_id", id, "error", err)
		}
	}()
}

// Close ждёт фоновые публикации.
func (l *EventListener) Close() {
	l.wg.Wait()
}
