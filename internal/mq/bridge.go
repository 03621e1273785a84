package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shaiso/Tickwork/internal/host"
	"github.com/shaiso/Tickwork/internal/worker"
)

// InputSink — получатель входов. Реализуется *host.Host.
type InputSink interface {
	DeliverInput(id int64, index int, value any) error
}

// InputBridge доставляет сообщения processor.input во входы воркеров.
type InputBridge struct {
	sink   InputSink
	logger *slog.Logger
}

// NewInputBridge создаёт InputBridge.
func NewInputBridge(sink InputSink, logger *slog.Logger) *InputBridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &InputBridge{sink: sink, logger: logger.With("component", "input_bridge")}
}

// Handle — Handler для очереди processor.inputs.
//
// Воркер, которого уже нет, — не ошибка: сообщение подтверждается.
// Неверный тип, payload или номер входа — в DLQ.
func (b *InputBridge) Handle(_ context.Context, d *Delivery) error {
	if d.Message.Type != MessageTypeProcessorInput {
		return fmt.Errorf("%w: unexpected message type %q", ErrPermanent, d.Message.Type)
	}

	payload, err := ParsePayload[InputPayload](&d.Message)
	if err != nil {
		return err
	}

	err = b.sink.DeliverInput(payload.WorkerID, payload.Input, payload.Value)
	switch {
	case err == nil:
		b.logger.Debug("input delivered",
			"worker_id", payload.WorkerID,
			"input", payload.Input,
			"message_id", d.Message.ID,
		)
		return nil

	case errors.Is(err, host.ErrWorkerNotFound):
		b.logger.Warn("input for unknown worker dropped",
			"worker_id", payload.WorkerID,
			"message_id", d.Message.ID,
		)
		return nil

	case errors.Is(err, worker.ErrInputIndex):
		return fmt.Errorf("%w: %w", ErrPermanent, err)

	default:
		return err
	}
}
