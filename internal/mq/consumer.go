package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Tickwork/internal/telemetry"
)

// Handler обрабатывает одно сообщение.
// Ошибка с ErrPermanent — сообщение уходит в DLQ, любая другая — обратно в очередь.
type Handler func(ctx context.Context, msg *Delivery) error

// Delivery — разобранное сообщение вместе с исходной доставкой.
type Delivery struct {
	Message Message
	Raw     amqp.Delivery
}

// Outcome — чем закончилась доставка.
type Outcome string

const (
	OutcomeAck        Outcome = "ack"
	OutcomeRequeue    Outcome = "requeue"
	OutcomeDeadLetter Outcome = "dead_letter"
)

// outcomeOf решает судьбу сообщения по результату handler.
func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeAck
	case errors.Is(err, ErrPermanent):
		return OutcomeDeadLetter
	default:
		return OutcomeRequeue
	}
}

// Consumer читает одну очередь и переживает переподключения Connection.
type Consumer struct {
	conn     *Connection
	queue    string
	handler  Handler
	prefetch int
	logger   *slog.Logger
}

// ConsumerConfig — конфигурация Consumer.
type ConsumerConfig struct {
	Queue   string
	Handler Handler

	// Prefetch — сколько неподтверждённых сообщений держит брокер (default: 1).
	Prefetch int
}

// NewConsumer создаёт Consumer.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}

	return &Consumer{
		conn:     conn,
		queue:    cfg.Queue,
		handler:  cfg.Handler,
		prefetch: cfg.Prefetch,
		logger:   telemetry.WithComponent(logger, "consumer").With("queue", cfg.Queue),
	}
}

// Run потребляет сообщения до отмены ctx.
// После обрыва канала ждёт переподключения и подписывается заново.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		deliveries, err := c.subscribe()
		if err != nil {
			c.logger.Error("subscribe failed", "error", err)
		} else {
			c.logger.Info("consumer subscribed")
			c.drain(ctx, deliveries)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Warn("waiting for reconnect")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.conn.ReconnectNotify():
		}
	}
}

func (c *Consumer) subscribe() (<-chan amqp.Delivery, error) {
	ch := c.conn.Channel()
	if ch == nil {
		return nil, ErrNoChannel
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	// autoAck выключен: подтверждение после handler.
	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", c.queue, err)
	}
	return deliveries, nil
}

// drain возвращается при отмене ctx или закрытии канала доставок.
func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-deliveries:
			if !ok {
				return
			}
			c.settle(raw, c.dispatch(ctx, raw))
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, raw amqp.Delivery) Outcome {
	var msg Message
	if err := json.Unmarshal(raw.Body, &msg); err != nil {
		c.logger.Error("malformed message", "error", err, "body", string(raw.Body))
		return OutcomeDeadLetter
	}

	err := c.handler(ctx, &Delivery{Message: msg, Raw: raw})
	out := outcomeOf(err)
	if err != nil {
		c.logger.Error("handler failed",
			"message_id", msg.ID,
			"type", msg.Type,
			"outcome", out,
			"error", err,
		)
	}
	return out
}

func (c *Consumer) settle(raw amqp.Delivery, out Outcome) {
	telemetry.MessagesConsumed.WithLabelValues(c.queue, string(out)).Inc()

	var err error
	switch out {
	case OutcomeAck:
		err = raw.Ack(false)
	case OutcomeRequeue:
		err = raw.Nack(false, true)
	default:
		err = raw.Nack(false, false)
	}
	if err != nil {
		c.logger.Warn("settle failed", "outcome", out, "error", err)
	}
}

// ParsePayload декодирует Message.Payload в T.
// Payload приходит из JSON как map, поэтому он перекодируется целиком.
// Несовпадение формы — ErrPermanent.
func ParsePayload[T any](msg *Message) (T, error) {
	var out T

	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		return out, fmt.Errorf("%w: payload: %w", ErrPermanent, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: payload: %w", ErrPermanent, err)
	}
	return out, nil
}
