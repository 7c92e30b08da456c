package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one decoded notification event. A returned error rejects
// the message without requeueing it.
type Handler func(ctx context.Context, event *NotificationEvent) error

// Consumer drains the notifications queue and hands each event to the
// handler. It runs a reconnect loop with exponential backoff and returns
// only when the context is cancelled.
type Consumer struct {
	url     string
	handler Handler
	logger  *slog.Logger
}

// NewConsumer creates a Consumer for the given AMQP URL.
func NewConsumer(url string, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{url: url, handler: handler, logger: logger}
}

// Run blocks consuming messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("notification consumer: dial failed", "err", err, "retry_in", backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(ctx, conn); err != nil {
			if errors.Is(err, context.Canceled) {
				_ = conn.Close()
				return err
			}
			c.logger.Warn("notification consumer: consume loop ended", "err", err)
		}
		_ = conn.Close()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.logger.Warn("notification consumer: set QoS failed", "err", err)
	}

	if _, err := ch.QueueDeclare(NotificationQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(NotificationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			event := &NotificationEvent{}
			if err := json.Unmarshal(d.Body, event); err != nil {
				c.logger.Error("notification consumer: bad payload", "err", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			if err := c.handler(ctx, event); err != nil {
				c.logger.Error("notification consumer: handler failed", "err", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
