package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"eventhub/internal/domain"
)

// Publisher publishes notifications to the notifications queue. Errors are
// logged and returned so callers can drop them without failing the request.
type Publisher struct {
	url    string
	logger *slog.Logger
}

// NewPublisher creates a Publisher for the given AMQP URL.
func NewPublisher(url string, logger *slog.Logger) *Publisher {
	return &Publisher{url: url, logger: logger}
}

var _ domain.NotificationPublisher = (*Publisher)(nil)

// Publish marshals the notification and publishes it persistently on the
// default exchange. The connection is short-lived; publishing is rare enough
// that a pooled channel is not worth the bookkeeping.
func (p *Publisher) Publish(ctx context.Context, n *domain.Notification) error {
	event := NotificationEvent{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		CreatedAt:   n.CreatedAt,
	}
	if n.SenderID != nil {
		event.SenderID = *n.SenderID
	}
	if n.EventID != nil {
		event.EventID = *n.EventID
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Error("amqp dial failed", "err", err)
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Error("amqp channel open failed", "err", err)
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(NotificationQueueName, true, false, false, false, nil); err != nil {
		p.logger.Error("amqp queue declare failed", "err", err)
		return fmt.Errorf("amqp queue declare: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", NotificationQueueName, false, false, pub); err != nil {
		p.logger.Error("amqp publish failed", "err", err)
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}
