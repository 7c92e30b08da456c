// Package queue implements notification fan-out over RabbitMQ: services
// publish persisted notifications to a durable queue and a background
// consumer delivers them to connected clients via the session registry.
package queue

import "time"

// NotificationQueueName is the durable queue notifications travel on.
const NotificationQueueName = "notifications"

// NotificationEvent is the wire payload for one notification. It carries
// enough for downstream delivery without querying the primary database.
type NotificationEvent struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	SenderID    string    `json:"sender_id,omitempty"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	EventID     string    `json:"event_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
