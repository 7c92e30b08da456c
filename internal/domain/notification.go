package domain

import (
	"context"
	"time"
)

// Notification types emitted by the services.
const (
	NotificationEventRegistration    = "event-registration"
	NotificationEventCancelled       = "event-cancelled"
	NotificationEventUpdated         = "event-updated"
	NotificationRegistrationApproved = "registration-approved"
	NotificationRegistrationRejected = "registration-rejected"
	NotificationEventReported        = "event-reported"
	NotificationAdminAction          = "admin-action"
	NotificationChatMessage          = "chat-message"
)

// Notification is a persisted message for a user, delivered best-effort to
// connected clients through the fan-out queue.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	SenderID    *string   `json:"sender_id,omitempty"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	EventID     *string   `json:"event_id,omitempty"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationRepository defines storage operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByRecipient(ctx context.Context, userID string, unreadOnly bool, p PaginationParams) ([]*Notification, int, error)
	// MarkRead marks the notification read; ErrNotFound when the row does
	// not exist or belongs to another user.
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

// NotificationPublisher pushes a notification onto the fan-out channel.
// Implementations must not fail the originating request: errors are for the
// caller to log and drop.
type NotificationPublisher interface {
	Publish(ctx context.Context, n *Notification) error
}

// NotificationService persists notifications and fans them out.
type NotificationService interface {
	// Notify persists the notification and publishes it best-effort.
	Notify(ctx context.Context, n *Notification) error
	ListMy(ctx context.Context, userID string, unreadOnly bool, p PaginationParams) ([]*Notification, int, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}
