package domain

import (
	"context"
	"time"
)

// Message is a chat message posted in an event's room.
type Message struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageWithUser bundles a message with its author's profile.
type MessageWithUser struct {
	Message *Message `json:"message"`
	User    *User    `json:"user"`
}

// MessageRepository defines storage operations for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	ListByEventID(ctx context.Context, eventID string, p PaginationParams) ([]*MessageWithUser, int, error)
}

// ChatService defines per-event chat rooms. Posting requires a confirmed
// registration or event ownership.
type ChatService interface {
	PostMessage(ctx context.Context, eventID string, author Actor, content string) (*Message, error)
	ListMessages(ctx context.Context, eventID string, requester Actor, p PaginationParams) ([]*MessageWithUser, int, error)
}
