package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"eventhub/internal/domain"
)

const maxMessageLen = 500

type chatService struct {
	messageRepo      domain.MessageRepository
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	notifications    domain.NotificationService
	logger           *slog.Logger
}

func NewChatService(
	messageRepo domain.MessageRepository,
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	notifications domain.NotificationService,
	logger *slog.Logger,
) domain.ChatService {
	return &chatService{
		messageRepo:      messageRepo,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		notifications:    notifications,
		logger:           logger,
	}
}

// requireRoomAccess checks the actor may participate in the event's chat:
// the organizer, an admin, or a user holding an active registration.
func (s *chatService) requireRoomAccess(ctx context.Context, eventID string, actor domain.Actor) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID == actor.ID || actor.IsAdmin() {
		return event, nil
	}
	reg, err := s.registrationRepo.GetActiveByEventAndUser(ctx, eventID, actor.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	switch reg.Status {
	case domain.RegistrationStatusConfirmed, domain.RegistrationStatusAttended:
		return event, nil
	}
	return nil, domain.ErrForbidden
}

func (s *chatService) PostMessage(ctx context.Context, eventID string, author domain.Actor, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > maxMessageLen {
		return nil, fmt.Errorf("%w: message cannot exceed %d characters", domain.ErrInvalidInput, maxMessageLen)
	}

	event, err := s.requireRoomAccess(ctx, eventID, author)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		EventID:   eventID,
		UserID:    author.ID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	// The organizer hears about room activity; participants pull the room.
	if event.OrganizerID != author.ID {
		n := &domain.Notification{
			RecipientID: event.OrganizerID,
			SenderID:    &author.ID,
			Type:        domain.NotificationChatMessage,
			Title:       "New chat message",
			Message:     fmt.Sprintf("New message in %q", event.Title),
			EventID:     &event.ID,
		}
		if err := s.notifications.Notify(ctx, n); err != nil {
			s.logger.Warn("chat notify failed", "event_id", eventID, "err", err)
		}
	}
	return msg, nil
}

func (s *chatService) ListMessages(ctx context.Context, eventID string, requester domain.Actor, p domain.PaginationParams) ([]*domain.MessageWithUser, int, error) {
	if _, err := s.requireRoomAccess(ctx, eventID, requester); err != nil {
		return nil, 0, err
	}
	messages, total, err := s.messageRepo.ListByEventID(ctx, eventID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	return messages, total, nil
}
