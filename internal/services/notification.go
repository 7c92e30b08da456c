package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/domain"
)

type notificationService struct {
	repo      domain.NotificationRepository
	publisher domain.NotificationPublisher
	logger    *slog.Logger
}

// NewNotificationService creates a NotificationService that persists
// notifications and fans them out through the publisher.
func NewNotificationService(repo domain.NotificationRepository, publisher domain.NotificationPublisher, logger *slog.Logger) domain.NotificationService {
	return &notificationService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Notify persists the notification, then publishes it. Publishing is
// best-effort: a broker outage must never fail the request that produced
// the notification.
func (s *notificationService) Notify(ctx context.Context, n *domain.Notification) error {
	if n.RecipientID == "" || n.Type == "" {
		return fmt.Errorf("%w: notification needs recipient and type", domain.ErrInvalidInput)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	if err := s.publisher.Publish(ctx, n); err != nil {
		s.logger.Warn("notification publish failed", "notification_id", n.ID, "err", err)
	}
	return nil
}

func (s *notificationService) ListMy(ctx context.Context, userID string, unreadOnly bool, p domain.PaginationParams) ([]*domain.Notification, int, error) {
	items, total, err := s.repo.ListByRecipient(ctx, userID, unreadOnly, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return items, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	return s.repo.MarkRead(ctx, notificationID, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
