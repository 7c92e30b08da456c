package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"eventhub/internal/domain"
)

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) domain.NotificationRepository {
	return &notificationRepository{
		DB: db,
	}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, sender_id, type, title, message, event_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		n.RecipientID, n.SenderID, n.Type, n.Title, n.Message, n.EventID, n.Read, n.CreatedAt,
	).Scan(&n.ID)
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, userID string, unreadOnly bool, p domain.PaginationParams) ([]*domain.Notification, int, error) {
	where := `recipient_id = $1`
	args := []interface{}{userID}
	if unreadOnly {
		where += ` AND read = FALSE`
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM notifications WHERE ` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, recipient_id, sender_id, type, title, message, event_id, read, created_at
		FROM notifications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, p.Limit(), p.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*domain.Notification, 0)
	for rows.Next() {
		n := &domain.Notification{}
		var senderID, eventID sql.NullString
		if err := rows.Scan(&n.ID, &n.RecipientID, &senderID, &n.Type, &n.Title, &n.Message, &eventID, &n.Read, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		if senderID.Valid {
			n.SenderID = &senderID.String
		}
		if eventID.Valid {
			n.EventID = &eventID.String
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2`
	result, err := r.DB.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	query := `UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND read = FALSE`
	_, err := r.DB.ExecContext(ctx, query, userID)
	return err
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = FALSE`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
