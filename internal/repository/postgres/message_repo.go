package postgres

import (
	"context"
	"database/sql"

	"eventhub/internal/domain"
)

type messageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) domain.MessageRepository {
	return &messageRepository{
		DB: db,
	}
}

func (r *messageRepository) Create(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (event_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, m.EventID, m.UserID, m.Content, m.CreatedAt).
		Scan(&m.ID)
}

func (r *messageRepository) ListByEventID(ctx context.Context, eventID string, p domain.PaginationParams) ([]*domain.MessageWithUser, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM messages WHERE event_id = $1`
	if err := r.DB.QueryRowContext(ctx, countQuery, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT m.id, m.event_id, m.user_id, m.content, m.created_at,
		       u.id, u.email, u.first_name, u.last_name, u.role
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.event_id = $1
		ORDER BY m.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*domain.MessageWithUser, 0)
	for rows.Next() {
		m := &domain.Message{}
		u := &domain.User{}
		if err := rows.Scan(
			&m.ID, &m.EventID, &m.UserID, &m.Content, &m.CreatedAt,
			&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role,
		); err != nil {
			return nil, 0, err
		}
		items = append(items, &domain.MessageWithUser{Message: m, User: u})
	}
	return items, total, rows.Err()
}
