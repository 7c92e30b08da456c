package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventhub/internal/domain"
)

type ticketTypeRepository struct {
	DB *sql.DB
}

func NewTicketTypeRepository(db *sql.DB) domain.TicketTypeRepository {
	return &ticketTypeRepository{
		DB: db,
	}
}

func (r *ticketTypeRepository) CreateBatch(ctx context.Context, eventID string, types []*domain.TicketType) error {
	if len(types) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, t := range types {
		t.EventID = eventID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO ticket_types (event_id, name, price, quantity, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, eventID, t.Name, t.Price, t.Quantity, t.CreatedAt, t.UpdatedAt).Scan(&t.ID)
		if err != nil {
			return fmt.Errorf("insert ticket type %q: %w", t.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *ticketTypeRepository) GetByID(ctx context.Context, id string) (*domain.TicketType, error) {
	query := `
		SELECT id, event_id, name, price, quantity, created_at, updated_at
		FROM ticket_types
		WHERE id = $1
	`
	t := &domain.TicketType{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&t.ID, &t.EventID, &t.Name, &t.Price, &t.Quantity, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *ticketTypeRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.TicketType, error) {
	query := `
		SELECT id, event_id, name, price, quantity, created_at, updated_at
		FROM ticket_types
		WHERE event_id = $1
		ORDER BY price ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]*domain.TicketType, 0)
	for rows.Next() {
		t := &domain.TicketType{}
		if err := rows.Scan(&t.ID, &t.EventID, &t.Name, &t.Price, &t.Quantity, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// Reconcile merges the supplied ticket types into the event's existing set.
// Inputs carrying an ID update that row; inputs without an ID insert a new
// row. Rows omitted from the payload are deleted only when no tickets were
// sold against them, so sold tickets keep a valid type reference.
func (r *ticketTypeRepository) Reconcile(ctx context.Context, eventID string, types []domain.TicketTypeInput) ([]*domain.TicketType, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	keptIDs := make([]string, 0, len(types))
	for _, in := range types {
		if in.ID != "" {
			var result sql.Result
			result, err = tx.ExecContext(ctx, `
				UPDATE ticket_types
				SET name = $3, price = $4, quantity = $5, updated_at = NOW()
				WHERE id = $1 AND event_id = $2
			`, in.ID, eventID, in.Name, in.Price, in.Quantity)
			if err != nil {
				return nil, fmt.Errorf("update ticket type %s: %w", in.ID, err)
			}
			if rows, _ := result.RowsAffected(); rows == 0 {
				err = domain.ErrNotFound
				return nil, err
			}
			keptIDs = append(keptIDs, in.ID)
			continue
		}
		var id string
		err = tx.QueryRowContext(ctx, `
			INSERT INTO ticket_types (event_id, name, price, quantity, created_at, updated_at)
			VALUES ($1, $2, $3, $4, NOW(), NOW())
			RETURNING id
		`, eventID, in.Name, in.Price, in.Quantity).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("insert ticket type %q: %w", in.Name, err)
		}
		keptIDs = append(keptIDs, id)
	}

	deleteQuery := `
		DELETE FROM ticket_types tt
		WHERE tt.event_id = $1
		  AND NOT EXISTS (SELECT 1 FROM tickets t WHERE t.ticket_type_id = tt.id)
	`
	args := []interface{}{eventID}
	if len(keptIDs) > 0 {
		placeholders := make([]string, len(keptIDs))
		for i, id := range keptIDs {
			placeholders[i] = fmt.Sprintf("$%d", i+2)
			args = append(args, id)
		}
		deleteQuery += fmt.Sprintf(" AND tt.id NOT IN (%s)", strings.Join(placeholders, ", "))
	}
	if _, err = tx.ExecContext(ctx, deleteQuery, args...); err != nil {
		return nil, fmt.Errorf("delete omitted ticket types: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return r.ListByEventID(ctx, eventID)
}
