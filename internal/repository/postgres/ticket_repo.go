package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/domain"
)

type ticketRepository struct {
	DB *sql.DB
}

func NewTicketRepository(db *sql.DB) domain.TicketRepository {
	return &ticketRepository{
		DB: db,
	}
}

// Purchase claims inventory and creates one ticket row per unit in a single
// transaction. The inventory claim is one conditional decrement for the
// whole request: UPDATE ... SET quantity = quantity - n WHERE quantity >= n,
// checked by affected-row count. Concurrent purchases against the last units
// serialize on the row; the loser sees zero affected rows and the whole
// transaction rolls back with ErrSoldOut, so quantity never goes negative
// and no orphan ticket rows survive a failed claim.
func (r *ticketRepository) Purchase(ctx context.Context, ticketTypeID string, tickets []*domain.Ticket) error {
	if len(tickets) == 0 {
		return domain.ErrInvalidInput
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

	var result sql.Result
	result, err = tx.ExecContext(ctx, `
		UPDATE ticket_types
		SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
	`, ticketTypeID, len(tickets))
	if err != nil {
		return fmt.Errorf("decrement inventory: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		err = domain.ErrSoldOut
		return err
	}

	for _, t := range tickets {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO tickets (event_id, user_id, ticket_type_id, status, code, purchase_price, purchased_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, t.EventID, t.UserID, t.TicketTypeID, t.Status, t.Code, t.PurchasePrice, t.PurchasedAt).Scan(&t.ID)
		if err != nil {
			return fmt.Errorf("insert ticket: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `
		SELECT id, event_id, user_id, ticket_type_id, status, code, purchase_price,
		       purchased_at, validated_at, validated_by, refunded_at
		FROM tickets
		WHERE id = $1
	`
	t := &domain.Ticket{}
	var validatedAt, refundedAt sql.NullTime
	var validatedBy sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.EventID, &t.UserID, &t.TicketTypeID, &t.Status, &t.Code, &t.PurchasePrice,
		&t.PurchasedAt, &validatedAt, &validatedBy, &refundedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if validatedAt.Valid {
		t.ValidatedAt = &validatedAt.Time
	}
	if validatedBy.Valid {
		t.ValidatedBy = &validatedBy.String
	}
	if refundedAt.Valid {
		t.RefundedAt = &refundedAt.Time
	}
	return t, nil
}

func (r *ticketRepository) ListByUserID(ctx context.Context, userID string, status domain.TicketStatus, p domain.PaginationParams) ([]*domain.TicketWithDetails, int, error) {
	where := `t.user_id = $1`
	args := []interface{}{userID}
	if status != "" {
		where += ` AND t.status = $2`
		args = append(args, status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM tickets t WHERE ` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT t.id, t.event_id, t.user_id, t.ticket_type_id, t.status, t.code,
		       t.purchase_price, t.purchased_at, t.validated_at, t.validated_by, t.refunded_at,
		       e.id, e.title, e.start_date, e.end_date, e.location, e.status,
		       tt.id, tt.name, tt.price
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		JOIN ticket_types tt ON tt.id = t.ticket_type_id
		WHERE %s
		ORDER BY t.purchased_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, p.Limit(), p.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*domain.TicketWithDetails, 0)
	for rows.Next() {
		t := &domain.Ticket{}
		e := &domain.Event{}
		tt := &domain.TicketType{}
		var validatedAt, refundedAt sql.NullTime
		var validatedBy sql.NullString
		if err := rows.Scan(
			&t.ID, &t.EventID, &t.UserID, &t.TicketTypeID, &t.Status, &t.Code,
			&t.PurchasePrice, &t.PurchasedAt, &validatedAt, &validatedBy, &refundedAt,
			&e.ID, &e.Title, &e.StartDate, &e.EndDate, &e.Location, &e.Status,
			&tt.ID, &tt.Name, &tt.Price,
		); err != nil {
			return nil, 0, err
		}
		if validatedAt.Valid {
			t.ValidatedAt = &validatedAt.Time
		}
		if validatedBy.Valid {
			t.ValidatedBy = &validatedBy.String
		}
		if refundedAt.Valid {
			t.RefundedAt = &refundedAt.Time
		}
		items = append(items, &domain.TicketWithDetails{Ticket: t, Event: e, TicketType: tt})
	}
	return items, total, rows.Err()
}

// MarkUsed is the one-way active -> used transition. The status predicate in
// the WHERE clause makes the transition atomic: a ticket already used,
// refunded, or cancelled matches no row.
func (r *ticketRepository) MarkUsed(ctx context.Context, ticketID, validatorID string, at time.Time) error {
	query := `
		UPDATE tickets
		SET status = 'used', validated_at = $2, validated_by = $3
		WHERE id = $1 AND status = 'active'
	`
	result, err := r.DB.ExecContext(ctx, query, ticketID, at, validatorID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTicketNotActive
	}
	return nil
}

// Refund flips the ticket to refunded and returns its unit to inventory in
// one transaction, preserving the conservation of active tickets plus
// remaining quantity.
func (r *ticketRepository) Refund(ctx context.Context, ticketID string, at time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var ticketTypeID string
	err = tx.QueryRowContext(ctx, `
		UPDATE tickets
		SET status = 'refunded', refunded_at = $2
		WHERE id = $1 AND status = 'active'
		RETURNING ticket_type_id
	`, ticketID, at).Scan(&ticketTypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrTicketNotActive
		}
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE ticket_types
		SET quantity = quantity + 1, updated_at = NOW()
		WHERE id = $1
	`, ticketTypeID)
	if err != nil {
		return fmt.Errorf("restore inventory: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *ticketRepository) StatsByEventID(ctx context.Context, eventID string) ([]*domain.TicketStat, error) {
	query := `
		SELECT status, COUNT(id), COALESCE(SUM(purchase_price), 0)
		FROM tickets
		WHERE event_id = $1
		GROUP BY status
		ORDER BY status
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]*domain.TicketStat, 0)
	for rows.Next() {
		s := &domain.TicketStat{}
		if err := rows.Scan(&s.Status, &s.Count, &s.Revenue); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
