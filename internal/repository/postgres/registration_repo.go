package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventhub/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

// Register inserts the registration row and increments the event's
// participant counter in one transaction. The increment is a conditional
// update guarded by capacity; a zero affected-row count means the event is
// full and the whole transaction rolls back. Two concurrent registrations
// can therefore never push the counter past capacity: the second conditional
// update sees the committed counter or blocks on the row lock.
//
// Duplicate protection relies on the partial unique index on
// (event_id, user_id) WHERE status <> 'cancelled'; the unique violation is
// surfaced as ErrAlreadyRegistered.
func (r *registrationRepository) Register(ctx context.Context, reg *domain.Registration, countTowardCapacity bool) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if countTowardCapacity {
		var result sql.Result
		result, err = tx.ExecContext(ctx, `
			UPDATE events
			SET current_participants = current_participants + 1, updated_at = NOW()
			WHERE id = $1 AND current_participants < capacity
		`, reg.EventID)
		if err != nil {
			return fmt.Errorf("increment participants: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			err = domain.ErrEventFull
			return err
		}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO registrations (event_id, user_id, status, registered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, reg.EventID, reg.UserID, reg.Status, reg.RegisteredAt, reg.UpdatedAt).Scan(&reg.ID)
	if err != nil {
		if isUniqueViolation(err) {
			err = domain.ErrAlreadyRegistered
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *registrationRepository) GetActiveByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, user_id, status, rejection_reason, registered_at, updated_at
		FROM registrations
		WHERE event_id = $1 AND user_id = $2 AND status <> 'cancelled'
	`
	reg := &domain.Registration{}
	var reason sql.NullString
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).
		Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &reason, &reg.RegisteredAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if reason.Valid {
		reg.RejectionReason = &reason.String
	}
	return reg, nil
}

// Cancel flips the active registration to cancelled and, when the prior
// status was confirmed, decrements the participant counter. The counter
// decrement is floored at zero by the conditional WHERE clause.
func (r *registrationRepository) Cancel(ctx context.Context, eventID, userID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Lock the row first so the status we read is the one we flip.
	var prior domain.RegistrationStatus
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM registrations
		WHERE event_id = $1 AND user_id = $2 AND status IN ('pending', 'confirmed')
		FOR UPDATE
	`, eventID, userID).Scan(&prior)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE registrations
		SET status = 'cancelled', updated_at = NOW()
		WHERE event_id = $1 AND user_id = $2 AND status IN ('pending', 'confirmed')
	`, eventID, userID)
	if err != nil {
		return fmt.Errorf("cancel registration: %w", err)
	}

	if prior == domain.RegistrationStatusConfirmed {
		_, err = tx.ExecContext(ctx, `
			UPDATE events
			SET current_participants = current_participants - 1, updated_at = NOW()
			WHERE id = $1 AND current_participants > 0
		`, eventID)
		if err != nil {
			return fmt.Errorf("decrement participants: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Approve transitions a pending registration to confirmed and claims a seat.
// The seat claim uses the same capacity-guarded conditional update as
// Register, so an approval cannot oversubscribe an event that filled up
// while the registration sat pending.
func (r *registrationRepository) Approve(ctx context.Context, eventID, userID string) error {
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
		UPDATE registrations
		SET status = 'confirmed', updated_at = NOW()
		WHERE event_id = $1 AND user_id = $2 AND status = 'pending'
	`, eventID, userID)
	if err != nil {
		return fmt.Errorf("confirm registration: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		err = domain.ErrNotFound
		return err
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE events
		SET current_participants = current_participants + 1, updated_at = NOW()
		WHERE id = $1 AND current_participants < capacity
	`, eventID)
	if err != nil {
		return fmt.Errorf("increment participants: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		err = domain.ErrEventFull
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *registrationRepository) Reject(ctx context.Context, eventID, userID, reason string) error {
	query := `
		UPDATE registrations
		SET status = 'rejected', rejection_reason = $3, updated_at = NOW()
		WHERE event_id = $1 AND user_id = $2 AND status = 'pending'
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, userID, reason)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string, status domain.RegistrationStatus, p domain.PaginationParams) ([]*domain.RegistrationWithUser, int, error) {
	where := `r.event_id = $1`
	args := []interface{}{eventID}
	if status != "" {
		where += ` AND r.status = $2`
		args = append(args, status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM registrations r WHERE ` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT r.id, r.event_id, r.user_id, r.status, r.rejection_reason, r.registered_at, r.updated_at,
		       u.id, u.email, u.first_name, u.last_name, u.role
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE %s
		ORDER BY r.registered_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, p.Limit(), p.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*domain.RegistrationWithUser, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		u := &domain.User{}
		var reason sql.NullString
		if err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &reason, &reg.RegisteredAt, &reg.UpdatedAt,
			&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role,
		); err != nil {
			return nil, 0, err
		}
		if reason.Valid {
			reg.RejectionReason = &reason.String
		}
		items = append(items, &domain.RegistrationWithUser{Registration: reg, User: u})
	}
	return items, total, rows.Err()
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Registration, error) {
	query := `
		SELECT id, event_id, user_id, status, rejection_reason, registered_at, updated_at
		FROM registrations
		WHERE user_id = $1 AND status <> 'cancelled'
		ORDER BY registered_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		var reason sql.NullString
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &reason, &reg.RegisteredAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		if reason.Valid {
			reg.RejectionReason = &reason.String
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
