package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventhub/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, organizer_id, title, description, category, location,
		start_date, end_date, capacity, current_participants, status,
		is_approved, requires_approval, report_count, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (organizer_id, title, description, category, location,
			start_date, end_date, capacity, current_participants, status,
			is_approved, requires_approval, report_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.OrganizerID, e.Title, e.Description, e.Category, e.Location,
		e.StartDate, e.EndDate, e.Capacity, e.CurrentParticipants, e.Status,
		e.IsApproved, e.RequiresApproval, e.ReportCount, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func scanEvent(scan func(dest ...any) error) (*domain.Event, error) {
	e := &domain.Event{}
	err := scan(
		&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Category, &e.Location,
		&e.StartDate, &e.EndDate, &e.Capacity, &e.CurrentParticipants, &e.Status,
		&e.IsApproved, &e.RequiresApproval, &e.ReportCount, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	row := r.DB.QueryRowContext(ctx, query, id)
	e, err := scanEvent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	n := 1
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", n))
		args = append(args, filter.Status)
		n++
	}
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", n))
		args = append(args, filter.Category)
		n++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
		args = append(args, "%"+filter.Search+"%")
		n++
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM events WHERE ` + whereClause
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		`SELECT `+eventColumns+` FROM events WHERE %s ORDER BY start_date ASC LIMIT $%d OFFSET $%d`,
		whereClause, n, n+1,
	)
	args = append(args, filter.Pagination.Limit(), filter.Pagination.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE organizer_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if upd.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *upd.Title)
		n++
	}
	if upd.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *upd.Description)
		n++
	}
	if upd.Category != nil {
		setClauses = append(setClauses, fmt.Sprintf("category = $%d", n))
		args = append(args, *upd.Category)
		n++
	}
	if upd.Location != nil {
		setClauses = append(setClauses, fmt.Sprintf("location = $%d", n))
		args = append(args, *upd.Location)
		n++
	}
	if upd.StartDate != nil {
		setClauses = append(setClauses, fmt.Sprintf("start_date = $%d", n))
		args = append(args, *upd.StartDate)
		n++
	}
	if upd.EndDate != nil {
		setClauses = append(setClauses, fmt.Sprintf("end_date = $%d", n))
		args = append(args, *upd.EndDate)
		n++
	}
	if upd.Capacity != nil {
		setClauses = append(setClauses, fmt.Sprintf("capacity = $%d", n))
		args = append(args, *upd.Capacity)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, eventID)
	}

	query := fmt.Sprintf(
		`UPDATE events SET %s WHERE id = $%d RETURNING `+eventColumns,
		strings.Join(setClauses, ", "), n,
	)
	args = append(args, eventID)

	row := r.DB.QueryRowContext(ctx, query, args...)
	e, err := scanEvent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, eventID string, from []domain.EventStatus, to domain.EventStatus) error {
	placeholders := make([]string, len(from))
	args := []interface{}{eventID, to}
	for i, s := range from {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		args = append(args, s)
	}
	query := fmt.Sprintf(
		`UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1 AND status IN (%s)`,
		strings.Join(placeholders, ", "),
	)
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) SetModeration(ctx context.Context, eventID string, approved bool) error {
	// Rejection also forces the lifecycle status so the event disappears
	// from public listings.
	query := `
		UPDATE events
		SET is_approved = $2,
		    status = CASE WHEN $2 THEN status ELSE 'rejected' END,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, approved)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) IncrementReportCount(ctx context.Context, eventID string) error {
	query := `UPDATE events SET report_count = report_count + 1, updated_at = NOW() WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, eventID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
