package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/domain"
)

type reportRepository struct {
	DB *sql.DB
}

func NewReportRepository(db *sql.DB) domain.ReportRepository {
	return &reportRepository{
		DB: db,
	}
}

// Create inserts the report. The partial unique index on
// (reporter_id, event_id) WHERE status IN ('pending', 'reviewing') enforces
// at most one open report per pair.
func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	query := `
		INSERT INTO reports (reporter_id, event_id, reason, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		report.ReporterID, report.EventID, report.Reason, report.Description,
		report.Status, report.CreatedAt,
	).Scan(&report.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReport
		}
		return err
	}
	return nil
}

const reportColumns = `id, reporter_id, event_id, reason, description, status,
		admin_notes, action, reviewed_by, reviewed_at, created_at`

func scanReport(scan func(dest ...any) error) (*domain.Report, error) {
	rep := &domain.Report{}
	var notes, action, reviewedBy sql.NullString
	var reviewedAt sql.NullTime
	err := scan(
		&rep.ID, &rep.ReporterID, &rep.EventID, &rep.Reason, &rep.Description, &rep.Status,
		&notes, &action, &reviewedBy, &reviewedAt, &rep.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		rep.AdminNotes = &notes.String
	}
	if action.Valid {
		rep.Action = &action.String
	}
	if reviewedBy.Valid {
		rep.ReviewedBy = &reviewedBy.String
	}
	if reviewedAt.Valid {
		rep.ReviewedAt = &reviewedAt.Time
	}
	return rep, nil
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	row := r.DB.QueryRowContext(ctx, query, id)
	rep, err := scanReport(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rep, nil
}

func (r *reportRepository) List(ctx context.Context, status domain.ReportStatus, p domain.PaginationParams) ([]*domain.Report, int, error) {
	where := `1=1`
	args := []interface{}{}
	if status != "" {
		where = `status = $1`
		args = append(args, status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM reports WHERE ` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		`SELECT `+reportColumns+` FROM reports WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)
	args = append(args, p.Limit(), p.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reports := make([]*domain.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		reports = append(reports, rep)
	}
	return reports, total, rows.Err()
}

func (r *reportRepository) Review(ctx context.Context, reportID, adminID string, review domain.ReportReview, at time.Time) (*domain.Report, error) {
	query := `
		UPDATE reports
		SET status = $2, admin_notes = $3, action = $4, reviewed_by = $5, reviewed_at = $6
		WHERE id = $1
		RETURNING ` + reportColumns
	row := r.DB.QueryRowContext(ctx, query,
		reportID, review.Status, review.AdminNotes, review.Action, adminID, at,
	)
	rep, err := scanReport(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rep, nil
}
