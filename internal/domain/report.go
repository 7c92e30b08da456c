package domain

import (
	"context"
	"time"
)

// ReportStatus tracks an abuse report through admin review.
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusReviewing ReportStatus = "reviewing"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusRejected  ReportStatus = "rejected"
)

// Administrative actions an admin may attach to a report review.
const (
	ReportActionNone         = "none"
	ReportActionEventRemoved = "event_removed"
	ReportActionUserBlocked  = "user_blocked"
)

// Report is a user's abuse report against an event. At most one open report
// exists per (reporter, event).
type Report struct {
	ID          string       `json:"id"`
	ReporterID  string       `json:"reporter_id"`
	EventID     string       `json:"event_id"`
	Reason      string       `json:"reason"`
	Description string       `json:"description"`
	Status      ReportStatus `json:"status"`
	AdminNotes  *string      `json:"admin_notes,omitempty"`
	Action      *string      `json:"action,omitempty"`
	ReviewedBy  *string      `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ReportReview carries the admin's review decision.
type ReportReview struct {
	Status     ReportStatus
	AdminNotes string
	Action     string
}

// ReportRepository defines storage operations for abuse reports.
type ReportRepository interface {
	// Create inserts the report; returns ErrDuplicateReport when the
	// reporter already has an open report against the event.
	Create(ctx context.Context, report *Report) error
	GetByID(ctx context.Context, id string) (*Report, error)
	List(ctx context.Context, status ReportStatus, p PaginationParams) ([]*Report, int, error)
	// Review records the admin decision on the report.
	Review(ctx context.Context, reportID, adminID string, review ReportReview, at time.Time) (*Report, error)
}

// ReportService defines report creation and admin moderation.
type ReportService interface {
	CreateReport(ctx context.Context, eventID, reporterID, reason, description string) (*Report, error)
	GetReport(ctx context.Context, reportID string, requester Actor) (*Report, error)
	ListReports(ctx context.Context, requester Actor, status ReportStatus, p PaginationParams) ([]*Report, int, error)
	ReviewReport(ctx context.Context, reportID string, review ReportReview, admin Actor) (*Report, error)
}
