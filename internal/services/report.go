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

const maxReportDescriptionLen = 1000

type reportService struct {
	reportRepo    domain.ReportRepository
	eventRepo     domain.EventRepository
	userRepo      domain.UserRepository
	notifications domain.NotificationService
	logger        *slog.Logger
}

func NewReportService(
	reportRepo domain.ReportRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	notifications domain.NotificationService,
	logger *slog.Logger,
) domain.ReportService {
	return &reportService{
		reportRepo:    reportRepo,
		eventRepo:     eventRepo,
		userRepo:      userRepo,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *reportService) CreateReport(ctx context.Context, eventID, reporterID, reason, description string) (*domain.Report, error) {
	reason = strings.TrimSpace(reason)
	description = strings.TrimSpace(description)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(description) > maxReportDescriptionLen {
		return nil, fmt.Errorf("%w: description cannot exceed %d characters", domain.ErrInvalidInput, maxReportDescriptionLen)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	report := &domain.Report{
		ReporterID:  reporterID,
		EventID:     eventID,
		Reason:      reason,
		Description: description,
		Status:      domain.ReportStatusPending,
		CreatedAt:   time.Now(),
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		if errors.Is(err, domain.ErrDuplicateReport) {
			return nil, domain.ErrDuplicateReport
		}
		return nil, fmt.Errorf("create report: %w", err)
	}

	if err := s.eventRepo.IncrementReportCount(ctx, eventID); err != nil {
		s.logger.Warn("increment report count failed", "event_id", eventID, "err", err)
	}

	s.notifyAdmins(ctx, event, reason)
	return report, nil
}

// notifyAdmins fans the new report out to every admin account, best-effort.
func (s *reportService) notifyAdmins(ctx context.Context, event *domain.Event, reason string) {
	admins, err := s.userRepo.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		s.logger.Warn("report fan-out: list admins failed", "err", err)
		return
	}
	for _, admin := range admins {
		n := &domain.Notification{
			RecipientID: admin.ID,
			Type:        domain.NotificationEventReported,
			Title:       "Event reported",
			Message:     fmt.Sprintf("%q was reported: %s", event.Title, reason),
			EventID:     &event.ID,
		}
		if err := s.notifications.Notify(ctx, n); err != nil {
			s.logger.Warn("report fan-out: notify failed", "admin_id", admin.ID, "err", err)
		}
	}
}

func (s *reportService) GetReport(ctx context.Context, reportID string, requester domain.Actor) (*domain.Report, error) {
	if !requester.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

func (s *reportService) ListReports(ctx context.Context, requester domain.Actor, status domain.ReportStatus, p domain.PaginationParams) ([]*domain.Report, int, error) {
	if !requester.IsAdmin() {
		return nil, 0, domain.ErrForbidden
	}
	reports, total, err := s.reportRepo.List(ctx, status, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	return reports, total, nil
}

func validReviewStatus(status domain.ReportStatus) bool {
	switch status {
	case domain.ReportStatusReviewing, domain.ReportStatusResolved, domain.ReportStatusRejected:
		return true
	}
	return false
}

func validReviewAction(action string) bool {
	switch action {
	case domain.ReportActionNone, domain.ReportActionEventRemoved, domain.ReportActionUserBlocked:
		return true
	}
	return false
}

func (s *reportService) ReviewReport(ctx context.Context, reportID string, review domain.ReportReview, admin domain.Actor) (*domain.Report, error) {
	if !admin.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if !validReviewStatus(review.Status) {
		return nil, fmt.Errorf("%w: invalid review status", domain.ErrInvalidInput)
	}
	if review.Action == "" {
		review.Action = domain.ReportActionNone
	}
	if !validReviewAction(review.Action) {
		return nil, fmt.Errorf("%w: invalid review action", domain.ErrInvalidInput)
	}

	report, err := s.reportRepo.Review(ctx, reportID, admin.ID, review, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("review report: %w", err)
	}

	if err := s.applyAction(ctx, report, review.Action); err != nil {
		return nil, err
	}
	return report, nil
}

// applyAction executes the administrative consequence chosen in the review.
func (s *reportService) applyAction(ctx context.Context, report *domain.Report, action string) error {
	if action == domain.ReportActionNone {
		return nil
	}

	event, err := s.eventRepo.GetByID(ctx, report.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Event already gone; the review itself still stands.
			return nil
		}
		return fmt.Errorf("get reported event: %w", err)
	}

	var title, message string
	switch action {
	case domain.ReportActionEventRemoved:
		if err := s.eventRepo.SetModeration(ctx, event.ID, false); err != nil {
			return fmt.Errorf("remove event: %w", err)
		}
		title = "Event removed"
		message = fmt.Sprintf("Your event %q was removed after review of a report", event.Title)
	case domain.ReportActionUserBlocked:
		if err := s.userRepo.SetBlocked(ctx, event.OrganizerID, true); err != nil {
			return fmt.Errorf("block organizer: %w", err)
		}
		title = "Account blocked"
		message = "Your account was blocked after review of a report"
	}

	n := &domain.Notification{
		RecipientID: event.OrganizerID,
		Type:        domain.NotificationAdminAction,
		Title:       title,
		Message:     message,
		EventID:     &event.ID,
	}
	if err := s.notifications.Notify(ctx, n); err != nil {
		s.logger.Warn("review action notify failed", "event_id", event.ID, "err", err)
	}
	return nil
}
