package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/domain"
)

type registrationService struct {
	registrationRepo domain.RegistrationRepository
	eventRepo        domain.EventRepository
	userRepo         domain.UserRepository
	notifications    domain.NotificationService
	emailService     domain.EmailService
	logger           *slog.Logger
}

func NewRegistrationService(
	registrationRepo domain.RegistrationRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	notifications domain.NotificationService,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		userRepo:         userRepo,
		notifications:    notifications,
		emailService:     emailService,
		logger:           logger,
	}
}

func (s *registrationService) RegisterForEvent(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	now := time.Now()
	if !event.OpenForRegistration(now) {
		return nil, domain.ErrEventNotAvailable
	}
	if event.OrganizerID == userID {
		return nil, fmt.Errorf("%w: organizers cannot register for their own event", domain.ErrInvalidInput)
	}

	status := domain.RegistrationStatusConfirmed
	if event.RequiresApproval {
		status = domain.RegistrationStatusPending
	}
	reg := domain.NewRegistration(eventID, userID, status, now)

	// Only confirmed registrations occupy a seat; pending ones wait for the
	// organizer's decision.
	countTowardCapacity := status == domain.RegistrationStatusConfirmed
	if err := s.registrationRepo.Register(ctx, reg, countTowardCapacity); err != nil {
		switch {
		case errors.Is(err, domain.ErrEventFull), errors.Is(err, domain.ErrAlreadyRegistered):
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.afterRegister(ctx, event, userID, status)
	return reg, nil
}

// afterRegister runs the best-effort side effects of a new registration:
// organizer notification plus a confirmation email to the participant.
func (s *registrationService) afterRegister(ctx context.Context, event *domain.Event, userID string, status domain.RegistrationStatus) {
	verb := "registered for"
	if status == domain.RegistrationStatusPending {
		verb = "requested to join"
	}
	n := &domain.Notification{
		RecipientID: event.OrganizerID,
		SenderID:    &userID,
		Type:        domain.NotificationEventRegistration,
		Title:       "New registration",
		Message:     fmt.Sprintf("A participant has %s %q", verb, event.Title),
		EventID:     &event.ID,
	}
	if err := s.notifications.Notify(ctx, n); err != nil {
		s.logger.Warn("registration notify failed", "event_id", event.ID, "err", err)
	}

	if status != domain.RegistrationStatusConfirmed {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("registration email: get user failed", "user_id", userID, "err", err)
		return
	}
	err = s.emailService.SendRegistrationConfirmation(ctx, &domain.RegistrationConfirmationEmailData{
		Email:      user.Email,
		FirstName:  user.FirstName,
		EventTitle: event.Title,
		EventDate:  event.StartDate.Format("Monday, January 2, 2006 at 15:04"),
		Location:   event.Location,
	})
	if err != nil {
		s.logger.Warn("registration email failed", "user_id", userID, "err", err)
	}
}

func (s *registrationService) CancelRegistration(ctx context.Context, eventID, userID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if !event.StartDate.After(time.Now()) {
		return fmt.Errorf("%w: event has already started", domain.ErrInvalidInput)
	}
	if err := s.registrationRepo.Cancel(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("cancel registration: %w", err)
	}
	return nil
}

// requireEventControl checks the requester may manage the event's registrations.
func (s *registrationService) requireEventControl(ctx context.Context, eventID string, requester domain.Actor) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != requester.ID && !requester.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *registrationService) ApproveRegistration(ctx context.Context, eventID, userID string, requester domain.Actor) error {
	event, err := s.requireEventControl(ctx, eventID, requester)
	if err != nil {
		return err
	}
	if err := s.registrationRepo.Approve(ctx, eventID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrEventFull):
			return err
		}
		return fmt.Errorf("approve registration: %w", err)
	}

	n := &domain.Notification{
		RecipientID: userID,
		Type:        domain.NotificationRegistrationApproved,
		Title:       "Registration approved",
		Message:     fmt.Sprintf("Your registration for %q has been approved", event.Title),
		EventID:     &event.ID,
	}
	if err := s.notifications.Notify(ctx, n); err != nil {
		s.logger.Warn("approval notify failed", "event_id", eventID, "user_id", userID, "err", err)
	}
	return nil
}

func (s *registrationService) RejectRegistration(ctx context.Context, eventID, userID, reason string, requester domain.Actor) error {
	event, err := s.requireEventControl(ctx, eventID, requester)
	if err != nil {
		return err
	}
	if err := s.registrationRepo.Reject(ctx, eventID, userID, reason); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("reject registration: %w", err)
	}

	msg := fmt.Sprintf("Your registration for %q has been declined", event.Title)
	if reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, reason)
	}
	n := &domain.Notification{
		RecipientID: userID,
		Type:        domain.NotificationRegistrationRejected,
		Title:       "Registration declined",
		Message:     msg,
		EventID:     &event.ID,
	}
	if err := s.notifications.Notify(ctx, n); err != nil {
		s.logger.Warn("rejection notify failed", "event_id", eventID, "user_id", userID, "err", err)
	}
	return nil
}

func (s *registrationService) ListParticipants(ctx context.Context, eventID string, requester domain.Actor, status domain.RegistrationStatus, p domain.PaginationParams) ([]*domain.RegistrationWithUser, int, error) {
	if _, err := s.requireEventControl(ctx, eventID, requester); err != nil {
		return nil, 0, err
	}
	regs, total, err := s.registrationRepo.ListByEventID(ctx, eventID, status, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list participants: %w", err)
	}
	return regs, total, nil
}

func (s *registrationService) ListMyEvents(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	regs, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	out := make([]*domain.RegistrationWithEvent, 0, len(regs))
	events := make(map[string]*domain.Event)
	for _, reg := range regs {
		event, ok := events[reg.EventID]
		if !ok {
			event, err = s.eventRepo.GetByID(ctx, reg.EventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("get event: %w", err)
			}
			events[reg.EventID] = event
		}
		out = append(out, &domain.RegistrationWithEvent{Registration: reg, Event: event})
	}
	return out, nil
}

func (s *registrationService) EventCapacity(ctx context.Context, eventID string) (*domain.CapacitySnapshot, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &domain.CapacitySnapshot{
		Total:     event.Capacity,
		Current:   event.CurrentParticipants,
		Available: event.Capacity - event.CurrentParticipants,
	}, nil
}
