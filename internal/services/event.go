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

const (
	maxTitleLen       = 100
	maxDescriptionLen = 2000
	maxCapacity       = 10000
)

type eventService struct {
	eventRepo        domain.EventRepository
	ticketTypeRepo   domain.TicketTypeRepository
	registrationRepo domain.RegistrationRepository
	userRepo         domain.UserRepository
	notifications    domain.NotificationService
	emailService     domain.EmailService
	logger           *slog.Logger
	contextTimeout   time.Duration
}

func NewEventService(
	eventRepo domain.EventRepository,
	ticketTypeRepo domain.TicketTypeRepository,
	registrationRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	notifications domain.NotificationService,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:        eventRepo,
		ticketTypeRepo:   ticketTypeRepo,
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		notifications:    notifications,
		emailService:     emailService,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

func validateTicketTypeInputs(types []domain.TicketTypeInput) error {
	for _, t := range types {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("%w: ticket type name is required", domain.ErrInvalidInput)
		}
		if t.Price < 0 {
			return fmt.Errorf("%w: ticket type price cannot be negative", domain.ErrInvalidInput)
		}
		if t.Quantity < 0 {
			return fmt.Errorf("%w: ticket type quantity cannot be negative", domain.ErrInvalidInput)
		}
	}
	return nil
}

func validateCreateEvent(input *domain.CreateEventInput, now time.Time) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)
	switch {
	case input.Title == "":
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	case utf8.RuneCountInString(input.Title) > maxTitleLen:
		return fmt.Errorf("%w: title cannot exceed %d characters", domain.ErrInvalidInput, maxTitleLen)
	case input.Description == "":
		return fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	case utf8.RuneCountInString(input.Description) > maxDescriptionLen:
		return fmt.Errorf("%w: description cannot exceed %d characters", domain.ErrInvalidInput, maxDescriptionLen)
	case !domain.ValidEventCategory(input.Category):
		return fmt.Errorf("%w: invalid category", domain.ErrInvalidInput)
	case input.Location == "":
		return fmt.Errorf("%w: location is required", domain.ErrInvalidInput)
	case !input.StartDate.After(now):
		return fmt.Errorf("%w: start date must be in the future", domain.ErrInvalidInput)
	case !input.EndDate.After(input.StartDate):
		return fmt.Errorf("%w: end date must be after start date", domain.ErrInvalidInput)
	case input.Capacity < 1 || input.Capacity > maxCapacity:
		return fmt.Errorf("%w: capacity must be between 1 and %d", domain.ErrInvalidInput, maxCapacity)
	}
	return validateTicketTypeInputs(input.TicketTypes)
}

func (s *eventService) CreateEvent(ctx context.Context, input domain.CreateEventInput, organizerID string) (*domain.EventWithDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if organizerID == "" {
		return nil, fmt.Errorf("%w: event organizer is required", domain.ErrInvalidInput)
	}
	now := time.Now()
	if err := validateCreateEvent(&input, now); err != nil {
		return nil, err
	}

	event := &domain.Event{
		OrganizerID:      organizerID,
		Title:            input.Title,
		Description:      input.Description,
		Category:         input.Category,
		Location:         input.Location,
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
		Capacity:         input.Capacity,
		Status:           domain.EventStatusDraft,
		RequiresApproval: input.RequiresApproval,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	if len(input.TicketTypes) > 0 {
		types := make([]*domain.TicketType, 0, len(input.TicketTypes))
		for _, in := range input.TicketTypes {
			types = append(types, &domain.TicketType{
				Name:      strings.TrimSpace(in.Name),
				Price:     in.Price,
				Quantity:  in.Quantity,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		if err := s.ticketTypeRepo.CreateBatch(ctx, event.ID, types); err != nil {
			return nil, fmt.Errorf("create ticket types: %w", err)
		}
	}

	return s.GetEvent(ctx, event.ID)
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.EventWithDetails, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	organizer, err := s.userRepo.GetByID(ctx, event.OrganizerID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get organizer: %w", err)
	}

	types, err := s.ticketTypeRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	if types == nil {
		types = []*domain.TicketType{}
	}

	return &domain.EventWithDetails{
		Event:       event,
		Organizer:   organizer,
		TicketTypes: types,
	}, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	events, total, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) ListMyEvents(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	events, err := s.eventRepo.ListByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list events by organizer: %w", err)
	}
	return events, nil
}

// requireOwnership loads the event and verifies the requester owns it or is
// an admin.
func (s *eventService) requireOwnership(ctx context.Context, eventID string, requester domain.Actor) (*domain.Event, error) {
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

func (s *eventService) UpdateEvent(ctx context.Context, eventID string, input domain.UpdateEventInput, requester domain.Actor) (*domain.EventWithDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.requireOwnership(ctx, eventID, requester)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" || utf8.RuneCountInString(title) > maxTitleLen {
			return nil, fmt.Errorf("%w: title must be 1-%d characters", domain.ErrInvalidInput, maxTitleLen)
		}
		input.Title = &title
	}
	if input.Description != nil {
		desc := strings.TrimSpace(*input.Description)
		if desc == "" || utf8.RuneCountInString(desc) > maxDescriptionLen {
			return nil, fmt.Errorf("%w: description must be 1-%d characters", domain.ErrInvalidInput, maxDescriptionLen)
		}
		input.Description = &desc
	}
	if input.Category != nil && !domain.ValidEventCategory(*input.Category) {
		return nil, fmt.Errorf("%w: invalid category", domain.ErrInvalidInput)
	}
	if input.Capacity != nil {
		if *input.Capacity < 1 || *input.Capacity > maxCapacity {
			return nil, fmt.Errorf("%w: capacity must be between 1 and %d", domain.ErrInvalidInput, maxCapacity)
		}
		if *input.Capacity < event.CurrentParticipants {
			return nil, fmt.Errorf("%w: capacity cannot drop below current participants", domain.ErrInvalidInput)
		}
	}
	// Schedule window checks use effective values so a partial update cannot
	// invert the window.
	start, end := event.StartDate, event.EndDate
	if input.StartDate != nil {
		start = *input.StartDate
	}
	if input.EndDate != nil {
		end = *input.EndDate
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end date must be after start date", domain.ErrInvalidInput)
	}
	if err := validateTicketTypeInputs(input.TicketTypes); err != nil {
		return nil, err
	}

	if _, err := s.eventRepo.Update(ctx, eventID, input.EventUpdate); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	if input.TicketTypes != nil {
		if _, err := s.ticketTypeRepo.Reconcile(ctx, eventID, input.TicketTypes); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown ticket type id", domain.ErrInvalidInput)
			}
			return nil, fmt.Errorf("reconcile ticket types: %w", err)
		}
	}

	return s.GetEvent(ctx, eventID)
}

func (s *eventService) PublishEvent(ctx context.Context, eventID string, requester domain.Actor) error {
	if _, err := s.requireOwnership(ctx, eventID, requester); err != nil {
		return err
	}
	err := s.eventRepo.UpdateStatus(ctx, eventID, []domain.EventStatus{domain.EventStatusDraft}, domain.EventStatusPublished)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: only draft events can be published", domain.ErrInvalidInput)
		}
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (s *eventService) CancelEvent(ctx context.Context, eventID string, requester domain.Actor) error {
	event, err := s.requireOwnership(ctx, eventID, requester)
	if err != nil {
		return err
	}
	err = s.eventRepo.UpdateStatus(ctx, eventID,
		[]domain.EventStatus{domain.EventStatusDraft, domain.EventStatusPublished},
		domain.EventStatusCancelled)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: event cannot be cancelled", domain.ErrInvalidInput)
		}
		return fmt.Errorf("cancel event: %w", err)
	}

	s.fanOutCancellation(ctx, event)
	return nil
}

// fanOutCancellation notifies every confirmed participant that the event was
// cancelled, by notification and email. Both are best-effort.
func (s *eventService) fanOutCancellation(ctx context.Context, event *domain.Event) {
	participants, _, err := s.registrationRepo.ListByEventID(ctx, event.ID,
		domain.RegistrationStatusConfirmed,
		domain.PaginationParams{Page: 1, PageSize: event.Capacity})
	if err != nil {
		s.logger.Warn("cancellation fan-out: list participants failed", "event_id", event.ID, "err", err)
		return
	}
	for _, p := range participants {
		n := &domain.Notification{
			RecipientID: p.User.ID,
			Type:        domain.NotificationEventCancelled,
			Title:       "Event cancelled",
			Message:     fmt.Sprintf("%q has been cancelled by the organizer", event.Title),
			EventID:     &event.ID,
		}
		if err := s.notifications.Notify(ctx, n); err != nil {
			s.logger.Warn("cancellation fan-out: notify failed", "event_id", event.ID, "user_id", p.User.ID, "err", err)
		}
		if err := s.emailService.SendEventCancelled(ctx, &domain.EventCancelledEmailData{
			Email:      p.User.Email,
			FirstName:  p.User.FirstName,
			EventTitle: event.Title,
		}); err != nil {
			s.logger.Warn("cancellation fan-out: email failed", "event_id", event.ID, "user_id", p.User.ID, "err", err)
		}
	}
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID string, requester domain.Actor) error {
	if _, err := s.requireOwnership(ctx, eventID, requester); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) ModerateEvent(ctx context.Context, eventID string, approve bool, admin domain.Actor) error {
	if !admin.IsAdmin() {
		return domain.ErrForbidden
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if err := s.eventRepo.SetModeration(ctx, eventID, approve); err != nil {
		return fmt.Errorf("moderate event: %w", err)
	}

	verdict := "approved"
	if !approve {
		verdict = "rejected"
	}
	n := &domain.Notification{
		RecipientID: event.OrganizerID,
		Type:        domain.NotificationAdminAction,
		Title:       "Event " + verdict,
		Message:     fmt.Sprintf("Your event %q has been %s by a moderator", event.Title, verdict),
		EventID:     &event.ID,
	}
	if err := s.notifications.Notify(ctx, n); err != nil {
		s.logger.Warn("moderation notify failed", "event_id", eventID, "err", err)
	}
	return nil
}
