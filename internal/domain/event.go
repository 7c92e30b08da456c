package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
	EventStatusRejected  EventStatus = "rejected"
)

// EventCategories is the fixed set of accepted event categories.
var EventCategories = []string{
	"sport", "music", "art", "technology", "education",
	"networking", "charity", "party", "other",
}

// ValidEventCategory reports whether category is one of EventCategories.
func ValidEventCategory(category string) bool {
	for _, c := range EventCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Event represents an organizer-owned activity with a schedule, capacity,
// and moderation state.
type Event struct {
	ID                  string      `json:"id"`
	OrganizerID         string      `json:"organizer_id"`
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	Category            string      `json:"category"`
	Location            string      `json:"location"`
	StartDate           time.Time   `json:"start_date"`
	EndDate             time.Time   `json:"end_date"`
	Capacity            int         `json:"capacity"`
	CurrentParticipants int         `json:"current_participants"`
	Status              EventStatus `json:"status"`
	IsApproved          bool        `json:"is_approved"`
	RequiresApproval    bool        `json:"requires_approval"`
	ReportCount         int         `json:"report_count"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// OpenForRegistration reports whether the event accepts new registrations:
// published, approved, and not yet started.
func (e *Event) OpenForRegistration(now time.Time) bool {
	return e.Status == EventStatusPublished && e.IsApproved && e.StartDate.After(now)
}

// HasAvailableCapacity reports whether the participant counter is below capacity.
func (e *Event) HasAvailableCapacity() bool {
	return e.CurrentParticipants < e.Capacity
}

// EventUpdate carries partial field updates; nil fields are left unchanged.
type EventUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Location    *string
	StartDate   *time.Time
	EndDate     *time.Time
	Capacity    *int
}

// EventFilter narrows event listings.
type EventFilter struct {
	Category   string
	Search     string
	Status     EventStatus
	Pagination PaginationParams
}

// EventWithDetails bundles an event with its organizer and ticket types.
type EventWithDetails struct {
	Event       *Event        `json:"event"`
	Organizer   *User         `json:"organizer"`
	TicketTypes []*TicketType `json:"ticket_types"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter) ([]*Event, int, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	Update(ctx context.Context, eventID string, upd EventUpdate) (*Event, error)
	// UpdateStatus transitions the event to the given status only when the
	// current status is one of from; returns ErrNotFound when no row matches.
	UpdateStatus(ctx context.Context, eventID string, from []EventStatus, to EventStatus) error
	// SetModeration approves the event or marks it rejected.
	SetModeration(ctx context.Context, eventID string, approved bool) error
	IncrementReportCount(ctx context.Context, eventID string) error
	Delete(ctx context.Context, id string) error
}

// CreateEventInput is the validated payload for creating an event.
type CreateEventInput struct {
	Title            string
	Description      string
	Category         string
	Location         string
	StartDate        time.Time
	EndDate          time.Time
	Capacity         int
	RequiresApproval bool
	TicketTypes      []TicketTypeInput
}

// UpdateEventInput is the payload for a partial event update. A non-nil
// TicketTypes slice triggers ticket-type reconciliation.
type UpdateEventInput struct {
	EventUpdate
	TicketTypes []TicketTypeInput
}

// EventService defines the event lifecycle operations.
type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput, organizerID string) (*EventWithDetails, error)
	GetEvent(ctx context.Context, eventID string) (*EventWithDetails, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]*Event, int, error)
	ListMyEvents(ctx context.Context, organizerID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID string, input UpdateEventInput, requester Actor) (*EventWithDetails, error)
	PublishEvent(ctx context.Context, eventID string, requester Actor) error
	CancelEvent(ctx context.Context, eventID string, requester Actor) error
	DeleteEvent(ctx context.Context, eventID string, requester Actor) error
	ModerateEvent(ctx context.Context, eventID string, approve bool, admin Actor) error
}
