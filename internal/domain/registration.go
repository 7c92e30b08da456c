package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the state of a user's enrollment against an event.
type RegistrationStatus string

const (
	RegistrationStatusPending   RegistrationStatus = "pending"
	RegistrationStatusConfirmed RegistrationStatus = "confirmed"
	RegistrationStatusCancelled RegistrationStatus = "cancelled"
	RegistrationStatusAttended  RegistrationStatus = "attended"
	RegistrationStatusRejected  RegistrationStatus = "rejected"
)

// Registration represents a user's enrollment record against an event.
// At most one non-cancelled row exists per (event, user).
type Registration struct {
	ID              string             `json:"id"`
	EventID         string             `json:"event_id"`
	UserID          string             `json:"user_id"`
	Status          RegistrationStatus `json:"status"`
	RejectionReason *string            `json:"rejection_reason,omitempty"`
	RegisteredAt    time.Time          `json:"registered_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// NewRegistration creates a new Registration. ID is set by the repository on create.
func NewRegistration(eventID, userID string, status RegistrationStatus, registeredAt time.Time) *Registration {
	return &Registration{
		EventID:      eventID,
		UserID:       userID,
		Status:       status,
		RegisteredAt: registeredAt,
		UpdatedAt:    registeredAt,
	}
}

// RegistrationWithUser bundles a registration with the participant's profile.
type RegistrationWithUser struct {
	Registration *Registration `json:"registration"`
	User         *User         `json:"user"`
}

// RegistrationWithEvent bundles a registration with its related event.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// CapacitySnapshot is a point-in-time view of an event's seat usage.
type CapacitySnapshot struct {
	Total     int `json:"total"`
	Current   int `json:"current"`
	Available int `json:"available"`
}

// RegistrationRepository defines storage operations for registrations.
// Register, Approve, and Cancel are transactional: the registration row and
// the event participant counter move together or not at all.
type RegistrationRepository interface {
	// Register inserts the registration and, when countTowardCapacity is
	// true, atomically increments the event's participant counter guarded by
	// capacity. Returns ErrEventFull when the counter is at capacity and
	// ErrAlreadyRegistered when a non-cancelled row already exists.
	Register(ctx context.Context, reg *Registration, countTowardCapacity bool) error
	// GetActiveByEventAndUser returns the non-cancelled registration for the
	// pair, or ErrNotFound.
	GetActiveByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	// Cancel flips the active registration to cancelled and decrements the
	// participant counter if the registration was confirmed.
	Cancel(ctx context.Context, eventID, userID string) error
	// Approve transitions a pending registration to confirmed and increments
	// the counter guarded by capacity. Returns ErrNotFound when no pending
	// row exists and ErrEventFull when the event filled up in the meantime.
	Approve(ctx context.Context, eventID, userID string) error
	// Reject transitions a pending registration to rejected, recording reason.
	Reject(ctx context.Context, eventID, userID, reason string) error
	ListByEventID(ctx context.Context, eventID string, status RegistrationStatus, p PaginationParams) ([]*RegistrationWithUser, int, error)
	ListByUserID(ctx context.Context, userID string) ([]*Registration, error)
}

// RegistrationService defines attendee enrollment operations.
type RegistrationService interface {
	RegisterForEvent(ctx context.Context, eventID, userID string) (*Registration, error)
	CancelRegistration(ctx context.Context, eventID, userID string) error
	ApproveRegistration(ctx context.Context, eventID, userID string, requester Actor) error
	RejectRegistration(ctx context.Context, eventID, userID, reason string, requester Actor) error
	ListParticipants(ctx context.Context, eventID string, requester Actor, status RegistrationStatus, p PaginationParams) ([]*RegistrationWithUser, int, error)
	ListMyEvents(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
	EventCapacity(ctx context.Context, eventID string) (*CapacitySnapshot, error)
}
