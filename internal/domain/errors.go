package domain

import "errors"

// Sentinel errors shared across services. Controllers map these to HTTP
// statuses; services wrap storage errors and surface exactly one of these
// for every business-rule failure.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserBlocked        = errors.New("account is blocked")

	ErrEventNotAvailable = errors.New("event not available")
	ErrEventFull         = errors.New("event is full")
	ErrAlreadyRegistered = errors.New("already registered for this event")

	ErrSoldOut            = errors.New("tickets sold out")
	ErrTicketNotActive    = errors.New("ticket is not active")
	ErrRefundWindowClosed = errors.New("refund window closed")

	ErrDuplicateReport = errors.New("event already reported")
)
