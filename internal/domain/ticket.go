package domain

import (
	"context"
	"time"
)

// TicketStatus is the state of a purchased ticket. Transitions are one-way:
// active moves to used or refunded; cancelled is a terminal administrative
// alternative. Nothing transitions out of used, refunded, or cancelled.
type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusRefunded  TicketStatus = "refunded"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// TicketType is a priced inventory category (e.g. "VIP") scoped to one event.
// Quantity is the remaining inventory and never goes negative.
type TicketType struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TicketTypeInput is a ticket type supplied on event create or update.
// A non-empty ID targets an existing row during reconciliation.
type TicketTypeInput struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Ticket is one purchased unit of a TicketType carrying a scannable code.
type Ticket struct {
	ID            string       `json:"id"`
	EventID       string       `json:"event_id"`
	UserID        string       `json:"user_id"`
	TicketTypeID  string       `json:"ticket_type_id"`
	Status        TicketStatus `json:"status"`
	Code          string       `json:"code"`
	PurchasePrice float64      `json:"purchase_price"`
	PurchasedAt   time.Time    `json:"purchased_at"`
	ValidatedAt   *time.Time   `json:"validated_at,omitempty"`
	ValidatedBy   *string      `json:"validated_by,omitempty"`
	RefundedAt    *time.Time   `json:"refunded_at,omitempty"`
}

// TicketWithDetails bundles a ticket with its event and ticket type.
type TicketWithDetails struct {
	Ticket     *Ticket     `json:"ticket"`
	Event      *Event      `json:"event"`
	TicketType *TicketType `json:"ticket_type"`
}

// TicketStat is an aggregate of ticket counts and revenue for one status.
type TicketStat struct {
	Status  TicketStatus `json:"status"`
	Count   int          `json:"count"`
	Revenue float64      `json:"revenue"`
}

// TicketCodePayload is the data embedded in a scannable ticket code.
type TicketCodePayload struct {
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	TicketTypeID string    `json:"ticket_type_id"`
	IssuedAt     time.Time `json:"issued_at"`
	Nonce        string    `json:"nonce"`
}

// TicketCodeGenerator produces and decodes opaque scannable ticket codes.
type TicketCodeGenerator interface {
	Generate(eventID, userID, ticketTypeID string) (string, error)
	Decode(code string) (*TicketCodePayload, error)
}

// TicketTypeRepository defines storage operations for ticket types.
type TicketTypeRepository interface {
	CreateBatch(ctx context.Context, eventID string, types []*TicketType) error
	GetByID(ctx context.Context, id string) (*TicketType, error)
	ListByEventID(ctx context.Context, eventID string) ([]*TicketType, error)
	// Reconcile merges the supplied set into the event's ticket types in one
	// transaction: inputs with IDs update in place, inputs without IDs are
	// inserted, and omitted rows are deleted only when no tickets reference
	// them.
	Reconcile(ctx context.Context, eventID string, types []TicketTypeInput) ([]*TicketType, error)
}

// TicketRepository defines storage operations for tickets. Purchase and
// Refund are transactional with the inventory counter.
type TicketRepository interface {
	// Purchase decrements the ticket type's quantity by len(tickets) with a
	// single conditional update and inserts all ticket rows in the same
	// transaction. Returns ErrSoldOut when inventory is insufficient.
	Purchase(ctx context.Context, ticketTypeID string, tickets []*Ticket) error
	GetByID(ctx context.Context, id string) (*Ticket, error)
	ListByUserID(ctx context.Context, userID string, status TicketStatus, p PaginationParams) ([]*TicketWithDetails, int, error)
	// MarkUsed transitions the ticket from active to used, stamping the
	// validator and time. Returns ErrTicketNotActive when the ticket is in
	// any other status.
	MarkUsed(ctx context.Context, ticketID, validatorID string, at time.Time) error
	// Refund transitions the ticket from active to refunded and increments
	// the ticket type's quantity by one in the same transaction.
	Refund(ctx context.Context, ticketID string, at time.Time) error
	StatsByEventID(ctx context.Context, eventID string) ([]*TicketStat, error)
}

// TicketService defines purchase, validation, and refund flows.
type TicketService interface {
	PurchaseTickets(ctx context.Context, eventID, ticketTypeID, userID string, quantity int) ([]*Ticket, error)
	ValidateTicket(ctx context.Context, ticketID string, validator Actor) (*Ticket, error)
	RefundTicket(ctx context.Context, ticketID, userID string) (*Ticket, error)
	ListMyTickets(ctx context.Context, userID string, status TicketStatus, p PaginationParams) ([]*TicketWithDetails, int, error)
	GetTicketStats(ctx context.Context, eventID string, requester Actor) ([]*TicketStat, error)
}
