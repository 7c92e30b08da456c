package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTicketRepo is an in-memory TicketRepository for tests.
type fakeTicketRepo struct {
	byID        map[string]*domain.Ticket
	stats       []*domain.TicketStat
	nextID      int
	purchaseErr error
	markUsedErr error
	refundErr   error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		byID:   make(map[string]*domain.Ticket),
		nextID: 1,
	}
}

func (f *fakeTicketRepo) Purchase(ctx context.Context, ticketTypeID string, tickets []*domain.Ticket) error {
	if f.purchaseErr != nil {
		return f.purchaseErr
	}
	for _, t := range tickets {
		t.ID = fmt.Sprintf("tk-%d", f.nextID)
		f.nextID++
		f.byID[t.ID] = t
	}
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if t, ok := f.byID[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTicketRepo) ListByUserID(ctx context.Context, userID string, status domain.TicketStatus, p domain.PaginationParams) ([]*domain.TicketWithDetails, int, error) {
	var out []*domain.TicketWithDetails
	for _, t := range f.byID {
		if t.UserID == userID {
			out = append(out, &domain.TicketWithDetails{Ticket: t})
		}
	}
	return out, len(out), nil
}

func (f *fakeTicketRepo) MarkUsed(ctx context.Context, ticketID, validatorID string, at time.Time) error {
	if f.markUsedErr != nil {
		return f.markUsedErr
	}
	t, ok := f.byID[ticketID]
	if !ok || t.Status != domain.TicketStatusActive {
		return domain.ErrTicketNotActive
	}
	return nil
}

func (f *fakeTicketRepo) Refund(ctx context.Context, ticketID string, at time.Time) error {
	if f.refundErr != nil {
		return f.refundErr
	}
	t, ok := f.byID[ticketID]
	if !ok || t.Status != domain.TicketStatusActive {
		return domain.ErrTicketNotActive
	}
	return nil
}

func (f *fakeTicketRepo) StatsByEventID(ctx context.Context, eventID string) ([]*domain.TicketStat, error) {
	return f.stats, nil
}

// fakeCodeGenerator returns deterministic codes.
type fakeCodeGenerator struct {
	n   int
	err error
}

func (f *fakeCodeGenerator) Generate(eventID, userID, ticketTypeID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.n++
	return fmt.Sprintf("CODE-%d", f.n), nil
}

func (f *fakeCodeGenerator) Decode(code string) (*domain.TicketCodePayload, error) {
	return nil, domain.ErrInvalidInput
}

type ticketFixture struct {
	tickets *fakeTicketRepo
	types   *fakeTicketTypeRepo
	events  *fakeEventRepo
	users   *fakeUserRepo
	emails  *fakeEmailSender
	svc     domain.TicketService
}

func newTicketFixture(refundWindow time.Duration) *ticketFixture {
	now := time.Now()
	events := newFakeEventRepo()
	events.byID["e1"] = &domain.Event{
		ID:          "e1",
		OrganizerID: "org-1",
		Title:       "GopherCon",
		StartDate:   now.Add(72 * time.Hour),
		EndDate:     now.Add(96 * time.Hour),
		Capacity:    100,
		Status:      domain.EventStatusPublished,
		IsApproved:  true,
	}
	types := newFakeTicketTypeRepo()
	types.byID["tt1"] = &domain.TicketType{ID: "tt1", EventID: "e1", Name: "General", Price: 25, Quantity: 50}
	types.byID["tt-other"] = &domain.TicketType{ID: "tt-other", EventID: "e2", Name: "Other", Price: 10, Quantity: 5}
	tickets := newFakeTicketRepo()
	users := newFakeUserRepo(&domain.User{ID: "u1", Email: "u1@example.com", FirstName: "Jo"})
	emails := &fakeEmailSender{}
	svc := NewTicketService(tickets, types, events, users, &fakeCodeGenerator{}, emails, testLogger(), refundWindow)
	return &ticketFixture{tickets: tickets, types: types, events: events, users: users, emails: emails, svc: svc}
}

func TestTicketService_PurchaseTickets(t *testing.T) {
	t.Run("purchase issues one coded ticket per unit", func(t *testing.T) {
		fx := newTicketFixture(24 * time.Hour)
		got, err := fx.svc.PurchaseTickets(context.Background(), "e1", "tt1", "u1", 3)
		require.NoError(t, err)
		require.Len(t, got, 3)
		codes := make(map[string]bool)
		for _, ticket := range got {
			assert.Equal(t, domain.TicketStatusActive, ticket.Status)
			assert.Equal(t, 25.0, ticket.PurchasePrice)
			codes[ticket.Code] = true
		}
		assert.Len(t, codes, 3, "codes must be unique per unit")
		assert.Equal(t, 1, fx.emails.receipts)
	})

	t.Run("quantity bounds", func(t *testing.T) {
		fx := newTicketFixture(24 * time.Hour)
		_, err := fx.svc.PurchaseTickets(context.Background(), "e1", "tt1", "u1", 0)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = fx.svc.PurchaseTickets(context.Background(), "e1", "tt1", "u1", maxTicketsPerPurchase+1)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("ticket type from another event", func(t *testing.T) {
		fx := newTicketFixture(24 * time.Hour)
		_, err := fx.svc.PurchaseTickets(context.Background(), "e1", "tt-other", "u1", 1)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("event not open", func(t *testing.T) {
		fx := newTicketFixture(24 * time.Hour)
		fx.events.byID["e1"].Status = domain.EventStatusDraft
		_, err := fx.svc.PurchaseTickets(context.Background(), "e1", "tt1", "u1", 1)
		require.ErrorIs(t, err, domain.ErrEventNotAvailable)
	})

	t.Run("sold out propagates", func(t *testing.T) {
		fx := newTicketFixture(24 * time.Hour)
		fx.tickets.purchaseErr = domain.ErrSoldOut
		_, err := fx.svc.PurchaseTickets(context.Background(), "e1", "tt1", "u1", 1)
		require.ErrorIs(t, err, domain.ErrSoldOut)
	})
}

func TestTicketService_ValidateTicket(t *testing.T) {
	newTicket := func(fx *ticketFixture) *domain.Ticket {
		ticket := &domain.Ticket{ID: "tk-1", EventID: "e1", UserID: "u1", Status: domain.TicketStatusActive}
		fx.tickets.byID["tk-1"] = ticket
		return ticket
	}

	t.Run("organizer validates", func(t *testing.T) {
		fx := newTicketFixture(24 * time.Hour)
		newTicket(fx)
		got, err := fx.svc.ValidateTicket(context.Background(), "tk-1", domain.Actor{ID: "org-1", Role: domain.RoleOrganizer})
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusUsed, got.Status)
		require.NotNil(t, got.ValidatedBy)
		assert.Equal(t, "org-1", *got.ValidatedBy)
		assert.NotNil(t, got.ValidatedAt)
	})

	t.Run("admin validates", func(t *testing.T) {
		fx := newTicketFixture(24 * time.Hour)
		newTicket(fx)
		_, err := fx.svc.ValidateTicket(context.Background(), "tk-1", domain.Actor{ID: "admin-1", Role: domain.RoleAdmin})
		require.NoError(t, err)
	})

	t.Run("ticket holder cannot validate", func(t *testing.T) {
		fx := newTicketFixture(24 * time.Hour)
		newTicket(fx)
		_, err := fx.svc.ValidateTicket(context.Background(), "tk-1", domain.Actor{ID: "u1", Role: domain.RoleUser})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("already used", func(t *testing.T) {
		fx := newTicketFixture(24 * time.Hour)
		ticket := newTicket(fx)
		ticket.Status = domain.TicketStatusUsed
		_, err := fx.svc.ValidateTicket(context.Background(), "tk-1", domain.Actor{ID: "org-1", Role: domain.RoleOrganizer})
		require.ErrorIs(t, err, domain.ErrTicketNotActive)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		fx := newTicketFixture(24 * time.Hour)
		_, err := fx.svc.ValidateTicket(context.Background(), "missing", domain.Actor{ID: "org-1", Role: domain.RoleOrganizer})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTicketService_RefundTicket(t *testing.T) {
	newTicket := func(fx *ticketFixture) *domain.Ticket {
		ticket := &domain.Ticket{ID: "tk-1", EventID: "e1", UserID: "u1", Status: domain.TicketStatusActive}
		fx.tickets.byID["tk-1"] = ticket
		return ticket
	}

	t.Run("refund inside the window", func(t *testing.T) {
		fx := newTicketFixture(24 * time.Hour) // event starts in 72h
		newTicket(fx)
		got, err := fx.svc.RefundTicket(context.Background(), "tk-1", "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusRefunded, got.Status)
		assert.NotNil(t, got.RefundedAt)
	})

	t.Run("window closed", func(t *testing.T) {
		fx := newTicketFixture(96 * time.Hour) // window longer than time to start
		newTicket(fx)
		_, err := fx.svc.RefundTicket(context.Background(), "tk-1", "u1")
		require.ErrorIs(t, err, domain.ErrRefundWindowClosed)
	})

	t.Run("another user's ticket looks missing", func(t *testing.T) {
		fx := newTicketFixture(24 * time.Hour)
		newTicket(fx)
		_, err := fx.svc.RefundTicket(context.Background(), "tk-1", "somebody-else")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("already refunded", func(t *testing.T) {
		fx := newTicketFixture(24 * time.Hour)
		ticket := newTicket(fx)
		ticket.Status = domain.TicketStatusRefunded
		_, err := fx.svc.RefundTicket(context.Background(), "tk-1", "u1")
		require.ErrorIs(t, err, domain.ErrTicketNotActive)
	})
}

func TestTicketService_GetTicketStats(t *testing.T) {
	fx := newTicketFixture(24 * time.Hour)
	fx.tickets.stats = []*domain.TicketStat{
		{Status: domain.TicketStatusActive, Count: 10, Revenue: 250},
		{Status: domain.TicketStatusRefunded, Count: 2, Revenue: 50},
	}

	got, err := fx.svc.GetTicketStats(context.Background(), "e1", domain.Actor{ID: "org-1", Role: domain.RoleOrganizer})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = fx.svc.GetTicketStats(context.Background(), "e1", domain.Actor{ID: "u1", Role: domain.RoleUser})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

// accountingTicketRepo keeps ticket type inventory in step with purchases and
// refunds the way the storage layer does: a purchase fails whole when fewer
// units remain, a refund returns exactly one unit.
type accountingTicketRepo struct {
	types  *fakeTicketTypeRepo
	byID   map[string]*domain.Ticket
	nextID int
}

func newAccountingTicketRepo(types *fakeTicketTypeRepo) *accountingTicketRepo {
	return &accountingTicketRepo{
		types:  types,
		byID:   make(map[string]*domain.Ticket),
		nextID: 1,
	}
}

func (f *accountingTicketRepo) Purchase(ctx context.Context, ticketTypeID string, tickets []*domain.Ticket) error {
	ticketType, ok := f.types.byID[ticketTypeID]
	if !ok {
		return domain.ErrNotFound
	}
	if ticketType.Quantity < len(tickets) {
		return domain.ErrSoldOut
	}
	ticketType.Quantity -= len(tickets)
	for _, t := range tickets {
		t.ID = fmt.Sprintf("tk-%d", f.nextID)
		f.nextID++
		f.byID[t.ID] = t
	}
	return nil
}

func (f *accountingTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if t, ok := f.byID[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *accountingTicketRepo) ListByUserID(ctx context.Context, userID string, status domain.TicketStatus, p domain.PaginationParams) ([]*domain.TicketWithDetails, int, error) {
	var out []*domain.TicketWithDetails
	for _, t := range f.byID {
		if t.UserID == userID {
			out = append(out, &domain.TicketWithDetails{Ticket: t})
		}
	}
	return out, len(out), nil
}

func (f *accountingTicketRepo) MarkUsed(ctx context.Context, ticketID, validatorID string, at time.Time) error {
	t, ok := f.byID[ticketID]
	if !ok || t.Status != domain.TicketStatusActive {
		return domain.ErrTicketNotActive
	}
	t.Status = domain.TicketStatusUsed
	return nil
}

func (f *accountingTicketRepo) Refund(ctx context.Context, ticketID string, at time.Time) error {
	t, ok := f.byID[ticketID]
	if !ok || t.Status != domain.TicketStatusActive {
		return domain.ErrTicketNotActive
	}
	t.Status = domain.TicketStatusRefunded
	f.types.byID[t.TicketTypeID].Quantity++
	return nil
}

func (f *accountingTicketRepo) StatsByEventID(ctx context.Context, eventID string) ([]*domain.TicketStat, error) {
	return nil, nil
}

func TestTicketService_InventoryConservation(t *testing.T) {
	now := time.Now()
	events := newFakeEventRepo()
	events.byID["e1"] = &domain.Event{
		ID:          "e1",
		OrganizerID: "org-1",
		Title:       "GopherCon",
		StartDate:   now.Add(72 * time.Hour),
		EndDate:     now.Add(96 * time.Hour),
		Capacity:    100,
		Status:      domain.EventStatusPublished,
		IsApproved:  true,
	}
	types := newFakeTicketTypeRepo()
	types.byID["tt1"] = &domain.TicketType{ID: "tt1", EventID: "e1", Name: "General", Price: 25, Quantity: 5}
	repo := newAccountingTicketRepo(types)
	users := newFakeUserRepo(&domain.User{ID: "u1", Email: "u1@example.com", FirstName: "Jo"})
	svc := NewTicketService(repo, types, events, users, &fakeCodeGenerator{}, &fakeEmailSender{}, testLogger(), 24*time.Hour)

	ctx := context.Background()
	quantity := func() int { return types.byID["tt1"].Quantity }

	first, err := svc.PurchaseTickets(ctx, "e1", "tt1", "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, quantity())

	second, err := svc.PurchaseTickets(ctx, "e1", "tt1", "u2", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, quantity())

	_, err = svc.PurchaseTickets(ctx, "e1", "tt1", "u1", 1)
	require.ErrorIs(t, err, domain.ErrSoldOut)
	assert.Equal(t, 0, quantity(), "failed purchase must not move inventory")

	refunded, err := svc.RefundTicket(ctx, first[0].ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusRefunded, refunded.Status)
	assert.Equal(t, 1, quantity(), "refund returns exactly one unit")

	_, err = svc.RefundTicket(ctx, first[0].ID, "u1")
	require.ErrorIs(t, err, domain.ErrTicketNotActive)
	assert.Equal(t, 1, quantity(), "double refund must not move inventory")

	_, err = svc.PurchaseTickets(ctx, "e1", "tt1", "u2", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, quantity(), "returned unit is sellable again")

	organizer := domain.Actor{ID: "org-1", Role: domain.RoleOrganizer}
	_, err = svc.ValidateTicket(ctx, second[0].ID, organizer)
	require.NoError(t, err)
	_, err = svc.RefundTicket(ctx, second[0].ID, "u2")
	require.ErrorIs(t, err, domain.ErrTicketNotActive)
	assert.Equal(t, 0, quantity(), "used tickets never return inventory")
}
