package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, every call returns this error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []*domain.Event
	for _, e := range f.byID {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeEventRepo) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	e, ok := f.byID[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.Category != nil {
		e.Category = *upd.Category
	}
	if upd.Location != nil {
		e.Location = *upd.Location
	}
	if upd.StartDate != nil {
		e.StartDate = *upd.StartDate
	}
	if upd.EndDate != nil {
		e.EndDate = *upd.EndDate
	}
	if upd.Capacity != nil {
		e.Capacity = *upd.Capacity
	}
	return e, nil
}

func (f *fakeEventRepo) UpdateStatus(ctx context.Context, eventID string, from []domain.EventStatus, to domain.EventStatus) error {
	e, ok := f.byID[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, s := range from {
		if e.Status == s {
			e.Status = to
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeEventRepo) SetModeration(ctx context.Context, eventID string, approved bool) error {
	e, ok := f.byID[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	e.IsApproved = approved
	if !approved {
		e.Status = domain.EventStatusRejected
	}
	return nil
}

func (f *fakeEventRepo) IncrementReportCount(ctx context.Context, eventID string) error {
	e, ok := f.byID[eventID]
	if !ok {
		return domain.ErrNotFound
	}
	e.ReportCount++
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeTicketTypeRepo is an in-memory TicketTypeRepository for tests.
type fakeTicketTypeRepo struct {
	byID       map[string]*domain.TicketType
	byEvent    map[string][]*domain.TicketType
	nextID     int
	reconciled [][]domain.TicketTypeInput
	err        error
}

func newFakeTicketTypeRepo() *fakeTicketTypeRepo {
	return &fakeTicketTypeRepo{
		byID:    make(map[string]*domain.TicketType),
		byEvent: make(map[string][]*domain.TicketType),
		nextID:  1,
	}
}

func (f *fakeTicketTypeRepo) CreateBatch(ctx context.Context, eventID string, types []*domain.TicketType) error {
	if f.err != nil {
		return f.err
	}
	for _, t := range types {
		t.ID = fmt.Sprintf("tt-%d", f.nextID)
		f.nextID++
		t.EventID = eventID
		f.byID[t.ID] = t
		f.byEvent[eventID] = append(f.byEvent[eventID], t)
	}
	return nil
}

func (f *fakeTicketTypeRepo) GetByID(ctx context.Context, id string) (*domain.TicketType, error) {
	if t, ok := f.byID[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTicketTypeRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.TicketType, error) {
	return f.byEvent[eventID], nil
}

func (f *fakeTicketTypeRepo) Reconcile(ctx context.Context, eventID string, types []domain.TicketTypeInput) ([]*domain.TicketType, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.reconciled = append(f.reconciled, types)
	return f.byEvent[eventID], nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID    map[string]*domain.User
	blocked map[string]bool
	err     error
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		blocked: make(map[string]bool),
	}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.err != nil {
		return f.err
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) SetBlocked(ctx context.Context, userID string, blocked bool) error {
	if _, ok := f.byID[userID]; !ok {
		return domain.ErrNotFound
	}
	f.blocked[userID] = blocked
	return nil
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, role string) ([]*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.User
	for _, u := range f.byID {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

// fakeNotifier records every notification it is asked to send.
type fakeNotifier struct {
	sent []*domain.Notification
	err  error
}

func (f *fakeNotifier) Notify(ctx context.Context, n *domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) ListMy(ctx context.Context, userID string, unreadOnly bool, p domain.PaginationParams) ([]*domain.Notification, int, error) {
	return nil, 0, nil
}
func (f *fakeNotifier) MarkRead(ctx context.Context, notificationID, userID string) error { return nil }
func (f *fakeNotifier) MarkAllRead(ctx context.Context, userID string) error              { return nil }
func (f *fakeNotifier) UnreadCount(ctx context.Context, userID string) (int, error)       { return 0, nil }

// fakeEmailSender counts outgoing emails per kind.
type fakeEmailSender struct {
	confirmations int
	cancellations int
	receipts      int
	err           error
}

func (f *fakeEmailSender) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.confirmations++
	return nil
}

func (f *fakeEmailSender) SendEventCancelled(ctx context.Context, data *domain.EventCancelledEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.cancellations++
	return nil
}

func (f *fakeEmailSender) SendTicketPurchaseReceipt(ctx context.Context, data *domain.TicketPurchaseEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.receipts++
	return nil
}

// fakeRegistrationRepo is an in-memory RegistrationRepository for tests.
type fakeRegistrationRepo struct {
	byKey        map[string]*domain.Registration // eventID:userID
	participants []*domain.RegistrationWithUser
	nextID       int
	registerErr  error
	approveErr   error
	err          error
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{
		byKey:  make(map[string]*domain.Registration),
		nextID: 1,
	}
}

func (f *fakeRegistrationRepo) Register(ctx context.Context, reg *domain.Registration, countTowardCapacity bool) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	reg.ID = fmt.Sprintf("reg-%d", f.nextID)
	f.nextID++
	f.byKey[reg.EventID+":"+reg.UserID] = reg
	return nil
}

func (f *fakeRegistrationRepo) GetActiveByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	if reg, ok := f.byKey[eventID+":"+userID]; ok {
		return reg, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) Cancel(ctx context.Context, eventID, userID string) error {
	reg, ok := f.byKey[eventID+":"+userID]
	if !ok {
		return domain.ErrNotFound
	}
	reg.Status = domain.RegistrationStatusCancelled
	return nil
}

func (f *fakeRegistrationRepo) Approve(ctx context.Context, eventID, userID string) error {
	if f.approveErr != nil {
		return f.approveErr
	}
	reg, ok := f.byKey[eventID+":"+userID]
	if !ok || reg.Status != domain.RegistrationStatusPending {
		return domain.ErrNotFound
	}
	reg.Status = domain.RegistrationStatusConfirmed
	return nil
}

func (f *fakeRegistrationRepo) Reject(ctx context.Context, eventID, userID, reason string) error {
	reg, ok := f.byKey[eventID+":"+userID]
	if !ok || reg.Status != domain.RegistrationStatusPending {
		return domain.ErrNotFound
	}
	reg.Status = domain.RegistrationStatusRejected
	reg.RejectionReason = &reason
	return nil
}

func (f *fakeRegistrationRepo) ListByEventID(ctx context.Context, eventID string, status domain.RegistrationStatus, p domain.PaginationParams) ([]*domain.RegistrationWithUser, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.participants, len(f.participants), nil
}

func (f *fakeRegistrationRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Registration
	for _, reg := range f.byKey {
		if reg.UserID == userID {
			out = append(out, reg)
		}
	}
	return out, nil
}

func newTestEventService(
	events *fakeEventRepo,
	types *fakeTicketTypeRepo,
	regs *fakeRegistrationRepo,
	users *fakeUserRepo,
	notifier *fakeNotifier,
	emails *fakeEmailSender,
) domain.EventService {
	return NewEventService(events, types, regs, users, notifier, emails, testLogger(), 5*time.Second)
}

func validCreateInput(now time.Time) domain.CreateEventInput {
	return domain.CreateEventInput{
		Title:       "GopherCon",
		Description: "A conference about Go",
		Category:    "technology",
		Location:    "Berlin",
		StartDate:   now.Add(48 * time.Hour),
		EndDate:     now.Add(72 * time.Hour),
		Capacity:    100,
	}
}

func TestEventService_CreateEvent(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		mutate  func(in *domain.CreateEventInput)
		wantErr error
	}{
		{name: "valid input"},
		{
			name:    "missing title",
			mutate:  func(in *domain.CreateEventInput) { in.Title = "  " },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "title too long",
			mutate: func(in *domain.CreateEventInput) {
				for len(in.Title) <= maxTitleLen {
					in.Title += in.Title
				}
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "multibyte title at the limit is accepted",
			mutate: func(in *domain.CreateEventInput) {
				in.Title = strings.Repeat("é", maxTitleLen)
			},
		},
		{
			name: "multibyte title over the limit",
			mutate: func(in *domain.CreateEventInput) {
				in.Title = strings.Repeat("é", maxTitleLen+1)
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing description",
			mutate:  func(in *domain.CreateEventInput) { in.Description = "" },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "unknown category",
			mutate:  func(in *domain.CreateEventInput) { in.Category = "quidditch" },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing location",
			mutate:  func(in *domain.CreateEventInput) { in.Location = "" },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "start date in the past",
			mutate:  func(in *domain.CreateEventInput) { in.StartDate = now.Add(-time.Hour) },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "end before start",
			mutate: func(in *domain.CreateEventInput) {
				in.EndDate = in.StartDate.Add(-time.Hour)
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "zero capacity",
			mutate:  func(in *domain.CreateEventInput) { in.Capacity = 0 },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "capacity over limit",
			mutate:  func(in *domain.CreateEventInput) { in.Capacity = maxCapacity + 1 },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "negative ticket price",
			mutate: func(in *domain.CreateEventInput) {
				in.TicketTypes = []domain.TicketTypeInput{{Name: "VIP", Price: -1, Quantity: 10}}
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "ticket type without name",
			mutate: func(in *domain.CreateEventInput) {
				in.TicketTypes = []domain.TicketTypeInput{{Name: " ", Price: 10, Quantity: 10}}
			},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestEventService(newFakeEventRepo(), newFakeTicketTypeRepo(), newFakeRegistrationRepo(),
				newFakeUserRepo(&domain.User{ID: "org-1", Role: domain.RoleOrganizer}), &fakeNotifier{}, &fakeEmailSender{})

			in := validCreateInput(now)
			if tt.mutate != nil {
				tt.mutate(&in)
			}
			got, err := svc.CreateEvent(context.Background(), in, "org-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, domain.EventStatusDraft, got.Event.Status)
			assert.Equal(t, "org-1", got.Event.OrganizerID)
			assert.NotNil(t, got.TicketTypes)
		})
	}
}

func TestEventService_CreateEvent_WithTicketTypes(t *testing.T) {
	now := time.Now()
	types := newFakeTicketTypeRepo()
	svc := newTestEventService(newFakeEventRepo(), types, newFakeRegistrationRepo(),
		newFakeUserRepo(&domain.User{ID: "org-1", Role: domain.RoleOrganizer}), &fakeNotifier{}, &fakeEmailSender{})

	in := validCreateInput(now)
	in.TicketTypes = []domain.TicketTypeInput{
		{Name: "General", Price: 25, Quantity: 80},
		{Name: "VIP", Price: 100, Quantity: 20},
	}
	got, err := svc.CreateEvent(context.Background(), in, "org-1")
	require.NoError(t, err)
	require.Len(t, got.TicketTypes, 2)
	assert.Equal(t, got.Event.ID, got.TicketTypes[0].EventID)
}

func TestEventService_UpdateEvent(t *testing.T) {
	now := time.Now()
	ptrStr := func(s string) *string { return &s }
	ptrInt := func(n int) *int { return &n }

	newFixture := func() (*fakeEventRepo, domain.EventService) {
		events := newFakeEventRepo()
		events.byID["ev-1"] = &domain.Event{
			ID:                  "ev-1",
			OrganizerID:         "org-1",
			Title:               "GopherCon",
			Description:         "A conference",
			Category:            "technology",
			Location:            "Berlin",
			StartDate:           now.Add(48 * time.Hour),
			EndDate:             now.Add(72 * time.Hour),
			Capacity:            100,
			CurrentParticipants: 40,
			Status:              domain.EventStatusPublished,
			IsApproved:          true,
		}
		svc := newTestEventService(events, newFakeTicketTypeRepo(), newFakeRegistrationRepo(),
			newFakeUserRepo(&domain.User{ID: "org-1"}), &fakeNotifier{}, &fakeEmailSender{})
		return events, svc
	}

	t.Run("owner updates title", func(t *testing.T) {
		_, svc := newFixture()
		got, err := svc.UpdateEvent(context.Background(), "ev-1",
			domain.UpdateEventInput{EventUpdate: domain.EventUpdate{Title: ptrStr("GopherCon EU")}},
			domain.Actor{ID: "org-1", Role: domain.RoleOrganizer})
		require.NoError(t, err)
		assert.Equal(t, "GopherCon EU", got.Event.Title)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		_, svc := newFixture()
		_, err := svc.UpdateEvent(context.Background(), "ev-1",
			domain.UpdateEventInput{EventUpdate: domain.EventUpdate{Title: ptrStr("Hijacked")}},
			domain.Actor{ID: "someone-else", Role: domain.RoleUser})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("admin may update any event", func(t *testing.T) {
		_, svc := newFixture()
		_, err := svc.UpdateEvent(context.Background(), "ev-1",
			domain.UpdateEventInput{EventUpdate: domain.EventUpdate{Title: ptrStr("Renamed")}},
			domain.Actor{ID: "admin-1", Role: domain.RoleAdmin})
		require.NoError(t, err)
	})

	t.Run("capacity below current participants", func(t *testing.T) {
		_, svc := newFixture()
		_, err := svc.UpdateEvent(context.Background(), "ev-1",
			domain.UpdateEventInput{EventUpdate: domain.EventUpdate{Capacity: ptrInt(10)}},
			domain.Actor{ID: "org-1", Role: domain.RoleOrganizer})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("partial date update cannot invert the window", func(t *testing.T) {
		_, svc := newFixture()
		badStart := now.Add(96 * time.Hour) // beyond the existing end date
		_, err := svc.UpdateEvent(context.Background(), "ev-1",
			domain.UpdateEventInput{EventUpdate: domain.EventUpdate{StartDate: &badStart}},
			domain.Actor{ID: "org-1", Role: domain.RoleOrganizer})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown event", func(t *testing.T) {
		_, svc := newFixture()
		_, err := svc.UpdateEvent(context.Background(), "missing",
			domain.UpdateEventInput{}, domain.Actor{ID: "org-1"})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventService_PublishEvent(t *testing.T) {
	events := newFakeEventRepo()
	events.byID["ev-1"] = &domain.Event{ID: "ev-1", OrganizerID: "org-1", Status: domain.EventStatusDraft}
	events.byID["ev-2"] = &domain.Event{ID: "ev-2", OrganizerID: "org-1", Status: domain.EventStatusCancelled}
	svc := newTestEventService(events, newFakeTicketTypeRepo(), newFakeRegistrationRepo(),
		newFakeUserRepo(), &fakeNotifier{}, &fakeEmailSender{})
	owner := domain.Actor{ID: "org-1", Role: domain.RoleOrganizer}

	require.NoError(t, svc.PublishEvent(context.Background(), "ev-1", owner))
	assert.Equal(t, domain.EventStatusPublished, events.byID["ev-1"].Status)

	err := svc.PublishEvent(context.Background(), "ev-2", owner)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	err = svc.PublishEvent(context.Background(), "ev-1", domain.Actor{ID: "intruder"})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEventService_CancelEvent_NotifiesParticipants(t *testing.T) {
	events := newFakeEventRepo()
	events.byID["ev-1"] = &domain.Event{
		ID:          "ev-1",
		OrganizerID: "org-1",
		Title:       "GopherCon",
		Status:      domain.EventStatusPublished,
		Capacity:    100,
	}
	regs := newFakeRegistrationRepo()
	regs.participants = []*domain.RegistrationWithUser{
		{Registration: &domain.Registration{ID: "r1"}, User: &domain.User{ID: "u1", Email: "u1@example.com"}},
		{Registration: &domain.Registration{ID: "r2"}, User: &domain.User{ID: "u2", Email: "u2@example.com"}},
	}
	notifier := &fakeNotifier{}
	emails := &fakeEmailSender{}
	svc := newTestEventService(events, newFakeTicketTypeRepo(), regs, newFakeUserRepo(), notifier, emails)

	err := svc.CancelEvent(context.Background(), "ev-1", domain.Actor{ID: "org-1", Role: domain.RoleOrganizer})
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusCancelled, events.byID["ev-1"].Status)
	assert.Len(t, notifier.sent, 2)
	assert.Equal(t, 2, emails.cancellations)
	for _, n := range notifier.sent {
		assert.Equal(t, domain.NotificationEventCancelled, n.Type)
	}
}

func TestEventService_ModerateEvent(t *testing.T) {
	newFixture := func() (*fakeEventRepo, *fakeNotifier, domain.EventService) {
		events := newFakeEventRepo()
		events.byID["ev-1"] = &domain.Event{ID: "ev-1", OrganizerID: "org-1", Title: "GopherCon", Status: domain.EventStatusPublished}
		notifier := &fakeNotifier{}
		svc := newTestEventService(events, newFakeTicketTypeRepo(), newFakeRegistrationRepo(),
			newFakeUserRepo(), notifier, &fakeEmailSender{})
		return events, notifier, svc
	}

	t.Run("non-admin is forbidden", func(t *testing.T) {
		_, _, svc := newFixture()
		err := svc.ModerateEvent(context.Background(), "ev-1", false, domain.Actor{ID: "org-1", Role: domain.RoleOrganizer})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("rejection forces the lifecycle status", func(t *testing.T) {
		events, notifier, svc := newFixture()
		err := svc.ModerateEvent(context.Background(), "ev-1", false, domain.Actor{ID: "admin-1", Role: domain.RoleAdmin})
		require.NoError(t, err)
		assert.False(t, events.byID["ev-1"].IsApproved)
		assert.Equal(t, domain.EventStatusRejected, events.byID["ev-1"].Status)
		require.Len(t, notifier.sent, 1)
		assert.Equal(t, "org-1", notifier.sent[0].RecipientID)
	})

	t.Run("unknown event", func(t *testing.T) {
		_, _, svc := newFixture()
		err := svc.ModerateEvent(context.Background(), "missing", true, domain.Actor{ID: "admin-1", Role: domain.RoleAdmin})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	events := newFakeEventRepo()
	events.byID["ev-1"] = &domain.Event{ID: "ev-1", OrganizerID: "org-1"}
	svc := newTestEventService(events, newFakeTicketTypeRepo(), newFakeRegistrationRepo(),
		newFakeUserRepo(), &fakeNotifier{}, &fakeEmailSender{})

	err := svc.DeleteEvent(context.Background(), "ev-1", domain.Actor{ID: "other", Role: domain.RoleUser})
	require.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, svc.DeleteEvent(context.Background(), "ev-1", domain.Actor{ID: "org-1", Role: domain.RoleOrganizer}))
	_, ok := events.byID["ev-1"]
	assert.False(t, ok)
}
