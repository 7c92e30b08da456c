package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"eventhub/internal/domain"
)

func openEvent(id, organizerID string, now time.Time) *domain.Event {
	return &domain.Event{
		ID:          id,
		OrganizerID: organizerID,
		Title:       "Open Event",
		StartDate:   now.Add(24 * time.Hour),
		EndDate:     now.Add(30 * time.Hour),
		Capacity:    50,
		Status:      domain.EventStatusPublished,
		IsApproved:  true,
	}
}

func newTestRegistrationService(
	regs *fakeRegistrationRepo,
	events *fakeEventRepo,
	users *fakeUserRepo,
	notifier *fakeNotifier,
	emails *fakeEmailSender,
) domain.RegistrationService {
	return NewRegistrationService(regs, events, users, notifier, emails, testLogger())
}

func TestRegistrationService_RegisterForEvent(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		event       *domain.Event
		userID      string
		registerErr error
		wantStatus  domain.RegistrationStatus
		wantErr     error
	}{
		{
			name:       "open event confirms immediately",
			event:      openEvent("e1", "org-1", now),
			userID:     "u1",
			wantStatus: domain.RegistrationStatusConfirmed,
		},
		{
			name: "approval-gated event goes pending",
			event: func() *domain.Event {
				e := openEvent("e1", "org-1", now)
				e.RequiresApproval = true
				return e
			}(),
			userID:     "u1",
			wantStatus: domain.RegistrationStatusPending,
		},
		{
			name: "draft event is not available",
			event: func() *domain.Event {
				e := openEvent("e1", "org-1", now)
				e.Status = domain.EventStatusDraft
				return e
			}(),
			userID:  "u1",
			wantErr: domain.ErrEventNotAvailable,
		},
		{
			name: "unapproved event is not available",
			event: func() *domain.Event {
				e := openEvent("e1", "org-1", now)
				e.IsApproved = false
				return e
			}(),
			userID:  "u1",
			wantErr: domain.ErrEventNotAvailable,
		},
		{
			name: "started event is not available",
			event: func() *domain.Event {
				e := openEvent("e1", "org-1", now)
				e.StartDate = now.Add(-time.Hour)
				return e
			}(),
			userID:  "u1",
			wantErr: domain.ErrEventNotAvailable,
		},
		{
			name:    "organizer cannot join own event",
			event:   openEvent("e1", "org-1", now),
			userID:  "org-1",
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:        "capacity guard propagates",
			event:       openEvent("e1", "org-1", now),
			userID:      "u1",
			registerErr: domain.ErrEventFull,
			wantErr:     domain.ErrEventFull,
		},
		{
			name:        "duplicate registration propagates",
			event:       openEvent("e1", "org-1", now),
			userID:      "u1",
			registerErr: domain.ErrAlreadyRegistered,
			wantErr:     domain.ErrAlreadyRegistered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := newFakeEventRepo()
			events.byID[tt.event.ID] = tt.event
			regs := newFakeRegistrationRepo()
			regs.registerErr = tt.registerErr
			users := newFakeUserRepo(&domain.User{ID: "u1", Email: "u1@example.com", FirstName: "Jo"})
			notifier := &fakeNotifier{}
			emails := &fakeEmailSender{}
			svc := newTestRegistrationService(regs, events, users, notifier, emails)

			reg, err := svc.RegisterForEvent(context.Background(), tt.event.ID, tt.userID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reg.Status != tt.wantStatus {
				t.Fatalf("expected status %s, got %s", tt.wantStatus, reg.Status)
			}
			if len(notifier.sent) != 1 {
				t.Fatalf("expected 1 organizer notification, got %d", len(notifier.sent))
			}
			if notifier.sent[0].RecipientID != tt.event.OrganizerID {
				t.Errorf("notification went to %s, want organizer", notifier.sent[0].RecipientID)
			}
			// confirmation email only goes out for confirmed registrations
			wantEmails := 0
			if tt.wantStatus == domain.RegistrationStatusConfirmed {
				wantEmails = 1
			}
			if emails.confirmations != wantEmails {
				t.Errorf("expected %d confirmation emails, got %d", wantEmails, emails.confirmations)
			}
		})
	}
}

func TestRegistrationService_CancelRegistration(t *testing.T) {
	now := time.Now()

	t.Run("cancels an active registration", func(t *testing.T) {
		events := newFakeEventRepo()
		events.byID["e1"] = openEvent("e1", "org-1", now)
		regs := newFakeRegistrationRepo()
		regs.byKey["e1:u1"] = &domain.Registration{ID: "r1", EventID: "e1", UserID: "u1", Status: domain.RegistrationStatusConfirmed}
		svc := newTestRegistrationService(regs, events, newFakeUserRepo(), &fakeNotifier{}, &fakeEmailSender{})

		if err := svc.CancelRegistration(context.Background(), "e1", "u1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if regs.byKey["e1:u1"].Status != domain.RegistrationStatusCancelled {
			t.Errorf("expected cancelled status, got %s", regs.byKey["e1:u1"].Status)
		}
	})

	t.Run("event already started", func(t *testing.T) {
		events := newFakeEventRepo()
		e := openEvent("e1", "org-1", now)
		e.StartDate = now.Add(-time.Hour)
		events.byID["e1"] = e
		regs := newFakeRegistrationRepo()
		regs.byKey["e1:u1"] = &domain.Registration{ID: "r1", EventID: "e1", UserID: "u1", Status: domain.RegistrationStatusConfirmed}
		svc := newTestRegistrationService(regs, events, newFakeUserRepo(), &fakeNotifier{}, &fakeEmailSender{})

		err := svc.CancelRegistration(context.Background(), "e1", "u1")
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("no registration to cancel", func(t *testing.T) {
		events := newFakeEventRepo()
		events.byID["e1"] = openEvent("e1", "org-1", now)
		svc := newTestRegistrationService(newFakeRegistrationRepo(), events, newFakeUserRepo(), &fakeNotifier{}, &fakeEmailSender{})

		err := svc.CancelRegistration(context.Background(), "e1", "u1")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRegistrationService_ApproveRegistration(t *testing.T) {
	now := time.Now()
	owner := domain.Actor{ID: "org-1", Role: domain.RoleOrganizer}

	t.Run("organizer approves", func(t *testing.T) {
		events := newFakeEventRepo()
		events.byID["e1"] = openEvent("e1", "org-1", now)
		regs := newFakeRegistrationRepo()
		regs.byKey["e1:u1"] = &domain.Registration{ID: "r1", EventID: "e1", UserID: "u1", Status: domain.RegistrationStatusPending}
		notifier := &fakeNotifier{}
		svc := newTestRegistrationService(regs, events, newFakeUserRepo(), notifier, &fakeEmailSender{})

		if err := svc.ApproveRegistration(context.Background(), "e1", "u1", owner); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if regs.byKey["e1:u1"].Status != domain.RegistrationStatusConfirmed {
			t.Errorf("expected confirmed status, got %s", regs.byKey["e1:u1"].Status)
		}
		if len(notifier.sent) != 1 || notifier.sent[0].RecipientID != "u1" {
			t.Errorf("expected approval notification to u1, got %+v", notifier.sent)
		}
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		events := newFakeEventRepo()
		events.byID["e1"] = openEvent("e1", "org-1", now)
		svc := newTestRegistrationService(newFakeRegistrationRepo(), events, newFakeUserRepo(), &fakeNotifier{}, &fakeEmailSender{})

		err := svc.ApproveRegistration(context.Background(), "e1", "u1", domain.Actor{ID: "stranger", Role: domain.RoleUser})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("event filled up while pending", func(t *testing.T) {
		events := newFakeEventRepo()
		events.byID["e1"] = openEvent("e1", "org-1", now)
		regs := newFakeRegistrationRepo()
		regs.approveErr = domain.ErrEventFull
		svc := newTestRegistrationService(regs, events, newFakeUserRepo(), &fakeNotifier{}, &fakeEmailSender{})

		err := svc.ApproveRegistration(context.Background(), "e1", "u1", owner)
		if !errors.Is(err, domain.ErrEventFull) {
			t.Fatalf("expected ErrEventFull, got %v", err)
		}
	})
}

func TestRegistrationService_RejectRegistration(t *testing.T) {
	now := time.Now()
	events := newFakeEventRepo()
	events.byID["e1"] = openEvent("e1", "org-1", now)
	regs := newFakeRegistrationRepo()
	regs.byKey["e1:u1"] = &domain.Registration{ID: "r1", EventID: "e1", UserID: "u1", Status: domain.RegistrationStatusPending}
	notifier := &fakeNotifier{}
	svc := newTestRegistrationService(regs, events, newFakeUserRepo(), notifier, &fakeEmailSender{})

	err := svc.RejectRegistration(context.Background(), "e1", "u1", "event is invite only", domain.Actor{ID: "org-1", Role: domain.RoleOrganizer})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if regs.byKey["e1:u1"].Status != domain.RegistrationStatusRejected {
		t.Errorf("expected rejected status, got %s", regs.byKey["e1:u1"].Status)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	if notifier.sent[0].Type != domain.NotificationRegistrationRejected {
		t.Errorf("unexpected notification type %s", notifier.sent[0].Type)
	}
}

func TestRegistrationService_ListMyEvents(t *testing.T) {
	now := time.Now()
	events := newFakeEventRepo()
	events.byID["e1"] = openEvent("e1", "org-1", now)
	regs := newFakeRegistrationRepo()
	regs.byKey["e1:u1"] = &domain.Registration{ID: "r1", EventID: "e1", UserID: "u1", Status: domain.RegistrationStatusConfirmed}
	// registration against a deleted event is skipped, not an error
	regs.byKey["gone:u1"] = &domain.Registration{ID: "r2", EventID: "gone", UserID: "u1", Status: domain.RegistrationStatusConfirmed}
	svc := newTestRegistrationService(regs, events, newFakeUserRepo(), &fakeNotifier{}, &fakeEmailSender{})

	got, err := svc.ListMyEvents(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].Event.ID != "e1" {
		t.Errorf("expected event e1, got %s", got[0].Event.ID)
	}
}

func TestRegistrationService_EventCapacity(t *testing.T) {
	now := time.Now()
	events := newFakeEventRepo()
	e := openEvent("e1", "org-1", now)
	e.CurrentParticipants = 30
	events.byID["e1"] = e
	svc := newTestRegistrationService(newFakeRegistrationRepo(), events, newFakeUserRepo(), &fakeNotifier{}, &fakeEmailSender{})

	snap, err := svc.EventCapacity(context.Background(), "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Total != 50 || snap.Current != 30 || snap.Available != 20 {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	if _, err := svc.EventCapacity(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// guardedRegistrationRepo accounts confirmed seats against the event row the
// way the storage layer does: one active registration per user, the counter
// guarded by capacity.
type guardedRegistrationRepo struct {
	events *fakeEventRepo
	byKey  map[string]*domain.Registration
	nextID int
}

func newGuardedRegistrationRepo(events *fakeEventRepo) *guardedRegistrationRepo {
	return &guardedRegistrationRepo{
		events: events,
		byKey:  make(map[string]*domain.Registration),
		nextID: 1,
	}
}

func (f *guardedRegistrationRepo) Register(ctx context.Context, reg *domain.Registration, countTowardCapacity bool) error {
	key := reg.EventID + ":" + reg.UserID
	if existing, ok := f.byKey[key]; ok && existing.Status != domain.RegistrationStatusCancelled {
		return domain.ErrAlreadyRegistered
	}
	if countTowardCapacity {
		event, ok := f.events.byID[reg.EventID]
		if !ok {
			return domain.ErrNotFound
		}
		if event.CurrentParticipants >= event.Capacity {
			return domain.ErrEventFull
		}
		event.CurrentParticipants++
	}
	reg.ID = fmt.Sprintf("reg-%d", f.nextID)
	f.nextID++
	f.byKey[key] = reg
	return nil
}

func (f *guardedRegistrationRepo) GetActiveByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	reg, ok := f.byKey[eventID+":"+userID]
	if !ok || reg.Status == domain.RegistrationStatusCancelled {
		return nil, domain.ErrNotFound
	}
	return reg, nil
}

func (f *guardedRegistrationRepo) Cancel(ctx context.Context, eventID, userID string) error {
	reg, ok := f.byKey[eventID+":"+userID]
	if !ok || reg.Status == domain.RegistrationStatusCancelled {
		return domain.ErrNotFound
	}
	if reg.Status == domain.RegistrationStatusConfirmed {
		f.events.byID[eventID].CurrentParticipants--
	}
	reg.Status = domain.RegistrationStatusCancelled
	return nil
}

func (f *guardedRegistrationRepo) Approve(ctx context.Context, eventID, userID string) error {
	reg, ok := f.byKey[eventID+":"+userID]
	if !ok || reg.Status != domain.RegistrationStatusPending {
		return domain.ErrNotFound
	}
	event := f.events.byID[eventID]
	if event.CurrentParticipants >= event.Capacity {
		return domain.ErrEventFull
	}
	event.CurrentParticipants++
	reg.Status = domain.RegistrationStatusConfirmed
	return nil
}

func (f *guardedRegistrationRepo) Reject(ctx context.Context, eventID, userID, reason string) error {
	reg, ok := f.byKey[eventID+":"+userID]
	if !ok || reg.Status != domain.RegistrationStatusPending {
		return domain.ErrNotFound
	}
	reg.Status = domain.RegistrationStatusRejected
	reg.RejectionReason = &reason
	return nil
}

func (f *guardedRegistrationRepo) ListByEventID(ctx context.Context, eventID string, status domain.RegistrationStatus, p domain.PaginationParams) ([]*domain.RegistrationWithUser, int, error) {
	return nil, 0, nil
}

func (f *guardedRegistrationRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Registration, error) {
	var out []*domain.Registration
	for _, reg := range f.byKey {
		if reg.UserID == userID {
			out = append(out, reg)
		}
	}
	return out, nil
}

func TestRegistrationService_CapacityWalk(t *testing.T) {
	now := time.Now()
	events := newFakeEventRepo()
	e := openEvent("e1", "org-1", now)
	e.Capacity = 2
	events.byID["e1"] = e
	regs := newGuardedRegistrationRepo(events)
	svc := NewRegistrationService(regs, events, newFakeUserRepo(), &fakeNotifier{}, &fakeEmailSender{}, testLogger())

	ctx := context.Background()
	count := func() int { return events.byID["e1"].CurrentParticipants }

	if _, err := svc.RegisterForEvent(ctx, "e1", "u-a"); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if count() != 1 {
		t.Fatalf("expected 1 participant, got %d", count())
	}

	if _, err := svc.RegisterForEvent(ctx, "e1", "u-b"); err != nil {
		t.Fatalf("second registration: %v", err)
	}
	if count() != 2 {
		t.Fatalf("expected 2 participants, got %d", count())
	}

	if _, err := svc.RegisterForEvent(ctx, "e1", "u-b"); !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if count() != 2 {
		t.Fatalf("duplicate must not move the counter, got %d", count())
	}

	if _, err := svc.RegisterForEvent(ctx, "e1", "u-c"); !errors.Is(err, domain.ErrEventFull) {
		t.Fatalf("expected ErrEventFull, got %v", err)
	}
	if count() != 2 {
		t.Fatalf("full event must not move the counter, got %d", count())
	}

	if err := svc.CancelRegistration(ctx, "e1", "u-a"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if count() != 1 {
		t.Fatalf("expected 1 participant after cancel, got %d", count())
	}

	if _, err := svc.RegisterForEvent(ctx, "e1", "u-c"); err != nil {
		t.Fatalf("re-register after a seat freed: %v", err)
	}
	if count() != 2 {
		t.Fatalf("expected 2 participants, got %d", count())
	}

	snap, err := svc.EventCapacity(ctx, "e1")
	if err != nil {
		t.Fatalf("capacity snapshot: %v", err)
	}
	if snap.Total != 2 || snap.Current != 2 || snap.Available != 0 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestRegistrationService_PendingDoesNotHoldSeat(t *testing.T) {
	now := time.Now()
	events := newFakeEventRepo()
	e := openEvent("e1", "org-1", now)
	e.Capacity = 1
	e.RequiresApproval = true
	events.byID["e1"] = e
	regs := newGuardedRegistrationRepo(events)
	svc := NewRegistrationService(regs, events, newFakeUserRepo(), &fakeNotifier{}, &fakeEmailSender{}, testLogger())

	ctx := context.Background()
	organizer := domain.Actor{ID: "org-1", Role: domain.RoleOrganizer}

	if _, err := svc.RegisterForEvent(ctx, "e1", "u-a"); err != nil {
		t.Fatalf("pending registration: %v", err)
	}
	if _, err := svc.RegisterForEvent(ctx, "e1", "u-b"); err != nil {
		t.Fatalf("second pending registration: %v", err)
	}
	if got := events.byID["e1"].CurrentParticipants; got != 0 {
		t.Fatalf("pending rows must not hold seats, got %d", got)
	}

	if err := svc.ApproveRegistration(ctx, "e1", "u-a", organizer); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := events.byID["e1"].CurrentParticipants; got != 1 {
		t.Fatalf("expected 1 participant after approval, got %d", got)
	}

	if err := svc.ApproveRegistration(ctx, "e1", "u-b", organizer); !errors.Is(err, domain.ErrEventFull) {
		t.Fatalf("expected ErrEventFull on second approval, got %v", err)
	}
	if got := events.byID["e1"].CurrentParticipants; got != 1 {
		t.Fatalf("failed approval must not move the counter, got %d", got)
	}
}
