package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/domain"
)

const maxTicketsPerPurchase = 10

type ticketService struct {
	ticketRepo     domain.TicketRepository
	ticketTypeRepo domain.TicketTypeRepository
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	codeGenerator  domain.TicketCodeGenerator
	emailService   domain.EmailService
	logger         *slog.Logger
	refundWindow   time.Duration
}

func NewTicketService(
	ticketRepo domain.TicketRepository,
	ticketTypeRepo domain.TicketTypeRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	codeGenerator domain.TicketCodeGenerator,
	emailService domain.EmailService,
	logger *slog.Logger,
	refundWindow time.Duration,
) domain.TicketService {
	return &ticketService{
		ticketRepo:     ticketRepo,
		ticketTypeRepo: ticketTypeRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		codeGenerator:  codeGenerator,
		emailService:   emailService,
		logger:         logger,
		refundWindow:   refundWindow,
	}
}

func (s *ticketService) PurchaseTickets(ctx context.Context, eventID, ticketTypeID, userID string, quantity int) ([]*domain.Ticket, error) {
	if quantity < 1 || quantity > maxTicketsPerPurchase {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", domain.ErrInvalidInput, maxTicketsPerPurchase)
	}

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

	ticketType, err := s.ticketTypeRepo.GetByID(ctx, ticketTypeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get ticket type: %w", err)
	}
	if ticketType.EventID != eventID {
		return nil, fmt.Errorf("%w: ticket type does not belong to this event", domain.ErrInvalidInput)
	}

	tickets := make([]*domain.Ticket, 0, quantity)
	for i := 0; i < quantity; i++ {
		code, err := s.codeGenerator.Generate(eventID, userID, ticketTypeID)
		if err != nil {
			return nil, fmt.Errorf("generate ticket code: %w", err)
		}
		tickets = append(tickets, &domain.Ticket{
			EventID:       eventID,
			UserID:        userID,
			TicketTypeID:  ticketTypeID,
			Status:        domain.TicketStatusActive,
			Code:          code,
			PurchasePrice: ticketType.Price,
			PurchasedAt:   now,
		})
	}

	if err := s.ticketRepo.Purchase(ctx, ticketTypeID, tickets); err != nil {
		if errors.Is(err, domain.ErrSoldOut) {
			return nil, domain.ErrSoldOut
		}
		return nil, fmt.Errorf("purchase tickets: %w", err)
	}

	s.sendPurchaseReceipt(ctx, event, ticketType, userID, quantity)
	return tickets, nil
}

func (s *ticketService) sendPurchaseReceipt(ctx context.Context, event *domain.Event, ticketType *domain.TicketType, userID string, quantity int) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("purchase receipt: get user failed", "user_id", userID, "err", err)
		return
	}
	err = s.emailService.SendTicketPurchaseReceipt(ctx, &domain.TicketPurchaseEmailData{
		Email:      user.Email,
		FirstName:  user.FirstName,
		EventTitle: event.Title,
		TypeName:   ticketType.Name,
		Quantity:   quantity,
		Total:      ticketType.Price * float64(quantity),
	})
	if err != nil {
		s.logger.Warn("purchase receipt email failed", "user_id", userID, "err", err)
	}
}

func (s *ticketService) ValidateTicket(ctx context.Context, ticketID string, validator domain.Actor) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}

	event, err := s.eventRepo.GetByID(ctx, ticket.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != validator.ID && !validator.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	if err := s.ticketRepo.MarkUsed(ctx, ticketID, validator.ID, now); err != nil {
		if errors.Is(err, domain.ErrTicketNotActive) {
			return nil, domain.ErrTicketNotActive
		}
		return nil, fmt.Errorf("mark ticket used: %w", err)
	}

	ticket.Status = domain.TicketStatusUsed
	ticket.ValidatedAt = &now
	ticket.ValidatedBy = &validator.ID
	return ticket, nil
}

func (s *ticketService) RefundTicket(ctx context.Context, ticketID, userID string) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	// Another user's ticket is indistinguishable from a missing one.
	if ticket.UserID != userID {
		return nil, domain.ErrNotFound
	}
	if ticket.Status != domain.TicketStatusActive {
		return nil, domain.ErrTicketNotActive
	}

	event, err := s.eventRepo.GetByID(ctx, ticket.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	now := time.Now()
	if event.StartDate.Sub(now) < s.refundWindow {
		return nil, domain.ErrRefundWindowClosed
	}

	if err := s.ticketRepo.Refund(ctx, ticketID, now); err != nil {
		if errors.Is(err, domain.ErrTicketNotActive) {
			return nil, domain.ErrTicketNotActive
		}
		return nil, fmt.Errorf("refund ticket: %w", err)
	}

	ticket.Status = domain.TicketStatusRefunded
	ticket.RefundedAt = &now
	return ticket, nil
}

func (s *ticketService) ListMyTickets(ctx context.Context, userID string, status domain.TicketStatus, p domain.PaginationParams) ([]*domain.TicketWithDetails, int, error) {
	tickets, total, err := s.ticketRepo.ListByUserID(ctx, userID, status, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, total, nil
}

func (s *ticketService) GetTicketStats(ctx context.Context, eventID string, requester domain.Actor) ([]*domain.TicketStat, error) {
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
	stats, err := s.ticketRepo.StatsByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("ticket stats: %w", err)
	}
	return stats, nil
}
