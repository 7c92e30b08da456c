package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

type TicketController struct {
	Logger  *slog.Logger
	Service domain.TicketService
}

func NewTicketController(logger *slog.Logger, svc domain.TicketService) *TicketController {
	return &TicketController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *TicketController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrEventNotAvailable):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "event is not open for sales")
	case errors.Is(err, domain.ErrSoldOut):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "not enough tickets available")
	case errors.Is(err, domain.ErrTicketNotActive):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "ticket is not active")
	case errors.Is(err, domain.ErrRefundWindowClosed):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "refund window has closed")
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
	}
}

// PurchaseRequest is the request body for POST /events/{eventID}/tickets.
type PurchaseRequest struct {
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
}

// Validate implements Validator.
func (p PurchaseRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(p.TicketTypeID) == "" {
		errs = append(errs, "ticket_type_id is required")
	}
	if p.Quantity < 1 {
		errs = append(errs, "quantity must be at least 1")
	}
	return errs
}

// Purchase godoc
// @Summary Purchase tickets
// @Description Buys a quantity of one ticket type for a published event. Inventory is decremented atomically; the whole purchase fails when fewer tickets remain.
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body PurchaseRequest true "Ticket type and quantity"
// @Success 201 {object} helpers.APIResponse "data is an array of purchased tickets"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (sold out or sales closed)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/tickets [post]
func (c *TicketController) Purchase(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req PurchaseRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	tickets, err := c.Service.PurchaseTickets(r.Context(), eventID, req.TicketTypeID, actor.ID, req.Quantity)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, tickets)
}

// Validate godoc
// @Summary Validate a ticket at the door
// @Description Marks an active ticket as used, stamping validator and time. Only the event organizer or an admin can validate. A second scan of the same ticket fails.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param ticketID path string true "Ticket ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the validated ticket"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not active)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/{ticketID}/validate [post]
func (c *TicketController) Validate(w http.ResponseWriter, r *http.Request) {
	ticketID := r.PathValue("ticketID")
	if ticketID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing ticketID")
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	ticket, err := c.Service.ValidateTicket(r.Context(), ticketID, actor)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, ticket)
}

// Refund godoc
// @Summary Refund a ticket
// @Description Refunds an active ticket owned by the authenticated user, returning its unit to inventory. Fails once the refund window before the event start has closed.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param ticketID path string true "Ticket ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the refunded ticket"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not active or window closed)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/{ticketID}/refund [post]
func (c *TicketController) Refund(w http.ResponseWriter, r *http.Request) {
	ticketID := r.PathValue("ticketID")
	if ticketID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing ticketID")
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	ticket, err := c.Service.RefundTicket(r.Context(), ticketID, actor.ID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, ticket)
}

// ListMyTicketsResponse is the data payload for GET /tickets/me (200).
type ListMyTicketsResponse struct {
	Items      []*domain.TicketWithDetails `json:"items"`
	Pagination h.PaginationMeta            `json:"pagination"`
}

// ListMine godoc
// @Summary List the current user's tickets
// @Description Returns a paginated list of the authenticated user's tickets with event and ticket type details. Optional status filter.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by ticket status"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/me [get]
func (c *TicketController) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	status := domain.TicketStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	params := h.ParsePagination(r)
	tickets, total, err := c.Service.ListMyTickets(r.Context(), actor.ID, status, params)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	if tickets == nil {
		tickets = []*domain.TicketWithDetails{}
	}
	meta := h.NewPaginationMeta(params.Page, params.PageSize, total)
	h.WriteJSONSuccess(w, http.StatusOK, ListMyTicketsResponse{Items: tickets, Pagination: meta})
}

// Stats godoc
// @Summary Ticket sales statistics for an event
// @Description Returns per-status ticket counts and revenue for the event. Only the organizer or an admin can view.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is an array of per-status stats"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/tickets/stats [get]
func (c *TicketController) Stats(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	stats, err := c.Service.GetTicketStats(r.Context(), eventID, actor)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	if stats == nil {
		stats = []*domain.TicketStat{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, stats)
}
