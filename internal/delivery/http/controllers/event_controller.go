package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// TicketTypeRequest is a ticket type in event create and update bodies.
// On update, a non-empty id targets an existing ticket type.
type TicketTypeRequest struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	Category         string              `json:"category"`
	Location         string              `json:"location"`
	StartDate        time.Time           `json:"start_date"`
	EndDate          time.Time           `json:"end_date"`
	Capacity         int                 `json:"capacity"`
	RequiresApproval bool                `json:"requires_approval"`
	TicketTypes      []TicketTypeRequest `json:"ticket_types"`
}

// Validate implements Validator. Deep validation happens in the service; this
// catches only the structurally required fields.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(c.Category) == "" {
		errs = append(errs, "category is required")
	}
	if c.StartDate.IsZero() {
		errs = append(errs, "start_date is required")
	}
	if c.EndDate.IsZero() {
		errs = append(errs, "end_date is required")
	}
	if c.Capacity < 1 {
		errs = append(errs, "capacity must be at least 1")
	}
	return errs
}

func ticketTypeInputs(reqs []TicketTypeRequest) []domain.TicketTypeInput {
	if reqs == nil {
		return nil
	}
	out := make([]domain.TicketTypeInput, 0, len(reqs))
	for _, t := range reqs {
		out = append(out, domain.TicketTypeInput{
			ID:       t.ID,
			Name:     t.Name,
			Price:    t.Price,
			Quantity: t.Quantity,
		})
	}
	return out
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// writeEventError maps service errors to the response envelope.
func (c *EventController) writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrForbidden):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create an event in draft status with optional ticket types. The authenticated user becomes the organizer.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event with ticket types"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	input := domain.CreateEventInput{
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		Location:         req.Location,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		Capacity:         req.Capacity,
		RequiresApproval: req.RequiresApproval,
		TicketTypes:      ticketTypeInputs(req.TicketTypes),
	}
	event, err := c.Service.CreateEvent(r.Context(), input, actor.ID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEventsResponse is the data payload for GET /events (200).
type ListEventsResponse struct {
	Items      []*domain.Event  `json:"items"`
	Pagination h.PaginationMeta `json:"pagination"`
}

// ListEvents godoc
// @Summary List events
// @Description Returns a paginated list of events. Optional filters: category, status, and search (title substring, case-insensitive).
// @Tags events
// @Produce json
// @Param category query string false "Filter by category"
// @Param status query string false "Filter by status"
// @Param search query string false "Filter by title substring (case-insensitive)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Category:   strings.TrimSpace(q.Get("category")),
		Search:     strings.TrimSpace(q.Get("search")),
		Status:     domain.EventStatus(strings.TrimSpace(q.Get("status"))),
		Pagination: h.ParsePagination(r),
	}
	events, total, err := c.Service.ListEvents(r.Context(), filter)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	meta := h.NewPaginationMeta(filter.Pagination.Page, filter.Pagination.PageSize, total)
	h.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{Items: events, Pagination: meta})
}

// ListMyEvents godoc
// @Summary List events organized by the current user
// @Description Returns events where the authenticated user is the organizer. Requires Bearer token.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/me [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListMyEvents(r.Context(), actor.ID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the event with its organizer and ticket types.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains event, organizer, and ticket types"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All fields
// optional; omitted fields are unchanged. A non-null ticket_types array replaces
// the ticket type set by id-based merge.
type UpdateEventRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Category    *string             `json:"category"`
	Location    *string             `json:"location"`
	StartDate   *time.Time          `json:"start_date"`
	EndDate     *time.Time          `json:"end_date"`
	Capacity    *int                `json:"capacity"`
	TicketTypes []TicketTypeRequest `json:"ticket_types"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if u.Capacity != nil && *u.Capacity < 1 {
		errs = append(errs, "capacity must be at least 1")
	}
	return errs
}

// UpdateEvent godoc
// @Summary Update event details
// @Description Updates event fields and optionally reconciles ticket types. Only the organizer or an admin can update. Omitted fields are unchanged.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req UpdateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	input := domain.UpdateEventInput{
		EventUpdate: domain.EventUpdate{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			Location:    req.Location,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			Capacity:    req.Capacity,
		},
		TicketTypes: ticketTypeInputs(req.TicketTypes),
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, input, actor)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// EventStatusResponse is the data payload for event state transition endpoints.
type EventStatusResponse struct {
	Status string `json:"status"`
}

// PublishEvent godoc
// @Summary Publish a draft event
// @Description Transitions a draft event to published, opening it for registration. Only the organizer or an admin can publish.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (not draft)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/publish [post]
func (c *EventController) PublishEvent(w http.ResponseWriter, r *http.Request) {
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
	if err := c.Service.PublishEvent(r.Context(), eventID, actor); err != nil {
		c.writeEventError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, EventStatusResponse{Status: "published"})
}

// CancelEvent godoc
// @Summary Cancel an event
// @Description Cancels a draft or published event and notifies confirmed participants. Only the organizer or an admin can cancel.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (not cancellable)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/cancel [post]
func (c *EventController) CancelEvent(w http.ResponseWriter, r *http.Request) {
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
	if err := c.Service.CancelEvent(r.Context(), eventID, actor); err != nil {
		c.writeEventError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, EventStatusResponse{Status: "cancelled"})
}

// DeleteEventResponse is the data payload for DELETE /events/{eventID} (200).
type DeleteEventResponse struct {
	Status string `json:"status"`
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes an event and its associated data. Only the organizer or an admin can delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
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
	if err := c.Service.DeleteEvent(r.Context(), eventID, actor); err != nil {
		c.writeEventError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{Status: "deleted"})
}

// ModerateEventRequest is the request body for POST /admin/events/{eventID}/moderate.
type ModerateEventRequest struct {
	Approve *bool `json:"approve"`
}

// Validate implements Validator.
func (m ModerateEventRequest) Validate() []string {
	if m.Approve == nil {
		return []string{"approve is required"}
	}
	return nil
}

// ModerateEvent godoc
// @Summary Approve or reject an event
// @Description Admin-only moderation verdict. Approving marks the event approved; rejecting marks it rejected and hides it from listings.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body ModerateEventRequest true "Moderation verdict"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not admin)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/moderate [post]
func (c *EventController) ModerateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req ModerateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.ModerateEvent(r.Context(), eventID, *req.Approve, actor); err != nil {
		c.writeEventError(w, r, err)
		return
	}
	verdict := "approved"
	if !*req.Approve {
		verdict = "rejected"
	}
	h.WriteJSONSuccess(w, http.StatusOK, EventStatusResponse{Status: verdict})
}
