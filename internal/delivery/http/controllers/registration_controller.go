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

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *RegistrationController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrEventNotAvailable):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "event is not open for registration")
	case errors.Is(err, domain.ErrEventFull):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "event is full")
	case errors.Is(err, domain.ErrAlreadyRegistered):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "already registered for this event")
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
	}
}

// Register godoc
// @Summary Register for an event
// @Description Registers the authenticated user for a published event. When the event requires approval the registration starts pending; otherwise it is confirmed and occupies a seat.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} helpers.APIResponse "data contains the registration"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (full, closed, or duplicate)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
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
	reg, err := c.Service.RegisterForEvent(r.Context(), eventID, actor.ID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// CancelResponse is the data payload for registration cancellation (200).
type CancelResponse struct {
	Status string `json:"status"`
}

// Cancel godoc
// @Summary Cancel own registration
// @Description Cancels the authenticated user's registration for the event, freeing the seat if it was confirmed. Not allowed once the event has started.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (event started)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations/me [delete]
func (c *RegistrationController) Cancel(w http.ResponseWriter, r *http.Request) {
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
	if err := c.Service.CancelRegistration(r.Context(), eventID, actor.ID); err != nil {
		c.writeError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, CancelResponse{Status: "cancelled"})
}

// Approve godoc
// @Summary Approve a pending registration
// @Description Confirms a pending registration, occupying a seat. Only the organizer or an admin can approve.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param userID path string true "User ID (UUID) of the registrant"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no pending registration)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event full)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations/{userID}/approve [post]
func (c *RegistrationController) Approve(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	userID := r.PathValue("userID")
	if eventID == "" || userID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID or userID")
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.ApproveRegistration(r.Context(), eventID, userID, actor); err != nil {
		c.writeError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, CancelResponse{Status: "confirmed"})
}

// RejectRequest is the request body for rejecting a registration.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Validate implements Validator.
func (rr RejectRequest) Validate() []string {
	if len(rr.Reason) > 500 {
		return []string{"reason cannot exceed 500 characters"}
	}
	return nil
}

// Reject godoc
// @Summary Reject a pending registration
// @Description Rejects a pending registration with an optional reason. Only the organizer or an admin can reject.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param userID path string true "User ID (UUID) of the registrant"
// @Param body body RejectRequest true "Rejection reason (optional)"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no pending registration)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations/{userID}/reject [post]
func (c *RegistrationController) Reject(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	userID := r.PathValue("userID")
	if eventID == "" || userID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID or userID")
		return
	}
	var req RejectRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.RejectRegistration(r.Context(), eventID, userID, strings.TrimSpace(req.Reason), actor); err != nil {
		c.writeError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, CancelResponse{Status: "rejected"})
}

// ListParticipantsResponse is the data payload for GET /events/{eventID}/registrations (200).
type ListParticipantsResponse struct {
	Items      []*domain.RegistrationWithUser `json:"items"`
	Pagination h.PaginationMeta               `json:"pagination"`
}

// ListParticipants godoc
// @Summary List registrations for an event
// @Description Returns a paginated list of registrations with participant profiles. Optional status filter. Only the organizer or an admin can list.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param status query string false "Filter by registration status"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [get]
func (c *RegistrationController) ListParticipants(w http.ResponseWriter, r *http.Request) {
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
	status := domain.RegistrationStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	params := h.ParsePagination(r)
	regs, total, err := c.Service.ListParticipants(r.Context(), eventID, actor, status, params)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	if regs == nil {
		regs = []*domain.RegistrationWithUser{}
	}
	meta := h.NewPaginationMeta(params.Page, params.PageSize, total)
	h.WriteJSONSuccess(w, http.StatusOK, ListParticipantsResponse{Items: regs, Pagination: meta})
}

// ListMine godoc
// @Summary List the current user's registrations
// @Description Returns the authenticated user's registrations together with their events.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of registrations with events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/me [get]
func (c *RegistrationController) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	regs, err := c.Service.ListMyEvents(r.Context(), actor.ID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	if regs == nil {
		regs = []*domain.RegistrationWithEvent{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, regs)
}

// Capacity godoc
// @Summary Get an event's capacity snapshot
// @Description Returns total capacity, current confirmed participants, and remaining seats.
// @Tags registrations
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the capacity snapshot"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/capacity [get]
func (c *RegistrationController) Capacity(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	snapshot, err := c.Service.EventCapacity(r.Context(), eventID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, snapshot)
}
