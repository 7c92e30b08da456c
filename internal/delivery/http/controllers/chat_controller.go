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

type ChatController struct {
	Logger  *slog.Logger
	Service domain.ChatService
}

func NewChatController(logger *slog.Logger, svc domain.ChatService) *ChatController {
	return &ChatController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *ChatController) writeError(w http.ResponseWriter, r *http.Request, err error) {
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

// PostMessageRequest is the request body for POST /events/{eventID}/messages.
type PostMessageRequest struct {
	Content string `json:"content"`
}

// Validate implements Validator.
func (p PostMessageRequest) Validate() []string {
	if strings.TrimSpace(p.Content) == "" {
		return []string{"content is required"}
	}
	return nil
}

// Post godoc
// @Summary Post a message to an event's chat room
// @Description Posts a message in the event's room. Requires event ownership or a confirmed registration.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body PostMessageRequest true "Message content"
// @Success 201 {object} helpers.APIResponse "data contains the message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (no access to room)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/messages [post]
func (c *ChatController) Post(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req PostMessageRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	msg, err := c.Service.PostMessage(r.Context(), eventID, actor, req.Content)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, msg)
}

// ListMessagesResponse is the data payload for GET /events/{eventID}/messages (200).
type ListMessagesResponse struct {
	Items      []*domain.MessageWithUser `json:"items"`
	Pagination h.PaginationMeta          `json:"pagination"`
}

// List godoc
// @Summary List an event's chat messages
// @Description Returns a paginated list of messages with author profiles, newest first. Requires event ownership or a confirmed registration.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (no access to room)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/messages [get]
func (c *ChatController) List(w http.ResponseWriter, r *http.Request) {
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
	params := h.ParsePagination(r)
	messages, total, err := c.Service.ListMessages(r.Context(), eventID, actor, params)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	if messages == nil {
		messages = []*domain.MessageWithUser{}
	}
	meta := h.NewPaginationMeta(params.Page, params.PageSize, total)
	h.WriteJSONSuccess(w, http.StatusOK, ListMessagesResponse{Items: messages, Pagination: meta})
}
