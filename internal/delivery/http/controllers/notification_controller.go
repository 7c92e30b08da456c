package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	h "eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
	"eventhub/internal/realtime"
)

const streamHeartbeat = 30 * time.Second

type NotificationController struct {
	Logger   *slog.Logger
	Service  domain.NotificationService
	Registry *realtime.Registry
}

func NewNotificationController(logger *slog.Logger, svc domain.NotificationService, registry *realtime.Registry) *NotificationController {
	return &NotificationController{
		Logger:   logger,
		Service:  svc,
		Registry: registry,
	}
}

// ListNotificationsResponse is the data payload for GET /notifications (200).
type ListNotificationsResponse struct {
	Items      []*domain.Notification `json:"items"`
	Pagination h.PaginationMeta       `json:"pagination"`
}

// List godoc
// @Summary List the current user's notifications
// @Description Returns a paginated list of notifications, newest first. Pass unread=true to list only unread ones.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread notifications"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications [get]
func (c *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"
	params := h.ParsePagination(r)
	notifications, total, err := c.Service.ListMy(r.Context(), actor.ID, unreadOnly, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
		return
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}
	meta := h.NewPaginationMeta(params.Page, params.PageSize, total)
	h.WriteJSONSuccess(w, http.StatusOK, ListNotificationsResponse{Items: notifications, Pagination: meta})
}

// MarkReadResponse is the data payload for notification read endpoints.
type MarkReadResponse struct {
	Status string `json:"status"`
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Description Marks one of the current user's notifications as read.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param notificationID path string true "Notification ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications/{notificationID}/read [post]
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID := r.PathValue("notificationID")
	if notificationID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing notificationID")
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.MarkRead(r.Context(), notificationID, actor.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "notification not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, MarkReadResponse{Status: "read"})
}

// MarkAllRead godoc
// @Summary Mark all notifications as read
// @Description Marks every unread notification of the current user as read.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications/read-all [post]
func (c *NotificationController) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.MarkAllRead(r.Context(), actor.ID); err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, MarkReadResponse{Status: "read"})
}

// UnreadCountResponse is the data payload for GET /notifications/unread-count (200).
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// UnreadCount godoc
// @Summary Count unread notifications
// @Description Returns the number of unread notifications for the current user.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the count"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications/unread-count [get]
func (c *NotificationController) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	count, err := c.Service.UnreadCount(r.Context(), actor.ID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, UnreadCountResponse{Count: count})
}

// Stream godoc
// @Summary Stream notifications in real time
// @Description Opens a server-sent events stream delivering the current user's notifications as they arrive. Heartbeat comments keep the connection alive.
// @Tags notifications
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {string} string "SSE stream of notification events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /notifications/stream [get]
func (c *NotificationController) Stream(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	session := c.Registry.Connect(actor.ID)
	defer session.Close()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case event, open := <-session.C:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				c.Logger.Warn("stream marshal failed", "user_id", actor.ID, "err", err)
				continue
			}
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
