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

type ReportController struct {
	Logger  *slog.Logger
	Service domain.ReportService
}

func NewReportController(logger *slog.Logger, svc domain.ReportService) *ReportController {
	return &ReportController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *ReportController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrDuplicateReport):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "an open report for this event already exists")
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
	}
}

// CreateReportRequest is the request body for POST /events/{eventID}/reports.
type CreateReportRequest struct {
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// Validate implements Validator.
func (cr CreateReportRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(cr.Reason) == "" {
		errs = append(errs, "reason is required")
	}
	return errs
}

// Create godoc
// @Summary Report an event
// @Description Files an abuse report against an event. A reporter can hold at most one open report per event.
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body CreateReportRequest true "Report reason and description"
// @Success 201 {object} helpers.APIResponse "data contains the created report"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (open report exists)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/reports [post]
func (c *ReportController) Create(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req CreateReportRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	report, err := c.Service.CreateReport(r.Context(), eventID, actor.ID, req.Reason, req.Description)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, report)
}

// ListReportsResponse is the data payload for GET /admin/reports (200).
type ListReportsResponse struct {
	Items      []*domain.Report `json:"items"`
	Pagination h.PaginationMeta `json:"pagination"`
}

// List godoc
// @Summary List abuse reports
// @Description Returns a paginated list of reports, optionally filtered by status. Admin only.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by report status"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not admin)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/reports [get]
func (c *ReportController) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	status := domain.ReportStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	params := h.ParsePagination(r)
	reports, total, err := c.Service.ListReports(r.Context(), actor, status, params)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	if reports == nil {
		reports = []*domain.Report{}
	}
	meta := h.NewPaginationMeta(params.Page, params.PageSize, total)
	h.WriteJSONSuccess(w, http.StatusOK, ListReportsResponse{Items: reports, Pagination: meta})
}

// Get godoc
// @Summary Get a report by ID
// @Description Returns a single report. Admin only.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param reportID path string true "Report ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the report"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not admin)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/reports/{reportID} [get]
func (c *ReportController) Get(w http.ResponseWriter, r *http.Request) {
	reportID := r.PathValue("reportID")
	if reportID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing reportID")
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	report, err := c.Service.GetReport(r.Context(), reportID, actor)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, report)
}

// ReviewReportRequest is the request body for POST /admin/reports/{reportID}/review.
type ReviewReportRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
	Action     string `json:"action"` // optional: "none", "event_removed", "user_blocked"
}

// Validate implements Validator.
func (rr ReviewReportRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(rr.Status) == "" {
		errs = append(errs, "status is required")
	}
	return errs
}

// Review godoc
// @Summary Review a report
// @Description Records the admin verdict on a report, optionally removing the event or blocking the organizer. Admin only.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reportID path string true "Report ID (UUID)"
// @Param body body ReviewReportRequest true "Review decision"
// @Success 200 {object} helpers.APIResponse "data contains the reviewed report"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not admin)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/reports/{reportID}/review [post]
func (c *ReportController) Review(w http.ResponseWriter, r *http.Request) {
	reportID := r.PathValue("reportID")
	if reportID == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "missing reportID")
		return
	}
	var req ReviewReportRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	review := domain.ReportReview{
		Status:     domain.ReportStatus(strings.TrimSpace(req.Status)),
		AdminNotes: strings.TrimSpace(req.AdminNotes),
		Action:     strings.TrimSpace(req.Action),
	}
	report, err := c.Service.ReviewReport(r.Context(), reportID, review, actor)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, report)
}
