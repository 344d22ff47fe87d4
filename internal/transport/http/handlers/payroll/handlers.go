package payrollhandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrmpay/internal/domain/auth"
	"hrmpay/internal/domain/payroll"
	"hrmpay/internal/transport/http/api"
	"hrmpay/internal/transport/http/middleware"
	"hrmpay/internal/transport/http/shared"
)

type Handler struct {
	Service       *payroll.Service
	Logger        *slog.Logger
	DownloadLimit int
}

func NewHandler(service *payroll.Service, logger *slog.Logger, downloadLimit int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Service: service, Logger: logger, DownloadLimit: downloadLimit}
}

type generateRequest struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	Month      int    `json:"month" validate:"required,min=1,max=12"`
	Year       int    `json:"year" validate:"required,min=1,max=9999"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payslips", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.With(middleware.RequireAdmin).Post("/generate", h.handleGenerate)
		r.With(middleware.RequireAdmin).Get("/export", h.handleExport)
		r.Get("/{payslipID}", h.handleGet)
		r.With(middleware.RequireAdmin).Patch("/{payslipID}/publish", h.handlePublish)
		r.With(middleware.RateLimit(h.DownloadLimit, time.Minute)).Get("/{payslipID}/download", h.handleDownload)
	})
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetIdentity(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload generateRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.EmployeeID = strings.TrimSpace(payload.EmployeeID)
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, requestID) {
		return
	}

	payslip, err := h.Service.Generate(r.Context(), caller, payload.EmployeeID, payload.Month, payload.Year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Created(w, payslip, requestID)
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetIdentity(r.Context())
	payslip, err := h.Service.Publish(r.Context(), caller, chi.URLParam(r, "payslipID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, payslip, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetIdentity(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	v := shared.NewValidator()
	filter := payroll.Filter{
		Month: v.OptionalInt("month", query.Get("month")),
		Year:  v.OptionalInt("year", query.Get("year")),
	}
	if employeeID := strings.TrimSpace(query.Get("employeeId")); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := payroll.ParseStatus(raw)
		if err != nil {
			v.Add("status", "must be DRAFT or PUBLISHED")
		} else {
			filter.Status = &status
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	payslips, err := h.Service.List(r.Context(), caller, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, payslips, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetIdentity(r.Context())
	payslip, err := h.Service.Get(r.Context(), caller, chi.URLParam(r, "payslipID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, payslip, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetIdentity(r.Context())
	doc, err := h.Service.RenderDocument(r.Context(), caller, chi.URLParam(r, "payslipID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Attachment(w, doc.ContentType, doc.Filename, doc.Body)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetIdentity(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	v := shared.NewValidator()
	month := v.OptionalInt("month", query.Get("month"))
	year := v.OptionalInt("year", query.Get("year"))
	if month == nil && !v.HasIssues() {
		v.Add("month", "is required")
	}
	if year == nil && !v.HasIssues() {
		v.Add("year", "is required")
	}
	if v.Reject(w, requestID) {
		return
	}

	doc, err := h.Service.ExportRegister(r.Context(), caller, *month, *year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Attachment(w, doc.ContentType, doc.Filename, doc.Body)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, payroll.ErrInvalidPeriod):
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), requestID)
	case errors.Is(err, payroll.ErrInvalidSalary):
		api.Fail(w, http.StatusBadRequest, "invalid_salary", err.Error(), requestID)
	case errors.Is(err, payroll.ErrInvalidInput):
		api.Fail(w, http.StatusBadRequest, "invalid_input", err.Error(), requestID)
	case errors.Is(err, payroll.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, payroll.ErrUnauthorized):
		api.Fail(w, http.StatusForbidden, "admin_required", "administrative capability required", requestID)
	case errors.Is(err, payroll.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
	case errors.Is(err, context.DeadlineExceeded):
		h.Logger.WarnContext(r.Context(), "payslip request timed out", "path", r.URL.Path, "requestId", requestID)
		api.Fail(w, http.StatusServiceUnavailable, "timeout", "request timed out", requestID)
	case errors.Is(err, auth.ErrInvalidToken):
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
	default:
		h.Logger.ErrorContext(r.Context(), "payslip request failed",
			"err", err,
			"method", r.Method,
			"path", r.URL.Path,
			"requestId", requestID,
		)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request could not be completed", requestID)
	}
}
