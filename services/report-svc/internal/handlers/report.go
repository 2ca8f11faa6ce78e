// services/report-svc/internal/handlers/report.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"taskflow/pkg/config"
	"taskflow/services/report-svc/internal/builder"
	"taskflow/services/report-svc/internal/generator"
	"taskflow/services/report-svc/internal/service"
)

// healthLayout формат времени в ответе health
const healthLayout = "2006-01-02T15:04:05.000"

// ReportGenerator генерация отчётов
type ReportGenerator interface {
	TaskListing(ctx context.Context, req builder.TaskListingRequest, format generator.Format) (*service.Payload, error)
	TaskExport(ctx context.Context, req builder.TaskListingRequest, format generator.Format) (*service.Payload, error)
	UserSummary(ctx context.Context, req builder.UserSummaryRequest, format generator.Format) (*service.Payload, error)
	ReportsGenerated() int64
	Version() string
}

// ReportHandler HTTP обработчики отчётов
type ReportHandler struct {
	svc      ReportGenerator
	validate *validator.Validate
	cfg      config.ReportConfig
	started  time.Time
	now      func() time.Time
}

// HealthResponse расширенный ответ health
type HealthResponse struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	Uptime           string `json:"uptime"`
	ReportsGenerated int64  `json:"reportsGenerated"`
	Timestamp        string `json:"timestamp"`
}

// NewReportHandler создаёт обработчики
func NewReportHandler(svc ReportGenerator, cfg config.ReportConfig) *ReportHandler {
	return &ReportHandler{
		svc:      svc,
		validate: newValidator(),
		cfg:      cfg,
		started:  time.Now(),
		now:      time.Now,
	}
}

// Health проверка доступности. С Accept: application/json отдаёт JSON.
func (h *ReportHandler) Health(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:           "ok",
			Version:          h.svc.Version(),
			Uptime:           now.Sub(h.started).Truncate(time.Second).String(),
			ReportsGenerated: h.svc.ReportsGenerated(),
			Timestamp:        now.Format(healthLayout),
		})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Report Service is running - " + now.Format(healthLayout))) //nolint:errcheck // health endpoint
}

// TasksPDF POST /api/report/tasks/pdf
func (h *ReportHandler) TasksPDF(w http.ResponseWriter, r *http.Request) {
	h.taskListing(w, r, generator.FormatPDF)
}

// TasksExcel POST /api/report/tasks/excel
func (h *ReportHandler) TasksExcel(w http.ResponseWriter, r *http.Request) {
	h.taskListing(w, r, generator.FormatExcel)
}

// TasksExport POST /api/report/tasks/export?format=xlsx|pdf
func (h *ReportHandler) TasksExport(w http.ResponseWriter, r *http.Request) {
	format := generator.FormatExcel
	if raw := r.URL.Query().Get("format"); raw != "" {
		f, err := generator.ParseFormat(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		format = f
	}

	req, err := h.decodeListing(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	payload, err := h.svc.TaskExport(ctx, req, format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePayload(w, payload)
}

// UserSummaryPDF POST /api/report/user-summary/pdf
func (h *ReportHandler) UserSummaryPDF(w http.ResponseWriter, r *http.Request) {
	h.userSummary(w, r, generator.FormatPDF)
}

// UserSummaryExcel POST /api/report/user-summary/excel
func (h *ReportHandler) UserSummaryExcel(w http.ResponseWriter, r *http.Request) {
	h.userSummary(w, r, generator.FormatExcel)
}

func (h *ReportHandler) taskListing(w http.ResponseWriter, r *http.Request, format generator.Format) {
	req, err := h.decodeListing(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	payload, err := h.svc.TaskListing(ctx, req, format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePayload(w, payload)
}

func (h *ReportHandler) userSummary(w http.ResponseWriter, r *http.Request, format generator.Format) {
	var req builder.UserSummaryRequest
	if err := decodeJSON(w, r, h.cfg.MaxRequestBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateRequest(h.validate, req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	payload, err := h.svc.UserSummary(ctx, req, format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePayload(w, payload)
}

func (h *ReportHandler) decodeListing(w http.ResponseWriter, r *http.Request) (builder.TaskListingRequest, error) {
	var req builder.TaskListingRequest
	if err := decodeJSON(w, r, h.cfg.MaxRequestBytes, &req); err != nil {
		return req, err
	}

	// Пустой заголовок заменяется заголовком по умолчанию
	if strings.TrimSpace(req.Title) == "" {
		req.Title = h.cfg.DefaultTitle
	}

	if err := validateRequest(h.validate, req); err != nil {
		return req, err
	}
	return req, nil
}

func (h *ReportHandler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.cfg.Timeout)
}
