// services/report-svc/internal/handlers/response.go
package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"taskflow/pkg/apperror"
	"taskflow/pkg/logger"
	"taskflow/services/report-svc/internal/service"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// writePayload отдаёт документ как вложение
func writePayload(w http.ResponseWriter, p *service.Payload) {
	h := w.Header()
	h.Set("Content-Type", p.MIMEType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": p.Filename}))
	h.Set("Content-Length", strconv.Itoa(len(p.Data)))
	h.Set("X-Report-ID", p.ID.String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(p.Data) //nolint:errcheck // клиент мог закрыть соединение
}

// writeJSON пишет значение как JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Warn("Failed to encode response", "error", err)
	}
}

// writeError пишет ошибку в формате ErrorResponse. Причина внутренних
// ошибок клиенту не отдаётся.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.HTTPStatus(err)
	appErr := apperror.From(err)

	log := logger.WithContext(r.Context(),
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"code", string(appErr.Code),
	)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
	} else {
		log.Warn("Request rejected", "error", err)
	}

	writeJSON(w, status, ErrorResponse{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Field:   appErr.Field,
		Details: appErr.Details,
	})
}
