// services/report-svc/internal/handlers/router.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"taskflow/pkg/apperror"
	"taskflow/pkg/auth"
	"taskflow/pkg/config"
	"taskflow/pkg/logger"
	"taskflow/pkg/metrics"
	"taskflow/pkg/ratelimit"
	"taskflow/pkg/swagger"
	"taskflow/pkg/telemetry"
	"taskflow/services/report-svc/api"
)

// RouterDeps зависимости HTTP слоя
type RouterDeps struct {
	Config  *config.Config
	Service ReportGenerator
	// Limiter nil - без ограничения запросов
	Limiter ratelimit.Limiter
	// Metrics nil - без метрик
	Metrics *metrics.Metrics
	// JWT nil - без проверки токенов
	JWT *auth.JWTManager
}

// NewRouter собирает chi роутер сервиса
func NewRouter(deps RouterDeps) http.Handler {
	cfg := deps.Config
	h := NewReportHandler(deps.Service, cfg.Report)

	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(Logging)
	if deps.Metrics != nil {
		r.Use(Metrics(deps.Metrics))
	}
	if cfg.Tracing.Enabled {
		r.Use(telemetry.HTTPMiddleware(routePattern))
	}
	if cfg.HTTP.CORS.Enabled {
		r.Use(CORS(cfg.HTTP.CORS))
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, apperror.New(apperror.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
			Code:    "METHOD_NOT_ALLOWED",
			Message: req.Method + " is not allowed on " + req.URL.Path,
		})
	})

	// Метрики с основного порта, если отдельный не задан
	if cfg.Metrics.Enabled && cfg.Metrics.Port == 0 {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, metrics.Handler())
	}

	if cfg.Docs.Enabled {
		mountDocs(r, cfg.Docs, cfg.App.Version)
	}

	r.Route("/api/report", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			if deps.Limiter != nil {
				r.Use(RateLimit(deps.Limiter, deps.Metrics))
			}
			if deps.JWT != nil {
				r.Use(Authenticate(deps.JWT))
			}

			r.Post("/tasks/pdf", h.TasksPDF)
			r.Post("/tasks/excel", h.TasksExcel)
			r.Post("/tasks/export", h.TasksExport)
			r.Post("/user-summary/pdf", h.UserSummaryPDF)
			r.Post("/user-summary/excel", h.UserSummaryExcel)
		})
	})

	return r
}

// mountDocs подключает Swagger UI и OpenAPI документ
func mountDocs(r chi.Router, cfg config.DocsConfig, version string) {
	docsCfg := swagger.DefaultConfig()
	if cfg.BasePath != "" {
		docsCfg.BasePath = strings.TrimSuffix(cfg.BasePath, "/")
	}
	if cfg.Title != "" {
		docsCfg.Title = cfg.Title
	}

	spec, err := api.Spec(version)
	if err != nil {
		logger.Error("Swagger UI disabled", "error", err)
		return
	}
	h, err := swagger.NewHandler(docsCfg, spec)
	if err != nil {
		logger.Error("Swagger UI disabled", "error", err)
		return
	}

	r.Handle(docsCfg.BasePath, h)
	r.Handle(docsCfg.BasePath+"/*", h)
}
