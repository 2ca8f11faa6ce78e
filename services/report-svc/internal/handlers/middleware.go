// services/report-svc/internal/handlers/middleware.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"taskflow/pkg/apperror"
	"taskflow/pkg/auth"
	"taskflow/pkg/config"
	"taskflow/pkg/logger"
	"taskflow/pkg/metrics"
	"taskflow/pkg/ratelimit"
)

// RequestIDHeader заголовок идентификатора запроса
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

// routePattern шаблон chi маршрута. Заполнен только после роутинга.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// RequestID берёт X-Request-ID вызывающей стороны или создаёт новый
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.ContextWithRequestID(r.Context(), id)))
	})
}

// Logging пишет строку лога на каждый запрос
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		logger.WithContext(r.Context()).Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", routePattern(r),
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"remote", ratelimit.ClientIP(r),
		)
	})
}

// Metrics учитывает запросы в prometheus
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer metrics.TrackInFlight(m.HTTPRequestsInFlight)()

			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			route := routePattern(r)
			if route == "" {
				route = "unmatched"
			}
			m.RecordHTTPRequest(r.Method, route, status, time.Since(start))
		})
	}
}

// CORS отвечает на preflight и проставляет заголовки для разрешённых origin
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")

	allowed := func(origin string) bool {
		for _, o := range cfg.AllowedOrigins {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !allowed(origin) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Origin", origin)
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if exposed != "" {
				h.Set("Access-Control-Expose-Headers", exposed)
			}

			// Preflight
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				if cfg.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit ограничивает запросы по IP клиента
func RateLimit(l ratelimit.Limiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	reject := func(w http.ResponseWriter, r *http.Request, d ratelimit.Decision, _ error) {
		if m != nil {
			route := routePattern(r)
			if route == "" {
				route = "unmatched"
			}
			m.RecordRateLimited(route)
		}
		writeError(w, r, apperror.New(apperror.CodeRateLimited, "too many requests").
			WithDetails("limit", d.Limit).
			WithDetails("retryAfterSeconds", ratelimit.RetryAfterSeconds(d)))
	}

	onError := func(r *http.Request, err error) {
		logger.WithContext(r.Context()).Warn("Rate limiter unavailable, request allowed", "error", err)
	}

	return ratelimit.Middleware(l, ratelimit.ClientIP, reject, onError)
}

// Authenticate проверяет bearer токен вызывающего бэкенда
func Authenticate(jwt *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				writeError(w, r, err)
				return
			}

			claims, err := jwt.ValidateToken(token)
			if err != nil {
				writeError(w, r, err)
				return
			}

			logger.WithContext(r.Context()).Debug("Caller authenticated", "subject", claims.UserID, "role", claims.Role)
			next.ServeHTTP(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
		})
	}
}
