package telemetry

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// RouteFunc возвращает шаблон маршрута запроса для имени span
type RouteFunc func(r *http.Request) string

// HTTPMiddleware создаёт middleware для трейсинга HTTP запросов.
// Контекст трейса извлекается из заголовков вызывающей стороны.
func HTTPMiddleware(route RouteFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := StartSpan(ctx, r.Method+" "+routeName(r, route),
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			span.SetAttributes(attribute.String(AttrHTTPMethod, r.Method))

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			req := r.WithContext(ctx)
			next.ServeHTTP(sw, req)

			// Шаблон маршрута известен только после роутинга
			name := routeName(req, route)
			span.SetName(r.Method + " " + name)
			span.SetAttributes(
				attribute.String(AttrHTTPRoute, name),
				attribute.Int(AttrHTTPStatus, sw.status),
			)
			if sw.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(sw.status))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}

func routeName(r *http.Request, route RouteFunc) string {
	if route != nil {
		if rt := route(r); rt != "" {
			return rt
		}
	}
	return r.URL.Path
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
