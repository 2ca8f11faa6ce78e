package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics метрики HTTP слоя и генерации отчётов
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	RateLimitedTotal     *prometheus.CounterVec

	ReportsGeneratedTotal    *prometheus.CounterVec
	ReportGenerationDuration *prometheus.HistogramVec
	ReportSizeBytes          *prometheus.HistogramVec
	ReportTableRows          *prometheus.HistogramVec
}

var (
	latencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	sizeBuckets    = prometheus.ExponentialBuckets(1024, 4, 8) // 1 KiB .. 16 MiB
	rowBuckets     = []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000}
)

// InitMetrics регистрирует метрики в prometheus.DefaultRegisterer
func InitMetrics(namespace, subsystem string) *Metrics {
	return New(prometheus.DefaultRegisterer, namespace, subsystem)
}

// New регистрирует метрики в reg; повторная регистрация тех же имён паникует
func New(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	f := promauto.With(reg)
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Subsystem: subsystem, Name: name, Help: help}, labels)
	}
	histogram := func(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
		return f.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets}, labels)
	}

	return &Metrics{
		HTTPRequestsTotal:   counter("http_requests_total", "HTTP requests by route and status", "method", "route", "status"),
		HTTPRequestDuration: histogram("http_request_duration_seconds", "HTTP request latency", latencyBuckets, "method", "route"),
		HTTPRequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served",
		}),
		RateLimitedTotal: counter("rate_limited_total", "Requests rejected by the rate limiter", "route"),

		ReportsGeneratedTotal:    counter("reports_generated_total", "Report generation attempts by outcome", "report", "format", "status"),
		ReportGenerationDuration: histogram("report_generation_duration_seconds", "Time spent rendering a document", latencyBuckets[:10], "report", "format"),
		ReportSizeBytes:          histogram("report_size_bytes", "Size of rendered documents", sizeBuckets, "format"),
		ReportTableRows:          histogram("report_table_rows", "Table rows per rendered document", rowBuckets, "report"),
	}
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) RecordRateLimited(route string) {
	m.RateLimitedTotal.WithLabelValues(route).Inc()
}

// RecordReport учитывает попытку; размер и строки только для успешных
func (m *Metrics) RecordReport(report, format string, success bool, sizeBytes, rows int) {
	if !success {
		m.ReportsGeneratedTotal.WithLabelValues(report, format, "error").Inc()
		return
	}
	m.ReportsGeneratedTotal.WithLabelValues(report, format, "success").Inc()
	m.ReportSizeBytes.WithLabelValues(format).Observe(float64(sizeBytes))
	m.ReportTableRows.WithLabelValues(report).Observe(float64(rows))
}

// Handler экспозиция prometheus.DefaultGatherer
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewMetricsServer отдельный листенер для /metrics, когда metrics.port задан
func NewMetricsServer(port int, path string) *http.Server {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle("GET "+path, Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK"))
	})

	return &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}
