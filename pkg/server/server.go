package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"taskflow/pkg/config"
	"taskflow/pkg/logger"
	"taskflow/pkg/metrics"
	"taskflow/pkg/ratelimit"
	"taskflow/pkg/telemetry"
)

// HTTPServer обёртка над http.Server с graceful shutdown
type HTTPServer struct {
	server        *http.Server
	metricsServer *http.Server
	serviceName   string
	config        *config.Config
	stopTracing   telemetry.ShutdownFunc
	rateLimiter   ratelimit.Limiter
	onShutdown    []func(ctx context.Context) error
}

// ServerOptions дополнительные опции сервера
type ServerOptions struct {
	// RateLimiter закрывается при остановке сервера
	RateLimiter ratelimit.Limiter
	// OnShutdown вызываются после остановки приёма запросов
	OnShutdown []func(ctx context.Context) error
}

// New создаёт новый HTTP сервер
func New(cfg *config.Config, handler http.Handler) *HTTPServer {
	return NewWithOptions(cfg, handler, nil)
}

// NewWithOptions создаёт сервер с дополнительными опциями
func NewWithOptions(cfg *config.Config, handler http.Handler, opts *ServerOptions) *HTTPServer {
	if opts == nil {
		opts = &ServerOptions{}
	}

	// h2c позволяет HTTP/2 без TLS внутри кластера
	if cfg.HTTP.EnableH2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	s := &HTTPServer{
		server: &http.Server{
			Addr:              cfg.HTTP.Address(),
			Handler:           handler,
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
			IdleTimeout:       cfg.HTTP.IdleTimeout,
		},
		serviceName: cfg.App.Name,
		config:      cfg,
		rateLimiter: opts.RateLimiter,
		onShutdown:  opts.OnShutdown,
	}

	// Метрики на отдельном порту, если он задан
	if cfg.Metrics.Enabled && cfg.Metrics.Port != 0 {
		s.metricsServer = metrics.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	return s
}

// NewRateLimiter создаёт лимитер по конфигурации. nil - ограничение выключено
// или бэкенд недоступен.
func NewRateLimiter(cfg *config.Config) ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}

	limiter, err := ratelimit.New(ratelimit.Config{
		Requests:        cfg.RateLimit.Requests,
		Window:          cfg.RateLimit.Window,
		Strategy:        cfg.RateLimit.Strategy,
		Backend:         cfg.RateLimit.Backend,
		BurstSize:       cfg.RateLimit.BurstSize,
		CleanupInterval: cfg.RateLimit.CleanupInterval,
		RedisAddr:       cfg.RateLimit.RedisAddr,
		RedisPassword:   cfg.RateLimit.RedisPassword,
		RedisDB:         cfg.RateLimit.RedisDB,
	})
	if err != nil {
		logger.Log.Warn("Failed to create rate limiter, continuing without it", "error", err)
		return nil
	}

	logger.Log.Info("Rate limiter initialized",
		"requests", cfg.RateLimit.Requests,
		"window", cfg.RateLimit.Window,
		"strategy", cfg.RateLimit.Strategy,
		"backend", cfg.RateLimit.Backend,
	)
	return limiter
}

// GetEngine возвращает *http.Server
func (s *HTTPServer) GetEngine() *http.Server {
	return s.server
}

// Run запускает сервер и блокируется до сигнала остановки
func (s *HTTPServer) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.RunContext(ctx)
}

// RunContext запускает сервер и останавливает его при отмене контекста
func (s *HTTPServer) RunContext(ctx context.Context) error {
	// Используем ListenConfig с контекстом вместо net.Listen
	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	return s.Serve(ctx, lis)
}

// Serve обслуживает запросы на готовом listener
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	if s.config.Tracing.Enabled {
		stop, err := telemetry.Setup(ctx, telemetry.FromConfig(s.config))
		if err != nil {
			logger.Log.Warn("Failed to init telemetry", "error", err)
		} else {
			s.stopTracing = stop
			logger.Log.Info("Telemetry initialized",
				"endpoint", s.config.Tracing.Endpoint,
				"sample_rate", s.config.Tracing.SampleRate,
			)
		}
	}

	if s.metricsServer != nil {
		go func() {
			logger.Log.Info("Starting metrics server",
				"port", s.config.Metrics.Port,
				"path", s.config.Metrics.Path,
			)
			if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Error("Metrics server failed", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Log.Info("Starting HTTP server",
			"service", s.serviceName,
			"addr", lis.Addr().String(),
			"h2c", s.config.HTTP.EnableH2C,
			"environment", s.config.App.Environment,
			"version", s.config.App.Version,
		)
		if err := s.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	return s.waitForShutdown(ctx, errCh)
}

func (s *HTTPServer) waitForShutdown(ctx context.Context, errCh chan error) error {
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Log.Info("Received shutdown signal", "reason", context.Cause(ctx))
	}

	timeout := s.config.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var result error
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn("Forcing server stop", "error", err)
		_ = s.server.Close()
		result = err
	} else {
		logger.Log.Info("Server stopped gracefully")
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Warn("Failed to shutdown metrics server", "error", err)
		}
	}

	for _, hook := range s.onShutdown {
		if err := hook(shutdownCtx); err != nil {
			logger.Log.Warn("Shutdown hook failed", "error", err)
		}
	}

	if s.stopTracing != nil {
		if err := s.stopTracing(shutdownCtx); err != nil {
			logger.Log.Warn("Failed to shutdown telemetry", "error", err)
		}
	}

	if s.rateLimiter != nil {
		if err := s.rateLimiter.Close(); err != nil {
			logger.Log.Warn("Failed to close rate limiter", "error", err)
		}
	}

	return result
}
