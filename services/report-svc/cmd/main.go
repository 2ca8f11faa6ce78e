package main

import (
	"context"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"taskflow/pkg/auth"
	"taskflow/pkg/config"
	"taskflow/pkg/logger"
	"taskflow/pkg/metrics"
	"taskflow/pkg/server"
	"taskflow/services/report-svc/internal/handlers"
	"taskflow/services/report-svc/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	// Метрики
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	}

	// Проверка токенов вызывающего бэкенда
	var jwtManager *auth.JWTManager
	if cfg.Auth.Enabled {
		jwtManager = auth.NewJWTManager(auth.FromConfig(cfg.Auth))
	}

	limiter := server.NewRateLimiter(cfg)

	reportService := service.NewReportService(service.ConfigFrom(cfg, m))
	if m != nil {
		if err := metrics.RegisterService(prometheus.DefaultRegisterer, cfg.Metrics.Namespace, cfg.Metrics.Subsystem, reportService); err != nil {
			logger.Error("Failed to register service collector", "error", err)
		}
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Config:  cfg,
		Service: reportService,
		Limiter: limiter,
		Metrics: m,
		JWT:     jwtManager,
	})

	srv := server.NewWithOptions(cfg, router, &server.ServerOptions{
		RateLimiter: limiter,
		OnShutdown: []func(context.Context) error{
			func(context.Context) error {
				logger.Info("Report service stopped", "reports_generated", reportService.ReportsGenerated())
				return logger.Close()
			},
		},
	})

	logger.Info("Starting report service",
		"port", cfg.HTTP.Port,
		"formats", reportService.Formats(),
		"auth_enabled", jwtManager != nil,
		"rate_limit_enabled", limiter != nil,
	)

	if err := srv.Run(); err != nil {
		logger.Fatal("server failed", "error", err)
	}
}
