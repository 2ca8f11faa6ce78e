// services/report-svc/factory.go
package reportsvc

import (
	"net/http"

	"taskflow/pkg/config"
	"taskflow/services/report-svc/internal/generator"
	"taskflow/services/report-svc/internal/handlers"
	"taskflow/services/report-svc/internal/service"
)

// NewBenchmarkService создаёт сервис со стандартными рендерерами без метрик.
func NewBenchmarkService() *service.ReportService {
	return service.NewReportService(service.ServiceConfig{
		Version: "benchmark",
		PDF:     generator.DefaultPDFConfig(),
		Excel:   generator.DefaultExcelConfig(),
	})
}

// NewBenchmarkHandler создаёт HTTP обработчик без лимитов и авторизации.
func NewBenchmarkHandler() http.Handler {
	return handlers.NewRouter(handlers.RouterDeps{
		Config: &config.Config{
			App: config.AppConfig{Name: "report-svc", Version: "benchmark"},
			Report: config.ReportConfig{
				DefaultTitle:    "Benchmark Report",
				MaxRequestBytes: 64 << 20,
			},
		},
		Service: NewBenchmarkService(),
	})
}
