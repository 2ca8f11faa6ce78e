// services/report-svc/internal/service/report.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"taskflow/pkg/apperror"
	"taskflow/pkg/auth"
	"taskflow/pkg/config"
	"taskflow/pkg/logger"
	"taskflow/pkg/metrics"
	"taskflow/pkg/telemetry"
	"taskflow/services/report-svc/internal/builder"
	"taskflow/services/report-svc/internal/document"
	"taskflow/services/report-svc/internal/generator"
)

var startTime = time.Now()

// Kind вид отчёта
type Kind string

const (
	KindTaskListing Kind = "task_listing"
	KindTaskExport  Kind = "task_export"
	KindUserSummary Kind = "user_summary"
)

// timestampLayout формат отметки времени в имени файла
const timestampLayout = "20060102-150405"

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Payload готовый документ для выдачи клиенту
type Payload struct {
	ID        uuid.UUID
	Kind      Kind
	Format    generator.Format
	Data      []byte
	MIMEType  string
	Extension string
	Filename  string
	Rows      int
}

// ReportService собирает модель документа и кодирует её в нужный формат
type ReportService struct {
	version          string
	reportsGenerated atomic.Int64
	renderers        map[generator.Format]generator.Renderer
	metrics          *metrics.Metrics
	now              func() time.Time
}

// ServiceConfig конфигурация сервиса
type ServiceConfig struct {
	Version string
	PDF     generator.PDFConfig
	Excel   generator.ExcelConfig
	// Metrics nil - метрики не пишутся
	Metrics *metrics.Metrics
}

// ConfigFrom собирает ServiceConfig из конфигурации приложения
func ConfigFrom(cfg *config.Config, m *metrics.Metrics) ServiceConfig {
	return ServiceConfig{
		Version: cfg.App.Version,
		PDF: generator.PDFConfig{
			PageSize:    cfg.Report.PDF.PageSize,
			MarginTop:   cfg.Report.PDF.MarginTop,
			MarginLeft:  cfg.Report.PDF.MarginLeft,
			MarginRight: cfg.Report.PDF.MarginRight,
			PageNumbers: cfg.Report.PDF.PageNumbers,
		},
		Excel: generator.ExcelConfig{
			SheetName:  cfg.Report.Excel.SheetName,
			WidthScale: cfg.Report.Excel.WidthScale,
		},
		Metrics: m,
	}
}

// NewReportService создаёт сервис со стандартными PDF и XLSX рендерерами
func NewReportService(cfg ServiceConfig) *ReportService {
	return NewReportServiceWithRenderers(cfg,
		generator.NewPDFRenderer(cfg.PDF),
		generator.NewExcelRenderer(cfg.Excel),
	)
}

// NewReportServiceWithRenderers создаёт сервис с заданным набором рендереров
func NewReportServiceWithRenderers(cfg ServiceConfig, renderers ...generator.Renderer) *ReportService {
	s := &ReportService{
		version:   cfg.Version,
		renderers: make(map[generator.Format]generator.Renderer, len(renderers)),
		metrics:   cfg.Metrics,
		now:       time.Now,
	}
	for _, r := range renderers {
		s.renderers[r.Format()] = r
	}
	return s
}

// TaskListing отчёт по списку задач
func (s *ReportService) TaskListing(ctx context.Context, req builder.TaskListingRequest, format generator.Format) (*Payload, error) {
	ctx, span := telemetry.StartSpan(ctx, "ReportService.TaskListing",
		trace.WithAttributes(telemetry.InputAttributes(len(req.Tasks), !req.Filters.IsEmpty(), req.GeneratedBy)...),
	)
	defer span.End()

	doc := builder.BuildTaskListing(req, builder.FlavorAssigneeCount)
	return s.render(ctx, KindTaskListing, format, doc, "tasks-report")
}

// TaskExport плоская выгрузка задач
func (s *ReportService) TaskExport(ctx context.Context, req builder.TaskListingRequest, format generator.Format) (*Payload, error) {
	ctx, span := telemetry.StartSpan(ctx, "ReportService.TaskExport",
		trace.WithAttributes(telemetry.InputAttributes(len(req.Tasks), !req.Filters.IsEmpty(), req.GeneratedBy)...),
	)
	defer span.End()

	doc := builder.BuildTaskExport(req)
	return s.render(ctx, KindTaskExport, format, doc, "tasks-export")
}

// UserSummary сводка продуктивности пользователя
func (s *ReportService) UserSummary(ctx context.Context, req builder.UserSummaryRequest, format generator.Format) (*Payload, error) {
	ctx, span := telemetry.StartSpan(ctx, "ReportService.UserSummary",
		trace.WithAttributes(telemetry.InputAttributes(len(req.RecentTasks), false, req.User.Name)...),
	)
	defer span.End()

	doc := builder.BuildUserSummary(req)
	return s.render(ctx, KindUserSummary, format, doc, "user-summary-"+SanitizeName(req.User.Name))
}

func (s *ReportService) render(
	ctx context.Context,
	kind Kind,
	format generator.Format,
	doc *document.Document,
	filenameBase string,
) (*Payload, error) {
	log := logger.WithContext(ctx, "report", string(kind), "format", format.String())
	if caller := auth.ClaimsFromContext(ctx); caller != nil {
		log = log.With("caller", caller.UserID)
	}
	start := time.Now()

	renderer, err := s.renderer(format)
	if err != nil {
		return nil, err
	}

	rows := tableRows(doc)
	telemetry.SetAttributes(ctx, telemetry.ReportAttributes(string(kind), format.String(), len(doc.Sections), rows)...)

	// Отменённый запрос не рендерим
	if err := ctx.Err(); err != nil {
		return nil, s.fail(ctx, log, kind, format, contextError(err))
	}

	observe := metrics.ObserveRender(s.metrics, string(kind), format.String())
	data, err := renderer.Render(ctx, doc)
	observe()
	if err != nil {
		return nil, s.fail(ctx, log, kind, format, err)
	}

	s.reportsGenerated.Add(1)
	if s.metrics != nil {
		s.metrics.RecordReport(string(kind), format.String(), true, len(data), rows)
	}
	telemetry.SetAttributes(ctx, attribute.Int(telemetry.AttrReportBytes, len(data)))

	payload := &Payload{
		ID:        uuid.New(),
		Kind:      kind,
		Format:    format,
		Data:      data,
		MIMEType:  renderer.MIMEType(),
		Extension: format.Extension(),
		Filename:  filenameBase + "-" + s.now().Format(timestampLayout) + format.Extension(),
		Rows:      rows,
	}

	log.Info("Report generated",
		"report_id", payload.ID.String(),
		"filename", payload.Filename,
		"bytes", len(data),
		"rows", rows,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return payload, nil
}

func (s *ReportService) fail(ctx context.Context, log *slog.Logger, kind Kind, format generator.Format, err error) error {
	telemetry.SetError(ctx, err)
	if s.metrics != nil {
		s.metrics.RecordReport(string(kind), format.String(), false, 0, 0)
	}
	log.Error("Report generation failed", "error", err, "code", string(apperror.Code(err)))
	return err
}

func (s *ReportService) renderer(format generator.Format) (generator.Renderer, error) {
	r, ok := s.renderers[format]
	if !ok {
		return nil, apperror.Newf(apperror.CodeUnsupportedFormat,
			"no renderer registered for format %q", format.String()).
			WithField("format")
	}
	return r, nil
}

// Formats возвращает поддерживаемые форматы
func (s *ReportService) Formats() []generator.Format {
	formats := make([]generator.Format, 0, len(s.renderers))
	for f := range s.renderers {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// ReportsGenerated число успешно сгенерированных отчётов
func (s *ReportService) ReportsGenerated() int64 {
	return s.reportsGenerated.Load()
}

// Version версия сервиса
func (s *ReportService) Version() string {
	return s.version
}

// Uptime время работы процесса
func (s *ReportService) Uptime() time.Duration {
	return time.Since(startTime)
}

// SanitizeName заменяет каждый не буквенно-цифровой символ на "-"
func SanitizeName(name string) string {
	if name == "" {
		return "user"
	}
	return unsafeFilenameChars.ReplaceAllString(name, "-")
}

func tableRows(doc *document.Document) int {
	rows := 0
	for _, t := range doc.Tables() {
		rows += len(t.Rows)
	}
	return rows
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.Wrap(err, apperror.CodeTimeout, "report generation timed out")
	}
	return apperror.Wrap(err, apperror.CodeInternal, "report generation cancelled")
}
