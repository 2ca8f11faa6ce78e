package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Отчёт
	AttrReportKind     = "report.kind"
	AttrReportFormat   = "report.format"
	AttrReportSections = "report.sections"
	AttrReportRows     = "report.table_rows"
	AttrReportBytes    = "report.bytes"

	// Входные данные
	AttrTasksCount  = "input.tasks"
	AttrHasFilters  = "input.has_filters"
	AttrGeneratedBy = "input.generated_by"

	// HTTP
	AttrHTTPRoute     = "http.route"
	AttrHTTPMethod    = "http.method"
	AttrHTTPStatus    = "http.status_code"
	AttrHTTPRequestID = "http.request_id"
)

// ReportAttributes возвращает атрибуты генерируемого отчёта
func ReportAttributes(kind, format string, sections, rows int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrReportKind, kind),
		attribute.String(AttrReportFormat, format),
		attribute.Int(AttrReportSections, sections),
		attribute.Int(AttrReportRows, rows),
	}
}

// InputAttributes возвращает атрибуты входного запроса
func InputAttributes(tasks int, hasFilters bool, generatedBy string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrTasksCount, tasks),
		attribute.Bool(AttrHasFilters, hasFilters),
		attribute.String(AttrGeneratedBy, generatedBy),
	}
}
