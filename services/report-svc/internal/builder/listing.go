// services/report-svc/internal/builder/listing.go
package builder

import (
	"strconv"
	"strings"

	"taskflow/pkg/domain"
	"taskflow/services/report-svc/internal/document"
)

// FooterText строка бренда внизу каждого отчёта
const FooterText = "TaskFlowPro - Task Management System"

// BuildTaskListing собирает отчёт со списком задач.
// PDF и Excel варианты используют одну и ту же модель.
func BuildTaskListing(req TaskListingRequest, flavor ListingFlavor) *document.Document {
	doc := document.New(req.Title, req.GeneratedAt, req.GeneratedBy)

	doc.Add(&document.TextBlock{Text: req.Title, Emphasis: document.EmphasisTitle})
	doc.Add(metadataBlock(req.GeneratedAt, req.GeneratedBy))

	if filters := filterBlock(req.Filters); filters != nil {
		doc.Add(filters)
	}

	doc.Add(taskTable(req.Tasks, flavor))

	doc.Add(&document.TextBlock{Text: FooterText, Emphasis: document.EmphasisSmall, Align: document.AlignCenter})

	return doc
}

func metadataBlock(generatedAt, generatedBy string) *document.TextBlock {
	text := "Generated: " + domain.FormatDateTime(generatedAt)
	if generatedBy != "" {
		text += " | By: " + generatedBy
	}
	return &document.TextBlock{Label: "Metadata", Text: text, Emphasis: document.EmphasisSmall}
}

// filterBlock возвращает nil, если ни одно поле фильтра не заполнено
func filterBlock(f *domain.Filter) *document.TextBlock {
	if f.IsEmpty() {
		return nil
	}

	var lines []string
	if f.DateFrom != "" {
		lines = append(lines, "Date From: "+domain.FormatDate(f.DateFrom))
	}
	if f.DateTo != "" {
		lines = append(lines, "Date To: "+domain.FormatDate(f.DateTo))
	}
	if len(f.Priority) > 0 {
		lines = append(lines, "Priority: "+joinLabels(f.Priority))
	}
	if len(f.Status) > 0 {
		lines = append(lines, "Status: "+joinLabels(f.Status))
	}

	return &document.TextBlock{
		Label:    "Filters",
		Text:     strings.Join(lines, "\n"),
		Emphasis: document.EmphasisSmall,
	}
}

func joinLabels(values []string) string {
	labels := make([]string, len(values))
	for i, v := range values {
		labels[i] = Label(v)
	}
	return strings.Join(labels, ", ")
}

func taskTable(tasks []domain.Task, flavor ListingFlavor) *document.Table {
	last := document.Column{Header: "Assignees", Width: 1.5, Numeric: true}
	if flavor == FlavorProgress {
		last = document.Column{Header: "Progress", Width: 1.5}
	}

	table := &document.Table{
		Columns: []document.Column{
			{Header: "Title", Width: 3},
			{Header: "Priority", Width: 1.5},
			{Header: "Status", Width: 1.5},
			{Header: "Due Date", Width: 1.5},
			last,
		},
		Rows: make([]document.Row, 0, len(tasks)),
	}

	for i, task := range tasks {
		band := document.RowBand(i)

		var summary string
		switch flavor {
		case FlavorProgress:
			summary = domain.TaskProgress(task)
		default:
			summary = strconv.Itoa(len(task.Assignees))
		}

		table.Rows = append(table.Rows, document.Row{Cells: []document.Cell{
			textCell(task.Title, band),
			priorityCell(task.Priority, band),
			statusCell(task.Status, band),
			textCell(domain.FormatDate(task.DueDate), band),
			textCell(summary, band),
		}})
	}

	return table
}
