// services/report-svc/internal/builder/export.go
package builder

import (
	"taskflow/pkg/domain"
	"taskflow/services/report-svc/internal/document"
)

// BuildTaskExport собирает плоскую выгрузку задач: одна таблица без
// текстовых блоков, чтобы лист открывался как чистая сетка данных.
func BuildTaskExport(req TaskListingRequest) *document.Document {
	doc := document.New(req.Title, req.GeneratedAt, req.GeneratedBy)

	table := &document.Table{
		Columns: []document.Column{
			{Header: "Title", Width: 3},
			{Header: "Description", Width: 4},
			{Header: "Priority", Width: 1.5},
			{Header: "Status", Width: 1.5},
			{Header: "Created At", Width: 2},
			{Header: "Due Date", Width: 1.5},
			{Header: "Assignees", Width: 3},
			{Header: "Progress", Width: 1.2},
		},
		Rows: make([]document.Row, 0, len(req.Tasks)),
	}

	for i, task := range req.Tasks {
		band := document.RowBand(i)

		description := task.Description
		if description == "" {
			description = domain.Placeholder
		}

		table.Rows = append(table.Rows, document.Row{Cells: []document.Cell{
			textCell(task.Title, band),
			textCell(description, band),
			priorityCell(task.Priority, band),
			statusCell(task.Status, band),
			textCell(domain.FormatDateTime(task.CreatedAt), band),
			textCell(domain.FormatDate(task.DueDate), band),
			textCell(domain.AssigneeNames(task), band),
			textCell(domain.TaskProgress(task), band),
		}})
	}

	return doc.Add(table)
}
