// services/report-svc/internal/builder/summary.go
package builder

import (
	"fmt"
	"strconv"

	"taskflow/pkg/domain"
	"taskflow/services/report-svc/internal/document"
)

// Тексты сводного отчёта
const (
	SummaryTitle      = "User Productivity Summary"
	RecentTasksTitle  = "Recent Tasks"
	NoRecentTasksText = "No recent tasks to display."
)

// BuildUserSummary собирает сводный отчёт по продуктивности пользователя
func BuildUserSummary(req UserSummaryRequest) *document.Document {
	doc := document.New(SummaryTitle, req.GeneratedAt, "")

	doc.Add(&document.TextBlock{Text: SummaryTitle, Emphasis: document.EmphasisTitle, Align: document.AlignCenter})
	doc.Add(&document.TextBlock{
		Label:    "User",
		Text:     fmt.Sprintf("User: %s\nEmail: %s", req.User.Name, req.User.Email),
		Emphasis: document.EmphasisNormal,
		Align:    document.AlignCenter,
	})
	doc.Add(&document.TextBlock{
		Text:     "Generated: " + domain.FormatDateTime(req.GeneratedAt),
		Emphasis: document.EmphasisSmall,
		Align:    document.AlignCenter,
	})

	doc.Add(kpiSummary(req.Stats))

	if rate, ok := domain.CompletionRate(req.Stats); ok {
		doc.Add(&document.TextBlock{
			Text:     fmt.Sprintf("Completion Rate: %.1f%%", rate),
			Emphasis: document.EmphasisHeading,
			Align:    document.AlignCenter,
		})
	}

	doc.Add(&document.TextBlock{Text: RecentTasksTitle, Emphasis: document.EmphasisHeading})

	if len(req.RecentTasks) == 0 {
		doc.Add(&document.TextBlock{Text: NoRecentTasksText, Emphasis: document.EmphasisNormal})
	} else {
		doc.Add(recentTasksTable(req.RecentTasks))
	}

	doc.Add(&document.TextBlock{Text: FooterText, Emphasis: document.EmphasisSmall, Align: document.AlignCenter})

	return doc
}

func kpiSummary(stats domain.UserStats) *document.KpiSummary {
	return &document.KpiSummary{Items: []document.KpiItem{
		{Label: "Total Assigned", Value: strconv.Itoa(stats.Assigned), Accent: document.KpiBlue},
		{Label: "Completed", Value: strconv.Itoa(stats.Completed), Accent: document.KpiGreen},
		{Label: "In Progress", Value: strconv.Itoa(stats.InProgress), Accent: document.KpiOrange},
		{Label: "Pending", Value: strconv.Itoa(stats.Pending), Accent: document.KpiCrimson},
	}}
}

func recentTasksTable(tasks []domain.Task) *document.Table {
	table := &document.Table{
		Columns: []document.Column{
			{Header: "Task Title", Width: 3},
			{Header: "Priority", Width: 1.5},
			{Header: "Status", Width: 1.5},
			{Header: "Due Date", Width: 1.5},
			{Header: "Progress", Width: 1.5},
		},
		Rows: make([]document.Row, 0, len(tasks)),
	}

	for i, task := range tasks {
		band := document.RowBand(i)
		table.Rows = append(table.Rows, document.Row{Cells: []document.Cell{
			textCell(task.Title, band),
			priorityCell(task.Priority, band),
			statusCell(task.Status, band),
			textCell(domain.FormatDate(task.DueDate), band),
			textCell(domain.TaskProgress(task), band),
		}})
	}

	return table
}
