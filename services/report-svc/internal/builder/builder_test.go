// services/report-svc/internal/builder/builder_test.go
package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/pkg/domain"
	"taskflow/services/report-svc/internal/document"
)

func intPtr(v int) *int { return &v }

func sampleTasks() []domain.Task {
	return []domain.Task{
		{
			Title:    "Fix login",
			Priority: "urgent",
			Status:   "in-progress",
			DueDate:  "2024-02-01T12:00:00Z",
			Assignees: []domain.Assignee{
				{Name: "Ann", Progress: intPtr(40)},
				{Name: "Bob", Progress: intPtr(90)},
			},
		},
		{
			Title:    "Write docs",
			Priority: "LOW",
			Status:   "pending",
		},
		{
			Title:       "Release",
			Description: "Cut 1.0",
			Priority:    "High",
			Status:      "completed",
			CreatedAt:   "2024-01-10T08:15:30.123Z",
			DueDate:     "2024-01",
			Assignees:   []domain.Assignee{{Name: "Cid"}},
		},
	}
}

func sectionKinds(doc *document.Document) []document.SectionKind {
	kinds := make([]document.SectionKind, len(doc.Sections))
	for i, s := range doc.Sections {
		kinds[i] = s.Kind()
	}
	return kinds
}

// textBlocks текстовые секции документа по порядку
func textBlocks(doc *document.Document) []*document.TextBlock {
	var blocks []*document.TextBlock
	for _, s := range doc.Sections {
		if b, ok := s.(*document.TextBlock); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func TestBuildTaskListing_Structure(t *testing.T) {
	req := TaskListingRequest{
		Title:       "Workspace Task Report",
		GeneratedAt: "2024-01-15T10:30:00.000Z",
		GeneratedBy: "Alice",
		Tasks:       sampleTasks(),
	}

	doc := BuildTaskListing(req, FlavorAssigneeCount)

	assert.Equal(t, "Workspace Task Report", doc.Title)
	assert.Equal(t, []document.SectionKind{
		document.KindText, document.KindText, document.KindTable, document.KindText,
	}, sectionKinds(doc))

	title := doc.Sections[0].(*document.TextBlock)
	assert.Equal(t, document.EmphasisTitle, title.Emphasis)
	assert.Equal(t, "Workspace Task Report", title.Text)

	meta := doc.Sections[1].(*document.TextBlock)
	assert.Equal(t, "Generated: 2024-01-15 10:30:00 | By: Alice", meta.Text)

	table := doc.Tables()[0]
	assert.Equal(t, []string{"Title", "Priority", "Status", "Due Date", "Assignees"}, table.Headers())
	require.Len(t, table.Rows, 3)
	assert.True(t, table.Columns[4].Numeric, "assignee count is numeric")
	assert.False(t, table.Columns[0].Numeric)

	assert.Equal(t, "2", table.Rows[0].Cells[4].Text)
	assert.Equal(t, "0", table.Rows[1].Cells[4].Text)
	assert.Equal(t, "2024-02-01", table.Rows[0].Cells[3].Text)
	assert.Equal(t, "-", table.Rows[1].Cells[3].Text)
	assert.Equal(t, "2024-01", table.Rows[2].Cells[3].Text)

	for i, row := range table.Rows {
		for _, c := range row.Cells {
			assert.Equal(t, i%2, c.Band)
		}
	}

	footer := doc.Sections[len(doc.Sections)-1].(*document.TextBlock)
	assert.Equal(t, FooterText, footer.Text)
}

func TestBuildTaskListing_UrgentCell(t *testing.T) {
	req := TaskListingRequest{
		Title:       "Report",
		GeneratedAt: "2024-01-15T10:30:00Z",
		Tasks:       []domain.Task{{Title: "t", Priority: "urgent", Status: "pending"}},
	}

	doc := BuildTaskListing(req, FlavorAssigneeCount)
	cell := doc.Tables()[0].Rows[0].Cells[1]

	assert.Equal(t, "Urgent", cell.Text)
	require.NotNil(t, cell.Accent)
	assert.Equal(t, document.RedTint, *cell.Accent)

	status := doc.Tables()[0].Rows[0].Cells[2]
	require.NotNil(t, status.Accent)
	assert.Equal(t, document.YellowTint, *status.Accent)

	assert.Nil(t, doc.Tables()[0].Rows[0].Cells[0].Accent)
}

func TestBuildTaskListing_ProgressFlavor(t *testing.T) {
	req := TaskListingRequest{Title: "R", GeneratedAt: "2024-01-15", Tasks: sampleTasks()}

	table := BuildTaskListing(req, FlavorProgress).Tables()[0]

	assert.Equal(t, "Progress", table.Columns[4].Header)
	assert.Equal(t, "40%", table.Rows[0].Cells[4].Text)
	assert.Equal(t, "-", table.Rows[1].Cells[4].Text)
	assert.Equal(t, "-", table.Rows[2].Cells[4].Text)
}

func TestBuildTaskListing_Filters(t *testing.T) {
	tests := []struct {
		name    string
		filters *domain.Filter
		want    string
		present bool
	}{
		{name: "absent", filters: nil},
		{name: "empty", filters: &domain.Filter{}},
		{
			name:    "partial",
			filters: &domain.Filter{DateFrom: "2024-01-01T00:00:00Z", Status: []string{"pending", "completed"}},
			want:    "Date From: 2024-01-01\nStatus: Pending, Completed",
			present: true,
		},
		{
			name: "all fields",
			filters: &domain.Filter{
				DateFrom: "2024-01-01",
				DateTo:   "2024-01-31",
				Priority: []string{"high"},
				Status:   []string{"in-progress"},
			},
			want:    "Date From: 2024-01-01\nDate To: 2024-01-31\nPriority: High\nStatus: In-progress",
			present: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := TaskListingRequest{Title: "R", GeneratedAt: "x", Filters: tt.filters}
			doc := BuildTaskListing(req, FlavorAssigneeCount)

			var filters *document.TextBlock
			for _, b := range textBlocks(doc) {
				if b.Label == "Filters" {
					filters = b
				}
			}

			if !tt.present {
				assert.Nil(t, filters)
				assert.Len(t, doc.Sections, 4)
				return
			}
			require.NotNil(t, filters)
			assert.Equal(t, tt.want, filters.Text)
			assert.Equal(t, document.EmphasisSmall, filters.Emphasis)
			assert.Len(t, doc.Sections, 5)
		})
	}
}

func TestBuildTaskListing_NoTasks(t *testing.T) {
	doc := BuildTaskListing(TaskListingRequest{Title: "R", GeneratedAt: "x"}, FlavorAssigneeCount)

	tables := doc.Tables()
	require.Len(t, tables, 1)
	assert.Empty(t, tables[0].Rows)
	assert.Len(t, tables[0].Columns, 5)
}

func TestBuildTaskListing_ManyRows(t *testing.T) {
	tasks := make([]domain.Task, 500)
	for i := range tasks {
		tasks[i] = domain.Task{Title: "t", Priority: "low", Status: "pending"}
	}

	table := BuildTaskListing(TaskListingRequest{Title: "R", Tasks: tasks}, FlavorAssigneeCount).Tables()[0]

	assert.Len(t, table.Rows, 500)
	assert.Equal(t, 1, table.Rows[499].Cells[0].Band)
}

func TestBuildUserSummary_Scenario(t *testing.T) {
	req := UserSummaryRequest{
		GeneratedAt: "2024-03-05T09:00:00.000Z",
		User:        domain.User{Name: "Alice", Email: "alice@example.com"},
		Stats:       domain.UserStats{Assigned: 10, Completed: 6, Pending: 2, InProgress: 2},
		RecentTasks: sampleTasks(),
	}

	doc := BuildUserSummary(req)

	assert.Equal(t, []document.SectionKind{
		document.KindText,  // заголовок
		document.KindText,  // пользователь
		document.KindText,  // время генерации
		document.KindKpi,   // показатели
		document.KindText,  // процент выполнения
		document.KindText,  // Recent Tasks
		document.KindTable, // задачи
		document.KindText,  // футер
	}, sectionKinds(doc))

	blocks := textBlocks(doc)
	assert.Equal(t, SummaryTitle, blocks[0].Text)
	assert.Equal(t, document.EmphasisTitle, blocks[0].Emphasis)
	assert.Equal(t, "User: Alice\nEmail: alice@example.com", blocks[1].Text)
	assert.Equal(t, document.AlignCenter, blocks[1].Align)
	assert.Equal(t, "Generated: 2024-03-05 09:00:00", blocks[2].Text)
	assert.Equal(t, document.EmphasisSmall, blocks[2].Emphasis)
	assert.Equal(t, "Completion Rate: 60.0%", blocks[3].Text)
	assert.Equal(t, document.EmphasisHeading, blocks[3].Emphasis)
	assert.Equal(t, RecentTasksTitle, blocks[4].Text)
	assert.Equal(t, FooterText, blocks[5].Text)

	kpi := doc.Sections[3].(*document.KpiSummary)
	require.Len(t, kpi.Items, 4)
	assert.Equal(t, []string{"Total Assigned", "Completed", "In Progress", "Pending"},
		[]string{kpi.Items[0].Label, kpi.Items[1].Label, kpi.Items[2].Label, kpi.Items[3].Label})
	assert.Equal(t, []string{"10", "6", "2", "2"},
		[]string{kpi.Items[0].Value, kpi.Items[1].Value, kpi.Items[2].Value, kpi.Items[3].Value})
	assert.Equal(t, document.KpiBlue, kpi.Items[0].Accent)
	assert.Equal(t, document.KpiGreen, kpi.Items[1].Accent)
	assert.Equal(t, document.KpiOrange, kpi.Items[2].Accent)
	assert.Equal(t, document.KpiCrimson, kpi.Items[3].Accent)

	table := doc.Tables()[0]
	assert.Equal(t, []string{"Task Title", "Priority", "Status", "Due Date", "Progress"}, table.Headers())
	widths := make([]float64, len(table.Columns))
	for i, c := range table.Columns {
		widths[i] = c.Width
	}
	assert.Equal(t, []float64{3, 1.5, 1.5, 1.5, 1.5}, widths)
	assert.Equal(t, "40%", table.Rows[0].Cells[4].Text)
	assert.Equal(t, "High", table.Rows[2].Cells[1].Text)
	require.NotNil(t, table.Rows[2].Cells[2].Accent)
	assert.Equal(t, document.GreenTint, *table.Rows[2].Cells[2].Accent)
}

func TestBuildUserSummary_NoAssigned(t *testing.T) {
	req := UserSummaryRequest{
		GeneratedAt: "2024-03-05T09:00:00Z",
		User:        domain.User{Name: "Bob"},
		Stats:       domain.UserStats{Assigned: 0, Completed: 0},
	}

	doc := BuildUserSummary(req)

	for _, b := range textBlocks(doc) {
		assert.NotContains(t, b.Text, "Completion Rate")
		assert.NotContains(t, b.Text, "NaN")
	}
}

func TestBuildUserSummary_NoRecentTasks(t *testing.T) {
	for _, tasks := range [][]domain.Task{nil, {}} {
		doc := BuildUserSummary(UserSummaryRequest{
			GeneratedAt: "",
			User:        domain.User{Name: "Bob"},
			Stats:       domain.UserStats{Assigned: 1},
			RecentTasks: tasks,
		})

		assert.Empty(t, doc.Tables())

		blocks := textBlocks(doc)
		assert.Equal(t, "Generated: -", blocks[2].Text)
		assert.Equal(t, NoRecentTasksText, blocks[len(blocks)-2].Text)
		assert.Equal(t, FooterText, blocks[len(blocks)-1].Text)
	}
}

func TestBuildTaskExport(t *testing.T) {
	req := TaskListingRequest{Title: "Export", GeneratedAt: "2024-01-15T10:30:00Z", Tasks: sampleTasks()}

	doc := BuildTaskExport(req)

	require.Len(t, doc.Sections, 1)
	assert.Empty(t, textBlocks(doc))

	table := doc.Tables()[0]
	assert.Equal(t, []string{
		"Title", "Description", "Priority", "Status", "Created At", "Due Date", "Assignees", "Progress",
	}, table.Headers())
	require.Len(t, table.Rows, 3)

	first := table.Rows[0].Cells
	assert.Equal(t, "-", first[1].Text)
	assert.Equal(t, "-", first[4].Text)
	assert.Equal(t, "Ann, Bob", first[6].Text)
	assert.Equal(t, "40%", first[7].Text)

	third := table.Rows[2].Cells
	assert.Equal(t, "Cut 1.0", third[1].Text)
	assert.Equal(t, "2024-01-10 08:15:30", third[4].Text)
	assert.Equal(t, "Cid", third[6].Text)

	assert.Equal(t, "-", table.Rows[1].Cells[6].Text)
}
