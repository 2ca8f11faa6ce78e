// services/report-svc/internal/builder/request.go
package builder

import "taskflow/pkg/domain"

// TaskListingRequest входные данные отчёта по списку задач
type TaskListingRequest struct {
	Title       string         `json:"title" validate:"required"`
	GeneratedAt string         `json:"generatedAt" validate:"required"`
	GeneratedBy string         `json:"generatedBy,omitempty"`
	Filters     *domain.Filter `json:"filters,omitempty"`
	Tasks       []domain.Task  `json:"tasks" validate:"required,dive"`
}

// UserSummaryRequest входные данные сводного отчёта пользователя
type UserSummaryRequest struct {
	GeneratedAt string           `json:"generatedAt" validate:"required"`
	User        domain.User      `json:"user"`
	Stats       domain.UserStats `json:"stats"`
	RecentTasks []domain.Task    `json:"recentTasks,omitempty" validate:"dive"`
}

// ListingFlavor вариант последней колонки списка задач
type ListingFlavor int

const (
	// FlavorAssigneeCount колонка с количеством исполнителей
	FlavorAssigneeCount ListingFlavor = iota
	// FlavorProgress колонка с прогрессом первого исполнителя
	FlavorProgress
)
