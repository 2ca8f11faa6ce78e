package domain

// UserStats счётчики задач пользователя. Согласованность счётчиков
// между собой не проверяется.
type UserStats struct {
	Assigned   int `json:"assigned" validate:"min=0"`
	Completed  int `json:"completed" validate:"min=0"`
	Pending    int `json:"pending" validate:"min=0"`
	InProgress int `json:"inProgress" validate:"min=0"`
}

// CompletionRate доля завершённых задач в процентах.
// Второе значение false, если у пользователя нет назначенных задач.
func CompletionRate(stats UserStats) (float64, bool) {
	if stats.Assigned <= 0 {
		return 0, false
	}
	return float64(stats.Completed) * 100 / float64(stats.Assigned), true
}
