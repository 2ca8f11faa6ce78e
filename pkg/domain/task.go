package domain

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Task задача из системы управления задачами
type Task struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority" validate:"required"`
	Status      string     `json:"status" validate:"required"`
	CreatedAt   string     `json:"createdAt,omitempty"`
	DueDate     string     `json:"dueDate,omitempty"`
	Assignees   []Assignee `json:"assignees,omitempty" validate:"dive"`
}

// Assignee исполнитель задачи
type Assignee struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
	Status string `json:"status,omitempty"`
	// Progress nil, если прогресс не передан
	Progress *int `json:"progress,omitempty" validate:"omitempty,min=0,max=100"`
}

// Filter описание фильтров, применённых вызывающей стороной.
// Задачи повторно не фильтруются.
type Filter struct {
	DateFrom string   `json:"dateFrom,omitempty"`
	DateTo   string   `json:"dateTo,omitempty"`
	Priority []string `json:"priority,omitempty"`
	Status   []string `json:"status,omitempty"`
}

// IsEmpty проверяет, что ни одно поле фильтра не заполнено
func (f *Filter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.DateFrom == "" && f.DateTo == "" && len(f.Priority) == 0 && len(f.Status) == 0
}

// User получатель сводного отчёта
type User struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// TaskProgress возвращает прогресс первого исполнителя задачи.
// Остальные исполнители не учитываются.
func TaskProgress(task Task) string {
	if len(task.Assignees) == 0 || task.Assignees[0].Progress == nil {
		return Placeholder
	}
	return strconv.Itoa(*task.Assignees[0].Progress) + "%"
}

// AssigneeNames имена исполнителей через запятую
func AssigneeNames(task Task) string {
	names := make([]string, 0, len(task.Assignees))
	for _, a := range task.Assignees {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	if len(names) == 0 {
		return Placeholder
	}
	return strings.Join(names, ", ")
}

// CapitalizeFirst переводит первый символ в верхний регистр
func CapitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
