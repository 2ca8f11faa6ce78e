package domain

import (
	"strings"
	"unicode/utf8"
)

// Заглушка для отсутствующих значений в отчётах
const Placeholder = "-"

// Длины усечения ISO-строк
const (
	dateLength     = len("2006-01-02")
	dateTimeLength = len("2006-01-02 15:04:05")
)

// Priority приоритет задачи
type Priority string

const (
	PriorityLow     Priority = "low"
	PriorityMedium  Priority = "medium"
	PriorityHigh    Priority = "high"
	PriorityUrgent  Priority = "urgent"
	PriorityUnknown Priority = ""
)

// ParsePriority разбирает приоритет без учёта регистра; пробелы не обрезаются
func ParsePriority(raw string) Priority {
	switch p := Priority(strings.ToLower(raw)); p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p
	default:
		return PriorityUnknown
	}
}

// Status статус задачи или назначения
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusUnknown    Status = ""
)

// ParseStatus разбирает статус без учёта регистра
func ParseStatus(raw string) Status {
	switch s := Status(strings.ToLower(raw)); s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return s
	default:
		return StatusUnknown
	}
}

// FormatDate возвращает календарную часть ISO-строки
func FormatDate(value string) string {
	if value == "" {
		return Placeholder
	}
	head, ok := prefixRunes(value, dateLength)
	if !ok {
		return value
	}
	return head
}

// FormatDateTime возвращает дату и время ISO-строки через пробел,
// без долей секунды и зоны. Короткая строка выводится как есть.
func FormatDateTime(value string) string {
	if value == "" {
		return Placeholder
	}
	head, ok := prefixRunes(value, dateTimeLength)
	if !ok {
		return value
	}
	return strings.ReplaceAll(head, "T", " ")
}

// prefixRunes первые n символов (не байт); false, если символов меньше n
func prefixRunes(s string, n int) (string, bool) {
	if utf8.RuneCountInString(s) < n {
		return s, false
	}
	i := 0
	for cut := range s {
		if i == n {
			return s[:cut], true
		}
		i++
	}
	return s, true
}
