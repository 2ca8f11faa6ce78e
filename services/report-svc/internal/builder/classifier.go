// services/report-svc/internal/builder/classifier.go
package builder

import (
	"taskflow/pkg/domain"
	"taskflow/services/report-svc/internal/document"
)

// PriorityAccent возвращает цвет выделения для приоритета.
// Неизвестные значения получают белый цвет.
func PriorityAccent(raw string) document.Color {
	switch domain.ParsePriority(raw) {
	case domain.PriorityUrgent:
		return document.RedTint
	case domain.PriorityHigh:
		return document.OrangeTint
	case domain.PriorityMedium:
		return document.YellowTint
	case domain.PriorityLow:
		return document.GreenTint
	case domain.PriorityUnknown:
		return document.White
	default:
		return document.White
	}
}

// StatusAccent возвращает цвет выделения для статуса
func StatusAccent(raw string) document.Color {
	switch domain.ParseStatus(raw) {
	case domain.StatusCompleted:
		return document.GreenTint
	case domain.StatusInProgress:
		return document.BlueTint
	case domain.StatusPending:
		return document.YellowTint
	case domain.StatusUnknown:
		return document.White
	default:
		return document.White
	}
}

// Label отображаемая подпись категории
func Label(raw string) string {
	return domain.CapitalizeFirst(raw)
}

func priorityCell(raw string, band int) document.Cell {
	accent := PriorityAccent(raw)
	return document.Cell{Text: Label(raw), Accent: &accent, Band: band}
}

func statusCell(raw string, band int) document.Cell {
	accent := StatusAccent(raw)
	return document.Cell{Text: Label(raw), Accent: &accent, Band: band}
}

func textCell(text string, band int) document.Cell {
	return document.Cell{Text: text, Band: band}
}
