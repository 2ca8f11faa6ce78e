// services/report-svc/internal/generator/generator.go
package generator

import (
	"context"
	"fmt"
	"math"
	"sort"

	"taskflow/pkg/apperror"
	"taskflow/services/report-svc/internal/document"
)

// Format формат выходного документа
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "xlsx"
)

// MIME типы
const (
	MIMETypePDF   = "application/pdf"
	MIMETypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// String возвращает имя формата
func (f Format) String() string {
	return string(f)
}

// Extension расширение файла для формата
func (f Format) Extension() string {
	return "." + string(f)
}

// ParseFormat разбирает формат из строки
func ParseFormat(raw string) (Format, error) {
	switch raw {
	case "pdf":
		return FormatPDF, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	default:
		return "", apperror.Newf(apperror.CodeUnsupportedFormat, "unsupported report format: %q", raw).
			WithField("format")
	}
}

// Renderer кодирует документ в байты выходного формата.
// Реализации не хранят состояния между вызовами.
type Renderer interface {
	Render(ctx context.Context, doc *document.Document) ([]byte, error)
	Format() Format
	MIMEType() string
}

// renderingFailed оборачивает ошибку библиотеки отрисовки
func renderingFailed(format Format, cause error) error {
	return apperror.Wrap(cause, apperror.CodeRenderingFailed,
		fmt.Sprintf("failed to generate %s: %v", format, cause)).
		WithDetails("format", format.String())
}

// GridSizes распределяет относительные ширины колонок по сетке из grid
// единиц методом наибольшего остатка. Каждая колонка получает минимум 1.
func GridSizes(widths []float64, grid int) ([]int, error) {
	n := len(widths)
	if n == 0 {
		return nil, nil
	}
	if n > grid {
		return nil, apperror.Newf(apperror.CodeLayoutOverflow,
			"table has %d columns, grid allows %d", n, grid).
			WithDetails("columns", n)
	}

	var total float64
	for _, w := range widths {
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, apperror.Newf(apperror.CodeLayoutOverflow,
				"column width must be positive, got %v", w)
		}
		total += w
	}

	sizes := make([]int, n)
	remainders := make([]float64, n)
	sum := 0
	for i, w := range widths {
		ideal := w * float64(grid) / total
		sizes[i] = int(math.Floor(ideal + 1e-9))
		if sizes[i] < 1 {
			sizes[i] = 1
		}
		remainders[i] = ideal - float64(sizes[i])
		sum += sizes[i]
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})

	// Добираем недостающие единицы колонкам с наибольшим остатком
	for i := 0; sum < grid; i = (i + 1) % n {
		sizes[order[i]]++
		sum++
	}

	// Минимум в 1 единицу мог переполнить сетку
	for i := n - 1; sum > grid; {
		idx := order[i]
		if sizes[idx] > 1 {
			sizes[idx]--
			sum--
		}
		i--
		if i < 0 {
			i = n - 1
		}
	}

	return sizes, nil
}

// ColName преобразует индекс колонки в буквенное обозначение (0 -> A, 25 -> Z, 26 -> AA)
func ColName(index int) string {
	result := ""
	for {
		result = string(rune('A'+index%26)) + result
		index = index/26 - 1
		if index < 0 {
			break
		}
	}
	return result
}

// CellByIndex возвращает адрес ячейки по индексам (колонка с 0, строка с 1)
func CellByIndex(colIndex, rowIndex int) string {
	return fmt.Sprintf("%s%d", ColName(colIndex), rowIndex)
}
