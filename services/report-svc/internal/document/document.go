// services/report-svc/internal/document/document.go
package document

import "strings"

// Document абстрактная модель отчёта. После сборки не изменяется,
// рендереры только читают её.
type Document struct {
	Title       string
	GeneratedAt string
	GeneratedBy string
	Sections    []Section
}

// New создаёт пустой документ
func New(title, generatedAt, generatedBy string) *Document {
	return &Document{
		Title:       title,
		GeneratedAt: generatedAt,
		GeneratedBy: generatedBy,
	}
}

// Add добавляет секцию в конец документа
func (d *Document) Add(s Section) *Document {
	d.Sections = append(d.Sections, s)
	return d
}

// Tables возвращает все таблицы документа по порядку
func (d *Document) Tables() []*Table {
	var tables []*Table
	for _, s := range d.Sections {
		if t, ok := s.(*Table); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// SectionKind тип секции
type SectionKind int

const (
	KindText SectionKind = iota
	KindKpi
	KindTable
)

// String возвращает имя типа секции
func (k SectionKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindKpi:
		return "kpi"
	case KindTable:
		return "table"
	default:
		return "unknown"
	}
}

// Section секция документа. Набор вариантов закрыт:
// TextBlock, KpiSummary, Table.
type Section interface {
	Kind() SectionKind
	section()
}

// Emphasis начертание текстового блока
type Emphasis int

const (
	EmphasisNormal Emphasis = iota
	EmphasisTitle
	EmphasisHeading
	EmphasisSmall
)

// Align выравнивание текстового блока
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// TextBlock текстовый блок. Text может содержать несколько строк
// через перевод строки, блок при этом остаётся одной секцией.
type TextBlock struct {
	Label    string
	Text     string
	Emphasis Emphasis
	Align    Align
}

func (*TextBlock) Kind() SectionKind { return KindText }
func (*TextBlock) section()          {}

// Lines разбивает текст блока на строки
func (b *TextBlock) Lines() []string {
	if b.Text == "" {
		return nil
	}
	return strings.Split(b.Text, "\n")
}

// KpiItem показатель сводки
type KpiItem struct {
	Label  string
	Value  string
	Accent Color
}

// KpiSummary ряд карточек с показателями
type KpiSummary struct {
	Items []KpiItem
}

func (*KpiSummary) Kind() SectionKind { return KindKpi }
func (*KpiSummary) section()          {}

// Column колонка таблицы. Width задаёт относительную ширину (> 0).
// Numeric: значения целые числа, табличный формат пишет их числом.
type Column struct {
	Header  string
	Width   float64
	Numeric bool
}

// Cell ячейка таблицы. Accent nil, если ячейка не выделяется.
type Cell struct {
	Text   string
	Accent *Color
	Band   int
}

// Row строка таблицы
type Row struct {
	Cells []Cell
}

// Table таблица с заголовком
type Table struct {
	Columns []Column
	Rows    []Row
}

func (*Table) Kind() SectionKind { return KindTable }
func (*Table) section()          {}

// Headers возвращает заголовки колонок
func (t *Table) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Header
	}
	return headers
}

// RowBand индекс полосы для чередования строк таблицы
func RowBand(rowIndex int) int {
	return rowIndex % 2
}
