// services/report-svc/internal/generator/excel.go
package generator

import (
	"bytes"
	"context"
	"strconv"

	"github.com/xuri/excelize/v2"

	"taskflow/pkg/apperror"
	"taskflow/services/report-svc/internal/document"
)

// ExcelConfig параметры листа
type ExcelConfig struct {
	SheetName  string
	WidthScale float64 // символов на единицу относительной ширины
}

// DefaultExcelConfig один лист "Report", ширина x8
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		SheetName:  "Report",
		WidthScale: 8,
	}
}

// ExcelRenderer рендерер XLSX документов
type ExcelRenderer struct {
	cfg ExcelConfig
}

// NewExcelRenderer создаёт новый рендерер
func NewExcelRenderer(cfg ExcelConfig) *ExcelRenderer {
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultExcelConfig().SheetName
	}
	if cfg.WidthScale <= 0 {
		cfg.WidthScale = DefaultExcelConfig().WidthScale
	}
	return &ExcelRenderer{cfg: cfg}
}

// Format возвращает формат рендерера
func (r *ExcelRenderer) Format() Format {
	return FormatExcel
}

// MIMEType возвращает MIME тип результата
func (r *ExcelRenderer) MIMEType() string {
	return MIMETypeExcel
}

// Render генерирует XLSX документ
func (r *ExcelRenderer) Render(ctx context.Context, doc *document.Document) ([]byte, error) {
	if doc == nil {
		return nil, apperror.ErrNilDocument
	}

	f := excelize.NewFile()
	defer f.Close()

	w := &sheetWriter{
		f:      f,
		sheet:  r.cfg.SheetName,
		row:    1,
		fills:  make(map[document.Color]int),
		width:  sheetWidth(doc),
		scale:  r.cfg.WidthScale,
		styles: make(map[string]int),
	}

	w.err = f.SetSheetName("Sheet1", w.sheet)
	w.setDocProps(doc)

	for _, s := range doc.Sections {
		switch sec := s.(type) {
		case *document.TextBlock:
			w.writeText(sec)
		case *document.KpiSummary:
			w.writeKpi(sec)
		case *document.Table:
			w.writeTable(sec)
		}
	}

	if w.err != nil {
		return nil, renderingFailed(FormatExcel, w.err)
	}

	// Записываем в буфер
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, renderingFailed(FormatExcel, err)
	}

	return buf.Bytes(), nil
}

// sheetWidth число колонок самой широкой таблицы, минимум 2 для KPI
func sheetWidth(doc *document.Document) int {
	width := 2
	for _, t := range doc.Tables() {
		if len(t.Columns) > width {
			width = len(t.Columns)
		}
	}
	return width
}

// sheetWriter запоминает первую ошибку excelize и пропускает
// последующие вызовы
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	row    int
	width  int
	scale  float64
	fills  map[document.Color]int
	styles map[string]int
	err    error

	widthsSet bool
}

func (w *sheetWriter) setDocProps(doc *document.Document) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetDocProps(&excelize.DocProperties{
		Title:   doc.Title,
		Creator: doc.GeneratedBy,
	})
}

func (w *sheetWriter) style(name string, s *excelize.Style) int {
	if id, ok := w.styles[name]; ok {
		return id
	}
	if w.err != nil {
		return 0
	}
	id, err := w.f.NewStyle(s)
	if err != nil {
		w.err = err
		return 0
	}
	w.styles[name] = id
	return id
}

func (w *sheetWriter) fill(c document.Color) int {
	if id, ok := w.fills[c]; ok {
		return id
	}
	if w.err != nil {
		return 0
	}
	id, err := w.f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{c.Hex()}, Pattern: 1},
	})
	if err != nil {
		w.err = err
		return 0
	}
	w.fills[c] = id
	return id
}

func (w *sheetWriter) set(col int, value any) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellValue(w.sheet, CellByIndex(col, w.row), value)
}

// setText пишет целое число числом, если колонка числовая; остальное строкой
func (w *sheetWriter) setText(col int, text string, numeric bool) {
	if numeric {
		if n, err := strconv.Atoi(text); err == nil {
			w.set(col, n)
			return
		}
	}
	w.set(col, text)
}

func (w *sheetWriter) styleRange(fromCol, toCol, styleID int) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, CellByIndex(fromCol, w.row), CellByIndex(toCol, w.row), styleID)
}

func (w *sheetWriter) merge(fromCol, toCol int) {
	if w.err != nil || fromCol == toCol {
		return
	}
	w.err = w.f.MergeCell(w.sheet, CellByIndex(fromCol, w.row), CellByIndex(toCol, w.row))
}

func (w *sheetWriter) writeText(b *document.TextBlock) {
	switch b.Emphasis {
	case document.EmphasisTitle:
		id := w.style("title", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
		w.set(0, b.Text)
		w.styleRange(0, 0, id)
		w.merge(0, w.width-1)
		w.row += 2
		return
	case document.EmphasisHeading:
		id := w.style("heading", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
		for _, l := range b.Lines() {
			w.set(0, l)
			w.styleRange(0, 0, id)
			w.row++
		}
	default:
		for _, l := range b.Lines() {
			w.set(0, l)
			w.row++
		}
	}
	w.row++
}

func (w *sheetWriter) writeKpi(k *document.KpiSummary) {
	label := w.style("kpi_label", &excelize.Style{Font: &excelize.Font{Bold: true}})
	for _, item := range k.Items {
		w.set(0, item.Label)
		w.styleRange(0, 0, label)
		w.setText(1, item.Value, true)
		w.styleRange(1, 1, w.fill(item.Accent.Tint(kpiTintAlpha)))
		w.row++
	}
	w.row++
}

func (w *sheetWriter) writeTable(t *document.Table) {
	if len(t.Columns) == 0 {
		return
	}

	if !w.widthsSet {
		for i, c := range t.Columns {
			if w.err != nil {
				return
			}
			name := ColName(i)
			w.err = w.f.SetColWidth(w.sheet, name, name, c.Width*w.scale)
		}
		w.widthsSet = true
	}

	header := w.style("header", &excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: document.White.Hex()},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{document.SteelBlue.Hex()}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for i, h := range t.Headers() {
		w.set(i, h)
	}
	w.styleRange(0, len(t.Columns)-1, header)
	w.row++

	// Строки данных без чередования полос
	for _, row := range t.Rows {
		for ci, cell := range row.Cells {
			if ci >= len(t.Columns) {
				break
			}
			w.setText(ci, cell.Text, t.Columns[ci].Numeric)
			if cell.Accent != nil {
				w.styleRange(ci, ci, w.fill(*cell.Accent))
			}
		}
		w.row++
	}
	w.row++
}
