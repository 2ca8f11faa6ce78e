// services/report-svc/internal/generator/pdf.go
package generator

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"taskflow/pkg/apperror"
	"taskflow/services/report-svc/internal/document"
)

// Ширина сетки maroto
const gridSize = 12

// Прозрачность фона карточек KPI
const kpiTintAlpha = 50

// PDFConfig параметры страницы PDF
type PDFConfig struct {
	PageSize    string  // A4, A3, Letter, Legal
	MarginTop   float64 // mm
	MarginLeft  float64 // mm
	MarginRight float64 // mm
	PageNumbers bool
}

// DefaultPDFConfig A4 с полями 12.7 мм и увеличенным верхним полем
func DefaultPDFConfig() PDFConfig {
	return PDFConfig{
		PageSize:    "A4",
		MarginTop:   19,
		MarginLeft:  12.7,
		MarginRight: 12.7,
		PageNumbers: true,
	}
}

// PDFRenderer рендерер PDF документов
type PDFRenderer struct {
	cfg PDFConfig
}

// NewPDFRenderer создаёт новый рендерер
func NewPDFRenderer(cfg PDFConfig) *PDFRenderer {
	return &PDFRenderer{cfg: cfg}
}

// Format возвращает формат рендерера
func (r *PDFRenderer) Format() Format {
	return FormatPDF
}

// MIMEType возвращает MIME тип результата
func (r *PDFRenderer) MIMEType() string {
	return MIMETypePDF
}

// Стили
var (
	mutedColor     = toProps(document.DarkGray)
	whiteColor     = toProps(document.White)
	bandColor      = toProps(document.LightGray)
	headerBgColor  = toProps(document.SteelBlue)
	lightLineColor = &props.Color{Red: 220, Green: 220, Blue: 220}

	// Стили текста по начертанию
	titleStyle = props.Text{
		Size:  18,
		Style: fontstyle.Bold,
		Top:   2,
	}

	headingStyle = props.Text{
		Size:  12,
		Style: fontstyle.Bold,
		Top:   3,
	}

	normalStyle = props.Text{
		Size: 10,
		Top:  1,
	}

	smallStyle = props.Text{
		Size:  9,
		Color: mutedColor,
		Top:   1,
	}

	kpiLabelStyle = props.Text{
		Size:  9,
		Align: align.Center,
		Top:   3,
	}

	kpiValueStyle = props.Text{
		Size:  14,
		Style: fontstyle.Bold,
		Align: align.Center,
		Top:   9,
	}

	tableHeaderStyle = &props.Cell{
		BackgroundColor: headerBgColor,
	}

	tableHeaderTextStyle = props.Text{
		Size:  10,
		Style: fontstyle.Bold,
		Color: whiteColor,
		Align: align.Center,
		Top:   2,
	}

	// Top и Bottom задают отступы строки данных: её высота считается по тексту
	tableCellTextStyle = props.Text{
		Size:   9,
		Align:  align.Center,
		Top:    1.5,
		Bottom: 1.5,
	}
)

// Высоты строк по начертанию, мм
var rowHeights = map[document.Emphasis]float64{
	document.EmphasisTitle:   12,
	document.EmphasisHeading: 10,
	document.EmphasisNormal:  7,
	document.EmphasisSmall:   6,
}

func toProps(c document.Color) *props.Color {
	return &props.Color{Red: int(c.Red), Green: int(c.Green), Blue: int(c.Blue)}
}

// Render генерирует PDF документ
func (r *PDFRenderer) Render(ctx context.Context, doc *document.Document) ([]byte, error) {
	if doc == nil {
		return nil, apperror.ErrNilDocument
	}

	m := maroto.New(r.buildConfig(doc))

	for _, s := range doc.Sections {
		var err error
		switch sec := s.(type) {
		case *document.TextBlock:
			r.addText(m, sec)
		case *document.KpiSummary:
			err = r.addKpi(m, sec)
		case *document.Table:
			err = r.addTable(m, sec)
		default:
			err = fmt.Errorf("unknown section kind %s", s.Kind())
		}
		if err != nil {
			return nil, renderingFailed(FormatPDF, err)
		}
	}

	pdf, err := m.Generate()
	if err != nil {
		return nil, renderingFailed(FormatPDF, err)
	}

	return pdf.GetBytes(), nil
}

func (r *PDFRenderer) buildConfig(doc *document.Document) *entity.Config {
	b := config.NewBuilder().
		WithPageSize(pageSize(r.cfg.PageSize)).
		WithLeftMargin(r.cfg.MarginLeft).
		WithTopMargin(r.cfg.MarginTop).
		WithRightMargin(r.cfg.MarginRight)

	if r.cfg.PageNumbers {
		b = b.WithPageNumber()
	}
	if doc.Title != "" {
		b = b.WithTitle(doc.Title, true)
	}
	if doc.GeneratedBy != "" {
		b = b.WithAuthor(doc.GeneratedBy, true)
	}

	return b.Build()
}

func pageSize(name string) pagesize.Type {
	switch name {
	case "A3":
		return pagesize.A3
	case "Letter":
		return pagesize.Letter
	case "Legal":
		return pagesize.Legal
	default:
		return pagesize.A4
	}
}

func textStyle(b *document.TextBlock) props.Text {
	var style props.Text
	switch b.Emphasis {
	case document.EmphasisTitle:
		style = titleStyle
	case document.EmphasisHeading:
		style = headingStyle
	case document.EmphasisSmall:
		style = smallStyle
	default:
		style = normalStyle
	}
	if b.Align == document.AlignCenter {
		style.Align = align.Center
	}
	return style
}

func (r *PDFRenderer) addText(m core.Maroto, b *document.TextBlock) {
	style := textStyle(b)
	height := rowHeights[b.Emphasis]

	for _, l := range b.Lines() {
		m.AddRow(height, text.NewCol(gridSize, l, style))
	}

	if b.Emphasis == document.EmphasisTitle {
		m.AddRow(3, line.NewCol(gridSize, props.Line{Color: headerBgColor}))
		m.AddRow(3)
	}
}

func (r *PDFRenderer) addKpi(m core.Maroto, k *document.KpiSummary) error {
	if len(k.Items) == 0 {
		return nil
	}
	if len(k.Items) > gridSize {
		return apperror.Newf(apperror.CodeLayoutOverflow,
			"kpi summary has %d items, grid allows %d", len(k.Items), gridSize)
	}

	colSize := gridSize / len(k.Items)

	cols := make([]core.Col, 0, len(k.Items))
	for _, item := range k.Items {
		valueStyle := kpiValueStyle
		valueStyle.Color = toProps(item.Accent)

		cols = append(cols,
			col.New(colSize).Add(
				text.New(item.Label, kpiLabelStyle),
				text.New(item.Value, valueStyle),
			).WithStyle(&props.Cell{
				BackgroundColor: toProps(item.Accent.Tint(kpiTintAlpha)),
				BorderType:      border.Full,
				BorderColor:     whiteColor,
				BorderThickness: 1.5,
			}),
		)
	}

	m.AddRow(4)
	m.AddRow(20, cols...)
	m.AddRow(4)
	return nil
}

func (r *PDFRenderer) addTable(m core.Maroto, t *document.Table) error {
	widths := make([]float64, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = c.Width
	}

	sizes, err := GridSizes(widths, gridSize)
	if err != nil {
		return err
	}
	if len(sizes) == 0 {
		return nil
	}

	header := make([]core.Col, len(t.Columns))
	for i, h := range t.Headers() {
		header[i] = text.NewCol(sizes[i], h, tableHeaderTextStyle).WithStyle(tableHeaderStyle)
	}
	m.AddRow(9, header...)

	for ri, row := range t.Rows {
		if len(row.Cells) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, table has %d columns", ri, len(row.Cells), len(t.Columns))
		}

		cols := make([]core.Col, len(row.Cells))
		for ci, cell := range row.Cells {
			style := tableCellTextStyle
			if ci == 0 {
				style.Align = align.Left
				style.Left = 2
			}
			cols[ci] = text.NewCol(sizes[ci], cell.Text, style).WithStyle(cellStyle(cell))
		}
		// длинный заголовок переносится, строка растёт под него
		m.AddAutoRow(cols...)
	}

	m.AddRow(4)
	return nil
}

// cellStyle фон ячейки: выделение перекрывает чередование полос
func cellStyle(cell document.Cell) *props.Cell {
	bg := whiteColor
	if cell.Band == 1 {
		bg = bandColor
	}
	if cell.Accent != nil {
		bg = toProps(*cell.Accent)
	}
	return &props.Cell{
		BackgroundColor: bg,
		BorderType:      border.Bottom,
		BorderColor:     lightLineColor,
	}
}
