// services/report-svc/internal/document/color.go
package document

import "fmt"

// Color RGB цвет, независимый от библиотеки отрисовки
type Color struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// RGB создаёт цвет
func RGB(r, g, b uint8) Color {
	return Color{Red: r, Green: g, Blue: b}
}

// Hex возвращает цвет в виде RRGGBB без решётки
func (c Color) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.Red, c.Green, c.Blue)
}

// Tint накладывает цвет на белый фон с прозрачностью alpha/255
func (c Color) Tint(alpha uint8) Color {
	blend := func(v uint8) uint8 {
		return uint8((int(v)*int(alpha) + 255*(255-int(alpha)) + 127) / 255)
	}
	return Color{Red: blend(c.Red), Green: blend(c.Green), Blue: blend(c.Blue)}
}

// Палитра
var (
	White     = RGB(255, 255, 255)
	Black     = RGB(0, 0, 0)
	LightGray = RGB(245, 245, 245)
	DarkGray  = RGB(105, 105, 105)
	SteelBlue = RGB(70, 130, 180)

	// Оттенки классификатора
	RedTint    = RGB(255, 200, 200)
	OrangeTint = RGB(255, 220, 200)
	YellowTint = RGB(255, 255, 200)
	GreenTint  = RGB(200, 255, 200)
	BlueTint   = RGB(200, 220, 255)

	// Цвета KPI
	KpiBlue    = RGB(100, 149, 237)
	KpiGreen   = RGB(60, 179, 113)
	KpiOrange  = RGB(255, 165, 0)
	KpiCrimson = RGB(220, 20, 60)
)
