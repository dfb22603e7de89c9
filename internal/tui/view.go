package tui

import (
	"github.com/playmatatu/walltowall/internal/physics"
)

// hudRows is the number of terminal rows above the field.
const hudRows = 1

// View maps field coordinates onto the terminal grid. The field is
// stretched to fill every column and every row below the HUD.
type View struct {
	Cols, Rows int
	Field      physics.Field
}

func NewView(cols, rows int, f physics.Field) View {
	return View{Cols: cols, Rows: rows, Field: f}
}

func (v View) fieldRows() int {
	if n := v.Rows - hudRows; n > 0 {
		return n
	}
	return 1
}

func (v View) cellW() float64 {
	if v.Cols <= 0 {
		return v.Field.Width
	}
	return v.Field.Width / float64(v.Cols)
}

func (v View) cellH() float64 {
	return v.Field.Height / float64(v.fieldRows())
}

// ToCell returns the cell containing field point p.
func (v View) ToCell(p physics.Vec2) (x, y int) {
	x = int(p.X / v.cellW())
	y = int(p.Y/v.cellH()) + hudRows
	return x, y
}

// ToField returns the field point at the center of cell (x, y).
func (v View) ToField(x, y int) physics.Vec2 {
	return physics.NewVec2(
		(float64(x)+0.5)*v.cellW(),
		(float64(y-hudRows)+0.5)*v.cellH(),
	)
}

// InField reports whether the cell lies on the field.
func (v View) InField(x, y int) bool {
	return x >= 0 && x < v.Cols && y >= hudRows && y < v.Rows
}

// Pause box, in field coordinates
const (
	pauseBoxMin = 50.0
	pauseBoxMax = 100.0
)

// InPauseBox reports whether a field point falls on the pause button.
func InPauseBox(p physics.Vec2) bool {
	return p.X >= pauseBoxMin && p.X <= pauseBoxMax && p.Y >= pauseBoxMin && p.Y <= pauseBoxMax
}
