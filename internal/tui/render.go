package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/walltowall/internal/game"
	"github.com/playmatatu/walltowall/internal/physics"
)

const (
	hintText   = "Bounce the ball from wall to wall. Click to shoot."
	pausedText = "PAUSED - press p or click the box to resume"
	barrelLen  = 60.0
)

var (
	styleBase       = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleHUD        = styleBase.Foreground(tcell.ColorYellow).Bold(true)
	styleCeiling    = styleBase.Background(tcell.ColorGray)
	stylePrimary    = styleBase.Foreground(tcell.ColorRed)
	styleProjectile = styleBase.Foreground(tcell.ColorWhite)
	styleCannon     = styleBase.Foreground(tcell.ColorSilver)
	stylePause      = styleBase.Foreground(tcell.ColorAqua)
	styleOverlay    = styleBase.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
)

// wallStyle maps a wall color to its cell style.
func wallStyle(c game.WallColor) tcell.Style {
	if c == game.WallSpent {
		return styleBase.Background(tcell.ColorRed)
	}
	return styleBase.Background(tcell.ColorGreen)
}

// Render draws one frame of snap onto screen.
func Render(screen tcell.Screen, v View, snap game.Snapshot) {
	screen.Fill(' ', styleBase)

	drawWalls(screen, v, snap)
	drawPauseBox(screen, v, snap.Paused)
	drawCannon(screen, v, snap.Cannon, snap.Aim)
	for _, p := range snap.Projectiles {
		drawCircle(screen, v, p, '•', styleProjectile)
	}
	drawCircle(screen, v, snap.Primary, '█', stylePrimary)

	drawText(screen, 0, 0, fmt.Sprintf(" Score %d   Best %d ", snap.Score, snap.Best), styleHUD)
	if snap.ShowHint {
		drawCentered(screen, v, v.Rows/3, hintText, styleBase)
	}
	if snap.Paused {
		drawCentered(screen, v, v.Rows/2, " "+pausedText+" ", styleOverlay)
	}

	screen.Show()
}

func drawWalls(screen tcell.Screen, v View, snap game.Snapshot) {
	left, right := wallStyle(snap.LeftWall), wallStyle(snap.RightWall)
	t := v.Field.Thickness
	for y := hudRows; y < v.Rows; y++ {
		for x := 0; x < v.Cols; x++ {
			p := v.ToField(x, y)
			switch {
			case p.X < t:
				screen.SetContent(x, y, ' ', nil, left)
			case p.X > v.Field.Width-t:
				screen.SetContent(x, y, ' ', nil, right)
			case p.Y < t:
				screen.SetContent(x, y, ' ', nil, styleCeiling)
			}
		}
	}
}

// drawCircle fills every cell whose center lies inside b.
func drawCircle(screen tcell.Screen, v View, b physics.Body, ch rune, style tcell.Style) {
	x0, y0 := v.ToCell(physics.NewVec2(b.Center.X-b.Radius, b.Center.Y-b.Radius))
	x1, y1 := v.ToCell(physics.NewVec2(b.Center.X+b.Radius, b.Center.Y+b.Radius))
	r2 := b.Radius * b.Radius
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !v.InField(x, y) {
				continue
			}
			if v.ToField(x, y).DistanceSquared(b.Center) <= r2 {
				screen.SetContent(x, y, ch, nil, style)
			}
		}
	}
	// always mark the center so small bodies stay visible on coarse grids
	if x, y := v.ToCell(b.Center); v.InField(x, y) {
		screen.SetContent(x, y, ch, nil, style)
	}
}

func drawCannon(screen tcell.Screen, v View, cannon physics.Vec2, aim game.Aim) {
	step := v.cellH() / 2
	for d := 0.0; d <= barrelLen; d += step {
		p := cannon.Plus(aim.Dir.Times(d))
		if x, y := v.ToCell(p); v.InField(x, y) {
			screen.SetContent(x, y, '▓', nil, styleCannon)
		}
	}
	x, y := v.ToCell(physics.NewVec2(cannon.X, cannon.Y-1))
	for dx := -2; dx <= 2; dx++ {
		if v.InField(x+dx, y) {
			screen.SetContent(x+dx, y, '▀', nil, styleCannon)
		}
	}
}

func drawPauseBox(screen tcell.Screen, v View, paused bool) {
	x0, y0 := v.ToCell(physics.NewVec2(pauseBoxMin, pauseBoxMin))
	x1, y1 := v.ToCell(physics.NewVec2(pauseBoxMax, pauseBoxMax))
	glyph := '‖'
	if paused {
		glyph = '▶'
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if v.InField(x, y) {
				screen.SetContent(x, y, glyph, nil, stylePause)
			}
		}
	}
}

func drawText(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func drawCentered(screen tcell.Screen, v View, y int, s string, style tcell.Style) {
	x := (v.Cols - len([]rune(s))) / 2
	if x < 0 {
		x = 0
	}
	drawText(screen, x, y, s, style)
}
