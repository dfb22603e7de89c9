package tui

import (
	"math"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/walltowall/internal/physics"
)

func TestViewRoundTrip(t *testing.T) {
	v := NewView(80, 25, physics.DefaultField())
	for _, c := range [][2]int{{0, 1}, {40, 13}, {79, 24}, {7, 4}} {
		p := v.ToField(c[0], c[1])
		x, y := v.ToCell(p)
		if x != c[0] || y != c[1] {
			t.Errorf("cell %v -> %+v -> (%d,%d)", c, p, x, y)
		}
	}

	x, y := v.ToCell(physics.NewVec2(400, 300))
	if x != 40 || y != 13 {
		t.Errorf("field center at (%d,%d), want (40,13)", x, y)
	}
	if v.InField(0, 0) {
		t.Error("HUD row reported as field")
	}
}

func TestInPauseBox(t *testing.T) {
	tests := []struct {
		p    physics.Vec2
		want bool
	}{
		{physics.NewVec2(75, 75), true},
		{physics.NewVec2(50, 100), true},
		{physics.NewVec2(49, 75), false},
		{physics.NewVec2(400, 300), false},
	}
	for _, tt := range tests {
		if got := InPauseBox(tt.p); got != tt.want {
			t.Errorf("InPauseBox(%+v) = %v", tt.p, got)
		}
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	screen.SetSize(80, 25)
	t.Cleanup(screen.Fini)
	return newApp(screen, Options{Field: physics.DefaultField(), Gravity: physics.Gravity})
}

func TestClickLaunchesOutsidePauseBox(t *testing.T) {
	a := newTestApp(t)

	a.handleEvent(tcell.NewEventMouse(40, 5, tcell.Button1, tcell.ModNone))
	if !a.input.Launch {
		t.Fatal("click did not request a launch")
	}
	if a.input.Aim.Dir.Y >= 0 {
		t.Errorf("aim %+v should point up", a.input.Aim.Dir)
	}

	a.frame()
	if a.sim.ProjectileCount() != 1 || a.input.Launch {
		t.Errorf("projectiles = %d, launch pending = %v", a.sim.ProjectileCount(), a.input.Launch)
	}
}

func TestClickOnPauseBoxTogglesWithoutLaunch(t *testing.T) {
	a := newTestApp(t)

	a.handleEvent(tcell.NewEventMouse(7, 4, tcell.Button1, tcell.ModNone))
	if !a.sim.Paused() || !a.clock.Paused() {
		t.Fatal("pause box click did not pause")
	}
	if a.input.Launch {
		t.Error("pause click requested a launch")
	}

	// holding the button is not a second click
	a.handleEvent(tcell.NewEventMouse(7, 4, tcell.Button1, tcell.ModNone))
	if !a.sim.Paused() {
		t.Error("held button toggled pause again")
	}

	a.handleEvent(tcell.NewEventMouse(7, 4, tcell.ButtonNone, tcell.ModNone))
	a.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone))
	if a.sim.Paused() {
		t.Error("p did not resume")
	}
}

func TestQuitKeys(t *testing.T) {
	a := newTestApp(t)
	if a.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Error("q did not quit")
	}
	if a.handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("Esc did not quit")
	}
}

func TestRenderDrawsPrimaryAndWalls(t *testing.T) {
	a := newTestApp(t)
	a.frame()

	screen := a.screen.(tcell.SimulationScreen)
	c, _, _, _ := screen.GetContent(40, 13)
	if c != '█' {
		t.Errorf("center cell = %q, want primary", c)
	}

	_, _, style, _ := screen.GetContent(0, 10)
	_, bg, _ := style.Decompose()
	if bg != tcell.ColorGreen {
		t.Errorf("left wall background = %v, want green", bg)
	}

	snap := a.sim.Snapshot()
	if math.Abs(snap.Primary.Center.X-400) > 1e-9 {
		t.Errorf("primary x = %v", snap.Primary.Center.X)
	}
}
