package tui

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/walltowall/internal/game"
	"github.com/playmatatu/walltowall/internal/physics"
)

const frameInterval = 16 * time.Millisecond

// Options configures the terminal client.
type Options struct {
	Field    physics.Field
	Gravity  float64
	MaxFrame time.Duration
	Store    game.ScoreStore // may be nil
	Sound    bool
}

// App runs one local simulation on a tcell screen.
type App struct {
	screen tcell.Screen
	view   View
	sim    *game.Simulation
	clock  *game.FrameClock
	audio  *Audio
	field  physics.Field

	input   game.FrameInput
	buttons tcell.ButtonMask
}

// New initialises the screen. Call Close when done.
func New(opts Options) (*App, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	return newApp(screen, opts), nil
}

func newApp(screen tcell.Screen, opts Options) *App {
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()
	screen.SetStyle(styleBase)

	cols, rows := screen.Size()
	a := &App{
		screen: screen,
		view:   NewView(cols, rows, opts.Field),
		sim:    game.NewSimulation(opts.Field, opts.Gravity, opts.Store),
		clock:  game.NewFrameClock(opts.MaxFrame),
		field:  opts.Field,
	}
	if opts.Sound {
		a.audio = NewAudio()
	}
	return a
}

// Run drives the frame loop until ctx is cancelled or the player quits.
func (a *App) Run(ctx context.Context) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok || !a.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			a.frame()
		}
	}
}

func (a *App) frame() {
	res := a.sim.Step(a.input, a.clock.Tick(), a.field)
	a.input.Launch = false

	if a.audio != nil {
		switch {
		case res.Reset:
			a.audio.Reset()
		case res.NewBest:
			a.audio.NewBest()
		case res.Scored > 0:
			a.audio.Score()
		}
	}
	if res.Run != nil {
		log.Printf("[GAME] Run ended: score=%d launched=%d duration=%.1fs", res.Run.Score, res.Run.Launched, res.Run.Duration)
	}

	Render(a.screen, a.view, a.sim.Snapshot())
}

// handleEvent applies one terminal event; it returns false to quit.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			return false
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'p' || ev.Rune() == 'P' || ev.Rune() == ' '):
			a.togglePause()
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		p := a.view.ToField(x, y)
		a.input.Aim = game.AimAt(game.CannonPosition(a.field), p)

		pressed := ev.Buttons()&tcell.Button1 != 0
		wasPressed := a.buttons&tcell.Button1 != 0
		a.buttons = ev.Buttons()
		if pressed && !wasPressed {
			a.click(p)
		}

	case *tcell.EventResize:
		cols, rows := a.screen.Size()
		a.view = NewView(cols, rows, a.field)
		a.screen.Sync()
	}
	return true
}

// click toggles pause on the pause box and launches anywhere else.
// A click that toggles pause never launches.
func (a *App) click(p physics.Vec2) {
	if InPauseBox(p) {
		a.togglePause()
		return
	}
	if !a.sim.Paused() {
		a.input.Launch = true
	}
}

func (a *App) togglePause() {
	if a.sim.Paused() {
		a.clock.Resume()
		a.sim.SetPaused(false)
		return
	}
	a.sim.SetPaused(true)
	a.clock.Pause()
}

// Close restores the terminal and stops audio.
func (a *App) Close() {
	if a.audio != nil {
		a.audio.Close()
	}
	a.screen.Fini()
}
