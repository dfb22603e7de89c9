package game

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playmatatu/walltowall/internal/config"
	"github.com/playmatatu/walltowall/internal/models"
	"github.com/playmatatu/walltowall/internal/physics"
)

// InputKind is the type of a client input message.
type InputKind string

const (
	InputAim    InputKind = "aim"
	InputLaunch InputKind = "launch"
	InputPause  InputKind = "pause"
	InputResume InputKind = "resume"
	InputResize InputKind = "resize"
)

// Input is a single client action queued for the session loop.
type Input struct {
	Kind    InputKind
	Pointer physics.Vec2 // aim, launch
	Width   float64      // resize
	Height  float64      // resize
}

// Emitter receives snapshots produced by a session.
type Emitter interface {
	Emit(Snapshot)
}

// RunRecorder stores finished runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, run models.Run) error
}

const inputBuffer = 64

// Session runs one player's simulation on its own goroutine.
type Session struct {
	ID        string
	PlayerID  int
	CreatedAt time.Time

	sim      *Simulation
	clock    *FrameClock
	field    physics.Field
	frame    FrameInput
	store    ScoreStore
	emitter  Emitter
	recorder RunRecorder

	tick          time.Duration
	snapshotEvery int
	ticks         uint64

	inputs   chan Input
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	status       atomic.Value // SessionStatus
	lastActivity atomic.Int64
	pausedNanos  atomic.Int64 // total paused time as of the last resume
}

// NewSession creates a session for playerID. store and recorder may be nil.
func NewSession(id string, playerID int, cfg *config.Config, store ScoreStore, recorder RunRecorder, emitter Emitter) *Session {
	field := physics.Field{Width: cfg.FieldWidth, Height: cfg.FieldHeight, Thickness: cfg.WallThickness}
	every := cfg.SnapshotEvery
	if every <= 0 {
		every = 1
	}

	s := &Session{
		ID:            id,
		PlayerID:      playerID,
		CreatedAt:     time.Now(),
		sim:           NewSimulation(field, cfg.Gravity, store),
		clock:         NewFrameClock(cfg.MaxFrame()),
		field:         field,
		store:         store,
		emitter:       emitter,
		recorder:      recorder,
		tick:          cfg.TickInterval(),
		snapshotEvery: every,
		inputs:        make(chan Input, inputBuffer),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	s.status.Store(StatusStarting)
	s.lastActivity.Store(time.Now().Unix())
	return s
}

// Send queues an input for the next frame. It reports false when the
// session is stopped or its queue is full.
func (s *Session) Send(in Input) bool {
	select {
	case <-s.stop:
		return false
	default:
	}

	select {
	case s.inputs <- in:
		s.lastActivity.Store(time.Now().Unix())
		return true
	default:
		log.Printf("[SESSION] Input queue full for session %s, dropping %s", s.ID, in.Kind)
		return false
	}
}

// Run drives the frame loop until ctx is cancelled or Stop is called.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer func() {
		ticker.Stop()
		s.status.Store(StatusStopped)
		close(s.done)
		if f, ok := s.store.(Flusher); ok {
			f.Flush()
		}
	}()

	s.status.Store(StatusRunning)
	log.Printf("[SESSION] Session %s started for player %d (best=%d)", s.ID, s.PlayerID, s.sim.Best())
	s.emit()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case in := <-s.inputs:
			s.apply(in)
		case <-ticker.C:
			s.step()
		}
	}
}

// Stop ends the loop. It is safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// Done is closed once the loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Status() SessionStatus {
	return s.status.Load().(SessionStatus)
}

// LastActivity returns the time of the last accepted input.
func (s *Session) LastActivity() time.Time {
	return time.Unix(s.lastActivity.Load(), 0)
}

// Info is safe to call from any goroutine.
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:            s.ID,
		PlayerID:      s.PlayerID,
		Status:        s.Status(),
		CreatedAt:     s.CreatedAt,
		LastActivity:  s.LastActivity(),
		PausedSeconds: time.Duration(s.pausedNanos.Load()).Seconds(),
	}
}

func (s *Session) apply(in Input) {
	cannon := CannonPosition(s.field)

	switch in.Kind {
	case InputAim:
		s.frame.Aim = AimAt(cannon, in.Pointer)
	case InputLaunch:
		s.frame.Aim = AimAt(cannon, in.Pointer)
		if !s.sim.Paused() {
			s.frame.Launch = true
		}
	case InputPause:
		s.sim.SetPaused(true)
		s.clock.Pause()
		s.status.Store(StatusPaused)
		s.emit()
	case InputResume:
		s.clock.Resume()
		s.pausedNanos.Store(int64(s.clock.TotalPaused()))
		s.sim.SetPaused(false)
		s.status.Store(StatusRunning)
	case InputResize:
		f := physics.Field{Width: in.Width, Height: in.Height, Thickness: s.field.Thickness}
		if !f.Valid(physics.PrimaryRadius) {
			log.Printf("[SESSION] Ignoring invalid resize %.0fx%.0f for session %s", in.Width, in.Height, s.ID)
			return
		}
		s.field = f
	default:
		log.Printf("[SESSION] Unknown input %q for session %s", in.Kind, s.ID)
	}
}

func (s *Session) step() {
	dt := s.clock.Tick()
	res := s.sim.Step(s.frame, dt, s.field)
	s.frame = FrameInput{}
	s.ticks++

	if res.Run != nil {
		s.record(*res.Run)
	}
	if s.ticks%uint64(s.snapshotEvery) == 0 || res.Reset || res.Scored > 0 {
		s.emit()
	}
}

func (s *Session) emit() {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(s.sim.Snapshot())
}

func (s *Session) record(run RunSummary) {
	log.Printf("[SESSION] Run ended for player %d in session %s: score=%d launched=%d duration=%.1fs",
		s.PlayerID, s.ID, run.Score, run.Launched, run.Duration)
	if s.recorder == nil || s.PlayerID == 0 {
		return
	}

	row := models.Run{
		PlayerID:        s.PlayerID,
		Score:           run.Score,
		Launched:        run.Launched,
		DurationSeconds: run.Duration,
		EndedAt:         time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.recorder.RecordRun(ctx, row); err != nil {
			log.Printf("[DB] Failed to record run for player %d: %v", row.PlayerID, err)
		}
	}()
}
