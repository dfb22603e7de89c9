package game

import (
	"github.com/playmatatu/walltowall/internal/physics"
)

// FrameInput is the input sampled for one frame.
type FrameInput struct {
	Launch bool
	Aim    Aim // zero value keeps the previous aim
}

// RunSummary describes a run that ended with the main ball falling out.
type RunSummary struct {
	Score    int
	Launched int
	Duration float64 // simulated seconds
}

// StepResult reports what happened during one Step.
type StepResult struct {
	Launched bool
	Scored   int
	NewBest  bool
	Contacts int
	Retired  int
	Reset    bool
	Run      *RunSummary // set when Reset is true
}

// Snapshot is a read-only copy of the simulation for renderers.
type Snapshot struct {
	Frame       uint64         `json:"frame" msgpack:"frame"`
	Field       physics.Field  `json:"field" msgpack:"field"`
	Primary     physics.Body   `json:"primary" msgpack:"primary"`
	Projectiles []physics.Body `json:"projectiles" msgpack:"projectiles"`
	LeftWall    WallColor      `json:"left_wall" msgpack:"left_wall"`
	RightWall   WallColor      `json:"right_wall" msgpack:"right_wall"`
	Contact     string         `json:"contact" msgpack:"contact"`
	Score       int            `json:"score" msgpack:"score"`
	Best        int            `json:"best" msgpack:"best"`
	ShowHint    bool           `json:"show_hint" msgpack:"show_hint"`
	Paused      bool           `json:"paused" msgpack:"paused"`
	Cannon      physics.Vec2   `json:"cannon" msgpack:"cannon"`
	Aim         Aim            `json:"aim" msgpack:"aim"`
}

// Simulation owns the main ball and projectiles of one player along with
// their score. It is not safe for concurrent use; one goroutine drives Step.
type Simulation struct {
	field       physics.Field
	gravity     float64
	primary     physics.Body
	projectiles []physics.Body
	contact     ContactSide
	score       *Scoreboard
	aim         Aim
	showHint    bool
	paused      bool
	frame       uint64

	runLaunched int
	runTime     float64
}

// NewSimulation creates a simulation on field f with base gravity.
// The best score is loaded from store, which may be nil.
func NewSimulation(f physics.Field, gravity float64, store ScoreStore) *Simulation {
	return &Simulation{
		field:       f,
		gravity:     gravity,
		primary:     physics.NewPrimary(f),
		projectiles: make([]physics.Body, 0, 16),
		score:       NewScoreboard(store),
		aim:         DefaultAim(),
		showHint:    true,
	}
}

// Step advances the simulation by dt seconds on field f.
func (s *Simulation) Step(in FrameInput, dt float64, f physics.Field) StepResult {
	var res StepResult
	if in.Aim.valid() {
		s.aim = in.Aim
	}
	if s.paused {
		return res
	}
	if dt < 0 {
		dt = 0
	}

	s.field = f
	s.frame++
	s.runTime += dt

	if in.Launch {
		s.launch()
		res.Launched = true
	}

	physics.Integrate(&s.primary, physics.PrimaryGravity(s.gravity, len(s.projectiles)), dt)
	for i := range s.projectiles {
		physics.Integrate(&s.projectiles[i], s.gravity, dt)
	}

	hits := physics.ReflectWalls(&s.primary, f)
	if hits.Right {
		s.contactWall(WallRight, &res)
	}
	if hits.Left {
		s.contactWall(WallLeft, &res)
	}
	for i := range s.projectiles {
		physics.ReflectWalls(&s.projectiles[i], f)
	}

	res.Contacts = physics.ResolveAgainst(s.projectiles, &s.primary)
	res.Contacts += physics.ResolvePairs(s.projectiles)

	res.Retired = s.retire(f.Height)

	if s.primary.Below(f.Height) {
		res.Run = &RunSummary{Score: s.score.Current, Launched: s.runLaunched, Duration: s.runTime}
		res.Reset = true
		s.resetRun()
	}

	return res
}

func (s *Simulation) launch() {
	s.projectiles = append(s.projectiles, physics.NewProjectile(CannonPosition(s.field), s.aim.Dir))
	s.runLaunched++
}

func (s *Simulation) contactWall(w Wall, res *StepResult) {
	next, scored := s.contact.Hit(w)
	s.contact = next
	if !scored {
		return
	}
	s.showHint = false
	res.Scored++
	if s.score.Increment() {
		res.NewBest = true
	}
}

// retire marks projectiles that left the bottom of the field and then
// filters them out in a separate pass.
func (s *Simulation) retire(height float64) int {
	for i := range s.projectiles {
		if s.projectiles[i].Below(height) {
			s.projectiles[i].Live = false
		}
	}

	kept := s.projectiles[:0]
	for _, p := range s.projectiles {
		if p.Live {
			kept = append(kept, p)
		}
	}
	retired := len(s.projectiles) - len(kept)
	for i := len(kept); i < len(s.projectiles); i++ {
		s.projectiles[i] = physics.Body{}
	}
	s.projectiles = kept
	return retired
}

func (s *Simulation) resetRun() {
	s.primary = physics.NewPrimary(s.field)
	s.contact = ContactNone
	s.score.ResetRun()
	s.runLaunched = 0
	s.runTime = 0
}

// SetPaused freezes or resumes the simulation. Aim still follows input
// while paused.
func (s *Simulation) SetPaused(p bool) {
	s.paused = p
}

func (s *Simulation) Paused() bool {
	return s.paused
}

func (s *Simulation) Score() int {
	return s.score.Current
}

func (s *Simulation) Best() int {
	return s.score.Best
}

func (s *Simulation) Contact() ContactSide {
	return s.contact
}

// ProjectileCount returns the number of live projectiles.
func (s *Simulation) ProjectileCount() int {
	return len(s.projectiles)
}

func (s *Simulation) Field() physics.Field {
	return s.field
}

// Snapshot copies the current state for rendering.
func (s *Simulation) Snapshot() Snapshot {
	left, right := s.contact.WallColors()
	projectiles := make([]physics.Body, len(s.projectiles))
	copy(projectiles, s.projectiles)

	return Snapshot{
		Frame:       s.frame,
		Field:       s.field,
		Primary:     s.primary,
		Projectiles: projectiles,
		LeftWall:    left,
		RightWall:   right,
		Contact:     s.contact.String(),
		Score:       s.score.Current,
		Best:        s.score.Best,
		ShowHint:    s.showHint,
		Paused:      s.paused,
		Cannon:      CannonPosition(s.field),
		Aim:         s.aim,
	}
}
