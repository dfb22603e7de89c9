package game

import "time"

// TimeProvider returns the current wall-clock time.
type TimeProvider func() time.Time

// FrameClock measures simulated time between frames. Time spent paused is
// never reported, and a single frame never reports more than maxStep.
type FrameClock struct {
	now     TimeProvider
	last    time.Time
	paused  bool
	maxStep time.Duration

	pausedSince time.Time
	totalPaused time.Duration
}

// NewFrameClock starts a clock at the current time. maxStep <= 0 disables
// the per-frame cap.
func NewFrameClock(maxStep time.Duration) *FrameClock {
	return NewFrameClockWithProvider(time.Now, maxStep)
}

// NewFrameClockWithProvider is NewFrameClock with an explicit time source.
func NewFrameClockWithProvider(now TimeProvider, maxStep time.Duration) *FrameClock {
	return &FrameClock{now: now, last: now(), maxStep: maxStep}
}

// Tick returns the seconds of active time elapsed since the previous Tick.
func (c *FrameClock) Tick() float64 {
	now := c.now()
	if c.paused {
		c.last = now
		return 0
	}

	d := now.Sub(c.last)
	c.last = now
	if d < 0 {
		return 0
	}
	if c.maxStep > 0 && d > c.maxStep {
		d = c.maxStep
	}
	return d.Seconds()
}

// Pause stops time from accumulating.
func (c *FrameClock) Pause() {
	if c.paused {
		return
	}
	c.paused = true
	c.pausedSince = c.now()
}

// Resume restarts accumulation from now.
func (c *FrameClock) Resume() {
	if !c.paused {
		return
	}
	now := c.now()
	c.paused = false
	c.totalPaused += now.Sub(c.pausedSince)
	c.pausedSince = time.Time{}
	c.last = now
}

func (c *FrameClock) Paused() bool {
	return c.paused
}

// TotalPaused returns the cumulative paused duration, including a pause in progress.
func (c *FrameClock) TotalPaused() time.Duration {
	total := c.totalPaused
	if c.paused {
		total += c.now().Sub(c.pausedSince)
	}
	return total
}
