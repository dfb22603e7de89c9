package tui

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Audio plays short tones for game events. It is a no-op when the speaker
// could not be opened.
type Audio struct {
	mu      sync.Mutex
	enabled bool
}

// NewAudio opens the speaker. Failure is logged and leaves audio disabled.
func NewAudio() *Audio {
	a := &Audio{}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		log.Printf("[AUDIO] Audio initialization failed: %v", err)
		return a
	}
	a.enabled = true
	return a
}

func (a *Audio) tone(freq float64, d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.enabled {
		return
	}

	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		log.Printf("[AUDIO] tone %.0fHz: %v", freq, err)
		return
	}
	speaker.Play(beep.Take(sampleRate.N(d), sine))
}

// Score plays a short high blip.
func (a *Audio) Score() {
	a.tone(880, 60*time.Millisecond)
}

// NewBest plays a brighter blip.
func (a *Audio) NewBest() {
	a.tone(1320, 90*time.Millisecond)
}

// Reset plays a low tone when the ball falls out.
func (a *Audio) Reset() {
	a.tone(220, 200*time.Millisecond)
}

func (a *Audio) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enabled {
		speaker.Close()
		a.enabled = false
	}
}
