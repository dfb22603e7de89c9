package game

import (
	"context"
	"log"
	"time"
)

// ScoreStore persists the best score of whoever is playing.
type ScoreStore interface {
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, score int) error
}

// Flusher is implemented by stores that save in the background.
type Flusher interface {
	Flush()
}

const storeTimeout = 2 * time.Second

// Scoreboard holds the current run score and the best score seen so far.
type Scoreboard struct {
	Current int
	Best    int
	store   ScoreStore
}

// NewScoreboard loads the best score from store. A failing or nil store
// starts from zero.
func NewScoreboard(store ScoreStore) *Scoreboard {
	s := &Scoreboard{store: store}
	if store == nil {
		return s
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	best, err := store.Load(ctx)
	if err != nil {
		log.Printf("[SCORES] Failed to load best score, starting from 0: %v", err)
		return s
	}
	if best > 0 {
		s.Best = best
	}
	return s
}

// Increment adds a point to the current run and saves a new best score.
// It reports whether the best score changed.
func (s *Scoreboard) Increment() bool {
	s.Current++
	if s.Current <= s.Best {
		return false
	}
	s.Best = s.Current
	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := s.store.Save(ctx, s.Best); err != nil {
			log.Printf("[SCORES] Failed to save best score %d: %v", s.Best, err)
		}
	}
	return true
}

// ResetRun zeroes the current score. The best score is kept.
func (s *Scoreboard) ResetRun() {
	s.Current = 0
}
