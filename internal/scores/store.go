package scores

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/playmatatu/walltowall/internal/game"
	"github.com/playmatatu/walltowall/internal/models"
)

var ErrPlayerNotFound = errors.New("player not found")

// Repository stores per-player best scores and run history.
type Repository interface {
	Best(ctx context.Context, playerID int) (int, error)
	// SaveBest keeps the higher of the stored and the given score.
	SaveBest(ctx context.Context, playerID, score int) error
	ResetBest(ctx context.Context, playerID int) error
	RecordRun(ctx context.Context, run models.Run) error
	Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	// Rank is 1-based; 0 means the player has no score yet.
	Rank(ctx context.Context, playerID int) (int, error)
}

const saveTimeout = 5 * time.Second

// PlayerStore adapts a Repository to the ScoreStore of one player. Saves run
// on a background goroutine so the session loop never waits on storage;
// scores queued while a save is in flight collapse into the highest one.
type PlayerStore struct {
	repo     Repository
	playerID int

	mu      sync.Mutex
	idle    *sync.Cond
	pending int
	saving  bool
}

func NewPlayerStore(repo Repository, playerID int) *PlayerStore {
	p := &PlayerStore{repo: repo, playerID: playerID}
	p.idle = sync.NewCond(&p.mu)
	return p
}

func (p *PlayerStore) Load(ctx context.Context) (int, error) {
	return p.repo.Best(ctx, p.playerID)
}

// Save queues score and returns at once. Failures are logged.
func (p *PlayerStore) Save(_ context.Context, score int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if score > p.pending {
		p.pending = score
	}
	if !p.saving {
		p.saving = true
		go p.drain()
	}
	return nil
}

func (p *PlayerStore) drain() {
	for {
		p.mu.Lock()
		score := p.pending
		p.pending = 0
		if score == 0 {
			p.saving = false
			p.idle.Broadcast()
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := p.repo.SaveBest(ctx, p.playerID, score); err != nil {
			log.Printf("[SCORES] Failed to save best %d for player %d: %v", score, p.playerID, err)
		}
		cancel()
	}
}

// Flush blocks until every queued save has been attempted.
func (p *PlayerStore) Flush() {
	p.mu.Lock()
	for p.saving {
		p.idle.Wait()
	}
	p.mu.Unlock()
}

// Backend hands sessions a store per player and records their runs.
type Backend struct {
	Repo Repository
}

func NewBackend(repo Repository) *Backend {
	return &Backend{Repo: repo}
}

func (b *Backend) StoreFor(playerID int) game.ScoreStore {
	return NewPlayerStore(b.Repo, playerID)
}

func (b *Backend) RecordRun(ctx context.Context, run models.Run) error {
	return b.Repo.RecordRun(ctx, run)
}

// rankEntries numbers a sorted leaderboard from 1.
func rankEntries(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
