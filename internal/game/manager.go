package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/playmatatu/walltowall/internal/config"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("too many active sessions")
)

// Redis keys used for idle tracking
const (
	idleSetKey        = "session_idle"
	lastActivePrefix  = "last_active:"
	SessionEventsChan = "session_events"
)

// ScoreBackend provides per-player score storage to sessions.
type ScoreBackend interface {
	StoreFor(playerID int) ScoreStore
	RunRecorder
}

// SessionManager manages all active play sessions
type SessionManager struct {
	sessions        map[string]*Session // keyed by session ID
	playerToSession map[int]string      // player ID -> session ID
	rdb             *redis.Client       // Redis client for idle tracking
	backend         ScoreBackend        // best scores and run history
	config          *config.Config
	mu              sync.RWMutex
	running         sync.WaitGroup // session loops, including their final flush
}

var (
	// Global session manager instance
	Manager *SessionManager
)

// InitializeManager initializes the global session manager
func InitializeManager(rdb *redis.Client, backend ScoreBackend, cfg *config.Config) {
	Manager = NewSessionManager(rdb, backend, cfg)
}

// NewSessionManager creates a new session manager
func NewSessionManager(rdb *redis.Client, backend ScoreBackend, cfg *config.Config) *SessionManager {
	return &SessionManager{
		sessions:        make(map[string]*Session),
		playerToSession: make(map[int]string),
		rdb:             rdb,
		backend:         backend,
		config:          cfg,
	}
}

// generateToken generates a secure random token
func generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// generateSessionID generates a unique session ID
func generateSessionID() (string, error) {
	token, err := generateToken(8)
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return "sess_" + token, nil
}

// SessionBinder is implemented by emitters that need their session before
// its loop starts.
type SessionBinder interface {
	BindSession(s *Session)
}

// full reports whether starting a session for playerID would exceed the cap.
// A session the player already has does not count, since it gets replaced.
func (m *SessionManager) full(playerID int) bool {
	if m.config.MaxSessions <= 0 {
		return false
	}
	n := len(m.sessions)
	if _, exists := m.playerToSession[playerID]; exists {
		n--
	}
	return n >= m.config.MaxSessions
}

// Start creates a session for playerID and runs it until ctx is cancelled or
// the session is stopped. An existing session of the same player is replaced.
// The best score is loaded before the manager lock is taken.
func (m *SessionManager) Start(ctx context.Context, playerID int, emitter Emitter) (*Session, error) {
	m.mu.RLock()
	full := m.full(playerID)
	m.mu.RUnlock()
	if full {
		return nil, ErrSessionLimit
	}

	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	var store ScoreStore
	var recorder RunRecorder
	if m.backend != nil {
		store = m.backend.StoreFor(playerID)
		recorder = m.backend
	}
	s := NewSession(id, playerID, m.config, store, recorder, emitter)

	m.mu.Lock()
	if m.full(playerID) {
		m.mu.Unlock()
		return nil, ErrSessionLimit
	}
	var replaced *Session
	if oldID, exists := m.playerToSession[playerID]; exists {
		replaced = m.sessions[oldID]
		delete(m.sessions, oldID)
	}
	m.sessions[s.ID] = s
	m.playerToSession[playerID] = s.ID
	m.running.Add(1)
	m.mu.Unlock()

	if replaced != nil {
		log.Printf("[SESSION] Player %d started a new session, stopping %s", playerID, replaced.ID)
		replaced.Stop()
	}
	if b, ok := emitter.(SessionBinder); ok {
		b.BindSession(s)
	}

	go func() {
		defer m.running.Done()
		s.Run(ctx)
		m.remove(s)
	}()
	m.Touch(s.ID)

	return s, nil
}

// Get returns an active session by ID
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Stop stops an active session by ID
func (m *SessionManager) Stop(id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.Stop()
	return nil
}

// Count returns the number of active sessions
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StopAll stops every session and waits for their loops to exit, used on
// shutdown so queued best scores reach storage.
func (m *SessionManager) StopAll() {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		s.Stop()
	}
	m.running.Wait()
}

// SessionInfo describes an active session for operators.
type SessionInfo struct {
	ID            string        `json:"id"`
	PlayerID      int           `json:"player_id"`
	Status        SessionStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	LastActivity  time.Time     `json:"last_activity"`
	PausedSeconds float64       `json:"paused_seconds"`
}

// List returns the active sessions, oldest first.
func (m *SessionManager) List() []SessionInfo {
	m.mu.RLock()
	infos := make([]SessionInfo, 0, len(m.sessions))
	for _, s := range m.sessions {
		infos = append(infos, s.Info())
	}
	m.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

func (m *SessionManager) remove(s *Session) {
	m.mu.Lock()
	if cur, ok := m.sessions[s.ID]; ok && cur == s {
		delete(m.sessions, s.ID)
	}
	if id, ok := m.playerToSession[s.PlayerID]; ok && id == s.ID {
		delete(m.playerToSession, s.PlayerID)
	}
	m.mu.Unlock()

	if m.rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		m.rdb.ZRem(ctx, idleSetKey, s.ID)
		m.rdb.Del(ctx, lastActivePrefix+s.ID)
	}
	log.Printf("[SESSION] Session %s for player %d removed", s.ID, s.PlayerID)
}

// Touch records activity for a session and schedules its idle deadline
func (m *SessionManager) Touch(id string) {
	if m.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	now := time.Now().Unix()
	deadline := now + int64(m.config.IdleTimeoutSeconds)
	pipe := m.rdb.TxPipeline()
	pipe.Set(ctx, lastActivePrefix+id, fmt.Sprintf("%d", now), 0)
	pipe.ZAdd(ctx, idleSetKey, redis.Z{Score: float64(deadline), Member: id})
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[SESSION] Failed to touch session %s: %v", id, err)
	}
}
