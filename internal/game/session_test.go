package game

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/playmatatu/walltowall/internal/config"
	"github.com/playmatatu/walltowall/internal/models"
	"github.com/playmatatu/walltowall/internal/physics"
)

type chanEmitter struct {
	ch chan Snapshot
}

func newChanEmitter() *chanEmitter {
	return &chanEmitter{ch: make(chan Snapshot, 256)}
}

func (e *chanEmitter) Emit(s Snapshot) {
	select {
	case e.ch <- s:
	default:
	}
}

// waitFor returns the first snapshot matching ok, or fails after a second.
func (e *chanEmitter) waitFor(t *testing.T, ok func(Snapshot) bool) Snapshot {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case s := <-e.ch:
			if ok(s) {
				return s
			}
		case <-timeout:
			t.Fatal("timed out waiting for snapshot")
			return Snapshot{}
		}
	}
}

func testConfig() *config.Config {
	return &config.Config{
		FieldWidth:         800,
		FieldHeight:        600,
		WallThickness:      30,
		Gravity:            70,
		TickRate:           200,
		SnapshotEvery:      1,
		MaxFrameSeconds:    0.1,
		MaxSessions:        4,
		IdleTimeoutSeconds: 300,
	}
}

func TestSessionLaunchShowsProjectile(t *testing.T) {
	em := newChanEmitter()
	s := NewSession("sess_test", 1, testConfig(), nil, nil, em)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	em.waitFor(t, func(Snapshot) bool { return true })
	if s.Status() != StatusRunning {
		t.Fatalf("status = %s, want %s", s.Status(), StatusRunning)
	}

	if !s.Send(Input{Kind: InputLaunch, Pointer: physics.NewVec2(400, 100)}) {
		t.Fatal("launch input rejected")
	}
	snap := em.waitFor(t, func(s Snapshot) bool { return len(s.Projectiles) > 0 })
	if snap.Projectiles[0].Velocity.Y >= 0 {
		t.Errorf("projectile velocity %+v, want upward", snap.Projectiles[0].Velocity)
	}

	s.Stop()
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("session did not stop")
	}
	if s.Status() != StatusStopped {
		t.Errorf("status = %s, want %s", s.Status(), StatusStopped)
	}
	if s.Send(Input{Kind: InputAim}) {
		t.Error("stopped session accepted input")
	}
}

func TestSessionPauseFreezesPrimary(t *testing.T) {
	em := newChanEmitter()
	s := NewSession("sess_pause", 1, testConfig(), nil, nil, em)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Send(Input{Kind: InputPause})
	paused := em.waitFor(t, func(s Snapshot) bool { return s.Paused })

	time.Sleep(50 * time.Millisecond)
	later := em.waitFor(t, func(s Snapshot) bool { return s.Paused })
	if later.Frame != paused.Frame || later.Primary.Center != paused.Primary.Center {
		t.Errorf("simulation advanced while paused: frame %d -> %d", paused.Frame, later.Frame)
	}

	s.Send(Input{Kind: InputResume})
	em.waitFor(t, func(s Snapshot) bool { return !s.Paused && s.Primary.Center != paused.Primary.Center })
}

func TestSessionIgnoresInvalidResize(t *testing.T) {
	s := NewSession("sess_resize", 1, testConfig(), nil, nil, nil)
	s.apply(Input{Kind: InputResize, Width: 50, Height: 50})
	if s.field.Width != 800 || s.field.Height != 600 {
		t.Errorf("field = %+v, want unchanged", s.field)
	}
	s.apply(Input{Kind: InputResize, Width: 1024, Height: 768})
	if s.field.Width != 1024 || s.field.Height != 768 {
		t.Errorf("field = %+v, want 1024x768", s.field)
	}
}

func TestManagerReplacesPlayerSession(t *testing.T) {
	m := NewSessionManager(nil, nil, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := m.Start(ctx, 7, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := m.Start(ctx, 7, nil)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}

	select {
	case <-first.Done():
	case <-time.After(time.Second):
		t.Fatal("replaced session still running")
	}
	if _, err := m.Get(first.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(first) err = %v, want ErrSessionNotFound", err)
	}
	if got, err := m.Get(second.ID); err != nil || got != second {
		t.Errorf("Get(second) = %v, %v", got, err)
	}
	if m.Count() != 1 {
		t.Errorf("count = %d, want 1", m.Count())
	}
}

func TestManagerSessionLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSessions = 1
	m := NewSessionManager(nil, nil, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := m.Start(ctx, 1, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := m.Start(ctx, 2, nil); !errors.Is(err, ErrSessionLimit) {
		t.Fatalf("err = %v, want ErrSessionLimit", err)
	}

	if err := m.Stop(s.ID); err != nil {
		t.Fatalf("stop: %v", err)
	}
	<-s.Done()
	deadline := time.Now().Add(time.Second)
	for m.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if m.Count() != 0 {
		t.Fatalf("count = %d after stop, want 0", m.Count())
	}
	if _, err := m.Start(ctx, 2, nil); err != nil {
		t.Errorf("start after stop: %v", err)
	}
	if err := m.Stop("sess_missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("stop missing err = %v", err)
	}
	m.StopAll()
}

// slowStore blocks in Load and counts flushes.
type slowStore struct {
	loading chan struct{}
	delay   time.Duration
	best    int
	flushed atomic.Int32
}

func (s *slowStore) Load(ctx context.Context) (int, error) {
	if s.loading != nil {
		close(s.loading)
	}
	time.Sleep(s.delay)
	return s.best, nil
}

func (s *slowStore) Save(ctx context.Context, score int) error { return nil }

func (s *slowStore) Flush() { s.flushed.Add(1) }

type storeBackend struct {
	mu     sync.Mutex
	stores map[int]*slowStore
}

func (b *storeBackend) StoreFor(playerID int) ScoreStore {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stores[playerID]
}

func (b *storeBackend) RecordRun(ctx context.Context, run models.Run) error { return nil }

func TestManagerLoadsBestOutsideLock(t *testing.T) {
	slow := &slowStore{loading: make(chan struct{}), delay: 300 * time.Millisecond, best: 12}
	backend := &storeBackend{stores: map[int]*slowStore{2: slow}}
	m := NewSessionManager(nil, backend, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan *Session, 1)
	go func() {
		s, err := m.Start(ctx, 2, nil)
		if err != nil {
			t.Errorf("start: %v", err)
		}
		started <- s
	}()

	<-slow.loading
	begin := time.Now()
	m.Count()
	if _, err := m.Get("sess_other"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get err = %v", err)
	}
	if waited := time.Since(begin); waited > 100*time.Millisecond {
		t.Errorf("manager blocked for %v while a best score loaded", waited)
	}

	s := <-started
	if s == nil {
		t.Fatal("no session")
	}
	if s.sim.Best() != 12 {
		t.Errorf("best = %d, want 12", s.sim.Best())
	}
	m.StopAll()
}

func TestManagerReplacementIgnoresLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSessions = 1
	m := NewSessionManager(nil, nil, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := m.Start(ctx, 1, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := m.Start(ctx, 1, nil); err != nil {
		t.Fatalf("replacing at the limit: %v", err)
	}
	if m.Count() != 1 {
		t.Errorf("count = %d, want 1", m.Count())
	}
	m.StopAll()
}

func TestStopAllWaitsForFlush(t *testing.T) {
	store := &slowStore{}
	backend := &storeBackend{stores: map[int]*slowStore{3: store}}
	m := NewSessionManager(nil, backend, testConfig())

	if _, err := m.Start(context.Background(), 3, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	m.StopAll()
	if got := store.flushed.Load(); got != 1 {
		t.Errorf("flushes = %d after StopAll, want 1", got)
	}
}

func TestGenerateSessionID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id, err := generateSessionID()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !strings.HasPrefix(id, "sess_") || len(id) != len("sess_")+16 {
			t.Fatalf("id = %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

// bindingEmitter records whether a snapshot arrived before the session was bound.
type bindingEmitter struct {
	session      atomic.Pointer[Session]
	emitted      chan struct{}
	once         sync.Once
	unboundEmits atomic.Int32
}

func (e *bindingEmitter) BindSession(s *Session) { e.session.Store(s) }

func (e *bindingEmitter) Emit(Snapshot) {
	if e.session.Load() == nil {
		e.unboundEmits.Add(1)
	}
	e.once.Do(func() { close(e.emitted) })
}

func TestManagerBindsBeforeFirstSnapshot(t *testing.T) {
	m := NewSessionManager(nil, nil, testConfig())
	em := &bindingEmitter{emitted: make(chan struct{})}

	s, err := m.Start(context.Background(), 4, em)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	select {
	case <-em.emitted:
	case <-time.After(time.Second):
		t.Fatal("no snapshot")
	}
	if em.unboundEmits.Load() != 0 {
		t.Error("snapshot emitted before the session was bound")
	}
	if em.session.Load() != s {
		t.Error("bound a different session")
	}
	m.StopAll()
}

func TestManagerListReportsActivity(t *testing.T) {
	m := NewSessionManager(nil, nil, testConfig())
	s, err := m.Start(context.Background(), 5, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	s.Send(Input{Kind: InputPause})
	time.Sleep(30 * time.Millisecond)
	s.Send(Input{Kind: InputResume})

	deadline := time.Now().Add(time.Second)
	var info SessionInfo
	for time.Now().Before(deadline) {
		list := m.List()
		if len(list) != 1 {
			t.Fatalf("list = %+v, want one session", list)
		}
		info = list[0]
		if info.PausedSeconds > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if info.ID != s.ID || info.PlayerID != 5 {
		t.Errorf("info = %+v", info)
	}
	if info.PausedSeconds < 0.02 {
		t.Errorf("paused = %vs, want at least 0.02", info.PausedSeconds)
	}
	if time.Since(info.LastActivity) > 2*time.Second {
		t.Errorf("last activity %v is stale", info.LastActivity)
	}
	m.StopAll()
}
