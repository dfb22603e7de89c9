package scores

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestRedisLeaderboardWarmsBeforeFirstScore(t *testing.T) {
	_, rdb := newTestRedis(t)
	db := newMemoryRepo()
	db.best[1] = 10
	db.best[2] = 5
	repo := NewRedisRepository(rdb, db, 0)
	ctx := context.Background()

	// cold cache: a fresh score must not hide everyone else
	if err := repo.SaveBest(ctx, 3, 1); err != nil {
		t.Fatalf("save: %v", err)
	}

	top, err := repo.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	want := []struct{ player, score int }{{1, 10}, {2, 5}, {3, 1}}
	if len(top) != len(want) {
		t.Fatalf("top = %+v, want %d entries", top, len(want))
	}
	for i, w := range want {
		if top[i].PlayerID != w.player || top[i].Score != w.score || top[i].Rank != i+1 {
			t.Errorf("top[%d] = %+v, want player %d score %d rank %d", i, top[i], w.player, w.score, i+1)
		}
	}

	if rank, err := repo.Rank(ctx, 3); err != nil || rank != 3 {
		t.Errorf("rank(3) = %d, %v; want 3", rank, err)
	}
}

func TestRedisRankWarmsOnItsOwn(t *testing.T) {
	_, rdb := newTestRedis(t)
	db := newMemoryRepo()
	db.best[1] = 10
	db.best[2] = 5
	db.best[4] = 5
	repo := NewRedisRepository(rdb, db, 0)
	ctx := context.Background()

	tests := []struct {
		player int
		want   int
	}{
		{1, 1},
		{2, 2},
		{4, 2}, // ties share a rank
		{9, 0}, // no score yet
	}
	for _, tt := range tests {
		if got, err := repo.Rank(ctx, tt.player); err != nil || got != tt.want {
			t.Errorf("Rank(%d) = %d, %v; want %d", tt.player, got, err, tt.want)
		}
	}
}

func TestRedisSaveBestKeepsHigherScore(t *testing.T) {
	_, rdb := newTestRedis(t)
	db := newMemoryRepo()
	repo := NewRedisRepository(rdb, db, 0)
	ctx := context.Background()

	repo.SaveBest(ctx, 1, 8)
	repo.SaveBest(ctx, 1, 3)

	if best, err := repo.Best(ctx, 1); err != nil || best != 8 {
		t.Errorf("best = %d, %v; want 8", best, err)
	}
	top, err := repo.Top(ctx, 5)
	if err != nil || len(top) != 1 || top[0].Score != 8 {
		t.Errorf("top = %+v, %v", top, err)
	}
}

func TestRedisResetBestRemovesEntry(t *testing.T) {
	_, rdb := newTestRedis(t)
	db := newMemoryRepo()
	db.best[1] = 10
	db.best[2] = 5
	repo := NewRedisRepository(rdb, db, 0)
	ctx := context.Background()

	if _, err := repo.Top(ctx, 10); err != nil {
		t.Fatalf("top: %v", err)
	}
	if err := repo.ResetBest(ctx, 1); err != nil {
		t.Fatalf("reset: %v", err)
	}

	top, _ := repo.Top(ctx, 10)
	if len(top) != 1 || top[0].PlayerID != 2 {
		t.Errorf("top after reset = %+v", top)
	}
	if rank, _ := repo.Rank(ctx, 2); rank != 1 {
		t.Errorf("rank(2) = %d, want 1", rank)
	}
}

func TestRedisTopServesCachedCopy(t *testing.T) {
	mr, rdb := newTestRedis(t)
	db := newMemoryRepo()
	db.best[1] = 10
	repo := NewRedisRepository(rdb, db, time.Minute)
	ctx := context.Background()

	if _, err := repo.Top(ctx, 10); err != nil {
		t.Fatalf("top: %v", err)
	}
	if !mr.Exists(leaderboardTopKey + "10") {
		t.Fatal("leaderboard page not cached")
	}

	// a later score shows up once the cached page expires
	repo.SaveBest(ctx, 2, 20)
	cached, _ := repo.Top(ctx, 10)
	if len(cached) != 1 {
		t.Errorf("cached top = %+v, want the earlier page", cached)
	}
	mr.FastForward(2 * time.Minute)
	fresh, _ := repo.Top(ctx, 10)
	if len(fresh) != 2 || fresh[0].PlayerID != 2 {
		t.Errorf("fresh top = %+v", fresh)
	}
}

func TestRedisFallsBackWhenUnavailable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	db := newMemoryRepo()
	db.best[1] = 10
	db.best[2] = 7
	repo := NewRedisRepository(rdb, db, 0)
	ctx := context.Background()

	top, err := repo.Top(ctx, 10)
	if err != nil || len(top) != 2 {
		t.Errorf("top = %+v, %v; want database rows", top, err)
	}
	if rank, err := repo.Rank(ctx, 2); err != nil || rank != 2 {
		t.Errorf("rank = %d, %v; want 2", rank, err)
	}
}
