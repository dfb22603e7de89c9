package scores

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/playmatatu/walltowall/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// Redis keys used for score caching
const (
	bestKeyPrefix      = "best:"
	leaderboardKey     = "leaderboard"
	leaderboardTopKey  = "leaderboard:top:"
	leaderboardWarmKey = "leaderboard:warm"
	bestCacheTTL       = 10 * time.Minute

	// fallback warm size for repositories that cannot list every best
	warmLimit = 10000
)

// nameResolver is implemented by repositories that can look up display names.
type nameResolver interface {
	DisplayNames(ctx context.Context, ids []int) (map[int]string, error)
}

// bestLister is implemented by repositories that can list every best score.
type bestLister interface {
	AllBests(ctx context.Context) ([]models.LeaderboardEntry, error)
}

// RedisRepository caches best scores and keeps the leaderboard in a sorted
// set in front of another Repository, which stays the source of truth.
type RedisRepository struct {
	rdb    *redis.Client
	next   Repository
	topTTL time.Duration
}

func NewRedisRepository(rdb *redis.Client, next Repository, topTTL time.Duration) *RedisRepository {
	return &RedisRepository{rdb: rdb, next: next, topTTL: topTTL}
}

func bestKey(playerID int) string {
	return bestKeyPrefix + strconv.Itoa(playerID)
}

func (r *RedisRepository) Best(ctx context.Context, playerID int) (int, error) {
	val, err := r.rdb.Get(ctx, bestKey(playerID)).Result()
	if err == nil {
		if n, convErr := strconv.Atoi(val); convErr == nil {
			return n, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("[SCORES] Redis best lookup failed for player %d: %v", playerID, err)
	}

	best, err := r.next.Best(ctx, playerID)
	if err != nil {
		return 0, err
	}
	r.rdb.Set(ctx, bestKey(playerID), best, bestCacheTTL)
	return best, nil
}

func (r *RedisRepository) SaveBest(ctx context.Context, playerID, score int) error {
	if err := r.next.SaveBest(ctx, playerID, score); err != nil {
		return err
	}

	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, bestKey(playerID))
	pipe.ZAddGT(ctx, leaderboardKey, redis.Z{Score: float64(score), Member: playerID})
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[SCORES] Failed to update leaderboard for player %d: %v", playerID, err)
	}
	return nil
}

func (r *RedisRepository) ResetBest(ctx context.Context, playerID int) error {
	if err := r.next.ResetBest(ctx, playerID); err != nil {
		return err
	}

	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, bestKey(playerID))
	pipe.ZRem(ctx, leaderboardKey, playerID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("clear cached score: %w", err)
	}
	return nil
}

func (r *RedisRepository) RecordRun(ctx context.Context, run models.Run) error {
	return r.next.RecordRun(ctx, run)
}

// Top serves a short-lived cached copy first, then the sorted set once it
// holds every player, and the wrapped repository when Redis is unavailable.
func (r *RedisRepository) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	cacheKey := leaderboardTopKey + strconv.Itoa(limit)
	if raw, err := r.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var cached []models.LeaderboardEntry
		if err := msgpack.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	var entries []models.LeaderboardEntry
	err := r.ensureWarm(ctx)
	if err == nil {
		entries, err = r.topFromSet(ctx, limit)
	}
	if err != nil {
		log.Printf("[SCORES] Leaderboard set unavailable, using database: %v", err)
		return r.next.Top(ctx, limit)
	}

	if r.topTTL > 0 {
		if raw, err := msgpack.Marshal(entries); err == nil {
			r.rdb.Set(ctx, cacheKey, raw, r.topTTL)
		}
	}
	return entries, nil
}

func (r *RedisRepository) topFromSet(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	zs, err := r.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(zs))
	ids := make([]int, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		id, err := strconv.Atoi(member)
		if err != nil {
			continue
		}
		ids = append(ids, id)
		entries = append(entries, models.LeaderboardEntry{PlayerID: id, Score: int(z.Score)})
	}

	if nr, ok := r.next.(nameResolver); ok {
		names, err := nr.DisplayNames(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			entries[i].DisplayName = names[entries[i].PlayerID]
		}
	}
	return rankEntries(entries), nil
}

// ensureWarm loads every best score into the sorted set unless the warm
// marker says it is already complete. Scores saved before warming are kept
// because both paths only ever raise a member's score.
func (r *RedisRepository) ensureWarm(ctx context.Context) error {
	n, err := r.rdb.Exists(ctx, leaderboardWarmKey).Result()
	if err != nil {
		return fmt.Errorf("check leaderboard marker: %w", err)
	}
	if n > 0 {
		return nil
	}

	var entries []models.LeaderboardEntry
	if bl, ok := r.next.(bestLister); ok {
		entries, err = bl.AllBests(ctx)
	} else {
		entries, err = r.next.Top(ctx, warmLimit)
	}
	if err != nil {
		return fmt.Errorf("load bests for leaderboard: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	if len(entries) > 0 {
		members := make([]redis.Z, 0, len(entries))
		for _, e := range entries {
			members = append(members, redis.Z{Score: float64(e.Score), Member: e.PlayerID})
		}
		pipe.ZAddGT(ctx, leaderboardKey, members...)
	}
	pipe.Set(ctx, leaderboardWarmKey, "1", 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("warm leaderboard: %w", err)
	}
	log.Printf("[SCORES] Leaderboard warmed with %d players", len(entries))
	return nil
}

// Rank counts strictly higher scores, so tied players share a rank.
func (r *RedisRepository) Rank(ctx context.Context, playerID int) (int, error) {
	rank, err := r.rankFromSet(ctx, playerID)
	if err != nil {
		log.Printf("[SCORES] Redis rank lookup failed for player %d: %v", playerID, err)
		return r.next.Rank(ctx, playerID)
	}
	return rank, nil
}

func (r *RedisRepository) rankFromSet(ctx context.Context, playerID int) (int, error) {
	if err := r.ensureWarm(ctx); err != nil {
		return 0, err
	}

	score, err := r.rdb.ZScore(ctx, leaderboardKey, strconv.Itoa(playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	above, err := r.rdb.ZCount(ctx, leaderboardKey, "("+strconv.FormatFloat(score, 'f', -1, 64), "+inf").Result()
	if err != nil {
		return 0, err
	}
	return int(above) + 1, nil
}
