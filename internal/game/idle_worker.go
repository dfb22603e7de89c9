package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/playmatatu/walltowall/internal/config"
	"github.com/redis/go-redis/v9"
)

// StartIdleWorker starts a background worker that stops sessions whose idle
// deadline in the Redis sorted set has passed
func StartIdleWorker(ctx context.Context, rdb *redis.Client, cfg *config.Config) {
	if rdb == nil || cfg == nil {
		log.Println("[IDLE] Redis or config missing; idle worker not started")
		return
	}

	interval := time.Duration(cfg.IdleWorkerPollInterval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}

	log.Println("[IDLE] Idle worker started")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case <-ticker.C:
				expireIdleSessions(ctx, rdb, cfg, Manager)
			}
		}
	}()
}

func expireIdleSessions(ctx context.Context, rdb *redis.Client, cfg *config.Config, m *SessionManager) {
	now := time.Now().Unix()
	members, err := rdb.ZRangeByScore(ctx, idleSetKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now)}).Result()
	if err != nil {
		log.Printf("[IDLE] Failed to fetch idle sessions: %v", err)
		return
	}

	for _, id := range members {
		// Attempt to remove (race-safe)
		removed, _ := rdb.ZRem(ctx, idleSetKey, id).Result()
		if removed == 0 {
			continue
		}

		last, _ := rdb.Get(ctx, lastActivePrefix+id).Result()
		lastTs, _ := strconv.ParseInt(last, 10, 64)
		if now-lastTs < int64(cfg.IdleTimeoutSeconds) {
			// activity raced the deadline; reschedule
			rdb.ZAdd(ctx, idleSetKey, redis.Z{Score: float64(lastTs + int64(cfg.IdleTimeoutSeconds)), Member: id})
			continue
		}

		if m == nil {
			continue
		}
		if _, err := m.Get(id); err != nil {
			log.Printf("[IDLE] Session %s already gone: %v", id, err)
			continue
		}

		// notify the socket first so the notice is queued before it closes
		payload := map[string]interface{}{"type": "session_expired", "session_id": id, "message": "Session closed due to inactivity"}
		b, _ := json.Marshal(payload)
		if n, err := rdb.Publish(ctx, SessionEventsChan, b).Result(); err != nil {
			log.Printf("[IDLE] publish expiry failed: session=%s err=%v", id, err)
		} else {
			log.Printf("[IDLE] published expiry: session=%s subscribers=%d", id, n)
		}

		if err := m.Stop(id); err != nil {
			log.Printf("[IDLE] Session %s already gone: %v", id, err)
			continue
		}
		log.Printf("[IDLE] Stopped session %s after %ds without input", id, now-lastTs)
	}
}
