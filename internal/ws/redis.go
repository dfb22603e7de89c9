package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/walltowall/internal/game"
	"github.com/redis/go-redis/v9"
)

var rdbClient *redis.Client

func SetRedisClient(r *redis.Client) {
	rdbClient = r
}

// sessionEvent is published by the idle worker on the session events channel.
type sessionEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// StartSessionEventSubscriber forwards session events to connected clients.
func StartSessionEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; session event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, game.SessionEventsChan)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", game.SessionEventsChan)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[WS] %s subscriber stopping", game.SessionEventsChan)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handleSessionEvent(GameHub, []byte(msg.Payload))
			}
		}
	}()
}

func handleSessionEvent(h *Hub, payload []byte) {
	var ev sessionEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Printf("[WS] invalid event payload: %v", err)
		return
	}

	switch ev.Type {
	case "session_expired":
		log.Printf("[WS] event received: type=%s session=%s", ev.Type, ev.SessionID)
		h.SendToSession(ev.SessionID, Envelope{Type: ev.Type, Message: ev.Message})
	default:
		log.Printf("[WS] unknown event type: %s", ev.Type)
	}
}
