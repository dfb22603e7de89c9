package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/walltowall/internal/game"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 30 * time.Second
	readLimit    = 4096
	sendBuffer   = 64
	touchEvery   = time.Second
	closingGrace = 200 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are enforced by the CORS middleware
	},
}

// Client is one player's socket, bound to one session.
type Client struct {
	conn      *websocket.Conn
	playerID  int
	sessionID string
	session   *game.Session
	enc       Encoding
	send      chan frame
	closed    chan struct{}
	closeOnce sync.Once
	lastTouch time.Time
}

// Hub maintains the set of active clients
type Hub struct {
	clients    map[string]*Client // sessionID -> Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// GameHub is the single hub for all sessions.
var GameHub *Hub

func init() {
	GameHub = NewHub()
	go GameHub.run()
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.sessionID] = client
			h.mu.Unlock()
			log.Printf("[WS] Player %d connected to session %s (enc=%s)", client.playerID, client.sessionID, client.enc)

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.sessionID]; ok && cur == client {
				delete(h.clients, client.sessionID)
				log.Printf("[WS] Player %d disconnected from session %s", client.playerID, client.sessionID)
			}
			h.mu.Unlock()
		}
	}
}

// SendToSession sends a message to the client of a session
func (h *Hub) SendToSession(sessionID string, env Envelope) {
	h.mu.RLock()
	client, exists := h.clients[sessionID]
	h.mu.RUnlock()

	if !exists {
		log.Printf("[WS] SendToSession no client for session %s", sessionID)
		return
	}
	client.deliver(env)
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and starts a session for playerID.
func HandleWebSocket(c *gin.Context, playerID int) {
	enc, err := ParseEncoding(c.Query("enc"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if game.Manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sessions unavailable"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:     conn,
		playerID: playerID,
		enc:      enc,
		send:     make(chan frame, sendBuffer),
		closed:   make(chan struct{}),
	}

	_, err = game.Manager.Start(context.Background(), playerID, client)
	if err != nil {
		msg := "could not start session"
		if errors.Is(err, game.ErrSessionLimit) {
			msg = "server is full, try again later"
		}
		log.Printf("[WS] Session start failed for player %d: %v", playerID, err)
		if f, encErr := enc.encode(Envelope{Type: "error", Message: msg}); encErr == nil {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(f.kind, f.data)
		}
		conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, msg), time.Now().Add(writeWait))
		conn.Close()
		return
	}

	GameHub.register <- client

	go client.writePump()
	go client.readPump()
	go client.watchSession()
}

// BindSession implements game.SessionBinder. The manager calls it before the
// session loop starts, so Emit always sees the session ID.
func (c *Client) BindSession(s *game.Session) {
	c.session = s
	c.sessionID = s.ID
}

// Emit implements game.Emitter. Frames are dropped when the client is slow.
func (c *Client) Emit(snap game.Snapshot) {
	c.deliver(Envelope{Type: "snapshot", Data: snap})
}

func (c *Client) deliver(env Envelope) {
	f, err := c.enc.encode(env)
	if err != nil {
		log.Printf("[WS] %v", err)
		return
	}

	select {
	case <-c.closed:
		return
	default:
	}

	select {
	case c.send <- f:
	default:
		if env.Type != "snapshot" {
			log.Printf("[WS] Send buffer full for session %s, dropping %s", c.sessionID, env.Type)
		}
	}
}

func (c *Client) sendError(message string) {
	c.deliver(Envelope{Type: "error", Message: message})
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

// watchSession closes the socket once the session ends on the server side.
func (c *Client) watchSession() {
	select {
	case <-c.session.Done():
		// let a pending session_expired notice reach the socket
		time.Sleep(closingGrace)
		c.close()
	case <-c.closed:
	}
}

// readPump reads client inputs and forwards them to the session.
func (c *Client) readPump() {
	defer func() {
		GameHub.unregister <- c
		c.session.Stop()
		c.close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		kind, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close for session %s: %v", c.sessionID, err)
			}
			return
		}

		msg, err := decodeMessage(kind, message)
		if err != nil {
			c.sendError("invalid message")
			continue
		}
		in, err := toInput(msg)
		if err != nil {
			c.sendError(err.Error())
			continue
		}
		if !c.session.Send(in) {
			c.sendError("session is not accepting input")
			continue
		}

		if time.Since(c.lastTouch) >= touchEvery {
			c.lastTouch = time.Now()
			if game.Manager != nil {
				game.Manager.Touch(c.sessionID)
			}
		}
	}
}

// writePump writes queued frames and pings to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case f := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(f.kind, f.data); err != nil {
				log.Printf("[WS] Write error for session %s: %v", c.sessionID, err)
				return
			}

		case <-c.closed:
			c.flush()
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
				time.Now().Add(writeWait))
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for session %s: %v", c.sessionID, err)
				return
			}
		}
	}
}

// flush writes whatever is still queued without blocking.
func (c *Client) flush() {
	for {
		select {
		case f := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(f.kind, f.data); err != nil {
				return
			}
		default:
			return
		}
	}
}
