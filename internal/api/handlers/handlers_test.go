package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/walltowall/internal/config"
	"github.com/playmatatu/walltowall/internal/game"
	"github.com/playmatatu/walltowall/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHealthCheck(t *testing.T) {
	r := gin.New()
	r.GET("/api/v1/health", HealthCheck)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["service"] != "walltowall-api" {
		t.Errorf("body = %v", body)
	}
}

func TestPlayerTokenRoundTrip(t *testing.T) {
	token, err := issuePlayerToken("secret", 42, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	id, err := parsePlayerToken("secret", token)
	if err != nil || id != 42 {
		t.Errorf("parse = %d, %v; want 42", id, err)
	}

	if _, err := parsePlayerToken("other", token); err == nil {
		t.Error("token accepted with wrong secret")
	}

	expired, _ := issuePlayerToken("secret", 42, -time.Minute)
	if _, err := parsePlayerToken("secret", expired); err == nil {
		t.Error("expired token accepted")
	}
	if _, err := parsePlayerToken("secret", "garbage"); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret"}
	r := gin.New()
	r.GET("/me", AuthMiddleware(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"player_id": c.GetInt(playerIDKey)})
	})

	token, _ := issuePlayerToken("secret", 9, time.Hour)
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Token " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestCreatePlayerRejectsBadNames(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret"}
	r := gin.New()
	r.POST("/players", CreatePlayer(nil, cfg))

	for _, body := range []string{`{}`, `{"display_name":"   "}`, `{"display_name":"` + strings.Repeat("x", 33) + `"}`, `not json`} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/players", strings.NewReader(body)))
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

type fakeRepo struct {
	top   []models.LeaderboardEntry
	limit int
}

func (f *fakeRepo) Best(ctx context.Context, playerID int) (int, error) { return 12, nil }
func (f *fakeRepo) SaveBest(ctx context.Context, playerID, score int) error { return nil }
func (f *fakeRepo) ResetBest(ctx context.Context, playerID int) error { return nil }
func (f *fakeRepo) RecordRun(ctx context.Context, run models.Run) error { return nil }
func (f *fakeRepo) Rank(ctx context.Context, playerID int) (int, error) { return 3, nil }
func (f *fakeRepo) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	f.limit = limit
	return f.top, nil
}

func TestGetLeaderboardLimit(t *testing.T) {
	repo := &fakeRepo{top: []models.LeaderboardEntry{{Rank: 1, PlayerID: 5, DisplayName: "ada", Score: 30}}}
	cfg := &config.Config{LeaderboardSize: 50}
	r := gin.New()
	r.GET("/leaderboard", GetLeaderboard(repo, cfg))

	tests := []struct {
		query string
		want  int
	}{
		{"", 50},
		{"?limit=10", 10},
		{"?limit=-4", 50},
		{"?limit=5000", maxLeaderboard},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard"+tt.query, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if repo.limit != tt.want {
			t.Errorf("query %q: limit = %d, want %d", tt.query, repo.limit, tt.want)
		}
	}
}

func TestGetMyBest(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret"}
	r := gin.New()
	r.GET("/me/best", AuthMiddleware(cfg), GetMyBest(&fakeRepo{}))

	token, _ := issuePlayerToken("secret", 4, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/me/best", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body struct {
		PlayerID int `json:"player_id"`
		Best     int `json:"best"`
		Rank     int `json:"rank"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.PlayerID != 4 || body.Best != 12 || body.Rank != 3 {
		t.Errorf("body = %+v", body)
	}
}

func TestAdminMiddlewareRequiresHeaders(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AdminMiddleware(nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestPlayWebSocketRequiresToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret"}
	r := gin.New()
	r.GET("/ws", HandlePlayWebSocket(cfg))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("no token: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token=bad", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d", w.Code)
	}
}

func TestListSessions(t *testing.T) {
	prev := game.Manager
	defer func() { game.Manager = prev }()
	game.Manager = game.NewSessionManager(nil, nil, &config.Config{
		FieldWidth: 800, FieldHeight: 600, WallThickness: 30, Gravity: 70,
		TickRate: 60, SnapshotEvery: 1, MaxFrameSeconds: 0.1,
	})
	s, err := game.Manager.Start(context.Background(), 21, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer game.Manager.StopAll()

	r := gin.New()
	r.GET("/api/v1/admin/sessions", ListSessions)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/sessions", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Sessions []game.SessionInfo `json:"sessions"`
		Count    int                `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 || len(body.Sessions) != 1 || body.Sessions[0].ID != s.ID || body.Sessions[0].PlayerID != 21 {
		t.Errorf("body = %+v", body)
	}
	if body.Sessions[0].LastActivity.IsZero() {
		t.Error("last activity missing")
	}
}
