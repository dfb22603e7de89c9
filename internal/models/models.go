package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// Player represents a registered player
type Player struct {
	ID          int          `db:"id" json:"id"`
	DisplayName string       `db:"display_name" json:"display_name"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	LastActive  sql.NullTime `db:"last_active" json:"last_active,omitempty"`
}

// BestScore is a player's persisted best run
type BestScore struct {
	PlayerID  int       `db:"player_id" json:"player_id"`
	Score     int       `db:"score" json:"score"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Run records one finished run, from spawn to the main ball falling out
type Run struct {
	ID              int       `db:"id" json:"id"`
	PlayerID        int       `db:"player_id" json:"player_id"`
	Score           int       `db:"score" json:"score"`
	Launched        int       `db:"launched" json:"launched"`
	DurationSeconds float64   `db:"duration_seconds" json:"duration_seconds"`
	EndedAt         time.Time `db:"ended_at" json:"ended_at"`
}

// LeaderboardEntry is one row of the public leaderboard
type LeaderboardEntry struct {
	Rank        int    `db:"-" json:"rank"`
	PlayerID    int    `db:"player_id" json:"player_id"`
	DisplayName string `db:"display_name" json:"display_name"`
	Score       int    `db:"score" json:"score"`
}

// AdminAccount is an operator allowed to use the admin API
type AdminAccount struct {
	Username    string         `db:"username" json:"username"`
	DisplayName string         `db:"display_name" json:"display_name"`
	TokenHash   string         `db:"token_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// AdminAudit is an entry of the admin audit log
type AdminAudit struct {
	ID            int             `db:"id" json:"id"`
	AdminUsername string          `db:"admin_username" json:"admin_username"`
	IP            string          `db:"ip" json:"ip"`
	Route         string          `db:"route" json:"route"`
	Action        string          `db:"action" json:"action"`
	Details       json.RawMessage `db:"details" json:"details"`
	Success       bool            `db:"success" json:"success"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
