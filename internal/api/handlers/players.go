package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/walltowall/internal/config"
	"github.com/playmatatu/walltowall/internal/models"
	"github.com/playmatatu/walltowall/internal/scores"
)

// CreatePlayer registers a player and returns a token for the play socket
func CreatePlayer(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			DisplayName string `json:"display_name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "display_name required"})
			return
		}
		name, ok := normalizeDisplayName(req.DisplayName)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "display_name must be 1-32 printable characters"})
			return
		}

		var player models.Player
		err := db.GetContext(c.Request.Context(), &player,
			`INSERT INTO players (display_name, created_at) VALUES ($1, NOW()) RETURNING id, display_name, created_at, last_active`, name)
		if err != nil {
			log.Printf("[DB] Failed to create player %q: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		token, err := issuePlayerToken(cfg.JWTSecret, player.ID, tokenTTL(cfg))
		if err != nil {
			log.Printf("Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		log.Printf("[API] Player %d registered as %q", player.ID, player.DisplayName)
		c.JSON(http.StatusCreated, gin.H{"token": token, "player": player})
	}
}

// GetMyBest returns the authenticated player's best score and rank
func GetMyBest(repo scores.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := c.GetInt(playerIDKey)
		if playerID == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx := c.Request.Context()
		best, err := repo.Best(ctx, playerID)
		if err != nil {
			log.Printf("[SCORES] Failed to load best for player %d: %v", playerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load best score"})
			return
		}
		rank, err := repo.Rank(ctx, playerID)
		if err != nil {
			log.Printf("[SCORES] Failed to rank player %d: %v", playerID, err)
			rank = 0
		}

		c.JSON(http.StatusOK, gin.H{"player_id": playerID, "best": best, "rank": rank})
	}
}
