package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/walltowall/internal/config"
	"github.com/playmatatu/walltowall/internal/scores"
)

const maxLeaderboard = 100

// GetLeaderboard returns the top best scores
func GetLeaderboard(repo scores.Repository, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseLimit(c.Query("limit"), cfg.LeaderboardSize, maxLeaderboard)

		entries, err := repo.Top(c.Request.Context(), limit)
		if err != nil {
			log.Printf("[SCORES] Failed to load leaderboard: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"entries": entries, "limit": limit})
	}
}
