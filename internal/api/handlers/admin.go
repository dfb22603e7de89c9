package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/walltowall/internal/admin"
	"github.com/playmatatu/walltowall/internal/game"
	"github.com/playmatatu/walltowall/internal/models"
	"github.com/playmatatu/walltowall/internal/scores"
)

const (
	adminUserHeader  = "X-Admin-User"
	adminTokenHeader = "X-Admin-Token"
	adminAccountKey  = "admin_account"
)

// AdminMiddleware validates the admin headers against bcrypt hashes
func AdminMiddleware(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetHeader(adminUserHeader)
		token := c.GetHeader(adminTokenHeader)
		if username == "" || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		ctx := c.Request.Context()
		acc, err := admin.ValidateAdminCredentials(ctx, db, username, token)
		if err != nil {
			admin.LogAdminAction(ctx, db, username, c.ClientIP(), c.FullPath(), "auth", nil, false)
			if errors.Is(err, admin.ErrInvalidCredentials) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set("admin_username", acc.Username)
		c.Set(adminAccountKey, acc)
		c.Next()
	}
}

// RequireAdminRole rejects admins lacking role
func RequireAdminRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get(adminAccountKey)
		acc, ok := v.(*models.AdminAccount)
		if !ok || !admin.HasRole(acc, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// ResetPlayerBest clears a player's best score and leaderboard entry
func ResetPlayerBest(db *sqlx.DB, repo scores.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, err := strconv.Atoi(c.Param("id"))
		if err != nil || playerID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
			return
		}

		ctx := c.Request.Context()
		username := c.GetString("admin_username")
		details := map[string]interface{}{"player_id": playerID}

		err = repo.ResetBest(ctx, playerID)
		admin.LogAdminAction(ctx, db, username, c.ClientIP(), c.FullPath(), "reset_best", details, err == nil)
		if errors.Is(err, scores.ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "player has no best score"})
			return
		}
		if err != nil {
			log.Printf("[ADMIN] Failed to reset best for player %d: %v", playerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset best score"})
			return
		}

		log.Printf("[ADMIN] %s reset best score of player %d", username, playerID)
		c.JSON(http.StatusOK, gin.H{"ok": true, "player_id": playerID})
	}
}

// GetAdminAuditLogs returns paginated audit log entries
func GetAdminAuditLogs(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminUsername := c.DefaultQuery("admin_username", "")
		limit := parseLimit(c.Query("limit"), 25, 200)
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if offset < 0 {
			offset = 0
		}

		logs, err := admin.GetAdminAuditLogs(c.Request.Context(), db, adminUsername, limit, offset)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch audit logs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit logs"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"logs": logs, "limit": limit, "offset": offset})
	}
}

// ListSessions returns the active play sessions
func ListSessions(c *gin.Context) {
	if game.Manager == nil {
		c.JSON(http.StatusOK, gin.H{"sessions": []game.SessionInfo{}, "count": 0})
		return
	}
	sessions := game.Manager.List()
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}
