package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/walltowall/internal/admin"
	"github.com/playmatatu/walltowall/internal/api/handlers"
	"github.com/playmatatu/walltowall/internal/config"
	"github.com/playmatatu/walltowall/internal/middleware"
	"github.com/playmatatu/walltowall/internal/scores"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, repo scores.Repository, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)
		v1.GET("/leaderboard", handlers.GetLeaderboard(repo, cfg))

		players := v1.Group("/players")
		{
			players.POST("", handlers.CreatePlayer(db, cfg))
			players.GET("/me/best", handlers.AuthMiddleware(cfg), handlers.GetMyBest(repo))
		}

		play := v1.Group("/play")
		play.Use(middleware.WebSocketCORSCheck(cfg))
		{
			play.GET("/ws", handlers.HandlePlayWebSocket(cfg))
		}

		adminGroup := v1.Group("/admin")
		adminGroup.Use(handlers.AdminMiddleware(db))
		{
			adminGroup.DELETE("/players/:id/best", handlers.RequireAdminRole(admin.RoleScores), handlers.ResetPlayerBest(db, repo))
			adminGroup.GET("/audit", handlers.RequireAdminRole(admin.RoleAudit), handlers.GetAdminAuditLogs(db))
			adminGroup.GET("/sessions", handlers.RequireAdminRole(admin.RoleAudit), handlers.ListSessions)
		}
	}
}
