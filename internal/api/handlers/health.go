package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/walltowall/internal/game"
	"github.com/playmatatu/walltowall/internal/ws"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status
func HealthCheck(c *gin.Context) {
	sessions := 0
	if game.Manager != nil {
		sessions = game.Manager.Count()
	}
	clients := 0
	if ws.GameHub != nil {
		clients = ws.GameHub.Count()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "walltowall-api",
		"version":  version,
		"uptime":   time.Since(startTime).String(),
		"sessions": sessions,
		"sockets":  clients,
	})
}
