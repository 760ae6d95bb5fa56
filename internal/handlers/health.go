package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/huangang/taskflow/backend/internal/services"
	"gorm.io/gorm"
)

// HealthHandler reports whether the API and its database are usable.
type HealthHandler struct {
	db  *gorm.DB
	hub *services.LiveHub
}

func NewHealthHandler(db *gorm.DB, hub *services.LiveHub) *HealthHandler {
	return &HealthHandler{db: db, hub: hub}
}

// CheckHealth returns the health status of all subsystems.
// GET /api/health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"
	status := http.StatusOK

	dbStatus := "ok"
	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
	}
	if dbStatus != "ok" {
		overall = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	liveClients := 0
	if h.hub != nil {
		liveClients = h.hub.ClientCount()
	}

	c.JSON(status, gin.H{
		"status":  overall,
		"service": "taskflow",
		"message": "TaskFlow API is running",
		"components": gin.H{
			"database":     dbStatus,
			"live_clients": liveClients,
		},
	})
}
