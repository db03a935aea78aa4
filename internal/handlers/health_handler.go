package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/services"
)

// HealthHandler reports database and scheduler status
type HealthHandler struct {
	db   database.DB
	cron *services.CronService
}

// NewHealthHandler creates a new health handler. cron may be nil.
func NewHealthHandler(db database.DB, cron *services.CronService) *HealthHandler {
	return &HealthHandler{db: db, cron: cron}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	resp := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"database":  "connected",
	}
	if h.cron != nil {
		resp["jobs"] = h.cron.GetJobStatus()
	}

	if err := h.db.Ping(); err != nil {
		resp["status"] = "unhealthy"
		resp["database"] = "disconnected"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
