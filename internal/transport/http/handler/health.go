package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"taskmanager/internal/platform/database"
)

const (
	healthPingTimeout = 2 * time.Second
	revokeTimeout     = 2 * time.Second
)

type HealthHandler struct {
	db  *gorm.DB
	now func() time.Time
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db, now: time.Now}
}

// Check answers 200 whenever the process can respond; store reachability is reported, not enforced.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	dbStatus := "connected"
	if err := database.Ping(ctx, h.db); err != nil {
		dbStatus = "disconnected"
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Database:  dbStatus,
	})
}
