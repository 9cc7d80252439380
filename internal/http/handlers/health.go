package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// WarmUp does a database round-trip so a cold instance has an open,
// verified connection before real traffic lands.
func (h *HealthHandler) WarmUp(c *gin.Context) {
	var one int
	if err := h.db.WithContext(c.Request.Context()).Raw("SELECT 1").Scan(&one).Error; err != nil {
		slog.Error("Warm-up query failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, messageResponse{Message: "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "warmed up"})
}
