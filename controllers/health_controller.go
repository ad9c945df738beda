package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Roshan11032005/nutri-backend/utils"
)

type HealthController struct {
	db      *gorm.DB
	started time.Time
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db, started: time.Now()}
}

// Health reports service and database status.
func (ctl *HealthController) Health(c *gin.Context) {
	dbStatus := "disconnected"
	if sqlDB, err := ctl.db.DB(); err == nil {
		if err := sqlDB.PingContext(c.Request.Context()); err == nil {
			dbStatus = "connected"
		}
	}

	utils.SendJSON(c, http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Server healthy",
		"database":  dbStatus,
		"uptime":    time.Since(ctl.started).Seconds(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
