package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/abhinawagoo/guestloops-sub000/internal/models"
	"github.com/abhinawagoo/guestloops-sub000/internal/services"
)

// HealthHandler provides the health check endpoint.
type HealthHandler struct {
	db    *gorm.DB
	queue services.TaskQueue
}

func NewHealthHandler(db *gorm.DB, queue services.TaskQueue) *HealthHandler {
	return &HealthHandler{db: db, queue: queue}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	if h.db == nil {
		dbStatus = "disabled (demo mode)"
	} else if sqlDB, err := h.db.DB(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	queueMode := "sync"
	if h.queue != nil && h.queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	var pendingAnalysis int64
	if h.db != nil {
		statuses := []string{models.AnalysisStatusPending, models.AnalysisStatusFailed}
		var n int64
		h.db.Model(&models.Feedback{}).Where("analysis_status IN ?", statuses).Count(&n)
		pendingAnalysis += n
		h.db.Model(&models.Review{}).Where("analysis_status IN ?", statuses).Count(&n)
		pendingAnalysis += n
	}

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "guestloops",
		"components": gin.H{
			"database":         dbStatus,
			"queue_mode":       queueMode,
			"pending_analysis": pendingAnalysis,
		},
	})
}
