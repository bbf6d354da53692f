package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumumtergo/server/internal/app"
	"github.com/dumumtergo/server/internal/monitoring"
)

func registerHealthRoutes(r *gin.Engine, cfg *app.Config, manager *monitoring.HealthManager) {
	if !cfg.Monitoring.Health.Enabled || manager == nil {
		r.GET("/health", disabledHealthHandler)
		r.GET("/health/ready", disabledHealthHandler)
		return
	}

	r.GET("/health", func(c *gin.Context) {
		report := manager.Evaluate(c.Request.Context())
		status := http.StatusOK
		if !report.Success {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"success":    report.Success,
			"status":     report.Status,
			"checked_at": time.Now().UTC(),
		})
	})

	r.GET("/health/ready", func(c *gin.Context) {
		report := manager.Evaluate(c.Request.Context())
		status := http.StatusOK
		if !report.Success {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"success":    report.Success,
			"status":     report.Status,
			"checks":     report.Checks,
			"checked_at": time.Now().UTC(),
		})
	})
}

func disabledHealthHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"status":  "disabled",
	})
}
