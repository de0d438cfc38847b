package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadinessProbe reports whether a backing dependency can serve requests.
type ReadinessProbe interface {
	HealthCheck(ctx context.Context) error
}

// Health handles GET /healthz. It only proves the process is serving.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /readyz.
func Ready(probe ReadinessProbe, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := probe.HealthCheck(c.Request.Context()); err != nil {
			logger.Warn("readiness check failed", slog.Any("error", err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
