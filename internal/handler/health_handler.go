package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// Pinger is a dependency whose liveness the health endpoint reports.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a ping function such as (*sql.DB).PingContext.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler provides health endpoint.
type HealthHandler struct {
	deps map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// GetHealth responds with the status of each backing dependency. Any
// failing dependency turns the response into a 503.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	healthy := true
	deps := gin.H{}
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			healthy = false
			deps[name] = "disconnected"
			continue
		}
		deps[name] = "connected"
	}

	status, code := "healthy", 200
	if !healthy {
		status, code = "degraded", 503
	}
	c.JSON(code, gin.H{
		"success": healthy,
		"code":    code,
		"message": "Service is " + status,
		"data": gin.H{
			"status":       status,
			"version":      "1.0.0",
			"uptime":       int(time.Since(startTime).Seconds()),
			"dependencies": deps,
		},
	})
}
