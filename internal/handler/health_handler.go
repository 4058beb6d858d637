package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Check reports whether one backing service is reachable.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Check
}

func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) GetHealth(c *gin.Context) {
	res := gin.H{"status": "healthy"}
	status := http.StatusOK

	for name, check := range h.checks {
		if err := check(c.Request.Context()); err != nil {
			slog.Error("health check failed", "check", name, "error", err)
			res[name] = "disconnected"
			res["status"] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		res[name] = "connected"
	}

	c.JSON(status, res)
}
