package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PingFunc checks one downstream dependency, typically pool.Ping.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	pings map[string]PingFunc
}

func NewHealthHandler(pings map[string]PingFunc) *HealthHandler {
	return &HealthHandler{pings: pings}
}

// Healthz reports process liveness only.
func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz pings every registered dependency and fails if any are down.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	for name, ping := range h.pings {
		if err := ping(cctx); err != nil {
			checks[name] = "down"
			healthy = false
			continue
		}

		checks[name] = "up"
	}

	if !healthy {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": checks})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
