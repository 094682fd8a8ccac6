package worker

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves the worker's own liveness and readiness probes on a
// side port, separate from the API server.
func (w *Worker) HealthHandler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/readyz", func(c *gin.Context) {
		w.readyMu.RLock()
		ready := w.ready
		w.readyMu.RUnlock()

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics/jobs", func(c *gin.Context) {
		c.JSON(http.StatusOK, w.metrics.Snapshot())
	})

	return r
}
