package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the graph backend is reachable.
type Pinger interface {
	VerifyConnectivity(ctx context.Context) error
}

// HealthHandler handles liveness and readiness probes.
type HealthHandler struct {
	graph Pinger
}

// NewHealthHandler creates a health handler. graph may be nil when no
// readiness check is wanted.
func NewHealthHandler(graph Pinger) *HealthHandler {
	return &HealthHandler{graph: graph}
}

// HealthCheck handles GET /health.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReadinessCheck handles GET /ready. Ready means the graph store
// answers; the vector store is local and needs no probe.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if h.graph != nil {
		if err := h.graph.VerifyConnectivity(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
