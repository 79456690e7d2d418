package handlers

import (
	"net/http"

	"github.com/architect/elective-advisor/internal/common/health"
	"github.com/gin-gonic/gin"
)

// StreamCounter reports how many live update connections are open.
type StreamCounter interface {
	ClientCount() int
}

// HealthHandler serves the public health endpoints of the API listener.
type HealthHandler struct {
	checker *health.HealthChecker
	streams StreamCounter
}

// NewHealthHandler creates a health handler. streams may be nil.
func NewHealthHandler(checker *health.HealthChecker, streams StreamCounter) *HealthHandler {
	return &HealthHandler{checker: checker, streams: streams}
}

// Register mounts the health endpoints on r.
func (h *HealthHandler) Register(r gin.IRoutes) {
	r.GET("/health", h.Health)
	r.GET("/health/readiness", h.Readiness)
	r.GET("/health/liveness", h.Liveness)
	r.GET("/health/metrics", h.Metrics)
	r.GET("/health/detailed", h.Detailed)
}

// Health returns the component report. Degraded optional components still answer 200.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	status := h.checker.Check(c.Request.Context())
	c.JSON(statusCode(status), status)
}

// Readiness reports whether the database accepts queries
// GET /health/readiness
func (h *HealthHandler) Readiness(c *gin.Context) {
	ready := h.checker.IsReady(c.Request.Context())
	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"ready": ready})
}

// Liveness returns liveness status
// GET /health/liveness
func (h *HealthHandler) Liveness(c *gin.Context) {
	if !h.checker.IsAlive() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"alive": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alive": true})
}

// Metrics returns runtime metrics
// GET /health/metrics
func (h *HealthHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.checker.GetMetrics())
}

// Detailed merges the component report, runtime metrics and stream usage
// GET /health/detailed
func (h *HealthHandler) Detailed(c *gin.Context) {
	status := h.checker.Check(c.Request.Context())

	streamClients := 0
	if h.streams != nil {
		streamClients = h.streams.ClientCount()
	}

	c.JSON(statusCode(status), gin.H{
		"status":         status.Status,
		"timestamp":      status.Timestamp,
		"version":        status.Version,
		"checks":         status.Checks,
		"duration_ms":    status.Duration,
		"metrics":        h.checker.GetMetrics(),
		"stream_clients": streamClients,
	})
}

func statusCode(status health.HealthStatus) int {
	if status.Status == health.StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
