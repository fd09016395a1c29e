package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	BaseHandler

	pool    *pgxpool.Pool
	version string
}

// NewHealthHandler creates a health handler. The pool may be nil when the
// service runs without a database (in-memory mode).
func NewHealthHandler(pool *pgxpool.Pool, version string) *HealthHandler {
	return &HealthHandler{pool: pool, version: version}
}

// Live reports that the process is running.
func (h *HealthHandler) Live(c *gin.Context) {
	h.OK(c, gin.H{"status": "ok"})
}

// Ready reports whether dependencies are reachable.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.pool != nil {
		if err := h.pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  "database unreachable",
			})
			return
		}
	}
	h.OK(c, gin.H{"status": "ready"})
}

// Info returns build information.
func (h *HealthHandler) Info(c *gin.Context) {
	h.OK(c, gin.H{
		"service": "prodsupply",
		"version": h.version,
		"time":    time.Now().UTC(),
	})
}
