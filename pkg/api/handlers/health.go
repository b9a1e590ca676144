package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jordanlanch/clientintel/pkg/cache"
	"github.com/jordanlanch/clientintel/pkg/database"
	"github.com/jordanlanch/clientintel/pkg/metrics"
	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler reports the state of the database and the cache
type HealthHandler struct {
	db      *database.Client
	cache   *cache.Client
	metrics *metrics.Metrics
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.Client, c *cache.Client, m *metrics.Metrics) *HealthHandler {
	return &HealthHandler{db: db, cache: c, metrics: m}
}

// Check handles GET /health
func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	dbStatus := "up"
	if err := h.db.Ping(ctx); err != nil {
		dbStatus = "down"
	} else {
		h.metrics.UpdateDBConnections(float64(h.db.Stats().InUse))
	}

	cacheStatus := "up"
	if err := h.cache.Ping(ctx); err != nil {
		cacheStatus = "down"
	}

	status, code := "healthy", http.StatusOK
	if dbStatus == "down" || cacheStatus == "down" {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	return c.JSON(code, map[string]any{
		"status":   status,
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}
