package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jestfly/community-backend/internal/realtime"
	"github.com/jestfly/community-backend/pkg/config"
)

// HealthHandler reports service liveness and backing store reachability
type HealthHandler struct {
	db       *config.DB
	notifier *realtime.Notifier
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *config.DB, notifier *realtime.Notifier) *HealthHandler {
	return &HealthHandler{db: db, notifier: notifier}
}

// RegisterHealthRoutes registers the health endpoint
func (h *HealthHandler) RegisterHealthRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
}

// Health pings each backing store and reports per-store status
func (h *HealthHandler) Health(c echo.Context) error {
	ctx := c.Request().Context()
	stores := echo.Map{}
	healthy := true

	if sqlDB, err := h.db.Postgres.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		stores["postgres"] = "down"
		healthy = false
	} else {
		stores["postgres"] = "up"
	}

	if err := h.db.Mongo.Ping(ctx, nil); err != nil {
		stores["mongo"] = "down"
		healthy = false
	} else {
		stores["mongo"] = "up"
	}

	// redis is optional; when absent the bridge runs direct-delivery only
	if err := h.notifier.Ping(ctx); err != nil {
		stores["redis"] = "down"
	} else {
		stores["redis"] = "up"
	}

	status := http.StatusOK
	label := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		label = "degraded"
	}
	return c.JSON(status, echo.Map{
		"status": label,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"stores": stores,
	})
}
