package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Health statuses reported by Readyz.
const (
	StatusOK        = "ok"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

const readinessTimeout = 5 * time.Second

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	db     HealthChecker
	cache  HealthChecker
	logger *slog.Logger
}

// NewHealthHandler creates a new HealthHandler.
// cache is nil when the session cache is disabled.
func NewHealthHandler(db, cache HealthChecker, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe endpoint.
// It returns 200 if the server is running.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: StatusOK})
}

// Readyz is a readiness probe endpoint.
// PostgreSQL must answer. A failing Redis only degrades the service, because
// sessions are then resolved from PostgreSQL directly.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := make(map[string]string)
	status := StatusOK

	if h.db == nil {
		checks["postgres"] = "not configured"
		status = StatusUnhealthy
	} else if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", "dependency", "postgres", "error", err)
		checks["postgres"] = "unavailable"
		status = StatusUnhealthy
	} else {
		checks["postgres"] = "ok"
	}

	if h.cache == nil {
		checks["redis"] = "disabled"
	} else if err := h.cache.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", "dependency", "redis", "error", err)
		checks["redis"] = "unavailable"
		if status == StatusOK {
			status = StatusDegraded
		}
	} else {
		checks["redis"] = "ok"
	}

	code := http.StatusOK
	if status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{
		Status: status,
		Checks: checks,
	})
}
