package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// pingTimeout bounds each dependency check.
const pingTimeout = 2 * time.Second

// HealthHandler provides health check endpoints for the fraud pipeline.
type HealthHandler struct {
	database  Pinger
	logger    *slog.Logger
	startTime time.Time
	service   string
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(service string, database Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		database:  database,
		logger:    logger,
		startTime: time.Now(),
		service:   service,
	}
}

// HealthResponse is the JSON response for liveness checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks"`
}

// APIHealthResponse is the dashboard health payload.
type APIHealthResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Database  string    `json:"database"`
}

// RegisterRoutes registers the health check endpoints at the router root.
func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
}

// Healthz handles liveness checks.
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.service,
		Uptime:  time.Since(h.startTime).String(),
	})
}

// Readyz handles readiness checks. The service is ready only while
// the store answers.
func (h *HealthHandler) Readyz(c *gin.Context) {
	dbStatus := h.checkDatabase(c.Request.Context())

	resp := ReadinessResponse{
		Status:  "ready",
		Service: h.service,
		Checks:  map[string]string{"database": dbStatus},
	}
	if dbStatus != "ok" {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// APIHealth handles GET /api/health.
func (h *HealthHandler) APIHealth(c *gin.Context) {
	resp := APIHealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Database:  "connected",
	}
	if h.checkDatabase(c.Request.Context()) != "ok" {
		resp.Status = "degraded"
		resp.Database = "disconnected"
	}

	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := h.database.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "database health check failed", slog.String("error", err.Error()))
		return "unavailable"
	}
	return "ok"
}
