package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AstralMortem/go-microservice-template/pkg/cache"
	"github.com/AstralMortem/go-microservice-template/pkg/database"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	serviceName string
	version     string
	db          *database.PostgresDB
	cache       *cache.Client
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(serviceName, version string, db *database.PostgresDB, cacheClient *cache.Client) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		db:          db,
		cache:       cacheClient,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready handles GET /ready, checking downstream dependencies
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{}
	healthy := true

	checks["database"] = h.check(ctx, func(ctx context.Context) error { return h.db.Ping(ctx) }, &healthy)
	if h.cache != nil {
		checks["cache"] = h.check(ctx, h.cache.Ping, &healthy)
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"checks": checks})
}

func (h *HealthHandler) check(ctx context.Context, ping func(context.Context) error, healthy *bool) string {
	if err := ping(ctx); err != nil {
		*healthy = false
		return "down: " + err.Error()
	}
	return "up"
}
