package handlers

import (
	"context"
	"time"

	"microcredit-api/internal/config"

	"github.com/gofiber/fiber/v2"
)

// Check is one dependency probed by the health endpoint
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	cfg    *config.Config
	checks []Check
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cfg *config.Config, checks ...Check) *HealthHandler {
	return &HealthHandler{cfg: cfg, checks: checks}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "🚀 " + h.cfg.BrandName + " API is running",
		"mode":    h.cfg.AppMode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check API, database and code store health
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	checks := fiber.Map{"api": "healthy"}
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			checks[check.Name] = "unhealthy"
			status = "degraded"
			continue
		}
		checks[check.Name] = "healthy"
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": checks,
	})
}

// APIInfo handles API info
// @Summary API Info
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api [get]
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": h.cfg.BrandName + " API",
		"version": "1.0.0",
	})
}
