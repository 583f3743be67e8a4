package handlers

import (
	"time"

	"transporteuni-api/internal/config"
	"transporteuni-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db             *gorm.DB
	cfg            *config.Config
	companyService *services.CompanyConfigService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, cfg *config.Config, companyService *services.CompanyConfigService) *HealthHandler {
	return &HealthHandler{db: db, cfg: cfg, companyService: companyService}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "🚌 TransporteUNI API is running",
		"mode":    h.cfg.AppMode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check API and database health
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "healthy"
	if err := config.HealthCheck(h.db); err != nil {
		status = "degraded"
		dbStatus = "unhealthy"
	}

	company := services.DefaultCompanyName
	if info, err := h.companyService.GetPublicInfo(c.Context()); err == nil {
		company = info.CompanyName
	}

	code := fiber.StatusOK
	if dbStatus != "healthy" {
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now(),
		"company":   company,
		"version":   h.cfg.Version,
		"checks": fiber.Map{
			"api":      "healthy",
			"database": dbStatus,
		},
	})
}

// APIInfo handles API v1 info
// @Summary API v1 Info
// @Description Returns API v1 information
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1 [get]
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "TransporteUNI API v1",
		"version": h.cfg.Version,
	})
}
