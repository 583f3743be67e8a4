package handlers

import (
	"transporteuni-api/internal/core/services"
	"transporteuni-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles the admin reporting endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetSummary returns the operations summary
// @Summary Admin summary
// @Description Counts of users, vehicles, trips, reservations and approved payments (Operator+)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/summary [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetSummary(c.Context())
	if err != nil {
		return err
	}

	return response.Success(c, "Summary retrieved successfully", data)
}

// RecentReservations returns the latest reservations
// @Summary Recent reservations
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Limit (default 10)"
// @Success 200 {object} response.Response
// @Router /admin/reservations/recent [get]
func (h *DashboardHandler) RecentReservations(c *fiber.Ctx) error {
	reservations, err := h.dashboardService.RecentReservations(c.Context(), c.QueryInt("limit", 10))
	if err != nil {
		return err
	}

	return response.Success(c, "Recent reservations retrieved successfully", reservations)
}

// GetSystemStatus reports the state of the database, cache and broker
// @Summary System status
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/system-status [get]
func (h *DashboardHandler) GetSystemStatus(c *fiber.Ctx) error {
	return response.Success(c, "System status retrieved successfully", h.dashboardService.GetSystemStatus(c.Context()))
}
