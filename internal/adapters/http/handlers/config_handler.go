package handlers

import (
	"transporteuni-api/internal/core/services"
	"transporteuni-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ConfigHandler handles company configuration endpoints
type ConfigHandler struct {
	companyService *services.CompanyConfigService
	defaultName    string
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(companyService *services.CompanyConfigService, defaultName string) *ConfigHandler {
	return &ConfigHandler{companyService: companyService, defaultName: defaultName}
}

// GetPublic returns the public company information
// @Summary Public company info
// @Tags Config
// @Produce json
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /config/public [get]
func (h *ConfigHandler) GetPublic(c *fiber.Ctx) error {
	info, err := h.companyService.GetPublicInfo(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, "Company information retrieved successfully", info)
}

// Get returns the active configuration
// @Summary Active company config
// @Tags Config
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /config [get]
func (h *ConfigHandler) Get(c *fiber.Ctx) error {
	cfg, err := h.companyService.GetActive(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, "Company configuration retrieved successfully", cfg)
}

// Create stores a new active configuration and deactivates the previous one
// @Summary Create company config
// @Tags Config
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CompanyConfigInput true "Company data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /config [post]
func (h *ConfigHandler) Create(c *fiber.Ctx) error {
	var input services.CompanyConfigInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	cfg, err := h.companyService.Create(c.Context(), &input)
	if err != nil {
		return err
	}
	return response.Created(c, "Company configuration created successfully", cfg)
}

// Update updates a configuration
// @Summary Update company config
// @Tags Config
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Config ID"
// @Param body body services.UpdateCompanyConfigInput true "Company data"
// @Success 200 {object} response.Response
// @Router /config/{id} [put]
func (h *ConfigHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var input services.UpdateCompanyConfigInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	cfg, err := h.companyService.Update(c.Context(), id, &input)
	if err != nil {
		return err
	}
	return response.Success(c, "Company configuration updated successfully", cfg)
}

// Delete deactivates a configuration
// @Summary Deactivate company config
// @Tags Config
// @Produce json
// @Security BearerAuth
// @Param id path int true "Config ID"
// @Success 200 {object} response.Response
// @Router /config/{id} [delete]
func (h *ConfigHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.companyService.Delete(c.Context(), id); err != nil {
		return err
	}
	return response.Success(c, "Company configuration deactivated successfully", nil)
}

// Initialize creates the default configuration when none is active
// @Summary Initialize company config
// @Tags Config
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Success 201 {object} response.Response
// @Router /config/initialize [post]
func (h *ConfigHandler) Initialize(c *fiber.Ctx) error {
	cfg, created, err := h.companyService.InitializeDefault(c.Context(), h.defaultName)
	if err != nil {
		return err
	}
	if created {
		return response.Created(c, "Default company configuration created", cfg)
	}
	return response.Success(c, "Company configuration already initialized", cfg)
}
