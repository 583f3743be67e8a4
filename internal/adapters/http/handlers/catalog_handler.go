package handlers

import (
	"transporteuni-api/internal/core/services"
	"transporteuni-api/internal/pkg/pagination"
	"transporteuni-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles vehicle, route template and trip management endpoints
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ============================================================
// Vehicles
// ============================================================

// ListVehicles lists vehicles
// @Summary List vehicles
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param all query bool false "Include inactive"
// @Success 200 {object} response.Response
// @Router /catalog/vehicles [get]
func (h *CatalogHandler) ListVehicles(c *fiber.Ctx) error {
	vehicles, err := h.catalogService.ListVehicles(c.Context(), c.QueryBool("all"))
	if err != nil {
		return err
	}
	return response.Success(c, "Vehicles retrieved successfully", vehicles)
}

// GetVehicle gets a vehicle by ID
// @Summary Get vehicle
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Vehicle ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /catalog/vehicles/{id} [get]
func (h *CatalogHandler) GetVehicle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	vehicle, err := h.catalogService.GetVehicle(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, "Vehicle retrieved successfully", vehicle)
}

// CreateVehicle registers a vehicle
// @Summary Create vehicle
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.VehicleInput true "Vehicle data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /catalog/vehicles [post]
func (h *CatalogHandler) CreateVehicle(c *fiber.Ctx) error {
	var input services.VehicleInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	vehicle, err := h.catalogService.CreateVehicle(c.Context(), &input)
	if err != nil {
		return err
	}
	return response.Created(c, "Vehicle created successfully", vehicle)
}

// UpdateVehicle updates a vehicle
// @Summary Update vehicle
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Vehicle ID"
// @Param body body services.VehicleInput true "Vehicle data"
// @Success 200 {object} response.Response
// @Router /catalog/vehicles/{id} [put]
func (h *CatalogHandler) UpdateVehicle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var input services.VehicleInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	vehicle, err := h.catalogService.UpdateVehicle(c.Context(), id, &input)
	if err != nil {
		return err
	}
	return response.Success(c, "Vehicle updated successfully", vehicle)
}

// DeactivateVehicle deactivates a vehicle
// @Summary Deactivate vehicle
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Vehicle ID"
// @Success 200 {object} response.Response
// @Router /catalog/vehicles/{id} [delete]
func (h *CatalogHandler) DeactivateVehicle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	vehicle, err := h.catalogService.DeactivateVehicle(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, "Vehicle deactivated successfully", vehicle)
}

// ============================================================
// Scheduled routes
// ============================================================

// ListScheduledRoutes lists route templates
// @Summary List scheduled routes
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param all query bool false "Include inactive"
// @Success 200 {object} response.Response
// @Router /catalog/routes [get]
func (h *CatalogHandler) ListScheduledRoutes(c *fiber.Ctx) error {
	routes, err := h.catalogService.ListScheduledRoutes(c.Context(), c.QueryBool("all"))
	if err != nil {
		return err
	}
	return response.Success(c, "Scheduled routes retrieved successfully", routes)
}

// GetScheduledRoute gets a route template
func (h *CatalogHandler) GetScheduledRoute(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	route, err := h.catalogService.GetScheduledRoute(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, "Scheduled route retrieved successfully", route)
}

// CreateScheduledRoute creates a route template
// @Summary Create scheduled route
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ScheduledRouteInput true "Route data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /catalog/routes [post]
func (h *CatalogHandler) CreateScheduledRoute(c *fiber.Ctx) error {
	var input services.ScheduledRouteInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	route, err := h.catalogService.CreateScheduledRoute(c.Context(), &input)
	if err != nil {
		return err
	}
	return response.Created(c, "Scheduled route created successfully", route)
}

// UpdateScheduledRoute updates a route template
func (h *CatalogHandler) UpdateScheduledRoute(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var input services.UpdateScheduledRouteInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	route, err := h.catalogService.UpdateScheduledRoute(c.Context(), id, &input)
	if err != nil {
		return err
	}
	return response.Success(c, "Scheduled route updated successfully", route)
}

// DeactivateScheduledRoute deactivates a route template
func (h *CatalogHandler) DeactivateScheduledRoute(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	route, err := h.catalogService.DeactivateScheduledRoute(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, "Scheduled route deactivated successfully", route)
}

// ============================================================
// Trip instances
// ============================================================

// ListRouteInstances lists trip instances
// @Summary List trip instances
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param status query string false "Trip status"
// @Param scheduledRouteId query int false "Route template"
// @Param driverId query int false "Driver"
// @Param startDate query string false "From (YYYY-MM-DD)"
// @Param endDate query string false "To (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Router /catalog/instances [get]
func (h *CatalogHandler) ListRouteInstances(c *fiber.Ctx) error {
	routeID, err := queryUint(c, "scheduledRouteId")
	if err != nil {
		return err
	}
	driverID, err := queryUint(c, "driverId")
	if err != nil {
		return err
	}
	from, err := queryDate(c, "startDate", false)
	if err != nil {
		return err
	}
	to, err := queryDate(c, "endDate", true)
	if err != nil {
		return err
	}

	params, err := pagination.GetParams(c)
	if err != nil {
		return err
	}

	trips, meta, err := h.catalogService.ListRouteInstances(c.Context(), &services.ListRouteInstancesInput{
		Status:           c.Query("status"),
		ScheduledRouteID: routeID,
		DriverID:         driverID,
		From:             from,
		To:               to,
		Params:           params,
	})
	if err != nil {
		return err
	}
	return response.Paginated(c, "Trips retrieved successfully", trips, meta)
}

// GetRouteInstance gets a trip instance
func (h *CatalogHandler) GetRouteInstance(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	trip, err := h.catalogService.GetRouteInstance(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, "Trip retrieved successfully", trip)
}

// CreateRouteInstance schedules a trip
// @Summary Create trip instance
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RouteInstanceInput true "Trip data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /catalog/instances [post]
func (h *CatalogHandler) CreateRouteInstance(c *fiber.Ctx) error {
	var input services.RouteInstanceInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	trip, err := h.catalogService.CreateRouteInstance(c.Context(), &input)
	if err != nil {
		return err
	}
	return response.Created(c, "Trip created successfully", trip)
}

// UpdateRouteInstance updates status, price, seats or notes of a trip
// @Summary Update trip instance
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Trip ID"
// @Param body body services.UpdateRouteInstanceInput true "Trip changes"
// @Success 200 {object} response.Response
// @Router /catalog/instances/{id} [patch]
func (h *CatalogHandler) UpdateRouteInstance(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var input services.UpdateRouteInstanceInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	trip, err := h.catalogService.UpdateRouteInstance(c.Context(), id, &input)
	if err != nil {
		return err
	}
	return response.Success(c, "Trip updated successfully", trip)
}

// ListAssignedTrips lists the trips assigned to the calling driver. Staff may
// pass driverId to see another driver's schedule.
// @Summary My assigned trips
// @Tags Driver
// @Produce json
// @Security BearerAuth
// @Param status query string false "Trip status"
// @Param driverId query int false "Driver (staff only)"
// @Success 200 {object} response.Response
// @Router /driver/trips [get]
func (h *CatalogHandler) ListAssignedTrips(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	driverID := actor.UserID
	if actor.IsStaff() {
		requested, err := queryUint(c, "driverId")
		if err != nil {
			return err
		}
		if requested != 0 {
			driverID = requested
		}
	}

	params, err := pagination.GetParams(c)
	if err != nil {
		return err
	}

	trips, meta, err := h.catalogService.ListRouteInstances(c.Context(), &services.ListRouteInstancesInput{
		Status:   c.Query("status"),
		DriverID: driverID,
		Params:   params,
	})
	if err != nil {
		return err
	}
	return response.Paginated(c, "Assigned trips retrieved successfully", trips, meta)
}
