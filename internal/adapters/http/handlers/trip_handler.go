package handlers

import (
	"transporteuni-api/internal/core/services"
	"transporteuni-api/internal/pkg/pagination"
	"transporteuni-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TripHandler handles the public trip search endpoints
type TripHandler struct {
	tripService *services.TripService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(tripService *services.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// Available lists bookable trips for a day
// @Summary Trips by date
// @Description Scheduled trips with free seats on the given day, by departure time then price
// @Tags Routes
// @Produce json
// @Param date query string true "Day (YYYY-MM-DD)"
// @Param origin query string false "Origin city"
// @Param destination query string false "Destination city"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /routes [get]
func (h *TripHandler) Available(c *fiber.Ctx) error {
	params, err := pagination.GetParams(c)
	if err != nil {
		return err
	}

	trips, meta, err := h.tripService.Available(c.Context(), &services.AvailableTripsInput{
		Date:        c.Query("date"),
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Params:      params,
	})
	if err != nil {
		return err
	}

	return response.Paginated(c, "Routes retrieved successfully", trips, meta)
}

// Search runs the advanced trip search
// @Summary Search trips
// @Tags Routes
// @Produce json
// @Param origin query string false "Origin city"
// @Param destination query string false "Destination city"
// @Param startDate query string false "From (YYYY-MM-DD)"
// @Param endDate query string false "To (YYYY-MM-DD)"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param minSeats query int false "Minimum free seats"
// @Success 200 {object} response.Response
// @Router /routes/search [get]
func (h *TripHandler) Search(c *fiber.Ctx) error {
	minPrice, err := queryFloat(c, "minPrice")
	if err != nil {
		return err
	}
	maxPrice, err := queryFloat(c, "maxPrice")
	if err != nil {
		return err
	}

	params, err := pagination.GetParams(c)
	if err != nil {
		return err
	}

	trips, meta, err := h.tripService.Search(c.Context(), &services.SearchTripsInput{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		StartDate:   c.Query("startDate"),
		EndDate:     c.Query("endDate"),
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
		MinSeats:    c.QueryInt("minSeats", 1),
		Params:      params,
	})
	if err != nil {
		return err
	}

	return response.Paginated(c, "Search completed successfully", trips, meta)
}

// Popular lists the most travelled routes of the last 30 days
// @Summary Popular routes
// @Tags Routes
// @Produce json
// @Param limit query int false "Limit (default 5)"
// @Success 200 {object} response.Response
// @Router /routes/popular [get]
func (h *TripHandler) Popular(c *fiber.Ctx) error {
	routes, err := h.tripService.Popular(c.Context(), c.QueryInt("limit", 5))
	if err != nil {
		return err
	}

	return response.Success(c, "Popular routes retrieved successfully", routes)
}

// GetByID returns one trip
// @Summary Get trip
// @Tags Routes
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /routes/{id} [get]
func (h *TripHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	trip, err := h.tripService.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	return response.Success(c, "Route retrieved successfully", trip)
}
