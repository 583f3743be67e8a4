package handlers

import (
	"transporteuni-api/internal/core/services"
	"transporteuni-api/internal/pkg/pagination"
	"transporteuni-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReservationHandler handles reservation endpoints
type ReservationHandler struct {
	reservationService *services.ReservationService
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservationService *services.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

// Create books a trip for the caller
// @Summary Create reservation
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateReservationInput true "Reservation data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reservations [post]
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	var input services.CreateReservationInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	reservation, err := h.reservationService.Create(c.Context(), actor, &input)
	if err != nil {
		return err
	}

	return response.Created(c, "Reservation created successfully", reservation)
}

// ListMine lists the caller's reservations
// @Summary My reservations
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /reservations/my-reservations [get]
func (h *ReservationHandler) ListMine(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	params, err := pagination.GetParams(c)
	if err != nil {
		return err
	}

	reservations, meta, err := h.reservationService.ListMine(c.Context(), actor, c.Query("status"), params)
	if err != nil {
		return err
	}

	return response.Paginated(c, "Reservations retrieved successfully", reservations, meta)
}

// ListAll lists every reservation
// @Summary All reservations
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param paymentStatus query string false "Payment status"
// @Param routeInstanceId query int false "Trip"
// @Param passengerId query int false "Passenger"
// @Param startDate query string false "Created from (YYYY-MM-DD)"
// @Param endDate query string false "Created to (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /reservations [get]
func (h *ReservationHandler) ListAll(c *fiber.Ctx) error {
	routeInstanceID, err := queryUint(c, "routeInstanceId")
	if err != nil {
		return err
	}
	passengerID, err := queryUint(c, "passengerId")
	if err != nil {
		return err
	}
	startDate, err := queryDate(c, "startDate", false)
	if err != nil {
		return err
	}
	endDate, err := queryDate(c, "endDate", true)
	if err != nil {
		return err
	}

	params, err := pagination.GetParams(c)
	if err != nil {
		return err
	}

	reservations, meta, err := h.reservationService.ListAll(c.Context(), &services.ListReservationsInput{
		Status:          c.Query("status"),
		PaymentStatus:   c.Query("paymentStatus"),
		RouteInstanceID: routeInstanceID,
		PassengerID:     passengerID,
		StartDate:       startDate,
		EndDate:         endDate,
		Params:          params,
	})
	if err != nil {
		return err
	}

	return response.Paginated(c, "Reservations retrieved successfully", reservations, meta)
}

// GetByID returns a reservation and its latest payment
// @Summary Get reservation
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetByID(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	detail, err := h.reservationService.GetByID(c.Context(), actor, id)
	if err != nil {
		return err
	}

	return response.Success(c, "Reservation retrieved successfully", detail)
}

// Update changes the notes of a reservation
// @Summary Update reservation notes
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Param body body services.UpdateReservationInput true "Notes"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /reservations/{id} [put]
func (h *ReservationHandler) Update(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var input services.UpdateReservationInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	reservation, err := h.reservationService.Update(c.Context(), actor, id, &input)
	if err != nil {
		return err
	}

	return response.Success(c, "Reservation updated successfully", reservation)
}

// Cancel cancels a reservation
// @Summary Cancel reservation
// @Description Passengers cannot cancel within 2 hours of departure. A paid reservation has its payment cancelled.
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /reservations/{id}/cancel [patch]
func (h *ReservationHandler) Cancel(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	reservation, err := h.reservationService.Cancel(c.Context(), actor, id)
	if err != nil {
		return err
	}

	return response.Success(c, "Reservation cancelled successfully", reservation)
}

// ListByPassenger lists the reservations of one passenger
// @Summary Reservations of a user
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users/{id}/reservations [get]
func (h *ReservationHandler) ListByPassenger(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	params, err := pagination.GetParams(c)
	if err != nil {
		return err
	}

	reservations, meta, err := h.reservationService.ListAll(c.Context(), &services.ListReservationsInput{
		Status:      c.Query("status"),
		PassengerID: id,
		Params:      params,
	})
	if err != nil {
		return err
	}

	return response.Paginated(c, "Reservations retrieved successfully", reservations, meta)
}
