package handlers

import (
	"transporteuni-api/internal/core/services"
	"transporteuni-api/internal/pkg/pagination"
	"transporteuni-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Create records a manual payment
// @Summary Create payment
// @Description Records a pending cash or manual payment for the reservation total
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreatePaymentInput true "Payment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/create [post]
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	var input services.CreatePaymentInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	payment, err := h.paymentService.Create(c.Context(), actor, &input)
	if err != nil {
		return err
	}

	return response.Created(c, "Payment created successfully", payment)
}

// ListByReservation lists the payments of a reservation
// @Summary Payments of a reservation
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /payments/reservation/{id} [get]
func (h *PaymentHandler) ListByReservation(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	payments, err := h.paymentService.ListByReservation(c.Context(), actor, id)
	if err != nil {
		return err
	}

	return response.Success(c, "Payments retrieved successfully", payments)
}

// UpdateStatus approves, rejects or cancels a pending payment
// @Summary Update payment status
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Param body body services.UpdatePaymentStatusInput true "Decision"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /payments/{id}/status [patch]
func (h *PaymentHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var input services.UpdatePaymentStatusInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	payment, err := h.paymentService.UpdateStatus(c.Context(), actor, id, &input)
	if err != nil {
		return err
	}

	return response.Success(c, "Payment status updated successfully", payment)
}

// History lists payments
// @Summary Payment history
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param paymentMethod query string false "cash or manual"
// @Param startDate query string false "From (YYYY-MM-DD)"
// @Param endDate query string false "To (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Router /payments/history [get]
func (h *PaymentHandler) History(c *fiber.Ctx) error {
	input, err := historyInput(c)
	if err != nil {
		return err
	}

	params, err := pagination.GetParams(c)
	if err != nil {
		return err
	}

	input.Params = params

	payments, meta, err := h.paymentService.History(c.Context(), input)
	if err != nil {
		return err
	}

	return response.Paginated(c, "Payment history retrieved successfully", payments, meta)
}

// Statistics aggregates payments
// @Summary Payment statistics
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "From (YYYY-MM-DD)"
// @Param endDate query string false "To (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Router /payments/statistics [get]
func (h *PaymentHandler) Statistics(c *fiber.Ctx) error {
	input, err := historyInput(c)
	if err != nil {
		return err
	}

	stats, err := h.paymentService.Statistics(c.Context(), input)
	if err != nil {
		return err
	}

	return response.Success(c, "Payment statistics retrieved successfully", stats)
}

func historyInput(c *fiber.Ctx) (*services.PaymentHistoryInput, error) {
	from, err := queryDate(c, "startDate", false)
	if err != nil {
		return nil, err
	}
	to, err := queryDate(c, "endDate", true)
	if err != nil {
		return nil, err
	}

	return &services.PaymentHistoryInput{
		Status:        c.Query("status"),
		PaymentMethod: c.Query("paymentMethod"),
		DateFrom:      from,
		DateTo:        to,
	}, nil
}
