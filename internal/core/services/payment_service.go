package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/adapters/persistence/repositories"
	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/pkg/pagination"
	"transporteuni-api/internal/pkg/validator"

	"gorm.io/gorm"
)

// PaymentService implements the manual payment workflow
type PaymentService struct {
	paymentRepo     *repositories.PaymentRepository
	reservationRepo *repositories.ReservationRepository
	notifier        *NotificationService
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo *repositories.PaymentRepository,
	reservationRepo *repositories.ReservationRepository,
	notifier *NotificationService,
) *PaymentService {
	return &PaymentService{
		paymentRepo:     paymentRepo,
		reservationRepo: reservationRepo,
		notifier:        notifier,
	}
}

// CreatePaymentInput represents create payment input
type CreatePaymentInput struct {
	ReservationID uint   `json:"reservationId" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cash manual"`
	Notes         string `json:"notes" validate:"max=500"`
}

// UpdatePaymentStatusInput represents an operator decision on a payment
type UpdatePaymentStatusInput struct {
	Status string `json:"status" validate:"required,oneof=approved rejected cancelled"`
	Notes  string `json:"notes" validate:"max=500"`
}

// PaymentHistoryInput filters the payment history and statistics
type PaymentHistoryInput struct {
	Status        string
	PaymentMethod string
	DateFrom      *time.Time
	DateTo        *time.Time
	Params        *pagination.Params
}

// Create records a pending payment for the full reservation total
func (s *PaymentService) Create(ctx context.Context, actor Actor, input *CreatePaymentInput) (*models.PaymentResponse, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	reservation, err := s.reservationRepo.GetByID(ctx, input.ReservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}

	if !reservation.IsOwnedBy(actor.UserID) && !actor.IsStaff() {
		return nil, domain.ErrReservationForbidden
	}

	if reservation.PaymentStatus == domain.PaymentStatusPaid {
		return nil, domain.ErrReservationAlreadyPaid
	}
	if reservation.Status == domain.ReservationStatusCancelled {
		return nil, domain.ErrReservationCancelled
	}

	exists, err := s.paymentRepo.ExistsActive(ctx, reservation.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrPaymentExists
	}

	payment := &models.Payment{
		ReservationID: reservation.ID,
		PaymentMethod: input.PaymentMethod,
		Amount:        reservation.TotalAmount,
		Currency:      domain.DefaultCurrency,
		Status:        domain.PaymentPending,
		Notes:         strings.TrimSpace(input.Notes),
	}
	// Staff recording on behalf of the payer
	if actor.Role != string(domain.RolePassenger) {
		processedBy := actor.UserID
		payment.ProcessedByID = &processedBy
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, domain.NewDuplicateKeyError(repositories.DuplicateKeyField(err))
		}
		return nil, err
	}

	log.Printf("✅ Payment created: #%d for reservation #%d (%.2f %s)", payment.ID, reservation.ID, payment.Amount, payment.Currency)
	s.notifier.NotifyPaymentCreated(ctx, payment, actor.UserID)

	return s.get(ctx, payment.ID)
}

// ListByReservation lists the payments of a reservation its owner or staff may see
func (s *PaymentService) ListByReservation(ctx context.Context, actor Actor, reservationID uint) ([]*models.PaymentResponse, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}

	if !reservation.IsOwnedBy(actor.UserID) && !actor.IsStaff() {
		return nil, domain.ErrReservationForbidden
	}

	payments, err := s.paymentRepo.GetByReservationID(ctx, reservation.ID)
	if err != nil {
		return nil, err
	}
	return toPaymentResponses(payments), nil
}

// UpdateStatus approves, rejects or cancels a pending payment. Model hooks
// stamp processedAt and sync the reservation in the same transaction.
func (s *PaymentService) UpdateStatus(ctx context.Context, actor Actor, paymentID uint, input *UpdatePaymentStatusInput) (*models.PaymentResponse, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.Status != domain.PaymentPending {
		return nil, domain.ErrPaymentNotPending
	}

	previous := payment.Status
	processedBy := actor.UserID
	payment.Status = input.Status
	payment.ProcessedByID = &processedBy
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		payment.Notes = notes
	}

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	log.Printf("✅ Payment #%d %s -> %s by user %d", payment.ID, previous, payment.Status, actor.UserID)
	s.notifier.NotifyPaymentStatusChanged(ctx, payment, previous, actor.UserID)

	return s.get(ctx, payment.ID)
}

// History lists payments matching the filter, newest first
func (s *PaymentService) History(ctx context.Context, input *PaymentHistoryInput) ([]*models.PaymentResponse, *pagination.Meta, error) {
	payments, total, err := s.paymentRepo.List(ctx, historyFilter(input), input.Params.Offset, input.Params.Limit)
	if err != nil {
		return nil, nil, err
	}
	return toPaymentResponses(payments), pagination.GetMeta(input.Params, total), nil
}

// Statistics aggregates payment counts and amounts
func (s *PaymentService) Statistics(ctx context.Context, input *PaymentHistoryInput) (*repositories.PaymentStatistics, error) {
	return s.paymentRepo.Statistics(ctx, historyFilter(input))
}

func (s *PaymentService) get(ctx context.Context, id uint) (*models.PaymentResponse, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return payment.ToResponse(), nil
}

func historyFilter(input *PaymentHistoryInput) repositories.PaymentFilter {
	return repositories.PaymentFilter{
		Status:        input.Status,
		PaymentMethod: input.PaymentMethod,
		DateFrom:      input.DateFrom,
		DateTo:        input.DateTo,
	}
}

func toPaymentResponses(payments []*models.Payment) []*models.PaymentResponse {
	responses := make([]*models.PaymentResponse, len(payments))
	for i, p := range payments {
		responses[i] = p.ToResponse()
	}
	return responses
}
