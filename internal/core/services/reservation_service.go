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

// Actor is the authenticated caller of a workflow operation
type Actor struct {
	UserID uint
	Role   string
}

// IsStaff reports whether the actor is an operator or admin
func (a Actor) IsStaff() bool {
	return domain.IsStaff(a.Role)
}

// ReservationService implements the reservation workflow
type ReservationService struct {
	reservationRepo    *repositories.ReservationRepository
	tripRepo           *repositories.RouteInstanceRepository
	paymentRepo        *repositories.PaymentRepository
	notifier           *NotificationService
	cancellationWindow time.Duration
	now                func() time.Time
}

// NewReservationService creates a new reservation service
func NewReservationService(
	reservationRepo *repositories.ReservationRepository,
	tripRepo *repositories.RouteInstanceRepository,
	paymentRepo *repositories.PaymentRepository,
	notifier *NotificationService,
	cancellationWindow time.Duration,
) *ReservationService {
	return &ReservationService{
		reservationRepo:    reservationRepo,
		tripRepo:           tripRepo,
		paymentRepo:        paymentRepo,
		notifier:           notifier,
		cancellationWindow: cancellationWindow,
		now:                time.Now,
	}
}

// CreateReservationInput represents create reservation input
type CreateReservationInput struct {
	RouteInstanceID uint   `json:"routeInstanceId" validate:"required"`
	PaymentMethod   string `json:"paymentMethod" validate:"required,oneof=cash manual"`
	SeatNumber      *int   `json:"seatNumber" validate:"omitempty,gte=1"`
	SpecialRequests string `json:"specialRequests" validate:"max=500"`
	PickupLocation  string `json:"pickupLocation" validate:"max=200"`
	DropoffLocation string `json:"dropoffLocation" validate:"max=200"`
}

// UpdateReservationInput represents update reservation input. Only notes are mutable.
type UpdateReservationInput struct {
	Notes *string `json:"notes" validate:"omitempty,max=500"`
}

// ListReservationsInput filters reservation listings
type ListReservationsInput struct {
	Status          string
	PaymentStatus   string
	RouteInstanceID uint
	PassengerID     uint
	StartDate       *time.Time
	EndDate         *time.Time
	Params          *pagination.Params
}

// ReservationDetail is a reservation with its most recent payment
type ReservationDetail struct {
	*models.Reservation
	Payment *models.PaymentResponse `json:"payment"`
}

// Create books a scheduled trip for the actor
func (s *ReservationService) Create(ctx context.Context, actor Actor, input *CreateReservationInput) (*models.Reservation, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.GetByID(ctx, input.RouteInstanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTripNotFound
		}
		return nil, err
	}

	if trip.Status != domain.TripStatusScheduled {
		return nil, domain.ErrTripNotScheduled
	}
	if trip.AvailableSeats <= 0 {
		return nil, domain.ErrNoSeatsAvailable
	}

	exists, err := s.reservationRepo.ExistsActive(ctx, actor.UserID, trip.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrReservationExists
	}

	if input.SeatNumber != nil && trip.Vehicle != nil && *input.SeatNumber > trip.Vehicle.Capacity {
		return nil, domain.NewValidationError("seatNumber exceeds the vehicle capacity")
	}

	reservation := &models.Reservation{
		RouteInstanceID: trip.ID,
		PassengerID:     actor.UserID,
		SeatNumber:      input.SeatNumber,
		Status:          domain.ReservationStatusPending,
		TotalAmount:     trip.CurrentPrice,
		PaymentStatus:   domain.PaymentStatusPending,
		PaymentMethod:   input.PaymentMethod,
		SpecialRequests: strings.TrimSpace(input.SpecialRequests),
		PickupLocation:  strings.TrimSpace(input.PickupLocation),
		DropoffLocation: strings.TrimSpace(input.DropoffLocation),
	}

	if err := s.reservationRepo.Create(ctx, reservation); err != nil {
		// A concurrent request won the active key
		if repositories.IsDuplicateKey(err) {
			return nil, domain.ErrReservationExists
		}
		return nil, err
	}

	log.Printf("✅ Reservation created: #%d (passenger %d, trip %d)", reservation.ID, actor.UserID, trip.ID)
	s.notifier.NotifyReservationCreated(ctx, reservation)

	return s.reservationRepo.GetByID(ctx, reservation.ID)
}

// ListMine lists the actor's reservations, newest first
func (s *ReservationService) ListMine(ctx context.Context, actor Actor, status string, params *pagination.Params) ([]*models.Reservation, *pagination.Meta, error) {
	filter := repositories.ReservationFilter{
		Status:      status,
		PassengerID: actor.UserID,
	}

	reservations, total, err := s.reservationRepo.List(ctx, filter, params.Offset, params.Limit)
	if err != nil {
		return nil, nil, err
	}
	return reservations, pagination.GetMeta(params, total), nil
}

// ListAll lists every reservation matching the filter (staff only)
func (s *ReservationService) ListAll(ctx context.Context, input *ListReservationsInput) ([]*models.Reservation, *pagination.Meta, error) {
	filter := repositories.ReservationFilter{
		Status:          input.Status,
		PaymentStatus:   input.PaymentStatus,
		RouteInstanceID: input.RouteInstanceID,
		PassengerID:     input.PassengerID,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
	}

	reservations, total, err := s.reservationRepo.List(ctx, filter, input.Params.Offset, input.Params.Limit)
	if err != nil {
		return nil, nil, err
	}
	return reservations, pagination.GetMeta(input.Params, total), nil
}

// GetByID returns a reservation and its latest payment to its owner or staff
func (s *ReservationService) GetByID(ctx context.Context, actor Actor, id uint) (*ReservationDetail, error) {
	reservation, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	detail := &ReservationDetail{Reservation: reservation}

	payment, err := s.paymentRepo.GetLatestByReservationID(ctx, reservation.ID)
	if err != nil {
		return nil, err
	}
	if payment != nil {
		detail.Payment = payment.ToResponse()
	}

	return detail, nil
}

// Cancel cancels a pending or confirmed reservation. Passengers cannot cancel
// inside the window before departure. A paid reservation has its approved
// payment cancelled in the same transaction.
func (s *ReservationService) Cancel(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	reservation, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if reservation.Status == domain.ReservationStatusCancelled || reservation.Status == domain.ReservationStatusCompleted {
		return nil, domain.ErrReservationNotCancelable
	}

	if actor.Role == string(domain.RolePassenger) && reservation.RouteInstance != nil {
		departure := reservation.RouteInstance.DepartureAt(time.Local)
		if departure.Sub(s.now()) <= s.cancellationWindow {
			return nil, domain.ErrCancellationTooLate
		}
	}

	payment, err := s.reservationRepo.Cancel(ctx, reservation)
	if err != nil {
		return nil, err
	}

	if payment != nil {
		log.Printf("✅ Reservation #%d cancelled, payment #%d cancelled", reservation.ID, payment.ID)
		s.notifier.NotifyPaymentStatusChanged(ctx, payment, domain.PaymentApproved, actor.UserID)
	} else {
		log.Printf("✅ Reservation #%d cancelled", reservation.ID)
	}
	s.notifier.NotifyReservationCancelled(ctx, reservation, actor.UserID)

	return s.reservationRepo.GetByID(ctx, reservation.ID)
}

// Update changes the notes of a pending or confirmed reservation
func (s *ReservationService) Update(ctx context.Context, actor Actor, id uint, input *UpdateReservationInput) (*models.Reservation, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	reservation, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if reservation.Status != domain.ReservationStatusPending && reservation.Status != domain.ReservationStatusConfirmed {
		return nil, domain.ErrReservationNotEditable
	}

	if input.Notes != nil {
		reservation.Notes = strings.TrimSpace(*input.Notes)
	}

	if err := s.reservationRepo.UpdateNotes(ctx, reservation); err != nil {
		return nil, err
	}

	return s.reservationRepo.GetByID(ctx, reservation.ID)
}

// load fetches a reservation the actor may access
func (s *ReservationService) load(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}

	if !reservation.IsOwnedBy(actor.UserID) && !actor.IsStaff() {
		return nil, domain.ErrReservationForbidden
	}
	return reservation, nil
}
