package repositories

import (
	"context"
	"errors"
	"time"

	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReservationFilter narrows reservation listings. Zero values are ignored.
type ReservationFilter struct {
	Status          string
	PaymentStatus   string
	RouteInstanceID uint
	PassengerID     uint
	StartDate       *time.Time // createdAt >= StartDate
	EndDate         *time.Time // createdAt <= EndDate
}

// ReservationRepository handles reservation data access
type ReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func withTripDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("RouteInstance").
		Preload("RouteInstance.ScheduledRoute").
		Preload("RouteInstance.Vehicle").
		Preload("RouteInstance.Driver").
		Preload("Passenger")
}

// Create creates a new reservation
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(reservation).Error
}

// UpdateNotes writes only the notes column
func (r *ReservationRepository) UpdateNotes(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).
		Model(&models.Reservation{ID: reservation.ID}).
		Updates(map[string]interface{}{"notes": reservation.Notes}).Error
}

// GetByID gets a reservation with trip, vehicle, driver and passenger
func (r *ReservationRepository) GetByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).Scopes(withTripDetails).First(&reservation, id).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ExistsActive checks for a non-cancelled reservation by passenger on a trip
func (r *ReservationRepository) ExistsActive(ctx context.Context, passengerID, routeInstanceID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("passenger_id = ? AND route_instance_id = ?", passengerID, routeInstanceID).
		Where("status <> ?", domain.ReservationStatusCancelled).
		Count(&count).Error
	return count > 0, err
}

func reservationFilterScope(f ReservationFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.PaymentStatus != "" {
			db = db.Where("payment_status = ?", f.PaymentStatus)
		}
		if f.RouteInstanceID != 0 {
			db = db.Where("route_instance_id = ?", f.RouteInstanceID)
		}
		if f.PassengerID != 0 {
			db = db.Where("passenger_id = ?", f.PassengerID)
		}
		if f.StartDate != nil {
			db = db.Where("created_at >= ?", *f.StartDate)
		}
		if f.EndDate != nil {
			db = db.Where("created_at <= ?", *f.EndDate)
		}
		return db
	}
}

// List lists reservations with pagination, newest first
func (r *ReservationRepository) List(ctx context.Context, filter ReservationFilter, offset, limit int) ([]*models.Reservation, int64, error) {
	var reservations []*models.Reservation
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Reservation{}).Scopes(reservationFilterScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Scopes(reservationFilterScope(filter), withTripDetails).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&reservations).Error
	if err != nil {
		return nil, 0, err
	}

	return reservations, total, nil
}

// Cancel marks the reservation cancelled. When it is paid, the approved
// payment is cancelled too and the reservation goes back to payment pending.
// The payment state is re-read under lock inside the transaction, so an
// approval committed after the caller loaded the reservation is cascaded too.
func (r *ReservationRepository) Cancel(ctx context.Context, reservation *models.Reservation) (*models.Payment, error) {
	var cancelledPayment *models.Payment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Reservation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "status", "payment_status").
			First(&current, reservation.ID).Error
		if err != nil {
			return err
		}
		if current.Status == domain.ReservationStatusCancelled || current.Status == domain.ReservationStatusCompleted {
			return domain.ErrReservationNotCancelable
		}

		columns := map[string]interface{}{
			"status":     domain.ReservationStatusCancelled,
			"active_key": nil,
		}

		if current.PaymentStatus == domain.PaymentStatusPaid {
			var payment models.Payment
			err := tx.Where("reservation_id = ? AND status = ?", reservation.ID, domain.PaymentApproved).First(&payment).Error
			switch {
			case err == nil:
				// the cascade is the one path allowed to move an approved payment
				now := time.Now()
				if err := tx.Model(&models.Payment{}).
					Where("id = ?", payment.ID).
					UpdateColumns(map[string]interface{}{
						"status":       domain.PaymentCancelled,
						"processed_at": now,
						"updated_at":   now,
					}).Error; err != nil {
					return err
				}
				payment.Status = domain.PaymentCancelled
				payment.ProcessedAt = &now
				cancelledPayment = &payment
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
			columns["payment_status"] = domain.PaymentStatusPending
		}

		if err := tx.Model(&models.Reservation{ID: reservation.ID}).Updates(columns).Error; err != nil {
			return err
		}

		reservation.Status = domain.ReservationStatusCancelled
		reservation.ActiveKey = nil
		if current.PaymentStatus == domain.PaymentStatusPaid {
			reservation.PaymentStatus = domain.PaymentStatusPending
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelledPayment, nil
}

// Recent returns the latest reservations across all passengers
func (r *ReservationRepository) Recent(ctx context.Context, limit int) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	err := r.db.WithContext(ctx).
		Scopes(withTripDetails).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&reservations).Error
	return reservations, err
}
