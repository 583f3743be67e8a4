package repositories

import (
	"context"
	"time"

	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentFilter narrows payment history queries. Zero values are ignored.
type PaymentFilter struct {
	Status        string
	PaymentMethod string
	DateFrom      *time.Time
	DateTo        *time.Time
}

// PaymentStatistics aggregates payments by status and method
type PaymentStatistics struct {
	TotalPayments     int64   `json:"totalPayments"`
	TotalAmount       float64 `json:"totalAmount"`
	ApprovedAmount    float64 `json:"approvedAmount"`
	ApprovedPayments  int64   `json:"approvedPayments"`
	PendingPayments   int64   `json:"pendingPayments"`
	RejectedPayments  int64   `json:"rejectedPayments"`
	CancelledPayments int64   `json:"cancelledPayments"`
	CashPayments      int64   `json:"cashPayments"`
	ManualPayments    int64   `json:"manualPayments"`
}

// PaymentRepository handles payment data access
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create creates a new payment. Model hooks validate the amount and sync the reservation.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(payment).Error
	})
}

// Update saves a payment and its reservation cascade in one transaction
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Save(payment).Error
	})
}

// GetByID gets a payment with its reservation and processor
func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Reservation").
		Preload("ProcessedBy").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByReservationID lists payments of a reservation, newest first
func (r *PaymentRepository) GetByReservationID(ctx context.Context, reservationID uint) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Preload("ProcessedBy").
		Where("reservation_id = ?", reservationID).
		Order("created_at DESC, id DESC").
		Find(&payments).Error
	return payments, err
}

// GetLatestByReservationID returns the newest payment of a reservation or nil
func (r *PaymentRepository) GetLatestByReservationID(ctx context.Context, reservationID uint) (*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Preload("ProcessedBy").
		Where("reservation_id = ?", reservationID).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&payments).Error
	if err != nil || len(payments) == 0 {
		return nil, err
	}
	return payments[0], nil
}

// ExistsActive checks for a pending or approved payment on a reservation
func (r *PaymentRepository) ExistsActive(ctx context.Context, reservationID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("reservation_id = ?", reservationID).
		Where("status IN ?", []string{domain.PaymentPending, domain.PaymentApproved}).
		Count(&count).Error
	return count > 0, err
}

func paymentFilterScope(f PaymentFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Status != "" {
			db = db.Where("payments.status = ?", f.Status)
		}
		if f.PaymentMethod != "" {
			db = db.Where("payments.payment_method = ?", f.PaymentMethod)
		}
		if f.DateFrom != nil {
			db = db.Where("payments.created_at >= ?", *f.DateFrom)
		}
		if f.DateTo != nil {
			db = db.Where("payments.created_at <= ?", *f.DateTo)
		}
		return db
	}
}

// List lists payments with pagination, newest first
func (r *PaymentRepository) List(ctx context.Context, filter PaymentFilter, offset, limit int) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Payment{}).Scopes(paymentFilterScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Scopes(paymentFilterScope(filter)).
		Preload("Reservation").
		Preload("Reservation.Passenger").
		Preload("Reservation.RouteInstance").
		Preload("Reservation.RouteInstance.ScheduledRoute").
		Preload("ProcessedBy").
		Order("payments.created_at DESC, payments.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

// Statistics aggregates payment counts and sums for the filter's date range
func (r *PaymentRepository) Statistics(ctx context.Context, filter PaymentFilter) (*PaymentStatistics, error) {
	stats := &PaymentStatistics{}
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Scopes(paymentFilterScope(filter)).
		Select(`COUNT(*) AS total_payments,
			COALESCE(SUM(amount), 0) AS total_amount,
			COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS approved_amount,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS approved_payments,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending_payments,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS rejected_payments,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS cancelled_payments,
			COALESCE(SUM(CASE WHEN payment_method = ? THEN 1 ELSE 0 END), 0) AS cash_payments,
			COALESCE(SUM(CASE WHEN payment_method = ? THEN 1 ELSE 0 END), 0) AS manual_payments`,
			domain.PaymentApproved,
			domain.PaymentApproved,
			domain.PaymentPending,
			domain.PaymentRejected,
			domain.PaymentCancelled,
			domain.PaymentMethodCash,
			domain.PaymentMethodManual,
		).
		Scan(stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
