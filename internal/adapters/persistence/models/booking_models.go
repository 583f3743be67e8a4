package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"transporteuni-api/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Reservations
// ============================================================

// Reservation represents reservations table
type Reservation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	RouteInstanceID uint      `gorm:"not null;index" json:"routeInstanceId"`
	PassengerID     uint      `gorm:"not null;index" json:"passengerId"`
	ActiveKey       *string   `gorm:"size:50;uniqueIndex" json:"-"`
	SeatNumber      *int      `json:"seatNumber,omitempty"`
	Status          string    `gorm:"size:20;default:'pending';index" json:"status"`
	TotalAmount     float64   `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	PaymentStatus   string    `gorm:"size:20;default:'pending';index" json:"paymentStatus"`
	PaymentMethod   string    `gorm:"size:10;not null" json:"paymentMethod"`
	SpecialRequests string    `gorm:"size:500" json:"specialRequests,omitempty"`
	PickupLocation  string    `gorm:"size:200" json:"pickupLocation,omitempty"`
	DropoffLocation string    `gorm:"size:200" json:"dropoffLocation,omitempty"`
	Notes           string    `gorm:"size:500" json:"notes,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relations
	RouteInstance *RouteInstance `gorm:"foreignKey:RouteInstanceID" json:"routeInstance,omitempty"`
	Passenger     *User          `gorm:"foreignKey:PassengerID" json:"passenger,omitempty"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// BeforeSave maintains ActiveKey: unique per (passenger, trip) while the
// reservation is not cancelled, NULL once cancelled.
func (r *Reservation) BeforeSave(tx *gorm.DB) error {
	if r.Status == "" {
		r.Status = domain.ReservationStatusPending
	}
	if r.PaymentStatus == "" {
		r.PaymentStatus = domain.PaymentStatusPending
	}

	if r.Status == domain.ReservationStatusCancelled {
		r.ActiveKey = nil
		return nil
	}
	key := ReservationActiveKey(r.PassengerID, r.RouteInstanceID)
	r.ActiveKey = &key
	return nil
}

// ReservationActiveKey builds the uniqueness key for a live reservation
func ReservationActiveKey(passengerID, routeInstanceID uint) string {
	return fmt.Sprintf("%d:%d", passengerID, routeInstanceID)
}

// IsOwnedBy reports whether userID is the passenger
func (r *Reservation) IsOwnedBy(userID uint) bool {
	return r.PassengerID == userID
}

// ============================================================
// Payments
// ============================================================

// Payment represents payments table
type Payment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ReservationID uint       `gorm:"uniqueIndex;not null" json:"reservationId"`
	PaymentMethod string     `gorm:"size:10;not null" json:"paymentMethod"`
	Amount        float64    `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency      string     `gorm:"size:3;default:'ARS'" json:"currency"`
	Status        string     `gorm:"size:20;default:'pending';index" json:"status"`
	Notes         string     `gorm:"size:500" json:"notes,omitempty"`
	ProcessedByID *uint      `gorm:"column:processed_by" json:"processedById,omitempty"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relations
	Reservation *Reservation `gorm:"foreignKey:ReservationID" json:"reservation,omitempty"`
	ProcessedBy *User        `gorm:"foreignKey:ProcessedByID" json:"processedBy,omitempty"`

	loadedStatus string
}

func (Payment) TableName() string {
	return "payments"
}

// AfterFind remembers the stored status so BeforeSave can detect transitions
func (p *Payment) AfterFind(tx *gorm.DB) error {
	p.loadedStatus = p.Status
	return nil
}

// BeforeSave re-validates the amount against the reservation total and
// stamps processedAt when the status moves to a final state.
func (p *Payment) BeforeSave(tx *gorm.DB) error {
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = domain.DefaultCurrency
	}
	if p.Status == "" {
		p.Status = domain.PaymentPending
	}

	var reservation Reservation
	err := tx.Select("id", "total_amount").First(&reservation, p.ReservationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrReservationNotFound
		}
		return err
	}
	if !SameAmount(p.Amount, reservation.TotalAmount) {
		return domain.ErrPaymentAmountMismatch
	}

	if p.Status != p.loadedStatus && p.Status != domain.PaymentPending {
		now := time.Now()
		p.ProcessedAt = &now
	}
	return nil
}

// AfterSave propagates the payment status to the owning reservation
func (p *Payment) AfterSave(tx *gorm.DB) error {
	updates := map[string]interface{}{
		"payment_status": domain.PaymentStatusPending,
	}
	if p.Status == domain.PaymentApproved {
		updates["payment_status"] = domain.PaymentStatusPaid
		updates["status"] = domain.ReservationStatusConfirmed
	}

	if err := tx.Model(&Reservation{}).Where("id = ?", p.ReservationID).UpdateColumns(updates).Error; err != nil {
		return err
	}

	p.loadedStatus = p.Status
	return nil
}

// SameAmount compares money values to the cent
func SameAmount(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

// StatusLabel returns the customer facing label for a payment status
func StatusLabel(status string) string {
	switch status {
	case domain.PaymentPending:
		return "Pendiente"
	case domain.PaymentApproved:
		return "Aprobado"
	case domain.PaymentRejected:
		return "Rechazado"
	case domain.PaymentCancelled:
		return "Cancelado"
	default:
		return status
	}
}

// MethodLabel returns the customer facing label for a payment method
func MethodLabel(method string) string {
	switch method {
	case domain.PaymentMethodCash:
		return "Efectivo"
	case domain.PaymentMethodManual:
		return "Manual"
	default:
		return method
	}
}

// PaymentResponse DTO
type PaymentResponse struct {
	*Payment
	StatusFormatted        string `json:"statusFormatted"`
	PaymentMethodFormatted string `json:"paymentMethodFormatted"`
}

func (p *Payment) ToResponse() *PaymentResponse {
	return &PaymentResponse{
		Payment:                p,
		StatusFormatted:        StatusLabel(p.Status),
		PaymentMethodFormatted: MethodLabel(p.PaymentMethod),
	}
}
