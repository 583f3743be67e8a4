package services

import (
	"context"
	"log"
	"time"

	"transporteuni-api/internal/adapters/messaging"
	"transporteuni-api/internal/adapters/persistence/models"
)

// NotificationService publishes booking events. Failures are logged, never returned.
type NotificationService struct {
	publisher messaging.Publisher
}

// NewNotificationService creates a new notification service
func NewNotificationService(publisher messaging.Publisher) *NotificationService {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &NotificationService{publisher: publisher}
}

// ReservationEvent is the payload of reservation events
type ReservationEvent struct {
	ReservationID   uint    `json:"reservationId"`
	RouteInstanceID uint    `json:"routeInstanceId"`
	PassengerID     uint    `json:"passengerId"`
	Status          string  `json:"status"`
	PaymentStatus   string  `json:"paymentStatus"`
	TotalAmount     float64 `json:"totalAmount"`
	ActorID         uint    `json:"actorId"`
}

// PaymentEvent is the payload of payment events
type PaymentEvent struct {
	PaymentID      uint    `json:"paymentId"`
	ReservationID  uint    `json:"reservationId"`
	Status         string  `json:"status"`
	PreviousStatus string  `json:"previousStatus,omitempty"`
	PaymentMethod  string  `json:"paymentMethod"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	ActorID        uint    `json:"actorId"`
}

func (s *NotificationService) publish(ctx context.Context, eventType string, payload interface{}) {
	// The request may finish before the broker answers
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, messaging.NewEvent(eventType, payload)); err != nil {
		log.Printf("⚠️ Failed to publish %s: %v", eventType, err)
	}
}

func reservationEvent(r *models.Reservation, actorID uint) ReservationEvent {
	return ReservationEvent{
		ReservationID:   r.ID,
		RouteInstanceID: r.RouteInstanceID,
		PassengerID:     r.PassengerID,
		Status:          r.Status,
		PaymentStatus:   r.PaymentStatus,
		TotalAmount:     r.TotalAmount,
		ActorID:         actorID,
	}
}

// NotifyReservationCreated publishes reservation.created
func (s *NotificationService) NotifyReservationCreated(ctx context.Context, r *models.Reservation) {
	s.publish(ctx, messaging.ReservationCreated, reservationEvent(r, r.PassengerID))
}

// NotifyReservationCancelled publishes reservation.cancelled
func (s *NotificationService) NotifyReservationCancelled(ctx context.Context, r *models.Reservation, actorID uint) {
	s.publish(ctx, messaging.ReservationCancelled, reservationEvent(r, actorID))
}

// NotifyPaymentCreated publishes payment.created
func (s *NotificationService) NotifyPaymentCreated(ctx context.Context, p *models.Payment, actorID uint) {
	s.publish(ctx, messaging.PaymentCreated, PaymentEvent{
		PaymentID:     p.ID,
		ReservationID: p.ReservationID,
		Status:        p.Status,
		PaymentMethod: p.PaymentMethod,
		Amount:        p.Amount,
		Currency:      p.Currency,
		ActorID:       actorID,
	})
}

// NotifyPaymentStatusChanged publishes payment.status_changed
func (s *NotificationService) NotifyPaymentStatusChanged(ctx context.Context, p *models.Payment, previous string, actorID uint) {
	s.publish(ctx, messaging.PaymentStatusChanged, PaymentEvent{
		PaymentID:      p.ID,
		ReservationID:  p.ReservationID,
		Status:         p.Status,
		PreviousStatus: previous,
		PaymentMethod:  p.PaymentMethod,
		Amount:         p.Amount,
		Currency:       p.Currency,
		ActorID:        actorID,
	})
}
