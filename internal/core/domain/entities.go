package domain

// Role represents user role in the system
type Role string

const (
	RolePassenger Role = "passenger"
	RoleDriver    Role = "driver"
	RoleOperator  Role = "operator"
	RoleAdmin     Role = "admin"
)

// Roles lists every valid role
var Roles = []Role{RolePassenger, RoleDriver, RoleOperator, RoleAdmin}

// IsValidRole reports whether r names a known role
func IsValidRole(r string) bool {
	for _, role := range Roles {
		if string(role) == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role may act on any passenger's reservations and payments
func IsStaff(r string) bool {
	return r == string(RoleAdmin) || r == string(RoleOperator)
}

// Trip (route instance) status
const (
	TripStatusScheduled  = "scheduled"
	TripStatusInProgress = "in-progress"
	TripStatusCompleted  = "completed"
	TripStatusCancelled  = "cancelled"
)

// TripStatuses lists every valid trip status
var TripStatuses = []string{TripStatusScheduled, TripStatusInProgress, TripStatusCompleted, TripStatusCancelled}

// Reservation status
const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusCompleted = "completed"
)

// Reservation payment status
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Payment methods
const (
	PaymentMethodCash   = "cash"
	PaymentMethodManual = "manual"
)

// IsValidPaymentMethod reports whether m is cash or manual
func IsValidPaymentMethod(m string) bool {
	return m == PaymentMethodCash || m == PaymentMethodManual
}

// Payment status
const (
	PaymentPending   = "pending"
	PaymentApproved  = "approved"
	PaymentRejected  = "rejected"
	PaymentCancelled = "cancelled"
)

// DefaultCurrency is applied to every new payment
const DefaultCurrency = "ARS"
