package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP error handler
type Kind string

const (
	KindValidation    Kind = "validation"
	KindCast          Kind = "cast"
	KindDuplicateKey  Kind = "duplicate_key"
	KindAuth          Kind = "auth"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindStateConflict Kind = "state_conflict"
	KindInternal      Kind = "internal"
)

// Error is the typed error returned by services and mapped to the response envelope
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind and message, so copies made by Wrap match their sentinel
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// Wrap returns a copy of e carrying cause
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Status: e.Status, Message: e.Message, Err: cause}
}

func newError(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

// NewValidationError creates a 400 validation error
func NewValidationError(message string) *Error {
	return newError(KindValidation, http.StatusBadRequest, message)
}

// NewCastError creates a 400 error for a malformed identifier
func NewCastError(field string) *Error {
	return newError(KindCast, http.StatusBadRequest, fmt.Sprintf("Invalid %s", field))
}

// NewDuplicateKeyError creates a 409 error naming the duplicated field
func NewDuplicateKeyError(field string) *Error {
	return newError(KindDuplicateKey, http.StatusConflict, fmt.Sprintf("%s already exists", field))
}

// NewAuthError creates a 401 error
func NewAuthError(message string) *Error {
	return newError(KindAuth, http.StatusUnauthorized, message)
}

// NewAuthorizationError creates a 403 error
func NewAuthorizationError(message string) *Error {
	return newError(KindAuthorization, http.StatusForbidden, message)
}

// NewNotFoundError creates a 404 error
func NewNotFoundError(message string) *Error {
	return newError(KindNotFound, http.StatusNotFound, message)
}

// NewStateConflictError creates a business rule error with an explicit status (400 or 409)
func NewStateConflictError(status int, message string) *Error {
	return newError(KindStateConflict, status, message)
}

// NewInternalError creates a 500 error
func NewInternalError(message string, cause error) *Error {
	e := newError(KindInternal, http.StatusInternalServerError, message)
	e.Err = cause
	return e
}

// AsError extracts a domain error from err
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Common errors
var (
	ErrInvalidBody       = NewValidationError("Invalid request body")
	ErrInvalidID         = NewCastError("id")
	ErrUnauthorized      = NewAuthError("Access token required")
	ErrTokenExpired      = NewAuthError("Token expired")
	ErrTokenMalformed    = NewAuthError("Malformed token")
	ErrForbidden         = NewAuthorizationError("You don't have permission to access this resource")
	ErrRouteNotFound     = NewNotFoundError("Route not found")
	ErrInternal          = NewInternalError("Internal server error", nil)
	ErrInvalidAPIKey     = NewAuthorizationError("Invalid API key")
	ErrMissingAPIKey     = NewAuthError("API key required")
	ErrInvalidDateFormat = NewValidationError("Invalid date format, expected YYYY-MM-DD")
)

// User errors
var (
	ErrUserNotFound         = NewNotFoundError("User not found")
	ErrUserAlreadyExists    = NewStateConflictError(http.StatusConflict, "A user with this email already exists")
	ErrInvalidCredentials   = NewAuthError("Invalid credentials")
	ErrUserInactive         = NewAuthError("User account is inactive")
	ErrWrongPassword        = NewValidationError("Current password is incorrect")
	ErrCannotDeactivateSelf = NewStateConflictError(http.StatusBadRequest, "You cannot deactivate your own account")
	ErrCannotChangeOwnRole  = NewStateConflictError(http.StatusBadRequest, "You cannot change your own role")
	ErrInvalidRefreshToken  = NewAuthError("Invalid refresh token")
	ErrRefreshTokenExpired  = NewAuthError("Refresh token expired, please login again")
	ErrRefreshTokenRevoked  = NewAuthError("Refresh token revoked, please login again")
)

// Catalog errors
var (
	ErrVehicleNotFound        = NewNotFoundError("Vehicle not found")
	ErrScheduledRouteNotFound = NewNotFoundError("Scheduled route not found")
	ErrDriverNotEligible      = NewValidationError("Assigned driver must be an active user with role driver")
	ErrDriverAlreadyAssigned  = NewStateConflictError(http.StatusConflict, "Driver is already assigned to another active vehicle")
	ErrSameOriginDestination  = NewValidationError("Origin and destination must be different")
)

// Trip errors
var (
	ErrTripNotFound     = NewNotFoundError("Trip not found")
	ErrTripNotScheduled = NewStateConflictError(http.StatusBadRequest, "Trip is not available for booking")
	ErrNoSeatsAvailable = NewStateConflictError(http.StatusBadRequest, "No seats available on this trip")
)

// Reservation errors
var (
	ErrReservationNotFound      = NewNotFoundError("Reservation not found")
	ErrReservationExists        = NewStateConflictError(http.StatusConflict, "You already have an active reservation for this trip")
	ErrReservationForbidden     = NewAuthorizationError("You don't have permission to access this reservation")
	ErrReservationNotCancelable = NewStateConflictError(http.StatusBadRequest, "Reservation is already cancelled or completed")
	ErrCancellationTooLate      = NewStateConflictError(http.StatusBadRequest, "Reservations cannot be cancelled less than 2 hours before departure")
	ErrReservationNotEditable   = NewStateConflictError(http.StatusBadRequest, "Only pending or confirmed reservations can be updated")
)

// Payment errors
var (
	ErrPaymentNotFound        = NewNotFoundError("Payment not found")
	ErrReservationAlreadyPaid = NewStateConflictError(http.StatusBadRequest, "Reservation is already paid")
	ErrReservationCancelled   = NewStateConflictError(http.StatusBadRequest, "Cannot pay a cancelled reservation")
	ErrPaymentExists          = NewStateConflictError(http.StatusBadRequest, "A pending or approved payment already exists for this reservation")
	ErrPaymentNotPending      = NewStateConflictError(http.StatusBadRequest, "Only pending payments can be updated")
	ErrPaymentAmountMismatch  = NewValidationError("Payment amount must equal the reservation total")
)

// Company config errors
var (
	ErrCompanyConfigNotFound = NewNotFoundError("Company configuration not found")
)
