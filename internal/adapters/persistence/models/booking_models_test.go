package models_test

import (
	"testing"
	"time"

	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationActiveKey(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.CreateCatalog(t, db)
	passenger := testutil.CreateUser(t, db, "test@test.com", domain.RolePassenger)
	trip := testutil.CreateTrip(t, db, c, testutil.Tomorrow(8, 0))

	r := testutil.CreateReservation(t, db, passenger, trip)
	require.NotNil(t, r.ActiveKey)
	assert.Equal(t, models.ReservationActiveKey(passenger.ID, trip.ID), *r.ActiveKey)
	assert.Equal(t, domain.ReservationStatusPending, r.Status)
	assert.Equal(t, domain.PaymentStatusPending, r.PaymentStatus)

	dup := &models.Reservation{RouteInstanceID: trip.ID, PassengerID: passenger.ID, TotalAmount: 1, PaymentMethod: "cash"}
	assert.Error(t, db.Create(dup).Error)

	r.Status = domain.ReservationStatusCancelled
	require.NoError(t, db.Omit("RouteInstance", "Passenger").Save(r).Error)
	assert.Nil(t, r.ActiveKey)

	// a cancelled reservation frees the key
	again := testutil.CreateReservation(t, db, passenger, trip)
	assert.NotEqual(t, r.ID, again.ID)
}

func TestPaymentHooks(t *testing.T) {
	db := testutil.NewDB(t)
	c := testutil.CreateCatalog(t, db)
	passenger := testutil.CreateUser(t, db, "test@test.com", domain.RolePassenger)
	trip := testutil.CreateTrip(t, db, c, testutil.Tomorrow(8, 0), testutil.WithPrice(4500))
	r := testutil.CreateReservation(t, db, passenger, trip)

	t.Run("amount must equal the reservation total", func(t *testing.T) {
		p := &models.Payment{ReservationID: r.ID, PaymentMethod: "cash", Amount: 4000}
		assert.ErrorIs(t, db.Create(p).Error, domain.ErrPaymentAmountMismatch)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		p := &models.Payment{ReservationID: 9999, PaymentMethod: "cash", Amount: 4500}
		assert.ErrorIs(t, db.Create(p).Error, domain.ErrReservationNotFound)
	})

	p := &models.Payment{ReservationID: r.ID, PaymentMethod: "manual", Amount: 4500.001, Currency: " ars "}
	require.NoError(t, db.Create(p).Error)
	assert.Equal(t, "ARS", p.Currency)
	assert.Equal(t, domain.PaymentPending, p.Status)
	assert.Nil(t, p.ProcessedAt)

	var loaded models.Payment
	require.NoError(t, db.First(&loaded, p.ID).Error)
	loaded.Status = domain.PaymentApproved
	require.NoError(t, db.Omit("Reservation", "ProcessedBy").Save(&loaded).Error)
	require.NotNil(t, loaded.ProcessedAt)
	assert.WithinDuration(t, time.Now(), *loaded.ProcessedAt, time.Minute)

	var reservation models.Reservation
	require.NoError(t, db.First(&reservation, r.ID).Error)
	assert.Equal(t, domain.ReservationStatusConfirmed, reservation.Status)
	assert.Equal(t, domain.PaymentStatusPaid, reservation.PaymentStatus)

	// a later save without a status change keeps processedAt
	stamped := *loaded.ProcessedAt
	loaded.Notes = "receipt checked"
	require.NoError(t, db.Omit("Reservation", "ProcessedBy").Save(&loaded).Error)
	assert.Equal(t, stamped, *loaded.ProcessedAt)
}

func TestPaymentLabels(t *testing.T) {
	assert.Equal(t, "Pendiente", models.StatusLabel(domain.PaymentPending))
	assert.Equal(t, "Rechazado", models.StatusLabel(domain.PaymentRejected))
	assert.Equal(t, "Cancelado", models.StatusLabel(domain.PaymentCancelled))
	assert.Equal(t, "unknown", models.StatusLabel("unknown"))
	assert.Equal(t, "Manual", models.MethodLabel(domain.PaymentMethodManual))
	assert.True(t, models.SameAmount(10.001, 10))
	assert.False(t, models.SameAmount(10.01, 10))
}

func TestRouteInstanceDeparture(t *testing.T) {
	ri := &models.RouteInstance{
		DepartureDate: time.Date(2026, 10, 17, 15, 45, 0, 0, time.Local),
		DepartureTime: "08:30",
	}
	assert.Equal(t, time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC), ri.DepartureAt(time.UTC))

	h, m := models.ParseHHMM("22:05")
	assert.Equal(t, 22, h)
	assert.Equal(t, 5, m)

	h, m = models.ParseHHMM("bogus")
	assert.Zero(t, h)
	assert.Zero(t, m)

	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.Local), models.DateOnly(ri.DepartureDate))
}
