package services

import (
	"context"
	"testing"

	"transporteuni-api/internal/adapters/messaging"
	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/pkg/pagination"
	"transporteuni-api/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentCreate_PendingForFullTotal(t *testing.T) {
	env := newBookingEnv(t)
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(8, 30), testutil.WithPrice(4200))
	r := env.book(t, env.passenger, trip)

	payment, err := env.payments.Create(context.Background(), env.passenger, &CreatePaymentInput{
		ReservationID: r.ID,
		PaymentMethod: domain.PaymentMethodCash,
		Notes:         " at the terminal ",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentPending, payment.Status)
	assert.InDelta(t, 4200, payment.Amount, 0.001)
	assert.Equal(t, "ARS", payment.Currency)
	assert.Equal(t, "at the terminal", payment.Notes)
	assert.Nil(t, payment.ProcessedByID)
	assert.Nil(t, payment.ProcessedAt)
	assert.Equal(t, "Pendiente", payment.StatusFormatted)
	assert.Equal(t, "Efectivo", payment.PaymentMethodFormatted)
	assert.Contains(t, env.publisher.types(), messaging.PaymentCreated)

	var stored models.Reservation
	require.NoError(t, env.db.First(&stored, r.ID).Error)
	assert.Equal(t, domain.ReservationStatusPending, stored.Status)
	assert.Equal(t, domain.PaymentStatusPending, stored.PaymentStatus)
}

func TestPaymentCreate_StaffIsRecordedAsProcessor(t *testing.T) {
	env := newBookingEnv(t)
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(8, 30))
	r := env.book(t, env.passenger, trip)

	payment, err := env.payments.Create(context.Background(), env.operator, &CreatePaymentInput{
		ReservationID: r.ID,
		PaymentMethod: domain.PaymentMethodManual,
	})
	require.NoError(t, err)
	require.NotNil(t, payment.ProcessedByID)
	assert.Equal(t, env.operator.UserID, *payment.ProcessedByID)
	assert.Equal(t, domain.PaymentPending, payment.Status)
}

func TestPaymentCreate_Failures(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(20, 0))

	t.Run("unknown reservation", func(t *testing.T) {
		_, err := env.payments.Create(ctx, env.passenger, &CreatePaymentInput{ReservationID: 9999, PaymentMethod: "cash"})
		assert.ErrorIs(t, err, domain.ErrReservationNotFound)
	})

	t.Run("someone else's reservation", func(t *testing.T) {
		r := env.book(t, env.other, trip)
		_, err := env.payments.Create(ctx, env.passenger, &CreatePaymentInput{ReservationID: r.ID, PaymentMethod: "cash"})
		assert.ErrorIs(t, err, domain.ErrReservationForbidden)
	})

	t.Run("second active payment", func(t *testing.T) {
		r := env.book(t, env.passenger, trip)
		_, err := env.payments.Create(ctx, env.passenger, &CreatePaymentInput{ReservationID: r.ID, PaymentMethod: "cash"})
		require.NoError(t, err)

		_, err = env.payments.Create(ctx, env.passenger, &CreatePaymentInput{ReservationID: r.ID, PaymentMethod: "manual"})
		require.ErrorIs(t, err, domain.ErrPaymentExists)
		de, _ := domain.AsError(err)
		assert.Equal(t, 400, de.Status)
	})

	t.Run("already paid", func(t *testing.T) {
		other := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(21, 0))
		r := env.book(t, env.passenger, other)
		env.payAndApprove(t, r)

		_, err := env.payments.Create(ctx, env.passenger, &CreatePaymentInput{ReservationID: r.ID, PaymentMethod: "cash"})
		assert.ErrorIs(t, err, domain.ErrReservationAlreadyPaid)
	})

	t.Run("cancelled reservation", func(t *testing.T) {
		other := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(22, 0))
		r := env.book(t, env.passenger, other)
		_, err := env.reservations.Cancel(ctx, env.passenger, r.ID)
		require.NoError(t, err)

		_, err = env.payments.Create(ctx, env.passenger, &CreatePaymentInput{ReservationID: r.ID, PaymentMethod: "cash"})
		assert.ErrorIs(t, err, domain.ErrReservationCancelled)
	})

	t.Run("invalid method", func(t *testing.T) {
		r := env.book(t, env.other, testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(23, 0)))
		_, err := env.payments.Create(ctx, env.other, &CreatePaymentInput{ReservationID: r.ID, PaymentMethod: "card"})
		de, ok := domain.AsError(err)
		require.True(t, ok)
		assert.Equal(t, domain.KindValidation, de.Kind)
	})
}

func TestPaymentCreate_RetryAfterRejectionHitsUniqueReservation(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(8, 30))
	r := env.book(t, env.passenger, trip)

	payment, err := env.payments.Create(ctx, env.passenger, &CreatePaymentInput{ReservationID: r.ID, PaymentMethod: "manual"})
	require.NoError(t, err)
	_, err = env.payments.UpdateStatus(ctx, env.operator, payment.ID, &UpdatePaymentStatusInput{Status: domain.PaymentRejected})
	require.NoError(t, err)

	_, err = env.payments.Create(ctx, env.passenger, &CreatePaymentInput{ReservationID: r.ID, PaymentMethod: "manual"})
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindDuplicateKey, de.Kind)
	assert.Equal(t, 409, de.Status)
}

func TestPaymentUpdateStatus_ApprovalConfirmsReservation(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(8, 30))
	r := env.book(t, env.passenger, trip)

	approved := env.payAndApprove(t, r)
	assert.Equal(t, domain.PaymentApproved, approved.Status)
	assert.Equal(t, "Aprobado", approved.StatusFormatted)
	require.NotNil(t, approved.ProcessedAt)
	require.NotNil(t, approved.ProcessedByID)
	assert.Equal(t, env.operator.UserID, *approved.ProcessedByID)

	detail, err := env.reservations.GetByID(ctx, env.passenger, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusConfirmed, detail.Status)
	assert.Equal(t, domain.PaymentStatusPaid, detail.PaymentStatus)

	_, err = env.payments.UpdateStatus(ctx, env.admin, approved.ID, &UpdatePaymentStatusInput{Status: domain.PaymentCancelled})
	assert.ErrorIs(t, err, domain.ErrPaymentNotPending)

	assert.Contains(t, env.publisher.types(), messaging.PaymentStatusChanged)
}

func TestPaymentUpdateStatus_RejectionKeepsReservationPending(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(8, 30))
	r := env.book(t, env.passenger, trip)

	payment, err := env.payments.Create(ctx, env.passenger, &CreatePaymentInput{ReservationID: r.ID, PaymentMethod: "manual"})
	require.NoError(t, err)

	rejected, err := env.payments.UpdateStatus(ctx, env.operator, payment.ID, &UpdatePaymentStatusInput{
		Status: domain.PaymentRejected,
		Notes:  "transfer not received",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRejected, rejected.Status)
	assert.Equal(t, "transfer not received", rejected.Notes)
	assert.NotNil(t, rejected.ProcessedAt)

	var stored models.Reservation
	require.NoError(t, env.db.First(&stored, r.ID).Error)
	assert.Equal(t, domain.ReservationStatusPending, stored.Status)
	assert.Equal(t, domain.PaymentStatusPending, stored.PaymentStatus)
}

func TestPaymentUpdateStatus_Failures(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	_, err := env.payments.UpdateStatus(ctx, env.operator, 9999, &UpdatePaymentStatusInput{Status: domain.PaymentApproved})
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)

	_, err = env.payments.UpdateStatus(ctx, env.operator, 1, &UpdatePaymentStatusInput{Status: domain.PaymentPending})
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindValidation, de.Kind)
}

func TestPaymentListByReservation(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(8, 30))
	r := env.book(t, env.passenger, trip)
	env.payAndApprove(t, r)

	payments, err := env.payments.ListByReservation(ctx, env.passenger, r.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, domain.PaymentApproved, payments[0].Status)

	_, err = env.payments.ListByReservation(ctx, env.other, r.ID)
	assert.ErrorIs(t, err, domain.ErrReservationForbidden)

	_, err = env.payments.ListByReservation(ctx, env.admin, 9999)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestPaymentHistoryAndStatistics(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	approvedTrip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(8, 0), testutil.WithPrice(3000))
	pendingTrip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(12, 0), testutil.WithPrice(1500))

	env.payAndApprove(t, env.book(t, env.passenger, approvedTrip))

	pending := env.book(t, env.passenger, pendingTrip)
	_, err := env.payments.Create(ctx, env.passenger, &CreatePaymentInput{ReservationID: pending.ID, PaymentMethod: "cash"})
	require.NoError(t, err)

	history, meta, err := env.payments.History(ctx, &PaymentHistoryInput{Params: pagination.New(1, 10, 10)})
	require.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, int64(2), meta.Total)

	history, _, err = env.payments.History(ctx, &PaymentHistoryInput{Status: domain.PaymentApproved, Params: pagination.New(1, 10, 10)})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.InDelta(t, 3000, history[0].Amount, 0.001)

	stats, err := env.payments.Statistics(ctx, &PaymentHistoryInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalPayments)
	assert.InDelta(t, 4500, stats.TotalAmount, 0.001)
	assert.InDelta(t, 3000, stats.ApprovedAmount, 0.001)
	assert.Equal(t, int64(1), stats.ApprovedPayments)
	assert.Equal(t, int64(1), stats.PendingPayments)
	assert.Equal(t, int64(1), stats.CashPayments)
	assert.Equal(t, int64(1), stats.ManualPayments)
}
