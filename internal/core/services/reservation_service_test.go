package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"transporteuni-api/internal/adapters/messaging"
	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/adapters/persistence/repositories"
	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/pkg/pagination"
	"transporteuni-api/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type bookingEnv struct {
	db           *gorm.DB
	catalog      *testutil.Catalog
	publisher    *recordingPublisher
	reservations *ReservationService
	payments     *PaymentService

	passenger Actor
	other     Actor
	operator  Actor
	admin     Actor
}

func newBookingEnv(t *testing.T) *bookingEnv {
	t.Helper()

	db := testutil.NewDB(t)
	publisher := &recordingPublisher{}
	notifier := NewNotificationService(publisher)

	reservationRepo := repositories.NewReservationRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	tripRepo := repositories.NewRouteInstanceRepository(db)

	actor := func(email string, role domain.Role) Actor {
		u := testutil.CreateUser(t, db, email, role)
		return Actor{UserID: u.ID, Role: u.Role}
	}

	return &bookingEnv{
		db:           db,
		catalog:      testutil.CreateCatalog(t, db),
		publisher:    publisher,
		reservations: NewReservationService(reservationRepo, tripRepo, paymentRepo, notifier, 2*time.Hour),
		payments:     NewPaymentService(paymentRepo, reservationRepo, notifier),
		passenger:    actor("test@test.com", domain.RolePassenger),
		other:        actor("other@test.com", domain.RolePassenger),
		operator:     actor("operator@test.com", domain.RoleOperator),
		admin:        actor("admin@test.com", domain.RoleAdmin),
	}
}

func (e *bookingEnv) book(t *testing.T, actor Actor, trip *models.RouteInstance) *models.Reservation {
	t.Helper()
	r, err := e.reservations.Create(context.Background(), actor, &CreateReservationInput{
		RouteInstanceID: trip.ID,
		PaymentMethod:   domain.PaymentMethodManual,
	})
	require.NoError(t, err)
	return r
}

func (e *bookingEnv) payAndApprove(t *testing.T, reservation *models.Reservation) *models.PaymentResponse {
	t.Helper()
	ctx := context.Background()

	payment, err := e.payments.Create(ctx, e.passenger, &CreatePaymentInput{
		ReservationID: reservation.ID,
		PaymentMethod: domain.PaymentMethodManual,
	})
	require.NoError(t, err)

	approved, err := e.payments.UpdateStatus(ctx, e.operator, payment.ID, &UpdatePaymentStatusInput{Status: domain.PaymentApproved})
	require.NoError(t, err)
	return approved
}

func TestReservationCreate_SnapshotsPriceAndPopulatesTrip(t *testing.T) {
	env := newBookingEnv(t)
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(8, 30), testutil.WithPrice(5100))

	r := env.book(t, env.passenger, trip)

	assert.Equal(t, domain.ReservationStatusPending, r.Status)
	assert.Equal(t, domain.PaymentStatusPending, r.PaymentStatus)
	assert.InDelta(t, 5100, r.TotalAmount, 0.001)
	require.NotNil(t, r.RouteInstance)
	require.NotNil(t, r.RouteInstance.Vehicle)
	require.NotNil(t, r.RouteInstance.Driver)
	require.NotNil(t, r.Passenger)
	assert.Equal(t, "test@test.com", r.Passenger.Email)
	assert.Equal(t, []string{messaging.ReservationCreated}, env.publisher.types())
}

func TestReservationCreate_DoesNotTouchSeatCounter(t *testing.T) {
	env := newBookingEnv(t)
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(8, 30), testutil.WithSeats(3))

	env.book(t, env.passenger, trip)

	var stored models.RouteInstance
	require.NoError(t, env.db.First(&stored, trip.ID).Error)
	assert.Equal(t, 3, stored.AvailableSeats)
}

func TestReservationCreate_Failures(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	cancelled := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(9, 0), testutil.WithStatus(domain.TripStatusCancelled))
	full := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(10, 0), testutil.WithSeats(0))

	tests := []struct {
		name  string
		input *CreateReservationInput
		want  error
	}{
		{"unknown trip", &CreateReservationInput{RouteInstanceID: 9999, PaymentMethod: "manual"}, domain.ErrTripNotFound},
		{"trip not scheduled", &CreateReservationInput{RouteInstanceID: cancelled.ID, PaymentMethod: "manual"}, domain.ErrTripNotScheduled},
		{"no seats", &CreateReservationInput{RouteInstanceID: full.ID, PaymentMethod: "cash"}, domain.ErrNoSeatsAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.reservations.Create(ctx, env.passenger, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("missing payment method", func(t *testing.T) {
		_, err := env.reservations.Create(ctx, env.passenger, &CreateReservationInput{RouteInstanceID: full.ID})
		de, ok := domain.AsError(err)
		require.True(t, ok)
		assert.Equal(t, domain.KindValidation, de.Kind)
		assert.Contains(t, de.Message, "paymentMethod")
	})
}

func TestReservationCreate_OneActivePerPassengerAndTrip(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(8, 30))

	first := env.book(t, env.passenger, trip)

	_, err := env.reservations.Create(ctx, env.passenger, &CreateReservationInput{RouteInstanceID: trip.ID, PaymentMethod: "cash"})
	require.ErrorIs(t, err, domain.ErrReservationExists)
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 409, de.Status)

	// another passenger is not affected
	env.book(t, env.other, trip)

	// after cancelling, the passenger may book again
	_, err = env.reservations.Cancel(ctx, env.passenger, first.ID)
	require.NoError(t, err)
	env.book(t, env.passenger, trip)
}

func TestReservationCreate_UniqueIndexBacksTheCheck(t *testing.T) {
	env := newBookingEnv(t)
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(8, 30))
	testutil.CreateReservation(t, env.db, &models.User{ID: env.passenger.UserID}, trip)

	// a racing insert that skipped the read check still hits the active key
	dup := &models.Reservation{
		RouteInstanceID: trip.ID,
		PassengerID:     env.passenger.UserID,
		TotalAmount:     trip.CurrentPrice,
		PaymentMethod:   domain.PaymentMethodCash,
	}
	err := repositories.NewReservationRepository(env.db).Create(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, repositories.IsDuplicateKey(err))
}

func TestReservationGetByID_Authorization(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(8, 30))
	r := env.book(t, env.passenger, trip)

	_, err := env.reservations.GetByID(ctx, env.other, r.ID)
	assert.ErrorIs(t, err, domain.ErrReservationForbidden)

	for _, actor := range []Actor{env.passenger, env.operator, env.admin} {
		detail, err := env.reservations.GetByID(ctx, actor, r.ID)
		require.NoError(t, err)
		assert.Equal(t, r.ID, detail.ID)
		assert.Nil(t, detail.Payment)
	}

	_, err = env.reservations.GetByID(ctx, env.admin, 9999)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestReservationGetByID_IncludesLatestPayment(t *testing.T) {
	env := newBookingEnv(t)
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(8, 30))
	r := env.book(t, env.passenger, trip)
	payment := env.payAndApprove(t, r)

	detail, err := env.reservations.GetByID(context.Background(), env.passenger, r.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Payment)
	assert.Equal(t, payment.ID, detail.Payment.ID)
	assert.Equal(t, domain.PaymentApproved, detail.Payment.Status)
}

func TestReservationCancel_TwoHourRuleAppliesToPassengersOnly(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	departure := time.Now().Add(90 * time.Minute).Truncate(time.Minute)
	trip := testutil.CreateTrip(t, env.db, env.catalog, departure)
	r := env.book(t, env.passenger, trip)

	_, err := env.reservations.Cancel(ctx, env.passenger, r.ID)
	require.ErrorIs(t, err, domain.ErrCancellationTooLate)

	cancelled, err := env.reservations.Cancel(ctx, env.operator, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusCancelled, cancelled.Status)
}

func TestReservationCancel_UsesInjectedClock(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	departure := testutil.Tomorrow(10, 0)
	trip := testutil.CreateTrip(t, env.db, env.catalog, departure)
	r := env.book(t, env.passenger, trip)

	env.reservations.now = func() time.Time { return departure.Add(-119 * time.Minute) }
	_, err := env.reservations.Cancel(ctx, env.passenger, r.ID)
	require.ErrorIs(t, err, domain.ErrCancellationTooLate)

	env.reservations.now = func() time.Time { return departure.Add(-2 * time.Hour) }
	_, err = env.reservations.Cancel(ctx, env.passenger, r.ID)
	require.ErrorIs(t, err, domain.ErrCancellationTooLate)

	env.reservations.now = func() time.Time { return departure.Add(-121 * time.Minute) }
	_, err = env.reservations.Cancel(ctx, env.passenger, r.ID)
	require.NoError(t, err)
}

// afterFirstReservationLoad runs fn once, right after the first query that
// reads the reservations table
func afterFirstReservationLoad(t *testing.T, db *gorm.DB, fn func()) {
	t.Helper()
	fired := false
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:after_reservation_load", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "reservations" {
			return
		}
		fired = true
		fn()
	}))
	t.Cleanup(func() {
		_ = db.Callback().Query().Remove("test:after_reservation_load")
	})
}

func TestReservationUpdate_KeepsApprovalCommittedAfterLoad(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(20, 0))
	r := env.book(t, env.passenger, trip)

	payment, err := env.payments.Create(ctx, env.passenger, &CreatePaymentInput{
		ReservationID: r.ID,
		PaymentMethod: domain.PaymentMethodManual,
	})
	require.NoError(t, err)

	var approveErr error
	afterFirstReservationLoad(t, env.db, func() {
		_, approveErr = env.payments.UpdateStatus(ctx, env.operator, payment.ID, &UpdatePaymentStatusInput{Status: domain.PaymentApproved})
	})

	notes := "aisle"
	_, err = env.reservations.Update(ctx, env.passenger, r.ID, &UpdateReservationInput{Notes: &notes})
	require.NoError(t, err)
	require.NoError(t, approveErr)

	var stored models.Reservation
	require.NoError(t, env.db.First(&stored, r.ID).Error)
	assert.Equal(t, "aisle", stored.Notes)
	assert.Equal(t, domain.ReservationStatusConfirmed, stored.Status)
	assert.Equal(t, domain.PaymentStatusPaid, stored.PaymentStatus)

	var storedPayment models.Payment
	require.NoError(t, env.db.First(&storedPayment, payment.ID).Error)
	assert.Equal(t, domain.PaymentApproved, storedPayment.Status)
}

func TestReservationCancel_CascadesApprovalCommittedAfterLoad(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(20, 0))
	r := env.book(t, env.passenger, trip)

	payment, err := env.payments.Create(ctx, env.passenger, &CreatePaymentInput{
		ReservationID: r.ID,
		PaymentMethod: domain.PaymentMethodManual,
	})
	require.NoError(t, err)

	var approveErr error
	afterFirstReservationLoad(t, env.db, func() {
		_, approveErr = env.payments.UpdateStatus(ctx, env.operator, payment.ID, &UpdatePaymentStatusInput{Status: domain.PaymentApproved})
	})

	cancelled, err := env.reservations.Cancel(ctx, env.operator, r.ID)
	require.NoError(t, err)
	require.NoError(t, approveErr)
	assert.Equal(t, domain.ReservationStatusCancelled, cancelled.Status)
	assert.Equal(t, domain.PaymentStatusPending, cancelled.PaymentStatus)

	var stored models.Reservation
	require.NoError(t, env.db.First(&stored, r.ID).Error)
	assert.Equal(t, domain.ReservationStatusCancelled, stored.Status)
	assert.Equal(t, domain.PaymentStatusPending, stored.PaymentStatus)
	assert.Nil(t, stored.ActiveKey)

	var storedPayment models.Payment
	require.NoError(t, env.db.First(&storedPayment, payment.ID).Error)
	assert.Equal(t, domain.PaymentCancelled, storedPayment.Status)
	assert.NotNil(t, storedPayment.ProcessedAt)
}

func TestReservationCancel_StateAndOwnership(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(20, 0))
	r := env.book(t, env.passenger, trip)

	_, err := env.reservations.Cancel(ctx, env.other, r.ID)
	require.ErrorIs(t, err, domain.ErrReservationForbidden)

	_, err = env.reservations.Cancel(ctx, env.passenger, r.ID)
	require.NoError(t, err)

	_, err = env.reservations.Cancel(ctx, env.passenger, r.ID)
	require.ErrorIs(t, err, domain.ErrReservationNotCancelable)

	require.NoError(t, env.db.Model(&models.Reservation{}).Where("id = ?", r.ID).
		Update("status", domain.ReservationStatusCompleted).Error)
	_, err = env.reservations.Cancel(ctx, env.admin, r.ID)
	require.ErrorIs(t, err, domain.ErrReservationNotCancelable)
}

func TestReservationCancel_PaidCascadesToPayment(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(20, 0))
	r := env.book(t, env.passenger, trip)
	payment := env.payAndApprove(t, r)

	cancelled, err := env.reservations.Cancel(ctx, env.passenger, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusCancelled, cancelled.Status)
	assert.Equal(t, domain.PaymentStatusPending, cancelled.PaymentStatus)

	var stored models.Payment
	require.NoError(t, env.db.First(&stored, payment.ID).Error)
	assert.Equal(t, domain.PaymentCancelled, stored.Status)

	var reloaded models.Reservation
	require.NoError(t, env.db.First(&reloaded, r.ID).Error)
	assert.Equal(t, domain.ReservationStatusCancelled, reloaded.Status)
	assert.Equal(t, domain.PaymentStatusPending, reloaded.PaymentStatus)

	assert.Contains(t, env.publisher.types(), messaging.ReservationCancelled)
}

func TestReservationUpdate_NotesOnlyWhileOpen(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	trip := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(20, 0))
	r := env.book(t, env.passenger, trip)

	notes := "  window seat please "
	updated, err := env.reservations.Update(ctx, env.passenger, r.ID, &UpdateReservationInput{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "window seat please", updated.Notes)

	_, err = env.reservations.Update(ctx, env.other, r.ID, &UpdateReservationInput{Notes: &notes})
	require.ErrorIs(t, err, domain.ErrReservationForbidden)

	_, err = env.reservations.Cancel(ctx, env.passenger, r.ID)
	require.NoError(t, err)
	_, err = env.reservations.Update(ctx, env.operator, r.ID, &UpdateReservationInput{Notes: &notes})
	require.ErrorIs(t, err, domain.ErrReservationNotEditable)
}

func TestReservationLists(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	tripA := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(8, 0))
	tripB := testutil.CreateTrip(t, env.db, env.catalog, testutil.Tomorrow(18, 0))

	env.book(t, env.passenger, tripA)
	second := env.book(t, env.passenger, tripB)
	env.book(t, env.other, tripA)
	_, err := env.reservations.Cancel(ctx, env.passenger, second.ID)
	require.NoError(t, err)

	mine, meta, err := env.reservations.ListMine(ctx, env.passenger, "", pagination.New(1, 10, 10))
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	assert.Equal(t, int64(2), meta.Total)

	mine, _, err = env.reservations.ListMine(ctx, env.passenger, domain.ReservationStatusCancelled, pagination.New(1, 10, 10))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, second.ID, mine[0].ID)

	all, meta, err := env.reservations.ListAll(ctx, &ListReservationsInput{Params: pagination.New(1, 2, 10)})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, int64(3), meta.Total)
	assert.Equal(t, 2, meta.TotalPages)

	byTrip, _, err := env.reservations.ListAll(ctx, &ListReservationsInput{RouteInstanceID: tripA.ID, Params: pagination.New(1, 10, 10)})
	require.NoError(t, err)
	assert.Len(t, byTrip, 2)
}
