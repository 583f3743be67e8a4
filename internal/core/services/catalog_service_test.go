package services

import (
	"context"
	"testing"

	"transporteuni-api/internal/adapters/persistence/repositories"
	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/pkg/pagination"
	"transporteuni-api/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCatalogService(t *testing.T) (*CatalogService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc := NewCatalogService(
		repositories.NewVehicleRepository(db),
		repositories.NewScheduledRouteRepository(db),
		repositories.NewRouteInstanceRepository(db),
		repositories.NewUserRepository(db),
	)
	return svc, db
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func uintPtr(u uint) *uint    { return &u }
func boolPtr(b bool) *bool    { return &b }

func floatPtr(f float64) *float64 { return &f }

func vehicleInput(plate string) *VehicleInput {
	return &VehicleInput{
		LicensePlate: strPtr(plate),
		Brand:        strPtr("Iveco"),
		Model:        strPtr("Daily Minibus"),
		Year:         intPtr(2019),
		Capacity:     intPtr(15),
		Features:     []string{"GPS"},
	}
}

func TestCatalogCreateVehicle(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()

	vehicle, err := svc.CreateVehicle(ctx, vehicleInput(" ef 456gh "))
	require.NoError(t, err)
	assert.Equal(t, "EF456GH", vehicle.LicensePlate)
	assert.True(t, vehicle.IsActive)
	assert.Equal(t, []string{"GPS"}, vehicle.Features)

	_, err = svc.CreateVehicle(ctx, &VehicleInput{Brand: strPtr("Iveco")})
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Contains(t, de.Message, "licensePlate is required")

	_, err = svc.CreateVehicle(ctx, vehicleInput("EF456GH"))
	require.Error(t, err)
	assert.True(t, repositories.IsDuplicateKey(err))

	passenger := testutil.CreateUser(t, db, "test@test.com", domain.RolePassenger)
	input := vehicleInput("IJ789KL")
	input.DriverID = uintPtr(passenger.ID)
	_, err = svc.CreateVehicle(ctx, input)
	assert.ErrorIs(t, err, domain.ErrDriverNotEligible)
}

func TestCatalogVehicleDriverAssignment(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()
	driver := testutil.CreateUser(t, db, "driver@test.com", domain.RoleDriver)

	first := vehicleInput("AB123CD")
	first.DriverID = uintPtr(driver.ID)
	assigned, err := svc.CreateVehicle(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, assigned.Driver)
	assert.Equal(t, driver.ID, assigned.Driver.ID)

	second := vehicleInput("EF456GH")
	second.DriverID = uintPtr(driver.ID)
	_, err = svc.CreateVehicle(ctx, second)
	assert.ErrorIs(t, err, domain.ErrDriverAlreadyAssigned)

	// an inactive vehicle does not hold the driver
	_, err = svc.DeactivateVehicle(ctx, assigned.ID)
	require.NoError(t, err)
	_, err = svc.CreateVehicle(ctx, second)
	require.NoError(t, err)

	// unassign with driverId 0
	updated, err := svc.UpdateVehicle(ctx, assigned.ID, &VehicleInput{DriverID: uintPtr(0), Capacity: intPtr(22)})
	require.NoError(t, err)
	assert.Nil(t, updated.DriverID)
	assert.Equal(t, 22, updated.Capacity)

	active, err := svc.ListVehicles(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.ListVehicles(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.GetVehicle(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrVehicleNotFound)
}

func routeInput() *ScheduledRouteInput {
	return &ScheduledRouteInput{
		Name:        "Buenos Aires - Córdoba",
		Origin:      LocationInput{Address: "Retiro", City: "Buenos Aires", Province: "Buenos Aires"},
		Destination: LocationInput{Address: "Terminal de Ómnibus", City: "Córdoba", Province: "Córdoba"},
		Duration:    480,
		BasePrice:   floatPtr(7500),
	}
}

func TestCatalogScheduledRoutes(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	route, err := svc.CreateScheduledRoute(ctx, routeInput())
	require.NoError(t, err)
	assert.Equal(t, "Argentina", route.Origin.Country)
	assert.Equal(t, "Buenos Aires - Córdoba", route.FullRoute())

	same := routeInput()
	same.Destination = LocationInput{Address: "retiro", City: "BUENOS AIRES", Province: "Buenos Aires"}
	_, err = svc.CreateScheduledRoute(ctx, same)
	assert.ErrorIs(t, err, domain.ErrSameOriginDestination)

	short := routeInput()
	short.Duration = 5
	_, err = svc.CreateScheduledRoute(ctx, short)
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindValidation, de.Kind)

	updated, err := svc.UpdateScheduledRoute(ctx, route.ID, &UpdateScheduledRouteInput{BasePrice: floatPtr(8000), Name: strPtr(" BA - Córdoba ")})
	require.NoError(t, err)
	assert.InDelta(t, 8000, updated.BasePrice, 0.001)
	assert.Equal(t, "BA - Córdoba", updated.Name)

	_, err = svc.DeactivateScheduledRoute(ctx, route.ID)
	require.NoError(t, err)
	active, err := svc.ListScheduledRoutes(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = svc.GetScheduledRoute(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrScheduledRouteNotFound)
}

func TestCatalogCreateRouteInstance(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()
	c := testutil.CreateCatalog(t, db)
	date := testutil.Tomorrow(0, 0).Format(DateLayout)

	input := &RouteInstanceInput{
		ScheduledRouteID: c.Route.ID,
		VehicleID:        c.Vehicle.ID,
		DriverID:         c.Driver.ID,
		DepartureDate:    date,
		DepartureTime:    "08:30",
		ArrivalTime:      "12:30",
	}

	trip, err := svc.CreateRouteInstance(ctx, input)
	require.NoError(t, err)
	assert.InDelta(t, 4200, trip.CurrentPrice, 0.001)
	assert.Equal(t, 20, trip.AvailableSeats)
	assert.Equal(t, domain.TripStatusScheduled, trip.Status)
	require.NotNil(t, trip.ScheduledRoute)
	require.NotNil(t, trip.Vehicle)
	require.NotNil(t, trip.Driver)

	t.Run("explicit price and seats", func(t *testing.T) {
		custom := *input
		custom.CurrentPrice = floatPtr(3900)
		custom.AvailableSeats = intPtr(12)
		trip, err := svc.CreateRouteInstance(ctx, &custom)
		require.NoError(t, err)
		assert.InDelta(t, 3900, trip.CurrentPrice, 0.001)
		assert.Equal(t, 12, trip.AvailableSeats)
	})

	t.Run("seats above capacity", func(t *testing.T) {
		custom := *input
		custom.AvailableSeats = intPtr(21)
		_, err := svc.CreateRouteInstance(ctx, &custom)
		de, ok := domain.AsError(err)
		require.True(t, ok)
		assert.Equal(t, domain.KindValidation, de.Kind)
	})

	t.Run("bad date and time", func(t *testing.T) {
		custom := *input
		custom.DepartureDate = "17/10/2026"
		_, err := svc.CreateRouteInstance(ctx, &custom)
		assert.ErrorIs(t, err, domain.ErrInvalidDateFormat)

		custom = *input
		custom.DepartureTime = "25:00"
		_, err = svc.CreateRouteInstance(ctx, &custom)
		de, ok := domain.AsError(err)
		require.True(t, ok)
		assert.Contains(t, de.Message, "HH:MM")
	})

	t.Run("driver must have role driver", func(t *testing.T) {
		operator := testutil.CreateUser(t, db, "operator@test.com", domain.RoleOperator)
		custom := *input
		custom.DriverID = operator.ID
		_, err := svc.CreateRouteInstance(ctx, &custom)
		assert.ErrorIs(t, err, domain.ErrDriverNotEligible)
	})

	t.Run("unknown route and vehicle", func(t *testing.T) {
		custom := *input
		custom.ScheduledRouteID = 9999
		_, err := svc.CreateRouteInstance(ctx, &custom)
		assert.ErrorIs(t, err, domain.ErrScheduledRouteNotFound)

		custom = *input
		custom.VehicleID = 9999
		_, err = svc.CreateRouteInstance(ctx, &custom)
		assert.ErrorIs(t, err, domain.ErrVehicleNotFound)
	})
}

func TestCatalogUpdateAndListRouteInstances(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()
	c := testutil.CreateCatalog(t, db)

	early := testutil.CreateTrip(t, db, c, testutil.Tomorrow(7, 0))
	late := testutil.CreateTrip(t, db, c, testutil.Tomorrow(19, 0))

	updated, err := svc.UpdateRouteInstance(ctx, early.ID, &UpdateRouteInstanceInput{
		Status:         strPtr(domain.TripStatusCancelled),
		AvailableSeats: intPtr(4),
		Notes:          strPtr(" road closed "),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TripStatusCancelled, updated.Status)
	assert.Equal(t, 4, updated.AvailableSeats)
	assert.Equal(t, "road closed", updated.Notes)

	_, err = svc.UpdateRouteInstance(ctx, early.ID, &UpdateRouteInstanceInput{Status: strPtr("delayed")})
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindValidation, de.Kind)

	_, err = svc.UpdateRouteInstance(ctx, early.ID, &UpdateRouteInstanceInput{AvailableSeats: intPtr(50)})
	require.Error(t, err)

	trips, meta, err := svc.ListRouteInstances(ctx, &ListRouteInstancesInput{Params: pagination.New(1, 10, 10)})
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, int64(2), meta.Total)
	assert.Equal(t, late.ID, trips[0].ID, "latest departure first")

	trips, _, err = svc.ListRouteInstances(ctx, &ListRouteInstancesInput{Status: domain.TripStatusScheduled, Params: pagination.New(1, 10, 10)})
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, late.ID, trips[0].ID)

	trips, _, err = svc.ListRouteInstances(ctx, &ListRouteInstancesInput{DriverID: c.Driver.ID, Params: pagination.New(1, 10, 10)})
	require.NoError(t, err)
	assert.Len(t, trips, 2)

	_, err = svc.GetRouteInstance(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrTripNotFound)
}

func TestCatalogUpdateVehicleValidation(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	vehicle, err := svc.CreateVehicle(ctx, vehicleInput("AB123CD"))
	require.NoError(t, err)

	_, err = svc.UpdateVehicle(ctx, vehicle.ID, &VehicleInput{Year: intPtr(1980)})
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindValidation, de.Kind)

	_, err = svc.UpdateVehicle(ctx, vehicle.ID, &VehicleInput{Year: intPtr(3000)})
	de, ok = domain.AsError(err)
	require.True(t, ok)
	assert.Contains(t, de.Message, "next year")

	updated, err := svc.UpdateVehicle(ctx, vehicle.ID, &VehicleInput{IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}
