// Package testutil builds in-memory databases and fixtures for tests
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/config"
	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/pkg/password"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the plain password of every fixture user
const Password = "secret123"

var dbSeq atomic.Int64

func init() {
	password.Cost = bcrypt.MinCost
}

// NewDB opens a migrated in-memory SQLite database private to the test
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// Config returns a dev configuration with fixed secrets
func Config() *config.Config {
	return &config.Config{
		AppMode: "dev",
		Version: "test",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  60,
			RefreshTokenDays: 30,
		},
		Cookie:  config.CookieConfig{SameSite: "Lax"},
		Redis:   config.RedisConfig{TTL: time.Minute},
		Booking: config.BookingConfig{CancellationWindow: 2 * time.Hour},
		Seed:    config.SeedConfig{CompanyName: "TransporteUNI S.A."},
	}
}

// CreateUser stores an active user with the fixture password
func CreateUser(t *testing.T, db *gorm.DB, email string, role domain.Role) *models.User {
	t.Helper()

	hashed, err := password.Hash(Password)
	require.NoError(t, err)

	user := &models.User{
		Email:       email,
		Password:    hashed,
		FirstName:   "Test",
		LastName:    "User",
		PhoneNumber: "+54 11 5555-1234",
		Role:        string(role),
		IsActive:    true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Deactivate marks a user inactive
func Deactivate(t *testing.T, db *gorm.DB, user *models.User) {
	t.Helper()
	require.NoError(t, db.Model(user).Update("is_active", false).Error)
	user.IsActive = false
}

// Catalog is a driver, a vehicle and a route template ready for trips
type Catalog struct {
	Driver  *models.User
	Vehicle *models.Vehicle
	Route   *models.ScheduledRoute
}

// CreateCatalog stores a driver with an assigned 20 seat vehicle and a Buenos Aires to Rosario route
func CreateCatalog(t *testing.T, db *gorm.DB) *Catalog {
	t.Helper()

	driver := CreateUser(t, db, fmt.Sprintf("driver%d@transporteuni.com", dbSeq.Add(1)), domain.RoleDriver)

	vehicle := &models.Vehicle{
		LicensePlate: fmt.Sprintf("AB%03dCD", dbSeq.Add(1)%1000),
		Brand:        "Mercedes-Benz",
		VehicleModel: "Sprinter 516",
		Year:         2020,
		Capacity:     20,
		Features:     []string{"WiFi"},
		IsActive:     true,
		DriverID:     &driver.ID,
	}
	require.NoError(t, db.Create(vehicle).Error)

	route := &models.ScheduledRoute{
		Name:        "Buenos Aires - Rosario",
		Origin:      models.Location{Address: "Retiro", City: "Buenos Aires", Province: "Buenos Aires"},
		Destination: models.Location{Address: "Terminal Mariano Moreno", City: "Rosario", Province: "Santa Fe"},
		Duration:    240,
		BasePrice:   4200,
		IsActive:    true,
	}
	require.NoError(t, db.Create(route).Error)

	return &Catalog{Driver: driver, Vehicle: vehicle, Route: route}
}

// TripOption customizes CreateTrip
type TripOption func(*models.RouteInstance)

// WithStatus sets the trip status
func WithStatus(status string) TripOption {
	return func(ri *models.RouteInstance) { ri.Status = status }
}

// WithSeats sets the available seats
func WithSeats(seats int) TripOption {
	return func(ri *models.RouteInstance) { ri.AvailableSeats = seats }
}

// WithPrice sets the current price
func WithPrice(price float64) TripOption {
	return func(ri *models.RouteInstance) { ri.CurrentPrice = price }
}

// CreateTrip stores a trip departing at departure (local time)
func CreateTrip(t *testing.T, db *gorm.DB, c *Catalog, departure time.Time, opts ...TripOption) *models.RouteInstance {
	t.Helper()

	departure = departure.In(time.Local)
	trip := &models.RouteInstance{
		ScheduledRouteID: c.Route.ID,
		VehicleID:        c.Vehicle.ID,
		DriverID:         c.Driver.ID,
		DepartureDate:    departure,
		DepartureTime:    departure.Format("15:04"),
		ArrivalTime:      departure.Add(4 * time.Hour).Format("15:04"),
		CurrentPrice:     4500,
		AvailableSeats:   c.Vehicle.Capacity,
		Status:           domain.TripStatusScheduled,
	}
	for _, opt := range opts {
		opt(trip)
	}
	require.NoError(t, db.Create(trip).Error)
	return trip
}

// CreateReservation stores a pending reservation for passenger on trip
func CreateReservation(t *testing.T, db *gorm.DB, passenger *models.User, trip *models.RouteInstance) *models.Reservation {
	t.Helper()

	reservation := &models.Reservation{
		RouteInstanceID: trip.ID,
		PassengerID:     passenger.ID,
		TotalAmount:     trip.CurrentPrice,
		PaymentMethod:   domain.PaymentMethodManual,
	}
	require.NoError(t, db.Omit("RouteInstance", "Passenger").Create(reservation).Error)
	return reservation
}

// Tomorrow returns tomorrow at hh:mm local time
func Tomorrow(hour, minute int) time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, time.Local)
}
