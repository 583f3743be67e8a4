package repositories

import (
	"context"
	"strings"
	"time"

	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TripFilter narrows trip instance queries. Zero values are ignored.
type TripFilter struct {
	Status           string
	ScheduledRouteID uint
	DriverID         uint
	Origin           string
	Destination      string
	From             *time.Time // inclusive departure date
	To               *time.Time // exclusive departure date
	MinPrice         *float64
	MaxPrice         *float64
	MinSeats         int
}

// PopularRoute is one row of the popular routes aggregation
type PopularRoute struct {
	ScheduledRouteID uint    `json:"scheduledRouteId"`
	RouteName        string  `json:"routeName"`
	Origin           string  `json:"origin"`
	Destination      string  `json:"destination"`
	TotalTrips       int64   `json:"totalTrips"`
	TotalPassengers  int64   `json:"totalPassengers"`
	AveragePrice     float64 `json:"averagePrice"`
	LastTrip         string  `json:"lastTrip"`
}

// RouteInstanceRepository handles trip instance data access
type RouteInstanceRepository struct {
	db *gorm.DB
}

// NewRouteInstanceRepository creates a new route instance repository
func NewRouteInstanceRepository(db *gorm.DB) *RouteInstanceRepository {
	return &RouteInstanceRepository{db: db}
}

// Create creates a new trip instance
func (r *RouteInstanceRepository) Create(ctx context.Context, trip *models.RouteInstance) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(trip).Error
}

// Update saves every column of a trip instance
func (r *RouteInstanceRepository) Update(ctx context.Context, trip *models.RouteInstance) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(trip).Error
}

// GetByID gets a trip instance with route, vehicle and driver
func (r *RouteInstanceRepository) GetByID(ctx context.Context, id uint) (*models.RouteInstance, error) {
	var trip models.RouteInstance
	err := r.db.WithContext(ctx).
		Preload("ScheduledRoute").
		Preload("Vehicle").
		Preload("Driver").
		First(&trip, id).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func tripFilterScope(f TripFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Joins("JOIN scheduled_routes ON scheduled_routes.id = route_instances.scheduled_route_id")

		if f.Status != "" {
			db = db.Where("route_instances.status = ?", f.Status)
		}
		if f.ScheduledRouteID != 0 {
			db = db.Where("route_instances.scheduled_route_id = ?", f.ScheduledRouteID)
		}
		if f.DriverID != 0 {
			db = db.Where("route_instances.driver_id = ?", f.DriverID)
		}
		if f.Origin != "" {
			db = db.Where("LOWER(scheduled_routes.origin_city) LIKE ?", "%"+strings.ToLower(f.Origin)+"%")
		}
		if f.Destination != "" {
			db = db.Where("LOWER(scheduled_routes.destination_city) LIKE ?", "%"+strings.ToLower(f.Destination)+"%")
		}
		if f.From != nil {
			db = db.Where("route_instances.departure_date >= ?", *f.From)
		}
		if f.To != nil {
			db = db.Where("route_instances.departure_date < ?", *f.To)
		}
		if f.MinPrice != nil {
			db = db.Where("route_instances.current_price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			db = db.Where("route_instances.current_price <= ?", *f.MaxPrice)
		}
		if f.MinSeats > 0 {
			db = db.Where("route_instances.available_seats >= ?", f.MinSeats)
		}
		return db
	}
}

// List returns trip instances matching the filter in the given order
func (r *RouteInstanceRepository) List(ctx context.Context, filter TripFilter, order string, offset, limit int) ([]*models.RouteInstance, int64, error) {
	var trips []*models.RouteInstance
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.RouteInstance{}).Scopes(tripFilterScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Select("route_instances.*").
		Scopes(tripFilterScope(filter)).
		Preload("ScheduledRoute").
		Preload("Vehicle").
		Preload("Driver").
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&trips).Error
	if err != nil {
		return nil, 0, err
	}

	return trips, total, nil
}

// Popular aggregates completed or running trips since the given date per scheduled route
func (r *RouteInstanceRepository) Popular(ctx context.Context, since time.Time, limit int) ([]*PopularRoute, error) {
	var rows []*PopularRoute
	err := r.db.WithContext(ctx).
		Table("route_instances").
		Select(`scheduled_routes.id AS scheduled_route_id,
			scheduled_routes.name AS route_name,
			scheduled_routes.origin_city AS origin,
			scheduled_routes.destination_city AS destination,
			COUNT(route_instances.id) AS total_trips,
			COALESCE(SUM(vehicles.capacity - route_instances.available_seats), 0) AS total_passengers,
			COALESCE(AVG(route_instances.current_price), 0) AS average_price,
			MAX(route_instances.departure_date) AS last_trip`).
		Joins("JOIN scheduled_routes ON scheduled_routes.id = route_instances.scheduled_route_id").
		Joins("JOIN vehicles ON vehicles.id = route_instances.vehicle_id").
		Where("route_instances.departure_date >= ?", since).
		Where("route_instances.status IN ?", []string{domain.TripStatusCompleted, domain.TripStatusInProgress}).
		Group("scheduled_routes.id, scheduled_routes.name, scheduled_routes.origin_city, scheduled_routes.destination_city").
		Order("total_trips DESC, total_passengers DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
