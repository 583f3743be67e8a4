package repositories

import (
	"context"

	"transporteuni-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ============================================================
// Vehicle Repository
// ============================================================

// VehicleRepository handles vehicle data access
type VehicleRepository struct {
	db *gorm.DB
}

// NewVehicleRepository creates a new vehicle repository
func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// GetAll gets all vehicles, optionally only active ones
func (r *VehicleRepository) GetAll(ctx context.Context, activeOnly bool) ([]*models.Vehicle, error) {
	var vehicles []*models.Vehicle
	query := r.db.WithContext(ctx).Preload("Driver")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("license_plate ASC").Find(&vehicles).Error
	return vehicles, err
}

// GetByID gets a vehicle by ID
func (r *VehicleRepository) GetByID(ctx context.Context, id uint) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).Preload("Driver").First(&vehicle, id).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// Create creates a new vehicle
func (r *VehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(vehicle).Error
}

// Update saves every column of a vehicle
func (r *VehicleRepository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(vehicle).Error
}

// ============================================================
// Scheduled Route Repository
// ============================================================

// ScheduledRouteRepository handles route template data access
type ScheduledRouteRepository struct {
	db *gorm.DB
}

// NewScheduledRouteRepository creates a new scheduled route repository
func NewScheduledRouteRepository(db *gorm.DB) *ScheduledRouteRepository {
	return &ScheduledRouteRepository{db: db}
}

// GetAll gets all scheduled routes, optionally only active ones
func (r *ScheduledRouteRepository) GetAll(ctx context.Context, activeOnly bool) ([]*models.ScheduledRoute, error) {
	var routes []*models.ScheduledRoute
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("name ASC").Find(&routes).Error
	return routes, err
}

// GetByID gets a scheduled route by ID
func (r *ScheduledRouteRepository) GetByID(ctx context.Context, id uint) (*models.ScheduledRoute, error) {
	var route models.ScheduledRoute
	err := r.db.WithContext(ctx).First(&route, id).Error
	if err != nil {
		return nil, err
	}
	return &route, nil
}

// Create creates a new scheduled route
func (r *ScheduledRouteRepository) Create(ctx context.Context, route *models.ScheduledRoute) error {
	return r.db.WithContext(ctx).Create(route).Error
}

// Update saves every column of a scheduled route
func (r *ScheduledRouteRepository) Update(ctx context.Context, route *models.ScheduledRoute) error {
	return r.db.WithContext(ctx).Save(route).Error
}
