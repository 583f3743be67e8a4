package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/adapters/persistence/repositories"
	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/pkg/pagination"
	"transporteuni-api/internal/pkg/validator"

	"gorm.io/gorm"
)

// CatalogService manages vehicles, scheduled routes and trip instances
type CatalogService struct {
	vehicleRepo *repositories.VehicleRepository
	routeRepo   *repositories.ScheduledRouteRepository
	tripRepo    *repositories.RouteInstanceRepository
	userRepo    repositories.UserRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	vehicleRepo *repositories.VehicleRepository,
	routeRepo *repositories.ScheduledRouteRepository,
	tripRepo *repositories.RouteInstanceRepository,
	userRepo repositories.UserRepository,
) *CatalogService {
	return &CatalogService{
		vehicleRepo: vehicleRepo,
		routeRepo:   routeRepo,
		tripRepo:    tripRepo,
		userRepo:    userRepo,
	}
}

// ============================================================
// Vehicles
// ============================================================

// VehicleInput represents create/update vehicle input. Pointers are optional on update.
type VehicleInput struct {
	LicensePlate *string  `json:"licensePlate" validate:"omitempty,plate"`
	Brand        *string  `json:"brand" validate:"omitempty,min=1,max=50"`
	Model        *string  `json:"model" validate:"omitempty,min=1,max=50"`
	Year         *int     `json:"year" validate:"omitempty,gte=1990"`
	Capacity     *int     `json:"capacity" validate:"omitempty,gte=1,lte=60"`
	Features     []string `json:"features" validate:"omitempty,dive,max=50"`
	DriverID     *uint    `json:"driverId"`
	IsActive     *bool    `json:"isActive"`
}

func (in *VehicleInput) normalize() {
	if in.LicensePlate != nil {
		plate := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(*in.LicensePlate), " ", ""))
		in.LicensePlate = &plate
	}
}

func (in *VehicleInput) validate(create bool) error {
	if create {
		var missing []string
		if in.LicensePlate == nil {
			missing = append(missing, "licensePlate is required")
		}
		if in.Brand == nil {
			missing = append(missing, "brand is required")
		}
		if in.Model == nil {
			missing = append(missing, "model is required")
		}
		if in.Year == nil {
			missing = append(missing, "year is required")
		}
		if in.Capacity == nil {
			missing = append(missing, "capacity is required")
		}
		if len(missing) > 0 {
			return domain.NewValidationError(strings.Join(missing, ", "))
		}
	}

	if err := validator.Struct(in); err != nil {
		return err
	}

	if in.Year != nil && *in.Year > time.Now().Year()+1 {
		return domain.NewValidationError("year cannot be later than next year")
	}
	return nil
}

// ListVehicles lists vehicles, optionally including inactive ones
func (s *CatalogService) ListVehicles(ctx context.Context, includeInactive bool) ([]*models.Vehicle, error) {
	return s.vehicleRepo.GetAll(ctx, !includeInactive)
}

// GetVehicle gets a vehicle by ID
func (s *CatalogService) GetVehicle(ctx context.Context, id uint) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVehicleNotFound
		}
		return nil, err
	}
	return vehicle, nil
}

// CreateVehicle registers a vehicle
func (s *CatalogService) CreateVehicle(ctx context.Context, input *VehicleInput) (*models.Vehicle, error) {
	input.normalize()
	if err := input.validate(true); err != nil {
		return nil, err
	}

	vehicle := &models.Vehicle{
		LicensePlate: *input.LicensePlate,
		Brand:        strings.TrimSpace(*input.Brand),
		VehicleModel: strings.TrimSpace(*input.Model),
		Year:         *input.Year,
		Capacity:     *input.Capacity,
		Features:     input.Features,
		IsActive:     true,
	}
	if vehicle.Features == nil {
		vehicle.Features = []string{}
	}
	if input.IsActive != nil {
		vehicle.IsActive = *input.IsActive
	}

	if input.DriverID != nil {
		if err := s.checkDriver(ctx, *input.DriverID); err != nil {
			return nil, err
		}
		vehicle.DriverID = input.DriverID
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	log.Printf("✅ Vehicle created: %s", vehicle.LicensePlate)
	return s.GetVehicle(ctx, vehicle.ID)
}

// UpdateVehicle applies the provided fields to a vehicle
func (s *CatalogService) UpdateVehicle(ctx context.Context, id uint, input *VehicleInput) (*models.Vehicle, error) {
	input.normalize()
	if err := input.validate(false); err != nil {
		return nil, err
	}

	vehicle, err := s.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.LicensePlate != nil {
		vehicle.LicensePlate = *input.LicensePlate
	}
	if input.Brand != nil {
		vehicle.Brand = strings.TrimSpace(*input.Brand)
	}
	if input.Model != nil {
		vehicle.VehicleModel = strings.TrimSpace(*input.Model)
	}
	if input.Year != nil {
		vehicle.Year = *input.Year
	}
	if input.Capacity != nil {
		vehicle.Capacity = *input.Capacity
	}
	if input.Features != nil {
		vehicle.Features = input.Features
	}
	if input.IsActive != nil {
		vehicle.IsActive = *input.IsActive
	}
	if input.DriverID != nil {
		if *input.DriverID == 0 {
			vehicle.DriverID = nil
		} else {
			if err := s.checkDriver(ctx, *input.DriverID); err != nil {
				return nil, err
			}
			vehicle.DriverID = input.DriverID
		}
	}

	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, err
	}

	return s.GetVehicle(ctx, vehicle.ID)
}

// DeactivateVehicle marks a vehicle inactive
func (s *CatalogService) DeactivateVehicle(ctx context.Context, id uint) (*models.Vehicle, error) {
	vehicle, err := s.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}

	vehicle.IsActive = false
	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, err
	}

	log.Printf("✅ Vehicle deactivated: %s", vehicle.LicensePlate)
	return vehicle, nil
}

// checkDriver ensures the user exists, is active and has role driver
func (s *CatalogService) checkDriver(ctx context.Context, driverID uint) error {
	driver, err := s.userRepo.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrDriverNotEligible
		}
		return err
	}
	if !driver.IsActive || driver.Role != string(domain.RoleDriver) {
		return domain.ErrDriverNotEligible
	}
	return nil
}

// ============================================================
// Scheduled routes
// ============================================================

// LocationInput represents a structured address
type LocationInput struct {
	Address   string   `json:"address" validate:"required,max=200"`
	City      string   `json:"city" validate:"required,max=100"`
	Province  string   `json:"province" validate:"required,max=100"`
	Country   string   `json:"country" validate:"omitempty,max=100"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

func (in LocationInput) toModel() models.Location {
	return models.Location{
		Address:   strings.TrimSpace(in.Address),
		City:      strings.TrimSpace(in.City),
		Province:  strings.TrimSpace(in.Province),
		Country:   strings.TrimSpace(in.Country),
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
}

// ScheduledRouteInput represents create scheduled route input
type ScheduledRouteInput struct {
	Name        string        `json:"name" validate:"required,max=100"`
	Origin      LocationInput `json:"origin" validate:"required"`
	Destination LocationInput `json:"destination" validate:"required"`
	Description string        `json:"description" validate:"max=500"`
	Duration    int           `json:"duration" validate:"required,gte=15,lte=1440"`
	BasePrice   *float64      `json:"basePrice" validate:"required,gte=0"`
}

// UpdateScheduledRouteInput represents update scheduled route input
type UpdateScheduledRouteInput struct {
	Name        *string        `json:"name" validate:"omitempty,min=1,max=100"`
	Origin      *LocationInput `json:"origin"`
	Destination *LocationInput `json:"destination"`
	Description *string        `json:"description" validate:"omitempty,max=500"`
	Duration    *int           `json:"duration" validate:"omitempty,gte=15,lte=1440"`
	BasePrice   *float64       `json:"basePrice" validate:"omitempty,gte=0"`
	IsActive    *bool          `json:"isActive"`
}

// ListScheduledRoutes lists route templates
func (s *CatalogService) ListScheduledRoutes(ctx context.Context, includeInactive bool) ([]*models.ScheduledRoute, error) {
	return s.routeRepo.GetAll(ctx, !includeInactive)
}

// GetScheduledRoute gets a route template by ID
func (s *CatalogService) GetScheduledRoute(ctx context.Context, id uint) (*models.ScheduledRoute, error) {
	route, err := s.routeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrScheduledRouteNotFound
		}
		return nil, err
	}
	return route, nil
}

// CreateScheduledRoute creates a route template
func (s *CatalogService) CreateScheduledRoute(ctx context.Context, input *ScheduledRouteInput) (*models.ScheduledRoute, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	route := &models.ScheduledRoute{
		Name:        strings.TrimSpace(input.Name),
		Origin:      input.Origin.toModel(),
		Destination: input.Destination.toModel(),
		Description: strings.TrimSpace(input.Description),
		Duration:    input.Duration,
		BasePrice:   *input.BasePrice,
		IsActive:    true,
	}

	if err := s.routeRepo.Create(ctx, route); err != nil {
		return nil, err
	}

	log.Printf("✅ Scheduled route created: %s (%s)", route.Name, route.FullRoute())
	return route, nil
}

// UpdateScheduledRoute applies the provided fields to a route template
func (s *CatalogService) UpdateScheduledRoute(ctx context.Context, id uint, input *UpdateScheduledRouteInput) (*models.ScheduledRoute, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	route, err := s.GetScheduledRoute(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		route.Name = strings.TrimSpace(*input.Name)
	}
	if input.Origin != nil {
		route.Origin = input.Origin.toModel()
	}
	if input.Destination != nil {
		route.Destination = input.Destination.toModel()
	}
	if input.Description != nil {
		route.Description = strings.TrimSpace(*input.Description)
	}
	if input.Duration != nil {
		route.Duration = *input.Duration
	}
	if input.BasePrice != nil {
		route.BasePrice = *input.BasePrice
	}
	if input.IsActive != nil {
		route.IsActive = *input.IsActive
	}

	if err := s.routeRepo.Update(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

// DeactivateScheduledRoute marks a route template inactive
func (s *CatalogService) DeactivateScheduledRoute(ctx context.Context, id uint) (*models.ScheduledRoute, error) {
	route, err := s.GetScheduledRoute(ctx, id)
	if err != nil {
		return nil, err
	}

	route.IsActive = false
	if err := s.routeRepo.Update(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

// ============================================================
// Trip instances
// ============================================================

// RouteInstanceInput represents create trip instance input
type RouteInstanceInput struct {
	ScheduledRouteID uint     `json:"scheduledRouteId" validate:"required"`
	VehicleID        uint     `json:"vehicleId" validate:"required"`
	DriverID         uint     `json:"driverId" validate:"required"`
	DepartureDate    string   `json:"departureDate" validate:"required"`
	DepartureTime    string   `json:"departureTime" validate:"required,hhmm"`
	ArrivalTime      string   `json:"arrivalTime" validate:"required,hhmm"`
	CurrentPrice     *float64 `json:"currentPrice" validate:"omitempty,gte=0"`
	AvailableSeats   *int     `json:"availableSeats" validate:"omitempty,gte=0"`
	Notes            string   `json:"notes" validate:"max=500"`
}

// UpdateRouteInstanceInput represents update trip instance input
type UpdateRouteInstanceInput struct {
	Status         *string  `json:"status" validate:"omitempty,oneof=scheduled in-progress completed cancelled"`
	CurrentPrice   *float64 `json:"currentPrice" validate:"omitempty,gte=0"`
	AvailableSeats *int     `json:"availableSeats" validate:"omitempty,gte=0"`
	Notes          *string  `json:"notes" validate:"omitempty,max=500"`
}

// ListRouteInstancesInput filters the operator trip listing
type ListRouteInstancesInput struct {
	Status           string
	ScheduledRouteID uint
	DriverID         uint
	From             *time.Time
	To               *time.Time
	Params           *pagination.Params
}

// ListRouteInstances lists trip instances, latest departure first
func (s *CatalogService) ListRouteInstances(ctx context.Context, input *ListRouteInstancesInput) ([]*models.RouteInstance, *pagination.Meta, error) {
	filter := repositories.TripFilter{
		Status:           input.Status,
		ScheduledRouteID: input.ScheduledRouteID,
		DriverID:         input.DriverID,
		From:             input.From,
		To:               input.To,
	}

	trips, total, err := s.tripRepo.List(ctx, filter,
		"route_instances.departure_date DESC, route_instances.departure_time DESC",
		input.Params.Offset, input.Params.Limit)
	if err != nil {
		return nil, nil, err
	}

	return trips, pagination.GetMeta(input.Params, total), nil
}

// GetRouteInstance gets a trip instance by ID
func (s *CatalogService) GetRouteInstance(ctx context.Context, id uint) (*models.RouteInstance, error) {
	trip, err := s.tripRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTripNotFound
		}
		return nil, err
	}
	return trip, nil
}

// CreateRouteInstance schedules a departure. Seats default to the vehicle
// capacity and the price to the route base price.
func (s *CatalogService) CreateRouteInstance(ctx context.Context, input *RouteInstanceInput) (*models.RouteInstance, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	departureDate, err := ParseDate(input.DepartureDate)
	if err != nil {
		return nil, err
	}

	route, err := s.GetScheduledRoute(ctx, input.ScheduledRouteID)
	if err != nil {
		return nil, err
	}
	if !route.IsActive {
		return nil, domain.NewValidationError("Scheduled route is inactive")
	}

	vehicle, err := s.GetVehicle(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}
	if !vehicle.IsActive {
		return nil, domain.NewValidationError("Vehicle is inactive")
	}

	if err := s.checkDriver(ctx, input.DriverID); err != nil {
		return nil, err
	}

	trip := &models.RouteInstance{
		ScheduledRouteID: route.ID,
		VehicleID:        vehicle.ID,
		DriverID:         input.DriverID,
		DepartureDate:    departureDate,
		DepartureTime:    input.DepartureTime,
		ArrivalTime:      input.ArrivalTime,
		CurrentPrice:     route.BasePrice,
		AvailableSeats:   vehicle.Capacity,
		Status:           domain.TripStatusScheduled,
		Notes:            strings.TrimSpace(input.Notes),
	}
	if input.CurrentPrice != nil {
		trip.CurrentPrice = *input.CurrentPrice
	}
	if input.AvailableSeats != nil {
		if *input.AvailableSeats > vehicle.Capacity {
			return nil, domain.NewValidationError("availableSeats cannot exceed the vehicle capacity")
		}
		trip.AvailableSeats = *input.AvailableSeats
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	log.Printf("✅ Trip scheduled: %s on %s %s", route.FullRoute(), input.DepartureDate, input.DepartureTime)
	return s.GetRouteInstance(ctx, trip.ID)
}

// UpdateRouteInstance changes status, price, seats or notes of a trip
func (s *CatalogService) UpdateRouteInstance(ctx context.Context, id uint, input *UpdateRouteInstanceInput) (*models.RouteInstance, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	trip, err := s.GetRouteInstance(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		trip.Status = *input.Status
	}
	if input.CurrentPrice != nil {
		trip.CurrentPrice = *input.CurrentPrice
	}
	if input.AvailableSeats != nil {
		if trip.Vehicle != nil && *input.AvailableSeats > trip.Vehicle.Capacity {
			return nil, domain.NewValidationError("availableSeats cannot exceed the vehicle capacity")
		}
		trip.AvailableSeats = *input.AvailableSeats
	}
	if input.Notes != nil {
		trip.Notes = strings.TrimSpace(*input.Notes)
	}

	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}
