package models

import (
	"strings"
	"time"

	"transporteuni-api/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Catalog: vehicles & scheduled routes
// ============================================================

// Vehicle represents vehicles table
type Vehicle struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	LicensePlate string    `gorm:"size:10;uniqueIndex;not null" json:"licensePlate"`
	Brand        string    `gorm:"size:50;not null" json:"brand"`
	VehicleModel string    `gorm:"size:50;not null" json:"model"`
	Year         int       `gorm:"not null" json:"year"`
	Capacity     int       `gorm:"not null" json:"capacity"`
	Features     []string  `gorm:"serializer:json;type:text" json:"features"`
	IsActive     bool      `gorm:"not null;index" json:"isActive"`
	DriverID     *uint     `gorm:"index" json:"driverId"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relations
	Driver *User `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

// BeforeSave upper-cases the plate and keeps a driver on at most one active vehicle
func (v *Vehicle) BeforeSave(tx *gorm.DB) error {
	v.LicensePlate = strings.ToUpper(strings.TrimSpace(v.LicensePlate))

	if v.DriverID == nil || !v.IsActive {
		return nil
	}

	var count int64
	err := tx.Model(&Vehicle{}).
		Where("driver_id = ? AND is_active = ? AND id <> ?", *v.DriverID, true, v.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrDriverAlreadyAssigned
	}
	return nil
}

// Location is a structured address with optional coordinates
type Location struct {
	Address   string   `gorm:"size:200;not null" json:"address"`
	City      string   `gorm:"size:100;not null" json:"city"`
	Province  string   `gorm:"size:100;not null" json:"province"`
	Country   string   `gorm:"size:100;default:'Argentina'" json:"country"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// SamePlace compares two locations by address and city
func (l Location) SamePlace(other Location) bool {
	return strings.EqualFold(strings.TrimSpace(l.Address), strings.TrimSpace(other.Address)) &&
		strings.EqualFold(strings.TrimSpace(l.City), strings.TrimSpace(other.City))
}

// ScheduledRoute represents scheduled_routes table (a route template)
type ScheduledRoute struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Origin      Location  `gorm:"embedded;embeddedPrefix:origin_" json:"origin"`
	Destination Location  `gorm:"embedded;embeddedPrefix:destination_" json:"destination"`
	Description string    `gorm:"size:500" json:"description"`
	Duration    int       `gorm:"not null" json:"duration"`
	BasePrice   float64   `gorm:"type:decimal(12,2);not null" json:"basePrice"`
	IsActive    bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ScheduledRoute) TableName() string {
	return "scheduled_routes"
}

// BeforeSave rejects routes whose origin and destination are the same place
func (r *ScheduledRoute) BeforeSave(tx *gorm.DB) error {
	if r.Origin.Country == "" {
		r.Origin.Country = "Argentina"
	}
	if r.Destination.Country == "" {
		r.Destination.Country = "Argentina"
	}
	if r.Origin.SamePlace(r.Destination) {
		return domain.ErrSameOriginDestination
	}
	return nil
}

// FullRoute returns "origin city - destination city"
func (r *ScheduledRoute) FullRoute() string {
	return r.Origin.City + " - " + r.Destination.City
}

// ============================================================
// Trip instances
// ============================================================

// RouteInstance represents route_instances table (a concrete departure)
type RouteInstance struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ScheduledRouteID uint      `gorm:"not null;index" json:"scheduledRouteId"`
	VehicleID        uint      `gorm:"not null;index" json:"vehicleId"`
	DriverID         uint      `gorm:"not null;index" json:"driverId"`
	DepartureDate    time.Time `gorm:"not null;index" json:"departureDate"`
	DepartureTime    string    `gorm:"size:5;not null" json:"departureTime"`
	ArrivalTime      string    `gorm:"size:5;not null" json:"arrivalTime"`
	CurrentPrice     float64   `gorm:"type:decimal(12,2);not null" json:"currentPrice"`
	AvailableSeats   int       `gorm:"not null" json:"availableSeats"`
	Status           string    `gorm:"size:20;default:'scheduled';index" json:"status"`
	Notes            string    `gorm:"size:500" json:"notes"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relations
	ScheduledRoute *ScheduledRoute `gorm:"foreignKey:ScheduledRouteID" json:"scheduledRoute,omitempty"`
	Vehicle        *Vehicle        `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Driver         *User           `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
}

func (RouteInstance) TableName() string {
	return "route_instances"
}

// BeforeSave stores the departure date as a calendar day
func (ri *RouteInstance) BeforeSave(tx *gorm.DB) error {
	ri.DepartureDate = DateOnly(ri.DepartureDate)
	if ri.Status == "" {
		ri.Status = domain.TripStatusScheduled
	}
	return nil
}

// DepartureAt combines the departure date with the HH:MM departure time in loc
func (ri *RouteInstance) DepartureAt(loc *time.Location) time.Time {
	y, m, d := ri.DepartureDate.Date()
	hour, minute := ParseHHMM(ri.DepartureTime)
	return time.Date(y, m, d, hour, minute, 0, 0, loc)
}

// DateOnly truncates t to local midnight of the same calendar day
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// ParseHHMM splits an HH:MM string. Malformed input yields 0, 0.
func ParseHHMM(s string) (int, int) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0
	}
	return t.Hour(), t.Minute()
}
