package services

import (
	"context"
	"runtime"
	"time"

	"transporteuni-api/internal/adapters/cache"
	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/adapters/persistence/repositories"
	"transporteuni-api/internal/core/domain"

	"gorm.io/gorm"
)

// DashboardService handles admin reporting. Every query is read-only.
type DashboardService struct {
	db              *gorm.DB
	reservationRepo *repositories.ReservationRepository
	cache           cache.Cache
	brokerEnabled   bool
	startedAt       time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB, reservationRepo *repositories.ReservationRepository, c cache.Cache, brokerEnabled bool) *DashboardService {
	if c == nil {
		c = cache.Noop{}
	}
	return &DashboardService{
		db:              db,
		reservationRepo: reservationRepo,
		cache:           c,
		brokerEnabled:   brokerEnabled,
		startedAt:       time.Now(),
	}
}

// ============================================================
// Summary
// ============================================================

// SummaryData represents the admin summary
type SummaryData struct {
	// Users
	ActiveUsers    int64            `json:"activeUsers"`
	UsersByRole    map[string]int64 `json:"usersByRole"`
	ActiveVehicles int64            `json:"activeVehicles"`
	ActiveRoutes   int64            `json:"activeRoutes"`
	RouteInstances int64            `json:"routeInstances"`
	UpcomingTrips  int64            `json:"upcomingTrips"`

	// Reservations
	TotalReservations    int64            `json:"totalReservations"`
	ReservationsByStatus map[string]int64 `json:"reservationsByStatus"`

	// Payments
	ApprovedPayments int64   `json:"approvedPayments"`
	ApprovedAmount   float64 `json:"approvedAmount"`
	PendingPayments  int64   `json:"pendingPayments"`

	LastUpdated time.Time `json:"lastUpdated"`
}

type groupCount struct {
	Name  string
	Count int64
}

// GetSummary returns counters across users, catalog, reservations and payments
func (s *DashboardService) GetSummary(ctx context.Context) (*SummaryData, error) {
	data := &SummaryData{
		UsersByRole:          map[string]int64{},
		ReservationsByStatus: map[string]int64{},
	}
	db := s.db.WithContext(ctx)

	// Users
	if err := db.Table("users").Where("is_active = ?", true).Count(&data.ActiveUsers).Error; err != nil {
		return nil, err
	}

	var roles []groupCount
	if err := db.Table("users").
		Select("role AS name, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("role").
		Scan(&roles).Error; err != nil {
		return nil, err
	}
	for _, r := range roles {
		data.UsersByRole[r.Name] = r.Count
	}

	// Catalog
	db.Table("vehicles").Where("is_active = ?", true).Count(&data.ActiveVehicles)
	db.Table("scheduled_routes").Where("is_active = ?", true).Count(&data.ActiveRoutes)
	db.Table("route_instances").Count(&data.RouteInstances)
	db.Table("route_instances").
		Where("status = ? AND departure_date >= ?", domain.TripStatusScheduled, models.DateOnly(time.Now())).
		Count(&data.UpcomingTrips)

	// Reservations
	var statuses []groupCount
	if err := db.Table("reservations").
		Select("status AS name, COUNT(*) AS count").
		Group("status").
		Scan(&statuses).Error; err != nil {
		return nil, err
	}
	for _, st := range statuses {
		data.ReservationsByStatus[st.Name] = st.Count
		data.TotalReservations += st.Count
	}

	// Payments
	db.Table("payments").Where("status = ?", domain.PaymentApproved).Count(&data.ApprovedPayments)
	db.Table("payments").Where("status = ?", domain.PaymentPending).Count(&data.PendingPayments)
	db.Table("payments").
		Where("status = ?", domain.PaymentApproved).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.ApprovedAmount)

	data.LastUpdated = time.Now()
	return data, nil
}

// RecentReservations returns the latest reservations across all passengers
func (s *DashboardService) RecentReservations(ctx context.Context, limit int) ([]*models.Reservation, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return s.reservationRepo.Recent(ctx, limit)
}

// ============================================================
// System status
// ============================================================

// ComponentStatus is the health of one dependency
type ComponentStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SystemStatus represents the system status report
type SystemStatus struct {
	Database   ComponentStatus `json:"database"`
	Cache      ComponentStatus `json:"cache"`
	Broker     ComponentStatus `json:"broker"`
	Uptime     string          `json:"uptime"`
	Goroutines int             `json:"goroutines"`
	Timestamp  time.Time       `json:"timestamp"`
}

// GetSystemStatus pings the database and cache
func (s *DashboardService) GetSystemStatus(ctx context.Context) *SystemStatus {
	status := &SystemStatus{
		Uptime:     time.Since(s.startedAt).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		Timestamp:  time.Now(),
	}

	status.Database = checkComponent(func() error {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})

	status.Cache = checkComponent(func() error {
		return s.cache.Ping(ctx)
	})
	if _, ok := s.cache.(cache.Noop); ok {
		status.Cache = ComponentStatus{Status: "disabled"}
	}

	status.Broker = ComponentStatus{Status: "disabled"}
	if s.brokerEnabled {
		status.Broker = ComponentStatus{Status: "connected"}
	}

	return status
}

func checkComponent(fn func() error) ComponentStatus {
	start := time.Now()
	if err := fn(); err != nil {
		return ComponentStatus{Status: "error", Error: err.Error()}
	}
	return ComponentStatus{Status: "connected", Latency: time.Since(start).String()}
}
