package config

import (
	"context"
	"errors"
	"log"
	"time"

	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/pkg/password"

	"gorm.io/gorm"
)

// CompanyInitializer creates the default company configuration when none is active
type CompanyInitializer interface {
	InitializeDefault(ctx context.Context, companyName string) (*models.CompanyConfig, bool, error)
}

// Seeder handles database seeding
type Seeder struct {
	db      *gorm.DB
	cfg     SeedConfig
	company CompanyInitializer
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg SeedConfig, company CompanyInitializer) *Seeder {
	return &Seeder{db: db, cfg: cfg, company: company}
}

// Run executes all seeders. Individual failures are logged and skipped.
func (s *Seeder) Run(ctx context.Context) error {
	log.Println("🌱 Running database seeders...")

	if _, created, err := s.company.InitializeDefault(ctx, s.cfg.CompanyName); err != nil {
		log.Printf("⚠️ Company config seeder skipped: %v", err)
	} else if created {
		log.Printf("✅ Default company config created: %s", s.cfg.CompanyName)
	}

	if err := s.seedAdminUser(ctx); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	if s.cfg.DemoData {
		if err := s.seedDemoData(ctx); err != nil {
			log.Printf("⚠️ Demo data seeder skipped: %v", err)
		}
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser creates the admin from SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD
func (s *Seeder) seedAdminUser(ctx context.Context) error {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		return nil
	}

	_, err := s.ensureUser(ctx, s.cfg.AdminEmail, s.cfg.AdminPassword, "Admin", "TransporteUNI", domain.RoleAdmin)
	return err
}

// ensureUser creates the user unless the email is already taken
func (s *Seeder) ensureUser(ctx context.Context, email, plain, firstName, lastName string, role domain.Role) (*models.User, error) {
	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(plain)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:       email,
		Password:    hashed,
		FirstName:   firstName,
		LastName:    lastName,
		PhoneNumber: "+54 11 5555-0000",
		Role:        string(role),
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}

	log.Printf("✅ %s user created: %s", role, user.Email)
	return user, nil
}

// ============================================================
// Demo data
// ============================================================

// seedDemoData loads staff, fleet, routes and the next two days of trips.
// It does nothing once any vehicle exists.
func (s *Seeder) seedDemoData(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Vehicle{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := s.ensureUser(ctx, "j.perez@transporteuni.com", "operador456", "Juan", "Perez", domain.RoleOperator); err != nil {
		return err
	}
	driver, err := s.ensureUser(ctx, "c.gomez@transporteuni.com", "chofer789", "Carlos", "Gomez", domain.RoleDriver)
	if err != nil {
		return err
	}
	if _, err := s.ensureUser(ctx, "ana.martinez@gmail.com", "cliente123", "Ana", "Martinez", domain.RolePassenger); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vehicles := demoVehicles(driver.ID)
		for _, v := range vehicles {
			if err := tx.Create(v).Error; err != nil {
				return err
			}
		}

		routes := demoRoutes()
		for _, r := range routes {
			if err := tx.Create(r).Error; err != nil {
				return err
			}
		}

		today := models.DateOnly(time.Now())
		tomorrow := today.AddDate(0, 0, 1)
		dayAfter := today.AddDate(0, 0, 2)

		trips := []*models.RouteInstance{
			demoTrip(routes[0], vehicles[0], driver.ID, tomorrow, "08:30", "12:30", 4200),
			demoTrip(routes[0], vehicles[1], driver.ID, dayAfter, "08:00", "12:00", 3500),
			demoTrip(routes[1], vehicles[2], driver.ID, tomorrow, "22:00", "06:00", 7500),
			demoTrip(routes[2], vehicles[0], driver.ID, tomorrow, "15:30", "17:30", 2800),
		}
		for _, t := range trips {
			if err := tx.Create(t).Error; err != nil {
				return err
			}
		}

		log.Printf("✅ Demo data created: %d vehicles, %d routes, %d trips", len(vehicles), len(routes), len(trips))
		return nil
	})
}

func demoVehicles(driverID uint) []*models.Vehicle {
	return []*models.Vehicle{
		{
			LicensePlate: "AB123CD", Brand: "Mercedes-Benz", VehicleModel: "Sprinter 516",
			Year: 2020, Capacity: 20, IsActive: true, DriverID: &driverID,
			Features: []string{"Aire acondicionado", "WiFi gratis", "Cinturones 3 puntos", "Baño"},
		},
		{
			LicensePlate: "EF456GH", Brand: "Iveco", VehicleModel: "Daily Minibus",
			Year: 2019, Capacity: 15, IsActive: true,
			Features: []string{"A/A", "GPS", "Radio AM/FM"},
		},
		{
			LicensePlate: "IJ789KL", Brand: "Volkswagen", VehicleModel: "Crafter",
			Year: 2021, Capacity: 18, IsActive: true,
			Features: []string{"Aire acondicionado", "WiFi", "Cargadores USB"},
		},
		{
			LicensePlate: "MN012OP", Brand: "Mercedes-Benz", VehicleModel: "Sprinter 519",
			Year: 2018, Capacity: 25, IsActive: false,
			Features: []string{"Aire acondicionado", "WiFi"},
		},
	}
}

func demoRoutes() []*models.ScheduledRoute {
	retiro := models.Location{
		Address: "Terminal de Omnibus de Retiro, Av. Ramos Mejia 1680", City: "Buenos Aires",
		Province: "Buenos Aires", Latitude: ptr(-34.5906), Longitude: ptr(-58.3742),
	}
	rosario := models.Location{
		Address: "Terminal de Omnibus Mariano Moreno", City: "Rosario",
		Province: "Santa Fe", Latitude: ptr(-32.9442), Longitude: ptr(-60.6505),
	}

	return []*models.ScheduledRoute{
		{
			Name: "Buenos Aires - Rosario Express", Origin: retiro, Destination: rosario,
			Duration: 240, BasePrice: 4200, IsActive: true,
			Description: "Servicio directo por autopista",
		},
		{
			Name: "Buenos Aires - Córdoba", Origin: retiro,
			Destination: models.Location{
				Address: "Terminal de Ómnibus Córdoba", City: "Córdoba",
				Province: "Córdoba", Latitude: ptr(-31.4135), Longitude: ptr(-64.181),
			},
			Duration: 480, BasePrice: 7500, IsActive: true,
			Description: "Ruta Buenos Aires - Córdoba vía autopista",
		},
		{
			Name: "Rosario - Santa Fe", Origin: rosario,
			Destination: models.Location{
				Address: "Terminal de Ómnibus Santa Fe", City: "Santa Fe",
				Province: "Santa Fe", Latitude: ptr(-31.6333), Longitude: ptr(-60.7),
			},
			Duration: 120, BasePrice: 2800, IsActive: true,
		},
	}
}

func demoTrip(route *models.ScheduledRoute, vehicle *models.Vehicle, driverID uint, day time.Time, dep, arr string, price float64) *models.RouteInstance {
	return &models.RouteInstance{
		ScheduledRouteID: route.ID,
		VehicleID:        vehicle.ID,
		DriverID:         driverID,
		DepartureDate:    day,
		DepartureTime:    dep,
		ArrivalTime:      arr,
		CurrentPrice:     price,
		AvailableSeats:   vehicle.Capacity,
		Status:           domain.TripStatusScheduled,
	}
}

func ptr(f float64) *float64 {
	return &f
}
