package routes

import (
	"time"

	"transporteuni-api/internal/adapters/cache"
	"transporteuni-api/internal/adapters/http/handlers"
	"transporteuni-api/internal/adapters/http/middleware"
	"transporteuni-api/internal/adapters/messaging"
	"transporteuni-api/internal/adapters/persistence/repositories"
	"transporteuni-api/internal/config"
	"transporteuni-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// publicMaxAge is the browser cache lifetime of public catalog reads
const publicMaxAge = time.Minute

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, c cache.Cache, publisher messaging.Publisher) {
	if c == nil {
		c = cache.Noop{}
	}
	brokerEnabled := publisher != nil
	if _, ok := publisher.(messaging.NoopPublisher); ok {
		brokerEnabled = false
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	vehicleRepo := repositories.NewVehicleRepository(db)
	routeRepo := repositories.NewScheduledRouteRepository(db)
	tripRepo := repositories.NewRouteInstanceRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	companyRepo := repositories.NewCompanyConfigRepository(db)

	// Initialize services
	notifier := services.NewNotificationService(publisher)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, refreshTokenRepo)
	catalogService := services.NewCatalogService(vehicleRepo, routeRepo, tripRepo, userRepo)
	tripService := services.NewTripService(tripRepo)
	reservationService := services.NewReservationService(reservationRepo, tripRepo, paymentRepo, notifier, cfg.Booking.CancellationWindow)
	paymentService := services.NewPaymentService(paymentRepo, reservationRepo, notifier)
	dashboardService := services.NewDashboardService(db, reservationRepo, c, brokerEnabled)
	companyService := services.NewCompanyConfigService(companyRepo, c, cfg.Redis.TTL)

	// Initialize handlers
	h := &handlerSet{
		health:      handlers.NewHealthHandler(db, cfg, companyService),
		auth:        handlers.NewAuthHandler(authService, cfg),
		user:        handlers.NewUserHandler(userService),
		catalog:     handlers.NewCatalogHandler(catalogService),
		trip:        handlers.NewTripHandler(tripService),
		reservation: handlers.NewReservationHandler(reservationService),
		payment:     handlers.NewPaymentHandler(paymentService),
		dashboard:   handlers.NewDashboardHandler(dashboardService),
		config:      handlers.NewConfigHandler(companyService, cfg.Seed.CompanyName),
	}

	// Health check & root routes
	app.Get("/", h.health.Root)
	app.Get("/health", h.health.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group, gated by the static API key
	apiV1 := app.Group("/api/v1", middleware.APIKey(cfg.APIKey))
	setupAPIV1Routes(apiV1, h, middleware.AuthMiddleware(cfg, userRepo))

	app.Use(middleware.NotFound)
}

type handlerSet struct {
	health      *handlers.HealthHandler
	auth        *handlers.AuthHandler
	user        *handlers.UserHandler
	catalog     *handlers.CatalogHandler
	trip        *handlers.TripHandler
	reservation *handlers.ReservationHandler
	payment     *handlers.PaymentHandler
	dashboard   *handlers.DashboardHandler
	config      *handlers.ConfigHandler
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(router fiber.Router, h *handlerSet, auth fiber.Handler) {
	// API Info
	router.Get("/", h.health.APIInfo)

	setupAuthRoutes(router.Group("/auth", middleware.NoCacheHeaders()), h, auth)
	setupTripRoutes(router.Group("/routes", middleware.PublicCache(publicMaxAge)), h.trip)
	setupConfigRoutes(router.Group("/config"), h.config, auth)

	// Catalog management (Operator/Admin)
	catalogRoutes := router.Group("/catalog", middleware.NoCacheHeaders(), auth, middleware.RequireOperator())
	setupCatalogRoutes(catalogRoutes, h.catalog)

	// Driver schedule (Driver/Operator/Admin)
	driverRoutes := router.Group("/driver", middleware.NoCacheHeaders(), auth, middleware.RequireDriver())
	driverRoutes.Get("/trips", h.catalog.ListAssignedTrips)

	// Reservations (Authenticated)
	reservationRoutes := router.Group("/reservations", middleware.NoCacheHeaders(), auth)
	setupReservationRoutes(reservationRoutes, h.reservation)

	// Per-user views (Owner or Operator/Admin)
	userRoutes := router.Group("/users", middleware.NoCacheHeaders(), auth)
	userRoutes.Get("/:id/reservations", middleware.RequireOwnershipOrAdmin("id"), h.reservation.ListByPassenger)

	// Payments (Authenticated)
	paymentRoutes := router.Group("/payments", middleware.NoCacheHeaders(), auth)
	setupPaymentRoutes(paymentRoutes, h.payment)

	// Admin reporting (Operator/Admin)
	adminRoutes := router.Group("/admin", middleware.NoCacheHeaders(), auth, middleware.RequireOperator())
	setupAdminRoutes(adminRoutes, h)
}

// setupAuthRoutes configures authentication and profile routes
func setupAuthRoutes(router fiber.Router, h *handlerSet, auth fiber.Handler) {
	// Public routes (5 req/min/IP on credential endpoints)
	router.Post("/register", middleware.AuthRateLimiter(), h.auth.Register)
	router.Post("/login", middleware.AuthRateLimiter(), h.auth.Login)
	router.Post("/refresh-token", h.auth.RefreshToken)
	router.Post("/logout", h.auth.Logout)

	// Protected routes
	router.Post("/logout-all", auth, h.auth.LogoutAll)
	router.Get("/profile", auth, h.user.GetProfile)
	router.Put("/profile", auth, h.user.UpdateProfile)
	router.Put("/change-password", middleware.StrictRateLimiter(), auth, h.user.ChangePassword)
}

// setupTripRoutes configures the public trip search
func setupTripRoutes(router fiber.Router, handler *handlers.TripHandler) {
	router.Get("/", handler.Available)
	router.Get("/search", handler.Search)
	router.Get("/popular", handler.Popular)
	router.Get("/:id", handler.GetByID)
}

// setupCatalogRoutes configures vehicles, route templates and trips
func setupCatalogRoutes(router fiber.Router, handler *handlers.CatalogHandler) {
	// Vehicles
	router.Get("/vehicles", handler.ListVehicles)
	router.Get("/vehicles/:id", handler.GetVehicle)
	router.Post("/vehicles", handler.CreateVehicle)
	router.Put("/vehicles/:id", handler.UpdateVehicle)
	router.Delete("/vehicles/:id", handler.DeactivateVehicle)

	// Scheduled routes
	router.Get("/routes", handler.ListScheduledRoutes)
	router.Get("/routes/:id", handler.GetScheduledRoute)
	router.Post("/routes", handler.CreateScheduledRoute)
	router.Put("/routes/:id", handler.UpdateScheduledRoute)
	router.Delete("/routes/:id", handler.DeactivateScheduledRoute)

	// Trip instances
	router.Get("/instances", handler.ListRouteInstances)
	router.Get("/instances/:id", handler.GetRouteInstance)
	router.Post("/instances", handler.CreateRouteInstance)
	router.Patch("/instances/:id", handler.UpdateRouteInstance)
}

// setupReservationRoutes configures reservation routes
func setupReservationRoutes(router fiber.Router, handler *handlers.ReservationHandler) {
	router.Post("/", middleware.RequirePassenger(), handler.Create)
	router.Get("/my-reservations", handler.ListMine)
	router.Get("/", middleware.RequireOperator(), handler.ListAll)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id", handler.Update)
	router.Patch("/:id/cancel", handler.Cancel)
}

// setupPaymentRoutes configures payment routes
func setupPaymentRoutes(router fiber.Router, handler *handlers.PaymentHandler) {
	router.Post("/create", middleware.RequirePassenger(), handler.Create)
	router.Get("/reservation/:id", handler.ListByReservation)

	// Operator/Admin only
	router.Patch("/:id/status", middleware.RequireOperator(), handler.UpdateStatus)
	router.Get("/history", middleware.RequireOperator(), handler.History)
	router.Get("/statistics", middleware.RequireOperator(), handler.Statistics)
}

// setupAdminRoutes configures admin routes
func setupAdminRoutes(router fiber.Router, h *handlerSet) {
	router.Get("/summary", h.dashboard.GetSummary)
	router.Get("/users", h.user.ListUsers)
	router.Get("/reservations/recent", h.dashboard.RecentReservations)
	router.Get("/system-status", h.dashboard.GetSystemStatus)

	// Admin only
	router.Patch("/users/:id/status", middleware.RequireAdmin(), h.user.UpdateStatus)
	router.Patch("/users/:id/role", middleware.RequireAdmin(), h.user.UpdateRole)
}

// setupConfigRoutes configures company configuration routes
func setupConfigRoutes(router fiber.Router, handler *handlers.ConfigHandler, auth fiber.Handler) {
	// Public
	router.Get("/public", middleware.PublicCache(publicMaxAge), handler.GetPublic)

	// Admin only
	admin := router.Group("", middleware.NoCacheHeaders(), auth, middleware.RequireAdmin())
	admin.Get("/", handler.Get)
	admin.Post("/", handler.Create)
	admin.Post("/initialize", handler.Initialize)
	admin.Put("/:id", handler.Update)
	admin.Delete("/:id", handler.Delete)
}
