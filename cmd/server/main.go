package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transporteuni-api/internal/adapters/cache"
	"transporteuni-api/internal/adapters/http/middleware"
	"transporteuni-api/internal/adapters/http/routes"
	"transporteuni-api/internal/adapters/messaging"
	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/adapters/persistence/repositories"
	"transporteuni-api/internal/config"
	"transporteuni-api/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "transporteuni-api/docs" // Swagger docs
)

// @title TransporteUNI API
// @version 1.0
// @description Bus ticketing API: trip search, reservations and manual payments
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email info@transporteuni.com.ar

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	appCache := connectCache(ctx, cfg)
	cancel()
	if closer, ok := appCache.(io.Closer); ok {
		defer closer.Close()
	}
	publisher := connectBroker(cfg)
	defer publisher.Close()

	// Seed company config, admin and demo data
	companyService := services.NewCompanyConfigService(repositories.NewCompanyConfigRepository(db), appCache, cfg.Redis.TTL)
	if err := config.NewSeeder(db, cfg.Seed, companyService).Run(context.Background()); err != nil {
		log.Printf("⚠️ Warning: Failed to seed database: %v", err)
	}

	// Start Cron Service for refresh token cleanup
	cronService := services.NewCronService(repositories.NewRefreshTokenRepository(db), cfg.Scheduler.TokenCleanupSpec)
	if err := cronService.Start(); err != nil {
		log.Printf("⚠️ CronService not started: %v", err)
	} else {
		defer cronService.Stop()
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "TransporteUNI API " + cfg.Version,
		ErrorHandler: middleware.CustomErrorHandler(cfg),
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg, appCache, publisher)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// connectCache returns Redis when REDIS_URL is set and reachable, else a no-op cache
func connectCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if cfg.Redis.URL == "" {
		log.Println("⚠️ REDIS_URL not set, caching disabled")
		return cache.Noop{}
	}

	c, err := cache.NewRedisCache(ctx, cfg.Redis.URL)
	if err != nil {
		log.Printf("⚠️ Redis unavailable, caching disabled: %v", err)
		return cache.Noop{}
	}
	return c
}

// connectBroker returns a RabbitMQ publisher when RABBITMQ_URL is set and reachable
func connectBroker(cfg *config.Config) messaging.Publisher {
	if cfg.RabbitMQ.URL == "" {
		log.Println("⚠️ RABBITMQ_URL not set, domain events disabled")
		return messaging.NoopPublisher{}
	}

	p, err := messaging.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		log.Printf("⚠️ RabbitMQ unavailable, domain events disabled: %v", err)
		return messaging.NoopPublisher{}
	}
	return p
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
