package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode   string
	Port      string
	Version   string
	APIKey    string
	Database  DatabaseConfig
	JWT       JWTConfig
	Cookie    CookieConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	Booking   BookingConfig
	Seed      SeedConfig
	Scheduler SchedulerConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // mysql, postgres or sqlite
	DSN      string // overrides the host based settings when set
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// RedisConfig holds the cache connection. An empty URL disables caching.
type RedisConfig struct {
	URL string
	TTL time.Duration
}

// RabbitMQConfig holds the event broker connection. An empty URL disables publishing.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// BookingConfig holds reservation rules
type BookingConfig struct {
	CancellationWindow time.Duration
}

// SeedConfig controls startup seeding
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	DemoData      bool
	CompanyName   string
}

// SchedulerConfig holds cron expressions for background jobs
type SchedulerConfig struct {
	TokenCleanupSpec string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	db := loadDatabaseConfig(appMode)
	switch db.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql', 'postgres' or 'sqlite')", db.Driver)
	}

	config := &Config{
		AppMode:   appMode,
		Port:      getEnv("PORT", "3001"),
		Version:   getEnv("APP_VERSION", "1.0.0"),
		APIKey:    os.Getenv("API_KEY"),
		Database:  db,
		JWT:       loadJWTConfig(appMode),
		Cookie:    loadCookieConfig(appMode),
		Redis:     loadRedisConfig(),
		RabbitMQ:  loadRabbitMQConfig(),
		Booking:   loadBookingConfig(),
		Seed:      loadSeedConfig(),
		Scheduler: SchedulerConfig{TokenCleanupSpec: getEnv("TOKEN_CLEANUP_CRON", "0 3 * * *")},
	}

	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// modePrefix returns the env var prefix for the given mode
func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	driver := strings.ToLower(getEnv(prefix+"DB_DRIVER", "mysql"))
	defaultPort := "3306"
	if driver == "postgres" {
		defaultPort = "5432"
	}

	return DatabaseConfig{
		Driver:   driver,
		DSN:      getEnv(prefix+"DB_DSN", ""),
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", defaultPort),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "transporteuni"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  getEnvAsInt("ACCESS_TOKEN_MINUTES", 7*24*60),
		RefreshTokenDays: getEnvAsInt("REFRESH_TOKEN_DAYS", 30),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure, _ := strconv.ParseBool(getEnv(modePrefix(mode)+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		URL: getEnv("REDIS_URL", ""),
		TTL: time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 300)) * time.Second,
	}
}

func loadRabbitMQConfig() RabbitMQConfig {
	return RabbitMQConfig{
		URL:      getEnv("RABBITMQ_URL", ""),
		Exchange: getEnv("RABBITMQ_EXCHANGE", "transporteuni.events"),
	}
}

func loadBookingConfig() BookingConfig {
	return BookingConfig{
		CancellationWindow: time.Duration(getEnvAsInt("CANCELLATION_WINDOW_MINUTES", 120)) * time.Minute,
	}
}

func loadSeedConfig() SeedConfig {
	demo, _ := strconv.ParseBool(getEnv("SEED_DEMO_DATA", "false"))

	return SeedConfig{
		AdminEmail:    getEnv("SEED_ADMIN_EMAIL", ""),
		AdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
		DemoData:      demo,
		CompanyName:   getEnv("COMPANY_NAME", "TransporteUNI S.A."),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an integer environment variable with default value
func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://transporteuni.com.ar"
	}
	return origins
}
