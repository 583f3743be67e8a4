package middleware

import (
	"errors"
	"log"
	"time"

	"transporteuni-api/internal/adapters/persistence/repositories"
	"transporteuni-api/internal/config"
	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/pkg/jwt"
	"transporteuni-api/internal/pkg/response"
	"transporteuni-api/internal/pkg/validator"

	playground "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

const allowHeaders = "Origin,Content-Type,Accept,Authorization," + APIKeyHeader

// Setup configures all middlewares for the application
func Setup(app *fiber.App, cfg *config.Config) {
	// Recover middleware - catches panics
	app.Use(recover.New())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Security Headers middleware (Helmet)
	app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "SAMEORIGIN",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
		PermissionPolicy:          "geolocation=(), microphone=(), camera=()",
	}))

	// Rate Limiter middleware - General API (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, fiber.StatusTooManyRequests,
				"Too many requests from this IP, please try again later", "Too many requests")
		},
	}))

	// Logger middleware
	if cfg.IsDev() {
		app.Use(logger.New(logger.Config{
			Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
		}))
	} else {
		app.Use(logger.New(logger.Config{
			Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	// CORS middleware
	if cfg.IsDev() {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     "*",
			AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowHeaders:     allowHeaders,
			AllowCredentials: false, // Cannot be true with AllowOrigins: "*"
		}))
	} else {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.GetAllowedOrigins(),
			AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowHeaders:     allowHeaders,
			AllowCredentials: true,
		}))
	}
}

// AuthRateLimiter creates a stricter rate limiter for auth endpoints
// 5 requests per minute per IP (for login and register)
func AuthRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "-auth"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, fiber.StatusTooManyRequests,
				"Too many authentication attempts, please wait a minute", "Too many login attempts")
		},
	})
}

// StrictRateLimiter allows 3 requests per minute per IP (password changes)
func StrictRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        3,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "-strict"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, fiber.StatusTooManyRequests,
				"Please wait before trying again", "Rate limit exceeded")
		},
	})
}

// NotFound answers every unmatched route
func NotFound(c *fiber.Ctx) error {
	return domain.NewNotFoundError("Route " + c.Method() + " " + c.OriginalURL() + " not found")
}

// CustomErrorHandler maps every error returned by a handler to the response envelope
func CustomErrorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		e := classify(err)

		detail := string(e.Kind)
		if e.Status >= fiber.StatusInternalServerError {
			log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
			if !cfg.IsProd() {
				detail = err.Error()
			}
		}

		return response.Error(c, e.Status, e.Message, detail)
	}
}

// classify turns any error into a domain error
func classify(err error) *domain.Error {
	if e, ok := domain.AsError(err); ok {
		return e
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch {
		case fiberErr.Code == fiber.StatusNotFound:
			return domain.NewNotFoundError(fiberErr.Message)
		case fiberErr.Code >= fiber.StatusInternalServerError:
			return &domain.Error{Kind: domain.KindInternal, Status: fiberErr.Code, Message: fiberErr.Message}
		default:
			return &domain.Error{Kind: domain.KindValidation, Status: fiberErr.Code, Message: fiberErr.Message}
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewNotFoundError("Resource not found")
	}

	if repositories.IsDuplicateKey(err) {
		return domain.NewDuplicateKeyError(repositories.DuplicateKeyField(err))
	}

	var verrs playground.ValidationErrors
	if errors.As(err, &verrs) {
		return domain.NewValidationError(validator.Messages(verrs))
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return domain.ErrTokenExpired
	}
	if errors.Is(err, jwt.ErrTokenInvalid) {
		return domain.ErrTokenMalformed
	}

	return domain.ErrInternal
}
