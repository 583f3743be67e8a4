package middleware

import (
	"errors"
	"strconv"
	"strings"

	"transporteuni-api/internal/adapters/persistence/repositories"
	"transporteuni-api/internal/config"
	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// extractToken reads the access token from the cookie or the Authorization header
func extractToken(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}

	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// AuthMiddleware validates the access token and resolves it to an active user
func AuthMiddleware(cfg *config.Config, userRepo repositories.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := extractToken(c)
		if accessToken == "" {
			return domain.ErrUnauthorized
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return domain.ErrTokenExpired
			}
			return domain.ErrTokenMalformed
		}

		user, err := userRepo.GetByID(c.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewAuthError("User no longer exists")
			}
			return err
		}
		if !user.IsActive {
			return domain.ErrUserInactive
		}

		// Role and email come from the stored user, not the token
		c.Locals("userID", user.ID)
		c.Locals("email", user.Email)
		c.Locals("role", user.Role)

		return c.Next()
	}
}

// RoleMiddleware allows the request only when the caller's role is in the allow-list
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return domain.ErrUnauthorized
		}

		for _, allowed := range allowedRoles {
			if role == string(allowed) {
				return c.Next()
			}
		}

		return domain.ErrForbidden
	}
}

// RequireAdmin allows admin only
func RequireAdmin() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}

// RequireOperator allows admin and operator
func RequireOperator() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin, domain.RoleOperator)
}

// RequireDriver allows admin, operator and driver
func RequireDriver() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin, domain.RoleOperator, domain.RoleDriver)
}

// RequirePassenger allows every authenticated role
func RequirePassenger() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin, domain.RoleOperator, domain.RoleDriver, domain.RolePassenger)
}

// RequireOwnershipOrAdmin allows the user whose id is in the route param, or staff
func RequireOwnershipOrAdmin(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return domain.ErrUnauthorized
		}

		role, _ := c.Locals("role").(string)
		if domain.IsStaff(role) {
			return c.Next()
		}

		ownerID, err := strconv.ParseUint(c.Params(param), 10, 32)
		if err != nil {
			return domain.NewCastError(param)
		}
		if uint(ownerID) != userID {
			return domain.ErrForbidden
		}

		return c.Next()
	}
}
