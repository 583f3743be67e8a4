package middleware

import (
	"crypto/subtle"

	"transporteuni-api/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

// APIKeyHeader carries the static API key
const APIKeyHeader = "X-API-Key"

// APIKey requires the configured key in the X-API-Key header or the api_key
// query parameter. An empty key disables the check.
func APIKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return c.Next()
		}

		provided := c.Get(APIKeyHeader)
		if provided == "" {
			provided = c.Query("api_key")
		}
		if provided == "" {
			return domain.ErrMissingAPIKey
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			return domain.ErrInvalidAPIKey
		}

		return c.Next()
	}
}
