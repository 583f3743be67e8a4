package handlers

import (
	"strconv"
	"time"

	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// parseID reads a positive integer route param
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, domain.NewCastError(name)
	}
	return uint(id), nil
}

// parseBody decodes the JSON body into dst
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return domain.ErrInvalidBody
	}
	return nil
}

// currentActor builds the caller identity set by AuthMiddleware
func currentActor(c *fiber.Ctx) (services.Actor, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return services.Actor{}, domain.ErrUnauthorized
	}
	role, _ := c.Locals("role").(string)
	return services.Actor{UserID: userID, Role: role}, nil
}

// queryUint reads an optional unsigned integer query param
func queryUint(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, domain.NewCastError(name)
	}
	return uint(v), nil
}

// queryFloat reads an optional float query param
func queryFloat(c *fiber.Ctx, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, domain.NewValidationError(name + " must be a number")
	}
	return &v, nil
}

// queryDate reads an optional YYYY-MM-DD query param. With endOfDay the
// returned time is the last instant of that day.
func queryDate(c *fiber.Ctx, name string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := services.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		d = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &d, nil
}
