package response

import (
	"transporteuni-api/internal/pkg/pagination"

	"github.com/gofiber/fiber/v2"
)

// Response represents a standard API response
type Response struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Data       interface{}      `json:"data,omitempty"`
	Error      string           `json:"error,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Paginated sends a success response with pagination metadata
func Paginated(c *fiber.Ctx, message string, data interface{}, meta *pagination.Meta) error {
	return c.JSON(Response{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: meta,
	})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message, detail string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Message: message,
		Error:   detail,
	})
}
