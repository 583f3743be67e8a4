package pagination

import (
	"fmt"
	"strconv"

	"transporteuni-api/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

// Params represents pagination parameters
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// Meta represents pagination metadata
type Meta struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// DefaultLimit is the default number of items per page
const DefaultLimit = 10

// MaxLimit is the maximum number of items per page
const MaxLimit = 100

// MaxPage bounds the page number so the offset cannot overflow
const MaxPage = 1_000_000

// GetParams extracts pagination parameters from request
func GetParams(c *fiber.Ctx) (*Params, error) {
	return GetParamsWithDefault(c, DefaultLimit)
}

// GetParamsWithDefault extracts pagination parameters using a custom default limit.
// A page below 1 or a limit outside 1..MaxLimit is rejected.
func GetParamsWithDefault(c *fiber.Ctx, defaultLimit int) (*Params, error) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 || page > MaxPage {
		return nil, domain.NewValidationError(fmt.Sprintf("page must be an integer between 1 and %d", MaxPage))
	}

	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > MaxLimit {
		return nil, domain.NewValidationError(fmt.Sprintf("limit must be an integer between 1 and %d", MaxLimit))
	}

	return New(page, limit, defaultLimit), nil
}

// New normalizes page and limit
func New(page, limit, defaultLimit int) *Params {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}

	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return &Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// GetMeta calculates pagination metadata
func GetMeta(params *Params, total int64) *Meta {
	totalPages := int(total) / params.Limit
	if int(total)%params.Limit > 0 {
		totalPages++
	}

	return &Meta{
		Page:        params.Page,
		Limit:       params.Limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: params.Page < totalPages,
		HasPrevPage: params.Page > 1,
	}
}
