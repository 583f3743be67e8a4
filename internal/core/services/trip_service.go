package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/adapters/persistence/repositories"
	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/pkg/pagination"

	"gorm.io/gorm"
)

// DateLayout is the calendar date format accepted in requests
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date at local midnight
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDateFormat
	}
	return t, nil
}

// TripService serves the public trip search
type TripService struct {
	tripRepo *repositories.RouteInstanceRepository
	now      func() time.Time
}

// NewTripService creates a new trip service
func NewTripService(tripRepo *repositories.RouteInstanceRepository) *TripService {
	return &TripService{
		tripRepo: tripRepo,
		now:      time.Now,
	}
}

// AvailableTripsInput represents the trips-by-date query
type AvailableTripsInput struct {
	Date        string
	Origin      string
	Destination string
	Params      *pagination.Params
}

// SearchTripsInput represents the advanced search query
type SearchTripsInput struct {
	Origin      string
	Destination string
	StartDate   string
	EndDate     string
	MinPrice    *float64
	MaxPrice    *float64
	MinSeats    int
	Params      *pagination.Params
}

// Available lists scheduled trips with free seats departing on one calendar day
func (s *TripService) Available(ctx context.Context, input *AvailableTripsInput) ([]*models.RouteInstance, *pagination.Meta, error) {
	if strings.TrimSpace(input.Date) == "" {
		return nil, nil, domain.NewValidationError("date is required (YYYY-MM-DD)")
	}

	day, err := ParseDate(input.Date)
	if err != nil {
		return nil, nil, err
	}
	next := day.AddDate(0, 0, 1)

	filter := repositories.TripFilter{
		Status:      domain.TripStatusScheduled,
		Origin:      strings.TrimSpace(input.Origin),
		Destination: strings.TrimSpace(input.Destination),
		From:        &day,
		To:          &next,
		MinSeats:    1,
	}

	trips, total, err := s.tripRepo.List(ctx, filter,
		"route_instances.departure_time ASC, route_instances.current_price ASC",
		input.Params.Offset, input.Params.Limit)
	if err != nil {
		return nil, nil, err
	}

	return trips, pagination.GetMeta(input.Params, total), nil
}

// Search lists scheduled trips matching the filters, soonest first.
// Without a start date only trips from today on are returned.
func (s *TripService) Search(ctx context.Context, input *SearchTripsInput) ([]*models.RouteInstance, *pagination.Meta, error) {
	filter := repositories.TripFilter{
		Status:      domain.TripStatusScheduled,
		Origin:      strings.TrimSpace(input.Origin),
		Destination: strings.TrimSpace(input.Destination),
		MinPrice:    input.MinPrice,
		MaxPrice:    input.MaxPrice,
		MinSeats:    input.MinSeats,
	}
	if filter.MinSeats < 1 {
		filter.MinSeats = 1
	}

	from := models.DateOnly(s.now())
	if input.StartDate != "" {
		d, err := ParseDate(input.StartDate)
		if err != nil {
			return nil, nil, err
		}
		from = d
	}
	filter.From = &from

	if input.EndDate != "" {
		d, err := ParseDate(input.EndDate)
		if err != nil {
			return nil, nil, err
		}
		// End date is inclusive
		to := d.AddDate(0, 0, 1)
		filter.To = &to
	}

	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, nil, domain.NewValidationError("minPrice cannot be greater than maxPrice")
	}

	trips, total, err := s.tripRepo.List(ctx, filter,
		"route_instances.departure_date ASC, route_instances.departure_time ASC",
		input.Params.Offset, input.Params.Limit)
	if err != nil {
		return nil, nil, err
	}

	return trips, pagination.GetMeta(input.Params, total), nil
}

// Popular ranks scheduled routes by trips run in the last 30 days
func (s *TripService) Popular(ctx context.Context, limit int) ([]*repositories.PopularRoute, error) {
	if limit < 1 {
		limit = 5
	}
	if limit > 20 {
		limit = 20
	}

	since := models.DateOnly(s.now().AddDate(0, 0, -30))
	rows, err := s.tripRepo.Popular(ctx, since, limit)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		row.AveragePrice = math.Round(row.AveragePrice*100) / 100
	}
	return rows, nil
}

// GetByID returns a trip with its route, vehicle and driver
func (s *TripService) GetByID(ctx context.Context, id uint) (*models.RouteInstance, error) {
	trip, err := s.tripRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTripNotFound
		}
		return nil, err
	}
	return trip, nil
}
