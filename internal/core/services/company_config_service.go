package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"transporteuni-api/internal/adapters/cache"
	"transporteuni-api/internal/adapters/persistence/models"
	"transporteuni-api/internal/adapters/persistence/repositories"
	"transporteuni-api/internal/core/domain"
	"transporteuni-api/internal/pkg/validator"

	"gorm.io/gorm"
)

const publicInfoCacheKey = "company:public"

// Defaults used by InitializeDefault
const (
	DefaultCompanyName    = "TransporteUNI S.A."
	DefaultCompanyEmail   = "info@transporteuni.com.ar"
	DefaultCompanyPhone   = "+54 11 1234-5678"
	DefaultCompanyAddress = "Av. Corrientes 1234, Buenos Aires"
)

// CompanyConfigService manages the single active company configuration
type CompanyConfigService struct {
	repo  *repositories.CompanyConfigRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewCompanyConfigService creates a new company config service
func NewCompanyConfigService(repo *repositories.CompanyConfigRepository, c cache.Cache, ttl time.Duration) *CompanyConfigService {
	if c == nil {
		c = cache.Noop{}
	}
	return &CompanyConfigService{repo: repo, cache: c, ttl: ttl}
}

// CompanyConfigInput represents create company config input
type CompanyConfigInput struct {
	CompanyName string `json:"companyName" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=100"`
	Phone       string `json:"phone" validate:"required,max=30"`
	Address     string `json:"address" validate:"required,max=200"`
}

// UpdateCompanyConfigInput represents update company config input
type UpdateCompanyConfigInput struct {
	CompanyName *string `json:"companyName" validate:"omitempty,min=1,max=100"`
	Email       *string `json:"email" validate:"omitempty,email,max=100"`
	Phone       *string `json:"phone" validate:"omitempty,min=1,max=30"`
	Address     *string `json:"address" validate:"omitempty,min=1,max=200"`
}

// GetActive returns the active configuration
func (s *CompanyConfigService) GetActive(ctx context.Context) (*models.CompanyConfig, error) {
	cfg, err := s.repo.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCompanyConfigNotFound
		}
		return nil, err
	}
	return cfg, nil
}

// GetPublicInfo returns the public subset of the active configuration, cached
func (s *CompanyConfigService) GetPublicInfo(ctx context.Context) (*models.CompanyPublicInfo, error) {
	var info models.CompanyPublicInfo
	hit, err := s.cache.Get(ctx, publicInfoCacheKey, &info)
	if err != nil {
		log.Printf("⚠️ Cache read failed for %s: %v", publicInfoCacheKey, err)
	}
	if hit {
		return &info, nil
	}

	cfg, err := s.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	public := cfg.PublicInfo()
	if err := s.cache.Set(ctx, publicInfoCacheKey, public, s.ttl); err != nil {
		log.Printf("⚠️ Cache write failed for %s: %v", publicInfoCacheKey, err)
	}
	return public, nil
}

// Create stores a new configuration and deactivates every other one
func (s *CompanyConfigService) Create(ctx context.Context, input *CompanyConfigInput) (*models.CompanyConfig, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	cfg := &models.CompanyConfig{
		CompanyName: strings.TrimSpace(input.CompanyName),
		Email:       models.NormalizeEmail(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
		Address:     strings.TrimSpace(input.Address),
	}

	if err := s.repo.CreateActive(ctx, cfg); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	log.Printf("✅ Company config created: %s", cfg.CompanyName)
	return cfg, nil
}

// Update changes the provided fields of a configuration
func (s *CompanyConfigService) Update(ctx context.Context, id uint, input *UpdateCompanyConfigInput) (*models.CompanyConfig, error) {
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	cfg, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.CompanyName != nil {
		cfg.CompanyName = strings.TrimSpace(*input.CompanyName)
	}
	if input.Email != nil {
		cfg.Email = models.NormalizeEmail(*input.Email)
	}
	if input.Phone != nil {
		cfg.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Address != nil {
		cfg.Address = strings.TrimSpace(*input.Address)
	}

	if err := s.repo.Update(ctx, cfg); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	return cfg, nil
}

// Delete deactivates a configuration. Rows are never removed.
func (s *CompanyConfigService) Delete(ctx context.Context, id uint) error {
	if _, err := s.getByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)

	log.Printf("✅ Company config %d deactivated", id)
	return nil
}

// InitializeDefault creates the default configuration when none is active.
// It reports whether a configuration was created.
func (s *CompanyConfigService) InitializeDefault(ctx context.Context, companyName string) (*models.CompanyConfig, bool, error) {
	existing, err := s.repo.GetActive(ctx)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if companyName == "" {
		companyName = DefaultCompanyName
	}

	cfg, err := s.Create(ctx, &CompanyConfigInput{
		CompanyName: companyName,
		Email:       DefaultCompanyEmail,
		Phone:       DefaultCompanyPhone,
		Address:     DefaultCompanyAddress,
	})
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

func (s *CompanyConfigService) getByID(ctx context.Context, id uint) (*models.CompanyConfig, error) {
	cfg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCompanyConfigNotFound
		}
		return nil, err
	}
	return cfg, nil
}

func (s *CompanyConfigService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, publicInfoCacheKey); err != nil {
		log.Printf("⚠️ Cache invalidation failed for %s: %v", publicInfoCacheKey, err)
	}
}
