package repositories

import (
	"context"

	"transporteuni-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// CompanyConfigRepository handles company configuration data access
type CompanyConfigRepository struct {
	db *gorm.DB
}

// NewCompanyConfigRepository creates a new company config repository
func NewCompanyConfigRepository(db *gorm.DB) *CompanyConfigRepository {
	return &CompanyConfigRepository{db: db}
}

// GetActive gets the active configuration
func (r *CompanyConfigRepository) GetActive(ctx context.Context) (*models.CompanyConfig, error) {
	var cfg models.CompanyConfig
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetByID gets a configuration by ID
func (r *CompanyConfigRepository) GetByID(ctx context.Context, id uint) (*models.CompanyConfig, error) {
	var cfg models.CompanyConfig
	if err := r.db.WithContext(ctx).First(&cfg, id).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CreateActive deactivates every configuration and stores cfg as the only active one
func (r *CompanyConfigRepository) CreateActive(ctx context.Context, cfg *models.CompanyConfig) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CompanyConfig{}).
			Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		cfg.IsActive = true
		return tx.Create(cfg).Error
	})
}

// Update saves every column of a configuration
func (r *CompanyConfigRepository) Update(ctx context.Context, cfg *models.CompanyConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

// Deactivate marks a configuration inactive
func (r *CompanyConfigRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.CompanyConfig{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// CountActive counts active configurations
func (r *CompanyConfigRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CompanyConfig{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
