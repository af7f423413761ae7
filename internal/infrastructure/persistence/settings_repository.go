package persistence

import (
	"context"
	"errors"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSettingsRepository implements SettingsRepository using GORM.
// The carrier settings table holds a single row.
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Get returns the settings record, or shared.ErrNotFound when it was never created
func (r *GormSettingsRepository) Get(ctx context.Context) (*shipping.CarrierSettings, error) {
	var settings shipping.CarrierSettings
	if err := r.db.WithContext(ctx).Order("created_at ASC").First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &settings, nil
}

// Save persists the settings record, creating it on first use
func (r *GormSettingsRepository) Save(ctx context.Context, settings *shipping.CarrierSettings) error {
	if settings.ID == uuid.Nil {
		settings.BaseEntity = shared.NewBaseEntity()
	}
	return r.db.WithContext(ctx).Save(settings).Error
}

// Ensure GormSettingsRepository implements SettingsRepository
var _ shipping.SettingsRepository = (*GormSettingsRepository)(nil)
