package persistence

import (
	"context"
	"errors"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAddressRepository implements AddressRepository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// FindByID finds an address by its ID
func (r *GormAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Address, error) {
	var address shipping.Address
	if err := r.db.WithContext(ctx).First(&address, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &address, nil
}

// GormCountryRepository implements CountryRepository using GORM
type GormCountryRepository struct {
	db *gorm.DB
}

// NewGormCountryRepository creates a new GormCountryRepository
func NewGormCountryRepository(db *gorm.DB) *GormCountryRepository {
	return &GormCountryRepository{db: db}
}

// FindByName finds a country by its ERP name
func (r *GormCountryRepository) FindByName(ctx context.Context, name string) (*shipping.Country, error) {
	var country shipping.Country
	if err := r.db.WithContext(ctx).First(&country, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &country, nil
}

// Ensure the repositories implement their domain interfaces
var (
	_ shipping.AddressRepository = (*GormAddressRepository)(nil)
	_ shipping.CountryRepository = (*GormCountryRepository)(nil)
)
