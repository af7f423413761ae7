package persistence

import (
	"context"
	"errors"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormShipmentRepository implements ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// FindByID finds a shipment by its ID with parcels and note links loaded
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	var shipment shipping.Shipment
	if err := r.withAssociations(r.db.WithContext(ctx)).First(&shipment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// FindByCode finds a shipment by its document code
func (r *GormShipmentRepository) FindByCode(ctx context.Context, code string) (*shipping.Shipment, error) {
	var shipment shipping.Shipment
	if err := r.withAssociations(r.db.WithContext(ctx)).First(&shipment, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// FindAll finds all shipments matching the filter
func (r *GormShipmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]shipping.Shipment, error) {
	var shipments []shipping.Shipment
	query := r.applyFilter(r.withAssociations(r.db.WithContext(ctx)).Model(&shipping.Shipment{}), filter)

	if err := query.Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// Count counts shipments matching the filter
func (r *GormShipmentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&shipping.Shipment{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists the shipment and its parcels and note links in one transaction
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *shipping.Shipment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(shipment).Error
	})
}

// withAssociations loads the parcels in position order plus the note links
func (r *GormShipmentRepository) withAssociations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Parcels", func(db *gorm.DB) *gorm.DB {
			return db.Order("idx ASC")
		}).
		Preload("DeliveryNotes")
}

// applyFilter applies pagination, search and ordering to a query
func (r *GormShipmentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, ShipmentSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormShipmentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR awb_number ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "tracking_status":
			query = query.Where("tracking_status = ?", value)
		case "service_provider":
			query = query.Where("service_provider = ?", value)
		}
	}

	return query
}

// Ensure GormShipmentRepository implements ShipmentRepository
var _ shipping.ShipmentRepository = (*GormShipmentRepository)(nil)
