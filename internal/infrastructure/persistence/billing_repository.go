package persistence

import (
	"context"
	"errors"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDeliveryNoteRepository implements DeliveryNoteRepository using GORM
type GormDeliveryNoteRepository struct {
	db *gorm.DB
}

// NewGormDeliveryNoteRepository creates a new GormDeliveryNoteRepository
func NewGormDeliveryNoteRepository(db *gorm.DB) *GormDeliveryNoteRepository {
	return &GormDeliveryNoteRepository{db: db}
}

// FindByID finds a delivery note by its ID with items loaded
func (r *GormDeliveryNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.DeliveryNote, error) {
	var note shipping.DeliveryNote
	if err := r.db.WithContext(ctx).Preload("Items").First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// FindByCode finds a delivery note by its document code with items loaded
func (r *GormDeliveryNoteRepository) FindByCode(ctx context.Context, code string) (*shipping.DeliveryNote, error) {
	var note shipping.DeliveryNote
	if err := r.db.WithContext(ctx).Preload("Items").First(&note, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// FindForShipment finds the delivery notes linked to a shipment in link order
func (r *GormDeliveryNoteRepository) FindForShipment(ctx context.Context, shipmentID uuid.UUID) ([]shipping.DeliveryNote, error) {
	var notes []shipping.DeliveryNote
	if err := r.db.WithContext(ctx).
		Joins("JOIN shipment_delivery_notes ON shipment_delivery_notes.delivery_note_id = delivery_notes.id").
		Where("shipment_delivery_notes.shipment_id = ?", shipmentID).
		Order("shipment_delivery_notes.created_at ASC").
		Preload("Items").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByCode finds a sales invoice by its document code
func (r *GormInvoiceRepository) FindByCode(ctx context.Context, code string) (*shipping.SalesInvoice, error) {
	var invoice shipping.SalesInvoice
	if err := r.db.WithContext(ctx).First(&invoice, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindEwaybillByNumber finds an e-waybill log entry by its number
func (r *GormInvoiceRepository) FindEwaybillByNumber(ctx context.Context, number string) (*shipping.EwaybillLog, error) {
	var log shipping.EwaybillLog
	if err := r.db.WithContext(ctx).First(&log, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// Ensure the repositories implement their domain interfaces
var (
	_ shipping.DeliveryNoteRepository = (*GormDeliveryNoteRepository)(nil)
	_ shipping.InvoiceRepository      = (*GormInvoiceRepository)(nil)
)
