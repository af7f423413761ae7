package shipping

import (
	"context"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShipmentStatus represents the lifecycle status of a shipment document
type ShipmentStatus string

const (
	ShipmentStatusDraft     ShipmentStatus = "Draft"
	ShipmentStatusSubmitted ShipmentStatus = "Submitted"
	ShipmentStatusBooked    ShipmentStatus = "Booked"
	ShipmentStatusCancelled ShipmentStatus = "Cancelled"
	ShipmentStatusCompleted ShipmentStatus = "Completed"
)

// TrackingStatus represents the carrier-side progress of a booked shipment
type TrackingStatus string

const (
	TrackingStatusNone       TrackingStatus = ""
	TrackingStatusInProgress TrackingStatus = "In Progress"
	TrackingStatusDelivered  TrackingStatus = "Delivered"
)

// Shipment-specific domain errors
var (
	ErrShipmentNotBooked = shared.NewDomainError("SHIPMENT_NOT_BOOKED", "Shipment has no carrier order to operate on")
	ErrShipmentNoAWB     = shared.NewDomainError("SHIPMENT_NO_AWB", "Shipment has no AWB number to track")
	ErrShipmentNoParcels = shared.NewDomainError("SHIPMENT_NO_PARCELS", "Shipment has no parcels")
)

// Shipment is the ERP shipment document this connector operates on.
// The document itself is created by the ERP; the connector reads its
// booking inputs and writes back the carrier tracking surface.
type Shipment struct {
	shared.BaseAggregateRoot
	Code                 string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Purpose              string          `gorm:"type:varchar(50)" json:"purpose"`
	ShipmentType         string          `gorm:"type:varchar(50)" json:"shipment_type"` // carrier box type
	DescriptionOfContent string          `gorm:"type:text" json:"description_of_content"`
	ValueOfGoods         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"value_of_goods"`

	PickupCompany       string    `gorm:"type:varchar(200)" json:"pickup_company"`
	PickupContactPerson string    `gorm:"type:varchar(100)" json:"pickup_contact_person"`
	PickupType          string    `gorm:"type:varchar(50)" json:"pickup_type"` // business / residential
	PickupAddressID     uuid.UUID `gorm:"type:uuid;not null" json:"pickup_address_id"`

	DeliveryContactName string    `gorm:"type:varchar(100)" json:"delivery_contact_name"`
	DeliveryType        string    `gorm:"type:varchar(50)" json:"delivery_type"`
	DeliveryAddressID   uuid.UUID `gorm:"type:uuid;not null" json:"delivery_address_id"`

	Status ShipmentStatus `gorm:"type:varchar(20);not null;default:'Draft'" json:"status"`

	// Carrier tracking surface, written only by this connector.
	TrackingURL          string         `gorm:"type:text" json:"tracking_url"`
	AWBNumber            string         `gorm:"type:varchar(100);index" json:"awb_number"`
	ServiceProvider      string         `gorm:"type:varchar(100)" json:"service_provider"` // carrier slug
	CarrierService       string         `gorm:"type:varchar(100)" json:"carrier_service"`  // service type
	CarrierOrderID       string         `gorm:"type:varchar(100);index" json:"carrier_order_id"`
	TrackingStatus       TrackingStatus `gorm:"type:varchar(20)" json:"tracking_status"`
	TrackingStatusInfo   string         `gorm:"type:text" json:"tracking_status_info"`
	LatestLocation       string         `gorm:"type:varchar(200)" json:"latest_location"`
	DeliveryDate         string         `gorm:"type:varchar(30)" json:"delivery_date"`
	ExpectedDeliveryDate string         `gorm:"type:varchar(30)" json:"expected_delivery_date"`
	LastUpdateReceived   string         `gorm:"type:varchar(30)" json:"last_update_received"`

	Parcels       []Parcel               `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE" json:"parcels"`
	DeliveryNotes []ShipmentDeliveryNote `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE" json:"delivery_notes"`
}

// TableName returns the table name for GORM
func (Shipment) TableName() string {
	return "shipments"
}

// Parcel is one physical package of a shipment. Weight is in kg,
// dimensions in cm. Idx is the 1-based position within the shipment and
// is the key callers use for per-parcel item overrides.
type Parcel struct {
	shared.BaseEntity
	ShipmentID uuid.UUID       `gorm:"type:uuid;not null;index" json:"shipment_id"`
	Idx        int             `gorm:"not null" json:"idx"`
	Weight     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"weight"`
	Width      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"width"`
	Height     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"height"`
	Length     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"length"`
	Count      int             `gorm:"not null;default:1" json:"count"`
}

// TableName returns the table name for GORM
func (Parcel) TableName() string {
	return "shipment_parcels"
}

// ShipmentDeliveryNote links a shipment to one of the delivery notes it carries
type ShipmentDeliveryNote struct {
	shared.BaseEntity
	ShipmentID     uuid.UUID `gorm:"type:uuid;not null;index" json:"shipment_id"`
	DeliveryNoteID uuid.UUID `gorm:"type:uuid;not null" json:"delivery_note_id"`
}

// TableName returns the table name for GORM
func (ShipmentDeliveryNote) TableName() string {
	return "shipment_delivery_notes"
}

// ChargedWeight returns the sum of all parcel weights in kg
func (s *Shipment) ChargedWeight() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Parcels {
		total = total.Add(p.Weight)
	}
	return total
}

// EnsureBookable verifies the shipment carries enough data to request a
// quote or a booking from the carrier
func (s *Shipment) EnsureBookable() error {
	if len(s.Parcels) == 0 {
		return ErrShipmentNoParcels
	}
	return nil
}

// ApplyBooking writes the carrier booking result onto the tracking surface
// and moves the document to Booked / In Progress
func (s *Shipment) ApplyBooking(conf *BookingConfirmation) {
	s.TrackingURL = conf.LabelURL
	s.AWBNumber = conf.AWBNumber
	s.ServiceProvider = conf.Slug
	s.CarrierService = conf.ServiceType
	s.CarrierOrderID = conf.OrderID
	s.TrackingStatusInfo = conf.Status
	s.Status = ShipmentStatusBooked
	s.TrackingStatus = TrackingStatusInProgress
}

// ApplyCancellation clears the tracking surface after the carrier accepted
// the cancellation
func (s *Shipment) ApplyCancellation() {
	s.TrackingURL = ""
	s.TrackingStatus = TrackingStatusNone
	s.ServiceProvider = ""
	s.CarrierService = ""
	s.TrackingStatusInfo = "Cancelled"
	s.Status = ShipmentStatusCancelled
}

// ShipmentRepository provides access to shipment documents
type ShipmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)
	FindByCode(ctx context.Context, code string) (*Shipment, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Shipment, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// Save persists the shipment including its tracking surface in a
	// single transaction; either all field writes land or none do.
	Save(ctx context.Context, shipment *Shipment) error
}
