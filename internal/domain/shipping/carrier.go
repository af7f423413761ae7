package shipping

import (
	"context"
	"sort"
	"time"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Carrier gateway errors
var (
	// ErrCarrierNotConfigured is raised before any network call when the
	// API token is missing from the carrier settings.
	ErrCarrierNotConfigured = shared.NewDomainError("CARRIER_NOT_CONFIGURED", "API token not found in eShipz settings")
	// ErrCarrierDisabled is raised when the integration is switched off.
	ErrCarrierDisabled = shared.NewDomainError("CARRIER_DISABLED", "eShipz integration is disabled")
)

// NewCarrierRequestError wraps a non-200 carrier response; the raw body
// is kept in the message for diagnosis.
func NewCarrierRequestError(message string) *shared.DomainError {
	return shared.NewDomainError("CARRIER_REQUEST_FAILED", message)
}

// NewCarrierResponseError wraps a 200 response whose shape does not match
// the protocol; the full response dump is kept in the message.
func NewCarrierResponseError(message string) *shared.DomainError {
	return shared.NewDomainError("CARRIER_BAD_RESPONSE", message)
}

// CarrierCredentials authenticates one carrier API call. The token is
// read from the settings record per operation, never cached in the
// gateway adapter.
type CarrierCredentials struct {
	APIToken string
}

// Party is a resolved, normalized shipping party block. CountryCode is
// the uppercase two-letter ISO code.
type Party struct {
	ContactName string
	CompanyName string
	Street1     string
	Street2     string
	City        string
	State       string
	PostalCode  string
	CountryCode string
	Phone       string
	Email       string
	TaxID       string
	PartyType   string // business / residential, from the shipment document
	IsPrimary   bool
}

// CarrierRate is one bookable service returned by a rate quote
type CarrierRate struct {
	VendorID    string          `json:"vendor_id"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	ServiceType string          `json:"service_type"`
	TotalCharge decimal.Decimal `json:"total_charge"`
	Currency    string          `json:"currency"`
}

// SelectedService is the caller's pick from a prior rate quote, passed
// through into a manual booking unchanged.
type SelectedService struct {
	VendorID    string `json:"vendor_id" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	ServiceType string `json:"selected_service_type"`
}

// OverrideItem is one caller-supplied line of a per-parcel item override
type OverrideItem struct {
	ItemName string          `json:"item_name" binding:"required"`
	UOM      string          `json:"uom"`
	HSNCode  string          `json:"hsn_code"`
	Qty      decimal.Decimal `json:"qty"`
	Amount   decimal.Decimal `json:"amount"`
	Weight   decimal.Decimal `json:"weight"`
}

// ParcelOverrides maps a parcel's 1-based index, as a decimal string, to
// the items that parcel carries. When present it fully replaces the
// shared consolidated item list for every parcel.
type ParcelOverrides map[string][]OverrideItem

// RateQuoteInput carries everything a rate quote payload needs
type RateQuoteInput struct {
	Shipment *Shipment
	Pickup   Party
	Delivery Party
}

// BookingInput carries everything a booking payload needs. Service is
// nil for rule-based bookings, where the carrier picks the service.
type BookingInput struct {
	Shipment      *Shipment
	Pickup        Party
	Delivery      Party
	Consolidation *Consolidation
	Overrides     ParcelOverrides
	Service       *SelectedService
}

// BookingConfirmation is the subset of a booking response written back
// onto the shipment document.
type BookingConfirmation struct {
	LabelURL    string `json:"label_url"`
	AWBNumber   string `json:"awb_number"`
	Slug        string `json:"service_provider"`
	Status      string `json:"tracking_status_info"`
	ServiceType string `json:"carrier_service"`
	OrderID     string `json:"shipment_id"`
}

// TrackingCheckpoint is one scan event of a tracked shipment. At is the
// parsed Date; Date keeps the carrier's original text.
type TrackingCheckpoint struct {
	City   string    `json:"city"`
	Remark string    `json:"remark"`
	Tag    string    `json:"tag"`
	Date   string    `json:"date"`
	At     time.Time `json:"-"`
}

// TrackingResult is a parsed tracking lookup response. DeliveryAt and
// ExpectedAt are the parsed forms of the carrier's date strings, nil when
// the response omitted them.
type TrackingResult struct {
	Checkpoints          []TrackingCheckpoint `json:"checkpoints"`
	DeliveryDate         string               `json:"delivery_date"`
	ExpectedDeliveryDate string               `json:"expected_delivery_date"`
	DeliveryAt           *time.Time           `json:"-"`
	ExpectedAt           *time.Time           `json:"-"`
	ShipmentStatus       string               `json:"shipment_status"`
	Tag                  string               `json:"tag"`
}

// Latest returns the checkpoint with the most recent timestamp, or false
// when there are no checkpoints. Sorting is stable, so checkpoints with
// equal timestamps keep their carrier-reported order.
func (t *TrackingResult) Latest() (TrackingCheckpoint, bool) {
	if len(t.Checkpoints) == 0 {
		return TrackingCheckpoint{}, false
	}
	ordered := make([]TrackingCheckpoint, len(t.Checkpoints))
	copy(ordered, t.Checkpoints)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].At.After(ordered[j].At)
	})
	return ordered[0], true
}

// CarrierGateway is the outbound port to the eShipz API. Implementations
// perform exactly one HTTP round-trip per call and surface transport and
// protocol deviations as domain errors; they never retry.
type CarrierGateway interface {
	FetchRates(ctx context.Context, creds CarrierCredentials, in *RateQuoteInput) ([]CarrierRate, error)
	BookShipment(ctx context.Context, creds CarrierCredentials, in *BookingInput) (*BookingConfirmation, error)
	BookRuleBasedShipment(ctx context.Context, creds CarrierCredentials, in *BookingInput) (*BookingConfirmation, error)
	CancelShipment(ctx context.Context, creds CarrierCredentials, orderID string) error
	Track(ctx context.Context, creds CarrierCredentials, trackID string) (*TrackingResult, error)
}
