package eshipz

import (
	"encoding/json"
	"fmt"
)

// checkpointTimeLayout is how eShipz formats timestamps in tracking
// responses, e.g. "Mon, 12 Feb 2024 14:05:00 IST".
const checkpointTimeLayout = "Mon, 02 Jan 2006 15:04:05 MST"

// StringBool is a boolean the eShipz quote and booking endpoints expect
// serialized as the strings "true" / "false" rather than JSON booleans.
type StringBool bool

// MarshalJSON implements the json.Marshaler interface
func (b StringBool) MarshalJSON() ([]byte, error) {
	if b {
		return []byte(`"true"`), nil
	}
	return []byte(`"false"`), nil
}

// UnmarshalJSON accepts both the string form and a plain JSON boolean
func (b *StringBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"true"`, `true`:
		*b = true
	case `"false"`, `false`:
		*b = false
	default:
		return fmt.Errorf("eshipz: invalid string bool %s", data)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Shared payload blocks
// ---------------------------------------------------------------------------

type moneyBlock struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type weightBlock struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type dimensionBlock struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Length float64 `json:"length"`
	Unit   string  `json:"unit"`
}

type billingBlock struct {
	PaidBy string `json:"paid_by"`
}

// ---------------------------------------------------------------------------
// Rate quote (POST /api/v2/services)
// ---------------------------------------------------------------------------

// quoteParty is the address block of a rate quote. IsPrimary is set only
// on the ship_from and return_to sides.
type quoteParty struct {
	ContactName string     `json:"contact_name"`
	CompanyName string     `json:"company_name"`
	Street1     string     `json:"street1"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	PostalCode  string     `json:"postal_code"`
	Country     string     `json:"country"`
	Type        string     `json:"type"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	IsPrimary   StringBool `json:"is_primary,omitempty"`
}

type quoteItem struct {
	Description   string      `json:"description"`
	OriginCountry string      `json:"origin_country"`
	Quantity      int         `json:"quantity"`
	Price         moneyBlock  `json:"price"`
	Weight        weightBlock `json:"weight"`
}

type quoteParcel struct {
	Description string         `json:"description"`
	BoxType     string         `json:"box_type"`
	Weight      weightBlock    `json:"weight"`
	Dimension   dimensionBlock `json:"dimension"`
	Items       []quoteItem    `json:"items"`
}

type servicesShipment struct {
	IsReverse         StringBool    `json:"is_reverse"`
	Purpose           string        `json:"purpose"`
	IsCOD             StringBool    `json:"is_cod"`
	CollectOnDelivery moneyBlock    `json:"collect_on_delivery"`
	ShipFrom          quoteParty    `json:"ship_from"`
	ShipTo            quoteParty    `json:"ship_to"`
	ReturnTo          quoteParty    `json:"return_to"`
	Parcels           []quoteParcel `json:"parcels"`
}

type servicesRequest struct {
	IsDocument StringBool       `json:"is_document"`
	Shipment   servicesShipment `json:"shipment"`
}

// servicesResponse keeps data as raw keys so a missing rates key can be
// told apart from an empty rate list.
type servicesResponse struct {
	Data map[string]json.RawMessage `json:"data"`
}

// wireRate is one carrier entry of a rate quote; each technicality row is
// one bookable service of that carrier.
type wireRate struct {
	VendorID     string             `json:"vendor_id"`
	Slug         string             `json:"slug"`
	Description  string             `json:"description"`
	Technicality []wireTechnicality `json:"technicality"`
}

type wireTechnicality struct {
	ServiceType string  `json:"service_type"`
	TotalCharge float64 `json:"total_charge"`
	Currency    string  `json:"currency"`
}

// ---------------------------------------------------------------------------
// Booking (POST /api/v1/create-shipments[/rule-based])
// ---------------------------------------------------------------------------

// bookingParty is the address block of a booking. TaxID is set only on
// the ship_from and return_to sides.
type bookingParty struct {
	ContactName string `json:"contact_name"`
	CompanyName string `json:"company_name"`
	Street1     string `json:"street1"`
	Street2     string `json:"street2"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	TaxID       string `json:"tax_id,omitempty"`
	Country     string `json:"country"`
	Type        string `json:"type"`
}

type bookingItem struct {
	Description   string      `json:"description"`
	OriginCountry string      `json:"origin_country"`
	SKU           string      `json:"sku"`
	HSCode        string      `json:"hs_code"`
	Variant       string      `json:"variant"`
	Quantity      float64     `json:"quantity"`
	Price         moneyBlock  `json:"price"`
	Weight        weightBlock `json:"weight"`
}

type bookingParcel struct {
	Description string         `json:"description"`
	BoxType     string         `json:"box_type"`
	Quantity    int            `json:"quantity"`
	Weight      weightBlock    `json:"weight"`
	Dimension   dimensionBlock `json:"dimension"`
	Items       []bookingItem  `json:"items"`
	OrderValue  float64        `json:"order_value"`
}

type bookingShipment struct {
	ShipFrom  bookingParty    `json:"ship_from"`
	ShipTo    bookingParty    `json:"ship_to"`
	ReturnTo  bookingParty    `json:"return_to"`
	IsReverse StringBool      `json:"is_reverse"`
	IsToPay   StringBool      `json:"is_to_pay"`
	Parcels   []bookingParcel `json:"parcels"`
}

type wireGSTInvoice struct {
	InvoiceNumber  string  `json:"invoice_number"`
	InvoiceDate    string  `json:"invoice_date"`
	InvoiceValue   float64 `json:"invoice_value"`
	EwaybillNumber string  `json:"ewaybill_number"`
	EwaybillDate   string  `json:"ewaybill_date"`
}

// createShipmentRequest is the booking payload. VendorID, Slug and
// ServiceType are null for rule-based bookings, where the carrier's
// routing rules pick the service.
type createShipmentRequest struct {
	Billing           billingBlock     `json:"billing"`
	VendorID          *string          `json:"vendor_id"`
	Description       string           `json:"description"`
	Slug              *string          `json:"slug"`
	Purpose           string           `json:"purpose"`
	OrderSource       string           `json:"order_source"`
	ParcelContents    string           `json:"parcel_contents"`
	IsDocument        StringBool       `json:"is_document"`
	ServiceType       *string          `json:"service_type"`
	ChargedWeight     weightBlock      `json:"charged_weight"`
	CustomerReference string           `json:"customer_reference"`
	InvoiceNumber     string           `json:"invoice_number"`
	InvoiceDate       string           `json:"invoice_date"`
	IsCOD             StringBool       `json:"is_cod"`
	CollectOnDelivery moneyBlock       `json:"collect_on_delivery"`
	Shipment          bookingShipment  `json:"shipment"`
	GSTInvoices       []wireGSTInvoice `json:"gst_invoices"`
}

type createShipmentResponse struct {
	Data *createShipmentData `json:"data"`
}

// createShipmentData carries the booking result. Files is a pointer so a
// response without the files block is detectable.
type createShipmentData struct {
	Files       *filesBlock `json:"files"`
	Slug        string      `json:"slug"`
	Status      string      `json:"status"`
	ServiceType string      `json:"service_type"`
	OrderID     string      `json:"order_id"`
}

type filesBlock struct {
	Label labelBlock `json:"label"`
}

type labelBlock struct {
	LabelMeta labelMeta `json:"label_meta"`
}

type labelMeta struct {
	URL string `json:"url"`
	AWB string `json:"awb"`
}

// ---------------------------------------------------------------------------
// Cancellation (POST /api/v1/cancel)
// ---------------------------------------------------------------------------

type cancelRequest struct {
	OrderID []string `json:"order_id"`
}

// ---------------------------------------------------------------------------
// Tracking (POST /api/v2/trackings)
// ---------------------------------------------------------------------------

type trackingRequest struct {
	TrackID string `json:"track_id"`
}

type wireCheckpoint struct {
	City   string `json:"city"`
	Remark string `json:"remark"`
	Tag    string `json:"tag"`
	Date   string `json:"date"`
}

type wireTracking struct {
	Checkpoints          []wireCheckpoint `json:"checkpoints"`
	DeliveryDate         string           `json:"delivery_date"`
	ExpectedDeliveryDate string           `json:"expected_delivery_date"`
	ShipmentStatus       string           `json:"shipment_status"`
	Tag                  string           `json:"tag"`
}
