package shipping

import "github.com/erp/shipping/internal/domain/shipping"

// BookingResult is returned to callers after a shipment is booked.
type BookingResult struct {
	ShipmentCode    string `json:"shipment_code"`
	ServiceProvider string `json:"service_provider"`
	CarrierService  string `json:"carrier_service"`
	AWBNumber       string `json:"awb_number"`
	TrackingURL     string `json:"tracking_url"`
	LabelKey        string `json:"label_key,omitempty"`
	Status          string `json:"status"`
}

// TrackingUpdate summarizes the state of a shipment after a tracking
// refresh has been applied.
type TrackingUpdate struct {
	AWBNumber            string                  `json:"awb_number"`
	LatestLocation       string                  `json:"latest_location"`
	TrackingStatus       shipping.TrackingStatus `json:"tracking_status"`
	TrackingStatusInfo   string                  `json:"tracking_status_info"`
	ShipmentStatus       shipping.ShipmentStatus `json:"shipment_status"`
	DeliveryDate         string                  `json:"delivery_date,omitempty"`
	ExpectedDeliveryDate string                  `json:"expected_delivery_date,omitempty"`
	LastUpdateReceived   string                  `json:"last_update_received"`
	Checkpoints          int                     `json:"checkpoints"`
}
