package eshipz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/shipping/internal/domain/shipping"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// Adapter implements the CarrierGateway interface against the eShipz
// REST API. One HTTP round-trip per call, no retries.
type Adapter struct {
	config     *Config
	httpClient *http.Client
}

// NewAdapter creates a new eShipz adapter with the given configuration
func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// FetchRates requests a rate quote and flattens each carrier's service
// entries into one rate per bookable service.
func (a *Adapter) FetchRates(ctx context.Context, creds shipping.CarrierCredentials, in *shipping.RateQuoteInput) ([]shipping.CarrierRate, error) {
	status, body, err := a.postJSON(ctx, creds, servicesPath, buildServicesRequest(in))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, shipping.NewCarrierRequestError("Failed to fetch services: " + string(body))
	}

	var resp servicesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shipping.NewCarrierResponseError("Rates key not found in API response: " + string(body))
	}
	rawRates, ok := resp.Data["rates"]
	if !ok {
		return nil, shipping.NewCarrierResponseError("Rates key not found in API response: " + string(body))
	}

	var wireRates []wireRate
	if err := json.Unmarshal(rawRates, &wireRates); err != nil {
		return nil, shipping.NewCarrierResponseError("Rates key not found in API response: " + string(body))
	}

	rates := make([]shipping.CarrierRate, 0, len(wireRates))
	for _, r := range wireRates {
		for _, tech := range r.Technicality {
			rates = append(rates, shipping.CarrierRate{
				VendorID:    r.VendorID,
				Slug:        r.Slug,
				Description: r.Description,
				ServiceType: tech.ServiceType,
				TotalCharge: decimal.NewFromFloat(tech.TotalCharge),
				Currency:    tech.Currency,
			})
		}
	}
	return rates, nil
}

// BookShipment books a shipment with the service the caller selected.
func (a *Adapter) BookShipment(ctx context.Context, creds shipping.CarrierCredentials, in *shipping.BookingInput) (*shipping.BookingConfirmation, error) {
	return a.createShipment(ctx, creds, createShipmentPath, in)
}

// BookRuleBasedShipment books a shipment letting the carrier's routing
// rules pick the service.
func (a *Adapter) BookRuleBasedShipment(ctx context.Context, creds shipping.CarrierCredentials, in *shipping.BookingInput) (*shipping.BookingConfirmation, error) {
	return a.createShipment(ctx, creds, ruleBasedShipmentPath, in)
}

func (a *Adapter) createShipment(ctx context.Context, creds shipping.CarrierCredentials, path string, in *shipping.BookingInput) (*shipping.BookingConfirmation, error) {
	payload, err := buildCreateShipmentRequest(in)
	if err != nil {
		return nil, err
	}
	status, body, err := a.postJSON(ctx, creds, path, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, shipping.NewCarrierRequestError("Failed to create shipment: " + string(body))
	}

	var resp createShipmentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shipping.NewCarrierResponseError("Files key not found in API response: " + string(body))
	}
	if resp.Data == nil || resp.Data.Files == nil {
		return nil, shipping.NewCarrierResponseError("Files key not found in API response: " + string(body))
	}

	meta := resp.Data.Files.Label.LabelMeta
	return &shipping.BookingConfirmation{
		LabelURL:    meta.URL,
		AWBNumber:   meta.AWB,
		Slug:        resp.Data.Slug,
		Status:      resp.Data.Status,
		ServiceType: resp.Data.ServiceType,
		OrderID:     resp.Data.OrderID,
	}, nil
}

// CancelShipment asks the carrier to cancel a booked order.
func (a *Adapter) CancelShipment(ctx context.Context, creds shipping.CarrierCredentials, orderID string) error {
	status, body, err := a.postJSON(ctx, creds, cancelPath, cancelRequest{OrderID: []string{orderID}})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return shipping.NewCarrierRequestError("Failed to cancel shipment: " + string(body))
	}
	return nil
}

// Track fetches the tracking state for one AWB. The endpoint answers
// with a list; only the first entry is considered, and it must carry a
// checkpoints key even when the checkpoint list is empty.
func (a *Adapter) Track(ctx context.Context, creds shipping.CarrierCredentials, trackID string) (*shipping.TrackingResult, error) {
	status, body, err := a.postJSON(ctx, creds, trackingsPath, trackingRequest{TrackID: trackID})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, shipping.NewCarrierRequestError("Failed to retrieve shipment status: " + string(body))
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, shipping.NewCarrierResponseError("API response format is not a list: " + string(body))
	}
	if len(entries) == 0 {
		return nil, shipping.NewCarrierResponseError("API response is empty")
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(entries[0], &keys); err != nil {
		return nil, shipping.NewCarrierResponseError("Invalid tracking data format: " + string(body))
	}
	if _, ok := keys["checkpoints"]; !ok {
		return nil, shipping.NewCarrierResponseError("Invalid tracking data format: " + string(body))
	}

	var wire wireTracking
	if err := json.Unmarshal(entries[0], &wire); err != nil {
		return nil, shipping.NewCarrierResponseError("Invalid tracking data format: " + string(body))
	}

	result := &shipping.TrackingResult{
		DeliveryDate:         wire.DeliveryDate,
		ExpectedDeliveryDate: wire.ExpectedDeliveryDate,
		ShipmentStatus:       wire.ShipmentStatus,
		Tag:                  wire.Tag,
	}
	for _, cp := range wire.Checkpoints {
		at, err := time.Parse(checkpointTimeLayout, cp.Date)
		if err != nil {
			return nil, shipping.NewCarrierResponseError(fmt.Sprintf("Invalid checkpoint date %q", cp.Date))
		}
		result.Checkpoints = append(result.Checkpoints, shipping.TrackingCheckpoint{
			City:   cp.City,
			Remark: cp.Remark,
			Tag:    cp.Tag,
			Date:   cp.Date,
			At:     at,
		})
	}
	if wire.DeliveryDate != "" {
		at, err := time.Parse(checkpointTimeLayout, wire.DeliveryDate)
		if err != nil {
			return nil, shipping.NewCarrierResponseError(fmt.Sprintf("Invalid delivery date %q", wire.DeliveryDate))
		}
		result.DeliveryAt = &at
	}
	if wire.ExpectedDeliveryDate != "" {
		at, err := time.Parse(checkpointTimeLayout, wire.ExpectedDeliveryDate)
		if err != nil {
			return nil, shipping.NewCarrierResponseError(fmt.Sprintf("Invalid expected delivery date %q", wire.ExpectedDeliveryDate))
		}
		result.ExpectedAt = &at
	}
	return result, nil
}

// postJSON performs one POST with the compact JSON encoding and the
// token header, returning the status code and the (size-limited) body.
func (a *Adapter) postJSON(ctx context.Context, creds shipping.CarrierCredentials, path string, payload any) (int, []byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("eshipz: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("eshipz: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-TOKEN", creds.APIToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, nil, shipping.NewCarrierRequestError(fmt.Sprintf("eShipz request failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("eshipz: failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
