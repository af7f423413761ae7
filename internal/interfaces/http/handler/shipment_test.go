package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	shippingapp "github.com/erp/shipping/internal/application/shipping"
	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
	"github.com/erp/shipping/internal/interfaces/http/dto"
)

// Mock implementations for shipping repositories

type mockShipmentRepository struct {
	shipments map[uuid.UUID]*shipping.Shipment
}

func newMockShipmentRepository() *mockShipmentRepository {
	return &mockShipmentRepository{shipments: make(map[uuid.UUID]*shipping.Shipment)}
}

func (m *mockShipmentRepository) FindByID(_ context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	if s, ok := m.shipments[id]; ok {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockShipmentRepository) FindByCode(_ context.Context, code string) (*shipping.Shipment, error) {
	for _, s := range m.shipments {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockShipmentRepository) FindAll(_ context.Context, _ shared.Filter) ([]shipping.Shipment, error) {
	out := make([]shipping.Shipment, 0, len(m.shipments))
	for _, s := range m.shipments {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockShipmentRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(m.shipments)), nil
}

func (m *mockShipmentRepository) Save(_ context.Context, s *shipping.Shipment) error {
	m.shipments[s.ID] = s
	return nil
}

type mockAddressRepository struct {
	addresses map[uuid.UUID]*shipping.Address
}

func (m *mockAddressRepository) FindByID(_ context.Context, id uuid.UUID) (*shipping.Address, error) {
	if a, ok := m.addresses[id]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

type mockCountryRepository struct{}

func (mockCountryRepository) FindByName(_ context.Context, name string) (*shipping.Country, error) {
	if name == "India" {
		return &shipping.Country{Name: "India", Code: "in"}, nil
	}
	return nil, shared.ErrNotFound
}

type mockDeliveryNoteRepository struct {
	notes []shipping.DeliveryNote
}

func (m *mockDeliveryNoteRepository) FindByID(_ context.Context, id uuid.UUID) (*shipping.DeliveryNote, error) {
	for i := range m.notes {
		if m.notes[i].ID == id {
			return &m.notes[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockDeliveryNoteRepository) FindByCode(_ context.Context, code string) (*shipping.DeliveryNote, error) {
	for i := range m.notes {
		if m.notes[i].Code == code {
			return &m.notes[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockDeliveryNoteRepository) FindForShipment(_ context.Context, _ uuid.UUID) ([]shipping.DeliveryNote, error) {
	return m.notes, nil
}

type mockInvoiceRepository struct{}

func (mockInvoiceRepository) FindByCode(_ context.Context, code string) (*shipping.SalesInvoice, error) {
	return &shipping.SalesInvoice{Code: code, Currency: "INR", GrandTotal: decimal.NewFromInt(1180)}, nil
}

func (mockInvoiceRepository) FindEwaybillByNumber(_ context.Context, _ string) (*shipping.EwaybillLog, error) {
	return nil, shared.ErrNotFound
}

type mockSettingsRepository struct {
	settings *shipping.CarrierSettings
}

func (m *mockSettingsRepository) Get(_ context.Context) (*shipping.CarrierSettings, error) {
	if m.settings == nil {
		return nil, shared.ErrNotFound
	}
	return m.settings, nil
}

func (m *mockSettingsRepository) Save(_ context.Context, s *shipping.CarrierSettings) error {
	m.settings = s
	return nil
}

type mockCarrierGateway struct {
	rates        []shipping.CarrierRate
	confirmation *shipping.BookingConfirmation
	tracking     *shipping.TrackingResult
	err          error
}

func (g *mockCarrierGateway) FetchRates(_ context.Context, _ shipping.CarrierCredentials, _ *shipping.RateQuoteInput) ([]shipping.CarrierRate, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.rates, nil
}

func (g *mockCarrierGateway) BookShipment(_ context.Context, _ shipping.CarrierCredentials, _ *shipping.BookingInput) (*shipping.BookingConfirmation, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.confirmation, nil
}

func (g *mockCarrierGateway) BookRuleBasedShipment(_ context.Context, _ shipping.CarrierCredentials, _ *shipping.BookingInput) (*shipping.BookingConfirmation, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.confirmation, nil
}

func (g *mockCarrierGateway) CancelShipment(_ context.Context, _ shipping.CarrierCredentials, _ string) error {
	return g.err
}

func (g *mockCarrierGateway) Track(_ context.Context, _ shipping.CarrierCredentials, _ string) (*shipping.TrackingResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.tracking, nil
}

type shipmentHandlerFixture struct {
	router   *gin.Engine
	shipment *shipping.Shipment
	note     shipping.DeliveryNote
	repo     *mockShipmentRepository
	gateway  *mockCarrierGateway
	settings *mockSettingsRepository
}

func newShipmentHandlerFixture(t *testing.T) *shipmentHandlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pickupAddrID := uuid.New()
	deliveryAddrID := uuid.New()
	shipment := &shipping.Shipment{
		Code:                 "SHIP-0001",
		Purpose:              "Sale",
		DescriptionOfContent: "Spare parts",
		ValueOfGoods:         decimal.NewFromInt(1180),
		PickupCompany:        "Acme Industries",
		PickupContactPerson:  "Asha Rao",
		PickupType:           "business",
		PickupAddressID:      pickupAddrID,
		DeliveryContactName:  "Vikram Shah",
		DeliveryType:         "residential",
		DeliveryAddressID:    deliveryAddrID,
		Status:               shipping.ShipmentStatusSubmitted,
		Parcels: []shipping.Parcel{
			{Idx: 1, Weight: decimal.NewFromFloat(2.5), Length: decimal.NewFromInt(30), Width: decimal.NewFromInt(20), Height: decimal.NewFromInt(10), Count: 1},
		},
	}
	shipment.ID = uuid.New()

	note := shipping.DeliveryNote{
		Code: "DN-0001",
		Items: []shipping.DeliveryNoteItem{
			{ItemName: "Bearing", Qty: decimal.NewFromInt(4), UOM: "Nos", HSNCode: "8482", Amount: decimal.NewFromInt(1180), AgainstSalesInvoice: "SINV-0001"},
		},
	}
	note.ID = uuid.New()

	repo := newMockShipmentRepository()
	repo.shipments[shipment.ID] = shipment
	addresses := &mockAddressRepository{addresses: map[uuid.UUID]*shipping.Address{
		pickupAddrID:   {Title: "Acme Works", AddressLine1: "12 Industrial Estate", City: "Pune", State: "Maharashtra", Pincode: "411001", Country: "India", Phone: "+91 9000000001", Email: "ops@acme.example", GSTIN: "27AAAAA0000A1Z5"},
		deliveryAddrID: {Title: "Shah Residence", AddressLine1: "4 Lake View Road", City: "Mumbai", State: "Maharashtra", Pincode: "400001", Country: "India", Phone: "+91 9000000002", Email: "vikram@example.com"},
	}}
	gateway := &mockCarrierGateway{
		rates: []shipping.CarrierRate{{VendorID: "v1", Slug: "bluedart", Description: "Bluedart", ServiceType: "surface", TotalCharge: decimal.NewFromFloat(118.5), Currency: "INR"}},
		confirmation: &shipping.BookingConfirmation{
			LabelURL:    "https://labels.example/SHIP-0001.pdf",
			AWBNumber:   "AWB123",
			Slug:        "bluedart",
			Status:      "Created",
			ServiceType: "surface",
			OrderID:     "ES123",
		},
	}
	settings := &mockSettingsRepository{settings: &shipping.CarrierSettings{APIToken: "token-1", Enabled: true}}

	svc := shippingapp.NewShipmentService(
		repo, addresses, mockCountryRepository{},
		&mockDeliveryNoteRepository{notes: []shipping.DeliveryNote{note}},
		mockInvoiceRepository{}, settings, gateway, nil, nil, zap.NewNop(),
	)

	router := gin.New()
	api := router.Group("/api/v1")
	NewShipmentHandler(svc).RegisterRoutes(api)

	return &shipmentHandlerFixture{
		router:   router,
		shipment: shipment,
		note:     note,
		repo:     repo,
		gateway:  gateway,
		settings: settings,
	}
}

func (f *shipmentHandlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestShipmentHandler_List(t *testing.T) {
	f := newShipmentHandlerFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/shipments?page=1&page_size=10", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 10, resp.Meta.PageSize)
}

func TestShipmentHandler_Get(t *testing.T) {
	f := newShipmentHandlerFixture(t)

	t.Run("returns the shipment", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/shipments/"+f.shipment.ID.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "SHIP-0001")
	})

	t.Run("invalid id", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/shipments/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/shipments/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})
}

func TestShipmentHandler_FetchServices(t *testing.T) {
	f := newShipmentHandlerFixture(t)

	t.Run("returns carrier rates", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/shipments/"+f.shipment.ID.String()+"/services", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "bluedart")
	})

	t.Run("integration disabled", func(t *testing.T) {
		f := newShipmentHandlerFixture(t)
		f.settings.settings.Enabled = false

		w := f.do(t, http.MethodGet, "/api/v1/shipments/"+f.shipment.ID.String()+"/services", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeCarrierDisabled, resp.Error.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		f := newShipmentHandlerFixture(t)
		f.settings.settings = nil

		w := f.do(t, http.MethodGet, "/api/v1/shipments/"+f.shipment.ID.String()+"/services", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeCarrierNotConfigured, resp.Error.Code)
		assert.Equal(t, "API token not found in eShipz settings", resp.Error.Message)
	})
}

func TestShipmentHandler_Book(t *testing.T) {
	t.Run("books with the selected service", func(t *testing.T) {
		f := newShipmentHandlerFixture(t)

		body := BookShipmentRequest{
			Service: shipping.SelectedService{VendorID: "v1", Slug: "bluedart", ServiceType: "surface"},
		}
		w := f.do(t, http.MethodPost, "/api/v1/shipments/"+f.shipment.ID.String()+"/book", body)
		assert.Equal(t, http.StatusCreated, w.Code)

		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		var result shippingapp.BookingResult
		require.NoError(t, json.Unmarshal(data, &result))
		assert.Equal(t, "AWB123", result.AWBNumber)
		assert.Equal(t, "bluedart", result.ServiceProvider)
		assert.Equal(t, string(shipping.ShipmentStatusBooked), result.Status)
	})

	t.Run("missing service is a validation error", func(t *testing.T) {
		f := newShipmentHandlerFixture(t)

		w := f.do(t, http.MethodPost, "/api/v1/shipments/"+f.shipment.ID.String()+"/book", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("shipment without parcels is rejected", func(t *testing.T) {
		f := newShipmentHandlerFixture(t)
		f.shipment.Parcels = nil

		body := BookShipmentRequest{
			Service: shipping.SelectedService{VendorID: "v1", Slug: "bluedart"},
		}
		w := f.do(t, http.MethodPost, "/api/v1/shipments/"+f.shipment.ID.String()+"/book", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeShipmentNoParcels, resp.Error.Code)
	})
}

func TestShipmentHandler_BookRuleBased(t *testing.T) {
	f := newShipmentHandlerFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/shipments/"+f.shipment.ID.String()+"/book/rule-based", map[string]any{})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "AWB123")
}

func TestShipmentHandler_Cancel(t *testing.T) {
	t.Run("cancels a booked shipment", func(t *testing.T) {
		f := newShipmentHandlerFixture(t)
		f.shipment.ApplyBooking(f.gateway.confirmation)

		w := f.do(t, http.MethodPost, "/api/v1/shipments/"+f.shipment.ID.String()+"/cancel", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, shipping.ShipmentStatusCancelled, f.shipment.Status)
		assert.Empty(t, f.shipment.ServiceProvider)
		assert.Equal(t, "Cancelled", f.shipment.TrackingStatusInfo)
	})

	t.Run("unbooked shipment conflicts", func(t *testing.T) {
		f := newShipmentHandlerFixture(t)

		w := f.do(t, http.MethodPost, "/api/v1/shipments/"+f.shipment.ID.String()+"/cancel", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeShipmentNotBooked, resp.Error.Code)
	})
}

func TestShipmentHandler_RefreshTracking(t *testing.T) {
	t.Run("applies the tracking state", func(t *testing.T) {
		f := newShipmentHandlerFixture(t)
		f.shipment.ApplyBooking(f.gateway.confirmation)
		f.gateway.tracking = &shipping.TrackingResult{
			Checkpoints: []shipping.TrackingCheckpoint{{City: "Mumbai", Remark: "Out for delivery", Tag: "InTransit"}},
			Tag:         "InTransit",
		}

		w := f.do(t, http.MethodPost, "/api/v1/shipments/"+f.shipment.ID.String()+"/tracking/refresh", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeResponse(t, w)
		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		var update shippingapp.TrackingUpdate
		require.NoError(t, json.Unmarshal(data, &update))
		assert.Equal(t, "AWB123", update.AWBNumber)
		assert.Equal(t, "Mumbai", update.LatestLocation)
		assert.Equal(t, shipping.TrackingStatusInProgress, update.TrackingStatus)
		assert.Equal(t, 1, update.Checkpoints)
	})

	t.Run("shipment without AWB conflicts", func(t *testing.T) {
		f := newShipmentHandlerFixture(t)

		w := f.do(t, http.MethodPost, "/api/v1/shipments/"+f.shipment.ID.String()+"/tracking/refresh", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeShipmentNoAWB, resp.Error.Code)
	})
}

func TestShipmentHandler_DeliveryNoteItems(t *testing.T) {
	f := newShipmentHandlerFixture(t)

	t.Run("returns the billed lines", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/delivery-notes/"+f.note.ID.String()+"/items", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Bearing")
		assert.Contains(t, w.Body.String(), "SINV-0001")
	})

	t.Run("unknown note", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/delivery-notes/"+uuid.NewString()+"/items", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
