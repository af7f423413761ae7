package shipping

import (
	"context"
	"errors"
	"time"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// erpDateTimeLayout is how the ERP prints timestamps on documents.
const erpDateTimeLayout = "2006-01-02 15:04:05"

// ShipmentService orchestrates the carrier integration: rate quotes,
// bookings, cancellations and tracking refreshes against the shipment
// documents.
type ShipmentService struct {
	shipments shipping.ShipmentRepository
	addresses shipping.AddressRepository
	countries shipping.CountryRepository
	notes     shipping.DeliveryNoteRepository
	invoices  shipping.InvoiceRepository
	settings  shipping.SettingsRepository
	gateway   shipping.CarrierGateway
	rates     RateCache     // optional, nil disables quote caching
	labels    LabelArchiver // optional, nil disables label archiving
	logger    *zap.Logger
	now       func() time.Time
}

// NewShipmentService creates a new ShipmentService
func NewShipmentService(
	shipments shipping.ShipmentRepository,
	addresses shipping.AddressRepository,
	countries shipping.CountryRepository,
	notes shipping.DeliveryNoteRepository,
	invoices shipping.InvoiceRepository,
	settings shipping.SettingsRepository,
	gateway shipping.CarrierGateway,
	rates RateCache,
	labels LabelArchiver,
	logger *zap.Logger,
) *ShipmentService {
	return &ShipmentService{
		shipments: shipments,
		addresses: addresses,
		countries: countries,
		notes:     notes,
		invoices:  invoices,
		settings:  settings,
		gateway:   gateway,
		rates:     rates,
		labels:    labels,
		logger:    logger,
		now:       time.Now,
	}
}

// GetShipment returns one shipment document with parcels and note links
func (s *ShipmentService) GetShipment(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	return s.shipments.FindByID(ctx, id)
}

// ListShipments returns a page of shipment documents
func (s *ShipmentService) ListShipments(ctx context.Context, filter shared.Filter) (*shared.Paginated[shipping.Shipment], error) {
	items, err := s.shipments.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.shipments.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetDeliveryNoteItems returns the billed lines of one delivery note, the
// raw material for per-parcel item overrides.
func (s *ShipmentService) GetDeliveryNoteItems(ctx context.Context, noteID uuid.UUID) ([]shipping.DeliveryNoteItem, error) {
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	return note.Items, nil
}

// FetchAvailableServices returns the bookable carrier services for a
// shipment. Quotes are cached per shipment; refresh bypasses and
// repopulates the cache. Credentials are validated before any network or
// cache activity.
func (s *ShipmentService) FetchAvailableServices(ctx context.Context, shipmentID uuid.UUID, refresh bool) ([]shipping.CarrierRate, error) {
	shipment, err := s.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := shipment.EnsureBookable(); err != nil {
		return nil, err
	}
	creds, err := s.credentials(ctx)
	if err != nil {
		return nil, err
	}

	cacheKey := "rates:" + shipment.Code
	if s.rates != nil && !refresh {
		cached, ok, err := s.rates.Get(ctx, cacheKey)
		if err != nil {
			s.logger.Warn("rate cache read failed", zap.String("shipment", shipment.Code), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	pickup, delivery, err := s.resolveParties(ctx, shipment)
	if err != nil {
		return nil, err
	}
	quotes, err := s.gateway.FetchRates(ctx, creds, &shipping.RateQuoteInput{
		Shipment: shipment,
		Pickup:   pickup,
		Delivery: delivery,
	})
	if err != nil {
		return nil, err
	}

	if s.rates != nil {
		if err := s.rates.Put(ctx, cacheKey, quotes); err != nil {
			s.logger.Warn("rate cache write failed", zap.String("shipment", shipment.Code), zap.Error(err))
		}
	}
	return quotes, nil
}

// CreateShipment books a shipment with the service the caller picked from
// a prior rate quote.
func (s *ShipmentService) CreateShipment(ctx context.Context, shipmentID uuid.UUID, service shipping.SelectedService, overrides shipping.ParcelOverrides) (*BookingResult, error) {
	return s.book(ctx, shipmentID, &service, overrides, false)
}

// CreateRuleBasedShipment books a shipment letting the carrier's routing
// rules pick the service.
func (s *ShipmentService) CreateRuleBasedShipment(ctx context.Context, shipmentID uuid.UUID, overrides shipping.ParcelOverrides) (*BookingResult, error) {
	return s.book(ctx, shipmentID, nil, overrides, true)
}

func (s *ShipmentService) book(ctx context.Context, shipmentID uuid.UUID, service *shipping.SelectedService, overrides shipping.ParcelOverrides, ruleBased bool) (*BookingResult, error) {
	shipment, err := s.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := shipment.EnsureBookable(); err != nil {
		return nil, err
	}
	creds, err := s.credentials(ctx)
	if err != nil {
		return nil, err
	}
	pickup, delivery, err := s.resolveParties(ctx, shipment)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.FindForShipment(ctx, shipment.ID)
	if err != nil {
		return nil, err
	}
	consolidation, err := shipping.ConsolidateDeliveryNotes(ctx, notes, s.invoices)
	if err != nil {
		return nil, err
	}

	input := &shipping.BookingInput{
		Shipment:      shipment,
		Pickup:        pickup,
		Delivery:      delivery,
		Consolidation: consolidation,
		Overrides:     overrides,
		Service:       service,
	}
	var confirmation *shipping.BookingConfirmation
	if ruleBased {
		confirmation, err = s.gateway.BookRuleBasedShipment(ctx, creds, input)
	} else {
		confirmation, err = s.gateway.BookShipment(ctx, creds, input)
	}
	if err != nil {
		return nil, err
	}

	shipment.ApplyBooking(confirmation)
	if err := s.shipments.Save(ctx, shipment); err != nil {
		return nil, err
	}
	s.invalidateRates(ctx, shipment.Code)

	labelKey := ""
	if s.labels != nil && confirmation.LabelURL != "" {
		labelKey, err = s.labels.Archive(ctx, shipment.Code, confirmation.LabelURL)
		if err != nil {
			// The label stays reachable at the carrier URL, so archive
			// failures never fail the booking.
			s.logger.Warn("label archive failed",
				zap.String("shipment", shipment.Code),
				zap.String("awb", confirmation.AWBNumber),
				zap.Error(err))
			labelKey = ""
		}
	}

	s.logger.Info("shipment booked",
		zap.String("shipment", shipment.Code),
		zap.String("provider", confirmation.Slug),
		zap.String("awb", confirmation.AWBNumber),
		zap.Bool("rule_based", ruleBased))

	return &BookingResult{
		ShipmentCode:    shipment.Code,
		ServiceProvider: shipment.ServiceProvider,
		CarrierService:  shipment.CarrierService,
		AWBNumber:       shipment.AWBNumber,
		TrackingURL:     shipment.TrackingURL,
		LabelKey:        labelKey,
		Status:          string(shipment.Status),
	}, nil
}

// CancelShipment asks the carrier to cancel the booked order and clears
// the tracking surface once the carrier accepted.
func (s *ShipmentService) CancelShipment(ctx context.Context, shipmentID uuid.UUID) error {
	shipment, err := s.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		return err
	}
	if shipment.CarrierOrderID == "" {
		return shipping.ErrShipmentNotBooked
	}
	creds, err := s.credentials(ctx)
	if err != nil {
		return err
	}
	if err := s.gateway.CancelShipment(ctx, creds, shipment.CarrierOrderID); err != nil {
		return err
	}

	shipment.ApplyCancellation()
	if err := s.shipments.Save(ctx, shipment); err != nil {
		return err
	}
	s.invalidateRates(ctx, shipment.Code)
	s.logger.Info("shipment cancelled", zap.String("shipment", shipment.Code))
	return nil
}

// RefreshTracking fetches the current tracking state for the shipment's
// AWB and writes it back onto the document. The status info mirrors the
// latest checkpoint remark and is cleared when the carrier reported no
// checkpoints yet.
func (s *ShipmentService) RefreshTracking(ctx context.Context, shipmentID uuid.UUID) (*TrackingUpdate, error) {
	shipment, err := s.shipments.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.AWBNumber == "" {
		return nil, shipping.ErrShipmentNoAWB
	}
	creds, err := s.credentials(ctx)
	if err != nil {
		return nil, err
	}
	result, err := s.gateway.Track(ctx, creds, shipment.AWBNumber)
	if err != nil {
		return nil, err
	}

	remark := ""
	if latest, ok := result.Latest(); ok {
		shipment.LatestLocation = latest.City
		remark = latest.Remark
	}
	shipment.TrackingStatusInfo = remark

	switch result.Tag {
	case "Delivered":
		shipment.Status = shipping.ShipmentStatusCompleted
		shipment.TrackingStatus = shipping.TrackingStatusDelivered
	case "InTransit":
		shipment.TrackingStatus = shipping.TrackingStatusInProgress
	}

	if result.DeliveryAt != nil {
		shipment.DeliveryDate = result.DeliveryAt.Format(erpDateTimeLayout)
	}
	if result.ExpectedAt != nil {
		shipment.ExpectedDeliveryDate = result.ExpectedAt.Format(erpDateTimeLayout)
	}
	shipment.LastUpdateReceived = s.now().Format(erpDateTimeLayout)

	if err := s.shipments.Save(ctx, shipment); err != nil {
		return nil, err
	}
	return &TrackingUpdate{
		AWBNumber:            shipment.AWBNumber,
		LatestLocation:       shipment.LatestLocation,
		TrackingStatus:       shipment.TrackingStatus,
		TrackingStatusInfo:   shipment.TrackingStatusInfo,
		ShipmentStatus:       shipment.Status,
		DeliveryDate:         shipment.DeliveryDate,
		ExpectedDeliveryDate: shipment.ExpectedDeliveryDate,
		LastUpdateReceived:   shipment.LastUpdateReceived,
		Checkpoints:          len(result.Checkpoints),
	}, nil
}

// credentials loads the settings record and validates it into carrier
// credentials. A missing record reads the same as a missing token.
func (s *ShipmentService) credentials(ctx context.Context) (shipping.CarrierCredentials, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shipping.CarrierCredentials{}, shipping.ErrCarrierNotConfigured
		}
		return shipping.CarrierCredentials{}, err
	}
	return settings.Credentials()
}

// resolveParties loads and normalizes the pickup and delivery address
// blocks. A country name without an ISO mapping is a fatal lookup error.
func (s *ShipmentService) resolveParties(ctx context.Context, shipment *shipping.Shipment) (shipping.Party, shipping.Party, error) {
	pickup, err := s.resolveParty(ctx, shipment.PickupAddressID, func(addr *shipping.Address) shipping.Party {
		return shipping.Party{
			ContactName: shipment.PickupContactPerson,
			CompanyName: shipment.PickupCompany,
			TaxID:       addr.GSTIN,
			PartyType:   shipment.PickupType,
			IsPrimary:   true,
		}
	})
	if err != nil {
		return shipping.Party{}, shipping.Party{}, err
	}
	delivery, err := s.resolveParty(ctx, shipment.DeliveryAddressID, func(addr *shipping.Address) shipping.Party {
		return shipping.Party{
			ContactName: shipment.DeliveryContactName,
			CompanyName: addr.Title,
			PartyType:   shipment.DeliveryType,
			IsPrimary:   true,
		}
	})
	if err != nil {
		return shipping.Party{}, shipping.Party{}, err
	}
	return pickup, delivery, nil
}

func (s *ShipmentService) resolveParty(ctx context.Context, addressID uuid.UUID, seed func(*shipping.Address) shipping.Party) (shipping.Party, error) {
	addr, err := s.addresses.FindByID(ctx, addressID)
	if err != nil {
		return shipping.Party{}, err
	}
	country, err := s.countries.FindByName(ctx, addr.Country)
	if err != nil {
		return shipping.Party{}, err
	}
	party := seed(addr)
	party.Street1 = addr.AddressLine1
	party.Street2 = addr.AddressLine2
	party.City = addr.City
	party.State = addr.State
	party.PostalCode = addr.Pincode
	party.CountryCode = country.ISOCode()
	party.Phone = addr.Phone
	party.Email = addr.Email
	return party, nil
}

func (s *ShipmentService) invalidateRates(ctx context.Context, shipmentCode string) {
	if s.rates == nil {
		return
	}
	if err := s.rates.Delete(ctx, "rates:"+shipmentCode); err != nil {
		s.logger.Warn("rate cache invalidation failed", zap.String("shipment", shipmentCode), zap.Error(err))
	}
}
