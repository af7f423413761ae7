package eshipz

import (
	"fmt"
	"strconv"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
)

// defaultQuoteCurrency prices rate quote items before any invoice
// currency is known.
const defaultQuoteCurrency = "INR"

// ruleBasedDescription is the fixed description sent with rule-based
// bookings, where no service was picked by the caller.
const ruleBasedDescription = "Bluedart"

func buildServicesRequest(in *shipping.RateQuoteInput) *servicesRequest {
	parcels := make([]quoteParcel, 0, len(in.Shipment.Parcels))
	for _, p := range in.Shipment.Parcels {
		parcels = append(parcels, quoteParcel{
			Description: in.Shipment.DescriptionOfContent,
			BoxType:     in.Shipment.ShipmentType,
			Weight:      weightBlock{Value: p.Weight.InexactFloat64(), Unit: "kg"},
			Dimension: dimensionBlock{
				Width:  p.Width.InexactFloat64(),
				Height: p.Height.InexactFloat64(),
				Length: p.Length.InexactFloat64(),
				Unit:   "cm",
			},
			Items: []quoteItem{{
				Description:   in.Shipment.DescriptionOfContent,
				OriginCountry: in.Pickup.CountryCode,
				Quantity:      p.Count,
				Price:         moneyBlock{Amount: in.Shipment.ValueOfGoods.InexactFloat64(), Currency: defaultQuoteCurrency},
				Weight:        weightBlock{Value: p.Weight.InexactFloat64(), Unit: "kg"},
			}},
		})
	}

	return &servicesRequest{
		IsDocument: false,
		Shipment: servicesShipment{
			IsReverse:         false,
			Purpose:           in.Shipment.Purpose,
			IsCOD:             false,
			CollectOnDelivery: moneyBlock{Amount: 0, Currency: defaultQuoteCurrency},
			ShipFrom:          toQuoteParty(in.Pickup, true),
			ShipTo:            toQuoteParty(in.Delivery, false),
			ReturnTo:          toQuoteParty(in.Pickup, true),
			Parcels:           parcels,
		},
	}
}

func toQuoteParty(p shipping.Party, primary bool) quoteParty {
	return quoteParty{
		ContactName: p.ContactName,
		CompanyName: p.CompanyName,
		Street1:     p.Street1,
		City:        p.City,
		State:       p.State,
		PostalCode:  p.PostalCode,
		Country:     p.CountryCode,
		Type:        p.PartyType,
		Phone:       p.Phone,
		Email:       p.Email,
		IsPrimary:   StringBool(primary),
	}
}

// buildCreateShipmentRequest builds a booking payload. For rule-based
// bookings in.Service is nil and the service selection fields go out as
// nulls, leaving the pick to the carrier's routing rules.
func buildCreateShipmentRequest(in *shipping.BookingInput) (*createShipmentRequest, error) {
	currency := in.Consolidation.Currency
	parcels, err := buildBookingParcels(in, currency)
	if err != nil {
		return nil, err
	}

	req := &createShipmentRequest{
		Billing:           billingBlock{PaidBy: "shipper"},
		Description:       ruleBasedDescription,
		Purpose:           in.Shipment.Purpose,
		OrderSource:       "manual",
		ParcelContents:    in.Shipment.DescriptionOfContent,
		IsDocument:        false,
		ChargedWeight:     weightBlock{Unit: "KG", Value: in.Shipment.ChargedWeight().InexactFloat64()},
		CustomerReference: in.Shipment.Code,
		InvoiceNumber:     in.Consolidation.InvoiceNumberList(),
		InvoiceDate:       in.Consolidation.InvoiceDateList(),
		IsCOD:             false,
		CollectOnDelivery: moneyBlock{Amount: 0, Currency: currency},
		Shipment: bookingShipment{
			ShipFrom:  toBookingParty(in.Pickup, true),
			ShipTo:    toBookingParty(in.Delivery, false),
			ReturnTo:  toBookingParty(in.Pickup, true),
			IsReverse: false,
			IsToPay:   false,
			Parcels:   parcels,
		},
		GSTInvoices: []wireGSTInvoice{{
			InvoiceNumber:  in.Consolidation.LastInvoice.InvoiceNumber,
			InvoiceDate:    in.Consolidation.LastInvoice.InvoiceDate,
			InvoiceValue:   in.Consolidation.LastInvoice.InvoiceValue.InexactFloat64(),
			EwaybillNumber: in.Consolidation.LastInvoice.EwaybillNumber,
			EwaybillDate:   in.Consolidation.LastInvoice.EwaybillDate,
		}},
	}

	if in.Service != nil {
		req.VendorID = &in.Service.VendorID
		req.Description = in.Service.Description
		req.Slug = &in.Service.Slug
		req.ServiceType = &in.Service.ServiceType
	}
	return req, nil
}

// buildBookingParcels assembles the parcel list. Without overrides every
// parcel repeats the full consolidated item list and the consolidated
// total as its order value; with overrides each parcel carries exactly
// the items the caller assigned to its index.
func buildBookingParcels(in *shipping.BookingInput, currency string) ([]bookingParcel, error) {
	baseItems := consolidatedItems(in.Consolidation, in.Pickup.CountryCode, currency)
	baseValue := in.Consolidation.TotalAmount().InexactFloat64()

	parcels := make([]bookingParcel, 0, len(in.Shipment.Parcels))
	for _, p := range in.Shipment.Parcels {
		items := baseItems
		orderValue := baseValue

		if len(in.Overrides) > 0 {
			assigned, ok := in.Overrides[strconv.Itoa(p.Idx)]
			if !ok {
				return nil, shared.NewDomainError("PARCEL_OVERRIDE_MISSING",
					fmt.Sprintf("No item assignment for parcel %d", p.Idx))
			}
			items = make([]bookingItem, 0, len(assigned))
			orderValue = 0
			for _, item := range assigned {
				orderValue += item.Amount.InexactFloat64()
				items = append(items, bookingItem{
					Description:   item.ItemName,
					OriginCountry: in.Pickup.CountryCode,
					SKU:           item.UOM,
					HSCode:        item.HSNCode,
					Variant:       "",
					Quantity:      item.Qty.InexactFloat64(),
					Price:         moneyBlock{Amount: item.Amount.InexactFloat64(), Currency: currency},
					Weight:        weightBlock{Value: item.Weight.InexactFloat64(), Unit: "kg"},
				})
			}
		}

		parcels = append(parcels, bookingParcel{
			Description: in.Shipment.DescriptionOfContent,
			BoxType:     in.Shipment.ShipmentType,
			Quantity:    p.Count,
			Weight:      weightBlock{Value: p.Weight.InexactFloat64(), Unit: "kg"},
			Dimension: dimensionBlock{
				Width:  p.Width.InexactFloat64(),
				Height: p.Height.InexactFloat64(),
				Length: p.Length.InexactFloat64(),
				Unit:   "cm",
			},
			Items:      items,
			OrderValue: orderValue,
		})
	}
	return parcels, nil
}

func consolidatedItems(c *shipping.Consolidation, originCountry, currency string) []bookingItem {
	items := make([]bookingItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, bookingItem{
			Description:   item.ItemName,
			OriginCountry: originCountry,
			SKU:           item.UOM,
			HSCode:        item.HSNCode,
			Variant:       "",
			Quantity:      item.Qty.InexactFloat64(),
			Price:         moneyBlock{Amount: item.TotalAmount.InexactFloat64(), Currency: currency},
			Weight:        weightBlock{Value: item.TotalWeight.InexactFloat64(), Unit: "kg"},
		})
	}
	return items
}

func toBookingParty(p shipping.Party, withTaxID bool) bookingParty {
	party := bookingParty{
		ContactName: p.ContactName,
		CompanyName: p.CompanyName,
		Street1:     p.Street1,
		Street2:     p.Street2,
		City:        p.City,
		State:       p.State,
		PostalCode:  p.PostalCode,
		Phone:       p.Phone,
		Email:       p.Email,
		Country:     p.CountryCode,
		Type:        p.PartyType,
	}
	if withTaxID {
		party.TaxID = p.TaxID
	}
	return party
}
