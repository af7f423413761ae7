package shipping

import (
	"context"
	"sort"
	"strings"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrNoBilledItems is returned when none of the traversed delivery note
// lines references a sales invoice; the carrier payload cannot be priced
// without at least one billed line.
var ErrNoBilledItems = shared.NewDomainError("NO_BILLED_ITEMS", "No delivery note item references a sales invoice")

// ConsolidatedItem aggregates delivery note lines sharing the same
// descriptive key (name, unit, HSN code, quantity, amount). Weight
// accumulates the quantity for lines sold by the kilogram ("Kg",
// case-sensitive) and a fixed 1 per line otherwise; amount accumulates
// the line amount.
type ConsolidatedItem struct {
	ItemName    string          `json:"item_name"`
	UOM         string          `json:"uom"`
	HSNCode     string          `json:"hsn_code"`
	Qty         decimal.Decimal `json:"qty"`
	Amount      decimal.Decimal `json:"amount"`
	TotalWeight decimal.Decimal `json:"total_weight"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// GSTInvoice is the compliance block sent with a booking. It reflects the
// last invoice observed during consolidation, not one entry per invoice;
// the upstream document format carries a single block.
type GSTInvoice struct {
	InvoiceNumber  string          `json:"invoice_number"`
	InvoiceDate    string          `json:"invoice_date"`
	InvoiceValue   decimal.Decimal `json:"invoice_value"`
	EwaybillNumber string          `json:"ewaybill_number"`
	EwaybillDate   string          `json:"ewaybill_date"`
}

// Consolidation is the in-memory result of walking a shipment's delivery
// notes. It lives only for the duration of one booking request.
type Consolidation struct {
	// Items in first-seen key order.
	Items []ConsolidatedItem
	// InvoiceNumbers and InvoiceDates are deduplicated and sorted;
	// ordering is not significant to the carrier.
	InvoiceNumbers []string
	InvoiceDates   []string
	// LastInvoice and Currency reflect the final invoice observed across
	// the whole traversal.
	LastInvoice GSTInvoice
	Currency    string
}

// TotalAmount returns the sum of all consolidated item amounts. Without
// per-parcel overrides every parcel repeats this total as its order value.
func (c *Consolidation) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalAmount)
	}
	return total
}

// InvoiceNumberList returns the comma-joined invoice numbers for the
// booking header.
func (c *Consolidation) InvoiceNumberList() string {
	return strings.Join(c.InvoiceNumbers, ", ")
}

// InvoiceDateList returns the comma-joined invoice dates for the booking header.
func (c *Consolidation) InvoiceDateList() string {
	return strings.Join(c.InvoiceDates, ", ")
}

type itemKey struct {
	name   string
	uom    string
	hsn    string
	qty    string
	amount string
}

// ConsolidateDeliveryNotes walks every line of the given delivery notes,
// aggregates them by descriptive key and collects invoice metadata for
// the billed lines. Weight contribution per line is the quantity when the
// unit is exactly "Kg", otherwise 1. Invoice and e-waybill lookups that
// fail are fatal and propagate unchanged.
func ConsolidateDeliveryNotes(ctx context.Context, notes []DeliveryNote, invoices InvoiceRepository) (*Consolidation, error) {
	var (
		order       []itemKey
		accumulated = make(map[itemKey]*ConsolidatedItem)
		numberSet   = make(map[string]struct{})
		dateSet     = make(map[string]struct{})
		last        *GSTInvoice
		currency    string
	)

	for _, note := range notes {
		for _, item := range note.Items {
			if item.AgainstSalesInvoice != "" {
				invoice, err := invoices.FindByCode(ctx, item.AgainstSalesInvoice)
				if err != nil {
					return nil, err
				}
				numberSet[invoice.Code] = struct{}{}
				dateSet[invoice.PostingDateString()] = struct{}{}

				ewaybillNumber := invoice.Ewaybill
				ewaybillDate := ""
				if ewaybillNumber != "" {
					log, err := invoices.FindEwaybillByNumber(ctx, ewaybillNumber)
					if err != nil {
						return nil, err
					}
					ewaybillDate = log.CreatedOnString()
				}

				currency = invoice.Currency
				last = &GSTInvoice{
					InvoiceNumber:  invoice.Code,
					InvoiceDate:    invoice.PostingDateString(),
					InvoiceValue:   invoice.GrandTotal,
					EwaybillNumber: ewaybillNumber,
					EwaybillDate:   ewaybillDate,
				}
			}

			key := itemKey{
				name:   item.ItemName,
				uom:    item.UOM,
				hsn:    item.HSNCode,
				qty:    item.Qty.String(),
				amount: item.Amount.String(),
			}
			entry, ok := accumulated[key]
			if !ok {
				entry = &ConsolidatedItem{
					ItemName: item.ItemName,
					UOM:      item.UOM,
					HSNCode:  item.HSNCode,
					Qty:      item.Qty,
					Amount:   item.Amount,
				}
				accumulated[key] = entry
				order = append(order, key)
			}
			if item.UOM == "Kg" {
				entry.TotalWeight = entry.TotalWeight.Add(item.Qty)
			} else {
				entry.TotalWeight = entry.TotalWeight.Add(decimal.NewFromInt(1))
			}
			entry.TotalAmount = entry.TotalAmount.Add(item.Amount)
		}
	}

	if last == nil {
		return nil, ErrNoBilledItems
	}

	result := &Consolidation{
		Items:          make([]ConsolidatedItem, 0, len(order)),
		InvoiceNumbers: sortedKeys(numberSet),
		InvoiceDates:   sortedKeys(dateSet),
		LastInvoice:    *last,
		Currency:       currency,
	}
	for _, key := range order {
		result.Items = append(result.Items, *accumulated[key])
	}
	return result, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
