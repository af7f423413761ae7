package shipping

import (
	"context"
	"time"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryNote mirrors the ERP delivery note a shipment was packed from
type DeliveryNote struct {
	shared.BaseEntity
	Code  string             `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Items []DeliveryNoteItem `gorm:"foreignKey:DeliveryNoteID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName returns the table name for GORM
func (DeliveryNote) TableName() string {
	return "delivery_notes"
}

// DeliveryNoteItem is one billed line of a delivery note.
// AgainstSalesInvoice carries the invoice code when the line was billed.
type DeliveryNoteItem struct {
	shared.BaseEntity
	DeliveryNoteID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"delivery_note_id"`
	ItemName            string          `gorm:"type:varchar(200);not null" json:"item_name"`
	Qty                 decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"qty"`
	UOM                 string          `gorm:"type:varchar(50)" json:"uom"`
	HSNCode             string          `gorm:"type:varchar(20)" json:"hsn_code"`
	Amount              decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount"`
	AgainstSalesInvoice string          `gorm:"type:varchar(50);index" json:"against_sales_invoice"`
}

// TableName returns the table name for GORM
func (DeliveryNoteItem) TableName() string {
	return "delivery_note_items"
}

// SalesInvoice mirrors the ERP sales invoice referenced by delivery note lines
type SalesInvoice struct {
	shared.BaseEntity
	Code        string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	PostingDate time.Time       `gorm:"not null" json:"posting_date"`
	Currency    string          `gorm:"type:varchar(10);not null" json:"currency"`
	GrandTotal  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"grand_total"`
	Ewaybill    string          `gorm:"type:varchar(50)" json:"ewaybill"` // e-waybill number, empty when none
}

// TableName returns the table name for GORM
func (SalesInvoice) TableName() string {
	return "sales_invoices"
}

// PostingDateString returns the posting date the way the ERP prints it
func (i *SalesInvoice) PostingDateString() string {
	return i.PostingDate.Format("2006-01-02")
}

// EwaybillLog mirrors the ERP e-waybill compliance log
type EwaybillLog struct {
	shared.BaseEntity
	Number    string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"number"`
	CreatedOn time.Time `gorm:"not null" json:"created_on"`
}

// TableName returns the table name for GORM
func (EwaybillLog) TableName() string {
	return "ewaybill_logs"
}

// CreatedOnString returns the creation date the way the ERP prints it
func (l *EwaybillLog) CreatedOnString() string {
	return l.CreatedOn.Format("2006-01-02")
}

// DeliveryNoteRepository provides read access to delivery notes and their items
type DeliveryNoteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DeliveryNote, error)
	FindByCode(ctx context.Context, code string) (*DeliveryNote, error)
	// FindForShipment returns the delivery notes linked to a shipment in
	// link order, items preloaded.
	FindForShipment(ctx context.Context, shipmentID uuid.UUID) ([]DeliveryNote, error)
}

// InvoiceRepository provides read access to sales invoices and e-waybill logs
type InvoiceRepository interface {
	FindByCode(ctx context.Context, code string) (*SalesInvoice, error)
	FindEwaybillByNumber(ctx context.Context, number string) (*EwaybillLog, error)
}
