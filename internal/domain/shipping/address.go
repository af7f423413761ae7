package shipping

import (
	"context"
	"strings"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/google/uuid"
)

// Address mirrors the ERP address record referenced by shipments.
// Read-only from the connector's point of view.
type Address struct {
	shared.BaseEntity
	Title        string `gorm:"type:varchar(200);not null" json:"title"`
	AddressLine1 string `gorm:"type:varchar(240)" json:"address_line1"`
	AddressLine2 string `gorm:"type:varchar(240)" json:"address_line2"`
	City         string `gorm:"type:varchar(100)" json:"city"`
	State        string `gorm:"type:varchar(100)" json:"state"`
	Pincode      string `gorm:"type:varchar(20)" json:"pincode"`
	Country      string `gorm:"type:varchar(100);not null" json:"country"` // country name, resolved via Country
	Phone        string `gorm:"type:varchar(50)" json:"phone"`
	Email        string `gorm:"type:varchar(200)" json:"email"`
	GSTIN        string `gorm:"type:varchar(20)" json:"gstin"` // tax id
}

// TableName returns the table name for GORM
func (Address) TableName() string {
	return "addresses"
}

// Country maps an ERP country name to its ISO code
type Country struct {
	shared.BaseEntity
	Name string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Code string `gorm:"type:varchar(2);not null" json:"code"`
}

// TableName returns the table name for GORM
func (Country) TableName() string {
	return "countries"
}

// ISOCode returns the uppercase two-letter code the carrier expects
func (c *Country) ISOCode() string {
	return strings.ToUpper(c.Code)
}

// AddressRepository provides read access to ERP address records
type AddressRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Address, error)
}

// CountryRepository provides read access to the ERP country table.
// FindByName fails with shared.ErrNotFound when the country record is
// absent; callers propagate that as a fatal lookup error.
type CountryRepository interface {
	FindByName(ctx context.Context, name string) (*Country, error)
}
