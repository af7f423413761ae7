package shipping

import (
	"context"

	"github.com/erp/shipping/internal/domain/shared"
)

// CarrierSettings is the singleton settings record for the eShipz
// integration, the counterpart of the ERP's carrier settings page.
type CarrierSettings struct {
	shared.BaseEntity
	APIToken string `gorm:"type:varchar(200)" json:"-"`
	Enabled  bool   `gorm:"not null;default:true" json:"enabled"`
}

// TableName returns the table name for GORM
func (CarrierSettings) TableName() string {
	return "carrier_settings"
}

// Credentials validates the settings and returns the credentials for one
// carrier call. A missing token is a configuration error surfaced before
// any network activity.
func (s *CarrierSettings) Credentials() (CarrierCredentials, error) {
	if !s.Enabled {
		return CarrierCredentials{}, ErrCarrierDisabled
	}
	if s.APIToken == "" {
		return CarrierCredentials{}, ErrCarrierNotConfigured
	}
	return CarrierCredentials{APIToken: s.APIToken}, nil
}

// SettingsRepository provides access to the singleton carrier settings
type SettingsRepository interface {
	// Get returns the settings record, or shared.ErrNotFound when it was
	// never created.
	Get(ctx context.Context) (*CarrierSettings, error)
	Save(ctx context.Context, settings *CarrierSettings) error
}
