package shipping

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
)

// SettingsView is the settings record as exposed over the API. The API
// token itself is never echoed back, only whether one is set.
type SettingsView struct {
	Enabled     bool `json:"enabled"`
	HasAPIToken bool `json:"has_api_token"`
}

// UpdateSettingsInput carries a settings update. A nil APIToken leaves
// the stored token untouched so the page can be saved without re-entering
// the secret.
type UpdateSettingsInput struct {
	Enabled  bool    `json:"enabled"`
	APIToken *string `json:"api_token"`
}

// SettingsService manages the singleton carrier settings record.
type SettingsService struct {
	settings shipping.SettingsRepository
	logger   *zap.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settings shipping.SettingsRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{settings: settings, logger: logger}
}

// GetSettings returns the current settings. A record that was never
// created reads as disabled with no token.
func (s *SettingsService) GetSettings(ctx context.Context) (*SettingsView, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return &SettingsView{}, nil
		}
		return nil, err
	}
	return &SettingsView{
		Enabled:     settings.Enabled,
		HasAPIToken: settings.APIToken != "",
	}, nil
}

// UpdateSettings updates the settings record, creating it on first save.
func (s *SettingsService) UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*SettingsView, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		settings = &shipping.CarrierSettings{}
	}

	settings.Enabled = input.Enabled
	if input.APIToken != nil {
		settings.APIToken = *input.APIToken
	}
	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Info("carrier settings updated", zap.Bool("enabled", settings.Enabled))
	return &SettingsView{
		Enabled:     settings.Enabled,
		HasAPIToken: settings.APIToken != "",
	}, nil
}
