package shipping

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erp/shipping/internal/domain/shipping"
)

func TestSettingsService_GetSettings(t *testing.T) {
	t.Run("missing record reads as disabled without token", func(t *testing.T) {
		svc := NewSettingsService(&stubSettingsRepo{}, zap.NewNop())

		view, err := svc.GetSettings(context.Background())
		require.NoError(t, err)
		assert.False(t, view.Enabled)
		assert.False(t, view.HasAPIToken)
	})

	t.Run("reports token presence without the token", func(t *testing.T) {
		repo := &stubSettingsRepo{settings: &shipping.CarrierSettings{APIToken: "token-1", Enabled: true}}
		svc := NewSettingsService(repo, zap.NewNop())

		view, err := svc.GetSettings(context.Background())
		require.NoError(t, err)
		assert.True(t, view.Enabled)
		assert.True(t, view.HasAPIToken)
	})
}

func TestSettingsService_UpdateSettings(t *testing.T) {
	t.Run("creates the record on first save", func(t *testing.T) {
		repo := &stubSettingsRepo{}
		svc := NewSettingsService(repo, zap.NewNop())

		token := "token-1"
		view, err := svc.UpdateSettings(context.Background(), UpdateSettingsInput{Enabled: true, APIToken: &token})
		require.NoError(t, err)
		assert.True(t, view.Enabled)
		assert.True(t, view.HasAPIToken)
		require.NotNil(t, repo.settings)
		assert.Equal(t, "token-1", repo.settings.APIToken)
	})

	t.Run("nil token keeps the stored secret", func(t *testing.T) {
		repo := &stubSettingsRepo{settings: &shipping.CarrierSettings{APIToken: "token-1", Enabled: true}}
		svc := NewSettingsService(repo, zap.NewNop())

		view, err := svc.UpdateSettings(context.Background(), UpdateSettingsInput{Enabled: false})
		require.NoError(t, err)
		assert.False(t, view.Enabled)
		assert.True(t, view.HasAPIToken)
		assert.Equal(t, "token-1", repo.settings.APIToken)
	})
}
