package persistence

import (
	"context"
	"testing"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupSettingsTestDB creates an in-memory SQLite database with the settings table
func setupSettingsTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&shipping.CarrierSettings{})
	require.NoError(t, err)

	return db
}

func TestGormSettingsRepository(t *testing.T) {
	db := setupSettingsTestDB(t)
	repo := NewGormSettingsRepository(db)
	ctx := context.Background()

	t.Run("Get returns ErrNotFound before first save", func(t *testing.T) {
		_, err := repo.Get(ctx)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Save creates the record on first use", func(t *testing.T) {
		settings := &shipping.CarrierSettings{APIToken: "token-1", Enabled: true}
		require.NoError(t, repo.Save(ctx, settings))
		assert.NotEqual(t, uuid.Nil, settings.ID)

		found, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "token-1", found.APIToken)
		assert.True(t, found.Enabled)
	})

	t.Run("Save updates the existing record", func(t *testing.T) {
		settings, err := repo.Get(ctx)
		require.NoError(t, err)

		settings.APIToken = "token-2"
		settings.Enabled = false
		require.NoError(t, repo.Save(ctx, settings))

		found, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "token-2", found.APIToken)
		assert.False(t, found.Enabled)

		var count int64
		require.NoError(t, db.Model(&shipping.CarrierSettings{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}
