package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	shippingapp "github.com/erp/shipping/internal/application/shipping"
	"github.com/erp/shipping/internal/domain/shipping"
)

func newSettingsRouter(repo *mockSettingsRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := shippingapp.NewSettingsService(repo, zap.NewNop())
	router := gin.New()
	api := router.Group("/api/v1")
	NewSettingsHandler(svc).RegisterRoutes(api)
	return router
}

func TestSettingsHandler_Get(t *testing.T) {
	t.Run("unconfigured reads as disabled", func(t *testing.T) {
		router := newSettingsRouter(&mockSettingsRepository{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"enabled":false`)
		assert.Contains(t, w.Body.String(), `"has_api_token":false`)
	})

	t.Run("configured settings never echo the token", func(t *testing.T) {
		router := newSettingsRouter(&mockSettingsRepository{
			settings: &shipping.CarrierSettings{APIToken: "secret-token", Enabled: true},
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"has_api_token":true`)
		assert.NotContains(t, w.Body.String(), "secret-token")
	})
}

func TestSettingsHandler_Update(t *testing.T) {
	t.Run("creates the record on first save", func(t *testing.T) {
		repo := &mockSettingsRepository{}
		router := newSettingsRouter(repo)

		body, err := json.Marshal(map[string]any{"enabled": true, "api_token": "token-1"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, repo.settings)
		assert.True(t, repo.settings.Enabled)
		assert.Equal(t, "token-1", repo.settings.APIToken)
	})

	t.Run("omitting the token keeps the stored one", func(t *testing.T) {
		repo := &mockSettingsRepository{
			settings: &shipping.CarrierSettings{APIToken: "token-1", Enabled: true},
		}
		router := newSettingsRouter(repo)

		body, err := json.Marshal(map[string]any{"enabled": false})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, repo.settings.Enabled)
		assert.Equal(t, "token-1", repo.settings.APIToken)
	})
}
