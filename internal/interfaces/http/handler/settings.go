package handler

import (
	"github.com/gin-gonic/gin"

	shippingapp "github.com/erp/shipping/internal/application/shipping"
)

// SettingsHandler handles carrier settings API endpoints
type SettingsHandler struct {
	BaseHandler
	settingsService *shippingapp.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *shippingapp.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// RegisterRoutes registers settings routes
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	settings := rg.Group("/settings")
	{
		settings.GET("", h.Get)
		settings.PUT("", h.Update)
	}
}

// Get returns the current carrier settings
func (h *SettingsHandler) Get(c *gin.Context) {
	view, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Update updates the carrier settings, creating the record on first save
func (h *SettingsHandler) Update(c *gin.Context) {
	var input shippingapp.UpdateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	view, err := h.settingsService.UpdateSettings(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}
