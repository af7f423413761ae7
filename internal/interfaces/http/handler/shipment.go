package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	shippingapp "github.com/erp/shipping/internal/application/shipping"
	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
	"github.com/erp/shipping/internal/interfaces/http/dto"
)

// ShipmentHandler handles shipment-related API endpoints
type ShipmentHandler struct {
	BaseHandler
	shipmentService *shippingapp.ShipmentService
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(shipmentService *shippingapp.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{
		shipmentService: shipmentService,
	}
}

// RegisterRoutes registers shipment routes
func (h *ShipmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	shipments := rg.Group("/shipments")
	{
		shipments.GET("", h.List)
		shipments.GET("/:id", h.Get)
		shipments.GET("/:id/services", h.FetchServices)
		shipments.POST("/:id/book", h.Book)
		shipments.POST("/:id/book/rule-based", h.BookRuleBased)
		shipments.POST("/:id/cancel", h.Cancel)
		shipments.POST("/:id/tracking/refresh", h.RefreshTracking)
	}
	rg.GET("/delivery-notes/:id/items", h.DeliveryNoteItems)
}

// ListShipmentsRequest represents shipment list query parameters
type ListShipmentsRequest struct {
	dto.ListRequest
	Status          string `form:"status"`
	TrackingStatus  string `form:"tracking_status"`
	ServiceProvider string `form:"service_provider"`
}

// BookShipmentRequest represents a request to book a shipment with a
// service picked from a prior rate quote
type BookShipmentRequest struct {
	Service         shipping.SelectedService `json:"service" binding:"required"`
	ParcelOverrides shipping.ParcelOverrides `json:"parcel_overrides"`
}

// BookRuleBasedShipmentRequest represents a request to book a shipment
// letting the carrier's routing rules pick the service
type BookRuleBasedShipmentRequest struct {
	ParcelOverrides shipping.ParcelOverrides `json:"parcel_overrides"`
}

// List returns a page of shipment documents
func (h *ShipmentHandler) List(c *gin.Context) {
	req := ListShipmentsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  map[string]interface{}{},
	}
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}
	if req.TrackingStatus != "" {
		filter.Filters["tracking_status"] = req.TrackingStatus
	}
	if req.ServiceProvider != "" {
		filter.Filters["service_provider"] = req.ServiceProvider
	}

	page, err := h.shipmentService.ListShipments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get returns one shipment document with parcels and note links
func (h *ShipmentHandler) Get(c *gin.Context) {
	id, ok := h.shipmentID(c)
	if !ok {
		return
	}
	shipment, err := h.shipmentService.GetShipment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// FetchServices returns the bookable carrier services for a shipment.
// Pass refresh=true to bypass the quote cache.
func (h *ShipmentHandler) FetchServices(c *gin.Context) {
	id, ok := h.shipmentID(c)
	if !ok {
		return
	}
	refresh := c.Query("refresh") == "true"

	rates, err := h.shipmentService.FetchAvailableServices(c.Request.Context(), id, refresh)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rates)
}

// Book books a shipment with the caller's selected service
func (h *ShipmentHandler) Book(c *gin.Context) {
	id, ok := h.shipmentID(c)
	if !ok {
		return
	}
	var req BookShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.shipmentService.CreateShipment(c.Request.Context(), id, req.Service, req.ParcelOverrides)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// BookRuleBased books a shipment without a selected service
func (h *ShipmentHandler) BookRuleBased(c *gin.Context) {
	id, ok := h.shipmentID(c)
	if !ok {
		return
	}
	var req BookRuleBasedShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.shipmentService.CreateRuleBasedShipment(c.Request.Context(), id, req.ParcelOverrides)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Cancel cancels a booked shipment with the carrier
func (h *ShipmentHandler) Cancel(c *gin.Context) {
	id, ok := h.shipmentID(c)
	if !ok {
		return
	}
	if err := h.shipmentService.CancelShipment(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"cancelled": true})
}

// RefreshTracking fetches and applies the current tracking state
func (h *ShipmentHandler) RefreshTracking(c *gin.Context) {
	id, ok := h.shipmentID(c)
	if !ok {
		return
	}
	update, err := h.shipmentService.RefreshTracking(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, update)
}

// DeliveryNoteItems returns the billed lines of one delivery note
func (h *ShipmentHandler) DeliveryNoteItems(c *gin.Context) {
	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid delivery note ID")
		return
	}
	items, err := h.shipmentService.GetDeliveryNoteItems(c.Request.Context(), noteID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

func (h *ShipmentHandler) shipmentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID")
		return uuid.Nil, false
	}
	return id, true
}
