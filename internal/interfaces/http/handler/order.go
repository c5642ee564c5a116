package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// OrderHandler handles customer-facing order endpoints
type OrderHandler struct {
	BaseHandler
	checkoutService *apporder.CheckoutService
	queryService    *apporder.QueryService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(checkoutService *apporder.CheckoutService, queryService *apporder.QueryService) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		queryService:    queryService,
	}
}

// RegisterRoutes registers customer order routes on the given group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.POST("", h.Checkout)
	orders.GET("", h.ListMyOrders)
	orders.GET("/:id", h.GetOrder)
}

// Checkout creates an order from the submitted cart, deducting stock
// atomically. The order is created already paid.
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req apporder.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.checkoutService.Checkout(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// ListMyOrders returns the authenticated user's order history, newest first
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orders, err := h.queryService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, orders)
}

// GetOrder returns a single order with its lines. Customers can only read
// their own orders; admins can read any.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "Invalid order ID")
		return
	}

	response, err := h.queryService.GetByID(c.Request.Context(), orderID, userID, middleware.IsAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}
