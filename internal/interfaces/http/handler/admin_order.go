package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// AdminOrderHandler handles back-office order endpoints
type AdminOrderHandler struct {
	BaseHandler
	queryService  *apporder.QueryService
	statusService *apporder.StatusService
}

// NewAdminOrderHandler creates a new AdminOrderHandler
func NewAdminOrderHandler(queryService *apporder.QueryService, statusService *apporder.StatusService) *AdminOrderHandler {
	return &AdminOrderHandler{
		queryService:  queryService,
		statusService: statusService,
	}
}

// RegisterRoutes registers admin order routes on the given group
func (h *AdminOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.GET("", h.List)
	orders.PATCH("/:id/status", h.ChangeStatus)
}

// List returns a paginated page of all orders, optionally filtered by status
func (h *AdminOrderHandler) List(c *gin.Context) {
	var req apporder.AdminListFilter
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "Invalid query parameters: "+err.Error())
		return
	}

	page, err := h.queryService.AdminList(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ChangeStatus moves an order to the requested status, applying the side
// effects the transition carries (stock restitution on cancel, delivery
// timestamp on delivered).
func (h *AdminOrderHandler) ChangeStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "Invalid order ID")
		return
	}

	var req apporder.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidInput, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.statusService.ChangeStatus(c.Request.Context(), orderID, order.Status(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}
