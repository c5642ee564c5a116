package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
)

// ==================== Checkout DTOs ====================

// CheckoutItemInput represents one cart line submitted at checkout
type CheckoutItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// ShippingInput carries the shipping address submitted at checkout.
// All fields are optional; whatever is present is snapshotted onto the order.
type ShippingInput struct {
	FullName     string `json:"full_name" binding:"omitempty,max=200"`
	Phone        string `json:"phone" binding:"omitempty,max=50"`
	AddressLine1 string `json:"address_line1" binding:"omitempty,max=300"`
	AddressLine2 string `json:"address_line2" binding:"omitempty,max=300"`
	City         string `json:"city" binding:"omitempty,max=100"`
	State        string `json:"state" binding:"omitempty,max=100"`
	Zip          string `json:"zip" binding:"omitempty,max=20"`
	Country      string `json:"country" binding:"omitempty,max=100"`
}

// PaymentInput carries payment details submitted at checkout.
// The raw card number is reduced to brand and last four digits and never stored.
type PaymentInput struct {
	CardNumber string `json:"card_number" binding:"omitempty,max=30"`
	CardBrand  string `json:"card_brand" binding:"omitempty,max=50"`
	CardLast4  string `json:"card_last4" binding:"omitempty,len=4"`
}

// CheckoutRequest represents a checkout submission
type CheckoutRequest struct {
	Items    []CheckoutItemInput `json:"items" binding:"required,min=1,dive"`
	Shipping ShippingInput       `json:"shipping"`
	Payment  PaymentInput        `json:"payment"`
}

// ChangeStatusRequest represents an admin status change request
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminListFilter represents filter options for the admin order list
type AdminListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING PAID CANCELLED DELIVERED"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Responses ====================

// ItemResponse represents an order line in API responses
type ItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    string          `json:"image_url,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// ShippingResponse represents the shipping snapshot in API responses
type ShippingResponse struct {
	FullName     string `json:"full_name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Zip          string `json:"zip,omitempty"`
	Country      string `json:"country,omitempty"`
}

// PaymentResponse exposes only the persisted payment summary
type PaymentResponse struct {
	CardBrand string `json:"card_brand,omitempty"`
	CardLast4 string `json:"card_last4,omitempty"`
}

// Response represents a full order in API responses
type Response struct {
	ID                uuid.UUID        `json:"id"`
	UserID            uuid.UUID        `json:"user_id"`
	Items             []ItemResponse   `json:"items"`
	ItemCount         int              `json:"item_count"`
	Total             decimal.Decimal  `json:"total"`
	Status            string           `json:"status"`
	Shipping          ShippingResponse `json:"shipping"`
	Payment           PaymentResponse  `json:"payment"`
	EstimatedDelivery time.Time        `json:"estimated_delivery"`
	DeliveredAt       *time.Time       `json:"delivered_at,omitempty"`
	CancelledAt       *time.Time       `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	Version           int              `json:"version"`
}

// ListItemResponse represents an order in list responses (less detail)
type ListItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"user_id"`
	ItemCount         int             `json:"item_count"`
	Total             decimal.Decimal `json:"total"`
	Status            string          `json:"status"`
	EstimatedDelivery time.Time       `json:"estimated_delivery"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ToResponse converts an order aggregate to a full response
func ToResponse(o *order.Order) Response {
	items := make([]ItemResponse, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items = append(items, ItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ImageURL:    item.ImageURL,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
		})
	}

	return Response{
		ID:        o.ID,
		UserID:    o.UserID,
		Items:     items,
		ItemCount: len(items),
		Total:     o.Total,
		Status:    o.Status.String(),
		Shipping: ShippingResponse{
			FullName:     o.Shipping.FullName,
			Phone:        o.Shipping.Phone,
			AddressLine1: o.Shipping.AddressLine1,
			AddressLine2: o.Shipping.AddressLine2,
			City:         o.Shipping.City,
			State:        o.Shipping.State,
			Zip:          o.Shipping.Zip,
			Country:      o.Shipping.Country,
		},
		Payment: PaymentResponse{
			CardBrand: o.Payment.CardBrand,
			CardLast4: o.Payment.CardLast4,
		},
		EstimatedDelivery: o.EstimatedDelivery,
		DeliveredAt:       o.DeliveredAt,
		CancelledAt:       o.CancelledAt,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Version:           o.Version,
	}
}

// ToListItemResponse converts an order aggregate to a list item response
func ToListItemResponse(o *order.Order) ListItemResponse {
	return ListItemResponse{
		ID:                o.ID,
		UserID:            o.UserID,
		ItemCount:         len(o.Items),
		Total:             o.Total,
		Status:            o.Status.String(),
		EstimatedDelivery: o.EstimatedDelivery,
		CreatedAt:         o.CreatedAt,
	}
}
