package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ShippingSnapshot is the shipping information copied by value onto an
// order at creation time. Later edits to the customer's stored address do
// not change past orders. All fields are optional.
type ShippingSnapshot struct {
	FullName     string `gorm:"type:varchar(200)"`
	Phone        string `gorm:"type:varchar(50)"`
	AddressLine1 string `gorm:"type:varchar(300)"`
	AddressLine2 string `gorm:"type:varchar(300)"`
	City         string `gorm:"type:varchar(100)"`
	State        string `gorm:"type:varchar(100)"`
	Zip          string `gorm:"type:varchar(20)"`
	Country      string `gorm:"type:varchar(100)"`
}

// Item represents one line of an order. Lines are created together with
// the order in the same transaction and never individually mutated or
// deleted afterwards; cancellation changes the order's status, not its items.
type Item struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"` // display snapshot for receipts
	ImageURL    string          `gorm:"type:varchar(500)"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"` // price snapshot, immune to catalog changes
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// Subtotal returns UnitPrice * Quantity for the line
func (i *Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// GetUnitPriceMoney returns the unit price as Money value object
func (i *Item) GetUnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.UnitPrice)
}

// Order is the aggregate root for one completed checkout.
// It is created atomically in StatusPaid, mutated only through status
// transitions and never deleted.
type Order struct {
	shared.BaseAggregateRoot
	UserID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	Items             []Item           `gorm:"foreignKey:OrderID"`
	Total             decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Status            Status           `gorm:"type:varchar(20);not null;index"`
	Shipping          ShippingSnapshot `gorm:"embedded;embeddedPrefix:shipping_"`
	Payment           PaymentSummary   `gorm:"embedded;embeddedPrefix:payment_"`
	EstimatedDelivery time.Time        `gorm:"not null"`
	DeliveredAt       *time.Time
	CancelledAt       *time.Time
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// New creates an order for a customer. Checkout simulates payment as always
// succeeding at submission time, so orders are born in StatusPaid.
func New(userID uuid.UUID, shipping ShippingSnapshot, payment PaymentSummary, estimatedDelivery time.Time) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if estimatedDelivery.IsZero() {
		return nil, shared.NewDomainError("INVALID_DELIVERY_DATE", "Estimated delivery date is required")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Items:             make([]Item, 0),
		Total:             decimal.Zero,
		Status:            StatusPaid,
		Shipping:          shipping,
		Payment:           payment,
		EstimatedDelivery: estimatedDelivery,
	}, nil
}

// AddItem appends a line with a snapshotted unit price and display info,
// recalculating the order total. Used only while the coordinator assembles
// the aggregate; persisted orders never gain or lose lines.
func (o *Order) AddItem(productID uuid.UUID, productName, imageURL string, quantity int, unitPrice valueobject.Money) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	o.Items = append(o.Items, Item{
		ID:          uuid.New(),
		OrderID:     o.ID,
		ProductID:   productID,
		ProductName: productName,
		ImageURL:    imageURL,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount().Round(2),
		CreatedAt:   time.Now(),
	})
	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	return nil
}

// recalculateTotal keeps the aggregate invariant
// total == sum(unitPrice * quantity) over all items.
func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for idx := range o.Items {
		total = total.Add(o.Items[idx].Subtotal())
	}
	o.Total = total
}

// Cancel transitions the order to StatusCancelled.
// Stock restitution is the caller's responsibility and must happen in the
// same transaction as the status write.
func (o *Order) Cancel() error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// MarkDelivered transitions the order to StatusDelivered once the delivery
// window has elapsed relative to now.
func (o *Order) MarkDelivered(now time.Time) error {
	if !o.Status.CanTransitionTo(StatusDelivered) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot deliver order in %s status", o.Status))
	}
	if !o.DeliveryWindowElapsed(now) {
		return shared.NewDomainError("DELIVERY_NOT_DUE",
			"Order cannot be delivered before its estimated delivery date has elapsed")
	}

	o.Status = StatusDelivered
	o.DeliveredAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// MarkPaid transitions a pending order to StatusPaid (future async payment path)
func (o *Order) MarkPaid() error {
	if !o.Status.CanTransitionTo(StatusPaid) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot mark order paid in %s status", o.Status))
	}

	o.Status = StatusPaid
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// DeliveryWindowElapsed compares dates only, truncating time-of-day on both
// sides: an order estimated for today is not yet due; it becomes due the
// day after.
func (o *Order) DeliveryWindowElapsed(now time.Time) bool {
	estimated := truncateToDay(o.EstimatedDelivery)
	today := truncateToDay(now)
	return estimated.Before(today)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// GetTotalMoney returns the order total as Money value object
func (o *Order) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(o.Total)
}

// ItemCount returns the number of lines in the order
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// BelongsTo reports whether the order is owned by the given user
func (o *Order) BelongsTo(userID uuid.UUID) bool {
	return o.UserID == userID
}

// IsPaid returns true if the order is paid and awaiting delivery
func (o *Order) IsPaid() bool {
	return o.Status == StatusPaid
}

// IsCancelled returns true if the order was cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// IsDelivered returns true if the order reached its terminal delivered state
func (o *Order) IsDelivered() bool {
	return o.Status == StatusDelivered
}
