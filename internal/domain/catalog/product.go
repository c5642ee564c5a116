package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Product represents a sellable product in the catalog.
// The storefront's order flow treats it as the authoritative inventory ledger:
// Stock is read and mutated only inside order transactions.
type Product struct {
	shared.BaseAggregateRoot
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Stock       int             `gorm:"not null;default:0"`
	Active      bool            `gorm:"not null;default:true"`
	Images      []ProductImage  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductImage is an image associated with a product
type ProductImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	URL       string    `gorm:"type:varchar(500);not null"`
	SortOrder int       `gorm:"not null;default:0"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (ProductImage) TableName() string {
	return "product_images"
}

// NewProduct creates a new product
func NewProduct(name string, price valueobject.Money, stock int) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot exceed 200 characters")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Product stock cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Price:             price.Amount().Round(2),
		Stock:             stock,
		Active:            true,
	}, nil
}

// AddImage appends an image to the product gallery
func (p *Product) AddImage(url string) error {
	if url == "" {
		return shared.NewDomainError("INVALID_IMAGE_URL", "Image URL cannot be empty")
	}
	p.Images = append(p.Images, ProductImage{
		ID:        uuid.New(),
		ProductID: p.ID,
		URL:       url,
		SortOrder: len(p.Images),
		CreatedAt: time.Now(),
	})
	p.UpdatedAt = time.Now()
	return nil
}

// FirstImageURL returns the URL of the first image, or "" when the product has none
func (p *Product) FirstImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	first := p.Images[0]
	for _, img := range p.Images[1:] {
		if img.SortOrder < first.SortOrder {
			first = img
		}
	}
	return first.URL
}

// IsAvailable reports whether the product can be sold at all
func (p *Product) IsAvailable() bool {
	return p.Active
}

// HasStock reports whether the product can satisfy the requested quantity
func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}

// DeductStock removes quantity units from stock.
// Stock never goes negative; callers must hold the product row lock when
// invoking this inside a checkout transaction.
func (p *Product) DeductStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if p.Stock < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Product %q has %d units in stock, %d requested", p.Name, p.Stock, quantity))
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// RestituteStock returns quantity units to stock after an order cancellation
func (p *Product) RestituteStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	p.Stock += quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// GetPriceMoney returns the price as Money value object
func (p *Product) GetPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Price)
}

// SetPrice updates the selling price
func (p *Product) SetPrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	p.Price = price.Amount().Round(2)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Deactivate takes the product off sale
func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Activate puts the product back on sale
func (p *Product) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
