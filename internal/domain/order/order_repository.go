package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID finds an order with its items by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByUser finds all orders owned by a user, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindAll finds all orders matching the filter (admin listing)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// FindDueForDelivery finds paid orders whose estimated delivery date is
	// strictly before the given cutoff (date comparison is done by the caller
	// truncating the cutoff to the start of day)
	FindDueForDelivery(ctx context.Context, cutoff time.Time) ([]Order, error)

	// Save creates or updates an order together with its items
	Save(ctx context.Context, o *Order) error

	// UpdateStatus persists a status change of an already-loaded aggregate
	// using its version for optimistic concurrency
	UpdateStatus(ctx context.Context, o *Order) error

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByUser counts orders owned by a user
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
