package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DisplayInfo is the cached display payload for a product: the name and
// first image used when rendering order receipts. Stock and price are never
// cached; those are only ever read from the database.
type DisplayInfo struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// ProductDisplayCache caches product display info keyed by product ID
type ProductDisplayCache interface {
	// Get returns the cached display info and whether it was present
	Get(ctx context.Context, productID uuid.UUID) (DisplayInfo, bool, error)

	// Set stores display info with the cache's TTL
	Set(ctx context.Context, productID uuid.UUID, info DisplayInfo) error

	// Invalidate removes a product from the cache
	Invalidate(ctx context.Context, productID uuid.UUID) error
}

// entry is an in-memory cache record with its expiry
type entry struct {
	info      DisplayInfo
	expiresAt time.Time
}
