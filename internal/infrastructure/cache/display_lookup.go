package cache

import (
	"context"

	"github.com/google/uuid"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// CachedDisplayLookup is a read-through product display lookup: cache first,
// then the product repository, repopulating the cache on a miss. Cache
// failures degrade to repository reads and are logged, never surfaced.
type CachedDisplayLookup struct {
	cache       ProductDisplayCache
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewCachedDisplayLookup creates a new CachedDisplayLookup
func NewCachedDisplayLookup(cache ProductDisplayCache, productRepo catalog.ProductRepository, logger *zap.Logger) *CachedDisplayLookup {
	return &CachedDisplayLookup{
		cache:       cache,
		productRepo: productRepo,
		logger:      logger,
	}
}

// Lookup returns the display name and first image for a product
func (l *CachedDisplayLookup) Lookup(ctx context.Context, productID uuid.UUID) (apporder.ProductDisplay, error) {
	info, hit, err := l.cache.Get(ctx, productID)
	if err != nil {
		l.logger.Warn("Display cache read failed, falling back to database",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
	} else if hit {
		return apporder.ProductDisplay{Name: info.Name, ImageURL: info.ImageURL}, nil
	}

	product, err := l.productRepo.FindByID(ctx, productID)
	if err != nil {
		return apporder.ProductDisplay{}, err
	}

	display := apporder.ProductDisplay{
		Name:     product.Name,
		ImageURL: product.FirstImageURL(),
	}

	if err := l.cache.Set(ctx, productID, DisplayInfo{Name: display.Name, ImageURL: display.ImageURL}); err != nil {
		l.logger.Warn("Display cache write failed",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
	}

	return display, nil
}

var _ apporder.DisplayLookup = (*CachedDisplayLookup)(nil)
