package order

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DeliveryEstimator produces the estimated delivery date fixed onto an
// order at creation. The clock and random source are injectable for tests.
type DeliveryEstimator struct {
	MinDays int
	MaxDays int
	Now     func() time.Time
	RandInt func(n int) int // returns a value in [0, n)
}

// DefaultDeliveryEstimator returns an estimator using a 3 to 7 day window
func DefaultDeliveryEstimator() DeliveryEstimator {
	return DeliveryEstimator{
		MinDays: 3,
		MaxDays: 7,
		Now:     time.Now,
		RandInt: rand.Intn,
	}
}

// Estimate returns now plus a uniformly random number of days within the window
func (e DeliveryEstimator) Estimate() time.Time {
	days := e.MinDays
	if spread := e.MaxDays - e.MinDays; spread > 0 {
		days += e.RandInt(spread + 1)
	}
	return e.Now().AddDate(0, 0, days)
}

// CheckoutService coordinates order creation: it validates the cart against
// the product catalog, reserves stock and creates the order as one atomic
// transaction.
type CheckoutService struct {
	scope     TransactionScope
	estimator DeliveryEstimator
	logger    *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(scope TransactionScope, estimator DeliveryEstimator, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		scope:     scope,
		estimator: estimator,
		logger:    logger,
	}
}

// Checkout validates and executes a checkout for the given user.
//
// Within a single transaction it locks the product rows in deterministic ID
// order, verifies availability and stock, snapshots prices and display data
// onto the order lines, decrements stock and inserts the order. Any failure
// rolls the whole transaction back, so stock is never decremented for an
// order that was not created.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*Response, error) {
	quantities, ids, err := consolidateItems(req.Items)
	if err != nil {
		return nil, err
	}

	payment := order.DerivePaymentSummary(order.PaymentInput{
		CardNumber: req.Payment.CardNumber,
		CardBrand:  req.Payment.CardBrand,
		CardLast4:  req.Payment.CardLast4,
	})
	shipping := order.ShippingSnapshot{
		FullName:     req.Shipping.FullName,
		Phone:        req.Shipping.Phone,
		AddressLine1: req.Shipping.AddressLine1,
		AddressLine2: req.Shipping.AddressLine2,
		City:         req.Shipping.City,
		State:        req.Shipping.State,
		Zip:          req.Shipping.Zip,
		Country:      req.Shipping.Country,
	}

	var created *order.Order
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		products, err := repos.ProductRepo().FindByIDsForUpdate(ctx, ids)
		if err != nil {
			return err
		}

		byID := make(map[uuid.UUID]*catalog.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		o, err := order.New(userID, shipping, payment, s.estimator.Estimate())
		if err != nil {
			return err
		}

		// ids are sorted, so line order and lock order are both deterministic
		for _, productID := range ids {
			product, ok := byID[productID]
			if !ok || !product.IsAvailable() {
				return shared.ErrProductUnavailable
			}

			quantity := quantities[productID]
			if err := product.DeductStock(quantity); err != nil {
				return err
			}

			if err := o.AddItem(product.ID, product.Name, product.FirstImageURL(), quantity, product.GetPriceMoney()); err != nil {
				return err
			}
		}

		for _, productID := range ids {
			if err := repos.ProductRepo().Save(ctx, byID[productID]); err != nil {
				return err
			}
		}

		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		s.logger.Warn("Checkout failed",
			zap.String("user_id", userID.String()),
			zap.Int("line_count", len(ids)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Checkout completed",
		zap.String("order_id", created.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("line_count", len(created.Items)),
		zap.String("total", created.Total.StringFixed(2)),
	)

	response := ToResponse(created)
	return &response, nil
}

// consolidateItems merges duplicate product lines, validates quantities and
// returns the per-product quantities plus the product IDs sorted ascending.
// The sorted order is what keeps concurrent checkouts lock-compatible.
func consolidateItems(items []CheckoutItemInput) (map[uuid.UUID]int, []uuid.UUID, error) {
	if len(items) == 0 {
		return nil, nil, shared.NewDomainError("EMPTY_CART", "Checkout requires at least one item")
	}

	quantities := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
		}
		if item.Quantity < 1 {
			return nil, nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
		}
		quantities[item.ProductID] += item.Quantity
	}

	ids := make([]uuid.UUID, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})

	return quantities, ids, nil
}
