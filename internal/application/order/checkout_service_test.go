package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixedEstimator(eta time.Time) DeliveryEstimator {
	return DeliveryEstimator{
		MinDays: 0,
		MaxDays: 0,
		Now:     func() time.Time { return eta },
		RandInt: func(int) int { return 0 },
	}
}

func seedProduct(t *testing.T, store *memStore, name string, price float64, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, valueobject.NewMoneyUSDFromFloat(price), stock)
	require.NoError(t, err)
	require.NoError(t, p.AddImage("https://cdn.example.com/"+name+".jpg"))
	store.putProduct(p)
	return p
}

func TestCheckoutService_Checkout(t *testing.T) {
	t.Run("creates paid order and decrements stock", func(t *testing.T) {
		store := newMemStore()
		mug := seedProduct(t, store, "mug", 9.50, 10)
		plate := seedProduct(t, store, "plate", 4.25, 10)
		eta := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
		svc := NewCheckoutService(newSerializedScope(store), fixedEstimator(eta), zap.NewNop())
		userID := uuid.New()

		resp, err := svc.Checkout(context.Background(), userID, CheckoutRequest{
			Items: []CheckoutItemInput{
				{ProductID: mug.ID, Quantity: 2},
				{ProductID: plate.ID, Quantity: 3},
			},
			Shipping: ShippingInput{City: "Austin"},
			Payment:  PaymentInput{CardNumber: "4111 1111 1111 1111"},
		})

		require.NoError(t, err)
		assert.Equal(t, "PAID", resp.Status)
		assert.Equal(t, userID, resp.UserID)
		assert.Equal(t, 2, resp.ItemCount)
		assert.Equal(t, "31.75", resp.Total.StringFixed(2))
		assert.Equal(t, eta, resp.EstimatedDelivery)
		assert.Equal(t, "Visa", resp.Payment.CardBrand)
		assert.Equal(t, "1111", resp.Payment.CardLast4)
		assert.Equal(t, 8, store.productStock(mug.ID))
		assert.Equal(t, 7, store.productStock(plate.ID))
		assert.Equal(t, 1, store.orderCount())

		// lines carry the display snapshot taken at checkout
		for _, item := range resp.Items {
			assert.NotEmpty(t, item.ProductName)
			assert.NotEmpty(t, item.ImageURL)
		}
	})

	t.Run("merges duplicate lines for the same product", func(t *testing.T) {
		store := newMemStore()
		mug := seedProduct(t, store, "mug", 10, 5)
		svc := NewCheckoutService(newSerializedScope(store), DefaultDeliveryEstimator(), zap.NewNop())

		resp, err := svc.Checkout(context.Background(), uuid.New(), CheckoutRequest{
			Items: []CheckoutItemInput{
				{ProductID: mug.ID, Quantity: 2},
				{ProductID: mug.ID, Quantity: 1},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.ItemCount)
		assert.Equal(t, 3, resp.Items[0].Quantity)
		assert.Equal(t, 2, store.productStock(mug.ID))
	})

	t.Run("rejects empty cart", func(t *testing.T) {
		store := newMemStore()
		svc := NewCheckoutService(newSerializedScope(store), DefaultDeliveryEstimator(), zap.NewNop())

		_, err := svc.Checkout(context.Background(), uuid.New(), CheckoutRequest{})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMPTY_CART", domainErr.Code)
	})

	t.Run("unknown product fails the whole checkout", func(t *testing.T) {
		store := newMemStore()
		mug := seedProduct(t, store, "mug", 10, 5)
		svc := NewCheckoutService(newSerializedScope(store), DefaultDeliveryEstimator(), zap.NewNop())

		_, err := svc.Checkout(context.Background(), uuid.New(), CheckoutRequest{
			Items: []CheckoutItemInput{
				{ProductID: mug.ID, Quantity: 1},
				{ProductID: uuid.New(), Quantity: 1},
			},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRODUCT_UNAVAILABLE", domainErr.Code)
		assert.Equal(t, 5, store.productStock(mug.ID), "no stock may move on a failed checkout")
		assert.Equal(t, 0, store.orderCount())
	})

	t.Run("inactive product fails the checkout", func(t *testing.T) {
		store := newMemStore()
		mug := seedProduct(t, store, "mug", 10, 5)
		mug.Deactivate()
		store.putProduct(mug)
		svc := NewCheckoutService(newSerializedScope(store), DefaultDeliveryEstimator(), zap.NewNop())

		_, err := svc.Checkout(context.Background(), uuid.New(), CheckoutRequest{
			Items: []CheckoutItemInput{{ProductID: mug.ID, Quantity: 1}},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRODUCT_UNAVAILABLE", domainErr.Code)
	})

	t.Run("insufficient stock fails without partial effects", func(t *testing.T) {
		store := newMemStore()
		mug := seedProduct(t, store, "mug", 10, 5)
		plate := seedProduct(t, store, "plate", 4, 1)
		svc := NewCheckoutService(newSerializedScope(store), DefaultDeliveryEstimator(), zap.NewNop())

		_, err := svc.Checkout(context.Background(), uuid.New(), CheckoutRequest{
			Items: []CheckoutItemInput{
				{ProductID: mug.ID, Quantity: 2},
				{ProductID: plate.ID, Quantity: 2},
			},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
		assert.Equal(t, 5, store.productStock(mug.ID))
		assert.Equal(t, 1, store.productStock(plate.ID))
		assert.Equal(t, 0, store.orderCount())
	})

	t.Run("concurrent checkouts never oversell the last unit", func(t *testing.T) {
		store := newMemStore()
		mug := seedProduct(t, store, "mug", 10, 1)
		svc := NewCheckoutService(newSerializedScope(store), DefaultDeliveryEstimator(), zap.NewNop())

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Checkout(context.Background(), uuid.New(), CheckoutRequest{
					Items: []CheckoutItemInput{{ProductID: mug.ID, Quantity: 1}},
				})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
			}
		}
		assert.Equal(t, 1, succeeded, "exactly one of two competing checkouts may win the last unit")
		assert.Equal(t, 0, store.productStock(mug.ID))
		assert.Equal(t, 1, store.orderCount())
	})

	t.Run("snapshotted price survives later catalog changes", func(t *testing.T) {
		store := newMemStore()
		mug := seedProduct(t, store, "mug", 9.99, 5)
		svc := NewCheckoutService(newSerializedScope(store), DefaultDeliveryEstimator(), zap.NewNop())

		resp, err := svc.Checkout(context.Background(), uuid.New(), CheckoutRequest{
			Items: []CheckoutItemInput{{ProductID: mug.ID, Quantity: 1}},
		})
		require.NoError(t, err)

		require.NoError(t, mug.SetPrice(valueobject.NewMoneyUSDFromFloat(99.99)))
		store.putProduct(mug)

		assert.Equal(t, "9.99", resp.Items[0].UnitPrice.StringFixed(2))
		assert.Equal(t, "9.99", resp.Total.StringFixed(2))
	})
}

func TestDeliveryEstimator_Estimate(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	t.Run("stays within the configured window", func(t *testing.T) {
		e := DeliveryEstimator{MinDays: 3, MaxDays: 7, Now: func() time.Time { return now }, RandInt: func(n int) int { return n - 1 }}
		assert.Equal(t, now.AddDate(0, 0, 7), e.Estimate())

		e.RandInt = func(int) int { return 0 }
		assert.Equal(t, now.AddDate(0, 0, 3), e.Estimate())
	})

	t.Run("degenerate window never calls the random source", func(t *testing.T) {
		e := DeliveryEstimator{MinDays: 5, MaxDays: 5, Now: func() time.Time { return now }, RandInt: func(int) int {
			t.Fatal("RandInt must not be called for a zero-width window")
			return 0
		}}
		assert.Equal(t, now.AddDate(0, 0, 5), e.Estimate())
	})
}
