package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// checkoutFixture seeds a product and places one paid order for it.
func checkoutFixture(t *testing.T, store *memStore, stock, quantity int, eta time.Time) *Response {
	t.Helper()
	p := seedProduct(t, store, "mug", 10, stock)
	svc := NewCheckoutService(newSerializedScope(store), fixedEstimator(eta), zap.NewNop())
	resp, err := svc.Checkout(context.Background(), uuid.New(), CheckoutRequest{
		Items: []CheckoutItemInput{{ProductID: p.ID, Quantity: quantity}},
	})
	require.NoError(t, err)
	return resp
}

func TestStatusService_ChangeStatus(t *testing.T) {
	t.Run("cancelling a paid order restores stock in the same scope", func(t *testing.T) {
		store := newMemStore()
		placed := checkoutFixture(t, store, 5, 3, time.Now().AddDate(0, 0, 5))
		productID := placed.Items[0].ProductID
		require.Equal(t, 2, store.productStock(productID))

		svc := NewStatusService(newSerializedScope(store), zap.NewNop())
		resp, err := svc.ChangeStatus(context.Background(), placed.ID, order.StatusCancelled)

		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		assert.NotNil(t, resp.CancelledAt)
		assert.Equal(t, 5, store.productStock(productID), "cancelled units must return to stock")
		assert.Equal(t, order.StatusCancelled, store.orderStatus(placed.ID))
	})

	t.Run("same status is a no-op, not an error", func(t *testing.T) {
		store := newMemStore()
		placed := checkoutFixture(t, store, 5, 2, time.Now().AddDate(0, 0, 5))
		productID := placed.Items[0].ProductID

		svc := NewStatusService(newSerializedScope(store), zap.NewNop())
		resp, err := svc.ChangeStatus(context.Background(), placed.ID, order.StatusPaid)

		require.NoError(t, err)
		assert.Equal(t, "PAID", resp.Status)
		assert.Equal(t, placed.Version, resp.Version, "a no-op must not bump the version")
		assert.Equal(t, 3, store.productStock(productID), "a no-op must not touch stock")
	})

	t.Run("delivering before the estimated date is rejected", func(t *testing.T) {
		store := newMemStore()
		now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
		placed := checkoutFixture(t, store, 5, 1, now.AddDate(0, 0, 4))

		svc := NewStatusService(newSerializedScope(store), zap.NewNop()).WithClock(func() time.Time { return now })
		_, err := svc.ChangeStatus(context.Background(), placed.ID, order.StatusDelivered)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DELIVERY_NOT_DUE", domainErr.Code)
		assert.Equal(t, order.StatusPaid, store.orderStatus(placed.ID))
	})

	t.Run("delivering after the estimated date succeeds", func(t *testing.T) {
		store := newMemStore()
		now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
		placed := checkoutFixture(t, store, 5, 1, now.AddDate(0, 0, -2))

		svc := NewStatusService(newSerializedScope(store), zap.NewNop()).WithClock(func() time.Time { return now })
		resp, err := svc.ChangeStatus(context.Background(), placed.ID, order.StatusDelivered)

		require.NoError(t, err)
		assert.Equal(t, "DELIVERED", resp.Status)
		assert.NotNil(t, resp.DeliveredAt)
	})

	t.Run("terminal states reject further transitions", func(t *testing.T) {
		store := newMemStore()
		placed := checkoutFixture(t, store, 5, 1, time.Now().AddDate(0, 0, 5))
		svc := NewStatusService(newSerializedScope(store), zap.NewNop())

		_, err := svc.ChangeStatus(context.Background(), placed.ID, order.StatusCancelled)
		require.NoError(t, err)

		_, err = svc.ChangeStatus(context.Background(), placed.ID, order.StatusDelivered)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	})

	t.Run("cancelling twice only restores stock once", func(t *testing.T) {
		store := newMemStore()
		placed := checkoutFixture(t, store, 5, 2, time.Now().AddDate(0, 0, 5))
		productID := placed.Items[0].ProductID
		svc := NewStatusService(newSerializedScope(store), zap.NewNop())

		_, err := svc.ChangeStatus(context.Background(), placed.ID, order.StatusCancelled)
		require.NoError(t, err)

		// second request is a no-op: same status
		resp, err := svc.ChangeStatus(context.Background(), placed.ID, order.StatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		assert.Equal(t, 5, store.productStock(productID))
	})

	t.Run("unknown status string is rejected up front", func(t *testing.T) {
		store := newMemStore()
		svc := NewStatusService(newSerializedScope(store), zap.NewNop())

		_, err := svc.ChangeStatus(context.Background(), uuid.New(), order.Status("SHIPPED"))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("missing order yields not found", func(t *testing.T) {
		store := newMemStore()
		svc := NewStatusService(newSerializedScope(store), zap.NewNop())

		_, err := svc.ChangeStatus(context.Background(), uuid.New(), order.StatusCancelled)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}
