package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StatusService applies order status transitions. Every transition is
// validated against the legal-transition table, and a cancellation returns
// the reserved stock in the same transaction as the status write.
type StatusService struct {
	scope  TransactionScope
	now    func() time.Time
	logger *zap.Logger
}

// NewStatusService creates a new StatusService
func NewStatusService(scope TransactionScope, logger *zap.Logger) *StatusService {
	return &StatusService{
		scope:  scope,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock overrides the service clock, primarily for tests
func (s *StatusService) WithClock(now func() time.Time) *StatusService {
	s.now = now
	return s
}

// ChangeStatus transitions an order to the target status.
//
// Requesting the status the order already has is a no-op that returns the
// current order unchanged. Illegal transitions fail with INVALID_TRANSITION
// and leave the order untouched.
func (s *StatusService) ChangeStatus(ctx context.Context, orderID uuid.UUID, target order.Status) (*Response, error) {
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown order status: "+target.String())
	}

	var result *order.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if o.Status == target {
			result = o
			return nil
		}

		switch target {
		case order.StatusCancelled:
			if err := s.cancelWithRestitution(ctx, repos, o); err != nil {
				return err
			}
		case order.StatusDelivered:
			if err := o.MarkDelivered(s.now()); err != nil {
				return err
			}
		case order.StatusPaid:
			if err := o.MarkPaid(); err != nil {
				return err
			}
		default:
			return shared.ErrInvalidTransition
		}

		if err := repos.OrderRepo().UpdateStatus(ctx, o); err != nil {
			return err
		}

		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", orderID.String()),
		zap.String("status", result.Status.String()),
	)

	response := ToResponse(result)
	return &response, nil
}

// cancelWithRestitution cancels the order and returns every reserved unit
// to product stock inside the caller's transaction. Products deleted from
// the catalog since the order was placed are skipped.
func (s *StatusService) cancelWithRestitution(ctx context.Context, repos TransactionalRepositories, o *order.Order) error {
	if err := o.Cancel(); err != nil {
		return err
	}

	quantities := make(map[uuid.UUID]int, len(o.Items))
	ids := make([]uuid.UUID, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		if _, seen := quantities[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	products, err := repos.ProductRepo().FindByIDsForUpdate(ctx, ids)
	if err != nil {
		return err
	}

	for i := range products {
		product := &products[i]
		if err := product.RestituteStock(quantities[product.ID]); err != nil {
			return err
		}
		if err := repos.ProductRepo().Save(ctx, product); err != nil {
			return err
		}
	}

	if len(products) < len(ids) {
		s.logger.Warn("Some products from cancelled order no longer exist, stock not restituted for them",
			zap.String("order_id", o.ID.String()),
			zap.Int("missing", len(ids)-len(products)),
		)
	}

	return nil
}
