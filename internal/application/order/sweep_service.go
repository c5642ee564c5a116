package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"go.uber.org/zap"
)

// DeliverySweepService reconciles delivery state: paid orders whose
// estimated delivery date has passed are promoted to delivered. It decides
// WHICH orders to promote; scheduling WHEN it runs belongs to the caller.
type DeliverySweepService struct {
	scope     TransactionScope
	orderRepo order.Repository
	now       func() time.Time
	logger    *zap.Logger
}

// NewDeliverySweepService creates a new DeliverySweepService
func NewDeliverySweepService(scope TransactionScope, orderRepo order.Repository, logger *zap.Logger) *DeliverySweepService {
	return &DeliverySweepService{
		scope:     scope,
		orderRepo: orderRepo,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock overrides the service clock, primarily for tests
func (s *DeliverySweepService) WithClock(now func() time.Time) *DeliverySweepService {
	s.now = now
	return s
}

// SweepStats contains statistics about one sweep run
type SweepStats struct {
	TotalDue    int       `json:"total_due"`
	Delivered   int       `json:"delivered"`
	Failed      int       `json:"failed"`
	ProcessedAt time.Time `json:"processed_at"`
}

// SweepDueDeliveries finds paid orders whose estimated delivery date is
// strictly before the start of today and marks each delivered in its own
// transaction. A failure on one order is logged and skipped; the order is
// picked up again on the next run.
func (s *DeliverySweepService) SweepDueDeliveries(ctx context.Context) (*SweepStats, error) {
	now := s.now()
	stats := &SweepStats{ProcessedAt: now}
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	due, err := s.orderRepo.FindDueForDelivery(ctx, startOfToday)
	if err != nil {
		s.logger.Error("Failed to find orders due for delivery", zap.Error(err))
		return nil, err
	}

	stats.TotalDue = len(due)
	if stats.TotalDue == 0 {
		s.logger.Debug("No orders due for delivery")
		return stats, nil
	}

	s.logger.Info("Found orders due for delivery",
		zap.Int("count", stats.TotalDue),
	)

	for i := range due {
		if err := s.deliverOrder(ctx, due[i].ID, now); err != nil {
			s.logger.Error("Failed to mark order delivered",
				zap.String("order_id", due[i].ID.String()),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}
		stats.Delivered++
	}

	s.logger.Info("Completed delivery sweep",
		zap.Int("total", stats.TotalDue),
		zap.Int("delivered", stats.Delivered),
		zap.Int("failed", stats.Failed),
	)

	return stats, nil
}

// deliverOrder promotes a single order inside its own transaction, reloading
// it first so a concurrent manual transition is respected rather than
// overwritten.
func (s *DeliverySweepService) deliverOrder(ctx context.Context, orderID uuid.UUID, now time.Time) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		// Raced with a manual cancel or deliver between the scan and here
		if o.Status != order.StatusPaid {
			s.logger.Debug("Order no longer paid, skipping delivery promotion",
				zap.String("order_id", o.ID.String()),
				zap.String("status", o.Status.String()),
			)
			return nil
		}

		if err := o.MarkDelivered(now); err != nil {
			return err
		}

		return repos.OrderRepo().UpdateStatus(ctx, o)
	})
}
