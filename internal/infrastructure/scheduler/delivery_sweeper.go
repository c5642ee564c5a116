package scheduler

import (
	"context"
	"sync"
	"time"

	apporder "github.com/storefront/backend/internal/application/order"
	"go.uber.org/zap"
)

// SweepRunner is the decision half of the delivery reconciliation loop.
// The sweeper only schedules WHEN it runs; what gets promoted lives in the
// application service.
type SweepRunner interface {
	SweepDueDeliveries(ctx context.Context) (*apporder.SweepStats, error)
}

// DeliverySweeperConfig holds configuration for the delivery sweeper
type DeliverySweeperConfig struct {
	// CheckInterval is how often the sweep runs
	CheckInterval time.Duration
	// RunOnStart runs one sweep immediately on Start instead of waiting
	// for the first tick
	RunOnStart bool
}

// DefaultDeliverySweeperConfig returns default sweeper configuration
func DefaultDeliverySweeperConfig() DeliverySweeperConfig {
	return DeliverySweeperConfig{
		CheckInterval: 5 * time.Minute,
		RunOnStart:    true,
	}
}

// DeliverySweeper periodically runs the delivery sweep
type DeliverySweeper struct {
	config DeliverySweeperConfig
	runner SweepRunner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewDeliverySweeper creates a new delivery sweeper
func NewDeliverySweeper(config DeliverySweeperConfig, runner SweepRunner, logger *zap.Logger) *DeliverySweeper {
	return &DeliverySweeper{
		config: config,
		runner: runner,
		logger: logger,
	}
}

// Start starts the sweep loop
func (s *DeliverySweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Delivery sweeper started",
		zap.Duration("check_interval", s.config.CheckInterval),
		zap.Bool("run_on_start", s.config.RunOnStart),
	)

	return nil
}

// Stop stops the sweep loop, waiting for an in-flight sweep to finish
func (s *DeliverySweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Delivery sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *DeliverySweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.sweep(ctx)
	}

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *DeliverySweeper) sweep(ctx context.Context) {
	stats, err := s.runner.SweepDueDeliveries(ctx)
	if err != nil {
		// A failed run is not fatal; the next tick retries
		s.logger.Error("Delivery sweep failed", zap.Error(err))
		return
	}
	if stats.TotalDue > 0 {
		s.logger.Info("Delivery sweep finished",
			zap.Int("total_due", stats.TotalDue),
			zap.Int("delivered", stats.Delivered),
			zap.Int("failed", stats.Failed),
		)
	}
}
