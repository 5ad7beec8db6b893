package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Rvd99/ali-baba/repository"
)

// OrderSweeper cancels PENDING gateway orders whose hosted payment session
// was abandoned. Only orders that never reserved stock are touched, so the
// cancellation is a pure status flip with nothing to restock.
type OrderSweeper struct {
	orderRepo repository.OrderRepository
	interval  time.Duration
	maxAge    time.Duration
	logger    *zap.Logger
}

func NewOrderSweeper(orderRepo repository.OrderRepository, interval, maxAge time.Duration, logger *zap.Logger) *OrderSweeper {
	return &OrderSweeper{
		orderRepo: orderRepo,
		interval:  interval,
		maxAge:    maxAge,
		logger:    logger,
	}
}

// Run loops until ctx is cancelled.
func (s *OrderSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Order sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single pass.
func (s *OrderSweeper) SweepOnce(ctx context.Context) {
	cutoff := time.Now().Add(-s.maxAge)
	n, err := s.orderRepo.CancelStaleCheckoutOrders(ctx, cutoff)
	if err != nil {
		s.logger.Error("Order sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("Cancelled stale checkout orders", zap.Int64("count", n))
	}
}
