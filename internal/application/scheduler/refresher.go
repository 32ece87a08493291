package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/slotbook/internal/domain/booking"
)

type cacheRefresher interface {
	Refresh(ctx context.Context) ([]booking.RawSlotBatch, error)
}

type sessionSweeper interface {
	Sweep() int
}

// Refresher keeps the slot cache warm and drops idle form sessions on a ticker.
// Either target may be nil.
type Refresher struct {
	Cache    cacheRefresher
	Sessions sessionSweeper
	Interval time.Duration
	Logger   *zap.Logger
}

func (r *Refresher) Run(ctx context.Context) error {
	if r.Logger == nil {
		r.Logger = zap.NewNop()
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	// kick immediately
	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			r.tick(ctx)
		}
	}
}

func (r *Refresher) tick(ctx context.Context) {
	if r.Cache != nil {
		tctx, cancel := context.WithTimeout(ctx, r.Interval)
		batches, err := r.Cache.Refresh(tctx)
		cancel()
		if err != nil {
			r.Logger.Warn("slot cache refresh failed", zap.Error(err))
		} else {
			r.Logger.Debug("slot cache refreshed", zap.Int("batches", len(batches)))
		}
	}
	if r.Sessions != nil {
		if n := r.Sessions.Sweep(); n > 0 {
			r.Logger.Debug("expired form sessions", zap.Int("count", n))
		}
	}
}
