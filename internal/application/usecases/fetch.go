package usecases

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/slotbook/internal/domain/booking"
	"github.com/example/slotbook/internal/infrastructure/metrics"
)

const maxFetchDelay = 5 * time.Second

// SlotFetcher loads slot batches, retrying transient failures with
// exponential backoff.
type SlotFetcher struct {
	Source    booking.SlotSource
	Attempts  int
	BaseDelay time.Duration
	Metrics   *metrics.BookingMetrics
	Logger    *zap.Logger
}

func (f SlotFetcher) Fetch(ctx context.Context) ([]booking.RawSlotBatch, error) {
	if f.Source == nil {
		return nil, fmt.Errorf("slot source is nil")
	}
	attempts := f.Attempts
	if attempts < 1 {
		attempts = 1
	}
	log := f.Logger
	if log == nil {
		log = zap.NewNop()
	}

	start := time.Now()
	delay := f.BaseDelay
	var lastErr error
	for i := 1; i <= attempts; i++ {
		batches, err := f.Source.FetchAvailableSlots(ctx)
		if err == nil {
			f.Metrics.ObserveFetch(true, time.Since(start).Seconds())
			return batches, nil
		}
		lastErr = err
		if i == attempts || ctx.Err() != nil {
			break
		}
		log.Debug("slot fetch failed, retrying", zap.Int("attempt", i), zap.Duration("delay", delay), zap.Error(err))
		select {
		case <-ctx.Done():
			f.Metrics.ObserveFetch(false, time.Since(start).Seconds())
			return nil, fmt.Errorf("fetch slots: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxFetchDelay {
			delay = maxFetchDelay
		}
	}
	f.Metrics.ObserveFetch(false, time.Since(start).Seconds())
	return nil, fmt.Errorf("fetch slots: %w", lastErr)
}
