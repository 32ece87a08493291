package usecases

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/example/slotbook/internal/domain/booking"
	"github.com/example/slotbook/internal/infrastructure/metrics"
)

var errNoBackend = errors.New("booking backend is not configured")

// Submitter normalizes a validated selection into a BookingRequest, dispatches
// it once and classifies the reply. It never retries.
type Submitter struct {
	Backend booking.BookingBackend
	Program string
	Log     booking.BookingLog
	Metrics *metrics.BookingMetrics
	Logger  *zap.Logger
	Now     func() time.Time
}

func (u Submitter) Submit(ctx context.Context, form booking.FormFields, slot booking.ConvertedSlot, displayTime, tz string) booking.Outcome {
	log := u.logger()
	req := booking.NewBookingRequest(form, slot, displayTime, tz, u.Program)

	var o booking.Outcome
	if u.Backend == nil {
		o = booking.NetworkError(errNoBackend)
	} else if body, err := u.Backend.SubmitBooking(ctx, req); err != nil {
		o = booking.NetworkError(err)
	} else {
		o = booking.DecodeOutcome(body)
	}

	u.Metrics.ObserveOutcome(o.Kind.String())
	fields := []zap.Field{
		zap.String("date", req.Date),
		zap.String("timeSlotUTC", req.TimeSlotUTC),
		zap.String("timezone", req.Timezone),
		zap.String("counselorId", req.CounselorID),
	}
	switch o.Kind {
	case booking.OutcomeSuccess:
		log.Info("booking confirmed", append(fields, zap.String("bookingRef", o.BookingRef))...)
	case booking.OutcomeServerRejection:
		log.Info("booking rejected by backend", append(fields, zap.String("message", o.Message))...)
	case booking.OutcomeNetworkError:
		log.Warn("booking dispatch failed", append(fields, zap.Error(o.Cause))...)
	}

	if u.Log != nil {
		if err := u.Log.Record(ctx, booking.NewLogEntry(req, o, u.now())); err != nil {
			log.Warn("booking log write failed", zap.Error(err))
		}
	}
	return o
}

func (u Submitter) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

func (u Submitter) logger() *zap.Logger {
	if u.Logger == nil {
		return zap.NewNop()
	}
	return u.Logger
}
