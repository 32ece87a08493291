package usecases

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/slotbook/internal/domain/booking"
	"github.com/example/slotbook/internal/infrastructure/metrics"
)

type FormDeps struct {
	Fetcher   SlotFetcher
	Submitter Submitter
	Metrics   *metrics.BookingMetrics
	Logger    *zap.Logger
	Now       func() time.Time

	// OnBooked runs after a successful submission, outside the form lock.
	OnBooked func(ctx context.Context)
}

// Form drives one booking form. All transitions go through booking.FormState;
// the lock is never held across a fetch or a submission.
type Form struct {
	mu    sync.Mutex
	state booking.FormState
	deps  FormDeps
}

func NewForm(tz string, deps FormDeps) *Form {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Form{state: booking.NewFormState(tz), deps: deps}
}

func (f *Form) State() booking.FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Load fetches slots and rebuilds the map. A fetch overtaken by a later Load
// or SetTimezone is dropped. On error the previous map is kept.
func (f *Form) Load(ctx context.Context) (booking.FormState, error) {
	f.mu.Lock()
	var token uint64
	f.state, token = f.state.BeginFetch()
	f.mu.Unlock()

	batches, err := f.deps.Fetcher.Fetch(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.deps.Logger.Warn("slot fetch failed", zap.Error(err))
		return f.state, err
	}
	next, applied := f.state.ApplyFetch(token, batches, f.deps.Now())
	if !applied {
		f.deps.Metrics.ObserveStaleDiscard()
		f.deps.Logger.Debug("discarding superseded slot fetch",
			zap.Uint64("token", token), zap.Uint64("latest", f.state.Generation))
		return f.state, nil
	}
	f.state = next
	return f.state, nil
}

// SetTimezone switches zones, re-converts the slots already held and then
// reloads. If the reload fails the form still shows the held slots in tz.
// An unknown zone is kept as given; conversion falls back to UTC display for it.
func (f *Form) SetTimezone(ctx context.Context, tz string) (booking.FormState, error) {
	f.mu.Lock()
	f.state = f.state.WithTimezone(tz, f.deps.Now())
	f.mu.Unlock()
	return f.Load(ctx)
}

func (f *Form) SelectDate(date string) booking.FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = f.state.SelectDate(date)
	return f.state
}

func (f *Form) SelectTime(displayTime string) booking.FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = f.state.SelectTime(displayTime)
	return f.state
}

func (f *Form) UpdateForm(form booking.FormFields) booking.FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = f.state.UpdateForm(form)
	return f.state
}

// Submit validates the current selection against the current map and, if it
// passes, dispatches the booking. form, when non-nil, replaces the stored
// fields first. Validation failures and ErrSubmissionInFlight are returned as
// errors; every dispatched submission yields an Outcome.
func (f *Form) Submit(ctx context.Context, form *booking.FormFields) (booking.Outcome, error) {
	f.mu.Lock()
	if form != nil {
		f.state = f.state.UpdateForm(*form)
	}
	next, err := f.state.StartSubmit()
	if err != nil {
		f.mu.Unlock()
		return booking.Outcome{}, err
	}
	slot, err := booking.Validate(f.state.Selection, f.state.Map, f.state.Form)
	if err != nil {
		f.mu.Unlock()
		var ve *booking.ValidationError
		if errors.As(err, &ve) {
			f.deps.Metrics.ObserveValidationFailure(string(ve.Code))
			f.deps.Logger.Debug("booking validation failed", zap.String("code", string(ve.Code)))
		}
		return booking.Outcome{}, err
	}
	f.state = next
	fields, sel, tz := f.state.Form, f.state.Selection, f.state.Timezone
	f.mu.Unlock()

	o := f.deps.Submitter.Submit(ctx, fields, slot, sel.Time, tz)

	f.mu.Lock()
	f.state = f.state.FinishSubmit(o)
	f.mu.Unlock()

	if o.IsSuccess() && f.deps.OnBooked != nil {
		f.deps.OnBooked(ctx)
	}
	return o, nil
}
