package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/slotbook/internal/domain/booking"
	"github.com/example/slotbook/internal/infrastructure/metrics"
)

func newTestForm(src booking.SlotSource, be booking.BookingBackend, log booking.BookingLog) *Form {
	return NewForm("Asia/Kolkata", FormDeps{
		Fetcher:   SlotFetcher{Source: src, Attempts: 1},
		Submitter: Submitter{Backend: be, Log: log, Now: fixedNow},
		Metrics:   metrics.NewBookingMetrics(prometheus.NewRegistry()),
		Now:       fixedNow,
	})
}

func loadedForm(t *testing.T, be booking.BookingBackend, log booking.BookingLog) *Form {
	t.Helper()
	f := newTestForm(&scriptedSource{script: []fetchResult{{batches: oneSlotBatches()}}}, be, log)
	_, err := f.Load(context.Background())
	require.NoError(t, err)
	f.SelectTime("2:30 PM-3:30 PM")
	f.UpdateForm(completeForm())
	return f
}

func TestFormLoad(t *testing.T) {
	f := newTestForm(&scriptedSource{script: []fetchResult{{batches: oneSlotBatches()}}}, nil, nil)

	s, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01"}, s.Map.Dates())
	assert.Equal(t, booking.Selection{Date: "2024-01-01"}, s.Selection)
	assert.Equal(t, []string{"2:30 PM-3:30 PM"}, s.Map.DisplayTimes("2024-01-01"))
}

func TestFormLoadErrorKeepsMap(t *testing.T) {
	src := &scriptedSource{script: []fetchResult{{batches: oneSlotBatches()}, {err: errors.New("down")}}}
	f := newTestForm(src, nil, nil)
	_, err := f.Load(context.Background())
	require.NoError(t, err)

	s, err := f.Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []string{"2024-01-01"}, s.Map.Dates())
}

func TestFormTimezoneSwitchWithFailedFetch(t *testing.T) {
	src := &scriptedSource{script: []fetchResult{{batches: oneSlotBatches()}, {err: errors.New("down")}}}
	be := &fakeBackend{body: []byte(`{"success":true}`)}
	f := newTestForm(src, be, nil)
	_, err := f.Load(context.Background())
	require.NoError(t, err)
	f.SelectTime("2:30 PM-3:30 PM")
	f.UpdateForm(completeForm())

	s, err := f.SetTimezone(context.Background(), "America/Los_Angeles")
	require.Error(t, err)
	assert.Equal(t, "America/Los_Angeles", s.Timezone)
	assert.Equal(t, []string{"1:00 AM-2:00 AM"}, s.Map.DisplayTimes("2024-01-01"))
	assert.Equal(t, booking.Selection{Date: "2024-01-01"}, s.Selection)

	// the Kolkata label no longer resolves
	f.SelectTime("2:30 PM-3:30 PM")
	_, err = f.Submit(context.Background(), nil)
	var ve *booking.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, be.Requests())

	f.SelectTime("1:00 AM-2:00 AM")
	o, err := f.Submit(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, o.IsSuccess())
	reqs := be.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "1:00 AM-2:00 AM", reqs[0].Time)
	assert.Equal(t, "America/Los_Angeles", reqs[0].Timezone)
	assert.Equal(t, "2024-01-01T09:00:00.000Z", reqs[0].DateUTC)
}

func TestFormDiscardsSupersededFetch(t *testing.T) {
	release := make(chan struct{})
	laBatches := []booking.RawSlotBatch{{
		UTCDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Slots:   []booking.RawSlot{{TimeRangeUTC: "05:00-06:00", CounselorID: "c2"}},
	}}
	src := &scriptedSource{
		started: make(chan int, 2),
		script: []fetchResult{
			{batches: oneSlotBatches(), wait: release},
			{batches: laBatches},
		},
	}
	f := newTestForm(src, nil, nil)

	done := make(chan booking.FormState)
	go func() {
		s, err := f.Load(context.Background())
		assert.NoError(t, err)
		done <- s
	}()
	<-src.started

	s, err := f.SetTimezone(context.Background(), "America/Los_Angeles")
	require.NoError(t, err)
	<-src.started
	assert.Equal(t, []string{"2023-12-31"}, s.Map.Dates())

	close(release)
	stale := <-done
	assert.Equal(t, "America/Los_Angeles", stale.Timezone)
	assert.Equal(t, []string{"2023-12-31"}, stale.Map.Dates())
	assert.Equal(t, []string{"2023-12-31"}, f.State().Map.Dates())
	assert.Equal(t, "9:00 PM-10:00 PM", f.State().Map["2023-12-31"][0].DisplayTime)
}

func TestFormSubmitValidationFailure(t *testing.T) {
	be := &fakeBackend{body: []byte(`{"success":true}`)}
	f := loadedForm(t, be, nil)

	bad := completeForm()
	bad.Email = "not-an-email"
	_, err := f.Submit(context.Background(), &bad)

	var ve *booking.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, booking.InvalidEmail, ve.Code)
	assert.Empty(t, be.Requests())
	assert.False(t, f.State().Submitting)
	assert.Equal(t, "not-an-email", f.State().Form.Email)
}

func TestFormSubmitSuccess(t *testing.T) {
	be := &fakeBackend{body: []byte(`{"booking":{"_id":"b-1"}}`)}
	log := &memLog{}
	f := loadedForm(t, be, log)
	booked := 0
	f.deps.OnBooked = func(context.Context) { booked++ }

	o, err := f.Submit(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, booking.OutcomeSuccess, o.Kind)
	assert.Equal(t, "b-1", o.BookingRef)
	assert.Equal(t, 1, booked)

	reqs := be.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "2024-01-01", reqs[0].Date)
	assert.Equal(t, "2:30 PM-3:30 PM", reqs[0].Time)
	assert.Equal(t, "2024-01-01T09:00:00.000Z", reqs[0].DateUTC)
	assert.Equal(t, "09:00-10:00", reqs[0].TimeSlotUTC)
	assert.Equal(t, "Asia/Kolkata", reqs[0].Timezone)
	assert.Equal(t, booking.DefaultProgram, reqs[0].Program)

	s := f.State()
	assert.Equal(t, booking.Selection{}, s.Selection)
	assert.Equal(t, booking.EmptyForm(), s.Form)
	assert.Equal(t, "Asia/Kolkata", s.Timezone)
	assert.NotEmpty(t, s.Map)

	require.Len(t, log.entries, 1)
	assert.Equal(t, booking.OutcomeSuccess, log.entries[0].Outcome)
	assert.Equal(t, testNow, log.entries[0].CreatedAt)
}

func TestFormSubmitRejectionKeepsForm(t *testing.T) {
	be := &fakeBackend{body: []byte(`{"error":"slot already booked"}`)}
	f := loadedForm(t, be, nil)

	o, err := f.Submit(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, booking.OutcomeServerRejection, o.Kind)
	assert.Equal(t, "slot already booked", o.Message)
	assert.Equal(t, completeForm(), f.State().Form)
	assert.Equal(t, "2:30 PM-3:30 PM", f.State().Selection.Time)
}

func TestFormSubmitNetworkError(t *testing.T) {
	be := &fakeBackend{err: errors.New("connection refused")}
	log := &memLog{err: errors.New("db down")}
	f := loadedForm(t, be, log)

	o, err := f.Submit(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, booking.OutcomeNetworkError, o.Kind)
	assert.EqualError(t, o.Cause, "connection refused")
	assert.False(t, f.State().Submitting)
}

func TestFormSingleSubmissionInFlight(t *testing.T) {
	gate := make(chan struct{})
	be := &fakeBackend{body: []byte(`{"success":true}`), gate: gate}
	f := loadedForm(t, be, nil)

	done := make(chan booking.Outcome)
	go func() {
		o, err := f.Submit(context.Background(), nil)
		assert.NoError(t, err)
		done <- o
	}()
	require.Eventually(t, func() bool { return f.State().Submitting }, time.Second, time.Millisecond)

	_, err := f.Submit(context.Background(), nil)
	assert.ErrorIs(t, err, booking.ErrSubmissionInFlight)

	close(gate)
	assert.True(t, (<-done).IsSuccess())
	assert.Len(t, be.Requests(), 1)
}

func TestFormSubmitStaleAfterRebuild(t *testing.T) {
	src := &scriptedSource{script: []fetchResult{
		{batches: oneSlotBatches()},
		{batches: []booking.RawSlotBatch{{
			UTCDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Slots:   []booking.RawSlot{{TimeRangeUTC: "11:00-12:00"}},
		}}},
	}}
	be := &fakeBackend{body: []byte(`{"success":true}`)}
	f := newTestForm(src, be, nil)
	_, err := f.Load(context.Background())
	require.NoError(t, err)
	f.SelectTime("2:30 PM-3:30 PM")
	f.UpdateForm(completeForm())

	_, err = f.Load(context.Background())
	require.NoError(t, err)
	f.SelectTime("2:30 PM-3:30 PM")

	_, err = f.Submit(context.Background(), nil)
	var ve *booking.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, booking.StaleSelection, ve.Code)
	assert.Empty(t, be.Requests())
}

func TestSubmitterWithoutBackend(t *testing.T) {
	o := Submitter{}.Submit(context.Background(), completeForm(), booking.ConvertedSlot{}, "x", "UTC")
	assert.Equal(t, booking.OutcomeNetworkError, o.Kind)
}
