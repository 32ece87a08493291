package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormState_RebuildSelectsNextDate(t *testing.T) {
	now := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	s := NewFormState("Asia/Kolkata").RebuildMap(sampleBatches(t), now)

	assert.Equal(t, []string{"2024-01-01", "2024-01-04"}, s.Map.Dates())
	assert.Equal(t, Selection{Date: "2024-01-01"}, s.Selection)
}

func TestFormState_TransitionsDoNotMutateReceiver(t *testing.T) {
	base := NewFormState("UTC")
	next := base.SelectDate("2024-01-01").SelectTime("9:00 AM-10:00 AM")

	assert.Equal(t, Selection{}, base.Selection)
	assert.Equal(t, Selection{Date: "2024-01-01", Time: "9:00 AM-10:00 AM"}, next.Selection)

	// changing the date always clears the time
	again := next.SelectDate("2024-01-02")
	assert.Equal(t, Selection{Date: "2024-01-02"}, again.Selection)
	assert.Equal(t, "9:00 AM-10:00 AM", next.Selection.Time)
}

func TestFormState_StaleFetchIsDiscarded(t *testing.T) {
	now := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	s := NewFormState("UTC")

	s, older := s.BeginFetch()
	s, newer := s.BeginFetch()
	require.Greater(t, newer, older)

	fresh := []RawSlotBatch{{UTCDate: day(t, "2024-02-01"), Slots: []RawSlot{{TimeRangeUTC: "10:00-11:00"}}}}
	s, applied := s.ApplyFetch(newer, fresh, now)
	require.True(t, applied)

	s2, applied := s.ApplyFetch(older, sampleBatches(t), now)
	assert.False(t, applied)
	assert.Equal(t, s, s2)
	assert.Equal(t, []string{"2024-02-01"}, s2.Map.Dates())
}

func TestFormState_SingleSubmissionInFlight(t *testing.T) {
	s, err := NewFormState("UTC").StartSubmit()
	require.NoError(t, err)
	assert.True(t, s.Submitting)

	_, err = s.StartSubmit()
	assert.True(t, errors.Is(err, ErrSubmissionInFlight))
}

func TestFormState_FinishSubmit(t *testing.T) {
	form := validForm()
	form.BatchNo = "57"
	s := NewFormState("Asia/Kolkata").
		RebuildMap(sampleBatches(t), time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)).
		UpdateForm(form).
		SelectDate("2024-01-01").
		SelectTime("2:30 PM-3:30 PM")
	s, err := s.StartSubmit()
	require.NoError(t, err)

	failed := s.FinishSubmit(ServerRejection("full"))
	assert.False(t, failed.Submitting)
	assert.Equal(t, form, failed.Form)
	assert.Equal(t, s.Selection, failed.Selection)

	failed = s.FinishSubmit(NetworkError(errors.New("timeout")))
	assert.Equal(t, form, failed.Form)

	ok := s.FinishSubmit(Success("b-1"))
	assert.False(t, ok.Submitting)
	assert.Equal(t, Selection{}, ok.Selection)
	assert.Equal(t, "", ok.Form.Name)
	assert.Equal(t, "57", ok.Form.BatchNo)
	assert.Equal(t, DefaultCountryCode, ok.Form.CountryCode)
	assert.Equal(t, "Asia/Kolkata", ok.Timezone)
	assert.Equal(t, s.Map, ok.Map)
}

func TestFormState_WithTimezoneRebuildsFromHeldBatches(t *testing.T) {
	now := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	s := NewFormState("Asia/Kolkata").RebuildMap(sampleBatches(t), now)
	s = s.SelectTime(s.Map.DisplayTimes(s.Selection.Date)[0])

	la := s.WithTimezone("America/Los_Angeles", now)
	assert.Equal(t, "America/Los_Angeles", la.Timezone)
	assert.Equal(t, BuildIndex(sampleBatches(t), "America/Los_Angeles"), la.Map)
	assert.Equal(t, Selection{Date: "2023-12-31"}, la.Selection)
	assert.Equal(t, "Asia/Kolkata", s.Timezone)

	empty := NewFormState("UTC").WithTimezone("America/Los_Angeles", now)
	assert.Empty(t, empty.Map)
	assert.Equal(t, Selection{}, empty.Selection)
}
