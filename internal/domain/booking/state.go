package booking

import (
	"errors"
	"time"
)

// ErrSubmissionInFlight is returned by StartSubmit while a submission is outstanding.
var ErrSubmissionInFlight = errors.New("a booking submission is already in progress")

// FormState is everything one booking form owns. Transitions are methods with
// value receivers that return the next state; the receiver is never modified
// and the AvailabilityMap is replaced, never edited.
type FormState struct {
	Timezone   string          `json:"timezone"`
	Map        AvailabilityMap `json:"availability"`
	Batches    []RawSlotBatch  `json:"-"` // last successful fetch; Map is always built from these
	Selection  Selection       `json:"selection"`
	Form       FormFields      `json:"form"`
	Generation uint64          `json:"generation"`
	Submitting bool            `json:"submitting"`
}

// NewFormState returns an empty form viewing slots in tz.
func NewFormState(tz string) FormState {
	return FormState{
		Timezone: tz,
		Map:      AvailabilityMap{},
		Form:     EmptyForm(),
	}
}

// RebuildMap replaces the map with one built from batches and re-initialises
// the selection to the next available date.
func (s FormState) RebuildMap(batches []RawSlotBatch, now time.Time) FormState {
	s.Batches = batches
	s.Map = BuildIndex(batches, s.Timezone)
	s.Selection = NextAvailable(s.Map, now)
	return s
}

// WithTimezone switches the viewing zone and rebuilds the map from the last
// fetched batches, so Map and Timezone never disagree.
func (s FormState) WithTimezone(tz string, now time.Time) FormState {
	s.Timezone = tz
	return s.RebuildMap(s.Batches, now)
}

// BeginFetch issues a new fetch token. Only the fetch holding the latest token
// may apply its result.
func (s FormState) BeginFetch() (FormState, uint64) {
	s.Generation++
	return s, s.Generation
}

// ApplyFetch rebuilds from batches if token is still the latest one issued.
// A superseded result is dropped and the state is returned unchanged.
func (s FormState) ApplyFetch(token uint64, batches []RawSlotBatch, now time.Time) (FormState, bool) {
	if token != s.Generation {
		return s, false
	}
	return s.RebuildMap(batches, now), true
}

// SelectDate picks a date and always clears the time.
func (s FormState) SelectDate(date string) FormState {
	s.Selection = Selection{Date: date}
	return s
}

// SelectTime picks a display time on the selected date.
func (s FormState) SelectTime(displayTime string) FormState {
	s.Selection.Time = displayTime
	return s
}

// UpdateForm replaces the entered form fields.
func (s FormState) UpdateForm(f FormFields) FormState {
	s.Form = f
	return s
}

// StartSubmit marks a submission as outstanding.
func (s FormState) StartSubmit() (FormState, error) {
	if s.Submitting {
		return s, ErrSubmissionInFlight
	}
	s.Submitting = true
	return s, nil
}

// FinishSubmit clears the in-flight mark. A successful outcome also resets the
// form and the selection; failures leave both intact.
func (s FormState) FinishSubmit(o Outcome) FormState {
	s.Submitting = false
	if o.IsSuccess() {
		s = s.Reset()
	}
	return s
}

// Reset clears the form and selection, keeping the timezone, map and batch number.
func (s FormState) Reset() FormState {
	batch := s.Form.BatchNo
	s.Form = EmptyForm()
	if batch != "" {
		s.Form.BatchNo = batch
	}
	s.Selection = Selection{}
	return s
}
