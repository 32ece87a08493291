package booking

import "time"

// DefaultProgram is the program label attached to every booking.
const DefaultProgram = "LITTLE SCIENTIST 1ST-4TH"

// instantLayout matches the millisecond UTC timestamps the backend stores.
const instantLayout = "2006-01-02T15:04:05.000Z07:00"

// BookingRequest is the normalized payload sent to the booking backend.
type BookingRequest struct {
	FormFields

	Date           string `json:"date"`
	Program        string `json:"program"`
	Time           string `json:"time"`
	DateUTC        string `json:"dateUTC"`
	TimeSlotUTC    string `json:"timeSlotUTC"`
	Timezone       string `json:"timezone"`
	CounselorID    string `json:"counselorId"`
	CounselorEmail string `json:"counselorEmail"`
}

// NewBookingRequest merges the form with the resolved slot. displayTime is the
// label the user picked; tz is the zone the slot was displayed in.
func NewBookingRequest(form FormFields, slot ConvertedSlot, displayTime, tz, program string) BookingRequest {
	if program == "" {
		program = DefaultProgram
	}
	return BookingRequest{
		FormFields:     form,
		Date:           slot.LocalDate,
		Program:        program,
		Time:           displayTime,
		DateUTC:        FormatInstant(slot.LocalInstant),
		TimeSlotUTC:    slot.TimeRangeUTC,
		Timezone:       tz,
		CounselorID:    slot.CounselorID,
		CounselorEmail: slot.CounselorEmail,
	}
}

// FormatInstant renders t as an absolute UTC timestamp with milliseconds.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(instantLayout)
}
