package booking

import (
	"sort"
	"time"
)

// SlotDuration is the fixed length of every bookable slot.
const SlotDuration = time.Hour

// DateLayout is the layout of AvailabilityMap keys and Selection dates.
const DateLayout = "2006-01-02"

// RawSlotBatch is every slot the backend offers on one UTC calendar day.
type RawSlotBatch struct {
	UTCDate time.Time `json:"utcDate"`
	Slots   []RawSlot `json:"slots"`
}

// RawSlot is a slot as stored by the backend. TimeRangeUTC looks like "09:00-10:00".
type RawSlot struct {
	TimeRangeUTC   string `json:"timeUTC"`
	CounselorID    string `json:"counselorId"`
	CounselorEmail string `json:"counselorEmail"`
}

// ConvertedSlot is a RawSlot re-expressed in the viewer's timezone.
type ConvertedSlot struct {
	RawSlot

	DisplayTime  string    `json:"displayTime"`
	LocalDate    string    `json:"localDate"`
	LocalInstant time.Time `json:"localInstant"`
}

// AvailabilityMap indexes converted slots by local date ("YYYY-MM-DD").
// Slots within a date keep the order they were appended in.
type AvailabilityMap map[string][]ConvertedSlot

// Dates returns the map keys in ascending order.
func (m AvailabilityMap) Dates() []string {
	out := make([]string, 0, len(m))
	for d := range m {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// DisplayTimes returns the distinct display labels for date, first occurrence wins.
func (m AvailabilityMap) DisplayTimes(date string) []string {
	slots := m[date]
	seen := make(map[string]bool, len(slots))
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		if seen[s.DisplayTime] {
			continue
		}
		seen[s.DisplayTime] = true
		out = append(out, s.DisplayTime)
	}
	return out
}

// Find returns the first slot on date whose DisplayTime equals displayTime.
func (m AvailabilityMap) Find(date, displayTime string) (ConvertedSlot, bool) {
	for _, s := range m[date] {
		if s.DisplayTime == displayTime {
			return s, true
		}
	}
	return ConvertedSlot{}, false
}

// Selection is the user's current pick. An empty Date means no date is selected.
type Selection struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Complete reports whether both a date and a time are chosen.
func (s Selection) Complete() bool {
	return s.Date != "" && s.Time != ""
}

// FormFields are the contact and registration fields entered by the user.
type FormFields struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Location        string `json:"location"`
	Grade           string `json:"grade"`
	CountryCode     string `json:"countryCode"`
	BatchNo         string `json:"batchNo"`
	ParentConfirmed bool   `json:"parentConfirmed"`
}

const (
	DefaultCountryCode = "+91"
	DefaultBatchNo     = "100"
)

// EmptyForm returns a blank form with the usual defaults filled in.
func EmptyForm() FormFields {
	return FormFields{CountryCode: DefaultCountryCode, BatchNo: DefaultBatchNo}
}
