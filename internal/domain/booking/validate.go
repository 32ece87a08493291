package booking

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationCode names a user-correctable reason a booking cannot be submitted.
type ValidationCode string

const (
	MissingSelection ValidationCode = "missing_selection"
	InvalidEmail     ValidationCode = "invalid_email"
	StaleSelection   ValidationCode = "stale_selection"
	IncompleteForm   ValidationCode = "incomplete_form"
)

var validationMessages = map[ValidationCode]string{
	MissingSelection: "please select a date and time",
	InvalidEmail:     "enter a valid email address",
	StaleSelection:   "selected time is no longer available",
	IncompleteForm:   "please complete all required fields",
}

// ValidationError is returned by Validate.
type ValidationError struct {
	Code ValidationCode
}

func (e *ValidationError) Error() string {
	if msg, ok := validationMessages[e.Code]; ok {
		return msg
	}
	return fmt.Sprintf("validation failed: %s", e.Code)
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks sel and form against m and returns the slot to book. Checks
// run in a fixed order and stop at the first failure.
func Validate(sel Selection, m AvailabilityMap, form FormFields) (ConvertedSlot, error) {
	if !sel.Complete() {
		return ConvertedSlot{}, &ValidationError{Code: MissingSelection}
	}
	if !emailPattern.MatchString(form.Email) {
		return ConvertedSlot{}, &ValidationError{Code: InvalidEmail}
	}
	slot, ok := m.Find(sel.Date, sel.Time)
	if !ok {
		return ConvertedSlot{}, &ValidationError{Code: StaleSelection}
	}
	if blank(form.Name) || blank(form.Location) || blank(form.Grade) || !form.ParentConfirmed {
		return ConvertedSlot{}, &ValidationError{Code: IncompleteForm}
	}
	return slot, nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
