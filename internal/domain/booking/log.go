package booking

import (
	"context"
	"time"
)

// LogEntry is one dispatched submission and how it ended.
type LogEntry struct {
	ID         string         `json:"id"`
	Outcome    OutcomeKind    `json:"outcome"`
	BookingRef string         `json:"bookingRef,omitempty"`
	Message    string         `json:"message,omitempty"`
	Request    BookingRequest `json:"request"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// NewLogEntry pairs a dispatched request with its outcome.
func NewLogEntry(req BookingRequest, o Outcome, at time.Time) LogEntry {
	e := LogEntry{Outcome: o.Kind, Request: req, CreatedAt: at.UTC()}
	switch o.Kind {
	case OutcomeSuccess:
		e.BookingRef = o.BookingRef
	case OutcomeServerRejection:
		e.Message = o.Message
	case OutcomeNetworkError:
		if o.Cause != nil {
			e.Message = o.Cause.Error()
		}
	}
	return e
}

// BookingLog persists submission outcomes for later review.
type BookingLog interface {
	Record(ctx context.Context, e LogEntry) error
	List(ctx context.Context, limit int) ([]LogEntry, error)
}
