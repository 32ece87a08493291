package booking

import "context"

// SlotSource returns the backend's slot batches. Batches with no slots are valid.
type SlotSource interface {
	FetchAvailableSlots(ctx context.Context) ([]RawSlotBatch, error)
}

// BookingBackend accepts a booking and returns the raw response body. A non-nil
// error means the dispatch itself did not complete; any body that arrived is
// returned with a nil error and classified by DecodeOutcome.
type BookingBackend interface {
	SubmitBooking(ctx context.Context, req BookingRequest) ([]byte, error)
}
