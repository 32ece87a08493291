package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/example/slotbook/internal/domain/booking"
)

type fetchResult struct {
	batches []booking.RawSlotBatch
	err     error
	wait    chan struct{}
}

// scriptedSource answers calls from script in order, repeating the last entry.
type scriptedSource struct {
	mu      sync.Mutex
	calls   int
	script  []fetchResult
	started chan int
}

func (s *scriptedSource) FetchAvailableSlots(ctx context.Context) ([]booking.RawSlotBatch, error) {
	s.mu.Lock()
	i := s.calls
	s.calls++
	r := s.script[min(i, len(s.script)-1)]
	s.mu.Unlock()
	if s.started != nil {
		s.started <- i
	}
	if r.wait != nil {
		select {
		case <-r.wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.batches, r.err
}

func (s *scriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeBackend struct {
	mu    sync.Mutex
	body  []byte
	err   error
	gate  chan struct{}
	calls []booking.BookingRequest
}

func (b *fakeBackend) SubmitBooking(ctx context.Context, req booking.BookingRequest) ([]byte, error) {
	b.mu.Lock()
	b.calls = append(b.calls, req)
	gate := b.gate
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return b.body, b.err
}

func (b *fakeBackend) Requests() []booking.BookingRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]booking.BookingRequest(nil), b.calls...)
}

type memLog struct {
	mu      sync.Mutex
	entries []booking.LogEntry
	err     error
}

func (l *memLog) Record(_ context.Context, e booking.LogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.entries = append(l.entries, e)
	return nil
}

func (l *memLog) List(_ context.Context, limit int) ([]booking.LogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]booking.LogEntry(nil), l.entries...), nil
}

var testNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func oneSlotBatches() []booking.RawSlotBatch {
	return []booking.RawSlotBatch{{
		UTCDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Slots:   []booking.RawSlot{{TimeRangeUTC: "09:00-10:00", CounselorID: "c1", CounselorEmail: "c1@example.com"}},
	}}
}

func completeForm() booking.FormFields {
	f := booking.EmptyForm()
	f.Name = "Asha"
	f.Email = "asha@example.com"
	f.Location = "Pune"
	f.Grade = "3"
	f.ParentConfirmed = true
	return f
}
