package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/slotbook/internal/domain/booking"
	"github.com/example/slotbook/internal/infrastructure/crypto"
)

const maxListLimit = 500

// BookingLog stores every dispatched submission in the bookings table.
// With a sealer set, email and phone are encrypted at rest.
type BookingLog struct {
	db     DBTX
	sealer *crypto.Sealer
}

func NewBookingLog(db DBTX) *BookingLog { return &BookingLog{db: db} }

func (r *BookingLog) WithSealer(s *crypto.Sealer) *BookingLog {
	r.sealer = s
	return r
}

func (r *BookingLog) Record(ctx context.Context, e booking.LogEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	q := e.Request
	if r.sealer != nil {
		var err error
		if q.Email, err = r.sealer.Seal(q.Email); err != nil {
			return fmt.Errorf("seal email: %w", err)
		}
		if q.Phone, err = r.sealer.Seal(q.Phone); err != nil {
			return fmt.Errorf("seal phone: %w", err)
		}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO bookings (
			id, outcome, booking_ref, message,
			name, email, phone, location, grade, country_code, batch_no, parent_confirmed,
			program, local_date, display_time, date_utc, time_slot_utc, timezone,
			counselor_id, counselor_email, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		e.ID, e.Outcome.String(), e.BookingRef, e.Message,
		q.Name, q.Email, q.Phone, q.Location, q.Grade, q.CountryCode, q.BatchNo, q.ParentConfirmed,
		q.Program, q.Date, q.Time, q.DateUTC, q.TimeSlotUTC, q.Timezone,
		q.CounselorID, q.CounselorEmail, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record booking: %w", err)
	}
	return nil
}

// List returns the newest entries first. limit is clamped to [1, 500].
func (r *BookingLog) List(ctx context.Context, limit int) ([]booking.LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, outcome, booking_ref, message,
			name, email, phone, location, grade, country_code, batch_no, parent_confirmed,
			program, local_date, display_time, date_utc, time_slot_utc, timezone,
			counselor_id, counselor_email, created_at
		FROM bookings ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []booking.LogEntry
	for rows.Next() {
		var (
			e       booking.LogEntry
			outcome string
		)
		q := &e.Request
		if err := rows.Scan(&e.ID, &outcome, &e.BookingRef, &e.Message,
			&q.Name, &q.Email, &q.Phone, &q.Location, &q.Grade, &q.CountryCode, &q.BatchNo, &q.ParentConfirmed,
			&q.Program, &q.Date, &q.Time, &q.DateUTC, &q.TimeSlotUTC, &q.Timezone,
			&q.CounselorID, &q.CounselorEmail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		e.Outcome = booking.ParseOutcomeKind(outcome)
		if r.sealer != nil {
			if q.Email, err = r.sealer.Open(q.Email); err != nil {
				return nil, fmt.Errorf("open email: %w", err)
			}
			if q.Phone, err = r.sealer.Open(q.Phone); err != nil {
				return nil, fmt.Errorf("open phone: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
