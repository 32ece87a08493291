package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS bookings (
	id TEXT PRIMARY KEY,
	outcome TEXT NOT NULL,
	booking_ref TEXT NOT NULL DEFAULT '',
	message TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	grade TEXT NOT NULL DEFAULT '',
	country_code TEXT NOT NULL DEFAULT '',
	batch_no TEXT NOT NULL DEFAULT '',
	parent_confirmed BOOLEAN NOT NULL DEFAULT false,
	program TEXT NOT NULL DEFAULT '',
	local_date TEXT NOT NULL DEFAULT '',
	display_time TEXT NOT NULL DEFAULT '',
	date_utc TEXT NOT NULL DEFAULT '',
	time_slot_utc TEXT NOT NULL DEFAULT '',
	timezone TEXT NOT NULL DEFAULT '',
	counselor_id TEXT NOT NULL DEFAULT '',
	counselor_email TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_bookings_created_at ON bookings(created_at DESC);
`

func Migrate(ctx context.Context, db DBTX) error {
	_, err := db.Exec(ctx, schemaSQL)
	return err
}
