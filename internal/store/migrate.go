package store

import (
	"fmt"

	"github.com/pocketbase/dbx"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(255) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		phone VARCHAR(15) NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL DEFAULT 'attendee',
		total_spent NUMERIC(12,2) NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category VARCHAR(50) NOT NULL DEFAULT '',
		organizer_id BIGINT NOT NULL REFERENCES users(id),
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		location VARCHAR(255) NOT NULL DEFAULT '',
		ticket_price NUMERIC(12,2) NOT NULL,
		total_tickets INTEGER NOT NULL CHECK (total_tickets >= 0),
		sold_tickets INTEGER NOT NULL DEFAULT 0
			CHECK (sold_tickets >= 0 AND sold_tickets <= total_tickets),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS discount_codes (
		id BIGSERIAL PRIMARY KEY,
		code VARCHAR(20) UNIQUE NOT NULL,
		discount_percent INTEGER NOT NULL CHECK (discount_percent BETWEEN 0 AND 100),
		event_id BIGINT REFERENCES events(id),
		user_group VARCHAR(20),
		valid_from TIMESTAMPTZ NOT NULL,
		valid_to TIMESTAMPTZ NOT NULL,
		max_uses INTEGER,
		used_count INTEGER NOT NULL DEFAULT 0
			CHECK (max_uses IS NULL OR used_count <= max_uses),
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,

	`CREATE TABLE IF NOT EXISTS payments (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		amount NUMERIC(12,2) NOT NULL,
		method VARCHAR(20) NOT NULL DEFAULT 'vnpay',
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		transaction_id VARCHAR(100) UNIQUE NOT NULL,
		discount_code_id BIGINT REFERENCES discount_codes(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ NOT NULL,
		paid_at TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id BIGSERIAL PRIMARY KEY,
		event_id BIGINT NOT NULL REFERENCES events(id),
		user_id BIGINT NOT NULL REFERENCES users(id),
		payment_id BIGINT REFERENCES payments(id),
		uuid VARCHAR(100) UNIQUE NOT NULL,
		price NUMERIC(12,2) NOT NULL,
		is_paid BOOLEAN NOT NULL DEFAULT FALSE,
		is_checked_in BOOLEAN NOT NULL DEFAULT FALSE,
		is_cancelled BOOLEAN NOT NULL DEFAULT FALSE,
		qr_url VARCHAR(255) NOT NULL DEFAULT '',
		purchase_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		check_in_date TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		event_id BIGINT REFERENCES events(id),
		type VARCHAR(20) NOT NULL,
		title VARCHAR(255) NOT NULL,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tickets_payment ON tickets(payment_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_event_user ON tickets(event_id, user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_status_expiry ON payments(status, expires_at)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, is_read)`,
}

// Migrate applies the schema. Statements are idempotent so this runs
// unconditionally at startup.
func Migrate(db *dbx.DB) error {
	for _, stmt := range migrations {
		if _, err := db.NewQuery(stmt).Execute(); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
