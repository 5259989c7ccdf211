package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Store wraps the Postgres connection pool. Event and Booking rows are
// mutated only through the methods here; the per-event and per-booking
// serialization the callers rely on lives in the FOR UPDATE transactions.
type Store struct {
	db *sqlx.DB
}

// NewStore connects to the database and ensures the schema exists.
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id            UUID PRIMARY KEY,
	title         TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	address       TEXT NOT NULL DEFAULT '',
	location      TEXT NOT NULL DEFAULT '',
	start_date    TIMESTAMPTZ NOT NULL,
	end_date      TIMESTAMPTZ NOT NULL,
	event_time    TEXT NOT NULL DEFAULT '',
	max_people    INT NOT NULL CHECK (max_people > 0),
	ticket_price  BIGINT NOT NULL CHECK (ticket_price >= 0),
	category      TEXT NOT NULL DEFAULT '',
	organizer_id  TEXT NOT NULL,
	image_url     TEXT NOT NULL DEFAULT '',
	rating        DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS bookings (
	id             UUID PRIMARY KEY,
	user_id        TEXT NOT NULL,
	event_id       UUID NOT NULL REFERENCES events(id),
	booking_date   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	quantity       INT NOT NULL CHECK (quantity > 0),
	total_amount   BIGINT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'pending',
	payment_status TEXT NOT NULL DEFAULT 'payment_required',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS bookings_one_active_per_pair
	ON bookings (user_id, event_id)
	WHERE status IN ('pending', 'confirmed');

CREATE TABLE IF NOT EXISTS event_attendees (
	event_id UUID NOT NULL REFERENCES events(id),
	user_id  TEXT NOT NULL,
	PRIMARY KEY (event_id, user_id)
);

CREATE TABLE IF NOT EXISTS event_reviews (
	event_id   UUID NOT NULL REFERENCES events(id),
	user_id    TEXT NOT NULL,
	rating     INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (event_id, user_id)
);

CREATE TABLE IF NOT EXISTS event_likes (
	event_id UUID NOT NULL REFERENCES events(id),
	user_id  TEXT NOT NULL,
	PRIMARY KEY (event_id, user_id)
);

CREATE TABLE IF NOT EXISTS notifications (
	id         UUID PRIMARY KEY,
	user_id    TEXT NOT NULL,
	message    TEXT NOT NULL,
	read       BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS notifications_user_created
	ON notifications (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS processed_events (
	event_id     TEXT PRIMARY KEY,
	event_type   TEXT NOT NULL,
	processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS users (
	id   TEXT PRIMARY KEY,
	city TEXT NOT NULL DEFAULT ''
);
`

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally on a specific constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// IsEventProcessed checks if a broker event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks a broker event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}

// GetUserCity returns the externally-maintained city of a user's profile,
// or the empty string when no profile row exists.
func (s *Store) GetUserCity(ctx context.Context, userID string) (string, error) {
	var city string
	err := s.db.GetContext(ctx, &city, "SELECT city FROM users WHERE id = $1", userID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return city, err
}
