package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Its-Samir/booking-api/internal/models"
	"github.com/google/uuid"
)

// CreateBooking creates a booking in (pending, payment_required) for the
// given user and event. The event row is locked for the duration of the
// transaction so the "no active booking, not already an attendee" checks and
// the insert cannot interleave with a concurrent booking attempt; the
// partial unique index on (user_id, event_id) backs the check at the storage
// level. The total amount is frozen from the locked row's ticket price.
func (s *Store) CreateBooking(ctx context.Context, userID, eventID string, quantity int) (*models.Booking, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var ticketPrice int64
	err = tx.GetContext(ctx, &ticketPrice,
		"SELECT ticket_price FROM events WHERE id = $1 FOR UPDATE", eventID)
	if err == sql.ErrNoRows {
		return nil, models.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock event: %w", err)
	}

	var attending bool
	err = tx.GetContext(ctx, &attending,
		"SELECT EXISTS(SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2)",
		eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check roster: %w", err)
	}
	if attending {
		return nil, models.ErrAlreadyAttending
	}

	var active bool
	err = tx.GetContext(ctx, &active,
		`SELECT EXISTS(SELECT 1 FROM bookings
		 WHERE user_id = $1 AND event_id = $2 AND status IN ('pending', 'confirmed'))`,
		userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active bookings: %w", err)
	}
	if active {
		return nil, models.ErrDuplicateBooking
	}

	booking := &models.Booking{
		ID:            uuid.New().String(),
		UserID:        userID,
		EventID:       eventID,
		BookingDate:   time.Now().UTC(),
		Quantity:      quantity,
		TotalAmount:   ticketPrice * int64(quantity),
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusRequired,
	}

	err = tx.GetContext(ctx, booking, `
		INSERT INTO bookings (id, user_id, event_id, booking_date, quantity, total_amount, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *`,
		booking.ID, booking.UserID, booking.EventID, booking.BookingDate,
		booking.Quantity, booking.TotalAmount, booking.Status, booking.PaymentStatus)
	if err != nil {
		if isUniqueViolation(err, "bookings_one_active_per_pair") {
			return nil, models.ErrDuplicateBooking
		}
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}
	return booking, nil
}

// GetBookingByID retrieves a booking by ID
func (s *Store) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.GetContext(ctx, &booking, "SELECT * FROM bookings WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetBookingForUser retrieves a booking only when the requesting user owns
// it; a non-owner gets the same not-found as a missing booking.
func (s *Store) GetBookingForUser(ctx context.Context, id, userID string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.GetContext(ctx, &booking,
		"SELECT * FROM bookings WHERE id = $1 AND user_id = $2", id, userID)
	if err == sql.ErrNoRows {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetBookingByEventAndUser returns the booking for a (event, user) pair,
// preferring an active one over terminal ones, newest first within each.
func (s *Store) GetBookingByEventAndUser(ctx context.Context, eventID, userID string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.GetContext(ctx, &booking, `
		SELECT * FROM bookings
		WHERE event_id = $1 AND user_id = $2
		ORDER BY (status IN ('pending', 'confirmed')) DESC, created_at DESC
		LIMIT 1`,
		eventID, userID)
	if err == sql.ErrNoRows {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ConfirmBookingPayment flips a booking from (pending, payment_required) to
// (confirmed, paid). The state check lives in the WHERE clause, so of two
// racing payments exactly one flips the row; the loser re-reads and gets the
// same error a fresh CanPay check would produce.
func (s *Store) ConfirmBookingPayment(ctx context.Context, bookingID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE bookings SET status = $1, payment_status = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4 AND payment_status = $5`,
		models.BookingStatusConfirmed, models.PaymentStatusPaid,
		bookingID, models.BookingStatusPending, models.PaymentStatusRequired)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		booking, err := s.GetBookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if stateErr := booking.CanPay(); stateErr != nil {
			return stateErr
		}
		return fmt.Errorf("booking %s changed concurrently", bookingID)
	}
	return nil
}

// MarkBookingCancelled flips an active booking to cancelled with the given
// payment outcome. The booking must still carry the payment status the
// outcome was derived from; a concurrent transition makes the update match
// nothing and the caller gets the error a fresh read would produce.
func (s *Store) MarkBookingCancelled(ctx context.Context, bookingID, fromPaymentStatus, paymentStatus string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE bookings SET status = $1, payment_status = $2, updated_at = NOW()
		WHERE id = $3 AND payment_status = $4 AND status IN ($5, $6)`,
		models.BookingStatusCancelled, paymentStatus,
		bookingID, fromPaymentStatus,
		models.BookingStatusPending, models.BookingStatusConfirmed)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		booking, err := s.GetBookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if stateErr := booking.CanCancel(); stateErr != nil {
			return stateErr
		}
		return fmt.Errorf("booking %s changed concurrently", bookingID)
	}
	return nil
}

// ListBookingsByUser returns one page of the user's bookings plus the total
// count, newest first.
func (s *Store) ListBookingsByUser(ctx context.Context, userID string, offset, limit int) ([]models.Booking, int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM bookings WHERE user_id = $1", userID); err != nil {
		return nil, 0, err
	}

	bookings := []models.Booking{}
	err := s.db.SelectContext(ctx, &bookings,
		"SELECT * FROM bookings WHERE user_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3",
		userID, offset, limit)
	return bookings, total, err
}

// DeleteBooking hard-removes an owned booking. Only cancelled bookings may
// be removed; deleting a paid booking would bypass refund bookkeeping.
func (s *Store) DeleteBooking(ctx context.Context, bookingID, userID string) error {
	booking, err := s.GetBookingForUser(ctx, bookingID, userID)
	if err != nil {
		return err
	}
	if booking.Status != models.BookingStatusCancelled {
		return models.ErrNotCancelled
	}

	_, err = s.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = $1", bookingID)
	return err
}
