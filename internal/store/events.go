package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Its-Samir/booking-api/internal/models"
	"github.com/jmoiron/sqlx"
)

// CreateEvent inserts a new event
func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	return s.db.GetContext(ctx, event, `
		INSERT INTO events (id, title, description, address, location, start_date, end_date,
			event_time, max_people, ticket_price, category, organizer_id, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING *`,
		event.ID, event.Title, event.Description, event.Address, event.Location,
		event.StartDate, event.EndDate, event.EventTime, event.MaxPeople,
		event.TicketPrice, event.Category, event.OrganizerID, event.ImageURL)
}

// GetEventByID retrieves an event by ID
func (s *Store) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := s.db.GetContext(ctx, &event, "SELECT * FROM events WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, models.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// AttendeeCount returns the current roster size of an event
func (s *Store) AttendeeCount(ctx context.Context, eventID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM event_attendees WHERE event_id = $1", eventID)
	return count, err
}

// IsAttendee reports whether the user holds a seat in the event's roster
func (s *Store) IsAttendee(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2)",
		eventID, userID)
	return exists, err
}

// AddAttendee adds the user to the event roster inside a transaction that
// holds a row lock on the event, so two payments racing for the last seat
// serialize here. Returns ErrEventFull when the roster is at capacity, and
// added=false when the user already held a seat, so the caller can undo a
// seat claim that consumed no row.
func (s *Store) AddAttendee(ctx context.Context, eventID, userID string) (added bool, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var maxPeople int
	err = tx.GetContext(ctx, &maxPeople,
		"SELECT max_people FROM events WHERE id = $1 FOR UPDATE", eventID)
	if err == sql.ErrNoRows {
		return false, models.ErrEventNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to lock event: %w", err)
	}

	var member bool
	err = tx.GetContext(ctx, &member,
		"SELECT EXISTS(SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2)",
		eventID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check roster: %w", err)
	}
	if member {
		return false, nil
	}

	var count int
	err = tx.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM event_attendees WHERE event_id = $1", eventID)
	if err != nil {
		return false, fmt.Errorf("failed to count attendees: %w", err)
	}
	if count >= maxPeople {
		return false, models.ErrEventFull
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO event_attendees (event_id, user_id) VALUES ($1, $2)",
		eventID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to add attendee: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveAttendee removes the user from the roster; removing an absent user
// is a no-op.
func (s *Store) RemoveAttendee(ctx context.Context, eventID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2",
		eventID, userID)
	return err
}

// ToggleLike adds the user's like when absent and removes it when present.
// Returns true when the event ended up liked.
func (s *Store) ToggleLike(ctx context.Context, eventID, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM event_likes WHERE event_id = $1 AND user_id = $2",
		eventID, userID)
	if err != nil {
		return false, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if removed > 0 {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO event_likes (event_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		eventID, userID)
	if err != nil {
		return false, err
	}
	return true, nil
}

// AddReview appends the user's review and recomputes the event's mean rating
// in the same transaction. The event row lock serializes concurrent review
// writes so the aggregate never loses an update.
func (s *Store) AddReview(ctx context.Context, review *models.Review) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockEvent(ctx, tx, review.EventID); err != nil {
		return err
	}

	var exists bool
	err = tx.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM event_reviews WHERE event_id = $1 AND user_id = $2)",
		review.EventID, review.UserID)
	if err != nil {
		return fmt.Errorf("failed to check existing review: %w", err)
	}
	if exists {
		return models.ErrDuplicateReview
	}

	err = tx.GetContext(ctx, &review.CreatedAt, `
		INSERT INTO event_reviews (event_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		review.EventID, review.UserID, review.Rating, review.Comment)
	if err != nil {
		if isUniqueViolation(err, "") {
			return models.ErrDuplicateReview
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}

	if err := recomputeRating(ctx, tx, review.EventID); err != nil {
		return err
	}
	return tx.Commit()
}

// EditReview replaces the user's review in place (created_at, and with it
// the review's position, is preserved) and recomputes the mean rating.
func (s *Store) EditReview(ctx context.Context, review *models.Review) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockEvent(ctx, tx, review.EventID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE event_reviews SET rating = $1, comment = $2 WHERE event_id = $3 AND user_id = $4",
		review.Rating, review.Comment, review.EventID, review.UserID)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrReviewNotFound
	}

	if err := recomputeRating(ctx, tx, review.EventID); err != nil {
		return err
	}
	return tx.Commit()
}

// ListReviews returns an event's reviews in insertion order
func (s *Store) ListReviews(ctx context.Context, eventID string) ([]models.Review, error) {
	reviews := []models.Review{}
	err := s.db.SelectContext(ctx, &reviews,
		"SELECT * FROM event_reviews WHERE event_id = $1 ORDER BY created_at, user_id", eventID)
	return reviews, err
}

func lockEvent(ctx context.Context, tx *sqlx.Tx, eventID string) error {
	var id string
	err := tx.GetContext(ctx, &id, "SELECT id FROM events WHERE id = $1 FOR UPDATE", eventID)
	if err == sql.ErrNoRows {
		return models.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock event: %w", err)
	}
	return nil
}

func recomputeRating(ctx context.Context, tx *sqlx.Tx, eventID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE events SET
			rating = (SELECT COALESCE(AVG(rating), 0) FROM event_reviews WHERE event_id = $1),
			updated_at = NOW()
		WHERE id = $1`,
		eventID)
	if err != nil {
		return fmt.Errorf("failed to recompute rating: %w", err)
	}
	return nil
}

// EventRoster pairs an event's capacity with its current roster size
type EventRoster struct {
	EventID   string `db:"event_id"`
	MaxPeople int    `db:"max_people"`
	Taken     int    `db:"taken"`
}

// ListEventRosters returns capacity and roster size for every upcoming
// event, for seeding the Redis seat counters.
func (s *Store) ListEventRosters(ctx context.Context) ([]EventRoster, error) {
	rosters := []EventRoster{}
	err := s.db.SelectContext(ctx, &rosters, `
		SELECT e.id AS event_id, e.max_people,
			(SELECT COUNT(*) FROM event_attendees a WHERE a.event_id = e.id) AS taken
		FROM events e
		WHERE e.start_date > NOW()`)
	return rosters, err
}

// EventSearchFilter narrows a catalog search. Zero values mean "no filter".
type EventSearchFilter struct {
	Location       string
	Category       string
	MaxPeopleBelow int
	MinPrice       int64
	MaxPrice       int64
	TitleSearch    string
}

// buildEventSearch renders the filter into a WHERE clause. Only upcoming
// events (start_date in the future) are ever eligible.
func buildEventSearch(f EventSearchFilter) (string, []interface{}) {
	clauses := []string{"start_date > NOW()"}
	args := []interface{}{}

	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.Location != "" {
		add("location = $%d", f.Location)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.MaxPeopleBelow > 0 {
		add("max_people < $%d", f.MaxPeopleBelow)
	}
	if f.MinPrice > 0 {
		add("ticket_price > $%d", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		add("ticket_price < $%d", f.MaxPrice)
	}
	if f.TitleSearch != "" {
		add("title ILIKE $%d", "%"+f.TitleSearch+"%")
	}

	return strings.Join(clauses, " AND "), args
}

// SearchEvents returns one page of upcoming events matching the filter plus
// the total match count.
func (s *Store) SearchEvents(ctx context.Context, f EventSearchFilter, offset, limit int) ([]models.Event, int, error) {
	where, args := buildEventSearch(f)

	var total int
	if err := s.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM events WHERE "+where, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT * FROM events WHERE %s ORDER BY start_date OFFSET $%d LIMIT $%d",
		where, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	events := []models.Event{}
	err := s.db.SelectContext(ctx, &events, query, args...)
	return events, total, err
}
