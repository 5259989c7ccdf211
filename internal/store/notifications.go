package store

import (
	"context"

	"github.com/Its-Samir/booking-api/internal/models"
)

// CreateNotification persists a delivered notification
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.db.GetContext(ctx, n, `
		INSERT INTO notifications (id, user_id, message)
		VALUES ($1, $2, $3)
		RETURNING *`,
		n.ID, n.UserID, n.Message)
}

// ListNotificationsByUser returns one page of the user's notifications plus
// the total count, newest first.
func (s *Store) ListNotificationsByUser(ctx context.Context, userID string, offset, limit int) ([]models.Notification, int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1", userID); err != nil {
		return nil, 0, err
	}

	notifications := []models.Notification{}
	err := s.db.SelectContext(ctx, &notifications,
		`SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`,
		userID, offset, limit)
	return notifications, total, err
}

// MarkNotificationRead marks an owned notification as read
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotificationNotFound
	}
	return nil
}

// DeleteNotification removes an owned notification
func (s *Store) DeleteNotification(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotificationNotFound
	}
	return nil
}
