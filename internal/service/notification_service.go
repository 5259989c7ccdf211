package service

import (
	"context"

	"github.com/Its-Samir/booking-api/internal/models"
)

const notificationsPageSize = 4

// NotificationStore is the slice of the store the notification service
// depends on.
type NotificationStore interface {
	ListNotificationsByUser(ctx context.Context, userID string, offset, limit int) ([]models.Notification, int, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error
	DeleteNotification(ctx context.Context, id, userID string) error
}

// NotificationService exposes the read side of the notification sink.
type NotificationService struct {
	store NotificationStore
}

// NewNotificationService creates a new notification service
func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// ListNotifications returns one page of the user's notifications
func (s *NotificationService) ListNotifications(ctx context.Context, userID string, page int) ([]models.Notification, PageInfo, error) {
	if page < 1 {
		page = 1
	}
	notifications, total, err := s.store.ListNotificationsByUser(ctx, userID, (page-1)*notificationsPageSize, notificationsPageSize)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return notifications, NewPageInfo(page, notificationsPageSize, total), nil
}

// MarkRead marks an owned notification as read
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.store.MarkNotificationRead(ctx, id, userID)
}

// Delete removes an owned notification
func (s *NotificationService) Delete(ctx context.Context, id, userID string) error {
	return s.store.DeleteNotification(ctx, id, userID)
}
