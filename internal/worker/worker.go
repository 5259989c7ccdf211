package worker

import (
	"context"
	"fmt"

	"github.com/Its-Samir/booking-api/internal/broker"
	"github.com/Its-Samir/booking-api/internal/models"
	"github.com/Its-Samir/booking-api/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationSink is where delivered notifications end up. Consumer
// idempotency rides on the processed-events bookkeeping.
type NotificationSink interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// NotificationWorker consumes booking events and persists user-facing
// notifications. It runs decoupled from the request path so a notification
// failure can never affect a committed booking-state change.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	sink         NotificationSink
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, sink NotificationSink) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		sink:     sink,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnBookingCreated(w.handleBookingCreated)
	eventHandler.OnPaymentCompleted(w.handlePaymentCompleted)
	eventHandler.OnBookingCancelled(w.handleBookingCancelled)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleBookingCreated(ctx context.Context, event *models.BookingCreatedEvent) error {
	message := fmt.Sprintf("Event (Title: %s) has been booked by you.", event.EventTitle)
	return w.deliver(ctx, event.BaseEvent, event.UserID, message)
}

func (w *NotificationWorker) handlePaymentCompleted(ctx context.Context, event *models.PaymentCompletedEvent) error {
	message := fmt.Sprintf("Payment for Event (Title: %s) has been completed.", event.EventTitle)
	return w.deliver(ctx, event.BaseEvent, event.UserID, message)
}

func (w *NotificationWorker) handleBookingCancelled(ctx context.Context, event *models.BookingCancelledEvent) error {
	message := fmt.Sprintf("Event (Title: %s) has been cancelled by you.", event.EventTitle)
	return w.deliver(ctx, event.BaseEvent, event.UserID, message)
}

func (w *NotificationWorker) deliver(ctx context.Context, base models.BaseEvent, userID, message string) error {
	processed, err := w.sink.IsEventProcessed(ctx, base.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", base.EventID))
		return nil
	}

	notification := &models.Notification{
		ID:      uuid.New().String(),
		UserID:  userID,
		Message: message,
	}
	if err := w.sink.CreateNotification(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if err := w.sink.MarkEventProcessed(ctx, base.EventID, base.EventType); err != nil {
		w.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	util.NotificationsDeliveredTotal.Inc()
	w.logger.Info("Notification delivered",
		zap.String("user_id", userID),
		zap.String("event_type", base.EventType))
	return nil
}
