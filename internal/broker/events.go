package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Its-Samir/booking-api/internal/models"
	"github.com/Its-Samir/booking-api/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing booking domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishBookingCreated publishes a BookingCreated event
func (ep *EventPublisher) PublishBookingCreated(ctx context.Context, event *models.BookingCreatedEvent) error {
	return ep.producer.PublishEvent(ctx, "booking-"+event.BookingID, event)
}

// PublishPaymentCompleted publishes a PaymentCompleted event
func (ep *EventPublisher) PublishPaymentCompleted(ctx context.Context, event *models.PaymentCompletedEvent) error {
	return ep.producer.PublishEvent(ctx, "booking-"+event.BookingID, event)
}

// PublishBookingCancelled publishes a BookingCancelled event
func (ep *EventPublisher) PublishBookingCancelled(ctx context.Context, event *models.BookingCancelledEvent) error {
	return ep.producer.PublishEvent(ctx, "booking-"+event.BookingID, event)
}

// EventHandler routes consumed messages to registered typed handlers
type EventHandler struct {
	onBookingCreated   func(context.Context, *models.BookingCreatedEvent) error
	onPaymentCompleted func(context.Context, *models.PaymentCompletedEvent) error
	onBookingCancelled func(context.Context, *models.BookingCancelledEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnBookingCreated registers a handler for BookingCreated events
func (eh *EventHandler) OnBookingCreated(handler func(context.Context, *models.BookingCreatedEvent) error) {
	eh.onBookingCreated = handler
}

// OnPaymentCompleted registers a handler for PaymentCompleted events
func (eh *EventHandler) OnPaymentCompleted(handler func(context.Context, *models.PaymentCompletedEvent) error) {
	eh.onPaymentCompleted = handler
}

// OnBookingCancelled registers a handler for BookingCancelled events
func (eh *EventHandler) OnBookingCancelled(handler func(context.Context, *models.BookingCancelledEvent) error) {
	eh.onBookingCancelled = handler
}

// HandleMessage routes a message to the handler registered for its type
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeBookingCreated:
		if eh.onBookingCreated != nil {
			var event models.BookingCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal BookingCreated event: %w", err)
			}
			return eh.onBookingCreated(ctx, &event)
		}

	case models.EventTypePaymentCompleted:
		if eh.onPaymentCompleted != nil {
			var event models.PaymentCompletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PaymentCompleted event: %w", err)
			}
			return eh.onPaymentCompleted(ctx, &event)
		}

	case models.EventTypeBookingCancelled:
		if eh.onBookingCancelled != nil {
			var event models.BookingCancelledEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal BookingCancelled event: %w", err)
			}
			return eh.onBookingCancelled(ctx, &event)
		}

	default:
		util.GetLogger().Warn("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
