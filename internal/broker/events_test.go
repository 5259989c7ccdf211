package broker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Its-Samir/booking-api/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageFor(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: payload}
}

func TestEventHandlerRoutesByType(t *testing.T) {
	handler := NewEventHandler()

	var created *models.BookingCreatedEvent
	var paid *models.PaymentCompletedEvent
	var cancelled *models.BookingCancelledEvent

	handler.OnBookingCreated(func(ctx context.Context, e *models.BookingCreatedEvent) error {
		created = e
		return nil
	})
	handler.OnPaymentCompleted(func(ctx context.Context, e *models.PaymentCompletedEvent) error {
		paid = e
		return nil
	})
	handler.OnBookingCancelled(func(ctx context.Context, e *models.BookingCancelledEvent) error {
		cancelled = e
		return nil
	})

	ctx := context.Background()

	err := handler.HandleMessage(ctx, messageFor(t, &models.BookingCreatedEvent{
		BaseEvent:  models.BaseEvent{EventID: "evt-1", EventType: models.EventTypeBookingCreated},
		BookingID:  "booking-1",
		EventTitle: "Jazz Night",
	}))
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "booking-1", created.BookingID)
	assert.Equal(t, "Jazz Night", created.EventTitle)
	assert.Nil(t, paid)
	assert.Nil(t, cancelled)

	err = handler.HandleMessage(ctx, messageFor(t, &models.PaymentCompletedEvent{
		BaseEvent: models.BaseEvent{EventID: "evt-2", EventType: models.EventTypePaymentCompleted},
		BookingID: "booking-1",
		Amount:    500,
	}))
	require.NoError(t, err)
	require.NotNil(t, paid)
	assert.Equal(t, int64(500), paid.Amount)

	err = handler.HandleMessage(ctx, messageFor(t, &models.BookingCancelledEvent{
		BaseEvent: models.BaseEvent{EventID: "evt-3", EventType: models.EventTypeBookingCancelled},
		BookingID: "booking-1",
		Refunded:  true,
	}))
	require.NoError(t, err)
	require.NotNil(t, cancelled)
	assert.True(t, cancelled.Refunded)
}

func TestEventHandlerIgnoresUnknownType(t *testing.T) {
	handler := NewEventHandler()

	called := false
	handler.OnBookingCreated(func(ctx context.Context, e *models.BookingCreatedEvent) error {
		called = true
		return nil
	})

	err := handler.HandleMessage(context.Background(), messageFor(t, &models.BaseEvent{
		EventID:   "evt-1",
		EventType: "SOMETHING_ELSE",
	}))
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestEventHandlerRejectsMalformedPayload(t *testing.T) {
	handler := NewEventHandler()

	err := handler.HandleMessage(context.Background(), kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}
