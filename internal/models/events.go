package models

import "time"

// Event types published to the notification topic
const (
	EventTypeBookingCreated   = "BOOKING_CREATED"
	EventTypePaymentCompleted = "PAYMENT_COMPLETED"
	EventTypeBookingCancelled = "BOOKING_CANCELLED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// BookingCreatedEvent published when a booking is created
type BookingCreatedEvent struct {
	BaseEvent
	BookingID   string `json:"booking_id"`
	UserID      string `json:"user_id"`
	EventRefID  string `json:"event_ref_id"`
	EventTitle  string `json:"event_title"`
	Quantity    int    `json:"quantity"`
	TotalAmount int64  `json:"total_amount"`
}

// PaymentCompletedEvent published when a booking is paid and confirmed
type PaymentCompletedEvent struct {
	BaseEvent
	BookingID  string `json:"booking_id"`
	UserID     string `json:"user_id"`
	EventRefID string `json:"event_ref_id"`
	EventTitle string `json:"event_title"`
	Amount     int64  `json:"amount"`
}

// BookingCancelledEvent published when a booking is cancelled
type BookingCancelledEvent struct {
	BaseEvent
	BookingID  string `json:"booking_id"`
	UserID     string `json:"user_id"`
	EventRefID string `json:"event_ref_id"`
	EventTitle string `json:"event_title"`
	Refunded   bool   `json:"refunded"`
}
