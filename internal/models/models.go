package models

import "time"

// Event represents a bookable event in the catalog
type Event struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Address     string    `db:"address" json:"address"`
	Location    string    `db:"location" json:"location"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	EventTime   string    `db:"event_time" json:"time"`
	MaxPeople   int       `db:"max_people" json:"max_people"`
	TicketPrice int64     `db:"ticket_price" json:"ticket_price"`
	Category    string    `db:"category" json:"category"`
	OrganizerID string    `db:"organizer_id" json:"organizer_id"`
	ImageURL    string    `db:"image_url" json:"image_url,omitempty"`
	Rating      float64   `db:"rating" json:"rating"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Booking represents a user's booking of an event
type Booking struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	EventID       string    `db:"event_id" json:"event_id"`
	BookingDate   time.Time `db:"booking_date" json:"booking_date"`
	Quantity      int       `db:"quantity" json:"quantity"`
	TotalAmount   int64     `db:"total_amount" json:"total_amount"`
	Status        string    `db:"status" json:"status"`
	PaymentStatus string    `db:"payment_status" json:"payment_status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Review represents a single user's review of an event
type Review struct {
	EventID   string    `db:"event_id" json:"event_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"time"`
}

// Notification is a delivered message for a user
type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Message   string    `db:"message" json:"message"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Ticket is a read-only projection of a booking joined with its event
type Ticket struct {
	Title       string    `json:"title"`
	StartDate   time.Time `json:"start_date"`
	EventTime   string    `json:"time"`
	Location    string    `json:"location"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	TotalAmount int64     `json:"total_amount"`
	Status      string    `json:"status"`
}

// Booking statuses
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Payment statuses; PaymentStatusVoid marks a booking cancelled before any
// payment was made.
const (
	PaymentStatusRequired = "payment_required"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusVoid     = ""
)

// Active reports whether the booking occupies the one-active-booking slot
// for its (user, event) pair.
func (b *Booking) Active() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// CanPay validates the payment transition.
func (b *Booking) CanPay() error {
	switch b.PaymentStatus {
	case PaymentStatusPaid:
		return ErrPaymentCompleted
	case PaymentStatusRefunded, PaymentStatusVoid:
		return ErrBookingCancelled
	}
	return nil
}

// CanCancel validates the cancel transition.
func (b *Booking) CanCancel() error {
	if b.PaymentStatus == PaymentStatusRefunded || b.PaymentStatus == PaymentStatusVoid {
		return ErrAlreadyCancelled
	}
	return nil
}

// RefundTarget returns the payment_status a cancellation must end in:
// refunded when money changed hands, void otherwise.
func (b *Booking) RefundTarget() string {
	if b.PaymentStatus == PaymentStatusPaid {
		return PaymentStatusRefunded
	}
	return PaymentStatusVoid
}

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
