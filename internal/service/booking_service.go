package service

import (
	"context"
	"errors"
	"time"

	"github.com/Its-Samir/booking-api/internal/models"
	"github.com/Its-Samir/booking-api/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const bookingsPageSize = 4

// BookingStore is the slice of the store the booking service depends on.
type BookingStore interface {
	CreateBooking(ctx context.Context, userID, eventID string, quantity int) (*models.Booking, error)
	GetBookingForUser(ctx context.Context, id, userID string) (*models.Booking, error)
	GetBookingByEventAndUser(ctx context.Context, eventID, userID string) (*models.Booking, error)
	ConfirmBookingPayment(ctx context.Context, bookingID string) error
	MarkBookingCancelled(ctx context.Context, bookingID, fromPaymentStatus, paymentStatus string) error
	ListBookingsByUser(ctx context.Context, userID string, offset, limit int) ([]models.Booking, int, error)
	DeleteBooking(ctx context.Context, bookingID, userID string) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
}

// Roster manages event roster membership with capacity enforcement.
// AddAttendee reports whether the user's membership is new; an add for a user
// already holding a seat is a no-op returning false.
type Roster interface {
	AddAttendee(ctx context.Context, eventID, userID string) (bool, error)
	RemoveAttendee(ctx context.Context, eventID, userID string) error
}

// Publisher emits booking events for the notification pipeline. Publish
// failures never roll back the triggering operation.
type Publisher interface {
	PublishBookingCreated(ctx context.Context, event *models.BookingCreatedEvent) error
	PublishPaymentCompleted(ctx context.Context, event *models.PaymentCompletedEvent) error
	PublishBookingCancelled(ctx context.Context, event *models.BookingCancelledEvent) error
}

// BookingService orchestrates the booking lifecycle across the ledger, the
// event roster and the notification pipeline.
type BookingService struct {
	store     BookingStore
	roster    Roster
	publisher Publisher
	logger    *zap.Logger
}

// NewBookingService creates a new booking service
func NewBookingService(store BookingStore, roster Roster, publisher Publisher) *BookingService {
	return &BookingService{
		store:     store,
		roster:    roster,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// BookEvent creates a booking in (pending, payment_required) for the user.
// The store rejects a second active booking for the same pair and a booking
// by a user already holding a seat.
func (s *BookingService) BookEvent(ctx context.Context, userID, eventID string, quantity int) (*models.Booking, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.BookEvent")
	defer span.End()

	event, err := s.store.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	booking, err := s.store.CreateBooking(ctx, userID, eventID, quantity)
	if err != nil {
		util.BookingsFailedTotal.WithLabelValues("create_rejected").Inc()
		return nil, err
	}

	util.BookingsCreatedTotal.Inc()
	s.logger.Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.String("event_id", eventID),
		zap.String("user_id", userID))

	s.publish(ctx, func() error {
		return s.publisher.PublishBookingCreated(ctx, &models.BookingCreatedEvent{
			BaseEvent:   newBaseEvent(models.EventTypeBookingCreated),
			BookingID:   booking.ID,
			UserID:      userID,
			EventRefID:  eventID,
			EventTitle:  event.Title,
			Quantity:    booking.Quantity,
			TotalAmount: booking.TotalAmount,
		})
	})

	return booking, nil
}

// PayForBooking completes the (simulated) payment for an owned booking. The
// seat is claimed under the capacity check before the booking flips to
// (confirmed, paid), so a confirmed booking always has roster membership.
// The flip itself is guarded: it only lands on a booking still in
// (pending, payment_required), so of two racing payments one wins and the
// other gets the state error, with its seat claim released. A capacity
// rejection leaves the booking pending and payable against future
// cancellations.
func (s *BookingService) PayForBooking(ctx context.Context, bookingID, userID string) (*models.Booking, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.PayForBooking")
	defer span.End()

	start := time.Now()
	defer func() {
		util.PaymentProcessingLatency.Observe(time.Since(start).Seconds())
	}()

	booking, err := s.store.GetBookingForUser(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	if err := booking.CanPay(); err != nil {
		util.BookingsFailedTotal.WithLabelValues("invalid_payment_state").Inc()
		return nil, err
	}

	event, err := s.store.GetEventByID(ctx, booking.EventID)
	if err != nil {
		return nil, err
	}

	added, err := s.roster.AddAttendee(ctx, booking.EventID, booking.UserID)
	if err != nil {
		util.BookingsFailedTotal.WithLabelValues("capacity").Inc()
		return nil, err
	}

	if err := s.store.ConfirmBookingPayment(ctx, booking.ID); err != nil {
		// Give the seat back only when this request took it and the booking
		// did not end up paid; a concurrent payment of the same booking owns
		// the membership now.
		if added && !errors.Is(err, models.ErrPaymentCompleted) {
			if rmErr := s.roster.RemoveAttendee(ctx, booking.EventID, booking.UserID); rmErr != nil {
				s.logger.Error("Failed to release seat after payment commit failure",
					zap.String("booking_id", booking.ID),
					zap.Error(rmErr))
			}
		}
		return nil, err
	}

	booking.Status = models.BookingStatusConfirmed
	booking.PaymentStatus = models.PaymentStatusPaid

	util.BookingsPaidTotal.Inc()
	s.logger.Info("Payment completed",
		zap.String("booking_id", booking.ID),
		zap.Int64("amount", booking.TotalAmount))

	s.publish(ctx, func() error {
		return s.publisher.PublishPaymentCompleted(ctx, &models.PaymentCompletedEvent{
			BaseEvent:  newBaseEvent(models.EventTypePaymentCompleted),
			BookingID:  booking.ID,
			UserID:     booking.UserID,
			EventRefID: booking.EventID,
			EventTitle: event.Title,
			Amount:     booking.TotalAmount,
		})
	})

	return booking, nil
}

// CancelBooking cancels the user's booking of an event. A paid booking is
// refunded and the seat is given back; a never-paid one ends void.
func (s *BookingService) CancelBooking(ctx context.Context, eventID, userID string) (*models.Booking, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.CancelBooking")
	defer span.End()

	booking, err := s.store.GetBookingByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if err := booking.CanCancel(); err != nil {
		return nil, err
	}

	event, err := s.store.GetEventByID(ctx, booking.EventID)
	if err != nil {
		return nil, err
	}

	target := booking.RefundTarget()

	if err := s.store.MarkBookingCancelled(ctx, booking.ID, booking.PaymentStatus, target); err != nil {
		return nil, err
	}

	if target == models.PaymentStatusRefunded {
		if err := s.roster.RemoveAttendee(ctx, booking.EventID, booking.UserID); err != nil {
			s.logger.Error("Failed to remove attendee after refund",
				zap.String("booking_id", booking.ID),
				zap.String("event_id", booking.EventID),
				zap.Error(err))
		}
	}

	booking.Status = models.BookingStatusCancelled
	booking.PaymentStatus = target

	util.BookingsCancelledTotal.Inc()
	s.logger.Info("Booking cancelled",
		zap.String("booking_id", booking.ID),
		zap.Bool("refunded", target == models.PaymentStatusRefunded))

	s.publish(ctx, func() error {
		return s.publisher.PublishBookingCancelled(ctx, &models.BookingCancelledEvent{
			BaseEvent:  newBaseEvent(models.EventTypeBookingCancelled),
			BookingID:  booking.ID,
			UserID:     booking.UserID,
			EventRefID: booking.EventID,
			EventTitle: event.Title,
			Refunded:   target == models.PaymentStatusRefunded,
		})
	})

	return booking, nil
}

// IssueTicket returns the display projection of the user's booking of an
// event joined with the event details.
func (s *BookingService) IssueTicket(ctx context.Context, eventID, userID string) (*models.Ticket, error) {
	ctx, span := util.StartSpan(ctx, "BookingService.IssueTicket")
	defer span.End()

	booking, err := s.store.GetBookingByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	event, err := s.store.GetEventByID(ctx, booking.EventID)
	if err != nil {
		return nil, err
	}

	return &models.Ticket{
		Title:       event.Title,
		StartDate:   event.StartDate,
		EventTime:   event.EventTime,
		Location:    event.Location,
		ImageURL:    event.ImageURL,
		TotalAmount: booking.TotalAmount,
		Status:      booking.Status,
	}, nil
}

// GetBooking returns an owned booking; non-owners see not-found.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID string) (*models.Booking, error) {
	return s.store.GetBookingForUser(ctx, bookingID, userID)
}

// ListBookings returns one page of the user's bookings
func (s *BookingService) ListBookings(ctx context.Context, userID string, page int) ([]models.Booking, PageInfo, error) {
	if page < 1 {
		page = 1
	}
	bookings, total, err := s.store.ListBookingsByUser(ctx, userID, (page-1)*bookingsPageSize, bookingsPageSize)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return bookings, NewPageInfo(page, bookingsPageSize, total), nil
}

// DeleteBooking hard-removes an owned, cancelled booking
func (s *BookingService) DeleteBooking(ctx context.Context, bookingID, userID string) error {
	return s.store.DeleteBooking(ctx, bookingID, userID)
}

func (s *BookingService) publish(ctx context.Context, fn func() error) {
	if err := fn(); err != nil {
		s.logger.Error("Failed to publish booking event", zap.Error(err))
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// PageInfo carries the pagination flags returned alongside list responses
type PageInfo struct {
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewPageInfo computes the pagination flags for a 1-based page of the given
// size over total items.
func NewPageInfo(page, size, total int) PageInfo {
	return PageInfo{
		HasNextPage: total > page*size,
		HasPrevPage: page > 1,
	}
}
