package models

import "errors"

// Sentinel errors returned by the store and service layers. The API layer
// maps them to HTTP status codes; messages are the user-visible text.
var (
	ErrEventNotFound        = errors.New("event does not exist")
	ErrBookingNotFound      = errors.New("booking does not exist")
	ErrReviewNotFound       = errors.New("review does not exist")
	ErrNotificationNotFound = errors.New("notification does not exist")

	// booking creation
	ErrAlreadyAttending = errors.New("user has already booked this event")
	ErrDuplicateBooking = errors.New("user already has a booking pending for this event")

	// payment
	ErrPaymentCompleted = errors.New("payment has already completed")
	ErrBookingCancelled = errors.New("booking was cancelled")
	ErrEventFull        = errors.New("event is fully booked")

	// cancellation / deletion
	ErrAlreadyCancelled = errors.New("booking was already cancelled")
	ErrNotCancelled     = errors.New("only cancelled bookings can be deleted")

	// reviews
	ErrDuplicateReview = errors.New("you have already rated this event")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")

	// event creation
	ErrPastSchedule = errors.New("start date or end date is in the past")
)
