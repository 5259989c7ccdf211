package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/Its-Samir/booking-api/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.ErrEventNotFound, http.StatusNotFound},
		{models.ErrBookingNotFound, http.StatusNotFound},
		{models.ErrNotificationNotFound, http.StatusNotFound},
		{models.ErrAlreadyAttending, http.StatusForbidden},
		{models.ErrPaymentCompleted, http.StatusForbidden},
		{models.ErrBookingCancelled, http.StatusForbidden},
		{models.ErrAlreadyCancelled, http.StatusForbidden},
		{models.ErrEventFull, http.StatusForbidden},
		{models.ErrNotCancelled, http.StatusForbidden},
		{models.ErrDuplicateBooking, http.StatusConflict},
		{models.ErrDuplicateReview, http.StatusConflict},
		{models.ErrInvalidRating, http.StatusUnprocessableEntity},
		{models.ErrPastSchedule, http.StatusUnprocessableEntity},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), "error %v", tt.err)
	}
}

func TestStatusForWrappedError(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), models.ErrEventFull)
	assert.Equal(t, http.StatusForbidden, statusForError(wrapped))
}
