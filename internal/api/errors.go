package api

import (
	"errors"
	"net/http"

	"github.com/Its-Samir/booking-api/internal/models"
	"github.com/Its-Samir/booking-api/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusForError maps the domain error taxonomy to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrBookingNotFound),
		errors.Is(err, models.ErrReviewNotFound),
		errors.Is(err, models.ErrNotificationNotFound):
		return http.StatusNotFound

	case errors.Is(err, models.ErrAlreadyAttending),
		errors.Is(err, models.ErrPaymentCompleted),
		errors.Is(err, models.ErrBookingCancelled),
		errors.Is(err, models.ErrAlreadyCancelled),
		errors.Is(err, models.ErrEventFull),
		errors.Is(err, models.ErrNotCancelled):
		return http.StatusForbidden

	case errors.Is(err, models.ErrDuplicateBooking),
		errors.Is(err, models.ErrDuplicateReview):
		return http.StatusConflict

	case errors.Is(err, models.ErrInvalidRating),
		errors.Is(err, models.ErrPastSchedule):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope. Internal errors are logged and
// replaced by a generic message so storage details never leak.
func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		util.GetLogger().Error("Internal error",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		message = "something went wrong"
	}

	c.JSON(status, gin.H{"errorMessage": message})
}
