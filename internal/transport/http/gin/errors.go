package httpgin

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/barberbook/internal/service/admin"
	"github.com/kirinyoku/barberbook/internal/service/booking"
	"github.com/kirinyoku/barberbook/internal/service/catalog"
	"github.com/kirinyoku/barberbook/internal/service/consult"
	"github.com/kirinyoku/barberbook/internal/service/review"
	"github.com/kirinyoku/barberbook/internal/service/session"
	"github.com/kirinyoku/barberbook/internal/wizard"
)

// refusals lists wizard errors that mean "not now": the request was well
// formed but the current state does not allow it.
var refusals = []error{
	wizard.ErrWrongStep,
	wizard.ErrInvalidShop,
	wizard.ErrNoServicesSelected,
	wizard.ErrMonthInPast,
	wizard.ErrNoDateSelected,
	wizard.ErrSelectionIncomplete,
	wizard.ErrNoPreviousStep,
	wizard.ErrNoNextStep,
	session.ErrSubmitInProgress,
	session.ErrSessionBusy,
	booking.ErrSessionBooked,
	booking.ErrStatusTransition,
}

// invalid lists errors caused by input that can never be accepted.
var invalid = []error{
	wizard.ErrUnknownService,
	wizard.ErrUnknownBarber,
	wizard.ErrInvalidDay,
	wizard.ErrUnknownSlot,
	wizard.ErrUnknownPaymentMethod,
	session.ErrInvalidDirection,
	booking.ErrNoServices,
	booking.ErrUnknownServices,
	booking.ErrUnknownBarber,
	booking.ErrInvalidDate,
	booking.ErrDateInPast,
	booking.ErrInvalidPayment,
	booking.ErrUnknownTime,
	booking.ErrInvalidPagination,
	booking.ErrInvalidStatus,
	review.ErrInvalidRating,
	review.ErrCommentTooLong,
	review.ErrInvalidPagination,
	admin.ErrInvalidShop,
	consult.ErrEmptyDescription,
}

func isAny(err error, targets []error) (error, bool) {
	for _, t := range targets {
		if errors.Is(err, t) {
			return t, true
		}
	}
	return nil, false
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var bookingLimited booking.RateLimitedError
	var consultLimited consult.RateLimitedError

	switch {
	// rate limits
	case errors.As(err, &bookingLimited):
		tooManyRequests(c, bookingLimited.RetryAfter)
		return
	case errors.As(err, &consultLimited):
		tooManyRequests(c, consultLimited.RetryAfter)
		return
	// lookups
	case errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found"})
		return
	case errors.Is(err, catalog.ErrShopNotFound), errors.Is(err, booking.ErrShopNotFound),
		errors.Is(err, review.ErrShopNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "barbershop not found"})
		return
	case errors.Is(err, catalog.ErrBarberNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "barber not found"})
		return
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	// conflicts
	case errors.Is(err, booking.ErrSlotTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "slot is no longer available"})
		return
	case errors.Is(err, admin.ErrShopConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "barbershop already exists"})
		return
	case errors.Is(err, booking.ErrMissingUser), errors.Is(err, review.ErrMissingUser):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing user"})
		return
	}

	if t, ok := isAny(err, invalid); ok {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: t.Error()})
		return
	}

	if t, ok := isAny(err, refusals); ok {
		c.JSON(http.StatusConflict, ErrorResponse{Error: t.Error()})
		return
	}

	if errors.Is(err, wizard.ErrSubmitFailed) {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: wizard.ErrSubmitFailed.Error()})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func tooManyRequests(c *gin.Context, retryAfter time.Duration) {
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	c.Header("Retry-After", strconv.Itoa(secs))
	c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
}
