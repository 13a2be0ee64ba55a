package booking

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrShopNotFound      = errors.New("shop not found")
	ErrNoServices        = errors.New("no services selected")
	ErrUnknownServices   = errors.New("services do not belong to the shop")
	ErrUnknownBarber     = errors.New("barber does not belong to the shop")
	ErrInvalidDate       = errors.New("invalid date")
	ErrDateInPast        = errors.New("date is in the past")
	ErrInvalidPayment    = errors.New("invalid payment method")
	ErrUnknownTime       = errors.New("time is not offered by the shop")
	ErrSlotTaken         = errors.New("slot is no longer available")
	ErrSessionBooked     = errors.New("session was already booked by another user")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrStatusTransition  = errors.New("booking status cannot change that way")
	ErrMissingUser       = errors.New("missing user")
	ErrInvalidPagination = errors.New("invalid pagination")
)

type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter)
}
