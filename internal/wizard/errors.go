package wizard

import "errors"

// Refusals returned by transitions. The state handed back alongside any of
// these is the input state, unchanged.
var (
	ErrWrongStep            = errors.New("operation not allowed at current step")
	ErrInvalidShop          = errors.New("shop has no services or barbers")
	ErrUnknownService       = errors.New("service does not belong to selected shop")
	ErrUnknownBarber        = errors.New("barber does not belong to selected shop")
	ErrNoServicesSelected   = errors.New("no services selected")
	ErrInvalidDay           = errors.New("day outside displayed month")
	ErrMonthInPast          = errors.New("month is before the current month")
	ErrNoDateSelected       = errors.New("no date selected")
	ErrUnknownSlot          = errors.New("unknown time slot")
	ErrSelectionIncomplete  = errors.New("date and time must be selected")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrNoPreviousStep       = errors.New("already at first step")
	ErrNoNextStep           = errors.New("already at last step")
	ErrSubmitFailed         = errors.New("booking submission failed")
)
