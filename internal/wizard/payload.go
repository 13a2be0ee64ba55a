package wizard

import (
	"fmt"

	"github.com/kirinyoku/barberbook/internal/domain"
)

// Payload is what a finished wizard hands to the booking submitter.
type Payload struct {
	Shop          string               `json:"shop"`
	Barber        *string              `json:"barber"`
	Services      []string             `json:"services"`
	Date          string               `json:"date"`
	Time          string               `json:"time"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Status        domain.BookingStatus `json:"status"`
}

// BuildPayload requires shop, date and time. A missing payment method is
// filled with the default here and never written back to the state.
func BuildPayload(s State) (Payload, error) {
	const op = "wizard.BuildPayload"

	if s.Shop == nil || s.Date == nil || s.Time == "" {
		return Payload{}, fmt.Errorf("%s: %w", op, ErrSelectionIncomplete)
	}

	services := make([]string, 0, len(s.Services))
	for _, svc := range s.Services {
		services = append(services, svc.ID)
	}

	method := s.Payment
	if method == "" {
		method = domain.DefaultPaymentMethod
	}

	return Payload{
		Shop:          s.Shop.ID,
		Barber:        s.Barber.BarberID(),
		Services:      services,
		Date:          s.Date.String(),
		Time:          s.Time,
		PaymentMethod: method,
		Status:        domain.BookingPending,
	}, nil
}
