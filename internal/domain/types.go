package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ShopStatus string

const (
	ShopOpen       ShopStatus = "Aberto"
	ShopClosed     ShopStatus = "Fechado"
	ShopFullAgenda ShopStatus = "Agenda Cheia"
	ShopCrowded    ShopStatus = "Lotado"
)

func (s ShopStatus) Valid() bool {
	switch s {
	case ShopOpen, ShopClosed, ShopFullAgenda, ShopCrowded:
		return true
	}
	return false
}

type Category string

const (
	CategoryHair  Category = "Cabelo"
	CategoryBeard Category = "Barba"
	CategoryCombo Category = "Combo"
	CategoryOther Category = "Outros"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryHair, CategoryBeard, CategoryCombo, CategoryOther:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "Cartão de Crédito"
	PaymentDebitCard  PaymentMethod = "Cartão de Débito"
	PaymentPix        PaymentMethod = "PIX"
	PaymentCash       PaymentMethod = "Dinheiro"
)

// DefaultPaymentMethod is applied at submission time when none was chosen.
const DefaultPaymentMethod = PaymentCreditCard

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentPix, PaymentCash:
		return true
	}
	return false
}

var paymentAliases = map[string]PaymentMethod{
	"pix":         PaymentPix,
	"credit":      PaymentCreditCard,
	"credit_card": PaymentCreditCard,
	"debit":       PaymentDebitCard,
	"debit_card":  PaymentDebitCard,
	"cash":        PaymentCash,
	"dinheiro":    PaymentCash,
}

// ParsePaymentMethod accepts the display labels as well as the short
// aliases pix, credit, debit and cash, ignoring case and surrounding space.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	s = strings.TrimSpace(s)

	if m := PaymentMethod(s); m.Valid() {
		return m, true
	}

	m, ok := paymentAliases[strings.ToLower(s)]
	return m, ok
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCancelled BookingStatus = "Cancelled"
	BookingCompleted BookingStatus = "Completed"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled, BookingCompleted},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether a booking in s may move to next.
// Cancelled and Completed are final.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, to := range bookingTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

type Service struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	PriceCents    int64    `json:"price_cents"`
	DurationMin   int      `json:"duration_min"`
	Description   string   `json:"description,omitempty"`
	Category      Category `json:"category,omitempty"`
	DiscountCents *int64   `json:"discount_cents,omitempty"`
}

type Barber struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type Shop struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	Address               string     `json:"address"`
	Rating                float64    `json:"rating"`
	ReviewsCount          string     `json:"reviews_count,omitempty"`
	Image                 string     `json:"image"`
	Logo                  string     `json:"logo,omitempty"`
	Status                ShopStatus `json:"status"`
	OpeningHours          string     `json:"opening_hours"`
	Phone                 string     `json:"phone"`
	Tags                  []string   `json:"tags"`
	MainServicePriceCents int64      `json:"main_service_price_cents"`
	MainServiceName       string     `json:"main_service_name"`
	Services              []Service  `json:"services"`
	Barbers               []Barber   `json:"barbers"`
}

// Bookable reports whether the shop can take part in a booking flow.
func (s Shop) Bookable() bool {
	return len(s.Services) > 0 && len(s.Barbers) > 0
}

func (s Shop) Service(id string) (Service, bool) {
	for _, svc := range s.Services {
		if svc.ID == id {
			return svc, true
		}
	}
	return Service{}, false
}

func (s Shop) Barber(id string) (Barber, bool) {
	for _, b := range s.Barbers {
		if b.ID == id {
			return b, true
		}
	}
	return Barber{}, false
}

type Booking struct {
	ID            uuid.UUID     `json:"id"`
	UserID        string        `json:"user_id"`
	ShopID        string        `json:"shop_id"`
	BarberID      *string       `json:"barber_id"`
	ServiceIDs    []string      `json:"service_ids"`
	Date          string        `json:"date"`
	Time          string        `json:"time"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        BookingStatus `json:"status"`
	TotalCents    int64         `json:"total_cents"`
	SessionID     string        `json:"session_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

type Review struct {
	ID        uuid.UUID `json:"id"`
	ShopID    string    `json:"shop_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// TakenSlot is an existing booking occupying a time label on some date.
type TakenSlot struct {
	Time     string  `json:"time"`
	BarberID *string `json:"barber_id,omitempty"`
}
