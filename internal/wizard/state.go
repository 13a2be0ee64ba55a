package wizard

import (
	"fmt"
	"time"

	"github.com/kirinyoku/barberbook/internal/domain"
)

type Step string

const (
	StepShops        Step = "shops"
	StepServices     Step = "services"
	StepDateTime     Step = "datetime"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

// Steps is the ordered flow. Navigation and progress indicators both read it.
var Steps = []Step{StepShops, StepServices, StepDateTime, StepPayment, StepConfirmation}

// Index returns the position of s in Steps, or -1.
func (s Step) Index() int {
	for i, st := range Steps {
		if st == s {
			return i
		}
	}
	return -1
}

type BarberMode string

const (
	BarberUnset    BarberMode = ""
	BarberAny      BarberMode = "any"
	BarberSpecific BarberMode = "specific"
)

// BarberChoice distinguishes "not decided yet" from "any available
// professional" and from a concrete barber.
type BarberChoice struct {
	Mode   BarberMode     `json:"mode"`
	Barber *domain.Barber `json:"barber,omitempty"`
}

func AnyBarber() BarberChoice {
	return BarberChoice{Mode: BarberAny}
}

func SpecificBarber(b domain.Barber) BarberChoice {
	return BarberChoice{Mode: BarberSpecific, Barber: &b}
}

func (c BarberChoice) IsSet() bool {
	return c.Mode != BarberUnset
}

// BarberID is nil unless a specific barber was chosen.
func (c BarberChoice) BarberID() *string {
	if c.Mode != BarberSpecific || c.Barber == nil {
		return nil
	}
	id := c.Barber.ID
	return &id
}

// Date is a calendar day without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	const op = "wizard.ParseDate"

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("%s: %w", op, err)
	}

	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) CalendarMonth() CalendarMonth {
	return CalendarMonth{Year: d.Year, Month: d.Month}
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// CalendarMonth is the month a calendar is currently displaying.
type CalendarMonth struct {
	Year  int
	Month time.Month
}

func (m CalendarMonth) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m CalendarMonth) Add(months int) CalendarMonth {
	t := time.Date(m.Year, m.Month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	return CalendarMonth{Year: t.Year(), Month: t.Month()}
}

func (m CalendarMonth) Before(o CalendarMonth) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m CalendarMonth) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m CalendarMonth) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *CalendarMonth) UnmarshalText(b []byte) error {
	t, err := time.Parse("2006-01", string(b))
	if err != nil {
		return fmt.Errorf("wizard.CalendarMonth.UnmarshalText: %w", err)
	}
	*m = CalendarMonth{Year: t.Year(), Month: t.Month()}
	return nil
}

// State is the whole progress of one booking flow. It is a plain value:
// transitions never modify the State they receive.
type State struct {
	Step      Step                 `json:"step"`
	Shop      *domain.Shop         `json:"selected_shop"`
	Services  []domain.Service     `json:"selected_services"`
	Barber    BarberChoice         `json:"selected_barber"`
	Date      *Date                `json:"selected_date"`
	Time      string               `json:"selected_time,omitempty"`
	Payment   domain.PaymentMethod `json:"payment_method,omitempty"`
	View      CalendarMonth        `json:"view_month"`
	BookingID string               `json:"booking_id,omitempty"`
}

func (s State) hasService(id string) bool {
	for _, svc := range s.Services {
		if svc.ID == id {
			return true
		}
	}
	return false
}

// Total is the sum of prices over the selected services, in cents.
func Total(s State) int64 {
	var total int64
	for _, svc := range s.Services {
		total += svc.PriceCents
	}
	return total
}

func FormattedTotal(s State) string {
	return domain.FormatBRL(Total(s))
}

func CanAdvanceFromDateTime(s State) bool {
	return s.Date != nil && s.Time != ""
}
