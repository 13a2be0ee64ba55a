package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/barberbook/internal/domain"
)

// Slot is one bookable time label on a given day.
type Slot struct {
	Time      string         `json:"time"`
	Available bool           `json:"available"`
	Barber    *domain.Barber `json:"barber,omitempty"`
}

// SlotSource supplies the slot grid for a shop and day. An unset barber
// choice is treated as "any".
type SlotSource interface {
	Slots(ctx context.Context, shop domain.Shop, day Date, barber BarberChoice) ([]Slot, error)
}

// Submitter persists a finished selection atomically.
type Submitter interface {
	Submit(ctx context.Context, p Payload) (uuid.UUID, error)
}

// SubmitFunc adapts a function to Submitter.
type SubmitFunc func(ctx context.Context, p Payload) (uuid.UUID, error)

func (f SubmitFunc) Submit(ctx context.Context, p Payload) (uuid.UUID, error) {
	return f(ctx, p)
}

type Config struct {
	Now      func() time.Time
	Location *time.Location
}

// Machine applies transitions to State values. It holds no per-session
// data and is safe for concurrent use.
type Machine struct {
	slots SlotSource
	now   func() time.Time
	loc   *time.Location
}

func New(slots SlotSource, cfg Config) *Machine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &Machine{
		slots: slots,
		now:   cfg.Now,
		loc:   cfg.Location,
	}
}

// Today is the current calendar day in the machine's location.
func (m *Machine) Today() Date {
	return DateOf(m.now().In(m.loc))
}

// Initial returns the state a new session starts in.
func (m *Machine) Initial() State {
	return State{
		Step: StepShops,
		View: m.Today().CalendarMonth(),
	}
}

// Reset discards all progress.
func (m *Machine) Reset() State {
	return m.Initial()
}

func (m *Machine) SelectShop(s State, shop domain.Shop) (State, error) {
	const op = "wizard.Machine.SelectShop"

	if s.Step != StepShops {
		return s, fmt.Errorf("%s: %w", op, ErrWrongStep)
	}

	if !shop.Bookable() {
		return s, fmt.Errorf("%s: %w", op, ErrInvalidShop)
	}

	s.Shop = &shop
	s.Step = StepServices

	return s, nil
}

// ToggleService adds the service when absent and removes it when present.
// Remaining services keep their relative order.
func (m *Machine) ToggleService(s State, svc domain.Service) (State, error) {
	const op = "wizard.Machine.ToggleService"

	if err := m.requireShopService(s, svc); err != nil {
		return s, fmt.Errorf("%s: %w", op, err)
	}

	next := make([]domain.Service, 0, len(s.Services)+1)
	removed := false
	for _, cur := range s.Services {
		if cur.ID == svc.ID {
			removed = true
			continue
		}
		next = append(next, cur)
	}

	if !removed {
		next = append(next, svc)
	}

	s.Services = next

	return s, nil
}

// QuickBook books a single service, dropping any multi-selection, and jumps
// to scheduling with "any" barber and today's date.
func (m *Machine) QuickBook(s State, svc domain.Service) (State, error) {
	const op = "wizard.Machine.QuickBook"

	if err := m.requireShopService(s, svc); err != nil {
		return s, fmt.Errorf("%s: %w", op, err)
	}

	today := m.Today()

	s.Services = []domain.Service{svc}
	s.Barber = AnyBarber()
	s.Date = &today
	s.View = today.CalendarMonth()
	s.Step = StepDateTime

	return s, nil
}

// ContinueWithSelection moves to scheduling with the current selection. An
// already chosen date or barber is kept; otherwise today and "any" are used.
func (m *Machine) ContinueWithSelection(s State) (State, error) {
	const op = "wizard.Machine.ContinueWithSelection"

	if s.Step != StepServices {
		return s, fmt.Errorf("%s: %w", op, ErrWrongStep)
	}

	if len(s.Services) == 0 {
		return s, fmt.Errorf("%s: %w", op, ErrNoServicesSelected)
	}

	if s.Date == nil {
		today := m.Today()
		s.Date = &today
		s.View = today.CalendarMonth()
	}

	if !s.Barber.IsSet() {
		s.Barber = AnyBarber()
	}

	s.Step = StepDateTime

	return s, nil
}

func (m *Machine) SelectBarber(s State, choice BarberChoice) (State, error) {
	const op = "wizard.Machine.SelectBarber"

	if s.Step != StepDateTime || s.Shop == nil {
		return s, fmt.Errorf("%s: %w", op, ErrWrongStep)
	}

	switch choice.Mode {
	case BarberAny:
		s.Barber = AnyBarber()
	case BarberSpecific:
		if choice.Barber == nil {
			return s, fmt.Errorf("%s: %w", op, ErrUnknownBarber)
		}
		b, ok := s.Shop.Barber(choice.Barber.ID)
		if !ok {
			return s, fmt.Errorf("%s: %w", op, ErrUnknownBarber)
		}
		s.Barber = SpecificBarber(b)
	default:
		return s, fmt.Errorf("%s: %w", op, ErrUnknownBarber)
	}

	return s, nil
}

// SelectDate picks a day of the month currently displayed.
func (m *Machine) SelectDate(s State, day int) (State, error) {
	const op = "wizard.Machine.SelectDate"

	if s.Step != StepDateTime {
		return s, fmt.Errorf("%s: %w", op, ErrWrongStep)
	}

	if day < 1 || day > s.View.Days() {
		return s, fmt.Errorf("%s: %w", op, ErrInvalidDay)
	}

	d := Date{Year: s.View.Year, Month: s.View.Month, Day: day}
	s.Date = &d

	return s, nil
}

func (m *Machine) ShowNextMonth(s State) (State, error) {
	const op = "wizard.Machine.ShowNextMonth"

	if s.Step != StepDateTime {
		return s, fmt.Errorf("%s: %w", op, ErrWrongStep)
	}

	s.View = s.View.Add(1)

	return s, nil
}

func (m *Machine) ShowPreviousMonth(s State) (State, error) {
	const op = "wizard.Machine.ShowPreviousMonth"

	if s.Step != StepDateTime {
		return s, fmt.Errorf("%s: %w", op, ErrWrongStep)
	}

	prev := s.View.Add(-1)
	if prev.Before(m.Today().CalendarMonth()) {
		return s, fmt.Errorf("%s: %w", op, ErrMonthInPast)
	}

	s.View = prev

	return s, nil
}

// SelectTime sets the time label. Selecting a slot that exists but is
// unavailable leaves the state as it was and is not an error.
func (m *Machine) SelectTime(ctx context.Context, s State, label string) (State, error) {
	const op = "wizard.Machine.SelectTime"

	if s.Step != StepDateTime || s.Shop == nil {
		return s, fmt.Errorf("%s: %w", op, ErrWrongStep)
	}

	if s.Date == nil {
		return s, fmt.Errorf("%s: %w", op, ErrNoDateSelected)
	}

	slots, err := m.slots.Slots(ctx, *s.Shop, *s.Date, s.Barber)
	if err != nil {
		return s, fmt.Errorf("%s: %w", op, err)
	}

	for _, slot := range slots {
		if slot.Time != label {
			continue
		}
		if slot.Available {
			s.Time = label
		}
		return s, nil
	}

	return s, fmt.Errorf("%s: %w", op, ErrUnknownSlot)
}

// Advance is the validated move from scheduling to payment.
func (m *Machine) Advance(s State) (State, error) {
	const op = "wizard.Machine.Advance"

	if s.Step != StepDateTime {
		return s, fmt.Errorf("%s: %w", op, ErrWrongStep)
	}

	if !CanAdvanceFromDateTime(s) {
		return s, fmt.Errorf("%s: %w", op, ErrSelectionIncomplete)
	}

	s.Step = StepPayment

	return s, nil
}

func (m *Machine) SelectPaymentMethod(s State, method domain.PaymentMethod) (State, error) {
	const op = "wizard.Machine.SelectPaymentMethod"

	if s.Step != StepPayment {
		return s, fmt.Errorf("%s: %w", op, ErrWrongStep)
	}

	if !method.Valid() {
		return s, fmt.Errorf("%s: %w", op, ErrUnknownPaymentMethod)
	}

	s.Payment = method

	return s, nil
}

// ConfirmAndSubmit hands the selection to sub. On failure the returned state
// is s itself, still on the payment step, and the error wraps both
// ErrSubmitFailed and the submitter's error.
func (m *Machine) ConfirmAndSubmit(ctx context.Context, s State, sub Submitter) (State, error) {
	const op = "wizard.Machine.ConfirmAndSubmit"

	if s.Step != StepPayment {
		return s, fmt.Errorf("%s: %w", op, ErrWrongStep)
	}

	payload, err := BuildPayload(s)
	if err != nil {
		return s, fmt.Errorf("%s: %w", op, err)
	}

	id, err := sub.Submit(ctx, payload)
	if err != nil {
		return s, fmt.Errorf("%s: %w: %w", op, ErrSubmitFailed, err)
	}

	s.BookingID = id.String()
	s.Step = StepConfirmation

	return s, nil
}

// GoBack moves one step back without clearing any selection.
func (m *Machine) GoBack(s State) (State, error) {
	const op = "wizard.Machine.GoBack"

	idx := s.Step.Index()
	if idx <= 0 {
		return s, fmt.Errorf("%s: %w", op, ErrNoPreviousStep)
	}

	s.Step = Steps[idx-1]

	return s, nil
}

// GoForward moves one step forward without the checks Advance performs.
func (m *Machine) GoForward(s State) (State, error) {
	const op = "wizard.Machine.GoForward"

	idx := s.Step.Index()
	if idx < 0 || idx >= len(Steps)-1 {
		return s, fmt.Errorf("%s: %w", op, ErrNoNextStep)
	}

	s.Step = Steps[idx+1]

	return s, nil
}

func (m *Machine) requireShopService(s State, svc domain.Service) error {
	if s.Step != StepServices || s.Shop == nil {
		return ErrWrongStep
	}

	if _, ok := s.Shop.Service(svc.ID); !ok {
		return ErrUnknownService
	}

	return nil
}
