package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/barberbook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	corte  = domain.Service{ID: "s1", Name: "Corte Degradê", PriceCents: 4500, DurationMin: 45, Category: domain.CategoryHair}
	barba  = domain.Service{ID: "s2", Name: "Barba Terapia", PriceCents: 3500, DurationMin: 30, Category: domain.CategoryBeard}
	combo  = domain.Service{ID: "s3", Name: "Combo Viking", PriceCents: 7000, DurationMin: 75, Category: domain.CategoryCombo}
	carlos = domain.Barber{ID: "b1", Name: `Carlos "Navalha"`}
	andre  = domain.Barber{ID: "b2", Name: "André Silva"}
	pedro  = domain.Barber{ID: "b4", Name: "Pedro Alves"}

	viking = domain.Shop{
		ID:       "shop1",
		Name:     "Barbearia Viking",
		Status:   domain.ShopOpen,
		Services: []domain.Service{corte, barba, combo},
		Barbers:  []domain.Barber{carlos, andre},
	}
)

var testSlots = []string{"09:00", "09:45", "10:30", "11:15", "13:00", "13:45"}

// staticSlots marks every label in blocked as unavailable.
type staticSlots struct {
	blocked map[string]bool
	err     error
	calls   int
}

func (s *staticSlots) Slots(_ context.Context, _ domain.Shop, _ Date, _ BarberChoice) ([]Slot, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Slot, 0, len(testSlots))
	for _, label := range testSlots {
		out = append(out, Slot{Time: label, Available: !s.blocked[label]})
	}
	return out, nil
}

type fakeSubmitter struct {
	id       uuid.UUID
	err      error
	payloads []Payload
}

func (f *fakeSubmitter) Submit(_ context.Context, p Payload) (uuid.UUID, error) {
	f.payloads = append(f.payloads, p)
	if f.err != nil {
		return uuid.Nil, f.err
	}
	return f.id, nil
}

func newTestMachine(t *testing.T) *Machine {
	t.Helper()

	now := time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)
	return New(&staticSlots{blocked: map[string]bool{"13:00": true}}, Config{
		Now:      func() time.Time { return now },
		Location: time.UTC,
	})
}

func atServices(t *testing.T, m *Machine) State {
	t.Helper()

	s, err := m.SelectShop(m.Initial(), viking)
	require.NoError(t, err)
	return s
}

func atDateTime(t *testing.T, m *Machine) State {
	t.Helper()

	s := atServices(t, m)
	s, err := m.ToggleService(s, corte)
	require.NoError(t, err)
	s, err = m.ContinueWithSelection(s)
	require.NoError(t, err)
	return s
}

func serviceIDs(s State) []string {
	ids := make([]string, 0, len(s.Services))
	for _, svc := range s.Services {
		ids = append(ids, svc.ID)
	}
	return ids
}

func TestInitialState(t *testing.T) {
	m := newTestMachine(t)

	s := m.Initial()

	assert.Equal(t, StepShops, s.Step)
	assert.Nil(t, s.Shop)
	assert.Empty(t, s.Services)
	assert.False(t, s.Barber.IsSet())
	assert.Nil(t, s.Date)
	assert.Empty(t, s.Time)
	assert.Empty(t, s.Payment)
	assert.Equal(t, CalendarMonth{Year: 2026, Month: time.October}, s.View)
}

func TestSelectShop(t *testing.T) {
	m := newTestMachine(t)

	s, err := m.SelectShop(m.Initial(), viking)
	require.NoError(t, err)
	assert.Equal(t, StepServices, s.Step)
	require.NotNil(t, s.Shop)
	assert.Equal(t, "shop1", s.Shop.ID)

	_, err = m.SelectShop(s, viking)
	assert.ErrorIs(t, err, ErrWrongStep)

	empty := domain.Shop{ID: "shop9", Services: viking.Services}
	unchanged, err := m.SelectShop(m.Initial(), empty)
	assert.ErrorIs(t, err, ErrInvalidShop)
	assert.Equal(t, m.Initial(), unchanged)
}

func TestToggleServiceAddsAndRemoves(t *testing.T) {
	m := newTestMachine(t)
	s := atServices(t, m)

	s, err := m.ToggleService(s, corte)
	require.NoError(t, err)
	s, err = m.ToggleService(s, barba)
	require.NoError(t, err)
	s, err = m.ToggleService(s, combo)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3"}, serviceIDs(s))

	s, err = m.ToggleService(s, barba)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s3"}, serviceIDs(s))

	s, err = m.ToggleService(s, barba)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s3", "s2"}, serviceIDs(s), "re-added service goes to the end")
	assert.Equal(t, StepServices, s.Step)
}

func TestToggleServiceDoesNotAliasInput(t *testing.T) {
	m := newTestMachine(t)
	s := atServices(t, m)
	s, _ = m.ToggleService(s, corte)
	s, _ = m.ToggleService(s, barba)

	before := serviceIDs(s)
	_, err := m.ToggleService(s, corte)
	require.NoError(t, err)

	assert.Equal(t, before, serviceIDs(s))
}

func TestToggleServiceParity(t *testing.T) {
	m := newTestMachine(t)
	rng := rand.New(rand.NewSource(42))
	catalog := viking.Services

	for round := 0; round < 200; round++ {
		s := atServices(t, m)
		counts := map[string]int{}
		var model []string

		n := rng.Intn(20)
		for i := 0; i < n; i++ {
			svc := catalog[rng.Intn(len(catalog))]
			counts[svc.ID]++

			idx := -1
			for j, id := range model {
				if id == svc.ID {
					idx = j
				}
			}
			if idx >= 0 {
				model = append(model[:idx:idx], model[idx+1:]...)
			} else {
				model = append(model, svc.ID)
			}

			var err error
			s, err = m.ToggleService(s, svc)
			require.NoError(t, err)
		}

		for _, svc := range catalog {
			assert.Equal(t, counts[svc.ID]%2 == 1, s.hasService(svc.ID), "service %s", svc.ID)
		}
		if len(model) == 0 {
			assert.Empty(t, s.Services)
		} else {
			assert.Equal(t, model, serviceIDs(s))
		}
	}
}

func TestToggleServiceRefusals(t *testing.T) {
	m := newTestMachine(t)

	_, err := m.ToggleService(m.Initial(), corte)
	assert.ErrorIs(t, err, ErrWrongStep)

	s := atServices(t, m)
	foreign := domain.Service{ID: "s99", Name: "Relaxamento", PriceCents: 9000}
	got, err := m.ToggleService(s, foreign)
	assert.ErrorIs(t, err, ErrUnknownService)
	assert.Equal(t, s, got)
}

func TestTotalIsRecomputed(t *testing.T) {
	m := newTestMachine(t)
	s := atServices(t, m)
	assert.Equal(t, int64(0), Total(s))

	s, _ = m.ToggleService(s, corte)
	s, _ = m.ToggleService(s, barba)
	assert.Equal(t, int64(8000), Total(s))
	assert.Equal(t, "R$ 80,00", FormattedTotal(s))

	s, _ = m.ToggleService(s, corte)
	assert.Equal(t, int64(3500), Total(s))
	assert.Equal(t, "R$ 35,00", FormattedTotal(s))
}

func TestQuickBookReplacesSelection(t *testing.T) {
	m := newTestMachine(t)
	s := atServices(t, m)
	s, _ = m.ToggleService(s, corte)
	s, _ = m.ToggleService(s, barba)

	s, err := m.QuickBook(s, combo)
	require.NoError(t, err)

	assert.Equal(t, []domain.Service{combo}, s.Services)
	assert.Equal(t, StepDateTime, s.Step)
	assert.Equal(t, AnyBarber(), s.Barber)
	require.NotNil(t, s.Date)
	assert.Equal(t, "2026-10-16", s.Date.String())
}

func TestQuickBookRefusals(t *testing.T) {
	m := newTestMachine(t)

	_, err := m.QuickBook(m.Initial(), corte)
	assert.ErrorIs(t, err, ErrWrongStep)

	_, err = m.QuickBook(atServices(t, m), domain.Service{ID: "nope"})
	assert.ErrorIs(t, err, ErrUnknownService)
}

func TestContinueWithSelection(t *testing.T) {
	m := newTestMachine(t)
	s := atServices(t, m)

	got, err := m.ContinueWithSelection(s)
	assert.ErrorIs(t, err, ErrNoServicesSelected)
	assert.Equal(t, s, got)

	s, _ = m.ToggleService(s, corte)
	s, err = m.ContinueWithSelection(s)
	require.NoError(t, err)
	assert.Equal(t, StepDateTime, s.Step)
	assert.Equal(t, AnyBarber(), s.Barber)
	require.NotNil(t, s.Date)
	assert.Equal(t, "2026-10-16", s.Date.String())
}

func TestContinueWithSelectionKeepsEarlierChoices(t *testing.T) {
	m := newTestMachine(t)
	s := atDateTime(t, m)

	s, err := m.SelectBarber(s, SpecificBarber(andre))
	require.NoError(t, err)
	s, err = m.SelectDate(s, 20)
	require.NoError(t, err)

	s, err = m.GoBack(s)
	require.NoError(t, err)
	s, err = m.ContinueWithSelection(s)
	require.NoError(t, err)

	assert.Equal(t, "2026-10-20", s.Date.String())
	assert.Equal(t, BarberSpecific, s.Barber.Mode)
	assert.Equal(t, "b2", *s.Barber.BarberID())
}

func TestSelectBarber(t *testing.T) {
	m := newTestMachine(t)
	s := atDateTime(t, m)

	s, err := m.SelectBarber(s, SpecificBarber(carlos))
	require.NoError(t, err)
	assert.Equal(t, "b1", *s.Barber.BarberID())
	assert.Equal(t, StepDateTime, s.Step)

	s, err = m.SelectBarber(s, AnyBarber())
	require.NoError(t, err)
	assert.Nil(t, s.Barber.BarberID())
	assert.Equal(t, BarberAny, s.Barber.Mode)

	_, err = m.SelectBarber(s, SpecificBarber(pedro))
	assert.ErrorIs(t, err, ErrUnknownBarber)

	_, err = m.SelectBarber(s, BarberChoice{})
	assert.ErrorIs(t, err, ErrUnknownBarber)
}

func TestSelectDateWithinDisplayedMonth(t *testing.T) {
	m := newTestMachine(t)
	s := atDateTime(t, m)

	s, err := m.SelectDate(s, 31)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-31", s.Date.String())

	for _, day := range []int{0, 32, -1} {
		got, err := m.SelectDate(s, day)
		assert.ErrorIs(t, err, ErrInvalidDay, "day %d", day)
		assert.Equal(t, s, got)
	}

	s, err = m.ShowNextMonth(s)
	require.NoError(t, err)
	_, err = m.SelectDate(s, 31)
	assert.ErrorIs(t, err, ErrInvalidDay, "november has 30 days")

	s, err = m.SelectDate(s, 30)
	require.NoError(t, err)
	assert.Equal(t, "2026-11-30", s.Date.String())
}

func TestShowPreviousMonthStopsAtCurrentMonth(t *testing.T) {
	m := newTestMachine(t)
	s := atDateTime(t, m)

	_, err := m.ShowPreviousMonth(s)
	assert.ErrorIs(t, err, ErrMonthInPast)

	s, _ = m.ShowNextMonth(s)
	s, _ = m.ShowNextMonth(s)
	assert.Equal(t, CalendarMonth{Year: 2026, Month: time.December}, s.View)

	s, _ = m.ShowNextMonth(s)
	assert.Equal(t, CalendarMonth{Year: 2027, Month: time.January}, s.View)

	s, err = m.ShowPreviousMonth(s)
	require.NoError(t, err)
	assert.Equal(t, CalendarMonth{Year: 2026, Month: time.December}, s.View)
}

func TestSelectTimeUnavailableIsNoop(t *testing.T) {
	m := newTestMachine(t)
	s := atDateTime(t, m)

	s, err := m.SelectTime(context.Background(), s, "10:30")
	require.NoError(t, err)
	assert.Equal(t, "10:30", s.Time)

	got, err := m.SelectTime(context.Background(), s, "13:00")
	require.NoError(t, err)
	assert.Equal(t, "10:30", got.Time)
	assert.Equal(t, s, got)
}

func TestSelectTimeRefusals(t *testing.T) {
	m := newTestMachine(t)
	s := atDateTime(t, m)

	_, err := m.SelectTime(context.Background(), s, "25:00")
	assert.ErrorIs(t, err, ErrUnknownSlot)

	noDate := s
	noDate.Date = nil
	_, err = m.SelectTime(context.Background(), noDate, "09:00")
	assert.ErrorIs(t, err, ErrNoDateSelected)

	_, err = m.SelectTime(context.Background(), atServices(t, m), "09:00")
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestSelectTimePropagatesSourceError(t *testing.T) {
	boom := errors.New("redis down")
	m := New(&staticSlots{err: boom}, Config{})
	s, err := m.SelectShop(m.Initial(), viking)
	require.NoError(t, err)
	s, _ = m.ToggleService(s, corte)
	s, _ = m.ContinueWithSelection(s)

	got, err := m.SelectTime(context.Background(), s, "09:00")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, s, got)
}

func TestAdvanceRequiresDateAndTime(t *testing.T) {
	m := newTestMachine(t)
	s := atDateTime(t, m)

	got, err := m.Advance(s)
	assert.ErrorIs(t, err, ErrSelectionIncomplete)
	assert.Equal(t, StepDateTime, got.Step)
	assert.False(t, CanAdvanceFromDateTime(s))

	s, _ = m.SelectTime(context.Background(), s, "09:00")
	assert.True(t, CanAdvanceFromDateTime(s))

	s, err = m.Advance(s)
	require.NoError(t, err)
	assert.Equal(t, StepPayment, s.Step)
}

func TestSelectPaymentMethod(t *testing.T) {
	m := newTestMachine(t)
	s := atDateTime(t, m)
	s, _ = m.SelectTime(context.Background(), s, "09:00")

	_, err := m.SelectPaymentMethod(s, domain.PaymentPix)
	assert.ErrorIs(t, err, ErrWrongStep)

	s, _ = m.Advance(s)
	s, err = m.SelectPaymentMethod(s, domain.PaymentPix)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPix, s.Payment)
	assert.Equal(t, StepPayment, s.Step)

	_, err = m.SelectPaymentMethod(s, "Boleto")
	assert.ErrorIs(t, err, ErrUnknownPaymentMethod)
}

func TestGoBackThenForwardRestoresStep(t *testing.T) {
	m := newTestMachine(t)
	s := atDateTime(t, m)
	s, _ = m.SelectTime(context.Background(), s, "09:45")
	s, _ = m.SelectBarber(s, SpecificBarber(carlos))
	payment, _ := m.Advance(s)

	for _, start := range []State{atServices(t, m), s, payment} {
		back, err := m.GoBack(start)
		require.NoError(t, err)
		assert.Equal(t, Steps[start.Step.Index()-1], back.Step)

		fwd, err := m.GoForward(back)
		require.NoError(t, err)
		assert.Equal(t, start, fwd)
	}
}

func TestNavigationBounds(t *testing.T) {
	m := newTestMachine(t)

	got, err := m.GoBack(m.Initial())
	assert.ErrorIs(t, err, ErrNoPreviousStep)
	assert.Equal(t, StepShops, got.Step)

	last := m.Initial()
	last.Step = StepConfirmation
	_, err = m.GoForward(last)
	assert.ErrorIs(t, err, ErrNoNextStep)

	fwd, err := m.GoForward(m.Initial())
	require.NoError(t, err)
	assert.Equal(t, StepServices, fwd.Step)
}

func TestResetEqualsInitial(t *testing.T) {
	m := newTestMachine(t)
	s := atDateTime(t, m)
	s, _ = m.SelectTime(context.Background(), s, "09:00")
	s, _ = m.Advance(s)
	s, _ = m.SelectPaymentMethod(s, domain.PaymentCash)

	assert.Equal(t, m.Initial(), m.Reset())
	assert.NotEqual(t, s, m.Reset())
}

func TestConfirmFailureStaysOnPayment(t *testing.T) {
	m := newTestMachine(t)
	s := atDateTime(t, m)
	s, _ = m.SelectTime(context.Background(), s, "09:00")
	s, _ = m.Advance(s)

	sub := &fakeSubmitter{err: errors.New("connection refused")}
	got, err := m.ConfirmAndSubmit(context.Background(), s, sub)
	assert.ErrorIs(t, err, ErrSubmitFailed)
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, s, got)

	sub.err = nil
	sub.id = uuid.New()
	got, err = m.ConfirmAndSubmit(context.Background(), got, sub)
	require.NoError(t, err)
	assert.Equal(t, StepConfirmation, got.Step)
	assert.Len(t, sub.payloads, 2)
	assert.Equal(t, sub.payloads[0], sub.payloads[1])
}

func TestConfirmRequiresPaymentStep(t *testing.T) {
	m := newTestMachine(t)
	sub := &fakeSubmitter{}

	_, err := m.ConfirmAndSubmit(context.Background(), atDateTime(t, m), sub)
	assert.ErrorIs(t, err, ErrWrongStep)

	// reachable through GoForward without a time
	s := atDateTime(t, m)
	s, _ = m.GoForward(s)
	_, err = m.ConfirmAndSubmit(context.Background(), s, sub)
	assert.ErrorIs(t, err, ErrSelectionIncomplete)
	assert.Empty(t, sub.payloads)
}

func TestVikingScenario(t *testing.T) {
	m := newTestMachine(t)
	ctx := context.Background()
	sub := &fakeSubmitter{id: uuid.MustParse("8b3f8d38-3a8e-4a64-9d43-2f5b8e0f1c11")}

	s, err := m.SelectShop(m.Initial(), viking)
	require.NoError(t, err)
	s, err = m.ToggleService(s, corte)
	require.NoError(t, err)
	s, err = m.ToggleService(s, barba)
	require.NoError(t, err)
	s, err = m.ContinueWithSelection(s)
	require.NoError(t, err)
	s, err = m.SelectDate(s, 15)
	require.NoError(t, err)
	s, err = m.SelectTime(ctx, s, "10:30")
	require.NoError(t, err)
	s, err = m.Advance(s)
	require.NoError(t, err)
	s, err = m.SelectPaymentMethod(s, domain.PaymentPix)
	require.NoError(t, err)
	s, err = m.ConfirmAndSubmit(ctx, s, sub)
	require.NoError(t, err)

	assert.Equal(t, StepConfirmation, s.Step)
	assert.Equal(t, "R$ 80,00", FormattedTotal(s))
	assert.Equal(t, "8b3f8d38-3a8e-4a64-9d43-2f5b8e0f1c11", s.BookingID)

	require.Len(t, sub.payloads, 1)
	body, err := json.Marshal(sub.payloads[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"shop": "shop1",
		"barber": null,
		"services": ["s1", "s2"],
		"date": "2026-10-15",
		"time": "10:30",
		"payment_method": "PIX",
		"status": "Pending"
	}`, string(body))
}
