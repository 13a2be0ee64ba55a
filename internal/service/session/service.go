package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/barberbook/internal/domain"
	"github.com/kirinyoku/barberbook/internal/repository"
	"github.com/kirinyoku/barberbook/internal/wizard"
)

type Shops interface {
	GetShop(ctx context.Context, id string) (*domain.Shop, error)
}

// Store keeps wizard states. Update must apply fn atomically with respect to
// other writers of the same id and leave the state untouched when fn fails.
type Store interface {
	Save(ctx context.Context, id string, st wizard.State) error
	Load(ctx context.Context, id string) (wizard.State, error)
	Update(ctx context.Context, id string, fn func(st wizard.State) (wizard.State, error)) (wizard.State, error)
	Delete(ctx context.Context, id string) error
}

type Guard interface {
	Acquire(ctx context.Context, sessionID string) (bool, error)
	Release(ctx context.Context, sessionID string) error
}

// Booker must return the same booking id when called again for a sessionID
// that already booked.
type Booker interface {
	Submit(ctx context.Context, userID, sessionID string, p wizard.Payload) (uuid.UUID, error)
}

const (
	defaultSubmitTimeout = 20 * time.Second
	saveAttempts         = 3
	saveBackoff          = 50 * time.Millisecond
)

// Service runs wizard transitions against states kept in a Store. A failed
// transition never overwrites the stored state.
type Service struct {
	machine *wizard.Machine
	slots   wizard.SlotSource
	shops   Shops
	store   Store
	guard   Guard
	booker  Booker
	logger  *slog.Logger

	submitTimeout time.Duration
}

type Deps struct {
	Machine *wizard.Machine
	Slots   wizard.SlotSource
	Shops   Shops
	Store   Store
	Guard   Guard
	Booker  Booker
	Logger  *slog.Logger

	// SubmitTimeout bounds one booking submission. Keep it below the submit
	// guard's TTL so the guard cannot expire while a submission still runs.
	SubmitTimeout time.Duration
}

func New(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	if d.SubmitTimeout <= 0 {
		d.SubmitTimeout = defaultSubmitTimeout
	}

	return &Service{
		machine: d.Machine,
		slots:   d.Slots,
		shops:   d.Shops,
		store:   d.Store,
		guard:   d.Guard,
		booker:  d.Booker,
		logger:  d.Logger,

		submitTimeout: d.SubmitTimeout,
	}
}

// Start stores a fresh state under a new id.
func (s *Service) Start(ctx context.Context) (string, wizard.State, error) {
	const op = "service.session.Start"

	id := uuid.NewString()
	st := s.machine.Initial()

	if err := s.store.Save(ctx, id, st); err != nil {
		return "", wizard.State{}, fmt.Errorf("%s: %w", op, err)
	}

	return id, st, nil
}

func (s *Service) Get(ctx context.Context, id string) (wizard.State, error) {
	const op = "service.session.Get"

	st, err := s.load(ctx, id)
	if err != nil {
		return wizard.State{}, fmt.Errorf("%s: %w", op, err)
	}

	return st, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "service.session.Delete"

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) load(ctx context.Context, id string) (wizard.State, error) {
	st, err := s.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return wizard.State{}, ErrSessionNotFound
		}
		return wizard.State{}, err
	}

	return st, nil
}

// apply runs fn on the stored state and persists the result in one
// compare-and-set step. On a refused transition the stored state is returned
// together with the error.
func (s *Service) apply(ctx context.Context, op, id string, fn func(st wizard.State) (wizard.State, error)) (wizard.State, error) {
	st, err := s.store.Update(ctx, id, fn)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return wizard.State{}, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
	case errors.Is(err, repository.ErrConflict):
		return wizard.State{}, fmt.Errorf("%s: %w", op, ErrSessionBusy)
	case err != nil:
		return st, fmt.Errorf("%s: %w", op, err)
	}

	return st, nil
}

// SelectShop resolves shopID through the catalog so the state carries the
// current services and barbers.
func (s *Service) SelectShop(ctx context.Context, id, shopID string) (wizard.State, error) {
	return s.apply(ctx, "service.session.SelectShop", id, func(st wizard.State) (wizard.State, error) {
		if st.Step != wizard.StepShops {
			return st, wizard.ErrWrongStep
		}

		shop, err := s.shops.GetShop(ctx, shopID)
		if err != nil {
			return st, err
		}

		return s.machine.SelectShop(st, *shop)
	})
}

func (s *Service) ToggleService(ctx context.Context, id, serviceID string) (wizard.State, error) {
	return s.apply(ctx, "service.session.ToggleService", id, func(st wizard.State) (wizard.State, error) {
		return s.machine.ToggleService(st, lookupService(st, serviceID))
	})
}

func (s *Service) QuickBook(ctx context.Context, id, serviceID string) (wizard.State, error) {
	return s.apply(ctx, "service.session.QuickBook", id, func(st wizard.State) (wizard.State, error) {
		return s.machine.QuickBook(st, lookupService(st, serviceID))
	})
}

func (s *Service) Continue(ctx context.Context, id string) (wizard.State, error) {
	return s.apply(ctx, "service.session.Continue", id, s.machine.ContinueWithSelection)
}

// SelectBarber takes "" or "any" for any available professional.
func (s *Service) SelectBarber(ctx context.Context, id, barberID string) (wizard.State, error) {
	return s.apply(ctx, "service.session.SelectBarber", id, func(st wizard.State) (wizard.State, error) {
		if barberID == "" || barberID == string(wizard.BarberAny) {
			return s.machine.SelectBarber(st, wizard.AnyBarber())
		}

		b := domain.Barber{ID: barberID}
		if st.Shop != nil {
			if found, ok := st.Shop.Barber(barberID); ok {
				b = found
			}
		}

		return s.machine.SelectBarber(st, wizard.SpecificBarber(b))
	})
}

func (s *Service) SelectDate(ctx context.Context, id string, day int) (wizard.State, error) {
	return s.apply(ctx, "service.session.SelectDate", id, func(st wizard.State) (wizard.State, error) {
		return s.machine.SelectDate(st, day)
	})
}

// ShowMonth moves the calendar one month forward (1) or back (-1).
func (s *Service) ShowMonth(ctx context.Context, id string, direction int) (wizard.State, error) {
	return s.apply(ctx, "service.session.ShowMonth", id, func(st wizard.State) (wizard.State, error) {
		switch direction {
		case 1:
			return s.machine.ShowNextMonth(st)
		case -1:
			return s.machine.ShowPreviousMonth(st)
		default:
			return st, ErrInvalidDirection
		}
	})
}

func (s *Service) SelectTime(ctx context.Context, id, label string) (wizard.State, error) {
	return s.apply(ctx, "service.session.SelectTime", id, func(st wizard.State) (wizard.State, error) {
		return s.machine.SelectTime(ctx, st, label)
	})
}

func (s *Service) Advance(ctx context.Context, id string) (wizard.State, error) {
	return s.apply(ctx, "service.session.Advance", id, s.machine.Advance)
}

func (s *Service) SelectPayment(ctx context.Context, id string, method domain.PaymentMethod) (wizard.State, error) {
	return s.apply(ctx, "service.session.SelectPayment", id, func(st wizard.State) (wizard.State, error) {
		return s.machine.SelectPaymentMethod(st, method)
	})
}

func (s *Service) Back(ctx context.Context, id string) (wizard.State, error) {
	return s.apply(ctx, "service.session.Back", id, s.machine.GoBack)
}

func (s *Service) Forward(ctx context.Context, id string) (wizard.State, error) {
	return s.apply(ctx, "service.session.Forward", id, s.machine.GoForward)
}

func (s *Service) Reset(ctx context.Context, id string) (wizard.State, error) {
	return s.apply(ctx, "service.session.Reset", id, func(wizard.State) (wizard.State, error) {
		return s.machine.Reset(), nil
	})
}

// Slots lists the grid for the state's shop, date and barber.
func (s *Service) Slots(ctx context.Context, id string) ([]wizard.Slot, error) {
	const op = "service.session.Slots"

	st, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if st.Shop == nil || st.Date == nil {
		return nil, fmt.Errorf("%s: %w", op, wizard.ErrNoDateSelected)
	}

	slots, err := s.slots.Slots(ctx, *st.Shop, *st.Date, st.Barber)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slots, nil
}

// Confirm submits the session's booking on behalf of userID. Only one
// confirmation per session runs at a time; a concurrent call gets
// ErrSubmitInProgress. On failure the stored state stays on the payment
// step so the user can retry, and a retry after a lost save gets back the
// booking the first attempt made.
func (s *Service) Confirm(ctx context.Context, id, userID string) (wizard.State, error) {
	const op = "service.session.Confirm"

	ok, err := s.guard.Acquire(ctx, id)
	if err != nil {
		return wizard.State{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return wizard.State{}, fmt.Errorf("%s: %w", op, ErrSubmitInProgress)
	}

	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), id); err != nil {
			s.logger.Warn("failed to release submit guard", slog.String("session_id", id), slog.Any("error", err))
		}
	}()

	st, err := s.load(ctx, id)
	if err != nil {
		return wizard.State{}, fmt.Errorf("%s: %w", op, err)
	}

	submitCtx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()

	submit := wizard.SubmitFunc(func(ctx context.Context, p wizard.Payload) (uuid.UUID, error) {
		return s.booker.Submit(ctx, userID, id, p)
	})

	next, err := s.machine.ConfirmAndSubmit(submitCtx, st, submit)
	if err != nil {
		return st, fmt.Errorf("%s: %w", op, err)
	}

	// The booking is committed; store it even if the request is gone.
	if err := s.save(context.WithoutCancel(ctx), id, next); err != nil {
		s.logger.Error("failed to store confirmed session",
			slog.String("session_id", id),
			slog.String("booking_id", next.BookingID),
			slog.Any("error", err),
		)
		return st, fmt.Errorf("%s: %w", op, err)
	}

	return next, nil
}

func (s *Service) save(ctx context.Context, id string, st wizard.State) error {
	var err error

	for attempt := 0; attempt < saveAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * saveBackoff)
		}

		if err = s.store.Save(ctx, id, st); err == nil {
			return nil
		}
	}

	return err
}

// lookupService returns the shop's copy of the service, or a bare id the
// machine will refuse.
func lookupService(st wizard.State, serviceID string) domain.Service {
	if st.Shop != nil {
		if svc, ok := st.Shop.Service(serviceID); ok {
			return svc
		}
	}

	return domain.Service{ID: serviceID}
}
