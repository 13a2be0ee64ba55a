// Package schedule decides which time labels of a shop's day can still be
// booked.
//
// A label is unavailable when it is blocked for the whole shop, when the
// requested barber already has a booking there, or when the shop has no
// barber left at that time. Bookings made for "any" barber carry no barber
// id and consume one unit of capacity each.
package schedule

import (
	"errors"
	"slices"

	"github.com/kirinyoku/barberbook/internal/domain"
	"github.com/kirinyoku/barberbook/internal/wizard"
)

var (
	ErrUnknownTime     = errors.New("time is not part of the schedule")
	ErrSlotUnavailable = errors.New("slot is no longer available")
)

type Rules struct {
	Times   []string
	Blocked []string
}

// Grid lists every label of the template in order. barberID nil means any
// barber.
func (r Rules) Grid(shop domain.Shop, taken []domain.TakenSlot, barberID *string) []wizard.Slot {
	out := make([]wizard.Slot, 0, len(r.Times))

	for _, t := range r.Times {
		slot := wizard.Slot{Time: t}
		if b, ok := r.assign(shop, taken, t, barberID); ok {
			slot.Available = true
			slot.Barber = &b
		}
		out = append(out, slot)
	}

	return out
}

// Check validates a single label for a new booking and returns the barber
// who would serve it.
func (r Rules) Check(shop domain.Shop, taken []domain.TakenSlot, t string, barberID *string) (domain.Barber, error) {
	if !slices.Contains(r.Times, t) {
		return domain.Barber{}, ErrUnknownTime
	}

	b, ok := r.assign(shop, taken, t, barberID)
	if !ok {
		return domain.Barber{}, ErrSlotUnavailable
	}

	return b, nil
}

func (r Rules) assign(shop domain.Shop, taken []domain.TakenSlot, t string, barberID *string) (domain.Barber, bool) {
	if slices.Contains(r.Blocked, t) {
		return domain.Barber{}, false
	}

	busy := make(map[string]bool)
	unassigned := 0
	for _, ts := range taken {
		if ts.Time != t {
			continue
		}
		if ts.BarberID == nil {
			unassigned++
			continue
		}
		busy[*ts.BarberID] = true
	}

	var free []domain.Barber
	for _, b := range shop.Barbers {
		if !busy[b.ID] {
			free = append(free, b)
		}
	}

	if len(free) <= unassigned {
		return domain.Barber{}, false
	}

	if barberID == nil {
		return free[unassigned], true
	}

	for _, b := range free {
		if b.ID == *barberID {
			return b, true
		}
	}

	return domain.Barber{}, false
}
