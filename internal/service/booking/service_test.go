package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/barberbook/internal/domain"
	"github.com/kirinyoku/barberbook/internal/schedule"
	"github.com/kirinyoku/barberbook/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	shop = domain.Shop{
		ID: "s1",
		Services: []domain.Service{
			{ID: "svc1", Name: "Corte", PriceCents: 4500},
			{ID: "svc2", Name: "Barba", PriceCents: 3500},
		},
		Barbers: []domain.Barber{{ID: "b1"}, {ID: "b2"}},
	}

	testCfg = Config{
		Rules:    schedule.Rules{Times: []string{"09:00", "09:45", "13:00"}, Blocked: []string{"13:00"}},
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2026, time.October, 16, 8, 0, 0, 0, time.UTC) },
	}.withDefaults()
)

func ptr(s string) *string { return &s }

func validPayload() wizard.Payload {
	return wizard.Payload{
		Shop:          "s1",
		Barber:        ptr("b2"),
		Services:      []string{"svc1", "svc2"},
		Date:          "2026-10-16",
		Time:          "09:45",
		PaymentMethod: domain.PaymentPix,
		Status:        domain.BookingPending,
	}
}

func TestPrepareBuildsBooking(t *testing.T) {
	b, err := prepare(testCfg, shop, nil, "user-1", validPayload())
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "user-1", b.UserID)
	assert.Equal(t, "s1", b.ShopID)
	assert.Equal(t, "b2", *b.BarberID)
	assert.Equal(t, []string{"svc1", "svc2"}, b.ServiceIDs)
	assert.Equal(t, int64(8000), b.TotalCents)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, domain.PaymentPix, b.PaymentMethod)
}

func TestPrepareAnyBarberKeepsNullBarber(t *testing.T) {
	p := validPayload()
	p.Barber = nil

	b, err := prepare(testCfg, shop, nil, "user-1", p)
	require.NoError(t, err)
	assert.Nil(t, b.BarberID)
}

func TestPrepareRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *wizard.Payload)
		taken  []domain.TakenSlot
		want   error
	}{
		{"payment", func(p *wizard.Payload) { p.PaymentMethod = "Cheque" }, nil, ErrInvalidPayment},
		{"date format", func(p *wizard.Payload) { p.Date = "16/10/2026" }, nil, ErrInvalidDate},
		{"past date", func(p *wizard.Payload) { p.Date = "2026-10-15" }, nil, ErrDateInPast},
		{"no services", func(p *wizard.Payload) { p.Services = nil }, nil, ErrNoServices},
		{"foreign service", func(p *wizard.Payload) { p.Services = []string{"svc9"} }, nil, ErrUnknownServices},
		{"duplicate service", func(p *wizard.Payload) { p.Services = []string{"svc1", "svc1"} }, nil, ErrUnknownServices},
		{"foreign barber", func(p *wizard.Payload) { p.Barber = ptr("b9") }, nil, ErrUnknownBarber},
		{"unknown time", func(p *wizard.Payload) { p.Time = "07:00" }, nil, ErrUnknownTime},
		{"blocked time", func(p *wizard.Payload) { p.Time = "13:00" }, nil, ErrSlotTaken},
		{"barber busy", func(p *wizard.Payload) {}, []domain.TakenSlot{{Time: "09:45", BarberID: ptr("b2")}}, ErrSlotTaken},
		{"shop full", func(p *wizard.Payload) { p.Barber = nil }, []domain.TakenSlot{{Time: "09:45"}, {Time: "09:45"}}, ErrSlotTaken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPayload()
			tc.mutate(&p)

			_, err := prepare(testCfg, shop, tc.taken, "user-1", p)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPage(t *testing.T) {
	s := &Service{cfg: testCfg}

	limit, offset, err := s.page(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	limit, _, err = s.page(500, 10)
	require.NoError(t, err)
	assert.Equal(t, 100, limit)

	_, _, err = s.page(-1, 0)
	assert.ErrorIs(t, err, ErrInvalidPagination)
}

func TestReuseSessionBooking(t *testing.T) {
	id := uuid.New()

	got, err := reuse(id, "user-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = reuse(id, "user-1", "user-2")
	assert.ErrorIs(t, err, ErrSessionBooked)
}

func TestCheckStatusChange(t *testing.T) {
	b := domain.Booking{UserID: "user-1", Status: domain.BookingPending}

	tests := []struct {
		name   string
		status domain.BookingStatus
		owner  string
		to     domain.BookingStatus
		want   error
	}{
		{"owner cancels pending", domain.BookingPending, "user-1", domain.BookingCancelled, nil},
		{"owner cancels confirmed", domain.BookingConfirmed, "user-1", domain.BookingCancelled, nil},
		{"staff confirms", domain.BookingPending, "", domain.BookingConfirmed, nil},
		{"staff completes", domain.BookingConfirmed, "", domain.BookingCompleted, nil},
		{"someone else", domain.BookingPending, "user-2", domain.BookingCancelled, ErrBookingNotFound},
		{"cancel twice", domain.BookingCancelled, "user-1", domain.BookingCancelled, ErrStatusTransition},
		{"reopen completed", domain.BookingCompleted, "", domain.BookingPending, ErrStatusTransition},
		{"revive cancelled", domain.BookingCancelled, "", domain.BookingConfirmed, ErrStatusTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.Status = tt.status
			err := checkStatusChange(b, tt.owner, tt.to)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestChangeStatusRejectsBadInput(t *testing.T) {
	svc := New(nil, nil, nil, nil, nil, testCfg)

	_, err := svc.Cancel(context.Background(), "user-1", "not-a-uuid")
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = svc.SetStatus(context.Background(), uuid.NewString(), domain.BookingStatus("Lost"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
