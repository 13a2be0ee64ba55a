package httpgin

import (
	"github.com/kirinyoku/barberbook/internal/domain"
	"github.com/kirinyoku/barberbook/internal/wizard"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionResponse is the stored state plus values derived from it.
type SessionResponse struct {
	ID         string        `json:"id"`
	State      wizard.State  `json:"state"`
	TotalCents int64         `json:"total_cents"`
	Total      string        `json:"total"`
	CanAdvance bool          `json:"can_advance"`
	Steps      []wizard.Step `json:"steps"`
	StepIndex  int           `json:"step_index"`
}

func newSessionResponse(id string, st wizard.State) SessionResponse {
	return SessionResponse{
		ID:         id,
		State:      st,
		TotalCents: wizard.Total(st),
		Total:      wizard.FormattedTotal(st),
		CanAdvance: wizard.CanAdvanceFromDateTime(st),
		Steps:      wizard.Steps,
		StepIndex:  st.Step.Index(),
	}
}

type ShopListResponse struct {
	Shops []domain.Shop `json:"shops"`
	Error string        `json:"error,omitempty"`
}

type SlotsResponse struct {
	Date  string        `json:"date"`
	Slots []wizard.Slot `json:"slots"`
}

type SelectShopRequest struct {
	ShopID string `json:"shop_id" binding:"required"`
}

type ServiceRequest struct {
	ServiceID string `json:"service_id" binding:"required"`
}

// BarberRequest takes an empty id or "any" for any available barber.
type BarberRequest struct {
	BarberID string `json:"barber_id"`
}

type DateRequest struct {
	Day int `json:"day" binding:"required,min=1,max=31"`
}

type MonthRequest struct {
	Direction int `json:"direction" binding:"required,oneof=1 -1"`
}

type TimeRequest struct {
	Time string `json:"time" binding:"required"`
}

type PaymentRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

type BookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

type ConsultationRequest struct {
	Description string `json:"description" binding:"required"`
}

type ConsultationResponse struct {
	Recommendation string `json:"recommendation"`
}

type CreateShopRequest struct {
	Name                  string         `json:"name" binding:"required"`
	Address               string         `json:"address"`
	Rating                float64        `json:"rating" binding:"gte=0,lte=5"`
	ReviewsCount          string         `json:"reviews_count"`
	Image                 string         `json:"image"`
	Logo                  string         `json:"logo"`
	Status                string         `json:"status"`
	OpeningHours          string         `json:"opening_hours"`
	Phone                 string         `json:"phone"`
	Tags                  []string       `json:"tags"`
	MainServicePriceCents int64          `json:"main_service_price_cents"`
	MainServiceName       string         `json:"main_service_name"`
	Services              []ServiceInput `json:"services" binding:"required,min=1,dive"`
	Barbers               []BarberInput  `json:"barbers" binding:"required,min=1,dive"`
}

type ServiceInput struct {
	Name          string `json:"name" binding:"required"`
	PriceCents    int64  `json:"price_cents" binding:"gte=0"`
	DurationMin   int    `json:"duration_min" binding:"required,gt=0"`
	Description   string `json:"description"`
	Category      string `json:"category" binding:"required"`
	DiscountCents *int64 `json:"discount_cents"`
}

type BarberInput struct {
	Name   string `json:"name" binding:"required"`
	Avatar string `json:"avatar"`
}

func (r CreateShopRequest) toDomain() domain.Shop {
	shop := domain.Shop{
		Name:                  r.Name,
		Address:               r.Address,
		Rating:                r.Rating,
		ReviewsCount:          r.ReviewsCount,
		Image:                 r.Image,
		Logo:                  r.Logo,
		Status:                domain.ShopStatus(r.Status),
		OpeningHours:          r.OpeningHours,
		Phone:                 r.Phone,
		Tags:                  r.Tags,
		MainServicePriceCents: r.MainServicePriceCents,
		MainServiceName:       r.MainServiceName,
	}

	for _, s := range r.Services {
		shop.Services = append(shop.Services, domain.Service{
			Name:          s.Name,
			PriceCents:    s.PriceCents,
			DurationMin:   s.DurationMin,
			Description:   s.Description,
			Category:      domain.Category(s.Category),
			DiscountCents: s.DiscountCents,
		})
	}

	for _, b := range r.Barbers {
		shop.Barbers = append(shop.Barbers, domain.Barber{Name: b.Name, Avatar: b.Avatar})
	}

	return shop
}

type CreateShopResponse struct {
	ShopID string `json:"shop_id"`
}
