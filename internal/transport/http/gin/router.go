package httpgin

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/barberbook/internal/auth"
	"github.com/kirinyoku/barberbook/internal/domain"
	"github.com/kirinyoku/barberbook/internal/service"
	"github.com/kirinyoku/barberbook/internal/wizard"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	verifier *auth.Verifier,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Catalog
	r.GET("/shops", handleListShops(svcs, logger))
	r.GET("/shops/:id", handleGetShop(svcs))
	r.GET("/shops/:id/slots", handleShopSlots(svcs))
	r.GET("/shops/:id/reviews", handleListReviews(svcs))
	r.POST("/shops/:id/reviews", RequireAuth(verifier), handleCreateReview(svcs))

	// Booking wizard
	sessions := r.Group("/sessions")
	{
		sessions.POST("", handleStartSession(svcs))
		sessions.GET("/:id", handleGetSession(svcs))
		sessions.DELETE("/:id", handleDeleteSession(svcs))
		sessions.GET("/:id/slots", handleSessionSlots(svcs))

		sessions.POST("/:id/shop", handleSelectShop(svcs))
		sessions.POST("/:id/services/toggle", handleToggleService(svcs))
		sessions.POST("/:id/quick-book", handleQuickBook(svcs))
		sessions.POST("/:id/continue", handleSessionStep(svcs.Session.Continue))
		sessions.POST("/:id/barber", handleSelectBarber(svcs))
		sessions.POST("/:id/date", handleSelectDate(svcs))
		sessions.POST("/:id/month", handleShowMonth(svcs))
		sessions.POST("/:id/time", handleSelectTime(svcs))
		sessions.POST("/:id/advance", handleSessionStep(svcs.Session.Advance))
		sessions.POST("/:id/payment", handleSelectPayment(svcs))
		sessions.POST("/:id/back", handleSessionStep(svcs.Session.Back))
		sessions.POST("/:id/forward", handleSessionStep(svcs.Session.Forward))
		sessions.POST("/:id/reset", handleSessionStep(svcs.Session.Reset))
		sessions.POST("/:id/confirm", RequireAuth(verifier), handleConfirm(svcs))
	}

	bookings := r.Group("/bookings", RequireAuth(verifier))
	{
		bookings.GET("", handleListBookings(svcs))
		bookings.GET("/:id", handleGetBooking(svcs))
		bookings.POST("/:id/cancel", handleCancelBooking(svcs))
	}

	r.POST("/consultations", handleConsultation(svcs))

	admin := r.Group("/admin", RequireAuth(verifier), RequireAdmin(verifier))
	{
		admin.POST("/shops", handleCreateShop(svcs))
		admin.POST("/bookings/:id/status", handleSetBookingStatus(svcs))
	}

	return r
}

// --- Catalog ---

// @Summary  List barbershops
// @Success  200  {object}  ShopListResponse
// @Router   /shops [get]
func handleListShops(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		shops, err := svcs.Catalog.ListShops(c.Request.Context())
		if err != nil {
			logger.Error("failed to load shops", slog.Any("error", err))
			c.JSON(http.StatusOK, ShopListResponse{
				Shops: []domain.Shop{},
				Error: "failed to load barbershops",
			})
			return
		}
		writeJSONWithCache(c, http.StatusOK, ShopListResponse{Shops: shops}, "public, max-age=60", true)
	}
}

// @Summary  Get barbershop
// @Param    id  path  string  true  "Shop ID"
// @Success  200  {object}  domain.Shop
// @Failure  404  {object}  ErrorResponse
// @Router   /shops/{id} [get]
func handleGetShop(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop, err := svcs.Catalog.GetShop(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, shop, "public, max-age=60", true)
	}
}

// @Summary  Time slot grid for a day
// @Param    id      path   string  true   "Shop ID"
// @Param    date    query  string  true   "YYYY-MM-DD"
// @Param    barber  query  string  false  "Barber ID, empty for any"
// @Success  200  {object}  SlotsResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /shops/{id}/slots [get]
func handleShopSlots(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		day, err := wizard.ParseDate(c.Query("date"))
		if err != nil {
			badRequest(c, "date must be YYYY-MM-DD")
			return
		}

		barber := c.Query("barber")
		if barber == "any" {
			barber = ""
		}

		slots, err := svcs.Catalog.SlotsFor(c.Request.Context(), c.Param("id"), day, barber)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, SlotsResponse{Date: day.String(), Slots: slots}, "no-cache", true)
	}
}

// @Summary  Reviews of a barbershop, newest first
// @Param    id      path   string  true   "Shop ID"
// @Param    limit   query  int     false  "page size"
// @Param    offset  query  int     false  "offset"
// @Success  200  {array}   domain.Review
// @Failure  422  {object}  ErrorResponse
// @Router   /shops/{id}/reviews [get]
func handleListReviews(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseIntDefault(c.Query("limit"), 0)
		offset := parseIntDefault(c.Query("offset"), 0)

		list, err := svcs.Review.List(c.Request.Context(), c.Param("id"), limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary  Review a barbershop
// @Security BearerAuth
// @Param    id   path  string               true  "Shop ID"
// @Param    req  body  CreateReviewRequest  true  "rating 1 to 5"
// @Success  201  {object}  domain.Review
// @Failure  401  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  422  {object}  ErrorResponse
// @Router   /shops/{id}/reviews [post]
func handleCreateReview(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		rv, err := svcs.Review.Create(c.Request.Context(), c.GetString(ctxUserID), c.Param("id"), req.Rating, req.Comment)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, rv)
	}
}

// --- Booking wizard ---

// @Summary  Start a booking session
// @Success  201  {object}  SessionResponse
// @Router   /sessions [post]
func handleStartSession(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, st, err := svcs.Session.Start(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, newSessionResponse(id, st))
	}
}

// @Summary  Get a booking session
// @Param    id  path  string  true  "Session ID"
// @Success  200  {object}  SessionResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /sessions/{id} [get]
func handleGetSession(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		st, err := svcs.Session.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, newSessionResponse(id, st))
	}
}

// @Summary  Discard a booking session
// @Param    id  path  string  true  "Session ID"
// @Success  204
// @Failure  404  {object}  ErrorResponse
// @Router   /sessions/{id} [delete]
func handleDeleteSession(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Session.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Slot grid for the session's date and barber
// @Param    id  path  string  true  "Session ID"
// @Success  200  {array}   wizard.Slot
// @Failure  409  {object}  ErrorResponse "no date selected"
// @Router   /sessions/{id}/slots [get]
func handleSessionSlots(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		slots, err := svcs.Session.Slots(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, slots)
	}
}

// handleSessionStep serves the transitions that take no input: continue,
// advance, back, forward and reset.
//
// @Summary  Step transition
// @Param    id  path  string  true  "Session ID"
// @Success  200  {object}  SessionResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "not allowed at current step"
// @Router   /sessions/{id}/advance [post]
func handleSessionStep(step func(ctx context.Context, id string) (wizard.State, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		respondSession(c, id)(step(c.Request.Context(), id))
	}
}

// @Summary  Select a barbershop
// @Param    id   path  string             true  "Session ID"
// @Param    req  body  SelectShopRequest  true  "payload"
// @Success  200  {object}  SessionResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse
// @Router   /sessions/{id}/shop [post]
func handleSelectShop(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SelectShopRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		id := c.Param("id")
		respondSession(c, id)(svcs.Session.SelectShop(c.Request.Context(), id, req.ShopID))
	}
}

// @Summary  Toggle a service in the selection
// @Param    id   path  string          true  "Session ID"
// @Param    req  body  ServiceRequest  true  "payload"
// @Success  200  {object}  SessionResponse
// @Failure  409  {object}  ErrorResponse
// @Router   /sessions/{id}/services/toggle [post]
func handleToggleService(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ServiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		id := c.Param("id")
		respondSession(c, id)(svcs.Session.ToggleService(c.Request.Context(), id, req.ServiceID))
	}
}

// @Summary  Book a single service straight away
// @Param    id   path  string          true  "Session ID"
// @Param    req  body  ServiceRequest  true  "payload"
// @Success  200  {object}  SessionResponse
// @Failure  409  {object}  ErrorResponse
// @Router   /sessions/{id}/quick-book [post]
func handleQuickBook(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ServiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		id := c.Param("id")
		respondSession(c, id)(svcs.Session.QuickBook(c.Request.Context(), id, req.ServiceID))
	}
}

// @Summary  Choose a barber or any available one
// @Param    id   path  string         true  "Session ID"
// @Param    req  body  BarberRequest  true  "payload"
// @Success  200  {object}  SessionResponse
// @Failure  409  {object}  ErrorResponse
// @Router   /sessions/{id}/barber [post]
func handleSelectBarber(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BarberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		id := c.Param("id")
		respondSession(c, id)(svcs.Session.SelectBarber(c.Request.Context(), id, req.BarberID))
	}
}

// @Summary  Pick a day of the displayed month
// @Param    id   path  string       true  "Session ID"
// @Param    req  body  DateRequest  true  "payload"
// @Success  200  {object}  SessionResponse
// @Failure  409  {object}  ErrorResponse
// @Router   /sessions/{id}/date [post]
func handleSelectDate(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		id := c.Param("id")
		respondSession(c, id)(svcs.Session.SelectDate(c.Request.Context(), id, req.Day))
	}
}

// @Summary  Show the next or previous month
// @Param    id   path  string        true  "Session ID"
// @Param    req  body  MonthRequest  true  "direction 1 or -1"
// @Success  200  {object}  SessionResponse
// @Failure  409  {object}  ErrorResponse
// @Router   /sessions/{id}/month [post]
func handleShowMonth(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MonthRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		id := c.Param("id")
		respondSession(c, id)(svcs.Session.ShowMonth(c.Request.Context(), id, req.Direction))
	}
}

// @Summary  Pick a time slot
// @Param    id   path  string       true  "Session ID"
// @Param    req  body  TimeRequest  true  "payload"
// @Success  200  {object}  SessionResponse
// @Failure  409  {object}  ErrorResponse
// @Router   /sessions/{id}/time [post]
func handleSelectTime(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TimeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		id := c.Param("id")
		respondSession(c, id)(svcs.Session.SelectTime(c.Request.Context(), id, req.Time))
	}
}

// @Summary  Pick a payment method
// @Param    id   path  string          true  "Session ID"
// @Param    req  body  PaymentRequest  true  "pix, credit, debit, cash or a display label"
// @Success  200  {object}  SessionResponse
// @Failure  409  {object}  ErrorResponse
// @Router   /sessions/{id}/payment [post]
func handleSelectPayment(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		id := c.Param("id")
		method, ok := domain.ParsePaymentMethod(req.PaymentMethod)
		if !ok {
			// unknown values reach the wizard, which refuses them with 422
			method = domain.PaymentMethod(req.PaymentMethod)
		}
		respondSession(c, id)(svcs.Session.SelectPayment(c.Request.Context(), id, method))
	}
}

// @Summary  Confirm and submit the booking
// @Security BearerAuth
// @Param    id  path  string  true  "Session ID"
// @Success  200  {object}  SessionResponse
// @Failure  401  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "slot taken / confirmation in progress"
// @Failure  429  {object}  ErrorResponse "rate limited"
// @Failure  502  {object}  ErrorResponse "submission failed"
// @Router   /sessions/{id}/confirm [post]
func handleConfirm(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		userID := c.GetString(ctxUserID)
		respondSession(c, id)(svcs.Session.Confirm(c.Request.Context(), id, userID))
	}
}

// respondSession returns a sink for a session call's results.
func respondSession(c *gin.Context, id string) func(wizard.State, error) {
	return func(st wizard.State, err error) {
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, newSessionResponse(id, st))
	}
}

// --- Bookings ---

// @Summary  List my bookings
// @Security BearerAuth
// @Param    limit   query  int  false  "page size"
// @Param    offset  query  int  false  "offset"
// @Success  200  {array}   domain.Booking
// @Failure  401  {object}  ErrorResponse
// @Router   /bookings [get]
func handleListBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseIntDefault(c.Query("limit"), 0)
		offset := parseIntDefault(c.Query("offset"), 0)

		list, err := svcs.Booking.ListForUser(c.Request.Context(), c.GetString(ctxUserID), limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary  Get one of my bookings
// @Security BearerAuth
// @Param    id  path  string  true  "Booking ID"
// @Success  200  {object}  domain.Booking
// @Failure  404  {object}  ErrorResponse
// @Router   /bookings/{id} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := svcs.Booking.Get(c.Request.Context(), c.GetString(ctxUserID), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Cancel one of my bookings
// @Security BearerAuth
// @Param    id  path  string  true  "Booking ID"
// @Success  200  {object}  domain.Booking
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "already cancelled or completed"
// @Router   /bookings/{id}/cancel [post]
func handleCancelBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := svcs.Booking.Cancel(c.Request.Context(), c.GetString(ctxUserID), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// --- Style consultation ---

// @Summary  Ask for a haircut and beard suggestion
// @Param    req  body  ConsultationRequest  true  "payload"
// @Success  200  {object}  ConsultationResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  429  {object}  ErrorResponse "rate limited"
// @Router   /consultations [post]
func handleConsultation(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConsultationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		text, err := svcs.Consult.Recommend(c.Request.Context(), req.Description, c.ClientIP())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ConsultationResponse{Recommendation: text})
	}
}

// --- Admin ---

// @Summary  Create a barbershop with its services and barbers
// @Security BearerAuth
// @Param    req  body  CreateShopRequest  true  "payload"
// @Success  201  {object}  CreateShopResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  403  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse
// @Router   /admin/shops [post]
func handleCreateShop(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateShopRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		id, err := svcs.Admin.CreateShop(c.Request.Context(), req.toDomain())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateShopResponse{ShopID: id})
	}
}

// @Summary  Move a booking to another status
// @Security BearerAuth
// @Param    id   path  string                true  "Booking ID"
// @Param    req  body  BookingStatusRequest  true  "Confirmed, Cancelled or Completed"
// @Success  200  {object}  domain.Booking
// @Failure  403  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse
// @Failure  422  {object}  ErrorResponse
// @Router   /admin/bookings/{id}/status [post]
func handleSetBookingStatus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BookingStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		b, err := svcs.Booking.SetStatus(c.Request.Context(), c.Param("id"), domain.BookingStatus(req.Status))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// --- Helpers ---

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
