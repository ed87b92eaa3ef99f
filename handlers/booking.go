package handlers

import (
	"context"
	"net/http"
	"strconv"

	"ctrlroom/models"
	"ctrlroom/services/auth"
	"ctrlroom/services/booking"
	"ctrlroom/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingAPI is the booking service surface used over HTTP.
type BookingAPI interface {
	CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, reason string) (*models.Booking, error)
	CreatePaymentIntent(ctx context.Context, bookingID string) (*models.PaymentIntentResponse, error)
	ListSessions(ctx context.Context, tab string) ([]models.Booking, error)

	GetEngineerAvailability(ctx context.Context, engineerID, date string, durationHours int) (*models.AvailabilitySnapshot, error)
	CheckAvailability(ctx context.Context, req models.CheckAvailabilityRequest) (bool, error)
	GetSchedule(ctx context.Context, engineerID, date string) (*models.ScheduleIndex, error)
}

var _ BookingAPI = (*booking.Service)(nil)

type BookingHandler struct {
	Bookings BookingAPI
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, _ := auth.FromContext(c.Request.Context())
	req.ClientID = p.UserID
	if key := c.GetHeader("Idempotency-Key"); key != "" && req.IdempotencyKey == "" {
		req.IdempotencyKey = key
	}

	b, err := h.Bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("Booking created", zap.String("bookingId", b.ID), zap.String("engineerId", b.EngineerID))
	c.JSON(http.StatusCreated, b)
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBooking handles POST /api/bookings/:id/cancel. The body is optional.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var req models.CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}
	b, err := h.Bookings.CancelBooking(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CreatePaymentIntent handles POST /api/bookings/:id/payment-intent.
func (h *BookingHandler) CreatePaymentIntent(c *gin.Context) {
	resp, err := h.Bookings.CreatePaymentIntent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListSessions handles GET /api/sessions?tab=.
func (h *BookingHandler) ListSessions(c *gin.Context) {
	list, err := h.Bookings.ListSessions(c.Request.Context(), c.Query("tab"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": list})
}

// GetAvailability handles GET /api/engineers/:id/availability?date=&duration=.
func (h *BookingHandler) GetAvailability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "date is required", "")
		return
	}
	hours := 0
	if d := c.Query("duration"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "duration must be whole hours", err.Error())
			return
		}
		hours = n
	}

	snap, err := h.Bookings.GetEngineerAvailability(c.Request.Context(), c.Param("id"), date, hours)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// CheckAvailability handles POST /api/engineers/:id/availability/check.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	var req models.CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.EngineerID = c.Param("id")

	ok, err := h.Bookings.CheckAvailability(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": ok})
}

// GetSchedule handles GET /api/engineers/:id/schedule?date=.
func (h *BookingHandler) GetSchedule(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "date is required", "")
		return
	}
	idx, err := h.Bookings.GetSchedule(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, idx)
}
