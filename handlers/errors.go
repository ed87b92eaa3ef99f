package handlers

import (
	"errors"
	"net/http"

	"ctrlroom/models"
	"ctrlroom/services/booking"
	"ctrlroom/services/engineer"
	"ctrlroom/services/files"
	"ctrlroom/services/payment"
	"ctrlroom/services/report"
	"ctrlroom/services/storage"
	"ctrlroom/services/studio"
	"ctrlroom/services/user"
	"ctrlroom/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInterval),
		errors.Is(err, booking.ErrInvalidRequest),
		errors.Is(err, engineer.ErrInvalidEngineer),
		errors.Is(err, studio.ErrInvalidSettings),
		errors.Is(err, studio.ErrInvalidResource),
		errors.Is(err, files.ErrInvalidUpload),
		errors.Is(err, report.ErrInvalidRange),
		errors.Is(err, user.ErrWeakPassword):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrUnauthenticated),
		errors.Is(err, files.ErrUnauthenticated),
		errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, booking.ErrForbidden),
		errors.Is(err, files.ErrForbidden),
		errors.Is(err, user.ErrLocalAuthDisabled):
		return http.StatusForbidden
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, engineer.ErrNotFound),
		errors.Is(err, studio.ErrNotFound),
		errors.Is(err, files.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrConflict),
		errors.Is(err, booking.ErrAlreadyConfirmed),
		errors.Is(err, booking.ErrBookingCancelled),
		errors.Is(err, engineer.ErrUserLinked),
		errors.Is(err, user.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, booking.ErrStoreUnavailable),
		errors.Is(err, payment.ErrGatewayUnavailable),
		errors.Is(err, engineer.ErrStoreUnavailable),
		errors.Is(err, studio.ErrStoreUnavailable),
		errors.Is(err, files.ErrStoreUnavailable),
		errors.Is(err, storage.ErrStorageUnavailable),
		errors.Is(err, user.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Conflicts carry the
// blocking intervals so the client can pick another slot.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)

	var conflict *booking.ConflictError
	if errors.As(err, &conflict) {
		getLogger(c).Info("Request conflicted", zap.String("reason", conflict.Reason))
		c.AbortWithStatusJSON(status, gin.H{
			"message":   "Requested time is not available",
			"details":   conflict.Reason,
			"conflicts": conflict.Conflicts,
		})
		return
	}
	var inconsistent *booking.InconsistencyError
	if errors.As(err, &inconsistent) {
		getLogger(c).Error("Booking stored without schedule entry", zap.String("bookingId", inconsistent.BookingID), zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{
			"message":   "Booking could not be finalised, please retry",
			"bookingId": inconsistent.BookingID,
		})
		return
	}

	if status >= http.StatusInternalServerError {
		getLogger(c).Error("Request failed", zap.Int("status", status), zap.Error(err))
		utils.JSONError(c, status, http.StatusText(status), "")
		return
	}
	utils.JSONError(c, status, err.Error(), "")
}

func bindError(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
}
