package routes

import (
	"ctrlroom/handlers"
	"ctrlroom/middleware"
	"ctrlroom/models"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers the booking lifecycle endpoints. The
// webhook sits outside auth; its signature is the credential.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/stripe/webhook", hb.Webhooks.HandleStripeWebhook)

	bookings := r.Group("/api/bookings")
	{
		bookings.Use(middleware.AuthMiddleware(hb.Verifier))
		bookings.POST("", middleware.RequireRole(models.RoleClient, models.RoleAdmin), hb.Bookings.CreateBooking)
		bookings.GET("/:id", hb.Bookings.GetBooking)
		bookings.POST("/:id/cancel", hb.Bookings.CancelBooking)
		bookings.POST("/:id/payment-intent", hb.Bookings.CreatePaymentIntent)
	}

	sessions := r.Group("/api/sessions")
	{
		sessions.Use(middleware.AuthMiddleware(hb.Verifier))
		sessions.GET("", hb.Bookings.ListSessions)
	}
}
