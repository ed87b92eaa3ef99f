package handlers

import (
	"context"
	"io"
	"net/http"

	"ctrlroom/metrics"
	"ctrlroom/services/payment"
	"ctrlroom/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBytes matches the limit Stripe documents for event payloads.
const maxWebhookBytes = 65536

// Confirmer performs the pending to confirmed transition.
type Confirmer interface {
	ConfirmBooking(ctx context.Context, bookingID, paymentReference string) error
}

// WebhookHandler is the only caller of ConfirmBooking.
type WebhookHandler struct {
	Verifier  payment.WebhookVerifier
	Events    payment.EventLog
	Confirmer Confirmer
}

// HandleStripeWebhook handles POST /api/stripe/webhook.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	logger := getLogger(c)

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes+1))
	if err != nil || len(payload) > maxWebhookBytes {
		metrics.IncWebhook("bad_request")
		utils.JSONError(c, http.StatusBadRequest, "Unreadable webhook body", "")
		return
	}

	evt, err := h.Verifier.VerifyEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		metrics.IncWebhook("invalid_signature")
		logger.Error("Webhook signature verification failed", zap.String("ip", c.ClientIP()), zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Invalid signature", "")
		return
	}
	logger = logger.With(zap.String("eventId", evt.ID), zap.String("type", evt.Type))

	ctx := c.Request.Context()
	if seen, err := h.Events.Processed(ctx, evt.ID); err != nil {
		// proceed: ConfirmBooking is idempotent, the marker only saves work
		logger.Warn("Event log unavailable", zap.Error(err))
	} else if seen {
		metrics.IncWebhook("duplicate")
		logger.Info("Duplicate webhook event ignored")
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
		return
	}

	if evt.Type != payment.EventPaymentSucceeded {
		metrics.IncWebhook("ignored")
		h.mark(ctx, logger, evt.ID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if evt.BookingID == "" {
		metrics.IncWebhook("ignored")
		logger.Warn("Payment succeeded without bookingId metadata", zap.String("paymentIntentId", evt.PaymentIntentID))
		h.mark(ctx, logger, evt.ID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := h.Confirmer.ConfirmBooking(ctx, evt.BookingID, evt.PaymentIntentID); err != nil {
		metrics.IncWebhook("failed")
		logger.Error("Payment could not be applied to booking",
			zap.String("bookingId", evt.BookingID),
			zap.String("paymentIntentId", evt.PaymentIntentID),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	metrics.IncWebhook("processed")
	h.mark(ctx, logger, evt.ID)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *WebhookHandler) mark(ctx context.Context, logger *zap.Logger, eventID string) {
	if err := h.Events.MarkProcessed(context.WithoutCancel(ctx), eventID); err != nil {
		logger.Warn("Failed to record processed event", zap.Error(err))
	}
}
