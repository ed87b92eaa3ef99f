package booking

import (
	"context"
	"fmt"

	"ctrlroom/metrics"
	"ctrlroom/models"

	"go.uber.org/zap"
)

// ConfirmBooking moves a pending booking to confirmed once its payment has
// been verified by the gateway webhook. Redelivery of the same payment is a
// no-op; a different payment for an already confirmed booking is rejected.
func (s *Service) ConfirmBooking(ctx context.Context, bookingID, paymentReference string) error {
	logger := s.logger.With(zap.String("bookingID", bookingID), zap.String("paymentReference", paymentReference))
	if bookingID == "" || paymentReference == "" {
		metrics.IncBookingConfirmed("invalid")
		return fmt.Errorf("%w: booking id and payment reference are required", ErrInvalidRequest)
	}

	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.bookings.ConfirmPending(ctx, bookingID, paymentReference, s.now().UTC())
		if err != nil {
			logger.Error("Failed to confirm booking", zap.Error(err))
			metrics.IncBookingConfirmed("error")
			return storeErr("confirm booking", err)
		}
		if ok {
			logger.Info("Booking confirmed")
			metrics.IncBookingConfirmed("confirmed")
			s.notify(ctx, bookingID, logger)
			return nil
		}

		// Nothing pending under that id, find out why.
		b, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			logger.Error("Payment received for unknown booking", zap.Error(err))
			metrics.IncBookingConfirmed("not_found")
			return storeErr("load booking", err)
		}
		switch b.Status {
		case models.StatusConfirmed:
			if b.PaymentReference == paymentReference {
				logger.Info("Duplicate payment confirmation ignored")
				metrics.IncBookingConfirmed("duplicate")
				return nil
			}
			logger.Error("Booking already confirmed by another payment", zap.String("existingReference", b.PaymentReference))
			metrics.IncBookingConfirmed("already_confirmed")
			return ErrAlreadyConfirmed
		case models.StatusCancelled:
			logger.Error("Payment received for cancelled booking", zap.String("cancelReason", b.CancelReason))
			metrics.IncBookingConfirmed("cancelled")
			return ErrBookingCancelled
		}
		// still pending: the conditional update raced with a write, try once more
	}
	metrics.IncBookingConfirmed("error")
	return fmt.Errorf("confirm booking %s: %w: status kept changing", bookingID, ErrStoreUnavailable)
}

func (s *Service) notify(ctx context.Context, bookingID string, logger *zap.Logger) {
	if s.queue == nil {
		return
	}
	if err := s.queue.EnqueueBookingNotification(context.WithoutCancel(ctx), bookingID); err != nil {
		logger.Error("Failed to enqueue booking notification", zap.Error(err))
	}
}
