package booking

import (
	"context"
	"fmt"

	"ctrlroom/models"
	"ctrlroom/services/payment"

	"go.uber.org/zap"
)

// CreatePaymentIntent opens a gateway payment for a pending booking owned by
// the caller. The gateway idempotency key is derived from the booking id, so
// repeated calls return the same intent.
func (s *Service) CreatePaymentIntent(ctx context.Context, bookingID string) (*models.PaymentIntentResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if s.gateway == nil {
		return nil, fmt.Errorf("%w: no payment gateway configured", ErrGatewayUnavailable)
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeErr("load booking", err)
	}
	if b.ClientID != p.UserID {
		return nil, ErrForbidden
	}
	switch b.Status {
	case models.StatusCancelled:
		return nil, ErrBookingCancelled
	case models.StatusConfirmed:
		return nil, fmt.Errorf("%w: booking is already paid", ErrConflict)
	}

	currency := b.Currency
	if currency == "" {
		currency = s.policy.Currency
	}
	intent, err := s.gateway.CreatePaymentIntent(ctx, payment.IntentParams{
		BookingID:      b.ID,
		EngineerID:     b.EngineerID,
		ClientID:       b.ClientID,
		AmountMinor:    payment.ToMinorUnits(b.TotalAmount),
		Currency:       currency,
		IdempotencyKey: "booking-" + b.ID,
	})
	if err != nil {
		s.logger.Error("Failed to create payment intent", zap.String("bookingID", b.ID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Payment intent created", zap.String("bookingID", b.ID), zap.String("paymentIntentID", intent.ID))

	return &models.PaymentIntentResponse{
		BookingID:       b.ID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          b.TotalAmount,
		Currency:        currency,
	}, nil
}
