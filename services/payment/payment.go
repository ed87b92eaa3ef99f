package payment

import (
	"context"
	"errors"
)

var (
	// ErrGatewayUnavailable covers transport failures and gateway-side errors.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrInvalidSignature is returned for webhook payloads that fail verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// EventPaymentSucceeded is the only event type that confirms a booking.
const EventPaymentSucceeded = "payment_intent.succeeded"

// IntentParams describes one payment intent for a booking.
type IntentParams struct {
	BookingID      string
	EngineerID     string
	ClientID       string
	AmountMinor    int64 // smallest currency unit
	Currency       string
	IdempotencyKey string
}

// Intent is the gateway's view of a created payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	AmountMinor  int64
	Currency     string
}

// Event is a verified webhook notification.
type Event struct {
	ID              string
	Type            string
	PaymentIntentID string
	BookingID       string // from intent metadata; empty for unrelated events
}

// Gateway creates payment intents.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, p IntentParams) (*Intent, error)
}

// WebhookVerifier authenticates and decodes a raw webhook delivery.
type WebhookVerifier interface {
	VerifyEvent(payload []byte, signatureHeader string) (*Event, error)
}

// ToMinorUnits converts a major-unit amount to cents, rounding half up.
func ToMinorUnits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
