package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "whsec_test"

// signPayload builds a Stripe-Signature header value for payload.
func signPayload(t *testing.T, secret string, payload []byte) string {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func succeededEvent(bookingID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_123", "object": "payment_intent", "metadata": {"bookingId": %q}}}
	}`, bookingID))
}

func TestVerifyEventSucceeded(t *testing.T) {
	v := NewStripeVerifier(testSecret, zap.NewNop())
	payload := succeededEvent("b-1")

	evt, err := v.VerifyEvent(payload, signPayload(t, testSecret, payload))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", evt.ID)
	assert.Equal(t, EventPaymentSucceeded, evt.Type)
	assert.Equal(t, "pi_123", evt.PaymentIntentID)
	assert.Equal(t, "b-1", evt.BookingID)
}

func TestVerifyEventRejectsBadSignature(t *testing.T) {
	v := NewStripeVerifier(testSecret, zap.NewNop())
	payload := succeededEvent("b-1")

	_, err := v.VerifyEvent(payload, signPayload(t, "whsec_other", payload))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = v.VerifyEvent(payload, "")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	tampered := succeededEvent("b-2")
	_, err = v.VerifyEvent(tampered, signPayload(t, testSecret, payload))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyEventOtherTypes(t *testing.T) {
	v := NewStripeVerifier(testSecret, zap.NewNop())
	payload := []byte(`{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge"}}}`)

	evt, err := v.VerifyEvent(payload, signPayload(t, testSecret, payload))
	require.NoError(t, err)
	assert.Equal(t, "charge.refunded", evt.Type)
	assert.Empty(t, evt.BookingID)
}

func TestVerifierWithoutSecretRejects(t *testing.T) {
	v := NewStripeVerifier("", zap.NewNop())
	payload := succeededEvent("b-1")
	_, err := v.VerifyEvent(payload, signPayload(t, "", payload))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(25000), ToMinorUnits(250))
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
}
