package booking

import (
	"context"
	"errors"
	"testing"

	"ctrlroom/database/repository/memstore"
	"ctrlroom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmBookingTransitionsOnce(t *testing.T) {
	f := newFixture(t)
	f.seed("b1", testClient, models.StatusPending, testDate, "10:00", "12:00")

	require.NoError(t, f.svc.ConfirmBooking(context.Background(), "b1", "pi_1"))
	b := f.booking(t, "b1")
	assert.Equal(t, models.StatusConfirmed, b.Status)
	assert.Equal(t, "pi_1", b.PaymentReference)
	require.NotNil(t, b.PaidAt)
	assert.True(t, b.PaidAt.Equal(testNow))

	// redelivery of the same payment
	require.NoError(t, f.svc.ConfirmBooking(context.Background(), "b1", "pi_1"))
	notified, _ := f.queue.Snapshot()
	assert.Equal(t, []string{"b1"}, notified)

	err := f.svc.ConfirmBooking(context.Background(), "b1", "pi_2")
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)
	assert.Equal(t, "pi_1", f.booking(t, "b1").PaymentReference)
}

func TestConfirmBookingRejects(t *testing.T) {
	f := newFixture(t)
	f.seed("gone", testClient, models.StatusCancelled, testDate, "10:00", "12:00")

	assert.ErrorIs(t, f.svc.ConfirmBooking(context.Background(), "missing", "pi_1"), ErrNotFound)
	assert.ErrorIs(t, f.svc.ConfirmBooking(context.Background(), "gone", "pi_1"), ErrBookingCancelled)
	assert.ErrorIs(t, f.svc.ConfirmBooking(context.Background(), "", "pi_1"), ErrInvalidRequest)
	assert.Equal(t, models.StatusCancelled, f.booking(t, "gone").Status)
}

func TestConfirmBookingSurvivesQueueFailure(t *testing.T) {
	f := newFixture(t)
	f.seed("b1", testClient, models.StatusPending, testDate, "10:00", "12:00")
	f.queue.Err = errors.New("redis down")

	require.NoError(t, f.svc.ConfirmBooking(context.Background(), "b1", "pi_1"))
	assert.Equal(t, models.StatusConfirmed, f.booking(t, "b1").Status)
}

func TestConfirmBookingStoreError(t *testing.T) {
	f := newFixture(t)
	f.seed("b1", testClient, models.StatusPending, testDate, "10:00", "12:00")
	f.store.Fail(memstore.OpBookingConfirm, errors.New("timeout"))

	assert.ErrorIs(t, f.svc.ConfirmBooking(context.Background(), "b1", "pi_1"), ErrStoreUnavailable)
	assert.Equal(t, models.StatusPending, f.booking(t, "b1").Status)
}
