package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ctrlroom/database/repository/memstore"
	"ctrlroom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	token, title string
	data         map[string]string
}

type fakeDispatcher struct {
	mu   sync.Mutex
	err  error
	sent []sent
}

func (d *fakeDispatcher) Send(_ context.Context, token, title, _ string, data map[string]string) error {
	if token == "" {
		return ErrNoDevice
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, sent{token: token, title: title, data: data})
	return nil
}

func seed(t *testing.T, status models.BookingStatus, engUser string) *memstore.Store {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()
	require.NoError(t, st.Engineers().Create(ctx, &models.Engineer{ID: "eng-1", UserID: engUser, Name: "Sam"}))
	require.NoError(t, st.Users().Create(ctx, &models.User{ID: "client-1", Email: "c@example.com", FCMToken: "tok-client"}))
	require.NoError(t, st.Users().Create(ctx, &models.User{ID: "u-eng", Email: "e@example.com", FCMToken: "tok-eng"}))
	st.Bookings().Put(models.Booking{ID: "b1", ClientID: "client-1", EngineerID: "eng-1", Date: "2025-03-03",
		Interval: models.MustInterval("10:00", "12:00"), Status: status})
	return st
}

func TestNotifyConfirmedSendsBoth(t *testing.T) {
	st := seed(t, models.StatusConfirmed, "u-eng")
	d := &fakeDispatcher{}
	n := NewBookingNotifier(st.Bookings(), st.Engineers(), st.Users(), d, nil)

	require.NoError(t, n.NotifyConfirmed(context.Background(), "b1"))
	require.Len(t, d.sent, 2)
	assert.Equal(t, "tok-client", d.sent[0].token)
	assert.Equal(t, "client", d.sent[0].data["role"])
	assert.Equal(t, "tok-eng", d.sent[1].token)
	assert.Equal(t, "engineer", d.sent[1].data["role"])
	assert.Equal(t, "b1", d.sent[1].data["bookingId"])
}

func TestNotifySkipsMissingDevice(t *testing.T) {
	st := seed(t, models.StatusConfirmed, "")
	require.NoError(t, st.Users().SetFCMToken(context.Background(), "client-1", ""))
	d := &fakeDispatcher{}
	n := NewBookingNotifier(st.Bookings(), st.Engineers(), st.Users(), d, nil)

	require.NoError(t, n.NotifyConfirmed(context.Background(), "b1"))
	assert.Empty(t, d.sent)
}

func TestNotifyErrors(t *testing.T) {
	ctx := context.Background()

	st := seed(t, models.StatusPending, "u-eng")
	n := NewBookingNotifier(st.Bookings(), st.Engineers(), st.Users(), &fakeDispatcher{}, nil)
	assert.ErrorIs(t, n.NotifyConfirmed(ctx, "b1"), ErrBookingGone)
	assert.ErrorIs(t, n.NotifyConfirmed(ctx, "missing"), ErrBookingGone)

	st = seed(t, models.StatusConfirmed, "u-eng")
	boom := errors.New("fcm down")
	n = NewBookingNotifier(st.Bookings(), st.Engineers(), st.Users(), &fakeDispatcher{err: boom}, nil)
	assert.ErrorIs(t, n.NotifyConfirmed(ctx, "b1"), boom)
}

func TestLogDispatcher(t *testing.T) {
	assert.ErrorIs(t, LogDispatcher{}.Send(context.Background(), "", "t", "b", nil), ErrNoDevice)
	assert.NoError(t, LogDispatcher{}.Send(context.Background(), "tok", "t", "b", nil))
}
