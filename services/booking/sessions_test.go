package booking

import (
	"context"
	"testing"

	"ctrlroom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(bookings []models.Booking) []string {
	out := make([]string, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ID)
	}
	return out
}

func TestListSessionsTabs(t *testing.T) {
	f := newFixture(t)
	f.seed("next-week", testClient, models.StatusPending, "2025-03-10", "10:00", "12:00")
	f.seed("monday", testClient, models.StatusConfirmed, testDate, "14:00", "16:00")
	f.seed("done", testClient, models.StatusConfirmed, "2025-02-20", "10:00", "12:00")
	f.seed("done-earlier", testClient, models.StatusConfirmed, "2025-02-10", "10:00", "12:00")
	f.seed("unpaid-past", testClient, models.StatusPending, "2025-02-21", "10:00", "12:00")
	f.seed("dropped", testClient, models.StatusCancelled, testDate, "10:00", "12:00")
	f.seed("someone-else", "client-2", models.StatusPending, testDate, "18:00", "20:00")

	ctx := as(testClient, models.RoleClient)

	upcoming, err := f.svc.ListSessions(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"monday", "next-week"}, ids(upcoming))

	completed, err := f.svc.ListSessions(ctx, TabCompleted)
	require.NoError(t, err)
	assert.Equal(t, []string{"done", "done-earlier"}, ids(completed))

	cancelled, err := f.svc.ListSessions(ctx, TabCancelled)
	require.NoError(t, err)
	assert.Equal(t, []string{"dropped"}, ids(cancelled))

	_, err = f.svc.ListSessions(ctx, "archived")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestListSessionsForEngineer(t *testing.T) {
	f := newFixture(t)
	f.seed("a", testClient, models.StatusPending, testDate, "10:00", "12:00")
	f.seed("b", "client-2", models.StatusConfirmed, testDate, "14:00", "16:00")

	got, err := f.svc.ListSessions(as(testEngUser, models.RoleEngineer), TabUpcoming)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got))

	_, err = f.svc.ListSessions(as("u-unknown", models.RoleEngineer), TabUpcoming)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.ListSessions(context.Background(), TabUpcoming)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
