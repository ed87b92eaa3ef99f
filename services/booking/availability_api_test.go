package booking

import (
	"context"
	"testing"

	"ctrlroom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clocks(slots []models.TimeInterval) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start.String())
	}
	return out
}

func TestGetEngineerAvailability(t *testing.T) {
	f := newFixture(t)
	f.seed("b1", testClient, models.StatusConfirmed, testDate, "10:00", "12:00")
	f.seed("b2", testClient, models.StatusCancelled, testDate, "14:00", "16:00")

	snap, err := f.svc.GetEngineerAvailability(context.Background(), testEngineer, testDate, 0)
	require.NoError(t, err)
	assert.Equal(t, 120, snap.SlotMinutes)
	require.NotNil(t, snap.WorkingHours)
	assert.Equal(t, models.MustInterval("08:00", "22:00"), *snap.WorkingHours)
	assert.Equal(t, []string{"08:00", "12:00", "14:00", "16:00", "18:00", "20:00"}, clocks(snap.Slots))
	require.NotNil(t, snap.NextAvailable)
	assert.Equal(t, models.MustInterval("08:00", "10:00"), *snap.NextAvailable)

	snap, err = f.svc.GetEngineerAvailability(context.Background(), testEngineer, testDate, 4)
	require.NoError(t, err)
	assert.Equal(t, 240, snap.SlotMinutes)
	assert.Equal(t, []string{"12:00", "16:00"}, clocks(snap.Slots))
}

func TestGetEngineerAvailabilityDayOff(t *testing.T) {
	f := newFixture(t)

	snap, err := f.svc.GetEngineerAvailability(context.Background(), testEngineer, "2025-03-02", 0)
	require.NoError(t, err)
	assert.Nil(t, snap.WorkingHours)
	assert.NotNil(t, snap.Slots)
	assert.Empty(t, snap.Slots)
}

func TestGetEngineerAvailabilityNextAvailable(t *testing.T) {
	f := newFixture(t)
	f.seed("b1", testClient, models.StatusPending, testDate, "08:00", "12:00")

	snap, err := f.svc.GetEngineerAvailability(context.Background(), testEngineer, testDate, 0)
	require.NoError(t, err)
	require.NotNil(t, snap.NextAvailable)
	assert.Equal(t, models.MustInterval("12:00", "14:00"), *snap.NextAvailable)
	assert.Equal(t, snap.Slots[0], *snap.NextAvailable)
}

func TestGetEngineerAvailabilityShortDay(t *testing.T) {
	f := newFixture(t)
	eng, err := f.store.Engineers().GetByID(context.Background(), testEngineer)
	require.NoError(t, err)
	eng.WorkingHours.Overrides = map[string]models.TimeInterval{"saturday": models.MustInterval("10:00", "14:00")}
	require.NoError(t, f.store.Engineers().Update(context.Background(), eng))

	// 2025-03-08 is a Saturday; an 8h session cannot fit in 4h
	snap, err := f.svc.GetEngineerAvailability(context.Background(), testEngineer, "2025-03-08", 8)
	require.NoError(t, err)
	require.NotNil(t, snap.WorkingHours)
	assert.Empty(t, snap.Slots)
	assert.Nil(t, snap.NextAvailable)

	snap, err = f.svc.GetEngineerAvailability(context.Background(), testEngineer, "2025-03-08", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "12:00"}, clocks(snap.Slots))
}

func TestGetEngineerAvailabilityErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetEngineerAvailability(context.Background(), "nobody", testDate, 0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.GetEngineerAvailability(context.Background(), testEngineer, "tomorrow", 0)
	assert.ErrorIs(t, err, ErrInvalidInterval)
	_, err = f.svc.GetEngineerAvailability(context.Background(), testEngineer, testDate, 5)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	f.seed("b1", testClient, models.StatusPending, testDate, "10:00", "12:00")

	check := func(start string, hours int) bool {
		t.Helper()
		ok, err := f.svc.CheckAvailability(context.Background(), models.CheckAvailabilityRequest{
			EngineerID: testEngineer, Date: testDate, StartTime: start, DurationHours: hours,
		})
		require.NoError(t, err)
		return ok
	}
	assert.False(t, check("11:00", 2))
	assert.True(t, check("12:00", 2))
	assert.True(t, check("08:00", 2))
	assert.False(t, check("21:00", 2), "past closing")

	_, err := f.svc.CheckAvailability(context.Background(), models.CheckAvailabilityRequest{
		EngineerID: testEngineer, Date: testDate, StartTime: "23:00", DurationHours: 2,
	})
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestGetScheduleHidesOtherClients(t *testing.T) {
	f := newFixture(t)
	f.seed("mine", testClient, models.StatusPending, testDate, "10:00", "12:00")
	f.seed("theirs", "client-2", models.StatusPending, testDate, "14:00", "16:00")

	idx, err := f.svc.GetSchedule(as(testClient, models.RoleClient), testEngineer, testDate)
	require.NoError(t, err)
	require.Len(t, idx.Entries, 2)
	assert.Equal(t, testClient, idx.Entries[0].ClientID)
	assert.Empty(t, idx.Entries[1].ClientID)

	idx, err = f.svc.GetSchedule(as(testEngUser, models.RoleEngineer), testEngineer, testDate)
	require.NoError(t, err)
	assert.Equal(t, "client-2", idx.Entries[1].ClientID)

	_, err = f.svc.GetSchedule(context.Background(), testEngineer, testDate)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
