package availability

import (
	"math"
	"testing"

	"ctrlroom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iv(start, end string) models.TimeInterval { return models.MustInterval(start, end) }

func starts(slots []models.TimeInterval) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start.String())
	}
	return out
}

func TestOverlapsIsSymmetric(t *testing.T) {
	cases := []models.TimeInterval{
		iv("08:00", "10:00"),
		iv("09:00", "11:00"),
		iv("11:00", "13:00"),
		iv("14:00", "18:00"),
		iv("16:00", "17:00"),
		iv("00:00", "23:59"),
	}
	for _, a := range cases {
		assert.True(t, models.Overlaps(a, a), "interval overlaps itself: %s", a)
		for _, b := range cases {
			assert.Equal(t, models.Overlaps(a, b), models.Overlaps(b, a), "%s vs %s", a, b)
		}
	}
}

func TestBackToBackDoesNotOverlap(t *testing.T) {
	assert.False(t, models.Overlaps(iv("09:00", "11:00"), iv("11:00", "13:00")))
	assert.False(t, models.Overlaps(iv("11:00", "13:00"), iv("09:00", "11:00")))
	assert.True(t, IsAvailable(iv("11:00", "13:00"), []models.TimeInterval{iv("09:00", "11:00"), iv("13:00", "15:00")}))
}

func TestIsAvailableNestedBooking(t *testing.T) {
	booked := []models.TimeInterval{iv("16:00", "17:00")}
	assert.False(t, IsAvailable(iv("14:00", "18:00"), booked))
	assert.Equal(t, booked, Conflicts(iv("14:00", "18:00"), booked))
}

func TestIsAvailableEmpty(t *testing.T) {
	assert.True(t, IsAvailable(iv("10:00", "12:00"), nil))
	assert.Empty(t, Conflicts(iv("10:00", "12:00"), nil))
}

func TestConflictsKeepsInputOrder(t *testing.T) {
	booked := []models.TimeInterval{iv("12:00", "13:00"), iv("08:00", "09:00"), iv("09:30", "10:30")}
	got := Conflicts(iv("09:00", "12:30"), booked)
	assert.Equal(t, []models.TimeInterval{iv("12:00", "13:00"), iv("09:30", "10:30")}, got)
}

func TestFreeSlotsSkipsBookedGridSlot(t *testing.T) {
	slots, err := Snapshot(iv("08:00", "22:00"), []models.TimeInterval{iv("10:00", "12:00")}, 120, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "12:00", "14:00", "16:00", "18:00", "20:00"}, starts(slots))
}

func TestFreeSlotsDoesNotSnapToBookingEnd(t *testing.T) {
	// 10:00-11:30 blocks the 10:00 slot; the 12:00 slot is still offered but
	// the 11:30-13:30 gap is never produced.
	slots, err := Snapshot(iv("08:00", "16:00"), []models.TimeInterval{iv("10:00", "11:30")}, 120, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "12:00", "14:00"}, starts(slots))

	slots, err = Snapshot(iv("08:00", "16:00"), []models.TimeInterval{iv("09:00", "12:30")}, 120, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"14:00"}, starts(slots))
}

func TestFreeSlotsStopsAtEndOfHours(t *testing.T) {
	slots, err := Snapshot(iv("09:00", "14:00"), nil, 120, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "11:00"}, starts(slots))
	for _, s := range slots {
		assert.LessOrEqual(t, s.End, models.Minute(14*60))
	}
}

func TestFreeSlotsCustomStep(t *testing.T) {
	slots, err := Snapshot(iv("08:00", "12:00"), []models.TimeInterval{iv("08:00", "09:00")}, 120, 60)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00"}, starts(slots))
}

func TestFreeSlotsAscendingAndRestartable(t *testing.T) {
	seq := FreeSlots(iv("08:00", "20:00"), []models.TimeInterval{iv("12:00", "14:00")}, 60, 30)

	var first, second []models.TimeInterval
	for s := range seq {
		first = append(first, s)
	}
	for s := range seq {
		second = append(second, s)
	}
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].Start, first[i].Start)
	}
}

func TestFreeSlotsEarlyBreak(t *testing.T) {
	n := 0
	for range FreeSlots(iv("08:00", "22:00"), nil, 60, 0) {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestSnapshotRejectsBadParams(t *testing.T) {
	_, err := Snapshot(iv("08:00", "22:00"), nil, 0, 0)
	assert.ErrorIs(t, err, models.ErrInvalidInterval)

	_, err = Snapshot(models.TimeInterval{Start: 600, End: 600}, nil, 60, 0)
	assert.ErrorIs(t, err, models.ErrInvalidInterval)

	n := 0
	for range FreeSlots(iv("08:00", "22:00"), nil, -5, 0) {
		n++
	}
	assert.Zero(t, n)
}

func TestSnapshotRejectsSlotLongerThanHours(t *testing.T) {
	_, err := Snapshot(iv("08:00", "12:00"), nil, 300, 0)
	assert.ErrorIs(t, err, models.ErrInvalidInterval)

	n := 0
	for range FreeSlots(iv("08:00", "22:00"), nil, math.MaxInt-100, 0) {
		n++
	}
	assert.Zero(t, n)
}

func TestFreeSlotsHugeStepStops(t *testing.T) {
	var got []models.TimeInterval
	for s := range FreeSlots(iv("08:00", "22:00"), nil, 120, math.MaxInt-100) {
		got = append(got, s)
		if len(got) > 3 {
			break
		}
	}
	assert.Equal(t, []models.TimeInterval{iv("08:00", "10:00")}, got)
}

func TestFreeSlotsLastSlotEndsAtClose(t *testing.T) {
	slots, err := Snapshot(iv("08:00", "12:00"), nil, 120, 0)
	require.NoError(t, err)
	assert.Equal(t, []models.TimeInterval{iv("08:00", "10:00"), iv("10:00", "12:00")}, slots)
}

func TestSnapshotFullDay(t *testing.T) {
	slots, err := Snapshot(iv("10:00", "14:00"), []models.TimeInterval{iv("10:00", "14:00")}, 120, 0)
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestNextFree(t *testing.T) {
	s, ok := NextFree(iv("08:00", "22:00"), []models.TimeInterval{iv("08:00", "12:00")}, 120, 0)
	require.True(t, ok)
	assert.Equal(t, iv("12:00", "14:00"), s)

	_, ok = NextFree(iv("08:00", "10:00"), []models.TimeInterval{iv("09:00", "09:30")}, 120, 0)
	assert.False(t, ok)
}
