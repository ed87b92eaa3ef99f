package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"ctrlroom/database/repository/memstore"
	"ctrlroom/models"
	"ctrlroom/services/auth"
	"ctrlroom/services/payment"
	"ctrlroom/services/tasks"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Saturday morning; bookings in the tests are on Monday 2025-03-03.
var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

const (
	testDate     = "2025-03-03"
	testEngineer = "eng-1"
	testEngUser  = "u-eng"
	testClient   = "client-1"
)

type fixture struct {
	store   *memstore.Store
	queue   *tasks.Recorder
	gateway *fakeGateway
	svc     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   memstore.New(),
		queue:   &tasks.Recorder{},
		gateway: &fakeGateway{},
	}
	err := f.store.Engineers().Create(context.Background(), &models.Engineer{
		ID:     testEngineer,
		UserID: testEngUser,
		Name:   "Sam",
		WorkingHours: models.WorkingHours{
			Default: models.MustInterval("08:00", "22:00"),
			DaysOff: []string{"sunday"},
		},
	})
	if err != nil {
		t.Fatalf("seed engineer: %v", err)
	}

	var mu sync.Mutex
	seq := 0
	f.svc = NewService(Deps{
		Bookings:  f.store.Bookings(),
		Engineers: f.store.Engineers(),
		Schedules: f.store.Schedules(),
		Studio:    f.store.Studio(),
		Queue:     f.queue,
		Gateway:   f.gateway,
		Policy: Policy{
			StudioHourlyRate:    75,
			DefaultEngineerRate: 50,
			AllowedDurations:    []int{2, 3, 4, 6, 8},
			SlotMinutes:         120,
			Currency:            "usd",
		},
		Now: func() time.Time { return testNow },
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("bk-%d", seq)
		},
	})
	return f
}

func as(userID string, role models.Role) context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{UserID: userID, Role: role})
}

func request(start string, hours int) models.CreateBookingRequest {
	return models.CreateBookingRequest{
		EngineerID:    testEngineer,
		ClientID:      testClient,
		Date:          testDate,
		StartTime:     start,
		DurationHours: hours,
	}
}

// seed stores a booking and, when it is active, its schedule entry.
func (f *fixture) seed(id, client string, status models.BookingStatus, date, start, end string) models.Booking {
	b := models.Booking{
		ID:          id,
		EngineerID:  testEngineer,
		ClientID:    client,
		Date:        date,
		Interval:    models.MustInterval(start, end),
		Status:      status,
		TotalAmount: 250,
		Currency:    "usd",
		CreatedAt:   testNow.Add(-time.Hour),
	}
	f.store.Bookings().Put(b)
	if b.Active() {
		f.store.Schedules().Put(testEngineer, date, models.ScheduleEntry{BookingID: id, ClientID: client, Interval: b.Interval})
	}
	return b
}

func (f *fixture) booking(t *testing.T, id string) *models.Booking {
	t.Helper()
	b, err := f.store.Bookings().GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load booking %s: %v", id, err)
	}
	return b
}

func (f *fixture) entries(t *testing.T, date string) []string {
	t.Helper()
	idx, err := f.store.Schedules().Get(context.Background(), testEngineer, date)
	if err != nil {
		t.Fatalf("load schedule: %v", err)
	}
	ids := make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		ids = append(ids, e.BookingID)
	}
	return ids
}

type fakeGateway struct {
	mu     sync.Mutex
	err    error
	params []payment.IntentParams
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, p payment.IntentParams) (*payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.params = append(g.params, p)
	return &payment.Intent{
		ID:           "pi_" + p.BookingID,
		ClientSecret: "pi_" + p.BookingID + "_secret",
		AmountMinor:  p.AmountMinor,
		Currency:     p.Currency,
	}, nil
}
