package bookingRepo

import (
	"context"
	"time"

	"ctrlroom/models"
)

// BookingRepository defines booking data access. Bookings are the source of
// truth for availability.
type BookingRepository interface {
	// Create inserts a new booking. A second booking with the same client
	// idempotency key fails with repository.ErrDuplicate.
	Create(ctx context.Context, b *models.Booking) error
	// GetByID returns repository.ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// GetByIdempotencyKey looks up the booking a client created under key.
	GetByIdempotencyKey(ctx context.Context, clientID, key string) (*models.Booking, error)
	// ListActive returns the non-cancelled bookings for an engineer and date.
	ListActive(ctx context.Context, engineerID, date string) ([]models.Booking, error)
	// ListByClient and ListByEngineer return all bookings newest date first.
	ListByClient(ctx context.Context, clientID string) ([]models.Booking, error)
	ListByEngineer(ctx context.Context, engineerID string) ([]models.Booking, error)
	// ListByDateRange returns bookings with from <= date <= to, ascending.
	ListByDateRange(ctx context.Context, from, to string) ([]models.Booking, error)
	// ConfirmPending moves a pending booking to confirmed. It reports false
	// when no pending booking with that id exists.
	ConfirmPending(ctx context.Context, id, paymentRef string, paidAt time.Time) (bool, error)
	// Cancel moves a booking whose status is in from to cancelled. It reports
	// false when the booking is missing or in another status.
	Cancel(ctx context.Context, id, reason string, at time.Time, from ...models.BookingStatus) (bool, error)
}
