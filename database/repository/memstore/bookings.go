package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"ctrlroom/database/repository"
	"ctrlroom/models"
)

// Bookings implements bookingRepo.BookingRepository.
type Bookings struct {
	s    *Store
	data map[string]models.Booking
}

func cloneBooking(b models.Booking) models.Booking {
	if b.PaidAt != nil {
		t := *b.PaidAt
		b.PaidAt = &t
	}
	if b.CancelledAt != nil {
		t := *b.CancelledAt
		b.CancelledAt = &t
	}
	return b
}

// Put stores a booking as-is, bypassing uniqueness checks. Test setup only.
func (r *Bookings) Put(b models.Booking) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.data[b.ID] = cloneBooking(b)
}

func (r *Bookings) Create(_ context.Context, b *models.Booking) error {
	if err := r.s.enter(OpBookingCreate); err != nil {
		return err
	}
	defer r.s.leave()

	if _, ok := r.data[b.ID]; ok {
		return fmt.Errorf("booking %s: %w", b.ID, repository.ErrDuplicate)
	}
	if b.IdempotencyKey != "" {
		for _, existing := range r.data {
			if existing.ClientID == b.ClientID && existing.IdempotencyKey == b.IdempotencyKey {
				return fmt.Errorf("booking %s: %w", b.ID, repository.ErrDuplicate)
			}
		}
	}
	r.data[b.ID] = cloneBooking(*b)
	return nil
}

func (r *Bookings) GetByID(_ context.Context, id string) (*models.Booking, error) {
	if err := r.s.enter(OpBookingGet); err != nil {
		return nil, err
	}
	defer r.s.leave()

	b, ok := r.data[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneBooking(b)
	return &out, nil
}

func (r *Bookings) GetByIdempotencyKey(_ context.Context, clientID, key string) (*models.Booking, error) {
	if err := r.s.enter(OpBookingGet); err != nil {
		return nil, err
	}
	defer r.s.leave()

	for _, b := range r.data {
		if b.ClientID == clientID && b.IdempotencyKey == key && key != "" {
			out := cloneBooking(b)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Bookings) collect(op string, keep func(models.Booking) bool, less func(a, b models.Booking) bool) ([]models.Booking, error) {
	if err := r.s.enter(op); err != nil {
		return nil, err
	}
	defer r.s.leave()

	out := []models.Booking{}
	for _, b := range r.data {
		if keep(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

func ascending(a, b models.Booking) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return a.Interval.Start < b.Interval.Start
}

func descending(a, b models.Booking) bool { return ascending(b, a) }

func (r *Bookings) ListActive(_ context.Context, engineerID, date string) ([]models.Booking, error) {
	return r.collect(OpBookingListAct, func(b models.Booking) bool {
		return b.EngineerID == engineerID && b.Date == date && b.Status != models.StatusCancelled
	}, ascending)
}

func (r *Bookings) ListByClient(_ context.Context, clientID string) ([]models.Booking, error) {
	return r.collect(OpBookingList, func(b models.Booking) bool { return b.ClientID == clientID }, descending)
}

func (r *Bookings) ListByEngineer(_ context.Context, engineerID string) ([]models.Booking, error) {
	return r.collect(OpBookingList, func(b models.Booking) bool { return b.EngineerID == engineerID }, descending)
}

func (r *Bookings) ListByDateRange(_ context.Context, from, to string) ([]models.Booking, error) {
	return r.collect(OpBookingList, func(b models.Booking) bool { return b.Date >= from && b.Date <= to }, ascending)
}

func (r *Bookings) ConfirmPending(_ context.Context, id, paymentRef string, paidAt time.Time) (bool, error) {
	if err := r.s.enter(OpBookingConfirm); err != nil {
		return false, err
	}
	defer r.s.leave()

	b, ok := r.data[id]
	if !ok || b.Status != models.StatusPending {
		return false, nil
	}
	b.Status = models.StatusConfirmed
	b.PaymentReference = paymentRef
	b.PaidAt = &paidAt
	b.UpdatedAt = paidAt
	r.data[id] = b
	return true, nil
}

func (r *Bookings) Cancel(_ context.Context, id, reason string, at time.Time, from ...models.BookingStatus) (bool, error) {
	if err := r.s.enter(OpBookingCancel); err != nil {
		return false, err
	}
	defer r.s.leave()

	b, ok := r.data[id]
	if !ok || !slices.Contains(from, b.Status) {
		return false, nil
	}
	b.Status = models.StatusCancelled
	b.CancelReason = reason
	b.CancelledAt = &at
	b.UpdatedAt = at
	r.data[id] = b
	return true, nil
}
