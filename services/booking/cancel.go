package booking

import (
	"context"
	"errors"
	"fmt"

	"ctrlroom/database/repository"
	"ctrlroom/metrics"
	"ctrlroom/models"
	"ctrlroom/services/auth"

	"go.uber.org/zap"
)

func principal(ctx context.Context) (auth.Principal, error) {
	p, ok := auth.FromContext(ctx)
	if !ok {
		return auth.Principal{}, ErrUnauthenticated
	}
	return p, nil
}

// isEngineerOf reports whether the caller's account is the booked engineer.
func (s *Service) isEngineerOf(ctx context.Context, p auth.Principal, b *models.Booking) (bool, error) {
	if p.Role != models.RoleEngineer {
		return false, nil
	}
	e, err := s.engineers.GetByUserID(ctx, p.UserID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	case err != nil:
		return false, storeErr("load engineer", err)
	}
	return e.ID == b.EngineerID, nil
}

// GetBooking returns a booking to its client, its engineer or an admin.
func (s *Service) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeErr("load booking", err)
	}
	if p.IsAdmin() || b.ClientID == p.UserID {
		return b, nil
	}
	ok, err := s.isEngineerOf(ctx, p, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return b, nil
}

// CancelBooking cancels a booking on behalf of its client or an admin. Only
// admins may cancel a confirmed booking. The schedule index entry is released
// afterwards; if that fails a reconcile is queued and the cancel still stands.
func (s *Service) CancelBooking(ctx context.Context, bookingID, reason string) (*models.Booking, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeErr("load booking", err)
	}
	if !p.IsAdmin() && b.ClientID != p.UserID {
		return nil, ErrForbidden
	}

	from := []models.BookingStatus{models.StatusPending}
	if reason == "" {
		reason = ReasonCancelledByUser
	}
	if p.IsAdmin() {
		from = append(from, models.StatusConfirmed)
		if reason == ReasonCancelledByUser {
			reason = ReasonCancelledAdmin
		}
	}

	switch b.Status {
	case models.StatusCancelled:
		return nil, ErrBookingCancelled
	case models.StatusConfirmed:
		if !p.IsAdmin() {
			return nil, fmt.Errorf("%w: confirmed bookings can only be cancelled by the studio", ErrForbidden)
		}
	}

	at := s.now().UTC()
	ok, err := s.bookings.Cancel(ctx, bookingID, reason, at, from...)
	if err != nil {
		return nil, storeErr("cancel booking", err)
	}
	if !ok {
		// status changed between the read and the conditional update
		current, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return nil, storeErr("load booking", err)
		}
		if current.Status == models.StatusCancelled {
			return nil, ErrBookingCancelled
		}
		return nil, fmt.Errorf("%w: booking became %s, only the studio can cancel it now", ErrForbidden, current.Status)
	}

	logger := s.logger.With(zap.String("bookingID", bookingID), zap.String("by", p.UserID), zap.String("reason", reason))
	logger.Info("Booking cancelled")
	metrics.IncBookingCancelled()

	if err := s.schedules.Release(ctx, b.EngineerID, b.Date, b.ID); err != nil {
		logger.Warn("Failed to release schedule entry, queueing reconcile", zap.Error(err))
		s.enqueueReconcile(ctx, b)
	}

	b.Status = models.StatusCancelled
	b.CancelReason = reason
	b.CancelledAt = &at
	b.UpdatedAt = at
	return b, nil
}
