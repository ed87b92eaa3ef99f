package booking

import (
	"context"
	"errors"
	"fmt"

	"ctrlroom/database/repository"
	"ctrlroom/metrics"
	"ctrlroom/models"
	"ctrlroom/services/availability"

	"go.uber.org/zap"
)

const (
	ReasonSlotConflict    = "slot_conflict"
	ReasonCancelledByUser = "cancelled_by_client"
	ReasonCancelledAdmin  = "cancelled_by_admin"
)

// CreateBooking re-checks availability against a fresh read, stores a pending
// booking and then claims its interval in the engineer's schedule index with a
// conditional write. Of two concurrent overlapping requests at most one ends
// up pending; the other is cancelled and reported as a conflict.
//
// The whole call is safe to retry. With an IdempotencyKey, a retry resumes the
// booking created by the first attempt instead of storing a second one.
func (s *Service) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error) {
	logger := s.logger.With(
		zap.String("engineerID", req.EngineerID),
		zap.String("clientID", req.ClientID),
		zap.String("date", req.Date),
		zap.String("start", req.StartTime),
	)

	// Step 1: Validate input, no I/O yet
	if req.ClientID == "" {
		return nil, ErrUnauthenticated
	}
	if req.EngineerID == "" {
		return nil, fmt.Errorf("%w: engineerId is required", ErrInvalidRequest)
	}
	candidate, day, err := s.candidate(req.Date, req.StartTime, req.DurationHours)
	if err != nil {
		metrics.IncBookingCreated("invalid")
		return nil, err
	}

	// Step 2: Resume an earlier attempt with the same idempotency key
	if req.IdempotencyKey != "" {
		existing, err := s.bookings.GetByIdempotencyKey(ctx, req.ClientID, req.IdempotencyKey)
		switch {
		case err == nil:
			logger.Info("Resuming booking for idempotency key", zap.String("bookingID", existing.ID))
			return s.resume(ctx, existing, req, candidate)
		case !errors.Is(err, repository.ErrNotFound):
			return nil, storeErr("lookup idempotency key", err)
		}
	}

	// Step 3: Engineer and working hours
	engineer, err := s.engineers.GetByID(ctx, req.EngineerID)
	if err != nil {
		return nil, storeErr("load engineer", err)
	}
	hours, open := engineer.WorkingHours.For(day)
	if !open || !hours.Contains(candidate) {
		metrics.IncBookingCreated("conflict")
		return nil, &ConflictError{Reason: "outside working hours"}
	}

	// Step 4: Fresh availability check against authoritative bookings
	active, err := s.bookings.ListActive(ctx, req.EngineerID, req.Date)
	if err != nil {
		return nil, storeErr("load bookings", err)
	}
	if conflicts := availability.Conflicts(candidate, intervalsOf(active)); len(conflicts) > 0 {
		logger.Info("Requested interval overlaps existing bookings", zap.Int("conflicts", len(conflicts)))
		metrics.IncBookingCreated("conflict")
		return nil, &ConflictError{Reason: "overlaps existing booking", Conflicts: conflicts}
	}

	// Step 5: Price and persist as pending
	quote, err := s.quote(ctx, engineer, req.DurationHours)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	b := &models.Booking{
		ID:             s.newID(),
		EngineerID:     engineer.ID,
		ClientID:       req.ClientID,
		Date:           req.Date,
		Interval:       candidate,
		DurationHours:  req.DurationHours,
		Status:         models.StatusPending,
		TotalAmount:    quote.Total,
		Currency:       quote.Currency,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicate) && req.IdempotencyKey != "" {
			// a concurrent retry with the same key won the insert
			existing, getErr := s.bookings.GetByIdempotencyKey(ctx, req.ClientID, req.IdempotencyKey)
			if getErr != nil {
				return nil, storeErr("lookup idempotency key", getErr)
			}
			return s.resume(ctx, existing, req, candidate)
		}
		return nil, storeErr("create booking", err)
	}
	logger.Info("Pending booking stored", zap.String("bookingID", b.ID), zap.Float64("total", b.TotalAmount))

	// Step 6: Claim the interval in the schedule index
	return s.claim(ctx, b, logger)
}

// resume continues a booking created by an earlier attempt with the same key.
func (s *Service) resume(ctx context.Context, b *models.Booking, req models.CreateBookingRequest, candidate models.TimeInterval) (*models.Booking, error) {
	if b.EngineerID != req.EngineerID || b.Date != req.Date || b.Interval != candidate {
		return nil, fmt.Errorf("%w: idempotency key already used for a different booking", ErrInvalidRequest)
	}
	switch b.Status {
	case models.StatusConfirmed:
		return b, nil
	case models.StatusCancelled:
		metrics.IncBookingCreated("conflict")
		return nil, &ConflictError{Reason: "booking for this key was cancelled (" + b.CancelReason + ")"}
	}
	return s.claim(ctx, b, s.logger.With(zap.String("bookingID", b.ID)))
}

// claim adds the booking to the schedule index. A lost claim is first checked
// for stale entries (cancelled or missing bookings), which are released before
// one more attempt.
func (s *Service) claim(ctx context.Context, b *models.Booking, logger *zap.Logger) (*models.Booking, error) {
	entry := models.ScheduleEntry{BookingID: b.ID, ClientID: b.ClientID, Interval: b.Interval}

	for attempt := 0; ; attempt++ {
		err := s.schedules.Claim(ctx, b.EngineerID, b.Date, entry)
		if err == nil {
			metrics.IncBookingCreated("pending")
			return b, nil
		}

		var taken *repository.SlotTakenError
		if !errors.As(err, &taken) {
			logger.Error("Schedule index update failed after booking insert", zap.String("bookingID", b.ID), zap.Error(err))
			return nil, s.inconsistent(ctx, b, err)
		}

		if attempt == 0 {
			repaired, verr := s.releaseStale(ctx, b, taken.Blocking, logger)
			if verr != nil {
				logger.Error("Could not verify blocking index entries", zap.String("bookingID", b.ID), zap.Error(verr))
				return nil, s.abandon(ctx, b, verr, logger)
			}
			if repaired {
				continue
			}
		}

		conflicts := make([]models.TimeInterval, 0, len(taken.Blocking))
		for _, e := range taken.Blocking {
			conflicts = append(conflicts, e.Interval)
		}
		logger.Info("Lost schedule claim to a concurrent booking", zap.String("bookingID", b.ID), zap.Int("blocking", len(conflicts)))
		if err := s.abandon(ctx, b, nil, logger); err != nil {
			return nil, err
		}
		metrics.IncBookingCreated("conflict")
		return nil, &ConflictError{Reason: "slot taken concurrently", Conflicts: conflicts}
	}
}

// releaseStale removes index entries whose booking is cancelled or gone. It
// reports true only when every blocking entry was stale.
func (s *Service) releaseStale(ctx context.Context, b *models.Booking, blocking []models.ScheduleEntry, logger *zap.Logger) (bool, error) {
	if len(blocking) == 0 {
		return false, nil
	}
	for _, e := range blocking {
		other, err := s.bookings.GetByID(ctx, e.BookingID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case err != nil:
			return false, err
		case other.Active():
			return false, nil
		}
	}
	for _, e := range blocking {
		if err := s.schedules.Release(ctx, b.EngineerID, b.Date, e.BookingID); err != nil {
			return false, err
		}
		logger.Warn("Released stale schedule entry", zap.String("staleBookingID", e.BookingID))
		metrics.IncScheduleRepair("stale_entry")
	}
	return true, nil
}

// abandon cancels a pending booking that could not claim its interval. cause
// is nil for a genuine conflict and carries the I/O error otherwise.
func (s *Service) abandon(ctx context.Context, b *models.Booking, cause error, logger *zap.Logger) error {
	_, err := s.bookings.Cancel(ctx, b.ID, ReasonSlotConflict, s.now().UTC(), models.StatusPending)
	if err != nil {
		logger.Error("Failed to cancel booking that lost its claim", zap.String("bookingID", b.ID), zap.Error(err))
		return s.inconsistent(ctx, b, err)
	}
	if cause != nil {
		return storeErr("verify schedule index", cause)
	}
	return nil
}

// inconsistent queues a reconcile for the booking's engineer-day and returns
// the error reported to the caller.
func (s *Service) inconsistent(ctx context.Context, b *models.Booking, cause error) error {
	metrics.IncBookingCreated("inconsistent")
	s.enqueueReconcile(ctx, b)
	return &InconsistencyError{BookingID: b.ID, EngineerID: b.EngineerID, Date: b.Date, Err: cause}
}

func (s *Service) enqueueReconcile(ctx context.Context, b *models.Booking) {
	if s.queue == nil {
		return
	}
	p := models.ReconcilePayload{EngineerID: b.EngineerID, Date: b.Date, BookingID: b.ID}
	if err := s.queue.EnqueueReconcile(context.WithoutCancel(ctx), p); err != nil {
		s.logger.Error("Failed to enqueue schedule reconcile",
			zap.String("bookingID", b.ID),
			zap.String("engineerID", b.EngineerID),
			zap.String("date", b.Date),
			zap.Error(err),
		)
	}
}
