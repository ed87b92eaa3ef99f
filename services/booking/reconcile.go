package booking

import (
	"context"
	"sort"

	"ctrlroom/metrics"
	"ctrlroom/models"
	"ctrlroom/services/availability"

	"go.uber.org/zap"
)

// ReconcileResult summarises one schedule rebuild.
type ReconcileResult struct {
	Kept      []string `json:"kept"`
	Cancelled []string `json:"cancelled"`
	Overlaps  []string `json:"overlaps"` // confirmed bookings that overlap a kept one
}

// ReconcileSchedule rebuilds the schedule index of one engineer-day from the
// bookings. Confirmed bookings win over pending ones and bookings already in
// the index win over those that are not. A pending booking that overlaps a
// kept one is cancelled with reason slot_conflict.
func (s *Service) ReconcileSchedule(ctx context.Context, engineerID, date string) (*ReconcileResult, error) {
	logger := s.logger.With(zap.String("engineerID", engineerID), zap.String("date", date))

	active, err := s.bookings.ListActive(ctx, engineerID, date)
	if err != nil {
		return nil, storeErr("load bookings", err)
	}
	idx, err := s.schedules.Get(ctx, engineerID, date)
	if err != nil {
		return nil, storeErr("load schedule", err)
	}
	indexed := make(map[string]bool, len(idx.Entries))
	for _, e := range idx.Entries {
		indexed[e.BookingID] = true
	}

	sort.SliceStable(active, func(i, j int) bool {
		a, b := active[i], active[j]
		ac, bc := a.Status == models.StatusConfirmed, b.Status == models.StatusConfirmed
		if ac != bc {
			return ac
		}
		if indexed[a.ID] != indexed[b.ID] {
			return indexed[a.ID]
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	res := &ReconcileResult{Kept: []string{}, Cancelled: []string{}, Overlaps: []string{}}
	var kept []models.TimeInterval
	entries := make([]models.ScheduleEntry, 0, len(active))
	for _, b := range active {
		if availability.IsAvailable(b.Interval, kept) {
			kept = append(kept, b.Interval)
			entries = append(entries, models.ScheduleEntry{BookingID: b.ID, ClientID: b.ClientID, Interval: b.Interval})
			res.Kept = append(res.Kept, b.ID)
			continue
		}
		if b.Status == models.StatusConfirmed {
			// paid bookings are never cancelled automatically
			logger.Error("Confirmed booking overlaps another booking", zap.String("bookingID", b.ID), zap.Stringer("interval", b.Interval))
			metrics.IncScheduleRepair("confirmed_overlap")
			res.Overlaps = append(res.Overlaps, b.ID)
			continue
		}
		ok, err := s.bookings.Cancel(ctx, b.ID, ReasonSlotConflict, s.now().UTC(), models.StatusPending)
		if err != nil {
			return nil, storeErr("cancel overlapping booking", err)
		}
		if ok {
			logger.Warn("Cancelled overlapping pending booking", zap.String("bookingID", b.ID))
			metrics.IncScheduleRepair("cancelled_overlap")
			res.Cancelled = append(res.Cancelled, b.ID)
		}
	}

	if err := s.schedules.Replace(ctx, engineerID, date, entries); err != nil {
		return nil, storeErr("replace schedule", err)
	}
	metrics.IncScheduleRepair("reconcile")
	logger.Info("Schedule reconciled", zap.Int("kept", len(res.Kept)), zap.Int("cancelled", len(res.Cancelled)))
	return res, nil
}
