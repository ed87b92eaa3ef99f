package booking

import (
	"context"
	"fmt"

	"ctrlroom/models"
	"ctrlroom/services/availability"
)

const defaultSlotMinutes = 120

// GetEngineerAvailability lists the free slots of an engineer on date. With
// durationHours set the grid uses that length, otherwise the configured slot
// length. The result is computed from bookings on every call.
func (s *Service) GetEngineerAvailability(ctx context.Context, engineerID, date string, durationHours int) (*models.AvailabilitySnapshot, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}
	slot := models.Minute(s.policy.SlotMinutes)
	if slot <= 0 {
		slot = defaultSlotMinutes
	}
	if durationHours != 0 {
		if !s.policy.allows(durationHours) {
			return nil, fmt.Errorf("%w: duration %dh not in %v", ErrInvalidInterval, durationHours, s.policy.AllowedDurations)
		}
		slot = models.Minute(durationHours * 60)
	}

	engineer, err := s.engineers.GetByID(ctx, engineerID)
	if err != nil {
		return nil, storeErr("load engineer", err)
	}
	snap := &models.AvailabilitySnapshot{
		EngineerID:  engineerID,
		Date:        date,
		SlotMinutes: int(slot),
		Slots:       []models.TimeInterval{},
	}
	hours, open := engineer.WorkingHours.For(day)
	if !open {
		return snap, nil
	}
	snap.WorkingHours = &hours
	if slot > hours.Duration() {
		return snap, nil
	}

	active, err := s.bookings.ListActive(ctx, engineerID, date)
	if err != nil {
		return nil, storeErr("load bookings", err)
	}
	booked := intervalsOf(active)
	slots, err := availability.Snapshot(hours, booked, slot, slot)
	if err != nil {
		return nil, err
	}
	snap.Slots = slots
	if next, ok := availability.NextFree(hours, booked, slot, slot); ok {
		snap.NextAvailable = &next
	}
	return snap, nil
}

// CheckAvailability answers whether a booking request would currently pass
// the conflict check. It reserves nothing.
func (s *Service) CheckAvailability(ctx context.Context, req models.CheckAvailabilityRequest) (bool, error) {
	candidate, day, err := s.candidate(req.Date, req.StartTime, req.DurationHours)
	if err != nil {
		return false, err
	}
	engineer, err := s.engineers.GetByID(ctx, req.EngineerID)
	if err != nil {
		return false, storeErr("load engineer", err)
	}
	hours, open := engineer.WorkingHours.For(day)
	if !open || !hours.Contains(candidate) {
		return false, nil
	}
	active, err := s.bookings.ListActive(ctx, req.EngineerID, req.Date)
	if err != nil {
		return false, storeErr("load bookings", err)
	}
	return availability.IsAvailable(candidate, intervalsOf(active)), nil
}

// GetSchedule returns the engineer's schedule index for date. Client ids of
// other people's bookings are hidden unless the caller is an admin or the
// engineer.
func (s *Service) GetSchedule(ctx context.Context, engineerID, date string) (*models.ScheduleIndex, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.parseDate(date); err != nil {
		return nil, err
	}
	idx, err := s.schedules.Get(ctx, engineerID, date)
	if err != nil {
		return nil, storeErr("load schedule", err)
	}
	if p.IsAdmin() {
		return idx, nil
	}
	own, err := s.isEngineerOf(ctx, p, &models.Booking{EngineerID: engineerID})
	if err != nil {
		return nil, err
	}
	if !own {
		for i := range idx.Entries {
			if idx.Entries[i].ClientID != p.UserID {
				idx.Entries[i].ClientID = ""
			}
		}
	}
	return idx, nil
}
