package memstore

import (
	"context"
	"slices"
	"sort"
	"time"

	"ctrlroom/database/repository"
	"ctrlroom/models"
)

// Schedules implements scheduleRepo.ScheduleRepository.
type Schedules struct {
	s       *Store
	data    map[string][]models.ScheduleEntry
	updated map[string]time.Time
}

func (r *Schedules) Get(_ context.Context, engineerID, date string) (*models.ScheduleIndex, error) {
	if err := r.s.enter(OpScheduleGet); err != nil {
		return nil, err
	}
	defer r.s.leave()

	entries := slices.Clone(r.data[models.ScheduleKey(engineerID, date)])
	if entries == nil {
		entries = []models.ScheduleEntry{}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Interval.Start < entries[j].Interval.Start })
	return &models.ScheduleIndex{
		EngineerID: engineerID,
		Date:       date,
		Entries:    entries,
		UpdatedAt:  r.updated[models.ScheduleKey(engineerID, date)],
	}, nil
}

func (r *Schedules) Claim(_ context.Context, engineerID, date string, entry models.ScheduleEntry) error {
	if err := r.s.enter(OpScheduleClaim); err != nil {
		return err
	}
	defer r.s.leave()

	key := models.ScheduleKey(engineerID, date)
	entries := r.data[key]
	if repository.HasEntry(entries, entry.BookingID) {
		return nil
	}
	if blocking := repository.BlockingEntries(entries, entry.BookingID, entry.Interval); len(blocking) > 0 {
		return &repository.SlotTakenError{EngineerID: engineerID, Date: date, Blocking: blocking}
	}
	r.data[key] = append(slices.Clone(entries), entry)
	r.touch(key)
	return nil
}

func (r *Schedules) Release(_ context.Context, engineerID, date, bookingID string) error {
	if err := r.s.enter(OpScheduleRelease); err != nil {
		return err
	}
	defer r.s.leave()

	key := models.ScheduleKey(engineerID, date)
	r.data[key] = slices.DeleteFunc(slices.Clone(r.data[key]), func(e models.ScheduleEntry) bool {
		return e.BookingID == bookingID
	})
	r.touch(key)
	return nil
}

func (r *Schedules) Replace(_ context.Context, engineerID, date string, entries []models.ScheduleEntry) error {
	if err := r.s.enter(OpScheduleReplace); err != nil {
		return err
	}
	defer r.s.leave()

	key := models.ScheduleKey(engineerID, date)
	r.data[key] = slices.Clone(entries)
	r.touch(key)
	return nil
}

// Put seeds an index entry directly, bypassing the overlap check. Test setup only.
func (r *Schedules) Put(engineerID, date string, entry models.ScheduleEntry) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := models.ScheduleKey(engineerID, date)
	r.data[key] = append(r.data[key], entry)
	r.touch(key)
}

func (r *Schedules) touch(key string) {
	if r.updated == nil {
		r.updated = make(map[string]time.Time)
	}
	r.updated[key] = time.Now().UTC()
}
