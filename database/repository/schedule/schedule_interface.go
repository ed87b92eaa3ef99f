package scheduleRepo

import (
	"context"

	"ctrlroom/models"
)

// ScheduleRepository manages the per-engineer, per-date schedule index.
type ScheduleRepository interface {
	// Get returns the index for (engineerID, date); a missing document is an
	// empty index, not an error.
	Get(ctx context.Context, engineerID, date string) (*models.ScheduleIndex, error)
	// Claim adds entry only when no overlapping entry of another booking is
	// present. It returns *repository.SlotTakenError when it loses, and nil
	// when the entry was already present.
	Claim(ctx context.Context, engineerID, date string, entry models.ScheduleEntry) error
	// Release removes the entry of bookingID; absent entries are a no-op.
	Release(ctx context.Context, engineerID, date, bookingID string) error
	// Replace overwrites the whole index, used by reconciliation.
	Replace(ctx context.Context, engineerID, date string, entries []models.ScheduleEntry) error
}
