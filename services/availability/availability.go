// Package availability holds the pure interval logic behind booking: conflict
// checks and fixed-grid slot partitioning. Nothing here performs I/O.
package availability

import (
	"fmt"
	"iter"

	"ctrlroom/models"
)

// IsAvailable reports whether candidate overlaps none of booked. Callers pass
// only non-cancelled intervals for the same engineer and date.
func IsAvailable(candidate models.TimeInterval, booked []models.TimeInterval) bool {
	for _, b := range booked {
		if models.Overlaps(candidate, b) {
			return false
		}
	}
	return true
}

// Conflicts returns the booked intervals that overlap candidate, in input order.
func Conflicts(candidate models.TimeInterval, booked []models.TimeInterval) []models.TimeInterval {
	var out []models.TimeInterval
	for _, b := range booked {
		if models.Overlaps(candidate, b) {
			out = append(out, b)
		}
	}
	return out
}

// ValidateSlotParams checks the working window and slot length before any
// partitioning. A slot longer than the window is rejected. A non-positive
// step is allowed and means "step = slotLength".
func ValidateSlotParams(hours models.TimeInterval, slotLength models.Minute) error {
	if err := hours.Validate(); err != nil {
		return err
	}
	if slotLength <= 0 {
		return fmt.Errorf("%w: slot length %d must be positive", models.ErrInvalidInterval, slotLength)
	}
	if slotLength > hours.Duration() {
		return fmt.Errorf("%w: slot length %d exceeds working window %s", models.ErrInvalidInterval, slotLength, hours)
	}
	return nil
}

// FreeSlots yields every free [t, t+slotLength) inside hours, starting at
// hours.Start and advancing by step. Slots are ascending by start and are not
// snapped to booking ends, so a booking ending off-grid blocks the whole grid
// slot it touches. The sequence is finite and can be ranged over repeatedly.
// Invalid parameters yield nothing; use ValidateSlotParams to get the reason.
func FreeSlots(hours models.TimeInterval, booked []models.TimeInterval, slotLength, step models.Minute) iter.Seq[models.TimeInterval] {
	if step <= 0 {
		step = slotLength
	}
	return func(yield func(models.TimeInterval) bool) {
		if ValidateSlotParams(hours, slotLength) != nil {
			return
		}
		last := hours.End - slotLength
		for t := hours.Start; t <= last; t += step {
			candidate := models.TimeInterval{Start: t, End: t + slotLength}
			if IsAvailable(candidate, booked) && !yield(candidate) {
				return
			}
			if step > last-t {
				return
			}
		}
	}
}

// Snapshot collects FreeSlots into a slice.
func Snapshot(hours models.TimeInterval, booked []models.TimeInterval, slotLength, step models.Minute) ([]models.TimeInterval, error) {
	if err := ValidateSlotParams(hours, slotLength); err != nil {
		return nil, err
	}
	slots := []models.TimeInterval{}
	for s := range FreeSlots(hours, booked, slotLength, step) {
		slots = append(slots, s)
	}
	return slots, nil
}

// NextFree returns the earliest free slot, or false when the day is full.
func NextFree(hours models.TimeInterval, booked []models.TimeInterval, slotLength, step models.Minute) (models.TimeInterval, bool) {
	for s := range FreeSlots(hours, booked, slotLength, step) {
		return s, true
	}
	return models.TimeInterval{}, false
}
