// Package repository holds what every entity repository shares: the error
// kinds returned at the store boundary and the per-call timeout.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ctrlroom/models"
)

// Timeout bounds every single store call.
const Timeout = 5 * time.Second

// IndexTimeout bounds index creation at startup.
const IndexTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate document")
	// ErrMalformedDocument is returned when a stored document fails validation
	// while being converted to its model type.
	ErrMalformedDocument = errors.New("malformed document")
)

// WithTimeout derives the per-call context used by every repository method.
func WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, Timeout)
}

// Malformed wraps a conversion failure for the given collection and id.
func Malformed(collection, id string, err error) error {
	return fmt.Errorf("%w: %s/%s: %v", ErrMalformedDocument, collection, id, err)
}

// SlotTakenError is returned by a schedule claim that lost to an overlapping
// entry already present in the index.
type SlotTakenError struct {
	EngineerID string
	Date       string
	Blocking   []models.ScheduleEntry
}

func (e *SlotTakenError) Error() string {
	ids := make([]string, 0, len(e.Blocking))
	for _, b := range e.Blocking {
		ids = append(ids, b.BookingID)
	}
	return fmt.Sprintf("slot taken for engineer %s on %s by [%s]", e.EngineerID, e.Date, strings.Join(ids, ","))
}

// BlockingEntries returns the overlapping entries for candidate within entries,
// ignoring the entry of bookingID itself.
func BlockingEntries(entries []models.ScheduleEntry, bookingID string, candidate models.TimeInterval) []models.ScheduleEntry {
	var out []models.ScheduleEntry
	for _, e := range entries {
		if e.BookingID == bookingID {
			continue
		}
		if models.Overlaps(e.Interval, candidate) {
			out = append(out, e)
		}
	}
	return out
}

// HasEntry reports whether bookingID is already present.
func HasEntry(entries []models.ScheduleEntry, bookingID string) bool {
	for _, e := range entries {
		if e.BookingID == bookingID {
			return true
		}
	}
	return false
}
