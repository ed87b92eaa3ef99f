package tasks

import (
	"context"
	"sync"

	"ctrlroom/models"
)

// Recorder is an in-process Queue that keeps enqueued jobs in memory. It backs
// STORE_BACKEND=memory runs and tests.
type Recorder struct {
	mu         sync.Mutex
	Err        error // returned by every Enqueue call when set
	Notified   []string
	Reconciles []models.ReconcilePayload
}

func (r *Recorder) EnqueueBookingNotification(_ context.Context, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Notified = append(r.Notified, bookingID)
	return nil
}

func (r *Recorder) EnqueueReconcile(_ context.Context, p models.ReconcilePayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Reconciles = append(r.Reconciles, p)
	return nil
}

// Snapshot returns copies of what has been enqueued so far.
func (r *Recorder) Snapshot() ([]string, []models.ReconcilePayload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Notified...), append([]models.ReconcilePayload(nil), r.Reconciles...)
}
