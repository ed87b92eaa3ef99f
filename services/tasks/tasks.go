package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ctrlroom/models"

	"github.com/hibiken/asynq"
)

const (
	TypeBookingNotify     = "booking:notify"
	TypeScheduleReconcile = "schedule:reconcile"

	// MaxNotifyRetries bounds delivery attempts for confirmation pushes.
	MaxNotifyRetries = 5
)

// Queue is what services use to hand work to the background worker.
type Queue interface {
	EnqueueBookingNotification(ctx context.Context, bookingID string) error
	EnqueueReconcile(ctx context.Context, p models.ReconcilePayload) error
}

func NewBookingNotifyTask(bookingID string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(models.BookingNotifyPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingNotify, b)
	opts := []asynq.Option{
		asynq.MaxRetry(MaxNotifyRetries),
		asynq.Timeout(30 * time.Second),
		// one notification per booking even if confirm is redelivered
		asynq.TaskID("notify-" + bookingID),
	}
	return task, opts, nil
}

func NewReconcileTask(p models.ReconcilePayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeScheduleReconcile, b)
	opts := []asynq.Option{
		asynq.MaxRetry(10),
		asynq.ProcessIn(5 * time.Second),
		asynq.Unique(time.Minute),
	}
	return task, opts, nil
}

// AsynqQueue enqueues tasks on Redis through an asynq client.
type AsynqQueue struct {
	client *asynq.Client
}

func NewAsynqQueue(opt asynq.RedisClientOpt) *AsynqQueue {
	return &AsynqQueue{client: asynq.NewClient(opt)}
}

func (q *AsynqQueue) EnqueueBookingNotification(ctx context.Context, bookingID string) error {
	task, opts, err := NewBookingNotifyTask(bookingID)
	if err != nil {
		return err
	}
	if _, err := q.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("enqueue %s for booking %s: %w", TypeBookingNotify, bookingID, err)
	}
	return nil
}

func (q *AsynqQueue) EnqueueReconcile(ctx context.Context, p models.ReconcilePayload) error {
	task, opts, err := NewReconcileTask(p)
	if err != nil {
		return err
	}
	if _, err := q.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return nil
		}
		return fmt.Errorf("enqueue %s for %s/%s: %w", TypeScheduleReconcile, p.EngineerID, p.Date, err)
	}
	return nil
}

func (q *AsynqQueue) Close() error {
	return q.client.Close()
}
