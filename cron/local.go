package cron

import (
	"context"
	"sync"

	"ctrlroom/models"
	"ctrlroom/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// LocalQueue runs tasks in process through the same ServeMux the worker
// uses, once and without retries. It backs STORE_BACKEND=memory.
type LocalQueue struct {
	mu     sync.RWMutex
	mux    *asynq.ServeMux
	wg     sync.WaitGroup
	logger *zap.Logger
}

func NewLocalQueue(logger *zap.Logger) *LocalQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalQueue{logger: logger}
}

// Handle sets the mux tasks are dispatched to. Tasks enqueued before it is
// set are dropped.
func (q *LocalQueue) Handle(mux *asynq.ServeMux) {
	q.mu.Lock()
	q.mux = mux
	q.mu.Unlock()
}

func (q *LocalQueue) EnqueueBookingNotification(ctx context.Context, bookingID string) error {
	task, _, err := tasks.NewBookingNotifyTask(bookingID)
	if err != nil {
		return err
	}
	q.run(ctx, task)
	return nil
}

func (q *LocalQueue) EnqueueReconcile(ctx context.Context, p models.ReconcilePayload) error {
	task, _, err := tasks.NewReconcileTask(p)
	if err != nil {
		return err
	}
	q.run(ctx, task)
	return nil
}

func (q *LocalQueue) run(ctx context.Context, task *asynq.Task) {
	q.mu.RLock()
	mux := q.mux
	q.mu.RUnlock()
	if mux == nil {
		q.logger.Warn("No task handler registered, dropping task", zap.String("type", task.Type()))
		return
	}
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := mux.ProcessTask(context.WithoutCancel(ctx), task); err != nil {
			q.logger.Warn("Local task failed", zap.String("type", task.Type()), zap.Error(err))
		}
	}()
}

// Wait blocks until every dispatched task has finished.
func (q *LocalQueue) Wait() {
	q.wg.Wait()
}
