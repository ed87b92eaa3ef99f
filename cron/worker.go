package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ctrlroom/models"
	"ctrlroom/services/booking"
	"ctrlroom/services/notification"
	"ctrlroom/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Notifier announces a confirmed booking.
type Notifier interface {
	NotifyConfirmed(ctx context.Context, bookingID string) error
}

// Reconciler rebuilds one engineer-day schedule index.
type Reconciler interface {
	ReconcileSchedule(ctx context.Context, engineerID, date string) (*booking.ReconcileResult, error)
}

// Worker runs the asynq server that processes booking notifications and
// schedule repairs.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	redis  *redis.Client
	logger *zap.Logger
	stop   context.CancelFunc
	done   chan struct{}
}

func NewWorker(opt asynq.RedisClientOpt, notifier Notifier, reconciler Reconciler, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"default": 1,
		},
		RetryDelayFunc: RetryDelay,
		Logger:         logger.Sugar(),
	})
	return &Worker{
		srv:    srv,
		mux:    NewServeMux(notifier, reconciler, logger),
		redis:  redis.NewClient(&redis.Options{Addr: opt.Addr, Password: opt.Password, DB: opt.DB}),
		logger: logger,
	}
}

// NewServeMux routes task types to their handlers.
func NewServeMux(notifier Notifier, reconciler Reconciler, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingNotify, handleBookingNotify(notifier, logger))
	mux.HandleFunc(tasks.TypeScheduleReconcile, handleReconcile(reconciler, logger))
	return mux
}

// RetryDelay backs off exponentially from 2s, capped at ten minutes.
func RetryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n > 8 {
		n = 8
	}
	d := time.Duration(1<<uint(n)) * 2 * time.Second
	if d > 10*time.Minute {
		d = 10 * time.Minute
	}
	return d
}

// Start launches the server, retrying with backoff while Redis is unreachable.
func (w *Worker) Start() error {
	const maxAttempts = 5
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = w.srv.Start(w.mux); err == nil {
			break
		}
		w.logger.Warn("Failed to start worker", zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(time.Duration(attempt*2) * time.Second)
	}
	if err != nil {
		return fmt.Errorf("start worker after %d attempts: %w", maxAttempts, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.stop = cancel
	w.done = make(chan struct{})
	go func() {
		defer close(w.done)
		monitorRedisConnection(ctx, w.redis, w.logger)
	}()
	w.logger.Info("Worker started")
	return nil
}

// Shutdown waits for in-flight tasks and stops the Redis monitor.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
	if w.stop != nil {
		w.stop()
		<-w.done
	}
	w.redis.Close()
}

func handleBookingNotify(n Notifier, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.BookingNotifyPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid notify payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		err := n.NotifyConfirmed(ctx, p.BookingID)
		if errors.Is(err, notification.ErrBookingGone) {
			logger.Warn("Dropping notification", zap.String("bookingId", p.BookingID), zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err != nil {
			logger.Error("Booking notification failed", zap.String("bookingId", p.BookingID), zap.Error(err))
		}
		return err
	}
}

func handleReconcile(r Reconciler, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReconcilePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil || p.EngineerID == "" || p.Date == "" {
			logger.Error("Invalid reconcile payload", zap.ByteString("payload", task.Payload()), zap.Error(err))
			return fmt.Errorf("invalid reconcile payload: %w", asynq.SkipRetry)
		}
		res, err := r.ReconcileSchedule(ctx, p.EngineerID, p.Date)
		if err != nil {
			logger.Error("Schedule reconcile failed", zap.String("engineerId", p.EngineerID), zap.String("date", p.Date), zap.Error(err))
			return err
		}
		logger.Info("Schedule reconciled",
			zap.String("engineerId", p.EngineerID),
			zap.String("date", p.Date),
			zap.String("trigger", p.BookingID),
			zap.Int("kept", len(res.Kept)),
			zap.Int("cancelled", len(res.Cancelled)),
		)
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection(ctx context.Context, client *redis.Client, logger *zap.Logger) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil && ctx.Err() == nil {
				logger.Warn("Redis connection lost", zap.Error(err))
			}
		}
	}
}
