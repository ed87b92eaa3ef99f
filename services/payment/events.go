package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"
)

// EventRetention is how long a processed event ID is remembered. Stripe
// retries deliveries for up to three days.
const EventRetention = 72 * time.Hour

// EventLog remembers processed webhook events. An event is marked only after
// it was handled, so a failed delivery is processed again on retry.
type EventLog interface {
	Processed(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID string) error
}

// RedisEventLog keeps markers in Redis so every replica sees them.
type RedisEventLog struct {
	client *redis.Client
	prefix string
}

func NewRedisEventLog(client *redis.Client) *RedisEventLog {
	return &RedisEventLog{client: client, prefix: "webhook:event:"}
}

func (l *RedisEventLog) Processed(ctx context.Context, eventID string) (bool, error) {
	n, err := l.client.Exists(ctx, l.prefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("check event %s: %w", eventID, err)
	}
	return n > 0, nil
}

func (l *RedisEventLog) MarkProcessed(ctx context.Context, eventID string) error {
	if err := l.client.Set(ctx, l.prefix+eventID, time.Now().UTC().Format(time.RFC3339), EventRetention).Err(); err != nil {
		return fmt.Errorf("mark event %s: %w", eventID, err)
	}
	return nil
}

// MemoryEventLog is the single-process fallback.
type MemoryEventLog struct {
	c *cache.Cache
}

func NewMemoryEventLog() *MemoryEventLog {
	return &MemoryEventLog{c: cache.New(EventRetention, time.Hour)}
}

func (l *MemoryEventLog) Processed(_ context.Context, eventID string) (bool, error) {
	_, ok := l.c.Get(eventID)
	return ok, nil
}

func (l *MemoryEventLog) MarkProcessed(_ context.Context, eventID string) error {
	l.c.SetDefault(eventID, struct{}{})
	return nil
}
