package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// Pinger checks one dependency.
type Pinger func(ctx context.Context) error

func MongoPinger(client *mongo.Client) Pinger {
	return func(ctx context.Context) error { return client.Ping(ctx, nil) }
}

func RedisPinger(client *redis.Client) Pinger {
	return func(ctx context.Context) error { return client.Ping(ctx).Err() }
}

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Healthy   bool            `json:"healthy"`
	Checks    map[string]bool `json:"checks"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// HealthMonitor keeps the latest result of periodic dependency checks.
type HealthMonitor struct {
	checks  map[string]Pinger
	mu      sync.RWMutex
	current HealthStatus
}

func NewHealthMonitor(checks map[string]Pinger) *HealthMonitor {
	m := &HealthMonitor{checks: checks}
	m.current = HealthStatus{Healthy: true, Checks: map[string]bool{}}
	return m
}

// Refresh runs every check once and stores the result.
func (m *HealthMonitor) Refresh(ctx context.Context) HealthStatus {
	status := HealthStatus{Healthy: true, Checks: make(map[string]bool, len(m.checks)), CheckedAt: time.Now().UTC()}
	for name, ping := range m.checks {
		cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		ok := ping(cctx) == nil
		cancel()
		status.Checks[name] = ok
		status.Healthy = status.Healthy && ok
	}

	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

// GetHealthStatus returns latest stored health snapshot.
func (m *HealthMonitor) GetHealthStatus() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Run refreshes on every tick until ctx is done.
func (m *HealthMonitor) Run(ctx context.Context, every time.Duration) {
	m.Refresh(ctx)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Refresh(ctx)
		}
	}
}
