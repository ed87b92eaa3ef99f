package utils

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestHealthMonitorRefresh(t *testing.T) {
	down := errors.New("down")
	m := NewHealthMonitor(map[string]Pinger{
		"mongo": func(context.Context) error { return nil },
		"redis": func(context.Context) error { return down },
	})
	assert.True(t, m.GetHealthStatus().Healthy)

	st := m.Refresh(context.Background())
	assert.False(t, st.Healthy)
	assert.True(t, st.Checks["mongo"])
	assert.False(t, st.Checks["redis"])
	assert.Equal(t, st, m.GetHealthStatus())
}

func TestHealthMonitorRunStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewHealthMonitor(map[string]Pinger{"mongo": func(context.Context) error { return nil }})
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.Run(ctx, time.Millisecond)
	}()
	assert.Eventually(t, func() bool { return !m.GetHealthStatus().CheckedAt.IsZero() }, time.Second, time.Millisecond)
	cancel()
	wg.Wait()
}
