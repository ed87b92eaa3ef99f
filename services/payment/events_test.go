package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEventLog(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryEventLog()

	seen, err := l.Processed(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, l.MarkProcessed(ctx, "evt_1"))
	seen, err = l.Processed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, _ = l.Processed(ctx, "evt_2")
	assert.False(t, seen)
}
