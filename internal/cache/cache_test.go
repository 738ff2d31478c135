package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SeenAndExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	seen, err := c.Seen(ctx, "WH-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, c.MarkSeen(ctx, "WH-1"))
	seen, _ = c.Seen(ctx, "WH-1")
	assert.True(t, seen)

	now = now.Add(2 * time.Minute)
	seen, _ = c.Seen(ctx, "WH-1")
	assert.False(t, seen)
}

func TestMemory_SweepsOncePerTTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	c.now = func() time.Time { return now }

	require.NoError(t, c.MarkSeen(ctx, "WH-A"))
	now = start.Add(30 * time.Second)
	require.NoError(t, c.MarkSeen(ctx, "WH-B"))

	now = start.Add(61 * time.Second)
	require.NoError(t, c.MarkSeen(ctx, "WH-C"))
	assert.Len(t, c.m, 2, "expired WH-A is swept")
	assert.NotContains(t, c.m, "WH-A")

	// WH-B has expired, but the next sweep is not due yet
	now = start.Add(100 * time.Second)
	require.NoError(t, c.MarkSeen(ctx, "WH-D"))
	assert.Len(t, c.m, 3)
	seen, err := c.Seen(ctx, "WH-B")
	require.NoError(t, err)
	assert.False(t, seen)

	now = start.Add(125 * time.Second)
	require.NoError(t, c.MarkSeen(ctx, "WH-E"))
	assert.ElementsMatch(t, []string{"WH-D", "WH-E"}, keys(c.m))
}

func keys(m map[string]time.Time) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestNewRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := NewRedis(ctx, RedisOptions{Addr: "127.0.0.1:1", TTL: time.Minute})
	assert.Error(t, err)
}
