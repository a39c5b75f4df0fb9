package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "k", "v", time.Minute)
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	c.Set(ctx, "k", "v", -time.Second) // already expired
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemorySweep(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	c.Set(ctx, "stale", "v", -time.Second)
	c.Set(ctx, "fresh", "v", time.Minute)
	assert.Equal(t, 2, c.Len())

	removed := c.Sweep()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get(ctx, "fresh")
	assert.True(t, ok)
}
