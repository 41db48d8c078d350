package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryService(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()

	var got map[string]int
	assert.ErrorIs(t, svc.Get(ctx, "missing", &got), ErrCacheMiss)

	require.NoError(t, svc.Set(ctx, "k", map[string]int{"seats": 3}, time.Minute))
	require.NoError(t, svc.Get(ctx, "k", &got))
	assert.Equal(t, 3, got["seats"])

	ok, err := svc.SetNX(ctx, "k", "other", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.Delete(ctx, "k"))
	assert.False(t, svc.Exists(ctx, "k"))

	ok, err = svc.SetNX(ctx, "k", "fresh", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryServiceExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc := &memoryService{entries: make(map[string]memoryEntry), now: func() time.Time { return now }}

	require.NoError(t, svc.Set(ctx, "lock", true, time.Second))
	assert.True(t, svc.Exists(ctx, "lock"))

	now = now.Add(2 * time.Second)
	assert.False(t, svc.Exists(ctx, "lock"))

	ok, err := svc.SetNX(ctx, "lock", true, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
