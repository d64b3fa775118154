package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdhealth/pathway-tracker/common/logger"
)

func newTestCache(t *testing.T) *Memory {
	t.Helper()
	c := NewMemory(logger.New("error", "json"))
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMemory_SetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "pathway:1:request-types", []byte("[10,11,12]"), time.Minute))

	value, ok, err := c.Get(ctx, "pathway:1:request-types")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("[10,11,12]"), value)
}

func TestMemory_MissingKey(t *testing.T) {
	c := newTestCache(t)

	_, ok, err := c.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Expiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Delete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemory_CloseIsIdempotent(t *testing.T) {
	c := NewMemory(logger.New("error", "json"))
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
