package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBigCache(t *testing.T) (*BigCache, *fakeClock) {
	t.Helper()

	bc, err := NewBigCache(context.Background(), BigCacheOptions{Shards: 8, LifeWindow: time.Hour})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bc.Close() })

	clock := newFakeClock()
	bc.now = clock.Now
	return bc, clock
}

func TestBigCache_GetSetExpiry(t *testing.T) {
	bc, clock := newTestBigCache(t)
	ctx := context.Background()

	require.NoError(t, bc.Set(ctx, "live", "1", time.Minute))
	require.NoError(t, bc.Set(ctx, "stale", "2", 0))

	got, err := bc.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	clock.Advance(2 * time.Minute)

	_, err = bc.Get(ctx, "live")
	assert.ErrorIs(t, err, ErrKeyExpired)

	got, err = bc.Get(ctx, "stale")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestBigCache_MissingDeleteClear(t *testing.T) {
	bc, _ := newTestBigCache(t)
	ctx := context.Background()

	_, err := bc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, bc.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, bc.Set(ctx, "b", "2", time.Minute))
	assert.Equal(t, 2, bc.Len())

	require.NoError(t, bc.Delete(ctx, "a"))
	require.NoError(t, bc.Delete(ctx, "a"))
	_, err = bc.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, bc.Clear(ctx))
	_, err = bc.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.NoError(t, bc.Ping(ctx))
}
