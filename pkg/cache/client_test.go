package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDisabledRedisClient(t *testing.T) {
	client, err := NewRedisClient("", "", 0)
	require.NoError(t, err)

	ctx := context.Background()

	// Writes are silently skipped, reads miss.
	require.NoError(t, client.Set(ctx, "k", "v", time.Minute))
	_, err = client.Get(ctx, "k")
	require.Error(t, err)

	require.NoError(t, client.Delete(ctx, "k"))
	require.NoError(t, client.Close())
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "catalog", "payload", time.Minute))

	value, err := cache.Get(ctx, "catalog")
	require.NoError(t, err)
	require.Equal(t, "payload", value)

	require.NoError(t, cache.Delete(ctx, "catalog"))
	_, err = cache.Get(ctx, "catalog")
	require.Error(t, err)
}

func TestMemoryCacheExpiration(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", -time.Second))
	_, err := cache.Get(ctx, "k")
	require.Error(t, err)
}

func TestMemoryCacheIncrement(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	n, err := cache.Increment(ctx, "counter")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = cache.Increment(ctx, "counter")
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}
