package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachableRedis apunta a un puerto sin servidor para ejercitar la ruta de error sin Redis real
func unreachableRedis(prefix string) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	}), prefix)
}

func TestRedisCache_KeyPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{"crypto_api", "crypto:symbol:BTCUSDT", "crypto_api:crypto:symbol:BTCUSDT"},
		{"", "crypto:list:top20", "crypto:list:top20"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			rc := NewRedisCache(RedisOptions{Addr: "localhost:6379"}, tt.prefix)
			defer rc.Close()
			assert.Equal(t, tt.want, rc.key(tt.key))
		})
	}
}

func TestRedisCache_UnavailableBackend(t *testing.T) {
	rc := unreachableRedis("crypto_api")
	defer rc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := rc.Get(ctx, "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCacheUnavailable)
	assert.False(t, IsMiss(err))

	assert.ErrorIs(t, rc.Set(ctx, "k", "v", time.Minute), ErrCacheUnavailable)
	assert.ErrorIs(t, rc.Delete(ctx, "k"), ErrCacheUnavailable)
	assert.ErrorIs(t, rc.Clear(ctx), ErrCacheUnavailable)
	assert.ErrorIs(t, rc.Ping(ctx), ErrCacheUnavailable)
}
