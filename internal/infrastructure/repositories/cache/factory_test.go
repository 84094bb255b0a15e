package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-resilience-service/internal/infrastructure/config"
)

func TestFactory_CreateCache(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantType interface{}
		wantErr  string
	}{
		{
			name:     "memory",
			config:   Config{Type: CacheTypeMemory},
			wantType: &MemoryCache{},
		},
		{
			name:     "bigcache",
			config:   Config{Type: CacheTypeBigCache, BigCache: BigCacheOptions{Shards: 4}},
			wantType: &BigCache{},
		},
		{
			name:    "redis inaccesible",
			config:  Config{Type: CacheTypeRedis, KeyPrefix: "t", Redis: RedisOptions{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond}},
			wantErr: "failed to connect to Redis at 127.0.0.1:1",
		},
		{
			name:    "tipo desconocido",
			config:  Config{Type: "memcached"},
			wantErr: "unsupported cache type: memcached",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFactory()
			f.pingTimeout = time.Second

			c, err := f.CreateCache(context.Background(), tt.config)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, c)
		})
	}
}

func TestConfigFromSettings(t *testing.T) {
	settings := config.GetDefaultConfig().Cache
	settings.Backend = "redis"
	settings.Redis.Password = "secret"

	got := ConfigFromSettings(settings)

	assert.Equal(t, CacheTypeRedis, got.Type)
	assert.Equal(t, "crypto_api", got.KeyPrefix)
	assert.Equal(t, "localhost:6379", got.Redis.Addr)
	assert.Equal(t, "secret", got.Redis.Password)
	assert.Equal(t, 1, got.Redis.DB)
	assert.Equal(t, 64, got.BigCache.Shards)
	assert.Equal(t, settings.StaleTTL, got.BigCache.LifeWindow)
}
