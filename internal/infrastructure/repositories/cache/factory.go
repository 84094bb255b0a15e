package cache

import (
	"context"
	"fmt"
	"time"

	"crypto-resilience-service/internal/domain/interfaces"
	"crypto-resilience-service/internal/infrastructure/config"
	"crypto-resilience-service/internal/infrastructure/logging"
)

// CacheType represents the type of cache implementation
type CacheType string

const (
	CacheTypeMemory   CacheType = "memory"
	CacheTypeRedis    CacheType = "redis"
	CacheTypeBigCache CacheType = "bigcache"
)

// Config holds cache configuration options
type Config struct {
	Type      CacheType
	KeyPrefix string
	Redis     RedisOptions
	BigCache  BigCacheOptions
}

// ConfigFromSettings traduce la sección cache de la configuración de la app
func ConfigFromSettings(cfg config.CacheConfig) Config {
	return Config{
		Type:      CacheType(cfg.Backend),
		KeyPrefix: cfg.KeyPrefix,
		Redis: RedisOptions{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		},
		BigCache: BigCacheOptions{
			Shards:        cfg.BigCache.Shards,
			HardMaxSizeMB: cfg.BigCache.HardMaxSizeMB,
			LifeWindow:    cfg.StaleTTL,
		},
	}
}

// Factory provides methods to create cache instances
type Factory struct {
	pingTimeout time.Duration
}

// NewFactory creates a new cache factory
func NewFactory() *Factory {
	return &Factory{pingTimeout: 5 * time.Second}
}

// CreateCache creates a cache instance based on configuration
func (f *Factory) CreateCache(ctx context.Context, config Config) (interfaces.Cache, error) {
	switch config.Type {
	case CacheTypeMemory:
		logging.Info(ctx, "Creating memory cache", logging.Fields{
			"type": "memory",
		})
		return NewMemoryCache(), nil

	case CacheTypeRedis:
		logging.Info(ctx, "Creating Redis cache", logging.Fields{
			"type":       "redis",
			"addr":       config.Redis.Addr,
			"database":   config.Redis.DB,
			"key_prefix": config.KeyPrefix,
		})
		return f.createRedisCache(ctx, config)

	case CacheTypeBigCache:
		logging.Info(ctx, "Creating bigcache cache", logging.Fields{
			"type":   "bigcache",
			"shards": config.BigCache.Shards,
		})
		bc, err := NewBigCache(ctx, config.BigCache)
		if err != nil {
			return nil, err
		}
		return bc, nil

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", config.Type)
	}
}

// createRedisCache creates and tests Redis connection
func (f *Factory) createRedisCache(ctx context.Context, config Config) (interfaces.Cache, error) {
	rc := NewRedisCache(config.Redis, config.KeyPrefix)

	pingCtx, cancel := context.WithTimeout(ctx, f.pingTimeout)
	defer cancel()

	if err := rc.Ping(pingCtx); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", config.Redis.Addr, err)
	}

	logging.Info(ctx, "Redis connection established successfully", logging.Fields{
		"addr":     config.Redis.Addr,
		"database": config.Redis.DB,
	})
	return rc, nil
}
