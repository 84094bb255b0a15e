package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"

	"crypto-resilience-service/internal/infrastructure/metrics"
)

// defaultLifeWindow bounds how long bigcache keeps an entry when the caller never expires it
const defaultLifeWindow = 30 * 24 * time.Hour

// BigCacheOptions dimensiona el cache en proceso
type BigCacheOptions struct {
	Shards        int
	HardMaxSizeMB int
	// LifeWindow is the longest TTL the cache has to honor; 0 uses defaultLifeWindow
	LifeWindow time.Duration
}

// bigCacheEnvelope carries the per-entry deadline; bigcache itself only has a global life window
type bigCacheEnvelope struct {
	Value     string `json:"v"`
	ExpiresAt int64  `json:"e,omitempty"` // unix nanos, 0 = never
}

// BigCache implementa interfaces.Cache sobre allegro/bigcache
type BigCache struct {
	cache *bigcache.BigCache
	now   func() time.Time
}

// NewBigCache crea el cache en proceso con las opciones indicadas
func NewBigCache(ctx context.Context, opts BigCacheOptions) (*BigCache, error) {
	lifeWindow := opts.LifeWindow
	if lifeWindow <= 0 {
		lifeWindow = defaultLifeWindow
	}

	conf := bigcache.DefaultConfig(lifeWindow)
	conf.CleanWindow = time.Minute
	conf.Verbose = false
	if opts.Shards > 0 {
		conf.Shards = opts.Shards
	}
	if opts.HardMaxSizeMB > 0 {
		conf.HardMaxCacheSize = opts.HardMaxSizeMB
	}

	bc, err := bigcache.New(ctx, conf)
	if err != nil {
		return nil, unavailable("bigcache init", err)
	}

	return &BigCache{cache: bc, now: time.Now}, nil
}

// Get obtiene un valor y aplica el expiresAt del sobre
func (b *BigCache) Get(ctx context.Context, key string) (string, error) {
	raw, err := b.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", unavailable("bigcache get", err)
	}

	var env bigCacheEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		_ = b.cache.Delete(key)
		return "", unavailable("bigcache decode", err)
	}

	if env.ExpiresAt != 0 && b.now().UnixNano() > env.ExpiresAt {
		_ = b.cache.Delete(key)
		return "", ErrKeyExpired
	}

	return env.Value, nil
}

// Set almacena el valor; ttl <= 0 no expira (salvo por el life window global)
func (b *BigCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	env := bigCacheEnvelope{Value: value}
	if ttl > 0 {
		env.ExpiresAt = b.now().Add(ttl).UnixNano()
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return unavailable("bigcache encode", err)
	}

	if err := b.cache.Set(key, raw); err != nil {
		return unavailable("bigcache set", err)
	}

	metrics.UpdateCacheKeys(string(CacheTypeBigCache), b.cache.Len())
	return nil
}

// Delete elimina una clave; borrar una clave ausente no es error
func (b *BigCache) Delete(ctx context.Context, key string) error {
	err := b.cache.Delete(key)
	if err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return unavailable("bigcache delete", err)
	}
	return nil
}

// Clear vacía todos los shards
func (b *BigCache) Clear(ctx context.Context) error {
	if err := b.cache.Reset(); err != nil {
		return unavailable("bigcache reset", err)
	}
	metrics.UpdateCacheKeys(string(CacheTypeBigCache), 0)
	return nil
}

// Ping siempre responde; el backend vive en el proceso
func (b *BigCache) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of stored entries, expired ones included
func (b *BigCache) Len() int {
	return b.cache.Len()
}

// Close stops the bigcache janitor
func (b *BigCache) Close() error {
	return b.cache.Close()
}
