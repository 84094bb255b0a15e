package cache

import (
	"context"
	"sync"
	"time"

	"crypto-resilience-service/internal/infrastructure/metrics"
)

// cacheItem representa un elemento en el cache con su valor y tiempo de expiración
type cacheItem struct {
	value     string
	expiresAt time.Time // zero: sin expiración
}

// isExpired compara explícitamente contra expiresAt en el momento de la lectura
func (item *cacheItem) isExpired(now time.Time) bool {
	return !item.expiresAt.IsZero() && now.After(item.expiresAt)
}

// MemoryCache implementa interfaces.Cache usando memoria local
type MemoryCache struct {
	items map[string]*cacheItem
	mu    sync.RWMutex
	now   func() time.Time
}

// NewMemoryCache crea una nueva instancia de cache en memoria
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]*cacheItem),
		now:   time.Now,
	}
}

// Get obtiene un valor del cache
func (c *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return "", ErrKeyNotFound
	}

	if item.isExpired(c.now()) {
		c.deleteIfSame(key, item)
		return "", ErrKeyExpired
	}

	return item.value, nil
}

// Set almacena un valor con TTL; ttl <= 0 deja la entrada sin expiración
func (c *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweepLocked(now)

	item := &cacheItem{value: value}
	if ttl > 0 {
		item.expiresAt = now.Add(ttl)
	}
	c.items[key] = item

	metrics.UpdateCacheKeys(string(CacheTypeMemory), len(c.items))
	return nil
}

// Delete elimina un valor del cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Clear vacía el cache completo
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*cacheItem)
	metrics.UpdateCacheKeys(string(CacheTypeMemory), 0)
	return nil
}

// Ping siempre responde; el backend vive en el proceso
func (c *MemoryCache) Ping(ctx context.Context) error {
	return nil
}

// Size retorna el número de elementos en el cache, expirados incluidos
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Cleanup elimina elementos expirados del cache
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked(c.now())
}

func (c *MemoryCache) sweepLocked(now time.Time) {
	for k, item := range c.items {
		if item.isExpired(now) {
			delete(c.items, k)
		}
	}
}

// deleteIfSame evita borrar un valor que otro Set reemplazó entre el RUnlock y el Lock
func (c *MemoryCache) deleteIfSame(key string, item *cacheItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.items[key]; ok && current == item {
		delete(c.items, key)
	}
}
