package interfaces

import (
	"context"
	"time"
)

// Cache es el puerto clave/valor que implementan memory, redis y bigcache.
// Un ttl <= 0 significa que la entrada no expira.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Clear removes every entry owned by this service
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}
