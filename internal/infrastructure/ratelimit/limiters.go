package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	cleanupInterval = 10 * time.Minute
	idleTTL         = 30 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LimiterCollection mantiene un token bucket por cliente
type LimiterCollection struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	now      func() time.Time
	lastScan time.Time
}

// NewLimiterCollection crea la colección; rps tokens por segundo y burst de capacidad
func NewLimiterCollection(rps float64, burst int) *LimiterCollection {
	if burst < 1 {
		burst = 1
	}
	return &LimiterCollection{
		clients:  make(map[string]*clientLimiter),
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
		lastScan: time.Now(),
	}
}

// Allow consume un token del cliente y devuelve los que le quedan
func (c *LimiterCollection) Allow(clientID string) (bool, int) {
	now := c.now()
	l := c.get(clientID, now)

	allowed := l.AllowN(now, 1)
	remaining := int(l.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining
}

// Len devuelve cuántos clientes se están siguiendo
func (c *LimiterCollection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

func (c *LimiterCollection) get(clientID string, now time.Time) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastScan) >= cleanupInterval {
		c.evictIdle(now)
	}

	entry, ok := c.clients[clientID]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.clients[clientID] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// evictIdle borra clientes sin actividad; se llama con el lock tomado
func (c *LimiterCollection) evictIdle(now time.Time) {
	cutoff := now.Add(-idleTTL)
	for id, entry := range c.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(c.clients, id)
		}
	}
	c.lastScan = now
}
