package ratelimit

import (
	"encoding/json"
	"net/http"
	"strconv"

	"crypto-resilience-service/internal/infrastructure/config"
	"crypto-resilience-service/internal/infrastructure/logging"
	"crypto-resilience-service/internal/infrastructure/metrics"
	"crypto-resilience-service/internal/infrastructure/web/middleware"
)

// Middleware limita las peticiones entrantes por cliente
type Middleware struct {
	limiters  *LimiterCollection
	skipPaths map[string]bool
	enabled   bool
	logger    logging.SecurityLogger
}

// NewMiddleware crea el middleware a partir de la configuración
func NewMiddleware(cfg config.RateLimitConfig) *Middleware {
	m := &Middleware{
		skipPaths: map[string]bool{
			"/health":  true,
			"/ready":   true,
			"/metrics": true,
		},
		enabled: cfg.Enabled,
		logger:  logging.Security(),
	}
	if cfg.Enabled {
		m.limiters = NewLimiterCollection(cfg.RequestsPerSecond, cfg.Burst)
	}
	return m
}

// Handler returns the HTTP middleware handler
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled || m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := middleware.ClientIP(r)
		allowed, remaining := m.limiters.Allow(clientIP)
		metrics.RecordRateLimitResult(allowed)

		if !allowed {
			m.logger.RateLimitExceeded(r.Context(), clientIP, r.URL.Path)
			writeRateLimitError(w)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		next.ServeHTTP(w, r)
	})
}

func writeRateLimitError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   "RATE_LIMIT_EXCEEDED",
		"message": "Rate limit exceeded. Please slow down your requests.",
	})
}
