package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the crypto resilience service
var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crypto_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPResponseSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crypto_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)

	// Cache Metrics
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "result"}, // operation: get/set/get_stale/set_stale/clear, result: hit/miss/success/error
	)

	CacheKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crypto_cache_keys",
			Help: "Number of keys currently in cache",
		},
		[]string{"cache_type"},
	)

	// External API Metrics
	ExternalAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_external_api_requests_total",
			Help: "Total number of external API requests",
		},
		[]string{"service", "endpoint", "status_code"},
	)

	ExternalAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crypto_external_api_request_duration_seconds",
			Help:    "External API request duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"service", "endpoint"},
	)

	ExternalAPIRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_external_api_retries_total",
			Help: "Total number of external API retry attempts",
		},
		[]string{"service", "endpoint", "attempt"},
	)

	// Business Metrics
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_fetches_total",
			Help: "Market data reads by kind and serving source",
		},
		[]string{"kind", "source"}, // kind: symbol/list, source: cache/upstream/stale/none
	)

	StaleFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_stale_fallbacks_total",
			Help: "Reads answered from the stale slot after a failed refresh",
		},
		[]string{"kind", "reason"}, // reason: circuit_open/upstream_error
	)

	// Circuit breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crypto_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half_open)",
		},
		[]string{"service", "endpoint"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"service", "from", "to"},
	)

	CircuitBreakerRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_circuit_breaker_rejections_total",
			Help: "Calls short-circuited by the breaker without reaching the upstream",
		},
		[]string{"service"},
	)

	// Rate Limiting Metrics
	RateLimitRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crypto_rate_limit_requests_total",
			Help: "Total number of requests processed by rate limiter",
		},
		[]string{"result"}, // result: allowed/blocked
	)

	// Application Metrics
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crypto_application_info",
			Help: "Application information",
		},
		[]string{"version", "cache_backend"},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, path string, statusCode int, duration float64, responseSize int64) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)

	if responseSize > 0 {
		HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordCacheOperation records cache operation metrics
func RecordCacheOperation(operation, result string) {
	CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// UpdateCacheKeys updates the key count gauge for a backend
func UpdateCacheKeys(cacheType string, keys int) {
	CacheKeys.WithLabelValues(cacheType).Set(float64(keys))
}

// RecordExternalAPICall records external API call metrics; duration is in milliseconds
func RecordExternalAPICall(service, endpoint string, statusCode int, durationMs float64) {
	ExternalAPIRequestsTotal.WithLabelValues(service, endpoint, strconv.Itoa(statusCode)).Inc()
	ExternalAPIRequestDuration.WithLabelValues(service, endpoint).Observe(durationMs / 1000)
}

// RecordExternalAPIRetry records external API retry attempts
func RecordExternalAPIRetry(service, endpoint string, attempt int) {
	ExternalAPIRetries.WithLabelValues(service, endpoint, strconv.Itoa(attempt)).Inc()
}

// RecordFetch records which source answered a read
func RecordFetch(kind, source string) {
	FetchesTotal.WithLabelValues(kind, source).Inc()
}

// RecordStaleFallback records a stale-slot answer
func RecordStaleFallback(kind, reason string) {
	StaleFallbacksTotal.WithLabelValues(kind, reason).Inc()
}

// UpdateCircuitBreakerState updates circuit breaker state
// state: 0=closed, 1=open, 2=half_open
func UpdateCircuitBreakerState(service, endpoint string, state int) {
	CircuitBreakerState.WithLabelValues(service, endpoint).Set(float64(state))
}

// RecordCircuitBreakerTransition counts a state change
func RecordCircuitBreakerTransition(service, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(service, from, to).Inc()
}

// RecordCircuitBreakerRejection counts a short-circuited call
func RecordCircuitBreakerRejection(service string) {
	CircuitBreakerRejections.WithLabelValues(service).Inc()
}

// RecordRateLimitResult records rate limiting results
func RecordRateLimitResult(allowed bool) {
	result := "blocked"
	if allowed {
		result = "allowed"
	}
	RateLimitRequestsTotal.WithLabelValues(result).Inc()
}

// SetApplicationInfo sets application information
func SetApplicationInfo(version, cacheBackend string) {
	ApplicationInfo.WithLabelValues(version, cacheBackend).Set(1)
}
