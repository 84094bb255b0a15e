package logging

import (
	"context"
)

// Logger define la interfaz principal para logging estructurado
type Logger interface {
	Debug(ctx context.Context, message string, fields Fields)
	Info(ctx context.Context, message string, fields Fields)
	Warn(ctx context.Context, message string, fields Fields)
	Error(ctx context.Context, message string, fields Fields)

	InfoWithError(ctx context.Context, message string, err error, fields Fields)
	WarnWithError(ctx context.Context, message string, err error, fields Fields)
	ErrorWithError(ctx context.Context, message string, err error, fields Fields)

	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

// DomainLogger representa loggers especializados por dominio
type DomainLogger interface {
	Logger

	Domain() string
}

// HTTPLogger especializado para logs relacionados con HTTP
type HTTPLogger interface {
	DomainLogger

	RequestReceived(ctx context.Context, method, path, userAgent, remoteIP string)
	RequestCompleted(ctx context.Context, method, path string, statusCode int, duration float64)
	RequestFailed(ctx context.Context, method, path string, statusCode int, err error, duration float64)
}

// ExternalAPILogger especializado para logs de APIs externas
type ExternalAPILogger interface {
	DomainLogger

	RequestStarted(ctx context.Context, service, endpoint, method string)
	RequestCompleted(ctx context.Context, service, endpoint string, statusCode int, duration float64)
	RequestFailed(ctx context.Context, service, endpoint string, statusCode int, err error, duration float64)
}

// CacheLogger especializado para logs relacionados con cache
type CacheLogger interface {
	DomainLogger

	Hit(ctx context.Context, key string, operation string)
	Miss(ctx context.Context, key string, operation string)
	Set(ctx context.Context, key string, ttl float64)
	Clear(ctx context.Context)
	CacheError(ctx context.Context, operation, key string, err error)
}

// BusinessLogger especializado para logs de lógica de negocio
type BusinessLogger interface {
	DomainLogger

	SymbolRequested(ctx context.Context, symbol string)
	SymbolServed(ctx context.Context, symbol string, price float64, source string)
	ListServed(ctx context.Context, count int, source string)
	FetchFailed(ctx context.Context, key string, err error)
	ValidationFailed(ctx context.Context, input string, reason string)
}

// ResilienceLogger especializado para el circuit breaker y los fallbacks
type ResilienceLogger interface {
	DomainLogger

	StateChanged(ctx context.Context, breaker, from, to string)
	ShortCircuited(ctx context.Context, breaker, state string)
	StaleServed(ctx context.Context, key string, cause error)
	Reset(ctx context.Context, breaker string)
}

// SecurityLogger especializado para logs relacionados con seguridad
type SecurityLogger interface {
	DomainLogger

	RateLimitExceeded(ctx context.Context, clientIP string, endpoint string)
	InvalidRequest(ctx context.Context, clientIP string, reason string)
	SuspiciousActivity(ctx context.Context, clientIP string, activity string)
}
