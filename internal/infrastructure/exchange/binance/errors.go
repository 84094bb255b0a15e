package binance

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUpstream agrupa cualquier fallo de la consulta al proveedor
	ErrUpstream = errors.New("upstream request failed")
	// ErrMalformedPayload se usa cuando la respuesta no se puede decodificar
	ErrMalformedPayload = errors.New("malformed upstream payload")
)

// TransportError representa fallos de red, timeouts o cancelación antes de tener respuesta
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("binance %s: transport error: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrUpstream, e.Err}
}

// HTTPStatusError representa una respuesta no-2xx del proveedor
type HTTPStatusError struct {
	Endpoint   string
	StatusCode int
	Code       int    // código de error de Binance, si vino en el cuerpo
	Message    string // mensaje de Binance, si vino en el cuerpo
}

func (e *HTTPStatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("binance %s: HTTP %d: %s (code %d)", e.Endpoint, e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("binance %s: HTTP %d", e.Endpoint, e.StatusCode)
}

func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrUpstream
}

// Retryable: 5xx y 429 pueden resolverse solos; el resto no
func (e *HTTPStatusError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

func malformed(endpoint string, err error) error {
	return fmt.Errorf("binance %s: %w: %w: %v", endpoint, ErrUpstream, ErrMalformedPayload, err)
}

// isRetryable decide qué errores reintenta retry-go
func isRetryable(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return true
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}

	return false
}
