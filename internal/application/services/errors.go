package services

import (
	"errors"
	"fmt"

	"crypto-resilience-service/internal/infrastructure/resilience"
)

var (
	// ErrInvalidSymbol: el símbolo no pasa la validación de formato
	ErrInvalidSymbol = errors.New("invalid symbol")
	// ErrNoDataAvailable: falló el refresco y no hay copia stale
	ErrNoDataAvailable = errors.New("no data available")
)

// NoDataAvailableError lleva la causa del último fallo y el estado del breaker
// en el momento de rendirse
type NoDataAvailableError struct {
	Key          string
	Cause        error
	BreakerState resilience.State
}

func (e *NoDataAvailableError) Error() string {
	return fmt.Sprintf("no data available for %s (circuit %s): %v", e.Key, e.BreakerState, e.Cause)
}

func (e *NoDataAvailableError) Unwrap() []error {
	return []error{ErrNoDataAvailable, e.Cause}
}
