package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"crypto-resilience-service/internal/infrastructure/logging"
	"crypto-resilience-service/internal/infrastructure/metrics"
)

// State is the breaker state exposed to callers and API responses
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// metricValue follows the gauge encoding: 0 closed, 1 open, 2 half_open
func (s State) metricValue() int {
	return int(s)
}

func fromGoBreaker(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}

// Snapshot is a read-only view of the breaker
type Snapshot struct {
	State               State
	ConsecutiveFailures int
	OpenedAt            time.Time // zero while closed
}

// Config configura el breaker
type Config struct {
	Name         string
	FailMax      int
	ResetTimeout time.Duration
}

// DefaultConfig: 3 fallos consecutivos, 60s de enfriamiento
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		FailMax:      3,
		ResetTimeout: 60 * time.Second,
	}
}

// CircuitBreaker protege las llamadas al upstream. Es una única instancia
// compartida por todos los símbolos; la máquina de estados la lleva gobreaker.
type CircuitBreaker struct {
	config Config
	logger logging.ResilienceLogger

	engine     atomic.Pointer[gobreaker.CircuitBreaker]
	generation atomic.Uint64

	mu       sync.Mutex
	failures int
	openedAt time.Time
}

// NewCircuitBreaker crea un breaker cerrado
func NewCircuitBreaker(config Config) *CircuitBreaker {
	if config.FailMax <= 0 {
		config.FailMax = 3
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 60 * time.Second
	}
	if config.Name == "" {
		config.Name = "upstream"
	}

	cb := &CircuitBreaker{
		config: config,
		logger: logging.Resilience(),
	}
	cb.engine.Store(cb.newEngine(cb.generation.Load()))
	metrics.UpdateCircuitBreakerState(config.Name, "all", StateClosed.metricValue())
	return cb
}

// WithLogger replaces the resilience domain logger
func (cb *CircuitBreaker) WithLogger(logger logging.ResilienceLogger) *CircuitBreaker {
	cb.logger = logger
	return cb
}

// Name returns the breaker name used in logs and metrics
func (cb *CircuitBreaker) Name() string {
	return cb.config.Name
}

func (cb *CircuitBreaker) newEngine(gen uint64) *gobreaker.CircuitBreaker {
	failMax := uint32(cb.config.FailMax)

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cb.config.Name,
		MaxRequests: 1,
		Timeout:     cb.config.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failMax
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			// un motor reemplazado por Reset ya no publica transiciones
			if cb.generation.Load() != gen {
				return
			}
			cb.onStateChange(fromGoBreaker(from), fromGoBreaker(to))
		},
	})
}

// onStateChange corre bajo el mutex de gobreaker: no debe volver a llamar al motor
func (cb *CircuitBreaker) onStateChange(from, to State) {
	cb.mu.Lock()
	switch to {
	case StateOpen:
		cb.openedAt = time.Now()
	case StateClosed:
		cb.openedAt = time.Time{}
		cb.failures = 0
	}
	cb.mu.Unlock()

	metrics.UpdateCircuitBreakerState(cb.config.Name, "all", to.metricValue())
	metrics.RecordCircuitBreakerTransition(cb.config.Name, from.String(), to.String())
	cb.logger.StateChanged(context.Background(), cb.config.Name, from.String(), to.String())
}

// Call runs fn through the breaker. The result and error of fn are returned
// unchanged; a rejected call returns ErrCircuitOpen without running fn.
func (cb *CircuitBreaker) Call(fn func() (any, error)) (any, error) {
	res, err := cb.engine.Load().Execute(fn)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		state := StateOpen
		if errors.Is(err, gobreaker.ErrTooManyRequests) {
			state = StateHalfOpen
		}
		metrics.RecordCircuitBreakerRejection(cb.config.Name)
		cb.logger.ShortCircuited(context.Background(), cb.config.Name, state.String())
		return nil, ErrCircuitOpen
	}

	cb.mu.Lock()
	if err != nil {
		cb.failures++
	} else {
		cb.failures = 0
	}
	cb.mu.Unlock()

	return res, err
}

// Execute is the typed form of Call
func Execute[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.Call(func() (any, error) {
		v, err := fn()
		return v, err
	})

	if v, ok := res.(T); ok {
		return v, err
	}
	var zero T
	return zero, err
}

// CurrentState devuelve una foto del breaker. Un breaker abierto cuyo
// enfriamiento ya venció se reporta como half-open.
func (cb *CircuitBreaker) CurrentState() Snapshot {
	state := fromGoBreaker(cb.engine.Load().State())

	cb.mu.Lock()
	defer cb.mu.Unlock()

	snap := Snapshot{
		State:               state,
		ConsecutiveFailures: cb.failures,
	}
	if state != StateClosed {
		snap.OpenedAt = cb.openedAt
	}
	return snap
}

// Reset fuerza el estado closed con el contador a cero
func (cb *CircuitBreaker) Reset() {
	prev := fromGoBreaker(cb.engine.Load().State())

	gen := cb.generation.Add(1)
	cb.engine.Store(cb.newEngine(gen))

	cb.mu.Lock()
	cb.failures = 0
	cb.openedAt = time.Time{}
	cb.mu.Unlock()

	metrics.UpdateCircuitBreakerState(cb.config.Name, "all", StateClosed.metricValue())
	if prev != StateClosed {
		metrics.RecordCircuitBreakerTransition(cb.config.Name, prev.String(), StateClosed.String())
	}
	cb.logger.Reset(context.Background(), cb.config.Name)
}
