package resilience

import "errors"

// ErrCircuitOpen se devuelve sin invocar la llamada protegida mientras el breaker
// está abierto, o cuando la única prueba en half-open ya está en curso
var ErrCircuitOpen = errors.New("circuit breaker is open")
