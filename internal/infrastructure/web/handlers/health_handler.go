package handlers

import (
	"context"
	"net/http"
	"time"

	"crypto-resilience-service/internal/application/dto"
	"crypto-resilience-service/internal/domain/interfaces"
)

const readyTimeout = 2 * time.Second

// HealthHandler maneja los endpoints de health check
type HealthHandler struct {
	service interfaces.MarketDataService
}

// NewHealthHandler crea una nueva instancia del health handler
func NewHealthHandler(service interfaces.MarketDataService) *HealthHandler {
	return &HealthHandler{service: service}
}

// Health godoc
// @Summary Basic health check
// @Description Verifies that the service is running. Does not touch the cache or Binance.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is running correctly"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := dto.NewHealthResponse("healthy", h.service.BreakerStateName(), map[string]string{
		"service": "running",
	})
	writeJSON(r.Context(), w, http.StatusOK, response)
}

// Ready godoc
// @Summary Readiness check
// @Description Pings the cache backend and reports the circuit breaker state. An open breaker does not make the service unready because stale data can still be served.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is ready to receive traffic"
// @Failure 503 {object} dto.HealthResponse "Cache backend is unreachable"
// @Router /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	state := h.service.BreakerStateName()
	services := map[string]string{
		"service":         "ready",
		"circuit_breaker": state,
	}

	if err := h.service.Ping(ctx); err != nil {
		services["cache"] = "error: " + err.Error()
		writeJSON(r.Context(), w, http.StatusServiceUnavailable, dto.NewHealthResponse("unhealthy", state, services))
		return
	}

	services["cache"] = "ready"
	writeJSON(r.Context(), w, http.StatusOK, dto.NewHealthResponse("ready", state, services))
}
