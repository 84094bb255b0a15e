package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"crypto-resilience-service/internal/application/dto"
	"crypto-resilience-service/internal/application/services"
	"crypto-resilience-service/internal/domain/interfaces"
	"crypto-resilience-service/internal/infrastructure/logging"
)

// Códigos de error que viajan en ErrorResponse.Error
const (
	ErrCodeInvalidSymbol = "INVALID_SYMBOL"
	ErrCodeNoData        = "NO_DATA_AVAILABLE"
	ErrCodeClearFailed   = "CACHE_CLEAR_FAILED"
	ErrCodeInternal      = "INTERNAL_ERROR"
	noDataMessage        = "Failed to fetch data from Binance API"
	cacheClearedMessage  = "Cache cleared and circuit breaker reset"
)

// CryptoHandler expone las estadísticas de mercado
type CryptoHandler struct {
	service interfaces.MarketDataService
	mapper  *dto.SymbolMapper
}

// NewCryptoHandler creates a new instance of the crypto handler
func NewCryptoHandler(service interfaces.MarketDataService) *CryptoHandler {
	return &CryptoHandler{
		service: service,
		mapper:  dto.NewSymbolMapper(),
	}
}

// Home godoc
// @Summary API home
// @Description Lists the public endpoints of the service
// @Tags crypto
// @Produce json
// @Success 200 {object} dto.HomeResponse
// @Router / [get]
func (h *CryptoHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, dto.NewHomeResponse())
}

// GetTopSymbols godoc
// @Summary Top symbols by volume
// @Description Returns the top symbols quoted in the configured currency, ranked by 24h volume. Served from cache when fresh, from Binance otherwise, and from the stale copy when Binance fails.
// @Tags crypto
// @Produce json
// @Success 200 {object} dto.SymbolListResponse
// @Failure 503 {object} dto.ErrorResponse "No live or stale data available"
// @Router /api/crypto [get]
func (h *CryptoHandler) GetTopSymbols(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, source, err := h.service.FetchTopSymbols(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, h.mapper.ToListResponse(list, source, h.service.BreakerStateName()))
}

// GetSymbol godoc
// @Summary 24h statistics for a symbol
// @Description Returns the 24h ticker statistics of a single symbol. The symbol is case-insensitive.
// @Tags crypto
// @Produce json
// @Param symbol path string true "Trading symbol" example(BTCUSDT)
// @Success 200 {object} dto.SymbolDetailResponse
// @Failure 400 {object} dto.ErrorResponse "Malformed symbol"
// @Failure 503 {object} dto.ErrorResponse "No live or stale data available"
// @Router /api/crypto/{symbol} [get]
func (h *CryptoHandler) GetSymbol(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := mux.Vars(r)["symbol"]

	stats, source, err := h.service.FetchSymbol(ctx, symbol)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, h.mapper.ToDetailResponse(stats, source, h.service.BreakerStateName()))
}

// ClearCache godoc
// @Summary Clear cache and reset breaker
// @Description Removes every live and stale cache entry and forces the circuit breaker back to closed
// @Tags admin
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/admin/clear-cache [post]
func (h *CryptoHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.service.ResetAll(ctx); err != nil {
		logging.ErrorWithError(ctx, "Failed to clear cache", err, nil)
		writeJSON(ctx, w, http.StatusInternalServerError,
			dto.NewErrorResponse(ErrCodeClearFailed, err.Error(), h.service.BreakerStateName()))
		return
	}

	writeJSON(ctx, w, http.StatusOK, dto.MessageResponse{Message: cacheClearedMessage})
}

// writeServiceError traduce los errores del servicio a status HTTP
func (h *CryptoHandler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	state := h.service.BreakerStateName()

	switch {
	case errors.Is(err, services.ErrInvalidSymbol):
		writeJSON(ctx, w, http.StatusBadRequest, dto.NewErrorResponse(ErrCodeInvalidSymbol, err.Error(), state))
	case errors.Is(err, services.ErrNoDataAvailable):
		writeJSON(ctx, w, http.StatusServiceUnavailable, dto.NewErrorResponse(ErrCodeNoData, noDataMessage, state))
	default:
		logging.ErrorWithError(ctx, "Unexpected service error", err, nil)
		writeJSON(ctx, w, http.StatusInternalServerError, dto.NewErrorResponse(ErrCodeInternal, err.Error(), state))
	}
}

// writeJSON escribe una respuesta JSON preservando el contexto para los logs
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.ErrorWithError(ctx, "Failed to encode JSON response", err, logging.Fields{
			logging.FieldHTTPStatusCode: statusCode,
		})
	}
}
