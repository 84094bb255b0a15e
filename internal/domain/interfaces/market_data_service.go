package interfaces

import (
	"context"

	"crypto-resilience-service/internal/domain/entities"
)

// MarketDataService define los casos de uso que consumen los handlers HTTP
type MarketDataService interface {
	// FetchSymbol sirve un símbolo desde caché, upstream o la copia stale
	FetchSymbol(ctx context.Context, symbol string) (entities.SymbolStats, entities.Source, error)

	// FetchTopSymbols sirve el ranking por volumen de los pares en la moneda de cotización
	FetchTopSymbols(ctx context.Context) (entities.SymbolList, entities.Source, error)

	// ResetAll vacía la caché y cierra el breaker; no es atómico
	ResetAll(ctx context.Context) error

	// BreakerStateName devuelve "closed", "open" o "half-open"
	BreakerStateName() string

	// Ping comprueba que el backend de caché responde
	Ping(ctx context.Context) error
}
