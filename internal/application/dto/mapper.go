package dto

import (
	"crypto-resilience-service/internal/domain/entities"
)

// SymbolMapper maneja la conversión entre entidades del dominio y DTOs
type SymbolMapper struct{}

// NewSymbolMapper crea una nueva instancia del mapper
func NewSymbolMapper() *SymbolMapper {
	return &SymbolMapper{}
}

// ToDetailResponse convierte las estadísticas de un símbolo al DTO de detalle
func (m *SymbolMapper) ToDetailResponse(stats entities.SymbolStats, source entities.Source, breakerState string) *SymbolDetailResponse {
	return &SymbolDetailResponse{
		Symbol:              stats.Symbol,
		Price:               stats.LastPrice.InexactFloat64(),
		Change24h:           stats.PriceChange.InexactFloat64(),
		ChangePercent24h:    stats.PriceChangePercent.InexactFloat64(),
		Volume24h:           stats.Volume.InexactFloat64(),
		High24h:             stats.HighPrice.InexactFloat64(),
		Low24h:              stats.LowPrice.InexactFloat64(),
		FromCache:           source.FromCache(),
		CircuitBreakerState: breakerState,
		Source:              source.String(),
	}
}

// ToListResponse convierte el ranking al DTO de listado. El orden del ranking se conserva.
func (m *SymbolMapper) ToListResponse(list entities.SymbolList, source entities.Source, breakerState string) *SymbolListResponse {
	results := make([]SymbolSummary, len(list))
	for i, stats := range list {
		results[i] = SymbolSummary{
			Symbol:           stats.Symbol,
			Price:            stats.LastPrice.InexactFloat64(),
			ChangePercent24h: stats.PriceChangePercent.InexactFloat64(),
			Volume24h:        stats.Volume.InexactFloat64(),
		}
	}

	return &SymbolListResponse{
		Count:               len(results),
		FromCache:           source.FromCache(),
		CircuitBreakerState: breakerState,
		Source:              source.String(),
		Results:             results,
	}
}
