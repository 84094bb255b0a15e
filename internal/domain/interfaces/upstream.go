package interfaces

import (
	"context"

	"crypto-resilience-service/internal/domain/entities"
)

// UpstreamClient realiza exactamente una consulta al proveedor de mercado
type UpstreamClient interface {
	FetchOne(ctx context.Context, symbol string) (entities.SymbolStats, error)
	FetchAll(ctx context.Context) ([]entities.SymbolStats, error)
}
