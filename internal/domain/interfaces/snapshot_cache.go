package interfaces

import (
	"context"
	"time"

	"crypto-resilience-service/internal/domain/entities"
)

// SnapshotCache guarda cada lectura en dos slots: el live con TTL corto y
// una copia stale que sólo se consulta cuando el refresco falla.
// Los errores del backend se reportan como miss; nunca abortan un fetch.
type SnapshotCache interface {
	GetSymbol(ctx context.Context, symbol string) (entities.SymbolStats, bool)
	SetSymbol(ctx context.Context, stats entities.SymbolStats, ttl time.Duration)
	GetSymbolStale(ctx context.Context, symbol string) (entities.SymbolStats, bool)
	SetSymbolStale(ctx context.Context, stats entities.SymbolStats)

	GetList(ctx context.Context, topN int) (entities.SymbolList, bool)
	SetList(ctx context.Context, topN int, list entities.SymbolList, ttl time.Duration)
	GetListStale(ctx context.Context, topN int) (entities.SymbolList, bool)
	SetListStale(ctx context.Context, topN int, list entities.SymbolList)

	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}
