package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"crypto-resilience-service/internal/domain/entities"
	"crypto-resilience-service/internal/domain/interfaces"
	"crypto-resilience-service/internal/infrastructure/logging"
	"crypto-resilience-service/internal/infrastructure/metrics"
)

const (
	symbolKeyPrefix = "crypto:symbol:"
	listKeyPrefix   = "crypto:list:top"
	staleSuffix     = ":stale"
)

// SymbolKey devuelve la clave live de un símbolo
func SymbolKey(symbol string) string {
	return symbolKeyPrefix + strings.ToUpper(symbol)
}

// ListKey devuelve la clave live del ranking top N
func ListKey(topN int) string {
	return fmt.Sprintf("%s%d", listKeyPrefix, topN)
}

// StaleKey devuelve la clave gemela que guarda la última copia buena
func StaleKey(key string) string {
	return key + staleSuffix
}

// SnapshotCache guarda SymbolStats y SymbolList como JSON en cualquier
// interfaces.Cache, con un slot live (TTL corto) y uno stale por clave.
type SnapshotCache struct {
	backend  interfaces.Cache
	staleTTL time.Duration
	logger   logging.CacheLogger
}

var _ interfaces.SnapshotCache = (*SnapshotCache)(nil)

// NewSnapshotCache crea el adaptador; staleTTL <= 0 conserva la copia stale sin expiración
func NewSnapshotCache(backend interfaces.Cache, staleTTL time.Duration) *SnapshotCache {
	return &SnapshotCache{
		backend:  backend,
		staleTTL: staleTTL,
		logger:   logging.Cache(),
	}
}

// WithLogger replaces the cache domain logger
func (s *SnapshotCache) WithLogger(logger logging.CacheLogger) *SnapshotCache {
	s.logger = logger
	return s
}

func (s *SnapshotCache) GetSymbol(ctx context.Context, symbol string) (entities.SymbolStats, bool) {
	return getJSON[entities.SymbolStats](ctx, s, SymbolKey(symbol), logging.CacheOpGet)
}

func (s *SnapshotCache) SetSymbol(ctx context.Context, stats entities.SymbolStats, ttl time.Duration) {
	setJSON(ctx, s, SymbolKey(stats.Symbol), logging.CacheOpSet, stats, ttl)
}

func (s *SnapshotCache) GetSymbolStale(ctx context.Context, symbol string) (entities.SymbolStats, bool) {
	return getJSON[entities.SymbolStats](ctx, s, StaleKey(SymbolKey(symbol)), logging.CacheOpGetStale)
}

func (s *SnapshotCache) SetSymbolStale(ctx context.Context, stats entities.SymbolStats) {
	setJSON(ctx, s, StaleKey(SymbolKey(stats.Symbol)), logging.CacheOpSetStale, stats, s.staleTTL)
}

func (s *SnapshotCache) GetList(ctx context.Context, topN int) (entities.SymbolList, bool) {
	return getJSON[entities.SymbolList](ctx, s, ListKey(topN), logging.CacheOpGet)
}

func (s *SnapshotCache) SetList(ctx context.Context, topN int, list entities.SymbolList, ttl time.Duration) {
	setJSON(ctx, s, ListKey(topN), logging.CacheOpSet, list, ttl)
}

func (s *SnapshotCache) GetListStale(ctx context.Context, topN int) (entities.SymbolList, bool) {
	return getJSON[entities.SymbolList](ctx, s, StaleKey(ListKey(topN)), logging.CacheOpGetStale)
}

func (s *SnapshotCache) SetListStale(ctx context.Context, topN int, list entities.SymbolList) {
	setJSON(ctx, s, StaleKey(ListKey(topN)), logging.CacheOpSetStale, list, s.staleTTL)
}

// Clear elimina los slots live y stale. A diferencia de las lecturas, el error se propaga
// porque el endpoint de administración tiene que reportarlo.
func (s *SnapshotCache) Clear(ctx context.Context) error {
	if err := s.backend.Clear(ctx); err != nil {
		metrics.RecordCacheOperation("clear", "error")
		s.logger.CacheError(ctx, logging.CacheOpClear, "*", err)
		return err
	}

	metrics.RecordCacheOperation("clear", "success")
	s.logger.Clear(ctx)
	return nil
}

// Ping delegates to the backend health check
func (s *SnapshotCache) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// getJSON lee y decodifica; cualquier fallo del backend cuenta como miss
func getJSON[T any](ctx context.Context, s *SnapshotCache, key, op string) (T, bool) {
	var zero T
	metricOp := strings.ToLower(op)

	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if IsMiss(err) {
			metrics.RecordCacheOperation(metricOp, "miss")
			s.logger.Miss(ctx, key, op)
		} else {
			metrics.RecordCacheOperation(metricOp, "error")
			s.logger.CacheError(ctx, op, key, err)
		}
		return zero, false
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		metrics.RecordCacheOperation(metricOp, "error")
		s.logger.CacheError(ctx, op, key, unavailable("decode", err))
		return zero, false
	}

	metrics.RecordCacheOperation(metricOp, "hit")
	s.logger.Hit(ctx, key, op)
	return value, true
}

// setJSON codifica y escribe; los errores se registran y se descartan
func setJSON[T any](ctx context.Context, s *SnapshotCache, key, op string, value T, ttl time.Duration) {
	metricOp := strings.ToLower(op)

	raw, err := json.Marshal(value)
	if err != nil {
		metrics.RecordCacheOperation(metricOp, "error")
		s.logger.CacheError(ctx, op, key, unavailable("encode", err))
		return
	}

	if err := s.backend.Set(ctx, key, string(raw), ttl); err != nil {
		metrics.RecordCacheOperation(metricOp, "error")
		s.logger.CacheError(ctx, op, key, err)
		return
	}

	metrics.RecordCacheOperation(metricOp, "success")
	s.logger.Set(ctx, key, ttl.Seconds())
}
