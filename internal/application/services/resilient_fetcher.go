package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"crypto-resilience-service/internal/domain/entities"
	"crypto-resilience-service/internal/domain/interfaces"
	"crypto-resilience-service/internal/infrastructure/config"
	"crypto-resilience-service/internal/infrastructure/logging"
	"crypto-resilience-service/internal/infrastructure/metrics"
	"crypto-resilience-service/internal/infrastructure/repositories/cache"
	"crypto-resilience-service/internal/infrastructure/resilience"
)

const (
	DefaultCacheTTL        = 120 * time.Second
	DefaultQuoteCurrency   = "USDT"
	DefaultTopN            = 20
	DefaultUpstreamTimeout = 10 * time.Second

	kindSymbol = "symbol"
	kindList   = "list"
)

// Options ajusta la política de lectura
type Options struct {
	CacheTTL        time.Duration
	QuoteCurrency   string
	TopN            int
	UpstreamTimeout time.Duration
}

// OptionsFromSettings toma TTL, moneda de cotización y top N de la configuración
func OptionsFromSettings(cfg *config.Config) Options {
	return Options{
		CacheTTL:        cfg.Cache.TTL,
		QuoteCurrency:   cfg.Upstream.QuoteCurrency,
		TopN:            cfg.Upstream.TopN,
		UpstreamTimeout: cfg.Upstream.Timeout,
	}
}

// ResilientFetcher une caché, breaker y upstream: sirve live si hay, refresca a
// través del breaker si no, y cae a la copia stale cuando el refresco falla.
type ResilientFetcher struct {
	upstream interfaces.UpstreamClient
	cache    interfaces.SnapshotCache
	breaker  *resilience.CircuitBreaker
	opts     Options

	group            singleflight.Group
	logger           logging.BusinessLogger
	resilienceLogger logging.ResilienceLogger
}

var _ interfaces.MarketDataService = (*ResilientFetcher)(nil)

// NewResilientFetcher crea el servicio con instancias inyectadas
func NewResilientFetcher(
	upstream interfaces.UpstreamClient,
	snapshots interfaces.SnapshotCache,
	breaker *resilience.CircuitBreaker,
	opts Options,
) *ResilientFetcher {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.QuoteCurrency == "" {
		opts.QuoteCurrency = DefaultQuoteCurrency
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.UpstreamTimeout <= 0 {
		opts.UpstreamTimeout = DefaultUpstreamTimeout
	}

	return &ResilientFetcher{
		upstream:         upstream,
		cache:            snapshots,
		breaker:          breaker,
		opts:             opts,
		logger:           logging.Business(),
		resilienceLogger: logging.Resilience(),
	}
}

// FetchSymbol sirve las estadísticas de un símbolo
func (f *ResilientFetcher) FetchSymbol(ctx context.Context, raw string) (entities.SymbolStats, entities.Source, error) {
	symbol, err := NormalizeSymbol(raw)
	if err != nil {
		f.logger.ValidationFailed(ctx, raw, err.Error())
		return entities.SymbolStats{}, "", err
	}

	f.logger.SymbolRequested(ctx, symbol)

	if stats, ok := f.cache.GetSymbol(ctx, symbol); ok {
		f.served(ctx, kindSymbol, entities.SourceCache, stats)
		return stats, entities.SourceCache, nil
	}

	key := cache.SymbolKey(symbol)
	v, err, _ := f.group.Do(key, func() (any, error) {
		return f.refreshSymbol(ctx, symbol)
	})
	if err == nil {
		stats := v.(entities.SymbolStats)
		f.served(ctx, kindSymbol, entities.SourceUpstream, stats)
		return stats, entities.SourceUpstream, nil
	}

	if stale, ok := f.cache.GetSymbolStale(ctx, symbol); ok {
		f.staleServed(ctx, kindSymbol, key, err)
		f.served(ctx, kindSymbol, entities.SourceStale, stale)
		return stale, entities.SourceStale, nil
	}

	return entities.SymbolStats{}, "", f.noData(ctx, kindSymbol, key, err)
}

// FetchTopSymbols sirve el ranking por volumen de los pares en la moneda de cotización
func (f *ResilientFetcher) FetchTopSymbols(ctx context.Context) (entities.SymbolList, entities.Source, error) {
	if list, ok := f.cache.GetList(ctx, f.opts.TopN); ok {
		f.listServed(ctx, entities.SourceCache, list)
		return list, entities.SourceCache, nil
	}

	key := cache.ListKey(f.opts.TopN)
	v, err, _ := f.group.Do(key, func() (any, error) {
		return f.refreshList(ctx)
	})
	if err == nil {
		list := v.(entities.SymbolList)
		f.listServed(ctx, entities.SourceUpstream, list)
		return list, entities.SourceUpstream, nil
	}

	if stale, ok := f.cache.GetListStale(ctx, f.opts.TopN); ok {
		f.staleServed(ctx, kindList, key, err)
		f.listServed(ctx, entities.SourceStale, stale)
		return stale, entities.SourceStale, nil
	}

	return nil, "", f.noData(ctx, kindList, key, err)
}

// ResetAll vacía la caché y cierra el breaker. El breaker se resetea aunque
// el borrado falle; no hay atomicidad entre los dos pasos.
func (f *ResilientFetcher) ResetAll(ctx context.Context) error {
	clearErr := f.cache.Clear(ctx)
	f.breaker.Reset()

	if clearErr != nil {
		return fmt.Errorf("failed to clear cache: %w", clearErr)
	}

	logging.Info(ctx, "Cache cleared and circuit breaker reset", logging.Fields{
		logging.FieldBreakerName: f.breaker.Name(),
	})
	return nil
}

// BreakerState devuelve la foto actual del breaker
func (f *ResilientFetcher) BreakerState() resilience.Snapshot {
	return f.breaker.CurrentState()
}

// BreakerStateName es el string que viaja en las respuestas HTTP
func (f *ResilientFetcher) BreakerStateName() string {
	return f.breaker.CurrentState().State.String()
}

// Ping comprueba el backend de caché
func (f *ResilientFetcher) Ping(ctx context.Context) error {
	return f.cache.Ping(ctx)
}

// Warmup precarga el ranking para que las primeras peticiones salgan de caché
func (f *ResilientFetcher) Warmup(ctx context.Context) error {
	start := time.Now()

	list, source, err := f.FetchTopSymbols(ctx)
	if err != nil {
		logging.WarnWithError(ctx, "Warmup failed, starting with cold cache", err, logging.Fields{
			logging.FieldDuration: float64(time.Since(start).Nanoseconds()) / 1e6,
		})
		return err
	}

	logging.Info(ctx, "Warmup completed", logging.Fields{
		logging.FieldResultCount: len(list),
		logging.FieldDataSource:  source.String(),
		logging.FieldDuration:    float64(time.Since(start).Nanoseconds()) / 1e6,
	})
	return nil
}

// refreshSymbol consulta el upstream a través del breaker y escribe live + stale
func (f *ResilientFetcher) refreshSymbol(ctx context.Context, symbol string) (entities.SymbolStats, error) {
	upCtx, cancel := f.upstreamContext(ctx)
	defer cancel()

	stats, err := resilience.Execute(f.breaker, func() (entities.SymbolStats, error) {
		return f.upstream.FetchOne(upCtx, symbol)
	})
	if err != nil {
		return entities.SymbolStats{}, err
	}

	f.cache.SetSymbol(upCtx, stats, f.opts.CacheTTL)
	f.cache.SetSymbolStale(upCtx, stats)
	return stats, nil
}

// refreshList pide la foto completa, filtra, ordena y recorta antes de cachear
func (f *ResilientFetcher) refreshList(ctx context.Context) (entities.SymbolList, error) {
	upCtx, cancel := f.upstreamContext(ctx)
	defer cancel()

	all, err := resilience.Execute(f.breaker, func() ([]entities.SymbolStats, error) {
		return f.upstream.FetchAll(upCtx)
	})
	if err != nil {
		return nil, err
	}

	list := RankTopSymbols(all, f.opts.QuoteCurrency, f.opts.TopN)

	f.cache.SetList(upCtx, f.opts.TopN, list, f.opts.CacheTTL)
	f.cache.SetListStale(upCtx, f.opts.TopN, list)
	return list, nil
}

// upstreamContext desacopla la llamada de la cancelación del cliente HTTP:
// un cliente que se va no debe contar como fallo del upstream
func (f *ResilientFetcher) upstreamContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), f.opts.UpstreamTimeout)
}

func (f *ResilientFetcher) served(ctx context.Context, kind string, source entities.Source, stats entities.SymbolStats) {
	metrics.RecordFetch(kind, source.String())
	f.logger.SymbolServed(ctx, stats.Symbol, stats.LastPrice.InexactFloat64(), source.String())
}

func (f *ResilientFetcher) listServed(ctx context.Context, source entities.Source, list entities.SymbolList) {
	metrics.RecordFetch(kindList, source.String())
	f.logger.ListServed(ctx, len(list), source.String())
}

func (f *ResilientFetcher) staleServed(ctx context.Context, kind, key string, cause error) {
	reason := "upstream_error"
	if errors.Is(cause, resilience.ErrCircuitOpen) {
		reason = "circuit_open"
	}
	metrics.RecordStaleFallback(kind, reason)
	f.resilienceLogger.StaleServed(ctx, key, cause)
}

func (f *ResilientFetcher) noData(ctx context.Context, kind, key string, cause error) error {
	metrics.RecordFetch(kind, "none")
	f.logger.FetchFailed(ctx, key, cause)

	return &NoDataAvailableError{
		Key:          key,
		Cause:        cause,
		BreakerState: f.breaker.CurrentState().State,
	}
}

// RankTopSymbols se queda con los pares en la moneda de cotización, los ordena
// por volumen descendente (estable ante empates) y recorta a topN
func RankTopSymbols(all []entities.SymbolStats, quote string, topN int) entities.SymbolList {
	list := make(entities.SymbolList, 0, len(all))
	for _, s := range all {
		if s.HasQuote(quote) {
			list = append(list, s)
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Volume.GreaterThan(list[j].Volume)
	})

	if topN > 0 && len(list) > topN {
		list = list[:topN]
	}
	return list
}
