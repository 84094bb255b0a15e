package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crypto-resilience-service/internal/domain/entities"
	"crypto-resilience-service/internal/infrastructure/repositories/cache"
	"crypto-resilience-service/internal/infrastructure/resilience"
)

var errUpstreamDown = errors.New("upstream down")

// MockUpstream is a mock implementation of interfaces.UpstreamClient
type MockUpstream struct {
	mock.Mock
}

func (m *MockUpstream) FetchOne(ctx context.Context, symbol string) (entities.SymbolStats, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(entities.SymbolStats), args.Error(1)
}

func (m *MockUpstream) FetchAll(ctx context.Context) ([]entities.SymbolStats, error) {
	args := m.Called(ctx)
	var out []entities.SymbolStats
	if v := args.Get(0); v != nil {
		out = v.([]entities.SymbolStats)
	}
	return out, args.Error(1)
}

// failingBackend simula un Redis caído
type failingBackend struct{}

func (failingBackend) Get(ctx context.Context, key string) (string, error) {
	return "", cache.ErrCacheUnavailable
}
func (failingBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return cache.ErrCacheUnavailable
}
func (failingBackend) Delete(ctx context.Context, key string) error { return cache.ErrCacheUnavailable }
func (failingBackend) Clear(ctx context.Context) error              { return cache.ErrCacheUnavailable }
func (failingBackend) Ping(ctx context.Context) error               { return cache.ErrCacheUnavailable }

type fixture struct {
	upstream  *MockUpstream
	snapshots *cache.SnapshotCache
	breaker   *resilience.CircuitBreaker
	fetcher   *ResilientFetcher
}

func newFixture(t *testing.T, opts Options, resetTimeout time.Duration) *fixture {
	t.Helper()

	up := &MockUpstream{}
	snapshots := cache.NewSnapshotCache(cache.NewMemoryCache(), 0)
	breaker := resilience.NewCircuitBreaker(resilience.Config{Name: t.Name(), FailMax: 3, ResetTimeout: resetTimeout})

	return &fixture{
		upstream:  up,
		snapshots: snapshots,
		breaker:   breaker,
		fetcher:   NewResilientFetcher(up, snapshots, breaker, opts),
	}
}

func stats(symbol, price, volume string) entities.SymbolStats {
	return entities.SymbolStats{
		Symbol:             symbol,
		LastPrice:          decimal.RequireFromString(price),
		PriceChange:        decimal.NewFromInt(1),
		PriceChangePercent: decimal.RequireFromString("0.5"),
		Volume:             decimal.RequireFromString(volume),
		HighPrice:          decimal.RequireFromString(price),
		LowPrice:           decimal.RequireFromString(price),
	}
}

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "BTCUSDT", want: "BTCUSDT"},
		{raw: " btcusdt ", want: "BTCUSDT"},
		{raw: "1000SATSUSDT", want: "1000SATSUSDT"},
		{raw: "", wantErr: true},
		{raw: "B", wantErr: true},
		{raw: "BTC/USDT", wantErr: true},
		{raw: "BTC-USDT", wantErr: true},
		{raw: "ABCDEFGHIJKLMNOPQRSTU", wantErr: true},
		{raw: "ÑANDUUSDT", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := NormalizeSymbol(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSymbol)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchSymbol_LiveHitSkipsUpstream(t *testing.T) {
	fx := newFixture(t, Options{}, time.Minute)
	ctx := context.Background()

	fx.snapshots.SetSymbol(ctx, stats("BTCUSDT", "43000", "10"), time.Minute)

	got, source, err := fx.fetcher.FetchSymbol(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, entities.SourceCache, source)
	assert.Equal(t, "BTCUSDT", got.Symbol)
	fx.upstream.AssertNotCalled(t, "FetchOne", mock.Anything, mock.Anything)
}

func TestFetchSymbol_MissFetchesAndCaches(t *testing.T) {
	fx := newFixture(t, Options{}, time.Minute)
	ctx := context.Background()

	fx.upstream.On("FetchOne", mock.Anything, "ETHUSDT").Return(stats("ETHUSDT", "2250", "10"), nil).Once()

	got, source, err := fx.fetcher.FetchSymbol(ctx, "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, entities.SourceUpstream, source)
	assert.True(t, decimal.NewFromInt(2250).Equal(got.LastPrice))

	_, ok := fx.snapshots.GetSymbol(ctx, "ETHUSDT")
	assert.True(t, ok)
	_, ok = fx.snapshots.GetSymbolStale(ctx, "ETHUSDT")
	assert.True(t, ok)

	// lowercase y espacios resuelven a la misma clave
	_, source, err = fx.fetcher.FetchSymbol(ctx, " ethusdt")
	require.NoError(t, err)
	assert.Equal(t, entities.SourceCache, source)

	fx.upstream.AssertNumberOfCalls(t, "FetchOne", 1)
}

func TestFetchSymbol_InvalidSymbol(t *testing.T) {
	fx := newFixture(t, Options{}, time.Minute)

	_, _, err := fx.fetcher.FetchSymbol(context.Background(), "BTC/USDT")
	assert.ErrorIs(t, err, ErrInvalidSymbol)
	fx.upstream.AssertNotCalled(t, "FetchOne", mock.Anything, mock.Anything)
}

func TestFetchSymbol_StaleFallbackAfterLiveExpiry(t *testing.T) {
	fx := newFixture(t, Options{CacheTTL: 20 * time.Millisecond}, time.Minute)
	ctx := context.Background()

	fx.upstream.On("FetchOne", mock.Anything, "BTCUSDT").Return(stats("BTCUSDT", "43000", "10"), nil).Once()
	fx.upstream.On("FetchOne", mock.Anything, "BTCUSDT").Return(entities.SymbolStats{}, errUpstreamDown)

	_, source, err := fx.fetcher.FetchSymbol(ctx, "BTCUSDT")
	require.NoError(t, err)
	require.Equal(t, entities.SourceUpstream, source)

	time.Sleep(40 * time.Millisecond)

	got, source, err := fx.fetcher.FetchSymbol(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, entities.SourceStale, source)
	assert.True(t, source.FromCache())
	assert.True(t, decimal.NewFromInt(43000).Equal(got.LastPrice))
}

func TestFetchSymbol_NoDataAvailable(t *testing.T) {
	fx := newFixture(t, Options{}, time.Minute)

	fx.upstream.On("FetchOne", mock.Anything, "DOGEUSDT").Return(entities.SymbolStats{}, errUpstreamDown)

	_, _, err := fx.fetcher.FetchSymbol(context.Background(), "DOGEUSDT")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoDataAvailable)
	assert.ErrorIs(t, err, errUpstreamDown)

	var noData *NoDataAvailableError
	require.True(t, errors.As(err, &noData))
	assert.Equal(t, cache.SymbolKey("DOGEUSDT"), noData.Key)
	assert.Equal(t, resilience.StateClosed, noData.BreakerState)
}

func TestFetchSymbol_BreakerIsGlobalAcrossSymbols(t *testing.T) {
	fx := newFixture(t, Options{}, time.Minute)
	ctx := context.Background()

	for _, s := range []string{"AAAUSDT", "BBBUSDT", "CCCUSDT"} {
		fx.upstream.On("FetchOne", mock.Anything, s).Return(entities.SymbolStats{}, errUpstreamDown).Once()
		_, _, err := fx.fetcher.FetchSymbol(ctx, s)
		require.ErrorIs(t, err, errUpstreamDown)
	}
	require.Equal(t, "open", fx.fetcher.BreakerStateName())

	// un símbolo nunca visto también queda en corto
	_, _, err := fx.fetcher.FetchSymbol(ctx, "DDDUSDT")
	assert.ErrorIs(t, err, ErrNoDataAvailable)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)

	var noData *NoDataAvailableError
	require.True(t, errors.As(err, &noData))
	assert.Equal(t, resilience.StateOpen, noData.BreakerState)
	fx.upstream.AssertNotCalled(t, "FetchOne", mock.Anything, "DDDUSDT")
}

func TestFetchSymbol_OpenBreakerServesStale(t *testing.T) {
	fx := newFixture(t, Options{}, time.Minute)
	ctx := context.Background()

	fx.snapshots.SetSymbolStale(ctx, stats("BTCUSDT", "42000", "10"))
	fx.upstream.On("FetchOne", mock.Anything, mock.Anything).Return(entities.SymbolStats{}, errUpstreamDown)

	for i := 0; i < 3; i++ {
		_, source, err := fx.fetcher.FetchSymbol(ctx, "BTCUSDT")
		require.NoError(t, err)
		require.Equal(t, entities.SourceStale, source)
	}
	require.Equal(t, resilience.StateOpen, fx.fetcher.BreakerState().State)

	_, source, err := fx.fetcher.FetchSymbol(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, entities.SourceStale, source)
	fx.upstream.AssertNumberOfCalls(t, "FetchOne", 3)
}

func TestFetchSymbol_HalfOpenTrialRecovers(t *testing.T) {
	fx := newFixture(t, Options{}, 50*time.Millisecond)
	ctx := context.Background()

	fx.upstream.On("FetchOne", mock.Anything, "BTCUSDT").Return(entities.SymbolStats{}, errUpstreamDown).Times(3)
	for i := 0; i < 3; i++ {
		_, _, _ = fx.fetcher.FetchSymbol(ctx, "BTCUSDT")
	}
	require.Equal(t, "open", fx.fetcher.BreakerStateName())

	time.Sleep(80 * time.Millisecond)
	fx.upstream.On("FetchOne", mock.Anything, "BTCUSDT").Return(stats("BTCUSDT", "43000", "10"), nil).Once()

	_, source, err := fx.fetcher.FetchSymbol(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, entities.SourceUpstream, source)
	assert.Equal(t, "closed", fx.fetcher.BreakerStateName())
}

func TestFetchSymbol_UpstreamIgnoresCallerCancellation(t *testing.T) {
	fx := newFixture(t, Options{UpstreamTimeout: time.Second}, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fx.upstream.On("FetchOne", mock.Anything, "BTCUSDT").
		Run(func(args mock.Arguments) {
			upCtx := args.Get(0).(context.Context)
			assert.NoError(t, upCtx.Err())
			_, hasDeadline := upCtx.Deadline()
			assert.True(t, hasDeadline)
		}).
		Return(stats("BTCUSDT", "43000", "10"), nil).Once()

	_, source, err := fx.fetcher.FetchSymbol(ctx, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, entities.SourceUpstream, source)
}

func TestFetchSymbol_ConcurrentMissesCollapse(t *testing.T) {
	fx := newFixture(t, Options{}, time.Minute)
	ctx := context.Background()

	var calls atomic.Int32
	fx.upstream.On("FetchOne", mock.Anything, "SOLUSDT").
		Run(func(args mock.Arguments) {
			calls.Add(1)
			time.Sleep(100 * time.Millisecond)
		}).
		Return(stats("SOLUSDT", "95", "10"), nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := fx.fetcher.FetchSymbol(ctx, "SOLUSDT")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchSymbol_CacheOutageStillServesUpstream(t *testing.T) {
	up := &MockUpstream{}
	breaker := resilience.NewCircuitBreaker(resilience.Config{Name: t.Name(), FailMax: 3, ResetTimeout: time.Minute})
	fetcher := NewResilientFetcher(up, cache.NewSnapshotCache(failingBackend{}, 0), breaker, Options{})

	up.On("FetchOne", mock.Anything, "BTCUSDT").Return(stats("BTCUSDT", "43000", "10"), nil)

	_, source, err := fetcher.FetchSymbol(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, entities.SourceUpstream, source)
}

func TestRankTopSymbols(t *testing.T) {
	all := []entities.SymbolStats{
		stats("ETHBTC", "0.05", "99999"),
		stats("AUSDT", "1", "10"),
		stats("BUSDT", "1", "30"),
		stats("CUSDT", "1", "20"),
		stats("DUSDT", "1", "30"),
		stats("EUSDT", "1", "5"),
		stats("USDTBRL", "5", "50000"),
	}

	tests := []struct {
		name string
		topN int
		want []string
	}{
		{"ordena por volumen estable ante empates", 10, []string{"BUSDT", "DUSDT", "CUSDT", "AUSDT", "EUSDT"}},
		{"recorta a topN", 2, []string{"BUSDT", "DUSDT"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RankTopSymbols(all, "USDT", tt.topN)
			assert.Equal(t, tt.want, got.Symbols())
		})
	}

	assert.Empty(t, RankTopSymbols(nil, "USDT", 20))
}

func TestFetchTopSymbols(t *testing.T) {
	fx := newFixture(t, Options{TopN: 2}, time.Minute)
	ctx := context.Background()

	fx.upstream.On("FetchAll", mock.Anything).Return([]entities.SymbolStats{
		stats("BTCUSDT", "43000", "100"),
		stats("ETHBTC", "0.05", "900"),
		stats("ETHUSDT", "2250", "300"),
		stats("SOLUSDT", "95", "200"),
	}, nil).Once()

	list, source, err := fx.fetcher.FetchTopSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.SourceUpstream, source)
	assert.Equal(t, []string{"ETHUSDT", "SOLUSDT"}, list.Symbols())

	list, source, err = fx.fetcher.FetchTopSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.SourceCache, source)
	assert.Equal(t, []string{"ETHUSDT", "SOLUSDT"}, list.Symbols())

	fx.upstream.AssertNumberOfCalls(t, "FetchAll", 1)
}

func TestFetchTopSymbols_StaleAndNoData(t *testing.T) {
	fx := newFixture(t, Options{TopN: 20}, time.Minute)
	ctx := context.Background()

	fx.upstream.On("FetchAll", mock.Anything).Return(nil, errUpstreamDown)

	_, _, err := fx.fetcher.FetchTopSymbols(ctx)
	assert.ErrorIs(t, err, ErrNoDataAvailable)

	fx.snapshots.SetListStale(ctx, 20, entities.SymbolList{stats("BTCUSDT", "43000", "1")})

	list, source, err := fx.fetcher.FetchTopSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.SourceStale, source)
	assert.Equal(t, []string{"BTCUSDT"}, list.Symbols())
}

func TestResetAll(t *testing.T) {
	fx := newFixture(t, Options{}, time.Minute)
	ctx := context.Background()

	s := stats("BTCUSDT", "43000", "1")
	fx.snapshots.SetSymbol(ctx, s, time.Minute)
	fx.snapshots.SetSymbolStale(ctx, s)
	fx.snapshots.SetList(ctx, DefaultTopN, entities.SymbolList{s}, time.Minute)

	fx.upstream.On("FetchOne", mock.Anything, mock.Anything).Return(entities.SymbolStats{}, errUpstreamDown).Times(3)
	for _, sym := range []string{"AAAUSDT", "BBBUSDT", "CCCUSDT"} {
		_, _, _ = fx.fetcher.FetchSymbol(ctx, sym)
	}
	require.Equal(t, resilience.StateOpen, fx.fetcher.BreakerState().State)

	require.NoError(t, fx.fetcher.ResetAll(ctx))

	_, ok := fx.snapshots.GetSymbol(ctx, "BTCUSDT")
	assert.False(t, ok)
	_, ok = fx.snapshots.GetSymbolStale(ctx, "BTCUSDT")
	assert.False(t, ok)
	_, ok = fx.snapshots.GetList(ctx, DefaultTopN)
	assert.False(t, ok)

	snap := fx.fetcher.BreakerState()
	assert.Equal(t, resilience.StateClosed, snap.State)
	assert.Equal(t, 0, snap.ConsecutiveFailures)
}

func TestResetAll_ClearFailureStillResetsBreaker(t *testing.T) {
	up := &MockUpstream{}
	breaker := resilience.NewCircuitBreaker(resilience.Config{Name: t.Name(), FailMax: 3, ResetTimeout: time.Minute})
	fetcher := NewResilientFetcher(up, cache.NewSnapshotCache(failingBackend{}, 0), breaker, Options{})

	up.On("FetchOne", mock.Anything, mock.Anything).Return(entities.SymbolStats{}, errUpstreamDown)
	for i := 0; i < 3; i++ {
		_, _, _ = fetcher.FetchSymbol(context.Background(), "BTCUSDT")
	}
	require.Equal(t, "open", fetcher.BreakerStateName())

	err := fetcher.ResetAll(context.Background())
	assert.ErrorIs(t, err, cache.ErrCacheUnavailable)
	assert.Equal(t, "closed", fetcher.BreakerStateName())
}

func TestWarmup(t *testing.T) {
	fx := newFixture(t, Options{}, time.Minute)
	ctx := context.Background()

	fx.upstream.On("FetchAll", mock.Anything).Return([]entities.SymbolStats{stats("BTCUSDT", "1", "1")}, nil).Once()

	require.NoError(t, fx.fetcher.Warmup(ctx))

	_, source, err := fx.fetcher.FetchTopSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.SourceCache, source)
}
