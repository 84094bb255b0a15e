package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const btcTicker = `{"symbol":"BTCUSDT","priceChange":"-94.99999800","priceChangePercent":"-95.960",` +
	`"lastPrice":"4.00000200","volume":"8913.30000000","highPrice":"100.00000000","lowPrice":"0.10000000"}`

func newTestClient(url string, retries int) *RestClient {
	return NewRestClient(Config{
		Name:         "binance-test",
		BaseURL:      url,
		Timeout:      time.Second,
		MaxRetries:   retries,
		RetryBackoff: time.Millisecond,
	})
}

func TestRestClient_FetchOne(t *testing.T) {
	var gotSymbol string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("symbol")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(btcTicker))
	}))
	defer server.Close()

	stats, err := newTestClient(server.URL, 1).FetchOne(context.Background(), "BTCUSDT")
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", gotSymbol)
	assert.Equal(t, "BTCUSDT", stats.Symbol)
	assert.True(t, decimal.RequireFromString("4.000002").Equal(stats.LastPrice))
	assert.True(t, decimal.RequireFromString("-95.96").Equal(stats.PriceChangePercent))
	assert.True(t, decimal.RequireFromString("8913.3").Equal(stats.Volume))
	assert.True(t, decimal.RequireFromString("100").Equal(stats.HighPrice))
	assert.True(t, decimal.RequireFromString("0.1").Equal(stats.LowPrice))
}

func TestRestClient_FetchOne_NumericFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbol":"ethusdt","priceChange":1.5,"priceChangePercent":0.07,` +
			`"lastPrice":2250.25,"volume":1000,"highPrice":2300,"lowPrice":2200}`))
	}))
	defer server.Close()

	stats, err := newTestClient(server.URL, 1).FetchOne(context.Background(), "ETHUSDT")
	require.NoError(t, err)

	assert.Equal(t, "ETHUSDT", stats.Symbol)
	assert.True(t, decimal.RequireFromString("2250.25").Equal(stats.LastPrice))
	assert.True(t, decimal.NewFromInt(1000).Equal(stats.Volume))
}

func TestRestClient_FetchAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("symbol"))
		_, _ = w.Write([]byte(`[` + btcTicker + `,{"symbol":"","lastPrice":"1"},` +
			`{"symbol":"ETHBTC","lastPrice":"0.05","volume":"10"}]`))
	}))
	defer server.Close()

	all, err := newTestClient(server.URL, 1).FetchAll(context.Background())
	require.NoError(t, err)

	require.Len(t, all, 2)
	assert.Equal(t, "BTCUSDT", all[0].Symbol)
	assert.Equal(t, "ETHBTC", all[1].Symbol)
}

func TestRestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		retries     int
		wantHits    int32
		wantStatus  int
		wantMessage string
		malformed   bool
	}{
		{
			name:        "símbolo inválido no se reintenta",
			status:      http.StatusBadRequest,
			body:        `{"code":-1121,"msg":"Invalid symbol."}`,
			retries:     3,
			wantHits:    1,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid symbol.",
		},
		{
			name:       "5xx se reintenta hasta agotar intentos",
			status:     http.StatusBadGateway,
			body:       `bad gateway`,
			retries:    3,
			wantHits:   3,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "429 sin reintentos configurados hace una sola llamada",
			status:     http.StatusTooManyRequests,
			retries:    1,
			wantHits:   1,
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:      "payload corrupto",
			status:    http.StatusOK,
			body:      `{"symbol":`,
			retries:   3,
			wantHits:  1,
			malformed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL, tt.retries).FetchOne(context.Background(), "BTCUSDT")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUpstream)
			assert.Equal(t, tt.wantHits, hits.Load())

			if tt.malformed {
				assert.ErrorIs(t, err, ErrMalformedPayload)
				return
			}

			var statusErr *HTTPStatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.wantStatus, statusErr.StatusCode)
			assert.Equal(t, tt.wantMessage, statusErr.Message)
		})
	}
}

func TestRestClient_RetryRecovers(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(btcTicker))
	}))
	defer server.Close()

	stats, err := newTestClient(server.URL, 3).FetchOne(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", stats.Symbol)
	assert.Equal(t, int32(3), hits.Load())
}

func TestRestClient_TransportErrors(t *testing.T) {
	t.Run("servidor caído", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := newTestClient(url, 1).FetchAll(context.Background())
		require.Error(t, err)

		var transportErr *TransportError
		assert.True(t, errors.As(err, &transportErr))
		assert.ErrorIs(t, err, ErrUpstream)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		client := NewRestClient(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond})

		_, err := client.FetchOne(context.Background(), "BTCUSDT")
		require.Error(t, err)

		var transportErr *TransportError
		assert.True(t, errors.As(err, &transportErr))
	})

	t.Run("contexto cancelado", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestClient("http://127.0.0.1:1", 3).FetchOne(ctx, "BTCUSDT")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUpstream)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewRestClient_Defaults(t *testing.T) {
	c := NewRestClient(Config{})

	assert.Equal(t, "binance", c.config.Name)
	assert.Equal(t, DefaultBaseURL, c.config.BaseURL)
	assert.Equal(t, DefaultTimeout, c.config.Timeout)
	assert.Equal(t, 1, c.config.MaxRetries)
}
