package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"crypto-resilience-service/internal/domain/entities"
	"crypto-resilience-service/internal/domain/interfaces"
	"crypto-resilience-service/internal/infrastructure/config"
	"crypto-resilience-service/internal/infrastructure/logging"
	"crypto-resilience-service/internal/infrastructure/metrics"
)

const (
	DefaultBaseURL = "https://api4.binance.com/api/v3/ticker/24hr"
	DefaultTimeout = 10 * time.Second
	MaxBackoff     = 2 * time.Second

	endpointSymbol = "ticker_24hr_symbol"
	endpointAll    = "ticker_24hr_all"
)

// Config configura el cliente REST
type Config struct {
	Name              string
	BaseURL           string
	Timeout           time.Duration
	MaxRetries        int // intentos totales; 1 = sin reintentos
	RetryBackoff      time.Duration
	RequestsPerSecond float64 // 0 = sin límite de salida
	Burst             int
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{
		Name:              "binance",
		BaseURL:           DefaultBaseURL,
		Timeout:           DefaultTimeout,
		MaxRetries:        1,
		RetryBackoff:      200 * time.Millisecond,
		RequestsPerSecond: 10,
		Burst:             20,
	}
}

// ConfigFromSettings traduce la sección upstream de la configuración
func ConfigFromSettings(cfg config.UpstreamConfig) Config {
	return Config{
		Name:              cfg.Name,
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.Timeout,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	}
}

// RestClient implementa interfaces.UpstreamClient contra el endpoint 24hr de Binance
type RestClient struct {
	config  Config
	http    *resty.Client
	limiter *rate.Limiter
	logger  logging.ExternalAPILogger
}

var _ interfaces.UpstreamClient = (*RestClient)(nil)

// NewRestClient crea una nueva instancia del cliente REST
func NewRestClient(cfg Config) *RestClient {
	if cfg.Name == "" {
		cfg.Name = "binance"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "crypto-resilience-service")

	return &RestClient{
		config:  cfg,
		http:    client,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logging.ExternalAPI(),
	}
}

// FetchOne obtiene las estadísticas de 24h de un símbolo
func (c *RestClient) FetchOne(ctx context.Context, symbol string) (entities.SymbolStats, error) {
	body, err := c.get(ctx, endpointSymbol, map[string]string{"symbol": symbol})
	if err != nil {
		return entities.SymbolStats{}, err
	}

	var ticker Ticker24h
	if err := json.Unmarshal(body, &ticker); err != nil {
		return entities.SymbolStats{}, malformed(endpointSymbol, err)
	}
	if !ticker.valid() {
		return entities.SymbolStats{}, malformed(endpointSymbol, errors.New("missing symbol"))
	}

	return ticker.ToEntity(), nil
}

// FetchAll obtiene la foto completa de todos los símbolos
func (c *RestClient) FetchAll(ctx context.Context) ([]entities.SymbolStats, error) {
	body, err := c.get(ctx, endpointAll, nil)
	if err != nil {
		return nil, err
	}

	var tickers []Ticker24h
	if err := json.Unmarshal(body, &tickers); err != nil {
		return nil, malformed(endpointAll, err)
	}

	out := make([]entities.SymbolStats, 0, len(tickers))
	for _, t := range tickers {
		if !t.valid() {
			continue
		}
		out = append(out, t.ToEntity())
	}
	return out, nil
}

// get aplica el rate limit de salida y los reintentos configurados
func (c *RestClient) get(ctx context.Context, endpoint string, query map[string]string) ([]byte, error) {
	attempts := uint(c.config.MaxRetries)

	body, err := retry.DoWithData(
		func() ([]byte, error) {
			return c.doGet(ctx, endpoint, query)
		},
		retry.Attempts(attempts),
		retry.Delay(c.config.RetryBackoff),
		retry.MaxDelay(MaxBackoff),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			if n+1 >= attempts {
				return
			}
			metrics.RecordExternalAPIRetry(c.config.Name, endpoint, int(n+1))
			logging.Warn(ctx, "Upstream retry attempt", logging.Fields{
				logging.FieldExternalService:  c.config.Name,
				logging.FieldExternalEndpoint: endpoint,
				"attempt":                     n + 1,
				"max_attempts":                attempts,
				logging.FieldError:            err.Error(),
			})
		}),
	)
	if err != nil && !errors.Is(err, ErrUpstream) {
		// retry-go devuelve el error del contexto sin envolver si se cancela entre intentos
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	return body, err
}

// doGet realiza una única petición HTTP y clasifica el resultado
func (c *RestClient) doGet(ctx context.Context, endpoint string, query map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("outbound rate limit: %w", err)}
	}

	c.logger.RequestStarted(ctx, c.config.Name, endpoint, http.MethodGet)

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(c.config.BaseURL)
	durationMs := float64(time.Since(start).Nanoseconds()) / 1e6

	if err != nil {
		// 0 marca en las métricas que no hubo respuesta HTTP
		metrics.RecordExternalAPICall(c.config.Name, endpoint, 0, durationMs)
		transportErr := &TransportError{Endpoint: endpoint, Err: err}
		c.logger.RequestFailed(ctx, c.config.Name, endpoint, 0, transportErr, durationMs)
		return nil, transportErr
	}

	status := resp.StatusCode()
	metrics.RecordExternalAPICall(c.config.Name, endpoint, status, durationMs)

	if !resp.IsSuccess() {
		statusErr := &HTTPStatusError{Endpoint: endpoint, StatusCode: status}
		var apiErr apiError
		if json.Unmarshal(resp.Body(), &apiErr) == nil {
			statusErr.Code = apiErr.Code
			statusErr.Message = apiErr.Msg
		}
		c.logger.RequestFailed(ctx, c.config.Name, endpoint, status, statusErr, durationMs)
		return nil, statusErr
	}

	c.logger.RequestCompleted(ctx, c.config.Name, endpoint, status, durationMs)
	return resp.Body(), nil
}
