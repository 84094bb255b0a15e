package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "crypto-resilience-service/internal/docs"
	"crypto-resilience-service/internal/domain/interfaces"
	"crypto-resilience-service/internal/infrastructure/config"
	"crypto-resilience-service/internal/infrastructure/metrics"
	"crypto-resilience-service/internal/infrastructure/ratelimit"
	"crypto-resilience-service/internal/infrastructure/web/handlers"
	"crypto-resilience-service/internal/infrastructure/web/middleware"
)

// NewRouter registra las rutas y envuelve el router con la cadena de middleware:
// tracing -> logging -> metrics -> rate limit -> CORS -> rutas
func NewRouter(service interfaces.MarketDataService, rateLimit config.RateLimitConfig) http.Handler {
	crypto := handlers.NewCryptoHandler(service)
	health := handlers.NewHealthHandler(service)

	r := mux.NewRouter()

	r.HandleFunc("/", crypto.Home).Methods(http.MethodGet)

	// con y sin barra final
	for _, suffix := range []string{"", "/"} {
		r.HandleFunc("/api/crypto"+suffix, crypto.GetTopSymbols).Methods(http.MethodGet)
		r.HandleFunc("/api/crypto/{symbol}"+suffix, crypto.GetSymbol).Methods(http.MethodGet)
		r.HandleFunc("/api/admin/clear-cache"+suffix, crypto.ClearCache).Methods(http.MethodPost)
	}

	r.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", health.Ready).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Handle("/docs", http.RedirectHandler("/swagger/index.html", http.StatusMovedPermanently))

	var handler http.Handler = r
	handler = middleware.CORSMiddleware(handler)
	handler = ratelimit.NewMiddleware(rateLimit).Handler(handler)
	handler = metrics.HTTPMetricsMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestTracingMiddleware(handler)

	return handler
}
