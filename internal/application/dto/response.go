package dto

import "time"

// SymbolDetailResponse represents the response from /api/crypto/{symbol}
// @Description 24h statistics for a single trading symbol
type SymbolDetailResponse struct {
	Symbol              string  `json:"symbol" example:"BTCUSDT"`                               // Trading symbol
	Price               float64 `json:"price" example:"43250.12"`                               // Last traded price
	Change24h           float64 `json:"change_24h" example:"-120.5"`                            // Absolute price change over 24h
	ChangePercent24h    float64 `json:"change_percent_24h" example:"-0.278"`                    // Percentage change over 24h
	Volume24h           float64 `json:"volume_24h" example:"18234.77"`                          // Base asset volume over 24h
	High24h             float64 `json:"high_24h" example:"43900"`                               // Highest price over 24h
	Low24h              float64 `json:"low_24h" example:"42800.5"`                              // Lowest price over 24h
	FromCache           bool    `json:"from_cache" example:"false"`                             // True when served from the live or stale cache slot
	CircuitBreakerState string  `json:"circuit_breaker_state" example:"closed"`                 // closed, open or half-open
	Source              string  `json:"source" example:"upstream" enums:"cache,upstream,stale"` // Where the data came from
}

// SymbolSummary represents one entry of the top list
// @Description Summary of a symbol inside the ranking
type SymbolSummary struct {
	Symbol           string  `json:"symbol" example:"ETHUSDT"`
	Price            float64 `json:"price" example:"2250.25"`
	ChangePercent24h float64 `json:"change_percent_24h" example:"1.12"`
	Volume24h        float64 `json:"volume_24h" example:"412345.6"`
}

// SymbolListResponse represents the response from /api/crypto
// @Description Top symbols by 24h volume in the configured quote currency
type SymbolListResponse struct {
	Count               int             `json:"count" example:"20"`
	FromCache           bool            `json:"from_cache" example:"true"`
	CircuitBreakerState string          `json:"circuit_breaker_state" example:"closed"`
	Source              string          `json:"source" example:"cache" enums:"cache,upstream,stale"`
	Results             []SymbolSummary `json:"results"`
}

// ErrorResponse represents a standard error response for endpoints
// @Description Standard error response, always carrying the breaker state
type ErrorResponse struct {
	Error               string `json:"error" example:"NO_DATA_AVAILABLE"`                                 // Main error code
	Message             string `json:"message,omitempty" example:"Failed to fetch data from Binance API"` // Detailed error description
	CircuitBreakerState string `json:"circuit_breaker_state" example:"open"`                              // Breaker state at the time of the error
}

// MessageResponse is returned by admin operations
// @Description Plain confirmation message
type MessageResponse struct {
	Message string `json:"message" example:"Cache cleared and circuit breaker reset"`
}

// HomeEndpoints lists the public routes
type HomeEndpoints struct {
	CryptoList   string `json:"crypto_list" example:"/api/crypto/"`
	CryptoDetail string `json:"crypto_detail" example:"/api/crypto/{symbol}/"`
	Admin        string `json:"admin" example:"/api/admin/clear-cache/"`
}

// HomeResponse represents the API home
// @Description API home with the available endpoints
type HomeResponse struct {
	Message   string        `json:"message" example:"Crypto API is running!"`
	Endpoints HomeEndpoints `json:"endpoints"`
}

// HealthResponse represents the health check response with service status
// @Description Health check response with service status
type HealthResponse struct {
	Status              string            `json:"status" example:"healthy" enums:"healthy,ready,unhealthy"`
	Timestamp           time.Time         `json:"timestamp" example:"2024-01-01T10:30:00Z"`
	CircuitBreakerState string            `json:"circuit_breaker_state,omitempty" example:"closed"`
	Services            map[string]string `json:"services,omitempty"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(code, message, breakerState string) *ErrorResponse {
	return &ErrorResponse{
		Error:               code,
		Message:             message,
		CircuitBreakerState: breakerState,
	}
}

// NewHomeResponse devuelve la portada con las rutas públicas
func NewHomeResponse() *HomeResponse {
	return &HomeResponse{
		Message: "Crypto API is running!",
		Endpoints: HomeEndpoints{
			CryptoList:   "/api/crypto/",
			CryptoDetail: "/api/crypto/{symbol}/",
			Admin:        "/api/admin/clear-cache/",
		},
	}
}

// NewHealthResponse creates a health check response
func NewHealthResponse(status, breakerState string, services map[string]string) *HealthResponse {
	return &HealthResponse{
		Status:              status,
		Timestamp:           time.Now().UTC(),
		CircuitBreakerState: breakerState,
		Services:            services,
	}
}
