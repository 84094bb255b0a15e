package binance

import (
	"strings"

	"github.com/shopspring/decimal"

	"crypto-resilience-service/internal/domain/entities"
)

// Ticker24h es el objeto de /api/v3/ticker/24hr. Binance manda los números
// como strings; decimal acepta tanto "123.4" como 123.4.
type Ticker24h struct {
	Symbol             string          `json:"symbol"`
	PriceChange        decimal.Decimal `json:"priceChange"`
	PriceChangePercent decimal.Decimal `json:"priceChangePercent"`
	LastPrice          decimal.Decimal `json:"lastPrice"`
	Volume             decimal.Decimal `json:"volume"`
	HighPrice          decimal.Decimal `json:"highPrice"`
	LowPrice           decimal.Decimal `json:"lowPrice"`
}

// apiError es el cuerpo de error de Binance: {"code":-1121,"msg":"Invalid symbol."}
type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// ToEntity convierte el ticker al modelo de dominio
func (t Ticker24h) ToEntity() entities.SymbolStats {
	return entities.SymbolStats{
		Symbol:             strings.ToUpper(t.Symbol),
		LastPrice:          t.LastPrice,
		PriceChange:        t.PriceChange,
		PriceChangePercent: t.PriceChangePercent,
		Volume:             t.Volume,
		HighPrice:          t.HighPrice,
		LowPrice:           t.LowPrice,
	}
}

func (t Ticker24h) valid() bool {
	return strings.TrimSpace(t.Symbol) != ""
}
