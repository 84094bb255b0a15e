package entities

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SymbolStats es la foto de 24h de un símbolo tal como la publica el upstream
type SymbolStats struct {
	Symbol             string          `json:"symbol"`
	LastPrice          decimal.Decimal `json:"last_price"`
	PriceChange        decimal.Decimal `json:"price_change"`
	PriceChangePercent decimal.Decimal `json:"price_change_percent"`
	Volume             decimal.Decimal `json:"volume"`
	HighPrice          decimal.Decimal `json:"high_price"`
	LowPrice           decimal.Decimal `json:"low_price"`
}

// HasQuote reports whether the symbol trades against the given quote currency
func (s SymbolStats) HasQuote(quote string) bool {
	return quote != "" && strings.HasSuffix(s.Symbol, quote)
}

// SymbolList is the ranked top-by-volume snapshot served by the list endpoint
type SymbolList []SymbolStats

// Symbols returns the symbol names in list order
func (l SymbolList) Symbols() []string {
	out := make([]string, len(l))
	for i, s := range l {
		out[i] = s.Symbol
	}
	return out
}
