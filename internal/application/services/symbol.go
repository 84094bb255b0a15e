package services

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const symbolRule = "required,alphanum,min=2,max=20"

var symbolValidator = validator.New()

// NormalizeSymbol recorta y pasa a mayúsculas; "btcusdt " y "BTCUSDT" son la misma clave
func NormalizeSymbol(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))

	if err := symbolValidator.Var(symbol, symbolRule); err != nil {
		return "", fmt.Errorf("%w: %q must be 2-20 alphanumeric characters", ErrInvalidSymbol, raw)
	}
	return symbol, nil
}
