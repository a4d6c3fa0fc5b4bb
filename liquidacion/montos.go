package liquidacion

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseMonto canonicalizes a raw amount string into an exact decimal.
// It strips currency symbols and whitespace (including NBSP), then picks
// the decimal separator: a single comma after the last dot means comma
// decimals with dot grouping, anything else means dot decimals with comma
// grouping. Unparseable input degrades to zero, never to an error.
func ParseMonto(texto string) decimal.Decimal {
	limpio := strings.TrimSpace(texto)
	limpio = strings.ReplaceAll(limpio, "$", "")
	limpio = strings.ReplaceAll(limpio, "\u00a0", "")
	limpio = strings.ReplaceAll(limpio, " ", "")
	limpio = strings.ReplaceAll(limpio, "\t", "")
	if limpio == "" {
		return decimal.Zero
	}

	comas := strings.Count(limpio, ",")
	if comas == 1 && strings.LastIndex(limpio, ",") > strings.LastIndex(limpio, ".") {
		limpio = strings.ReplaceAll(limpio, ".", "")
		limpio = strings.Replace(limpio, ",", ".", 1)
	} else {
		limpio = strings.ReplaceAll(limpio, ",", "")
	}

	valor, err := decimal.NewFromString(limpio)
	if err != nil {
		return decimal.Zero
	}
	return valor
}

// FormatearMonto renders a fixed-point value at the requested number of
// decimal places. shopspring's StringFixed rounds ties away from zero,
// which is the round-half-up the ledger import expects.
func FormatearMonto(valor decimal.Decimal, decimales int32) string {
	return valor.StringFixed(decimales)
}
