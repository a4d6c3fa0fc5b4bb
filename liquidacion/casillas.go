// Package liquidacion implements the per-document tax settlement engine:
// the casilla rule table, the provider catalog index, the withholding
// calculator, the row validator and the ledger-ready CSV export.
package liquidacion

import (
	"strings"

	"bitbucket.org/contafacil/facturas_backend/models"
)

// CasillasOrden is the fixed processing order of the seven casillas.
// TOTAL_NETO goes last because its value derives from the other six.
var CasillasOrden = []models.Casilla{
	models.CasillaSubtotal,
	models.CasillaIVA,
	models.CasillaINC,
	models.CasillaReteFuente,
	models.CasillaReteICA,
	models.CasillaReteIVA,
	models.CasillaTotalNeto,
}

// Retenciones marks the three withholding casillas.
var Retenciones = map[models.Casilla]bool{
	models.CasillaReteFuente: true,
	models.CasillaReteICA:    true,
	models.CasillaReteIVA:    true,
}

// CasillaFieldMap maps each casilla to the request/finding field name.
var CasillaFieldMap = map[models.Casilla]string{
	models.CasillaSubtotal:   "subtotal",
	models.CasillaIVA:        "iva",
	models.CasillaINC:        "inc",
	models.CasillaReteFuente: "retefuente",
	models.CasillaReteICA:    "reteica",
	models.CasillaReteIVA:    "reteiva",
	models.CasillaTotalNeto:  "total_neto",
}

// CatalogoResponseKeys maps each casilla to its key in the catalog query
// response. The seven keys are part of the external contract.
var CatalogoResponseKeys = map[models.Casilla]string{
	models.CasillaSubtotal:   "subtotales",
	models.CasillaIVA:        "iva",
	models.CasillaINC:        "inc",
	models.CasillaReteFuente: "retefuente",
	models.CasillaReteICA:    "reteica",
	models.CasillaReteIVA:    "reteiva",
	models.CasillaTotalNeto:  "totalneto",
}

// CuentaExclusivaINC is the single account code reserved for the INC
// casilla. It doubles as a "not applicable" sentinel and is rejected in
// every other casilla regardless of its prefix family.
const CuentaExclusivaINC = "231053152007"

const (
	MensajeCuentaExclusivaINC = "La cuenta 231053152007 es exclusiva de INC."
	MensajeCasillaIncorrecta  = "La cuenta seleccionada no corresponde a la casilla esperada."
)

// ReglaCasilla describes which accounts a casilla accepts.
type ReglaCasilla struct {
	Prefijos           []string
	Excluir            []string
	Naturaleza         models.Naturaleza
	MensajeSinOpciones string
}

var reglasCasilla = map[models.Casilla]ReglaCasilla{
	models.CasillaSubtotal: {
		Prefijos:           []string{"2310", "2432"},
		Excluir:            []string{CuentaExclusivaINC},
		Naturaleza:         models.NaturalezaDebito,
		MensajeSinOpciones: "No hay opciones disponibles para esta casilla; parametrice el proveedor.",
	},
	models.CasillaIVA: {
		Prefijos:           []string{"2408"},
		Naturaleza:         models.NaturalezaDebito,
		MensajeSinOpciones: "No hay opciones disponibles para esta casilla; parametrice el proveedor.",
	},
	models.CasillaINC: {
		Prefijos:           []string{CuentaExclusivaINC},
		Naturaleza:         models.NaturalezaDebito,
		MensajeSinOpciones: "No hay opciones disponibles para esta casilla; parametrice el proveedor.",
	},
	models.CasillaReteFuente: {
		Prefijos:           []string{"2365"},
		Naturaleza:         models.NaturalezaCredito,
		MensajeSinOpciones: "El proveedor no tiene parametrizadas opciones para ReteFuente.",
	},
	models.CasillaReteICA: {
		Prefijos:           []string{"2368"},
		Naturaleza:         models.NaturalezaCredito,
		MensajeSinOpciones: "El proveedor no tiene parametrizadas opciones para esta retención.",
	},
	models.CasillaReteIVA: {
		Prefijos:           []string{"2367"},
		Naturaleza:         models.NaturalezaCredito,
		MensajeSinOpciones: "El proveedor no tiene parametrizadas opciones para esta retención.",
	},
	models.CasillaTotalNeto: {
		Prefijos:           []string{"2335"},
		Naturaleza:         models.NaturalezaDebito,
		MensajeSinOpciones: "No hay opciones disponibles para esta casilla; parametrice el proveedor.",
	},
}

// CasillaAyuda is the per-casilla help text shown next to the selector.
var CasillaAyuda = map[models.Casilla]string{
	models.CasillaSubtotal:   "2310% (excepto 231053152007) o 2432%.",
	models.CasillaIVA:        "2408%.",
	models.CasillaINC:        "Solo 231053152007.",
	models.CasillaReteFuente: "2365% parametrizada por proveedor.",
	models.CasillaReteICA:    "2368% parametrizada (porcentaje o por-mil).",
	models.CasillaReteIVA:    "2367% parametrizada.",
	models.CasillaTotalNeto:  "2335%.",
}

// ReglaDe returns the rule entry for a casilla.
func ReglaDe(casilla models.Casilla) ReglaCasilla {
	return reglasCasilla[casilla]
}

// EsCuentaExclusivaINC reports whether the code is the INC-only account.
func EsCuentaExclusivaINC(codigo string) bool {
	return codigo == CuentaExclusivaINC
}

// esSentinelNoAplica recognizes the "not applicable" markers that arrive
// mixed with real codes in the account field.
func esSentinelNoAplica(codigo string) bool {
	switch strings.ToUpper(strings.TrimSpace(codigo)) {
	case "N/A", "NA", "BSP":
		return true
	}
	return false
}

// ValidarCuentaParaCasilla checks an account code against a casilla's
// rules. It returns the user-facing message on rejection and "" when the
// code is acceptable. An empty code is always acceptable: with no account
// selected there is nothing to validate.
func ValidarCuentaParaCasilla(casilla models.Casilla, codigo string) string {
	if codigo == "" {
		return ""
	}

	// INC admits only its exclusive account and the "no aplica" markers.
	if casilla == models.CasillaINC {
		if codigo == CuentaExclusivaINC {
			return ""
		}
		if esSentinelNoAplica(codigo) {
			return ""
		}
		return MensajeCuentaExclusivaINC
	}

	// The INC-only account is checked before the prefix family so it can
	// never leak into another casilla through a matching prefix.
	if EsCuentaExclusivaINC(codigo) {
		return MensajeCuentaExclusivaINC
	}

	reglas := reglasCasilla[casilla]
	for _, excluido := range reglas.Excluir {
		if codigo == excluido {
			return MensajeCasillaIncorrecta
		}
	}

	if len(reglas.Prefijos) > 0 {
		for _, prefijo := range reglas.Prefijos {
			if strings.HasPrefix(codigo, prefijo) {
				return ""
			}
		}
		return MensajeCasillaIncorrecta
	}
	return ""
}
