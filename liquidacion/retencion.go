package liquidacion

import (
	"bitbucket.org/contafacil/facturas_backend/models"
	"github.com/shopspring/decimal"
)

var (
	cien = decimal.NewFromInt(100)
	mil  = decimal.NewFromInt(1000)
)

// CalcularRetencion applies a catalog entry's percentage agreement to the
// base amount. Per-mille mode divides by 1000, percentage mode (the
// default when unset) by 100. The arithmetic stays exact; rounding to
// display precision happens only at formatting time.
func CalcularRetencion(base decimal.Decimal, catalogo *models.CuentaContableProveedor) (decimal.Decimal, decimal.Decimal) {
	porcentaje := decimal.Zero
	if catalogo.Porcentaje != nil {
		porcentaje = *catalogo.Porcentaje
	}
	modo := catalogo.ModoCalculo
	if modo == "" {
		modo = models.ModoCalculoPorcentaje
	}

	var valor decimal.Decimal
	if modo == models.ModoCalculoPorMil {
		valor = base.Mul(porcentaje).Div(mil)
	} else {
		valor = base.Mul(porcentaje).Div(cien)
	}
	return porcentaje, valor
}

// SignoPorNaturaleza maps the account nature to the export sign
// convention: debit amounts post positive, credit amounts negative.
func SignoPorNaturaleza(naturaleza models.Naturaleza) decimal.Decimal {
	if naturaleza == models.NaturalezaDebito {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}
