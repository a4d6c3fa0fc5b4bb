package liquidacion

import (
	"encoding/csv"
	"io"

	"bitbucket.org/contafacil/facturas_backend/models"
)

// NombreArchivoCSV is the fixed download filename for the export.
const NombreArchivoCSV = "liquidacion_facturas.csv"

// MarcadorSinCuenta is the placeholder written in an account column when
// the casilla has no applicable account.
const MarcadorSinCuenta = "N/A"

// EncabezadoCSV is the fixed 24-column header. Order and literal labels
// are consumed by the downstream ledger import and must not change.
var EncabezadoCSV = []string{
	"Tipo de documento",
	"CUFE/CUDE",
	"NIT",
	"Proveedor",
	"Fecha",
	"Descripción",
	"Prefijo+Folio",
	"Sub total",
	"Cuenta Sub total",
	"IVA",
	"Cuenta IVA",
	"INC",
	"Cuenta INC",
	"% ReteFuente",
	"ReteFuente",
	"Cuenta ReteFuente",
	"% ReteICA",
	"ReteICA",
	"Cuenta ReteICA",
	"% ReteIVA",
	"ReteIVA",
	"Cuenta ReteIVA",
	"Total neto",
	"Cuenta Total neto",
}

func celdaCuenta(salida *ResultadoCasilla) string {
	if salida.Cuenta == nil || salida.Cuenta.Cuenta == nil || salida.Valor.IsZero() {
		return MarcadorSinCuenta
	}
	return salida.Cuenta.Cuenta.Codigo
}

// celdaRetencion renders a withholding value with the nature-to-sign
// convention: the casilla requires credit nature, so the amount posts
// negative.
func celdaRetencion(casilla models.Casilla, salida *ResultadoCasilla) string {
	signo := SignoPorNaturaleza(ReglaDe(casilla).Naturaleza)
	return FormatearMonto(salida.Valor.Mul(signo), 2)
}

// RenderCSV writes the settlement export: the fixed header plus one data
// row per settlement row, UTF-8 encoded.
func RenderCSV(w io.Writer, filas []*ResultadoFila) error {
	escritor := csv.NewWriter(w)
	if err := escritor.Write(EncabezadoCSV); err != nil {
		return err
	}

	if len(filas) == 0 {
		vacia := make([]string, len(EncabezadoCSV))
		vacia[0] = "Sin datos"
		if err := escritor.Write(vacia); err != nil {
			return err
		}
		escritor.Flush()
		return escritor.Error()
	}

	for _, fila := range filas {
		registro := []string{
			fila.TipoDocumento,
			fila.Cufe,
			fila.Nit,
			fila.Proveedor,
			fila.Fecha,
			fila.Descripcion,
			fila.PrefijoFolio,
			FormatearMonto(fila.Subtotal.Valor, 2),
			celdaCuenta(&fila.Subtotal),
			FormatearMonto(fila.Iva.Valor, 2),
			celdaCuenta(&fila.Iva),
			FormatearMonto(fila.Inc.Valor, 2),
			celdaCuenta(&fila.Inc),
			FormatearMonto(fila.Retefuente.Porcentaje, 4),
			celdaRetencion(models.CasillaReteFuente, &fila.Retefuente),
			celdaCuenta(&fila.Retefuente),
			FormatearMonto(fila.Reteica.Porcentaje, 4),
			celdaRetencion(models.CasillaReteICA, &fila.Reteica),
			celdaCuenta(&fila.Reteica),
			FormatearMonto(fila.Reteiva.Porcentaje, 4),
			celdaRetencion(models.CasillaReteIVA, &fila.Reteiva),
			celdaCuenta(&fila.Reteiva),
			FormatearMonto(fila.TotalNeto.Valor, 2),
			celdaCuenta(&fila.TotalNeto),
		}
		if err := escritor.Write(registro); err != nil {
			return err
		}
	}

	escritor.Flush()
	return escritor.Error()
}
