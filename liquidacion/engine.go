package liquidacion

import (
	"encoding/json"
	"strconv"
	"strings"

	"bitbucket.org/contafacil/facturas_backend/models"
	"github.com/shopspring/decimal"
)

// ModoValidacion selects the engine policy: estricto blocks export on any
// finding, permisivo reports findings as advisory, keeps best-effort
// values and tries an unscoped catalog lookup for unresolved accounts.
type ModoValidacion string

const (
	ModoEstricto  ModoValidacion = "estricto"
	ModoPermisivo ModoValidacion = "permisivo"
)

const (
	MensajeCuentaObligatoria = "El campo de cuenta es obligatorio porque el monto es distinto de cero."
	MensajeCuentaAjena       = "La cuenta seleccionada no pertenece al proveedor o a la casilla indicada."
	MensajeNaturaleza        = "La naturaleza de la cuenta no coincide con la casilla."
	MensajeCuerpoInvalido    = "El cuerpo debe ser una lista de filas de liquidación."
)

// FilaLiquidacion is the ephemeral input for one settlement row. Amounts
// and percentages arrive as raw strings exactly as submitted; account
// fields may carry a catalog entry id or a "no aplica" marker.
type FilaLiquidacion struct {
	TipoDocumento string `json:"tipo_documento"`
	Cufe          string `json:"cufe"`
	ProveedorID   int    `json:"proveedor_id"`
	Nit           string `json:"nit"`
	Proveedor     string `json:"proveedor"`
	Fecha         string `json:"fecha"`
	Descripcion   string `json:"descripcion"`
	PrefijoFolio  string `json:"prefijo_folio"`

	Subtotal   string `json:"subtotal"`
	Iva        string `json:"iva"`
	Inc        string `json:"inc"`
	Retefuente string `json:"retefuente"`
	Reteica    string `json:"reteica"`
	Reteiva    string `json:"reteiva"`
	TotalNeto  string `json:"total_neto"`

	RetefuentePct string `json:"retefuente_pct"`
	ReteicaPct    string `json:"reteica_pct"`
	ReteivaPct    string `json:"reteiva_pct"`

	CuentaSubtotal   string `json:"cuenta_subtotal"`
	CuentaIva        string `json:"cuenta_iva"`
	CuentaInc        string `json:"cuenta_inc"`
	CuentaRetefuente string `json:"cuenta_retefuente"`
	CuentaReteica    string `json:"cuenta_reteica"`
	CuentaReteiva    string `json:"cuenta_reteiva"`
	CuentaTotalNeto  string `json:"cuenta_total_neto"`
}

// Monto returns the raw amount submitted for a casilla.
func (f *FilaLiquidacion) Monto(casilla models.Casilla) string {
	switch casilla {
	case models.CasillaSubtotal:
		return f.Subtotal
	case models.CasillaIVA:
		return f.Iva
	case models.CasillaINC:
		return f.Inc
	case models.CasillaReteFuente:
		return f.Retefuente
	case models.CasillaReteICA:
		return f.Reteica
	case models.CasillaReteIVA:
		return f.Reteiva
	case models.CasillaTotalNeto:
		return f.TotalNeto
	}
	return ""
}

// CuentaElegida returns the raw account field submitted for a casilla.
func (f *FilaLiquidacion) CuentaElegida(casilla models.Casilla) string {
	switch casilla {
	case models.CasillaSubtotal:
		return f.CuentaSubtotal
	case models.CasillaIVA:
		return f.CuentaIva
	case models.CasillaINC:
		return f.CuentaInc
	case models.CasillaReteFuente:
		return f.CuentaRetefuente
	case models.CasillaReteICA:
		return f.CuentaReteica
	case models.CasillaReteIVA:
		return f.CuentaReteiva
	case models.CasillaTotalNeto:
		return f.CuentaTotalNeto
	}
	return ""
}

// PorcentajeManual returns the fallback percentage the user supplied for
// a withholding casilla. It is display-only: it never feeds the
// calculator when a catalog entry resolves.
func (f *FilaLiquidacion) PorcentajeManual(casilla models.Casilla) string {
	switch casilla {
	case models.CasillaReteFuente:
		return f.RetefuentePct
	case models.CasillaReteICA:
		return f.ReteicaPct
	case models.CasillaReteIVA:
		return f.ReteivaPct
	}
	return ""
}

// SeleccionCuenta is the account field resolved at the boundary: either
// no selection (empty or a "no aplica" marker) or a catalog entry id.
// The engine core never compares sentinel strings.
type SeleccionCuenta struct {
	Elegida bool
	ID      int
}

func parseSeleccion(raw string) SeleccionCuenta {
	limpio := strings.TrimSpace(raw)
	if limpio == "" || esSentinelNoAplica(limpio) {
		return SeleccionCuenta{}
	}
	id, err := strconv.Atoi(limpio)
	if err != nil {
		// Chosen but unresolvable; resolution will report it.
		return SeleccionCuenta{Elegida: true}
	}
	return SeleccionCuenta{Elegida: true, ID: id}
}

// Hallazgo is one validation finding attached to a (fila, campo) pair.
type Hallazgo struct {
	Fila    int    `json:"fila"`
	Cufe    string `json:"cufe"`
	Campo   string `json:"campo"`
	Mensaje string `json:"mensaje"`
}

// ResultadoCasilla is the computed outcome of one casilla.
type ResultadoCasilla struct {
	Casilla     models.Casilla
	Cuenta      *models.CuentaContableProveedor
	Porcentaje  decimal.Decimal
	Valor       decimal.Decimal
	Naturaleza  models.Naturaleza
	SinOpciones bool
}

func (r ResultadoCasilla) MarshalJSON() ([]byte, error) {
	salida := struct {
		Monto        string  `json:"monto"`
		CuentaID     *int    `json:"cuenta_id"`
		CuentaCodigo string  `json:"cuenta_codigo,omitempty"`
		Porcentaje   *string `json:"porcentaje,omitempty"`
		Naturaleza   string  `json:"naturaleza"`
		SinOpciones  bool    `json:"sin_opciones"`
	}{
		Monto:       FormatearMonto(r.Valor, 2),
		Naturaleza:  string(r.Naturaleza),
		SinOpciones: r.SinOpciones,
	}
	if r.Cuenta != nil {
		id := r.Cuenta.ID
		salida.CuentaID = &id
		if r.Cuenta.Cuenta != nil {
			salida.CuentaCodigo = r.Cuenta.Cuenta.Codigo
		}
	}
	if Retenciones[r.Casilla] {
		pct := FormatearMonto(r.Porcentaje, 4)
		salida.Porcentaje = &pct
	}
	return json.Marshal(salida)
}

// ResultadoFila is one row's full settlement outcome.
type ResultadoFila struct {
	Fila          int
	TipoDocumento string
	Cufe          string
	Nit           string
	Proveedor     string
	Fecha         string
	Descripcion   string
	PrefijoFolio  string

	Subtotal   ResultadoCasilla
	Iva        ResultadoCasilla
	Inc        ResultadoCasilla
	Retefuente ResultadoCasilla
	Reteica    ResultadoCasilla
	Reteiva    ResultadoCasilla
	TotalNeto  ResultadoCasilla

	Errores           []Hallazgo
	ListaParaExportar bool
}

// PorCasilla returns the outcome slot for a casilla.
func (r *ResultadoFila) PorCasilla(casilla models.Casilla) *ResultadoCasilla {
	switch casilla {
	case models.CasillaSubtotal:
		return &r.Subtotal
	case models.CasillaIVA:
		return &r.Iva
	case models.CasillaINC:
		return &r.Inc
	case models.CasillaReteFuente:
		return &r.Retefuente
	case models.CasillaReteICA:
		return &r.Reteica
	case models.CasillaReteIVA:
		return &r.Reteiva
	case models.CasillaTotalNeto:
		return &r.TotalNeto
	}
	return nil
}

func (r *ResultadoFila) MarshalJSON() ([]byte, error) {
	type alias struct {
		Fila              int              `json:"fila"`
		Cufe              string           `json:"cufe"`
		Subtotal          ResultadoCasilla `json:"subtotal"`
		Iva               ResultadoCasilla `json:"iva"`
		Inc               ResultadoCasilla `json:"inc"`
		Retefuente        ResultadoCasilla `json:"retefuente"`
		Reteica           ResultadoCasilla `json:"reteica"`
		Reteiva           ResultadoCasilla `json:"reteiva"`
		TotalNeto         ResultadoCasilla `json:"total_neto"`
		TotalNetoDerivado string           `json:"total_neto_derivado"`
		Errores           []Hallazgo       `json:"errores"`
		ListaParaExportar bool             `json:"lista_para_exportar"`
	}
	errores := r.Errores
	if errores == nil {
		errores = []Hallazgo{}
	}
	return json.Marshal(alias{
		Fila:              r.Fila,
		Cufe:              r.Cufe,
		Subtotal:          r.Subtotal,
		Iva:               r.Iva,
		Inc:               r.Inc,
		Retefuente:        r.Retefuente,
		Reteica:           r.Reteica,
		Reteiva:           r.Reteiva,
		TotalNeto:         r.TotalNeto,
		TotalNetoDerivado: FormatearMonto(r.TotalNeto.Valor, 2),
		Errores:           errores,
		ListaParaExportar: r.ListaParaExportar,
	})
}

// ResultadoValidacion aggregates a whole validation call.
type ResultadoValidacion struct {
	Valido  bool             `json:"valido"`
	Errores []Hallazgo       `json:"errores"`
	Filas   []*ResultadoFila `json:"filas"`
}

// DecodificarFilas parses the top-level request body. A body that is not
// a list of row objects is the engine's only hard failure: one top-level
// finding and no partial results.
func DecodificarFilas(raw []byte) ([]FilaLiquidacion, *Hallazgo) {
	var filas []FilaLiquidacion
	if err := json.Unmarshal(raw, &filas); err != nil {
		return nil, &Hallazgo{Fila: -1, Campo: "filas", Mensaje: MensajeCuerpoInvalido}
	}
	return filas, nil
}

// Motor runs the per-row, per-casilla settlement pass against one
// pre-built catalog index.
type Motor struct {
	Catalogo *CatalogoIndice
	Modo     ModoValidacion
}

// Validar processes the rows in input order and returns one result per
// row plus the aggregated findings. It never panics on malformed input:
// unparseable amounts degrade to zero and failed resolutions degrade to
// an unresolved casilla with a finding.
func (m *Motor) Validar(filas []FilaLiquidacion) *ResultadoValidacion {
	resultado := &ResultadoValidacion{Errores: []Hallazgo{}, Filas: make([]*ResultadoFila, 0, len(filas))}
	for i := range filas {
		filaResultado := m.validarFila(i, &filas[i])
		resultado.Filas = append(resultado.Filas, filaResultado)
		resultado.Errores = append(resultado.Errores, filaResultado.Errores...)
	}
	if m.Modo == ModoPermisivo {
		resultado.Valido = true
	} else {
		resultado.Valido = len(resultado.Errores) == 0
	}
	return resultado
}

func (m *Motor) validarFila(indice int, fila *FilaLiquidacion) *ResultadoFila {
	resultado := &ResultadoFila{
		Fila:          indice,
		TipoDocumento: fila.TipoDocumento,
		Cufe:          fila.Cufe,
		Nit:           fila.Nit,
		Proveedor:     fila.Proveedor,
		Fecha:         fila.Fecha,
		Descripcion:   fila.Descripcion,
		PrefijoFolio:  fila.PrefijoFolio,
	}

	montos := make(map[models.Casilla]decimal.Decimal, len(CasillasOrden))
	for _, casilla := range CasillasOrden {
		montos[casilla] = ParseMonto(fila.Monto(casilla))
	}
	base := montos[models.CasillaSubtotal]

	var retefuente, reteica, reteiva decimal.Decimal

	agregar := func(casilla models.Casilla, mensaje string) {
		resultado.Errores = append(resultado.Errores, Hallazgo{
			Fila:    indice,
			Cufe:    fila.Cufe,
			Campo:   CasillaFieldMap[casilla],
			Mensaje: mensaje,
		})
	}

	for _, casilla := range CasillasOrden {
		reglas := ReglaDe(casilla)
		seleccion := parseSeleccion(fila.CuentaElegida(casilla))
		opciones := m.Catalogo.Opciones(fila.ProveedorID, casilla)
		sinOpciones := len(opciones) == 0

		monto := montos[casilla]
		if casilla == models.CasillaTotalNeto {
			// Always derived; whatever the caller submitted is ignored.
			monto = montos[models.CasillaSubtotal].
				Add(montos[models.CasillaIVA]).
				Add(montos[models.CasillaINC]).
				Sub(retefuente).Sub(reteica).Sub(reteiva)
		}

		salida := resultado.PorCasilla(casilla)
		salida.Casilla = casilla
		salida.Naturaleza = reglas.Naturaleza
		salida.SinOpciones = sinOpciones
		salida.Valor = monto

		if !monto.IsZero() && sinOpciones {
			agregar(casilla, reglas.MensajeSinOpciones)
		} else if !monto.IsZero() && !seleccion.Elegida {
			agregar(casilla, MensajeCuentaObligatoria)
		}

		var resuelta *models.CuentaContableProveedor
		if seleccion.Elegida {
			item := m.Catalogo.PorId(seleccion.ID)
			if item != nil && item.ProveedorID == fila.ProveedorID && item.Casilla == casilla {
				resuelta = item
			} else if m.Modo == ModoPermisivo && m.Catalogo.BuscaExterna != nil {
				if externa := m.Catalogo.BuscaExterna(seleccion.ID); externa != nil && externa.Casilla == casilla {
					resuelta = externa
				}
			}
			if resuelta == nil {
				agregar(casilla, MensajeCuentaAjena)
			} else {
				codigo := ""
				if resuelta.Cuenta != nil {
					codigo = resuelta.Cuenta.Codigo
				}
				if mensaje := ValidarCuentaParaCasilla(casilla, codigo); mensaje != "" {
					agregar(casilla, mensaje)
				}
				if resuelta.Naturaleza != reglas.Naturaleza {
					agregar(casilla, MensajeNaturaleza)
				}
				salida.Cuenta = resuelta
				salida.Naturaleza = resuelta.Naturaleza
			}
		}

		if Retenciones[casilla] {
			if resuelta != nil && resuelta.Porcentaje != nil {
				porcentaje, valor := CalcularRetencion(base, resuelta)
				salida.Porcentaje = porcentaje
				salida.Valor = valor
			} else {
				// Fallback display values; findings were already raised
				// above when the situation calls for one.
				salida.Porcentaje = ParseMonto(fila.PorcentajeManual(casilla))
			}
			switch casilla {
			case models.CasillaReteFuente:
				retefuente = salida.Valor
			case models.CasillaReteICA:
				reteica = salida.Valor
			case models.CasillaReteIVA:
				reteiva = salida.Valor
			}
		}
	}

	resultado.ListaParaExportar = m.Modo == ModoPermisivo || len(resultado.Errores) == 0
	return resultado
}
