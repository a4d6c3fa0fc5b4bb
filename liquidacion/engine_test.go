package liquidacion_test

import (
	"testing"

	"bitbucket.org/contafacil/facturas_backend/liquidacion"
	"bitbucket.org/contafacil/facturas_backend/models"
	"github.com/shopspring/decimal"
)

func entradaCatalogo(id, proveedorID int, casilla models.Casilla, codigo string, naturaleza models.Naturaleza, pct string, modo models.ModoCalculo) *models.CuentaContableProveedor {
	item := &models.CuentaContableProveedor{
		ID:          id,
		ProveedorID: proveedorID,
		CuentaID:    id,
		Cuenta:      &models.CuentaContable{ID: id, Codigo: codigo},
		Casilla:     casilla,
		Naturaleza:  naturaleza,
		ModoCalculo: modo,
	}
	if pct != "" {
		v := decimal.RequireFromString(pct)
		item.Porcentaje = &v
	}
	return item
}

// catalogoDePrueba indexes three providers: 1 fully parametrized, 2 with
// a single subtotal entry, 3 without catalog at all.
func catalogoDePrueba() *liquidacion.CatalogoIndice {
	proveedores := map[int]*models.Proveedor{
		1: {ID: 1, Nit: "900111222", Nombre: "Proveedor Uno"},
		2: {ID: 2, Nit: "900333444", Nombre: "Proveedor Dos"},
		3: {ID: 3, Nit: "900555666", Nombre: "Proveedor Sin Catalogo"},
	}
	items := []*models.CuentaContableProveedor{
		entradaCatalogo(10, 1, models.CasillaSubtotal, "231001", models.NaturalezaDebito, "", ""),
		entradaCatalogo(11, 1, models.CasillaIVA, "240810", models.NaturalezaDebito, "", ""),
		entradaCatalogo(12, 1, models.CasillaINC, liquidacion.CuentaExclusivaINC, models.NaturalezaDebito, "", ""),
		entradaCatalogo(13, 1, models.CasillaReteFuente, "236515", models.NaturalezaCredito, "4", models.ModoCalculoPorcentaje),
		entradaCatalogo(14, 1, models.CasillaReteICA, "236801", models.NaturalezaCredito, "9.5", models.ModoCalculoPorcentaje),
		entradaCatalogo(15, 1, models.CasillaReteIVA, "236705", models.NaturalezaCredito, "15", models.ModoCalculoPorcentaje),
		entradaCatalogo(16, 1, models.CasillaTotalNeto, "233595", models.NaturalezaDebito, "", ""),
		entradaCatalogo(17, 1, models.CasillaSubtotal, "231010", models.NaturalezaCredito, "", ""),
		entradaCatalogo(18, 1, models.CasillaSubtotal, liquidacion.CuentaExclusivaINC, models.NaturalezaDebito, "", ""),
		entradaCatalogo(20, 2, models.CasillaSubtotal, "231002", models.NaturalezaDebito, "", ""),
	}
	return liquidacion.NuevoCatalogoIndice(proveedores, items)
}

func motorDePrueba(modo liquidacion.ModoValidacion) *liquidacion.Motor {
	return &liquidacion.Motor{Catalogo: catalogoDePrueba(), Modo: modo}
}

// filaCompleta is a fully resolved row for provider 1: subtotal 100.00,
// IVA 19.00 and the three withholdings at 4%, 9.5% and 15%.
func filaCompleta() liquidacion.FilaLiquidacion {
	return liquidacion.FilaLiquidacion{
		TipoDocumento: "Factura electrónica",
		Cufe:          "CUFE-A",
		ProveedorID:   1,
		Nit:           "900111222",
		Proveedor:     "Proveedor Uno",
		Fecha:         "2024-03-01",
		Descripcion:   "Servicio de transporte",
		PrefijoFolio:  "FE123",

		Subtotal:  "100.00",
		Iva:       "19.00",
		Inc:       "0",
		TotalNeto: "999.99",

		CuentaSubtotal:   "10",
		CuentaIva:        "11",
		CuentaRetefuente: "13",
		CuentaReteica:    "14",
		CuentaReteiva:    "15",
		CuentaTotalNeto:  "16",
	}
}

func montoIgual(t *testing.T, nombre string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", nombre, got, want)
	}
}

func TestValidarFilaCompleta(t *testing.T) {
	motor := motorDePrueba(liquidacion.ModoEstricto)

	resultado := motor.Validar([]liquidacion.FilaLiquidacion{filaCompleta()})
	if !resultado.Valido {
		t.Fatalf("resultado inválido, errores: %+v", resultado.Errores)
	}
	if len(resultado.Errores) != 0 {
		t.Fatalf("errores inesperados: %+v", resultado.Errores)
	}
	if len(resultado.Filas) != 1 {
		t.Fatalf("len(Filas) = %d, want 1", len(resultado.Filas))
	}

	fila := resultado.Filas[0]
	montoIgual(t, "subtotal", fila.Subtotal.Valor, "100")
	montoIgual(t, "iva", fila.Iva.Valor, "19")
	montoIgual(t, "inc", fila.Inc.Valor, "0")
	montoIgual(t, "retefuente pct", fila.Retefuente.Porcentaje, "4")
	montoIgual(t, "retefuente", fila.Retefuente.Valor, "4")
	montoIgual(t, "reteica pct", fila.Reteica.Porcentaje, "9.5")
	montoIgual(t, "reteica", fila.Reteica.Valor, "9.5")
	montoIgual(t, "reteiva pct", fila.Reteiva.Porcentaje, "15")
	montoIgual(t, "reteiva", fila.Reteiva.Valor, "15")
	montoIgual(t, "total neto", fila.TotalNeto.Valor, "90.5")

	if !fila.ListaParaExportar {
		t.Error("la fila sin errores debe quedar lista para exportar")
	}
	if fila.Subtotal.Cuenta == nil || fila.Subtotal.Cuenta.ID != 10 {
		t.Error("la cuenta de subtotal no quedó resuelta")
	}
}

func TestTotalNetoSiempreDerivado(t *testing.T) {
	fila := filaCompleta()
	fila.TotalNeto = "123456.78"

	resultado := motorDePrueba(liquidacion.ModoEstricto).Validar([]liquidacion.FilaLiquidacion{fila})
	montoIgual(t, "total neto", resultado.Filas[0].TotalNeto.Valor, "90.5")
}

func TestMontoCeroNoExigeCuenta(t *testing.T) {
	fila := liquidacion.FilaLiquidacion{
		Cufe:        "CUFE-CERO",
		ProveedorID: 1,
		Subtotal:    "0",
		Iva:         "0.00",
	}

	resultado := motorDePrueba(liquidacion.ModoEstricto).Validar([]liquidacion.FilaLiquidacion{fila})
	if !resultado.Valido {
		t.Fatalf("montos en cero no deben generar hallazgos: %+v", resultado.Errores)
	}
}

func TestCuentaObligatoriaConMontoDistintoDeCero(t *testing.T) {
	fila := filaCompleta()
	fila.CuentaSubtotal = ""

	resultado := motorDePrueba(liquidacion.ModoEstricto).Validar([]liquidacion.FilaLiquidacion{fila})
	if resultado.Valido {
		t.Fatal("una fila con cuenta faltante no puede ser válida en modo estricto")
	}
	if len(resultado.Errores) != 1 {
		t.Fatalf("len(Errores) = %d, want 1: %+v", len(resultado.Errores), resultado.Errores)
	}
	hallazgo := resultado.Errores[0]
	if hallazgo.Campo != "subtotal" {
		t.Errorf("campo = %q, want %q", hallazgo.Campo, "subtotal")
	}
	if hallazgo.Mensaje != liquidacion.MensajeCuentaObligatoria {
		t.Errorf("mensaje = %q, want %q", hallazgo.Mensaje, liquidacion.MensajeCuentaObligatoria)
	}
	if hallazgo.Cufe != "CUFE-A" {
		t.Errorf("cufe = %q, want %q", hallazgo.Cufe, "CUFE-A")
	}
	if resultado.Filas[0].ListaParaExportar {
		t.Error("una fila con hallazgos no queda lista para exportar en modo estricto")
	}
}

func TestSentinelNoCuentaComoSeleccion(t *testing.T) {
	fila := filaCompleta()
	fila.CuentaSubtotal = "N/A"

	resultado := motorDePrueba(liquidacion.ModoEstricto).Validar([]liquidacion.FilaLiquidacion{fila})
	if len(resultado.Errores) != 1 || resultado.Errores[0].Mensaje != liquidacion.MensajeCuentaObligatoria {
		t.Fatalf("un marcador N/A equivale a no elegir cuenta: %+v", resultado.Errores)
	}
}

func TestSinOpcionesConMontoCeroNoReporta(t *testing.T) {
	fila := liquidacion.FilaLiquidacion{
		Cufe:        "CUFE-SIN-OPC",
		ProveedorID: 3,
		Reteica:     "0.00",
	}

	resultado := motorDePrueba(liquidacion.ModoEstricto).Validar([]liquidacion.FilaLiquidacion{fila})
	if !resultado.Valido {
		t.Fatalf("monto cero sin opciones no es un hallazgo: %+v", resultado.Errores)
	}
	if !resultado.Filas[0].Reteica.SinOpciones {
		t.Error("la casilla debe quedar marcada como sin opciones")
	}
}

func TestSinOpcionesConMontoDistintoDeCero(t *testing.T) {
	fila := liquidacion.FilaLiquidacion{
		Cufe:        "CUFE-SIN-OPC",
		ProveedorID: 3,
		Subtotal:    "50.00",
	}

	resultado := motorDePrueba(liquidacion.ModoEstricto).Validar([]liquidacion.FilaLiquidacion{fila})
	if resultado.Valido {
		t.Fatal("monto distinto de cero sin opciones debe generar hallazgo")
	}
	want := liquidacion.ReglaDe(models.CasillaSubtotal).MensajeSinOpciones
	encontrado := false
	for _, h := range resultado.Errores {
		if h.Campo == "subtotal" && h.Mensaje == want {
			encontrado = true
		}
	}
	if !encontrado {
		t.Errorf("falta el hallazgo de subtotal sin opciones: %+v", resultado.Errores)
	}
}

func TestCuentaDeOtroProveedor(t *testing.T) {
	fila := filaCompleta()
	fila.CuentaSubtotal = "20" // pertenece al proveedor 2

	resultado := motorDePrueba(liquidacion.ModoEstricto).Validar([]liquidacion.FilaLiquidacion{fila})
	if len(resultado.Errores) != 1 {
		t.Fatalf("len(Errores) = %d, want 1: %+v", len(resultado.Errores), resultado.Errores)
	}
	if resultado.Errores[0].Mensaje != liquidacion.MensajeCuentaAjena {
		t.Errorf("mensaje = %q, want %q", resultado.Errores[0].Mensaje, liquidacion.MensajeCuentaAjena)
	}
}

func TestCuentaDeOtraCasilla(t *testing.T) {
	fila := filaCompleta()
	fila.CuentaSubtotal = "11" // entrada de IVA

	resultado := motorDePrueba(liquidacion.ModoEstricto).Validar([]liquidacion.FilaLiquidacion{fila})
	if len(resultado.Errores) != 1 || resultado.Errores[0].Mensaje != liquidacion.MensajeCuentaAjena {
		t.Fatalf("una entrada de otra casilla debe reportarse como ajena: %+v", resultado.Errores)
	}
}

func TestNaturalezaIncompatible(t *testing.T) {
	fila := filaCompleta()
	fila.CuentaSubtotal = "17" // subtotal con naturaleza crédito

	resultado := motorDePrueba(liquidacion.ModoEstricto).Validar([]liquidacion.FilaLiquidacion{fila})
	if len(resultado.Errores) != 1 || resultado.Errores[0].Mensaje != liquidacion.MensajeNaturaleza {
		t.Fatalf("want hallazgo de naturaleza: %+v", resultado.Errores)
	}
}

func TestCuentaExclusivaINCNoSeFiltraPorPrefijo(t *testing.T) {
	fila := filaCompleta()
	fila.CuentaSubtotal = "18" // 231053152007 parametrizada en subtotal

	resultado := motorDePrueba(liquidacion.ModoEstricto).Validar([]liquidacion.FilaLiquidacion{fila})
	if len(resultado.Errores) != 1 || resultado.Errores[0].Mensaje != liquidacion.MensajeCuentaExclusivaINC {
		t.Fatalf("la cuenta exclusiva de INC debe rechazarse en subtotal: %+v", resultado.Errores)
	}
}

func TestRetencionManualCuandoNoResuelveCuenta(t *testing.T) {
	fila := liquidacion.FilaLiquidacion{
		Cufe:          "CUFE-MANUAL",
		ProveedorID:   3,
		Subtotal:      "100.00",
		Retefuente:    "3.50",
		RetefuentePct: "3.5",
	}

	resultado := motorDePrueba(liquidacion.ModoPermisivo).Validar([]liquidacion.FilaLiquidacion{fila})
	salida := resultado.Filas[0]
	montoIgual(t, "retefuente pct", salida.Retefuente.Porcentaje, "3.5")
	montoIgual(t, "retefuente", salida.Retefuente.Valor, "3.5")
	montoIgual(t, "total neto", salida.TotalNeto.Valor, "96.5")
}

func TestModoPermisivoSiempreValido(t *testing.T) {
	fila := filaCompleta()
	fila.CuentaSubtotal = ""

	resultado := motorDePrueba(liquidacion.ModoPermisivo).Validar([]liquidacion.FilaLiquidacion{fila})
	if !resultado.Valido {
		t.Error("el modo permisivo siempre responde valido")
	}
	if len(resultado.Errores) == 0 {
		t.Error("los hallazgos se reportan igual en modo permisivo")
	}
	if !resultado.Filas[0].ListaParaExportar {
		t.Error("en modo permisivo toda fila queda lista para exportar")
	}
}

func TestModoPermisivoBuscaExterna(t *testing.T) {
	externa := entradaCatalogo(99, 5, models.CasillaSubtotal, "231009", models.NaturalezaDebito, "", "")
	motor := motorDePrueba(liquidacion.ModoPermisivo)
	motor.Catalogo.BuscaExterna = func(id int) *models.CuentaContableProveedor {
		if id == 99 {
			return externa
		}
		return nil
	}

	fila := filaCompleta()
	fila.CuentaSubtotal = "99"

	resultado := motor.Validar([]liquidacion.FilaLiquidacion{fila})
	if len(resultado.Errores) != 0 {
		t.Fatalf("la búsqueda externa debió resolver la cuenta: %+v", resultado.Errores)
	}
	if resultado.Filas[0].Subtotal.Cuenta != externa {
		t.Error("la casilla no quedó con la entrada externa")
	}
}

func TestModoEstrictoNoUsaBuscaExterna(t *testing.T) {
	externa := entradaCatalogo(99, 5, models.CasillaSubtotal, "231009", models.NaturalezaDebito, "", "")
	motor := motorDePrueba(liquidacion.ModoEstricto)
	motor.Catalogo.BuscaExterna = func(id int) *models.CuentaContableProveedor { return externa }

	fila := filaCompleta()
	fila.CuentaSubtotal = "99"

	resultado := motor.Validar([]liquidacion.FilaLiquidacion{fila})
	if len(resultado.Errores) != 1 || resultado.Errores[0].Mensaje != liquidacion.MensajeCuentaAjena {
		t.Fatalf("el modo estricto no consulta la búsqueda externa: %+v", resultado.Errores)
	}
}

func TestDecodificarFilas(t *testing.T) {
	if _, hallazgo := liquidacion.DecodificarFilas([]byte(`[]`)); hallazgo != nil {
		t.Errorf("una lista vacía es válida, got %+v", hallazgo)
	}

	filas, hallazgo := liquidacion.DecodificarFilas([]byte(`[{"cufe":"X","proveedor_id":1,"subtotal":"10"}]`))
	if hallazgo != nil {
		t.Fatalf("hallazgo inesperado: %+v", hallazgo)
	}
	if len(filas) != 1 || filas[0].Cufe != "X" || filas[0].ProveedorID != 1 {
		t.Errorf("filas = %+v", filas)
	}

	_, hallazgo = liquidacion.DecodificarFilas([]byte(`{"no":"es lista"}`))
	if hallazgo == nil {
		t.Fatal("un objeto no es un cuerpo válido")
	}
	if hallazgo.Fila != -1 || hallazgo.Campo != "filas" || hallazgo.Mensaje != liquidacion.MensajeCuerpoInvalido {
		t.Errorf("hallazgo = %+v", hallazgo)
	}
}
