package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/contafacil/facturas_backend/liquidacion"
	"bitbucket.org/contafacil/facturas_backend/models"
)

// liquidacion-export is an offline harness: it runs the settlement
// engine against a JSON fixture (rows plus catalog) and writes the CSV
// to stdout, without a database.
//
// Example:
//   go run ./cmd/liquidacion-export --input=fixture.json --modo=permisivo
type fixture struct {
	Proveedores []*models.Proveedor               `json:"proveedores"`
	Catalogo    []*models.CuentaContableProveedor `json:"catalogo"`
	Filas       []liquidacion.FilaLiquidacion     `json:"filas"`
}

func main() {
	var (
		input = flag.String("input", "", "fixture JSON path (required)")
		modo  = flag.String("modo", string(liquidacion.ModoEstricto), "estricto | permisivo")
	)
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "missing required --input")
		flag.Usage()
		os.Exit(2)
	}

	contenido, err := os.ReadFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read fixture: %v\n", err)
		os.Exit(1)
	}
	var fix fixture
	if err := json.Unmarshal(contenido, &fix); err != nil {
		fmt.Fprintf(os.Stderr, "parse fixture: %v\n", err)
		os.Exit(1)
	}

	proveedores := make(map[int]*models.Proveedor, len(fix.Proveedores))
	for _, p := range fix.Proveedores {
		proveedores[p.ID] = p
	}

	motor := &liquidacion.Motor{
		Catalogo: liquidacion.NuevoCatalogoIndice(proveedores, fix.Catalogo),
		Modo:     liquidacion.ModoValidacion(*modo),
	}

	resultado := motor.Validar(fix.Filas)
	if motor.Modo == liquidacion.ModoEstricto && !resultado.Valido {
		for _, h := range resultado.Errores {
			fmt.Fprintf(os.Stderr, "fila %d [%s] %s: %s\n", h.Fila, h.Cufe, h.Campo, h.Mensaje)
		}
		os.Exit(1)
	}

	if err := liquidacion.RenderCSV(os.Stdout, resultado.Filas); err != nil {
		fmt.Fprintf(os.Stderr, "render csv: %v\n", err)
		os.Exit(1)
	}
}
