package liquidacion_test

import (
	"testing"

	"bitbucket.org/contafacil/facturas_backend/liquidacion"
	"bitbucket.org/contafacil/facturas_backend/models"
)

func TestCuentaExclusivaINCRechazadaEnOtrasCasillas(t *testing.T) {
	for _, casilla := range liquidacion.CasillasOrden {
		got := liquidacion.ValidarCuentaParaCasilla(casilla, liquidacion.CuentaExclusivaINC)
		if casilla == models.CasillaINC {
			if got != "" {
				t.Errorf("INC debe aceptar su cuenta exclusiva, got %q", got)
			}
			continue
		}
		if got != liquidacion.MensajeCuentaExclusivaINC {
			t.Errorf("casilla %s: got %q, want %q", casilla, got, liquidacion.MensajeCuentaExclusivaINC)
		}
	}
}

func TestValidarCuentaParaCasilla(t *testing.T) {
	casos := []struct {
		nombre  string
		casilla models.Casilla
		codigo  string
		want    string
	}{
		{"codigo vacio no valida nada", models.CasillaSubtotal, "", ""},
		{"subtotal prefijo 2310", models.CasillaSubtotal, "231001", ""},
		{"subtotal prefijo 2432", models.CasillaSubtotal, "243202", ""},
		{"subtotal prefijo ajeno", models.CasillaSubtotal, "240801", liquidacion.MensajeCasillaIncorrecta},
		{"iva prefijo correcto", models.CasillaIVA, "240810", ""},
		{"iva prefijo ajeno", models.CasillaIVA, "231001", liquidacion.MensajeCasillaIncorrecta},
		{"inc sentinel na", models.CasillaINC, "na", ""},
		{"inc sentinel n/a", models.CasillaINC, "N/A", ""},
		{"inc sentinel bsp", models.CasillaINC, "bsp", ""},
		{"inc cualquier otro codigo", models.CasillaINC, "240810", liquidacion.MensajeCuentaExclusivaINC},
		{"retefuente prefijo correcto", models.CasillaReteFuente, "236515", ""},
		{"retefuente prefijo ajeno", models.CasillaReteFuente, "236815", liquidacion.MensajeCasillaIncorrecta},
		{"reteica prefijo correcto", models.CasillaReteICA, "236801", ""},
		{"reteiva prefijo correcto", models.CasillaReteIVA, "236705", ""},
		{"total neto prefijo correcto", models.CasillaTotalNeto, "233595", ""},
		{"total neto prefijo ajeno", models.CasillaTotalNeto, "231001", liquidacion.MensajeCasillaIncorrecta},
	}

	for _, caso := range casos {
		t.Run(caso.nombre, func(t *testing.T) {
			got := liquidacion.ValidarCuentaParaCasilla(caso.casilla, caso.codigo)
			if got != caso.want {
				t.Errorf("ValidarCuentaParaCasilla(%s, %q) = %q, want %q", caso.casilla, caso.codigo, got, caso.want)
			}
		})
	}
}

func TestReglasCasillaNaturaleza(t *testing.T) {
	debito := []models.Casilla{models.CasillaSubtotal, models.CasillaIVA, models.CasillaINC, models.CasillaTotalNeto}
	for _, casilla := range debito {
		if liquidacion.ReglaDe(casilla).Naturaleza != models.NaturalezaDebito {
			t.Errorf("casilla %s debe exigir naturaleza débito", casilla)
		}
	}
	credito := []models.Casilla{models.CasillaReteFuente, models.CasillaReteICA, models.CasillaReteIVA}
	for _, casilla := range credito {
		if liquidacion.ReglaDe(casilla).Naturaleza != models.NaturalezaCredito {
			t.Errorf("casilla %s debe exigir naturaleza crédito", casilla)
		}
	}
}

func TestMensajesSinOpcionesDefinidos(t *testing.T) {
	for _, casilla := range liquidacion.CasillasOrden {
		if liquidacion.ReglaDe(casilla).MensajeSinOpciones == "" {
			t.Errorf("casilla %s sin mensaje de opciones", casilla)
		}
	}
}
