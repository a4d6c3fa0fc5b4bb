package models_test

import (
	"encoding/json"
	"testing"

	"bitbucket.org/contafacil/facturas_backend/models"
)

func TestCasillaUnmarshal(t *testing.T) {
	validas := []string{"SUBTOTAL", "IVA", "INC", "RETEFUENTE", "RETEICA", "RETEIVA", "TOTAL_NETO"}
	for _, valor := range validas {
		var casilla models.Casilla
		if err := json.Unmarshal([]byte(`"`+valor+`"`), &casilla); err != nil {
			t.Errorf("casilla %q debe ser válida: %v", valor, err)
		}
	}

	invalidas := []string{`"subtotal"`, `"TOTALNETO"`, `""`, `5`}
	for _, valor := range invalidas {
		var casilla models.Casilla
		if err := json.Unmarshal([]byte(valor), &casilla); err == nil {
			t.Errorf("casilla %s debió rechazarse", valor)
		}
	}
}

func TestNaturalezaUnmarshal(t *testing.T) {
	var naturaleza models.Naturaleza
	if err := json.Unmarshal([]byte(`"D"`), &naturaleza); err != nil || naturaleza != models.NaturalezaDebito {
		t.Errorf(`unmarshal "D": %v (%q)`, err, naturaleza)
	}
	if err := json.Unmarshal([]byte(`"C"`), &naturaleza); err != nil || naturaleza != models.NaturalezaCredito {
		t.Errorf(`unmarshal "C": %v (%q)`, err, naturaleza)
	}
	if err := json.Unmarshal([]byte(`"X"`), &naturaleza); err == nil {
		t.Error(`la naturaleza "X" debió rechazarse`)
	}
}

func TestModoCalculoUnmarshal(t *testing.T) {
	var modo models.ModoCalculo
	if err := json.Unmarshal([]byte(`"PORMIL"`), &modo); err != nil || modo != models.ModoCalculoPorMil {
		t.Errorf(`unmarshal "PORMIL": %v (%q)`, err, modo)
	}
	if err := json.Unmarshal([]byte(`"pormil"`), &modo); err == nil {
		t.Error("el modo de cálculo es sensible a mayúsculas")
	}
}
