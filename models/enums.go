package models

import (
	"encoding/json"
	"errors"
)

// Casilla is one of the seven fixed monetary line items of a settlement.
type Casilla string

const (
	CasillaSubtotal   Casilla = "SUBTOTAL"
	CasillaIVA        Casilla = "IVA"
	CasillaINC        Casilla = "INC"
	CasillaReteFuente Casilla = "RETEFUENTE"
	CasillaReteICA    Casilla = "RETEICA"
	CasillaReteIVA    Casilla = "RETEIVA"
	CasillaTotalNeto  Casilla = "TOTAL_NETO"
)

func (c Casilla) Valid() bool {
	switch c {
	case CasillaSubtotal, CasillaIVA, CasillaINC, CasillaReteFuente,
		CasillaReteICA, CasillaReteIVA, CasillaTotalNeto:
		return true
	}
	return false
}

func (c *Casilla) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("casilla must be string")
	}
	v := Casilla(str)
	if !v.Valid() {
		return errors.New("invalid casilla")
	}
	*c = v
	return nil
}

// Naturaleza is the debit/credit nature of an account parametrization.
type Naturaleza string

const (
	NaturalezaDebito  Naturaleza = "D"
	NaturalezaCredito Naturaleza = "C"
)

func (n Naturaleza) Valid() bool {
	return n == NaturalezaDebito || n == NaturalezaCredito
}

func (n *Naturaleza) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("naturaleza must be string")
	}
	v := Naturaleza(str)
	if !v.Valid() {
		return errors.New("invalid naturaleza")
	}
	*n = v
	return nil
}

// ModoCalculo selects how a withholding percentage is applied to the base.
type ModoCalculo string

const (
	ModoCalculoPorcentaje ModoCalculo = "PORCENTAJE"
	ModoCalculoPorMil     ModoCalculo = "PORMIL"
)

func (m ModoCalculo) Valid() bool {
	return m == ModoCalculoPorcentaje || m == ModoCalculoPorMil
}

func (m *ModoCalculo) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("modo de calculo must be string")
	}
	v := ModoCalculo(str)
	if !v.Valid() {
		return errors.New("invalid modo de calculo")
	}
	*m = v
	return nil
}
