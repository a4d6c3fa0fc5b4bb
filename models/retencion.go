package models

import (
	"context"

	"bitbucket.org/contafacil/facturas_backend/config"
	"github.com/shopspring/decimal"
)

// Retencion is a legacy per-provider ReteFuente percentage agreement,
// kept as the source of the dashboard dropdown defaults.
type Retencion struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ProveedorID int             `gorm:"index;not null;uniqueIndex:idx_proveedor_porcentaje" json:"proveedor_id"`
	Porcentaje  decimal.Decimal `gorm:"type:decimal(5,2);not null;uniqueIndex:idx_proveedor_porcentaje" json:"porcentaje"`
	CuentaID    int             `gorm:"not null" json:"cuenta_id"`
}

// TarifaICA is a municipality ICA rate offered in the dashboard.
type TarifaICA struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Valor       decimal.Decimal `gorm:"type:decimal(5,2);not null;uniqueIndex:idx_valor_descripcion" json:"valor"`
	Descripcion string          `gorm:"size:100;default:'';uniqueIndex:idx_valor_descripcion" json:"descripcion"`
}

// GetOpcionesRetefuente returns the provider's agreed ReteFuente
// percentages in ascending order, or the base set when none are stored.
func GetOpcionesRetefuente(ctx context.Context, proveedorID int) ([]decimal.Decimal, error) {
	db := config.GetDB()

	var opciones []decimal.Decimal
	if proveedorID > 0 {
		var retenciones []*Retencion
		err := db.WithContext(ctx).
			Where("proveedor_id = ?", proveedorID).
			Order("porcentaje").
			Find(&retenciones).Error
		if err != nil {
			return nil, err
		}
		for _, r := range retenciones {
			opciones = append(opciones, r.Porcentaje)
		}
	}
	if len(opciones) == 0 {
		opciones = []decimal.Decimal{
			decimal.Zero,
			decimal.RequireFromString("2.5"),
			decimal.RequireFromString("4"),
			decimal.RequireFromString("3.5"),
			decimal.RequireFromString("11"),
			decimal.RequireFromString("1"),
		}
	}
	return opciones, nil
}

// GetTarifasICA returns the stored ICA rates in ascending order, falling
// back to the base set, always with a leading zero rate.
func GetTarifasICA(ctx context.Context) ([]decimal.Decimal, error) {
	db := config.GetDB()

	var valores []decimal.Decimal
	var tarifas []*TarifaICA
	if err := db.WithContext(ctx).Order("valor").Find(&tarifas).Error; err != nil {
		return nil, err
	}
	for _, t := range tarifas {
		valores = append(valores, t.Valor)
	}
	if len(valores) == 0 {
		valores = []decimal.Decimal{
			decimal.RequireFromString("0.414"),
			decimal.RequireFromString("0.866"),
			decimal.RequireFromString("0.966"),
			decimal.RequireFromString("1.38"),
		}
	}
	tieneCero := false
	for _, v := range valores {
		if v.IsZero() {
			tieneCero = true
			break
		}
	}
	if !tieneCero {
		valores = append([]decimal.Decimal{decimal.Zero}, valores...)
	}
	return valores, nil
}
