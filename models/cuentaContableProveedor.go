package models

import (
	"context"
	"time"

	"bitbucket.org/contafacil/facturas_backend/config"
	"github.com/shopspring/decimal"
)

// CuentaContableProveedor binds an accounting account to a (proveedor,
// casilla) pair. For the withholding casillas it also carries the agreed
// percentage and its calculation mode. Only active rows participate in
// validation and in the catalog exposed to callers.
type CuentaContableProveedor struct {
	ID            int              `gorm:"primary_key" json:"id"`
	ProveedorID   int              `gorm:"index;not null;uniqueIndex:idx_proveedor_casilla_cuenta" json:"proveedor_id" binding:"required"`
	Proveedor     *Proveedor       `json:"proveedor,omitempty"`
	CuentaID      int              `gorm:"not null;uniqueIndex:idx_proveedor_casilla_cuenta" json:"cuenta_id" binding:"required"`
	Cuenta        *CuentaContable  `json:"cuenta,omitempty"`
	Casilla       Casilla          `gorm:"type:enum('SUBTOTAL','IVA','INC','RETEFUENTE','RETEICA','RETEIVA','TOTAL_NETO');not null;uniqueIndex:idx_proveedor_casilla_cuenta" json:"casilla" binding:"required"`
	Naturaleza    Naturaleza       `gorm:"type:enum('D','C');not null" json:"naturaleza" binding:"required"`
	Porcentaje    *decimal.Decimal `gorm:"type:decimal(9,4)" json:"porcentaje"`
	ModoCalculo   ModoCalculo      `gorm:"type:enum('PORCENTAJE','PORMIL');default:null" json:"modo_calculo"`
	Ayuda         string           `gorm:"size:255;default:''" json:"ayuda"`
	Activo        *bool            `gorm:"not null;default:true" json:"activo"`
	CreadoEn      time.Time        `gorm:"autoCreateTime" json:"creado_en"`
	ActualizadoEn time.Time        `gorm:"autoUpdateTime" json:"actualizado_en"`
}

// GetCatalogoActivo fetches every active parametrization for the given
// providers in one query, ordered so grouped listings come out stable.
func GetCatalogoActivo(ctx context.Context, proveedorIds []int) ([]*CuentaContableProveedor, error) {
	db := config.GetDB()

	var items []*CuentaContableProveedor
	err := db.WithContext(ctx).
		Preload("Cuenta").
		Preload("Proveedor").
		Joins("JOIN cuenta_contables ON cuenta_contables.id = cuenta_contable_proveedors.cuenta_id").
		Where("cuenta_contable_proveedors.proveedor_id IN ? AND cuenta_contable_proveedors.activo = ?", proveedorIds, true).
		Order("cuenta_contable_proveedors.casilla, cuenta_contables.codigo").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetCatalogoPorId resolves one active parametrization without provider
// scoping. The permissive validation mode uses it as a last-resort lookup.
func GetCatalogoPorId(ctx context.Context, id int) (*CuentaContableProveedor, error) {
	db := config.GetDB()

	var item CuentaContableProveedor
	err := db.WithContext(ctx).
		Preload("Cuenta").
		Preload("Proveedor").
		Where("id = ? AND activo = ?", id, true).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}
