package models

import (
	"context"
	"time"

	"bitbucket.org/contafacil/facturas_backend/config"
	"github.com/shopspring/decimal"
)

// FacturaXML is the structured electronic-invoice record, keyed by CUFE.
type FacturaXML struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Cufe        string          `gorm:"size:255;uniqueIndex;not null" json:"cufe" binding:"required"`
	Fecha       time.Time       `gorm:"not null" json:"fecha"`
	Descripcion string          `gorm:"type:text" json:"descripcion"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"subtotal"`
	Iva         decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"iva"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total"`
	ProveedorID int             `gorm:"index;not null" json:"proveedor_id"`
	Proveedor   *Proveedor      `json:"proveedor,omitempty"`
}

// GetOrCreateFacturaXML inserts the record unless the CUFE already exists.
func GetOrCreateFacturaXML(ctx context.Context, factura *FacturaXML) (*FacturaXML, error) {
	db := config.GetDB()

	var existente FacturaXML
	err := db.WithContext(ctx).Where("cufe = ?", factura.Cufe).
		Attrs(*factura).
		FirstOrCreate(&existente).Error
	if err != nil {
		return nil, err
	}
	return &existente, nil
}

// ListFacturasXML returns every electronic invoice with its provider.
func ListFacturasXML(ctx context.Context) ([]*FacturaXML, error) {
	db := config.GetDB()

	var facturas []*FacturaXML
	err := db.WithContext(ctx).Preload("Proveedor").Find(&facturas).Error
	if err != nil {
		return nil, err
	}
	return facturas, nil
}
