package models

import (
	"context"
	"time"

	"bitbucket.org/contafacil/facturas_backend/config"
	"github.com/shopspring/decimal"
)

// FacturaXLS is the spreadsheet-ingested invoice record. Activo mirrors
// whether a FacturaXML with the same CUFE has been ingested.
type FacturaXLS struct {
	ID             int             `gorm:"primary_key" json:"id"`
	TipoDocumento  string          `gorm:"size:100;not null" json:"tipo_documento" binding:"required"`
	Cufe           string          `gorm:"size:255;uniqueIndex;not null" json:"cufe" binding:"required"`
	Folio          string          `gorm:"size:100" json:"folio"`
	Prefijo        string          `gorm:"size:50" json:"prefijo"`
	NitEmisor      string          `gorm:"size:50" json:"nit_emisor"`
	NombreEmisor   string          `gorm:"size:255" json:"nombre_emisor"`
	FechaDocumento *time.Time      `json:"fecha_documento"`
	Iva            decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"iva"`
	Inc            decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"inc"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total"`
	Activo         bool            `gorm:"default:false" json:"activo"`
}

// PrefijoFolio renders the "Prefijo+Folio" display value.
func (f *FacturaXLS) PrefijoFolio() string {
	if f.Prefijo != "" && f.Folio != "" {
		return f.Prefijo + "-" + f.Folio
	}
	if f.Prefijo != "" {
		return f.Prefijo
	}
	return f.Folio
}

// GetOrCreateFacturaXLS inserts the record unless the CUFE already exists.
func GetOrCreateFacturaXLS(ctx context.Context, factura *FacturaXLS) (*FacturaXLS, error) {
	db := config.GetDB()

	var existente FacturaXLS
	err := db.WithContext(ctx).Where("cufe = ?", factura.Cufe).
		Attrs(*factura).
		FirstOrCreate(&existente).Error
	if err != nil {
		return nil, err
	}
	return &existente, nil
}

// ListFacturasXLS returns every spreadsheet invoice.
func ListFacturasXLS(ctx context.Context) ([]*FacturaXLS, error) {
	db := config.GetDB()

	var facturas []*FacturaXLS
	err := db.WithContext(ctx).Find(&facturas).Error
	if err != nil {
		return nil, err
	}
	return facturas, nil
}

// SincronizarEstadoFacturasXLS re-derives Activo for every spreadsheet
// record from the presence of a matching electronic invoice.
func SincronizarEstadoFacturasXLS(ctx context.Context) error {
	db := config.GetDB()

	var cufes []string
	if err := db.WithContext(ctx).Model(&FacturaXML{}).Pluck("cufe", &cufes).Error; err != nil {
		return err
	}
	conXML := make(map[string]bool, len(cufes))
	for _, c := range cufes {
		conXML[c] = true
	}

	var facturas []*FacturaXLS
	if err := db.WithContext(ctx).Select("id", "cufe", "activo").Find(&facturas).Error; err != nil {
		return err
	}
	for _, f := range facturas {
		activo := conXML[f.Cufe]
		if f.Activo == activo {
			continue
		}
		if err := db.WithContext(ctx).Model(&FacturaXLS{}).
			Where("id = ?", f.ID).
			Update("activo", activo).Error; err != nil {
			return err
		}
	}
	return nil
}
