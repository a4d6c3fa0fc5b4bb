package models

import (
	"context"

	"bitbucket.org/contafacil/facturas_backend/config"
)

type Proveedor struct {
	ID        int    `gorm:"primary_key" json:"id"`
	Nit       string `gorm:"size:50;uniqueIndex;not null" json:"nit" binding:"required"`
	Nombre    string `gorm:"size:255;not null" json:"nombre" binding:"required"`
	EmpresaID int    `gorm:"index;default:0" json:"empresa_id"`
}

// GetProveedoresPorIds loads the referenced providers in one query,
// optionally scoped to one tenant.
func GetProveedoresPorIds(ctx context.Context, ids []int, empresaID *int) (map[int]*Proveedor, error) {
	db := config.GetDB()

	var proveedores []*Proveedor
	query := db.WithContext(ctx).Where("id IN ?", ids)
	if empresaID != nil {
		query = query.Where("empresa_id = ?", *empresaID)
	}
	if err := query.Find(&proveedores).Error; err != nil {
		return nil, err
	}

	porId := make(map[int]*Proveedor, len(proveedores))
	for _, p := range proveedores {
		porId[p.ID] = p
	}
	return porId, nil
}

// GetOrCreateProveedor resolves a provider by NIT, creating it with the
// given display name when missing. Used by invoice ingestion.
func GetOrCreateProveedor(ctx context.Context, nit string, nombre string) (*Proveedor, error) {
	db := config.GetDB()

	var proveedor Proveedor
	err := db.WithContext(ctx).Where("nit = ?", nit).
		Attrs(Proveedor{Nombre: nombre}).
		FirstOrCreate(&proveedor).Error
	if err != nil {
		return nil, err
	}
	return &proveedor, nil
}
