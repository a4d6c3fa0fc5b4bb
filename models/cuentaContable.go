package models

// CuentaContable is a chart-of-accounts entry. Codes are hierarchical:
// the leading digits identify the account family a casilla accepts.
type CuentaContable struct {
	ID          int    `gorm:"primary_key" json:"id"`
	Codigo      string `gorm:"size:20;uniqueIndex;not null" json:"codigo" binding:"required"`
	Descripcion string `gorm:"size:255" json:"descripcion"`
}
