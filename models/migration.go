package models

import (
	"log"

	"bitbucket.org/contafacil/facturas_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Proveedor{}, &CuentaContable{}, &CuentaContableProveedor{},
		&FacturaXML{}, &FacturaXLS{},
		&Retencion{}, &TarifaICA{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
