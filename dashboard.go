package main

import (
	"net/http"

	"bitbucket.org/contafacil/facturas_backend/config"
	"bitbucket.org/contafacil/facturas_backend/liquidacion"
	"bitbucket.org/contafacil/facturas_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type liquidacionSeed struct {
	Cufe               string   `json:"cufe"`
	TipoDocumento      string   `json:"tipo_documento"`
	ProveedorID        int      `json:"proveedor_id"`
	Nit                string   `json:"nit"`
	ProveedorNombre    string   `json:"proveedor_nombre"`
	Fecha              string   `json:"fecha"`
	FechaExcel         string   `json:"fecha_excel"`
	FechaXML           string   `json:"fecha_xml"`
	PrefijoFolio       string   `json:"prefijo_folio"`
	Descripcion        string   `json:"descripcion"`
	DescripcionDisplay string   `json:"descripcion_display"`
	CoincideXML        bool     `json:"coincide_xml"`
	Subtotal           string   `json:"subtotal"`
	Iva                string   `json:"iva"`
	Inc                string   `json:"inc"`
	Total              string   `json:"total"`
	OpcionesRetefuente []string `json:"opciones_retefuente"`
	OpcionesICA        []string `json:"opciones_ica"`
	RetefuenteDefault  string   `json:"retefuente_default"`
	ReteicaDefault     string   `json:"reteica_default"`
}

func formatearOpciones(valores []decimal.Decimal) []string {
	salida := make([]string, 0, len(valores))
	for _, v := range valores {
		salida = append(salida, liquidacion.FormatearMonto(v, 4))
	}
	return salida
}

// dashboardHandler serves the invoice listings plus the per-invoice seed
// data the settlement tab starts from. Rendering stays client-side.
func dashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()

		facturasXML, err := models.ListFacturasXML(ctx)
		if err != nil {
			config.LogError(logger, "dashboard", "dashboardHandler", "listar facturas xml", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudieron cargar las facturas"})
			return
		}
		facturasXLS, err := models.ListFacturasXLS(ctx)
		if err != nil {
			config.LogError(logger, "dashboard", "dashboardHandler", "listar facturas xls", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudieron cargar las facturas"})
			return
		}

		xmlPorCufe := make(map[string]*models.FacturaXML, len(facturasXML))
		for _, fx := range facturasXML {
			xmlPorCufe[fx.Cufe] = fx
		}

		tarifasICA, err := models.GetTarifasICA(ctx)
		if err != nil {
			config.LogError(logger, "dashboard", "dashboardHandler", "tarifas ica", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudieron cargar las tarifas"})
			return
		}
		opcionesICA := formatearOpciones(tarifasICA)

		liquidaciones := make([]liquidacionSeed, 0, len(facturasXLS))
		for _, f := range facturasXLS {
			subtotal := f.Total.Sub(f.Iva).Sub(f.Inc)

			facturaXML := xmlPorCufe[f.Cufe]
			seed := liquidacionSeed{
				Cufe:            f.Cufe,
				TipoDocumento:   f.TipoDocumento,
				Nit:             f.NitEmisor,
				ProveedorNombre: f.NombreEmisor,
				PrefijoFolio:    f.PrefijoFolio(),
				CoincideXML:     facturaXML != nil,
				Subtotal:        liquidacion.FormatearMonto(subtotal, 2),
				Iva:             liquidacion.FormatearMonto(f.Iva, 2),
				Inc:             liquidacion.FormatearMonto(f.Inc, 2),
				Total:           liquidacion.FormatearMonto(f.Total, 2),
				OpcionesICA:     opcionesICA,
			}
			if f.FechaDocumento != nil {
				seed.FechaExcel = f.FechaDocumento.Format("2006-01-02")
				seed.Fecha = seed.FechaExcel
			}
			if facturaXML != nil {
				seed.ProveedorID = facturaXML.ProveedorID
				seed.FechaXML = facturaXML.Fecha.Format("2006-01-02")
				seed.Descripcion = facturaXML.Descripcion
				seed.DescripcionDisplay = facturaXML.Descripcion
				if facturaXML.Proveedor != nil {
					if seed.Nit == "" {
						seed.Nit = facturaXML.Proveedor.Nit
					}
					if seed.ProveedorNombre == "" {
						seed.ProveedorNombre = facturaXML.Proveedor.Nombre
					}
				}
			} else {
				seed.DescripcionDisplay = "Sin coincidencia XML"
			}

			opcionesRF, err := models.GetOpcionesRetefuente(ctx, seed.ProveedorID)
			if err != nil {
				config.LogError(logger, "dashboard", "dashboardHandler", "opciones retefuente", f.Cufe, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudieron cargar las retenciones"})
				return
			}
			seed.OpcionesRetefuente = formatearOpciones(opcionesRF)
			if len(seed.OpcionesRetefuente) > 0 {
				seed.RetefuenteDefault = seed.OpcionesRetefuente[0]
			}
			if len(opcionesICA) > 0 {
				seed.ReteicaDefault = opcionesICA[0]
			}

			liquidaciones = append(liquidaciones, seed)
		}

		c.JSON(http.StatusOK, gin.H{
			"facturas_xml":  facturasXML,
			"facturas_xls":  facturasXLS,
			"liquidaciones": liquidaciones,
		})
	}
}
