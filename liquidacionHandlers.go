package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"bitbucket.org/contafacil/facturas_backend/config"
	"bitbucket.org/contafacil/facturas_backend/liquidacion"
	"bitbucket.org/contafacil/facturas_backend/models"
	"github.com/gin-gonic/gin"
)

type validarLiquidacionRequest struct {
	Modo  string          `json:"modo"`
	Filas json.RawMessage `json:"filas"`
}

func modoValidacion(solicitado string) liquidacion.ModoValidacion {
	switch solicitado {
	case string(liquidacion.ModoEstricto):
		return liquidacion.ModoEstricto
	case string(liquidacion.ModoPermisivo):
		return liquidacion.ModoPermisivo
	}
	if config.StrictSettlementValidation() {
		return liquidacion.ModoEstricto
	}
	return liquidacion.ModoPermisivo
}

func proveedoresDeFilas(filas []liquidacion.FilaLiquidacion) []int {
	vistos := make(map[int]bool, len(filas))
	ids := make([]int, 0, len(filas))
	for i := range filas {
		id := filas[i].ProveedorID
		if id <= 0 || vistos[id] {
			continue
		}
		vistos[id] = true
		ids = append(ids, id)
	}
	return ids
}

func construirMotor(ctx context.Context, filas []liquidacion.FilaLiquidacion, modo liquidacion.ModoValidacion, empresaID *int) (*liquidacion.Motor, error) {
	catalogo, err := liquidacion.ConstruirCatalogo(ctx, proveedoresDeFilas(filas), empresaID)
	if err != nil {
		return nil, err
	}
	return &liquidacion.Motor{Catalogo: catalogo, Modo: modo}, nil
}

func empresaIDDeQuery(c *gin.Context) *int {
	raw := c.Query("empresa_id")
	if raw == "" {
		return nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &id
}

func catalogoLiquidacionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		proveedorID, err := strconv.Atoi(c.Query("proveedor_id"))
		if err != nil || proveedorID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "proveedor_id es obligatorio"})
			return
		}

		catalogo, err := liquidacion.ConstruirCatalogo(c.Request.Context(), []int{proveedorID}, empresaIDDeQuery(c))
		if err != nil {
			config.LogError(logger, "liquidacion", "catalogoLiquidacionHandler", "construir catalogo", proveedorID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo cargar el catálogo"})
			return
		}
		if catalogo.Proveedor(proveedorID) == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "proveedor no encontrado"})
			return
		}

		c.JSON(http.StatusOK, catalogo.RespuestaCatalogo(proveedorID))
	}
}

func validarLiquidacionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var req validarLiquidacionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, &liquidacion.ResultadoValidacion{
				Errores: []liquidacion.Hallazgo{{Fila: -1, Campo: "filas", Mensaje: liquidacion.MensajeCuerpoInvalido}},
				Filas:   []*liquidacion.ResultadoFila{},
			})
			return
		}

		filas, hallazgo := liquidacion.DecodificarFilas(req.Filas)
		if hallazgo != nil {
			c.JSON(http.StatusBadRequest, &liquidacion.ResultadoValidacion{
				Errores: []liquidacion.Hallazgo{*hallazgo},
				Filas:   []*liquidacion.ResultadoFila{},
			})
			return
		}

		motor, err := construirMotor(c.Request.Context(), filas, modoValidacion(req.Modo), empresaIDDeQuery(c))
		if err != nil {
			config.LogError(logger, "liquidacion", "validarLiquidacionHandler", "construir motor", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo cargar el catálogo"})
			return
		}

		c.JSON(http.StatusOK, motor.Validar(filas))
	}
}

func exportarLiquidacionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var req validarLiquidacionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": liquidacion.MensajeCuerpoInvalido})
			return
		}

		filas, hallazgo := liquidacion.DecodificarFilas(req.Filas)
		if hallazgo != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": hallazgo.Mensaje})
			return
		}

		modo := modoValidacion(req.Modo)
		motor, err := construirMotor(c.Request.Context(), filas, modo, empresaIDDeQuery(c))
		if err != nil {
			config.LogError(logger, "liquidacion", "exportarLiquidacionHandler", "construir motor", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo cargar el catálogo"})
			return
		}

		resultado := motor.Validar(filas)
		if modo == liquidacion.ModoEstricto && !resultado.Valido {
			c.JSON(http.StatusUnprocessableEntity, resultado)
			return
		}

		escribirCSV(c, resultado.Filas)
	}
}

// exportarLiquidacionPorDefectoHandler renders the export straight from
// the stored records, with zero withholdings and no account selections.
func exportarLiquidacionPorDefectoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()

		filas, err := filasPorDefecto(ctx)
		if err != nil {
			config.LogError(logger, "liquidacion", "exportarLiquidacionPorDefectoHandler", "cargar facturas", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudieron cargar las facturas"})
			return
		}

		motor, err := construirMotor(ctx, filas, liquidacion.ModoPermisivo, nil)
		if err != nil {
			config.LogError(logger, "liquidacion", "exportarLiquidacionPorDefectoHandler", "construir motor", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo cargar el catálogo"})
			return
		}

		escribirCSV(c, motor.Validar(filas).Filas)
	}
}

func escribirCSV(c *gin.Context, filas []*liquidacion.ResultadoFila) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+liquidacion.NombreArchivoCSV+`"`)
	c.Status(http.StatusOK)
	if err := liquidacion.RenderCSV(c.Writer, filas); err != nil {
		config.LogError(config.GetLogger(), "liquidacion", "escribirCSV", "render csv", nil, err)
	}
}

// filasPorDefecto builds one settlement row per spreadsheet invoice,
// matched against its electronic record by CUFE.
func filasPorDefecto(ctx context.Context) ([]liquidacion.FilaLiquidacion, error) {
	facturasXLS, err := models.ListFacturasXLS(ctx)
	if err != nil {
		return nil, err
	}
	facturasXML, err := models.ListFacturasXML(ctx)
	if err != nil {
		return nil, err
	}
	xmlPorCufe := make(map[string]*models.FacturaXML, len(facturasXML))
	for _, fx := range facturasXML {
		xmlPorCufe[fx.Cufe] = fx
	}

	filas := make([]liquidacion.FilaLiquidacion, 0, len(facturasXLS))
	for _, f := range facturasXLS {
		subtotal := f.Total.Sub(f.Iva).Sub(f.Inc)

		facturaXML := xmlPorCufe[f.Cufe]
		proveedorID := 0
		nit := f.NitEmisor
		nombre := f.NombreEmisor
		descripcion := ""
		if facturaXML != nil {
			proveedorID = facturaXML.ProveedorID
			descripcion = facturaXML.Descripcion
			if facturaXML.Proveedor != nil {
				if nit == "" {
					nit = facturaXML.Proveedor.Nit
				}
				if nombre == "" {
					nombre = facturaXML.Proveedor.Nombre
				}
			}
		}
		fecha := ""
		if f.FechaDocumento != nil {
			fecha = f.FechaDocumento.Format("2006-01-02")
		}

		filas = append(filas, liquidacion.FilaLiquidacion{
			TipoDocumento: f.TipoDocumento,
			Cufe:          f.Cufe,
			ProveedorID:   proveedorID,
			Nit:           nit,
			Proveedor:     nombre,
			Fecha:         fecha,
			Descripcion:   descripcion,
			PrefijoFolio:  f.PrefijoFolio(),
			Subtotal:      liquidacion.FormatearMonto(subtotal, 2),
			Iva:           liquidacion.FormatearMonto(f.Iva, 2),
			Inc:           liquidacion.FormatearMonto(f.Inc, 2),
		})
	}
	return filas, nil
}
