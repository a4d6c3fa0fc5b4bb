package main

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bitbucket.org/contafacil/facturas_backend/config"
	"bitbucket.org/contafacil/facturas_backend/liquidacion"
	"bitbucket.org/contafacil/facturas_backend/models"
	"bitbucket.org/contafacil/facturas_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// tiposDocumentoAceptados are the listing rows worth ingesting; anything
// else in the spreadsheet is summary noise.
var tiposDocumentoAceptados = map[string]bool{
	"Factura electrónica":                true,
	"Documento soporte con no obligados": true,
	"Nota de crédito electrónica":        true,
}

type filaExcel struct {
	TipoDocumento string `validate:"required"`
	Cufe          string `validate:"required"`
	Folio         string
	Prefijo       string
	NitEmisor     string
	NombreEmisor  string
}

var formatosFecha = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"01-02-06",
	"2/1/2006",
}

func parseFecha(texto string) *time.Time {
	limpio := strings.TrimSpace(texto)
	if limpio == "" {
		return nil
	}
	for _, formato := range formatosFecha {
		if fecha, err := time.Parse(formato, limpio); err == nil {
			return &fecha
		}
	}
	return nil
}

// extraerFechaFila scans every column whose header mentions "fecha" and
// returns the first parseable date.
func extraerFechaFila(encabezados map[string]int, fila []string) *time.Time {
	for nombre, idx := range encabezados {
		if !strings.Contains(strings.ToLower(nombre), "fecha") {
			continue
		}
		if idx >= len(fila) {
			continue
		}
		if fecha := parseFecha(fila[idx]); fecha != nil {
			return fecha
		}
	}
	return nil
}

func celda(encabezados map[string]int, fila []string, nombre string) string {
	idx, ok := encabezados[nombre]
	if !ok || idx >= len(fila) {
		return ""
	}
	return strings.TrimSpace(fila[idx])
}

// subirExcelHandler ingests the invoice listing spreadsheet: one
// FacturaXLS per accepted row, keyed by CUFE, then re-syncs Activo.
func subirExcelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()

		archivo, err := c.FormFile("archivo")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "el archivo es obligatorio"})
			return
		}
		lector, err := archivo.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no se pudo abrir el archivo"})
			return
		}
		defer lector.Close()

		libro, err := excelize.OpenReader(lector)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "el archivo no es un Excel válido"})
			return
		}
		defer libro.Close()

		hojas := libro.GetSheetList()
		if len(hojas) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "el Excel no tiene hojas"})
			return
		}
		registros, err := libro.GetRows(hojas[0])
		if err != nil || len(registros) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no se pudieron leer las filas"})
			return
		}

		encabezados := make(map[string]int, len(registros[0]))
		for i, nombre := range registros[0] {
			encabezados[strings.TrimSpace(nombre)] = i
		}

		creadas := 0
		omitidas := 0
		for _, registro := range registros[1:] {
			fila := filaExcel{
				TipoDocumento: celda(encabezados, registro, "Tipo de documento"),
				Cufe:          celda(encabezados, registro, "CUFE/CUDE"),
				Folio:         celda(encabezados, registro, "Folio"),
				Prefijo:       celda(encabezados, registro, "Prefijo"),
				NitEmisor:     celda(encabezados, registro, "NIT Emisor"),
				NombreEmisor:  celda(encabezados, registro, "Nombre Emisor"),
			}
			if !tiposDocumentoAceptados[fila.TipoDocumento] {
				omitidas++
				continue
			}
			if err := utils.ValidateStruct(fila); err != nil {
				omitidas++
				continue
			}

			factura := &models.FacturaXLS{
				TipoDocumento:  fila.TipoDocumento,
				Cufe:           fila.Cufe,
				Folio:          fila.Folio,
				Prefijo:        fila.Prefijo,
				NitEmisor:      fila.NitEmisor,
				NombreEmisor:   fila.NombreEmisor,
				FechaDocumento: extraerFechaFila(encabezados, registro),
				Iva:            liquidacion.ParseMonto(celda(encabezados, registro, "IVA")),
				Inc:            liquidacion.ParseMonto(celda(encabezados, registro, "INC")),
				Total:          liquidacion.ParseMonto(celda(encabezados, registro, "Total")),
			}
			if _, err := models.GetOrCreateFacturaXLS(ctx, factura); err != nil {
				config.LogError(logger, "ingesta", "subirExcelHandler", "guardar factura xls", fila.Cufe, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo guardar la factura"})
				return
			}
			creadas++
		}

		if err := models.SincronizarEstadoFacturasXLS(ctx); err != nil {
			config.LogError(logger, "ingesta", "subirExcelHandler", "sincronizar estado", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo sincronizar el estado"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"procesadas": creadas, "omitidas": omitidas})
	}
}

// facturaUBL maps the UBL nodes the settlement cares about. Element
// names match regardless of namespace prefix.
type facturaUBL struct {
	UUID      string `xml:"UUID"`
	IssueDate string `xml:"IssueDate"`
	Supplier  struct {
		Party struct {
			PartyName struct {
				Name string `xml:"Name"`
			} `xml:"PartyName"`
			PartyTaxScheme struct {
				CompanyID string `xml:"CompanyID"`
			} `xml:"PartyTaxScheme"`
		} `xml:"Party"`
	} `xml:"AccountingSupplierParty"`
	InvoiceLine struct {
		Item struct {
			Description string `xml:"Description"`
		} `xml:"Item"`
	} `xml:"InvoiceLine"`
	LegalMonetaryTotal struct {
		LineExtensionAmount string `xml:"LineExtensionAmount"`
		PayableAmount       string `xml:"PayableAmount"`
	} `xml:"LegalMonetaryTotal"`
	TaxTotal struct {
		TaxAmount string `xml:"TaxAmount"`
	} `xml:"TaxTotal"`
}

var errXMLIncompleto = errors.New("el XML no tiene los nodos requeridos")

// procesarXML ingests one UBL invoice: get-or-create the provider by NIT
// and the FacturaXML by CUFE.
func procesarXML(ctx context.Context, lector io.Reader) error {
	var doc facturaUBL
	if err := xml.NewDecoder(lector).Decode(&doc); err != nil {
		return err
	}

	cufe := strings.TrimSpace(doc.UUID)
	nombre := strings.TrimSpace(doc.Supplier.Party.PartyName.Name)
	nit := strings.TrimSpace(doc.Supplier.Party.PartyTaxScheme.CompanyID)
	if cufe == "" || nombre == "" || nit == "" {
		return errXMLIncompleto
	}
	fecha := parseFecha(doc.IssueDate)
	if fecha == nil {
		return errXMLIncompleto
	}

	proveedor, err := models.GetOrCreateProveedor(ctx, nit, nombre)
	if err != nil {
		return err
	}

	_, err = models.GetOrCreateFacturaXML(ctx, &models.FacturaXML{
		Cufe:        cufe,
		Fecha:       *fecha,
		Descripcion: strings.TrimSpace(doc.InvoiceLine.Item.Description),
		Subtotal:    liquidacion.ParseMonto(doc.LegalMonetaryTotal.LineExtensionAmount),
		Iva:         liquidacion.ParseMonto(doc.TaxTotal.TaxAmount),
		Total:       liquidacion.ParseMonto(doc.LegalMonetaryTotal.PayableAmount),
		ProveedorID: proveedor.ID,
	})
	return err
}

// subirZipHandler ingests a ZIP of UBL XML invoices. Files that fail to
// parse are skipped, the rest are processed.
func subirZipHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()

		archivo, err := c.FormFile("archivo")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "el archivo es obligatorio"})
			return
		}

		ruta := filepath.Join(os.TempDir(), uuid.NewString()+".zip")
		if err := c.SaveUploadedFile(archivo, ruta); err != nil {
			config.LogError(logger, "ingesta", "subirZipHandler", "guardar temporal", archivo.Filename, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo guardar el archivo"})
			return
		}
		defer os.Remove(ruta)

		zipLector, err := zip.OpenReader(ruta)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "el archivo no es un ZIP válido"})
			return
		}
		defer zipLector.Close()

		procesados := 0
		omitidos := 0
		for _, entrada := range zipLector.File {
			if !strings.HasSuffix(strings.ToLower(entrada.Name), ".xml") {
				continue
			}
			contenido, err := entrada.Open()
			if err != nil {
				omitidos++
				continue
			}
			err = procesarXML(ctx, contenido)
			contenido.Close()
			if err != nil {
				omitidos++
				continue
			}
			procesados++
		}

		if err := models.SincronizarEstadoFacturasXLS(ctx); err != nil {
			config.LogError(logger, "ingesta", "subirZipHandler", "sincronizar estado", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo sincronizar el estado"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"procesados": procesados, "omitidos": omitidos})
	}
}
