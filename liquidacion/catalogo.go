package liquidacion

import (
	"context"

	"bitbucket.org/contafacil/facturas_backend/models"
)

type claveCatalogo struct {
	proveedorID int
	casilla     models.Casilla
}

// CatalogoIndice is the read-only catalog view one validation call works
// against. It is built once per call and never mutated afterwards, so
// rows can be processed concurrently without locking.
type CatalogoIndice struct {
	proveedores map[int]*models.Proveedor
	porClave    map[claveCatalogo][]*models.CuentaContableProveedor
	porId       map[int]*models.CuentaContableProveedor

	// BuscaExterna, when set, resolves an entry id outside the indexed
	// providers. Only the permissive validation mode consults it.
	BuscaExterna func(id int) *models.CuentaContableProveedor
}

// NuevoCatalogoIndice groups already-fetched active entries by
// (proveedor, casilla) and indexes them by id. Entry order is preserved,
// so callers should hand the slice over ordered by account code.
func NuevoCatalogoIndice(proveedores map[int]*models.Proveedor, items []*models.CuentaContableProveedor) *CatalogoIndice {
	indice := &CatalogoIndice{
		proveedores: proveedores,
		porClave:    make(map[claveCatalogo][]*models.CuentaContableProveedor),
		porId:       make(map[int]*models.CuentaContableProveedor, len(items)),
	}
	if indice.proveedores == nil {
		indice.proveedores = make(map[int]*models.Proveedor)
	}
	for _, item := range items {
		indice.porId[item.ID] = item
		clave := claveCatalogo{proveedorID: item.ProveedorID, casilla: item.Casilla}
		indice.porClave[clave] = append(indice.porClave[clave], item)
	}
	return indice
}

// ConstruirCatalogo loads the providers and their active catalog entries
// in one batched fetch and builds the per-call index, optionally scoped
// to one tenant.
func ConstruirCatalogo(ctx context.Context, proveedorIds []int, empresaID *int) (*CatalogoIndice, error) {
	proveedores, err := models.GetProveedoresPorIds(ctx, proveedorIds, empresaID)
	if err != nil {
		return nil, err
	}

	visibles := make([]int, 0, len(proveedores))
	for id := range proveedores {
		visibles = append(visibles, id)
	}
	var items []*models.CuentaContableProveedor
	if len(visibles) > 0 {
		items, err = models.GetCatalogoActivo(ctx, visibles)
		if err != nil {
			return nil, err
		}
	}

	indice := NuevoCatalogoIndice(proveedores, items)
	indice.BuscaExterna = func(id int) *models.CuentaContableProveedor {
		item, err := models.GetCatalogoPorId(ctx, id)
		if err != nil {
			return nil
		}
		return item
	}
	return indice, nil
}

// Proveedor returns the indexed provider record, or nil.
func (c *CatalogoIndice) Proveedor(id int) *models.Proveedor {
	return c.proveedores[id]
}

// Opciones lists the provider's active entries for one casilla, ordered
// by account code. An empty list means the provider has nothing
// configured for that casilla, which is a legitimate state.
func (c *CatalogoIndice) Opciones(proveedorID int, casilla models.Casilla) []*models.CuentaContableProveedor {
	return c.porClave[claveCatalogo{proveedorID: proveedorID, casilla: casilla}]
}

// PorId resolves one indexed entry by its identifier, or nil.
func (c *CatalogoIndice) PorId(id int) *models.CuentaContableProveedor {
	return c.porId[id]
}

// OpcionCatalogo is one selectable entry in the catalog query response.
type OpcionCatalogo struct {
	ID                int     `json:"id"`
	CuentaCodigo      string  `json:"cuenta_codigo"`
	CuentaDescripcion string  `json:"cuenta_descripcion"`
	Naturaleza        string  `json:"naturaleza"`
	Porcentaje        *string `json:"porcentaje,omitempty"`
	ModoCalculo       string  `json:"modo_calculo,omitempty"`
	Ayuda             string  `json:"ayuda,omitempty"`
}

// RespuestaCatalogo renders one provider's options keyed by the seven
// fixed response names. Every key is always present, empty or not.
func (c *CatalogoIndice) RespuestaCatalogo(proveedorID int) map[string][]OpcionCatalogo {
	respuesta := make(map[string][]OpcionCatalogo, len(CasillasOrden))
	for _, casilla := range CasillasOrden {
		clave := CatalogoResponseKeys[casilla]
		opciones := []OpcionCatalogo{}
		for _, item := range c.Opciones(proveedorID, casilla) {
			opcion := OpcionCatalogo{
				ID:          item.ID,
				Naturaleza:  string(item.Naturaleza),
				ModoCalculo: string(item.ModoCalculo),
				Ayuda:       item.Ayuda,
			}
			if item.Cuenta != nil {
				opcion.CuentaCodigo = item.Cuenta.Codigo
				opcion.CuentaDescripcion = item.Cuenta.Descripcion
			}
			if item.Porcentaje != nil {
				pct := FormatearMonto(*item.Porcentaje, 4)
				opcion.Porcentaje = &pct
			}
			opciones = append(opciones, opcion)
		}
		respuesta[clave] = opciones
	}
	return respuesta
}
