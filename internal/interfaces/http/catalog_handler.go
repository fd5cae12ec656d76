package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-siat/internal/application/billing"
)

// CatalogHandler catálogos del SIN, leyendas e IVA.
type CatalogHandler struct {
	uc *billing.CatalogUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *billing.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// List godoc
// @Summary      Listar catálogo
// @Tags         catalogos
// @Security     Bearer
// @Produce      json
// @Param        nombre  path  string  true  "tipos_documento_identidad | metodos_pago | unidades_medida | tipos_moneda"
// @Success      200  {array}   dto.CatalogEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/catalogos/{nombre} [get]
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), c.Params("nombre"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Legend GET /api/leyendas/:actividad
func (h *CatalogHandler) Legend(c *fiber.Ctx) error {
	out, err := h.uc.Legend(c.Context(), c.Params("actividad"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// IVA godoc
// @Summary      IVA contenido en un monto
// @Tags         catalogos
// @Security     Bearer
// @Produce      json
// @Param        monto  query  string  true  "monto total, p. ej. 113.00"
// @Success      200  {object}  dto.IVAResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/iva [get]
func (h *CatalogHandler) IVA(c *fiber.Ctx) error {
	out, err := h.uc.IVA(c.Query("monto"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
