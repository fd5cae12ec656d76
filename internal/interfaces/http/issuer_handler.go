package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-siat/internal/application/billing"
	"github.com/jhoicas/facturacion-siat/internal/application/dto"
)

// IssuerHandler configuración del emisor del token: datos fiscales y CUFD.
type IssuerHandler struct {
	uc *billing.IssuerUseCase
}

// NewIssuerHandler construye el handler.
func NewIssuerHandler(uc *billing.IssuerUseCase) *IssuerHandler {
	return &IssuerHandler{uc: uc}
}

// Get godoc
// @Summary      Configuración del emisor
// @Tags         emisor
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.IssuerConfigResponse
// @Failure      412  {object}  dto.ErrorResponse
// @Router       /api/emisor [get]
func (h *IssuerHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), GetNIT(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Save godoc
// @Summary      Guardar configuración del emisor (admin)
// @Tags         emisor
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssuerConfigRequest  true  "Datos fiscales"
// @Success      200   {object}  dto.IssuerConfigResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/emisor [put]
func (h *IssuerHandler) Save(c *fiber.Ctx) error {
	var in dto.IssuerConfigRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Save(c.Context(), GetNIT(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetCUFD godoc
// @Summary      Registrar CUFD del día (admin)
// @Tags         emisor
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AuthorizationWindowRequest  true  "CUFD y vigencia"
// @Success      200   {object}  dto.IssuerConfigResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/emisor/cufd [put]
func (h *IssuerHandler) SetCUFD(c *fiber.Ctx) error {
	var in dto.AuthorizationWindowRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SetCUFD(c.Context(), GetNIT(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
