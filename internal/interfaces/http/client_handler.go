package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-siat/internal/application/billing"
	"github.com/jhoicas/facturacion-siat/internal/application/dto"
)

// ClientHandler maneja las peticiones HTTP de clientes frecuentes (protegido).
type ClientHandler struct {
	uc *billing.ClientUseCase
}

// NewClientHandler construye el handler.
func NewClientHandler(uc *billing.ClientUseCase) *ClientHandler {
	return &ClientHandler{uc: uc}
}

// Save godoc
// @Summary      Registrar o actualizar cliente
// @Tags         clientes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ClientRequest  true  "Datos del cliente"
// @Success      200   {object}  dto.ClientResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/clientes [post]
func (h *ClientHandler) Save(c *fiber.Ctx) error {
	var in dto.ClientRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Save(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Buscar o listar clientes
// @Description  Con q busca por prefijo de documento o por nombre (sin tildes); sin q lista paginado.
// @Tags         clientes
// @Security     Bearer
// @Produce      json
// @Param        q       query  string  false  "término de búsqueda"
// @Param        limit   query  int     false  "límite"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {array}  dto.ClientResponse
// @Router       /api/clientes [get]
func (h *ClientHandler) List(c *fiber.Ctx) error {
	if term := c.Query("q"); term != "" {
		out, err := h.uc.Search(c.Context(), term)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(out)
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	out, err := h.uc.List(c.Context(), dto.PageRequest{Limit: limit, Offset: offset})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByDocument GET /api/clientes/documento/:tipo/:numero?complemento=
func (h *ClientHandler) GetByDocument(c *fiber.Ctx) error {
	docType, err := strconv.Atoi(c.Params("tipo"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tipo de documento inválido"})
	}
	out, err := h.uc.GetByDocument(c.Context(), docType, c.Params("numero"), c.Query("complemento"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
