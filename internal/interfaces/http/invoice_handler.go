package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-siat/internal/application/billing"
	"github.com/jhoicas/facturacion-siat/internal/application/dto"
)

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	uc  *billing.InvoiceUseCase
	pdf *billing.PDFUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase, pdf *billing.PDFUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, pdf: pdf}
}

// Certify godoc
// @Summary      Certificar factura
// @Description  Numera, calcula el CUF, arma y firma el XML, y guarda la factura con el cliente.
// @Tags         facturas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CertifyInvoiceRequest  true  "Datos de la factura"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      412   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.CertificationFailureResponse
// @Router       /api/facturas [post]
func (h *InvoiceHandler) Certify(c *fiber.Ctx) error {
	var in dto.CertifyInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Certify(c.Context(), GetNIT(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener factura por ID
// @Tags         facturas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facturas/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), GetNIT(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByCUF GET /api/facturas/cuf/:cuf
func (h *InvoiceHandler) GetByCUF(c *fiber.Ctx) error {
	out, err := h.uc.FindByCUF(c.Context(), GetNIT(c), c.Params("cuf"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de facturas
// @Tags         facturas
// @Security     Bearer
// @Produce      json
// @Param        desde      query  string  false  "yyyy-mm-dd"
// @Param        hasta      query  string  false  "yyyy-mm-dd (inclusive)"
// @Param        estado     query  string  false  "ACEPTADA, RECHAZADA, ... o código"
// @Param        documento  query  string  false  "documento del cliente"
// @Param        limit      query  int     false  "máximo 100"
// @Param        offset     query  int     false  "desplazamiento"
// @Success      200  {object}  dto.InvoiceListResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/facturas [get]
func (h *InvoiceHandler) History(c *fiber.Ctx) error {
	var q dto.InvoiceHistoryQuery
	if err := c.QueryParser(&q); err != nil {
		return badBody(c)
	}
	out, err := h.uc.History(c.Context(), GetNIT(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Pending GET /api/facturas/pendientes
func (h *InvoiceHandler) Pending(c *fiber.Ctx) error {
	out, err := h.uc.Pending(c.Context(), GetNIT(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SignedXML godoc
// @Summary      Descargar XML firmado
// @Tags         facturas
// @Security     Bearer
// @Produce      application/xml
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/xml [get]
func (h *InvoiceHandler) SignedXML(c *fiber.Ctx) error {
	body, filename, err := h.uc.SignedXML(c.Context(), GetNIT(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(body)
}

// PDF godoc
// @Summary      Descargar representación gráfica (PDF)
// @Tags         facturas
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	body, filename, err := h.pdf.DownloadInvoicePDF(c.Context(), GetNIT(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(body)
}

// QR GET /api/facturas/:id/qr?size=256
func (h *InvoiceHandler) QR(c *fiber.Ctx) error {
	size, _ := strconv.Atoi(c.Query("size", "0"))
	png, err := h.pdf.InvoiceQR(c.Context(), GetNIT(c), c.Params("id"), size)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// ── Cambios de estado informados por el SIN ───────────────────────────────────

// MarkSubmitting POST /api/facturas/:id/envio
func (h *InvoiceHandler) MarkSubmitting(c *fiber.Ctx) error {
	return h.respond(c, func(nit, id string, _ dto.StatusUpdateRequest) (*dto.InvoiceResponse, error) {
		return h.uc.MarkSubmitting(c.Context(), nit, id)
	})
}

// Accept godoc
// @Summary      Registrar aceptación del SIN
// @Tags         facturas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la factura"
// @Param        body  body  dto.StatusUpdateRequest  true  "codigo_autorizacion"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/aceptacion [post]
func (h *InvoiceHandler) Accept(c *fiber.Ctx) error {
	return h.respond(c, func(nit, id string, in dto.StatusUpdateRequest) (*dto.InvoiceResponse, error) {
		return h.uc.RecordAcceptance(c.Context(), nit, id, in.AuthorizationCode)
	})
}

// Reject POST /api/facturas/:id/rechazo
func (h *InvoiceHandler) Reject(c *fiber.Ctx) error {
	return h.respond(c, func(nit, id string, in dto.StatusUpdateRequest) (*dto.InvoiceResponse, error) {
		return h.uc.RecordRejection(c.Context(), nit, id, in.Reason)
	})
}

// Void POST /api/facturas/:id/anulacion (solo admin)
func (h *InvoiceHandler) Void(c *fiber.Ctx) error {
	return h.respond(c, func(nit, id string, _ dto.StatusUpdateRequest) (*dto.InvoiceResponse, error) {
		return h.uc.Void(c.Context(), nit, id)
	})
}

// Regularize POST /api/facturas/:id/regularizacion
func (h *InvoiceHandler) Regularize(c *fiber.Ctx) error {
	return h.respond(c, func(nit, id string, _ dto.StatusUpdateRequest) (*dto.InvoiceResponse, error) {
		return h.uc.Regularize(c.Context(), nit, id)
	})
}

func (h *InvoiceHandler) respond(c *fiber.Ctx, fn func(nit, id string, in dto.StatusUpdateRequest) (*dto.InvoiceResponse, error)) error {
	var in dto.StatusUpdateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := fn(GetNIT(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
