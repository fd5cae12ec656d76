package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-siat/internal/application/billing"
	"github.com/jhoicas/facturacion-siat/internal/application/dto"
	"github.com/jhoicas/facturacion-siat/internal/domain"
)

// statusFor traduce un error de dominio a código HTTP y código de error de la API.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrNoIssuerConfiguration):
		return fiber.StatusPreconditionFailed, "NO_ISSUER_CONFIG"
	case errors.Is(err, domain.ErrMissingCUFD):
		return fiber.StatusPreconditionFailed, "MISSING_CUFD"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	}

	switch domain.Category(err) {
	case domain.ErrValidation:
		return fiber.StatusUnprocessableEntity, "VALIDATION"
	case domain.ErrCrypto:
		return fiber.StatusUnprocessableEntity, "CRYPTO"
	case domain.ErrConcurrency:
		return fiber.StatusConflict, "ILLEGAL_TRANSITION"
	case domain.ErrPersistence:
		return fiber.StatusServiceUnavailable, "PERSISTENCE"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError responde el error con el cuerpo estándar. Una certificación detenida
// incluye además el paso y si el número de factura quedó consumido.
func writeError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)

	var certErr *billing.CertificationError
	if errors.As(err, &certErr) {
		return c.Status(status).JSON(dto.CertificationFailureResponse{
			Code:              code,
			Message:           certErr.Result.Cause,
			Step:              string(certErr.Result.Step),
			Number:            certErr.Result.Number,
			SequenceAllocated: certErr.Result.SequenceAllocated,
		})
	}

	msg := err.Error()
	if status == fiber.StatusInternalServerError || status == fiber.StatusServiceUnavailable {
		msg = "error interno, intente más tarde"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
