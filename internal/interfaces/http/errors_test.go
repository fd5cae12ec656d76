package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-siat/internal/application/billing"
	"github.com/jhoicas/facturacion-siat/internal/application/dto"
	"github.com/jhoicas/facturacion-siat/internal/domain"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
		{domain.ErrNoIssuerConfiguration, fiber.StatusPreconditionFailed, "NO_ISSUER_CONFIG"},
		{fmt.Errorf("%w: vencido", domain.ErrMissingCUFD), fiber.StatusPreconditionFailed, "MISSING_CUFD"},
		{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
		{domain.NewFieldError("nitEmisor", "vacío"), fiber.StatusUnprocessableEntity, "VALIDATION"},
		{domain.ErrInvalidCredentials, fiber.StatusUnprocessableEntity, "CRYPTO"},
		{&domain.IllegalTransitionError{From: "ANULADA", To: "ACEPTADA"}, fiber.StatusConflict, "ILLEGAL_TRANSITION"},
		{fmt.Errorf("%w: timeout", domain.ErrPersistence), fiber.StatusServiceUnavailable, "PERSISTENCE"},
		{errors.New("otro"), fiber.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		status, code := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestWriteError_CertificacionDetenida(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return writeError(c, &billing.CertificationError{Result: &billing.CertificationResult{
			Number:            8,
			SequenceAllocated: true,
			Step:              billing.StepCertificate,
			Cause:             "certificado no encontrado",
			Err:               domain.ErrCertificateNotFound,
		}})
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	var body dto.CertificationFailureResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "CRYPTO", body.Code)
	assert.Equal(t, "certificado", body.Step)
	assert.Equal(t, int64(8), body.Number)
	assert.True(t, body.SequenceAllocated)
}

func TestWriteError_NoExponeErroresInternos(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return writeError(c, fmt.Errorf("%w: dial tcp 10.0.0.5:5432", domain.ErrPersistence))
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "PERSISTENCE", body.Code)
	assert.NotContains(t, body.Message, "10.0.0.5")
}
