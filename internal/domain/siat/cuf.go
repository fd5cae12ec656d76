// Package siat: generación y verificación del CUF (Código Único de Factura) del SIAT.
// Cadena numérica fija + un dígito Módulo 11 + codificación base 16.

package siat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	pkgsiat "github.com/jhoicas/facturacion-siat/pkg/siat"
)

// Parámetros del dígito de control del CUF.
const (
	cufCheckCount      = 1
	cufCycleLimit      = 9
	cufTensVariant     = false
	issuedAtCodeLayout = "20060102150405.000"
)

// CufGeneratorService calcula el CUF. Sin estado; seguro para uso concurrente.
type CufGeneratorService struct{}

// NewCufGeneratorService crea el servicio.
func NewCufGeneratorService() *CufGeneratorService {
	return &CufGeneratorService{}
}

// Concatenation arma la cadena base del CUF, en este orden:
//
//	NIT + fecha (yyyyMMddHHmmssSSS) + sucursal (4) + modalidad + tipo emisión +
//	tipo factura + tipo documento sector + número (10) + punto de venta (4)
func (s *CufGeneratorService) Concatenation(inv *entity.Invoice) (string, error) {
	if err := validateCufFields(inv); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(inv.NIT)
	b.WriteString(strings.Replace(inv.IssuedAt.Format(issuedAtCodeLayout), ".", "", 1))
	fmt.Fprintf(&b, "%04d", inv.BranchCode)
	fmt.Fprintf(&b, "%d%d%d%d", inv.Modality, inv.EmissionType, inv.InvoiceType, inv.SectorType)
	fmt.Fprintf(&b, "%010d", inv.Number)
	fmt.Fprintf(&b, "%04d", inv.PointOfSaleCode())
	return b.String(), nil
}

// Generate devuelve el CUF en hexadecimal (mayúsculas).
func (s *CufGeneratorService) Generate(inv *entity.Invoice) (string, error) {
	base, err := s.Concatenation(inv)
	if err != nil {
		return "", err
	}
	check, err := pkgsiat.ComputeCheckDigits(base, cufCheckCount, cufCycleLimit, cufTensVariant)
	if err != nil {
		return "", malformedNumeric(err)
	}
	cuf, err := pkgsiat.EncodeHex(base + check)
	if err != nil {
		return "", malformedNumeric(err)
	}
	return cuf, nil
}

// Verify recalcula el CUF y lo compara sin distinguir mayúsculas. Nunca devuelve error.
func (s *CufGeneratorService) Verify(inv *entity.Invoice, candidate string) bool {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return false
	}
	cuf, err := s.Generate(inv)
	if err != nil {
		return false
	}
	return strings.EqualFold(cuf, candidate)
}

func validateCufFields(inv *entity.Invoice) error {
	if inv == nil {
		return domain.NewFieldError("factura", "es nula")
	}
	var errs []error
	if strings.TrimSpace(inv.NIT) == "" {
		errs = append(errs, domain.NewFieldError("nitEmisor", "es obligatorio"))
	}
	if inv.IssuedAt.IsZero() {
		errs = append(errs, domain.NewFieldError("fechaEmision", "es obligatoria"))
	}
	if inv.Number <= 0 {
		errs = append(errs, domain.NewFieldError("numeroFactura", "debe ser mayor a cero"))
	}
	for _, c := range []struct {
		field string
		value int
	}{
		{"codigoSucursal", inv.BranchCode},
		{"codigoPuntoVenta", inv.PointOfSaleCode()},
		{"modalidad", inv.Modality},
		{"tipoEmisionFactura", inv.EmissionType},
		{"tipoFactura", inv.InvoiceType},
		{"tipoDocumentoSector", inv.SectorType},
	} {
		if c.value < 0 {
			errs = append(errs, domain.NewFieldError(c.field, "no puede ser negativo"))
		}
	}
	return errors.Join(errs...)
}

// Un NIT con caracteres no numéricos llega hasta aquí; se reporta como campo mal formado.
func malformedNumeric(err error) error {
	return fmt.Errorf("%w: nitEmisor: %w", domain.ErrMalformedInvoiceFields, err)
}
