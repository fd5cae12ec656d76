// Package siat contiene reglas de dominio para facturación electrónica SIAT (Bolivia).
// Utiliza catálogos de pkg/siat.

package siat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	pkgsiat "github.com/jhoicas/facturacion-siat/pkg/siat"

	"github.com/shopspring/decimal"
)

// ValidateInvoice revisa la factura antes de asignarle número. No exige número, CUF ni CUFD:
// esos los completa la certificación. Devuelve todos los problemas juntos (errors.Join de *domain.FieldError).
func ValidateInvoice(inv *entity.Invoice) error {
	if inv == nil {
		return domain.NewFieldError("factura", "es nula")
	}
	var errs []error
	add := func(field, reason string) {
		errs = append(errs, domain.NewFieldError(field, reason))
	}

	// Cabecera
	// El NIT entra tal cual en el CUF: no se recortan espacios.
	switch nit := inv.NIT; {
	case strings.TrimSpace(nit) == "":
		add("nitEmisor", "es obligatorio")
	case !onlyDigits(nit):
		add("nitEmisor", "solo admite dígitos")
	}
	if inv.IssuedAt.IsZero() {
		add("fechaEmision", "es obligatoria")
	}
	if inv.BranchCode < 0 {
		add("codigoSucursal", "no puede ser negativo")
	}
	if inv.PointOfSale != nil && *inv.PointOfSale < 0 {
		add("codigoPuntoVenta", "no puede ser negativo")
	}
	for _, c := range []struct {
		field string
		value int
	}{
		{"modalidad", inv.Modality},
		{"tipoEmisionFactura", inv.EmissionType},
		{"tipoFactura", inv.InvoiceType},
		{"tipoDocumentoSector", inv.SectorType},
	} {
		if c.value <= 0 {
			add(c.field, "debe ser un código de catálogo positivo")
		}
	}

	// Cliente
	if _, ok := pkgsiat.IdentityDocumentTypes[inv.ClientDocType]; !ok {
		add("codigoTipoDocumentoIdentidad", fmt.Sprintf("código %d fuera de catálogo", inv.ClientDocType))
	}
	if strings.TrimSpace(inv.ClientDocNumber) == "" {
		add("numeroDocumento", "es obligatorio")
	}
	if strings.TrimSpace(inv.ClientName) == "" {
		add("nombreRazonSocial", "es obligatorio")
	}

	// Importes
	if _, ok := pkgsiat.PaymentMethods[inv.PaymentMethod]; !ok {
		add("codigoMetodoPago", fmt.Sprintf("código %d fuera de catálogo", inv.PaymentMethod))
	}
	if strings.TrimSpace(inv.Legend) == "" {
		add("leyenda", "es obligatoria (Ley 453)")
	}
	if inv.Total.IsNegative() {
		add("montoTotal", "no puede ser negativo")
	}
	if !hasMaxDecimals(inv.Total, 2) {
		add("montoTotal", "admite hasta 2 decimales")
	}
	if inv.TaxableBase.IsNegative() || inv.TaxableBase.GreaterThan(inv.Total) {
		add("montoTotalSujetoIva", "debe estar entre 0 y el monto total")
	}

	// Detalle
	if len(inv.Details) == 0 {
		add("detalleFactura", "la factura debe tener al menos un detalle")
	} else {
		sum := decimal.Zero
		for i, d := range inv.Details {
			prefix := fmt.Sprintf("detalleFactura[%d].", i)
			if strings.TrimSpace(d.ActivityCode) == "" {
				add(prefix+"actividadEconomica", "es obligatoria")
			}
			if strings.TrimSpace(d.Description) == "" {
				add(prefix+"descripcion", "es obligatoria")
			}
			if !d.Quantity.IsPositive() {
				add(prefix+"cantidad", "debe ser mayor a cero")
			}
			if !hasMaxDecimals(d.Quantity, 4) {
				add(prefix+"cantidad", "admite hasta 4 decimales")
			}
			if d.UnitPrice.IsNegative() {
				add(prefix+"precioUnitario", "no puede ser negativo")
			}
			if d.Subtotal.IsNegative() || !hasMaxDecimals(d.Subtotal, 2) {
				add(prefix+"subTotal", "debe ser positivo con hasta 2 decimales")
			}
			sum = sum.Add(d.Subtotal)
		}
		if !sum.Equal(inv.Total) {
			add("montoTotal", fmt.Sprintf("(%s) no coincide con la suma de subtotales (%s)",
				inv.Total.StringFixed(2), sum.StringFixed(2)))
		}
	}

	return errors.Join(errs...)
}

func onlyDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func hasMaxDecimals(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Round(places))
}
