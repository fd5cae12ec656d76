package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/repository"
	pkgsiat "github.com/jhoicas/facturacion-siat/pkg/siat"
)

// PDFUseCase genera la representación gráfica (PDF) y el QR de verificación de una factura certificada.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	issuerRepo  repository.IssuerConfigRepository
	generator   InvoicePDFGenerator
	qr          QRGenerator
	qrBaseURL   string
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	issuerRepo repository.IssuerConfigRepository,
	generator InvoicePDFGenerator,
	qr QRGenerator,
	qrBaseURL string,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo: invoiceRepo,
		issuerRepo:  issuerRepo,
		generator:   generator,
		qr:          qr,
		qrBaseURL:   qrBaseURL,
	}
}

// DownloadInvoicePDF recupera la factura y el emisor y genera el PDF con el QR de verificación.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe.
//   - domain.ErrForbidden        si la factura es de otro NIT.
//   - domain.ErrInvalidInput     si la factura aún no tiene CUF.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, nit, invoiceID string) (pdfBytes []byte, filename string, err error) {
	// ── 1. Cargar factura ─────────────────────────────────────────────────────
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", persistence("pdf: obtener factura", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	if inv.NIT != nit {
		return nil, "", domain.ErrForbidden
	}
	if inv.CUF == "" {
		return nil, "", fmt.Errorf("%w: la factura no está certificada", domain.ErrInvalidInput)
	}

	// ── 2. Cargar emisor ──────────────────────────────────────────────────────
	issuer, err := uc.issuerRepo.Get(ctx, nit)
	if err != nil {
		return nil, "", persistence("pdf: obtener emisor", err)
	}
	if issuer == nil {
		return nil, "", domain.ErrNoIssuerConfiguration
	}

	// ── 3. Generar PDF ────────────────────────────────────────────────────────
	qrURL := pkgsiat.VerificationURL(uc.qrBaseURL, inv.NIT, inv.CUF, inv.Number, pkgsiat.QRSizeLetter)
	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv, issuer, qrURL)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("factura_%s_%d.pdf", inv.NIT, inv.Number)
	return pdfBytes, filename, nil
}

// InvoiceQR devuelve el PNG del QR de verificación (size en píxeles).
func (uc *PDFUseCase) InvoiceQR(ctx context.Context, nit, invoiceID string, size int) ([]byte, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, persistence("qr: obtener factura", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.NIT != nit {
		return nil, domain.ErrForbidden
	}
	if inv.CUF == "" {
		return nil, fmt.Errorf("%w: la factura no está certificada", domain.ErrInvalidInput)
	}
	url := pkgsiat.VerificationURL(uc.qrBaseURL, inv.NIT, inv.CUF, inv.Number, pkgsiat.QRSizeRoll)
	return uc.qr.PNG(url, size)
}
