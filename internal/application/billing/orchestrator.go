package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	"github.com/jhoicas/facturacion-siat/internal/domain/siat"
)

// CertificationOrchestrator orquesta la certificación local de una factura:
//
//	Validación → Número → CUF → XML → Certificado → Firma → Serialización
//
// Cualquier falla corta el pipeline y se reporta en el resultado; nunca hay éxito parcial.
// El envío al SIN queda fuera: la factura sale en PENDIENTE_ENVIO (o CONTINGENCIA si es fuera de línea).
type CertificationOrchestrator struct {
	allocator *SequenceAllocator
	codes     CodeGenerator
	builder   DocumentBuilder
	signer    DocumentSigner
	loadCert  CertificateLoader
	log       zerolog.Logger
}

// NewCertificationOrchestrator construye el orquestador con todas sus dependencias.
func NewCertificationOrchestrator(
	allocator *SequenceAllocator,
	codes CodeGenerator,
	builder DocumentBuilder,
	signer DocumentSigner,
	loadCert CertificateLoader,
	log zerolog.Logger,
) *CertificationOrchestrator {
	return &CertificationOrchestrator{
		allocator: allocator,
		codes:     codes,
		builder:   builder,
		signer:    signer,
		loadCert:  loadCert,
		log:       log.With().Str("component", "certificacion").Logger(),
	}
}

// Certify numera, codifica, arma y firma inv. Solo si todo sale bien se copian a inv
// el número, CUF, CUFD, estado inicial y XML firmado.
func (o *CertificationOrchestrator) Certify(ctx context.Context, inv *entity.Invoice, certPath, certPassword string) *CertificationResult {
	res := &CertificationResult{}
	if inv == nil {
		return res.fail(StepValidation, domain.NewFieldError("factura", "requerida"))
	}
	work := *inv
	work.Details = append([]entity.InvoiceDetail(nil), inv.Details...)
	logger := o.log.With().Str("nit", work.NIT).Logger()

	failed := func(step Step, err error) *CertificationResult {
		ev := logger.Warn()
		if domain.Category(err) != domain.ErrValidation {
			ev = logger.Error()
		}
		ev.Err(err).Str("step", string(step)).Int64("invoice_number", res.Number).Msg("certificación abortada")
		return res.fail(step, err)
	}

	// ═══════════════════════════════════════════════════════════════════════════
	// 1. Validación previa (antes de consumir un número)
	// ═══════════════════════════════════════════════════════════════════════════
	if err := siat.ValidateInvoice(&work); err != nil {
		return failed(StepValidation, err)
	}
	cufd, err := o.resolveCUFD(ctx, &work, logger)
	if err != nil {
		return failed(StepValidation, err)
	}
	work.CUFD = cufd

	// ═══════════════════════════════════════════════════════════════════════════
	// 2. Número de factura
	// ═══════════════════════════════════════════════════════════════════════════
	number, err := o.allocator.Next(ctx, work.NIT)
	if err != nil {
		return failed(StepSequence, err)
	}
	work.Number = number
	res.Number = number
	res.SequenceAllocated = true

	// ═══════════════════════════════════════════════════════════════════════════
	// 3. CUF
	// ═══════════════════════════════════════════════════════════════════════════
	cuf, err := o.codes.Generate(&work)
	if err != nil {
		return failed(StepCode, err)
	}
	work.CUF = cuf
	work.Status = siat.InitialStatus(work.EmissionType)

	// ═══════════════════════════════════════════════════════════════════════════
	// 4. XML
	// ═══════════════════════════════════════════════════════════════════════════
	doc, err := o.builder.Build(&work)
	if err != nil {
		return failed(StepDocument, err)
	}

	// ═══════════════════════════════════════════════════════════════════════════
	// 5. Certificado + firma
	// ═══════════════════════════════════════════════════════════════════════════
	cert, err := o.loadCert(certPath, certPassword)
	if err != nil {
		return failed(StepCertificate, err)
	}
	if err := o.signer.Sign(doc, cert); err != nil {
		return failed(StepSignature, err)
	}

	// ═══════════════════════════════════════════════════════════════════════════
	// 6. Serialización
	// ═══════════════════════════════════════════════════════════════════════════
	signed, err := doc.WriteToBytes()
	if err != nil {
		return failed(StepSerialization, fmt.Errorf("%w: serializar XML firmado: %w", domain.ErrSignatureFailed, err))
	}

	work.SignedXML = string(signed)
	*inv = work

	res.Success = true
	res.CUF = cuf
	res.SignedXML = signed
	logger.Info().
		Int64("invoice_number", number).
		Str("cuf", cuf).
		Str("status", work.Status.String()).
		Msg("factura certificada")
	return res
}

// resolveCUFD toma el CUFD de la factura o, si viene vacío, el vigente del emisor.
// Un CUFD vencido solo se advierte: las emisiones en contingencia siguen siendo certificables.
func (o *CertificationOrchestrator) resolveCUFD(ctx context.Context, inv *entity.Invoice, logger zerolog.Logger) (string, error) {
	if c := strings.TrimSpace(inv.CUFD); c != "" {
		return c, nil
	}
	w, err := o.allocator.Window(ctx, inv.NIT)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrMissingCUFD, err)
	}
	if w.Code == "" {
		return "", domain.ErrMissingCUFD
	}
	now := o.allocator.Now()
	switch {
	case w.IsExpired(now):
		logger.Warn().Time("cufd_expires_at", w.ExpiresAt).Msg("CUFD vencido; se certifica igual")
	case w.IsNearExpiry(now):
		logger.Warn().Time("cufd_expires_at", w.ExpiresAt).Msg("CUFD próximo a vencer")
	}
	return w.Code, nil
}
