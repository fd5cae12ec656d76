package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-siat/internal/application/dto"
	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	"github.com/jhoicas/facturacion-siat/internal/domain/repository"
	"github.com/jhoicas/facturacion-siat/internal/domain/siat"
	"github.com/jhoicas/facturacion-siat/pkg/mutex"
	pkgsiat "github.com/jhoicas/facturacion-siat/pkg/siat"
)

// SIATConfig parámetros de certificación que vienen de la configuración del servicio.
type SIATConfig struct {
	CertPath     string // usado si el emisor no tiene ruta propia
	CertPassword string
	QRBaseURL    string
}

// CertificationError certificación detenida en un paso. Unwrap devuelve la causa tipada.
type CertificationError struct {
	Result *CertificationResult
}

func (e *CertificationError) Error() string {
	return fmt.Sprintf("certificación detenida en %s: %s", e.Result.Step, e.Result.Cause)
}

func (e *CertificationError) Unwrap() error { return e.Result.Err }

// InvoiceUseCase certifica, guarda y consulta facturas, y registra los cambios de estado informados por el SIN.
type InvoiceUseCase struct {
	orchestrator *CertificationOrchestrator
	tx           BillingTxRunner
	invoiceRepo  repository.InvoiceRepository
	issuerRepo   repository.IssuerConfigRepository
	cfg          SIATConfig
	locks        mutex.KeyedMutex[string] // por ID de factura
	log          zerolog.Logger
}

// NewInvoiceUseCase construye el caso de uso inyectando todas sus dependencias.
func NewInvoiceUseCase(
	orchestrator *CertificationOrchestrator,
	tx BillingTxRunner,
	invoiceRepo repository.InvoiceRepository,
	issuerRepo repository.IssuerConfigRepository,
	cfg SIATConfig,
	log zerolog.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		orchestrator: orchestrator,
		tx:           tx,
		invoiceRepo:  invoiceRepo,
		issuerRepo:   issuerRepo,
		cfg:          cfg,
		log:          log.With().Str("component", "facturas").Logger(),
	}
}

// Certify arma la factura con los datos del emisor, la certifica y la guarda junto con el cliente
// en una sola transacción.
//
// Retorna:
//   - domain.ErrNoIssuerConfiguration si el NIT no está configurado.
//   - *CertificationError             si el pipeline se detuvo (validación, CUFD, certificado, firma...).
//   - error de persistencia           si la factura quedó certificada pero no se pudo guardar.
func (uc *InvoiceUseCase) Certify(ctx context.Context, nit string, in dto.CertifyInvoiceRequest) (*dto.InvoiceResponse, error) {
	// ── 1. Configuración del emisor ──────────────────────────────────────────
	issuer, err := uc.issuerRepo.Get(ctx, nit)
	if err != nil {
		return nil, persistence("leer configuración del emisor", err)
	}
	if issuer == nil {
		return nil, domain.ErrNoIssuerConfiguration
	}

	// ── 2. Certificar ────────────────────────────────────────────────────────
	inv := uc.buildInvoice(nit, issuer, in)
	certPath := issuer.CertPath
	if certPath == "" {
		certPath = uc.cfg.CertPath
	}
	res := uc.orchestrator.Certify(ctx, inv, certPath, uc.cfg.CertPassword)
	if !res.Success {
		return nil, &CertificationError{Result: res}
	}

	// ── 3. Persistir factura + cliente frecuente ─────────────────────────────
	now := uc.orchestrator.allocator.Now()
	inv.ID = uuid.New().String()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	err = uc.tx.RunBilling(ctx, func(invoiceRepo repository.InvoiceRepository, clientRepo repository.ClientRepository) error {
		client := &entity.Client{
			ID:         uuid.New().String(),
			DocType:    inv.ClientDocType,
			DocNumber:  inv.ClientDocNumber,
			Complement: inv.ClientComplement,
			Name:       inv.ClientName,
			SearchKey:  SearchKey(inv.ClientName),
			Email:      strings.TrimSpace(in.ClientEmail),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := clientRepo.Save(ctx, client); err != nil {
			return fmt.Errorf("guardar cliente: %w", err)
		}
		inv.ClientID = client.ID
		id, err := invoiceRepo.Save(ctx, inv)
		if err != nil {
			return fmt.Errorf("guardar factura: %w", err)
		}
		inv.ID = id
		return clientRepo.RecordInvoice(ctx, client.ID, inv.IssuedAt)
	})
	if err != nil {
		uc.log.Error().Err(err).
			Str("nit", nit).Int64("invoice_number", inv.Number).Str("cuf", inv.CUF).
			Msg("factura certificada pero no persistida; el número queda consumido")
		return nil, persistence("guardar factura certificada", err)
	}

	out := uc.toResponse(inv, true)
	return &out, nil
}

// buildInvoice completa la factura con sucursal, modalidad y leyenda del emisor.
// Los subtotales se calculan aquí; la validación de dominio los revisa después.
func (uc *InvoiceUseCase) buildInvoice(nit string, issuer *entity.IssuerConfig, in dto.CertifyInvoiceRequest) *entity.Invoice {
	issuedAt := uc.orchestrator.allocator.Now()
	if in.IssuedAt != nil {
		issuedAt = *in.IssuedAt
	}
	emission := in.EmissionType
	if emission == 0 {
		emission = pkgsiat.EmissionOnline
	}

	total := decimal.Zero
	details := make([]entity.InvoiceDetail, 0, len(in.Details))
	for _, d := range in.Details {
		unit := d.UnitOfMeasure
		if unit == 0 {
			unit = pkgsiat.UnitService
		}
		subtotal := d.Quantity.Mul(d.UnitPrice).Round(2)
		total = total.Add(subtotal)
		details = append(details, entity.InvoiceDetail{
			ActivityCode:   strings.TrimSpace(d.ActivityCode),
			SINProductCode: d.SINProductCode,
			ProductCode:    strings.TrimSpace(d.ProductCode),
			Description:    strings.TrimSpace(d.Description),
			Quantity:       d.Quantity,
			UnitOfMeasure:  unit,
			UnitPrice:      d.UnitPrice,
			Subtotal:       subtotal,
		})
	}

	legend := issuer.Legend
	if legend == "" {
		activity := issuer.ActivityCode
		if len(details) > 0 && details[0].ActivityCode != "" {
			activity = details[0].ActivityCode
		}
		legend = pkgsiat.LegendFor(activity)
	}

	return &entity.Invoice{
		NIT:              nit,
		CUFD:             strings.TrimSpace(in.CUFD),
		BranchCode:       issuer.BranchCode,
		PointOfSale:      issuer.PointOfSale,
		Modality:         issuer.Modality,
		EmissionType:     emission,
		InvoiceType:      pkgsiat.InvoiceTypeWithTaxCredit,
		SectorType:       pkgsiat.SectorBuySell,
		IssuedAt:         pkgsiat.LocalTime(issuedAt),
		ClientName:       strings.TrimSpace(in.ClientName),
		ClientDocType:    in.ClientDocType,
		ClientDocNumber:  strings.TrimSpace(in.ClientDocNumber),
		ClientComplement: strings.TrimSpace(in.ClientComplement),
		Total:            total,
		TaxableBase:      total,
		PaymentMethod:    in.PaymentMethod,
		Legend:           legend,
		Details:          details,
	}
}

// ── Cambios de estado ────────────────────────────────────────────────────────

// MarkSubmitting registra que la factura se está enviando al SIN y suma un intento.
func (uc *InvoiceUseCase) MarkSubmitting(ctx context.Context, nit, id string) (*dto.InvoiceResponse, error) {
	return uc.transition(ctx, nit, id, entity.StatusSubmitting, nil, nil)
}

// RecordAcceptance registra la aceptación con su código de autorización.
func (uc *InvoiceUseCase) RecordAcceptance(ctx context.Context, nit, id, authCode string) (*dto.InvoiceResponse, error) {
	authCode = strings.TrimSpace(authCode)
	if authCode == "" {
		return nil, fmt.Errorf("%w: código de autorización requerido", domain.ErrInvalidInput)
	}
	return uc.transition(ctx, nit, id, entity.StatusAccepted, &authCode, nil)
}

// RecordRejection registra el rechazo con el motivo informado.
func (uc *InvoiceUseCase) RecordRejection(ctx context.Context, nit, id, reason string) (*dto.InvoiceResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: motivo de rechazo requerido", domain.ErrInvalidInput)
	}
	return uc.transition(ctx, nit, id, entity.StatusRejected, nil, &reason)
}

// Void anula una factura aceptada.
func (uc *InvoiceUseCase) Void(ctx context.Context, nit, id string) (*dto.InvoiceResponse, error) {
	return uc.transition(ctx, nit, id, entity.StatusVoided, nil, nil)
}

// Regularize devuelve una factura de contingencia a la cola de envío.
func (uc *InvoiceUseCase) Regularize(ctx context.Context, nit, id string) (*dto.InvoiceResponse, error) {
	return uc.transition(ctx, nit, id, entity.StatusPendingSubmission, nil, nil)
}

func (uc *InvoiceUseCase) transition(
	ctx context.Context,
	nit, id string,
	to entity.InvoiceStatus,
	authCode, reason *string,
) (*dto.InvoiceResponse, error) {
	uc.locks.Lock(id)
	defer uc.locks.Unlock(id)

	inv, err := uc.load(ctx, nit, id)
	if err != nil {
		return nil, err
	}
	from := inv.Status
	if err := siat.ApplyTransition(inv, to); err != nil {
		return nil, err
	}
	if err := uc.invoiceRepo.UpdateStatus(ctx, id, to, authCode, reason); err != nil {
		return nil, persistence("actualizar estado", err)
	}
	if to == entity.StatusSubmitting {
		if err := uc.invoiceRepo.IncrementAttempts(ctx, id); err != nil {
			return nil, persistence("registrar intento de envío", err)
		}
		inv.SubmissionAttempts++
	}
	if authCode != nil {
		inv.AuthorizationCode = *authCode
	}
	if reason != nil {
		inv.RejectionReason = *reason
	}

	uc.log.Info().
		Str("nit", nit).Int64("invoice_number", inv.Number).Str("cuf", inv.CUF).
		Str("from", from.String()).Str("to", to.String()).
		Msg("estado de factura actualizado")
	out := uc.toResponse(inv, false)
	return &out, nil
}

// ── Consultas ────────────────────────────────────────────────────────────────

// GetByID devuelve la factura con su detalle y el XML firmado.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, nit, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, nit, id)
	if err != nil {
		return nil, err
	}
	out := uc.toResponse(inv, true)
	return &out, nil
}

// FindByCUF busca una factura del emisor por su CUF.
func (uc *InvoiceUseCase) FindByCUF(ctx context.Context, nit, cuf string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.FindByUniqueCode(ctx, strings.ToUpper(strings.TrimSpace(cuf)))
	if err != nil {
		return nil, persistence("buscar por CUF", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.NIT != nit {
		return nil, domain.ErrForbidden
	}
	out := uc.toResponse(inv, true)
	return &out, nil
}

// SignedXML devuelve el documento firmado y un nombre de archivo sugerido.
func (uc *InvoiceUseCase) SignedXML(ctx context.Context, nit, id string) ([]byte, string, error) {
	inv, err := uc.load(ctx, nit, id)
	if err != nil {
		return nil, "", err
	}
	return []byte(inv.SignedXML), fmt.Sprintf("factura_%s_%d.xml", inv.NIT, inv.Number), nil
}

// History lista facturas del emisor con filtros, la más reciente primero.
func (uc *InvoiceUseCase) History(ctx context.Context, nit string, q dto.InvoiceHistoryQuery) (*dto.InvoiceListResponse, error) {
	q.DefaultPage()
	f := entity.InvoiceFilter{
		NIT:             nit,
		ClientDocNumber: strings.TrimSpace(q.ClientDocNumber),
		Limit:           q.Limit,
		Offset:          q.Offset,
	}
	if q.From != "" {
		d, err := time.ParseInLocation(time.DateOnly, q.From, pkgsiat.Location)
		if err != nil {
			return nil, fmt.Errorf("%w: desde debe tener formato yyyy-mm-dd", domain.ErrInvalidInput)
		}
		f.From = &d
	}
	if q.To != "" {
		d, err := time.ParseInLocation(time.DateOnly, q.To, pkgsiat.Location)
		if err != nil {
			return nil, fmt.Errorf("%w: hasta debe tener formato yyyy-mm-dd", domain.ErrInvalidInput)
		}
		end := d.AddDate(0, 0, 1)
		f.To = &end
	}
	if q.Status != "" {
		s, ok := entity.ParseInvoiceStatus(strings.ToUpper(strings.TrimSpace(q.Status)))
		if !ok {
			return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, q.Status)
		}
		f.Status = &s
	}

	list, err := uc.invoiceRepo.History(ctx, f)
	if err != nil {
		return nil, persistence("listar facturas", err)
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, uc.toResponse(inv, false))
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}

// Pending cola de envío del emisor: pendientes y en contingencia, la más antigua primero.
func (uc *InvoiceUseCase) Pending(ctx context.Context, nit string) ([]dto.InvoiceResponse, error) {
	list, err := uc.invoiceRepo.FindPendingSubmission(ctx)
	if err != nil {
		return nil, persistence("listar pendientes", err)
	}
	out := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		if inv.NIT == nit {
			out = append(out, uc.toResponse(inv, false))
		}
	}
	return out, nil
}

func (uc *InvoiceUseCase) load(ctx context.Context, nit, id string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, persistence("obtener factura", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.NIT != nit {
		return nil, domain.ErrForbidden
	}
	return inv, nil
}

func (uc *InvoiceUseCase) toResponse(inv *entity.Invoice, full bool) dto.InvoiceResponse {
	out := dto.InvoiceResponse{
		ID:                 inv.ID,
		NIT:                inv.NIT,
		Number:             inv.Number,
		CUF:                inv.CUF,
		CUFD:               inv.CUFD,
		BranchCode:         inv.BranchCode,
		PointOfSale:        inv.PointOfSale,
		IssuedAt:           inv.IssuedAt.Format("2006-01-02T15:04:05.000"),
		ClientDocType:      inv.ClientDocType,
		ClientDocNumber:    inv.ClientDocNumber,
		ClientName:         inv.ClientName,
		PaymentMethod:      inv.PaymentMethod,
		Total:              inv.Total,
		IVA:                pkgsiat.IVAIncluded(inv.TaxableBase),
		Legend:             inv.Legend,
		Status:             inv.Status.String(),
		AuthorizationCode:  inv.AuthorizationCode,
		RejectionReason:    inv.RejectionReason,
		SubmissionAttempts: inv.SubmissionAttempts,
		QRURL:              pkgsiat.VerificationURL(uc.cfg.QRBaseURL, inv.NIT, inv.CUF, inv.Number, pkgsiat.QRSizeRoll),
	}
	if !full {
		return out
	}
	out.SignedXML = inv.SignedXML
	out.Details = make([]dto.InvoiceDetailResponse, 0, len(inv.Details))
	for _, d := range inv.Details {
		out.Details = append(out.Details, dto.InvoiceDetailResponse{
			ActivityCode:   d.ActivityCode,
			SINProductCode: d.SINProductCode,
			ProductCode:    d.ProductCode,
			Description:    d.Description,
			Quantity:       d.Quantity,
			UnitOfMeasure:  d.UnitOfMeasure,
			UnitPrice:      d.UnitPrice,
			Subtotal:       d.Subtotal,
		})
	}
	return out
}
