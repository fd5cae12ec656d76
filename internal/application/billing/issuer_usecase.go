package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/facturacion-siat/internal/application/dto"
	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	"github.com/jhoicas/facturacion-siat/internal/domain/repository"
	pkgsiat "github.com/jhoicas/facturacion-siat/pkg/siat"
)

// IssuerUseCase administra la configuración del emisor y su CUFD.
type IssuerUseCase struct {
	repo      repository.IssuerConfigRepository
	allocator *SequenceAllocator
}

// NewIssuerUseCase construye el caso de uso.
func NewIssuerUseCase(repo repository.IssuerConfigRepository, allocator *SequenceAllocator) *IssuerUseCase {
	return &IssuerUseCase{repo: repo, allocator: allocator}
}

// Get devuelve la configuración del emisor con el estado de su CUFD.
func (uc *IssuerUseCase) Get(ctx context.Context, nit string) (*dto.IssuerConfigResponse, error) {
	cfg, err := uc.repo.Get(ctx, nit)
	if err != nil {
		return nil, persistence("leer configuración del emisor", err)
	}
	if cfg == nil {
		return nil, domain.ErrNoIssuerConfiguration
	}
	return uc.toResponse(cfg), nil
}

// Save crea o actualiza los datos fiscales del emisor. El CUFD y el contador no se tocan.
func (uc *IssuerUseCase) Save(ctx context.Context, nit string, in dto.IssuerConfigRequest) (*dto.IssuerConfigResponse, error) {
	if nit == "" || strings.Trim(nit, "0123456789") != "" {
		return nil, fmt.Errorf("%w: NIT %q inválido", domain.ErrInvalidInput, nit)
	}
	if strings.TrimSpace(in.BusinessName) == "" {
		return nil, fmt.Errorf("%w: razón social requerida", domain.ErrInvalidInput)
	}
	if in.Modality != pkgsiat.ModalityElectronic && in.Modality != pkgsiat.ModalityComputerized {
		return nil, fmt.Errorf("%w: modalidad debe ser 1 (electrónica) o 2 (computarizada)", domain.ErrInvalidInput)
	}
	if in.BranchCode < 0 || (in.PointOfSale != nil && *in.PointOfSale < 0) {
		return nil, fmt.Errorf("%w: sucursal y punto de venta no pueden ser negativos", domain.ErrInvalidInput)
	}

	cfg, err := uc.repo.Get(ctx, nit)
	if err != nil {
		return nil, persistence("leer configuración del emisor", err)
	}
	now := time.Now()
	if cfg == nil {
		cfg = &entity.IssuerConfig{NIT: nit, CreatedAt: now}
	}
	cfg.BusinessName = strings.TrimSpace(in.BusinessName)
	cfg.Modality = in.Modality
	cfg.BranchCode = in.BranchCode
	cfg.PointOfSale = in.PointOfSale
	cfg.ActivityCode = strings.TrimSpace(in.ActivityCode)
	cfg.Legend = strings.TrimSpace(in.Legend)
	if cfg.Legend == "" {
		cfg.Legend = pkgsiat.LegendFor(cfg.ActivityCode)
	}
	cfg.CertPath = strings.TrimSpace(in.CertPath)
	cfg.UpdatedAt = now

	if err := uc.repo.Save(ctx, cfg); err != nil {
		return nil, persistence("guardar configuración del emisor", err)
	}
	uc.allocator.Forget(nit)
	return uc.toResponse(cfg), nil
}

// SetCUFD registra el CUFD diario obtenido del SIN.
func (uc *IssuerUseCase) SetCUFD(ctx context.Context, nit string, in dto.AuthorizationWindowRequest) (*dto.IssuerConfigResponse, error) {
	if !in.ExpiresAt.IsZero() && !in.ExpiresAt.After(uc.allocator.Now()) {
		return nil, fmt.Errorf("%w: la vigencia del CUFD ya pasó", domain.ErrInvalidInput)
	}
	if err := uc.allocator.SetAuthorizationWindow(ctx, nit, in.CUFD, in.ExpiresAt); err != nil {
		return nil, err
	}
	return uc.Get(ctx, nit)
}

func (uc *IssuerUseCase) toResponse(cfg *entity.IssuerConfig) *dto.IssuerConfigResponse {
	w := cfg.AuthorizationWindow()
	now := uc.allocator.Now()
	out := &dto.IssuerConfigResponse{
		NIT:               cfg.NIT,
		BusinessName:      cfg.BusinessName,
		Modality:          cfg.Modality,
		BranchCode:        cfg.BranchCode,
		PointOfSale:       cfg.PointOfSale,
		ActivityCode:      cfg.ActivityCode,
		Legend:            cfg.Legend,
		CertPath:          cfg.CertPath,
		LastInvoiceNumber: cfg.LastInvoiceNumber,
		CUFD:              w.Code,
		CUFDExpired:       w.IsExpired(now),
		CUFDNearExpiry:    w.Code != "" && w.IsNearExpiry(now),
	}
	if !w.ExpiresAt.IsZero() {
		out.CUFDExpiresAt = w.ExpiresAt.In(pkgsiat.Location).Format(time.RFC3339)
	}
	return out
}
