package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-siat/internal/application/dto"
	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/repository"
	pkgsiat "github.com/jhoicas/facturacion-siat/pkg/siat"
)

// CatalogUseCase expone los catálogos paramétricos del SIN. Si la tabla sincronizada está vacía
// se responde con los valores incluidos en el binario.
type CatalogUseCase struct {
	repo repository.CatalogRepository
}

// NewCatalogUseCase construye el caso de uso. repo puede ser nil (solo catálogos incluidos).
func NewCatalogUseCase(repo repository.CatalogRepository) *CatalogUseCase {
	return &CatalogUseCase{repo: repo}
}

// List devuelve el catálogo pedido ordenado por código.
func (uc *CatalogUseCase) List(ctx context.Context, name string) ([]dto.CatalogEntryResponse, error) {
	builtin, ok := pkgsiat.Catalogs[name]
	if !ok {
		return nil, fmt.Errorf("%w: catálogo %q", domain.ErrNotFound, name)
	}
	if uc.repo != nil {
		entries, err := uc.repo.List(ctx, name)
		if err != nil {
			return nil, persistence("listar catálogo", err)
		}
		if len(entries) > 0 {
			out := make([]dto.CatalogEntryResponse, 0, len(entries))
			for _, e := range entries {
				out = append(out, dto.CatalogEntryResponse{Code: e.Code, Description: e.Description})
			}
			return out, nil
		}
	}
	out := make([]dto.CatalogEntryResponse, 0, len(builtin))
	for _, code := range pkgsiat.SortedCodes(builtin) {
		out = append(out, dto.CatalogEntryResponse{Code: code, Description: builtin[code]})
	}
	return out, nil
}

// Legend devuelve la leyenda Ley 453 de la actividad (o la genérica).
func (uc *CatalogUseCase) Legend(ctx context.Context, activity string) (*dto.LegendResponse, error) {
	activity = strings.TrimSpace(activity)
	if uc.repo != nil {
		text, err := uc.repo.LegendFor(ctx, activity)
		if err != nil {
			return nil, persistence("leer leyenda", err)
		}
		if text != "" {
			return &dto.LegendResponse{ActivityCode: activity, Text: text}, nil
		}
	}
	return &dto.LegendResponse{ActivityCode: activity, Text: pkgsiat.LegendFor(activity)}, nil
}

// IVA calcula el IVA contenido en un total (13% incluido en el precio).
func (uc *CatalogUseCase) IVA(total string) (*dto.IVAResponse, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(total))
	if err != nil || d.IsNegative() {
		return nil, fmt.Errorf("%w: monto %q inválido", domain.ErrInvalidInput, total)
	}
	return &dto.IVAResponse{
		Total: d.StringFixed(2),
		IVA:   pkgsiat.IVAIncluded(d).StringFixed(2),
	}, nil
}
