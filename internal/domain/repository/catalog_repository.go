package repository

import (
	"context"

	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
)

// CatalogRepository acceso de solo lectura a los catálogos del SIN sembrados en la base.
type CatalogRepository interface {
	List(ctx context.Context, catalog string) ([]entity.CatalogEntry, error)
	// LegendFor devuelve la leyenda de la actividad o la general (TODAS).
	LegendFor(ctx context.Context, activityCode string) (string, error)
}
