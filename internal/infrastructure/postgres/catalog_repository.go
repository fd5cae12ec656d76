package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	"github.com/jhoicas/facturacion-siat/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// legendAnyActivity clave de la leyenda general en la tabla leyendas.
const legendAnyActivity = "TODAS"

// CatalogRepo lee los catálogos sembrados por seed_siat / migraciones.
type CatalogRepo struct {
	q Querier
}

func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

func (r *CatalogRepo) List(ctx context.Context, catalog string) ([]entity.CatalogEntry, error) {
	rows, err := r.q.Query(ctx, `SELECT codigo, descripcion FROM catalogos WHERE catalogo = $1 ORDER BY codigo`, catalog)
	if err != nil {
		return nil, fmt.Errorf("list catalogo %s: %w", catalog, err)
	}
	defer rows.Close()

	var out []entity.CatalogEntry
	for rows.Next() {
		var e entity.CatalogEntry
		if err := rows.Scan(&e.Code, &e.Description); err != nil {
			return nil, fmt.Errorf("scan catalogo: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LegendFor prefiere la leyenda de la actividad; sin ninguna devuelve "".
func (r *CatalogRepo) LegendFor(ctx context.Context, activityCode string) (string, error) {
	const q = `
		SELECT texto FROM leyendas
		WHERE actividad_economica IN ($1, $2)
		ORDER BY (actividad_economica = $2), id
		LIMIT 1`
	var text string
	err := r.q.QueryRow(ctx, q, activityCode, legendAnyActivity).Scan(&text)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("leyenda: %w", err)
	}
	return text, nil
}
