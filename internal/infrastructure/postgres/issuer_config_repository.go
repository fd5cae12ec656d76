package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	"github.com/jhoicas/facturacion-siat/internal/domain/repository"
)

var _ repository.IssuerConfigRepository = (*IssuerConfigRepo)(nil)

// IssuerConfigRepo implementa IssuerConfigRepository sobre la tabla configuracion_emisor.
type IssuerConfigRepo struct {
	q Querier
}

// NewIssuerConfigRepository construye el repositorio. Pasar pool o tx (Querier).
func NewIssuerConfigRepository(q Querier) *IssuerConfigRepo {
	return &IssuerConfigRepo{q: q}
}

func (r *IssuerConfigRepo) Get(ctx context.Context, nit string) (*entity.IssuerConfig, error) {
	const q = `
		SELECT nit, razon_social, modalidad, codigo_sucursal, codigo_punto_venta,
		       actividad_economica, leyenda, ruta_certificado,
		       cufd, cufd_emitido, cufd_vigencia, ultimo_numero, created_at, updated_at
		FROM configuracion_emisor WHERE nit = $1`
	var (
		c    entity.IssuerConfig
		cufd *string
	)
	err := r.q.QueryRow(ctx, q, nit).Scan(
		&c.NIT, &c.BusinessName, &c.Modality, &c.BranchCode, &c.PointOfSale,
		&c.ActivityCode, &c.Legend, &c.CertPath,
		&cufd, &c.CUFDIssuedAt, &c.CUFDExpiresAt, &c.LastInvoiceNumber, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get configuracion_emisor: %w", err)
	}
	c.CUFD = derefStr(cufd)
	return &c, nil
}

// Save inserta o actualiza los datos fiscales. El CUFD y el contador solo cambian por sus operaciones propias.
func (r *IssuerConfigRepo) Save(ctx context.Context, cfg *entity.IssuerConfig) error {
	const q = `
		INSERT INTO configuracion_emisor
			(nit, razon_social, modalidad, codigo_sucursal, codigo_punto_venta,
			 actividad_economica, leyenda, ruta_certificado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (nit) DO UPDATE
		SET razon_social        = EXCLUDED.razon_social,
		    modalidad           = EXCLUDED.modalidad,
		    codigo_sucursal     = EXCLUDED.codigo_sucursal,
		    codigo_punto_venta  = EXCLUDED.codigo_punto_venta,
		    actividad_economica = EXCLUDED.actividad_economica,
		    leyenda             = EXCLUDED.leyenda,
		    ruta_certificado    = EXCLUDED.ruta_certificado,
		    updated_at          = now()`
	_, err := r.q.Exec(ctx, q,
		cfg.NIT, cfg.BusinessName, cfg.Modality, cfg.BranchCode, cfg.PointOfSale,
		cfg.ActivityCode, cfg.Legend, cfg.CertPath,
	)
	if err != nil {
		return fmt.Errorf("upsert configuracion_emisor: %w", err)
	}
	return nil
}

func (r *IssuerConfigRepo) UpdateAuthorizationWindow(ctx context.Context, nit, code string, expiry time.Time) error {
	const q = `
		UPDATE configuracion_emisor
		SET cufd = $2, cufd_emitido = now(), cufd_vigencia = $3, updated_at = now()
		WHERE nit = $1`
	tag, err := r.q.Exec(ctx, q, nit, code, expiry)
	if err != nil {
		return fmt.Errorf("update cufd: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoIssuerConfiguration
	}
	return nil
}

// NextSequenceNumber incrementa y devuelve el contador en una sola sentencia: el bloqueo de fila
// de PostgreSQL serializa también a otros procesos que compartan la base.
func (r *IssuerConfigRepo) NextSequenceNumber(ctx context.Context, nit string) (int64, error) {
	const q = `
		UPDATE configuracion_emisor
		SET ultimo_numero = ultimo_numero + 1, updated_at = now()
		WHERE nit = $1
		RETURNING ultimo_numero`
	var n int64
	if err := r.q.QueryRow(ctx, q, nit).Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNoIssuerConfiguration
		}
		return 0, fmt.Errorf("next sequence number: %w", err)
	}
	return n, nil
}
