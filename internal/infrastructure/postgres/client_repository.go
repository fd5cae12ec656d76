package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	"github.com/jhoicas/facturacion-siat/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo implementa ClientRepository sobre la tabla clientes.
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el repositorio. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

const clientColumns = `
	id, tipo_documento, numero_documento, complemento, nombre, clave_busqueda,
	telefono, email, cantidad_facturas, ultima_factura, created_at, updated_at`

// Save usa ON CONFLICT sobre el documento; el ID devuelto es el de la fila existente si ya estaba.
func (r *ClientRepo) Save(ctx context.Context, c *entity.Client) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO clientes (id, tipo_documento, numero_documento, complemento, nombre, clave_busqueda,
		                      telefono, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (tipo_documento, numero_documento, complemento) DO UPDATE
		SET nombre         = EXCLUDED.nombre,
		    clave_busqueda = EXCLUDED.clave_busqueda,
		    telefono       = COALESCE(EXCLUDED.telefono, clientes.telefono),
		    email          = COALESCE(EXCLUDED.email, clientes.email),
		    updated_at     = now()
		RETURNING id`
	err := r.q.QueryRow(ctx, q,
		c.ID, c.DocType, c.DocNumber, c.Complement, c.Name, c.SearchKey,
		nullIfEmpty(c.Phone), nullIfEmpty(c.Email),
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("upsert cliente: %w", err)
	}
	return nil
}

// Search compara el término contra el prefijo del documento y contra la clave normalizada del nombre.
func (r *ClientRepo) Search(ctx context.Context, term string, limit int) ([]*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clientes
		WHERE numero_documento LIKE $1 || '%' ESCAPE '\'
		   OR clave_busqueda LIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY ultima_factura DESC NULLS LAST, nombre
		LIMIT $2`
	return r.list(ctx, query, likeEscape(term), limit)
}

func (r *ClientRepo) GetByDocument(ctx context.Context, docType int, docNumber, complement string) (*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clientes
		WHERE tipo_documento = $1 AND numero_documento = $2 AND complemento = $3`
	c, err := scanClient(r.q.QueryRow(ctx, query, docType, docNumber, complement))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cliente: %w", err)
	}
	return c, nil
}

func (r *ClientRepo) RecordInvoice(ctx context.Context, id string, at time.Time) error {
	const q = `
		UPDATE clientes
		SET cantidad_facturas = cantidad_facturas + 1,
		    ultima_factura    = GREATEST(COALESCE(ultima_factura, $2), $2),
		    updated_at        = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, id, at)
	if err != nil {
		return fmt.Errorf("registrar factura de cliente: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ClientRepo) List(ctx context.Context, limit, offset int) ([]*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clientes ORDER BY nombre LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

func (r *ClientRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Client, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clientes: %w", err)
	}
	defer rows.Close()

	var list []*entity.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cliente: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanClient(row pgxScanner) (*entity.Client, error) {
	var (
		c            entity.Client
		phone, email *string
	)
	err := row.Scan(
		&c.ID, &c.DocType, &c.DocNumber, &c.Complement, &c.Name, &c.SearchKey,
		&phone, &email, &c.InvoiceCount, &c.LastInvoiceAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Phone = derefStr(phone)
	c.Email = derefStr(email)
	return &c, nil
}
