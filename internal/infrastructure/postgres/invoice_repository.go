package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	"github.com/jhoicas/facturacion-siat/internal/domain/repository"
	pkgsiat "github.com/jhoicas/facturacion-siat/pkg/siat"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, nit, numero, cuf, cufd, codigo_sucursal, codigo_punto_venta,
	modalidad, tipo_emision, tipo_factura, tipo_documento_sector, fecha_emision,
	cliente_id, nombre_razon_social, tipo_documento_identidad, numero_documento, complemento,
	monto_total, monto_total_sujeto_iva, metodo_pago, leyenda,
	estado, codigo_autorizacion, motivo_rechazo, fecha_respuesta, xml_firmado, intentos_envio,
	created_at, updated_at`

// Save persiste cabecera y detalles. Conviene llamarlo dentro de una transacción (TxRunner).
func (r *InvoiceRepo) Save(ctx context.Context, inv *entity.Invoice) (string, error) {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	query := `
		INSERT INTO facturas (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		        $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, now(), now())`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.NIT, inv.Number, inv.CUF, inv.CUFD, inv.BranchCode, inv.PointOfSale,
		inv.Modality, inv.EmissionType, inv.InvoiceType, inv.SectorType, pkgsiat.LocalTime(inv.IssuedAt),
		nullIfEmpty(inv.ClientID), inv.ClientName, inv.ClientDocType, inv.ClientDocNumber, nullIfEmpty(inv.ClientComplement),
		inv.Total, inv.TaxableBase, inv.PaymentMethod, inv.Legend,
		int(inv.Status), nullIfEmpty(inv.AuthorizationCode), nullIfEmpty(inv.RejectionReason), inv.AuthorityResponseAt,
		inv.SignedXML, inv.SubmissionAttempts,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%w: factura %s (%s)", domain.ErrDuplicate, inv.CUF, violatedConstraint(err))
		}
		return "", fmt.Errorf("insert factura: %w", err)
	}

	for i := range inv.Details {
		d := &inv.Details[i]
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		d.InvoiceID = inv.ID
		const qd = `
			INSERT INTO detalle_factura
				(id, factura_id, linea, actividad_economica, codigo_producto_sin, codigo_producto,
				 descripcion, cantidad, unidad_medida, precio_unitario, sub_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
		if _, err := r.q.Exec(ctx, qd,
			d.ID, d.InvoiceID, i+1, d.ActivityCode, d.SINProductCode, d.ProductCode,
			d.Description, d.Quantity, d.UnitOfMeasure, d.UnitPrice, d.Subtotal,
		); err != nil {
			return "", fmt.Errorf("insert detalle_factura: %w", err)
		}
	}
	return inv.ID, nil
}

// UpdateStatus cambia el estado. Los estados con respuesta del SIN (aceptada, rechazada) registran la fecha.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id string, status entity.InvoiceStatus, authCode, rejectionReason *string) error {
	const q = `
		UPDATE facturas
		SET estado              = $2,
		    codigo_autorizacion = COALESCE($3, codigo_autorizacion),
		    motivo_rechazo      = COALESCE($4, motivo_rechazo),
		    fecha_respuesta     = CASE WHEN $2 IN (2, 3) THEN now() ELSE fecha_respuesta END,
		    updated_at          = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, id, int(status), authCode, rejectionReason)
	if err != nil {
		return fmt.Errorf("update estado factura: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InvoiceRepo) FindByUniqueCode(ctx context.Context, cuf string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM facturas WHERE cuf = $1`, cuf))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get factura por cuf: %w", err)
	}
	if err := r.loadDetails(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// FindPendingSubmission devuelve solo cabeceras; el reenvío carga detalles con GetByID si los necesita.
func (r *InvoiceRepo) FindPendingSubmission(ctx context.Context) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM facturas
		WHERE estado IN (0, 5)
		ORDER BY fecha_emision ASC`
	return r.list(ctx, query)
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM facturas WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get factura: %w", err)
	}
	if err := r.loadDetails(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// History arma el WHERE según los filtros presentes.
func (r *InvoiceRepo) History(ctx context.Context, f entity.InvoiceFilter) ([]*entity.Invoice, error) {
	where, args := historyWhere(f)
	query := `SELECT ` + invoiceColumns + ` FROM facturas WHERE ` + where + ` ORDER BY fecha_emision DESC, numero DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return r.list(ctx, query, args...)
}

func historyWhere(f entity.InvoiceFilter) (string, []any) {
	conds := []string{"nit = $1"}
	args := []any{f.NIT}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.From != nil {
		add("fecha_emision >= $%d", pkgsiat.LocalTime(*f.From))
	}
	if f.To != nil {
		add("fecha_emision < $%d", pkgsiat.LocalTime(*f.To))
	}
	if f.Status != nil {
		add("estado = $%d", int(*f.Status))
	}
	if f.ClientDocNumber != "" {
		add("numero_documento = $%d", f.ClientDocNumber)
	}
	return strings.Join(conds, " AND "), args
}

func (r *InvoiceRepo) LastNumber(ctx context.Context, nit string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT COALESCE(MAX(numero), 0) FROM facturas WHERE nit = $1`, nit).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("ultimo numero: %w", err)
	}
	return n, nil
}

func (r *InvoiceRepo) IncrementAttempts(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE facturas SET intentos_envio = intentos_envio + 1, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("incrementar intentos: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InvoiceRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list facturas: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan factura: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func (r *InvoiceRepo) loadDetails(ctx context.Context, inv *entity.Invoice) error {
	const q = `
		SELECT id, factura_id, actividad_economica, codigo_producto_sin, codigo_producto,
		       descripcion, cantidad, unidad_medida, precio_unitario, sub_total
		FROM detalle_factura WHERE factura_id = $1 ORDER BY linea`
	rows, err := r.q.Query(ctx, q, inv.ID)
	if err != nil {
		return fmt.Errorf("list detalle_factura: %w", err)
	}
	defer rows.Close()

	inv.Details = inv.Details[:0]
	for rows.Next() {
		var d entity.InvoiceDetail
		if err := rows.Scan(
			&d.ID, &d.InvoiceID, &d.ActivityCode, &d.SINProductCode, &d.ProductCode,
			&d.Description, &d.Quantity, &d.UnitOfMeasure, &d.UnitPrice, &d.Subtotal,
		); err != nil {
			return fmt.Errorf("scan detalle_factura: %w", err)
		}
		inv.Details = append(inv.Details, d)
	}
	return rows.Err()
}

func scanInvoice(row pgxScanner) (*entity.Invoice, error) {
	var (
		inv                         entity.Invoice
		status                      int
		clientID, complement        *string
		authCode, reason, signedXML *string
	)
	err := row.Scan(
		&inv.ID, &inv.NIT, &inv.Number, &inv.CUF, &inv.CUFD, &inv.BranchCode, &inv.PointOfSale,
		&inv.Modality, &inv.EmissionType, &inv.InvoiceType, &inv.SectorType, &inv.IssuedAt,
		&clientID, &inv.ClientName, &inv.ClientDocType, &inv.ClientDocNumber, &complement,
		&inv.Total, &inv.TaxableBase, &inv.PaymentMethod, &inv.Legend,
		&status, &authCode, &reason, &inv.AuthorityResponseAt, &signedXML, &inv.SubmissionAttempts,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Status = entity.InvoiceStatus(status)
	inv.ClientID = derefStr(clientID)
	inv.ClientComplement = derefStr(complement)
	inv.AuthorizationCode = derefStr(authCode)
	inv.RejectionReason = derefStr(reason)
	inv.SignedXML = derefStr(signedXML)
	// fecha_emision es TIMESTAMP sin zona: se guarda y se lee como hora civil boliviana.
	inv.IssuedAt = pkgsiat.WallClock(inv.IssuedAt)
	return &inv, nil
}
