package repository

import (
	"context"

	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para facturas certificadas y sus detalles.
type InvoiceRepository interface {
	// Save inserta la factura con sus detalles y devuelve el ID. Un CUF repetido devuelve domain.ErrDuplicate.
	Save(ctx context.Context, inv *entity.Invoice) (string, error)
	// UpdateStatus cambia el estado; authCode y rejectionReason se guardan solo si no son nil.
	UpdateStatus(ctx context.Context, id string, status entity.InvoiceStatus, authCode, rejectionReason *string) error
	// FindByUniqueCode busca por CUF; nil, nil si no existe.
	FindByUniqueCode(ctx context.Context, cuf string) (*entity.Invoice, error)
	// FindPendingSubmission devuelve las pendientes de envío y en contingencia, la más antigua primero.
	FindPendingSubmission(ctx context.Context) ([]*entity.Invoice, error)

	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// History lista facturas filtradas, la más reciente primero.
	History(ctx context.Context, f entity.InvoiceFilter) ([]*entity.Invoice, error)
	LastNumber(ctx context.Context, nit string) (int64, error)
	IncrementAttempts(ctx context.Context, id string) error
}
