package repository

import (
	"context"
	"time"

	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
)

// ClientRepository define el puerto de persistencia para clientes frecuentes.
type ClientRepository interface {
	// Search busca por prefijo de documento o por nombre normalizado; los facturados más recientemente primero.
	Search(ctx context.Context, term string, limit int) ([]*entity.Client, error)
	GetByDocument(ctx context.Context, docType int, docNumber, complement string) (*entity.Client, error)
	// Save inserta o actualiza por (tipo, número, complemento) y completa client.ID.
	Save(ctx context.Context, client *entity.Client) error
	RecordInvoice(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, limit, offset int) ([]*entity.Client, error)
}
