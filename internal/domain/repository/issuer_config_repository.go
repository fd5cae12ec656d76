package repository

import (
	"context"
	"time"

	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
)

// IssuerConfigRepository define el puerto de persistencia de la configuración del emisor
// (datos fiscales, CUFD vigente y contador de facturas).
type IssuerConfigRepository interface {
	// Get devuelve nil, nil si el emisor no tiene configuración.
	Get(ctx context.Context, nit string) (*entity.IssuerConfig, error)
	Save(ctx context.Context, cfg *entity.IssuerConfig) error
	UpdateAuthorizationWindow(ctx context.Context, nit, code string, expiry time.Time) error

	// NextSequenceNumber incrementa el contador y devuelve el nuevo valor en una sola operación atómica.
	// Sin configuración devuelve domain.ErrNoIssuerConfiguration.
	NextSequenceNumber(ctx context.Context, nit string) (int64, error)
}
