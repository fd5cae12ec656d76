package billing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	"github.com/jhoicas/facturacion-siat/internal/domain/repository"
	"github.com/jhoicas/facturacion-siat/pkg/mutex"
)

// SequenceAllocator entrega números de factura consecutivos por emisor y mantiene la ventana del CUFD.
// Lectura, incremento y persistencia del contador ocurren con el candado del NIT tomado:
// dos llamadas concurrentes nunca reciben el mismo número.
type SequenceAllocator struct {
	repo  repository.IssuerConfigRepository
	locks mutex.KeyedMutex[string]
	now   func() time.Time

	mu      sync.RWMutex
	windows map[string]entity.AuthorizationWindow
}

// NewSequenceAllocator construye el asignador. now puede ser nil (usa time.Now).
func NewSequenceAllocator(repo repository.IssuerConfigRepository, now func() time.Time) *SequenceAllocator {
	if now == nil {
		now = time.Now
	}
	return &SequenceAllocator{
		repo:    repo,
		now:     now,
		windows: make(map[string]entity.AuthorizationWindow),
	}
}

// Now hora del reloj inyectado.
func (a *SequenceAllocator) Now() time.Time { return a.now() }

// Next devuelve el siguiente número de factura del emisor, ya persistido.
func (a *SequenceAllocator) Next(ctx context.Context, nit string) (int64, error) {
	if strings.TrimSpace(nit) == "" {
		return 0, fmt.Errorf("%w: NIT vacío", domain.ErrInvalidInput)
	}

	a.locks.Lock(nit)
	defer a.locks.Unlock(nit)

	n, err := a.repo.NextSequenceNumber(ctx, nit)
	if err != nil {
		return 0, persistence("asignar número de factura", err)
	}
	return n, nil
}

// SetAuthorizationWindow registra un CUFD nuevo para el emisor y refresca la ventana en memoria.
func (a *SequenceAllocator) SetAuthorizationWindow(ctx context.Context, nit, code string, expiry time.Time) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("%w: CUFD vacío", domain.ErrInvalidInput)
	}
	if expiry.IsZero() {
		return fmt.Errorf("%w: vencimiento del CUFD requerido", domain.ErrInvalidInput)
	}

	a.locks.Lock(nit)
	defer a.locks.Unlock(nit)

	if err := a.repo.UpdateAuthorizationWindow(ctx, nit, code, expiry); err != nil {
		return persistence("guardar CUFD", err)
	}

	a.mu.Lock()
	a.windows[nit] = entity.AuthorizationWindow{Code: code, IssuedAt: a.now(), ExpiresAt: expiry}
	a.mu.Unlock()
	return nil
}

// Window devuelve la ventana del CUFD del emisor (de memoria o del repositorio).
func (a *SequenceAllocator) Window(ctx context.Context, nit string) (entity.AuthorizationWindow, error) {
	a.mu.RLock()
	w, ok := a.windows[nit]
	a.mu.RUnlock()
	if ok {
		return w, nil
	}

	cfg, err := a.repo.Get(ctx, nit)
	if err != nil {
		return entity.AuthorizationWindow{}, persistence("leer configuración del emisor", err)
	}
	if cfg == nil {
		return entity.AuthorizationWindow{}, domain.ErrNoIssuerConfiguration
	}
	w = cfg.AuthorizationWindow()

	a.mu.Lock()
	a.windows[nit] = w
	a.mu.Unlock()
	return w, nil
}

// Forget descarta la ventana en memoria; la próxima lectura va al repositorio.
func (a *SequenceAllocator) Forget(nit string) {
	a.mu.Lock()
	delete(a.windows, nit)
	a.mu.Unlock()
}

// persistence agrega la categoría de persistencia a errores de infraestructura que no la traen.
func persistence(op string, err error) error {
	if domain.Category(err) != nil {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}
