package http_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	"github.com/jhoicas/facturacion-siat/internal/domain/repository"
)

// Repositorios en memoria para probar el router de punta a punta sin PostgreSQL.

type memIssuers struct {
	mu      sync.Mutex
	configs map[string]*entity.IssuerConfig
}

func (r *memIssuers) Get(_ context.Context, nit string) (*entity.IssuerConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.configs[nit]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *memIssuers) Save(_ context.Context, cfg *entity.IssuerConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *cfg
	if old, ok := r.configs[cfg.NIT]; ok {
		cp.CUFD, cp.CUFDIssuedAt, cp.CUFDExpiresAt = old.CUFD, old.CUFDIssuedAt, old.CUFDExpiresAt
		cp.LastInvoiceNumber = old.LastInvoiceNumber
	}
	r.configs[cfg.NIT] = &cp
	return nil
}

func (r *memIssuers) UpdateAuthorizationWindow(_ context.Context, nit, code string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.configs[nit]
	if !ok {
		return domain.ErrNoIssuerConfiguration
	}
	now := time.Now()
	c.CUFD, c.CUFDIssuedAt, c.CUFDExpiresAt = code, &now, &expiry
	return nil
}

func (r *memIssuers) NextSequenceNumber(_ context.Context, nit string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.configs[nit]
	if !ok {
		return 0, domain.ErrNoIssuerConfiguration
	}
	c.LastInvoiceNumber++
	return c.LastInvoiceNumber, nil
}

type memInvoices struct {
	mu   sync.Mutex
	byID map[string]*entity.Invoice
}

func (r *memInvoices) Save(_ context.Context, inv *entity.Invoice) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *inv
	r.byID[inv.ID] = &cp
	return inv.ID, nil
}

func (r *memInvoices) UpdateStatus(_ context.Context, id string, status entity.InvoiceStatus, authCode, reason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	if authCode != nil {
		inv.AuthorizationCode = *authCode
	}
	if reason != nil {
		inv.RejectionReason = *reason
	}
	return nil
}

func (r *memInvoices) FindByUniqueCode(_ context.Context, cuf string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.byID {
		if inv.CUF == cuf {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memInvoices) FindPendingSubmission(ctx context.Context) ([]*entity.Invoice, error) {
	return r.History(ctx, entity.InvoiceFilter{})
}

func (r *memInvoices) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.byID[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, nil
}

func (r *memInvoices) History(_ context.Context, f entity.InvoiceFilter) ([]*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.byID {
		if f.NIT == "" || inv.NIT == f.NIT {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memInvoices) LastNumber(context.Context, string) (int64, error) { return 0, nil }

func (r *memInvoices) IncrementAttempts(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.byID[id]; ok {
		inv.SubmissionAttempts++
		return nil
	}
	return domain.ErrNotFound
}

type memClients struct {
	mu      sync.Mutex
	clients []*entity.Client
}

func (r *memClients) Search(_ context.Context, term string, limit int) ([]*entity.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Client
	for _, c := range r.clients {
		if strings.HasPrefix(c.DocNumber, term) || strings.Contains(c.SearchKey, term) {
			cp := *c
			out = append(out, &cp)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memClients) GetByDocument(_ context.Context, docType int, docNumber, complement string) (*entity.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.DocType == docType && c.DocNumber == docNumber && c.Complement == complement {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memClients) Save(_ context.Context, client *entity.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.DocType == client.DocType && c.DocNumber == client.DocNumber && c.Complement == client.Complement {
			c.Name, c.SearchKey = client.Name, client.SearchKey
			client.ID = c.ID
			return nil
		}
	}
	cp := *client
	r.clients = append(r.clients, &cp)
	return nil
}

func (r *memClients) RecordInvoice(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.ID == id {
			c.InvoiceCount++
			c.LastInvoiceAt = &at
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memClients) List(_ context.Context, limit, offset int) ([]*entity.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if offset >= len(r.clients) {
		return nil, nil
	}
	return append([]*entity.Client(nil), r.clients[offset:min(offset+limit, len(r.clients))]...), nil
}

type memTx struct {
	invoices *memInvoices
	clients  *memClients
}

func (t memTx) RunBilling(_ context.Context, fn func(repository.InvoiceRepository, repository.ClientRepository) error) error {
	return fn(t.invoices, t.clients)
}
