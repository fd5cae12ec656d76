package billing_test

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-siat/internal/domain"
	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	"github.com/jhoicas/facturacion-siat/internal/domain/repository"
	pkgsiat "github.com/jhoicas/facturacion-siat/pkg/siat"
)

const (
	testNIT          = "123456789"
	testCUFD         = "BQUE+QytqQUDBKVUFOSVRPQkxVRVZFUlNJT04="
	testCertPath     = "../../infrastructure/siat/signer/testdata/emisor.p12"
	testCertPassword = "siat-prueba"
	testCUF          = "D83FF05CF3B72639FF37B2733631571A39002E66"
)

var testNow = time.Date(2024, 1, 15, 14, 30, 52, 123_000_000, pkgsiat.Location)

func fixedClock() time.Time { return testNow }

// buildTestInvoice factura válida de un ítem: NIT 123456789, sucursal 0, sin punto de venta, 1 × 100.00.
func buildTestInvoice() *entity.Invoice {
	return &entity.Invoice{
		NIT:             testNIT,
		CUFD:            testCUFD,
		BranchCode:      0,
		Modality:        1,
		EmissionType:    1,
		InvoiceType:     1,
		SectorType:      1,
		IssuedAt:        testNow,
		ClientName:      "Juan Pérez",
		ClientDocType:   1,
		ClientDocNumber: "4567890",
		Total:           decimal.RequireFromString("100.00"),
		TaxableBase:     decimal.RequireFromString("100.00"),
		PaymentMethod:   1,
		Legend:          pkgsiat.LegendFor("869010"),
		Details: []entity.InvoiceDetail{{
			ActivityCode:   "869010",
			SINProductCode: 86901,
			ProductCode:    "SES-01",
			Description:    "Sesión de fisioterapia",
			Quantity:       decimal.NewFromInt(1),
			UnitOfMeasure:  58,
			UnitPrice:      decimal.RequireFromString("100.00"),
			Subtotal:       decimal.RequireFromString("100.00"),
		}},
	}
}

// ─── fakeIssuerRepo ──────────────────────────────────────────────────────────

// fakeIssuerRepo guarda configuraciones en memoria. NextSequenceNumber lee, cede el procesador
// y escribe en pasos separados: sin el candado del asignador, dos llamadas se pisarían.
type fakeIssuerRepo struct {
	mu      sync.Mutex
	configs map[string]*entity.IssuerConfig
	nextErr error
}

var _ repository.IssuerConfigRepository = (*fakeIssuerRepo)(nil)

func newFakeIssuerRepo(cfgs ...*entity.IssuerConfig) *fakeIssuerRepo {
	r := &fakeIssuerRepo{configs: make(map[string]*entity.IssuerConfig)}
	for _, c := range cfgs {
		r.configs[c.NIT] = c
	}
	return r
}

func (r *fakeIssuerRepo) Get(_ context.Context, nit string) (*entity.IssuerConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.configs[nit]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeIssuerRepo) Save(_ context.Context, cfg *entity.IssuerConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *cfg
	r.configs[cfg.NIT] = &cp
	return nil
}

func (r *fakeIssuerRepo) UpdateAuthorizationWindow(_ context.Context, nit, code string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.configs[nit]
	if !ok {
		return domain.ErrNoIssuerConfiguration
	}
	issued := testNow
	c.CUFD = code
	c.CUFDIssuedAt = &issued
	c.CUFDExpiresAt = &expiry
	return nil
}

func (r *fakeIssuerRepo) NextSequenceNumber(_ context.Context, nit string) (int64, error) {
	if r.nextErr != nil {
		return 0, r.nextErr
	}
	r.mu.Lock()
	c, ok := r.configs[nit]
	if !ok {
		r.mu.Unlock()
		return 0, domain.ErrNoIssuerConfiguration
	}
	n := c.LastInvoiceNumber
	r.mu.Unlock()

	runtime.Gosched()

	r.mu.Lock()
	c.LastInvoiceNumber = n + 1
	r.mu.Unlock()
	return n + 1, nil
}

func (r *fakeIssuerRepo) last(nit string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.configs[nit].LastInvoiceNumber
}

func testIssuer(last int64, cufd string, expiry time.Time) *entity.IssuerConfig {
	c := &entity.IssuerConfig{
		NIT:               testNIT,
		BusinessName:      "Centro de Fisioterapia S.R.L.",
		Modality:          1,
		ActivityCode:      "869010",
		LastInvoiceNumber: last,
		CUFD:              cufd,
	}
	if !expiry.IsZero() {
		c.CUFDExpiresAt = &expiry
	}
	return c
}

// ─── fakeInvoiceRepo ─────────────────────────────────────────────────────────

type fakeInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[string]*entity.Invoice
	saveErr  error
}

var _ repository.InvoiceRepository = (*fakeInvoiceRepo)(nil)

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[string]*entity.Invoice)}
}

func (r *fakeInvoiceRepo) Save(_ context.Context, inv *entity.Invoice) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return "", r.saveErr
	}
	for _, existing := range r.invoices {
		if existing.CUF == inv.CUF {
			return "", domain.ErrDuplicate
		}
	}
	cp := *inv
	r.invoices[inv.ID] = &cp
	return inv.ID, nil
}

func (r *fakeInvoiceRepo) UpdateStatus(_ context.Context, id string, status entity.InvoiceStatus, authCode, reason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
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

func (r *fakeInvoiceRepo) FindByUniqueCode(_ context.Context, cuf string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.CUF == cuf {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeInvoiceRepo) FindPendingSubmission(_ context.Context) ([]*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.Status == entity.StatusPendingSubmission || inv.Status == entity.StatusContingency {
			cp := *inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.Before(out[j].IssuedAt) })
	return out, nil
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) History(_ context.Context, f entity.InvoiceFilter) ([]*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		switch {
		case f.NIT != "" && inv.NIT != f.NIT:
		case f.From != nil && inv.IssuedAt.Before(*f.From):
		case f.To != nil && !inv.IssuedAt.Before(*f.To):
		case f.Status != nil && inv.Status != *f.Status:
		case f.ClientDocNumber != "" && inv.ClientDocNumber != f.ClientDocNumber:
		default:
			cp := *inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out, nil
}

func (r *fakeInvoiceRepo) LastNumber(_ context.Context, nit string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last int64
	for _, inv := range r.invoices {
		if inv.NIT == nit && inv.Number > last {
			last = inv.Number
		}
	}
	return last, nil
}

func (r *fakeInvoiceRepo) IncrementAttempts(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.SubmissionAttempts++
	return nil
}

func (r *fakeInvoiceRepo) put(inv *entity.Invoice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *inv
	r.invoices[inv.ID] = &cp
}

// ─── fakeClientRepo ──────────────────────────────────────────────────────────

type fakeClientRepo struct {
	mu      sync.Mutex
	clients []*entity.Client
}

var _ repository.ClientRepository = (*fakeClientRepo)(nil)

func (r *fakeClientRepo) Search(_ context.Context, term string, limit int) ([]*entity.Client, error) {
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

func (r *fakeClientRepo) GetByDocument(_ context.Context, docType int, docNumber, complement string) (*entity.Client, error) {
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

func (r *fakeClientRepo) Save(_ context.Context, client *entity.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.DocType == client.DocType && c.DocNumber == client.DocNumber && c.Complement == client.Complement {
			c.Name = client.Name
			c.SearchKey = client.SearchKey
			client.ID = c.ID
			return nil
		}
	}
	cp := *client
	r.clients = append(r.clients, &cp)
	return nil
}

func (r *fakeClientRepo) RecordInvoice(_ context.Context, id string, at time.Time) error {
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

func (r *fakeClientRepo) List(_ context.Context, limit, offset int) ([]*entity.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if offset >= len(r.clients) {
		return nil, nil
	}
	end := min(offset+limit, len(r.clients))
	return append([]*entity.Client(nil), r.clients[offset:end]...), nil
}

// ─── fakeTx ──────────────────────────────────────────────────────────────────

// fakeTx ejecuta fn con los repos en memoria; sin rollback real.
type fakeTx struct {
	invoices *fakeInvoiceRepo
	clients  *fakeClientRepo
}

func (t *fakeTx) RunBilling(_ context.Context, fn func(repository.InvoiceRepository, repository.ClientRepository) error) error {
	return fn(t.invoices, t.clients)
}

var errInfra = errors.New("conexión rechazada")
