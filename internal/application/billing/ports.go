package billing

import (
	"context"
	"crypto/tls"

	"github.com/beevik/etree"

	"github.com/jhoicas/facturacion-siat/internal/domain/entity"
	"github.com/jhoicas/facturacion-siat/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye los repos de facturas y clientes.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		clientRepo repository.ClientRepository,
	) error) error
}

// CodeGenerator calcula el CUF de una factura numerada.
type CodeGenerator interface {
	Generate(inv *entity.Invoice) (string, error)
}

// DocumentBuilder arma el árbol XML de la factura (sin firma).
type DocumentBuilder interface {
	Build(inv *entity.Invoice) (*etree.Document, error)
}

// DocumentSigner agrega la firma enveloped como último hijo de la raíz.
type DocumentSigner interface {
	Sign(doc *etree.Document, cert tls.Certificate) error
}

// CertificateLoader abre el contenedor .p12/.pfx y valida su vigencia.
type CertificateLoader func(path, password string) (tls.Certificate, error)

// InvoicePDFGenerator genera la representación gráfica de una factura certificada.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, inv *entity.Invoice, issuer *entity.IssuerConfig, qrURL string) ([]byte, error)
}

// QRGenerator codifica content como imagen PNG.
type QRGenerator interface {
	PNG(content string, size int) ([]byte, error)
}
