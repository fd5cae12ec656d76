package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-siat/internal/application/billing"
	"github.com/jhoicas/facturacion-siat/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InvoiceUC *billing.InvoiceUseCase
	PDFUC     *billing.PDFUseCase
	ClientUC  *billing.ClientUseCase
	IssuerUC  *billing.IssuerUseCase
	CatalogUC *billing.CatalogUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; el NIT emisor sale del token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleCashier)
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Facturas
	invoices := api.Group("/facturas", anyRole)
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.PDFUC)
	invoices.Post("/", invoiceHandler.Certify)
	invoices.Get("/", invoiceHandler.History)
	invoices.Get("/pendientes", invoiceHandler.Pending)
	invoices.Get("/cuf/:cuf", invoiceHandler.GetByCUF)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/xml", invoiceHandler.SignedXML)
	invoices.Get("/:id/pdf", invoiceHandler.PDF)
	invoices.Get("/:id/qr", invoiceHandler.QR)
	invoices.Post("/:id/envio", invoiceHandler.MarkSubmitting)
	invoices.Post("/:id/aceptacion", invoiceHandler.Accept)
	invoices.Post("/:id/rechazo", invoiceHandler.Reject)
	invoices.Post("/:id/regularizacion", invoiceHandler.Regularize)
	invoices.Post("/:id/anulacion", adminOnly, invoiceHandler.Void)

	// Clientes frecuentes
	clients := api.Group("/clientes", anyRole)
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Get("/", clientHandler.List)
	clients.Post("/", clientHandler.Save)
	clients.Get("/documento/:tipo/:numero", clientHandler.GetByDocument)

	// Emisor: lectura para todos, cambios solo admin
	issuer := api.Group("/emisor", anyRole)
	issuerHandler := NewIssuerHandler(deps.IssuerUC)
	issuer.Get("/", issuerHandler.Get)
	issuer.Put("/", adminOnly, issuerHandler.Save)
	issuer.Put("/cufd", adminOnly, issuerHandler.SetCUFD)

	// Catálogos
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	api.Get("/catalogos/:nombre", anyRole, catalogHandler.List)
	api.Get("/leyendas/:actividad", anyRole, catalogHandler.Legend)
	api.Get("/iva", anyRole, catalogHandler.IVA)
}
