package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/facturacion-siat/docs"
	"github.com/jhoicas/facturacion-siat/internal/application/billing"
	"github.com/jhoicas/facturacion-siat/internal/domain/siat"
	infrapdf "github.com/jhoicas/facturacion-siat/internal/infrastructure/pdf"
	"github.com/jhoicas/facturacion-siat/internal/infrastructure/postgres"
	infrasiat "github.com/jhoicas/facturacion-siat/internal/infrastructure/siat"
	"github.com/jhoicas/facturacion-siat/internal/infrastructure/siat/signer"
	httpRouter "github.com/jhoicas/facturacion-siat/internal/interfaces/http"
	"github.com/jhoicas/facturacion-siat/pkg/config"
	"github.com/jhoicas/facturacion-siat/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Int("siat_ambiente", cfg.SIAT.Environment).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	issuerRepo := postgres.NewIssuerConfigRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Certificación: número → CUF → XML → firma XMLDSig
	allocator := billing.NewSequenceAllocator(issuerRepo, nil)
	orchestrator := billing.NewCertificationOrchestrator(
		allocator,
		siat.NewCufGeneratorService(),
		infrasiat.NewXMLBuilderService(),
		signer.NewDigitalSignatureService(),
		signer.LoadCertificate,
		log.Zerolog(),
	)
	siatCfg := billing.SIATConfig{
		CertPath:     cfg.SIAT.CertPath,
		CertPassword: cfg.SIAT.CertPassword,
		QRBaseURL:    cfg.SIAT.QRBaseURL,
	}
	invoiceUC := billing.NewInvoiceUseCase(orchestrator, txRunner, invoiceRepo, issuerRepo, siatCfg, log.Zerolog())

	// PDF: representación gráfica con QR de verificación
	pdfUC := billing.NewPDFUseCase(
		invoiceRepo, issuerRepo, infrapdf.NewMarotoPDFGenerator(), infrasiat.NewQRCodeService(), cfg.SIAT.QRBaseURL,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Zerolog()))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Facturación SIAT API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db_unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		InvoiceUC: invoiceUC,
		PDFUC:     pdfUC,
		ClientUC:  billing.NewClientUseCase(clientRepo),
		IssuerUC:  billing.NewIssuerUseCase(issuerRepo, allocator),
		CatalogUC: billing.NewCatalogUseCase(catalogRepo),
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
