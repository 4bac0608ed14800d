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

	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/application/report"
	infrapdf "github.com/jhoicas/Kardex-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Kardex-api/internal/interfaces/http"
	"github.com/jhoicas/Kardex-api/pkg/config"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	storeRepo := postgres.NewStoreRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	adjustStockUC := inventory.NewAdjustStockUseCase(txRunner, productRepo, movementRepo)
	movementQueryUC := inventory.NewMovementQueryUseCase(movementRepo, productRepo)
	lowStockUC := inventory.NewLowStockUseCase(productRepo)
	reportUC := report.NewReportUseCase(movementRepo, productRepo, clientRepo)
	pdfGenerator := infrapdf.NewMarotoReportGenerator()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Kardex API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AdjustStock:   adjustStockUC,
		MovementQuery: movementQueryUC,
		LowStock:      lowStockUC,
		ReportUC:      reportUC,
		ProductRepo:   productRepo,
		StoreRepo:     storeRepo,
		PDFGenerator:  pdfGenerator,
		JWTSecret:     cfg.JWT.Secret,
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
