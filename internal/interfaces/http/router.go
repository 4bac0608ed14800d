package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/application/report"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AdjustStock   *inventory.AdjustStockUseCase
	MovementQuery *inventory.MovementQueryUseCase
	LowStock      *inventory.LowStockUseCase
	ReportUC      *report.ReportUseCase
	ProductRepo   repository.ProductRepository
	StoreRepo     repository.StoreRepository
	PDFGenerator  ReportPDFGenerator
	JWTSecret     string
}

// Router registra las rutas de la API. Todo el core está protegido: el token
// lo emite el servicio de auth externo y aquí solo se valida y scopea por tienda.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Kardex y ajustes
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.AdjustStock, deps.MovementQuery, deps.LowStock)
	inv.Post("/adjustments", RequireRole("admin", "bodeguero", "vendedor"), inventoryHandler.AdjustStock)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/low-stock", inventoryHandler.GetLowStock)
	inv.Get("/replenishment", RequireRole("admin", "bodeguero"), inventoryHandler.GetReplenishmentList)

	// Productos (solo lectura; el CRUD vive en el módulo de catálogo)
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductRepo)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/history", inventoryHandler.GetStockHistory)

	// Reportes
	reports := api.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC, deps.StoreRepo, deps.PDFGenerator)
	reports.Get("/", RequireRole("admin"), reportHandler.Generate)
	reports.Get("/pdf", RequireRole("admin"), reportHandler.GeneratePDF)
}
