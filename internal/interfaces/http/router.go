package http

import (
	"github.com/gofiber/fiber/v2"

	appledger "github.com/dgallegoc/produccion-api/internal/application/ledger"
	"github.com/dgallegoc/produccion-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SupplyUC        *usecase.SupplyUseCase
	ProductUC       *usecase.ProductUseCase
	BatchUC         *usecase.BatchUseCase
	SupplyMovement  *appledger.SupplyMovementUseCase
	ProductMovement *appledger.ProductMovementUseCase
	Assembly        *appledger.AssemblyUseCase
	JWTSecret       string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Supplies (protegido)
	supplies := protected.Group("/supplies")
	supplyHandler := NewSupplyHandler(deps.SupplyUC, deps.Assembly)
	movementHandler := NewMovementHandler(deps.SupplyMovement, deps.ProductMovement)
	supplies.Post("/", supplyHandler.Create)
	supplies.Get("/", supplyHandler.List)
	supplies.Get("/:id", supplyHandler.GetByID)
	supplies.Put("/:id", supplyHandler.Update)
	supplies.Delete("/:id", supplyHandler.Delete)
	supplies.Put("/:id/links", supplyHandler.ReplaceLinks)
	supplies.Post("/:id/assemble", supplyHandler.Assemble)
	supplies.Get("/:id/stock", movementHandler.SupplyStockAsOf)

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	batchHandler := NewBatchHandler(deps.BatchUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Put("/:id/recipe", productHandler.ReplaceRecipe)
	products.Get("/:id/batches", batchHandler.ListByProduct)

	// Supply movements (protegido)
	supplyMovs := protected.Group("/supply-movements")
	supplyMovs.Post("/", movementHandler.CreateSupplyMovement)
	supplyMovs.Get("/", movementHandler.ListSupplyMovements)
	supplyMovs.Get("/:id", movementHandler.GetSupplyMovement)
	supplyMovs.Delete("/:id", movementHandler.DeleteSupplyMovement)

	// Product movements (protegido)
	productMovs := protected.Group("/product-movements")
	productMovs.Post("/", movementHandler.CreateProductMovement)
	productMovs.Get("/", movementHandler.ListProductMovements)
	productMovs.Get("/:id", movementHandler.GetProductMovement)
	productMovs.Delete("/:id", movementHandler.DeleteProductMovement)

	// Venta acotada a un lote (protegido)
	productMovs.Post("/sales", movementHandler.SellFromBatch)

	// Batches (protegido)
	protected.Get("/batches/expired", batchHandler.ListExpired)
}
