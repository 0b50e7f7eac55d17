// Siembra un conjunto de datos de demostración a través de los casos de uso:
// insumos base, un compuesto con sus vínculos, un producto con receta, una
// compra de insumos, un ensamblaje y una producción con lote.
//
// Uso: go run ./cmd/seed (requiere la base de datos configurada vía env).
package main

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dgallegoc/produccion-api/internal/application/dto"
	appledger "github.com/dgallegoc/produccion-api/internal/application/ledger"
	"github.com/dgallegoc/produccion-api/internal/application/usecase"
	"github.com/dgallegoc/produccion-api/internal/infrastructure/postgres"
	"github.com/dgallegoc/produccion-api/pkg/config"
	"github.com/dgallegoc/produccion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	supplyRepo := postgres.NewSupplyRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	recipeRepo := postgres.NewRecipeRepository(pool)
	supplyMovRepo := postgres.NewSupplyMovementRepository(pool)
	productMovRepo := postgres.NewProductMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	supplyUC := usecase.NewSupplyUseCase(txRunner, supplyRepo, recipeRepo, supplyMovRepo)
	productUC := usecase.NewProductUseCase(txRunner, productRepo, recipeRepo, supplyRepo, productMovRepo)
	supplyMovementUC := appledger.NewSupplyMovementUseCase(txRunner, supplyRepo, supplyMovRepo)
	productMovementUC := appledger.NewProductMovementUseCase(txRunner, productRepo, productMovRepo)
	assemblyUC := appledger.NewAssemblyUseCase(txRunner, supplyRepo)

	// Insumos base
	flour, err := supplyUC.Create(dto.CreateSupplyRequest{Name: "Harina de trigo", Unit: "GRAMS", Kind: "BASE"})
	if err != nil {
		log.Fatal().Err(err).Msg("crear harina")
	}
	water, err := supplyUC.Create(dto.CreateSupplyRequest{Name: "Agua purificada", Unit: "MILLILITERS", Kind: "BASE"})
	if err != nil {
		log.Fatal().Err(err).Msg("crear agua")
	}

	// Compuesto: masa = 3 harina + 1 agua
	dough, err := supplyUC.Create(dto.CreateSupplyRequest{Name: "Masa base", Unit: "UNITS", Kind: "COMPOSITE"})
	if err != nil {
		log.Fatal().Err(err).Msg("crear masa")
	}
	_, err = supplyUC.ReplaceLinks(ctx, dough.ID, []dto.CompositeLinkRequest{
		{BaseSupplyID: flour.ID, QuantityPerUnit: decimal.NewFromInt(3)},
		{BaseSupplyID: water.ID, QuantityPerUnit: decimal.NewFromInt(1)},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("vincular masa")
	}

	// Compra inicial de insumos
	now := time.Now()
	_, err = supplyMovementUC.Create(ctx, appledger.SupplyMovementInput{
		Date:        now,
		Description: "compra inicial",
		Direction:   "IN",
		Lines: []appledger.SupplyMovementLineInput{
			{SupplyID: flour.ID, Quantity: decimal.NewFromInt(1000), TotalCost: decimal.NewFromInt(500)},
			{SupplyID: water.ID, Quantity: decimal.NewFromInt(2000), TotalCost: decimal.NewFromInt(200)},
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("compra inicial")
	}

	// Ensamblar 10 unidades de masa
	if _, err := assemblyUC.Assemble(ctx, appledger.AssembleInput{
		SupplyID: dough.ID,
		Quantity: decimal.NewFromInt(10),
		Date:     now,
	}); err != nil {
		log.Fatal().Err(err).Msg("ensamblar masa")
	}

	// Producto con receta: 1 pan = 2 masas
	bread, err := productUC.Create(dto.CreateProductRequest{Name: "Pan artesanal", SalePrice: decimal.NewFromInt(8)})
	if err != nil {
		log.Fatal().Err(err).Msg("crear pan")
	}
	_, err = productUC.ReplaceRecipe(ctx, bread.ID, []dto.RecipeLineRequest{
		{SupplyID: dough.ID, QuantityPerUnit: decimal.NewFromInt(2)},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("receta del pan")
	}

	// Producción de 5 panes con vencimiento a una semana
	expiration := now.Add(7 * 24 * time.Hour)
	movement, err := productMovementUC.Create(ctx, appledger.ProductMovementInput{
		Date:        now,
		Description: "producción de demostración",
		Direction:   "IN",
		Lines: []appledger.ProductMovementLineInput{
			{ProductID: bread.ID, Quantity: decimal.NewFromInt(5), ExpirationDate: &expiration},
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("producción")
	}

	log.Info().
		Str("flour", flour.ID).
		Str("dough", dough.ID).
		Str("bread", bread.ID).
		Str("production", movement.ID).
		Msg("datos de demostración sembrados")
}
