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

	appledger "github.com/dgallegoc/produccion-api/internal/application/ledger"
	"github.com/dgallegoc/produccion-api/internal/application/usecase"
	"github.com/dgallegoc/produccion-api/internal/infrastructure/postgres"
	httpRouter "github.com/dgallegoc/produccion-api/internal/interfaces/http"
	"github.com/dgallegoc/produccion-api/pkg/config"
	"github.com/dgallegoc/produccion-api/pkg/logger"
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
		Msg("iniciando aplicación")

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
	batchUC := usecase.NewBatchUseCase(productRepo, productMovRepo)
	supplyMovementUC := appledger.NewSupplyMovementUseCase(txRunner, supplyRepo, supplyMovRepo)
	productMovementUC := appledger.NewProductMovementUseCase(txRunner, productRepo, productMovRepo)
	assemblyUC := appledger.NewAssemblyUseCase(txRunner, supplyRepo)

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
		Title:    "Producción API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		SupplyUC:        supplyUC,
		ProductUC:       productUC,
		BatchUC:         batchUC,
		SupplyMovement:  supplyMovementUC,
		ProductMovement: productMovementUC,
		Assembly:        assemblyUC,
		JWTSecret:       cfg.JWT.Secret,
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
