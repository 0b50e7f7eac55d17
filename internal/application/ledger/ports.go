package ledger

import (
	"context"

	"github.com/dgallegoc/produccion-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de
// movimientos: o se aplican todas las mutaciones de un movimiento, o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		supplyRepo repository.SupplyRepository,
		productRepo repository.ProductRepository,
		recipeRepo repository.RecipeRepository,
		supplyMovRepo repository.SupplyMovementRepository,
		productMovRepo repository.ProductMovementRepository,
	) error) error
}
