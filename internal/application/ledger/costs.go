package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dgallegoc/produccion-api/internal/domain"
	domainledger "github.com/dgallegoc/produccion-api/internal/domain/ledger"
	"github.com/dgallegoc/produccion-api/internal/domain/repository"
)

// RecalculateDownstream propaga un cambio de costo unitario de un insumo a
// todos los productos cuya receta lo consume: recalcula
// investment_cost = Σ(cantidad_por_unidad × costo_unitario_vigente) y lo
// persiste. Cascada de un solo nivel (los productos no son insumos de otras
// recetas) e idempotente: con costos sin cambios produce el mismo resultado.
// Debe invocarse con repositorios atados a la transacción del movimiento que
// disparó el cambio.
func RecalculateDownstream(
	supplyRepo repository.SupplyRepository,
	recipeRepo repository.RecipeRepository,
	productRepo repository.ProductRepository,
	supplyID string,
) error {
	productIDs, err := recipeRepo.ListProductIDsUsingSupply(supplyID)
	if err != nil {
		return fmt.Errorf("productos que usan el insumo: %w", err)
	}
	for _, productID := range productIDs {
		cost, err := RecipeInvestmentCost(supplyRepo, recipeRepo, productID)
		if err != nil {
			return err
		}
		if err := productRepo.UpdateInvestmentCost(productID, cost); err != nil {
			return fmt.Errorf("actualizar costo de inversión: %w", err)
		}
	}
	return nil
}

// RecipeInvestmentCost calcula el costo de inversión de un producto a partir
// de su receta y los costos unitarios vigentes de los insumos. Un producto
// sin receta cuesta cero.
func RecipeInvestmentCost(
	supplyRepo repository.SupplyRepository,
	recipeRepo repository.RecipeRepository,
	productID string,
) (decimal.Decimal, error) {
	recipe, err := recipeRepo.GetByProduct(productID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("receta del producto: %w", err)
	}
	if recipe == nil {
		return decimal.Zero, nil
	}
	lines, err := recipeRepo.ListLines(recipe.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("líneas de receta: %w", err)
	}
	components := make([]domainledger.CostComponent, 0, len(lines))
	for _, line := range lines {
		supply, err := supplyRepo.GetByID(line.SupplyID)
		if err != nil {
			return decimal.Zero, err
		}
		if supply == nil {
			return decimal.Zero, domain.ErrNotFound
		}
		components = append(components, domainledger.CostComponent{
			QuantityPerUnit: line.QuantityPerUnit,
			UnitCost:        supply.UnitCost,
		})
	}
	return domainledger.UnitCost(components), nil
}
