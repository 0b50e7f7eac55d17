package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dgallegoc/produccion-api/internal/domain"
	"github.com/dgallegoc/produccion-api/internal/domain/entity"
	domainledger "github.com/dgallegoc/produccion-api/internal/domain/ledger"
	"github.com/dgallegoc/produccion-api/internal/domain/repository"
)

// ProductMovementUseCase registra y revierte movimientos de productos
// terminados. Las producciones (IN) consumen los insumos de la receta y
// etiquetan sus líneas con el lote derivado del ID del movimiento; las
// ventas (OUT) fijan el precio de venta vigente del producto.
type ProductMovementUseCase struct {
	txRunner       TxRunner
	productRepo    repository.ProductRepository
	productMovRepo repository.ProductMovementRepository
}

// NewProductMovementUseCase construye el caso de uso.
func NewProductMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	productMovRepo repository.ProductMovementRepository,
) *ProductMovementUseCase {
	return &ProductMovementUseCase{
		txRunner:       txRunner,
		productRepo:    productRepo,
		productMovRepo: productMovRepo,
	}
}

// ProductMovementLineInput entrada para una línea de movimiento de producto.
// SaleUnitPrice es obligatorio (> 0) en salidas; ExpirationDate opcional y
// solo válido en entradas (debe ser estrictamente futuro).
type ProductMovementLineInput struct {
	ProductID      string
	Quantity       decimal.Decimal
	SaleUnitPrice  decimal.Decimal
	ExpirationDate *time.Time
}

// ProductMovementInput entrada para registrar un movimiento de productos.
type ProductMovementInput struct {
	Date        time.Time
	Description string
	Direction   string // IN | OUT
	Lines       []ProductMovementLineInput
}

// SellFromBatchInput entrada para una venta acotada a un lote concreto.
type SellFromBatchInput struct {
	ProductID   string
	BatchLabel  string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Date        time.Time
	Description string
}

// Create registra un movimiento de productos con todas sus líneas en una
// transacción. Una producción (IN) consume además los insumos de la receta
// de cada producto (todo o nada) y, tras persistir el movimiento, asigna en
// una segunda pasada la etiqueta de lote derivada del ID ya generado.
func (uc *ProductMovementUseCase) Create(ctx context.Context, input ProductMovementInput) (*entity.ProductMovement, error) {
	if err := validateProductMovementInput(input, time.Now()); err != nil {
		return nil, err
	}

	now := time.Now()
	movement := &entity.ProductMovement{
		Date:        input.Date,
		Description: input.Description,
		Direction:   input.Direction,
		CreatedAt:   now,
	}

	err := uc.txRunner.Run(ctx, func(
		supplyRepo repository.SupplyRepository,
		productRepo repository.ProductRepository,
		recipeRepo repository.RecipeRepository,
		_ repository.SupplyMovementRepository,
		productMovRepo repository.ProductMovementRepository,
	) error {
		lines := make([]entity.ProductMovementLine, 0, len(input.Lines))

		for i, in := range input.Lines {
			product, err := productRepo.GetForUpdate(in.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}

			line := entity.ProductMovementLine{
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				Position:  i,
			}

			switch input.Direction {
			case entity.DirectionIn:
				line.ExpirationDate = in.ExpirationDate
				// La producción consume los insumos de la receta (todo o nada).
				if err := consumeRecipeSupplies(supplyRepo, recipeRepo, in.ProductID, in.Quantity); err != nil {
					return err
				}
				newStock := product.CurrentStock.Add(in.Quantity)
				if err := productRepo.UpdateStock(product.ID, newStock); err != nil {
					return err
				}
			case entity.DirectionOut:
				line.SaleUnitPrice = in.SaleUnitPrice
				available, err := availableProductStock(productMovRepo, product, input.Date)
				if err != nil {
					return err
				}
				if available.LessThan(in.Quantity) {
					return &domain.InsufficientStockError{
						Name:      product.Name,
						Available: available,
						Requested: in.Quantity,
					}
				}
				newStock := product.CurrentStock.Sub(in.Quantity)
				if err := productRepo.UpdateStock(product.ID, newStock); err != nil {
					return err
				}
				// El precio de la última venta pasa a ser el precio vigente.
				if err := productRepo.UpdateSalePrice(product.ID, in.SaleUnitPrice); err != nil {
					return err
				}
			}
			lines = append(lines, line)
		}

		if err := productMovRepo.Create(movement, lines); err != nil {
			return err
		}

		// Segunda fase del protocolo de etiquetado: la etiqueta depende del ID
		// asignado al persistir, así que requiere una segunda escritura.
		if input.Direction == entity.DirectionIn {
			label := entity.BatchLabel(movement.ID)
			if err := productMovRepo.UpdateBatchLabel(movement.ID, label); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// Delete revierte los efectos de stock de un movimiento de productos y lo
// elimina. Al revertir una producción restaura además los insumos de receta
// consumidos. El precio de venta NO se restaura al revertir una salida: no
// se conserva historial de precios (comportamiento lossy documentado).
func (uc *ProductMovementUseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(
		supplyRepo repository.SupplyRepository,
		productRepo repository.ProductRepository,
		recipeRepo repository.RecipeRepository,
		_ repository.SupplyMovementRepository,
		productMovRepo repository.ProductMovementRepository,
	) error {
		movement, lines, err := productMovRepo.GetByID(id)
		if err != nil {
			return err
		}
		if movement == nil {
			return domain.ErrNotFound
		}

		for _, line := range lines {
			product, err := productRepo.GetForUpdate(line.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			switch movement.Direction {
			case entity.DirectionIn:
				if product.CurrentStock.LessThan(line.Quantity) {
					return &domain.InvalidReversalError{
						Name:      product.Name,
						Current:   product.CurrentStock,
						ToReverse: line.Quantity,
					}
				}
				if err := productRepo.UpdateStock(product.ID, product.CurrentStock.Sub(line.Quantity)); err != nil {
					return err
				}
				// Devuelve a cada insumo de la receta lo consumido por la producción.
				if err := restoreRecipeSupplies(supplyRepo, recipeRepo, line.ProductID, line.Quantity); err != nil {
					return err
				}
			case entity.DirectionOut:
				if err := productRepo.UpdateStock(product.ID, product.CurrentStock.Add(line.Quantity)); err != nil {
					return err
				}
			}
		}

		return productMovRepo.Delete(id)
	})
}

// SellFromBatch registra una salida acotada a un lote: la disponibilidad se
// calcula solo sobre las líneas con esa etiqueta, la línea creada conserva la
// etiqueta dada y copia la fecha de vencimiento de la entrada original del
// lote.
func (uc *ProductMovementUseCase) SellFromBatch(ctx context.Context, input SellFromBatchInput) (*entity.ProductMovement, error) {
	if input.ProductID == "" {
		return nil, &domain.ValidationError{Field: "product_id", Reason: "obligatorio"}
	}
	if input.BatchLabel == "" {
		return nil, &domain.ValidationError{Field: "batch_label", Reason: "obligatorio"}
	}
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "debe ser mayor que cero"}
	}
	if !input.UnitPrice.GreaterThan(decimal.Zero) {
		return nil, &domain.ValidationError{Field: "unit_price", Reason: "debe ser mayor que cero"}
	}
	if input.Date.IsZero() {
		return nil, &domain.ValidationError{Field: "date", Reason: "obligatoria"}
	}

	now := time.Now()
	movement := &entity.ProductMovement{
		Date:        input.Date,
		Description: input.Description,
		Direction:   entity.DirectionOut,
		CreatedAt:   now,
	}

	err := uc.txRunner.Run(ctx, func(
		_ repository.SupplyRepository,
		productRepo repository.ProductRepository,
		_ repository.RecipeRepository,
		_ repository.SupplyMovementRepository,
		productMovRepo repository.ProductMovementRepository,
	) error {
		product, err := productRepo.GetForUpdate(input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		batch, err := productMovRepo.GetBatch(input.ProductID, input.BatchLabel)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrNotFound
		}
		// La suficiencia es por lote: otro lote con stock no compensa este.
		if batch.Remaining.LessThan(input.Quantity) {
			return &domain.InsufficientStockError{
				Name:      product.Name + " (" + input.BatchLabel + ")",
				Available: batch.Remaining,
				Requested: input.Quantity,
			}
		}
		// El restante del lote no garantiza stock global: salidas sin etiqueta
		// pueden haber consumido unidades que entraron bajo este lote.
		available, err := availableProductStock(productMovRepo, product, input.Date)
		if err != nil {
			return err
		}
		if available.LessThan(input.Quantity) {
			return &domain.InsufficientStockError{
				Name:      product.Name,
				Available: available,
				Requested: input.Quantity,
			}
		}

		if err := productRepo.UpdateStock(product.ID, product.CurrentStock.Sub(input.Quantity)); err != nil {
			return err
		}
		if err := productRepo.UpdateSalePrice(product.ID, input.UnitPrice); err != nil {
			return err
		}

		lines := []entity.ProductMovementLine{{
			ProductID:      input.ProductID,
			Quantity:       input.Quantity,
			SaleUnitPrice:  input.UnitPrice,
			ExpirationDate: batch.ExpirationDate,
			BatchLabel:     input.BatchLabel,
			Position:       0,
		}}
		return productMovRepo.Create(movement, lines)
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// GetByID obtiene un movimiento de productos con sus líneas.
func (uc *ProductMovementUseCase) GetByID(id string) (*entity.ProductMovement, []entity.ProductMovementLine, error) {
	return uc.productMovRepo.GetByID(id)
}

// List lista movimientos de productos con paginación.
func (uc *ProductMovementUseCase) List(limit, offset int) ([]*entity.ProductMovement, error) {
	return uc.productMovRepo.List(limit, offset)
}

// consumeRecipeSupplies descuenta de cada insumo de la receta lo necesario
// para producir producedQty unidades. Falla con InsufficientStockError en el
// primer insumo sin stock suficiente; el TxRunner revierte lo ya aplicado.
func consumeRecipeSupplies(
	supplyRepo repository.SupplyRepository,
	recipeRepo repository.RecipeRepository,
	productID string,
	producedQty decimal.Decimal,
) error {
	recipe, err := recipeRepo.GetByProduct(productID)
	if err != nil {
		return err
	}
	if recipe == nil {
		return nil
	}
	lines, err := recipeRepo.ListLines(recipe.ID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		supply, err := supplyRepo.GetForUpdate(line.SupplyID)
		if err != nil {
			return err
		}
		if supply == nil {
			return domain.ErrNotFound
		}
		needed := line.QuantityPerUnit.Mul(producedQty)
		if supply.CurrentStock.LessThan(needed) {
			return &domain.InsufficientStockError{
				Name:      supply.Name,
				Available: supply.CurrentStock,
				Requested: needed,
			}
		}
		if err := supplyRepo.UpdateStockAndCost(supply.ID, supply.CurrentStock.Sub(needed), supply.UnitCost); err != nil {
			return err
		}
	}
	return nil
}

// restoreRecipeSupplies devuelve a cada insumo de la receta lo consumido por
// una producción que se revierte.
func restoreRecipeSupplies(
	supplyRepo repository.SupplyRepository,
	recipeRepo repository.RecipeRepository,
	productID string,
	reversedQty decimal.Decimal,
) error {
	recipe, err := recipeRepo.GetByProduct(productID)
	if err != nil {
		return err
	}
	if recipe == nil {
		return nil
	}
	lines, err := recipeRepo.ListLines(recipe.ID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		supply, err := supplyRepo.GetForUpdate(line.SupplyID)
		if err != nil {
			return err
		}
		if supply == nil {
			return domain.ErrNotFound
		}
		needed := line.QuantityPerUnit.Mul(reversedQty)
		if err := supplyRepo.UpdateStockAndCost(supply.ID, supply.CurrentStock.Add(needed), supply.UnitCost); err != nil {
			return err
		}
	}
	return nil
}

// availableProductStock stock disponible para una salida de producto: el
// menor entre la reproducción a la fecha del movimiento y el stock actual.
func availableProductStock(
	productMovRepo repository.ProductMovementRepository,
	product *entity.Product,
	at time.Time,
) (decimal.Decimal, error) {
	entries, err := productMovRepo.ListEntriesByProduct(product.ID)
	if err != nil {
		return decimal.Zero, err
	}
	asOf := domainledger.StockAsOf(entries, at)
	if product.CurrentStock.LessThan(asOf) {
		return product.CurrentStock, nil
	}
	return asOf, nil
}

func validateProductMovementInput(input ProductMovementInput, now time.Time) error {
	if !entity.ValidDirection(input.Direction) {
		return &domain.ValidationError{Field: "direction", Reason: "debe ser IN u OUT"}
	}
	if input.Date.IsZero() {
		return &domain.ValidationError{Field: "date", Reason: "obligatoria"}
	}
	if len(input.Lines) == 0 {
		return &domain.ValidationError{Field: "lines", Reason: "el movimiento requiere al menos una línea"}
	}
	for _, line := range input.Lines {
		if line.ProductID == "" {
			return &domain.ValidationError{Field: "product_id", Reason: "obligatorio"}
		}
		if !line.Quantity.GreaterThan(decimal.Zero) {
			return &domain.ValidationError{Field: "quantity", Reason: "debe ser mayor que cero"}
		}
		if input.Direction == entity.DirectionOut && !line.SaleUnitPrice.GreaterThan(decimal.Zero) {
			return &domain.ValidationError{Field: "sale_unit_price", Reason: "obligatorio y mayor que cero en salidas"}
		}
		if input.Direction == entity.DirectionIn && line.ExpirationDate != nil && !line.ExpirationDate.After(now) {
			return &domain.ValidationError{Field: "expiration_date", Reason: "debe ser estrictamente futura"}
		}
	}
	return nil
}
