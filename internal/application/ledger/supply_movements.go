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

// SupplyMovementUseCase registra y revierte movimientos de insumos de forma
// transaccional, manteniendo en la misma operación el libro (movimiento y
// líneas), el stock materializado y el costo unitario vigente.
type SupplyMovementUseCase struct {
	txRunner      TxRunner
	supplyRepo    repository.SupplyRepository
	supplyMovRepo repository.SupplyMovementRepository
}

// NewSupplyMovementUseCase construye el caso de uso.
func NewSupplyMovementUseCase(
	txRunner TxRunner,
	supplyRepo repository.SupplyRepository,
	supplyMovRepo repository.SupplyMovementRepository,
) *SupplyMovementUseCase {
	return &SupplyMovementUseCase{
		txRunner:      txRunner,
		supplyRepo:    supplyRepo,
		supplyMovRepo: supplyMovRepo,
	}
}

// SupplyMovementLineInput entrada para una línea de movimiento de insumo.
// TotalCost es obligatorio (> 0) en entradas y se ignora en salidas.
type SupplyMovementLineInput struct {
	SupplyID  string
	Quantity  decimal.Decimal
	TotalCost decimal.Decimal
}

// SupplyMovementInput entrada para registrar un movimiento de insumos.
type SupplyMovementInput struct {
	Date        time.Time
	Description string
	Direction   string // IN | OUT
	Lines       []SupplyMovementLineInput
}

// Create registra un movimiento de insumos con todas sus líneas en una sola
// transacción. En salidas verifica suficiencia (reproducción del libro a la
// fecha del movimiento y stock actual); en entradas deriva el costo unitario
// (total/cantidad), lo fija como costo vigente del insumo y dispara la
// cascada de costos una vez por insumo afectado.
func (uc *SupplyMovementUseCase) Create(ctx context.Context, input SupplyMovementInput) (*entity.SupplyMovement, error) {
	if err := validateSupplyMovementInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	movement := &entity.SupplyMovement{
		Date:        input.Date,
		Description: input.Description,
		Direction:   input.Direction,
		CreatedAt:   now,
	}

	err := uc.txRunner.Run(ctx, func(
		supplyRepo repository.SupplyRepository,
		productRepo repository.ProductRepository,
		recipeRepo repository.RecipeRepository,
		supplyMovRepo repository.SupplyMovementRepository,
		_ repository.ProductMovementRepository,
	) error {
		lines := make([]entity.SupplyMovementLine, 0, len(input.Lines))
		cascade := make(map[string]struct{})

		for i, in := range input.Lines {
			// Bloquea la fila del insumo antes de chequear y mutar stock.
			supply, err := supplyRepo.GetForUpdate(in.SupplyID)
			if err != nil {
				return err
			}
			if supply == nil {
				return domain.ErrNotFound
			}

			line := entity.SupplyMovementLine{
				SupplyID: in.SupplyID,
				Quantity: in.Quantity,
				Position: i,
			}

			switch input.Direction {
			case entity.DirectionIn:
				line.TotalCost = in.TotalCost
				unitCost := in.TotalCost.Div(in.Quantity)
				newStock := supply.CurrentStock.Add(in.Quantity)
				if err := supplyRepo.UpdateStockAndCost(supply.ID, newStock, unitCost); err != nil {
					return err
				}
				cascade[supply.ID] = struct{}{}
			case entity.DirectionOut:
				available, err := availableSupplyStock(supplyMovRepo, supply, input.Date)
				if err != nil {
					return err
				}
				if available.LessThan(in.Quantity) {
					return &domain.InsufficientStockError{
						Name:      supply.Name,
						Available: available,
						Requested: in.Quantity,
					}
				}
				newStock := supply.CurrentStock.Sub(in.Quantity)
				if err := supplyRepo.UpdateStockAndCost(supply.ID, newStock, supply.UnitCost); err != nil {
					return err
				}
			}
			lines = append(lines, line)
		}

		if err := supplyMovRepo.Create(movement, lines); err != nil {
			return err
		}

		// Cascada de costos: una sola vez por insumo con entrada en este movimiento.
		for supplyID := range cascade {
			if err := RecalculateDownstream(supplyRepo, recipeRepo, productRepo, supplyID); err != nil {
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

// Delete revierte todos los efectos de stock de un movimiento de insumos y
// lo elimina (las líneas caen en cascada). Tras eliminar entradas, recalcula
// el costo unitario de cada insumo afectado desde su historial restante
// (última entrada vigente, o cero si no queda ninguna) y propaga la cascada.
func (uc *SupplyMovementUseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(
		supplyRepo repository.SupplyRepository,
		productRepo repository.ProductRepository,
		recipeRepo repository.RecipeRepository,
		supplyMovRepo repository.SupplyMovementRepository,
		_ repository.ProductMovementRepository,
	) error {
		movement, lines, err := supplyMovRepo.GetByID(id)
		if err != nil {
			return err
		}
		if movement == nil {
			return domain.ErrNotFound
		}

		recost := make(map[string]struct{})
		for _, line := range lines {
			supply, err := supplyRepo.GetForUpdate(line.SupplyID)
			if err != nil {
				return err
			}
			if supply == nil {
				return domain.ErrNotFound
			}
			switch movement.Direction {
			case entity.DirectionIn:
				if supply.CurrentStock.LessThan(line.Quantity) {
					return &domain.InvalidReversalError{
						Name:      supply.Name,
						Current:   supply.CurrentStock,
						ToReverse: line.Quantity,
					}
				}
				newStock := supply.CurrentStock.Sub(line.Quantity)
				if err := supplyRepo.UpdateStockAndCost(supply.ID, newStock, supply.UnitCost); err != nil {
					return err
				}
				recost[supply.ID] = struct{}{}
			case entity.DirectionOut:
				newStock := supply.CurrentStock.Add(line.Quantity)
				if err := supplyRepo.UpdateStockAndCost(supply.ID, newStock, supply.UnitCost); err != nil {
					return err
				}
			}
		}

		if err := supplyMovRepo.Delete(id); err != nil {
			return err
		}

		// Recalcula el costo vigente desde el historial que queda tras el borrado.
		for supplyID := range recost {
			entries, err := supplyMovRepo.ListEntriesBySupply(supplyID)
			if err != nil {
				return err
			}
			supply, err := supplyRepo.GetForUpdate(supplyID)
			if err != nil {
				return err
			}
			if supply == nil {
				return domain.ErrNotFound
			}
			newCost := domainledger.LatestUnitCost(entries)
			if err := supplyRepo.UpdateStockAndCost(supplyID, supply.CurrentStock, newCost); err != nil {
				return err
			}
			if err := RecalculateDownstream(supplyRepo, recipeRepo, productRepo, supplyID); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID obtiene un movimiento de insumos con sus líneas.
func (uc *SupplyMovementUseCase) GetByID(id string) (*entity.SupplyMovement, []entity.SupplyMovementLine, error) {
	return uc.supplyMovRepo.GetByID(id)
}

// List lista movimientos de insumos con paginación.
func (uc *SupplyMovementUseCase) List(limit, offset int) ([]*entity.SupplyMovement, error) {
	return uc.supplyMovRepo.List(limit, offset)
}

// StockAsOf reproduce el libro de un insumo hasta la fecha dada.
func (uc *SupplyMovementUseCase) StockAsOf(supplyID string, at time.Time) (decimal.Decimal, error) {
	supply, err := uc.supplyRepo.GetByID(supplyID)
	if err != nil {
		return decimal.Zero, err
	}
	if supply == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	entries, err := uc.supplyMovRepo.ListEntriesBySupply(supplyID)
	if err != nil {
		return decimal.Zero, err
	}
	return domainledger.StockAsOf(entries, at), nil
}

// availableSupplyStock calcula el stock disponible para una salida: el menor
// entre la reproducción del libro a la fecha del movimiento y el stock actual
// materializado (una salida nunca puede dejar el stock actual en negativo,
// aun con movimientos retrofechados).
func availableSupplyStock(
	supplyMovRepo repository.SupplyMovementRepository,
	supply *entity.Supply,
	at time.Time,
) (decimal.Decimal, error) {
	entries, err := supplyMovRepo.ListEntriesBySupply(supply.ID)
	if err != nil {
		return decimal.Zero, err
	}
	asOf := domainledger.StockAsOf(entries, at)
	if supply.CurrentStock.LessThan(asOf) {
		return supply.CurrentStock, nil
	}
	return asOf, nil
}

func validateSupplyMovementInput(input SupplyMovementInput) error {
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
		if line.SupplyID == "" {
			return &domain.ValidationError{Field: "supply_id", Reason: "obligatorio"}
		}
		if !line.Quantity.GreaterThan(decimal.Zero) {
			return &domain.ValidationError{Field: "quantity", Reason: "debe ser mayor que cero"}
		}
		if input.Direction == entity.DirectionIn && !line.TotalCost.GreaterThan(decimal.Zero) {
			return &domain.ValidationError{Field: "total_cost", Reason: "obligatorio y mayor que cero en entradas"}
		}
	}
	return nil
}
