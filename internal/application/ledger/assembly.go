package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dgallegoc/produccion-api/internal/domain"
	"github.com/dgallegoc/produccion-api/internal/domain/entity"
	domainledger "github.com/dgallegoc/produccion-api/internal/domain/ledger"
	"github.com/dgallegoc/produccion-api/internal/domain/repository"
)

// AssemblyUseCase ensambla insumos compuestos: consume N insumos base y
// produce M unidades del compuesto mediante un conjunto de movimientos
// correlacionados por un identificador de ensamblaje compartido.
type AssemblyUseCase struct {
	txRunner   TxRunner
	supplyRepo repository.SupplyRepository
}

// NewAssemblyUseCase construye el caso de uso.
func NewAssemblyUseCase(txRunner TxRunner, supplyRepo repository.SupplyRepository) *AssemblyUseCase {
	return &AssemblyUseCase{txRunner: txRunner, supplyRepo: supplyRepo}
}

// AssembleInput entrada para un ensamblaje.
type AssembleInput struct {
	SupplyID    string // insumo COMPOSITE a producir
	Quantity    decimal.Decimal
	Date        time.Time
	Description string
}

// Assemble produce quantity unidades del insumo compuesto:
//  1. verifica que el insumo sea COMPOSITE y tenga vínculos;
//  2. pre-chequea suficiencia de cada insumo base (todo o nada);
//  3. genera un identificador de ensamblaje único;
//  4. crea una salida por vínculo ("componente de <nombre>") etiquetada con
//     ese identificador;
//  5. crea una entrada del compuesto con costo total = costo del lote;
//  6. recalcula el costo POR UNIDAD del compuesto (independiente del tamaño
//     del lote) y lo fija como costo vigente.
//
// Retorna el compuesto actualizado.
func (uc *AssemblyUseCase) Assemble(ctx context.Context, input AssembleInput) (*entity.Supply, error) {
	if input.SupplyID == "" {
		return nil, &domain.ValidationError{Field: "supply_id", Reason: "obligatorio"}
	}
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "debe ser mayor que cero"}
	}
	if input.Date.IsZero() {
		return nil, &domain.ValidationError{Field: "date", Reason: "obligatoria"}
	}

	var assembled *entity.Supply
	now := time.Now()

	err := uc.txRunner.Run(ctx, func(
		supplyRepo repository.SupplyRepository,
		productRepo repository.ProductRepository,
		recipeRepo repository.RecipeRepository,
		supplyMovRepo repository.SupplyMovementRepository,
		_ repository.ProductMovementRepository,
	) error {
		composite, err := supplyRepo.GetForUpdate(input.SupplyID)
		if err != nil {
			return err
		}
		if composite == nil {
			return domain.ErrNotFound
		}
		if composite.Kind != entity.SupplyKindComposite {
			return &domain.ValidationError{Field: "supply_id", Reason: "el insumo no es compuesto"}
		}
		links, err := supplyRepo.ListLinks(composite.ID)
		if err != nil {
			return err
		}
		if len(links) == 0 {
			return &domain.ValidationError{Field: "links", Reason: "el compuesto no tiene vínculos de composición"}
		}

		// Pre-chequeo de suficiencia de todos los bases antes de consumir nada.
		bases := make([]*entity.Supply, len(links))
		for i, link := range links {
			base, err := supplyRepo.GetForUpdate(link.BaseSupplyID)
			if err != nil {
				return err
			}
			if base == nil {
				return domain.ErrNotFound
			}
			needed := link.QuantityPerUnit.Mul(input.Quantity)
			if base.CurrentStock.LessThan(needed) {
				return &domain.InsufficientStockError{
					Name:      base.Name,
					Available: base.CurrentStock,
					Requested: needed,
				}
			}
			bases[i] = base
		}

		assemblyID := uuid.New().String()
		components := make([]domainledger.CostComponent, len(links))

		// Una salida por vínculo, correlacionada por el ID de ensamblaje.
		for i, link := range links {
			base := bases[i]
			needed := link.QuantityPerUnit.Mul(input.Quantity)
			outMov := &entity.SupplyMovement{
				Date:        input.Date,
				Description: "componente de " + composite.Name,
				Direction:   entity.DirectionOut,
				CreatedAt:   now,
			}
			outLines := []entity.SupplyMovementLine{{
				SupplyID:   base.ID,
				Quantity:   needed,
				AssemblyID: assemblyID,
				Position:   0,
			}}
			if err := supplyMovRepo.Create(outMov, outLines); err != nil {
				return err
			}
			if err := supplyRepo.UpdateStockAndCost(base.ID, base.CurrentStock.Sub(needed), base.UnitCost); err != nil {
				return err
			}
			components[i] = domainledger.CostComponent{
				QuantityPerUnit: link.QuantityPerUnit,
				UnitCost:        base.UnitCost,
			}
		}

		// Entrada del compuesto: el costo total es el costo del lote producido.
		batchCost := domainledger.BatchCost(components, input.Quantity)
		description := input.Description
		if description == "" {
			description = "ensamblaje de " + composite.Name
		}
		inMov := &entity.SupplyMovement{
			Date:        input.Date,
			Description: description,
			Direction:   entity.DirectionIn,
			CreatedAt:   now,
		}
		inLines := []entity.SupplyMovementLine{{
			SupplyID:   composite.ID,
			Quantity:   input.Quantity,
			TotalCost:  batchCost,
			AssemblyID: assemblyID,
			Position:   0,
		}}
		if err := supplyMovRepo.Create(inMov, inLines); err != nil {
			return err
		}

		// Costo vigente del compuesto: costo de UNA unidad, no del lote.
		perUnitCost := domainledger.UnitCost(components)
		newStock := composite.CurrentStock.Add(input.Quantity)
		if err := supplyRepo.UpdateStockAndCost(composite.ID, newStock, perUnitCost); err != nil {
			return err
		}

		// El costo del compuesto cambió: propaga a los productos que lo consumen.
		if err := RecalculateDownstream(supplyRepo, recipeRepo, productRepo, composite.ID); err != nil {
			return err
		}

		assembled, err = supplyRepo.GetByID(composite.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return assembled, nil
}
