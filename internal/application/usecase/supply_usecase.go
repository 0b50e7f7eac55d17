package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dgallegoc/produccion-api/internal/application/dto"
	appledger "github.com/dgallegoc/produccion-api/internal/application/ledger"
	"github.com/dgallegoc/produccion-api/internal/domain"
	"github.com/dgallegoc/produccion-api/internal/domain/entity"
	"github.com/dgallegoc/produccion-api/internal/domain/repository"
)

// SupplyUseCase casos de uso CRUD para insumos, incluido el conjunto de
// vínculos de composición de los compuestos. Stock y costo unitario se
// manejan vía movimientos, nunca por edición directa.
type SupplyUseCase struct {
	txRunner      appledger.TxRunner
	supplyRepo    repository.SupplyRepository
	recipeRepo    repository.RecipeRepository
	supplyMovRepo repository.SupplyMovementRepository
}

// NewSupplyUseCase construye el caso de uso.
func NewSupplyUseCase(
	txRunner appledger.TxRunner,
	supplyRepo repository.SupplyRepository,
	recipeRepo repository.RecipeRepository,
	supplyMovRepo repository.SupplyMovementRepository,
) *SupplyUseCase {
	return &SupplyUseCase{
		txRunner:      txRunner,
		supplyRepo:    supplyRepo,
		recipeRepo:    recipeRepo,
		supplyMovRepo: supplyMovRepo,
	}
}

// Create crea un insumo con stock y costo en cero.
func (uc *SupplyUseCase) Create(in dto.CreateSupplyRequest) (*dto.SupplyResponse, error) {
	if in.Name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "obligatorio"}
	}
	if !entity.ValidUnit(in.Unit) {
		return nil, &domain.ValidationError{Field: "unit", Reason: "debe ser GRAMS, MILLILITERS o UNITS"}
	}
	if !entity.ValidSupplyKind(in.Kind) {
		return nil, &domain.ValidationError{Field: "kind", Reason: "debe ser BASE o COMPOSITE"}
	}
	existing, err := uc.supplyRepo.GetByNormalizedName(entity.NormalizeName(in.Name))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrConflict
	}
	now := time.Now()
	supply := &entity.Supply{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Unit:         in.Unit,
		Kind:         in.Kind,
		CurrentStock: decimal.Zero,
		UnitCost:     decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.supplyRepo.Create(supply); err != nil {
		return nil, err
	}
	return dto.ToSupplyResponse(supply, nil), nil
}

// GetByID obtiene un insumo; los compuestos incluyen sus vínculos.
func (uc *SupplyUseCase) GetByID(id string) (*dto.SupplyResponse, error) {
	supply, err := uc.supplyRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if supply == nil {
		return nil, domain.ErrNotFound
	}
	var links []entity.CompositeSupplyLink
	if supply.Kind == entity.SupplyKindComposite {
		links, err = uc.supplyRepo.ListLinks(id)
		if err != nil {
			return nil, err
		}
	}
	return dto.ToSupplyResponse(supply, links), nil
}

// List lista insumos con paginación.
func (uc *SupplyUseCase) List(limit, offset int) ([]dto.SupplyResponse, error) {
	list, err := uc.supplyRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplyResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *dto.ToSupplyResponse(s, nil))
	}
	return items, nil
}

// Update actualiza nombre y unidad. El tipo (BASE/COMPOSITE) es inmutable;
// stock y costo solo cambian vía movimientos.
func (uc *SupplyUseCase) Update(id string, in dto.UpdateSupplyRequest) (*dto.SupplyResponse, error) {
	supply, err := uc.supplyRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if supply == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, &domain.ValidationError{Field: "name", Reason: "obligatorio"}
		}
		other, err := uc.supplyRepo.GetByNormalizedName(entity.NormalizeName(*in.Name))
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, domain.ErrConflict
		}
		supply.Name = *in.Name
	}
	if in.Unit != nil {
		if !entity.ValidUnit(*in.Unit) {
			return nil, &domain.ValidationError{Field: "unit", Reason: "debe ser GRAMS, MILLILITERS o UNITS"}
		}
		supply.Unit = *in.Unit
	}
	supply.UpdatedAt = time.Now()
	if err := uc.supplyRepo.Update(supply); err != nil {
		return nil, err
	}
	return dto.ToSupplyResponse(supply, nil), nil
}

// ReplaceLinks reemplaza el conjunto de vínculos de composición de un
// compuesto. Rechaza bases duplicados, cantidades no positivas, bases que no
// son BASE y auto-referencias.
func (uc *SupplyUseCase) ReplaceLinks(ctx context.Context, id string, in []dto.CompositeLinkRequest) (*dto.SupplyResponse, error) {
	supply, err := uc.supplyRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if supply == nil {
		return nil, domain.ErrNotFound
	}
	if supply.Kind != entity.SupplyKindComposite {
		return nil, &domain.ValidationError{Field: "kind", Reason: "solo los insumos compuestos tienen vínculos"}
	}
	if len(in) == 0 {
		return nil, &domain.ValidationError{Field: "links", Reason: "el compuesto requiere al menos un vínculo"}
	}

	seen := make(map[string]struct{}, len(in))
	links := make([]entity.CompositeSupplyLink, 0, len(in))
	for i, l := range in {
		if l.BaseSupplyID == "" {
			return nil, &domain.ValidationError{Field: "base_supply_id", Reason: "obligatorio"}
		}
		if l.BaseSupplyID == id {
			return nil, &domain.ValidationError{Field: "base_supply_id", Reason: "un compuesto no puede referenciarse a sí mismo"}
		}
		if _, dup := seen[l.BaseSupplyID]; dup {
			return nil, &domain.ValidationError{Field: "base_supply_id", Reason: "insumo base duplicado"}
		}
		seen[l.BaseSupplyID] = struct{}{}
		if !l.QuantityPerUnit.GreaterThan(decimal.Zero) {
			return nil, &domain.ValidationError{Field: "quantity_per_unit", Reason: "debe ser mayor que cero"}
		}
		base, err := uc.supplyRepo.GetByID(l.BaseSupplyID)
		if err != nil {
			return nil, err
		}
		if base == nil {
			return nil, domain.ErrNotFound
		}
		if base.Kind != entity.SupplyKindBase {
			return nil, &domain.ValidationError{Field: "base_supply_id", Reason: "los vínculos solo pueden referenciar insumos BASE"}
		}
		links = append(links, entity.CompositeSupplyLink{
			SupplyID:        id,
			BaseSupplyID:    l.BaseSupplyID,
			QuantityPerUnit: l.QuantityPerUnit,
			Position:        i,
		})
	}

	err = uc.txRunner.Run(ctx, func(
		supplyRepo repository.SupplyRepository,
		_ repository.ProductRepository,
		_ repository.RecipeRepository,
		_ repository.SupplyMovementRepository,
		_ repository.ProductMovementRepository,
	) error {
		return supplyRepo.ReplaceLinks(id, links)
	})
	if err != nil {
		return nil, err
	}
	return dto.ToSupplyResponse(supply, links), nil
}

// Delete elimina un insumo. Se rechaza con ErrConflict si tiene stock, si lo
// consume alguna receta o compuesto, o si tiene movimientos registrados.
func (uc *SupplyUseCase) Delete(id string) error {
	supply, err := uc.supplyRepo.GetByID(id)
	if err != nil {
		return err
	}
	if supply == nil {
		return domain.ErrNotFound
	}
	if supply.CurrentStock.GreaterThan(decimal.Zero) {
		return domain.ErrConflict
	}
	usedInRecipe, err := uc.recipeRepo.ExistsLineForSupply(id)
	if err != nil {
		return err
	}
	if usedInRecipe {
		return domain.ErrConflict
	}
	usedInComposite, err := uc.supplyRepo.ExistsLinkToBase(id)
	if err != nil {
		return err
	}
	if usedInComposite {
		return domain.ErrConflict
	}
	hasMovements, err := uc.supplyMovRepo.HasMovements(id)
	if err != nil {
		return err
	}
	if hasMovements {
		return domain.ErrConflict
	}
	return uc.supplyRepo.Delete(id)
}
