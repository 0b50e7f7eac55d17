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

// ProductUseCase casos de uso CRUD para productos y su receta (una por
// producto). Stock, costo de inversión y precio vigente se manejan vía
// movimientos y cascada de costos.
type ProductUseCase struct {
	txRunner       appledger.TxRunner
	productRepo    repository.ProductRepository
	recipeRepo     repository.RecipeRepository
	supplyRepo     repository.SupplyRepository
	productMovRepo repository.ProductMovementRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner appledger.TxRunner,
	productRepo repository.ProductRepository,
	recipeRepo repository.RecipeRepository,
	supplyRepo repository.SupplyRepository,
	productMovRepo repository.ProductMovementRepository,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:       txRunner,
		productRepo:    productRepo,
		recipeRepo:     recipeRepo,
		supplyRepo:     supplyRepo,
		productMovRepo: productMovRepo,
	}
}

// Create crea un producto con stock y costo de inversión en cero.
func (uc *ProductUseCase) Create(in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "obligatorio"}
	}
	if in.SalePrice.LessThan(decimal.Zero) {
		return nil, &domain.ValidationError{Field: "sale_price", Reason: "no puede ser negativo"}
	}
	existing, err := uc.productRepo.GetByNormalizedName(entity.NormalizeName(in.Name))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrConflict
	}
	now := time.Now()
	product := &entity.Product{
		ID:             uuid.New().String(),
		Name:           in.Name,
		CurrentStock:   decimal.Zero,
		InvestmentCost: decimal.Zero,
		SalePrice:      in.SalePrice,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.productRepo.Create(product); err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product, nil), nil
}

// GetByID obtiene un producto con las líneas de su receta (si tiene).
func (uc *ProductUseCase) GetByID(id string) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.recipeLines(id)
	if err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product, lines), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(limit, offset int) ([]dto.ProductResponse, error) {
	list, err := uc.productRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *dto.ToProductResponse(p, nil))
	}
	return items, nil
}

// Update actualiza nombre y precio de venta. Stock y costo de inversión no
// se editan directamente.
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, &domain.ValidationError{Field: "name", Reason: "obligatorio"}
		}
		other, err := uc.productRepo.GetByNormalizedName(entity.NormalizeName(*in.Name))
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, domain.ErrConflict
		}
		product.Name = *in.Name
	}
	if in.SalePrice != nil {
		if in.SalePrice.LessThan(decimal.Zero) {
			return nil, &domain.ValidationError{Field: "sale_price", Reason: "no puede ser negativo"}
		}
		product.SalePrice = *in.SalePrice
	}
	product.UpdatedAt = time.Now()
	if err := uc.productRepo.Update(product); err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product, nil), nil
}

// ReplaceRecipe reemplaza la receta completa del producto y recalcula su
// costo de inversión con los costos unitarios vigentes de los insumos.
// Rechaza insumos duplicados y cantidades no positivas.
func (uc *ProductUseCase) ReplaceRecipe(ctx context.Context, id string, in []dto.RecipeLineRequest) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if len(in) == 0 {
		return nil, &domain.ValidationError{Field: "lines", Reason: "la receta requiere al menos una línea"}
	}

	seen := make(map[string]struct{}, len(in))
	lines := make([]entity.RecipeLine, 0, len(in))
	for i, l := range in {
		if l.SupplyID == "" {
			return nil, &domain.ValidationError{Field: "supply_id", Reason: "obligatorio"}
		}
		if _, dup := seen[l.SupplyID]; dup {
			return nil, &domain.ValidationError{Field: "supply_id", Reason: "insumo duplicado en la receta"}
		}
		seen[l.SupplyID] = struct{}{}
		if !l.QuantityPerUnit.GreaterThan(decimal.Zero) {
			return nil, &domain.ValidationError{Field: "quantity_per_unit", Reason: "debe ser mayor que cero"}
		}
		supply, err := uc.supplyRepo.GetByID(l.SupplyID)
		if err != nil {
			return nil, err
		}
		if supply == nil {
			return nil, domain.ErrNotFound
		}
		lines = append(lines, entity.RecipeLine{
			SupplyID:        l.SupplyID,
			QuantityPerUnit: l.QuantityPerUnit,
			Position:        i,
		})
	}

	err = uc.txRunner.Run(ctx, func(
		supplyRepo repository.SupplyRepository,
		productRepo repository.ProductRepository,
		recipeRepo repository.RecipeRepository,
		_ repository.SupplyMovementRepository,
		_ repository.ProductMovementRepository,
	) error {
		if _, err := recipeRepo.Replace(id, lines); err != nil {
			return err
		}
		cost, err := appledger.RecipeInvestmentCost(supplyRepo, recipeRepo, id)
		if err != nil {
			return err
		}
		return productRepo.UpdateInvestmentCost(id, cost)
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(id)
}

// Delete elimina un producto con su receta en cascada. Se rechaza con
// ErrConflict si tiene stock o movimientos registrados.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if product.CurrentStock.GreaterThan(decimal.Zero) {
		return domain.ErrConflict
	}
	hasMovements, err := uc.productMovRepo.HasMovements(id)
	if err != nil {
		return err
	}
	if hasMovements {
		return domain.ErrConflict
	}
	return uc.txRunner.Run(ctx, func(
		_ repository.SupplyRepository,
		productRepo repository.ProductRepository,
		recipeRepo repository.RecipeRepository,
		_ repository.SupplyMovementRepository,
		_ repository.ProductMovementRepository,
	) error {
		if err := recipeRepo.DeleteByProduct(id); err != nil {
			return err
		}
		return productRepo.Delete(id)
	})
}

func (uc *ProductUseCase) recipeLines(productID string) ([]entity.RecipeLine, error) {
	recipe, err := uc.recipeRepo.GetByProduct(productID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, nil
	}
	return uc.recipeRepo.ListLines(recipe.ID)
}
