package ledger_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appledger "github.com/dgallegoc/produccion-api/internal/application/ledger"
	"github.com/dgallegoc/produccion-api/internal/domain/entity"
	"github.com/dgallegoc/produccion-api/internal/infrastructure/memory"
)

// fixture arma el motor completo sobre el almacén en memoria.
type fixture struct {
	store          *memory.Store
	supplyRepo     *memory.SupplyRepo
	productRepo    *memory.ProductRepo
	recipeRepo     *memory.RecipeRepo
	supplyMovRepo  *memory.SupplyMovementRepo
	productMovRepo *memory.ProductMovementRepo

	supplyMovUC  *appledger.SupplyMovementUseCase
	productMovUC *appledger.ProductMovementUseCase
	assemblyUC   *appledger.AssemblyUseCase
}

func newFixture() *fixture {
	store := memory.NewStore()
	supplyRepo := memory.NewSupplyRepository(store)
	productRepo := memory.NewProductRepository(store)
	recipeRepo := memory.NewRecipeRepository(store)
	supplyMovRepo := memory.NewSupplyMovementRepository(store)
	productMovRepo := memory.NewProductMovementRepository(store)
	txRunner := memory.NewTxRunner(store)

	return &fixture{
		store:          store,
		supplyRepo:     supplyRepo,
		productRepo:    productRepo,
		recipeRepo:     recipeRepo,
		supplyMovRepo:  supplyMovRepo,
		productMovRepo: productMovRepo,
		supplyMovUC:    appledger.NewSupplyMovementUseCase(txRunner, supplyRepo, supplyMovRepo),
		productMovUC:   appledger.NewProductMovementUseCase(txRunner, productRepo, productMovRepo),
		assemblyUC:     appledger.NewAssemblyUseCase(txRunner, supplyRepo),
	}
}

// addSupply crea un insumo directamente en el repositorio.
func (f *fixture) addSupply(t *testing.T, name, kind string) *entity.Supply {
	t.Helper()
	now := time.Now()
	s := &entity.Supply{
		ID:           uuid.New().String(),
		Name:         name,
		Unit:         entity.UnitGrams,
		Kind:         kind,
		CurrentStock: decimal.Zero,
		UnitCost:     decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.supplyRepo.Create(s))
	return s
}

// addProduct crea un producto directamente en el repositorio.
func (f *fixture) addProduct(t *testing.T, name string) *entity.Product {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID:             uuid.New().String(),
		Name:           name,
		CurrentStock:   decimal.Zero,
		InvestmentCost: decimal.Zero,
		SalePrice:      decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, f.productRepo.Create(p))
	return p
}

// setRecipe fija la receta de un producto.
func (f *fixture) setRecipe(t *testing.T, productID string, lines ...entity.RecipeLine) {
	t.Helper()
	for i := range lines {
		lines[i].Position = i
	}
	_, err := f.recipeRepo.Replace(productID, lines)
	require.NoError(t, err)
}

// setLinks fija los vínculos de composición de un compuesto.
func (f *fixture) setLinks(t *testing.T, supplyID string, links ...entity.CompositeSupplyLink) {
	t.Helper()
	for i := range links {
		links[i].SupplyID = supplyID
		links[i].Position = i
	}
	require.NoError(t, f.supplyRepo.ReplaceLinks(supplyID, links))
}

// supply relee el insumo tras una operación.
func (f *fixture) supply(t *testing.T, id string) *entity.Supply {
	t.Helper()
	s, err := f.supplyRepo.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

// product relee el producto tras una operación.
func (f *fixture) product(t *testing.T, id string) *entity.Product {
	t.Helper()
	p, err := f.productRepo.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(n int) time.Time {
	return time.Date(2025, time.March, n, 0, 0, 0, 0, time.UTC)
}

// eqd compara decimales por valor (no por representación).
func eqd(t *testing.T, expected string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.True(t, d(expected).Equal(got),
		"esperado %s, obtenido %s %v", expected, got.String(), msgAndArgs)
}
