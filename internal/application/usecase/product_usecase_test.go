package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallegoc/produccion-api/internal/application/dto"
	appledger "github.com/dgallegoc/produccion-api/internal/application/ledger"
	"github.com/dgallegoc/produccion-api/internal/application/usecase"
	"github.com/dgallegoc/produccion-api/internal/domain"
	"github.com/dgallegoc/produccion-api/internal/domain/entity"
	"github.com/dgallegoc/produccion-api/internal/infrastructure/memory"
)

type productFixture struct {
	store    *memory.Store
	uc       *usecase.ProductUseCase
	supplyUC *usecase.SupplyUseCase
	batchUC  *usecase.BatchUseCase

	supplyMovUC  *appledger.SupplyMovementUseCase
	productMovUC *appledger.ProductMovementUseCase
}

func newProductFixture() *productFixture {
	store := memory.NewStore()
	supplyRepo := memory.NewSupplyRepository(store)
	productRepo := memory.NewProductRepository(store)
	recipeRepo := memory.NewRecipeRepository(store)
	supplyMovRepo := memory.NewSupplyMovementRepository(store)
	productMovRepo := memory.NewProductMovementRepository(store)
	txRunner := memory.NewTxRunner(store)
	return &productFixture{
		store:        store,
		uc:           usecase.NewProductUseCase(txRunner, productRepo, recipeRepo, supplyRepo, productMovRepo),
		supplyUC:     usecase.NewSupplyUseCase(txRunner, supplyRepo, recipeRepo, supplyMovRepo),
		batchUC:      usecase.NewBatchUseCase(productRepo, productMovRepo),
		supplyMovUC:  appledger.NewSupplyMovementUseCase(txRunner, supplyRepo, supplyMovRepo),
		productMovUC: appledger.NewProductMovementUseCase(txRunner, productRepo, productMovRepo),
	}
}

// stockSupply crea un insumo BASE y le registra una entrada.
func (f *productFixture) stockSupply(t *testing.T, name string, qty, totalCost string) *dto.SupplyResponse {
	t.Helper()
	s, err := f.supplyUC.Create(dto.CreateSupplyRequest{Name: name, Unit: "GRAMS", Kind: "BASE"})
	require.NoError(t, err)
	_, err = f.supplyMovUC.Create(context.Background(), appledger.SupplyMovementInput{
		Date:      time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		Direction: entity.DirectionIn,
		Lines: []appledger.SupplyMovementLineInput{{
			SupplyID:  s.ID,
			Quantity:  decimal.RequireFromString(qty),
			TotalCost: decimal.RequireFromString(totalCost),
		}},
	})
	require.NoError(t, err)
	return s
}

func TestProductUseCase_Create(t *testing.T) {
	f := newProductFixture()

	out, err := f.uc.Create(dto.CreateProductRequest{Name: "Torta", SalePrice: decimal.NewFromInt(12)})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.True(t, out.CurrentStock.IsZero())
	assert.True(t, out.InvestmentCost.IsZero())
	assert.True(t, decimal.NewFromInt(12).Equal(out.SalePrice))
}

func TestProductUseCase_Create_Validaciones(t *testing.T) {
	f := newProductFixture()

	_, err := f.uc.Create(dto.CreateProductRequest{Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(dto.CreateProductRequest{Name: "Torta", SalePrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(dto.CreateProductRequest{Name: "Torta"})
	require.NoError(t, err)
	_, err = f.uc.Create(dto.CreateProductRequest{Name: "TORTA"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestProductUseCase_ReplaceRecipe_RecalculaCosto(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	flour := f.stockSupply(t, "Harina", "100", "50") // costo unitario 0.5
	sugar := f.stockSupply(t, "Azúcar", "100", "20") // costo unitario 0.2

	cake, err := f.uc.Create(dto.CreateProductRequest{Name: "Torta"})
	require.NoError(t, err)

	out, err := f.uc.ReplaceRecipe(ctx, cake.ID, []dto.RecipeLineRequest{
		{SupplyID: flour.ID, QuantityPerUnit: decimal.NewFromInt(2)},
		{SupplyID: sugar.ID, QuantityPerUnit: decimal.NewFromInt(5)},
	})
	require.NoError(t, err)
	require.Len(t, out.Recipe, 2)
	assert.True(t, decimal.NewFromInt(2).Equal(out.InvestmentCost),
		"costo de inversión: 2x0.5 + 5x0.2, obtenido %s", out.InvestmentCost)
}

func TestProductUseCase_ReplaceRecipe_Validaciones(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	flour := f.stockSupply(t, "Harina", "100", "50")
	cake, err := f.uc.Create(dto.CreateProductRequest{Name: "Torta"})
	require.NoError(t, err)

	_, err = f.uc.ReplaceRecipe(ctx, cake.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "receta vacía rechazada")

	_, err = f.uc.ReplaceRecipe(ctx, cake.ID, []dto.RecipeLineRequest{
		{SupplyID: flour.ID, QuantityPerUnit: decimal.NewFromInt(1)},
		{SupplyID: flour.ID, QuantityPerUnit: decimal.NewFromInt(2)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "insumo duplicado rechazado")

	_, err = f.uc.ReplaceRecipe(ctx, cake.ID, []dto.RecipeLineRequest{
		{SupplyID: flour.ID, QuantityPerUnit: decimal.Zero},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad no positiva rechazada")

	_, err = f.uc.ReplaceRecipe(ctx, "no-existe", []dto.RecipeLineRequest{
		{SupplyID: flour.ID, QuantityPerUnit: decimal.NewFromInt(1)},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_Delete_Guardias(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	flour := f.stockSupply(t, "Harina", "100", "50")
	cake, err := f.uc.Create(dto.CreateProductRequest{Name: "Torta"})
	require.NoError(t, err)
	_, err = f.uc.ReplaceRecipe(ctx, cake.ID, []dto.RecipeLineRequest{
		{SupplyID: flour.ID, QuantityPerUnit: decimal.NewFromInt(2)},
	})
	require.NoError(t, err)

	// Con movimientos (y stock) registrados no se elimina.
	_, err = f.productMovUC.Create(ctx, appledger.ProductMovementInput{
		Date:      time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC),
		Direction: entity.DirectionIn,
		Lines:     []appledger.ProductMovementLineInput{{ProductID: cake.ID, Quantity: decimal.NewFromInt(5)}},
	})
	require.NoError(t, err)
	assert.ErrorIs(t, f.uc.Delete(ctx, cake.ID), domain.ErrConflict)

	// Sin stock ni movimientos se elimina junto con su receta.
	bread, err := f.uc.Create(dto.CreateProductRequest{Name: "Pan"})
	require.NoError(t, err)
	_, err = f.uc.ReplaceRecipe(ctx, bread.ID, []dto.RecipeLineRequest{
		{SupplyID: flour.ID, QuantityPerUnit: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)
	require.NoError(t, f.uc.Delete(ctx, bread.ID))
	_, err = f.uc.GetByID(bread.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	used, err := f.uc.GetByID(cake.ID)
	require.NoError(t, err)
	require.Len(t, used.Recipe, 1, "la receta del producto vivo sigue intacta")
}

func TestBatchUseCase_ListByProduct(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	flour := f.stockSupply(t, "Harina", "100", "50")
	cake, err := f.uc.Create(dto.CreateProductRequest{Name: "Torta"})
	require.NoError(t, err)
	_, err = f.uc.ReplaceRecipe(ctx, cake.ID, []dto.RecipeLineRequest{
		{SupplyID: flour.ID, QuantityPerUnit: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)

	expiration := time.Now().Add(48 * time.Hour)
	first, err := f.productMovUC.Create(ctx, appledger.ProductMovementInput{
		Date:      time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC),
		Direction: entity.DirectionIn,
		Lines: []appledger.ProductMovementLineInput{
			{ProductID: cake.ID, Quantity: decimal.NewFromInt(10), ExpirationDate: &expiration},
		},
	})
	require.NoError(t, err)
	second, err := f.productMovUC.Create(ctx, appledger.ProductMovementInput{
		Date:      time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		Direction: entity.DirectionIn,
		Lines:     []appledger.ProductMovementLineInput{{ProductID: cake.ID, Quantity: decimal.NewFromInt(4)}},
	})
	require.NoError(t, err)

	batches, err := f.batchUC.ListByProduct(cake.ID)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	labels := map[string]dto.BatchResponse{}
	for _, b := range batches {
		labels[b.Label] = b
	}
	withExp, ok := labels[entity.BatchLabel(first.ID)]
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(10).Equal(withExp.Remaining))
	require.NotNil(t, withExp.ExpirationDate)
	assert.False(t, withExp.Expired)

	noExp, ok := labels[entity.BatchLabel(second.ID)]
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(4).Equal(noExp.Remaining))
	assert.Nil(t, noExp.ExpirationDate)

	_, err = f.batchUC.ListByProduct("no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBatchUseCase_ListExpired(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	flour := f.stockSupply(t, "Harina", "100", "50")
	cake, err := f.uc.Create(dto.CreateProductRequest{Name: "Torta"})
	require.NoError(t, err)
	_, err = f.uc.ReplaceRecipe(ctx, cake.ID, []dto.RecipeLineRequest{
		{SupplyID: flour.ID, QuantityPerUnit: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)

	expiration := time.Now().Add(24 * time.Hour)
	prod, err := f.productMovUC.Create(ctx, appledger.ProductMovementInput{
		Date:      time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC),
		Direction: entity.DirectionIn,
		Lines: []appledger.ProductMovementLineInput{
			{ProductID: cake.ID, Quantity: decimal.NewFromInt(10), ExpirationDate: &expiration},
		},
	})
	require.NoError(t, err)

	report, err := f.batchUC.ListExpired(expiration.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, entity.BatchLabel(prod.ID), report[0].Label)
	assert.True(t, report[0].Expired)
	assert.True(t, decimal.NewFromInt(10).Equal(report[0].Remaining))
}
