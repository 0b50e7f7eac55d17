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

type supplyFixture struct {
	store *memory.Store
	uc    *usecase.SupplyUseCase
	movUC *appledger.SupplyMovementUseCase
}

func newSupplyFixture() *supplyFixture {
	store := memory.NewStore()
	supplyRepo := memory.NewSupplyRepository(store)
	recipeRepo := memory.NewRecipeRepository(store)
	supplyMovRepo := memory.NewSupplyMovementRepository(store)
	txRunner := memory.NewTxRunner(store)
	return &supplyFixture{
		store: store,
		uc:    usecase.NewSupplyUseCase(txRunner, supplyRepo, recipeRepo, supplyMovRepo),
		movUC: appledger.NewSupplyMovementUseCase(txRunner, supplyRepo, supplyMovRepo),
	}
}

func TestSupplyUseCase_Create(t *testing.T) {
	f := newSupplyFixture()

	out, err := f.uc.Create(dto.CreateSupplyRequest{Name: "Harina", Unit: "GRAMS", Kind: "BASE"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "Harina", out.Name)
	assert.True(t, out.CurrentStock.IsZero(), "el stock inicial es cero")
	assert.True(t, out.UnitCost.IsZero(), "el costo inicial es cero")
}

func TestSupplyUseCase_Create_NombreDuplicado_Rechazado(t *testing.T) {
	f := newSupplyFixture()

	_, err := f.uc.Create(dto.CreateSupplyRequest{Name: "Harina", Unit: "GRAMS", Kind: "BASE"})
	require.NoError(t, err)

	// La unicidad no distingue mayúsculas ni espacios alrededor.
	_, err = f.uc.Create(dto.CreateSupplyRequest{Name: "  harina ", Unit: "GRAMS", Kind: "BASE"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSupplyUseCase_Create_Validaciones(t *testing.T) {
	f := newSupplyFixture()

	_, err := f.uc.Create(dto.CreateSupplyRequest{Name: "", Unit: "GRAMS", Kind: "BASE"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(dto.CreateSupplyRequest{Name: "Harina", Unit: "POUNDS", Kind: "BASE"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(dto.CreateSupplyRequest{Name: "Harina", Unit: "GRAMS", Kind: "MIXED"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSupplyUseCase_Update_TipoInmutable(t *testing.T) {
	f := newSupplyFixture()

	created, err := f.uc.Create(dto.CreateSupplyRequest{Name: "Harina", Unit: "GRAMS", Kind: "BASE"})
	require.NoError(t, err)

	newName := "Harina integral"
	newUnit := "UNITS"
	out, err := f.uc.Update(created.ID, dto.UpdateSupplyRequest{Name: &newName, Unit: &newUnit})
	require.NoError(t, err)
	assert.Equal(t, "Harina integral", out.Name)
	assert.Equal(t, "UNITS", out.Unit)
	assert.Equal(t, entity.SupplyKindBase, out.Kind, "el tipo no cambia en una actualización")
}

func TestSupplyUseCase_ReplaceLinks_Validaciones(t *testing.T) {
	f := newSupplyFixture()
	ctx := context.Background()

	base, err := f.uc.Create(dto.CreateSupplyRequest{Name: "Harina", Unit: "GRAMS", Kind: "BASE"})
	require.NoError(t, err)
	composite, err := f.uc.Create(dto.CreateSupplyRequest{Name: "Masa", Unit: "UNITS", Kind: "COMPOSITE"})
	require.NoError(t, err)
	other, err := f.uc.Create(dto.CreateSupplyRequest{Name: "Relleno", Unit: "UNITS", Kind: "COMPOSITE"})
	require.NoError(t, err)

	// Un insumo BASE no tiene vínculos.
	_, err = f.uc.ReplaceLinks(ctx, base.ID, []dto.CompositeLinkRequest{
		{BaseSupplyID: composite.ID, QuantityPerUnit: decimal.NewFromInt(1)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Conjunto vacío rechazado.
	_, err = f.uc.ReplaceLinks(ctx, composite.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Auto-referencia rechazada.
	_, err = f.uc.ReplaceLinks(ctx, composite.ID, []dto.CompositeLinkRequest{
		{BaseSupplyID: composite.ID, QuantityPerUnit: decimal.NewFromInt(1)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Base duplicado rechazado.
	_, err = f.uc.ReplaceLinks(ctx, composite.ID, []dto.CompositeLinkRequest{
		{BaseSupplyID: base.ID, QuantityPerUnit: decimal.NewFromInt(1)},
		{BaseSupplyID: base.ID, QuantityPerUnit: decimal.NewFromInt(2)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Cantidad no positiva rechazada.
	_, err = f.uc.ReplaceLinks(ctx, composite.ID, []dto.CompositeLinkRequest{
		{BaseSupplyID: base.ID, QuantityPerUnit: decimal.Zero},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// El vínculo debe apuntar a un insumo BASE.
	_, err = f.uc.ReplaceLinks(ctx, composite.ID, []dto.CompositeLinkRequest{
		{BaseSupplyID: other.ID, QuantityPerUnit: decimal.NewFromInt(1)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Conjunto válido: reemplaza y retorna los vínculos.
	out, err := f.uc.ReplaceLinks(ctx, composite.ID, []dto.CompositeLinkRequest{
		{BaseSupplyID: base.ID, QuantityPerUnit: decimal.NewFromInt(3)},
	})
	require.NoError(t, err)
	require.Len(t, out.Links, 1)
	assert.Equal(t, base.ID, out.Links[0].BaseSupplyID)
}

func TestSupplyUseCase_Delete_Guardias(t *testing.T) {
	f := newSupplyFixture()
	ctx := context.Background()

	flour, err := f.uc.Create(dto.CreateSupplyRequest{Name: "Harina", Unit: "GRAMS", Kind: "BASE"})
	require.NoError(t, err)

	// Con movimientos registrados no se elimina.
	_, err = f.movUC.Create(ctx, appledger.SupplyMovementInput{
		Date:      time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		Direction: entity.DirectionIn,
		Lines: []appledger.SupplyMovementLineInput{
			{SupplyID: flour.ID, Quantity: decimal.NewFromInt(10), TotalCost: decimal.NewFromInt(5)},
		},
	})
	require.NoError(t, err)
	assert.ErrorIs(t, f.uc.Delete(flour.ID), domain.ErrConflict)

	// Consumido por un compuesto tampoco.
	sugar, err := f.uc.Create(dto.CreateSupplyRequest{Name: "Azúcar", Unit: "GRAMS", Kind: "BASE"})
	require.NoError(t, err)
	mix, err := f.uc.Create(dto.CreateSupplyRequest{Name: "Mezcla", Unit: "UNITS", Kind: "COMPOSITE"})
	require.NoError(t, err)
	_, err = f.uc.ReplaceLinks(ctx, mix.ID, []dto.CompositeLinkRequest{
		{BaseSupplyID: sugar.ID, QuantityPerUnit: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)
	assert.ErrorIs(t, f.uc.Delete(sugar.ID), domain.ErrConflict)

	// Sin stock, usos ni movimientos se elimina.
	salt, err := f.uc.Create(dto.CreateSupplyRequest{Name: "Sal", Unit: "GRAMS", Kind: "BASE"})
	require.NoError(t, err)
	require.NoError(t, f.uc.Delete(salt.ID))
	_, err = f.uc.GetByID(salt.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
