package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/dgallegoc/produccion-api/internal/application/ledger"
	"github.com/dgallegoc/produccion-api/internal/domain"
	"github.com/dgallegoc/produccion-api/internal/domain/entity"
)

// seedDough prepara masa = 3 harina + 1 agua, con harina a 0.5 y agua a 0.2.
func seedDough(t *testing.T, f *fixture) (flour, water, dough *entity.Supply) {
	t.Helper()
	flour = f.addSupply(t, "Harina", entity.SupplyKindBase)
	water = f.addSupply(t, "Agua", entity.SupplyKindBase)
	dough = f.addSupply(t, "Masa", entity.SupplyKindComposite)
	f.setLinks(t, dough.ID,
		entity.CompositeSupplyLink{BaseSupplyID: flour.ID, QuantityPerUnit: d("3")},
		entity.CompositeSupplyLink{BaseSupplyID: water.ID, QuantityPerUnit: d("1")},
	)

	_, err := f.supplyMovUC.Create(context.Background(), appledger.SupplyMovementInput{
		Date:      day(1),
		Direction: entity.DirectionIn,
		Lines: []appledger.SupplyMovementLineInput{
			{SupplyID: flour.ID, Quantity: d("10"), TotalCost: d("5")},
			{SupplyID: water.ID, Quantity: d("10"), TotalCost: d("2")},
		},
	})
	require.NoError(t, err)
	return flour, water, dough
}

func TestAssemble_ConsumeBasesYProduceCompuesto(t *testing.T) {
	f := newFixture()
	flour, water, dough := seedDough(t, f)

	got, err := f.assemblyUC.Assemble(context.Background(), appledger.AssembleInput{
		SupplyID: dough.ID,
		Quantity: d("2"),
		Date:     day(2),
	})
	require.NoError(t, err)

	eqd(t, "4", f.supply(t, flour.ID).CurrentStock, "2 masas x 3 de harina")
	eqd(t, "8", f.supply(t, water.ID).CurrentStock, "2 masas x 1 de agua")
	eqd(t, "2", got.CurrentStock)
	eqd(t, "1.7", got.UnitCost, "costo por unidad: 3x0.5 + 1x0.2, independiente del lote")
}

func TestAssemble_MovimientosCorrelacionados(t *testing.T) {
	f := newFixture()
	flour, water, dough := seedDough(t, f)

	_, err := f.assemblyUC.Assemble(context.Background(), appledger.AssembleInput{
		SupplyID: dough.ID,
		Quantity: d("2"),
		Date:     day(2),
	})
	require.NoError(t, err)

	// Una salida por vínculo más la entrada del compuesto, todas con el mismo
	// identificador de ensamblaje.
	var assemblyID string
	var outs, ins int
	for _, supplyID := range []string{flour.ID, water.ID, dough.ID} {
		entries, err := f.supplyMovRepo.ListEntriesBySupply(supplyID)
		require.NoError(t, err)
		for _, e := range entries {
			_, lines, err := f.supplyMovRepo.GetByID(e.MovementID)
			require.NoError(t, err)
			for _, line := range lines {
				if line.AssemblyID == "" {
					continue
				}
				if assemblyID == "" {
					assemblyID = line.AssemblyID
				}
				assert.Equal(t, assemblyID, line.AssemblyID,
					"todas las líneas del ensamblaje comparten el identificador")
				if e.Direction == entity.DirectionOut {
					outs++
				} else {
					ins++
					eqd(t, "3.4", line.TotalCost, "el costo de la entrada es el del lote: 1.7 x 2")
				}
			}
		}
	}
	assert.Equal(t, 2, outs, "una salida por vínculo de composición")
	assert.Equal(t, 1, ins, "una única entrada del compuesto")
}

func TestAssemble_BaseInsuficiente_TodoONada(t *testing.T) {
	f := newFixture()
	flour, water, dough := seedDough(t, f)

	// 4 masas requieren 12 de harina y solo hay 10.
	_, err := f.assemblyUC.Assemble(context.Background(), appledger.AssembleInput{
		SupplyID: dough.ID,
		Quantity: d("4"),
		Date:     day(2),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	eqd(t, "10", f.supply(t, flour.ID).CurrentStock, "el ensamblaje rechazado no consume nada")
	eqd(t, "10", f.supply(t, water.ID).CurrentStock)
	eqd(t, "0", f.supply(t, dough.ID).CurrentStock)
}

func TestAssemble_NoCompuesto_Rechazado(t *testing.T) {
	f := newFixture()
	flour := f.addSupply(t, "Harina", entity.SupplyKindBase)

	_, err := f.assemblyUC.Assemble(context.Background(), appledger.AssembleInput{
		SupplyID: flour.ID,
		Quantity: d("1"),
		Date:     day(2),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssemble_SinVinculos_Rechazado(t *testing.T) {
	f := newFixture()
	dough := f.addSupply(t, "Masa", entity.SupplyKindComposite)

	_, err := f.assemblyUC.Assemble(context.Background(), appledger.AssembleInput{
		SupplyID: dough.ID,
		Quantity: d("1"),
		Date:     day(2),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssemble_PropagaCostoALosProductos(t *testing.T) {
	f := newFixture()
	_, _, dough := seedDough(t, f)

	pizza := f.addProduct(t, "Pizza")
	f.setRecipe(t, pizza.ID, entity.RecipeLine{SupplyID: dough.ID, QuantityPerUnit: d("2")})

	_, err := f.assemblyUC.Assemble(context.Background(), appledger.AssembleInput{
		SupplyID: dough.ID,
		Quantity: d("2"),
		Date:     day(2),
	})
	require.NoError(t, err)

	eqd(t, "3.4", f.product(t, pizza.ID).InvestmentCost,
		"el nuevo costo del compuesto se propaga a las recetas: 2 x 1.7")
}
