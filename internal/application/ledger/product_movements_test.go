package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/dgallegoc/produccion-api/internal/application/ledger"
	"github.com/dgallegoc/produccion-api/internal/domain"
	"github.com/dgallegoc/produccion-api/internal/domain/entity"
)

// seedFlourAndCake prepara harina con stock y una torta cuya receta consume
// 2 unidades de harina por torta.
func seedFlourAndCake(t *testing.T, f *fixture) (*entity.Supply, *entity.Product) {
	t.Helper()
	flour := f.addSupply(t, "Harina", entity.SupplyKindBase)
	cake := f.addProduct(t, "Torta")
	f.setRecipe(t, cake.ID, entity.RecipeLine{SupplyID: flour.ID, QuantityPerUnit: d("2")})

	_, err := f.supplyMovUC.Create(context.Background(), appledger.SupplyMovementInput{
		Date:      day(1),
		Direction: entity.DirectionIn,
		Lines:     []appledger.SupplyMovementLineInput{{SupplyID: flour.ID, Quantity: d("100"), TotalCost: d("50")}},
	})
	require.NoError(t, err)
	return flour, cake
}

func TestProductMovement_Produccion_ConsumeRecetaYEtiquetaLote(t *testing.T) {
	f := newFixture()
	flour, cake := seedFlourAndCake(t, f)

	mov, err := f.productMovUC.Create(context.Background(), appledger.ProductMovementInput{
		Date:      day(2),
		Direction: entity.DirectionIn,
		Lines:     []appledger.ProductMovementLineInput{{ProductID: cake.ID, Quantity: d("5")}},
	})
	require.NoError(t, err)

	eqd(t, "5", f.product(t, cake.ID).CurrentStock)
	eqd(t, "90", f.supply(t, flour.ID).CurrentStock, "5 tortas x 2 de harina")

	_, lines, err := f.productMovUC.GetByID(mov.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, entity.BatchLabel(mov.ID), lines[0].BatchLabel,
		"la etiqueta de lote deriva del ID del movimiento persistido")
}

func TestProductMovement_Produccion_SinInsumos_TodoONada(t *testing.T) {
	f := newFixture()
	flour, cake := seedFlourAndCake(t, f)

	// 60 tortas requieren 120 de harina y solo hay 100.
	_, err := f.productMovUC.Create(context.Background(), appledger.ProductMovementInput{
		Date:      day(2),
		Direction: entity.DirectionIn,
		Lines:     []appledger.ProductMovementLineInput{{ProductID: cake.ID, Quantity: d("60")}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	eqd(t, "0", f.product(t, cake.ID).CurrentStock, "la producción rechazada no crea stock")
	eqd(t, "100", f.supply(t, flour.ID).CurrentStock, "la producción rechazada no consume insumos")
}

func TestProductMovement_Salida_FijaPrecioDeVenta(t *testing.T) {
	f := newFixture()
	_, cake := seedFlourAndCake(t, f)
	ctx := context.Background()

	_, err := f.productMovUC.Create(ctx, appledger.ProductMovementInput{
		Date:      day(2),
		Direction: entity.DirectionIn,
		Lines:     []appledger.ProductMovementLineInput{{ProductID: cake.ID, Quantity: d("10")}},
	})
	require.NoError(t, err)

	_, err = f.productMovUC.Create(ctx, appledger.ProductMovementInput{
		Date:      day(3),
		Direction: entity.DirectionOut,
		Lines:     []appledger.ProductMovementLineInput{{ProductID: cake.ID, Quantity: d("4"), SaleUnitPrice: d("12")}},
	})
	require.NoError(t, err)

	got := f.product(t, cake.ID)
	eqd(t, "6", got.CurrentStock)
	eqd(t, "12", got.SalePrice, "el precio de la última venta pasa a ser el vigente")
}

func TestProductMovement_DeleteSalida_NoRestauraPrecio(t *testing.T) {
	f := newFixture()
	_, cake := seedFlourAndCake(t, f)
	ctx := context.Background()

	_, err := f.productMovUC.Create(ctx, appledger.ProductMovementInput{
		Date:      day(2),
		Direction: entity.DirectionIn,
		Lines:     []appledger.ProductMovementLineInput{{ProductID: cake.ID, Quantity: d("10")}},
	})
	require.NoError(t, err)

	sale, err := f.productMovUC.Create(ctx, appledger.ProductMovementInput{
		Date:      day(3),
		Direction: entity.DirectionOut,
		Lines:     []appledger.ProductMovementLineInput{{ProductID: cake.ID, Quantity: d("4"), SaleUnitPrice: d("12")}},
	})
	require.NoError(t, err)

	require.NoError(t, f.productMovUC.Delete(ctx, sale.ID))

	got := f.product(t, cake.ID)
	eqd(t, "10", got.CurrentStock, "eliminar la venta devuelve el stock")
	eqd(t, "12", got.SalePrice, "no hay historial de precios: el precio vigente no se restaura")
}

func TestProductMovement_DeleteProduccion_RestauraInsumos(t *testing.T) {
	f := newFixture()
	flour, cake := seedFlourAndCake(t, f)
	ctx := context.Background()

	prod, err := f.productMovUC.Create(ctx, appledger.ProductMovementInput{
		Date:      day(2),
		Direction: entity.DirectionIn,
		Lines:     []appledger.ProductMovementLineInput{{ProductID: cake.ID, Quantity: d("5")}},
	})
	require.NoError(t, err)
	eqd(t, "90", f.supply(t, flour.ID).CurrentStock)

	require.NoError(t, f.productMovUC.Delete(ctx, prod.ID))

	eqd(t, "0", f.product(t, cake.ID).CurrentStock)
	eqd(t, "100", f.supply(t, flour.ID).CurrentStock,
		"revertir la producción devuelve los insumos consumidos")
}

func TestProductMovement_DeleteProduccion_StockYaVendido_Rechazada(t *testing.T) {
	f := newFixture()
	_, cake := seedFlourAndCake(t, f)
	ctx := context.Background()

	prod, err := f.productMovUC.Create(ctx, appledger.ProductMovementInput{
		Date:      day(2),
		Direction: entity.DirectionIn,
		Lines:     []appledger.ProductMovementLineInput{{ProductID: cake.ID, Quantity: d("5")}},
	})
	require.NoError(t, err)

	_, err = f.productMovUC.Create(ctx, appledger.ProductMovementInput{
		Date:      day(3),
		Direction: entity.DirectionOut,
		Lines:     []appledger.ProductMovementLineInput{{ProductID: cake.ID, Quantity: d("4"), SaleUnitPrice: d("12")}},
	})
	require.NoError(t, err)

	err = f.productMovUC.Delete(ctx, prod.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidReversal,
		"revertir la producción dejaría el stock en negativo")
	eqd(t, "1", f.product(t, cake.ID).CurrentStock)
}

func TestProductMovement_VencimientoDebeSerFuturo(t *testing.T) {
	f := newFixture()
	_, cake := seedFlourAndCake(t, f)

	past := time.Now().Add(-time.Hour)
	_, err := f.productMovUC.Create(context.Background(), appledger.ProductMovementInput{
		Date:      day(2),
		Direction: entity.DirectionIn,
		Lines: []appledger.ProductMovementLineInput{
			{ProductID: cake.ID, Quantity: d("5"), ExpirationDate: &past},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSellFromBatch_AcotadaAlLote(t *testing.T) {
	f := newFixture()
	_, cake := seedFlourAndCake(t, f)
	ctx := context.Background()

	expiration := time.Now().Add(30 * 24 * time.Hour)
	prod, err := f.productMovUC.Create(ctx, appledger.ProductMovementInput{
		Date:      day(2),
		Direction: entity.DirectionIn,
		Lines: []appledger.ProductMovementLineInput{
			{ProductID: cake.ID, Quantity: d("20"), ExpirationDate: &expiration},
		},
	})
	require.NoError(t, err)
	label := entity.BatchLabel(prod.ID)

	// Vender más de lo que queda en el lote se rechaza aunque el producto
	// tuviera stock en otros lotes.
	_, err = f.productMovUC.SellFromBatch(ctx, appledger.SellFromBatchInput{
		ProductID:  cake.ID,
		BatchLabel: label,
		Quantity:   d("25"),
		UnitPrice:  d("12"),
		Date:       day(3),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	sale, err := f.productMovUC.SellFromBatch(ctx, appledger.SellFromBatchInput{
		ProductID:  cake.ID,
		BatchLabel: label,
		Quantity:   d("5"),
		UnitPrice:  d("12"),
		Date:       day(3),
	})
	require.NoError(t, err)

	_, lines, err := f.productMovUC.GetByID(sale.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, label, lines[0].BatchLabel, "la venta conserva la etiqueta del lote")
	require.NotNil(t, lines[0].ExpirationDate)
	assert.True(t, lines[0].ExpirationDate.Equal(expiration),
		"la venta copia el vencimiento de la entrada del lote")

	batch, err := f.productMovRepo.GetBatch(cake.ID, label)
	require.NoError(t, err)
	require.NotNil(t, batch)
	eqd(t, "15", batch.Remaining, "el restante del lote descuenta la venta")
	eqd(t, "15", f.product(t, cake.ID).CurrentStock)
}

func TestSellFromBatch_StockGlobalInsuficiente_Rechazada(t *testing.T) {
	f := newFixture()
	_, cake := seedFlourAndCake(t, f)
	ctx := context.Background()

	prod, err := f.productMovUC.Create(ctx, appledger.ProductMovementInput{
		Date:      day(2),
		Direction: entity.DirectionIn,
		Lines:     []appledger.ProductMovementLineInput{{ProductID: cake.ID, Quantity: d("20")}},
	})
	require.NoError(t, err)

	// Una salida sin etiqueta consume unidades que entraron bajo el lote.
	_, err = f.productMovUC.Create(ctx, appledger.ProductMovementInput{
		Date:      day(3),
		Direction: entity.DirectionOut,
		Lines:     []appledger.ProductMovementLineInput{{ProductID: cake.ID, Quantity: d("15"), SaleUnitPrice: d("10")}},
	})
	require.NoError(t, err)

	// El lote todavía registra 20 pero el stock global es 5: la venta por
	// lote no puede dejar el stock en negativo.
	_, err = f.productMovUC.SellFromBatch(ctx, appledger.SellFromBatchInput{
		ProductID:  cake.ID,
		BatchLabel: entity.BatchLabel(prod.ID),
		Quantity:   d("20"),
		UnitPrice:  d("12"),
		Date:       day(4),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	eqd(t, "5", f.product(t, cake.ID).CurrentStock, "el stock actual nunca queda negativo")

	// Dentro del stock global la venta por lote sí procede.
	_, err = f.productMovUC.SellFromBatch(ctx, appledger.SellFromBatchInput{
		ProductID:  cake.ID,
		BatchLabel: entity.BatchLabel(prod.ID),
		Quantity:   d("5"),
		UnitPrice:  d("12"),
		Date:       day(4),
	})
	require.NoError(t, err)
	eqd(t, "0", f.product(t, cake.ID).CurrentStock)
}

func TestBatches_VencidosConRestante_SonPerdidas(t *testing.T) {
	f := newFixture()
	_, cake := seedFlourAndCake(t, f)
	ctx := context.Background()

	expiration := time.Now().Add(24 * time.Hour)
	prod, err := f.productMovUC.Create(ctx, appledger.ProductMovementInput{
		Date:      day(2),
		Direction: entity.DirectionIn,
		Lines: []appledger.ProductMovementLineInput{
			{ProductID: cake.ID, Quantity: d("10"), ExpirationDate: &expiration},
		},
	})
	require.NoError(t, err)

	// Antes del vencimiento no hay pérdidas.
	expired, err := f.productMovRepo.ListExpiredBatches(expiration.Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, expired)

	// Después del vencimiento el lote completo es pérdida.
	expired, err = f.productMovRepo.ListExpiredBatches(expiration.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, entity.BatchLabel(prod.ID), expired[0].Label)
	eqd(t, "10", expired[0].Remaining)
}
