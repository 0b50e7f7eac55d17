package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dgallegoc/produccion-api/internal/domain/entity"
	"github.com/dgallegoc/produccion-api/internal/domain/ledger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func entry(id string, date time.Time, dir string, qty string) ledger.Entry {
	return ledger.Entry{MovementID: id, Date: date, CreatedAt: date, Direction: dir, Quantity: d(qty)}
}

func TestStockAsOf_ReproduceEnOrdenDeFecha(t *testing.T) {
	// Entradas desordenadas a propósito: la reproducción debe ordenar por fecha.
	entries := []ledger.Entry{
		entry("m3", day(10), entity.DirectionOut, "30"),
		entry("m1", day(1), entity.DirectionIn, "100"),
		entry("m2", day(5), entity.DirectionIn, "50"),
	}

	assert.True(t, ledger.StockAsOf(entries, day(1)).Equal(d("100")),
		"al día 1 solo cuenta la primera entrada")
	assert.True(t, ledger.StockAsOf(entries, day(5)).Equal(d("150")))
	assert.True(t, ledger.StockAsOf(entries, day(10)).Equal(d("120")))
	assert.True(t, ledger.StockAsOf(entries, day(31)).Equal(d("120")),
		"después del último movimiento el saldo es el total")
}

func TestStockAsOf_CoincideConAritmeticaDirecta(t *testing.T) {
	// Determinismo de la reproducción: para cualquier corte, el resultado
	// coincide con IN−OUT sobre el mismo subconjunto filtrado.
	entries := []ledger.Entry{
		entry("a", day(2), entity.DirectionIn, "10"),
		entry("b", day(2), entity.DirectionOut, "4"),
		entry("c", day(7), entity.DirectionIn, "2.5"),
		entry("d", day(9), entity.DirectionOut, "1.25"),
	}
	for _, cut := range []time.Time{day(1), day(2), day(7), day(9), day(30)} {
		direct := decimal.Zero
		for _, e := range entries {
			if e.Date.After(cut) {
				continue
			}
			if e.Direction == entity.DirectionIn {
				direct = direct.Add(e.Quantity)
			} else {
				direct = direct.Sub(e.Quantity)
			}
		}
		assert.True(t, ledger.StockAsOf(entries, cut).Equal(direct),
			"corte %s: reproducción != aritmética directa", cut)
	}
}

func TestStockAsOf_EmpatesPorOrdenDeInsercion(t *testing.T) {
	// Dos movimientos el mismo día: el orden lo decide created_at.
	sameDay := day(3)
	entries := []ledger.Entry{
		{MovementID: "m2", Date: sameDay, CreatedAt: sameDay.Add(2 * time.Hour), Direction: entity.DirectionOut, Quantity: d("5")},
		{MovementID: "m1", Date: sameDay, CreatedAt: sameDay.Add(time.Hour), Direction: entity.DirectionIn, Quantity: d("5")},
	}
	assert.True(t, ledger.StockAsOf(entries, sameDay).Equal(decimal.Zero))
}

func TestCurrentStock_IgualAStockAsOfInfinito(t *testing.T) {
	entries := []ledger.Entry{
		entry("a", day(1), entity.DirectionIn, "7"),
		entry("b", day(4), entity.DirectionOut, "3"),
	}
	assert.True(t, ledger.CurrentStock(entries).Equal(ledger.StockAsOf(entries, day(28))))
}

func TestLatestUnitCost_UltimaEntradaRestante(t *testing.T) {
	entries := []ledger.Entry{
		{MovementID: "m1", Date: day(1), CreatedAt: day(1), Direction: entity.DirectionIn, Quantity: d("100"), TotalCost: d("50")},
		{MovementID: "m2", Date: day(5), CreatedAt: day(5), Direction: entity.DirectionOut, Quantity: d("20")},
		{MovementID: "m3", Date: day(8), CreatedAt: day(8), Direction: entity.DirectionIn, Quantity: d("10"), TotalCost: d("8")},
	}
	assert.True(t, ledger.LatestUnitCost(entries).Equal(d("0.8")),
		"debe usar la última entrada (total 8 / cantidad 10)")
}

func TestLatestUnitCost_SinEntradasRetornaCero(t *testing.T) {
	entries := []ledger.Entry{
		entry("m1", day(2), entity.DirectionOut, "5"),
	}
	assert.True(t, ledger.LatestUnitCost(entries).IsZero())
	assert.True(t, ledger.LatestUnitCost(nil).IsZero())
}

func TestUnitCost_SumaComponentes(t *testing.T) {
	// Masa: 3 de harina a 0.5 + 1 de agua a 0.2 = 1.7 por unidad.
	components := []ledger.CostComponent{
		{QuantityPerUnit: d("3"), UnitCost: d("0.5")},
		{QuantityPerUnit: d("1"), UnitCost: d("0.2")},
	}
	assert.True(t, ledger.UnitCost(components).Equal(d("1.7")))
}

func TestBatchCost_EscalaPorCantidad(t *testing.T) {
	components := []ledger.CostComponent{
		{QuantityPerUnit: d("3"), UnitCost: d("0.5")},
		{QuantityPerUnit: d("1"), UnitCost: d("0.2")},
	}
	// Lote de 2 unidades: 6×0.5 + 2×0.2 = 3.4
	assert.True(t, ledger.BatchCost(components, d("2")).Equal(d("3.4")))
	// Coherencia: costo de lote = costo unitario × cantidad.
	assert.True(t, ledger.BatchCost(components, d("2")).Equal(ledger.UnitCost(components).Mul(d("2"))))
}
