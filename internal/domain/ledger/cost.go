package ledger

import "github.com/shopspring/decimal"

// CostComponent una línea de composición con costo: cantidad requerida por
// unidad y costo unitario vigente del insumo referido. Sirve tanto para
// líneas de receta (costo de inversión del producto) como para vínculos de
// un insumo compuesto (costo por unidad ensamblada).
type CostComponent struct {
	QuantityPerUnit decimal.Decimal
	UnitCost        decimal.Decimal
}

// UnitCost calcula el costo de producir UNA unidad:
// Σ(cantidad_por_unidad × costo_unitario). Es independiente del tamaño del
// lote producido. Determinista e idempotente: con los mismos costos de
// entrada produce siempre el mismo resultado.
func UnitCost(components []CostComponent) decimal.Decimal {
	total := decimal.Zero
	for _, c := range components {
		total = total.Add(c.QuantityPerUnit.Mul(c.UnitCost))
	}
	return total
}

// BatchCost calcula el costo total de un lote de ensamblaje de qty unidades:
// Σ(cantidad_por_unidad × qty × costo_unitario). Es el TotalCost de la
// entrada del compuesto, distinto del costo por unidad.
func BatchCost(components []CostComponent, qty decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, c := range components {
		total = total.Add(c.QuantityPerUnit.Mul(qty).Mul(c.UnitCost))
	}
	return total
}
