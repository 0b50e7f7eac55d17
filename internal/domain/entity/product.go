package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto terminado que se produce vía receta y se
// vende por lotes fechados.
// InvestmentCost es derivado: Σ(línea.cantidad × insumo.costo_unitario) sobre
// las líneas de su receta; lo recalcula el motor de costos cuando cambia el
// costo de un insumo consumido. SalePrice refleja el precio de la última venta.
type Product struct {
	ID             string
	Name           string // único
	CurrentStock   decimal.Decimal
	InvestmentCost decimal.Decimal
	SalePrice      decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
