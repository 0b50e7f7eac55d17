package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direcciones de movimiento (entrada / salida).
const (
	DirectionIn  = "IN"
	DirectionOut = "OUT"
)

// ValidDirection verifica que la dirección pertenezca al enum.
func ValidDirection(d string) bool {
	return d == DirectionIn || d == DirectionOut
}

// SupplyMovement un movimiento fechado de insumos con una o más líneas.
// Se crea atómicamente con todas sus líneas; eliminarlo revierte todos los
// efectos de stock antes de borrarlo (las líneas caen en cascada).
type SupplyMovement struct {
	ID          string
	Date        time.Time
	Description string
	Direction   string // IN | OUT
	CreatedAt   time.Time
}

// SupplyMovementLine una línea de movimiento de insumo.
// TotalCost solo tiene significado en entradas (IN) y es inmutable una vez
// persistido. AssemblyID correlaciona las líneas producidas por una misma
// operación de ensamblaje (vacío si no aplica).
type SupplyMovementLine struct {
	ID         string
	MovementID string
	SupplyID   string
	Quantity   decimal.Decimal
	TotalCost  decimal.Decimal
	AssemblyID string
	Position   int
}
