package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ProductMovement un movimiento fechado de productos terminados.
// Las entradas (IN) son producciones: consumen los insumos de la receta y
// sus líneas reciben una etiqueta de lote derivada del ID del movimiento.
type ProductMovement struct {
	ID          string
	Date        time.Time
	Description string
	Direction   string // IN | OUT
	CreatedAt   time.Time
}

// ProductMovementLine una línea de movimiento de producto.
// SaleUnitPrice solo tiene significado en salidas (OUT); ExpirationDate solo
// en entradas (IN). BatchLabel agrupa líneas del mismo lote.
type ProductMovementLine struct {
	ID             string
	MovementID     string
	ProductID      string
	Quantity       decimal.Decimal
	SaleUnitPrice  decimal.Decimal
	ExpirationDate *time.Time
	BatchLabel     string
	Position       int
}

// BatchLabel deriva la etiqueta de lote de un movimiento de producción.
// Convención persistida y visible externamente ("LOTE-" + id del movimiento);
// debe reproducirse exacta para compatibilidad con datos existentes.
func BatchLabel(movementID string) string {
	return fmt.Sprintf("LOTE-%s", movementID)
}

// Batch no es una entidad almacenada: es la agrupación derivada de líneas de
// producto que comparten etiqueta. Remaining = Σ entradas − Σ salidas.
// Un lote vencido con Remaining > 0 representa una pérdida.
type Batch struct {
	ProductID      string
	Label          string
	Entered        decimal.Decimal
	Removed        decimal.Decimal
	Remaining      decimal.Decimal
	ExpirationDate *time.Time
	EnteredAt      time.Time // fecha del movimiento de entrada que originó el lote
}

// Expired indica si el lote está vencido a la fecha dada.
func (b *Batch) Expired(at time.Time) bool {
	return b.ExpirationDate != nil && b.ExpirationDate.Before(at)
}
