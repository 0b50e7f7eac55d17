package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe la lista fija de insumos necesarios para producir una unidad de un
// producto. Relación uno a uno: cada producto posee a lo sumo una receta y
// eliminar el producto elimina receta y líneas en cascada.
type Recipe struct {
	ID        string
	ProductID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecipeLine una línea de receta: cantidad del insumo por unidad producida.
type RecipeLine struct {
	RecipeID        string
	SupplyID        string
	QuantityPerUnit decimal.Decimal
	Position        int
}
