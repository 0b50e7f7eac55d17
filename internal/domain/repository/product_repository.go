package repository

import (
	"github.com/shopspring/decimal"

	"github.com/dgallegoc/produccion-api/internal/domain/entity"
)

// ProductRepository puerto de persistencia para productos terminados.
// Stock, costo de inversión y precio de venta se mutan solo vía los métodos
// específicos (los maneja el motor de movimientos y el motor de costos).
type ProductRepository interface {
	Create(p *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	// GetByNormalizedName retorna nil, nil si no existe.
	GetByNormalizedName(normalized string) (*entity.Product, error)
	List(limit, offset int) ([]*entity.Product, error)
	Update(p *entity.Product) error
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Product, error)
	UpdateStock(id string, stock decimal.Decimal) error
	UpdateInvestmentCost(id string, cost decimal.Decimal) error
	UpdateSalePrice(id string, price decimal.Decimal) error
	// Delete elimina el producto; receta y líneas caen en cascada.
	Delete(id string) error
}
