package repository

import (
	"github.com/shopspring/decimal"

	"github.com/dgallegoc/produccion-api/internal/domain/entity"
)

// SupplyRepository puerto de persistencia para insumos y los vínculos de
// composición de los insumos compuestos.
type SupplyRepository interface {
	Create(s *entity.Supply) error
	GetByID(id string) (*entity.Supply, error)
	// GetByNormalizedName busca por nombre normalizado (unicidad sin
	// distinguir mayúsculas). Retorna nil, nil si no existe.
	GetByNormalizedName(normalized string) (*entity.Supply, error)
	List(limit, offset int) ([]*entity.Supply, error)
	Update(s *entity.Supply) error
	// UpdateStockAndCost actualiza solo los campos materializados por el
	// motor de movimientos (stock actual y costo unitario vigente).
	UpdateStockAndCost(id string, stock, cost decimal.Decimal) error
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	// Usar dentro de transacciones antes de mutar stock o costo.
	GetForUpdate(id string) (*entity.Supply, error)
	Delete(id string) error

	// Vínculos de composición (solo insumos COMPOSITE).
	ListLinks(supplyID string) ([]entity.CompositeSupplyLink, error)
	// ReplaceLinks reemplaza el conjunto completo de vínculos.
	ReplaceLinks(supplyID string, links []entity.CompositeSupplyLink) error
	// ExistsLinkToBase indica si algún compuesto consume el insumo base dado
	// (guardia de eliminación).
	ExistsLinkToBase(baseSupplyID string) (bool, error)
}
