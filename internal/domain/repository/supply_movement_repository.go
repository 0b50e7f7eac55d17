package repository

import (
	"github.com/dgallegoc/produccion-api/internal/domain/entity"
	"github.com/dgallegoc/produccion-api/internal/domain/ledger"
)

// SupplyMovementRepository puerto de persistencia para movimientos de
// insumos. Create persiste movimiento y líneas como una unidad (asigna ID si
// viene vacío); Delete elimina el movimiento con sus líneas en cascada.
type SupplyMovementRepository interface {
	Create(m *entity.SupplyMovement, lines []entity.SupplyMovementLine) error
	// GetByID retorna nil, nil, nil si no existe.
	GetByID(id string) (*entity.SupplyMovement, []entity.SupplyMovementLine, error)
	Delete(id string) error
	List(limit, offset int) ([]*entity.SupplyMovement, error)
	ListLines(movementID string) ([]entity.SupplyMovementLine, error)
	// ListEntriesBySupply aplana el libro de un insumo para reproducción
	// (fecha del movimiento, dirección, cantidad, costo total).
	ListEntriesBySupply(supplyID string) ([]ledger.Entry, error)
	// HasMovements guardia de eliminación de insumos.
	HasMovements(supplyID string) (bool, error)
}
