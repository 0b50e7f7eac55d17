package repository

import (
	"time"

	"github.com/dgallegoc/produccion-api/internal/domain/entity"
	"github.com/dgallegoc/produccion-api/internal/domain/ledger"
)

// ProductMovementRepository puerto de persistencia para movimientos de
// productos y las consultas derivadas de lotes.
type ProductMovementRepository interface {
	Create(m *entity.ProductMovement, lines []entity.ProductMovementLine) error
	// GetByID retorna nil, nil, nil si no existe.
	GetByID(id string) (*entity.ProductMovement, []entity.ProductMovementLine, error)
	Delete(id string) error
	List(limit, offset int) ([]*entity.ProductMovement, error)
	ListLines(movementID string) ([]entity.ProductMovementLine, error)
	// UpdateBatchLabel segunda fase del protocolo de etiquetado: una vez
	// persistido el movimiento y conocido su ID, fija la etiqueta de lote en
	// todas sus líneas.
	UpdateBatchLabel(movementID, label string) error
	// ListEntriesByProduct aplana el libro de un producto para reproducción.
	ListEntriesByProduct(productID string) ([]ledger.Entry, error)
	// HasMovements guardia de eliminación de productos.
	HasMovements(productID string) (bool, error)

	// Lotes derivados: agrupación de líneas por etiqueta.
	ListBatches(productID string) ([]entity.Batch, error)
	// GetBatch retorna nil, nil si el lote no existe para el producto.
	GetBatch(productID, label string) (*entity.Batch, error)
	// ListExpiredBatches lotes vencidos a la fecha con cantidad restante
	// positiva (pérdidas).
	ListExpiredBatches(at time.Time) ([]entity.Batch, error)
}
