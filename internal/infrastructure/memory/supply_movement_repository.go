package memory

import (
	"sort"

	"github.com/google/uuid"

	"github.com/dgallegoc/produccion-api/internal/domain/entity"
	"github.com/dgallegoc/produccion-api/internal/domain/ledger"
	"github.com/dgallegoc/produccion-api/internal/domain/repository"
)

var _ repository.SupplyMovementRepository = (*SupplyMovementRepo)(nil)

// SupplyMovementRepo implementación en memoria de SupplyMovementRepository.
type SupplyMovementRepo struct {
	store *Store
}

// NewSupplyMovementRepository construye el adaptador en memoria.
func NewSupplyMovementRepository(store *Store) *SupplyMovementRepo {
	return &SupplyMovementRepo{store: store}
}

// Create persiste movimiento y líneas; asigna IDs si vienen vacíos.
func (r *SupplyMovementRepo) Create(m *entity.SupplyMovement, lines []entity.SupplyMovementLine) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.store.supplyMovs[m.ID] = *m
	stored := make([]entity.SupplyMovementLine, len(lines))
	for i, line := range lines {
		if line.ID == "" {
			line.ID = uuid.New().String()
		}
		line.MovementID = m.ID
		stored[i] = line
	}
	r.store.supplyLines[m.ID] = stored
	return nil
}

// GetByID obtiene un movimiento con sus líneas (nil si no existe).
func (r *SupplyMovementRepo) GetByID(id string) (*entity.SupplyMovement, []entity.SupplyMovementLine, error) {
	m, ok := r.store.supplyMovs[id]
	if !ok {
		return nil, nil, nil
	}
	lines, _ := r.ListLines(id)
	return &m, lines, nil
}

// Delete elimina el movimiento con sus líneas.
func (r *SupplyMovementRepo) Delete(id string) error {
	delete(r.store.supplyMovs, id)
	delete(r.store.supplyLines, id)
	return nil
}

// List lista movimientos por fecha descendente con paginación.
func (r *SupplyMovementRepo) List(limit, offset int) ([]*entity.SupplyMovement, error) {
	all := make([]entity.SupplyMovement, 0, len(r.store.supplyMovs))
	for _, m := range r.store.supplyMovs {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].ID < all[j].ID
	})
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	out := make([]*entity.SupplyMovement, 0, end-offset)
	for i := offset; i < end; i++ {
		m := all[i]
		out = append(out, &m)
	}
	return out, nil
}

// ListLines lista las líneas de un movimiento en orden.
func (r *SupplyMovementRepo) ListLines(movementID string) ([]entity.SupplyMovementLine, error) {
	lines := append([]entity.SupplyMovementLine(nil), r.store.supplyLines[movementID]...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].Position < lines[j].Position })
	return lines, nil
}

// ListEntriesBySupply aplana el libro de un insumo para reproducción.
func (r *SupplyMovementRepo) ListEntriesBySupply(supplyID string) ([]ledger.Entry, error) {
	var entries []ledger.Entry
	for movID, lines := range r.store.supplyLines {
		m := r.store.supplyMovs[movID]
		for _, line := range lines {
			if line.SupplyID != supplyID {
				continue
			}
			entries = append(entries, ledger.Entry{
				MovementID: m.ID,
				Date:       m.Date,
				CreatedAt:  m.CreatedAt,
				Direction:  m.Direction,
				Quantity:   line.Quantity,
				TotalCost:  line.TotalCost,
			})
		}
	}
	return entries, nil
}

// HasMovements indica si el insumo aparece en alguna línea.
func (r *SupplyMovementRepo) HasMovements(supplyID string) (bool, error) {
	for _, lines := range r.store.supplyLines {
		for _, line := range lines {
			if line.SupplyID == supplyID {
				return true, nil
			}
		}
	}
	return false, nil
}
