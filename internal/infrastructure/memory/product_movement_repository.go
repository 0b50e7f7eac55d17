package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dgallegoc/produccion-api/internal/domain/entity"
	"github.com/dgallegoc/produccion-api/internal/domain/ledger"
	"github.com/dgallegoc/produccion-api/internal/domain/repository"
)

var _ repository.ProductMovementRepository = (*ProductMovementRepo)(nil)

// ProductMovementRepo implementación en memoria de ProductMovementRepository.
type ProductMovementRepo struct {
	store *Store
}

// NewProductMovementRepository construye el adaptador en memoria.
func NewProductMovementRepository(store *Store) *ProductMovementRepo {
	return &ProductMovementRepo{store: store}
}

// Create persiste movimiento y líneas; asigna IDs si vienen vacíos.
func (r *ProductMovementRepo) Create(m *entity.ProductMovement, lines []entity.ProductMovementLine) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.store.productMovs[m.ID] = *m
	stored := make([]entity.ProductMovementLine, len(lines))
	for i, line := range lines {
		if line.ID == "" {
			line.ID = uuid.New().String()
		}
		line.MovementID = m.ID
		stored[i] = line
	}
	r.store.productLines[m.ID] = stored
	return nil
}

// GetByID obtiene un movimiento con sus líneas (nil si no existe).
func (r *ProductMovementRepo) GetByID(id string) (*entity.ProductMovement, []entity.ProductMovementLine, error) {
	m, ok := r.store.productMovs[id]
	if !ok {
		return nil, nil, nil
	}
	lines, _ := r.ListLines(id)
	return &m, lines, nil
}

// Delete elimina el movimiento con sus líneas.
func (r *ProductMovementRepo) Delete(id string) error {
	delete(r.store.productMovs, id)
	delete(r.store.productLines, id)
	return nil
}

// List lista movimientos por fecha descendente con paginación.
func (r *ProductMovementRepo) List(limit, offset int) ([]*entity.ProductMovement, error) {
	all := make([]entity.ProductMovement, 0, len(r.store.productMovs))
	for _, m := range r.store.productMovs {
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
	out := make([]*entity.ProductMovement, 0, end-offset)
	for i := offset; i < end; i++ {
		m := all[i]
		out = append(out, &m)
	}
	return out, nil
}

// ListLines lista las líneas de un movimiento en orden.
func (r *ProductMovementRepo) ListLines(movementID string) ([]entity.ProductMovementLine, error) {
	lines := append([]entity.ProductMovementLine(nil), r.store.productLines[movementID]...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].Position < lines[j].Position })
	return lines, nil
}

// UpdateBatchLabel fija la etiqueta de lote en todas las líneas del movimiento.
func (r *ProductMovementRepo) UpdateBatchLabel(movementID, label string) error {
	lines := r.store.productLines[movementID]
	for i := range lines {
		lines[i].BatchLabel = label
	}
	r.store.productLines[movementID] = lines
	return nil
}

// ListEntriesByProduct aplana el libro de un producto para reproducción.
func (r *ProductMovementRepo) ListEntriesByProduct(productID string) ([]ledger.Entry, error) {
	var entries []ledger.Entry
	for movID, lines := range r.store.productLines {
		m := r.store.productMovs[movID]
		for _, line := range lines {
			if line.ProductID != productID {
				continue
			}
			entries = append(entries, ledger.Entry{
				MovementID: m.ID,
				Date:       m.Date,
				CreatedAt:  m.CreatedAt,
				Direction:  m.Direction,
				Quantity:   line.Quantity,
			})
		}
	}
	return entries, nil
}

// HasMovements indica si el producto aparece en alguna línea.
func (r *ProductMovementRepo) HasMovements(productID string) (bool, error) {
	for _, lines := range r.store.productLines {
		for _, line := range lines {
			if line.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

// ListBatches agrupa las líneas de un producto por etiqueta de lote.
func (r *ProductMovementRepo) ListBatches(productID string) ([]entity.Batch, error) {
	byLabel := make(map[string]*entity.Batch)
	for movID, lines := range r.store.productLines {
		m := r.store.productMovs[movID]
		for _, line := range lines {
			if line.ProductID != productID || line.BatchLabel == "" {
				continue
			}
			b, ok := byLabel[line.BatchLabel]
			if !ok {
				b = &entity.Batch{
					ProductID: productID,
					Label:     line.BatchLabel,
					Entered:   decimal.Zero,
					Removed:   decimal.Zero,
				}
				byLabel[line.BatchLabel] = b
			}
			if m.Direction == entity.DirectionIn {
				b.Entered = b.Entered.Add(line.Quantity)
				b.EnteredAt = m.Date
				if line.ExpirationDate != nil {
					b.ExpirationDate = line.ExpirationDate
				}
			} else {
				b.Removed = b.Removed.Add(line.Quantity)
			}
		}
	}
	out := make([]entity.Batch, 0, len(byLabel))
	for _, b := range byLabel {
		b.Remaining = b.Entered.Sub(b.Removed)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// GetBatch obtiene un lote por producto y etiqueta (nil si no existe).
func (r *ProductMovementRepo) GetBatch(productID, label string) (*entity.Batch, error) {
	batches, err := r.ListBatches(productID)
	if err != nil {
		return nil, err
	}
	for _, b := range batches {
		if b.Label == label {
			out := b
			return &out, nil
		}
	}
	return nil, nil
}

// ListExpiredBatches lotes vencidos a la fecha con cantidad restante positiva.
func (r *ProductMovementRepo) ListExpiredBatches(at time.Time) ([]entity.Batch, error) {
	seen := make(map[string]struct{})
	var out []entity.Batch
	for _, lines := range r.store.productLines {
		for _, line := range lines {
			if _, ok := seen[line.ProductID]; ok {
				continue
			}
			seen[line.ProductID] = struct{}{}
			batches, err := r.ListBatches(line.ProductID)
			if err != nil {
				return nil, err
			}
			for _, b := range batches {
				if b.Expired(at) && b.Remaining.GreaterThan(decimal.Zero) {
					out = append(out, b)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}
