package memory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dgallegoc/produccion-api/internal/domain"
	"github.com/dgallegoc/produccion-api/internal/domain/entity"
	"github.com/dgallegoc/produccion-api/internal/domain/repository"
)

var _ repository.SupplyRepository = (*SupplyRepo)(nil)

// SupplyRepo implementación en memoria de SupplyRepository.
type SupplyRepo struct {
	store *Store
}

// NewSupplyRepository construye el adaptador en memoria.
func NewSupplyRepository(store *Store) *SupplyRepo {
	return &SupplyRepo{store: store}
}

// Create persiste un insumo nuevo; nombre duplicado retorna ErrDuplicate.
func (r *SupplyRepo) Create(s *entity.Supply) error {
	for _, existing := range r.store.supplies {
		if entity.NormalizeName(existing.Name) == entity.NormalizeName(s.Name) {
			return domain.ErrDuplicate
		}
	}
	r.store.supplies[s.ID] = *s
	return nil
}

// GetByID obtiene un insumo por ID (nil si no existe).
func (r *SupplyRepo) GetByID(id string) (*entity.Supply, error) {
	s, ok := r.store.supplies[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// GetByNormalizedName busca por nombre normalizado.
func (r *SupplyRepo) GetByNormalizedName(normalized string) (*entity.Supply, error) {
	for _, s := range r.store.supplies {
		if entity.NormalizeName(s.Name) == normalized {
			out := s
			return &out, nil
		}
	}
	return nil, nil
}

// List lista insumos ordenados por nombre con paginación.
func (r *SupplyRepo) List(limit, offset int) ([]*entity.Supply, error) {
	all := make([]entity.Supply, 0, len(r.store.supplies))
	for _, s := range r.store.supplies {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return pageSupplies(all, limit, offset), nil
}

func pageSupplies(all []entity.Supply, limit, offset int) []*entity.Supply {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	out := make([]*entity.Supply, 0, end-offset)
	for i := offset; i < end; i++ {
		s := all[i]
		out = append(out, &s)
	}
	return out
}

// Update actualiza un insumo existente.
func (r *SupplyRepo) Update(s *entity.Supply) error {
	if _, ok := r.store.supplies[s.ID]; !ok {
		return domain.ErrNotFound
	}
	r.store.supplies[s.ID] = *s
	return nil
}

// UpdateStockAndCost actualiza los campos materializados por el motor.
func (r *SupplyRepo) UpdateStockAndCost(id string, stock, cost decimal.Decimal) error {
	s, ok := r.store.supplies[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.CurrentStock = stock
	s.UnitCost = cost
	r.store.supplies[id] = s
	return nil
}

// GetForUpdate en memoria equivale a GetByID: el mutex del TxRunner ya
// serializa las transacciones.
func (r *SupplyRepo) GetForUpdate(id string) (*entity.Supply, error) {
	return r.GetByID(id)
}

// Delete elimina el insumo y sus vínculos de composición.
func (r *SupplyRepo) Delete(id string) error {
	delete(r.store.supplies, id)
	delete(r.store.links, id)
	return nil
}

// ListLinks lista los vínculos de composición de un compuesto.
func (r *SupplyRepo) ListLinks(supplyID string) ([]entity.CompositeSupplyLink, error) {
	links := r.store.links[supplyID]
	out := append([]entity.CompositeSupplyLink(nil), links...)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// ReplaceLinks reemplaza el conjunto de vínculos del compuesto.
func (r *SupplyRepo) ReplaceLinks(supplyID string, links []entity.CompositeSupplyLink) error {
	if _, ok := r.store.supplies[supplyID]; !ok {
		return domain.ErrNotFound
	}
	r.store.links[supplyID] = append([]entity.CompositeSupplyLink(nil), links...)
	return nil
}

// ExistsLinkToBase indica si algún compuesto consume el insumo base.
func (r *SupplyRepo) ExistsLinkToBase(baseSupplyID string) (bool, error) {
	for _, links := range r.store.links {
		for _, link := range links {
			if link.BaseSupplyID == baseSupplyID {
				return true, nil
			}
		}
	}
	return false, nil
}
