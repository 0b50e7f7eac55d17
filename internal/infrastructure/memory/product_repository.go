package memory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dgallegoc/produccion-api/internal/domain"
	"github.com/dgallegoc/produccion-api/internal/domain/entity"
	"github.com/dgallegoc/produccion-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	store *Store
}

// NewProductRepository construye el adaptador en memoria.
func NewProductRepository(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

// Create persiste un producto nuevo; nombre duplicado retorna ErrDuplicate.
func (r *ProductRepo) Create(p *entity.Product) error {
	for _, existing := range r.store.products {
		if entity.NormalizeName(existing.Name) == entity.NormalizeName(p.Name) {
			return domain.ErrDuplicate
		}
	}
	r.store.products[p.ID] = *p
	return nil
}

// GetByID obtiene un producto por ID (nil si no existe).
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetByNormalizedName busca por nombre normalizado.
func (r *ProductRepo) GetByNormalizedName(normalized string) (*entity.Product, error) {
	for _, p := range r.store.products {
		if entity.NormalizeName(p.Name) == normalized {
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

// List lista productos ordenados por nombre con paginación.
func (r *ProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	all := make([]entity.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	out := make([]*entity.Product, 0, end-offset)
	for i := offset; i < end; i++ {
		p := all[i]
		out = append(out, &p)
	}
	return out, nil
}

// Update actualiza un producto existente.
func (r *ProductRepo) Update(p *entity.Product) error {
	if _, ok := r.store.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.store.products[p.ID] = *p
	return nil
}

// GetForUpdate en memoria equivale a GetByID.
func (r *ProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

// UpdateStock actualiza solo el stock materializado.
func (r *ProductRepo) UpdateStock(id string, stock decimal.Decimal) error {
	p, ok := r.store.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.CurrentStock = stock
	r.store.products[id] = p
	return nil
}

// UpdateInvestmentCost actualiza el costo de inversión derivado.
func (r *ProductRepo) UpdateInvestmentCost(id string, cost decimal.Decimal) error {
	p, ok := r.store.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.InvestmentCost = cost
	r.store.products[id] = p
	return nil
}

// UpdateSalePrice actualiza el precio de venta vigente.
func (r *ProductRepo) UpdateSalePrice(id string, price decimal.Decimal) error {
	p, ok := r.store.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.SalePrice = price
	r.store.products[id] = p
	return nil
}

// Delete elimina el producto; la receta cae en cascada.
func (r *ProductRepo) Delete(id string) error {
	delete(r.store.products, id)
	if recipe, ok := r.store.recipes[id]; ok {
		delete(r.store.recipeLines, recipe.ID)
		delete(r.store.recipes, id)
	}
	return nil
}
