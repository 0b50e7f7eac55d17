package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dgallegoc/produccion-api/internal/domain"
	"github.com/dgallegoc/produccion-api/internal/domain/entity"
	"github.com/dgallegoc/produccion-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo implementación en memoria de RecipeRepository.
type RecipeRepo struct {
	store *Store
}

// NewRecipeRepository construye el adaptador en memoria.
func NewRecipeRepository(store *Store) *RecipeRepo {
	return &RecipeRepo{store: store}
}

// GetByProduct obtiene la receta de un producto (nil si no tiene).
func (r *RecipeRepo) GetByProduct(productID string) (*entity.Recipe, error) {
	recipe, ok := r.store.recipes[productID]
	if !ok {
		return nil, nil
	}
	return &recipe, nil
}

// ListLines lista las líneas de una receta en orden.
func (r *RecipeRepo) ListLines(recipeID string) ([]entity.RecipeLine, error) {
	lines := append([]entity.RecipeLine(nil), r.store.recipeLines[recipeID]...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].Position < lines[j].Position })
	return lines, nil
}

// Replace crea la receta si no existe y reemplaza su conjunto de líneas.
func (r *RecipeRepo) Replace(productID string, lines []entity.RecipeLine) (*entity.Recipe, error) {
	if _, ok := r.store.products[productID]; !ok {
		return nil, domain.ErrNotFound
	}
	recipe, ok := r.store.recipes[productID]
	now := time.Now()
	if !ok {
		recipe = entity.Recipe{ID: uuid.New().String(), ProductID: productID, CreatedAt: now}
	}
	recipe.UpdatedAt = now
	r.store.recipes[productID] = recipe

	stored := make([]entity.RecipeLine, len(lines))
	for i, line := range lines {
		line.RecipeID = recipe.ID
		line.Position = i
		stored[i] = line
	}
	r.store.recipeLines[recipe.ID] = stored
	out := recipe
	return &out, nil
}

// DeleteByProduct elimina la receta y sus líneas.
func (r *RecipeRepo) DeleteByProduct(productID string) error {
	if recipe, ok := r.store.recipes[productID]; ok {
		delete(r.store.recipeLines, recipe.ID)
		delete(r.store.recipes, productID)
	}
	return nil
}

// ListProductIDsUsingSupply consulta inversa para la cascada de costos.
func (r *RecipeRepo) ListProductIDsUsingSupply(supplyID string) ([]string, error) {
	var out []string
	for productID, recipe := range r.store.recipes {
		for _, line := range r.store.recipeLines[recipe.ID] {
			if line.SupplyID == supplyID {
				out = append(out, productID)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// ExistsLineForSupply indica si alguna receta consume el insumo.
func (r *RecipeRepo) ExistsLineForSupply(supplyID string) (bool, error) {
	for _, lines := range r.store.recipeLines {
		for _, line := range lines {
			if line.SupplyID == supplyID {
				return true, nil
			}
		}
	}
	return false, nil
}
