package repository

import "github.com/dgallegoc/produccion-api/internal/domain/entity"

// RecipeRepository puerto de persistencia para recetas (una por producto).
// Las consultas inversas (qué productos usan un insumo) sustituyen la
// navegación bidireccional del grafo de objetos.
type RecipeRepository interface {
	// GetByProduct retorna nil, nil si el producto no tiene receta.
	GetByProduct(productID string) (*entity.Recipe, error)
	ListLines(recipeID string) ([]entity.RecipeLine, error)
	// Replace crea la receta si no existe y reemplaza su conjunto de líneas.
	Replace(productID string, lines []entity.RecipeLine) (*entity.Recipe, error)
	DeleteByProduct(productID string) error
	// ListProductIDsUsingSupply consulta inversa para la cascada de costos:
	// todos los productos cuya receta referencia el insumo.
	ListProductIDsUsingSupply(supplyID string) ([]string, error)
	// ExistsLineForSupply indica si alguna receta consume el insumo
	// (guardia de eliminación de insumos).
	ExistsLineForSupply(supplyID string) (bool, error)
}
