package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dgallegoc/produccion-api/internal/domain/entity"
	"github.com/dgallegoc/produccion-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo implementación del puerto RecipeRepository sobre PostgreSQL (usable con pool o tx).
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador de persistencia para recetas. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

// GetByProduct obtiene la receta de un producto (nil si no tiene).
func (r *RecipeRepo) GetByProduct(productID string) (*entity.Recipe, error) {
	query := `
		SELECT id, product_id, created_at, updated_at
		FROM recipes WHERE product_id = $1`
	var rec entity.Recipe
	err := r.q.QueryRow(context.Background(), query, productID).Scan(
		&rec.ID, &rec.ProductID, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return &rec, nil
}

// ListLines lista las líneas de una receta en orden.
func (r *RecipeRepo) ListLines(recipeID string) ([]entity.RecipeLine, error) {
	query := `
		SELECT recipe_id, supply_id, quantity_per_unit, position
		FROM recipe_lines WHERE recipe_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("list recipe lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.RecipeLine
	for rows.Next() {
		var l entity.RecipeLine
		if err := rows.Scan(&l.RecipeID, &l.SupplyID, &l.QuantityPerUnit, &l.Position); err != nil {
			return nil, fmt.Errorf("scan recipe line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// Replace crea la receta si no existe y reemplaza su conjunto de líneas.
func (r *RecipeRepo) Replace(productID string, lines []entity.RecipeLine) (*entity.Recipe, error) {
	ctx := context.Background()
	rec, err := r.GetByProduct(productID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if rec == nil {
		rec = &entity.Recipe{
			ID:        uuid.New().String(),
			ProductID: productID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		query := `
			INSERT INTO recipes (id, product_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4)`
		if _, err := r.q.Exec(ctx, query, rec.ID, rec.ProductID, rec.CreatedAt, rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("insert recipe: %w", err)
		}
	} else {
		rec.UpdatedAt = now
		if _, err := r.q.Exec(ctx, `UPDATE recipes SET updated_at = $2 WHERE id = $1`, rec.ID, rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("update recipe: %w", err)
		}
	}

	if _, err := r.q.Exec(ctx, `DELETE FROM recipe_lines WHERE recipe_id = $1`, rec.ID); err != nil {
		return nil, fmt.Errorf("clear recipe lines: %w", err)
	}
	query := `
		INSERT INTO recipe_lines (recipe_id, supply_id, quantity_per_unit, position)
		VALUES ($1, $2, $3, $4)`
	for _, l := range lines {
		if _, err := r.q.Exec(ctx, query, rec.ID, l.SupplyID, l.QuantityPerUnit, l.Position); err != nil {
			return nil, fmt.Errorf("insert recipe line: %w", err)
		}
	}
	return rec, nil
}

// DeleteByProduct elimina la receta del producto con sus líneas.
func (r *RecipeRepo) DeleteByProduct(productID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM recipes WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

// ListProductIDsUsingSupply consulta inversa para la cascada de costos.
func (r *RecipeRepo) ListProductIDsUsingSupply(supplyID string) ([]string, error) {
	query := `
		SELECT r.product_id
		FROM recipes r
		JOIN recipe_lines l ON l.recipe_id = r.id
		WHERE l.supply_id = $1
		ORDER BY r.product_id`
	rows, err := r.q.Query(context.Background(), query, supplyID)
	if err != nil {
		return nil, fmt.Errorf("list products using supply: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ExistsLineForSupply indica si alguna receta consume el insumo.
func (r *RecipeRepo) ExistsLineForSupply(supplyID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM recipe_lines WHERE supply_id = $1)`,
		supplyID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check recipe line: %w", err)
	}
	return exists, nil
}
