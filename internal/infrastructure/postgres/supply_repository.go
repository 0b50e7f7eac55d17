package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dgallegoc/produccion-api/internal/domain"
	"github.com/dgallegoc/produccion-api/internal/domain/entity"
	"github.com/dgallegoc/produccion-api/internal/domain/repository"
)

var _ repository.SupplyRepository = (*SupplyRepo)(nil)

// SupplyRepo implementación del puerto SupplyRepository sobre PostgreSQL (usable con pool o tx).
type SupplyRepo struct {
	q Querier
}

// NewSupplyRepository construye el adaptador de persistencia para insumos. Pasar pool o tx (Querier).
func NewSupplyRepository(q Querier) *SupplyRepo {
	return &SupplyRepo{q: q}
}

// Create persiste un insumo nuevo; nombre duplicado retorna ErrDuplicate.
func (r *SupplyRepo) Create(s *entity.Supply) error {
	query := `
		INSERT INTO supplies (id, name, normalized_name, unit, kind, current_stock, unit_cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.Name, entity.NormalizeName(s.Name), s.Unit, s.Kind,
		s.CurrentStock, s.UnitCost, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert supply: %w", err)
	}
	return nil
}

// GetByID obtiene un insumo por ID (nil si no existe).
func (r *SupplyRepo) GetByID(id string) (*entity.Supply, error) {
	return r.get(`WHERE id = $1`, id)
}

// GetByNormalizedName busca por nombre normalizado.
func (r *SupplyRepo) GetByNormalizedName(normalized string) (*entity.Supply, error) {
	return r.get(`WHERE normalized_name = $1`, normalized)
}

// GetForUpdate bloquea la fila para update. Usar dentro de una transacción.
func (r *SupplyRepo) GetForUpdate(id string) (*entity.Supply, error) {
	return r.get(`WHERE id = $1 FOR UPDATE`, id)
}

func (r *SupplyRepo) get(where string, arg any) (*entity.Supply, error) {
	query := `
		SELECT id, name, unit, kind, current_stock, unit_cost, created_at, updated_at
		FROM supplies ` + where
	var s entity.Supply
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&s.ID, &s.Name, &s.Unit, &s.Kind, &s.CurrentStock, &s.UnitCost, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supply: %w", err)
	}
	return &s, nil
}

// List lista insumos ordenados por nombre con paginación.
func (r *SupplyRepo) List(limit, offset int) ([]*entity.Supply, error) {
	query := `
		SELECT id, name, unit, kind, current_stock, unit_cost, created_at, updated_at
		FROM supplies ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list supplies: %w", err)
	}
	defer rows.Close()
	var list []*entity.Supply
	for rows.Next() {
		var s entity.Supply
		if err := rows.Scan(&s.ID, &s.Name, &s.Unit, &s.Kind, &s.CurrentStock, &s.UnitCost, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan supply: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Update actualiza un insumo existente. Stock y costo se mutan solo vía UpdateStockAndCost.
func (r *SupplyRepo) Update(s *entity.Supply) error {
	query := `
		UPDATE supplies SET name = $2, normalized_name = $3, unit = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.Name, entity.NormalizeName(s.Name), s.Unit, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update supply: %w", err)
	}
	return nil
}

// UpdateStockAndCost actualiza los campos materializados por el motor de movimientos.
func (r *SupplyRepo) UpdateStockAndCost(id string, stock, cost decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE supplies SET current_stock = $2, unit_cost = $3, updated_at = now() WHERE id = $1`,
		id, stock, cost,
	)
	if err != nil {
		return fmt.Errorf("update supply stock: %w", err)
	}
	return nil
}

// Delete elimina el insumo; sus vínculos de composición caen en cascada.
func (r *SupplyRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM supplies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete supply: %w", err)
	}
	return nil
}

// ListLinks lista los vínculos de composición de un compuesto en orden.
func (r *SupplyRepo) ListLinks(supplyID string) ([]entity.CompositeSupplyLink, error) {
	query := `
		SELECT supply_id, base_supply_id, quantity_per_unit, position
		FROM composite_supply_links WHERE supply_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, supplyID)
	if err != nil {
		return nil, fmt.Errorf("list composite links: %w", err)
	}
	defer rows.Close()
	var links []entity.CompositeSupplyLink
	for rows.Next() {
		var l entity.CompositeSupplyLink
		if err := rows.Scan(&l.SupplyID, &l.BaseSupplyID, &l.QuantityPerUnit, &l.Position); err != nil {
			return nil, fmt.Errorf("scan composite link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// ReplaceLinks reemplaza el conjunto completo de vínculos del compuesto.
func (r *SupplyRepo) ReplaceLinks(supplyID string, links []entity.CompositeSupplyLink) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx, `DELETE FROM composite_supply_links WHERE supply_id = $1`, supplyID); err != nil {
		return fmt.Errorf("clear composite links: %w", err)
	}
	query := `
		INSERT INTO composite_supply_links (supply_id, base_supply_id, quantity_per_unit, position)
		VALUES ($1, $2, $3, $4)`
	for _, l := range links {
		if _, err := r.q.Exec(ctx, query, supplyID, l.BaseSupplyID, l.QuantityPerUnit, l.Position); err != nil {
			return fmt.Errorf("insert composite link: %w", err)
		}
	}
	return nil
}

// ExistsLinkToBase indica si algún compuesto consume el insumo base dado.
func (r *SupplyRepo) ExistsLinkToBase(baseSupplyID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM composite_supply_links WHERE base_supply_id = $1)`,
		baseSupplyID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check composite link: %w", err)
	}
	return exists, nil
}
