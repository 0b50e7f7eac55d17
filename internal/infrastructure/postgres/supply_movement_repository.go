package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dgallegoc/produccion-api/internal/domain/entity"
	"github.com/dgallegoc/produccion-api/internal/domain/ledger"
	"github.com/dgallegoc/produccion-api/internal/domain/repository"
)

var _ repository.SupplyMovementRepository = (*SupplyMovementRepo)(nil)

// SupplyMovementRepo implementación del puerto SupplyMovementRepository sobre PostgreSQL.
type SupplyMovementRepo struct {
	q Querier
}

// NewSupplyMovementRepository construye el adaptador de persistencia para
// movimientos de insumos. Pasar pool o tx (Querier).
func NewSupplyMovementRepository(q Querier) *SupplyMovementRepo {
	return &SupplyMovementRepo{q: q}
}

// Create persiste movimiento y líneas como una unidad; asigna IDs si vienen vacíos.
func (r *SupplyMovementRepo) Create(m *entity.SupplyMovement, lines []entity.SupplyMovementLine) error {
	ctx := context.Background()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO supply_movements (id, date, description, direction, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, m.ID, m.Date, m.Description, m.Direction, m.CreatedAt); err != nil {
		return fmt.Errorf("insert supply movement: %w", err)
	}

	lineQuery := `
		INSERT INTO supply_movement_lines (id, movement_id, supply_id, quantity, total_cost, assembly_id, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i := range lines {
		if lines[i].ID == "" {
			lines[i].ID = uuid.New().String()
		}
		lines[i].MovementID = m.ID
		l := lines[i]
		if _, err := r.q.Exec(ctx, lineQuery, l.ID, l.MovementID, l.SupplyID, l.Quantity, l.TotalCost, l.AssemblyID, l.Position); err != nil {
			return fmt.Errorf("insert supply movement line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un movimiento con sus líneas (nil si no existe).
func (r *SupplyMovementRepo) GetByID(id string) (*entity.SupplyMovement, []entity.SupplyMovementLine, error) {
	query := `
		SELECT id, date, description, direction, created_at
		FROM supply_movements WHERE id = $1`
	var m entity.SupplyMovement
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.Date, &m.Description, &m.Direction, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("get supply movement: %w", err)
	}
	lines, err := r.ListLines(id)
	if err != nil {
		return nil, nil, err
	}
	return &m, lines, nil
}

// Delete elimina el movimiento; sus líneas caen en cascada.
func (r *SupplyMovementRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM supply_movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete supply movement: %w", err)
	}
	return nil
}

// List lista movimientos por fecha descendente con paginación.
func (r *SupplyMovementRepo) List(limit, offset int) ([]*entity.SupplyMovement, error) {
	query := `
		SELECT id, date, description, direction, created_at
		FROM supply_movements ORDER BY date DESC, id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list supply movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.SupplyMovement
	for rows.Next() {
		var m entity.SupplyMovement
		if err := rows.Scan(&m.ID, &m.Date, &m.Description, &m.Direction, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan supply movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// ListLines lista las líneas de un movimiento en orden.
func (r *SupplyMovementRepo) ListLines(movementID string) ([]entity.SupplyMovementLine, error) {
	query := `
		SELECT id, movement_id, supply_id, quantity, total_cost, assembly_id, position
		FROM supply_movement_lines WHERE movement_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, movementID)
	if err != nil {
		return nil, fmt.Errorf("list supply movement lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.SupplyMovementLine
	for rows.Next() {
		var l entity.SupplyMovementLine
		if err := rows.Scan(&l.ID, &l.MovementID, &l.SupplyID, &l.Quantity, &l.TotalCost, &l.AssemblyID, &l.Position); err != nil {
			return nil, fmt.Errorf("scan supply movement line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// ListEntriesBySupply aplana el libro de un insumo para reproducción.
func (r *SupplyMovementRepo) ListEntriesBySupply(supplyID string) ([]ledger.Entry, error) {
	query := `
		SELECT m.id, m.date, m.created_at, m.direction, l.quantity, l.total_cost
		FROM supply_movement_lines l
		JOIN supply_movements m ON m.id = l.movement_id
		WHERE l.supply_id = $1
		ORDER BY m.date, m.created_at, m.id`
	rows, err := r.q.Query(context.Background(), query, supplyID)
	if err != nil {
		return nil, fmt.Errorf("list supply ledger entries: %w", err)
	}
	defer rows.Close()
	var entries []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.MovementID, &e.Date, &e.CreatedAt, &e.Direction, &e.Quantity, &e.TotalCost); err != nil {
			return nil, fmt.Errorf("scan supply ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// HasMovements indica si el insumo aparece en alguna línea.
func (r *SupplyMovementRepo) HasMovements(supplyID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM supply_movement_lines WHERE supply_id = $1)`,
		supplyID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check supply movements: %w", err)
	}
	return exists, nil
}
