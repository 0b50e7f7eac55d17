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

var _ repository.ProductMovementRepository = (*ProductMovementRepo)(nil)

// ProductMovementRepo implementación del puerto ProductMovementRepository sobre PostgreSQL.
type ProductMovementRepo struct {
	q Querier
}

// NewProductMovementRepository construye el adaptador de persistencia para
// movimientos de productos. Pasar pool o tx (Querier).
func NewProductMovementRepository(q Querier) *ProductMovementRepo {
	return &ProductMovementRepo{q: q}
}

// Create persiste movimiento y líneas como una unidad; asigna IDs si vienen vacíos.
func (r *ProductMovementRepo) Create(m *entity.ProductMovement, lines []entity.ProductMovementLine) error {
	ctx := context.Background()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO product_movements (id, date, description, direction, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, m.ID, m.Date, m.Description, m.Direction, m.CreatedAt); err != nil {
		return fmt.Errorf("insert product movement: %w", err)
	}

	lineQuery := `
		INSERT INTO product_movement_lines (id, movement_id, product_id, quantity, sale_unit_price, expiration_date, batch_label, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i := range lines {
		if lines[i].ID == "" {
			lines[i].ID = uuid.New().String()
		}
		lines[i].MovementID = m.ID
		l := lines[i]
		if _, err := r.q.Exec(ctx, lineQuery, l.ID, l.MovementID, l.ProductID, l.Quantity, l.SaleUnitPrice, l.ExpirationDate, l.BatchLabel, l.Position); err != nil {
			return fmt.Errorf("insert product movement line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un movimiento con sus líneas (nil si no existe).
func (r *ProductMovementRepo) GetByID(id string) (*entity.ProductMovement, []entity.ProductMovementLine, error) {
	query := `
		SELECT id, date, description, direction, created_at
		FROM product_movements WHERE id = $1`
	var m entity.ProductMovement
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.Date, &m.Description, &m.Direction, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("get product movement: %w", err)
	}
	lines, err := r.ListLines(id)
	if err != nil {
		return nil, nil, err
	}
	return &m, lines, nil
}

// Delete elimina el movimiento; sus líneas caen en cascada.
func (r *ProductMovementRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM product_movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product movement: %w", err)
	}
	return nil
}

// List lista movimientos por fecha descendente con paginación.
func (r *ProductMovementRepo) List(limit, offset int) ([]*entity.ProductMovement, error) {
	query := `
		SELECT id, date, description, direction, created_at
		FROM product_movements ORDER BY date DESC, id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list product movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductMovement
	for rows.Next() {
		var m entity.ProductMovement
		if err := rows.Scan(&m.ID, &m.Date, &m.Description, &m.Direction, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// ListLines lista las líneas de un movimiento en orden.
func (r *ProductMovementRepo) ListLines(movementID string) ([]entity.ProductMovementLine, error) {
	query := `
		SELECT id, movement_id, product_id, quantity, sale_unit_price, expiration_date, batch_label, position
		FROM product_movement_lines WHERE movement_id = $1 ORDER BY position`
	rows, err := r.q.Query(context.Background(), query, movementID)
	if err != nil {
		return nil, fmt.Errorf("list product movement lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.ProductMovementLine
	for rows.Next() {
		var l entity.ProductMovementLine
		if err := rows.Scan(&l.ID, &l.MovementID, &l.ProductID, &l.Quantity, &l.SaleUnitPrice, &l.ExpirationDate, &l.BatchLabel, &l.Position); err != nil {
			return nil, fmt.Errorf("scan product movement line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// UpdateBatchLabel fija la etiqueta de lote en todas las líneas del movimiento.
func (r *ProductMovementRepo) UpdateBatchLabel(movementID, label string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE product_movement_lines SET batch_label = $2 WHERE movement_id = $1`,
		movementID, label,
	)
	if err != nil {
		return fmt.Errorf("update batch label: %w", err)
	}
	return nil
}

// ListEntriesByProduct aplana el libro de un producto para reproducción.
func (r *ProductMovementRepo) ListEntriesByProduct(productID string) ([]ledger.Entry, error) {
	query := `
		SELECT m.id, m.date, m.created_at, m.direction, l.quantity
		FROM product_movement_lines l
		JOIN product_movements m ON m.id = l.movement_id
		WHERE l.product_id = $1
		ORDER BY m.date, m.created_at, m.id`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list product ledger entries: %w", err)
	}
	defer rows.Close()
	var entries []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.MovementID, &e.Date, &e.CreatedAt, &e.Direction, &e.Quantity); err != nil {
			return nil, fmt.Errorf("scan product ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// HasMovements indica si el producto aparece en alguna línea.
func (r *ProductMovementRepo) HasMovements(productID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM product_movement_lines WHERE product_id = $1)`,
		productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product movements: %w", err)
	}
	return exists, nil
}

// batchQuery agrupa líneas etiquetadas por lote: entradas suman, salidas
// restan, la fecha de vencimiento y la fecha de ingreso vienen de la entrada.
const batchQuery = `
	SELECT l.product_id, l.batch_label,
		COALESCE(SUM(l.quantity) FILTER (WHERE m.direction = 'IN'), 0) AS entered,
		COALESCE(SUM(l.quantity) FILTER (WHERE m.direction = 'OUT'), 0) AS removed,
		MAX(l.expiration_date) FILTER (WHERE m.direction = 'IN') AS expiration_date,
		MIN(m.date) FILTER (WHERE m.direction = 'IN') AS entered_at
	FROM product_movement_lines l
	JOIN product_movements m ON m.id = l.movement_id
	WHERE l.batch_label <> ''`

// ListBatches agrupa las líneas de un producto por etiqueta de lote.
func (r *ProductMovementRepo) ListBatches(productID string) ([]entity.Batch, error) {
	query := batchQuery + `
		AND l.product_id = $1
	GROUP BY l.product_id, l.batch_label
	ORDER BY l.batch_label`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	return scanBatches(rows)
}

// GetBatch obtiene un lote por producto y etiqueta (nil si no existe).
func (r *ProductMovementRepo) GetBatch(productID, label string) (*entity.Batch, error) {
	query := batchQuery + `
		AND l.product_id = $1 AND l.batch_label = $2
	GROUP BY l.product_id, l.batch_label`
	rows, err := r.q.Query(context.Background(), query, productID, label)
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	defer rows.Close()
	batches, err := scanBatches(rows)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, nil
	}
	return &batches[0], nil
}

// ListExpiredBatches lotes vencidos a la fecha con cantidad restante positiva.
func (r *ProductMovementRepo) ListExpiredBatches(at time.Time) ([]entity.Batch, error) {
	query := batchQuery + `
	GROUP BY l.product_id, l.batch_label
	HAVING MAX(l.expiration_date) FILTER (WHERE m.direction = 'IN') < $1
		AND COALESCE(SUM(l.quantity) FILTER (WHERE m.direction = 'IN'), 0)
			- COALESCE(SUM(l.quantity) FILTER (WHERE m.direction = 'OUT'), 0) > 0
	ORDER BY l.batch_label`
	rows, err := r.q.Query(context.Background(), query, at)
	if err != nil {
		return nil, fmt.Errorf("list expired batches: %w", err)
	}
	defer rows.Close()
	return scanBatches(rows)
}

func scanBatches(rows pgx.Rows) ([]entity.Batch, error) {
	var out []entity.Batch
	for rows.Next() {
		var b entity.Batch
		var enteredAt *time.Time
		if err := rows.Scan(&b.ProductID, &b.Label, &b.Entered, &b.Removed, &b.ExpirationDate, &enteredAt); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		if enteredAt != nil {
			b.EnteredAt = *enteredAt
		}
		b.Remaining = b.Entered.Sub(b.Removed)
		out = append(out, b)
	}
	return out, rows.Err()
}
