package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dgallegoc/produccion-api/internal/domain/entity"
)

// SupplyMovementLineRequest línea de movimiento de insumo. TotalCost es
// obligatorio en entradas y se ignora en salidas.
type SupplyMovementLineRequest struct {
	SupplyID  string          `json:"supply_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// CreateSupplyMovementRequest registro de un movimiento de insumos.
type CreateSupplyMovementRequest struct {
	Date        time.Time                   `json:"date"`
	Description string                      `json:"description"`
	Direction   string                      `json:"direction"` // IN | OUT
	Lines       []SupplyMovementLineRequest `json:"lines"`
}

// SupplyMovementLineResponse línea de movimiento de insumo en respuestas.
type SupplyMovementLineResponse struct {
	SupplyID   string          `json:"supply_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	AssemblyID string          `json:"assembly_id,omitempty"`
}

// SupplyMovementResponse movimiento de insumos con sus líneas.
type SupplyMovementResponse struct {
	ID          string                       `json:"id"`
	Date        time.Time                    `json:"date"`
	Description string                       `json:"description"`
	Direction   string                       `json:"direction"`
	Lines       []SupplyMovementLineResponse `json:"lines,omitempty"`
	CreatedAt   time.Time                    `json:"created_at"`
}

// ProductMovementLineRequest línea de movimiento de producto. SaleUnitPrice
// es obligatorio en salidas; ExpirationDate opcional y solo en entradas.
type ProductMovementLineRequest struct {
	ProductID      string          `json:"product_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	SaleUnitPrice  decimal.Decimal `json:"sale_unit_price"`
	ExpirationDate *time.Time      `json:"expiration_date"`
}

// CreateProductMovementRequest registro de un movimiento de productos.
type CreateProductMovementRequest struct {
	Date        time.Time                    `json:"date"`
	Description string                       `json:"description"`
	Direction   string                       `json:"direction"` // IN | OUT
	Lines       []ProductMovementLineRequest `json:"lines"`
}

// ProductMovementLineResponse línea de movimiento de producto en respuestas.
type ProductMovementLineResponse struct {
	ProductID      string          `json:"product_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	SaleUnitPrice  decimal.Decimal `json:"sale_unit_price"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
	BatchLabel     string          `json:"batch_label,omitempty"`
}

// ProductMovementResponse movimiento de productos con sus líneas.
type ProductMovementResponse struct {
	ID          string                        `json:"id"`
	Date        time.Time                     `json:"date"`
	Description string                        `json:"description"`
	Direction   string                        `json:"direction"`
	Lines       []ProductMovementLineResponse `json:"lines,omitempty"`
	CreatedAt   time.Time                     `json:"created_at"`
}

// SellFromBatchRequest venta acotada a un lote concreto.
type SellFromBatchRequest struct {
	ProductID   string          `json:"product_id"`
	BatchLabel  string          `json:"batch_label"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
}

// AssembleRequest ensamblaje de un insumo compuesto.
type AssembleRequest struct {
	Quantity    decimal.Decimal `json:"quantity"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
}

// ToSupplyMovementResponse convierte movimiento y líneas al DTO.
func ToSupplyMovementResponse(m *entity.SupplyMovement, lines []entity.SupplyMovementLine) *SupplyMovementResponse {
	if m == nil {
		return nil
	}
	out := &SupplyMovementResponse{
		ID:          m.ID,
		Date:        m.Date,
		Description: m.Description,
		Direction:   m.Direction,
		CreatedAt:   m.CreatedAt,
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, SupplyMovementLineResponse{
			SupplyID:   l.SupplyID,
			Quantity:   l.Quantity,
			TotalCost:  l.TotalCost,
			AssemblyID: l.AssemblyID,
		})
	}
	return out
}

// ToProductMovementResponse convierte movimiento y líneas al DTO.
func ToProductMovementResponse(m *entity.ProductMovement, lines []entity.ProductMovementLine) *ProductMovementResponse {
	if m == nil {
		return nil
	}
	out := &ProductMovementResponse{
		ID:          m.ID,
		Date:        m.Date,
		Description: m.Description,
		Direction:   m.Direction,
		CreatedAt:   m.CreatedAt,
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, ProductMovementLineResponse{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			SaleUnitPrice:  l.SaleUnitPrice,
			ExpirationDate: l.ExpirationDate,
			BatchLabel:     l.BatchLabel,
		})
	}
	return out
}
