package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dgallegoc/produccion-api/internal/domain/entity"
)

// CreateSupplyRequest alta de insumo. Stock y costo inician en cero.
type CreateSupplyRequest struct {
	Name string `json:"name"`
	Unit string `json:"unit"` // GRAMS | MILLILITERS | UNITS
	Kind string `json:"kind"` // BASE | COMPOSITE
}

// UpdateSupplyRequest edición parcial de insumo (el tipo es inmutable).
type UpdateSupplyRequest struct {
	Name *string `json:"name"`
	Unit *string `json:"unit"`
}

// CompositeLinkRequest una línea del conjunto de vínculos de un compuesto.
type CompositeLinkRequest struct {
	BaseSupplyID    string          `json:"base_supply_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// CompositeLinkResponse vínculo de composición en respuestas.
type CompositeLinkResponse struct {
	BaseSupplyID    string          `json:"base_supply_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// SupplyResponse representación de un insumo; Links solo en compuestos.
type SupplyResponse struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Unit         string                  `json:"unit"`
	Kind         string                  `json:"kind"`
	CurrentStock decimal.Decimal         `json:"current_stock"`
	UnitCost     decimal.Decimal         `json:"unit_cost"`
	Links        []CompositeLinkResponse `json:"links,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// SupplyListResponse listado paginado de insumos.
type SupplyListResponse struct {
	Items []SupplyResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// StockAsOfResponse saldo de un insumo a una fecha (reproducción del libro).
type StockAsOfResponse struct {
	SupplyID string          `json:"supply_id"`
	At       time.Time       `json:"at"`
	Stock    decimal.Decimal `json:"stock"`
}

// ToSupplyResponse convierte la entidad (y sus vínculos, si aplica) al DTO.
func ToSupplyResponse(s *entity.Supply, links []entity.CompositeSupplyLink) *SupplyResponse {
	if s == nil {
		return nil
	}
	out := &SupplyResponse{
		ID:           s.ID,
		Name:         s.Name,
		Unit:         s.Unit,
		Kind:         s.Kind,
		CurrentStock: s.CurrentStock,
		UnitCost:     s.UnitCost,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	for _, l := range links {
		out.Links = append(out.Links, CompositeLinkResponse{
			BaseSupplyID:    l.BaseSupplyID,
			QuantityPerUnit: l.QuantityPerUnit,
		})
	}
	return out
}
