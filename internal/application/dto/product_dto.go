package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dgallegoc/produccion-api/internal/domain/entity"
)

// CreateProductRequest alta de producto. Stock y costo de inversión inician
// en cero; la receta se define aparte.
type CreateProductRequest struct {
	Name      string          `json:"name"`
	SalePrice decimal.Decimal `json:"sale_price"`
}

// UpdateProductRequest edición parcial de producto.
type UpdateProductRequest struct {
	Name      *string          `json:"name"`
	SalePrice *decimal.Decimal `json:"sale_price"`
}

// RecipeLineRequest una línea del conjunto de la receta.
type RecipeLineRequest struct {
	SupplyID        string          `json:"supply_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// RecipeLineResponse línea de receta en respuestas.
type RecipeLineResponse struct {
	SupplyID        string          `json:"supply_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// ProductResponse representación de un producto; Recipe solo si tiene receta.
type ProductResponse struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	CurrentStock   decimal.Decimal      `json:"current_stock"`
	InvestmentCost decimal.Decimal      `json:"investment_cost"`
	SalePrice      decimal.Decimal      `json:"sale_price"`
	Recipe         []RecipeLineResponse `json:"recipe,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// ProductListResponse listado paginado de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ToProductResponse convierte la entidad (y su receta, si tiene) al DTO.
func ToProductResponse(p *entity.Product, recipeLines []entity.RecipeLine) *ProductResponse {
	if p == nil {
		return nil
	}
	out := &ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		CurrentStock:   p.CurrentStock,
		InvestmentCost: p.InvestmentCost,
		SalePrice:      p.SalePrice,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	for _, l := range recipeLines {
		out.Recipe = append(out.Recipe, RecipeLineResponse{
			SupplyID:        l.SupplyID,
			QuantityPerUnit: l.QuantityPerUnit,
		})
	}
	return out
}
