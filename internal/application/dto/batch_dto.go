package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dgallegoc/produccion-api/internal/domain/entity"
)

// BatchResponse un lote derivado: agrupación de líneas de producto por
// etiqueta. Expired se evalúa contra la fecha de la consulta.
type BatchResponse struct {
	ProductID      string          `json:"product_id"`
	Label          string          `json:"label"`
	Entered        decimal.Decimal `json:"entered"`
	Removed        decimal.Decimal `json:"removed"`
	Remaining      decimal.Decimal `json:"remaining"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
	EnteredAt      time.Time       `json:"entered_at"`
	Expired        bool            `json:"expired"`
}

// ToBatchResponse convierte el lote derivado al DTO.
func ToBatchResponse(b entity.Batch, at time.Time) BatchResponse {
	return BatchResponse{
		ProductID:      b.ProductID,
		Label:          b.Label,
		Entered:        b.Entered,
		Removed:        b.Removed,
		Remaining:      b.Remaining,
		ExpirationDate: b.ExpirationDate,
		EnteredAt:      b.EnteredAt,
		Expired:        b.Expired(at),
	}
}
