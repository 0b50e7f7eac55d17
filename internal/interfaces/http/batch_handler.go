package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dgallegoc/produccion-api/internal/application/dto"
	"github.com/dgallegoc/produccion-api/internal/application/usecase"
)

// BatchHandler maneja las consultas de lotes (protegido).
type BatchHandler struct {
	uc *usecase.BatchUseCase
}

// NewBatchHandler construye el handler.
func NewBatchHandler(uc *usecase.BatchUseCase) *BatchHandler {
	return &BatchHandler{uc: uc}
}

// ListByProduct godoc
// @Summary      Listar los lotes de un producto
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {array}   dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/batches [get]
func (h *BatchHandler) ListByProduct(c *fiber.Ctx) error {
	items, err := h.uc.ListByProduct(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// ListExpired godoc
// @Summary      Reporte de pérdidas: lotes vencidos con restante positivo
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        at  query  string  false  "Fecha RFC3339 (default ahora)"
// @Success      200  {array}  dto.BatchResponse
// @Router       /api/batches/expired [get]
func (h *BatchHandler) ListExpired(c *fiber.Ctx) error {
	at := time.Now()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "at debe ser RFC3339"})
		}
		at = parsed
	}
	items, err := h.uc.ListExpired(at)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}
