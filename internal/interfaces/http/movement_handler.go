package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dgallegoc/produccion-api/internal/application/dto"
	appledger "github.com/dgallegoc/produccion-api/internal/application/ledger"
)

// MovementHandler maneja las peticiones HTTP de movimientos de insumos y
// productos, ventas por lote y consultas de saldo a una fecha (protegido).
type MovementHandler struct {
	supplyUC  *appledger.SupplyMovementUseCase
	productUC *appledger.ProductMovementUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(supplyUC *appledger.SupplyMovementUseCase, productUC *appledger.ProductMovementUseCase) *MovementHandler {
	return &MovementHandler{supplyUC: supplyUC, productUC: productUC}
}

// CreateSupplyMovement godoc
// @Summary      Registrar movimiento de insumos
// @Description  Entradas (IN) fijan el costo unitario (total/cantidad) y
//	propagan la cascada de costos; salidas (OUT) verifican suficiencia.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSupplyMovementRequest  true  "date, direction, lines"
// @Success      201   {object}  dto.SupplyMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/supply-movements [post]
func (h *MovementHandler) CreateSupplyMovement(c *fiber.Ctx) error {
	var in dto.CreateSupplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := appledger.SupplyMovementInput{
		Date:        in.Date,
		Description: in.Description,
		Direction:   in.Direction,
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, appledger.SupplyMovementLineInput{
			SupplyID:  l.SupplyID,
			Quantity:  l.Quantity,
			TotalCost: l.TotalCost,
		})
	}
	movement, err := h.supplyUC.Create(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	m, lines, err := h.supplyUC.GetByID(movement.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToSupplyMovementResponse(m, lines))
}

// ListSupplyMovements godoc
// @Summary      Listar movimientos de insumos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Tamaño de página (default 20)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {array}  dto.SupplyMovementResponse
// @Router       /api/supply-movements [get]
func (h *MovementHandler) ListSupplyMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválido"})
	}
	page.DefaultPage()
	movements, err := h.supplyUC.List(page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.SupplyMovementResponse, 0, len(movements))
	for _, m := range movements {
		items = append(items, *dto.ToSupplyMovementResponse(m, nil))
	}
	return c.JSON(items)
}

// GetSupplyMovement godoc
// @Summary      Obtener movimiento de insumos con sus líneas
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.SupplyMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/supply-movements/{id} [get]
func (h *MovementHandler) GetSupplyMovement(c *fiber.Ctx) error {
	m, lines, err := h.supplyUC.GetByID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if m == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "movimiento no encontrado"})
	}
	return c.JSON(dto.ToSupplyMovementResponse(m, lines))
}

// DeleteSupplyMovement godoc
// @Summary      Eliminar movimiento de insumos revirtiendo sus efectos
// @Tags         movements
// @Security     Bearer
// @Param        id  path  string  true  "ID del movimiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/supply-movements/{id} [delete]
func (h *MovementHandler) DeleteSupplyMovement(c *fiber.Ctx) error {
	if err := h.supplyUC.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SupplyStockAsOf godoc
// @Summary      Saldo de un insumo a una fecha (reproducción del libro)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id  path   string  true   "ID del insumo"
// @Param        at  query  string  false  "Fecha RFC3339 (default ahora)"
// @Success      200  {object}  dto.StockAsOfResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/supplies/{id}/stock [get]
func (h *MovementHandler) SupplyStockAsOf(c *fiber.Ctx) error {
	at := time.Now()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "at debe ser RFC3339"})
		}
		at = parsed
	}
	id := c.Params("id")
	stock, err := h.supplyUC.StockAsOf(id, at)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StockAsOfResponse{SupplyID: id, At: at, Stock: stock})
}

// CreateProductMovement godoc
// @Summary      Registrar movimiento de productos
// @Description  Las producciones (IN) consumen los insumos de la receta y
//	etiquetan sus líneas con el lote derivado; las ventas (OUT) fijan el
//	precio de venta vigente.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductMovementRequest  true  "date, direction, lines"
// @Success      201   {object}  dto.ProductMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/product-movements [post]
func (h *MovementHandler) CreateProductMovement(c *fiber.Ctx) error {
	var in dto.CreateProductMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := appledger.ProductMovementInput{
		Date:        in.Date,
		Description: in.Description,
		Direction:   in.Direction,
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, appledger.ProductMovementLineInput{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			SaleUnitPrice:  l.SaleUnitPrice,
			ExpirationDate: l.ExpirationDate,
		})
	}
	movement, err := h.productUC.Create(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	m, lines, err := h.productUC.GetByID(movement.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToProductMovementResponse(m, lines))
}

// ListProductMovements godoc
// @Summary      Listar movimientos de productos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Tamaño de página (default 20)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {array}  dto.ProductMovementResponse
// @Router       /api/product-movements [get]
func (h *MovementHandler) ListProductMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválido"})
	}
	page.DefaultPage()
	movements, err := h.productUC.List(page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.ProductMovementResponse, 0, len(movements))
	for _, m := range movements {
		items = append(items, *dto.ToProductMovementResponse(m, nil))
	}
	return c.JSON(items)
}

// GetProductMovement godoc
// @Summary      Obtener movimiento de productos con sus líneas
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.ProductMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/product-movements/{id} [get]
func (h *MovementHandler) GetProductMovement(c *fiber.Ctx) error {
	m, lines, err := h.productUC.GetByID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if m == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "movimiento no encontrado"})
	}
	return c.JSON(dto.ToProductMovementResponse(m, lines))
}

// DeleteProductMovement godoc
// @Summary      Eliminar movimiento de productos revirtiendo sus efectos
// @Description  Revertir una producción restaura los insumos consumidos. El
//	precio de venta vigente no se restaura al revertir una venta.
// @Tags         movements
// @Security     Bearer
// @Param        id  path  string  true  "ID del movimiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/product-movements/{id} [delete]
func (h *MovementHandler) DeleteProductMovement(c *fiber.Ctx) error {
	if err := h.productUC.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SellFromBatch godoc
// @Summary      Registrar venta acotada a un lote
// @Description  La suficiencia se verifica solo contra el restante del lote
//	indicado; la línea conserva la etiqueta y copia el vencimiento del lote.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SellFromBatchRequest  true  "product_id, batch_label, quantity, unit_price, date"
// @Success      201   {object}  dto.ProductMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/product-movements/sales [post]
func (h *MovementHandler) SellFromBatch(c *fiber.Ctx) error {
	var in dto.SellFromBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movement, err := h.productUC.SellFromBatch(c.Context(), appledger.SellFromBatchInput{
		ProductID:   in.ProductID,
		BatchLabel:  in.BatchLabel,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Date:        in.Date,
		Description: in.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	m, lines, err := h.productUC.GetByID(movement.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToProductMovementResponse(m, lines))
}
