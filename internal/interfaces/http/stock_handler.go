package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serviteca/taller-api/internal/application/dto"
	"github.com/serviteca/taller-api/internal/application/inventory"
	"github.com/serviteca/taller-api/internal/domain/repository"
)

// StockHandler maneja las peticiones HTTP del ledger de existencias (protegido).
type StockHandler struct {
	stock *inventory.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(stock *inventory.StockUseCase) *StockHandler {
	return &StockHandler{stock: stock}
}

// AddStock godoc
// @Summary      Registrar entrada de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MutateStockRequest  true  "resource_id, quantity, reason"
// @Success      200   {object}  dto.LedgerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/add [post]
func (h *StockHandler) AddStock(c *fiber.Ctx) error {
	var in dto.MutateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ledger, err := h.stock.AddStock(c.Context(), inventory.MutationInput{
		ResourceID: in.ResourceID,
		Quantity:   in.Quantity,
		Reason:     in.Reason,
		Actor:      GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.LedgerToResponse(ledger))
}

// RemoveStock godoc
// @Summary      Registrar salida de stock
// @Description  Falla con 409 INSUFFICIENT_STOCK si la cantidad disponible no alcanza;
//               en ese caso el ledger no cambia y no se escribe transacción.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MutateStockRequest  true  "resource_id, quantity, reason"
// @Success      200   {object}  dto.LedgerResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/remove [post]
func (h *StockHandler) RemoveStock(c *fiber.Ctx) error {
	var in dto.MutateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ok, ledger, err := h.stock.RemoveStock(c.Context(), inventory.MutationInput{
		ResourceID: in.ResourceID,
		Quantity:   in.Quantity,
		Reason:     in.Reason,
		Actor:      GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	}
	return c.JSON(dto.LedgerToResponse(ledger))
}

// AdjustStock fija la cantidad en un valor absoluto (corrección de inventario).
func (h *StockHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ledger, err := h.stock.AdjustStock(c.Context(), in.ResourceID, in.NewQuantity, in.Reason, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.LedgerToResponse(ledger))
}

// UpdateThresholds actualización parcial de umbrales del recurso.
func (h *StockHandler) UpdateThresholds(c *fiber.Ctx) error {
	resourceID, err := parseID(c, "resourceId")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.ThresholdsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ledger, err := h.stock.UpdateThresholds(c.Context(), inventory.ThresholdInput{
		ResourceID:   resourceID,
		Minimum:      in.Minimum,
		Maximum:      in.Maximum,
		ReorderPoint: in.ReorderPoint,
		Actor:        GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.LedgerToResponse(ledger))
}

// Get devuelve el ledger de un recurso.
func (h *StockHandler) Get(c *fiber.Ctx) error {
	resourceID, err := parseID(c, "resourceId")
	if err != nil {
		return respondError(c, err)
	}
	ledger, err := h.stock.GetByResource(c.Context(), resourceID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.LedgerToResponse(ledger))
}

// Search lista ledgers con filtros de palabra clave, stock bajo y agotado.
func (h *StockHandler) Search(c *fiber.Ctx) error {
	var pr dto.PageRequest
	if err := c.QueryParser(&pr); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page := pr.ToPage()
	filter := repository.StockLedgerSearch{
		Keyword:    c.Query("keyword"),
		LowStock:   c.QueryBool("low_stock"),
		OutOfStock: c.QueryBool("out_of_stock"),
	}
	list, total, err := h.stock.Search(c.Context(), filter, page)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.LedgerResponse, 0, len(list))
	for _, l := range list {
		items = append(items, dto.LedgerToResponse(l))
	}
	return c.JSON(fiber.Map{"items": items, "page": dto.NewPageResponse(page, total)})
}
