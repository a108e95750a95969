package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/serviteca/taller-api/internal/application/dto"
	"github.com/serviteca/taller-api/internal/application/inventory"
	"github.com/serviteca/taller-api/internal/domain/repository"
)

// TransactionHandler consultas de solo lectura sobre el log de auditoría (protegido).
type TransactionHandler struct {
	queries *inventory.TransactionQueryUseCase
	ledgers repository.StockLedgerRepository
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(queries *inventory.TransactionQueryUseCase, ledgers repository.StockLedgerRepository) *TransactionHandler {
	return &TransactionHandler{queries: queries, ledgers: ledgers}
}

// List godoc
// @Summary      Consultar el log de transacciones
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        resource_id     query  int     false  "Filtrar por recurso"
// @Param        type            query  string  false  "IMPORT, EXPORT o ADJUSTMENT"
// @Param        reference_type  query  string  false  "IMPORT_REQUEST, EXPORT_REQUEST, ADJUSTMENT, TASK_EXPORT"
// @Param        from            query  string  false  "Fecha inicial (RFC3339)"
// @Param        to              query  string  false  "Fecha final (RFC3339)"
// @Param        keyword         query  string  false  "Busca en número y razón"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	var pr dto.PageRequest
	if err := c.QueryParser(&pr); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page := pr.ToPage()

	filter := repository.TransactionFilter{
		Type:          c.Query("type"),
		ReferenceType: c.Query("reference_type"),
		Keyword:       c.Query("keyword"),
	}
	if v := c.QueryInt("resource_id"); v > 0 {
		id := int64(v)
		filter.ResourceID = &id
	}
	if v := c.QueryInt("reference_id"); v > 0 {
		id := int64(v)
		filter.ReferenceID = &id
	}
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from debe ser RFC3339"})
		}
		filter.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to debe ser RFC3339"})
		}
		filter.To = &t
	}

	list, total, err := h.queries.List(c.Context(), filter, page)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.TransactionResponse, 0, len(list))
	for _, t := range list {
		items = append(items, dto.TransactionToResponse(t))
	}
	return c.JSON(fiber.Map{"items": items, "page": dto.NewPageResponse(page, total)})
}

// Get devuelve una transacción por ID.
func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	tx, err := h.queries.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TransactionToResponse(tx))
}

// Stats agregados del log calculados por agregación SQL.
func (h *TransactionHandler) Stats(c *fiber.Ctx) error {
	s, err := h.queries.Stats(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TransactionStatsResponse{
		TotalCount:      s.TotalCount,
		ImportCount:     s.ImportCount,
		ExportCount:     s.ExportCount,
		AdjustmentCount: s.AdjustmentCount,
		TotalImported:   s.TotalImported,
		TotalExported:   s.TotalExported,
	})
}

// Verify reconstruye la cantidad de un recurso por replay del log y la compara
// contra el ledger. Herramienta de auditoría para operadores.
func (h *TransactionHandler) Verify(c *fiber.Ctx) error {
	resourceID, err := parseID(c, "resourceId")
	if err != nil {
		return respondError(c, err)
	}
	report, err := h.queries.VerifyLedger(c.Context(), h.ledgers, resourceID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"resource_id":       report.ResourceID,
		"entry_count":       report.EntryCount,
		"replayed_quantity": report.ReplayedQuantity,
		"ledger_quantity":   report.LedgerQuantity,
		"consistent":        report.Consistent,
	})
}
