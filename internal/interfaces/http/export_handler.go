package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serviteca/taller-api/internal/application/dto"
	"github.com/serviteca/taller-api/internal/application/workflow"
)

// ExportHandler ciclo de vida HTTP de solicitudes de exportación (protegido).
type ExportHandler struct {
	exports *workflow.ExportUseCase
}

// NewExportHandler construye el handler.
func NewExportHandler(exports *workflow.ExportUseCase) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Create registra una solicitud en PENDING.
func (h *ExportHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateExportRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.exports.Create(c.Context(), workflow.CreateExportInput{
		ResourceID: in.ResourceID,
		Quantity:   in.Quantity,
		Reason:     in.Reason,
		Notes:      in.Notes,
		Requester:  GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ExportToResponse(req))
}

// Approve aprueba una solicitud PENDING con verificación informativa de stock.
func (h *ExportHandler) Approve(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.ReviewRequest
	_ = c.BodyParser(&in)
	req, err := h.exports.Approve(c.Context(), id, in.Notes, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ExportToResponse(req))
}

// Reject rechaza una solicitud PENDING; la razón es obligatoria.
func (h *ExportHandler) Reject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.ReviewRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.exports.Reject(c.Context(), id, in.Notes, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ExportToResponse(req))
}

// Issue godoc
// @Summary      Emitir una solicitud de exportación aprobada
// @Description  Re-verifica la disponibilidad bajo bloqueo de fila y descuenta el
//               stock en la misma transacción. Si el stock cayó desde la aprobación
//               responde 409 y la solicitud permanece APPROVED.
// @Tags         exports
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                     true   "ID de la solicitud"
// @Param        body  body  dto.IssueExportRequest  false  "quantity (cero = total solicitado)"
// @Success      200   {object}  dto.ExportResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/exports/{id}/issue [put]
func (h *ExportHandler) Issue(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.IssueExportRequest
	_ = c.BodyParser(&in) // body vacío emite la cantidad solicitada completa
	req, err := h.exports.Issue(c.Context(), id, in.Quantity, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ExportToResponse(req))
}

// Cancel cancela una solicitud no terminal.
func (h *ExportHandler) Cancel(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.ReviewRequest
	_ = c.BodyParser(&in)
	req, err := h.exports.Cancel(c.Context(), id, in.Notes, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ExportToResponse(req))
}

// Get devuelve una solicitud por ID.
func (h *ExportHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	req, err := h.exports.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ExportToResponse(req))
}

// List busca solicitudes con filtros y paginación.
func (h *ExportHandler) List(c *fiber.Ctx) error {
	var pr dto.PageRequest
	if err := c.QueryParser(&pr); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page := pr.ToPage()
	list, total, err := h.exports.List(c.Context(), requestFilterFromQuery(c), page)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.ExportResponse, 0, len(list))
	for _, r := range list {
		items = append(items, dto.ExportToResponse(r))
	}
	return c.JSON(fiber.Map{"items": items, "page": dto.NewPageResponse(page, total)})
}

// Stats conteos de solicitudes por estado.
func (h *ExportHandler) Stats(c *fiber.Ctx) error {
	s, err := h.exports.Stats(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.RequestStatsToResponse(s))
}
