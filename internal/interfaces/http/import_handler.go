package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serviteca/taller-api/internal/application/dto"
	"github.com/serviteca/taller-api/internal/application/workflow"
)

// ImportHandler ciclo de vida HTTP de solicitudes de importación (protegido).
type ImportHandler struct {
	imports *workflow.ImportUseCase
}

// NewImportHandler construye el handler.
func NewImportHandler(imports *workflow.ImportUseCase) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// Create registra una solicitud en PENDING.
func (h *ImportHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateImportRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.imports.Create(c.Context(), workflow.CreateImportInput{
		ResourceID: in.ResourceID,
		Quantity:   in.Quantity,
		UnitPrice:  in.UnitPrice,
		Reason:     in.Reason,
		Notes:      in.Notes,
		Requester:  GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ImportToResponse(req))
}

// Approve godoc
// @Summary      Aprobar solicitud de importación
// @Description  El stock entra en este momento, en la misma transacción que el
//               cambio de estado; completar después no vuelve a sumar.
// @Tags         imports
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                true  "ID de la solicitud"
// @Param        body  body  dto.ReviewRequest  false "notes"
// @Success      200   {object}  dto.ImportResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/imports/{id}/approve [put]
func (h *ImportHandler) Approve(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.ReviewRequest
	_ = c.BodyParser(&in) // notes es opcional al aprobar
	req, err := h.imports.Approve(c.Context(), id, in.Notes, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ImportToResponse(req))
}

// Reject rechaza una solicitud PENDING; la razón es obligatoria.
func (h *ImportHandler) Reject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.ReviewRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.imports.Reject(c.Context(), id, in.Notes, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ImportToResponse(req))
}

// Complete registra los datos de entrega; no toca el stock.
func (h *ImportHandler) Complete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.CompleteImportRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.imports.Complete(c.Context(), workflow.CompleteImportInput{
		ID:            id,
		DeliveryDate:  in.DeliveryDate,
		InvoiceNumber: in.InvoiceNumber,
		Actor:         GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ImportToResponse(req))
}

// Cancel cancela una solicitud no terminal.
func (h *ImportHandler) Cancel(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.ReviewRequest
	_ = c.BodyParser(&in)
	req, err := h.imports.Cancel(c.Context(), id, in.Notes, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ImportToResponse(req))
}

// Get devuelve una solicitud por ID.
func (h *ImportHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	req, err := h.imports.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ImportToResponse(req))
}

// List busca solicitudes con filtros y paginación.
func (h *ImportHandler) List(c *fiber.Ctx) error {
	var pr dto.PageRequest
	if err := c.QueryParser(&pr); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page := pr.ToPage()
	filter := requestFilterFromQuery(c)
	list, total, err := h.imports.List(c.Context(), filter, page)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.ImportResponse, 0, len(list))
	for _, r := range list {
		items = append(items, dto.ImportToResponse(r))
	}
	return c.JSON(fiber.Map{"items": items, "page": dto.NewPageResponse(page, total)})
}

// Stats conteos de solicitudes por estado.
func (h *ImportHandler) Stats(c *fiber.Ctx) error {
	s, err := h.imports.Stats(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.RequestStatsToResponse(s))
}
