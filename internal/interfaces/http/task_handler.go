package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serviteca/taller-api/internal/application/dto"
	"github.com/serviteca/taller-api/internal/application/taskflow"
)

// TaskHandler ciclo de vida HTTP de tareas de mantenimiento (protegido).
type TaskHandler struct {
	tasks *taskflow.TaskUseCase
}

// NewTaskHandler construye el handler.
func NewTaskHandler(tasks *taskflow.TaskUseCase) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create registra una tarea en PENDING con su entrada inicial de historial.
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTaskRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	task, err := h.tasks.Create(c.Context(), taskflow.CreateTaskInput{
		Title:            in.Title,
		Description:      in.Description,
		ServiceRequestID: in.ServiceRequestID,
		CreatedBy:        GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TaskToResponse(task, nil))
}

// Assign asigna la tarea a un técnico con fecha programada.
func (h *TaskHandler) Assign(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.AssignTaskRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	task, err := h.tasks.Assign(c.Context(), id, in.TechnicianID, in.ScheduledDate, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TaskToResponse(task, nil))
}

// Accept el técnico asignado acepta la tarea.
func (h *TaskHandler) Accept(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.TaskActionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	task, err := h.tasks.Accept(c.Context(), id, in.TechnicianID, in.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TaskToResponse(task, nil))
}

// Reject godoc
// @Summary      Rechazar una tarea asignada
// @Description  Solo el técnico asignado puede rechazar y la razón es obligatoria.
//               El rechazo es terminal; reasignar requiere crear otra tarea.
// @Tags         tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                    true  "ID de la tarea"
// @Param        body  body  dto.TaskActionRequest  true  "technician_id, reason"
// @Success      200   {object}  dto.TaskResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/tasks/{id}/reject [put]
func (h *TaskHandler) Reject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.TaskActionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	task, err := h.tasks.Reject(c.Context(), id, in.TechnicianID, in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TaskToResponse(task, nil))
}

// Start el técnico asignado inicia el trabajo.
func (h *TaskHandler) Start(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.TaskActionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	task, err := h.tasks.Start(c.Context(), id, in.TechnicianID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TaskToResponse(task, nil))
}

// Complete el técnico asignado completa la tarea; si está vinculada a una
// solicitud de servicio externa, esta se cierra después del commit.
func (h *TaskHandler) Complete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.TaskActionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	task, err := h.tasks.Complete(c.Context(), id, in.TechnicianID, in.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TaskToResponse(task, nil))
}

// UpdateStatus transición genérica del coordinador, validada contra la máquina
// de estados.
func (h *TaskHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.UpdateTaskStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	task, err := h.tasks.UpdateStatus(c.Context(), id, in.Status, in.Comment, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TaskToResponse(task, nil))
}

// Get devuelve la tarea con su historial completo.
func (h *TaskHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	task, history, err := h.tasks.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TaskToResponse(task, history))
}

// List busca tareas con filtros y paginación.
func (h *TaskHandler) List(c *fiber.Ctx) error {
	var pr dto.PageRequest
	if err := c.QueryParser(&pr); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page := pr.ToPage()
	list, total, err := h.tasks.List(c.Context(), taskFilterFromQuery(c), page)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.TaskResponse, 0, len(list))
	for _, t := range list {
		items = append(items, dto.TaskToResponse(t, nil))
	}
	return c.JSON(fiber.Map{"items": items, "page": dto.NewPageResponse(page, total)})
}

// ListByTechnician lista las tareas asignadas a un técnico.
func (h *TaskHandler) ListByTechnician(c *fiber.Ctx) error {
	technicianID, err := parseID(c, "technicianId")
	if err != nil {
		return respondError(c, err)
	}
	var pr dto.PageRequest
	if err := c.QueryParser(&pr); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page := pr.ToPage()
	list, total, err := h.tasks.ListByTechnician(c.Context(), technicianID, page)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.TaskResponse, 0, len(list))
	for _, t := range list {
		items = append(items, dto.TaskToResponse(t, nil))
	}
	return c.JSON(fiber.Map{"items": items, "page": dto.NewPageResponse(page, total)})
}

// Stats conteos de tareas por estado.
func (h *TaskHandler) Stats(c *fiber.Ctx) error {
	s, err := h.tasks.Stats(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TaskStatsToResponse(s))
}
