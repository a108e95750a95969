package taskflow

import (
	"context"
	"strconv"
	"time"

	"github.com/serviteca/taller-api/internal/application/ports"
	"github.com/serviteca/taller-api/internal/domain"
	"github.com/serviteca/taller-api/internal/domain/entity"
	"github.com/serviteca/taller-api/internal/domain/repository"
	"github.com/serviteca/taller-api/pkg/logger"
)

const maxCommentLen = 500

// legalNext aristas válidas de la máquina de estados de tareas.
// Un rechazo es terminal: no hay re-encolado automático para reasignación.
var legalNext = map[string][]string{
	entity.TaskStatusPending:    {entity.TaskStatusAssigned},
	entity.TaskStatusAssigned:   {entity.TaskStatusAccepted, entity.TaskStatusRejected},
	entity.TaskStatusAccepted:   {entity.TaskStatusInProgress},
	entity.TaskStatusInProgress: {entity.TaskStatusCompleted},
}

func isLegalTransition(from, to string) bool {
	for _, s := range legalNext[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TaskUseCase ciclo de vida de tareas de mantenimiento: misma mecánica que las
// solicitudes de stock (máquina de estados + historial inmutable por transición)
// aplicada a un recurso sin cantidad.
type TaskUseCase struct {
	txRunner TxRunner
	tasks    repository.TaskRepository        // atado al pool, solo lecturas
	history  repository.TaskHistoryRepository // atado al pool, solo lecturas
	srCompl  ports.ServiceRequestCompleter    // puede ser nil: sin vínculo externo
	log      *logger.Logger
}

// NewTaskUseCase construye el caso de uso. srCompleter puede ser nil.
func NewTaskUseCase(txRunner TxRunner, tasks repository.TaskRepository, history repository.TaskHistoryRepository, srCompleter ports.ServiceRequestCompleter, log *logger.Logger) *TaskUseCase {
	return &TaskUseCase{txRunner: txRunner, tasks: tasks, history: history, srCompl: srCompleter, log: log}
}

// CreateTaskInput datos para crear una tarea.
type CreateTaskInput struct {
	Title            string
	Description      string
	ServiceRequestID *int64
	CreatedBy        string
}

// Create registra la tarea en PENDING con su entrada inicial de historial.
func (uc *TaskUseCase) Create(ctx context.Context, in CreateTaskInput) (*entity.Task, error) {
	if in.Title == "" || in.CreatedBy == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	task := &entity.Task{
		TaskNumber:       entity.NewTaskNumber(now),
		Title:            in.Title,
		Description:      in.Description,
		Status:           entity.TaskStatusPending,
		ServiceRequestID: in.ServiceRequestID,
		CreatedBy:        in.CreatedBy,
		CreatedAt:        now,
	}
	err := uc.txRunner.RunTask(ctx, func(tasks repository.TaskRepository, history repository.TaskHistoryRepository) error {
		if err := tasks.Create(ctx, task); err != nil {
			return err
		}
		return history.Append(ctx, &entity.TaskHistoryEntry{
			TaskID:  task.ID,
			Status:  entity.TaskStatusPending,
			Comment: "tarea creada",
			ActorID: in.CreatedBy,
			Role:    entity.TaskRoleCoordinator,
			At:      now,
		})
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// transition aplica una transición genérica: bloquea la fila, valida con guard,
// muta, persiste y agrega exactamente una entrada de historial, todo en una tx.
func (uc *TaskUseCase) transition(ctx context.Context, id int64, newStatus, comment, actorID, role string, guard func(*entity.Task) error, mutate func(*entity.Task, time.Time)) (*entity.Task, error) {
	var result *entity.Task
	err := uc.txRunner.RunTask(ctx, func(tasks repository.TaskRepository, history repository.TaskHistoryRepository) error {
		task, err := tasks.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if task == nil {
			return domain.ErrNotFound
		}
		if !isLegalTransition(task.Status, newStatus) {
			return domain.ErrInvalidTransition
		}
		if guard != nil {
			if err := guard(task); err != nil {
				return err
			}
		}
		now := time.Now()
		task.Status = newStatus
		if mutate != nil {
			mutate(task, now)
		}
		if err := tasks.Update(ctx, task); err != nil {
			return err
		}
		if err := history.Append(ctx, &entity.TaskHistoryEntry{
			TaskID:  task.ID,
			Status:  newStatus,
			Comment: comment,
			ActorID: actorID,
			Role:    role,
			At:      now,
		}); err != nil {
			return err
		}
		result = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// requireOwner valida que el técnico que actúa sea el asignado a la tarea.
func requireOwner(technicianID int64) func(*entity.Task) error {
	return func(task *entity.Task) error {
		if task.AssignedTechnicianID == nil || *task.AssignedTechnicianID != technicianID {
			return domain.ErrNotTaskOwner
		}
		return nil
	}
}

// Assign asigna la tarea a un técnico con fecha programada. Solo desde PENDING.
func (uc *TaskUseCase) Assign(ctx context.Context, id, technicianID int64, scheduledDate time.Time, actor string) (*entity.Task, error) {
	if technicianID <= 0 || actor == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.transition(ctx, id, entity.TaskStatusAssigned, "tarea asignada", actor, entity.TaskRoleCoordinator, nil,
		func(task *entity.Task, _ time.Time) {
			task.AssignedTechnicianID = &technicianID
			if !scheduledDate.IsZero() {
				task.ScheduledDate = &scheduledDate
			}
		})
}

// Accept el técnico asignado acepta la tarea. Solo desde ASSIGNED.
func (uc *TaskUseCase) Accept(ctx context.Context, id, technicianID int64, comment string) (*entity.Task, error) {
	if technicianID <= 0 || len(comment) > maxCommentLen {
		return nil, domain.ErrInvalidInput
	}
	return uc.transition(ctx, id, entity.TaskStatusAccepted, comment, actorID(technicianID), entity.TaskRoleTechnician,
		requireOwner(technicianID), nil)
}

// Reject el técnico asignado rechaza la tarea con una razón obligatoria.
// El rechazo es terminal; la reasignación requiere crear otra tarea.
func (uc *TaskUseCase) Reject(ctx context.Context, id, technicianID int64, reason string) (*entity.Task, error) {
	if technicianID <= 0 || reason == "" || len(reason) > maxCommentLen {
		return nil, domain.ErrInvalidInput
	}
	return uc.transition(ctx, id, entity.TaskStatusRejected, reason, actorID(technicianID), entity.TaskRoleTechnician,
		requireOwner(technicianID), nil)
}

// Start el técnico asignado inicia el trabajo. Solo desde ACCEPTED.
func (uc *TaskUseCase) Start(ctx context.Context, id, technicianID int64) (*entity.Task, error) {
	if technicianID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return uc.transition(ctx, id, entity.TaskStatusInProgress, "trabajo iniciado", actorID(technicianID), entity.TaskRoleTechnician,
		requireOwner(technicianID), nil)
}

// Complete el técnico asignado completa la tarea. Solo desde IN_PROGRESS.
// Si la tarea proviene de una solicitud de servicio externa, esa solicitud se
// completa después del commit local, best-effort: un fallo se registra y no
// revierte la tarea ya completada.
func (uc *TaskUseCase) Complete(ctx context.Context, id, technicianID int64, notes string) (*entity.Task, error) {
	if technicianID <= 0 || len(notes) > maxCommentLen {
		return nil, domain.ErrInvalidInput
	}
	task, err := uc.transition(ctx, id, entity.TaskStatusCompleted, "tarea completada", actorID(technicianID), entity.TaskRoleTechnician,
		requireOwner(technicianID),
		func(task *entity.Task, now time.Time) {
			task.CompletedAt = &now
			task.CompletionNotes = notes
		})
	if err != nil {
		return nil, err
	}
	if uc.srCompl != nil && task.ServiceRequestID != nil {
		if err := uc.srCompl.CompleteServiceRequest(ctx, *task.ServiceRequestID); err != nil {
			uc.log.Warn().
				Err(err).
				Str("task_number", task.TaskNumber).
				Int64("service_request_id", *task.ServiceRequestID).
				Msg("cierre de solicitud de servicio vinculada falló")
		}
	}
	return task, nil
}

// UpdateStatus punto de entrada genérico de transición para el coordinador.
// Valida la arista contra la máquina de estados; no aplica efectos colaterales
// específicos (asignación, cierre de solicitud vinculada): para eso están los
// métodos dedicados.
func (uc *TaskUseCase) UpdateStatus(ctx context.Context, id int64, newStatus, comment, actor string) (*entity.Task, error) {
	if actor == "" || len(comment) > maxCommentLen {
		return nil, domain.ErrInvalidInput
	}
	return uc.transition(ctx, id, newStatus, comment, actor, entity.TaskRoleCoordinator, nil, nil)
}

// Get devuelve la tarea con su historial, o domain.ErrNotFound.
func (uc *TaskUseCase) Get(ctx context.Context, id int64) (*entity.Task, []*entity.TaskHistoryEntry, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if task == nil {
		return nil, nil, domain.ErrNotFound
	}
	entries, err := uc.history.ListByTask(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return task, entries, nil
}

// ListByTechnician lista las tareas asignadas a un técnico.
func (uc *TaskUseCase) ListByTechnician(ctx context.Context, technicianID int64, page repository.Page) ([]*entity.Task, int64, error) {
	page.Normalize()
	return uc.tasks.List(ctx, repository.TaskFilter{TechnicianID: &technicianID}, page)
}

// List busca tareas con filtros y paginación; devuelve también el total.
func (uc *TaskUseCase) List(ctx context.Context, filter repository.TaskFilter, page repository.Page) ([]*entity.Task, int64, error) {
	page.Normalize()
	return uc.tasks.List(ctx, filter, page)
}

// Stats devuelve los conteos de tareas por estado.
func (uc *TaskUseCase) Stats(ctx context.Context) (*entity.TaskStats, error) {
	return uc.tasks.Stats(ctx)
}

// actorID representa el ID numérico del técnico como actor del historial.
func actorID(technicianID int64) string {
	return "tecnico:" + strconv.FormatInt(technicianID, 10)
}
