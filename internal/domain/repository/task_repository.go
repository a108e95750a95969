package repository

import (
	"context"

	"github.com/serviteca/taller-api/internal/domain/entity"
)

// TaskFilter filtros para listar tareas.
type TaskFilter struct {
	Status       string
	TechnicianID *int64
	Keyword      string // busca sobre task_number, title y description
}

// TaskRepository persistencia de tareas de mantenimiento.
type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	GetByID(ctx context.Context, id int64) (*entity.Task, error)
	// GetForUpdate bloquea la fila para una transición; usar solo dentro de una tx.
	GetForUpdate(ctx context.Context, id int64) (*entity.Task, error)
	Update(ctx context.Context, task *entity.Task) error
	List(ctx context.Context, filter TaskFilter, page Page) ([]*entity.Task, int64, error)
	Stats(ctx context.Context) (*entity.TaskStats, error)
}

// TaskHistoryRepository historial inmutable de transiciones de tareas.
// Solo inserta; las entradas nunca se modifican.
type TaskHistoryRepository interface {
	Append(ctx context.Context, entry *entity.TaskHistoryEntry) error
	ListByTask(ctx context.Context, taskID int64) ([]*entity.TaskHistoryEntry, error)
}
