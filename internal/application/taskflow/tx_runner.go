package taskflow

import (
	"context"

	"github.com/serviteca/taller-api/internal/domain/repository"
)

// TxRunner ejecuta una transición de tarea junto con su entrada de historial en una
// sola transacción de BD: el cambio de estado y el registro de auditoría se
// confirman juntos o ninguno.
type TxRunner interface {
	RunTask(ctx context.Context, fn func(
		tasks repository.TaskRepository,
		history repository.TaskHistoryRepository,
	) error) error
}
