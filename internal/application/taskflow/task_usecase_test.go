package taskflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviteca/taller-api/internal/application/taskflow"
	"github.com/serviteca/taller-api/internal/domain"
	"github.com/serviteca/taller-api/internal/domain/entity"
	"github.com/serviteca/taller-api/internal/domain/repository"
	"github.com/serviteca/taller-api/internal/testutil"
	"github.com/serviteca/taller-api/pkg/logger"
)

// fakeCompleter registra los cierres de solicitudes de servicio vinculadas.
type fakeCompleter struct {
	completed []int64
	err       error
}

func (f *fakeCompleter) CompleteServiceRequest(ctx context.Context, id int64) error {
	f.completed = append(f.completed, id)
	return f.err
}

func newTaskUC(store *testutil.Store, compl *fakeCompleter) *taskflow.TaskUseCase {
	if compl == nil {
		return taskflow.NewTaskUseCase(store.Runner(), store.Tasks, store.History, nil, logger.Nop())
	}
	return taskflow.NewTaskUseCase(store.Runner(), store.Tasks, store.History, compl, logger.Nop())
}

func createTask(t *testing.T, uc *taskflow.TaskUseCase, srID *int64) *entity.Task {
	t.Helper()
	task, err := uc.Create(context.Background(), taskflow.CreateTaskInput{
		Title:            "cambio de compresor",
		Description:      "equipo de refrigeración del cliente 12",
		ServiceRequestID: srID,
		CreatedBy:        "coordinador-1",
	})
	require.NoError(t, err)
	require.Equal(t, entity.TaskStatusPending, task.Status)
	require.Contains(t, task.TaskNumber, "TSK-")
	return task
}

func TestTaskCreate_RegistraHistorialInicial(t *testing.T) {
	store := testutil.NewStore()
	uc := newTaskUC(store, nil)

	task := createTask(t, uc, nil)

	entries, err := store.History.ListByTask(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.TaskStatusPending, entries[0].Status)
	assert.Equal(t, entity.TaskRoleCoordinator, entries[0].Role)
	assert.Equal(t, "coordinador-1", entries[0].ActorID)
}

// Ciclo completo: cada transición deja exactamente una entrada de historial con
// el rol de quien actuó.
func TestTask_CicloCompletoConHistorial(t *testing.T) {
	store := testutil.NewStore()
	uc := newTaskUC(store, nil)
	ctx := context.Background()

	task := createTask(t, uc, nil)

	_, err := uc.Assign(ctx, task.ID, 7, time.Now().Add(24*time.Hour), "coordinador-1")
	require.NoError(t, err)
	_, err = uc.Accept(ctx, task.ID, 7, "disponible mañana")
	require.NoError(t, err)
	_, err = uc.Start(ctx, task.ID, 7)
	require.NoError(t, err)
	done, err := uc.Complete(ctx, task.ID, 7, "compresor reemplazado")
	require.NoError(t, err)

	assert.Equal(t, entity.TaskStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, "compresor reemplazado", done.CompletionNotes)

	entries, err := store.History.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 5, "creación + cuatro transiciones")

	wantStatus := []string{
		entity.TaskStatusPending,
		entity.TaskStatusAssigned,
		entity.TaskStatusAccepted,
		entity.TaskStatusInProgress,
		entity.TaskStatusCompleted,
	}
	for i, e := range entries {
		assert.Equal(t, wantStatus[i], e.Status)
	}
	assert.Equal(t, entity.TaskRoleCoordinator, entries[1].Role)
	assert.Equal(t, entity.TaskRoleTechnician, entries[2].Role)
	assert.Equal(t, "tecnico:7", entries[2].ActorID)
}

// La tarea se asigna al técnico 7; el técnico 9 no puede actuar sobre ella, y el
// dueño sí puede rechazarla con razón. El rechazo es terminal.
func TestTask_SoloElTecnicoAsignadoActua(t *testing.T) {
	store := testutil.NewStore()
	uc := newTaskUC(store, nil)
	ctx := context.Background()

	task := createTask(t, uc, nil)
	_, err := uc.Assign(ctx, task.ID, 7, time.Time{}, "coordinador-1")
	require.NoError(t, err)

	_, err = uc.Accept(ctx, task.ID, 9, "")
	assert.ErrorIs(t, err, domain.ErrNotTaskOwner)

	// El intento ajeno no debe dejar rastro en el historial.
	entries, err := store.History.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	_, err = uc.Reject(ctx, task.ID, 7, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "rechazar sin razón debe fallar")

	rejected, err := uc.Reject(ctx, task.ID, 7, "falta herramienta especializada")
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusRejected, rejected.Status)

	entries, err = store.History.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	last := entries[len(entries)-1]
	assert.Equal(t, "falta herramienta especializada", last.Comment)
	assert.Equal(t, entity.TaskRoleTechnician, last.Role)

	// Terminal: no hay re-encolado ni reasignación sobre la misma tarea.
	_, err = uc.Assign(ctx, task.ID, 9, time.Time{}, "coordinador-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTask_TransicionesIlegales(t *testing.T) {
	store := testutil.NewStore()
	uc := newTaskUC(store, nil)
	ctx := context.Background()

	task := createTask(t, uc, nil)

	// PENDING no admite accept ni start.
	_, err := uc.Accept(ctx, task.ID, 7, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = uc.Start(ctx, task.ID, 7)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// UpdateStatus genérico también valida contra la máquina de estados.
	_, err = uc.UpdateStatus(ctx, task.ID, entity.TaskStatusCompleted, "", "coordinador-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTaskComplete_CierraSolicitudDeServicioVinculada(t *testing.T) {
	store := testutil.NewStore()
	compl := &fakeCompleter{}
	uc := newTaskUC(store, compl)
	ctx := context.Background()

	srID := int64(333)
	task := createTask(t, uc, &srID)
	_, err := uc.Assign(ctx, task.ID, 7, time.Time{}, "coordinador-1")
	require.NoError(t, err)
	_, err = uc.Accept(ctx, task.ID, 7, "")
	require.NoError(t, err)
	_, err = uc.Start(ctx, task.ID, 7)
	require.NoError(t, err)
	_, err = uc.Complete(ctx, task.ID, 7, "")
	require.NoError(t, err)

	require.Len(t, compl.completed, 1)
	assert.Equal(t, int64(333), compl.completed[0])
}

// El cierre externo es best-effort: si falla, la tarea queda completada igual.
func TestTaskComplete_FalloExternoNoRevierte(t *testing.T) {
	store := testutil.NewStore()
	compl := &fakeCompleter{err: errors.New("servicio caído")}
	uc := newTaskUC(store, compl)
	ctx := context.Background()

	srID := int64(10)
	task := createTask(t, uc, &srID)
	_, err := uc.Assign(ctx, task.ID, 7, time.Time{}, "coordinador-1")
	require.NoError(t, err)
	_, err = uc.Accept(ctx, task.ID, 7, "")
	require.NoError(t, err)
	_, err = uc.Start(ctx, task.ID, 7)
	require.NoError(t, err)

	done, err := uc.Complete(ctx, task.ID, 7, "")
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusCompleted, done.Status)
}

func TestTaskListByTechnician_FiltraPorAsignado(t *testing.T) {
	store := testutil.NewStore()
	uc := newTaskUC(store, nil)
	ctx := context.Background()

	a := createTask(t, uc, nil)
	b := createTask(t, uc, nil)
	createTask(t, uc, nil)

	_, err := uc.Assign(ctx, a.ID, 7, time.Time{}, "coordinador-1")
	require.NoError(t, err)
	_, err = uc.Assign(ctx, b.ID, 9, time.Time{}, "coordinador-1")
	require.NoError(t, err)

	list, total, err := uc.ListByTechnician(ctx, 7, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
}

func TestTaskStats_CuentaPorEstado(t *testing.T) {
	store := testutil.NewStore()
	uc := newTaskUC(store, nil)
	ctx := context.Background()

	a := createTask(t, uc, nil)
	createTask(t, uc, nil)
	_, err := uc.Assign(ctx, a.ID, 7, time.Time{}, "coordinador-1")
	require.NoError(t, err)

	s, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Total)
	assert.Equal(t, int64(1), s.Pending)
	assert.Equal(t, int64(1), s.Assigned)
}
