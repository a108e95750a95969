package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/serviteca/taller-api/internal/domain"
	"github.com/serviteca/taller-api/internal/domain/entity"
	"github.com/serviteca/taller-api/internal/domain/repository"
)

var _ repository.TaskRepository = (*TaskRepo)(nil)
var _ repository.TaskHistoryRepository = (*TaskHistoryRepo)(nil)

const taskColumns = `id, task_number, title, description, status, assigned_technician_id, scheduled_date, service_request_id, created_by, created_at, completed_at, completion_notes`

// Columnas admitidas para ordenar listados de tareas.
var taskSortColumns = map[string]string{
	"created_at":     "created_at",
	"status":         "status",
	"scheduled_date": "scheduled_date",
}

// TaskRepo implementación sobre PostgreSQL (usable con pool o tx).
type TaskRepo struct {
	q Querier
}

// NewTaskRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTaskRepository(q Querier) *TaskRepo {
	return &TaskRepo{q: q}
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	var t entity.Task
	var description, completionNotes *string
	err := row.Scan(
		&t.ID, &t.TaskNumber, &t.Title, &description, &t.Status, &t.AssignedTechnicianID,
		&t.ScheduledDate, &t.ServiceRequestID, &t.CreatedBy, &t.CreatedAt, &t.CompletedAt, &completionNotes,
	)
	if err != nil {
		return nil, err
	}
	if description != nil {
		t.Description = *description
	}
	if completionNotes != nil {
		t.CompletionNotes = *completionNotes
	}
	return &t, nil
}

// Create persiste la tarea y asigna el ID generado.
func (r *TaskRepo) Create(ctx context.Context, task *entity.Task) error {
	query := `
		INSERT INTO tasks (task_number, title, description, status, service_request_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		task.TaskNumber, task.Title, task.Description, task.Status,
		task.ServiceRequestID, task.CreatedBy, task.CreatedAt,
	).Scan(&task.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetByID obtiene una tarea por ID; (nil, nil) si no existe.
func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// GetForUpdate obtiene la tarea y bloquea la fila; (nil, nil) si no existe.
func (r *TaskRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 FOR UPDATE`
	t, err := scanTask(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task for update: %w", err)
	}
	return t, nil
}

// Update persiste los campos mutables de la tarea.
func (r *TaskRepo) Update(ctx context.Context, task *entity.Task) error {
	query := `
		UPDATE tasks
		SET status = $2, assigned_technician_id = $3, scheduled_date = $4,
		    completed_at = $5, completion_notes = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		task.ID, task.Status, task.AssignedTechnicianID, task.ScheduledDate,
		task.CompletedAt, nullIfEmpty(task.CompletionNotes),
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List busca tareas con filtros y paginación, devolviendo el total.
func (r *TaskRepo) List(ctx context.Context, filter repository.TaskFilter, page repository.Page) ([]*entity.Task, int64, error) {
	where := " WHERE 1=1"
	args := []any{}
	pos := 1
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, filter.Status)
		pos++
	}
	if filter.TechnicianID != nil {
		where += fmt.Sprintf(" AND assigned_technician_id = $%d", pos)
		args = append(args, *filter.TechnicianID)
		pos++
	}
	if filter.Keyword != "" {
		where += fmt.Sprintf(" AND (task_number ILIKE $%d OR title ILIKE $%d OR description ILIKE $%d)", pos, pos, pos)
		args = append(args, "%"+filter.Keyword+"%")
		pos++
	}

	var total int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + where +
		orderClause(page, taskSortColumns, "created_at") +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, page.Size, page.Offset())

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var list []*entity.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}

// Stats conteos de tareas por estado en una sola consulta.
func (r *TaskRepo) Stats(ctx context.Context) (*entity.TaskStats, error) {
	query := `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'PENDING'),
			count(*) FILTER (WHERE status = 'ASSIGNED'),
			count(*) FILTER (WHERE status = 'ACCEPTED'),
			count(*) FILTER (WHERE status = 'REJECTED'),
			count(*) FILTER (WHERE status = 'IN_PROGRESS'),
			count(*) FILTER (WHERE status = 'COMPLETED')
		FROM tasks`
	var s entity.TaskStats
	err := r.q.QueryRow(ctx, query).Scan(
		&s.Total, &s.Pending, &s.Assigned, &s.Accepted, &s.Rejected, &s.InProgress, &s.Completed,
	)
	if err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}
	return &s, nil
}

// TaskHistoryRepo historial de tareas sobre PostgreSQL. Append-only.
type TaskHistoryRepo struct {
	q Querier
}

// NewTaskHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTaskHistoryRepository(q Querier) *TaskHistoryRepo {
	return &TaskHistoryRepo{q: q}
}

// Append inserta una entrada de historial; nunca actualiza ni borra.
func (r *TaskHistoryRepo) Append(ctx context.Context, entry *entity.TaskHistoryEntry) error {
	query := `
		INSERT INTO task_history (task_id, status, comment, actor_id, role, at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		entry.TaskID, entry.Status, entry.Comment, entry.ActorID, entry.Role, entry.At,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("insert task history: %w", err)
	}
	return nil
}

// ListByTask devuelve el historial de una tarea en orden de creación.
func (r *TaskHistoryRepo) ListByTask(ctx context.Context, taskID int64) ([]*entity.TaskHistoryEntry, error) {
	query := `SELECT id, task_id, status, comment, actor_id, role, at FROM task_history WHERE task_id = $1 ORDER BY id ASC`
	rows, err := r.q.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("list task history: %w", err)
	}
	defer rows.Close()

	var list []*entity.TaskHistoryEntry
	for rows.Next() {
		var e entity.TaskHistoryEntry
		var comment *string
		if err := rows.Scan(&e.ID, &e.TaskID, &e.Status, &comment, &e.ActorID, &e.Role, &e.At); err != nil {
			return nil, fmt.Errorf("scan task history: %w", err)
		}
		if comment != nil {
			e.Comment = *comment
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
