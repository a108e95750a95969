package entity

import "time"

// Estados de una tarea de mantenimiento.
// PENDING → ASSIGNED → {ACCEPTED, REJECTED}; ACCEPTED → IN_PROGRESS → COMPLETED.
// REJECTED y COMPLETED son terminales; no hay re-encolado automático tras un rechazo.
const (
	TaskStatusPending    = "PENDING"
	TaskStatusAssigned   = "ASSIGNED"
	TaskStatusAccepted   = "ACCEPTED"
	TaskStatusRejected   = "REJECTED"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusCompleted  = "COMPLETED"
)

// Roles que actúan sobre una tarea (quedan registrados en el historial).
const (
	TaskRoleCoordinator = "COORDINATOR"
	TaskRoleTechnician  = "TECHNICIAN"
	TaskRoleSystem      = "SYSTEM"
)

// Task unidad de trabajo asignada a un técnico. Estructuralmente paralela a las
// solicitudes de stock (misma máquina de estados + historial inmutable) pero sin
// efectos sobre el ledger.
type Task struct {
	ID                   int64
	TaskNumber           string
	Title                string
	Description          string
	Status               string
	AssignedTechnicianID *int64
	ScheduledDate        *time.Time
	ServiceRequestID     *int64 // solicitud de servicio externa que originó la tarea
	CreatedBy            string
	CreatedAt            time.Time
	CompletedAt          *time.Time
	CompletionNotes      string
}

// IsTerminal indica si la tarea ya no admite transiciones.
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusRejected || t.Status == TaskStatusCompleted
}

// TaskHistoryEntry registro inmutable de una transición de estado de la tarea.
type TaskHistoryEntry struct {
	ID      int64
	TaskID  int64
	Status  string
	Comment string
	ActorID string
	Role    string
	At      time.Time
}

// TaskStats conteos por estado para tareas.
type TaskStats struct {
	Total      int64
	Pending    int64
	Assigned   int64
	Accepted   int64
	Rejected   int64
	InProgress int64
	Completed  int64
}
