package dto

import (
	"time"

	"github.com/serviteca/taller-api/internal/domain/entity"
)

// CreateTaskRequest body para POST /api/tasks.
type CreateTaskRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	ServiceRequestID *int64 `json:"service_request_id,omitempty"`
}

// AssignTaskRequest body para PUT /api/tasks/:id/assign.
type AssignTaskRequest struct {
	TechnicianID  int64     `json:"technician_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
}

// TaskActionRequest body para accept/reject/start/complete del técnico.
// Reason es obligatorio al rechazar; Notes se registra al completar.
type TaskActionRequest struct {
	TechnicianID int64  `json:"technician_id"`
	Reason       string `json:"reason,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// UpdateTaskStatusRequest body para PUT /api/tasks/:id/status (entrada genérica).
type UpdateTaskStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

// TaskResponse representación HTTP de una tarea.
type TaskResponse struct {
	ID                   int64                 `json:"id"`
	TaskNumber           string                `json:"task_number"`
	Title                string                `json:"title"`
	Description          string                `json:"description,omitempty"`
	Status               string                `json:"status"`
	AssignedTechnicianID *int64                `json:"assigned_technician_id,omitempty"`
	ScheduledDate        *time.Time            `json:"scheduled_date,omitempty"`
	ServiceRequestID     *int64                `json:"service_request_id,omitempty"`
	CreatedBy            string                `json:"created_by"`
	CreatedAt            time.Time             `json:"created_at"`
	CompletedAt          *time.Time            `json:"completed_at,omitempty"`
	CompletionNotes      string                `json:"completion_notes,omitempty"`
	History              []TaskHistoryResponse `json:"history,omitempty"`
}

// TaskHistoryResponse entrada del historial de una tarea.
type TaskHistoryResponse struct {
	Status  string    `json:"status"`
	Comment string    `json:"comment,omitempty"`
	ActorID string    `json:"actor_id"`
	Role    string    `json:"role"`
	At      time.Time `json:"at"`
}

// TaskToResponse mapeo explícito entidad -> DTO, con historial opcional.
func TaskToResponse(t *entity.Task, history []*entity.TaskHistoryEntry) TaskResponse {
	resp := TaskResponse{
		ID:                   t.ID,
		TaskNumber:           t.TaskNumber,
		Title:                t.Title,
		Description:          t.Description,
		Status:               t.Status,
		AssignedTechnicianID: t.AssignedTechnicianID,
		ScheduledDate:        t.ScheduledDate,
		ServiceRequestID:     t.ServiceRequestID,
		CreatedBy:            t.CreatedBy,
		CreatedAt:            t.CreatedAt,
		CompletedAt:          t.CompletedAt,
		CompletionNotes:      t.CompletionNotes,
	}
	for _, e := range history {
		resp.History = append(resp.History, TaskHistoryResponse{
			Status:  e.Status,
			Comment: e.Comment,
			ActorID: e.ActorID,
			Role:    e.Role,
			At:      e.At,
		})
	}
	return resp
}

// TaskStatsResponse conteos de tareas por estado.
type TaskStatsResponse struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Assigned   int64 `json:"assigned"`
	Accepted   int64 `json:"accepted"`
	Rejected   int64 `json:"rejected"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
}

// TaskStatsToResponse mapeo explícito entidad -> DTO.
func TaskStatsToResponse(s *entity.TaskStats) TaskStatsResponse {
	return TaskStatsResponse{
		Total:      s.Total,
		Pending:    s.Pending,
		Assigned:   s.Assigned,
		Accepted:   s.Accepted,
		Rejected:   s.Rejected,
		InProgress: s.InProgress,
		Completed:  s.Completed,
	}
}
