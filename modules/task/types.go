package task

import (
	"time"

	"github.com/example/task-manager/domain/apperror"
	domain "github.com/example/task-manager/domain/task"
)

// ListTasksRequest represents a list-tasks request.
type ListTasksRequest struct {
	UserID string `json:"userId"`
	Status string `json:"status,omitempty"`
}

// ListTasksResponse represents a list-tasks response.
type ListTasksResponse struct {
	Tasks []domain.Task   `json:"tasks"`
	Error *apperror.Error `json:"error,omitempty"`
}

// CreateTaskRequest represents a create-task request.
type CreateTaskRequest struct {
	UserID      string                      `json:"userId"`
	Title       string                      `json:"title"`
	Description *string                     `json:"description,omitempty"`
	Status      domain.Field[domain.Status] `json:"status,omitzero"`
}

// GetTaskRequest represents a get-task request.
type GetTaskRequest struct {
	UserID string `json:"userId"`
	TaskID string `json:"taskId"`
}

// UpdateTaskRequest represents an update-task request. Optional fields keep
// null apart from absent across the transport.
type UpdateTaskRequest struct {
	UserID      string                      `json:"userId"`
	TaskID      string                      `json:"taskId"`
	Title       domain.Field[string]        `json:"title,omitzero"`
	Description domain.Field[string]        `json:"description,omitzero"`
	Status      domain.Field[domain.Status] `json:"status,omitzero"`
	CompletedAt domain.Field[time.Time]     `json:"completedAt,omitzero"`
}

// DeleteTaskRequest represents a delete-task request.
type DeleteTaskRequest struct {
	UserID string `json:"userId"`
	TaskID string `json:"taskId"`
}

// TaskResponse is the reply to create, get and update.
type TaskResponse struct {
	Task  *domain.Task    `json:"task,omitempty"`
	Error *apperror.Error `json:"error,omitempty"`
}

// DeleteTaskResponse represents a delete-task response.
type DeleteTaskResponse struct {
	Error *apperror.Error `json:"error,omitempty"`
}
