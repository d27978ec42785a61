package api

import (
	"time"

	domain "github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/domain/user"
)

// Envelope wraps every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	// Detail carries the cause of internal errors in development mode only.
	Detail string `json:"detail,omitempty"`
	// Stack is the trace of a recovered panic, development mode only.
	Stack string `json:"stack,omitempty"`
	Path  string `json:"path,omitempty"`
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTaskRequest represents a task creation request.
type CreateTaskRequest struct {
	Title       string                      `json:"title"`
	Description *string                     `json:"description"`
	Status      domain.Field[domain.Status] `json:"status"`
}

// UpdateTaskRequest represents a partial task update. An explicit null
// clears description or completedAt and is rejected for title or status;
// an absent field is left alone.
type UpdateTaskRequest struct {
	Title       domain.Field[string]        `json:"title"`
	Description domain.Field[string]        `json:"description"`
	Status      domain.Field[domain.Status] `json:"status"`
	CompletedAt domain.Field[time.Time]     `json:"completedAt"`
}

// TaskResponse is a task together with its owner.
type TaskResponse struct {
	domain.Task
	User user.Summary `json:"user"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]HealthCheck `json:"checks,omitempty"`
}

// HealthCheck is the state of one dependency.
type HealthCheck struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message"`
}
