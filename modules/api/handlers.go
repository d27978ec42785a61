package api

import (
	"context"
	"time"

	"github.com/example/task-manager/domain/apperror"
	domain "github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/domain/user"
	"github.com/example/task-manager/modules/auth"
	"github.com/example/task-manager/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
)

// HealthChecker reports the state of a dependency.
type HealthChecker interface {
	Health(ctx context.Context) mono.HealthStatus
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	authPort auth.AuthPort
	taskPort task.TaskPort
	checks   map[string]HealthChecker
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authPort auth.AuthPort, taskPort task.TaskPort, checks map[string]HealthChecker) *Handlers {
	return &Handlers{
		authPort: authPort,
		taskPort: taskPort,
		checks:   checks,
	}
}

// Health reports liveness and the state of every registered dependency.
func (h *Handlers) Health(c *fiber.Ctx) error {
	resp := HealthResponse{
		Status:    "OK",
		Message:   "Task manager API is running",
		Timestamp: time.Now().UTC(),
	}

	status := fiber.StatusOK
	if len(h.checks) > 0 {
		resp.Checks = make(map[string]HealthCheck, len(h.checks))
		for name, checker := range h.checks {
			hs := checker.Health(c.UserContext())
			resp.Checks[name] = HealthCheck{Healthy: hs.Healthy, Message: hs.Message}
			if !hs.Healthy {
				resp.Status = "DEGRADED"
				status = fiber.StatusServiceUnavailable
			}
		}
	}
	return c.Status(status).JSON(resp)
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	session, err := h.authPort.Register(c.UserContext(), auth.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(Envelope{
		Success: true,
		Data:    session,
		Message: "User created successfully",
	})
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	session, err := h.authPort.Login(c.UserContext(), auth.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(Envelope{
		Success: true,
		Data:    session,
		Message: "Login successful",
	})
}

// Me returns the authenticated user's profile.
func (h *Handlers) Me(c *fiber.Ctx) error {
	profile, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(Envelope{Success: true, Data: profile})
}

// ListTasks returns the caller's tasks, optionally filtered by ?status=.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	profile, err := currentUser(c)
	if err != nil {
		return err
	}

	tasks, err := h.taskPort.ListTasks(c.UserContext(), task.ListTasksRequest{
		UserID: profile.ID,
		Status: c.Query("status"),
	})
	if err != nil {
		return err
	}

	owner := profile.Summary()
	views := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, TaskResponse{Task: t, User: owner})
	}
	return c.JSON(Envelope{Success: true, Data: views})
}

// CreateTask creates a task owned by the caller.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	profile, err := currentUser(c)
	if err != nil {
		return err
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	t, err := h.taskPort.CreateTask(c.UserContext(), task.CreateTaskRequest{
		UserID:      profile.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(Envelope{
		Success: true,
		Data:    withOwner(t, profile),
		Message: "Task created successfully",
	})
}

// GetTask returns one of the caller's tasks.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	profile, err := currentUser(c)
	if err != nil {
		return err
	}

	t, err := h.taskPort.GetTask(c.UserContext(), task.GetTaskRequest{
		UserID: profile.ID,
		TaskID: c.Params("id"),
	})
	if err != nil {
		return err
	}
	return c.JSON(Envelope{Success: true, Data: withOwner(t, profile)})
}

// UpdateTask applies a partial update to one of the caller's tasks.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	profile, err := currentUser(c)
	if err != nil {
		return err
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	t, err := h.taskPort.UpdateTask(c.UserContext(), task.UpdateTaskRequest{
		UserID:      profile.ID,
		TaskID:      c.Params("id"),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		CompletedAt: req.CompletedAt,
	})
	if err != nil {
		return err
	}

	return c.JSON(Envelope{
		Success: true,
		Data:    withOwner(t, profile),
		Message: "Task updated successfully",
	})
}

// DeleteTask removes one of the caller's tasks.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	profile, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.taskPort.DeleteTask(c.UserContext(), task.DeleteTaskRequest{
		UserID: profile.ID,
		TaskID: c.Params("id"),
	}); err != nil {
		return err
	}

	return c.JSON(Envelope{Success: true, Message: "Task deleted successfully"})
}

func withOwner(t *domain.Task, owner *user.Profile) TaskResponse {
	return TaskResponse{Task: *t, User: owner.Summary()}
}

func invalidBody() error {
	return apperror.Validation("Invalid request body")
}
