package task

import (
	"context"

	"github.com/example/task-manager/domain/apperror"
	domain "github.com/example/task-manager/domain/task"
)

// localPort implements TaskPort by calling a TaskService in-process.
type localPort struct {
	service *TaskService
}

// NewLocalPort returns a TaskPort backed directly by service, bypassing the
// service container.
func NewLocalPort(service *TaskService) TaskPort {
	return &localPort{service: service}
}

func (p *localPort) ListTasks(ctx context.Context, req ListTasksRequest) ([]domain.Task, error) {
	tasks, err := p.service.List(ctx, req.UserID, req.Status)
	return tasks, classify(err)
}

func (p *localPort) CreateTask(ctx context.Context, req CreateTaskRequest) (*domain.Task, error) {
	t, err := p.service.Create(ctx, req.UserID, CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	return t, classify(err)
}

func (p *localPort) GetTask(ctx context.Context, req GetTaskRequest) (*domain.Task, error) {
	t, err := p.service.Get(ctx, req.UserID, req.TaskID)
	return t, classify(err)
}

func (p *localPort) UpdateTask(ctx context.Context, req UpdateTaskRequest) (*domain.Task, error) {
	t, err := p.service.Update(ctx, req.UserID, req.TaskID, UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		CompletedAt: req.CompletedAt,
	})
	return t, classify(err)
}

func (p *localPort) DeleteTask(ctx context.Context, req DeleteTaskRequest) error {
	return classify(p.service.Delete(ctx, req.UserID, req.TaskID))
}

// classify keeps every returned error an *apperror.Error, as over the container.
func classify(err error) error {
	if err == nil {
		return nil
	}
	return apperror.From(err)
}
