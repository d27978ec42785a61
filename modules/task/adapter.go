package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-manager/domain/apperror"
	domain "github.com/example/task-manager/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort defines the task operations available to other modules.
// Every error it returns is an *apperror.Error.
type TaskPort interface {
	ListTasks(ctx context.Context, req ListTasksRequest) ([]domain.Task, error)
	CreateTask(ctx context.Context, req CreateTaskRequest) (*domain.Task, error)
	GetTask(ctx context.Context, req GetTaskRequest) (*domain.Task, error)
	UpdateTask(ctx context.Context, req UpdateTaskRequest) (*domain.Task, error)
	DeleteTask(ctx context.Context, req DeleteTaskRequest) error
}

// taskAdapter implements TaskPort over the task module's service container.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func (a *taskAdapter) ListTasks(ctx context.Context, req ListTasksRequest) ([]domain.Task, error) {
	var resp ListTasksResponse
	if err := call(ctx, a.container, "list-tasks", &req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Tasks == nil {
		resp.Tasks = []domain.Task{}
	}
	return resp.Tasks, nil
}

func (a *taskAdapter) CreateTask(ctx context.Context, req CreateTaskRequest) (*domain.Task, error) {
	return callTask(ctx, a.container, "create-task", &req)
}

func (a *taskAdapter) GetTask(ctx context.Context, req GetTaskRequest) (*domain.Task, error) {
	return callTask(ctx, a.container, "get-task", &req)
}

func (a *taskAdapter) UpdateTask(ctx context.Context, req UpdateTaskRequest) (*domain.Task, error) {
	return callTask(ctx, a.container, "update-task", &req)
}

func (a *taskAdapter) DeleteTask(ctx context.Context, req DeleteTaskRequest) error {
	var resp DeleteTaskResponse
	if err := call(ctx, a.container, "delete-task", &req, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	return nil
}

func callTask[Req any](ctx context.Context, container mono.ServiceContainer, service string, req *Req) (*domain.Task, error) {
	var resp TaskResponse
	if err := call(ctx, container, service, req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Task, nil
}

// call invokes a request-reply service. Transport failures become internal errors.
func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return apperror.Internal(fmt.Errorf("%s service call failed: %w", service, err))
	}
	return nil
}
