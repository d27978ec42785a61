// Package task provides owner-scoped task management as a mono module.
package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/task-manager/domain/apperror"
	"github.com/example/task-manager/modules/database"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// TaskModule exposes the task service over request-reply.
type TaskModule struct {
	allowCompletedAtOverride bool
	logger                   types.Logger
	db                       *database.PluginModule
	service                  *TaskService
}

var (
	_ mono.Module                = (*TaskModule)(nil)
	_ mono.ServiceProviderModule = (*TaskModule)(nil)
	_ mono.UsePluginModule       = (*TaskModule)(nil)
)

// NewModule creates a new TaskModule.
func NewModule(allowCompletedAtOverride bool, logger types.Logger) *TaskModule {
	return &TaskModule{
		allowCompletedAtOverride: allowCompletedAtOverride,
		logger:                   logger.WithModule("task"),
	}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// SetPlugin receives the database plugin.
func (m *TaskModule) SetPlugin(alias string, plugin mono.PluginModule) {
	if alias != "database" {
		return
	}
	if p, ok := plugin.(*database.PluginModule); ok {
		m.db = p
	}
}

// Start wires the service to the task store.
func (m *TaskModule) Start(_ context.Context) error {
	if m.db == nil || m.db.Port().Tasks == nil {
		return errors.New("database plugin not set - ensure 'database' plugin is registered")
	}
	m.service = NewTaskService(m.db.Port().Tasks, m.allowCompletedAtOverride, m.logger)

	if m.allowCompletedAtOverride {
		m.logger.Warn("Clients may set completedAt explicitly")
	}
	m.logger.Info("Module started")
	return nil
}

// Stop shuts down the module.
func (m *TaskModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}

// RegisterServices registers request-reply services in the service container.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	m.logger.Info("Registered services", "services", "list-tasks, create-task, get-task, update-task, delete-task")
	return nil
}

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.List(ctx, req.UserID, req.Status)
	if err != nil {
		return ListTasksResponse{Error: m.replyError("list-tasks", err)}, nil
	}
	return ListTasksResponse{Tasks: tasks}, nil
}

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Create(ctx, req.UserID, CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return TaskResponse{Error: m.replyError("create-task", err)}, nil
	}
	return TaskResponse{Task: t}, nil
}

func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Get(ctx, req.UserID, req.TaskID)
	if err != nil {
		return TaskResponse{Error: m.replyError("get-task", err)}, nil
	}
	return TaskResponse{Task: t}, nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Update(ctx, req.UserID, req.TaskID, UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		CompletedAt: req.CompletedAt,
	})
	if err != nil {
		return TaskResponse{Error: m.replyError("update-task", err)}, nil
	}
	return TaskResponse{Task: t}, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req.UserID, req.TaskID); err != nil {
		return DeleteTaskResponse{Error: m.replyError("delete-task", err)}, nil
	}
	return DeleteTaskResponse{}, nil
}

// replyError classifies err for the reply payload and logs internal failures.
func (m *TaskModule) replyError(service string, err error) *apperror.Error {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		m.logger.Error("Service failed", "service", service, "error", appErr.Detail)
	}
	return appErr
}
