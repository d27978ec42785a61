package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/task-manager/domain/apperror"
	domain "github.com/example/task-manager/domain/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

// Client-facing messages.
const (
	msgTitleRequired = "Title is required"
	msgTitleTooLong  = "Title must be at most 255 characters"
	msgInvalidStatus = "Invalid status"
	msgTaskNotFound  = "Task not found"
)

// CreateInput holds the fields accepted when creating a task.
type CreateInput struct {
	Title       string
	Description *string
	Status      domain.Field[domain.Status]
}

// UpdateInput holds a partial update. Absent fields are left untouched; a
// supplied title or status is validated even when null or empty.
type UpdateInput struct {
	Title       domain.Field[string]
	Description domain.Field[string]
	Status      domain.Field[domain.Status]
	CompletedAt domain.Field[time.Time]
}

// TaskService implements the task use cases. Every operation is scoped to
// the calling user.
type TaskService struct {
	repo                     domain.Repository
	allowCompletedAtOverride bool
	now                      func() time.Time
	logger                   types.Logger
}

// NewTaskService creates a new TaskService. When allowCompletedAtOverride is
// false an explicit completedAt in an update is ignored.
func NewTaskService(repo domain.Repository, allowCompletedAtOverride bool, logger types.Logger) *TaskService {
	return &TaskService{
		repo:                     repo,
		allowCompletedAtOverride: allowCompletedAtOverride,
		now:                      func() time.Time { return time.Now().UTC() },
		logger:                   logger,
	}
}

// List returns the user's tasks, newest first. An unknown status filter is
// ignored rather than rejected.
func (s *TaskService) List(ctx context.Context, userID, status string) ([]domain.Task, error) {
	var filter *domain.Status
	if st := domain.Status(status); st.Valid() {
		filter = &st
	}

	tasks, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return tasks, nil
}

// Create validates and stores a new task.
func (s *TaskService) Create(ctx context.Context, userID string, in CreateInput) (*domain.Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}

	status := domain.StatusPending
	if in.Status.Set {
		st, err := validStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = st
	}

	t := domain.New(uuid.New().String(), userID, title, normalizeDescription(in.Description), status, s.now())
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, apperror.Internal(err)
	}

	s.logger.Debug("Task created", "task_id", t.ID, "user_id", userID, "status", t.Status)
	return t, nil
}

// Get returns a task owned by the user.
func (s *TaskService) Get(ctx context.Context, userID, id string) (*domain.Task, error) {
	if !isTaskID(id) {
		return nil, apperror.NotFound(msgTaskNotFound)
	}
	t, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return t, nil
}

// Update applies a partial update. Ownership is checked before the input is
// validated, and the completion timestamp is derived from the stored row
// while it is held by the repository.
func (s *TaskService) Update(ctx context.Context, userID, id string, in UpdateInput) (*domain.Task, error) {
	if !isTaskID(id) {
		return nil, apperror.NotFound(msgTaskNotFound)
	}

	t, err := s.repo.Update(ctx, userID, id, func(t *domain.Task) error {
		changes, err := s.changes(in)
		if err != nil {
			return err
		}
		t.Apply(changes, s.now())
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.logger.Debug("Task updated", "task_id", t.ID, "user_id", userID, "status", t.Status)
	return t, nil
}

// Delete removes a task owned by the user.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if !isTaskID(id) {
		return apperror.NotFound(msgTaskNotFound)
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return mapRepoError(err)
	}

	s.logger.Debug("Task deleted", "task_id", id, "user_id", userID)
	return nil
}

// changes validates an update and converts it to domain changes.
func (s *TaskService) changes(in UpdateInput) (domain.Changes, error) {
	var c domain.Changes

	if in.Title.Set {
		if in.Title.Value == nil {
			return c, apperror.Validation(msgTitleRequired)
		}
		title, err := normalizeTitle(*in.Title.Value)
		if err != nil {
			return c, err
		}
		c.Title = &title
	}
	if in.Description.Set {
		c.Description = domain.Field[string]{Set: true, Value: normalizeDescription(in.Description.Value)}
	}
	if in.Status.Set {
		st, err := validStatus(in.Status)
		if err != nil {
			return c, err
		}
		c.Status = &st
	}
	if s.allowCompletedAtOverride && in.CompletedAt.Set {
		c.CompletedAt = in.CompletedAt
	}
	return c, nil
}

func normalizeTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", apperror.Validation(msgTitleRequired)
	}
	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return "", apperror.Validation(msgTitleTooLong)
	}
	return title, nil
}

// validStatus rejects a supplied status that is null, empty or unknown.
func validStatus(f domain.Field[domain.Status]) (domain.Status, error) {
	if f.Value == nil || !f.Value.Valid() {
		return "", apperror.Validation(msgInvalidStatus)
	}
	return *f.Value, nil
}

// normalizeDescription trims the description; blank becomes null.
func normalizeDescription(raw *string) *string {
	if raw == nil {
		return nil
	}
	d := strings.TrimSpace(*raw)
	if d == "" {
		return nil
	}
	return &d
}

// isTaskID reports whether id can name a task. Anything else cannot exist.
func isTaskID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func mapRepoError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound(msgTaskNotFound)
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Internal(fmt.Errorf("task store: %w", err))
}
