package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/task-manager/domain/task"
	"gorm.io/gorm"
)

// TaskRepository handles task persistence using GORM.
type TaskRepository struct {
	db *gorm.DB
}

var _ task.Repository = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns the user's tasks, newest first.
func (r *TaskRepository) List(ctx context.Context, userID string, status *task.Status) ([]task.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	tasks := make([]task.Task, 0)
	if err := q.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID returns the task if it is owned by userID.
func (r *TaskRepository) FindByID(ctx context.Context, userID, id string) (*task.Task, error) {
	return findOwned(r.db.WithContext(ctx), userID, id)
}

// Update loads and rewrites the task inside one transaction.
func (r *TaskRepository) Update(ctx context.Context, userID, id string, fn task.Mutator) (*task.Task, error) {
	var updated *task.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := findOwned(tx, userID, id)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}

		result := tx.Model(&task.Task{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(map[string]any{
				"title":        t.Title,
				"description":  t.Description,
				"status":       t.Status,
				"completed_at": t.CompletedAt,
				"updated_at":   t.UpdatedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update task: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return task.ErrNotFound
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the task if it is owned by userID.
func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&task.Task{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return task.ErrNotFound
	}
	return nil
}

func findOwned(db *gorm.DB, userID, id string) (*task.Task, error) {
	var t task.Task
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, task.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}
