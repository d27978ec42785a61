package task

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a task does not exist or belongs to another user.
var ErrNotFound = errors.New("task not found")

// Mutator edits a task loaded inside an update. Returning an error aborts the write.
type Mutator func(t *Task) error

// Repository persists tasks. Every method is scoped to the owning user.
type Repository interface {
	// List returns the user's tasks, newest first, optionally filtered by status.
	List(ctx context.Context, userID string, status *Status) ([]Task, error)
	Create(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, userID, id string) (*Task, error)
	// Update loads the task and applies fn while holding it, so concurrent
	// updates of the same row are serialised.
	Update(ctx context.Context, userID, id string, fn Mutator) (*Task, error)
	Delete(ctx context.Context, userID, id string) error
}
