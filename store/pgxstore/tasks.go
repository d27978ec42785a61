package pgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/task-manager/domain/task"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, title, description, status, created_at, updated_at, completed_at, user_id`

// TaskRepository handles task persistence using pgx.
type TaskRepository struct {
	pool *pgxpool.Pool
}

var _ task.Repository = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// List returns the user's tasks, newest first.
func (r *TaskRepository) List(ctx context.Context, userID string, status *task.Status) ([]task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{userID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Title, t.Description, string(t.Status), t.CreatedAt, t.UpdatedAt, t.CompletedAt, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID returns the task if it is owned by userID.
func (r *TaskRepository) FindByID(ctx context.Context, userID, id string) (*task.Task, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	return scanOwned(row)
}

// Update locks the row with SELECT ... FOR UPDATE, applies fn and writes it
// back in the same transaction.
func (r *TaskRepository) Update(ctx context.Context, userID, id string, fn task.Mutator) (*task.Task, error) {
	var updated *task.Task
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID)
		t, err := scanOwned(row)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`UPDATE tasks
			    SET title = $3, description = $4, status = $5, completed_at = $6, updated_at = $7
			  WHERE id = $1 AND user_id = $2`,
			id, userID, t.Title, t.Description, string(t.Status), t.CompletedAt, t.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if tag.RowsAffected() == 0 {
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
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

func scanOwned(row pgx.Row) (*task.Task, error) {
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, task.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return t, nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		t      task.Task
		status string
	)
	if err := row.Scan(
		&t.ID, &t.Title, &t.Description, &status, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt, &t.UserID,
	); err != nil {
		return nil, err
	}
	t.Status = task.Status(status)
	return &t, nil
}
