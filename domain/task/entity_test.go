package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Valid(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid(), "status %q", s)
	}
	for _, s := range []Status{"", "pending", "concluida", "DONE"} {
		assert.False(t, s.Valid(), "status %q", s)
	}
}

func TestNew(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("defaults to pending", func(t *testing.T) {
		task := New("t1", "u1", "Title", nil, "", now)
		assert.Equal(t, StatusPending, task.Status)
		assert.Nil(t, task.CompletedAt)
		assert.Equal(t, now, task.CreatedAt)
		assert.Equal(t, now, task.UpdatedAt)
	})

	t.Run("created completed is stamped", func(t *testing.T) {
		task := New("t1", "u1", "Title", nil, StatusCompleted, now)
		require.NotNil(t, task.CompletedAt)
		assert.Equal(t, now, *task.CompletedAt)
	})
}

func TestTask_Apply_StatusTransitions(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	tests := []struct {
		name          string
		from          Status
		to            Status
		wantCompleted bool
		wantUnchanged bool
	}{
		{name: "pending to in progress", from: StatusPending, to: StatusInProgress},
		{name: "pending to completed", from: StatusPending, to: StatusCompleted, wantCompleted: true},
		{name: "in progress to completed", from: StatusInProgress, to: StatusCompleted, wantCompleted: true},
		{name: "in progress to pending", from: StatusInProgress, to: StatusPending},
		{name: "completed to pending", from: StatusCompleted, to: StatusPending},
		{name: "completed to in progress", from: StatusCompleted, to: StatusInProgress},
		{name: "completed to completed", from: StatusCompleted, to: StatusCompleted, wantCompleted: true, wantUnchanged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := New("t1", "u1", "Title", nil, tt.from, created)
			before := task.CompletedAt

			next := tt.to
			task.Apply(Changes{Status: &next}, later)

			assert.Equal(t, tt.to, task.Status)
			assert.Equal(t, later, task.UpdatedAt)
			if !tt.wantCompleted {
				assert.Nil(t, task.CompletedAt)
				return
			}
			require.NotNil(t, task.CompletedAt)
			if tt.wantUnchanged {
				assert.Equal(t, *before, *task.CompletedAt)
			} else {
				assert.Equal(t, later, *task.CompletedAt)
			}
		})
	}
}

func TestTask_Apply_PartialFields(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	desc := "keep me"
	task := New("t1", "u1", "Title", &desc, StatusInProgress, now)

	title := "New title"
	task.Apply(Changes{Title: &title}, now.Add(time.Minute))
	assert.Equal(t, "New title", task.Title)
	require.NotNil(t, task.Description)
	assert.Equal(t, "keep me", *task.Description)
	assert.Equal(t, StatusInProgress, task.Status)

	task.Apply(Changes{Description: Null[string]()}, now.Add(2*time.Minute))
	assert.Nil(t, task.Description)
}

func TestTask_Apply_CompletedAtOverride(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	backdated := now.Add(-48 * time.Hour)

	task := New("t1", "u1", "Title", nil, StatusPending, now)
	completed := StatusCompleted
	task.Apply(Changes{Status: &completed, CompletedAt: Some(backdated)}, now)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, backdated, *task.CompletedAt)

	task.Apply(Changes{CompletedAt: Null[time.Time]()}, now)
	assert.Nil(t, task.CompletedAt)
	assert.Equal(t, StatusCompleted, task.Status)
}
