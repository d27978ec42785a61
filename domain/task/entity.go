package task

import "time"

// Status represents the state of a task.
type Status string

const (
	StatusPending    Status = "PENDENTE"
	StatusInProgress Status = "EM_ANDAMENTO"
	StatusCompleted  Status = "CONCLUIDA"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// MaxTitleLength is the maximum title length in characters, after trimming.
const MaxTitleLength = 255

// Task is the core domain entity.
type Task struct {
	ID          string     `gorm:"primaryKey;type:text" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	Status      Status     `gorm:"type:text;not null;default:PENDENTE" json:"status"`
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt"`
	UserID      string     `gorm:"type:text;not null;index" json:"userId"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// New builds a task owned by userID. Status defaults to pending; a task born
// completed gets its completion timestamp immediately.
func New(id, userID, title string, description *string, status Status, now time.Time) *Task {
	if status == "" {
		status = StatusPending
	}
	t := &Task{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      StatusPending,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t.transition(status, now)
	return t
}

// Changes is a partial update. Unset fields are left untouched.
type Changes struct {
	Title       *string
	Description Field[string]
	Status      *Status
	// CompletedAt, when set, overrides the timestamp computed from the status.
	CompletedAt Field[time.Time]
}

// Apply mutates t with c. The completion side effect is computed from the
// stored state of t, not from anything the client sent, unless c carries an
// explicit CompletedAt.
func (t *Task) Apply(c Changes, now time.Time) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description.Set {
		t.Description = c.Description.Value
	}
	if c.Status != nil {
		t.transition(*c.Status, now)
	}
	if c.CompletedAt.Set {
		t.CompletedAt = c.CompletedAt.Value
	}
	t.UpdatedAt = now
}

// transition moves t to next. Entering completed stamps CompletedAt if unset;
// any other status clears it. Every transition is permitted.
func (t *Task) transition(next Status, now time.Time) {
	t.Status = next
	if next != StatusCompleted {
		t.CompletedAt = nil
		return
	}
	if t.CompletedAt == nil {
		at := now
		t.CompletedAt = &at
	}
}
