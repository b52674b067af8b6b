package domain

import "time"

// Status is the lifecycle state of a task. It is derived from the checklist
// except where an admin overrides it explicitly.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusUnverified Status = "Unverified"
	StatusCompleted  Status = "Completed"
)

// IsValid reports whether s is one of the four legal statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusUnverified, StatusCompleted:
		return true
	}
	return false
}

// Priority classifies how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ChecklistItem is a single unit of work inside a task.
type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Task is the central entity: an assignable piece of work whose progress and
// status are derived from its checklist.
type Task struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Priority    Priority        `json:"priority"`
	Status      Status          `json:"status"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	AssignedTo  []string        `json:"assigned_to"`
	CreatedBy   string          `json:"created_by"`
	VerifiedBy  string          `json:"verified_by,omitempty"`
	VerifiedAt  *time.Time      `json:"verified_at,omitempty"`
	Attachments []string        `json:"attachments,omitempty"`
	Checklist   []ChecklistItem `json:"checklist"`
	Progress    int             `json:"progress"`
	Revision    int             `json:"revision"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsAssignee reports whether userID belongs to the task's assignment set.
func (t *Task) IsAssignee(userID string) bool {
	if t == nil || userID == "" {
		return false
	}
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// CompletedCount returns the number of ticked checklist items.
func (t *Task) CompletedCount() int {
	if t == nil {
		return 0
	}
	count := 0
	for _, item := range t.Checklist {
		if item.Completed {
			count++
		}
	}
	return count
}

// IsVerified reports whether an admin has signed the task off.
func (t *Task) IsVerified() bool {
	return t != nil && t.VerifiedBy != "" && t.VerifiedAt != nil
}
