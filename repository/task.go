package repository

import (
	"context"

	"github.com/taskpilot/backend/domain"
)

// TaskFilter narrows task listings. An empty AssigneeID means "all tasks"
// (admin view); a non-empty one restricts to tasks assigned to that user.
type TaskFilter struct {
	AssigneeID string
	Status     domain.Status
	Limit      int
	Offset     int
}

// StatusCounts aggregates tasks by lifecycle status for dashboards.
type StatusCounts struct {
	All        int `json:"all"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Unverified int `json:"unverified"`
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
}

// UserTaskCounts summarizes one member's workload for the admin user listing.
type UserTaskCounts struct {
	Pending             int `json:"pending_tasks"`
	InProgress          int `json:"in_progress_tasks"`
	Completed           int `json:"completed_tasks"`
	UnverifiedCompleted int `json:"unverified_completed_tasks"`
	VerifiedCompleted   int `json:"verified_completed_tasks"`
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// Update persists the full task document guarded by the revision the
	// task was loaded at. A stale revision yields domain.ErrTaskConflict.
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, assigneeID string) (StatusCounts, error)
	CountByPriority(ctx context.Context, assigneeID string) (map[domain.Priority]int, error)
	CountForUser(ctx context.Context, userID string) (UserTaskCounts, error)
	Recent(ctx context.Context, assigneeID string, limit int) ([]domain.Task, error)
}
