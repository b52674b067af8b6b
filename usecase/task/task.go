package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/taskpilot/backend/domain"
	"github.com/taskpilot/backend/repository"
	"github.com/taskpilot/backend/usecase"
)

// UseCase orchestrates every task mutation: load the current record,
// authorize the actor, derive the next state, persist it in a single write.
// It holds no state across calls.
type UseCase struct {
	tasks    repository.TaskRepository
	activity usecase.ActivityRecorder
	logger   *zap.Logger
}

func New(tasks repository.TaskRepository, activity usecase.ActivityRecorder, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		activity: activity,
		logger:   logger,
	}
}

// CreateInput carries the admin-supplied fields for a new task.
type CreateInput struct {
	Title       string
	Description string
	Priority    domain.Priority
	DueDate     *time.Time
	AssignedTo  []string
	Attachments []string
	Checklist   []domain.ChecklistItem
}

// EditInput is a partial update: nil fields keep their prior value.
type EditInput struct {
	Title       *string
	Description *string
	Priority    *domain.Priority
	DueDate     *time.Time
	AssignedTo  *[]string
	Attachments *[]string
	Checklist   *[]domain.ChecklistItem
}

// View annotates a task with its completed-item count for list responses.
type View struct {
	domain.Task
	CompletedTodoCount int `json:"completed_todo_count"`
}

// ListResult bundles the visible tasks with a status summary block.
type ListResult struct {
	Tasks   []View                  `json:"tasks"`
	Summary repository.StatusCounts `json:"status_summary"`
}

// VerifyResult is the minimal projection returned by Verify.
type VerifyResult struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Status     domain.Status `json:"status"`
	VerifiedBy string        `json:"verified_by"`
	VerifiedAt *time.Time    `json:"verified_at"`
}

// DashboardData aggregates counts and recent tasks for dashboards.
type DashboardData struct {
	Statistics     repository.StatusCounts `json:"statistics"`
	PriorityLevels map[domain.Priority]int `json:"priority_levels"`
	RecentTasks    []domain.Task           `json:"recent_tasks"`
}

// List returns the tasks visible to the actor: everything for admins,
// assigned tasks only for members. An optional status filters the listing.
func (uc *UseCase) List(ctx context.Context, actor domain.Actor, status domain.Status, limit, offset int) (*ListResult, error) {
	if status != "" && !status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	filter := repository.TaskFilter{
		Status: status,
		Limit:  limit,
		Offset: offset,
	}
	if !actor.IsAdmin() {
		filter.AssigneeID = actor.ID
	}

	tasks, err := uc.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, View{Task: t, CompletedTodoCount: t.CompletedCount()})
	}

	summary, err := uc.tasks.CountByStatus(ctx, filter.AssigneeID)
	if err != nil {
		return nil, err
	}

	return &ListResult{Tasks: views, Summary: summary}, nil
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

// Create builds a new task owned by the acting admin. Initial progress and
// status come from the deriver over the supplied (possibly empty) checklist.
func (uc *UseCase) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.Task, error) {
	if err := Authorize(actor, nil, ActionEditFields, ""); err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "title is required")
	}
	assigned, err := normalizeAssignment(in.AssignedTo)
	if err != nil {
		return nil, err
	}
	if err := validateChecklist(in.Checklist); err != nil {
		return nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "invalid priority")
	}

	progress, status := DeriveProgress(in.Checklist, false)

	t := &domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Priority:    priority,
		Status:      status,
		DueDate:     in.DueDate,
		AssignedTo:  assigned,
		CreatedBy:   actor.ID,
		Attachments: in.Attachments,
		Checklist:   in.Checklist,
		Progress:    progress,
	}

	created, err := uc.tasks.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	uc.record(ctx, "task.create", actor, created)
	return created, nil
}

// UpdateChecklist replaces the checklist and re-derives progress and status.
// Returns the refreshed record so callers see the persisted state.
func (uc *UseCase) UpdateChecklist(ctx context.Context, actor domain.Actor, taskID string, items []domain.ChecklistItem) (*domain.Task, error) {
	t, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, t, ActionUpdateChecklist, ""); err != nil {
		return nil, err
	}
	if err := validateChecklist(items); err != nil {
		return nil, err
	}

	t.Checklist = items
	t.Progress, t.Status = DeriveProgress(items, false)

	if err := uc.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	uc.record(ctx, "task.checklist", actor, t)

	return uc.tasks.GetByID(ctx, taskID)
}

// SetStatus writes the requested status. The Completed request is the admin
// override: it force-ticks every checklist item and pins progress to 100.
// Any other status is written verbatim without recomputing progress from the
// checklist — a deliberate manual-override escape hatch kept from the
// original behavior.
func (uc *UseCase) SetStatus(ctx context.Context, actor domain.Actor, taskID string, requested domain.Status) (*domain.Task, error) {
	t, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, t, ActionSetStatus, requested); err != nil {
		return nil, err
	}
	if !requested.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	if requested == domain.StatusCompleted {
		for i := range t.Checklist {
			t.Checklist[i].Completed = true
		}
		t.Progress, t.Status = DeriveProgress(t.Checklist, true)
	} else {
		t.Status = requested
	}

	if err := uc.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	uc.record(ctx, "task.status", actor, t)
	return t, nil
}

// Verify is the admin sign-off transitioning Unverified into Completed. It
// leaves the checklist untouched; re-verifying refreshes the verifier and
// timestamp but changes nothing else.
func (uc *UseCase) Verify(ctx context.Context, actor domain.Actor, taskID string) (*VerifyResult, error) {
	t, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, t, ActionVerify, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	t.Status = domain.StatusCompleted
	t.Progress = 100
	t.VerifiedBy = actor.ID
	t.VerifiedAt = &now

	if err := uc.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	uc.record(ctx, "task.verify", actor, t)

	return &VerifyResult{
		ID:         t.ID,
		Title:      t.Title,
		Status:     t.Status,
		VerifiedBy: t.VerifiedBy,
		VerifiedAt: t.VerifiedAt,
	}, nil
}

// EditFields applies an admin partial update. Fields left nil retain their
// prior value; a replaced checklist is stored as supplied without
// re-deriving progress.
func (uc *UseCase) EditFields(ctx context.Context, actor domain.Actor, taskID string, in EditInput) (*domain.Task, error) {
	t, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, t, ActionEditFields, ""); err != nil {
		return nil, err
	}

	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Priority != nil {
		if !in.Priority.IsValid() {
			return nil, domain.NewError(domain.ErrCodeInvalid, "invalid priority")
		}
		t.Priority = *in.Priority
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.AssignedTo != nil {
		assigned, err := normalizeAssignment(*in.AssignedTo)
		if err != nil {
			return nil, err
		}
		t.AssignedTo = assigned
	}
	if in.Attachments != nil {
		t.Attachments = *in.Attachments
	}
	if in.Checklist != nil {
		if err := validateChecklist(*in.Checklist); err != nil {
			return nil, err
		}
		t.Checklist = *in.Checklist
	}

	if err := uc.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	uc.record(ctx, "task.edit", actor, t)
	return t, nil
}

// Delete removes a task permanently. Hard delete, no tombstone.
func (uc *UseCase) Delete(ctx context.Context, actor domain.Actor, taskID string) error {
	t, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if err := Authorize(actor, t, ActionDelete, ""); err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	uc.record(ctx, "task.delete", actor, t)
	return nil
}

// Dashboard returns the fleet-wide aggregates. Admin only.
func (uc *UseCase) Dashboard(ctx context.Context, actor domain.Actor) (*DashboardData, error) {
	if !actor.IsAdmin() {
		return nil, domain.NotAuthorized("view dashboard")
	}
	return uc.dashboardFor(ctx, "")
}

// UserDashboard returns the same aggregates scoped to the actor's tasks.
func (uc *UseCase) UserDashboard(ctx context.Context, actor domain.Actor) (*DashboardData, error) {
	return uc.dashboardFor(ctx, actor.ID)
}

func (uc *UseCase) dashboardFor(ctx context.Context, assigneeID string) (*DashboardData, error) {
	statistics, err := uc.tasks.CountByStatus(ctx, assigneeID)
	if err != nil {
		return nil, err
	}
	priorities, err := uc.tasks.CountByPriority(ctx, assigneeID)
	if err != nil {
		return nil, err
	}
	recent, err := uc.tasks.Recent(ctx, assigneeID, 10)
	if err != nil {
		return nil, err
	}
	return &DashboardData{
		Statistics:     statistics,
		PriorityLevels: priorities,
		RecentTasks:    recent,
	}, nil
}

func (uc *UseCase) record(ctx context.Context, action string, actor domain.Actor, t *domain.Task) {
	if uc.activity == nil {
		return
	}
	if err := uc.activity.RecordTask(ctx, action, actor, t); err != nil {
		uc.logger.Warn("failed to record task activity",
			zap.String("action", action),
			zap.String("task_id", t.ID),
			zap.Error(err))
	}
}

func normalizeAssignment(ids []string) ([]string, error) {
	normalized := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return nil, domain.NewError(domain.ErrCodeInvalid, "assigned_to entries must be non-empty user ids")
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		normalized = append(normalized, id)
	}
	return normalized, nil
}

func validateChecklist(items []domain.ChecklistItem) error {
	for _, item := range items {
		if item.Text == "" {
			return domain.NewError(domain.ErrCodeInvalid, "checklist item text is required")
		}
	}
	return nil
}
