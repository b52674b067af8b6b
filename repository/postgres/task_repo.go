package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpilot/backend/domain"
	"github.com/taskpilot/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of
// TaskRepository. Assignment set, checklist and attachments are stored as
// JSONB documents so each task persists as a single atomically-written row.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `
	id, title, description, priority, status, due_date, assigned_to,
	created_by, verified_by, verified_at, attachments, checklist,
	progress, revision, created_at, updated_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR assigned_to ? $1)
	  AND ($2 = '' OR status = $2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.AssigneeID, string(filter.Status), clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, storeErr("task listing failed", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (
		id, title, description, priority, status, due_date, assigned_to,
		created_by, verified_by, verified_at, attachments, checklist,
		progress, revision
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 0)
	RETURNING revision, created_at, updated_at
	`

	var due interface{}
	if task.DueDate != nil {
		due = *task.DueDate
	}
	var verifiedAt interface{}
	if task.VerifiedAt != nil {
		verifiedAt = *task.VerifiedAt
	}

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Status),
		due,
		marshalJSON(stringSlice(task.AssignedTo)),
		task.CreatedBy,
		task.VerifiedBy,
		verifiedAt,
		marshalJSON(stringSlice(task.Attachments)),
		marshalJSON(checklistSlice(task.Checklist)),
		task.Progress,
	).Scan(&task.Revision, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, storeErr("task insert failed", err)
	}

	return task, nil
}

// Update writes the full task document guarded by the revision the caller
// loaded. A lost race surfaces domain.ErrTaskConflict so the caller retries
// from a fresh read instead of silently overwriting the newer state.
func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		priority = $4,
		status = $5,
		due_date = $6,
		assigned_to = $7,
		verified_by = $8,
		verified_at = $9,
		attachments = $10,
		checklist = $11,
		progress = $12,
		revision = revision + 1,
		updated_at = NOW()
	WHERE id = $1 AND revision = $13
	RETURNING revision, updated_at
	`

	var due interface{}
	if task.DueDate != nil {
		due = *task.DueDate
	}
	var verifiedAt interface{}
	if task.VerifiedAt != nil {
		verifiedAt = *task.VerifiedAt
	}

	err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Status),
		due,
		marshalJSON(stringSlice(task.AssignedTo)),
		task.VerifiedBy,
		verifiedAt,
		marshalJSON(stringSlice(task.Attachments)),
		marshalJSON(checklistSlice(task.Checklist)),
		task.Progress,
		task.Revision,
	).Scan(&task.Revision, &task.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return storeErr("task update failed", err)
	}

	// Distinguish a vanished task from a stale revision.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, task.ID).Scan(&exists); err != nil {
		return storeErr("task update failed", err)
	}
	if exists {
		return domain.ErrTaskConflict
	}
	return domain.ErrTaskNotFound
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return storeErr("task delete failed", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) CountByStatus(ctx context.Context, assigneeID string) (repository.StatusCounts, error) {
	const query = `
	SELECT COUNT(*),
		COUNT(*) FILTER (WHERE status = 'Pending'),
		COUNT(*) FILTER (WHERE status = 'In Progress'),
		COUNT(*) FILTER (WHERE status = 'Unverified' AND verified_by = ''),
		COUNT(*) FILTER (WHERE status = 'Completed'),
		COUNT(*) FILTER (WHERE status <> 'Completed' AND due_date < NOW())
	FROM tasks
	WHERE ($1 = '' OR assigned_to ? $1)
	`
	var counts repository.StatusCounts
	if err := r.pool.QueryRow(ctx, query, assigneeID).Scan(
		&counts.All,
		&counts.Pending,
		&counts.InProgress,
		&counts.Unverified,
		&counts.Completed,
		&counts.Overdue,
	); err != nil {
		return repository.StatusCounts{}, storeErr("status counts failed", err)
	}
	return counts, nil
}

func (r *taskRepository) CountByPriority(ctx context.Context, assigneeID string) (map[domain.Priority]int, error) {
	const query = `
	SELECT priority, COUNT(*)
	FROM tasks
	WHERE ($1 = '' OR assigned_to ? $1)
	GROUP BY priority
	`
	rows, err := r.pool.Query(ctx, query, assigneeID)
	if err != nil {
		return nil, storeErr("priority counts failed", err)
	}
	defer rows.Close()

	counts := map[domain.Priority]int{
		domain.PriorityLow:    0,
		domain.PriorityMedium: 0,
		domain.PriorityHigh:   0,
	}
	for rows.Next() {
		var priority string
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		counts[domain.Priority(priority)] = count
	}
	return counts, rows.Err()
}

func (r *taskRepository) CountForUser(ctx context.Context, userID string) (repository.UserTaskCounts, error) {
	const query = `
	SELECT
		COUNT(*) FILTER (WHERE status = 'Pending'),
		COUNT(*) FILTER (WHERE status = 'In Progress'),
		COUNT(*) FILTER (WHERE status = 'Completed'),
		COUNT(*) FILTER (WHERE status = 'Completed' AND verified_by = ''),
		COUNT(*) FILTER (WHERE status = 'Completed' AND verified_by <> '')
	FROM tasks
	WHERE assigned_to ? $1
	`
	var counts repository.UserTaskCounts
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&counts.Pending,
		&counts.InProgress,
		&counts.Completed,
		&counts.UnverifiedCompleted,
		&counts.VerifiedCompleted,
	); err != nil {
		return repository.UserTaskCounts{}, storeErr("user task counts failed", err)
	}
	return counts, nil
}

func (r *taskRepository) Recent(ctx context.Context, assigneeID string, limit int) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR assigned_to ? $1)
	ORDER BY created_at DESC
	LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, assigneeID, clampLimit(limit))
	if err != nil {
		return nil, storeErr("recent tasks failed", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		due         *time.Time
		verifiedAt  *time.Time
		assignedTo  []byte
		attachments []byte
		checklist   []byte
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Status,
		&due,
		&assignedTo,
		&task.CreatedBy,
		&task.VerifiedBy,
		&verifiedAt,
		&attachments,
		&checklist,
		&task.Progress,
		&task.Revision,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, storeErr("task read failed", err)
	}

	task.DueDate = due
	task.VerifiedAt = verifiedAt
	if len(assignedTo) > 0 {
		_ = json.Unmarshal(assignedTo, &task.AssignedTo)
	}
	if len(attachments) > 0 {
		_ = json.Unmarshal(attachments, &task.Attachments)
	}
	if len(checklist) > 0 {
		_ = json.Unmarshal(checklist, &task.Checklist)
	}

	return &task, nil
}

func stringSlice(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func checklistSlice(items []domain.ChecklistItem) []domain.ChecklistItem {
	if items == nil {
		return []domain.ChecklistItem{}
	}
	return items
}
