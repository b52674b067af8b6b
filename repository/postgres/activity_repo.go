package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpilot/backend/repository"
)

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository returns a Postgres-backed activity log repository.
func NewActivityRepository(pool *pgxpool.Pool) repository.ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Insert(ctx context.Context, entry repository.ActivityEntry) error {
	const query = `
	INSERT INTO task_activity (id, task_id, actor_id, action, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
	ON CONFLICT (id) DO NOTHING
	`
	payload := []byte(entry.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.TaskID,
		entry.ActorID,
		entry.Action,
		payload,
		nullTime(entry.CreatedAt),
	)
	if err != nil {
		return storeErr("activity insert failed", err)
	}
	return nil
}

func (r *activityRepository) ListByTask(ctx context.Context, taskID string, limit int) ([]repository.ActivityEntry, error) {
	const query = `
	SELECT id, task_id, actor_id, action, payload, created_at
	FROM task_activity
	WHERE task_id = $1
	ORDER BY created_at DESC
	LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, taskID, clampLimit(limit))
	if err != nil {
		return nil, storeErr("activity listing failed", err)
	}
	defer rows.Close()

	var entries []repository.ActivityEntry
	for rows.Next() {
		var entry repository.ActivityEntry
		var payload []byte
		if err := rows.Scan(&entry.ID, &entry.TaskID, &entry.ActorID, &entry.Action, &payload, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Payload = append([]byte(nil), payload...)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
