package repository

import (
	"context"
	"encoding/json"
	"time"
)

// ActivityEntry is one recorded task mutation, drained from the local
// journal into the activity table.
type ActivityEntry struct {
	ID        string          `json:"id"`
	TaskID    string          `json:"task_id"`
	ActorID   string          `json:"actor_id"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type ActivityRepository interface {
	Insert(ctx context.Context, entry ActivityEntry) error
	ListByTask(ctx context.Context, taskID string, limit int) ([]ActivityEntry, error)
}
