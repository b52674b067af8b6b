package journal

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded task mutation awaiting drain into the activity table.
type Entry struct {
	ID        string          `json:"id"`
	TaskID    string          `json:"task_id"`
	ActorID   string          `json:"actor_id"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (e *Entry) normalize() {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
}
