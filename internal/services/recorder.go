package services

import (
	"context"
	"encoding/json"

	"github.com/taskpilot/backend/domain"
	"github.com/taskpilot/backend/internal/infrastructure/journal"
	"github.com/taskpilot/backend/usecase"
)

// ActivityJournal appends mutation records to the local journal. It never
// blocks or fails the mutation that produced the record beyond reporting the
// append error to the caller's logger.
type ActivityJournal struct {
	store *journal.Store
}

func NewActivityJournal(store *journal.Store) *ActivityJournal {
	return &ActivityJournal{store: store}
}

func (j *ActivityJournal) RecordTask(ctx context.Context, action string, actor domain.Actor, task *domain.Task) error {
	if j.store == nil || task == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(map[string]interface{}{
		"status":   task.Status,
		"progress": task.Progress,
		"revision": task.Revision,
	})
	if err != nil {
		return err
	}
	return j.store.Append(journal.Entry{
		TaskID:  task.ID,
		ActorID: actor.ID,
		Action:  action,
		Payload: payload,
	})
}

var _ usecase.ActivityRecorder = (*ActivityJournal)(nil)
