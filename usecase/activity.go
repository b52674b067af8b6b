package usecase

import (
	"context"

	"github.com/taskpilot/backend/domain"
)

// ActivityRecorder abstracts the mutation journal so use cases stay
// storage-agnostic. Recording is fire-and-forget: a failure here must never
// fail or retry the mutation it describes.
type ActivityRecorder interface {
	RecordTask(ctx context.Context, action string, actor domain.Actor, task *domain.Task) error
}
