package attachment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskpilot/backend/domain"
	"github.com/taskpilot/backend/repository"
)

// UseCase handles file uploads bound to tasks. Bytes land in the uploads
// directory; only opaque metadata rows reach the store.
type UseCase struct {
	attachments repository.AttachmentRepository
	tasks       repository.TaskRepository
	uploadsDir  string
	logger      *zap.Logger
}

func New(attachments repository.AttachmentRepository, tasks repository.TaskRepository, uploadsDir string, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		attachments: attachments,
		tasks:       tasks,
		uploadsDir:  uploadsDir,
		logger:      logger,
	}
}

// Upload is one incoming file: its client-supplied name and contents.
type Upload struct {
	Name string
	Data []byte
}

// Store saves the uploaded files for a task and records their metadata.
// Allowed for admins and assignees of the task.
func (uc *UseCase) Store(ctx context.Context, actor domain.Actor, taskID string, uploads []Upload) ([]domain.Attachment, error) {
	t, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := uc.authorize(actor, t); err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "no files uploaded")
	}

	stored := make([]domain.Attachment, 0, len(uploads))
	for _, upload := range uploads {
		filename := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(upload.Name))
		if err := os.WriteFile(filepath.Join(uc.uploadsDir, filename), upload.Data, 0o644); err != nil {
			return nil, domain.WrapError(domain.ErrCodeUnavailable, "failed to store file", err)
		}

		record := &domain.Attachment{
			TaskID:       taskID,
			UploadedBy:   actor.ID,
			OriginalName: upload.Name,
			FilePath:     filename,
		}
		created, err := uc.attachments.Create(ctx, record)
		if err != nil {
			return nil, err
		}
		stored = append(stored, *created)
	}

	uc.logger.Info("attachments stored",
		zap.String("task_id", taskID),
		zap.Int("count", len(stored)))
	return stored, nil
}

// List returns the attachment metadata for a task. Allowed for admins and
// assignees.
func (uc *UseCase) List(ctx context.Context, actor domain.Actor, taskID string) ([]domain.Attachment, error) {
	t, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := uc.authorize(actor, t); err != nil {
		return nil, err
	}
	return uc.attachments.ListByTask(ctx, taskID)
}

// Open resolves an attachment to its on-disk path and original name, after
// checking the actor may see the owning task.
func (uc *UseCase) Open(ctx context.Context, actor domain.Actor, attachmentID string) (string, string, error) {
	record, err := uc.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return "", "", err
	}
	t, err := uc.tasks.GetByID(ctx, record.TaskID)
	if err != nil {
		return "", "", err
	}
	if err := uc.authorize(actor, t); err != nil {
		return "", "", err
	}

	path := filepath.Join(uc.uploadsDir, filepath.Base(record.FilePath))
	if _, err := os.Stat(path); err != nil {
		return "", "", domain.ErrAttachmentNotFound
	}
	return path, record.OriginalName, nil
}

func (uc *UseCase) authorize(actor domain.Actor, t *domain.Task) error {
	if actor.IsAdmin() || t.IsAssignee(actor.ID) {
		return nil
	}
	return domain.NotAuthorized("access attachments")
}
