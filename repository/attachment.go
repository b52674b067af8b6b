package repository

import (
	"context"

	"github.com/taskpilot/backend/domain"
)

type AttachmentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Attachment, error)
	ListByTask(ctx context.Context, taskID string) ([]domain.Attachment, error)
	Create(ctx context.Context, attachment *domain.Attachment) (*domain.Attachment, error)
	DeleteByTask(ctx context.Context, taskID string) error
}
