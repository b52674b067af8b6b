package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpilot/backend/domain"
	"github.com/taskpilot/backend/repository"
)

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository returns a Postgres-backed attachment metadata repository.
func NewAttachmentRepository(pool *pgxpool.Pool) repository.AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) GetByID(ctx context.Context, id string) (*domain.Attachment, error) {
	const query = `
	SELECT id, task_id, uploaded_by, original_name, file_path, uploaded_at
	FROM attachments
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)

	var a domain.Attachment
	if err := row.Scan(&a.ID, &a.TaskID, &a.UploadedBy, &a.OriginalName, &a.FilePath, &a.UploadedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAttachmentNotFound
		}
		return nil, storeErr("attachment read failed", err)
	}
	return &a, nil
}

func (r *attachmentRepository) ListByTask(ctx context.Context, taskID string) ([]domain.Attachment, error) {
	const query = `
	SELECT id, task_id, uploaded_by, original_name, file_path, uploaded_at
	FROM attachments
	WHERE task_id = $1
	ORDER BY uploaded_at DESC
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, storeErr("attachment listing failed", err)
	}
	defer rows.Close()

	var attachments []domain.Attachment
	for rows.Next() {
		var a domain.Attachment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.UploadedBy, &a.OriginalName, &a.FilePath, &a.UploadedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) (*domain.Attachment, error) {
	if attachment == nil {
		return nil, domain.ErrInvalidPayload
	}
	if attachment.ID == "" {
		attachment.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO attachments (id, task_id, uploaded_by, original_name, file_path)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING uploaded_at
	`
	if err := r.pool.QueryRow(ctx, query,
		attachment.ID,
		attachment.TaskID,
		attachment.UploadedBy,
		attachment.OriginalName,
		attachment.FilePath,
	).Scan(&attachment.UploadedAt); err != nil {
		return nil, storeErr("attachment insert failed", err)
	}

	return attachment, nil
}

func (r *attachmentRepository) DeleteByTask(ctx context.Context, taskID string) error {
	const query = `DELETE FROM attachments WHERE task_id = $1`
	if _, err := r.pool.Exec(ctx, query, taskID); err != nil {
		return storeErr("attachment delete failed", err)
	}
	return nil
}
