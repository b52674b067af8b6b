package domain

import "time"

// Attachment is a file reference bound to a task. The engine stores only
// metadata; bytes live on disk under the uploads directory.
type Attachment struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"task_id"`
	UploadedBy   string    `json:"uploaded_by"`
	OriginalName string    `json:"original_name"`
	FilePath     string    `json:"file_path"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
