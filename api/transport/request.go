package transport

// ChecklistItemRequest mirrors domain.ChecklistItem on the wire.
type ChecklistItemRequest struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TaskCreateRequest carries the fields an admin supplies for a new task.
type TaskCreateRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Priority    string                 `json:"priority"`
	DueDate     string                 `json:"due_date"`
	AssignedTo  []string               `json:"assigned_to"`
	Attachments []string               `json:"attachments"`
	Checklist   []ChecklistItemRequest `json:"checklist"`
}

// TaskUpdateRequest is a partial update: absent fields keep their prior value.
type TaskUpdateRequest struct {
	Title       *string                 `json:"title"`
	Description *string                 `json:"description"`
	Priority    *string                 `json:"priority"`
	DueDate     *string                 `json:"due_date"`
	AssignedTo  *[]string               `json:"assigned_to"`
	Attachments *[]string               `json:"attachments"`
	Checklist   *[]ChecklistItemRequest `json:"checklist"`
}

// ChecklistUpdateRequest replaces a task's checklist wholesale.
type ChecklistUpdateRequest struct {
	Checklist []ChecklistItemRequest `json:"checklist"`
}

// StatusUpdateRequest requests a lifecycle transition.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// UserUpdateRequest updates the caller's own profile fields.
type UserUpdateRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

type AuthLoginRequest struct {
	UserID string `json:"user_id"`
	TTL    int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}
