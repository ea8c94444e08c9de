package media

import "context"

// Task states reported by the content generation API.
const (
	StatusQueued    = "queued"
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Content item types.
const (
	ContentTypeText     = "text"
	ContentTypeImageURL = "image_url"
)

// TaskClient submits video generation tasks and reads their status.
type TaskClient interface {
	// CreateTask submits req and returns the upstream task ID.
	CreateTask(ctx context.Context, req *TaskRequest) (string, error)

	// GetTask returns the current state of a task.
	GetTask(ctx context.Context, taskID string) (*Task, error)
}

// TaskRequest is the task-creation body.
type TaskRequest struct {
	Model   string        `json:"model"`
	Content []ContentItem `json:"content"`
}

// ContentItem is one element of a task's multimodal input.
type ContentItem struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL references an input image.
type ImageURL struct {
	URL string `json:"url"`
}

// Task is a snapshot of an upstream generation task.
type Task struct {
	ID       string
	Status   string
	VideoURL string
	// Raw is the full status payload, kept for diagnostics.
	Raw map[string]any
}

// IsKnownStatus reports whether status is one the upstream documents.
func IsKnownStatus(status string) bool {
	switch status {
	case StatusQueued, StatusPending, StatusRunning, StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}
