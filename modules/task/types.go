package task

import (
	domain "github.com/example/task-tracker/domain/task"
)

// CreateTaskRequest represents a create-task request.
type CreateTaskRequest struct {
	CallerID      string `json:"caller_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	AssigneeEmail string `json:"assignee_email,omitempty"`
}

// TaskRequest addresses a single task on behalf of a caller.
// Used by get-task, toggle-task and delete-task.
type TaskRequest struct {
	CallerID string `json:"caller_id"`
	TaskID   string `json:"task_id"`
}

// UpdateTaskRequest represents an update-task request.
type UpdateTaskRequest struct {
	CallerID string       `json:"caller_id"`
	TaskID   string       `json:"task_id"`
	Patch    domain.Patch `json:"patch"`
}

// TaskResponse wraps a single task view.
type TaskResponse struct {
	Task domain.View `json:"task"`
}

// DeleteTaskResponse represents a delete-task response.
type DeleteTaskResponse struct {
	ID string `json:"id"`
}

// ListTasksRequest represents a list-my-tasks or list-assigned-tasks request.
type ListTasksRequest struct {
	CallerID string `json:"caller_id"`
}

// ListTasksResponse represents a task listing.
type ListTasksResponse struct {
	Tasks []domain.View `json:"tasks"`
	Total int           `json:"total"`
}
