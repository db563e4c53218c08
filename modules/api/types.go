package api

import (
	"time"

	domain "github.com/example/task-tracker/domain/task"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a registered user.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTaskRequest is the body of POST /api/v1/tasks.
type CreateTaskRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	AssignedToEmail string `json:"assignedToEmail"`
}

// TaskListResponse wraps a task list.
type TaskListResponse struct {
	Tasks []domain.View `json:"tasks"`
	Total int           `json:"total"`
}

// DeleteResponse reports the removed task.
type DeleteResponse struct {
	ID string `json:"id"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
