package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/modules/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	accounts auth.AccountPort
	tasks    task.TaskPort
	logger   types.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(accounts auth.AccountPort, tasks task.TaskPort, logger types.Logger) *Handlers {
	return &Handlers{
		accounts: accounts,
		tasks:    tasks,
		logger:   logger,
	}
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return badRequest(c, "Name, email and password are required")
	}

	resp, err := h.accounts.Register(c.UserContext(), auth.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(UserResponse{
		ID:        resp.ID,
		Name:      resp.Name,
		Email:     resp.Email,
		CreatedAt: resp.CreatedAt,
	})
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	resp, err := h.accounts.Login(c.UserContext(), auth.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// Me returns the caller's public profile.
func (h *Handlers) Me(c *fiber.Ctx) error {
	identity, ok := IdentityFrom(c)
	if !ok {
		return unauthenticated(c, "User not authenticated")
	}
	return c.JSON(fiber.Map{
		"id":    identity.UserID,
		"name":  identity.Name,
		"email": identity.Email,
	})
}

// CreateTask creates a task owned by the caller.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	identity, ok := IdentityFrom(c)
	if !ok {
		return unauthenticated(c, "User not authenticated")
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	view, err := h.tasks.Create(c.UserContext(), identity.UserID, task.CreateInput{
		Title:         req.Title,
		Description:   req.Description,
		AssigneeEmail: strings.TrimSpace(req.AssignedToEmail),
	})
	if err != nil {
		return h.writeTaskError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// GetTask returns a task visible to the caller.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	identity, ok := IdentityFrom(c)
	if !ok {
		return unauthenticated(c, "User not authenticated")
	}

	view, err := h.tasks.Get(c.UserContext(), identity.UserID, c.Params("id"))
	if err != nil {
		return h.writeTaskError(c, err)
	}
	return c.JSON(view)
}

// UpdateTask applies a partial update. Only title, description and status
// may be sent; any other field is rejected.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	identity, ok := IdentityFrom(c)
	if !ok {
		return unauthenticated(c, "User not authenticated")
	}

	patch, err := decodePatch(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	}

	view, err := h.tasks.Update(c.UserContext(), identity.UserID, c.Params("id"), patch)
	if err != nil {
		return h.writeTaskError(c, err)
	}
	return c.JSON(view)
}

// ToggleTask flips the task status between pending and completed.
func (h *Handlers) ToggleTask(c *fiber.Ctx) error {
	identity, ok := IdentityFrom(c)
	if !ok {
		return unauthenticated(c, "User not authenticated")
	}

	view, err := h.tasks.ToggleStatus(c.UserContext(), identity.UserID, c.Params("id"))
	if err != nil {
		return h.writeTaskError(c, err)
	}
	return c.JSON(view)
}

// DeleteTask removes a task created by the caller.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	identity, ok := IdentityFrom(c)
	if !ok {
		return unauthenticated(c, "User not authenticated")
	}

	id, err := h.tasks.Delete(c.UserContext(), identity.UserID, c.Params("id"))
	if err != nil {
		return h.writeTaskError(c, err)
	}
	return c.JSON(DeleteResponse{ID: id})
}

// ListMyTasks lists tasks created by the caller.
func (h *Handlers) ListMyTasks(c *fiber.Ctx) error {
	identity, ok := IdentityFrom(c)
	if !ok {
		return unauthenticated(c, "User not authenticated")
	}

	views, err := h.tasks.ListMine(c.UserContext(), identity.UserID)
	if err != nil {
		return h.writeTaskError(c, err)
	}
	return c.JSON(TaskListResponse{Tasks: views, Total: len(views)})
}

// ListAssignedTasks lists tasks assigned to the caller.
func (h *Handlers) ListAssignedTasks(c *fiber.Ctx) error {
	identity, ok := IdentityFrom(c)
	if !ok {
		return unauthenticated(c, "User not authenticated")
	}

	views, err := h.tasks.ListAssigned(c.UserContext(), identity.UserID)
	if err != nil {
		return h.writeTaskError(c, err)
	}
	return c.JSON(TaskListResponse{Tasks: views, Total: len(views)})
}

func decodePatch(body []byte) (domain.Patch, error) {
	var patch domain.Patch

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			field := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return domain.Patch{}, errors.New("field cannot be updated: " + strings.Trim(field, `"`))
		}
		return domain.Patch{}, errors.New("invalid request body")
	}
	if dec.More() {
		return domain.Patch{}, errors.New("invalid request body")
	}
	return patch, nil
}

// writeTaskError maps a task error to its HTTP status without exposing internals.
func (h *Handlers) writeTaskError(c *fiber.Ctx, err error) error {
	switch domain.Classify(err) {
	case domain.ErrValidation:
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: validationMessage(err),
		})
	case domain.ErrTaskNotFound:
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	case domain.ErrAssigneeNotFound:
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "assignee_not_found",
			Message: "Assigned user not found",
		})
	case domain.ErrUnauthorized:
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "You are not allowed to perform this action on this task",
		})
	case domain.ErrCreatorNotFound:
		return unauthenticated(c, "Unknown user")
	default:
		h.logger.Error("Task request failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

// validationMessage keeps the specific reason, e.g. "title is required".
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, domain.ErrValidation.Error()); i >= 0 {
		return msg[i:]
	}
	return domain.ErrValidation.Error()
}

// handleAuthError matches error messages, which is all that survives the
// service boundary, to user-facing responses.
func (h *Handlers) handleAuthError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, auth.ErrInvalidCredentials.Error()):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthenticated",
			Message: "Invalid email or password",
		})
	case strings.Contains(errStr, auth.ErrUserExists.Error()):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "User with this email already exists",
		})
	case strings.Contains(errStr, auth.ErrNameRequired.Error()),
		strings.Contains(errStr, auth.ErrInvalidEmail.Error()),
		strings.Contains(errStr, auth.ErrWeakPassword.Error()),
		strings.Contains(errStr, auth.ErrPasswordTooLong.Error()):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: authValidationMessage(errStr),
		})
	default:
		h.logger.Error("Auth request failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

func authValidationMessage(errStr string) string {
	for _, e := range []error{auth.ErrNameRequired, auth.ErrInvalidEmail, auth.ErrWeakPassword, auth.ErrPasswordTooLong} {
		if strings.Contains(errStr, e.Error()) {
			return e.Error()
		}
	}
	return "invalid request"
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "validation_error",
		Message: message,
	})
}
