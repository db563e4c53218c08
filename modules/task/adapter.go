package task

import (
	"context"
	"encoding/json"
	"strings"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort is the driving port the HTTP layer uses.
type TaskPort interface {
	Create(ctx context.Context, callerID string, in CreateInput) (*domain.View, error)
	Get(ctx context.Context, callerID, taskID string) (*domain.View, error)
	Update(ctx context.Context, callerID, taskID string, patch domain.Patch) (*domain.View, error)
	ToggleStatus(ctx context.Context, callerID, taskID string) (*domain.View, error)
	Delete(ctx context.Context, callerID, taskID string) (string, error)
	ListMine(ctx context.Context, callerID string) ([]domain.View, error)
	ListAssigned(ctx context.Context, callerID string) ([]domain.View, error)
}

var (
	_ TaskPort = (*TaskAdapter)(nil)
	_ TaskPort = (*Service)(nil)
)

// TaskAdapter implements TaskPort over the task module's service container.
// Errors coming back from the services are restored to their domain kinds.
type TaskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new TaskAdapter.
func NewTaskAdapter(container mono.ServiceContainer) *TaskAdapter {
	return &TaskAdapter{container: container}
}

func (a *TaskAdapter) Create(ctx context.Context, callerID string, in CreateInput) (*domain.View, error) {
	req := CreateTaskRequest{
		CallerID:      callerID,
		Title:         in.Title,
		Description:   in.Description,
		AssigneeEmail: in.AssigneeEmail,
	}
	var resp TaskResponse
	if err := callService(ctx, a.container, "create-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (a *TaskAdapter) Get(ctx context.Context, callerID, taskID string) (*domain.View, error) {
	req := TaskRequest{CallerID: callerID, TaskID: taskID}
	var resp TaskResponse
	if err := callService(ctx, a.container, "get-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (a *TaskAdapter) Update(ctx context.Context, callerID, taskID string, patch domain.Patch) (*domain.View, error) {
	req := UpdateTaskRequest{CallerID: callerID, TaskID: taskID, Patch: patch}
	var resp TaskResponse
	if err := callService(ctx, a.container, "update-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (a *TaskAdapter) ToggleStatus(ctx context.Context, callerID, taskID string) (*domain.View, error) {
	req := TaskRequest{CallerID: callerID, TaskID: taskID}
	var resp TaskResponse
	if err := callService(ctx, a.container, "toggle-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (a *TaskAdapter) Delete(ctx context.Context, callerID, taskID string) (string, error) {
	req := TaskRequest{CallerID: callerID, TaskID: taskID}
	var resp DeleteTaskResponse
	if err := callService(ctx, a.container, "delete-task", &req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (a *TaskAdapter) ListMine(ctx context.Context, callerID string) ([]domain.View, error) {
	return a.list(ctx, "list-my-tasks", callerID)
}

func (a *TaskAdapter) ListAssigned(ctx context.Context, callerID string) ([]domain.View, error) {
	return a.list(ctx, "list-assigned-tasks", callerID)
}

func (a *TaskAdapter) list(ctx context.Context, service, callerID string) ([]domain.View, error) {
	req := ListTasksRequest{CallerID: callerID}
	var resp ListTasksResponse
	if err := callService(ctx, a.container, service, &req, &resp); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		resp.Tasks = []domain.View{}
	}
	return resp.Tasks, nil
}

// callService invokes a task service and restores the error kind of a failure.
func callService[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	err := helper.CallRequestReplyService(ctx, container, service, json.Marshal, json.Unmarshal, req, resp)
	if err != nil {
		return restoreError(err)
	}
	return nil
}

// ServiceError is a task error restored from a request-reply failure. It
// unwraps to the domain error kind and keeps the original detail.
type ServiceError struct {
	Kind   error
	Detail string
}

func (e *ServiceError) Error() string { return e.Detail }

func (e *ServiceError) Unwrap() error { return e.Kind }

// restoreError maps err back onto a domain error kind when possible. The
// detail starts at the kind's own message so transport prefixes are dropped.
func restoreError(err error) error {
	kind := domain.Classify(err)
	if kind == nil {
		return err
	}
	detail := err.Error()
	if i := strings.Index(detail, kind.Error()); i >= 0 {
		detail = detail[i:]
	}
	return &ServiceError{Kind: kind, Detail: detail}
}
