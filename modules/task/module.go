package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-tracker/config"
	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/events"
	"github.com/example/task-tracker/modules/auth"
	"github.com/example/task-tracker/storage"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// TaskModule provides the task lifecycle services.
type TaskModule struct {
	cfg      config.Config
	db       *gorm.DB
	service  *Service
	users    auth.UserDirectory
	eventBus mono.EventBus
	logger   types.Logger
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)
var _ mono.EventBusAwareModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule.
func NewModule(cfg config.Config, logger types.Logger) *TaskModule {
	return &TaskModule{
		cfg:    cfg,
		logger: logger.WithModule("task"),
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) Dependencies() []string {
	return []string{"auth"}
}

func (m *TaskModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "auth" {
		m.users = auth.NewAuthAdapter(container)
	}
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "toggle-task", json.Unmarshal, json.Marshal, m.toggleTask,
	); err != nil {
		return fmt.Errorf("failed to register toggle-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-my-tasks", json.Unmarshal, json.Marshal, m.listMyTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-my-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-assigned-tasks", json.Unmarshal, json.Marshal, m.listAssignedTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-assigned-tasks service: %w", err)
	}

	m.logger.Info("Registered services",
		"services", "create-task, get-task, update-task, delete-task, toggle-task, list-my-tasks, list-assigned-tasks")
	return nil
}

// Start opens the task store. A storage failure here aborts application startup.
func (m *TaskModule) Start(_ context.Context) error {
	if m.users == nil {
		return fmt.Errorf("auth dependency not set")
	}

	db, err := storage.Open(m.cfg.DBPath, m.cfg.DBDebug, &domain.Task{})
	if err != nil {
		return err
	}
	m.db = db

	var notifier Notifier
	if m.eventBus != nil {
		notifier = NewBusNotifier(m.eventBus)
	} else {
		m.logger.Warn("eventBus not set, task events will not be published")
	}

	m.service = NewService(NewTaskRepository(db), m.users, notifier, m.logger)

	m.logger.Info("Module started", "database", m.cfg.DBPath)
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	if err := storage.Close(m.db); err != nil {
		m.logger.Error("Failed to close database", "error", err)
	}
	m.logger.Info("Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *TaskModule) Health(_ context.Context) mono.HealthStatus {
	if err := storage.Ping(m.db); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database":       m.cfg.DBPath,
			"events_enabled": m.eventBus != nil,
		},
	}
}

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	view, err := m.service.Create(ctx, req.CallerID, CreateInput{
		Title:         req.Title,
		Description:   req.Description,
		AssigneeEmail: req.AssigneeEmail,
	})
	if err != nil {
		return TaskResponse{}, err
	}
	m.logger.Info("Task created", "task_id", view.ID, "creator_id", req.CallerID)
	return TaskResponse{Task: *view}, nil
}

func (m *TaskModule) getTask(ctx context.Context, req TaskRequest, _ *mono.Msg) (TaskResponse, error) {
	view, err := m.service.Get(ctx, req.CallerID, req.TaskID)
	if err != nil {
		return TaskResponse{}, err
	}
	return TaskResponse{Task: *view}, nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	view, err := m.service.Update(ctx, req.CallerID, req.TaskID, req.Patch)
	if err != nil {
		return TaskResponse{}, err
	}
	return TaskResponse{Task: *view}, nil
}

func (m *TaskModule) toggleTask(ctx context.Context, req TaskRequest, _ *mono.Msg) (TaskResponse, error) {
	view, err := m.service.ToggleStatus(ctx, req.CallerID, req.TaskID)
	if err != nil {
		return TaskResponse{}, err
	}
	return TaskResponse{Task: *view}, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req TaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	id, err := m.service.Delete(ctx, req.CallerID, req.TaskID)
	if err != nil {
		return DeleteTaskResponse{}, err
	}
	m.logger.Info("Task deleted", "task_id", id, "caller_id", req.CallerID)
	return DeleteTaskResponse{ID: id}, nil
}

func (m *TaskModule) listMyTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	views, err := m.service.ListMine(ctx, req.CallerID)
	if err != nil {
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Tasks: views, Total: len(views)}, nil
}

func (m *TaskModule) listAssignedTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	views, err := m.service.ListAssigned(ctx, req.CallerID)
	if err != nil {
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Tasks: views, Total: len(views)}, nil
}
