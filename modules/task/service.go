package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/domain/user"
	"github.com/example/task-tracker/events"
	"github.com/example/task-tracker/modules/auth"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

// Store is the task persistence the service needs.
type Store interface {
	Create(ctx context.Context, t *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	Save(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
	ListByCreator(ctx context.Context, userID string) ([]domain.Task, error)
	ListByAssignee(ctx context.Context, userID string) ([]domain.Task, error)
}

// Notifier hands a task event to the realtime layer. Delivery is best-effort.
type Notifier interface {
	Notify(ctx context.Context, event events.TaskEvent) error
}

// CreateInput is the data a caller supplies for a new task.
type CreateInput struct {
	Title         string
	Description   string
	AssigneeEmail string
}

// Service implements the task lifecycle: every mutation is authorized
// against the caller's relationship to the task before it is persisted,
// and the other party is notified after the write commits.
type Service struct {
	store    Store
	users    auth.UserDirectory
	notifier Notifier
	logger   types.Logger
	now      func() time.Time
}

// NewService creates a new Service. notifier may be nil.
func NewService(store Store, users auth.UserDirectory, notifier Notifier, logger types.Logger) *Service {
	return &Service{
		store:    store,
		users:    users,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create persists a new pending task owned by creatorID, optionally assigned
// to the user with the given email.
func (s *Service) Create(ctx context.Context, creatorID string, in CreateInput) (*domain.View, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}

	creator, err := s.users.GetUser(ctx, creatorID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, domain.ErrCreatorNotFound
		}
		return nil, fmt.Errorf("failed to resolve creator: %w", err)
	}

	var assignee *user.Profile
	if email := strings.TrimSpace(in.AssigneeEmail); email != "" {
		assignee, err = s.users.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				return nil, domain.ErrAssigneeNotFound
			}
			return nil, fmt.Errorf("failed to resolve assignee: %w", err)
		}
	}

	now := s.now()
	t := &domain.Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: in.Description,
		Status:      domain.StatusPending,
		CreatedBy:   creator.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if assignee != nil {
		assigneeID := assignee.ID
		t.AssignedTo = &assigneeID
	}

	if err := s.store.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	view := domain.ToView(t)
	view.Creator = creator
	view.Assignee = assignee

	s.notify(ctx, events.TypeTaskCreated, t.Counterpart(creatorID), creatorID, &view)
	return &view, nil
}

// Get returns a task visible to the caller with both party profiles.
func (s *Service) Get(ctx context.Context, callerID, taskID string) (*domain.View, error) {
	t, err := s.load(ctx, callerID, taskID, domain.OpRead)
	if err != nil {
		return nil, err
	}

	view := domain.ToView(t)
	if err := s.attachProfiles(ctx, []*domain.View{&view}, true, true); err != nil {
		return nil, err
	}
	return &view, nil
}

// Update applies an allow-listed patch. Only the creator may update; the
// patch is validated after the task is loaded and authorized.
func (s *Service) Update(ctx context.Context, callerID, taskID string, patch domain.Patch) (*domain.View, error) {
	t, err := s.load(ctx, callerID, taskID, domain.OpUpdate)
	if err != nil {
		return nil, err
	}

	if patch.Empty() {
		return nil, domain.ErrEmptyPatch
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	patch.Apply(t)
	t.UpdatedAt = s.now()
	if err := s.store.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.afterWrite(ctx, events.TypeTaskUpdated, callerID, t), nil
}

// ToggleStatus flips the task between pending and completed. The creator or
// the assignee may toggle.
func (s *Service) ToggleStatus(ctx context.Context, callerID, taskID string) (*domain.View, error) {
	t, err := s.load(ctx, callerID, taskID, domain.OpToggleStatus)
	if err != nil {
		return nil, err
	}

	t.Status = t.Status.Toggled()
	t.UpdatedAt = s.now()
	if err := s.store.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}

	return s.afterWrite(ctx, events.TypeTaskUpdated, callerID, t), nil
}

// Delete removes a task. Only the creator may delete; the former assignee is notified.
func (s *Service) Delete(ctx context.Context, callerID, taskID string) (string, error) {
	t, err := s.load(ctx, callerID, taskID, domain.OpDelete)
	if err != nil {
		return "", err
	}

	if err := s.store.Delete(ctx, t.ID); err != nil {
		return "", fmt.Errorf("failed to delete task: %w", err)
	}

	view := domain.ToView(t)
	s.notify(ctx, events.TypeTaskDeleted, t.Counterpart(callerID), callerID, &view)
	return t.ID, nil
}

// ListMine returns the tasks the caller created, newest first, each with its
// assignee's profile.
func (s *Service) ListMine(ctx context.Context, callerID string) ([]domain.View, error) {
	if err := domain.Authorize(callerID, nil, domain.OpListMine); err != nil {
		return nil, err
	}

	tasks, err := s.store.ListByCreator(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return s.views(ctx, tasks, false, true)
}

// ListAssigned returns the tasks assigned to the caller, newest first, each
// with its creator's profile.
func (s *Service) ListAssigned(ctx context.Context, callerID string) ([]domain.View, error) {
	if err := domain.Authorize(callerID, nil, domain.OpListAssigned); err != nil {
		return nil, err
	}

	tasks, err := s.store.ListByAssignee(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return s.views(ctx, tasks, true, false)
}

// load fetches a task and authorizes op for the caller.
func (s *Service) load(ctx context.Context, callerID, taskID string, op domain.Operation) (*domain.Task, error) {
	t, err := s.store.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}

	if err := domain.Authorize(callerID, t, op); err != nil {
		return nil, err
	}
	return t, nil
}

// afterWrite notifies the counterpart and builds the response view. The write
// has already committed, so profile lookup failures only drop the profiles.
func (s *Service) afterWrite(ctx context.Context, eventType, actorID string, t *domain.Task) *domain.View {
	view := domain.ToView(t)
	if err := s.attachProfiles(ctx, []*domain.View{&view}, true, true); err != nil {
		s.logger.Warn("Failed to attach profiles", "task_id", t.ID, "error", err)
	}

	s.notify(ctx, eventType, t.Counterpart(actorID), actorID, &view)
	return &view
}

func (s *Service) views(ctx context.Context, tasks []domain.Task, withCreator, withAssignee bool) ([]domain.View, error) {
	views := make([]domain.View, len(tasks))
	ptrs := make([]*domain.View, len(tasks))
	for i := range tasks {
		views[i] = domain.ToView(&tasks[i])
		ptrs[i] = &views[i]
	}

	if err := s.attachProfiles(ctx, ptrs, withCreator, withAssignee); err != nil {
		return nil, err
	}
	return views, nil
}

// attachProfiles resolves the requested parties of every view in one batched lookup.
func (s *Service) attachProfiles(ctx context.Context, views []*domain.View, withCreator, withAssignee bool) error {
	var ids []string
	for _, v := range views {
		if withCreator {
			ids = append(ids, v.CreatedBy)
		}
		if withAssignee && v.AssignedTo != nil {
			ids = append(ids, *v.AssignedTo)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	profiles, err := s.users.GetProfiles(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to resolve profiles: %w", err)
	}

	for _, v := range views {
		if withCreator {
			if p, ok := profiles[v.CreatedBy]; ok {
				v.Creator = &p
			}
		}
		if withAssignee && v.AssignedTo != nil {
			if p, ok := profiles[*v.AssignedTo]; ok {
				v.Assignee = &p
			}
		}
	}
	return nil
}

// notify publishes a task event to recipientID. An empty recipient means
// nobody else is involved and nothing is sent.
func (s *Service) notify(ctx context.Context, eventType, recipientID, actorID string, view *domain.View) {
	if recipientID == "" || s.notifier == nil {
		return
	}

	event := events.TaskEvent{
		Type:        eventType,
		RecipientID: recipientID,
		ActorID:     actorID,
		TaskID:      view.ID,
		Task:        view,
		Timestamp:   s.now(),
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn("Failed to publish task event",
			"type", eventType, "task_id", view.ID, "recipient_id", recipientID, "error", err)
	}
}
