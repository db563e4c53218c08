package task

import (
	"strings"
	"time"

	"github.com/example/task-tracker/domain/user"
)

// Status represents the state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the two task states.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Toggled returns the other state.
func (s Status) Toggled() Status {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// Task is the core domain entity shared between a creator and an optional assignee.
type Task struct {
	ID          string    `gorm:"primaryKey;type:text"`
	Title       string    `gorm:"not null;type:text"`
	Description string    `gorm:"type:text"`
	Status      Status    `gorm:"not null;type:text;default:pending"`
	CreatedBy   string    `gorm:"not null;index;type:text"`
	AssignedTo  *string   `gorm:"index;type:text"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// IsCreator reports whether userID created the task.
func (t *Task) IsCreator(userID string) bool {
	return userID != "" && t.CreatedBy == userID
}

// IsAssignee reports whether userID is the task's assignee.
func (t *Task) IsAssignee(userID string) bool {
	return userID != "" && t.AssignedTo != nil && *t.AssignedTo == userID
}

// Counterpart returns the other party of the task relative to userID,
// or "" when there is none.
func (t *Task) Counterpart(userID string) string {
	var other string
	switch {
	case t.IsCreator(userID):
		if t.AssignedTo != nil {
			other = *t.AssignedTo
		}
	case t.IsAssignee(userID):
		other = t.CreatedBy
	}
	if other == userID {
		return ""
	}
	return other
}

// Patch names the fields a creator may change after creation.
// Creator, assignee and identifier are deliberately absent.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

// Validate checks the patch values without touching any task.
func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrTitleRequired
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Apply writes the patch onto t. Callers validate first.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

// View is the wire representation of a task, optionally enriched with the
// public profiles of its parties.
type View struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      Status        `json:"status"`
	CreatedBy   string        `json:"created_by"`
	AssignedTo  *string       `json:"assigned_to"`
	Creator     *user.Profile `json:"creator,omitempty"`
	Assignee    *user.Profile `json:"assignee,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ToView converts a task to its wire representation without profiles.
func ToView(t *Task) View {
	v := View{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.AssignedTo != nil {
		assignee := *t.AssignedTo
		v.AssignedTo = &assignee
	}
	return v
}
