package events

import (
	"time"

	"github.com/example/task-tracker/domain/task"
	"github.com/go-monolith/mono/pkg/helper"
)

// Realtime frame types carried by task events.
const (
	TypeTaskCreated = "task_created"
	TypeTaskUpdated = "task_updated"
	TypeTaskDeleted = "task_deleted"
)

// TaskEvent is the payload of every task notification. It is addressed to a
// single recipient: the other party of the task relative to the actor.
type TaskEvent struct {
	Type        string     `json:"type"`
	RecipientID string     `json:"recipient_id"`
	ActorID     string     `json:"actor_id"`
	TaskID      string     `json:"task_id"`
	Task        *task.View `json:"task,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

// TaskCreatedV1 is emitted when a task is created with an assignee other than the creator.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskEvent](
	"task", "TaskCreated", "v1",
)

// TaskUpdatedV1 is emitted after an update or a status toggle.
// Subject: events.task.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskEvent](
	"task", "TaskUpdated", "v1",
)

// TaskDeletedV1 is emitted after a task with an assignee is removed.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskEvent](
	"task", "TaskDeleted", "v1",
)
