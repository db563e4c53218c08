package realtime

import (
	"time"

	"github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/events"
)

const (
	frameJoin   = "join"
	frameJoined = "joined"
	framePing   = "ping"
	framePong   = "pong"
	frameError  = "error"
)

// ClientFrame is a message sent by a realtime client.
type ClientFrame struct {
	Type   string `json:"type"`
	UserID string `json:"user_id,omitempty"`
}

// JoinedFrame confirms a join.
type JoinedFrame struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

// ErrorFrame reports a rejected client frame.
type ErrorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// EventFrame is a task notification as delivered to a client.
type EventFrame struct {
	Type      string     `json:"type"`
	TaskID    string     `json:"task_id"`
	ActorID   string     `json:"actor_id"`
	Task      *task.View `json:"task,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

func toEventFrame(event events.TaskEvent) EventFrame {
	return EventFrame{
		Type:      event.Type,
		TaskID:    event.TaskID,
		ActorID:   event.ActorID,
		Task:      event.Task,
		Timestamp: event.Timestamp,
	}
}

func errorFrame(msg string) ErrorFrame {
	return ErrorFrame{Type: frameError, Error: msg}
}
