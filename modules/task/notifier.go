package task

import (
	"context"
	"fmt"

	"github.com/example/task-tracker/events"
	"github.com/go-monolith/mono"
)

// BusNotifier publishes task events on the mono EventBus.
type BusNotifier struct {
	bus mono.EventBus
}

// NewBusNotifier creates a BusNotifier.
func NewBusNotifier(bus mono.EventBus) *BusNotifier {
	return &BusNotifier{bus: bus}
}

// Notify publishes the event under the definition matching its type.
func (n *BusNotifier) Notify(_ context.Context, event events.TaskEvent) error {
	switch event.Type {
	case events.TypeTaskCreated:
		return events.TaskCreatedV1.Publish(n.bus, event, nil)
	case events.TypeTaskUpdated:
		return events.TaskUpdatedV1.Publish(n.bus, event, nil)
	case events.TypeTaskDeleted:
		return events.TaskDeletedV1.Publish(n.bus, event, nil)
	default:
		return fmt.Errorf("unknown task event type %q", event.Type)
	}
}
